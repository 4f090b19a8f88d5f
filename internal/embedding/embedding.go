// Package embedding defines the text embedding contract used by the evidence
// selector, plus the vector math it ranks with.
package embedding

import (
	"context"
	"math"
)

// Embedder turns a batch of texts into one vector per text. Implementations
// are shared process-wide and must be safe for concurrent use. Callers treat
// any error as "embedding unavailable" and degrade to a non-embedding path.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Centroid returns the element-wise mean of the vectors. It assumes all
// vectors share the first vector's dimensionality and returns nil for an
// empty input.
func Centroid(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	sum := make([]float64, dim)
	for _, v := range vectors {
		for i := 0; i < dim && i < len(v); i++ {
			sum[i] += float64(v[i])
		}
	}
	out := make([]float32, dim)
	n := float64(len(vectors))
	for i := range sum {
		out[i] = float32(sum[i] / n)
	}
	return out
}

// CosineSimilarity computes the cosine of the angle between a and b,
// returning 0 when either vector has zero magnitude or lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
