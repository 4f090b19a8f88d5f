package narrative

import (
	"context"
	"log"
	"sort"

	"github.com/adces/feedback-engine/internal/embedding"
)

// SelectEvidence returns the k most representative evidence items,
// comment-bearing items ranked ahead of comment-free ones.
//
// The primary ranking embeds every fragment, computes the centroid, and
// orders by cosine similarity to the centroid so "typical" evidence surfaces
// ahead of outliers. When the embedder is nil, fails, or there are no
// comment-bearing items, the deterministic heuristic applies instead:
// comment-bearing items in original order, then comment-free items in
// original order. Ties always break by original position, so identical input
// yields identical output.
//
// The second return value reports whether embedding ranking was used.
func SelectEvidence(ctx context.Context, emb embedding.Embedder, items []EvidenceItem, k int) ([]EvidenceItem, bool) {
	if len(items) == 0 || k <= 0 {
		return nil, false
	}

	ranked, used := rankByCentroid(ctx, emb, items)
	if !used {
		ranked = heuristicOrder(items)
	}
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked, used
}

func rankByCentroid(ctx context.Context, emb embedding.Embedder, items []EvidenceItem) ([]EvidenceItem, bool) {
	if emb == nil || !AnyComments(items) {
		return nil, false
	}

	fragments := make([]string, len(items))
	for i, it := range items {
		fragments[i] = it.Fragment()
	}
	vectors, err := emb.Embed(ctx, fragments)
	if err != nil || len(vectors) != len(items) {
		if err != nil {
			log.Printf("narrative evidence_embed_degraded err=%q", err.Error())
		}
		return nil, false
	}

	centroid := embedding.Centroid(vectors)
	scores := make([]float64, len(items))
	for i, v := range vectors {
		scores[i] = embedding.CosineSimilarity(v, centroid)
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	ranked := make([]EvidenceItem, len(order))
	for i, idx := range order {
		ranked[i] = items[idx]
	}
	// Comment-bearing evidence stays ahead of rating-only signals even when
	// similarity scores say otherwise.
	return heuristicOrder(ranked), true
}

func heuristicOrder(items []EvidenceItem) []EvidenceItem {
	out := make([]EvidenceItem, 0, len(items))
	for _, it := range items {
		if it.HasComment() {
			out = append(out, it)
		}
	}
	for _, it := range items {
		if !it.HasComment() {
			out = append(out, it)
		}
	}
	return out
}
