package narrative

import "strings"

// fillerSentences pad a section when both the primary text and the fallback
// text run out of sentences.
var fillerSentences = []string{
	"Continued professional reflection is encouraged to sustain growth in this area.",
	"Ongoing collaboration with colleagues can help consolidate these practices.",
	"Regular review of lesson outcomes will support steady improvement over time.",
}

// SplitSentences splits text into sentences on terminal punctuation,
// preserving the punctuation on each sentence.
func SplitSentences(text string) []string {
	var out []string
	var b strings.Builder
	for _, r := range strings.TrimSpace(text) {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(b.String()); s != "" && s != "." && s != "!" && s != "?" {
				out = append(out, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		out = append(out, s+".")
	}
	return out
}

// NormalizeSection forces the section to exactly n sentences: extra sentences
// are truncated, missing ones are padded first from the fallback text's
// unused sentences and then from the generic fillers. The result is never
// empty.
func NormalizeSection(primary, fallback string, n int) string {
	if n <= 0 {
		n = TargetSentences
	}
	sentences := SplitSentences(primary)
	if len(sentences) > n {
		sentences = sentences[:n]
	}

	seen := map[string]bool{}
	for _, s := range sentences {
		seen[s] = true
	}
	for _, s := range SplitSentences(fallback) {
		if len(sentences) >= n {
			break
		}
		if !seen[s] {
			sentences = append(sentences, s)
			seen[s] = true
		}
	}
	for i := 0; len(sentences) < n; i++ {
		filler := fillerSentences[i%len(fillerSentences)]
		if !seen[filler] {
			sentences = append(sentences, filler)
			seen[filler] = true
			continue
		}
		// All fillers consumed; repeat deterministically rather than loop.
		sentences = append(sentences, filler)
	}
	return strings.Join(sentences, " ")
}

// NormalizeResult applies NormalizeSection to every section, using the
// corresponding fallback section as the padding source. This enforces the
// exact-sentence-count output invariant on every generation path.
func NormalizeResult(res, fallback Result) Result {
	return Result{
		Strengths:        NormalizeSection(res.Strengths, fallback.Strengths, TargetSentences),
		ImprovementAreas: NormalizeSection(res.ImprovementAreas, fallback.ImprovementAreas, TargetSentences),
		Recommendations:  NormalizeSection(res.Recommendations, fallback.Recommendations, TargetSentences),
	}
}
