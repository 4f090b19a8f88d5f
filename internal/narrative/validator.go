package narrative

import "strings"

// DefaultDenylist contains the literal markers that indicate a numeric score
// echo. It is configuration, not logic: deployments can extend or trim it as
// real backend output is sampled.
var DefaultDenylist = []string{
	"communication =",
	"management =",
	"assessment =",
	"overall =",
	"communication=",
	"management=",
	"assessment=",
	"overall=",
	"/5",
	"out of 5",
	"rating:",
	"score:",
	"scores:",
}

// Validator decides whether generated text is unacceptable. A rejection is
// recoverable: it triggers the retry and, at worst, the template fallback.
type Validator struct {
	MinChars int
	Denylist []string
}

// NewValidator builds a validator with the given minimum length, using the
// default denylist when none is supplied. Entries are lowercased once here
// because matching happens against lowercased text.
func NewValidator(minChars int, denylist []string) Validator {
	if minChars <= 0 {
		minChars = MinNarrativeChars
	}
	if denylist == nil {
		denylist = DefaultDenylist
	}
	lowered := make([]string, len(denylist))
	for i, marker := range denylist {
		lowered[i] = strings.ToLower(marker)
	}
	return Validator{MinChars: minChars, Denylist: lowered}
}

// IsBad reports whether the text must be rejected: empty or below the length
// floor, containing a denylisted score-echo marker, containing any digit when
// forbidDigits is set (ratings-only mode), or missing any of the three
// required section labels.
func (v Validator) IsBad(text string, forbidDigits bool) bool {
	t := strings.TrimSpace(text)
	if len(t) < v.MinChars {
		return true
	}

	lower := strings.ToLower(t)
	for _, marker := range v.Denylist {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	if forbidDigits {
		for _, ch := range t {
			if ch >= '0' && ch <= '9' {
				return true
			}
		}
	}

	return !strings.Contains(t, LabelStrengths) ||
		!strings.Contains(t, LabelImprovement) ||
		!strings.Contains(t, LabelRecommendations)
}

// SectionsTooShort reports whether any parsed section falls below the
// per-section length floor.
func SectionsTooShort(res Result, minChars int) bool {
	if minChars <= 0 {
		minChars = MinSectionChars
	}
	for _, s := range []string{res.Strengths, res.ImprovementAreas, res.Recommendations} {
		if len(strings.TrimSpace(s)) < minChars {
			return true
		}
	}
	return false
}

// Recombine joins parsed sections back under their labels so the validator
// can apply the same checks to the parsed result as to the raw output.
func Recombine(res Result) string {
	return LabelStrengths + " " + res.Strengths + "\n" +
		LabelImprovement + " " + res.ImprovementAreas + "\n" +
		LabelRecommendations + " " + res.Recommendations
}
