package narrative

import "strings"

// labelVariants maps recognized label spellings (matched case-insensitively
// at line start) to the section they introduce. Backends occasionally drop
// underscores or pluralization; the parser tolerates the common variants.
var labelVariants = []struct {
	prefix  string
	section string
}{
	{"STRENGTHS:", "strengths"},
	{"STRENGTH:", "strengths"},
	{"AREAS_FOR_IMPROVEMENT:", "improvement"},
	{"AREAS FOR IMPROVEMENT:", "improvement"},
	{"AREA FOR IMPROVEMENT:", "improvement"},
	{"IMPROVEMENT AREAS:", "improvement"},
	{"RECOMMENDATIONS:", "recommendations"},
	{"RECOMMENDATION:", "recommendations"},
}

// ParseSections extracts the three labeled sections from raw backend output.
// It scans line by line: a recognized label starts a new section, and
// unlabeled lines accumulate into the current section's buffer. If no label
// is ever recognized the entire text lands in the strengths section, leaving
// the other two empty for the validator to flag.
func ParseSections(text string) Result {
	var res Result
	t := strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if t == "" {
		return res
	}

	current := ""
	var buf []string
	// A repeated label does not overwrite: the first occurrence wins.
	flush := func() {
		if current == "" || len(buf) == 0 {
			buf = nil
			return
		}
		joined := strings.TrimSpace(strings.Join(buf, " "))
		switch current {
		case "strengths":
			if res.Strengths == "" {
				res.Strengths = joined
			}
		case "improvement":
			if res.ImprovementAreas == "" {
				res.ImprovementAreas = joined
			}
		case "recommendations":
			if res.Recommendations == "" {
				res.Recommendations = joined
			}
		}
		buf = nil
	}

	for _, line := range strings.Split(t, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)
		matched := false
		for _, lv := range labelVariants {
			if strings.HasPrefix(upper, lv.prefix) {
				flush()
				current = lv.section
				if rest := strings.TrimSpace(line[len(lv.prefix):]); rest != "" {
					buf = append(buf, rest)
				}
				matched = true
				break
			}
		}
		if !matched && current != "" {
			buf = append(buf, line)
		}
	}
	flush()

	if res.Strengths == "" && res.ImprovementAreas == "" && res.Recommendations == "" {
		res.Strengths = t
	}
	return res
}
