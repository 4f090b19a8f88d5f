package narrative

import (
	"fmt"
	"strings"
	"time"
)

// BuildReportMarkdown renders a response as the printable observation
// feedback report consumed by the PDF exporter.
func BuildReportMarkdown(req Request, resp Response) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Classroom Observation Feedback\n\n")
	if n := trimmed(req.FacultyName); n != "" {
		fmt.Fprintf(&b, "- Teacher: %s\n", n)
	}
	if d := trimmed(req.Department); d != "" {
		fmt.Fprintf(&b, "- Department: %s\n", d)
	}
	if s := trimmed(req.SubjectObserved); s != "" {
		fmt.Fprintf(&b, "- Subject observed: %s\n", s)
	}
	if t := trimmed(req.ObservationType); t != "" {
		fmt.Fprintf(&b, "- Observation type: %s\n", t)
	}
	fmt.Fprintf(&b, "- Date: %s\n\n", time.Now().Format("January 2, 2006"))

	fmt.Fprintf(&b, "## Strengths\n\n%s\n\n", resp.Strengths)
	fmt.Fprintf(&b, "## Areas for Improvement\n\n%s\n\n", resp.ImprovementAreas)
	fmt.Fprintf(&b, "## Recommendations\n\n%s\n", resp.Recommendations)

	if resp.Debug != nil && resp.Debug.FallbackUsed {
		b.WriteString("\n*This narrative was composed from the structured rating summary.*\n")
	}
	return b.String()
}
