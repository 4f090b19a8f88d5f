package narrative

import (
	"fmt"
	"strings"
)

// The three section labels the backend must emit verbatim. The validator and
// parser key off the same constants.
const (
	LabelStrengths       = "STRENGTHS:"
	LabelImprovement     = "AREAS_FOR_IMPROVEMENT:"
	LabelRecommendations = "RECOMMENDATIONS:"
)

const outputFormatBlock = "Output format (use these exact labels, one per line):\n" +
	LabelStrengths + " <paragraph>\n" +
	LabelImprovement + " <paragraph>\n" +
	LabelRecommendations + " <paragraph>\n"

const exampleBlock = "\nEXAMPLE:\n" +
	LabelStrengths + " The teacher provided clear explanations and used targeted questioning to check for understanding, supporting student engagement. Lessons were well-paced and learning objectives were evident.\n" +
	LabelImprovement + " Increasing active student participation and tightening transition routines could further enhance learning time and engagement.\n" +
	LabelRecommendations + " Introduce brief formative checks and structured partner activities to increase participation and provide rapid feedback.\n"

func styleGuidance(style Style) string {
	switch style {
	case StyleShort:
		return "Write exactly three concise sentences per section."
	case StyleDetailed:
		return "Write exactly three well-developed sentences per section, each with specific instructional detail."
	default:
		return "Write exactly three sentences per section."
	}
}

// nonceLine injects the generation identifier so repeated identical requests
// can still receive varied phrasing.
func nonceLine(generationID string) string {
	return fmt.Sprintf("Variation token (do not mention it in the output): %s\n", generationID)
}

func teacherName(req Request) string {
	if n := trimmed(req.FacultyName); n != "" {
		return n
	}
	return "The teacher"
}

func subjectName(req Request) string {
	if s := trimmed(req.SubjectObserved); s != "" {
		return s
	}
	return "the observed class"
}

// BuildEvidencePrompt composes the evidence-mode instruction text: ranked
// evidence fragments are quoted verbatim as grounding context.
func BuildEvidencePrompt(req Request, fragments []string) string {
	var b strings.Builder
	b.WriteString("You are writing a PROFESSIONAL teacher evaluation narrative.\n")
	b.WriteString("Use the ratings and observations below as evidence; do not invent facts beyond them.\n\n")
	fmt.Fprintf(&b, "Teacher: %s\n", teacherName(req))
	fmt.Fprintf(&b, "Subject: %s\n", subjectName(req))
	if t := trimmed(req.ObservationType); t != "" {
		fmt.Fprintf(&b, "Observation type: %s\n", t)
	}
	b.WriteString(nonceLine(req.GenerationID))
	b.WriteString("\nOBSERVATIONS:\n")
	if len(fragments) == 0 {
		b.WriteString("No specific comments provided.\n")
	}
	for i, f := range fragments {
		if i >= MaxEvidenceFragments {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, f)
	}
	b.WriteString("\nTASK:\n")
	b.WriteString(styleGuidance(NormalizeStyle(req.Style)))
	b.WriteString("\n\n")
	b.WriteString(outputFormatBlock)
	b.WriteString(exampleBlock)
	return b.String()
}

// BuildRatingsOnlyPrompt composes the instruction text used when no free-text
// comments exist. It never includes numeric scores; the backend sees only
// qualitative bands per domain plus curated anchor phrases for the strongest
// and weakest domains, which bias it away from inventing specifics.
func BuildRatingsOnlyPrompt(req Request, th Thresholds) string {
	strongest := StrongestDomain(req.Averages)
	weakest := WeakestDomain(req.Averages)

	var b strings.Builder
	b.WriteString("You are an academic evaluator writing a professional teacher evaluation narrative based ONLY on domain rating levels.\n")
	b.WriteString("Hard rules: do NOT include numeric scores and avoid any numeric references.\n\n")
	fmt.Fprintf(&b, "Teacher: %s\n", teacherName(req))
	fmt.Fprintf(&b, "Overall level: %s\n", th.Band(req.Averages.Overall))
	fmt.Fprintf(&b, "Strongest domain: %s (%s)\n", strongest.DisplayName(), th.Band(domainAverage(req.Averages, strongest)))
	fmt.Fprintf(&b, "Priority domain: %s (%s)\n", weakest.DisplayName(), th.Band(domainAverage(req.Averages, weakest)))
	b.WriteString(nonceLine(req.GenerationID))

	b.WriteString("\nGrounded phrases you may draw on for strengths:\n")
	for _, p := range AnchorsFor(strongest).Strength {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	b.WriteString("Grounded phrases for improvement and recommendations:\n")
	for _, p := range AnchorsFor(weakest).Improve {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	for _, p := range AnchorsFor(weakest).Recommend {
		fmt.Fprintf(&b, "- %s\n", p)
	}

	b.WriteString("\nTASK:\n")
	b.WriteString(styleGuidance(NormalizeStyle(req.Style)))
	b.WriteString("\n\n")
	b.WriteString(outputFormatBlock)
	b.WriteString(exampleBlock)
	return b.String()
}

// BuildRetryPrompt composes the shorter, stricter prompt used after a first
// validation failure. It forbids digits and score tokens outright.
func BuildRetryPrompt(req Request, th Thresholds) string {
	strongest := StrongestDomain(req.Averages)
	weakest := WeakestDomain(req.Averages)

	var b strings.Builder
	b.WriteString("Write a professional teacher evaluation narrative based ONLY on rating levels.\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- NO numbers, NO \"=\" signs, NO \"/5\", NO score recap.\n")
	b.WriteString("- Do not invent details; keep statements general but specific to the domains.\n")
	b.WriteString("- Use complete sentences.\n\n")
	b.WriteString("Information you may use:\n")
	fmt.Fprintf(&b, "- Overall level: %s\n", th.Band(req.Averages.Overall))
	fmt.Fprintf(&b, "- Strongest domain: %s (%s)\n", strongest.DisplayName(), th.Band(domainAverage(req.Averages, strongest)))
	fmt.Fprintf(&b, "- Priority domain: %s (%s)\n", weakest.DisplayName(), th.Band(domainAverage(req.Averages, weakest)))
	fmt.Fprintf(&b, "- Teacher: %s\n", teacherName(req))
	b.WriteString(nonceLine(req.GenerationID))
	b.WriteString("\n")
	b.WriteString(styleGuidance(NormalizeStyle(req.Style)))
	b.WriteString("\n\nReturn EXACTLY three labeled paragraphs:\n")
	b.WriteString(outputFormatBlock)
	return b.String()
}
