package narrative

import "time"

const (
	// MaxEvidenceFragments caps how many ranked evidence fragments are
	// included verbatim in an evidence-mode prompt.
	MaxEvidenceFragments = 8

	// MinNarrativeChars is the minimum acceptable length for raw backend
	// output before parsing.
	MinNarrativeChars = 120

	// MinSectionChars is the minimum acceptable length for a single parsed
	// section.
	MinSectionChars = 40

	// TargetSentences is the sentence count every section is normalized to.
	TargetSentences = 3

	// DefaultBackendTimeout bounds each generative backend call.
	DefaultBackendTimeout = 60 * time.Second
)

// Style selects narrative length guidance passed through to the backend.
type Style string

const (
	StyleShort    Style = "short"
	StyleStandard Style = "standard"
	StyleDetailed Style = "detailed"
)

// NormalizeStyle maps unrecognized values to StyleStandard.
func NormalizeStyle(s string) Style {
	switch Style(s) {
	case StyleShort, StyleStandard, StyleDetailed:
		return Style(s)
	default:
		return StyleStandard
	}
}

// Domain identifies one of the three evaluated teaching domains.
type Domain string

const (
	DomainCommunication Domain = "communication"
	DomainManagement    Domain = "management"
	DomainAssessment    Domain = "assessment"
)

// domainOrder is the declared tie-break order for strongest/weakest lookups.
var domainOrder = []Domain{DomainCommunication, DomainManagement, DomainAssessment}

// DisplayName returns the evaluator-facing domain label used in prompts,
// anchors, and fallback text.
func (d Domain) DisplayName() string {
	switch d {
	case DomainCommunication:
		return "Communication & instruction"
	case DomainManagement:
		return "Classroom management & learning environment"
	case DomainAssessment:
		return "Assessment & feedback practices"
	default:
		return "Instructional practice"
	}
}

// EvidenceItem is one normalized rated indicator. Rating is always present
// and within [1,5]; Comment may be empty.
type EvidenceItem struct {
	Category string  `json:"category"`
	Label    string  `json:"label"`
	Rating   float64 `json:"rating"`
	Comment  string  `json:"comment,omitempty"`
}

// HasComment reports whether the item carries a non-empty free-text comment.
func (e EvidenceItem) HasComment() bool {
	return trimmed(e.Comment) != ""
}

// Averages is the caller-supplied snapshot of per-domain rating averages.
// Values are never mutated; they are only banded.
type Averages struct {
	Communications float64 `json:"communications"`
	Management     float64 `json:"management"`
	Assessment     float64 `json:"assessment"`
	Overall        float64 `json:"overall"`
}

// Request is the structurally-valid generation request handed over by the
// transport layer. Ratings is the raw nested container; FlattenRatings turns
// it into evidence items.
type Request struct {
	FacultyName      string         `json:"faculty_name"`
	Department       string         `json:"department"`
	SubjectObserved  string         `json:"subject_observed"`
	ObservationType  string         `json:"observation_type"`
	Ratings          map[string]any `json:"ratings"`
	Averages         Averages       `json:"averages"`
	Strengths        string         `json:"strengths"`
	ImprovementAreas string         `json:"improvement_areas"`
	Recommendations  string         `json:"recommendations"`
	Style            string         `json:"style"`
	GenerationID     string         `json:"generation_id"`
}

// Result is the three-section narrative. Every section is non-empty and holds
// exactly TargetSentences sentences after normalization, on every path.
type Result struct {
	Strengths        string `json:"strengths"`
	ImprovementAreas string `json:"improvement_areas"`
	Recommendations  string `json:"recommendations"`
}

// PromptMode records which prompt strategy produced a backend call.
type PromptMode string

const (
	ModeEvidence    PromptMode = "evidence"
	ModeRatingsOnly PromptMode = "ratings_only"
	ModeRetry       PromptMode = "retry"
	ModeFallback    PromptMode = "fallback"
)

// Metadata is the optional debug payload attached to a response.
type Metadata struct {
	Mode          PromptMode `json:"mode"`
	Style         Style      `json:"style"`
	GenerationID  string     `json:"generation_id"`
	BackendCalls  int        `json:"backend_calls"`
	EmbeddingUsed bool       `json:"embedding_used"`
	FallbackUsed  bool       `json:"fallback_used"`
	EvidenceCount int        `json:"evidence_count"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   time.Time  `json:"completed_at"`
	DurationMS    int64      `json:"duration_ms"`
}

// Response is the pipeline output: a complete Result plus debug metadata.
type Response struct {
	Result
	Debug *Metadata `json:"debug,omitempty"`
}
