package narrative

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/adces/feedback-engine/internal/embedding"
)

// genState tracks progress through the retry/fallback cascade. Accepted and
// Fallback are terminal; Fallback always succeeds.
type genState int

const (
	stateInitial genState = iota
	stateRetrying
	stateAccepted
	stateFallback
)

// Config carries the tunable pipeline constants. Zero values resolve to the
// package defaults.
type Config struct {
	BackendTimeout  time.Duration
	MinChars        int
	MinSectionChars int
	Denylist        []string
	Thresholds      Thresholds
}

func (c Config) withDefaults() Config {
	if c.BackendTimeout <= 0 {
		c.BackendTimeout = DefaultBackendTimeout
	}
	if c.MinChars <= 0 {
		c.MinChars = MinNarrativeChars
	}
	if c.MinSectionChars <= 0 {
		c.MinSectionChars = MinSectionChars
	}
	if c.Denylist == nil {
		c.Denylist = DefaultDenylist
	}
	if c.Thresholds == (Thresholds{}) {
		c.Thresholds = DefaultThresholds()
	}
	return c
}

// Pipeline runs one generation request end to end. The generator and embedder
// are process-wide shared singletons; everything else is request-local.
type Pipeline struct {
	generator TextGenerator
	embedder  embedding.Embedder
	fallback  *TemplateGenerator
	validator Validator
	cfg       Config
}

// NewPipeline wires a pipeline. The embedder may be nil; the evidence
// selector then always uses its deterministic ordering.
func NewPipeline(generator TextGenerator, embedder embedding.Embedder, cfg Config) *Pipeline {
	cfg = cfg.withDefaults()
	return &Pipeline{
		generator: generator,
		embedder:  embedder,
		fallback:  NewTemplateGenerator(cfg.Thresholds),
		validator: NewValidator(cfg.MinChars, cfg.Denylist),
		cfg:       cfg,
	}
}

// Run executes the cascade: compose, generate, validate, retry once with the
// strict prompt, parse, validate again, and fall back to the template
// generator when everything else is rejected. It always returns a complete,
// normalized three-section result; the error return is reserved for
// programming defects and is nil in every expected runtime condition.
func (p *Pipeline) Run(ctx context.Context, req Request) (Response, error) {
	started := time.Now()
	req.Style = string(NormalizeStyle(req.Style))
	if trimmed(req.GenerationID) == "" {
		req.GenerationID = uuid.NewString()
	}

	items := FlattenRatings(req.Ratings)
	selected, embedded := SelectEvidence(ctx, p.embedder, items, MaxEvidenceFragments)
	evidenceMode := AnyComments(items)

	meta := &Metadata{
		Style:         Style(req.Style),
		GenerationID:  req.GenerationID,
		EmbeddingUsed: embedded,
		EvidenceCount: len(items),
		StartedAt:     started,
	}
	if evidenceMode {
		meta.Mode = ModeEvidence
	} else {
		meta.Mode = ModeRatingsOnly
	}

	// Digit output is tolerated only when real comments may legitimately
	// cite numbers; ratings-only output must stay number-free.
	forbidDigits := !evidenceMode

	result, state := p.generateAndValidate(ctx, req, selected, evidenceMode, forbidDigits, meta)

	// The template result doubles as the padding source for sentence
	// normalization, so both paths share one evaluative stance.
	template := p.fallback.Generate(req, items)
	if state == stateFallback {
		meta.Mode = ModeFallback
		meta.FallbackUsed = true
		result = template
	}
	final := NormalizeResult(result, template)

	meta.CompletedAt = time.Now()
	meta.DurationMS = meta.CompletedAt.Sub(started).Milliseconds()
	log.Printf("narrative generate_done mode=%s style=%s backend_calls=%d fallback=%t elapsed_ms=%d",
		meta.Mode, meta.Style, meta.BackendCalls, meta.FallbackUsed, meta.DurationMS)

	return Response{Result: final, Debug: meta}, nil
}

// generateAndValidate walks the Initial -> Retrying -> Fallback states,
// making at most two backend calls. Transport failures and timeouts take the
// same transition as validation failures.
func (p *Pipeline) generateAndValidate(ctx context.Context, req Request, selected []EvidenceItem, evidenceMode, forbidDigits bool, meta *Metadata) (Result, genState) {
	if p.generator == nil {
		return Result{}, stateFallback
	}

	var prompt string
	if evidenceMode {
		fragments := make([]string, 0, len(selected))
		for _, it := range selected {
			fragments = append(fragments, it.Fragment())
		}
		prompt = BuildEvidencePrompt(req, fragments)
	} else {
		prompt = BuildRatingsOnlyPrompt(req, p.cfg.Thresholds)
	}

	raw, ok := p.callBackend(ctx, prompt, req, meta)
	if !ok || p.validator.IsBad(raw, forbidDigits) {
		// Initial -> Retrying: one stricter attempt, bounding worst-case
		// latency to two backend calls.
		log.Printf("narrative generate_retry reason=%s", retryReason(ok))
		raw, ok = p.callBackend(ctx, BuildRetryPrompt(req, p.cfg.Thresholds), req, meta)
		if !ok || p.validator.IsBad(raw, forbidDigits) {
			return Result{}, stateFallback
		}
	}

	parsed := ParseSections(raw)
	if p.validator.IsBad(Recombine(parsed), forbidDigits) || SectionsTooShort(parsed, p.cfg.MinSectionChars) {
		return Result{}, stateFallback
	}
	return parsed, stateAccepted
}

func (p *Pipeline) callBackend(ctx context.Context, prompt string, req Request, meta *Metadata) (string, bool) {
	callCtx, cancel := context.WithTimeout(ctx, p.cfg.BackendTimeout)
	defer cancel()

	meta.BackendCalls++
	raw, err := p.generator.Generate(callCtx, prompt, Style(req.Style))
	if err != nil {
		log.Printf("narrative backend_error call=%d err=%q", meta.BackendCalls, err.Error())
		return "", false
	}
	return raw, true
}

func retryReason(transportOK bool) string {
	if !transportOK {
		return "transport"
	}
	return "validation"
}
