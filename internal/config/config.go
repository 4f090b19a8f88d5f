// Package config defines service configuration and its layered loading.
package config

import (
	"time"

	"github.com/adces/feedback-engine/internal/narrative"
)

// Config contains process configuration for the feedback service.
type Config struct {
	// Addr configures the HTTP listen address, e.g. ":8090".
	Addr string `koanf:"addr"`

	// LLMModel names the Anthropic model used for narrative generation.
	LLMModel string `koanf:"llm_model"`

	// EmbeddingModel names the Gemini embedding model used for evidence
	// selection. Selection degrades to the heuristic order when the
	// embedder is unavailable.
	EmbeddingModel string `koanf:"embedding_model"`

	// BackendTimeoutSec bounds each generation backend call.
	BackendTimeoutSec int `koanf:"backend_timeout_sec"`

	// MinNarrativeChars is the floor below which a raw backend response
	// is rejected.
	MinNarrativeChars int `koanf:"min_narrative_chars"`

	// MinSectionChars is the per-section floor after parsing.
	MinSectionChars int `koanf:"min_section_chars"`

	// Denylist overrides the built-in numeric-echo markers when non-empty.
	Denylist []string `koanf:"denylist"`

	// Thresholds are the rating band breakpoints.
	Thresholds narrative.Thresholds `koanf:"thresholds"`

	// FeedbackDBPath locates the SQLite feedback log.
	FeedbackDBPath string `koanf:"feedback_db_path"`

	// DebugEcho enables the /debug/echo endpoint and debug metadata in
	// generation responses.
	DebugEcho bool `koanf:"debug_echo"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Addr:              ":8090",
		LLMModel:          narrative.DefaultLLMModel,
		EmbeddingModel:    "gemini-embedding-001",
		BackendTimeoutSec: int(narrative.DefaultBackendTimeout / time.Second),
		MinNarrativeChars: narrative.MinNarrativeChars,
		MinSectionChars:   narrative.MinSectionChars,
		Thresholds:        narrative.DefaultThresholds(),
		FeedbackDBPath:    "feedback.db",
	}
}

// BackendTimeout returns the backend call bound as a duration.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutSec) * time.Second
}
