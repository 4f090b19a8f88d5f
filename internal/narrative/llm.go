package narrative

import (
	"context"
	"errors"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const systemPrompt = "You are an academic classroom evaluation assistant. You write concise, professional narrative feedback grounded in the supplied ratings and observations, and you never invent facts."

// DefaultLLMModel is used when FEEDBACK_LLM_MODEL is unset.
const DefaultLLMModel = "claude-3-5-haiku-latest"

// SamplingParams are the backend-specific decoding controls the pipeline
// passes through. The backend treats them as hints.
type SamplingParams struct {
	MaxTokens   int64
	Temperature float64
}

// SamplingFor maps a narrative style to decoding limits. Short narratives get
// a tighter token budget so truncated rambling cannot masquerade as output.
func SamplingFor(style Style) SamplingParams {
	switch style {
	case StyleShort:
		return SamplingParams{MaxTokens: 360, Temperature: 0.6}
	case StyleDetailed:
		return SamplingParams{MaxTokens: 720, Temperature: 0.6}
	default:
		return SamplingParams{MaxTokens: 520, Temperature: 0.6}
	}
}

// TextGenerator is the generative backend contract. The pipeline treats the
// returned text as untrusted: it may be empty, truncated, unlabeled, or
// leak numeric scores, and the pipeline must cope with all of it.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, style Style) (string, error)
	ModelName() string
}

// AnthropicMessager is the slice of the Anthropic client the generator needs,
// kept as an interface so tests can substitute a stub.
type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicGenerator implements TextGenerator against the Anthropic API.
type AnthropicGenerator struct {
	messages AnthropicMessager
	model    string
}

// NewAnthropicGeneratorFromEnv builds a generator from ANTHROPIC_API_KEY and
// the optional FEEDBACK_LLM_MODEL override.
func NewAnthropicGeneratorFromEnv() (*AnthropicGenerator, error) {
	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not configured")
	}
	model := strings.TrimSpace(os.Getenv("FEEDBACK_LLM_MODEL"))
	if model == "" {
		model = DefaultLLMModel
	}
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicGenerator{messages: &c.Messages, model: model}, nil
}

// NewAnthropicGeneratorWithKey builds a generator from an explicit API key
// and model name, for callers that resolve configuration themselves.
func NewAnthropicGeneratorWithKey(apiKey, model string) (*AnthropicGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("anthropic api key is required")
	}
	if model == "" {
		model = DefaultLLMModel
	}
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicGenerator{messages: &c.Messages, model: model}, nil
}

// NewAnthropicGenerator wires an explicit messager, used by tests.
func NewAnthropicGenerator(messages AnthropicMessager, model string) *AnthropicGenerator {
	if model == "" {
		model = DefaultLLMModel
	}
	return &AnthropicGenerator{messages: messages, model: model}
}

func (a *AnthropicGenerator) ModelName() string { return a.model }

func (a *AnthropicGenerator) Generate(ctx context.Context, prompt string, style Style) (string, error) {
	params := SamplingFor(style)
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   params.MaxTokens,
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(params.Temperature),
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}

var _ TextGenerator = (*AnthropicGenerator)(nil)
