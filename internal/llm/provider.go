package llm

import (
	"context"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/ppiankov/triplecheck/internal/model"
)

// SystemPrompt frames the model as an ontology-aware annotator
const SystemPrompt = "You are an expert annotator of Ancient Greek tragedies and an ontology-aware triple extractor."

// PassagePlaceholder is replaced by the verse texts in a prompt template
const PassagePlaceholder = "{{ INSERT PASSAGE HERE }}"

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate returns the model's completion for a prompt
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// GenerateRequest contains the input for one completion
type GenerateRequest struct {
	// System overrides SystemPrompt when set
	System string

	Prompt string

	// Model, Temperature and MaxTokens fall back to the provider config
	Model       string
	Temperature float32
	MaxTokens   int
}

// GenerateResponse contains the model output
type GenerateResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	Model   string
	APIKey  string
	BaseURL string

	Timeout     time.Duration
	Temperature float32
	MaxTokens   int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns the generation defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "openai",
		Model:       "gpt-5.2",
		Timeout:     5 * time.Minute,
		Temperature: 0.3,
		MaxTokens:   4000,
	}
}

// ConfigFromModel converts the application config. The API key falls back
// to OPENAI_API_KEY.
func ConfigFromModel(llmCfg model.LLMConfig, httpCfg model.HTTPConfig) Config {
	key := llmCfg.APIKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	return Config{
		Provider:    llmCfg.Provider,
		Model:       llmCfg.Model,
		APIKey:      key,
		BaseURL:     llmCfg.BaseURL,
		Timeout:     llmCfg.Timeout,
		Temperature: llmCfg.Temperature,
		MaxTokens:   llmCfg.MaxTokens,
		HTTPProxy:   httpCfg.HTTPProxy,
		HTTPSProxy:  httpCfg.HTTPSProxy,
		NoProxy:     httpCfg.NoProxy,
	}
}

// BuildPrompt inserts the English and Greek texts into template
func BuildPrompt(template, greek, english string) string {
	passage := strings.TrimSpace(english) + "\n\n[Ancient Greek]\n" + strings.TrimSpace(greek)
	return strings.ReplaceAll(template, PassagePlaceholder, passage)
}

var (
	turtleFence = regexp.MustCompile("(?s)```(?:turtle|ttl)?\\s*\\n(.*?)\\n```")
	plainFence  = regexp.MustCompile("(?s)```\\s*\\n(.*?)\\n```")
)

// ExtractTriples strips a markdown code fence from a model response. The
// first fenced block wins; text without a fence is returned trimmed.
func ExtractTriples(response string) string {
	text := response
	if strings.Contains(text, "```") {
		if m := turtleFence.FindStringSubmatch(text); m != nil {
			text = m[1]
		} else if m := plainFence.FindStringSubmatch(text); m != nil {
			text = m[1]
		}
	}
	return strings.TrimSpace(text)
}

func (c Config) timeout(fallback time.Duration) time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return fallback
}

func pick[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
