package llm

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// NewProvider creates a provider from configuration. An empty provider name
// disables generation and returns nil.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)
	case "ollama":
		return NewOllamaProvider(config)
	case "":
		return nil, nil
	default:
		return nil, errors.Newf("unknown LLM provider: %s (supported: openai, ollama)", config.Provider)
	}
}
