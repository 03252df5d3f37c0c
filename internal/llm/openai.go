package llm

import (
	"context"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/triplecheck/internal/util"
)

// ErrNoAPIKey is returned when the OpenAI provider has no credentials
var ErrNoAPIKey = errors.New("OpenAI API key is required")

// OpenAIProvider implements the Provider interface for OpenAI models
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, errors.WithHint(ErrNoAPIKey, "set llm.api_key or OPENAI_API_KEY")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		},
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks that the key is accepted by listing models
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// usesCompletionTokens reports whether the model takes max_completion_tokens
// instead of max_tokens. These models also reject a custom temperature.
func usesCompletionTokens(model string) bool {
	return strings.HasPrefix(model, "gpt-5")
}

func (p *OpenAIProvider) request(req GenerateRequest) openai.ChatCompletionRequest {
	model := pick(req.Model, p.config.Model, "gpt-5.2")
	maxTokens := pick(req.MaxTokens, p.config.MaxTokens, 4000)

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: pick(req.System, SystemPrompt)},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: pick(req.Temperature, p.config.Temperature),
	}
	if usesCompletionTokens(model) {
		chatReq.MaxCompletionTokens = maxTokens
		// reasoning models only accept the default temperature
		if chatReq.Temperature != 1 {
			chatReq.Temperature = 0
		}
	} else {
		chatReq.MaxTokens = maxTokens
	}
	return chatReq
}

// Generate runs a chat completion
func (p *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	chatReq := p.request(req)

	ctx, cancel := context.WithTimeout(ctx, p.config.timeout(DefaultConfig().Timeout))
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, errors.Wrap(err, "OpenAI API error")
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	return &GenerateResponse{
		Text:       strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:      pick(resp.Model, chatReq.Model),
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
