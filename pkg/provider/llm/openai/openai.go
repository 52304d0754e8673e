// Package openai provides an LLM provider for OpenAI-compatible chat
// completion servers such as Ollama's /v1 endpoint or a llama.cpp server.
package openai

import (
	"context"
	"fmt"
	"strings"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/MrWong99/arguebot/pkg/provider/llm"
)

// DefaultBaseURL is Ollama's OpenAI-compatible endpoint.
const DefaultBaseURL = "http://127.0.0.1:11434/v1"

// localAPIKey is sent when no key is configured. Local servers ignore it but
// the SDK requires a non-empty value.
const localAPIKey = "local"

// Provider implements llm.Provider using an OpenAI-compatible API.
type Provider struct {
	client  oai.Client
	baseURL string
}

// config holds optional configuration for the provider.
type config struct {
	apiKey string
}

// Option is a functional option for Provider.
type Option func(*config)

// WithAPIKey sets the bearer token for servers that require one.
func WithAPIKey(key string) Option {
	return func(c *config) {
		c.apiKey = key
	}
}

// New constructs a Provider talking to baseURL. An empty baseURL selects
// [DefaultBaseURL].
func New(baseURL string, opts ...Option) *Provider {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	cfg := &config{apiKey: localAPIKey}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.apiKey == "" {
		cfg.apiKey = localAPIKey
	}

	client := oai.NewClient(
		option.WithAPIKey(cfg.apiKey),
		option.WithBaseURL(baseURL),
	)
	return &Provider{client: client, baseURL: baseURL}
}

// BaseURL returns the endpoint this provider talks to.
func (p *Provider) BaseURL() string { return p.baseURL }

// Complete implements llm.Provider.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if strings.TrimSpace(req.Model) == "" {
		return nil, fmt.Errorf("openai: model must not be empty")
	}

	resp, err := p.client.Chat.Completions.New(ctx, buildParams(req))
	if err != nil {
		return nil, fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: empty choices in response")
	}

	return &llm.CompletionResponse{
		Content: strings.TrimSpace(resp.Choices[0].Message.Content),
		Usage: llm.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

// buildParams converts a CompletionRequest into OpenAI SDK params.
func buildParams(req llm.CompletionRequest) oai.ChatCompletionNewParams {
	var messages []oai.ChatCompletionMessageParamUnion

	if req.SystemPrompt != "" {
		messages = append(messages, oai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, oai.UserMessage(req.Prompt))

	params := oai.ChatCompletionNewParams{
		Model:    shared.ChatModel(req.Model),
		Messages: messages,
	}

	if req.Temperature != 0 {
		params.Temperature = param.NewOpt(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(int64(req.MaxTokens))
	}

	return params
}

// Ensure Provider implements llm.Provider at compile time.
var _ llm.Provider = (*Provider)(nil)
