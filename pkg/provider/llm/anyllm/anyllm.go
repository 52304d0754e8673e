// Package anyllm provides an LLM provider for locally hosted model servers,
// backed by github.com/mozilla-ai/any-llm-go.
//
// It is the HTTP alternative to the ollamacli runner: instead of starting one
// process per turn, each completion is a request to a long-running server.
//
// Usage:
//
//	p, err := anyllm.New("ollama", anyllmlib.WithBaseURL("http://127.0.0.1:11434"))
//	resp, err := p.Complete(ctx, llm.CompletionRequest{Model: "llama3", Prompt: transcript})
package anyllm

import (
	"context"
	"fmt"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/llamacpp"
	"github.com/mozilla-ai/any-llm-go/providers/llamafile"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"

	"github.com/MrWong99/arguebot/pkg/provider/llm"
)

// Server kinds accepted by [New].
const (
	ServerOllama    = "ollama"
	ServerLlamaCpp  = "llamacpp"
	ServerLlamafile = "llamafile"
)

// SupportedServers lists the server kinds accepted by [New].
var SupportedServers = []string{ServerOllama, ServerLlamaCpp, ServerLlamafile}

// defaultURLs holds where each server kind listens unless configured
// otherwise.
var defaultURLs = map[string]string{
	ServerOllama:    "http://localhost:11434",
	ServerLlamaCpp:  "http://127.0.0.1:8080",
	ServerLlamafile: "http://127.0.0.1:8080",
}

// DefaultURL returns the usual local address of the given server kind, or ""
// for an unknown kind.
func DefaultURL(server string) string {
	return defaultURLs[strings.ToLower(server)]
}

// Provider implements llm.Provider by wrapping github.com/mozilla-ai/any-llm-go.
type Provider struct {
	backend anyllmlib.Provider
	server  string
}

// New creates a new Provider for the given local server kind.
//
// server is one of: "ollama", "llamacpp", "llamafile".
//
// opts are any-llm-go configuration options (e.g., anyllmlib.WithBaseURL).
// Without a base URL each server kind connects to its usual local default
// (see [DefaultURL]).
func New(server string, opts ...anyllmlib.Option) (*Provider, error) {
	if server == "" {
		return nil, fmt.Errorf("anyllm: server must not be empty")
	}

	backend, err := createBackend(server, opts...)
	if err != nil {
		return nil, fmt.Errorf("anyllm: create %q backend: %w", server, err)
	}

	return &Provider{backend: backend, server: strings.ToLower(server)}, nil
}

// Server returns the server kind this provider talks to.
func (p *Provider) Server() string { return p.server }

// createBackend creates the underlying any-llm-go provider for the given server kind.
func createBackend(server string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch strings.ToLower(server) {
	case ServerOllama:
		return ollama.New(opts...)
	case ServerLlamaCpp:
		return llamacpp.New(opts...)
	case ServerLlamafile:
		return llamafile.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported server %q; supported: %s", server, strings.Join(SupportedServers, ", "))
	}
}

// Complete implements llm.Provider.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if strings.TrimSpace(req.Model) == "" {
		return nil, fmt.Errorf("anyllm: model must not be empty")
	}

	resp, err := p.backend.Completion(ctx, buildParams(req))
	if err != nil {
		return nil, fmt.Errorf("anyllm: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("anyllm: empty choices in response")
	}

	result := &llm.CompletionResponse{
		Content: strings.TrimSpace(resp.Choices[0].Message.ContentString()),
	}
	if resp.Usage != nil {
		result.Usage = llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	return result, nil
}

// buildParams converts our CompletionRequest into anyllm CompletionParams.
// The transcript travels as a single user message.
func buildParams(req llm.CompletionRequest) anyllmlib.CompletionParams {
	var messages []anyllmlib.Message

	if req.SystemPrompt != "" {
		messages = append(messages, anyllmlib.Message{
			Role:    anyllmlib.RoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, anyllmlib.Message{
		Role:    "user",
		Content: req.Prompt,
	})

	params := anyllmlib.CompletionParams{
		Model:    req.Model,
		Messages: messages,
	}

	if req.Temperature != 0 {
		t := req.Temperature
		params.Temperature = &t
	}
	if req.MaxTokens > 0 {
		mt := req.MaxTokens
		params.MaxTokens = &mt
	}

	return params
}

// Ensure Provider implements llm.Provider at compile time.
var _ llm.Provider = (*Provider)(nil)
