// Package llm defines the Provider interface for the model runners that
// produce debate turns.
//
// A provider wraps a locally hosted model runner (the ollama CLI, Ollama's
// HTTP API, or any OpenAI-compatible server) and exposes a single blocking
// completion call. One provider instance serves both debaters; the model
// identifier travels with each request.
package llm

import "context"

// Usage holds token accounting information returned by the backend. Backends
// that cannot report usage (the exec runner) leave it zero.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionRequest carries everything a runner needs to produce one reply.
type CompletionRequest struct {
	// Model is the identifier the runner uses to select which local model to
	// load (e.g., "llama3", "mistral:7b").
	Model string

	// Prompt is the full text submitted to the model. For a debate this is the
	// entire transcript so far.
	Prompt string

	// SystemPrompt is an optional instruction sent ahead of Prompt. Backends
	// without a dedicated system channel prepend it to the prompt text.
	SystemPrompt string

	// Temperature controls output randomness. Zero means the backend default.
	Temperature float64

	// MaxTokens caps the number of generated tokens. Zero means the backend
	// default.
	MaxTokens int
}

// CompletionResponse is the full output of one completion.
type CompletionResponse struct {
	// Content is the generated text, trimmed of surrounding whitespace.
	Content string

	// Usage contains token accounting for this request/response pair.
	Usage Usage
}

// Provider is the abstraction over any model runner.
//
// Complete blocks until the runner has produced its full output. It returns
// an error when the runner fails (non-zero exit, HTTP error, empty choice
// list) or when ctx is cancelled.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
