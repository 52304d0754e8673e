package debate

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MrWong99/arguebot/internal/observe"
	"github.com/MrWong99/arguebot/pkg/provider/llm"
)

// Invoker submits prompts to a model provider and never fails: errors are
// logged and yield the empty string.
type Invoker struct {
	// Provider executes the model. Must not be nil.
	Provider llm.Provider

	// Metrics is optional. When nil, nothing is recorded.
	Metrics *observe.Metrics

	// SystemPrompt, Temperature and MaxTokens are passed through to the
	// provider with every call.
	SystemPrompt string
	Temperature  float64
	MaxTokens    int

	// Timeout bounds a single call. Zero leaves the call bounded only by the
	// caller's context.
	Timeout time.Duration
}

// Invoke sends prompt to model and returns the trimmed output. Any provider
// error, including a call running out of time, is logged and yields "".
func (inv *Invoker) Invoke(ctx context.Context, model, prompt string) string {
	callCtx := ctx
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	resp, err := inv.Provider.Complete(callCtx, llm.CompletionRequest{
		Model:        model,
		Prompt:       prompt,
		SystemPrompt: inv.SystemPrompt,
		Temperature:  inv.Temperature,
		MaxTokens:    inv.MaxTokens,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ""
		}
		log := observe.Logger(ctx)
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			log.Error("model invocation timed out", "model", model, "timeout", inv.Timeout, "err", err)
		} else {
			log.Error("model invocation failed", "model", model, "err", err)
		}
		if inv.Metrics != nil {
			inv.Metrics.RecordProviderRequest(ctx, model, "error")
			inv.Metrics.RecordProviderError(ctx, model)
		}
		return ""
	}
	if inv.Metrics != nil {
		inv.Metrics.RecordProviderRequest(ctx, model, "ok")
		inv.Metrics.RecordProviderTokens(ctx, model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	}
	return strings.TrimSpace(resp.Content)
}
