// Package mock provides a test double for the llm.Provider interface.
//
// Use Provider in unit tests to verify which model identifiers the debate loop
// asks for, in which order, and with which transcript, without a live model
// runner.
//
// Example:
//
//	p := &mock.Provider{
//	    Replies: map[string][]string{"llama3": {"First. Second. Third."}},
//	}
//	resp, err := p.Complete(ctx, llm.CompletionRequest{Model: "llama3"})
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/arguebot/pkg/provider/llm"
)

// CompleteCall records a single invocation of Complete.
type CompleteCall struct {
	// Ctx is the context passed to Complete.
	Ctx context.Context
	// Req is the CompletionRequest passed to Complete.
	Req llm.CompletionRequest
}

// Provider is a mock implementation of llm.Provider.
//
// Replies are consumed per model identifier in order; once a model's queue is
// exhausted its last reply is repeated. A model without replies receives
// DefaultReply.
type Provider struct {
	mu sync.Mutex

	// Replies maps a model identifier to the queue of replies it produces.
	Replies map[string][]string

	// DefaultReply is returned for models without queued replies.
	DefaultReply string

	// Usage is reported with every reply.
	Usage llm.Usage

	// Errs maps a model identifier to an error returned instead of a reply.
	Errs map[string]error

	// OnComplete, if set, is called after each call has been recorded and
	// before Complete returns. Tests use it to cancel the run context after a
	// fixed number of turns.
	OnComplete func(call int, req llm.CompletionRequest)

	// CompleteCalls records every invocation of Complete in order.
	CompleteCalls []CompleteCall

	served map[string]int
}

// Complete records the call and returns the next scripted reply for req.Model.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	p.CompleteCalls = append(p.CompleteCalls, CompleteCall{Ctx: ctx, Req: req})
	n := len(p.CompleteCalls)
	err := p.Errs[req.Model]
	reply := p.nextReply(req.Model)
	usage := p.Usage
	hook := p.OnComplete
	p.mu.Unlock()

	if hook != nil {
		hook(n, req)
	}
	if err != nil {
		return nil, err
	}
	return &llm.CompletionResponse{Content: reply, Usage: usage}, nil
}

// nextReply pops the next reply for model. Must be called with p.mu held.
func (p *Provider) nextReply(model string) string {
	queue := p.Replies[model]
	if len(queue) == 0 {
		return p.DefaultReply
	}
	if p.served == nil {
		p.served = make(map[string]int)
	}
	i := p.served[model]
	if i >= len(queue) {
		return queue[len(queue)-1]
	}
	p.served[model] = i + 1
	return queue[i]
}

// Models returns the model identifier of every recorded call, in order.
func (p *Provider) Models() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.CompleteCalls))
	for i, c := range p.CompleteCalls {
		out[i] = c.Req.Model
	}
	return out
}

// Ensure Provider implements llm.Provider at compile time.
var _ llm.Provider = (*Provider)(nil)
