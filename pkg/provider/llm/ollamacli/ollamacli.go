// Package ollamacli provides an LLM provider that shells out to a local model
// runner executable, by default the ollama CLI.
//
// Each completion starts one process:
//
//	<path> run <model>
//
// The prompt is written to the process's standard input and the generated text
// is read from its standard output. The process exits once generation ends.
package ollamacli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/MrWong99/arguebot/pkg/provider/llm"
)

// DefaultPath is the runner executable used when none is configured.
const DefaultPath = "ollama"

// Provider implements llm.Provider by running a model-runner subprocess.
type Provider struct {
	path      string
	extraArgs []string
	env       []string
}

// Option is a functional option for Provider.
type Option func(*Provider)

// WithExtraArgs appends args after "run <model>" on every invocation
// (e.g., "--nowordwrap").
func WithExtraArgs(args ...string) Option {
	return func(p *Provider) {
		p.extraArgs = append(p.extraArgs, args...)
	}
}

// WithEnv adds KEY=VALUE pairs to the runner's environment. The runner
// otherwise inherits the environment of the current process.
func WithEnv(env ...string) Option {
	return func(p *Provider) {
		p.env = append(p.env, env...)
	}
}

// New constructs a Provider that invokes the executable at path. An empty path
// selects [DefaultPath].
func New(path string, opts ...Option) *Provider {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}
	p := &Provider{path: path}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Path returns the runner executable this provider invokes.
func (p *Provider) Path() string { return p.path }

// Complete implements llm.Provider.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		return nil, errors.New("ollamacli: model must not be empty")
	}

	args := append([]string{"run", model}, p.extraArgs...)
	cmd := exec.CommandContext(ctx, p.path, args...)
	cmd.Stdin = strings.NewReader(llm.FlattenPrompt(req))
	if len(p.env) > 0 {
		cmd.Env = append(cmd.Environ(), p.env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			// exec.CommandContext surfaces "signal: killed" instead of the cancellation.
			return nil, ctx.Err()
		}
		if errText := strings.TrimSpace(stderr.String()); errText != "" {
			return nil, fmt.Errorf("ollamacli: run %q: %w: %s", model, err, errText)
		}
		return nil, fmt.Errorf("ollamacli: run %q: %w", model, err)
	}

	return &llm.CompletionResponse{Content: strings.TrimSpace(stdout.String())}, nil
}

// Ensure Provider implements llm.Provider at compile time.
var _ llm.Provider = (*Provider)(nil)
