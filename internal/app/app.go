// Package app wires the arguebot subsystems into a running application.
//
// The App struct owns the full lifecycle: New builds the debate, the
// presenter and the optional observability server from a config, Run drives
// them until the context ends, and ApplyConfig takes live config changes.
//
// For testing, inject I/O and timing through functional options (WithStdin,
// WithStdout, WithSleep, ...).
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/arguebot/internal/config"
	"github.com/MrWong99/arguebot/internal/debate"
	"github.com/MrWong99/arguebot/internal/health"
	"github.com/MrWong99/arguebot/internal/observe"
	"github.com/MrWong99/arguebot/internal/present"
	"github.com/MrWong99/arguebot/pkg/provider/llm"
	"github.com/MrWong99/arguebot/pkg/provider/llm/anyllm"
	"github.com/MrWong99/arguebot/pkg/provider/llm/openai"
)

// shutdownTimeout bounds the observability server's graceful shutdown.
const shutdownTimeout = 5 * time.Second

// App owns the debate and the optional observability server.
type App struct {
	cfg      *config.Config
	provider llm.Provider

	stdin          io.Reader
	stdout         io.Writer
	sleep          func(context.Context, time.Duration) error
	level          *slog.LevelVar
	metrics        *observe.Metrics
	prompts        *config.Prompts
	metricsHandler http.Handler
	listener       net.Listener

	typewriter *present.Typewriter
	debate     *debate.Debate
	server     *http.Server
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithStdin sets where the opening argument is read from. Default: os.Stdin.
func WithStdin(r io.Reader) Option {
	return func(a *App) { a.stdin = r }
}

// WithStdout sets where the debate is printed. Default: os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(a *App) { a.stdout = w }
}

// WithSleep replaces the context-aware sleep used for the turn pause and the
// typewriter.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(a *App) { a.sleep = fn }
}

// WithLevelVar sets the log level variable adjusted on live reloads.
func WithLevelVar(lv *slog.LevelVar) Option {
	return func(a *App) { a.level = lv }
}

// WithMetrics injects the metric instruments. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithPrompts injects the framing texts instead of reading the prompt files.
func WithPrompts(p config.Prompts) Option {
	return func(a *App) { a.prompts = &p }
}

// WithMetricsHandler replaces the /metrics handler. Default: promhttp.Handler().
func WithMetricsHandler(h http.Handler) Option {
	return func(a *App) { a.metricsHandler = h }
}

// WithListener serves the observability endpoint on l instead of listening
// on observe.metrics_addr.
func WithListener(l net.Listener) Option {
	return func(a *App) { a.listener = l }
}

// New creates an App for cfg using provider for both debaters.
func New(cfg *config.Config, provider llm.Provider, opts ...Option) (*App, error) {
	a := &App{
		cfg:      cfg,
		provider: provider,
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		sleep:    present.Sleep,
	}
	for _, o := range opts {
		o(a)
	}
	if a.level == nil {
		a.level = new(slog.LevelVar)
		a.level.Set(SlogLevel(cfg.LogLevel))
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}
	if a.metricsHandler == nil {
		a.metricsHandler = promhttp.Handler()
	}

	prompts := a.prompts
	if prompts == nil {
		p := config.LoadPrompts(cfg.Debate)
		prompts = &p
	}

	a.typewriter = present.New(a.stdout,
		present.WithSettings(TypewriterSettings(cfg.Typewriter, a.stdout)),
		present.WithSleep(a.sleep),
	)

	d, err := debate.New(debate.Config{
		Provider:      provider,
		Presenter:     a.typewriter,
		A:             debate.Debater{Label: debate.LabelA, Model: cfg.Debate.ModelA, Perspective: prompts.PerspectiveA},
		B:             debate.Debater{Label: debate.LabelB, Model: cfg.Debate.ModelB, Perspective: prompts.PerspectiveB},
		Meta:          prompts.Meta,
		Opening:       cfg.Debate.Opening,
		Input:         a.stdin,
		TurnPause:     cfg.Debate.TurnPause,
		Shape:         debate.ShapeOptions{MaxSentences: cfg.Debate.MaxSentences},
		SystemPrompt:  cfg.Debate.SystemPrompt,
		Temperature:   cfg.Runner.Temperature,
		MaxTokens:     cfg.Runner.MaxTokens,
		TurnTimeout:   cfg.Runner.Timeout,
		ContextWindow: cfg.Runner.ContextWindow,
		Metrics:       a.metrics,
		Sleep:         a.sleep,
	})
	if err != nil {
		return nil, fmt.Errorf("app: create debate: %w", err)
	}
	a.debate = d

	if cfg.Observe.MetricsAddr != "" || a.listener != nil {
		a.server = &http.Server{
			Addr:              cfg.Observe.MetricsAddr,
			Handler:           a.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return a, nil
}

// DebateID returns the identifier of the debate run.
func (a *App) DebateID() string { return a.debate.ID() }

// Handler returns the observability router: /metrics, /healthz and /readyz.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(observe.Middleware(a.metrics))
	r.Method(http.MethodGet, "/metrics", a.metricsHandler)
	health.New(RunnerChecker(a.cfg.Runner)).Register(r)
	return r
}

// Run drives the debate and, when configured, the observability server
// until ctx is done or either of them fails. A debate stopped by ctx
// returns ctx.Err(); callers treat [context.Canceled] as a clean stop.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	if a.server != nil {
		ln := a.listener
		if ln == nil {
			var err error
			if ln, err = net.Listen("tcp", a.server.Addr); err != nil {
				return fmt.Errorf("app: listen on %q: %w", a.server.Addr, err)
			}
		}
		slog.Info("observability endpoint listening", "addr", ln.Addr().String())

		g.Go(func() error {
			if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("app: serve observability endpoint: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return a.server.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		return a.debate.Run(gctx)
	})

	return g.Wait()
}

// ApplyConfig applies the live-reloadable part of a config change: the log
// level and the typewriter settings. Other changes are logged as requiring a
// restart.
func (a *App) ApplyConfig(d config.ConfigDiff) {
	if d.LogLevelChanged {
		a.level.Set(SlogLevel(d.NewLogLevel))
		slog.Info("log level changed", "level", d.NewLogLevel)
	}
	if d.TypewriterChanged {
		a.typewriter.SetSettings(TypewriterSettings(d.NewTypewriter, a.stdout))
		slog.Info("typewriter settings changed", "mode", d.NewTypewriter.Mode)
	}
	if len(d.RestartRequired) > 0 {
		slog.Warn("config changes take effect after restart", "settings", d.RestartRequired)
	}
}

// SlogLevel maps a config log level to its slog level. Unknown values map
// to info.
func SlogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// TypewriterSettings converts config timings to presenter settings. In
// auto mode, animation is enabled only when out is a terminal.
func TypewriterSettings(tc config.TypewriterConfig, out io.Writer) present.Settings {
	animate := false
	switch tc.Mode {
	case config.TypewriterOn:
		animate = true
	case config.TypewriterAuto, "":
		animate = present.IsTerminal(out)
	}
	return present.Settings{
		Animate:       animate,
		CharDelay:     tc.CharDelay,
		FastCharDelay: tc.FastCharDelay,
		LineDelay:     tc.LineDelay,
	}
}

// AnyLLMServers maps the backends served through any-llm-go to their server
// kind.
var AnyLLMServers = map[config.Backend]string{
	config.BackendOllamaHTTP: anyllm.ServerOllama,
	config.BackendLlamaCpp:   anyllm.ServerLlamaCpp,
	config.BackendLlamafile:  anyllm.ServerLlamafile,
}

// RunnerChecker returns the readiness check for the configured backend: the
// runner executable for exec, the server endpoint for the HTTP backends.
func RunnerChecker(rc config.RunnerConfig) health.Checker {
	switch rc.Backend {
	case config.BackendOllamaHTTP, config.BackendLlamaCpp, config.BackendLlamafile:
		url := rc.BaseURL
		if url == "" {
			url = anyllm.DefaultURL(AnyLLMServers[rc.Backend])
		}
		return health.EndpointChecker("runner", url, nil)
	case config.BackendOpenAICompat:
		url := rc.BaseURL
		if url == "" {
			url = openai.DefaultBaseURL
		}
		return health.EndpointChecker("runner", url, nil)
	default:
		return health.ExecutableChecker("runner", rc.Path)
	}
}
