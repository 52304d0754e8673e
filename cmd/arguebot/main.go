// Command arguebot runs an endless debate between two locally hosted
// language models.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel"

	"github.com/MrWong99/arguebot/internal/app"
	"github.com/MrWong99/arguebot/internal/config"
	"github.com/MrWong99/arguebot/internal/observe"
	"github.com/MrWong99/arguebot/pkg/provider/llm"
	"github.com/MrWong99/arguebot/pkg/provider/llm/anyllm"
	"github.com/MrWong99/arguebot/pkg/provider/llm/ollamacli"
	"github.com/MrWong99/arguebot/pkg/provider/llm/openai"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "arguebot: %v\n", err)
		return 1
	}
	return 0
}

// flags holds the raw command-line values. Only flags the user set override
// the config file.
type flags struct {
	configPath       string
	modelA           string
	modelB           string
	metaPromptFile   string
	perspectiveAFile string
	perspectiveBFile string
	backend          string
	runner           string
	baseURL          string
	opening          string
	typewriter       string
	logLevel         string
	metricsAddr      string
}

func newRootCmd() *cobra.Command {
	var f *flags
	cmd := &cobra.Command{
		Use:   "arguebot",
		Short: "Let two local language models debate each other",
		Long: "arguebot frames a debate with a meta prompt and two perspectives, asks for\n" +
			"an opening argument and lets Model A and Model B answer each other until\n" +
			"interrupted with Ctrl+C.",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDebate(cmd.Context(), cmd.Flags(), f)
		},
	}
	f = bindFlags(cmd.Flags())
	return cmd
}

// bindFlags defines the command-line flags on fs with the config defaults.
func bindFlags(fs *pflag.FlagSet) *flags {
	f := &flags{}
	d := config.Default()
	fs.StringVar(&f.configPath, "config", "", "optional YAML configuration file (watched for log level and typewriter changes)")
	fs.StringVar(&f.modelA, "model-a", d.Debate.ModelA, "model identifier for Model A")
	fs.StringVar(&f.modelB, "model-b", d.Debate.ModelB, "model identifier for Model B")
	fs.StringVar(&f.metaPromptFile, "meta-prompt-file", d.Debate.MetaPromptFile, "meta prompt file")
	fs.StringVar(&f.perspectiveAFile, "perspective-a-file", d.Debate.PerspectiveAFile, "perspective file for Model A")
	fs.StringVar(&f.perspectiveBFile, "perspective-b-file", d.Debate.PerspectiveBFile, "perspective file for Model B")
	fs.StringVar(&f.backend, "backend", string(d.Runner.Backend), "model backend: exec, ollama-http, openai-compat, llamacpp, llamafile")
	fs.StringVar(&f.runner, "runner", d.Runner.Path, "runner executable for the exec backend")
	fs.StringVar(&f.baseURL, "base-url", "", "server URL for the HTTP backends")
	fs.StringVar(&f.opening, "opening", "", "opening argument; skips the interactive prompt")
	fs.StringVar(&f.typewriter, "typewriter", string(d.Typewriter.Mode), "typewriter effect: auto, on, off")
	fs.StringVar(&f.logLevel, "log-level", string(d.LogLevel), "log level: debug, info, warn, error")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "serve /metrics, /healthz and /readyz on this address")
	return f
}

func runDebate(ctx context.Context, fs *pflag.FlagSet, f *flags) error {
	// ── Configuration ─────────────────────────────────────────────────────────
	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return err
	}
	f.apply(fs, cfg)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	level := new(slog.LevelVar)
	level.Set(app.SlogLevel(cfg.LogLevel))
	slog.SetDefault(newLogger(level))

	slog.Info("arguebot starting",
		"version", version,
		"config", f.configPath,
		"backend", cfg.Runner.Backend,
		"model_a", cfg.Debate.ModelA,
		"model_b", cfg.Debate.ModelB,
	)

	// ── Telemetry ─────────────────────────────────────────────────────────────
	metrics := observe.DefaultMetrics()
	if cfg.Observe.MetricsAddr != "" {
		shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
		if err != nil {
			return fmt.Errorf("init telemetry: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Warn("telemetry shutdown error", "err", err)
			}
		}()
		if metrics, err = observe.NewMetrics(otel.GetMeterProvider()); err != nil {
			return fmt.Errorf("create metrics: %w", err)
		}
	}

	// ── Backend ───────────────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinBackends(reg)
	provider, err := reg.CreateProvider(cfg.Runner)
	if err != nil {
		return err
	}

	application, err := app.New(cfg, provider,
		app.WithLevelVar(level),
		app.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	// ── Config hot reload ─────────────────────────────────────────────────────
	if f.configPath != "" {
		w, err := config.NewWatcher(f.configPath, application.ApplyConfig,
			config.WithOverrides(func(c *config.Config) { f.apply(fs, c) }),
		)
		if err != nil {
			return err
		}
		defer w.Stop()
	}

	slog.Info("debate running, press Ctrl+C to stop", "debate_id", application.DebateID())

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("debate stopped", "debate_id", application.DebateID())
	return nil
}

// loadConfig reads the config file at path, or returns the defaults when
// path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file %q not found", path)
	}
	return cfg, err
}

// apply copies every flag the user set explicitly into cfg.
func (f *flags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	set := func(name string, dst *string, val string) {
		if fs.Changed(name) {
			*dst = val
		}
	}
	set("model-a", &cfg.Debate.ModelA, f.modelA)
	set("model-b", &cfg.Debate.ModelB, f.modelB)
	set("meta-prompt-file", &cfg.Debate.MetaPromptFile, f.metaPromptFile)
	set("perspective-a-file", &cfg.Debate.PerspectiveAFile, f.perspectiveAFile)
	set("perspective-b-file", &cfg.Debate.PerspectiveBFile, f.perspectiveBFile)
	set("runner", &cfg.Runner.Path, f.runner)
	set("base-url", &cfg.Runner.BaseURL, f.baseURL)
	set("opening", &cfg.Debate.Opening, f.opening)
	set("metrics-addr", &cfg.Observe.MetricsAddr, f.metricsAddr)
	if fs.Changed("backend") {
		cfg.Runner.Backend = config.Backend(f.backend)
	}
	if fs.Changed("typewriter") {
		cfg.Typewriter.Mode = config.TypewriterMode(f.typewriter)
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = config.LogLevel(f.logLevel)
	}
}

// ── Backend wiring ────────────────────────────────────────────────────────────

// registerBuiltinBackends wires the built-in backend factories into reg.
func registerBuiltinBackends(reg *config.Registry) {
	reg.Register(config.BackendExec, func(rc config.RunnerConfig) (llm.Provider, error) {
		return ollamacli.New(rc.Path,
			ollamacli.WithExtraArgs(rc.Args...),
			ollamacli.WithEnv(rc.Env...),
		), nil
	})

	for backend, server := range app.AnyLLMServers {
		reg.Register(backend, func(rc config.RunnerConfig) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if rc.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(rc.BaseURL))
			}
			if rc.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(rc.APIKey))
			}
			return anyllm.New(server, opts...)
		})
	}

	reg.Register(config.BackendOpenAICompat, func(rc config.RunnerConfig) (llm.Provider, error) {
		var opts []openai.Option
		if rc.APIKey != "" {
			opts = append(opts, openai.WithAPIKey(rc.APIKey))
		}
		return openai.New(rc.BaseURL, opts...), nil
	})

	for _, b := range reg.Backends() {
		slog.Debug("registered backend", "backend", b)
	}
}

// ── Logger ────────────────────────────────────────────────────────────────────

func newLogger(level slog.Leveler) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
