package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config] with defaults applied. It is a convenience wrapper around
// [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults and validates
// the result. Unknown keys are rejected. An empty document yields the
// defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	cfg.ApplyDefaults()
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	// Debate
	if cfg.Debate.ModelA == "" {
		errs = append(errs, errors.New("debate.model_a is required"))
	}
	if cfg.Debate.ModelB == "" {
		errs = append(errs, errors.New("debate.model_b is required"))
	}
	if cfg.Debate.TurnPause < 0 {
		errs = append(errs, fmt.Errorf("debate.turn_pause %s must not be negative", cfg.Debate.TurnPause))
	}
	if cfg.Debate.MaxSentences < 0 {
		errs = append(errs, fmt.Errorf("debate.max_sentences %d must be positive", cfg.Debate.MaxSentences))
	}
	if cfg.Debate.ModelA != "" && cfg.Debate.ModelA == cfg.Debate.ModelB {
		slog.Debug("both debaters use the same model", "model", cfg.Debate.ModelA)
	}

	// Runner
	if cfg.Runner.Backend != "" && !cfg.Runner.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("runner.backend %q is invalid; valid values: %s", cfg.Runner.Backend, backendList()))
	}
	if cfg.Runner.Backend == BackendExec && cfg.Runner.Path == "" {
		errs = append(errs, errors.New("runner.path is required when backend is exec"))
	}
	if cfg.Runner.Backend == BackendExec && cfg.Runner.BaseURL != "" {
		slog.Warn("runner.base_url is ignored by the exec backend", "base_url", cfg.Runner.BaseURL)
	}
	if cfg.Runner.Backend != BackendExec && len(cfg.Runner.Args) > 0 {
		slog.Warn("runner.args are only used by the exec backend", "backend", cfg.Runner.Backend)
	}
	if cfg.Runner.Backend != BackendExec && len(cfg.Runner.Env) > 0 {
		slog.Warn("runner.env is only used by the exec backend", "backend", cfg.Runner.Backend)
	}
	if cfg.Runner.ContextWindow < 0 {
		errs = append(errs, fmt.Errorf("runner.context_window %d must not be negative", cfg.Runner.ContextWindow))
	}
	if cfg.Runner.Timeout < 0 {
		errs = append(errs, fmt.Errorf("runner.timeout %s must not be negative", cfg.Runner.Timeout))
	}
	if t := cfg.Runner.Temperature; t < 0 || t > 2 {
		errs = append(errs, fmt.Errorf("runner.temperature %g must be between 0 and 2", t))
	}
	if cfg.Runner.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("runner.max_tokens %d must not be negative", cfg.Runner.MaxTokens))
	}
	if cfg.Runner.Backend == BackendExec && (cfg.Runner.Temperature != 0 || cfg.Runner.MaxTokens != 0) {
		slog.Warn("runner.temperature and runner.max_tokens are ignored by the exec backend")
	}
	for _, kv := range cfg.Runner.Env {
		if !strings.Contains(kv, "=") {
			errs = append(errs, fmt.Errorf("runner.env entry %q must have the form KEY=VALUE", kv))
		}
	}

	// Typewriter
	tw := cfg.Typewriter
	if tw.Mode != "" && !tw.Mode.IsValid() {
		errs = append(errs, fmt.Errorf("typewriter.mode %q is invalid; valid values: auto, on, off", tw.Mode))
	}
	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"char_delay", tw.CharDelay},
		{"fast_char_delay", tw.FastCharDelay},
		{"line_delay", tw.LineDelay},
	} {
		if d.value < 0 {
			errs = append(errs, fmt.Errorf("typewriter.%s %s must not be negative", d.name, d.value))
		}
	}

	return errors.Join(errs...)
}

func backendList() string {
	names := make([]string, len(Backends))
	for i, b := range Backends {
		names[i] = string(b)
	}
	return strings.Join(names, ", ")
}
