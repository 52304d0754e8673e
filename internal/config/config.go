// Package config provides the configuration schema, loader, prompt-file
// reader and runner backend registry for arguebot.
package config

import "time"

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Backend selects how model turns are executed.
type Backend string

const (
	// BackendExec starts the runner executable once per turn ("ollama run <model>").
	BackendExec Backend = "exec"

	// BackendOllamaHTTP talks to a running Ollama server over its native API.
	BackendOllamaHTTP Backend = "ollama-http"

	// BackendOpenAICompat talks to any OpenAI-compatible chat completions server.
	BackendOpenAICompat Backend = "openai-compat"

	// BackendLlamaCpp talks to a llama.cpp server.
	BackendLlamaCpp Backend = "llamacpp"

	// BackendLlamafile talks to a llamafile server.
	BackendLlamafile Backend = "llamafile"
)

// Backends lists every recognised backend in documentation order.
var Backends = []Backend{BackendExec, BackendOllamaHTTP, BackendOpenAICompat, BackendLlamaCpp, BackendLlamafile}

// IsValid reports whether b is a recognised backend.
func (b Backend) IsValid() bool {
	switch b {
	case BackendExec, BackendOllamaHTTP, BackendOpenAICompat, BackendLlamaCpp, BackendLlamafile:
		return true
	}
	return false
}

// TypewriterMode controls whether output is typed out character by character.
type TypewriterMode string

const (
	// TypewriterAuto types output only when stdout is a terminal.
	TypewriterAuto TypewriterMode = "auto"
	TypewriterOn   TypewriterMode = "on"
	TypewriterOff  TypewriterMode = "off"
)

// IsValid reports whether m is a recognised typewriter mode.
func (m TypewriterMode) IsValid() bool {
	switch m {
	case TypewriterAuto, TypewriterOn, TypewriterOff:
		return true
	}
	return false
}

// Defaults applied by [Config.ApplyDefaults].
const (
	DefaultModel            = "llama3"
	DefaultMetaPromptFile   = "meta_prompt.txt"
	DefaultPerspectiveAFile = "A_prompt.txt"
	DefaultPerspectiveBFile = "B_prompt.txt"
	DefaultRunnerPath       = "ollama"
	DefaultTurnPause        = time.Second
	DefaultMaxSentences     = 3
	DefaultContextWindow    = 8192
	DefaultCharDelay        = 50 * time.Millisecond
	DefaultFastCharDelay    = 30 * time.Millisecond
	DefaultLineDelay        = 800 * time.Millisecond
)

// Config is the root configuration structure for arguebot.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader],
// or built with [Default] when no file is given.
type Config struct {
	LogLevel   LogLevel         `yaml:"log_level"`
	Debate     DebateConfig     `yaml:"debate"`
	Runner     RunnerConfig     `yaml:"runner"`
	Typewriter TypewriterConfig `yaml:"typewriter"`
	Observe    ObserveConfig    `yaml:"observe"`
}

// DebateConfig selects the two debaters and the prompt files framing them.
type DebateConfig struct {
	// ModelA and ModelB are the model identifiers passed to the runner.
	ModelA string `yaml:"model_a"`
	ModelB string `yaml:"model_b"`

	MetaPromptFile   string `yaml:"meta_prompt_file"`
	PerspectiveAFile string `yaml:"perspective_a_file"`
	PerspectiveBFile string `yaml:"perspective_b_file"`

	// Opening is the user's opening argument. When empty the user is asked
	// for it on the terminal.
	Opening string `yaml:"opening"`

	// TurnPause is the pause after each reply.
	TurnPause time.Duration `yaml:"turn_pause"`

	// MaxSentences is how many sentences of each reply are kept.
	MaxSentences int `yaml:"max_sentences"`

	// SystemPrompt is an optional instruction sent with every turn outside
	// the transcript (e.g. "Answer in German."). The exec backend prepends
	// it to the transcript.
	SystemPrompt string `yaml:"system_prompt"`
}

// RunnerConfig selects and configures the model runner backend.
type RunnerConfig struct {
	Backend Backend `yaml:"backend"`

	// Path is the runner executable for the exec backend.
	Path string `yaml:"path"`

	// Args are extra arguments appended after "run <model>" by the exec backend.
	Args []string `yaml:"args"`

	// Env holds extra KEY=VALUE pairs for the exec backend's runner process
	// (e.g. OLLAMA_HOST=127.0.0.1:11500).
	Env []string `yaml:"env"`

	// BaseURL overrides the endpoint of the HTTP backends.
	BaseURL string `yaml:"base_url"`

	// APIKey is sent by the openai-compat backend. Local servers ignore it.
	APIKey string `yaml:"api_key"`

	// ContextWindow is the token budget above which a warning is logged once
	// the transcript estimate exceeds it. Zero disables the warning.
	ContextWindow int `yaml:"context_window"`

	// Timeout bounds one model call. A call that runs out of time counts as
	// a failed invocation. Zero means no limit.
	Timeout time.Duration `yaml:"timeout"`

	// Temperature and MaxTokens are sampling settings for the HTTP backends.
	// Zero keeps the server default. The exec backend cannot pass them.
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// TypewriterConfig controls the typed-out presentation.
type TypewriterConfig struct {
	Mode TypewriterMode `yaml:"mode"`

	// CharDelay is the pause between characters of model replies.
	CharDelay time.Duration `yaml:"char_delay"`

	// FastCharDelay is the pause between characters of the user's argument.
	FastCharDelay time.Duration `yaml:"fast_char_delay"`

	// LineDelay is the pause after each typed line.
	LineDelay time.Duration `yaml:"line_delay"`
}

// ObserveConfig holds the optional observability endpoint settings.
type ObserveConfig struct {
	// MetricsAddr is the TCP address serving /metrics, /healthz and /readyz.
	// Empty disables the endpoint.
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every unset field with its default value. Explicit
// zero durations cannot be expressed in YAML this way; use the "off"
// typewriter mode to disable delays.
func (c *Config) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = LogInfo
	}

	d := &c.Debate
	if d.ModelA == "" {
		d.ModelA = DefaultModel
	}
	if d.ModelB == "" {
		d.ModelB = DefaultModel
	}
	if d.MetaPromptFile == "" {
		d.MetaPromptFile = DefaultMetaPromptFile
	}
	if d.PerspectiveAFile == "" {
		d.PerspectiveAFile = DefaultPerspectiveAFile
	}
	if d.PerspectiveBFile == "" {
		d.PerspectiveBFile = DefaultPerspectiveBFile
	}
	if d.TurnPause == 0 {
		d.TurnPause = DefaultTurnPause
	}
	if d.MaxSentences == 0 {
		d.MaxSentences = DefaultMaxSentences
	}

	r := &c.Runner
	if r.Backend == "" {
		r.Backend = BackendExec
	}
	if r.Path == "" {
		r.Path = DefaultRunnerPath
	}
	if r.ContextWindow == 0 {
		r.ContextWindow = DefaultContextWindow
	}

	t := &c.Typewriter
	if t.Mode == "" {
		t.Mode = TypewriterAuto
	}
	if t.CharDelay == 0 {
		t.CharDelay = DefaultCharDelay
	}
	if t.FastCharDelay == 0 {
		t.FastCharDelay = DefaultFastCharDelay
	}
	if t.LineDelay == 0 {
		t.LineDelay = DefaultLineDelay
	}
}
