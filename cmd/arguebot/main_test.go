package main

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/MrWong99/arguebot/internal/config"
	"github.com/MrWong99/arguebot/pkg/provider/llm/anyllm"
	"github.com/MrWong99/arguebot/pkg/provider/llm/ollamacli"
	"github.com/MrWong99/arguebot/pkg/provider/llm/openai"
)

func TestFlagsApply_OnlyChangedFlagsOverride(t *testing.T) {
	t.Parallel()

	fs := pflag.NewFlagSet("arguebot", pflag.ContinueOnError)
	f := bindFlags(fs)
	if err := fs.Parse([]string{
		"--model-a", "mistral",
		"--backend", "openai-compat",
		"--typewriter", "off",
		"--log-level", "debug",
		"--opening", "Cats rule.",
	}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg := &config.Config{
		Debate: config.DebateConfig{ModelA: "llama3", ModelB: "phi3", MetaPromptFile: "custom_meta.txt"},
		Runner: config.RunnerConfig{Path: "/opt/ollama"},
	}
	cfg.ApplyDefaults()

	f.apply(fs, cfg)

	if cfg.Debate.ModelA != "mistral" {
		t.Errorf("ModelA = %q, want mistral", cfg.Debate.ModelA)
	}
	if cfg.Debate.ModelB != "phi3" {
		t.Errorf("ModelB = %q, want phi3 (flag not set)", cfg.Debate.ModelB)
	}
	if cfg.Debate.MetaPromptFile != "custom_meta.txt" {
		t.Errorf("MetaPromptFile = %q, want custom_meta.txt", cfg.Debate.MetaPromptFile)
	}
	if cfg.Runner.Path != "/opt/ollama" {
		t.Errorf("Runner.Path = %q, want /opt/ollama", cfg.Runner.Path)
	}
	if cfg.Runner.Backend != config.BackendOpenAICompat {
		t.Errorf("Backend = %q, want openai-compat", cfg.Runner.Backend)
	}
	if cfg.Typewriter.Mode != config.TypewriterOff {
		t.Errorf("Typewriter.Mode = %q, want off", cfg.Typewriter.Mode)
	}
	if cfg.LogLevel != config.LogDebug {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Debate.Opening != "Cats rule." {
		t.Errorf("Opening = %q, want %q", cfg.Debate.Opening, "Cats rule.")
	}
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd()
	cmd.SetArgs([]string{"extra"})
	cmd.SetOut(new(strings.Builder))
	cmd.SetErr(new(strings.Builder))
	if err := cmd.Execute(); err == nil {
		t.Fatal("Execute with positional args: want error, got nil")
	}
}

func TestRootCmd_DefaultsMatchConfig(t *testing.T) {
	t.Parallel()

	d := config.Default()
	fs := newRootCmd().Flags()
	tests := []struct {
		flag string
		want string
	}{
		{"model-a", d.Debate.ModelA},
		{"model-b", d.Debate.ModelB},
		{"meta-prompt-file", d.Debate.MetaPromptFile},
		{"perspective-a-file", d.Debate.PerspectiveAFile},
		{"perspective-b-file", d.Debate.PerspectiveBFile},
		{"backend", string(d.Runner.Backend)},
		{"runner", d.Runner.Path},
		{"typewriter", string(d.Typewriter.Mode)},
		{"log-level", string(d.LogLevel)},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			t.Parallel()
			fl := fs.Lookup(tt.flag)
			if fl == nil {
				t.Fatalf("flag --%s not defined", tt.flag)
			}
			if fl.DefValue != tt.want {
				t.Errorf("--%s default = %q, want %q", tt.flag, fl.DefValue, tt.want)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("empty path returns defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := loadConfig("")
		if err != nil {
			t.Fatalf("loadConfig: %v", err)
		}
		if cfg.Debate.ModelA != config.DefaultModel {
			t.Errorf("ModelA = %q, want %q", cfg.Debate.ModelA, config.DefaultModel)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Fatalf("loadConfig: want not found error, got %v", err)
		}
	})

	t.Run("reads file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "arguebot.yaml")
		if err := os.WriteFile(path, []byte("debate:\n  model_a: gemma\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := loadConfig(path)
		if err != nil {
			t.Fatalf("loadConfig: %v", err)
		}
		if cfg.Debate.ModelA != "gemma" {
			t.Errorf("ModelA = %q, want gemma", cfg.Debate.ModelA)
		}
	})
}

func TestRegisterBuiltinBackends(t *testing.T) {
	t.Parallel()

	reg := config.NewRegistry()
	registerBuiltinBackends(reg)

	got := reg.Backends()
	for _, want := range config.Backends {
		if !slices.Contains(got, want) {
			t.Errorf("backend %q not registered (got %v)", want, got)
		}
	}

	t.Run("exec", func(t *testing.T) {
		t.Parallel()
		p, err := reg.CreateProvider(config.RunnerConfig{Backend: config.BackendExec, Path: "/usr/local/bin/ollama"})
		if err != nil {
			t.Fatalf("CreateProvider: %v", err)
		}
		cli, ok := p.(*ollamacli.Provider)
		if !ok {
			t.Fatalf("provider type = %T, want *ollamacli.Provider", p)
		}
		if cli.Path() != "/usr/local/bin/ollama" {
			t.Errorf("Path = %q", cli.Path())
		}
	})

	for backend, server := range map[config.Backend]string{
		config.BackendOllamaHTTP: "ollama",
		config.BackendLlamaCpp:   "llamacpp",
		config.BackendLlamafile:  "llamafile",
	} {
		t.Run(string(backend), func(t *testing.T) {
			t.Parallel()
			p, err := reg.CreateProvider(config.RunnerConfig{Backend: backend, BaseURL: "http://127.0.0.1:18080"})
			if err != nil {
				t.Fatalf("CreateProvider: %v", err)
			}
			ap, ok := p.(*anyllm.Provider)
			if !ok {
				t.Fatalf("provider type = %T, want *anyllm.Provider", p)
			}
			if ap.Server() != server {
				t.Errorf("Server() = %q, want %q", ap.Server(), server)
			}
		})
	}

	t.Run("openai-compat", func(t *testing.T) {
		t.Parallel()
		p, err := reg.CreateProvider(config.RunnerConfig{
			Backend: config.BackendOpenAICompat,
			BaseURL: "http://127.0.0.1:8080/v1",
			APIKey:  "local",
		})
		if err != nil {
			t.Fatalf("CreateProvider: %v", err)
		}
		oc, ok := p.(*openai.Provider)
		if !ok {
			t.Fatalf("provider type = %T, want *openai.Provider", p)
		}
		if oc.BaseURL() != "http://127.0.0.1:8080/v1" {
			t.Errorf("BaseURL = %q", oc.BaseURL())
		}
	})
}
