package config_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/MrWong99/arguebot/internal/config"
	"github.com/MrWong99/arguebot/pkg/provider/llm"
	"github.com/MrWong99/arguebot/pkg/provider/llm/mock"
)

func TestRegistry_UnknownBackend(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()
	_, err := reg.CreateProvider(config.RunnerConfig{Backend: config.BackendExec})
	if !errors.Is(err, config.ErrBackendNotRegistered) {
		t.Errorf("expected ErrBackendNotRegistered, got %v", err)
	}
}

func TestRegistry_Registered(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()

	var got config.RunnerConfig
	want := &mock.Provider{}
	reg.Register(config.BackendExec, func(cfg config.RunnerConfig) (llm.Provider, error) {
		got = cfg
		return want, nil
	})

	p, err := reg.CreateProvider(config.RunnerConfig{Backend: config.BackendExec, Path: "/opt/ollama"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != llm.Provider(want) {
		t.Error("CreateProvider did not return the factory's provider")
	}
	if got.Path != "/opt/ollama" {
		t.Errorf("factory received path %q, want /opt/ollama", got.Path)
	}
}

func TestRegistry_FactoryError(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()
	boom := errors.New("boom")
	reg.Register(config.BackendOpenAICompat, func(config.RunnerConfig) (llm.Provider, error) {
		return nil, boom
	})

	_, err := reg.CreateProvider(config.RunnerConfig{Backend: config.BackendOpenAICompat})
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped factory error, got %v", err)
	}
}

func TestRegistry_Backends(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()
	noop := func(config.RunnerConfig) (llm.Provider, error) { return &mock.Provider{}, nil }
	reg.Register(config.BackendOpenAICompat, noop)
	reg.Register(config.BackendExec, noop)
	reg.Register(config.BackendOllamaHTTP, noop)

	want := []config.Backend{config.BackendExec, config.BackendOllamaHTTP, config.BackendOpenAICompat}
	if got := reg.Backends(); !slices.Equal(got, want) {
		t.Errorf("Backends: got %v, want %v", got, want)
	}

	// Factories are usable end to end.
	p, err := reg.CreateProvider(config.RunnerConfig{Backend: config.BackendOllamaHTTP})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Complete(context.Background(), llm.CompletionRequest{Model: "llama3"}); err != nil {
		t.Errorf("Complete: %v", err)
	}
}
