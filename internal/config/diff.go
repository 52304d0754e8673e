package config

import "slices"

// ConfigDiff describes what changed between two configs.
// LogLevel and Typewriter settings are applied to a running debate; every
// other change only takes effect on the next start and is listed in
// RestartRequired.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	TypewriterChanged bool
	NewTypewriter     TypewriterConfig

	// RestartRequired names the changed settings that cannot be applied live
	// (e.g., "debate.model_a", "runner").
	RestartRequired []string
}

// Changed reports whether d contains any difference at all.
func (d ConfigDiff) Changed() bool {
	return d.LogLevelChanged || d.TypewriterChanged || len(d.RestartRequired) > 0
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.LogLevel != new.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.LogLevel
	}

	if old.Typewriter != new.Typewriter {
		d.TypewriterChanged = true
		d.NewTypewriter = new.Typewriter
	}

	od, nd := old.Debate, new.Debate
	if od.ModelA != nd.ModelA {
		d.RestartRequired = append(d.RestartRequired, "debate.model_a")
	}
	if od.ModelB != nd.ModelB {
		d.RestartRequired = append(d.RestartRequired, "debate.model_b")
	}
	if !samePromptFiles(od, nd) {
		d.requireRestart(restartPromptFiles)
	}
	if od.SystemPrompt != nd.SystemPrompt {
		d.RestartRequired = append(d.RestartRequired, "debate.system_prompt")
	}
	if od.TurnPause != nd.TurnPause || od.MaxSentences != nd.MaxSentences || od.Opening != nd.Opening {
		d.RestartRequired = append(d.RestartRequired, "debate pacing")
	}
	if !runnerEqual(old.Runner, new.Runner) {
		d.RestartRequired = append(d.RestartRequired, "runner")
	}
	if old.Observe != new.Observe {
		d.RestartRequired = append(d.RestartRequired, "observe")
	}

	return d
}

// restartPromptFiles is reported when prompt file paths or their contents
// change. Prompts are read once at startup.
const restartPromptFiles = "debate prompt files"

// requireRestart adds name to RestartRequired unless it is already listed.
func (d *ConfigDiff) requireRestart(name string) {
	if !slices.Contains(d.RestartRequired, name) {
		d.RestartRequired = append(d.RestartRequired, name)
	}
}

func samePromptFiles(a, b DebateConfig) bool {
	return a.MetaPromptFile == b.MetaPromptFile &&
		a.PerspectiveAFile == b.PerspectiveAFile &&
		a.PerspectiveBFile == b.PerspectiveBFile
}

func runnerEqual(a, b RunnerConfig) bool {
	return a.Backend == b.Backend && a.Path == b.Path && a.BaseURL == b.BaseURL &&
		a.APIKey == b.APIKey && a.ContextWindow == b.ContextWindow &&
		a.Timeout == b.Timeout && a.Temperature == b.Temperature && a.MaxTokens == b.MaxTokens &&
		slices.Equal(a.Args, b.Args) && slices.Equal(a.Env, b.Env)
}
