package config

import (
	"log/slog"
	"os"
	"strings"
)

// Prompts holds the three framing texts of a debate.
type Prompts struct {
	Meta         string
	PerspectiveA string
	PerspectiveB string
}

// LoadPrompts reads the meta prompt and both perspective files named in d.
// Unreadable files degrade to empty strings; see [ReadPromptFile].
func LoadPrompts(d DebateConfig) Prompts {
	return Prompts{
		Meta:         ReadPromptFile(d.MetaPromptFile),
		PerspectiveA: ReadPromptFile(d.PerspectiveAFile),
		PerspectiveB: ReadPromptFile(d.PerspectiveBFile),
	}
}

// ReadPromptFile returns the trimmed contents of the file at path. A missing
// or unreadable file is logged and yields the empty string.
func ReadPromptFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("error reading prompt file", "path", path, "err", err)
		return ""
	}
	return strings.TrimSpace(string(data))
}
