// Package present renders the debate on a terminal: plain lines, styled
// banners and speaker headings, and the typewriter effect used for the
// user's argument and every model reply.
package present

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/rivo/uniseg"
)

// Speed selects which character delay [Typewriter.Type] uses.
type Speed int

const (
	// SpeedReply is the pace of model replies.
	SpeedReply Speed = iota
	// SpeedArgument is the faster pace of the user's opening argument.
	SpeedArgument
)

// Settings are the typewriter timings. They can be swapped at runtime with
// [Typewriter.SetSettings].
type Settings struct {
	// Animate enables the delays. When false, text is written at once.
	Animate bool

	CharDelay     time.Duration
	FastCharDelay time.Duration
	LineDelay     time.Duration
}

// DefaultSettings returns animated settings with the standard pacing.
func DefaultSettings() Settings {
	return Settings{
		Animate:       true,
		CharDelay:     50 * time.Millisecond,
		FastCharDelay: 30 * time.Millisecond,
		LineDelay:     800 * time.Millisecond,
	}
}

// Option configures a [Typewriter].
type Option func(*Typewriter)

// WithSettings sets the initial timings.
func WithSettings(s Settings) Option {
	return func(t *Typewriter) { t.settings = s }
}

// WithStyles enables or disables lipgloss styling of banners and headings.
// By default styling follows the colour profile detected for the writer,
// which is plain text for anything that is not a terminal.
func WithStyles(enabled bool) Option {
	return func(t *Typewriter) { t.styled = enabled }
}

// WithSleep replaces the context-aware sleep used between characters.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(t *Typewriter) { t.sleep = fn }
}

// Typewriter writes debate output to an [io.Writer]. Output methods must be
// called from one goroutine; [Typewriter.SetSettings] may be called from any.
type Typewriter struct {
	w      io.Writer
	styled bool
	sleep  func(context.Context, time.Duration) error

	banner  lipgloss.Style
	heading lipgloss.Style

	mu       sync.Mutex
	settings Settings
}

// New returns a Typewriter writing to w.
func New(w io.Writer, opts ...Option) *Typewriter {
	r := lipgloss.NewRenderer(w)
	t := &Typewriter{
		w:        w,
		styled:   true,
		sleep:    Sleep,
		banner:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		heading:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
		settings: DefaultSettings(),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Settings returns the current timings.
func (t *Typewriter) Settings() Settings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settings
}

// SetSettings replaces the timings. A Type call in progress finishes with
// the timings it started with.
func (t *Typewriter) SetSettings(s Settings) {
	t.mu.Lock()
	t.settings = s
	t.mu.Unlock()
}

// Print writes text without a trailing newline.
func (t *Typewriter) Print(text string) {
	io.WriteString(t.w, text)
}

// Println writes text followed by a newline.
func (t *Typewriter) Println(text string) {
	io.WriteString(t.w, text+"\n")
}

// Banner writes a section banner such as "=== Debate Start ===". Leading
// newlines are kept outside the styled part.
func (t *Typewriter) Banner(text string) {
	t.Println(t.render(t.banner, text))
}

// Heading writes a speaker heading such as "Model A:".
func (t *Typewriter) Heading(text string) {
	t.Println(t.render(t.heading, text))
}

func (t *Typewriter) render(s lipgloss.Style, text string) string {
	if !t.styled {
		return text
	}
	body := strings.TrimLeft(text, "\n")
	if body == "" {
		return text
	}
	return text[:len(text)-len(body)] + s.Render(body)
}

// Type writes text one grapheme cluster at a time, pausing between clusters
// at the delay selected by speed, then writes a newline and pauses for the
// line delay. It returns ctx.Err() if ctx is cancelled during a pause; the
// text written so far stays on screen.
func (t *Typewriter) Type(ctx context.Context, text string, speed Speed) error {
	s := t.Settings()
	if !s.Animate {
		t.Println(text)
		return nil
	}

	delay := s.CharDelay
	if speed == SpeedArgument {
		delay = s.FastCharDelay
	}

	g := uniseg.NewGraphemes(text)
	for g.Next() {
		io.WriteString(t.w, g.Str())
		if err := t.sleep(ctx, delay); err != nil {
			io.WriteString(t.w, "\n")
			return err
		}
	}
	io.WriteString(t.w, "\n")
	return t.sleep(ctx, s.LineDelay)
}

// Sleep pauses for d or until ctx is done, whichever comes first. It returns
// ctx.Err() when ctx ended the pause.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
