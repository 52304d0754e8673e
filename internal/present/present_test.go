package present_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/MrWong99/arguebot/internal/present"
)

// recordingSleep returns a sleep func that records every requested delay and
// never blocks.
func recordingSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return ctx.Err()
	}
}

func TestType_WritesTextAndNewline(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	var delays []time.Duration
	tw := present.New(&buf, present.WithSleep(recordingSleep(&delays)))

	if err := tw.Type(context.Background(), "Hi!", present.SpeedReply); err != nil {
		t.Fatalf("Type: %v", err)
	}
	if got := buf.String(); got != "Hi!\n" {
		t.Errorf("output = %q, want %q", got, "Hi!\n")
	}

	want := []time.Duration{50 * time.Millisecond, 50 * time.Millisecond, 50 * time.Millisecond, 800 * time.Millisecond}
	if len(delays) != len(want) {
		t.Fatalf("delays = %v, want %v", delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, delays[i], want[i])
		}
	}
}

func TestType_ArgumentSpeed(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	var delays []time.Duration
	tw := present.New(&buf, present.WithSleep(recordingSleep(&delays)))

	if err := tw.Type(context.Background(), "ok", present.SpeedArgument); err != nil {
		t.Fatalf("Type: %v", err)
	}
	if delays[0] != 30*time.Millisecond {
		t.Errorf("char delay = %v, want 30ms", delays[0])
	}
}

func TestType_GraphemeClusters(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	var delays []time.Duration
	tw := present.New(&buf, present.WithSleep(recordingSleep(&delays)))

	// "e" + combining acute accent, then a flag made of two regional indicators.
	text := "e\u0301\U0001F1E9\U0001F1EA"
	if err := tw.Type(context.Background(), text, present.SpeedReply); err != nil {
		t.Fatalf("Type: %v", err)
	}
	// Two clusters plus the line delay.
	if len(delays) != 3 {
		t.Errorf("sleeps = %d, want 3 (one per grapheme cluster plus line delay)", len(delays))
	}
	if got := buf.String(); got != text+"\n" {
		t.Errorf("output = %q, want %q", got, text+"\n")
	}
}

func TestType_NotAnimated(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	slept := false
	tw := present.New(&buf,
		present.WithSettings(present.Settings{Animate: false}),
		present.WithSleep(func(context.Context, time.Duration) error { slept = true; return nil }),
	)

	if err := tw.Type(context.Background(), "instant", present.SpeedReply); err != nil {
		t.Fatalf("Type: %v", err)
	}
	if slept {
		t.Error("Type slept with animation disabled")
	}
	if got := buf.String(); got != "instant\n" {
		t.Errorf("output = %q, want %q", got, "instant\n")
	}
}

func TestType_CancelledMidway(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	tw := present.New(&buf, present.WithSleep(func(ctx context.Context, _ time.Duration) error {
		calls++
		if calls == 2 {
			cancel()
		}
		return ctx.Err()
	}))

	err := tw.Type(ctx, "abcdef", present.SpeedReply)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if got := buf.String(); got != "ab\n" {
		t.Errorf("output = %q, want %q", got, "ab\n")
	}
}

func TestSetSettings(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	var delays []time.Duration
	tw := present.New(&buf, present.WithSleep(recordingSleep(&delays)))

	tw.SetSettings(present.Settings{Animate: true, CharDelay: time.Millisecond, LineDelay: 2 * time.Millisecond})
	if got := tw.Settings().CharDelay; got != time.Millisecond {
		t.Errorf("CharDelay = %v, want 1ms", got)
	}
	if err := tw.Type(context.Background(), "x", present.SpeedReply); err != nil {
		t.Fatalf("Type: %v", err)
	}
	if len(delays) != 2 || delays[0] != time.Millisecond || delays[1] != 2*time.Millisecond {
		t.Errorf("delays = %v, want [1ms 2ms]", delays)
	}
}

func TestBannerAndHeading_PlainWhenNotTerminal(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	tw := present.New(&buf)

	tw.Banner("\n=== Debate Start ===")
	tw.Heading("Model B:")
	tw.Print("> ")
	tw.Println("line")

	want := "\n=== Debate Start ===\nModel B:\n> line\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestBannerAndHeading_StylesDisabled(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	tw := present.New(&buf, present.WithStyles(false))

	tw.Banner("\n\n=== Debate Framework Established ===")
	if got, want := buf.String(), "\n\n=== Debate Framework Established ===\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestSleep(t *testing.T) {
	t.Parallel()

	if err := present.Sleep(context.Background(), time.Millisecond); err != nil {
		t.Errorf("Sleep: unexpected error: %v", err)
	}
	if err := present.Sleep(context.Background(), 0); err != nil {
		t.Errorf("Sleep(0): unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if err := present.Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep(cancelled): err = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Sleep did not return promptly on cancellation")
	}
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()
	if present.IsTerminal(&bytes.Buffer{}) {
		t.Error("bytes.Buffer reported as terminal")
	}
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()
	if present.IsTerminal(f) {
		t.Error("regular file reported as terminal")
	}
}
