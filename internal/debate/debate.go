// Package debate runs an unbounded two-model debate: a shared append-only
// transcript is sent to Model A and Model B in turn, every reply is shaped to
// a few sentences and appended under its speaker label.
package debate

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrWong99/arguebot/internal/observe"
	"github.com/MrWong99/arguebot/internal/present"
	"github.com/MrWong99/arguebot/pkg/provider/llm"
)

// DefaultOpening is used when the user enters a blank opening argument.
const DefaultOpening = "Let the debate begin!"

// Presenter renders the debate. [*present.Typewriter] implements it.
type Presenter interface {
	Print(text string)
	Println(text string)
	Banner(text string)
	Heading(text string)
	Type(ctx context.Context, text string, speed present.Speed) error
}

var _ Presenter = (*present.Typewriter)(nil)

// Config holds everything a [Debate] needs.
//
// Provider, Presenter and both debaters' models are required. Everything else
// is optional.
type Config struct {
	// Provider runs both models. Must not be nil.
	Provider llm.Provider

	// Presenter renders the debate. Must not be nil.
	Presenter Presenter

	// A opens the debate; B answers first in every numbered turn.
	A, B Debater

	// Meta is the meta prompt that starts the transcript.
	Meta string

	// Opening is the user's opening argument. When empty it is read as one
	// line from Input after prompting.
	Opening string

	// Input supplies the opening argument when Opening is empty. A nil Input
	// behaves like a blank line.
	Input io.Reader

	// TurnPause is the pause after each reply in the numbered turns.
	TurnPause time.Duration

	// Shape controls reply shaping.
	Shape ShapeOptions

	// SystemPrompt is sent with every turn outside the transcript.
	SystemPrompt string

	// Temperature and MaxTokens are passed to the provider. Zero keeps the
	// backend default.
	Temperature float64
	MaxTokens   int

	// TurnTimeout bounds each model call. A call that runs out of time
	// yields an empty reply. Zero means no limit.
	TurnTimeout time.Duration

	// ContextWindow is the token budget of the models. When the transcript
	// estimate first exceeds it a warning is logged. Zero disables the check.
	ContextWindow int

	// Metrics is optional.
	Metrics *observe.Metrics

	// ID identifies this run in logs and spans. A random UUID is used when
	// empty.
	ID string

	// Sleep replaces the context-aware pause between turns.
	Sleep func(context.Context, time.Duration) error
}

// Debate is one debate run. It is single-use and not safe for concurrent use.
type Debate struct {
	cfg        Config
	invoker    *Invoker
	sleep      func(context.Context, time.Duration) error
	transcript *Transcript
	warned     bool
}

// New validates cfg and returns a ready [Debate].
func New(cfg Config) (*Debate, error) {
	var errs []error
	if cfg.Provider == nil {
		errs = append(errs, errors.New("debate: Provider must not be nil"))
	}
	if cfg.Presenter == nil {
		errs = append(errs, errors.New("debate: Presenter must not be nil"))
	}
	if cfg.A.Model == "" || cfg.B.Model == "" {
		errs = append(errs, errors.New("debate: both debaters need a model"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if cfg.A.Label == "" {
		cfg.A.Label = LabelA
	}
	if cfg.B.Label == "" {
		cfg.B.Label = LabelB
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}

	inv := &Invoker{
		Provider:     cfg.Provider,
		Metrics:      cfg.Metrics,
		SystemPrompt: cfg.SystemPrompt,
		Temperature:  cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
		Timeout:      cfg.TurnTimeout,
	}
	d := &Debate{
		cfg:        cfg,
		invoker:    inv,
		sleep:      cfg.Sleep,
		transcript: NewTranscript(cfg.Meta),
	}
	if d.sleep == nil {
		d.sleep = present.Sleep
	}
	return d, nil
}

// ID returns the run identifier.
func (d *Debate) ID() string { return d.cfg.ID }

// Transcript returns the transcript accumulated so far. It must not be
// called while Run is executing.
func (d *Debate) Transcript() string { return d.transcript.String() }

// Run frames the debate, collects the opening argument, lets A open and then
// alternates B and A forever. It only returns once ctx is done, with
// ctx.Err().
func (d *Debate) Run(ctx context.Context) error {
	ctx = observe.WithDebateID(ctx, d.cfg.ID)
	log := observe.Logger(ctx)
	p := d.cfg.Presenter
	a, b := d.cfg.A, d.cfg.B

	log.Info("debate starting", "model_a", a.Model, "model_b", b.Model)

	p.Banner("\n=== Debate Framework Established ===")
	p.Println("Meta Prompt:\n" + d.cfg.Meta)
	d.append(ctx, a.perspectiveLabel(), a.Perspective)
	d.append(ctx, b.perspectiveLabel(), b.Perspective)

	opening, err := d.opening(ctx)
	if err != nil {
		return err
	}
	d.append(ctx, "User Argument", opening)
	if err := p.Type(ctx, "\nUser Argument: "+opening, present.SpeedArgument); err != nil {
		return err
	}

	p.Banner("\n=== Debate Start ===")
	p.Println(a.perspectiveLabel() + ":\n" + a.Perspective)

	p.Println("\nCalling " + a.Label + " for the initial argument...")
	reply, err := d.turn(ctx, 0, a)
	if err != nil {
		return err
	}
	p.Heading("\n" + a.Label + " initial response:")
	d.append(ctx, a.Label, reply)
	if err := p.Type(ctx, reply, present.SpeedReply); err != nil {
		return err
	}
	p.Println("\n" + b.perspectiveLabel() + ":\n" + b.Perspective)

	for n := 1; ; n++ {
		p.Banner(fmt.Sprintf("\n--- Turn %d ---", n))
		for _, speaker := range []Debater{b, a} {
			p.Println(speaker.Label + " generating response...")
			reply, err := d.turn(ctx, n, speaker)
			if err != nil {
				return err
			}
			p.Heading(speaker.Label + ":")
			if err := p.Type(ctx, reply, present.SpeedReply); err != nil {
				return err
			}
			d.append(ctx, speaker.Label, reply)
			if err := d.sleep(ctx, d.cfg.TurnPause); err != nil {
				return err
			}
		}
	}
}

// turn invokes speaker's model with the current transcript and returns the
// shaped reply. It returns ctx.Err() if ctx ended during the invocation.
func (d *Debate) turn(ctx context.Context, n int, speaker Debater) (string, error) {
	ctx, span := observe.StartSpan(ctx, "debate.turn",
		trace.WithAttributes(
			attribute.Int("turn", n),
			attribute.String("speaker", speaker.Label),
			attribute.String("model", speaker.Model),
		),
	)
	defer span.End()

	start := time.Now()
	raw := d.invoker.Invoke(ctx, speaker.Model, d.transcript.String())
	if err := ctx.Err(); err != nil {
		return "", err
	}

	reply, padded := d.cfg.Shape.shape(raw, speaker.Label)
	elapsed := time.Since(start)

	span.SetAttributes(attribute.Bool("padded", padded), attribute.Int("reply_bytes", len(reply)))
	observe.Logger(ctx).Debug("turn complete",
		"turn", n, "speaker", speaker.Label, "model", speaker.Model,
		"duration", elapsed, "padded", padded)

	if m := d.cfg.Metrics; m != nil {
		m.RecordTurn(ctx, speaker.Label, elapsed.Seconds())
		if padded {
			m.PaddedReplies.Add(ctx, 1)
		}
	}
	return reply, nil
}

// append adds a segment to the transcript, reports its size and warns once
// when it no longer fits the context window.
func (d *Debate) append(ctx context.Context, label, text string) {
	d.transcript.AppendSegment(label, text)

	tokens := d.transcript.TokenEstimate()
	if m := d.cfg.Metrics; m != nil {
		m.TranscriptTokens.Record(ctx, int64(tokens))
	}
	if w := d.cfg.ContextWindow; w > 0 && tokens > w && !d.warned {
		d.warned = true
		observe.Logger(ctx).Warn("transcript exceeds model context window; early turns may be truncated by the runner",
			"tokens", tokens, "context_window", w)
	}
}

// opening returns the configured opening argument or asks for one.
func (d *Debate) opening(ctx context.Context) (string, error) {
	if s := strings.TrimSpace(d.cfg.Opening); s != "" {
		return s, nil
	}

	d.cfg.Presenter.Print("\nEnter your initial debate argument: ")
	line, err := readLine(ctx, d.cfg.Input)
	if err != nil {
		return "", err
	}
	if line = strings.TrimSpace(line); line == "" {
		return DefaultOpening, nil
	}
	return line, nil
}

// readLine reads one line from r, giving up when ctx is done. A nil r or a
// read error yields "".
func readLine(ctx context.Context, r io.Reader) (string, error) {
	if r == nil {
		return "", ctx.Err()
	}

	ch := make(chan string, 1)
	go func() {
		line, err := bufio.NewReader(r).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			observe.Logger(ctx).Error("error reading opening argument", "err", err)
		}
		ch <- line
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line := <-ch:
		return line, nil
	}
}
