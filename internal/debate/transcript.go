package debate

import "strings"

// charsPerToken is the rough characters-per-token ratio used for estimates.
const charsPerToken = 4

// Transcript is the append-only text buffer fed to both models. It starts
// with the meta prompt and grows by one labelled segment per append; earlier
// content is never modified.
//
// A Transcript is not safe for concurrent use.
type Transcript struct {
	b strings.Builder
}

// NewTranscript returns a transcript holding only the meta prompt.
func NewTranscript(meta string) *Transcript {
	t := &Transcript{}
	t.b.WriteString(meta)
	return t
}

// AppendSegment appends "\n<label>: <text>".
func (t *Transcript) AppendSegment(label, text string) {
	t.b.WriteString("\n")
	t.b.WriteString(label)
	t.b.WriteString(": ")
	t.b.WriteString(text)
}

// String returns the full transcript.
func (t *Transcript) String() string { return t.b.String() }

// Len returns the transcript length in bytes.
func (t *Transcript) Len() int { return t.b.Len() }

// TokenEstimate returns a rough token count for the transcript.
func (t *Transcript) TokenEstimate() int {
	return (t.b.Len() + charsPerToken - 1) / charsPerToken
}
