package debate

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ContinuationSuffix is appended to replies that are shorter than the
// sentence limit, asking the opponent to keep developing the idea.
const ContinuationSuffix = " Expand on this idea. Provide more reasoning."

// DefaultMaxSentences is the number of sentences kept from each reply.
const DefaultMaxSentences = 3

// ShapeOptions tunes [ShapeOptions.Shape]. The zero value uses
// [DefaultMaxSentences].
type ShapeOptions struct {
	// MaxSentences is the number of leading sentences kept. Values < 1 select
	// [DefaultMaxSentences].
	MaxSentences int
}

// ShapeResponse shapes a raw model reply with the default options.
// See [ShapeOptions.Shape].
func ShapeResponse(text, label string) string {
	return ShapeOptions{}.Shape(text, label)
}

// Shape removes the first "<label>:" self-reference from text (matched case
// insensitively on word boundaries), trims it and keeps the first
// MaxSentences sentences joined by single spaces. A reply with fewer
// sentences is returned whole with [ContinuationSuffix] appended.
func (o ShapeOptions) Shape(text, label string) string {
	out, _ := o.shape(text, label)
	return out
}

// shape is Shape that also reports whether the continuation suffix was added.
func (o ShapeOptions) shape(text, label string) (string, bool) {
	limit := o.MaxSentences
	if limit < 1 {
		limit = DefaultMaxSentences
	}

	text = strings.TrimSpace(StripLabel(text, label))
	sentences := SplitSentences(text)
	if len(sentences) >= limit {
		return strings.Join(sentences[:limit], " "), false
	}
	return text + ContinuationSuffix, true
}

// StripLabel removes the first case-insensitive occurrence of "<label>:" from
// text, where label must start and end on a word boundary. An empty label
// leaves text unchanged.
func StripLabel(text, label string) string {
	if label == "" {
		return text
	}
	loc := labelPattern(label).FindStringIndex(text)
	if loc == nil {
		return text
	}
	return text[:loc[0]] + text[loc[1]:]
}

// labelPattern compiles the matcher for "<label>:". Label metacharacters are
// quoted.
func labelPattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(label) + `\b:`)
}

// SplitSentences splits text after every '.', '!' or '?' that is followed
// by whitespace. The whitespace run between two sentences is dropped;
// everything else is preserved. Empty text yields no sentences.
func SplitSentences(text string) []string {
	if text == "" {
		return nil
	}

	var sentences []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if r != '.' && r != '!' && r != '?' {
			continue
		}

		end := i
		for i < len(text) {
			ws, n := utf8.DecodeRuneInString(text[i:])
			if !unicode.IsSpace(ws) {
				break
			}
			i += n
		}
		if i == end {
			continue
		}
		sentences = append(sentences, text[start:end])
		start = i
	}
	return append(sentences, text[start:])
}
