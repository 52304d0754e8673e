package debate

import (
	"strings"
	"testing"
)

func TestTranscript_Layout(t *testing.T) {
	t.Parallel()
	tr := NewTranscript("Debate the topic.")
	tr.AppendSegment("Model A Perspective", "For.")
	tr.AppendSegment("Model B Perspective", "Against.")
	tr.AppendSegment("User Argument", "Go!")
	tr.AppendSegment(LabelA, "Reply one.")

	want := "Debate the topic.\nModel A Perspective: For.\nModel B Perspective: Against.\nUser Argument: Go!\nModel A: Reply one."
	if got := tr.String(); got != want {
		t.Errorf("String()\n got  %q\n want %q", got, want)
	}
	if tr.Len() != len(want) {
		t.Errorf("Len() = %d, want %d", tr.Len(), len(want))
	}
}

func TestTranscript_OnlyGrows(t *testing.T) {
	t.Parallel()
	tr := NewTranscript("")
	prev := tr.String()
	for i, seg := range []string{"a", "", "Expand on this idea.", "ü"} {
		tr.AppendSegment(LabelB, seg)
		cur := tr.String()
		if !strings.HasPrefix(cur, prev) {
			t.Fatalf("append %d: %q is not a prefix of %q", i, prev, cur)
		}
		if len(cur) <= len(prev) {
			t.Fatalf("append %d: length did not grow (%d -> %d)", i, len(prev), len(cur))
		}
		prev = cur
	}
}

func TestTranscript_TokenEstimate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		meta string
		want int
	}{
		{"", 0},
		{"abc", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 400), 100},
	}
	for _, tt := range tests {
		if got := NewTranscript(tt.meta).TokenEstimate(); got != tt.want {
			t.Errorf("TokenEstimate(len=%d) = %d, want %d", len(tt.meta), got, tt.want)
		}
	}
}
