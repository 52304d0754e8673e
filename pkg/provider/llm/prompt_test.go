package llm

import "testing"

func TestFlattenPrompt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  CompletionRequest
		want string
	}{
		{name: "prompt only", req: CompletionRequest{Prompt: "debate"}, want: "debate"},
		{name: "system only", req: CompletionRequest{SystemPrompt: "be brief"}, want: "be brief"},
		{name: "both", req: CompletionRequest{SystemPrompt: "be brief", Prompt: "debate"}, want: "be brief\n\ndebate"},
		{name: "empty", req: CompletionRequest{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FlattenPrompt(tt.req); got != tt.want {
				t.Errorf("FlattenPrompt() = %q, want %q", got, tt.want)
			}
		})
	}
}
