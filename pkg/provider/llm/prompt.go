package llm

// FlattenPrompt joins the system prompt and prompt of req into the single text
// block expected by runners that only read one input stream.
func FlattenPrompt(req CompletionRequest) string {
	if req.SystemPrompt == "" {
		return req.Prompt
	}
	if req.Prompt == "" {
		return req.SystemPrompt
	}
	return req.SystemPrompt + "\n\n" + req.Prompt
}
