package thinktap

// Provider identifies which backend to use. No auto-detection in this step.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderOpenAI Provider = "openai"
)

// ThinkingOptions controls reasoning-mode parameters attached to an
// outgoing request. Zero value means "use defaults": thoughts are
// requested and the budget falls back to DefaultThinkingBudget.
type ThinkingOptions struct {
	// IncludeThoughts requests that the model emit its intermediate
	// reasoning alongside the final answer. Nil means true.
	IncludeThoughts *bool

	// Budget is the thinking token budget. Nil means
	// DefaultThinkingBudget. -1 requests dynamic budgeting (the model
	// decides); other negative values are treated as unset.
	Budget *int
}

// GenerateRequest is the unified request for one generation call.
type GenerateRequest struct {
	// Provider and Model must be set explicitly in this step.
	Provider Provider
	Model    string

	// Input and optional system instruction.
	Input  string
	System string

	// Optional response shaping.
	Temperature     *float32
	MaxOutputTokens *int

	// Thinking selects reasoning-mode parameters for this call.
	// Nil applies the client-wide defaults from ThinktapConfig.
	Thinking *ThinkingOptions

	// Arbitrary per-call labels/metadata (carried provider-side if supported).
	Labels map[string]string

	// StreamOptions applies to the event-channel facade only.
	StreamOptions StreamOptions
}

// StreamUsage contains token usage information.
type StreamUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ReasoningResult is the single aggregate outcome of one call.
//
// FinalText is never empty for a completed call: when a model produced no
// final content, the configured placeholder is substituted. Reasoning is
// nil when no non-empty thought segment was observed, so consumers can
// tell "no reasoning available" from "empty reasoning".
type ReasoningResult struct {
	Provider Provider
	Model    string

	// FinalText is the user-visible answer, trimmed of surrounding
	// whitespace.
	FinalText string

	// Reasoning is the blank-line-joined thought text, in arrival order.
	Reasoning *string

	// Token usage, if the provider reported it.
	PromptTokens     *int
	CompletionTokens *int
	TotalTokens      *int
}

// HasReasoning reports whether any thought content was captured.
func (r *ReasoningResult) HasReasoning() bool {
	return r != nil && r.Reasoning != nil
}

// ReasoningText returns the captured thought text, or "" when absent.
func (r *ReasoningResult) ReasoningText() string {
	if r == nil || r.Reasoning == nil {
		return ""
	}
	return *r.Reasoning
}
