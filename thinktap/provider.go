package thinktap

import "context"

// providerClient is the internal capability surface each backend
// implements. The interception layer owns its provider reference and
// composes behavior by delegation; tearing the layer down is dropping the
// reference.
type providerClient interface {
	// generate executes a single non-streaming call. The provider
	// separates thought from final content before returning, so the
	// result reaches the caller already partitioned.
	generate(ctx context.Context, plan callPlan) (callResult, error)

	// stream executes a streaming call and returns an ordered,
	// single-consumption chunk sequence. Each yielded Chunk already
	// carries separated reasoning and final text.
	stream(ctx context.Context, plan callPlan) (ChunkSeq, error)
}

// callPlan is the normalized, provider-agnostic instruction set built by
// the Client from a GenerateRequest.
type callPlan struct {
	Provider Provider
	Model    string

	System string
	Input  string

	// Options
	Temperature     *float32
	MaxOutputTokens *int
	Labels          map[string]string

	// Thinking holds the resolved reasoning options for this call.
	Thinking ThinkingOptions
}

// callResult is the provider-agnostic result of one non-streaming call.
type callResult struct {
	// Text is the final (non-thought) content.
	Text string

	// Reasoning is the extracted thought text; hasReasoning
	// distinguishes absence from an empty extraction.
	Reasoning    string
	hasReasoning bool

	PromptTokens     *int
	CompletionTokens *int
	TotalTokens      *int
}
