package thinktap

import (
	"context"
	"iter"
	"strings"
)

// Chunk is one normalized unit of a streamed response. Providers adapt
// their SDK's chunk shape to this at the boundary, so reconciliation never
// inspects SDK types: Reasoning carries already-partitioned thought text
// and Text carries the plain-text rendering of final content. Either or
// both may be empty for a given chunk.
type Chunk struct {
	Reasoning string
	Text      string
	Usage     *StreamUsage
}

// ChunkSeq is an ordered, single-consumption sequence of chunks. A non-nil
// error yielded by the producer terminates the sequence.
type ChunkSeq = iter.Seq2[Chunk, error]

// ThoughtSink receives intermediate thought text while a streamed call is
// still in flight, e.g. a chat transport replying with partial content.
// Delivery is best-effort: errors are logged and never interrupt the call.
type ThoughtSink interface {
	SendThought(ctx context.Context, text string) error
}

// SinkFunc adapts a function to the ThoughtSink interface.
type SinkFunc func(ctx context.Context, text string) error

// SendThought implements ThoughtSink.
func (f SinkFunc) SendThought(ctx context.Context, text string) error {
	return f(ctx, text)
}

// Reconciler folds a streamed chunk sequence into one ReasoningResult,
// forwarding thought chunks to Sink as they arrive. All accumulator state
// lives in one Run call, so independent concurrent calls need no locking.
type Reconciler struct {
	// Sink receives live thought text. Nil disables forwarding.
	Sink ThoughtSink

	// Placeholder substitutes for an empty final answer. Empty means
	// DefaultPlaceholder.
	Placeholder string
}

// Run consumes seq in arrival order and returns exactly one aggregate
// result. Per chunk: non-empty reasoning is accumulated and forwarded to
// the sink (awaited, so live delivery order matches chunk order; failures
// are logged and absorbed); non-empty final text is accumulated; usage
// totals are merged. Chunks carrying neither are skipped.
//
// A producer error or context cancellation stops consumption; Run then
// returns the partial result accumulated so far together with the error,
// leaving the caller to decide whether partial content is usable. On
// normal exhaustion the error is nil, FinalText is the trimmed
// concatenation of final fragments (placeholder-substituted when empty)
// and Reasoning is set only if at least one thought fragment was seen.
func (r *Reconciler) Run(ctx context.Context, seq ChunkSeq) (*ReasoningResult, error) {
	var (
		reasoning []string
		final     strings.Builder
		usage     *StreamUsage
		seqErr    error
	)

	for chunk, err := range seq {
		if err != nil {
			seqErr = err
			break
		}
		if err := ctx.Err(); err != nil {
			seqErr = err
			break
		}

		if chunk.Reasoning != "" {
			reasoning = append(reasoning, chunk.Reasoning)
			r.forward(ctx, chunk.Reasoning)
		}
		if chunk.Text != "" {
			final.WriteString(chunk.Text)
		}
		if chunk.Usage != nil {
			usage = chunk.Usage
		}
	}

	result := r.assemble(reasoning, final.String(), usage)
	return result, seqErr
}

// forward delivers one thought fragment to the sink. Best-effort only:
// a failing or panicking sink must never abort reconciliation.
func (r *Reconciler) forward(ctx context.Context, text string) {
	if r.Sink == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			logger.Warn("thought sink panicked", "panic", rec)
		}
	}()
	if err := r.Sink.SendThought(ctx, text); err != nil {
		logger.Warn("thought forward failed", "error", err)
	}
}

func (r *Reconciler) assemble(reasoning []string, final string, usage *StreamUsage) *ReasoningResult {
	result := &ReasoningResult{FinalText: strings.TrimSpace(final)}
	if result.FinalText == "" {
		if r.Placeholder != "" {
			result.FinalText = r.Placeholder
		} else {
			result.FinalText = DefaultPlaceholder
		}
	}
	if len(reasoning) > 0 {
		joined := strings.Join(reasoning, thoughtSeparator)
		result.Reasoning = &joined
	}
	if usage != nil {
		result.PromptTokens = intPtr(usage.PromptTokens)
		result.CompletionTokens = intPtr(usage.CompletionTokens)
		result.TotalTokens = intPtr(usage.TotalTokens)
	}
	return result
}

func intPtr(v int) *int { return &v }
