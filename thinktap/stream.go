package thinktap

import (
	"context"
	"time"
)

// Stream executes a streaming request and exposes it as an event channel:
// thought fragments, final-text fragments and usage arrive as they are
// produced, followed by exactly one Done event carrying the reconciled
// aggregate result (or an Error event when the producer failed). The
// channel is closed after the terminal event.
func (c *Client) Stream(ctx context.Context, req GenerateRequest) (*StreamResponse, error) {
	plan, err := c.buildPlan(req)
	if err != nil {
		return nil, err
	}

	opts := req.streamOptions()
	streamCtx, cancel := context.WithCancel(ctx)
	events := make(chan StreamEvent, opts.BufferSize)

	so := &streamOrchestrator{
		ctx:    streamCtx,
		client: c,
		plan:   plan,
		events: events,
		cancel: cancel,
	}
	go so.run()

	return &StreamResponse{Events: events, Cancel: cancel}, nil
}

func (req GenerateRequest) streamOptions() StreamOptions {
	opts := req.StreamOptions
	if opts.BufferSize == 0 {
		// Buffered so slow consumers do not stall the SDK iterator.
		opts.BufferSize = 100
	}
	return opts
}

// streamOrchestrator manages the lifecycle of one event-channel stream.
// It feeds the provider's chunk sequence through a Reconciler, tapping
// each chunk's fragments into events on the way in, so live event order
// matches part order: within a chunk, reasoning precedes final text.
type streamOrchestrator struct {
	ctx    context.Context
	client *Client
	plan   callPlan
	events chan StreamEvent
	cancel context.CancelFunc
}

func (so *streamOrchestrator) run() {
	defer close(so.events)
	defer so.cancel()

	pc, err := so.client.ensureProvider(so.plan.Provider)
	if err != nil {
		so.sendError(err)
		return
	}

	seq, err := pc.stream(so.ctx, so.plan)
	if err != nil {
		so.sendError(err)
		return
	}

	rec := &Reconciler{Placeholder: so.client.cfg.placeholder()}

	// Tap every fragment on its way into the reconciler so the channel
	// sees it live. Thought text is emitted here rather than through the
	// reconciler's sink: a chunk can carry both reasoning and final text,
	// and the model emits the reasoning first.
	tapped := func(yield func(Chunk, error) bool) {
		for chunk, err := range seq {
			if err == nil {
				if chunk.Reasoning != "" {
					so.sendThought(chunk.Reasoning)
				}
				if chunk.Text != "" {
					so.sendChunk(chunk.Text)
				}
				if chunk.Usage != nil {
					so.sendUsage(chunk.Usage)
				}
			}
			if !yield(chunk, err) {
				return
			}
		}
	}

	result, err := rec.Run(so.ctx, tapped)
	if err != nil {
		so.sendError(err)
		return
	}
	result.Provider = so.plan.Provider
	result.Model = so.plan.Model
	so.client.storeTrace(so.plan, result)

	so.send(StreamEvent{Type: EventTypeDone, Result: result})
}

func (so *streamOrchestrator) send(ev StreamEvent) {
	ev.provider = so.plan.Provider
	ev.timestamp = time.Now()
	select {
	case <-so.ctx.Done():
	case so.events <- ev:
	}
}

func (so *streamOrchestrator) sendThought(text string) {
	so.send(StreamEvent{Type: EventTypeThought, Text: text})
}

func (so *streamOrchestrator) sendChunk(text string) {
	so.send(StreamEvent{Type: EventTypeChunk, Text: text})
}

func (so *streamOrchestrator) sendUsage(usage *StreamUsage) {
	so.send(StreamEvent{Type: EventTypeUsage, Usage: usage})
}

func (so *streamOrchestrator) sendError(err error) {
	so.send(StreamEvent{Type: EventTypeError, Err: err})
}
