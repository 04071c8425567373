package thinktap

import (
	"context"
	"fmt"
)

// Client is the interception layer's public entry point. It owns its
// provider references (lazy init) and composes the augment, partition and
// reconcile steps around each call; dropping the Client tears the layer
// down with no other state to restore.
type Client struct {
	cfg    ThinktapConfig
	google providerClient // lazily init
	openai providerClient // lazily init

	traces *TraceStore
}

// New creates a Client with the given config.
// If DetectEnv is true, missing API keys are pulled from the environment
// (after loading EnvFile, when set).
func New(cfg ThinktapConfig) *Client {
	if cfg.DetectEnv {
		cfg.detectEnv()
	}
	c := &Client{cfg: cfg}
	if cfg.TraceTTL > 0 {
		size := cfg.TraceMaxSize
		if size <= 0 {
			size = defaultTraceMaxSize
		}
		c.traces = NewTraceStore(cfg.TraceTTL, size)
	}
	return c
}

// Traces returns the reasoning trace store, or nil when tracing is
// disabled.
func (c *Client) Traces() *TraceStore {
	return c.traces
}

// Generate executes a single non-streaming call, returning the response
// with thought content separated from the final answer.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*ReasoningResult, error) {
	plan, err := c.buildPlan(req)
	if err != nil {
		return nil, err
	}
	pc, err := c.ensureProvider(plan.Provider)
	if err != nil {
		return nil, err
	}

	res, err := pc.generate(ctx, plan)
	if err != nil {
		return nil, err
	}

	result := c.assembleResult(plan, res)
	c.storeTrace(plan, result)
	return result, nil
}

// GenerateStream executes a streaming call and folds the chunk sequence
// into one aggregate result. Thought chunks are forwarded to sink as they
// arrive (best-effort; a nil sink disables forwarding). On a producer
// error or cancellation the partial result accumulated so far is returned
// alongside the error.
func (c *Client) GenerateStream(ctx context.Context, req GenerateRequest, sink ThoughtSink) (*ReasoningResult, error) {
	plan, err := c.buildPlan(req)
	if err != nil {
		return nil, err
	}
	pc, err := c.ensureProvider(plan.Provider)
	if err != nil {
		return nil, err
	}

	seq, err := pc.stream(ctx, plan)
	if err != nil {
		return nil, err
	}

	if sink != nil && c.cfg.SinkRetry != nil {
		sink = RetryableSink(sink, *c.cfg.SinkRetry)
	}
	rec := &Reconciler{Sink: sink, Placeholder: c.cfg.placeholder()}
	result, err := rec.Run(ctx, seq)
	if result != nil {
		result.Provider = plan.Provider
		result.Model = plan.Model
	}
	if err != nil {
		return result, err
	}
	c.storeTrace(plan, result)
	return result, nil
}

// LastReasoning looks up the stored reasoning trace for an equivalent
// request, letting a downstream consumer read thought content after the
// final answer was already delivered. Returns nil when tracing is
// disabled or nothing was captured.
func (c *Client) LastReasoning(req GenerateRequest) *ReasoningResult {
	if c.traces == nil {
		return nil
	}
	model := c.resolveModel(req)
	res, ok := c.traces.Get(req.Provider, model, req.Input)
	if !ok {
		return nil
	}
	return res
}

func (c *Client) storeTrace(plan callPlan, result *ReasoningResult) {
	if c.traces == nil || result == nil {
		return
	}
	c.traces.Put(plan.Provider, plan.Model, plan.Input, result)
}

func (c *Client) resolveModel(req GenerateRequest) string {
	if req.Model != "" {
		return req.Model
	}
	switch req.Provider {
	case ProviderGoogle:
		return c.cfg.DefaultModelGoogle
	case ProviderOpenAI:
		return c.cfg.DefaultModelOpenAI
	}
	return ""
}

// buildPlan normalizes a request into a provider-agnostic call plan.
func (c *Client) buildPlan(req GenerateRequest) (callPlan, error) {
	if req.Provider != ProviderGoogle && req.Provider != ProviderOpenAI {
		return callPlan{}, fmt.Errorf("%w %q", ErrUnknownProvider, req.Provider)
	}
	model := c.resolveModel(req)
	if model == "" {
		return callPlan{}, ErrModelRequired
	}

	return callPlan{
		Provider:        req.Provider,
		Model:           model,
		System:          req.System,
		Input:           req.Input,
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxOutputTokens,
		Labels:          req.Labels,
		Thinking:        resolveThinking(req.Thinking, c.cfg.Thinking),
	}, nil
}

func (c *Client) assembleResult(plan callPlan, res callResult) *ReasoningResult {
	rec := &Reconciler{Placeholder: c.cfg.placeholder()}
	var reasoning []string
	if res.hasReasoning {
		reasoning = []string{res.Reasoning}
	}
	result := rec.assemble(reasoning, res.Text, nil)
	result.Provider = plan.Provider
	result.Model = plan.Model
	result.PromptTokens = res.PromptTokens
	result.CompletionTokens = res.CompletionTokens
	result.TotalTokens = res.TotalTokens
	return result
}

func (c *Client) ensureProvider(p Provider) (providerClient, error) {
	switch p {
	case ProviderGoogle:
		if c.google == nil {
			pc, err := newGoogleProvider(c.cfg)
			if err != nil {
				return nil, err
			}
			c.google = pc
		}
		return c.google, nil
	case ProviderOpenAI:
		if c.openai == nil {
			pc, err := newOpenAIProvider(c.cfg)
			if err != nil {
				return nil, err
			}
			c.openai = pc
		}
		return c.openai, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownProvider, p)
	}
}
