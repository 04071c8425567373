package thinktap

import (
	"context"
	"errors"
	"iter"
	"strings"

	"google.golang.org/genai"
)

type googleProvider struct {
	client *genai.Client

	// SDK call seams, defaulted to the client's Models methods. Tests
	// substitute fakes here to drive the compat-fallback paths.
	generateFn func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	streamFn   func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

func newGoogleProvider(cfg ThinktapConfig) (providerClient, error) {
	if cfg.GoogleAPIKey == "" && cfg.GoogleProject == "" {
		return nil, errors.New("thinktap: Google API key is required to use ProviderGoogle")
	}
	cc := &genai.ClientConfig{
		APIKey: cfg.GoogleAPIKey,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: cfg.GoogleBaseURL,
		},
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.GoogleProject != "" && cfg.GoogleLocation != "" {
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.GoogleProject
		cc.Location = cfg.GoogleLocation
	}
	gc, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, err
	}
	return &googleProvider{
		client:     gc,
		generateFn: gc.Models.GenerateContent,
		streamFn:   gc.Models.GenerateContentStream,
	}, nil
}

// buildConfig assembles the base generation config for a plan and then
// attaches the thinking parameters. compat selects the budget-only
// fallback form.
func (p *googleProvider) buildConfig(plan callPlan, compat bool) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if strings.TrimSpace(plan.System) != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: plan.System}},
		}
	}
	if plan.Temperature != nil {
		cfg.Temperature = genai.Ptr(*plan.Temperature)
	}
	if plan.MaxOutputTokens != nil {
		cfg.MaxOutputTokens = int32(*plan.MaxOutputTokens)
	}
	if len(plan.Labels) > 0 {
		cfg.Labels = plan.Labels
	}

	if compat {
		return applyThinkingCompat(cfg, plan.Thinking)
	}
	return ApplyThinking(cfg, plan.Thinking)
}

func (p *googleProvider) generate(ctx context.Context, plan callPlan) (callResult, error) {
	contents := genai.Text(plan.Input)

	res, err := p.generateFn(ctx, plan.Model, contents, p.buildConfig(plan, false))
	if err != nil && plan.Thinking.includeThoughts() && isThoughtsIncompatible(err) {
		logger.Info("include_thoughts rejected, retrying with budget-only thinking config",
			"model", plan.Model, "error", err)
		res, err = p.generateFn(ctx, plan.Model, contents, p.buildConfig(plan, true))
	}
	if err != nil {
		return callResult{}, err
	}

	cr := callResult{}
	cr.Reasoning, cr.hasReasoning = PartitionThoughts(res)
	cr.Text = candidateText(res)

	if res.UsageMetadata != nil {
		if res.UsageMetadata.PromptTokenCount > 0 {
			cr.PromptTokens = intPtr(int(res.UsageMetadata.PromptTokenCount))
		}
		if res.UsageMetadata.CandidatesTokenCount > 0 {
			cr.CompletionTokens = intPtr(int(res.UsageMetadata.CandidatesTokenCount))
		}
		if res.UsageMetadata.TotalTokenCount > 0 {
			cr.TotalTokens = intPtr(int(res.UsageMetadata.TotalTokenCount))
		}
	}
	return cr, nil
}

// stream yields partitioned chunks from the SDK's streaming iterator.
// When the very first yielded error is a thinking-config schema
// rejection, the stream restarts once with the budget-only config before
// any chunk reaches the consumer; later errors propagate as-is.
func (p *googleProvider) stream(ctx context.Context, plan callPlan) (ChunkSeq, error) {
	seq := func(yield func(Chunk, error) bool) {
		inner := p.streamFn(ctx, plan.Model, genai.Text(plan.Input), p.buildConfig(plan, false))

		first := true
		for res, err := range inner {
			if err != nil && first && plan.Thinking.includeThoughts() && isThoughtsIncompatible(err) {
				logger.Info("include_thoughts rejected mid-stream, restarting with budget-only thinking config",
					"model", plan.Model, "error", err)
				inner = p.streamFn(ctx, plan.Model, genai.Text(plan.Input), p.buildConfig(plan, true))
				for res, err := range inner {
					if !yield(partitionStreamResponse(res), err) {
						return
					}
				}
				return
			}
			first = false
			if !yield(partitionStreamResponse(res), err) {
				return
			}
		}
	}
	return seq, nil
}

// partitionStreamResponse adapts one raw streamed response into a Chunk,
// separating thought parts from final text in place.
func partitionStreamResponse(res *genai.GenerateContentResponse) Chunk {
	if res == nil {
		return Chunk{}
	}
	var chunk Chunk
	chunk.Reasoning, _ = PartitionThoughts(res)
	chunk.Text = streamText(res)
	if res.UsageMetadata != nil {
		chunk.Usage = &StreamUsage{
			PromptTokens:     int(res.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(res.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(res.UsageMetadata.TotalTokenCount),
		}
	}
	return chunk
}
