package thinktap

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// openAIProvider talks to any OpenAI-compatible backend. Reasoning-capable
// models on this API shape (DeepSeek-R1 and friends) return thought text
// already separated in the reasoning_content field, so no partitioning is
// needed on this path; the adapter only maps fields onto the normalized
// result and chunk shapes.
type openAIProvider struct {
	client *openai.Client
}

func newOpenAIProvider(cfg ThinktapConfig) (providerClient, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, errors.New("thinktap: OpenAI API key is required to use ProviderOpenAI")
	}
	oc := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		oc.BaseURL = cfg.OpenAIBaseURL
	}
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	} else if cfg.Timeout > 0 {
		oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &openAIProvider{client: openai.NewClientWithConfig(oc)}, nil
}

func (p *openAIProvider) buildRequest(plan callPlan, streaming bool) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if strings.TrimSpace(plan.System) != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: plan.System,
		})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: plan.Input,
	})

	req := openai.ChatCompletionRequest{
		Model:    plan.Model,
		Messages: msgs,
		Stream:   streaming,
	}
	if plan.Temperature != nil {
		req.Temperature = *plan.Temperature
	}
	if plan.MaxOutputTokens != nil {
		req.MaxCompletionTokens = *plan.MaxOutputTokens
	}
	if streaming {
		req.StreamOptions = &openai.StreamOptions{IncludeUsage: true}
	}
	return req
}

func (p *openAIProvider) generate(ctx context.Context, plan callPlan) (callResult, error) {
	resp, err := p.client.CreateChatCompletion(ctx, p.buildRequest(plan, false))
	if err != nil {
		return callResult{}, err
	}
	if len(resp.Choices) == 0 {
		return callResult{}, nil
	}

	msg := resp.Choices[0].Message
	cr := callResult{Text: msg.Content}
	if msg.ReasoningContent != "" {
		cr.Reasoning = msg.ReasoningContent
		cr.hasReasoning = true
	}
	if resp.Usage.PromptTokens > 0 {
		cr.PromptTokens = intPtr(resp.Usage.PromptTokens)
	}
	if resp.Usage.CompletionTokens > 0 {
		cr.CompletionTokens = intPtr(resp.Usage.CompletionTokens)
	}
	if resp.Usage.TotalTokens > 0 {
		cr.TotalTokens = intPtr(resp.Usage.TotalTokens)
	}
	return cr, nil
}

func (p *openAIProvider) stream(ctx context.Context, plan callPlan) (ChunkSeq, error) {
	stream, err := p.client.CreateChatCompletionStream(ctx, p.buildRequest(plan, true))
	if err != nil {
		return nil, err
	}

	seq := func(yield func(Chunk, error) bool) {
		defer stream.Close()
		for {
			resp, err := stream.Recv()
			if err != nil {
				if err != io.EOF {
					yield(Chunk{}, err)
				}
				return
			}

			var chunk Chunk
			if len(resp.Choices) > 0 {
				delta := resp.Choices[0].Delta
				chunk.Reasoning = delta.ReasoningContent
				chunk.Text = delta.Content
			}
			if resp.Usage != nil {
				chunk.Usage = &StreamUsage{
					PromptTokens:     resp.Usage.PromptTokens,
					CompletionTokens: resp.Usage.CompletionTokens,
					TotalTokens:      resp.Usage.TotalTokens,
				}
			}
			if chunk == (Chunk{}) {
				continue
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
	return seq, nil
}
