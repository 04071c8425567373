package thinktap

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGoogleProvider_BuildConfig(t *testing.T) {
	temp := float32(0.4)
	maxTokens := 256
	plan := callPlan{
		Provider:        ProviderGoogle,
		Model:           "gemini-2.5-flash",
		System:          "answer in haiku",
		Input:           "hello",
		Temperature:     &temp,
		MaxOutputTokens: &maxTokens,
		Labels:          map[string]string{"team": "chat"},
	}

	p := &googleProvider{}
	cfg := p.buildConfig(plan, false)

	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, "answer in haiku", cfg.SystemInstruction.Parts[0].Text)
	require.NotNil(t, cfg.Temperature)
	assert.Equal(t, float32(0.4), *cfg.Temperature)
	assert.Equal(t, int32(256), cfg.MaxOutputTokens)
	assert.Equal(t, map[string]string{"team": "chat"}, cfg.Labels)

	require.NotNil(t, cfg.ThinkingConfig)
	assert.True(t, cfg.ThinkingConfig.IncludeThoughts)
	require.NotNil(t, cfg.ThinkingConfig.ThinkingBudget)
	assert.Equal(t, int32(DefaultThinkingBudget), *cfg.ThinkingConfig.ThinkingBudget)
}

func TestGoogleProvider_BuildConfigCompat(t *testing.T) {
	p := &googleProvider{}
	cfg := p.buildConfig(callPlan{Model: "gemini-1.5-pro"}, true)

	require.NotNil(t, cfg.ThinkingConfig)
	assert.False(t, cfg.ThinkingConfig.IncludeThoughts)
	require.NotNil(t, cfg.ThinkingConfig.ThinkingBudget)
}

func TestGoogleProvider_BuildConfigNoThinking(t *testing.T) {
	p := &googleProvider{}
	cfg := p.buildConfig(callPlan{
		Model:    "gemini-2.5-flash",
		Thinking: ThinkingOptions{IncludeThoughts: boolPtr(false)},
	}, false)

	assert.Nil(t, cfg.ThinkingConfig)
	assert.Nil(t, cfg.SystemInstruction, "blank system prompt must not add an instruction")
}

func TestPartitionStreamResponse(t *testing.T) {
	res := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "mulling it over", Thought: true},
				{Text: "chunk text"},
			}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     2,
			CandidatesTokenCount: 4,
			TotalTokenCount:      6,
		},
	}

	chunk := partitionStreamResponse(res)

	assert.Equal(t, "mulling it over", chunk.Reasoning)
	assert.Equal(t, "chunk text", chunk.Text)
	require.NotNil(t, chunk.Usage)
	assert.Equal(t, 6, chunk.Usage.TotalTokens)
}

func TestPartitionStreamResponse_Malformed(t *testing.T) {
	assert.Equal(t, Chunk{}, partitionStreamResponse(nil))
	assert.Equal(t, Chunk{}, partitionStreamResponse(&genai.GenerateContentResponse{}))
}

func TestIsThoughtsIncompatible(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "sentinel", err: ErrThoughtsUnsupported, want: true},
		{name: "wrapped sentinel", err: errors.New("call failed: " + ErrThoughtsUnsupported.Error()), want: true},
		{name: "api schema rejection", err: errors.New(`Unknown name "include_thoughts" at 'generation_config.thinking_config'`), want: true},
		{name: "unrelated", err: errors.New("quota exceeded"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isThoughtsIncompatible(tt.err))
		})
	}
}

func TestNewGoogleProvider_RequiresCredentials(t *testing.T) {
	_, err := newGoogleProvider(ThinktapConfig{})
	require.Error(t, err)
}

var errSchemaRejection = errors.New(`Unknown name "include_thoughts" at 'generation_config.thinking_config'`)

func TestGoogleProvider_GenerateRetriesWithCompatConfig(t *testing.T) {
	var configs []*genai.GenerateContentConfig
	p := &googleProvider{
		generateFn: func(_ context.Context, _ string, _ []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			configs = append(configs, cfg)
			if len(configs) == 1 {
				return nil, errSchemaRejection
			}
			return responseWithParts(
				&genai.Part{Text: "still thinking", Thought: true},
				&genai.Part{Text: "recovered answer"},
			), nil
		},
	}

	res, err := p.generate(context.Background(), callPlan{Model: "gemini-1.5-pro", Input: "q"})
	require.NoError(t, err)
	assert.Equal(t, "recovered answer", res.Text)
	assert.Equal(t, "still thinking", res.Reasoning)

	require.Len(t, configs, 2, "expected exactly one retry")
	require.NotNil(t, configs[0].ThinkingConfig)
	assert.True(t, configs[0].ThinkingConfig.IncludeThoughts)
	require.NotNil(t, configs[1].ThinkingConfig)
	assert.False(t, configs[1].ThinkingConfig.IncludeThoughts, "retry must use the budget-only config")
	require.NotNil(t, configs[1].ThinkingConfig.ThinkingBudget)
	assert.Equal(t, int32(DefaultThinkingBudget), *configs[1].ThinkingConfig.ThinkingBudget)
}

func TestGoogleProvider_GenerateUnrelatedErrorNotRetried(t *testing.T) {
	boom := errors.New("quota exceeded")
	calls := 0
	p := &googleProvider{
		generateFn: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			calls++
			return nil, boom
		},
	}

	_, err := p.generate(context.Background(), callPlan{Model: "m", Input: "q"})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestGoogleProvider_GenerateNoRetryWhenThoughtsDisabled(t *testing.T) {
	calls := 0
	p := &googleProvider{
		generateFn: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			calls++
			return nil, errSchemaRejection
		},
	}

	_, err := p.generate(context.Background(), callPlan{
		Model:    "m",
		Input:    "q",
		Thinking: ThinkingOptions{IncludeThoughts: boolPtr(false)},
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestGoogleProvider_StreamRestartsOnFirstError(t *testing.T) {
	var configs []*genai.GenerateContentConfig
	p := &googleProvider{
		streamFn: func(_ context.Context, _ string, _ []*genai.Content, cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
			configs = append(configs, cfg)
			if len(configs) == 1 {
				return func(yield func(*genai.GenerateContentResponse, error) bool) {
					yield(nil, errSchemaRejection)
				}
			}
			return func(yield func(*genai.GenerateContentResponse, error) bool) {
				if !yield(responseWithParts(&genai.Part{Text: "plan", Thought: true}), nil) {
					return
				}
				yield(responseWithParts(&genai.Part{Text: "answer"}), nil)
			}
		},
	}

	seq, err := p.stream(context.Background(), callPlan{Model: "m", Input: "q"})
	require.NoError(t, err)

	var chunks []Chunk
	for chunk, err := range seq {
		require.NoError(t, err, "rejection before the first chunk must be absorbed by the restart")
		chunks = append(chunks, chunk)
	}

	require.Len(t, configs, 2, "expected exactly one restart")
	require.NotNil(t, configs[1].ThinkingConfig)
	assert.False(t, configs[1].ThinkingConfig.IncludeThoughts)
	require.Len(t, chunks, 2)
	assert.Equal(t, "plan", chunks[0].Reasoning)
	assert.Equal(t, "answer", chunks[1].Text)
}

func TestGoogleProvider_StreamMidErrorNotRestarted(t *testing.T) {
	calls := 0
	p := &googleProvider{
		streamFn: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
			calls++
			return func(yield func(*genai.GenerateContentResponse, error) bool) {
				if !yield(responseWithParts(&genai.Part{Text: "partial"}), nil) {
					return
				}
				yield(nil, errSchemaRejection)
			}
		},
	}

	seq, err := p.stream(context.Background(), callPlan{Model: "m", Input: "q"})
	require.NoError(t, err)

	var chunks []Chunk
	var seqErr error
	for chunk, err := range seq {
		if err != nil {
			seqErr = err
			break
		}
		chunks = append(chunks, chunk)
	}

	assert.Equal(t, 1, calls, "a rejection after content was delivered must not restart the stream")
	require.Len(t, chunks, 1)
	assert.Equal(t, "partial", chunks[0].Text)
	require.ErrorIs(t, seqErr, errSchemaRejection)
}
