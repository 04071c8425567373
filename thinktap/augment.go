package thinktap

import (
	"google.golang.org/genai"
)

// resolveThinking merges per-call options over config defaults and
// normalizes them. It never fails: absent options mean "thoughts on,
// default budget", and nonsense budgets fall back to the default.
func resolveThinking(opts *ThinkingOptions, defaults ThinkingOptions) ThinkingOptions {
	merged := defaults
	if opts != nil {
		if opts.IncludeThoughts != nil {
			merged.IncludeThoughts = opts.IncludeThoughts
		}
		if opts.Budget != nil {
			merged.Budget = opts.Budget
		}
	}
	return merged
}

func (o ThinkingOptions) includeThoughts() bool {
	if o.IncludeThoughts == nil {
		return true
	}
	return *o.IncludeThoughts
}

// budget returns the effective thinking budget. -1 (dynamic) passes
// through; other negative values are rejected and replaced with the
// default.
func (o ThinkingOptions) budget() int {
	if o.Budget == nil || *o.Budget < -1 {
		return DefaultThinkingBudget
	}
	return *o.Budget
}

// ApplyThinking attaches reasoning-mode parameters to an already-built
// generation config. Only ThinkingConfig is touched; every other field of
// cfg is left as the caller constructed it. When thoughts were not
// requested the config passes through unmodified.
//
// Budget semantics follow the Gemini API: -1 lets the model decide, 0
// disables thinking entirely, positive values are a fixed token budget.
func ApplyThinking(cfg *genai.GenerateContentConfig, opts ThinkingOptions) *genai.GenerateContentConfig {
	if cfg == nil {
		cfg = &genai.GenerateContentConfig{}
	}
	if !opts.includeThoughts() {
		return cfg
	}

	switch b := opts.budget(); {
	case b == -1:
		// Dynamic budget: the field stays unset and the model decides.
		cfg.ThinkingConfig = &genai.ThinkingConfig{IncludeThoughts: true}
	case b == 0:
		cfg.ThinkingConfig = &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(int32(0)),
		}
	default:
		cfg.ThinkingConfig = &genai.ThinkingConfig{
			IncludeThoughts: true,
			ThinkingBudget:  genai.Ptr(int32(b)),
		}
	}
	return cfg
}

// applyThinkingCompat is the reduced-parameter fallback for model versions
// whose config schema rejects include_thoughts: the thinking budget is
// still requested, but thought summaries are not. Used by the Google
// provider after isThoughtsIncompatible classified a call failure.
func applyThinkingCompat(cfg *genai.GenerateContentConfig, opts ThinkingOptions) *genai.GenerateContentConfig {
	if cfg == nil {
		cfg = &genai.GenerateContentConfig{}
	}
	if !opts.includeThoughts() {
		return cfg
	}
	if b := opts.budget(); b >= 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(int32(b))}
	} else {
		cfg.ThinkingConfig = nil
	}
	return cfg
}
