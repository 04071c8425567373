package thinktap

import (
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied when a request or config leaves thinking options unset.
const (
	// DefaultThinkingBudget is the thinking token budget used when a
	// caller does not specify one.
	DefaultThinkingBudget = 2048

	// DefaultPlaceholder is substituted for FinalText when a completed
	// call produced no final content, so downstream transports never
	// receive an empty message.
	DefaultPlaceholder = "(no response)"
)

// ThinktapConfig contains client-wide configuration.
// Provider selection stays per-call (GenerateRequest.Provider); the config
// holds secrets, HTTP knobs and interception defaults.
type ThinktapConfig struct {
	// Default model per provider if not set per-call.
	DefaultModelGoogle string
	DefaultModelOpenAI string

	// Google/GenAI configuration.
	GoogleAPIKey   string // falls back to env GOOGLE_API_KEY if empty and DetectEnv is true
	GoogleBaseURL  string // optional custom endpoint
	GoogleProject  string // required for Vertex AI
	GoogleLocation string // required for Vertex AI

	// OpenAI-compatible configuration (reasoning-capable backends such
	// as DeepSeek expose reasoning_content through this API shape).
	OpenAIAPIKey  string // falls back to env OPENAI_API_KEY if empty and DetectEnv is true
	OpenAIBaseURL string // optional; points at any OpenAI-compatible endpoint

	// Thinking defaults applied when GenerateRequest.Thinking is nil.
	Thinking ThinkingOptions

	// Placeholder overrides DefaultPlaceholder for empty final answers.
	Placeholder string

	// SinkRetry, when set, wraps live thought sinks with retry/backoff.
	// Forwarding stays best-effort: exhausted retries are logged and
	// absorbed, never surfaced to the caller.
	SinkRetry *RetryConfig

	// TraceTTL enables the in-memory reasoning trace store when > 0.
	TraceTTL     time.Duration
	TraceMaxSize int

	// Shared client options.
	HTTPClient *http.Client
	Timeout    time.Duration

	// Auto-detection.
	DetectEnv bool   // when true, pull missing values from environment
	EnvFile   string // optional .env file loaded before env lookup
}

// placeholder resolves the configured empty-answer substitute.
func (cfg ThinktapConfig) placeholder() string {
	if cfg.Placeholder != "" {
		return cfg.Placeholder
	}
	return DefaultPlaceholder
}

// detectEnv fills missing secrets from the environment, optionally loading
// an .env file first. Load errors are ignored: a missing .env file simply
// means the process environment is the only source.
func (cfg *ThinktapConfig) detectEnv() {
	if cfg.EnvFile != "" {
		_ = godotenv.Load(cfg.EnvFile)
	}
	if cfg.GoogleAPIKey == "" {
		cfg.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if cfg.OpenAIAPIKey == "" {
		cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
}
