package llm

import (
	"context"
	"time"

	"github.com/tandemkit/tandem/internal/envelope"
)

const (
	defaultBaseURL   = "https://api.openai.com/v1"
	defaultAPIKeyEnv = "OPENAI_API_KEY"
	defaultTimeout   = 90 * time.Second
)

// Config is model client configuration.
type Config struct {
	Model     string
	BaseURL   string
	APIKey    string
	APIKeyEnv string
	Timeout   time.Duration
}

// CompletionRequest is a single model call: system instructions plus user
// input.
type CompletionRequest struct {
	Instructions string
	Input        string
}

// CompletionResponse carries the model output and its token usage.
type CompletionResponse struct {
	OutputText string
	Usage      envelope.Usage
}

// Completer is the single-call surface adapters depend on. Tests plug in
// deterministic stubs.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}
