// Package envelope defines the normalized request and response types
// exchanged between the CLI, adapters, and deployed endpoints.
package envelope

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Response status values. A response always carries exactly one status.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Request is the framework-agnostic input to an adapter: either a free-text
// prompt or a structured inputs map, plus an optional deployment target.
type Request struct {
	Prompt       string         `json:"prompt,omitempty"`
	Inputs       map[string]any `json:"inputs,omitempty"`
	DeploymentID string         `json:"deployment_id,omitempty"`
}

// NewRequest builds a Request from a raw user prompt. A prompt that parses
// as a JSON object becomes the structured inputs map; anything else is kept
// as free text.
func NewRequest(userPrompt string) Request {
	trimmed := strings.TrimSpace(userPrompt)
	if strings.HasPrefix(trimmed, "{") {
		var inputs map[string]any
		if err := json.Unmarshal([]byte(trimmed), &inputs); err == nil {
			return Request{Inputs: inputs}
		}
	}
	return Request{Prompt: userPrompt}
}

// Validate reports whether the request carries any usable input.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" && len(r.Inputs) == 0 {
		return fmt.Errorf("request must carry a prompt or structured inputs")
	}
	return nil
}

// KickoffInputs maps the request into the inputs expected by workflow
// tasks. A free-text prompt becomes {"topic": <prompt>}.
func (r Request) KickoffInputs() map[string]any {
	if len(r.Inputs) > 0 {
		return r.Inputs
	}
	return map[string]any{"topic": r.Prompt}
}

// Topic renders the request's subject line for prompt construction.
func (r Request) Topic() string {
	if len(r.Inputs) == 0 {
		return r.Prompt
	}
	if topic, ok := r.Inputs["topic"].(string); ok && topic != "" {
		return topic
	}
	data, err := json.Marshal(r.Inputs)
	if err != nil {
		return r.Prompt
	}
	return string(data)
}

// Usage carries token accounting for one invocation.
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// Add accumulates usage from another call.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// Response is the normalized result of one invocation. Content holds the
// final task's output; Error is set only when Status is "error".
type Response struct {
	ID      string `json:"id,omitempty"`
	Status  string `json:"status"`
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
	Adapter string `json:"adapter,omitempty"`
	Usage   Usage  `json:"usage"`
}

// Success builds a success response.
func Success(content string, usage Usage) Response {
	return Response{Status: StatusSuccess, Content: content, Usage: usage}
}

// Failure builds an error response from a message.
func Failure(message string) Response {
	return Response{Status: StatusError, Error: message}
}

// Format renders the response for CLI output.
func (r Response) Format() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"status":%q,"error":"marshal response: %s"}`, StatusError, err)
	}
	return string(data)
}
