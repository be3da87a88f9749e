package envelope

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultModel is the placeholder model name the platform substitutes with
// the deployed LLM at serving time.
const DefaultModel = "tandem-deployed-llm"

const systemPrompt = "You are a helpful assistant"

// Message is one chat message in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the chat-completion shaped wire form accepted by
// deployed agents and by --completion_json files.
type CompletionRequest struct {
	Model       string         `json:"model"`
	Messages    []Message      `json:"messages"`
	N           int            `json:"n,omitempty"`
	Temperature float64        `json:"temperature,omitempty"`
	Stream      bool           `json:"stream,omitempty"`
	ExtraBody   map[string]any `json:"extra_body,omitempty"`
}

// NewCompletionRequest wraps a raw user prompt in the default completion
// envelope used for both local execution and deployment queries.
func NewCompletionRequest(userPrompt string, extraBody map[string]any) CompletionRequest {
	return CompletionRequest{
		Model: DefaultModel,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		N:           1,
		Temperature: 0.01,
		ExtraBody:   extraBody,
	}
}

// LoadCompletionFile reads a completion request from a JSON file.
func LoadCompletionFile(path string) (CompletionRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CompletionRequest{}, fmt.Errorf("read completion json: %w", err)
	}
	var req CompletionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return CompletionRequest{}, fmt.Errorf("parse completion json %s: %w", path, err)
	}
	return req, nil
}

// UserPrompt extracts the first user message content.
func (c CompletionRequest) UserPrompt() (string, error) {
	for _, msg := range c.Messages {
		if msg.Role == "user" {
			if msg.Content == "" {
				break
			}
			return msg.Content, nil
		}
	}
	return "", fmt.Errorf("no user prompt found in the messages")
}

// Request converts the completion envelope into a normalized Request.
func (c CompletionRequest) Request() (Request, error) {
	prompt, err := c.UserPrompt()
	if err != nil {
		return Request{}, err
	}
	return NewRequest(prompt), nil
}
