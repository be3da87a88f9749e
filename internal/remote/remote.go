// Package remote queries agents already deployed on the platform. A
// deployment exposes the same OpenAI-compatible chat surface the local
// adapters consume, so the client reuses the completion envelope as is.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"

	"github.com/tandemkit/tandem/internal/adapter"
	"github.com/tandemkit/tandem/internal/config"
	"github.com/tandemkit/tandem/internal/envelope"
)

// Client calls one deployed agent.
type Client struct {
	deploymentID string
	client       openai.Client
}

// NewClient builds a client for the given deployment.
func NewClient(cfg config.Config, deploymentID string, httpClient *http.Client) (*Client, error) {
	id := strings.TrimSpace(deploymentID)
	if id == "" {
		return nil, fmt.Errorf("deployment id is required")
	}
	if strings.TrimSpace(cfg.APIToken) == "" {
		return nil, fmt.Errorf("api token is required to query a deployment")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIToken),
		option.WithBaseURL(cfg.DeploymentURL(id)),
		option.WithRequestTimeout(cfg.LLMTimeout()),
		option.WithMaxRetries(0),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &Client{deploymentID: id, client: openai.NewClient(opts...)}, nil
}

// Execute sends the completion envelope to the deployment and maps the
// reply into a normalized response. HTTP-level failures classify as
// upstream, anything below HTTP as a network failure.
func (c *Client) Execute(ctx context.Context, comp envelope.CompletionRequest) (envelope.Response, error) {
	model := comp.Model
	if model == "" {
		model = envelope.DefaultModel
	}
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(comp.Messages))
	for _, msg := range comp.Messages {
		switch msg.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(msg.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}
	if len(messages) == 0 {
		return envelope.Response{}, adapter.Invalidf("completion request has no messages")
	}

	log.Debug().Str("deployment_id", c.deploymentID).Msg("querying deployment")
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    messages,
		Temperature: openai.Float(comp.Temperature),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return envelope.Response{}, adapter.Upstreamf("deployment %s: %v", c.deploymentID, err)
		}
		return envelope.Response{}, adapter.Networkf("deployment %s unreachable: %v", c.deploymentID, err)
	}
	if len(resp.Choices) == 0 {
		return envelope.Response{}, adapter.Upstreamf("deployment %s returned no choices", c.deploymentID)
	}

	out := envelope.Success(resp.Choices[0].Message.Content, envelope.Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	})
	out.Adapter = "deployment"
	return out, nil
}
