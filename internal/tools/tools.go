// Package tools bridges workflow agents to an MCP tool server. Agents
// reference tools by name; the bridge owns the client session and the
// tool catalog discovered at connect time.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var clientInfo = &mcp.Implementation{Name: "tandem", Version: "0.1.0"}

// Tool is one callable capability exposed by the server.
type Tool struct {
	Name        string
	Description string
}

// Bridge wraps an MCP client session and its discovered tool catalog.
type Bridge struct {
	session *mcp.ClientSession
	tools   []Tool
}

// Connect starts the configured MCP server command and lists its tools.
func Connect(ctx context.Context, command []string) (*Bridge, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("mcp command is required")
	}
	client := mcp.NewClient(clientInfo, nil)
	transport := &mcp.CommandTransport{Command: exec.CommandContext(ctx, command[0], command[1:]...)}
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect mcp server: %w", err)
	}
	return NewBridge(ctx, session)
}

// NewBridge builds a bridge over an established session. Used directly by
// tests with in-memory transports.
func NewBridge(ctx context.Context, session *mcp.ClientSession) (*Bridge, error) {
	res, err := session.ListTools(ctx, nil)
	if err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("list mcp tools: %w", err)
	}
	tools := make([]Tool, 0, len(res.Tools))
	for _, t := range res.Tools {
		tools = append(tools, Tool{Name: t.Name, Description: t.Description})
	}
	return &Bridge{session: session, tools: tools}, nil
}

// Tools returns the discovered catalog.
func (b *Bridge) Tools() []Tool {
	return b.tools
}

// Grant returns the subset of the catalog an agent is allowed to use.
func (b *Bridge) Grant(names []string) []Tool {
	allowed := make(map[string]bool, len(names))
	for _, n := range names {
		allowed[n] = true
	}
	var out []Tool
	for _, t := range b.tools {
		if allowed[t.Name] {
			out = append(out, t)
		}
	}
	return out
}

// Call invokes a tool and returns its concatenated text output.
func (b *Bridge) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	res, err := b.session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return "", fmt.Errorf("call tool %s: %w", name, err)
	}
	var sb strings.Builder
	for _, content := range res.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			sb.WriteString(text.Text)
		}
	}
	if res.IsError {
		return "", fmt.Errorf("tool %s failed: %s", name, sb.String())
	}
	return sb.String(), nil
}

// Close shuts down the client session.
func (b *Bridge) Close() error {
	return b.session.Close()
}

// Describe renders a prompt block advertising the given tools.
func Describe(granted []Tool) string {
	if len(granted) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("You may call one of these tools by replying with only a JSON object ")
	sb.WriteString(`shaped like {"tool": "<name>", "arguments": {...}}:` + "\n")
	for _, t := range granted {
		sb.WriteString("- ")
		sb.WriteString(t.Name)
		if t.Description != "" {
			sb.WriteString(": ")
			sb.WriteString(t.Description)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Invocation is a tool call parsed from model output.
type Invocation struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
}

// ParseInvocation recognizes a model reply that is a single JSON tool
// invocation. Any other reply shape is treated as a final answer.
func ParseInvocation(output string) (Invocation, bool) {
	trimmed := strings.TrimSpace(output)
	if !strings.HasPrefix(trimmed, "{") {
		return Invocation{}, false
	}
	var inv Invocation
	if err := json.Unmarshal([]byte(trimmed), &inv); err != nil || inv.Tool == "" {
		return Invocation{}, false
	}
	return inv, true
}
