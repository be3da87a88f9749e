package adapter

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandemkit/tandem/internal/envelope"
	"github.com/tandemkit/tandem/internal/tools"
	"github.com/tandemkit/tandem/internal/workflow"
)

func TestCrew_ChainsTaskOutputs(t *testing.T) {
	t.Parallel()

	completer := &stubCompleter{outputs: []string{"the outline", "the article"}}
	a, err := New(Deps{Definition: testDefinition(workflow.FrameworkCrew), Completer: completer})
	require.NoError(t, err)

	resp := testRunner(t, a).Execute(context.Background(), envelope.NewRequest("Artificial Intelligence"))

	require.Equal(t, envelope.StatusSuccess, resp.Status)
	assert.Equal(t, "the article", resp.Content)
	require.Len(t, completer.calls, 2)
	assert.Contains(t, completer.calls[0].Instructions, "Content Planner")
	assert.Contains(t, completer.calls[0].Input, "Artificial Intelligence")
	assert.Contains(t, completer.calls[1].Input, "the outline")
	assert.Equal(t, int64(30), resp.Usage.TotalTokens)
}

type searchArgs struct {
	Query string `json:"query"`
}

func crewToolBridge(t *testing.T) *tools.Bridge {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "crew-tools", Version: "0.0.1"}, nil)
	mcp.AddTool(server, &mcp.Tool{Name: "search", Description: "Search the web."},
		func(ctx context.Context, req *mcp.CallToolRequest, args searchArgs) (*mcp.CallToolResult, any, error) {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: "results for " + args.Query}},
			}, nil, nil
		})

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	_, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "crew-test", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	bridge, err := tools.NewBridge(ctx, session)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bridge.Close() })
	return bridge
}

func TestCrew_RunsOneToolRound(t *testing.T) {
	t.Parallel()

	def := testDefinition(workflow.FrameworkCrew)
	def.Agents[0].Tools = []string{"search"}

	completer := &stubCompleter{outputs: []string{
		`{"tool": "search", "arguments": {"query": "AI trends"}}`,
		"outline built from search",
		"the article",
	}}
	a, err := New(Deps{Definition: def, Completer: completer, Tools: crewToolBridge(t)})
	require.NoError(t, err)

	resp := testRunner(t, a).Execute(context.Background(), envelope.NewRequest("Artificial Intelligence"))

	require.Equal(t, envelope.StatusSuccess, resp.Status)
	assert.Equal(t, "the article", resp.Content)
	require.Len(t, completer.calls, 3)
	assert.Contains(t, completer.calls[0].Instructions, "search")
	assert.Contains(t, completer.calls[1].Input, "results for AI trends")
	assert.Contains(t, completer.calls[2].Input, "outline built from search")
}

func TestCrew_ToollessAgentSkipsToolRound(t *testing.T) {
	t.Parallel()

	completer := &stubCompleter{outputs: []string{
		`{"tool": "search", "arguments": {"query": "x"}}`,
		"done",
	}}
	a, err := New(Deps{Definition: testDefinition(workflow.FrameworkCrew), Completer: completer, Tools: crewToolBridge(t)})
	require.NoError(t, err)

	resp := testRunner(t, a).Execute(context.Background(), envelope.NewRequest("anything"))

	// Without a tool grant the JSON reply is just the task output.
	require.Equal(t, envelope.StatusSuccess, resp.Status)
	require.Len(t, completer.calls, 2)
	assert.Equal(t, "done", resp.Content)
	assert.Contains(t, completer.calls[1].Input, `"tool": "search"`)
}
