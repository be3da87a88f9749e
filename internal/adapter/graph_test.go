package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"github.com/tandemkit/tandem/internal/workflow"
)

type testInvocationContext struct {
	context.Context
	sess  session.Session
	ended bool
}

func (c *testInvocationContext) Agent() agent.Agent          { return nil }
func (c *testInvocationContext) Artifacts() agent.Artifacts  { return nil }
func (c *testInvocationContext) Memory() agent.Memory        { return nil }
func (c *testInvocationContext) Session() session.Session    { return c.sess }
func (c *testInvocationContext) InvocationID() string        { return "inv-test" }
func (c *testInvocationContext) Branch() string              { return "" }
func (c *testInvocationContext) UserContent() *genai.Content { return nil }
func (c *testInvocationContext) RunConfig() *agent.RunConfig { return nil }
func (c *testInvocationContext) EndInvocation()              { c.ended = true }
func (c *testInvocationContext) Ended() bool                 { return c.ended }
func (c *testInvocationContext) WithContext(ctx context.Context) agent.InvocationContext {
	clone := *c
	clone.Context = ctx
	return &clone
}

func newGraphInvocationContext(t *testing.T, cursor string) *testInvocationContext {
	t.Helper()
	ctx := context.Background()
	created, err := session.InMemoryService().Create(ctx, &session.CreateRequest{
		AppName: "tandem",
		UserID:  "test-user",
		State: map[string]any{
			"cursor": cursor,
		},
	})
	require.NoError(t, err)
	return &testInvocationContext{Context: ctx, sess: created.Session}
}

func runNodeOnce(t *testing.T, exec *graphExecution, ictx *testInvocationContext) {
	t.Helper()
	for _, err := range exec.runNode(ictx) {
		require.NoError(t, err)
	}
}

func TestGraphNode_AdvancesCursorAndChainsOutput(t *testing.T) {
	t.Parallel()

	completer := &stubCompleter{outputs: []string{"the outline", "the article"}}
	exec := &graphExecution{
		def:       testDefinition(workflow.FrameworkGraph),
		completer: completer,
		inputs:    map[string]any{"topic": "Artificial Intelligence"},
	}
	ictx := newGraphInvocationContext(t, "plan")

	runNodeOnce(t, exec, ictx)
	assert.False(t, ictx.ended)
	assert.Equal(t, "the outline", exec.output)

	cursor, err := ictx.Session().State().Get("cursor")
	require.NoError(t, err)
	assert.Equal(t, "write", cursor)

	runNodeOnce(t, exec, ictx)
	assert.True(t, ictx.ended, "last node must end the invocation")
	assert.Equal(t, "the article", exec.output)
	assert.Equal(t, int64(30), exec.usage.TotalTokens)
	require.Len(t, completer.calls, 2)
	assert.Contains(t, completer.calls[1].Input, "the outline")
}

func TestGraphNode_HonorsNextEdge(t *testing.T) {
	t.Parallel()

	def := testDefinition(workflow.FrameworkGraph)
	def.Tasks[0].Next = "plan" // self edge overrides declaration order
	require.NoError(t, def.Validate())

	exec := &graphExecution{
		def:       def,
		completer: &stubCompleter{},
		inputs:    map[string]any{"topic": "AI"},
	}
	ictx := newGraphInvocationContext(t, "plan")

	runNodeOnce(t, exec, ictx)
	cursor, err := ictx.Session().State().Get("cursor")
	require.NoError(t, err)
	assert.Equal(t, "plan", cursor)
	assert.False(t, ictx.ended)
}

func TestGraphNode_UndefinedCursorFails(t *testing.T) {
	t.Parallel()

	exec := &graphExecution{
		def:       testDefinition(workflow.FrameworkGraph),
		completer: &stubCompleter{},
		inputs:    map[string]any{"topic": "AI"},
	}
	ictx := newGraphInvocationContext(t, "missing")

	var got error
	for _, err := range exec.runNode(ictx) {
		got = err
	}
	require.Error(t, got)
	assert.Contains(t, got.Error(), "missing")
}

func TestGraphNode_SkipsWhenEnded(t *testing.T) {
	t.Parallel()

	completer := &stubCompleter{}
	exec := &graphExecution{
		def:       testDefinition(workflow.FrameworkGraph),
		completer: completer,
		inputs:    map[string]any{"topic": "AI"},
	}
	ictx := newGraphInvocationContext(t, "plan")
	ictx.ended = true

	runNodeOnce(t, exec, ictx)
	assert.Empty(t, completer.calls)
}
