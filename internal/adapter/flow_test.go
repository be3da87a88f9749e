package adapter

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandemkit/tandem/internal/envelope"
	"github.com/tandemkit/tandem/internal/workflow"
)

func TestFlow_RunsStepsInOrder(t *testing.T) {
	t.Parallel()

	completer := &stubCompleter{outputs: []string{"step one out", "step two out"}}
	a, err := New(Deps{Definition: testDefinition(workflow.FrameworkFlow), Completer: completer})
	require.NoError(t, err)

	resp := testRunner(t, a).Execute(context.Background(), envelope.NewRequest("Artificial Intelligence"))

	require.Equal(t, envelope.StatusSuccess, resp.Status)
	assert.Equal(t, "step two out", resp.Content)
	require.Len(t, completer.calls, 2)
	assert.Contains(t, completer.calls[0].Input, "Plan an outline on Artificial Intelligence")
	assert.Contains(t, completer.calls[1].Input, "step one out")
	assert.Equal(t, int64(30), resp.Usage.TotalTokens)
}

func TestFlow_StepFailureFoldsToError(t *testing.T) {
	t.Parallel()

	completer := &stubCompleter{err: fmt.Errorf("rate limited")}
	a, err := New(Deps{Definition: testDefinition(workflow.FrameworkFlow), Completer: completer})
	require.NoError(t, err)

	_, execErr := a.Execute(context.Background(), envelope.NewRequest("anything"))
	require.Error(t, execErr)
	assert.Equal(t, KindUpstreamFailure, KindOf(execErr))
	assert.Contains(t, execErr.Error(), "rate limited")
}
