package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandemkit/tandem/internal/envelope"
	"github.com/tandemkit/tandem/internal/workflow"
)

func TestGeneric_DefaultWorkflowSmoke(t *testing.T) {
	t.Parallel()

	a, err := New(Deps{Definition: workflow.Default()})
	require.NoError(t, err)

	resp := testRunner(t, a).Execute(context.Background(),
		envelope.NewRequest(`{"topic": "Artificial Intelligence"}`))

	assert.Equal(t, envelope.StatusSuccess, resp.Status)
	assert.Equal(t, "success", resp.Content)
	assert.Zero(t, resp.Usage.TotalTokens)
}

func TestGeneric_CanceledContext(t *testing.T) {
	t.Parallel()

	a, err := New(Deps{Definition: testDefinition(workflow.FrameworkGeneric)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = a.Execute(ctx, envelope.NewRequest("anything"))
	require.Error(t, err)
	assert.Equal(t, KindUpstreamFailure, KindOf(err))
}
