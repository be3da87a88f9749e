package adapter

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/tandemkit/tandem/internal/envelope"
	"github.com/tandemkit/tandem/internal/workflow"
)

// genericAdapter is the stub pipeline of the base template: it walks the
// task sequence without calling a model and reports a fixed result. It is
// the starting point for custom agentic flows and the target of the CI
// smoke test.
type genericAdapter struct {
	def *workflow.Definition
}

func (g *genericAdapter) Name() string {
	return workflow.FrameworkGeneric
}

func (g *genericAdapter) Execute(ctx context.Context, req envelope.Request) (envelope.Response, error) {
	inputs := req.KickoffInputs()
	log.Debug().Any("inputs", inputs).Msg("running generic pipeline")

	for _, task := range g.def.Tasks {
		if _, ok := g.def.Agent(task.Agent); !ok {
			return envelope.Response{}, Upstreamf("task %q references undefined agent %q", task.Name, task.Agent)
		}
		if err := ctx.Err(); err != nil {
			return envelope.Response{}, Upstreamf("pipeline canceled at task %q: %v", task.Name, err)
		}
		log.Debug().Str("task", task.Name).Str("agent", task.Agent).Msg("stub task complete")
	}

	// Replace this with the real flow; the stub reports success so the
	// packaging and deployment path can be exercised end to end.
	return envelope.Success("success", envelope.Usage{}), nil
}
