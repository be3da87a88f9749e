package adapter

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/tandemkit/tandem/internal/envelope"
	"github.com/tandemkit/tandem/internal/llm"
	"github.com/tandemkit/tandem/internal/workflow"
)

// flowAdapter executes tasks as an event-driven workflow: each task
// consumes an event carrying the previous output and emits the event for
// the next step; the stop event carries the final output. Events are
// processed one at a time, in task order.
type flowAdapter struct {
	def       *workflow.Definition
	completer llm.Completer
}

type flowEvent struct {
	task    string // empty means stop
	payload string
}

func (f *flowAdapter) Name() string {
	return workflow.FrameworkFlow
}

func (f *flowAdapter) Execute(ctx context.Context, req envelope.Request) (envelope.Response, error) {
	inputs := req.KickoffInputs()

	var usage envelope.Usage
	ev := flowEvent{task: f.def.Tasks[0].Name}
	for ev.task != "" {
		next, err := f.step(ctx, ev, inputs, &usage)
		if err != nil {
			return envelope.Response{}, err
		}
		ev = next
	}

	return envelope.Success(ev.payload, usage), nil
}

func (f *flowAdapter) step(ctx context.Context, ev flowEvent, inputs map[string]any, usage *envelope.Usage) (flowEvent, error) {
	task, ok := f.def.Task(ev.task)
	if !ok {
		return flowEvent{}, Upstreamf("event for undefined task %q", ev.task)
	}
	agent, ok := f.def.Agent(task.Agent)
	if !ok {
		return flowEvent{}, Upstreamf("task %q references undefined agent %q", task.Name, task.Agent)
	}

	out, err := f.completer.Complete(ctx, llm.CompletionRequest{
		Instructions: taskInstructions(agent, task, inputs),
		Input:        taskInput(task, inputs, ev.payload),
	})
	if err != nil {
		return flowEvent{}, Upstreamf("step %q: %v", task.Name, err)
	}
	usage.Add(out.Usage)
	log.Debug().Str("step", task.Name).Msg("flow step complete")

	if next, ok := f.def.After(task.Name); ok {
		return flowEvent{task: next.Name, payload: out.OutputText}, nil
	}
	return flowEvent{payload: out.OutputText}, nil
}
