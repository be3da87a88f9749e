package adapter

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/tandemkit/tandem/internal/envelope"
	"github.com/tandemkit/tandem/internal/llm"
	"github.com/tandemkit/tandem/internal/tools"
	"github.com/tandemkit/tandem/internal/workflow"
)

// crewAdapter executes tasks as a sequential crew: each task prompts the
// model as its agent (role, goal, backstory), chaining the previous task's
// output as context. Agents that list tools get one tool round per task
// through the MCP bridge.
type crewAdapter struct {
	def       *workflow.Definition
	completer llm.Completer
	bridge    *tools.Bridge
}

func (c *crewAdapter) Name() string {
	return workflow.FrameworkCrew
}

func (c *crewAdapter) Execute(ctx context.Context, req envelope.Request) (envelope.Response, error) {
	inputs := req.KickoffInputs()

	var usage envelope.Usage
	var priorOutput string
	for _, task := range c.def.Tasks {
		agent, ok := c.def.Agent(task.Agent)
		if !ok {
			return envelope.Response{}, Upstreamf("task %q references undefined agent %q", task.Name, task.Agent)
		}

		output, err := c.runTask(ctx, agent, task, inputs, priorOutput, &usage)
		if err != nil {
			return envelope.Response{}, err
		}
		log.Debug().Str("task", task.Name).Str("agent", agent.Name).Msg("crew task complete")
		priorOutput = output
	}

	return envelope.Success(priorOutput, usage), nil
}

func (c *crewAdapter) runTask(ctx context.Context, agent workflow.AgentDef, task workflow.TaskDef,
	inputs map[string]any, priorOutput string, usage *envelope.Usage) (string, error) {
	instructions := taskInstructions(agent, task, inputs)

	var granted []tools.Tool
	if c.bridge != nil {
		granted = c.bridge.Grant(agent.Tools)
	}
	if desc := tools.Describe(granted); desc != "" {
		instructions += "\n" + desc
	}

	out, err := c.completer.Complete(ctx, llm.CompletionRequest{
		Instructions: instructions,
		Input:        taskInput(task, inputs, priorOutput),
	})
	if err != nil {
		return "", Upstreamf("task %q: %v", task.Name, err)
	}
	usage.Add(out.Usage)

	if len(granted) == 0 {
		return out.OutputText, nil
	}
	inv, ok := tools.ParseInvocation(out.OutputText)
	if !ok {
		return out.OutputText, nil
	}

	// One tool round per task: execute the call, then ask the agent to
	// finish with the tool result in hand.
	result, err := c.bridge.Call(ctx, inv.Tool, inv.Arguments)
	if err != nil {
		return "", Upstreamf("task %q tool %s: %v", task.Name, inv.Tool, err)
	}
	log.Debug().Str("task", task.Name).Str("tool", inv.Tool).Msg("tool call complete")

	followup, err := c.completer.Complete(ctx, llm.CompletionRequest{
		Instructions: taskInstructions(agent, task, inputs),
		Input: taskInput(task, inputs, priorOutput) +
			"\n\nResult of the " + inv.Tool + " tool call:\n" + result +
			"\n\nProduce the final output for this task.",
	})
	if err != nil {
		return "", Upstreamf("task %q: %v", task.Name, err)
	}
	usage.Add(followup.Usage)
	return followup.OutputText, nil
}
