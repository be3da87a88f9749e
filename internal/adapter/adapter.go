// Package adapter implements the agent execution contract: one capability
// interface with a framework-specific implementation per workflow style,
// selected by the workflow definition at load time.
package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/tandemkit/tandem/internal/envelope"
	"github.com/tandemkit/tandem/internal/llm"
	"github.com/tandemkit/tandem/internal/tools"
	"github.com/tandemkit/tandem/internal/workflow"
)

// Adapter executes a normalized request against one underlying workflow
// framework. Returned errors are folded into an error-status response by
// the Runner; implementations never write to the store or emit spans
// themselves.
type Adapter interface {
	Name() string
	Execute(ctx context.Context, req envelope.Request) (envelope.Response, error)
}

// Deps carries the collaborators shared by all adapter implementations.
type Deps struct {
	Definition *workflow.Definition
	Completer  llm.Completer
	Tools      *tools.Bridge
}

// New selects the adapter implementation named by the workflow definition.
func New(deps Deps) (Adapter, error) {
	if deps.Definition == nil {
		return nil, fmt.Errorf("workflow definition is required")
	}
	switch deps.Definition.Framework {
	case workflow.FrameworkGeneric:
		return &genericAdapter{def: deps.Definition}, nil
	case workflow.FrameworkCrew:
		if deps.Completer == nil {
			return nil, fmt.Errorf("crew framework requires a model client")
		}
		return &crewAdapter{def: deps.Definition, completer: deps.Completer, bridge: deps.Tools}, nil
	case workflow.FrameworkGraph:
		if deps.Completer == nil {
			return nil, fmt.Errorf("graph framework requires a model client")
		}
		return &graphAdapter{def: deps.Definition, completer: deps.Completer}, nil
	case workflow.FrameworkFlow:
		if deps.Completer == nil {
			return nil, fmt.Errorf("flow framework requires a model client")
		}
		return &flowAdapter{def: deps.Definition, completer: deps.Completer}, nil
	default:
		return nil, fmt.Errorf("unknown framework %q", deps.Definition.Framework)
	}
}

// interpolate substitutes {key} placeholders with kickoff input values.
func interpolate(text string, inputs map[string]any) string {
	out := text
	for key, value := range inputs {
		out = strings.ReplaceAll(out, "{"+key+"}", fmt.Sprint(value))
	}
	return out
}

// taskInstructions renders the system prompt for one task's agent.
func taskInstructions(agent workflow.AgentDef, task workflow.TaskDef, inputs map[string]any) string {
	var sb strings.Builder
	sb.WriteString("You are ")
	if agent.Role != "" {
		sb.WriteString(agent.Role)
	} else {
		sb.WriteString(agent.Name)
	}
	sb.WriteString(".\n")
	if agent.Goal != "" {
		sb.WriteString("Your goal: ")
		sb.WriteString(interpolate(agent.Goal, inputs))
		sb.WriteString("\n")
	}
	if agent.Backstory != "" {
		sb.WriteString(interpolate(agent.Backstory, inputs))
		sb.WriteString("\n")
	}
	if task.ExpectedOutput != "" {
		sb.WriteString("Expected output: ")
		sb.WriteString(interpolate(task.ExpectedOutput, inputs))
		sb.WriteString("\n")
	}
	return sb.String()
}

// taskInput renders the user message for one task, chaining prior output
// as context.
func taskInput(task workflow.TaskDef, inputs map[string]any, priorOutput string) string {
	var sb strings.Builder
	sb.WriteString(interpolate(task.Description, inputs))
	if priorOutput != "" {
		sb.WriteString("\n\nContext from the previous task:\n")
		sb.WriteString(priorOutput)
	}
	return sb.String()
}
