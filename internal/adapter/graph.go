package adapter

import (
	"context"
	"fmt"
	"iter"

	"github.com/rs/zerolog/log"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/workflowagents/loopagent"
	adkrunner "google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"github.com/tandemkit/tandem/internal/envelope"
	"github.com/tandemkit/tandem/internal/llm"
	"github.com/tandemkit/tandem/internal/workflow"
)

const graphAppName = "tandem"

// graphAdapter executes tasks as an ADK graph: a loop agent drives one
// node agent that advances a cursor through the task graph, following
// each task's next edge. The loop is capped at the task count, so a
// malformed edge set cannot run forever.
type graphAdapter struct {
	def       *workflow.Definition
	completer llm.Completer
}

func (g *graphAdapter) Name() string {
	return workflow.FrameworkGraph
}

func (g *graphAdapter) Execute(ctx context.Context, req envelope.Request) (envelope.Response, error) {
	inputs := req.KickoffInputs()

	exec := &graphExecution{def: g.def, completer: g.completer, inputs: inputs}
	nodeAgent, err := agent.New(agent.Config{
		Name:        "TandemGraphNode",
		Description: "Runs the task at the graph cursor and advances it.",
		Run:         exec.runNode,
	})
	if err != nil {
		return envelope.Response{}, Upstreamf("create graph node agent: %v", err)
	}
	loopAgent, err := loopagent.New(loopagent.Config{
		MaxIterations: uint(len(g.def.Tasks)),
		AgentConfig: agent.Config{
			Name:        "TandemGraphLoop",
			Description: "Walks the workflow task graph to completion.",
			SubAgents:   []agent.Agent{nodeAgent},
		},
	})
	if err != nil {
		return envelope.Response{}, Upstreamf("create graph loop agent: %v", err)
	}

	sessionService := session.InMemoryService()
	r, err := adkrunner.New(adkrunner.Config{
		AppName:        graphAppName,
		Agent:          loopAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return envelope.Response{}, Upstreamf("create graph runner: %v", err)
	}

	userID := "tandem-user"
	sess, err := sessionService.Create(ctx, &session.CreateRequest{
		AppName: graphAppName,
		UserID:  userID,
		State: map[string]any{
			"cursor": g.def.Tasks[0].Name,
		},
	})
	if err != nil {
		return envelope.Response{}, Upstreamf("create graph session: %v", err)
	}

	input := genai.NewContentFromText(req.Topic(), genai.RoleUser)
	events := r.Run(ctx, userID, sess.Session.ID(), input, agent.RunConfig{})
	for _, runErr := range events {
		if runErr != nil {
			return envelope.Response{}, Upstreamf("graph run: %v", runErr)
		}
	}

	return envelope.Success(exec.output, exec.usage), nil
}

// graphExecution holds the mutable state of one graph run. The cursor
// lives in session state; output and usage stay here so the adapter can
// read them back without round-tripping through the session.
type graphExecution struct {
	def       *workflow.Definition
	completer llm.Completer
	inputs    map[string]any
	output    string
	usage     envelope.Usage
}

func (e *graphExecution) runNode(ctx agent.InvocationContext) iter.Seq2[*session.Event, error] {
	return func(yield func(*session.Event, error) bool) {
		if ctx.Ended() {
			return
		}

		cursor, err := ctx.Session().State().Get("cursor")
		if err != nil {
			yield(nil, fmt.Errorf("get cursor from session: %w", err))
			return
		}
		name, ok := cursor.(string)
		if !ok || name == "" {
			ctx.EndInvocation()
			return
		}

		task, ok := e.def.Task(name)
		if !ok {
			yield(nil, fmt.Errorf("cursor points at undefined task %q", name))
			return
		}
		agentDef, ok := e.def.Agent(task.Agent)
		if !ok {
			yield(nil, fmt.Errorf("task %q references undefined agent %q", task.Name, task.Agent))
			return
		}

		out, err := e.completer.Complete(ctx, llm.CompletionRequest{
			Instructions: taskInstructions(agentDef, task, e.inputs),
			Input:        taskInput(task, e.inputs, e.output),
		})
		if err != nil {
			yield(nil, fmt.Errorf("node %q: %w", task.Name, err))
			return
		}
		e.output = out.OutputText
		e.usage.Add(out.Usage)
		log.Debug().Str("node", task.Name).Msg("graph node complete")

		next := task.Next
		if next == "" {
			if nextTask, ok := e.def.After(task.Name); ok {
				next = nextTask.Name
			}
		}
		if err := ctx.Session().State().Set("cursor", next); err != nil {
			yield(nil, fmt.Errorf("set cursor in session: %w", err))
			return
		}
		if next == "" {
			ctx.EndInvocation()
		}
	}
}
