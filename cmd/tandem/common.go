package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tandemkit/tandem/internal/adapter"
	"github.com/tandemkit/tandem/internal/config"
	"github.com/tandemkit/tandem/internal/envelope"
	"github.com/tandemkit/tandem/internal/llm"
	"github.com/tandemkit/tandem/internal/store"
	"github.com/tandemkit/tandem/internal/telemetry"
	"github.com/tandemkit/tandem/internal/tools"
	"github.com/tandemkit/tandem/internal/workflow"
)

// errExecutionFailed maps an error-status envelope to a nonzero exit after
// the envelope has already been printed.
var errExecutionFailed = errors.New("execution failed")

func loadConfig() (config.Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("load .env")
	}
	return config.Load(cfgFile)
}

func loadWorkflow(cfg config.Config) (*workflow.Definition, error) {
	if cfg.Workflow == "" {
		return workflow.Default(), nil
	}
	return workflow.Load(cfg.Workflow)
}

func openStore(cfg config.Config) (*store.Store, func(), error) {
	path := cfg.Store
	if path == "" {
		dir := ".tandem"
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, func() {}, err
		}
		path = filepath.Join(dir, "tandem.db")
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, func() {}, err
	}
	return store.NewStore(db), func() { _ = db.Close() }, nil
}

// buildRunner assembles the execution pipeline: workflow definition,
// model client, tool bridge, telemetry, and the invocation store.
func buildRunner(ctx context.Context, cfg config.Config) (*adapter.Runner, func(), error) {
	cleanups := []func(){}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	def, err := loadWorkflow(cfg)
	if err != nil {
		return nil, cleanup, err
	}

	deps := adapter.Deps{Definition: def}
	if def.Framework != workflow.FrameworkGeneric {
		completer, err := buildCompleter(cfg)
		if err != nil {
			return nil, cleanup, err
		}
		deps.Completer = completer
	}
	if def.MCP != nil {
		bridge, err := tools.Connect(ctx, def.MCP.Command)
		if err != nil {
			return nil, cleanup, err
		}
		cleanups = append(cleanups, func() { _ = bridge.Close() })
		deps.Tools = bridge
	}

	a, err := adapter.New(deps)
	if err != nil {
		return nil, cleanup, err
	}

	tracer, shutdown, err := telemetry.Init(cfg.Telemetry.Enabled)
	if err != nil {
		return nil, cleanup, err
	}
	cleanups = append(cleanups, func() { _ = shutdown(context.Background()) })

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, cleanup, err
	}
	cleanups = append(cleanups, closeStore)

	return adapter.NewRunner(a, tracer, st), cleanup, nil
}

func buildCompleter(cfg config.Config) (llm.Completer, error) {
	model := cfg.LLM.Model
	if model == "" {
		model = envelope.DefaultModel
	}
	apiKey := cfg.LLM.APIKey
	if apiKey == "" && cfg.LLMBaseURL() != "" {
		// Platform-routed models authenticate with the platform token.
		apiKey = cfg.APIToken
	}
	return llm.NewClient(llm.Config{
		Model:     model,
		BaseURL:   cfg.LLMBaseURL(),
		APIKey:    apiKey,
		APIKeyEnv: cfg.LLM.APIKeyEnv,
		Timeout:   cfg.LLMTimeout(),
	}, nil)
}

// resolveRequest maps the CLI inputs to a normalized request. A completion
// JSON file wins over a raw prompt; missing both is a usage error.
func resolveRequest(userPrompt, completionJSON string) (envelope.Request, error) {
	if completionJSON != "" {
		comp, err := envelope.LoadCompletionFile(completionJSON)
		if err != nil {
			return envelope.Request{}, err
		}
		return comp.Request()
	}
	if strings.TrimSpace(userPrompt) != "" {
		return envelope.NewRequest(userPrompt), nil
	}
	return envelope.Request{}, fmt.Errorf("either --user_prompt or --completion_json is required")
}

// printResponse writes the envelope to stdout and maps its status to the
// process exit code.
func printResponse(resp envelope.Response) error {
	fmt.Println(resp.Format())
	if resp.Status != envelope.StatusSuccess {
		return errExecutionFailed
	}
	return nil
}
