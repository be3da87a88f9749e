package infra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandemkit/tandem/internal/config"
)

func writeDescriptor(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tandem.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Parallel()

	path := writeDescriptor(t, `
name: content-pipeline
registered_model:
  name: content-pipeline-model
deployment:
  deploy: true
`)
	desc, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "AgenticWorkflow", desc.RegisteredModel.TargetType)
	assert.Equal(t, "response", desc.RegisteredModel.TargetName)
	assert.Equal(t, "Deployment [content-pipeline]", desc.Deployment.Label)
	assert.Equal(t, 2, desc.Deployment.MaxComputes)
}

func TestLoad_RejectsMissingModelName(t *testing.T) {
	t.Parallel()

	path := writeDescriptor(t, `
name: content-pipeline
registered_model:
  description: nameless
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")
}

func TestResolveEnvironment_Precedence(t *testing.T) {
	t.Parallel()

	desc := &Descriptor{Name: "a", ExecutionEnvironment: ExecutionEnvironment{ID: "env-123"}}
	assert.Contains(t, desc.ResolveEnvironment(config.Config{}), "env-123")

	desc = &Descriptor{Name: "a", ExecutionEnvironment: ExecutionEnvironment{DockerContext: "docker_context"}}
	assert.Contains(t, desc.ResolveEnvironment(config.Config{}), "docker_context")

	desc = &Descriptor{Name: "a"}
	cfg := config.Config{ExecutionEnvironment: "env-override"}
	assert.Contains(t, desc.ResolveEnvironment(cfg), "env-override")
	assert.Contains(t, desc.ResolveEnvironment(config.Config{}), DefaultExecutionEnvironment)
}

func TestCollectFiles_AppliesExcludes(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	files := map[string]string{
		"main.go":              "package main",
		"workflow.yaml":        "name: x",
		"main_test.go":         "package main",
		"tests/helper.go":      "package tests",
		".git/config":          "",
		"sub/.DS_Store":        "",
		"sub/included.txt":     "keep",
		"__pycache__/mod.pyc":  "",
		".venv/lib/thing.py":   "",
		".mypy_cache/meta.txt": "",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	got, err := CollectFiles(root)
	require.NoError(t, err)

	rels := make([]string, 0, len(got))
	for _, f := range got {
		rels = append(rels, f.RelPath)
	}
	assert.ElementsMatch(t, []string{"main.go", "workflow.yaml", "sub/included.txt"}, rels)
}

func TestPlan_RendersResolvedResources(t *testing.T) {
	t.Parallel()

	desc := &Descriptor{
		Name:            "content-pipeline",
		RegisteredModel: RegisteredModel{Name: "content-pipeline-model"},
		Deployment:      Deployment{Deploy: true},
	}
	desc.applyDefaults()

	plan := desc.Plan(config.Config{ExecutionEnvironment: "env-1"}, []File{{RelPath: "main.go"}})
	assert.Contains(t, plan, "content-pipeline")
	assert.Contains(t, plan, "env-1")
	assert.Contains(t, plan, "computes 0..2")
	assert.Contains(t, plan, "files: 1")

	desc.Deployment.Deploy = false
	plan = desc.Plan(config.Config{}, nil)
	assert.Contains(t, plan, "deployment: skipped")
}
