// Package infra loads and validates the deployment descriptor: the
// declarative record of the execution environment, registered model, and
// deployment an external provisioning engine materializes. Nothing here
// talks to the platform.
package infra

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tandemkit/tandem/internal/config"
)

// DefaultExecutionEnvironment names the platform-managed environment used
// when the descriptor and the configuration are both silent.
const DefaultExecutionEnvironment = "[Tandem] GenAI Agents"

// ExecutionEnvironment selects where the packaged agent runs: an existing
// environment by id, or a docker build context to compile one from.
type ExecutionEnvironment struct {
	ID            string `yaml:"id,omitempty"`
	DockerContext string `yaml:"docker_context,omitempty"`
	DockerImage   string `yaml:"docker_image,omitempty"`
}

// RegisteredModel captures the model registry entry for the packaged
// agent.
type RegisteredModel struct {
	Name        string `yaml:"name"`
	TargetType  string `yaml:"target_type,omitempty"`
	TargetName  string `yaml:"target_name,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Deployment captures the serving target.
type Deployment struct {
	Label          string `yaml:"label,omitempty"`
	Deploy         bool   `yaml:"deploy"`
	MinComputes    int    `yaml:"min_computes,omitempty"`
	MaxComputes    int    `yaml:"max_computes,omitempty"`
	DataCollection bool   `yaml:"data_collection,omitempty"`
}

// Descriptor is the whole deployment descriptor.
type Descriptor struct {
	Name                 string               `yaml:"name"`
	Path                 string               `yaml:"path,omitempty"`
	ExecutionEnvironment ExecutionEnvironment `yaml:"execution_environment,omitempty"`
	RegisteredModel      RegisteredModel      `yaml:"registered_model"`
	Deployment           Deployment           `yaml:"deployment"`
}

// Load reads, validates, and defaults a descriptor from a YAML file.
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}
	var desc Descriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("parse descriptor %s: %w", path, err)
	}
	if err := Validate(&desc); err != nil {
		return nil, fmt.Errorf("descriptor %s: %w", path, err)
	}
	desc.applyDefaults()
	return &desc, nil
}

func (d *Descriptor) applyDefaults() {
	if d.RegisteredModel.TargetType == "" {
		d.RegisteredModel.TargetType = "AgenticWorkflow"
	}
	if d.RegisteredModel.TargetName == "" {
		d.RegisteredModel.TargetName = "response"
	}
	if d.Deployment.Label == "" {
		d.Deployment.Label = "Deployment [" + d.Name + "]"
	}
	if d.Deployment.MaxComputes == 0 {
		d.Deployment.MaxComputes = 2
	}
}

// ResolveEnvironment picks the execution environment for a plan: the
// descriptor first, then the configured override, then the platform
// default. Mirrors how the provisioning engine resolves it.
func (d *Descriptor) ResolveEnvironment(cfg config.Config) string {
	switch {
	case d.ExecutionEnvironment.ID != "":
		return "existing environment " + d.ExecutionEnvironment.ID
	case d.ExecutionEnvironment.DockerImage != "":
		return "prebuilt image " + d.ExecutionEnvironment.DockerImage
	case d.ExecutionEnvironment.DockerContext != "":
		return "docker context " + d.ExecutionEnvironment.DockerContext
	case cfg.ExecutionEnvironment != "":
		return "configured environment " + cfg.ExecutionEnvironment
	default:
		return "default environment " + DefaultExecutionEnvironment
	}
}

// Plan renders the resolved resource plan for the descriptor.
func (d *Descriptor) Plan(cfg config.Config, files []File) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "agent: %s\n", d.Name)
	fmt.Fprintf(&sb, "execution environment: %s\n", d.ResolveEnvironment(cfg))
	fmt.Fprintf(&sb, "registered model: %s (%s/%s)\n",
		d.RegisteredModel.Name, d.RegisteredModel.TargetType, d.RegisteredModel.TargetName)
	if d.Deployment.Deploy {
		fmt.Fprintf(&sb, "deployment: %s (computes %d..%d)\n",
			d.Deployment.Label, d.Deployment.MinComputes, d.Deployment.MaxComputes)
	} else {
		sb.WriteString("deployment: skipped\n")
	}
	fmt.Fprintf(&sb, "files: %d\n", len(files))
	return sb.String()
}
