// Package workflow loads and validates the declarative agent/task
// definitions consumed by the execution adapters.
package workflow

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Framework names selectable by a definition. The adapter registry owns the
// mapping from name to implementation.
const (
	FrameworkGeneric = "generic"
	FrameworkCrew    = "crew"
	FrameworkGraph   = "graph"
	FrameworkFlow    = "flow"
)

// AgentDef describes one role-bound agent. Immutable after load.
type AgentDef struct {
	Name      string   `yaml:"name"`
	Role      string   `yaml:"role"`
	Goal      string   `yaml:"goal"`
	Backstory string   `yaml:"backstory"`
	Tools     []string `yaml:"tools,omitempty"`
}

// TaskDef describes one ordered step of a workflow. Next is an optional
// routing hint honored by the graph framework; the others execute tasks in
// declaration order.
type TaskDef struct {
	Name           string `yaml:"name"`
	Description    string `yaml:"description"`
	ExpectedOutput string `yaml:"expected_output"`
	Agent          string `yaml:"agent"`
	Next           string `yaml:"next,omitempty"`
}

// MCPConfig points at an MCP tool server reachable over a command
// transport.
type MCPConfig struct {
	Command []string `yaml:"command"`
}

// Definition is a complete workflow: agents, tasks, and the framework that
// executes them. Definitions are loaded once at process start and never
// mutated afterwards.
type Definition struct {
	Name      string     `yaml:"name"`
	Framework string     `yaml:"framework"`
	Agents    []AgentDef `yaml:"agents"`
	Tasks     []TaskDef  `yaml:"tasks"`
	MCP       *MCPConfig `yaml:"mcp,omitempty"`
}

//go:embed default.yaml
var defaultYAML []byte

// Default returns the embedded stub workflow used when no definition file
// is configured.
func Default() *Definition {
	def, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded default workflow is invalid: %v", err))
	}
	return def
}

// Load reads and validates a definition from a YAML file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow definition: %w", err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("workflow definition %s: %w", path, err)
	}
	return def, nil
}

// Parse decodes and validates a definition from YAML bytes.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse workflow yaml: %w", err)
	}
	if def.Framework == "" {
		def.Framework = FrameworkGeneric
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate enforces the definition invariants: unique names, at least one
// task, every task bound to a defined agent, and routing hints that point
// at defined tasks.
func (d *Definition) Validate() error {
	if len(d.Tasks) == 0 {
		return fmt.Errorf("workflow must define at least one task")
	}

	agents := make(map[string]bool, len(d.Agents))
	for _, a := range d.Agents {
		if a.Name == "" {
			return fmt.Errorf("agent with empty name")
		}
		if agents[a.Name] {
			return fmt.Errorf("duplicate agent %q", a.Name)
		}
		agents[a.Name] = true
	}

	tasks := make(map[string]bool, len(d.Tasks))
	for _, t := range d.Tasks {
		if t.Name == "" {
			return fmt.Errorf("task with empty name")
		}
		if tasks[t.Name] {
			return fmt.Errorf("duplicate task %q", t.Name)
		}
		tasks[t.Name] = true
	}
	for _, t := range d.Tasks {
		if t.Agent == "" {
			return fmt.Errorf("task %q has no agent", t.Name)
		}
		if !agents[t.Agent] {
			return fmt.Errorf("task %q references undefined agent %q", t.Name, t.Agent)
		}
		if t.Next != "" && !tasks[t.Next] {
			return fmt.Errorf("task %q routes to undefined task %q", t.Name, t.Next)
		}
	}
	return nil
}

// Agent looks up an agent definition by name.
func (d *Definition) Agent(name string) (AgentDef, bool) {
	for _, a := range d.Agents {
		if a.Name == name {
			return a, true
		}
	}
	return AgentDef{}, false
}

// Task looks up a task definition by name.
func (d *Definition) Task(name string) (TaskDef, bool) {
	for _, t := range d.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return TaskDef{}, false
}

// Final returns the last declared task, whose output becomes the response
// content.
func (d *Definition) Final() TaskDef {
	return d.Tasks[len(d.Tasks)-1]
}

// After returns the task following the named one in declaration order, or
// false when the named task is last.
func (d *Definition) After(name string) (TaskDef, bool) {
	for i, t := range d.Tasks {
		if t.Name == name && i+1 < len(d.Tasks) {
			return d.Tasks[i+1], true
		}
	}
	return TaskDef{}, false
}
