package workflow

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Trigger events a workflow can respond to.
const (
	EventPush        = "push"
	EventPullRequest = "pull_request"
)

// Workflow is the top-level CI definition loaded from YAML.
type Workflow struct {
	Name string         `yaml:"name"`
	On   Triggers       `yaml:"on"`
	Jobs map[string]Job `yaml:"jobs"`
}

// Job is a named unit bound to one execution environment. Its steps
// run strictly in declaration order.
type Job struct {
	RunsOn string            `yaml:"runs-on"`
	Env    map[string]string `yaml:"env"`
	Steps  []Step            `yaml:"steps"`
}

// Step is one unit of work: either a named action invocation (uses + with)
// or a shell command (run). Env is the per-step environment overlay,
// visible only to that step's process tree.
type Step struct {
	Name    string            `yaml:"name"`
	Uses    string            `yaml:"uses"`
	With    map[string]string `yaml:"with"`
	Run     string            `yaml:"run"`
	Env     map[string]string `yaml:"env"`
	Timeout Duration          `yaml:"timeout"`
}

// Label returns the step's display name, falling back to the action name
// or the command itself.
func (s Step) Label() string {
	switch {
	case s.Name != "":
		return s.Name
	case s.Uses != "":
		return s.Uses
	default:
		return s.Run
	}
}

// Triggers accepts both YAML forms used in the wild:
//
//	on: push
//	on: [push, pull_request]
type Triggers []string

func (t *Triggers) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var single string
		if err := node.Decode(&single); err != nil {
			return err
		}
		*t = Triggers{single}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*t = Triggers(list)
		return nil
	default:
		return fmt.Errorf("on: expected event name or list, got %s", kindName(node.Kind))
	}
}

// Contains reports whether the workflow fires for the given event.
func (t Triggers) Contains(event string) bool {
	for _, e := range t {
		if e == event {
			return true
		}
	}
	return false
}

// Duration wraps time.Duration so step timeouts can be written as "10m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("timeout: %w", err)
	}
	*d = Duration(parsed)
	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	default:
		return "node"
	}
}
