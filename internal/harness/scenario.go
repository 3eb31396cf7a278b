package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/shiptrace/internal/ir"
)

// Scenario is an investigation script: a data set, a sequence of tool calls
// with expectations, and assertions over the calls that were made.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Data is a data directory. Empty means the built-in fixture data set.
	// Relative paths resolve against the scenario file.
	Data string `yaml:"data,omitempty"`

	// Config is an optional config file (.yaml, .yml or .cue) applied
	// before the data directory is set.
	Config string `yaml:"config,omitempty"`

	// TraceID is the fixed trace id for every call. Default: "trace-harness".
	TraceID string `yaml:"trace_id,omitempty"`

	// Now is the RFC 3339 instant the report clock reports.
	Now string `yaml:"now,omitempty"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions are evaluated after all steps ran.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one tool call.
type Step struct {
	Call   string         `yaml:"call"`
	Args   map[string]any `yaml:"args"`
	Expect *Expect        `yaml:"expect,omitempty"`
}

// Expect is the expected outcome of a step.
type Expect struct {
	// Error is the expected error code. Empty expects success.
	Error ir.ErrorCode `yaml:"error,omitempty"`

	// Result is matched against the document with subset semantics: only
	// the listed fields are compared.
	Result map[string]any `yaml:"result,omitempty"`
}

// Assertion checks the recorded calls.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Tool is used by call_contains and call_count.
	Tool string `yaml:"tool,omitempty"`

	// Args is a subset match on the call arguments (call_contains).
	Args map[string]any `yaml:"args,omitempty"`

	// Count is the exact number of calls (call_count).
	Count int `yaml:"count,omitempty"`

	// Tools is the expected call order (call_order).
	Tools []string `yaml:"tools,omitempty"`
}

// Assertion type constants.
const (
	AssertCallContains = "call_contains"
	AssertCallOrder    = "call_order"
	AssertCallCount    = "call_count"
	AssertNoErrors     = "no_errors"
)

// DefaultTraceID is used when a scenario does not set trace_id.
const DefaultTraceID = "trace-harness"

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields, or is missing required fields.
// Data and config paths are resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	if scenario.Data != "" && !filepath.IsAbs(scenario.Data) {
		scenario.Data = filepath.Join(base, scenario.Data)
	}
	if scenario.Config != "" && !filepath.IsAbs(scenario.Config) {
		scenario.Config = filepath.Join(base, scenario.Config)
	}
	if scenario.Data != "" {
		if info, err := os.Stat(scenario.Data); err != nil || !info.IsDir() {
			return nil, fmt.Errorf("invalid scenario: data directory not found: %s", scenario.Data)
		}
	}

	return scenario, nil
}

// ParseScenario decodes and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if s.Now != "" {
		if _, err := time.Parse(time.RFC3339, s.Now); err != nil {
			return fmt.Errorf("now must be RFC 3339: %w", err)
		}
	}

	// Unknown tool names are allowed; the call yields an error document.
	for i, step := range s.Steps {
		if step.Call == "" {
			return fmt.Errorf("steps[%d]: call is required", i)
		}
		if step.Args == nil {
			return fmt.Errorf("steps[%d]: args is required (use {} if no args)", i)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertCallContains:
		if a.Tool == "" {
			return fmt.Errorf("assertions[%d]: tool is required for call_contains", index)
		}
	case AssertCallOrder:
		if len(a.Tools) == 0 {
			return fmt.Errorf("assertions[%d]: tools list is required for call_order", index)
		}
	case AssertCallCount:
		if a.Tool == "" {
			return fmt.Errorf("assertions[%d]: tool is required for call_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for call_count", index)
		}
	case AssertNoErrors:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// clockTime returns the instant the scenario's report clock reports, or the
// zero time to use the fixture default.
func (s *Scenario) clockTime() time.Time {
	if s.Now == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339, s.Now)
	return t
}

func (s *Scenario) traceID() string {
	if s.TraceID == "" {
		return DefaultTraceID
	}
	return s.TraceID
}
