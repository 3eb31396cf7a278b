package harness

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// DataPlaceholder replaces the data directory in golden snapshots so they
// do not depend on temporary paths.
const DataPlaceholder = "<data>"

// Snapshot captures every call of a scenario execution.
type Snapshot struct {
	Scenario string `json:"scenario"`
	TraceID  string `json:"trace_id"`
	Calls    []Call `json:"calls"`
}

// MarshalSnapshot renders the calls of result as indented JSON with the data
// directory replaced by DataPlaceholder. Map keys are sorted by the encoder.
func MarshalSnapshot(scenario *Scenario, result *Result) ([]byte, error) {
	snap := Snapshot{
		Scenario: scenario.Name,
		TraceID:  scenario.traceID(),
		Calls:    result.Calls,
	}
	out, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, err
	}
	if result.DataDir != "" {
		out = bytes.ReplaceAll(out, []byte(result.DataDir), []byte(DataPlaceholder))
	}
	return append(out, '\n'), nil
}

// RunWithGolden executes a scenario and compares its calls against a golden
// file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against the scenario's golden file.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	out, err := MarshalSnapshot(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, out)
	return nil
}
