package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/shiptrace/internal/config"
	"github.com/roach88/shiptrace/internal/engine"
	"github.com/roach88/shiptrace/internal/ir"
	"github.com/roach88/shiptrace/internal/testutil"
	"github.com/roach88/shiptrace/internal/tools"
)

// Harness runs scenario steps against one engine.
type Harness struct {
	table *tools.Table
	ctx   context.Context
}

// Run executes a scenario and returns the result.
//
// Scenarios without a data directory run against a fresh copy of the
// fixture data set, removed when Run returns. Every call uses the same
// fixed trace id and the report clock is pinned.
//
// Execution flow:
// 1. Resolve config and data directory
// 2. Build an engine with deterministic clock and trace id
// 3. Call each step's tool and check its expectation
// 4. Evaluate assertions over the recorded calls
func Run(scenario *Scenario) (*Result, error) {
	cfg := config.Default()
	if scenario.Config != "" {
		loaded, err := config.Load(scenario.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	dataDir := scenario.Data
	if dataDir == "" {
		dir, err := writeFixture()
		if err != nil {
			return nil, fmt.Errorf("failed to write fixture data: %w", err)
		}
		defer os.RemoveAll(dir)
		dataDir = dir
	}
	cfg.DataDir = dataDir

	eng := engine.New(cfg,
		engine.WithClock(testutil.NewFixedClock(scenario.clockTime())),
		engine.WithTraceGenerator(testutil.NewFixedTraceGenerator(scenario.traceID())),
	)

	h := &Harness{
		table: tools.New(eng),
		ctx:   tools.WithTraceID(context.Background(), eng.NewTraceID()),
	}

	result := NewResult()
	result.DataDir = dataDir

	for i, step := range scenario.Steps {
		call, err := h.call(i+1, step)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		result.Calls = append(result.Calls, call)
		for _, msg := range checkExpect(call, step.Expect) {
			result.AddError(fmt.Sprintf("steps[%d] %s: %s", i, step.Call, msg))
		}
	}

	for _, msg := range EvaluateAssertions(result.Calls, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// call runs one step and records the document as plain decoded values.
func (h *Harness) call(seq int, step Step) (Call, error) {
	res := h.table.Call(h.ctx, step.Call, step.Args)

	raw, err := json.Marshal(res)
	if err != nil {
		return Call{}, fmt.Errorf("failed to encode %s document: %w", step.Call, err)
	}
	var doc any
	if err := ir.DecodeJSON(raw, &doc); err != nil {
		return Call{}, fmt.Errorf("failed to decode %s document: %w", step.Call, err)
	}

	call := Call{
		Seq:      seq,
		Tool:     step.Call,
		Args:     step.Args,
		Document: doc,
	}
	if res.IsError {
		call.Code = res.Code
	}
	return call, nil
}

// checkExpect compares a call with its step expectation. A step without an
// expectation only requires success.
func checkExpect(call Call, expect *Expect) []string {
	var failures []string

	want := ir.ErrorCode("")
	if expect != nil {
		want = expect.Error
	}
	if call.Code != want {
		switch {
		case want == "":
			failures = append(failures, fmt.Sprintf("expected success, got %s", call.Code))
		case call.Code == "":
			failures = append(failures, fmt.Sprintf("expected %s, got success", want))
		default:
			failures = append(failures, fmt.Sprintf("expected %s, got %s", want, call.Code))
		}
	}

	if expect != nil && expect.Result != nil && !Matches(expect.Result, call.Document) {
		failures = append(failures, fmt.Sprintf("result mismatch: expected subset %v, got %v",
			expect.Result, call.Document))
	}
	return failures
}

// writeFixture copies the fixture data set into a new temporary directory.
func writeFixture() (string, error) {
	root, err := os.MkdirTemp("", "shiptrace-harness-")
	if err != nil {
		return "", err
	}
	for rel, content := range testutil.Dataset {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			os.RemoveAll(root)
			return "", err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			os.RemoveAll(root)
			return "", err
		}
	}
	return root, nil
}
