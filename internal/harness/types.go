package harness

import "github.com/roach88/shiptrace/internal/ir"

// Call records one tool call made while running a scenario.
type Call struct {
	// Seq is the 1-based position of the call in the scenario.
	Seq int `json:"seq"`

	// Tool is the name the step invoked.
	Tool string `json:"tool"`

	// Args are the arguments passed, as decoded from the scenario.
	Args map[string]any `json:"args"`

	// Code is set when the tool returned an error document.
	Code ir.ErrorCode `json:"code,omitempty"`

	// Document is the tool's JSON document decoded into plain values.
	// Numbers are json.Number.
	Document any `json:"document"`
}

// Result contains the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool

	// Calls is the ordered list of tool calls.
	Calls []Call

	// DataDir is the data directory the scenario ran against.
	DataDir string

	// Errors contains expectation and assertion failure messages.
	Errors []string
}

// NewResult creates an empty passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Calls:  []Call{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(msg string) {
	r.Pass = false
	r.Errors = append(r.Errors, msg)
}
