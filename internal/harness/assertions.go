package harness

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Calls    []Call // Full call list for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nCalls:\n")
	for _, c := range e.Calls {
		if c.Code != "" {
			fmt.Fprintf(&buf, "  [%d] %s %v -> %s\n", c.Seq, c.Tool, c.Args, c.Code)
		} else {
			fmt.Fprintf(&buf, "  [%d] %s %v\n", c.Seq, c.Tool, c.Args)
		}
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(calls []Call, assertions []Assertion) []string {
	var failures []string
	for _, a := range assertions {
		if err := evaluate(calls, a); err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

func evaluate(calls []Call, a Assertion) error {
	switch a.Type {
	case AssertCallContains:
		return assertCallContains(calls, a)
	case AssertCallOrder:
		return assertCallOrder(calls, a)
	case AssertCallCount:
		return assertCallCount(calls, a)
	case AssertNoErrors:
		return assertNoErrors(calls)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertCallContains checks for a call to the tool whose args contain the
// expected args.
func assertCallContains(calls []Call, a Assertion) error {
	for _, c := range calls {
		if c.Tool == a.Tool && Matches(a.Args, c.Args) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertCallContains,
		Expected: fmt.Sprintf("call %s with args %v", a.Tool, a.Args),
		Actual:   "not found",
		Calls:    calls,
	}
}

// assertCallOrder checks that the first call of each tool appears in the
// listed order. Other calls may come in between.
func assertCallOrder(calls []Call, a Assertion) error {
	positions := make(map[string]int)
	for _, c := range calls {
		if _, seen := positions[c.Tool]; !seen {
			positions[c.Tool] = c.Seq
		}
	}

	for _, tool := range a.Tools {
		if _, ok := positions[tool]; !ok {
			return &AssertionError{
				Type:     AssertCallOrder,
				Expected: fmt.Sprintf("all tools called: %v", a.Tools),
				Actual:   fmt.Sprintf("missing tool: %s", tool),
				Calls:    calls,
			}
		}
	}

	for i := 1; i < len(a.Tools); i++ {
		prev, curr := a.Tools[i-1], a.Tools[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertCallOrder,
				Expected: fmt.Sprintf("tools in order: %v", a.Tools),
				Actual: fmt.Sprintf("%s (call %d) should be before %s (call %d)",
					prev, positions[prev], curr, positions[curr]),
				Calls: calls,
			}
		}
	}
	return nil
}

// assertCallCount checks the tool was called exactly Count times.
func assertCallCount(calls []Call, a Assertion) error {
	count := 0
	for _, c := range calls {
		if c.Tool == a.Tool {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertCallCount,
			Expected: fmt.Sprintf("%d calls of %s", a.Count, a.Tool),
			Actual:   fmt.Sprintf("%d calls", count),
			Calls:    calls,
		}
	}
	return nil
}

func assertNoErrors(calls []Call) error {
	for _, c := range calls {
		if c.Code != "" {
			return &AssertionError{
				Type:     AssertNoErrors,
				Expected: "every call succeeds",
				Actual:   fmt.Sprintf("%s failed with %s", c.Tool, c.Code),
				Calls:    calls,
			}
		}
	}
	return nil
}

// Matches reports whether actual contains expected.
//
// Maps match when every expected key is present in actual and its value
// matches; extra keys in actual are ignored. Lists match element-wise and
// must have equal length. Numbers compare by value regardless of how they
// were decoded, so a YAML 7 matches a JSON 7.0.
func Matches(expected, actual any) bool {
	switch exp := expected.(type) {
	case nil:
		return actual == nil
	case map[string]any:
		act, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for k, v := range exp {
			av, present := act[k]
			if !present || !Matches(v, av) {
				return false
			}
		}
		return true
	case []any:
		act, ok := actual.([]any)
		if !ok || len(act) != len(exp) {
			return false
		}
		for i := range exp {
			if !Matches(exp[i], act[i]) {
				return false
			}
		}
		return true
	}

	if en, ok := number(expected); ok {
		an, ok := number(actual)
		return ok && en == an
	}
	return expected == actual
}

// number converts the numeric types YAML and JSON decoding produce.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
