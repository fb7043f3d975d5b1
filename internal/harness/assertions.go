package harness

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	// Outputs lists every written name, for context.
	Outputs []string
}

func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nOutputs:\n")
	for i, name := range e.Outputs {
		fmt.Fprintf(&buf, "  [%d] %s\n", i+1, name)
	}
	return buf.String()
}

func assertOutputs(r *Result, a Assertion) error {
	want := a.Names
	if want == nil {
		want = []string{}
	}
	if slices.Equal(r.Outputs, want) {
		return nil
	}
	return &AssertionError{
		Type:     AssertOutputs,
		Expected: fmt.Sprintf("%q", want),
		Actual:   fmt.Sprintf("%q", r.Outputs),
		Outputs:  r.Outputs,
	}
}

func assertOutputContains(r *Result, a Assertion) error {
	text, ok := r.Text(a.Name)
	if !ok {
		return &AssertionError{
			Type:     AssertOutputContains,
			Expected: fmt.Sprintf("output %q", a.Name),
			Actual:   "not written",
			Outputs:  r.Outputs,
		}
	}
	for _, want := range a.Text {
		if !strings.Contains(text, want) {
			return &AssertionError{
				Type:     AssertOutputContains,
				Expected: fmt.Sprintf("output %q to contain %q", a.Name, want),
				Actual:   fmt.Sprintf("contents:\n%s", text),
				Outputs:  r.Outputs,
			}
		}
	}
	return nil
}

func assertOutputAbsent(r *Result, a Assertion) error {
	if _, ok := r.Text(a.Name); !ok {
		return nil
	}
	return &AssertionError{
		Type:     AssertOutputAbsent,
		Expected: fmt.Sprintf("no output %q", a.Name),
		Actual:   "written",
		Outputs:  r.Outputs,
	}
}

func assertStats(r *Result, a Assertion) error {
	keys := make([]string, 0, len(a.Stats))
	for k := range a.Stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var diffs []string
	for _, k := range keys {
		get, ok := statFields[k]
		if !ok {
			diffs = append(diffs, fmt.Sprintf("%s: unknown", k))
			continue
		}
		if got := get(r.Run.Stats); got != a.Stats[k] {
			diffs = append(diffs, fmt.Sprintf("%s: want %d, got %d", k, a.Stats[k], got))
		}
	}
	if len(diffs) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertStats,
		Expected: fmt.Sprintf("%v", a.Stats),
		Actual:   strings.Join(diffs, "; "),
		Outputs:  r.Outputs,
	}
}

func assertErrors(r *Result, a Assertion) error {
	if got := len(r.Run.Errors); got != a.Count {
		msgs := make([]string, 0, got)
		for _, err := range r.Run.Errors {
			msgs = append(msgs, err.Error())
		}
		return &AssertionError{
			Type:     AssertErrors,
			Expected: fmt.Sprintf("%d failed entries", a.Count),
			Actual:   fmt.Sprintf("%d: %s", got, strings.Join(msgs, "; ")),
			Outputs:  r.Outputs,
		}
	}
	return nil
}

// EvaluateAssertions runs every assertion and returns the failure
// messages, in assertion order.
func EvaluateAssertions(r *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertOutputs:
			err = assertOutputs(r, a)
		case AssertOutputContains:
			err = assertOutputContains(r, a)
		case AssertOutputAbsent:
			err = assertOutputAbsent(r, a)
		case AssertStats:
			err = assertStats(r, a)
		case AssertErrors:
			err = assertErrors(r, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}
