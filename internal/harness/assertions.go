package harness

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// DefaultTolerance is the output comparison tolerance when an assertion
// does not set one.
const DefaultTolerance = 1e-6

// OutputResolver maps an assertion's node and port to a trace label and
// output index.
type OutputResolver func(node, port string) (label string, index int, err error)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure
// messages in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion, resolve OutputResolver) []string {
	var msgs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a, resolve); err != nil {
			msgs = append(msgs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return msgs
}

func evaluateAssertion(result *Result, a Assertion, resolve OutputResolver) error {
	switch a.Type {
	case AssertOutput:
		return assertOutput(result, a, resolve)
	case AssertPlanOrder:
		return assertPlanOrder(result, a)
	case AssertPublishResult:
		return assertPublishResult(result, a)
	case AssertArchived:
		if result.Archived != a.Count {
			return &AssertionError{
				Type:     AssertArchived,
				Expected: fmt.Sprintf("%d generations", a.Count),
				Actual:   fmt.Sprintf("%d generations", result.Archived),
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertOutput(result *Result, a Assertion, resolve OutputResolver) error {
	label, port, err := resolve(a.Node, a.Port)
	if err != nil {
		return err
	}
	ref := fmt.Sprintf("%s[%d] at frame %d", label, port, a.Frame)

	frame := result.Frame(a.Frame)
	if frame == nil {
		return &AssertionError{Type: AssertOutput, Expected: ref, Actual: "frame not evaluated"}
	}
	got, ok := frame.Output(label, port)
	if !ok {
		return &AssertionError{Type: AssertOutput, Expected: ref, Actual: "node not in active graph"}
	}

	tol := a.Tolerance
	if tol == 0 {
		tol = DefaultTolerance
	}
	if math.Abs(float64(got)-float64(a.Equals)) > float64(tol) {
		return &AssertionError{
			Type:     AssertOutput,
			Expected: fmt.Sprintf("%s = %s ± %s", ref, formatFloat(a.Equals), formatFloat(tol)),
			Actual:   formatFloat(got),
		}
	}
	return nil
}

func assertPlanOrder(result *Result, a Assertion) error {
	ev := result.Publish(a.Frame)
	if ev == nil {
		return &AssertionError{
			Type:     AssertPlanOrder,
			Expected: fmt.Sprintf("publish at frame %d", a.Frame),
			Actual:   "no publish",
		}
	}
	if !slices.Equal(ev.Order, a.Order) {
		return &AssertionError{
			Type:     AssertPlanOrder,
			Expected: strings.Join(a.Order, ","),
			Actual:   strings.Join(ev.Order, ","),
		}
	}
	return nil
}

func assertPublishResult(result *Result, a Assertion) error {
	ev := result.Publish(a.Frame)
	if ev == nil {
		return &AssertionError{
			Type:     AssertPublishResult,
			Expected: fmt.Sprintf("publish at frame %d", a.Frame),
			Actual:   "no publish",
		}
	}
	if ev.Result != a.Result {
		return &AssertionError{Type: AssertPublishResult, Expected: a.Result, Actual: ev.Result}
	}
	return nil
}
