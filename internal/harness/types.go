package harness

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeTrace is one node's outputs after a frame.
type NodeTrace struct {
	Label   string
	Ports   []string
	Outputs []float32
}

// FrameTrace is the state of the active graph after one evaluated frame.
type FrameTrace struct {
	Frame uint32
	Time  float32
	Nodes []NodeTrace
}

// Event is an edit or publish applied before a frame was evaluated.
type Event struct {
	Frame  uint32
	Kind   string
	Detail string
	Result string

	// Publish only.
	Version uint16
	Order   []string
}

// Result is the outcome of a scenario run.
type Result struct {
	Pass     bool
	Session  string
	Frames   []FrameTrace
	Events   []Event
	Archived int
	Errors   []string
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Frame returns the trace of frame f, or nil.
func (r *Result) Frame(f uint32) *FrameTrace {
	for i := range r.Frames {
		if r.Frames[i].Frame == f {
			return &r.Frames[i]
		}
	}
	return nil
}

// Publish returns the last publish event at frame f, or nil.
func (r *Result) Publish(f uint32) *Event {
	var last *Event
	for i := range r.Events {
		if r.Events[i].Frame == f && r.Events[i].Kind == EditPublish {
			last = &r.Events[i]
		}
	}
	return last
}

// Output returns the value of label's port in t.
func (t *FrameTrace) Output(label string, port int) (float32, bool) {
	for _, n := range t.Nodes {
		if n.Label == label && port >= 0 && port < len(n.Outputs) {
			return n.Outputs[port], true
		}
	}
	return 0, false
}

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

// FormatTrace renders the events and frames of r as stable text, events
// ahead of the frame they precede.
func FormatTrace(name string, r *Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", name)
	fmt.Fprintf(&b, "session: %s\n", r.Session)

	events := r.Events
	writeEvents := func(upTo uint32) {
		for len(events) > 0 && events[0].Frame <= upTo {
			e := events[0]
			events = events[1:]
			fmt.Fprintf(&b, "event frame=%d %s", e.Frame, e.Kind)
			if e.Detail != "" {
				fmt.Fprintf(&b, " %s", e.Detail)
			}
			fmt.Fprintf(&b, " result=%q", e.Result)
			if e.Kind == EditPublish {
				fmt.Fprintf(&b, " version=%d order=%s", e.Version, strings.Join(e.Order, ","))
			}
			b.WriteByte('\n')
		}
	}

	for _, f := range r.Frames {
		writeEvents(f.Frame)
		fmt.Fprintf(&b, "frame=%d time=%s\n", f.Frame, formatFloat(f.Time))
		for _, n := range f.Nodes {
			b.WriteString("  ")
			b.WriteString(n.Label)
			for i, v := range n.Outputs {
				fmt.Fprintf(&b, " %s=%s", n.Ports[i], formatFloat(v))
			}
			b.WriteByte('\n')
		}
	}
	writeEvents(^uint32(0))
	fmt.Fprintf(&b, "archived: %d\n", r.Archived)
	return b.String()
}
