package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/livegraph/internal/graph"
)

// MaxFrames bounds a scenario's length.
const MaxFrames = 100000

// Scenario defines a scripted run of one graph document.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Graph is the document to publish at frame 0. Relative paths are
	// resolved against the scenario file's directory.
	Graph string `yaml:"graph"`

	// Frames is the number of frames evaluated after the initial publish.
	Frames int `yaml:"frames"`

	// DT is the fixed frame step in seconds. Defaults to 1/60.
	DT float32 `yaml:"dt,omitempty"`

	// Session is the archive session id. Defaults to the fixed test id.
	Session string `yaml:"session,omitempty"`

	// Inputs set pad state from their frame on.
	Inputs []InputStep `yaml:"inputs,omitempty"`

	// Edits change the edit graph before their frame is evaluated.
	Edits []EditStep `yaml:"edits,omitempty"`

	// Assertions are checked against the finished run.
	Assertions []Assertion `yaml:"assertions"`
}

// InputStep is the pad state from Frame onward.
type InputStep struct {
	Frame   uint32   `yaml:"frame"`
	LX      float32  `yaml:"lx,omitempty"`
	LY      float32  `yaml:"ly,omitempty"`
	RX      float32  `yaml:"rx,omitempty"`
	RY      float32  `yaml:"ry,omitempty"`
	L2      float32  `yaml:"l2,omitempty"`
	R2      float32  `yaml:"r2,omitempty"`
	Buttons []string `yaml:"buttons,omitempty"`
}

// EditStep is one live edit. Exactly one of SetParam, Connect, Disconnect
// or Publish is set.
type EditStep struct {
	Frame      uint32          `yaml:"frame"`
	SetParam   *SetParamEdit   `yaml:"set_param,omitempty"`
	Connect    *ConnectEdit    `yaml:"connect,omitempty"`
	Disconnect *DisconnectEdit `yaml:"disconnect,omitempty"`
	Publish    bool            `yaml:"publish,omitempty"`
}

// SetParamEdit writes one param of a node.
type SetParamEdit struct {
	Node  string  `yaml:"node"`
	Param string  `yaml:"param"`
	Value float32 `yaml:"value"`
}

// ConnectEdit wires From ("label" or "label.port") into To ("label.port").
type ConnectEdit struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// DisconnectEdit clears an input port.
type DisconnectEdit struct {
	Node string `yaml:"node"`
	Port string `yaml:"port"`
}

// Edit kinds as they appear in traces.
const (
	EditSetParam   = "set_param"
	EditConnect    = "connect"
	EditDisconnect = "disconnect"
	EditPublish    = "publish"
)

// Kind names the edit.
func (e EditStep) Kind() string {
	switch {
	case e.SetParam != nil:
		return EditSetParam
	case e.Connect != nil:
		return EditConnect
	case e.Disconnect != nil:
		return EditDisconnect
	case e.Publish:
		return EditPublish
	default:
		return ""
	}
}

// Assertion checks the finished run.
type Assertion struct {
	// Type is one of output, plan_order, publish_result or archived.
	Type string `yaml:"type"`

	// Frame selects the frame (output) or publish frame (plan_order,
	// publish_result). Frame 0 is the initial publish.
	Frame uint32 `yaml:"frame,omitempty"`

	// Node and Port select an output. Port defaults to output 0.
	Node string `yaml:"node,omitempty"`
	Port string `yaml:"port,omitempty"`

	// Equals is the expected output, within Tolerance (default 1e-6).
	Equals    float32 `yaml:"equals,omitempty"`
	Tolerance float32 `yaml:"tolerance,omitempty"`

	// Order is the expected plan, as labels (plan_order).
	Order []string `yaml:"order,omitempty"`

	// Result is the expected publish result string, e.g. "OK" or
	// "Error: Cycle detected" (publish_result).
	Result string `yaml:"result,omitempty"`

	// Count is the expected number of archived generations (archived).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertOutput        = "output"
	AssertPlanOrder     = "plan_order"
	AssertPublishResult = "publish_result"
	AssertArchived      = "archived"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected and the graph path is resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Graph != "" && !filepath.IsAbs(scenario.Graph) {
		scenario.Graph = filepath.Join(filepath.Dir(path), scenario.Graph)
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
	if s.Graph == "" {
		return fmt.Errorf("graph is required")
	}
	if _, err := os.Stat(s.Graph); os.IsNotExist(err) {
		return fmt.Errorf("graph file not found: %s", s.Graph)
	}
	if s.Frames < 1 || s.Frames > MaxFrames {
		return fmt.Errorf("frames must be in [1, %d], got %d", MaxFrames, s.Frames)
	}
	if s.DT < 0 || s.DT > graph.MaxFrameDT {
		return fmt.Errorf("dt must be in [0, %g], got %g", graph.MaxFrameDT, s.DT)
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	last := uint32(s.Frames)
	for i, in := range s.Inputs {
		if in.Frame < 1 || in.Frame > last {
			return fmt.Errorf("inputs[%d]: frame %d outside [1, %d]", i, in.Frame, last)
		}
		for _, name := range in.Buttons {
			if _, ok := buttonNames[strings.ToLower(name)]; !ok {
				return fmt.Errorf("inputs[%d]: unknown button %q", i, name)
			}
		}
	}

	for i, e := range s.Edits {
		if e.Frame < 1 || e.Frame > last {
			return fmt.Errorf("edits[%d]: frame %d outside [1, %d]", i, e.Frame, last)
		}
		set := 0
		for _, on := range []bool{e.SetParam != nil, e.Connect != nil, e.Disconnect != nil, e.Publish} {
			if on {
				set++
			}
		}
		if set != 1 {
			return fmt.Errorf("edits[%d]: exactly one of set_param, connect, disconnect, publish is required", i)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i], last); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, last uint32) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertOutput:
		if a.Node == "" {
			return fmt.Errorf("assertions[%d]: node is required for output", index)
		}
		if a.Frame < 1 || a.Frame > last {
			return fmt.Errorf("assertions[%d]: frame %d outside [1, %d]", index, a.Frame, last)
		}
	case AssertPlanOrder:
		if len(a.Order) == 0 {
			return fmt.Errorf("assertions[%d]: order is required for plan_order", index)
		}
	case AssertPublishResult:
		if a.Result == "" {
			return fmt.Errorf("assertions[%d]: result is required for publish_result", index)
		}
	case AssertArchived:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for archived", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

var buttonNames = map[string]graph.Buttons{
	"select":   graph.ButtonSelect,
	"l3":       graph.ButtonL3,
	"r3":       graph.ButtonR3,
	"start":    graph.ButtonStart,
	"up":       graph.ButtonUp,
	"right":    graph.ButtonRight,
	"down":     graph.ButtonDown,
	"left":     graph.ButtonLeft,
	"l2":       graph.ButtonL2,
	"r2":       graph.ButtonR2,
	"l1":       graph.ButtonL1,
	"r1":       graph.ButtonR1,
	"triangle": graph.ButtonTriangle,
	"circle":   graph.ButtonCircle,
	"cross":    graph.ButtonCross,
	"square":   graph.ButtonSquare,
}

// ParseButtons converts button names to a mask. Unknown names are ignored;
// LoadScenario rejects them up front.
func ParseButtons(names []string) graph.Buttons {
	var mask graph.Buttons
	for _, n := range names {
		mask |= buttonNames[strings.ToLower(n)]
	}
	return mask
}
