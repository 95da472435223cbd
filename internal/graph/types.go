package graph

// Fixed capacities. Every table in the engine is sized from these.
const (
	MaxNodes   = 256
	MaxInputs  = 4
	MaxOutputs = 4
	MaxParams  = 8

	// DelayCapacity is the ring length carried by delay state.
	DelayCapacity = 16
)

// NodeID is a handle into the fixed node table.
type NodeID uint16

// InvalidNode denotes "no node".
const InvalidNode NodeID = 0xFFFF

// Valid reports whether id indexes the node table.
func (id NodeID) Valid() bool {
	return int(id) < MaxNodes
}

// NodeType tags a node slot. The ordinal is persisted on disk, so new
// kinds are only ever appended before TypeCount.
type NodeType uint16

const (
	TypeNone NodeType = iota

	// Sources
	TypeConst
	TypeTime
	TypePad
	TypeNoise
	TypeLFO

	// Math
	TypeAdd
	TypeMul
	TypeSub
	TypeDiv
	TypeMod
	TypeAbs
	TypeNeg
	TypeMin
	TypeMax
	TypeClamp
	TypeMap

	// Trig
	TypeSin
	TypeCos
	TypeTan
	TypeAtan2

	// Filters
	TypeLerp
	TypeSmooth
	TypeStep
	TypePulse
	TypeHold
	TypeDelay

	// Logic
	TypeCompare
	TypeSelect
	TypeGate

	// Vector and color
	TypeSplit
	TypeCombine
	TypeColorize
	TypeHSV
	TypeGradient

	// Transform
	TypeTransform2D

	// Sinks
	TypeRender2D
	TypeRenderCircle
	TypeRenderLine

	// Utility
	TypeDebug

	TypeCount
)

// PrimarySink is the node kind the scheduler requires before a graph can
// be published.
const PrimarySink = TypeRender2D

// Valid reports whether t names a real node kind (not None, not past the end).
func (t NodeType) Valid() bool {
	return t > TypeNone && t < TypeCount
}

// IsSink reports whether t is one of the render sink kinds.
func (t NodeType) IsSink() bool {
	return t == TypeRender2D || t == TypeRenderCircle || t == TypeRenderLine
}

// Connection references an output port of a source node.
type Connection struct {
	Src  NodeID
	Port uint8
}

// Disconnected returns the connection value that reads as 0.
func Disconnected() Connection {
	return Connection{Src: InvalidNode}
}

// IsConnected reports whether the connection names a source.
func (c Connection) IsConnected() bool {
	return c.Src != InvalidNode
}

// StateKind tags the payload stored in State.
type StateKind uint8

const (
	StateNone StateKind = iota
	StateSmooth
	StateNoise
	StatePulse
	StateHold
	StateDelay
	stateKindCount
)

// Valid reports whether k is a known state kind.
func (k StateKind) Valid() bool {
	return k < stateKindCount
}

// State is the per-node scratch payload. The meaning of each field depends
// on Kind:
//
//	StateSmooth  A = smoothed value
//	StateNoise   Seed = LCG state, A = smoothed noise
//	StatePulse   A = previous input, B = remaining pulse time
//	StateHold    A = previous trigger, B = held value
//	StateDelay   Head = write index, Ring = samples
//
// State is a plain value so copying a Node never aliases scratch storage.
type State struct {
	Kind StateKind
	Head uint8
	Seed uint32
	A    float32
	B    float32
	Ring [DelayCapacity]float32
}

// StateKindFor returns the state kind a node of type t carries.
func StateKindFor(t NodeType) StateKind {
	switch t {
	case TypeSmooth:
		return StateSmooth
	case TypeNoise:
		return StateNoise
	case TypePulse:
		return StatePulse
	case TypeHold:
		return StateHold
	case TypeDelay:
		return StateDelay
	default:
		return StateNone
	}
}

// ResetState zeroes the scratch payload and tags it for type t.
func ResetState(t NodeType) State {
	return State{Kind: StateKindFor(t)}
}

// Node is one slot of the node table. Type == TypeNone marks a free slot.
type Node struct {
	Type   NodeType
	Inputs [MaxInputs]Connection
	Params [MaxParams]float32
	State  State
}

// Graph is the fixed-capacity node table.
//
// INVARIANT: NodeCount equals the number of slots whose Type != TypeNone.
type Graph struct {
	Nodes     [MaxNodes]Node
	NodeCount uint16
	Version   uint16
}

// Ports holds the four scalar values of a node's input or output ports.
type Ports [MaxOutputs]float32

// OutputBank stores every node's most recent outputs, indexed by NodeID.
// It is transient and never persisted.
type OutputBank struct {
	Out [MaxNodes]Ports
}

// Reset zeroes every stored output.
func (b *OutputBank) Reset() {
	*b = OutputBank{}
}

// UiMeta is presentation state owned by the editor. The scheduler and
// evaluator never read it.
type UiMeta struct {
	X         float32
	Y         float32
	Selected  bool
	Collapsed bool
}

// UiMetaBank holds UiMeta for every node slot.
type UiMetaBank struct {
	Meta [MaxNodes]UiMeta
}

// Reset zeroes every entry.
func (b *UiMetaBank) Reset() {
	*b = UiMetaBank{}
}
