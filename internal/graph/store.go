package graph

// Defaults supplies per-type default param values at allocation time.
// Implemented by *nodes.Registry.
type Defaults interface {
	Defaults(t NodeType) [MaxParams]float32
}

// New returns an initialized empty graph.
func New() *Graph {
	g := &Graph{}
	g.Init()
	return g
}

// Init clears every slot: all nodes unused, all inputs disconnected,
// NodeCount and Version zero.
func (g *Graph) Init() {
	*g = Graph{}
	for i := range g.Nodes {
		clearNode(&g.Nodes[i])
	}
}

func clearNode(n *Node) {
	*n = Node{}
	for j := range n.Inputs {
		n.Inputs[j] = Disconnected()
	}
}

// Active reports whether id names an in-use slot.
func (g *Graph) Active(id NodeID) bool {
	return id.Valid() && g.Nodes[id].Type != TypeNone
}

// Node returns the slot for id, or nil if id is out of range.
func (g *Graph) Node(id NodeID) *Node {
	if !id.Valid() {
		return nil
	}
	return &g.Nodes[id]
}

// Alloc claims the lowest free slot for a node of type t.
//
// Inputs start disconnected, params take defaults from d (zero when d is
// nil), and state is zeroed. Fails INVALID_NODE for TypeNone or an
// out-of-range type, GRAPH_FULL when every slot is in use.
func (g *Graph) Alloc(t NodeType, d Defaults) (NodeID, error) {
	if !t.Valid() {
		return InvalidNode, NewError("alloc", ErrCodeInvalidNode)
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Type != TypeNone {
			continue
		}
		clearNode(n)
		n.Type = t
		if d != nil {
			n.Params = d.Defaults(t)
		}
		n.State = ResetState(t)
		g.NodeCount++
		return NodeID(i), nil
	}

	return InvalidNode, NewError("alloc", ErrCodeGraphFull)
}

// Free releases id and disconnects every input that referenced it.
func (g *Graph) Free(id NodeID) error {
	if !g.Active(id) {
		return nodeError("free", ErrCodeInvalidNode, id)
	}

	clearNode(&g.Nodes[id])
	for i := range g.Nodes {
		n := &g.Nodes[i]
		for j := range n.Inputs {
			if n.Inputs[j].Src == id {
				n.Inputs[j] = Disconnected()
			}
		}
	}
	g.NodeCount--
	return nil
}

// Connect wires output srcPort of src into input dstPort of dst,
// replacing whatever was connected there.
//
// A node may never feed itself: src == dst fails CYCLE_DETECTED here,
// before any scheduling pass runs.
func (g *Graph) Connect(src NodeID, srcPort uint8, dst NodeID, dstPort uint8) error {
	if !g.Active(src) {
		return nodeError("connect", ErrCodeInvalidNode, src)
	}
	if !g.Active(dst) {
		return nodeError("connect", ErrCodeInvalidNode, dst)
	}
	if int(srcPort) >= MaxOutputs {
		return portError("connect", src, int(srcPort))
	}
	if int(dstPort) >= MaxInputs {
		return portError("connect", dst, int(dstPort))
	}
	if src == dst {
		return nodeError("connect", ErrCodeCycleDetected, src)
	}

	g.Nodes[dst].Inputs[dstPort] = Connection{Src: src, Port: srcPort}
	return nil
}

// Disconnect resets input dstPort of dst.
func (g *Graph) Disconnect(dst NodeID, dstPort uint8) error {
	if !g.Active(dst) {
		return nodeError("disconnect", ErrCodeInvalidNode, dst)
	}
	if int(dstPort) >= MaxInputs {
		return portError("disconnect", dst, int(dstPort))
	}
	g.Nodes[dst].Inputs[dstPort] = Disconnected()
	return nil
}

// Param reads params[idx] of id.
func (g *Graph) Param(id NodeID, idx int) (float32, error) {
	if !g.Active(id) {
		return 0, nodeError("get_param", ErrCodeInvalidNode, id)
	}
	if idx < 0 || idx >= MaxParams {
		return 0, portError("get_param", id, idx)
	}
	return g.Nodes[id].Params[idx], nil
}

// SetParam writes params[idx] of id.
func (g *Graph) SetParam(id NodeID, idx int, v float32) error {
	if !g.Active(id) {
		return nodeError("set_param", ErrCodeInvalidNode, id)
	}
	if idx < 0 || idx >= MaxParams {
		return portError("set_param", id, idx)
	}
	g.Nodes[id].Params[idx] = v
	return nil
}

// CopyFrom overwrites g with a full copy of src, including node state
// and version.
func (g *Graph) CopyFrom(src *Graph) {
	*g = *src
}

// Clone returns an independent copy of g.
func (g *Graph) Clone() *Graph {
	c := *g
	return &c
}

// CountActive counts in-use slots from scratch.
func (g *Graph) CountActive() uint16 {
	var n uint16
	for i := range g.Nodes {
		if g.Nodes[i].Type != TypeNone {
			n++
		}
	}
	return n
}
