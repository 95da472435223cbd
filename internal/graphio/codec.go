package graphio

import (
	"math"

	"github.com/roach88/livegraph/internal/graph"
)

// Serialize encodes g (and ui, when non-nil) into dst and returns the
// number of bytes written.
//
// The payload is written first and the checksum computed over it before
// the header goes in. Fails NULL_PTR for a nil graph or buffer and
// BUFFER_TOO_SMALL when dst cannot hold SerializedSize(ui != nil).
func Serialize(dst []byte, g *graph.Graph, ui *graph.UiMetaBank) (int, error) {
	if dst == nil || g == nil {
		return 0, newError("serialize", ErrCodeNullPtr, nil)
	}
	size := SerializedSize(ui != nil)
	if len(dst) < size {
		return 0, newError("serialize", ErrCodeBufferTooSmall, nil)
	}

	b := dst[:size]
	off := HeaderSize
	for i := range g.Nodes {
		putNode(b[off:off+NodeRecordSize], &g.Nodes[i])
		off += NodeRecordSize
	}

	h := Header{
		Magic:        Magic,
		Version:      Version,
		NodeCount:    g.NodeCount,
		GraphVersion: g.Version,
	}
	if ui != nil {
		h.Flags |= FlagUI
		for i := range ui.Meta {
			putUI(b[off:off+UIRecordSize], &ui.Meta[i])
			off += UIRecordSize
		}
	}

	h.Checksum = Checksum(b[HeaderSize:])
	h.put(b)
	return size, nil
}

// Marshal returns a freshly allocated encoding of g and ui.
func Marshal(g *graph.Graph, ui *graph.UiMetaBank) ([]byte, error) {
	buf := make([]byte, SerializedSize(ui != nil))
	n, err := Serialize(buf, g, ui)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// Deserialize decodes src into g and ui and returns the number of repairs
// Sanitize made.
//
// Checks run in order: NULL_PTR, TRUNCATED (shorter than a header),
// BAD_MAGIC, BAD_VERSION (newer than Version), TRUNCATED (shorter than the
// flags imply), BAD_CHECKSUM. On any error g and ui are untouched.
//
// When the file has no UI section and ui is non-nil, ui is zeroed. Sanitize
// always runs on the decoded graph.
func Deserialize(src []byte, g *graph.Graph, ui *graph.UiMetaBank) (int, error) {
	if src == nil || g == nil {
		return 0, newError("deserialize", ErrCodeNullPtr, nil)
	}

	h, err := ReadHeader(src)
	if err != nil {
		return 0, newError("deserialize", CodeOf(err), nil)
	}

	end := HeaderSize + h.PayloadSize()
	if len(src) < end {
		return 0, newError("deserialize", ErrCodeTruncated, nil)
	}
	if Checksum(src[HeaderSize:end]) != h.Checksum {
		return 0, newError("deserialize", ErrCodeBadChecksum, nil)
	}

	var scratch graph.Graph
	off := HeaderSize
	for i := range scratch.Nodes {
		readNode(src[off:off+NodeRecordSize], &scratch.Nodes[i])
		off += NodeRecordSize
	}
	scratch.NodeCount = h.NodeCount
	scratch.Version = h.GraphVersion
	repairs := Sanitize(&scratch)
	*g = scratch

	if ui != nil {
		if !h.HasUI() {
			ui.Reset()
			return repairs, nil
		}
		for i := range ui.Meta {
			readUI(src[off:off+UIRecordSize], &ui.Meta[i])
			off += UIRecordSize
		}
	}
	return repairs, nil
}

// Node record layout (132 bytes):
//
//	0   type u16, pad u16
//	4   4 × {src u16, port u8, pad u8}
//	20  8 × param f32
//	52  state: kind u8, head u8, pad u16, seed u32, a f32, b f32, 16 × ring f32
func putNode(b []byte, n *graph.Node) {
	clear(b)
	le.PutUint16(b[0:], uint16(n.Type))
	for i, c := range n.Inputs {
		o := 4 + i*4
		le.PutUint16(b[o:], uint16(c.Src))
		b[o+2] = c.Port
	}
	for i, p := range n.Params {
		le.PutUint32(b[20+i*4:], math.Float32bits(p))
	}

	s := &n.State
	b[52] = uint8(s.Kind)
	b[53] = s.Head
	le.PutUint32(b[56:], s.Seed)
	le.PutUint32(b[60:], math.Float32bits(s.A))
	le.PutUint32(b[64:], math.Float32bits(s.B))
	for i, v := range s.Ring {
		le.PutUint32(b[68+i*4:], math.Float32bits(v))
	}
}

func readNode(b []byte, n *graph.Node) {
	n.Type = graph.NodeType(le.Uint16(b[0:]))
	for i := range n.Inputs {
		o := 4 + i*4
		n.Inputs[i] = graph.Connection{Src: graph.NodeID(le.Uint16(b[o:])), Port: b[o+2]}
	}
	for i := range n.Params {
		n.Params[i] = math.Float32frombits(le.Uint32(b[20+i*4:]))
	}

	s := &n.State
	s.Kind = graph.StateKind(b[52])
	s.Head = b[53]
	s.Seed = le.Uint32(b[56:])
	s.A = math.Float32frombits(le.Uint32(b[60:]))
	s.B = math.Float32frombits(le.Uint32(b[64:]))
	for i := range s.Ring {
		s.Ring[i] = math.Float32frombits(le.Uint32(b[68+i*4:]))
	}
}

// UI record layout (12 bytes): x f32, y f32, selected u8, collapsed u8, pad u16.
func putUI(b []byte, m *graph.UiMeta) {
	clear(b)
	le.PutUint32(b[0:], math.Float32bits(m.X))
	le.PutUint32(b[4:], math.Float32bits(m.Y))
	if m.Selected {
		b[8] = 1
	}
	if m.Collapsed {
		b[9] = 1
	}
}

func readUI(b []byte, m *graph.UiMeta) {
	m.X = math.Float32frombits(le.Uint32(b[0:]))
	m.Y = math.Float32frombits(le.Uint32(b[4:]))
	m.Selected = b[8] != 0
	m.Collapsed = b[9] != 0
}
