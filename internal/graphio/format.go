package graphio

import (
	"encoding/binary"

	"github.com/roach88/livegraph/internal/graph"
)

// File format constants. All integers and floats are little-endian.
//
//	Header      16 bytes
//	Nodes       MaxNodes × NodeRecordSize
//	UI (opt.)   MaxNodes × UIRecordSize, present when FlagUI is set
const (
	Magic   uint32 = 0x4C475348 // "HSGL" on disk
	Version uint16 = 1

	HeaderSize     = 16
	NodeRecordSize = 132
	UIRecordSize   = 12

	// FlagUI marks a file carrying the UI metadata section.
	FlagUI uint16 = 1 << 0
)

const (
	nodesSize = graph.MaxNodes * NodeRecordSize
	uiSize    = graph.MaxNodes * UIRecordSize

	// MaxSize is the largest valid encoding.
	MaxSize = HeaderSize + nodesSize + uiSize
)

var le = binary.LittleEndian

// Header is the fixed file prologue.
type Header struct {
	Magic        uint32
	Version      uint16
	NodeCount    uint16
	GraphVersion uint16
	Flags        uint16
	Checksum     uint32
}

// HasUI reports whether the UI section follows the node table.
func (h Header) HasUI() bool {
	return h.Flags&FlagUI != 0
}

// PayloadSize is the number of bytes after the header the flags imply.
func (h Header) PayloadSize() int {
	if h.HasUI() {
		return nodesSize + uiSize
	}
	return nodesSize
}

func (h Header) put(b []byte) {
	le.PutUint32(b[0:], h.Magic)
	le.PutUint16(b[4:], h.Version)
	le.PutUint16(b[6:], h.NodeCount)
	le.PutUint16(b[8:], h.GraphVersion)
	le.PutUint16(b[10:], h.Flags)
	le.PutUint32(b[12:], h.Checksum)
}

func parseHeader(b []byte) Header {
	return Header{
		Magic:        le.Uint32(b[0:]),
		Version:      le.Uint16(b[4:]),
		NodeCount:    le.Uint16(b[6:]),
		GraphVersion: le.Uint16(b[8:]),
		Flags:        le.Uint16(b[10:]),
		Checksum:     le.Uint32(b[12:]),
	}
}

// ReadHeader decodes and checks the header of src without verifying the
// payload. Fails TRUNCATED, BAD_MAGIC or BAD_VERSION.
func ReadHeader(src []byte) (Header, error) {
	if src == nil {
		return Header{}, newError("read_header", ErrCodeNullPtr, nil)
	}
	if len(src) < HeaderSize {
		return Header{}, newError("read_header", ErrCodeTruncated, nil)
	}
	h := parseHeader(src)
	if h.Magic != Magic {
		return h, newError("read_header", ErrCodeBadMagic, nil)
	}
	if h.Version > Version {
		return h, newError("read_header", ErrCodeBadVersion, nil)
	}
	return h, nil
}

// SerializedSize returns the encoded length with or without the UI section.
// The format is fixed-size, so the graph contents never matter.
func SerializedSize(includeUI bool) int {
	if includeUI {
		return HeaderSize + nodesSize + uiSize
	}
	return HeaderSize + nodesSize
}

// Checksum is the rotate-xor-add accumulator stored in the header,
// computed over every byte after it.
func Checksum(b []byte) uint32 {
	var sum uint32
	for _, c := range b {
		sum = sum<<1 | sum>>31
		sum ^= uint32(c)
		sum += uint32(c)
	}
	return sum
}
