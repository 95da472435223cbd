package graph

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes graph and scheduling errors.
type ErrorCode string

const (
	// ErrCodeInvalidNode indicates a bad node id or node type.
	ErrCodeInvalidNode ErrorCode = "INVALID_NODE"

	// ErrCodeInvalidPort indicates a port or param index out of range.
	ErrCodeInvalidPort ErrorCode = "INVALID_PORT"

	// ErrCodeGraphFull indicates all node slots are in use.
	ErrCodeGraphFull ErrorCode = "GRAPH_FULL"

	// ErrCodeCycleDetected indicates a self-connection or a dependency cycle.
	ErrCodeCycleDetected ErrorCode = "CYCLE_DETECTED"

	// ErrCodeNoSink indicates the graph has no primary sink node.
	ErrCodeNoSink ErrorCode = "NO_SINK"

	// ErrCodeValidationFail indicates a connection references a missing node or port.
	ErrCodeValidationFail ErrorCode = "VALIDATION_FAIL"
)

// Error is returned by graph store operations and by the scheduler.
// A failed operation never mutates the graph it was given.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op names the operation that failed ("alloc", "connect", "plan", ...).
	Op string

	// Node is the offending node, or InvalidNode when not applicable.
	Node NodeID

	// Port is the offending port or param index, or -1 when not applicable.
	Port int
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Node != InvalidNode && e.Port >= 0:
		return fmt.Sprintf("%s: %s (node=%d, port=%d)", e.Op, e.Code, e.Node, e.Port)
	case e.Node != InvalidNode:
		return fmt.Sprintf("%s: %s (node=%d)", e.Op, e.Code, e.Node)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
}

// NewError builds an Error without node or port context.
func NewError(op string, code ErrorCode) *Error {
	return &Error{Code: code, Op: op, Node: InvalidNode, Port: -1}
}

func nodeError(op string, code ErrorCode, id NodeID) *Error {
	return &Error{Code: code, Op: op, Node: id, Port: -1}
}

func portError(op string, id NodeID, port int) *Error {
	return &Error{Code: ErrCodeInvalidPort, Op: op, Node: id, Port: port}
}

// CodeOf returns the ErrorCode carried by err, or "" if err is not a graph error.
func CodeOf(err error) ErrorCode {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

// IsInvalidNode returns true if err is an INVALID_NODE error.
func IsInvalidNode(err error) bool { return CodeOf(err) == ErrCodeInvalidNode }

// IsInvalidPort returns true if err is an INVALID_PORT error.
func IsInvalidPort(err error) bool { return CodeOf(err) == ErrCodeInvalidPort }

// IsGraphFull returns true if err is a GRAPH_FULL error.
func IsGraphFull(err error) bool { return CodeOf(err) == ErrCodeGraphFull }

// IsCycleError returns true if err is a CYCLE_DETECTED error.
// Uses errors.As to handle wrapped errors.
func IsCycleError(err error) bool { return CodeOf(err) == ErrCodeCycleDetected }

// IsNoSink returns true if err is a NO_SINK error.
func IsNoSink(err error) bool { return CodeOf(err) == ErrCodeNoSink }

// IsValidationFail returns true if err is a VALIDATION_FAIL error.
func IsValidationFail(err error) bool { return CodeOf(err) == ErrCodeValidationFail }
