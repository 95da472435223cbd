package graphio

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes serialization failures.
type ErrorCode string

const (
	// ErrCodeNullPtr indicates a nil graph, buffer or path.
	ErrCodeNullPtr ErrorCode = "NULL_PTR"

	// ErrCodeOpenFail indicates the file could not be opened or created.
	ErrCodeOpenFail ErrorCode = "OPEN_FAIL"

	// ErrCodeReadFail indicates a read from the stream failed.
	ErrCodeReadFail ErrorCode = "READ_FAIL"

	// ErrCodeWriteFail indicates a write to the stream failed or was short.
	ErrCodeWriteFail ErrorCode = "WRITE_FAIL"

	// ErrCodeBadMagic indicates the data is not a graph file.
	ErrCodeBadMagic ErrorCode = "BAD_MAGIC"

	// ErrCodeBadVersion indicates a format version newer than this build reads.
	ErrCodeBadVersion ErrorCode = "BAD_VERSION"

	// ErrCodeBadChecksum indicates the payload does not match the header checksum.
	ErrCodeBadChecksum ErrorCode = "BAD_CHECKSUM"

	// ErrCodeTruncated indicates fewer bytes than the header implies.
	ErrCodeTruncated ErrorCode = "TRUNCATED"

	// ErrCodeBufferTooSmall indicates the destination buffer cannot hold the encoding.
	ErrCodeBufferTooSmall ErrorCode = "BUFFER_TOO_SMALL"
)

var resultStrings = map[ErrorCode]string{
	ErrCodeNullPtr:        "Error: NULL pointer",
	ErrCodeOpenFail:       "Error: Failed to open file",
	ErrCodeReadFail:       "Error: Failed to read file",
	ErrCodeWriteFail:      "Error: Failed to write file",
	ErrCodeBadMagic:       "Error: Invalid magic number",
	ErrCodeBadVersion:     "Error: Unsupported version",
	ErrCodeBadChecksum:    "Error: Checksum mismatch",
	ErrCodeTruncated:      "Error: File truncated",
	ErrCodeBufferTooSmall: "Error: Buffer too small",
}

// Error is a typed serialization failure. On any Error the destination
// graph and UI bank are unchanged.
type Error struct {
	Code ErrorCode
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op string, code ErrorCode, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

// CodeOf extracts the ErrorCode from err, or "" if err is not an *Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// ResultString renders an I/O result for display: "OK" for nil, a fixed
// message per code otherwise.
func ResultString(err error) string {
	if err == nil {
		return "OK"
	}
	if s, ok := resultStrings[CodeOf(err)]; ok {
		return s
	}
	return "Unknown error"
}
