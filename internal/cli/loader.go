package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/livegraph/internal/compiler"
	"github.com/roach88/livegraph/internal/graph"
	"github.com/roach88/livegraph/internal/graphio"
	"github.com/roach88/livegraph/internal/nodes"
)

// GraphExt is the extension of binary graph files.
const GraphExt = ".lgsh"

// LoadedGraph is a graph read from a document or a binary file.
type LoadedGraph struct {
	Path  string
	Name  string
	Graph *graph.Graph
	UI    *graph.UiMetaBank

	// Compiled carries document labels; nil for binary files.
	Compiled *compiler.Compiled

	// Repairs counts the fixes sanitize applied to a binary file.
	Repairs int
}

// Binary reports whether the graph came from a binary file.
func (l *LoadedGraph) Binary() bool {
	return l.Compiled == nil
}

// Label names id by its document label, or "#<id>" for binary files.
func (l *LoadedGraph) Label(id graph.NodeID) string {
	if l.Compiled != nil {
		return l.Compiled.LabelOf(id)
	}
	return fmt.Sprintf("#%d", id)
}

// LoadError represents an error that occurred while loading a graph.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
	Err     error
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsDocumentError reports whether the load failed on document content
// (an E1xx code) rather than on access to the file.
func (e *LoadError) IsDocumentError() bool {
	return strings.HasPrefix(e.Code, "E1")
}

// IsGraphFile reports whether path names a binary graph file.
func IsGraphFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), GraphExt)
}

// LoadGraph reads a binary graph file (by extension) or compiles a YAML or
// CUE document.
func LoadGraph(path string, reg *nodes.Registry) (*LoadedGraph, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("file not found: %s", path), Err: err}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing file: %v", err), Err: err}
	}
	if info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a file: %s", path)}
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if IsGraphFile(path) {
		g := graph.New()
		ui := &graph.UiMetaBank{}
		repairs, err := graphio.LoadFile(path, g, ui)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: graphio.ResultString(err), Err: err}
		}
		return &LoadedGraph{Path: path, Name: name, Graph: g, UI: ui, Repairs: repairs}, nil
	}

	doc, err := compiler.LoadDocumentFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error(), Pos: cuePos(err), Err: err}
	}
	compiled, err := compiler.CompileDocument(doc, reg)
	if err != nil {
		return nil, convertCompileError(err)
	}
	if compiled.Name != "" {
		name = compiled.Name
	}
	return &LoadedGraph{Path: path, Name: name, Graph: compiled.Graph, UI: compiled.UI, Compiled: compiled}, nil
}

// cuePos returns the first CUE source position in err, if any.
func cuePos(err error) token.Pos {
	for _, p := range cueerrors.Positions(err) {
		if p.IsValid() {
			return p
		}
	}
	return token.NoPos
}

// convertCompileError converts a compiler error to a LoadError.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    compileErr.Code,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Err:     err,
		}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error(), Err: err}
}

// Error code constants, unified across all CLI commands. Document codes
// (E1xx) and lint codes (W2xx) come from the compiler package.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No scenario files found
	ErrCodeLoadFailed  = "E004" // Document parse or binary decode failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // Scheduling or publish rejected the graph
	ErrCodeWriteFailed = "E007" // File write error
)

// loadFailure reports a LoadGraph error through f and returns the ExitError.
// Document content errors are failures; access errors are command errors.
func loadFailure(f *OutputFormatter, err error) error {
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		return f.fail(ExitCommandError, ErrCodeGeneric, err.Error(), err)
	}
	code := ExitCommandError
	if loadErr.IsDocumentError() {
		code = ExitFailure
	}
	msg := loadErr.Message
	if loadErr.Pos.IsValid() {
		msg = fmt.Sprintf("line %d: %s", loadErr.Pos.Line(), msg)
	}
	return f.fail(code, loadErr.Code, msg, err)
}
