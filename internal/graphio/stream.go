package graphio

import (
	"errors"
	"io"
	"os"

	"github.com/roach88/livegraph/internal/graph"
)

// Save writes the encoding of g and ui to w.
func Save(w io.Writer, g *graph.Graph, ui *graph.UiMetaBank) error {
	if w == nil || g == nil {
		return newError("save", ErrCodeNullPtr, nil)
	}
	buf, err := Marshal(g, ui)
	if err != nil {
		return err
	}
	n, err := w.Write(buf)
	if err != nil {
		return newError("save", ErrCodeWriteFail, err)
	}
	if n != len(buf) {
		return newError("save", ErrCodeWriteFail, io.ErrShortWrite)
	}
	return nil
}

// Load reads one encoding from r into g and ui and returns the number of
// repairs Sanitize made. At most MaxSize bytes are consumed.
func Load(r io.Reader, g *graph.Graph, ui *graph.UiMetaBank) (int, error) {
	if r == nil || g == nil {
		return 0, newError("load", ErrCodeNullPtr, nil)
	}
	buf := make([]byte, MaxSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return 0, newError("load", ErrCodeReadFail, err)
	}
	if n < HeaderSize {
		return 0, newError("load", ErrCodeTruncated, nil)
	}
	return Deserialize(buf[:n], g, ui)
}

// SaveFile writes g and ui to path, replacing any existing file.
func SaveFile(path string, g *graph.Graph, ui *graph.UiMetaBank) error {
	if path == "" || g == nil {
		return newError("save", ErrCodeNullPtr, nil)
	}
	f, err := os.Create(path)
	if err != nil {
		return newError("save", ErrCodeOpenFail, err)
	}
	if err := Save(f, g, ui); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return newError("save", ErrCodeWriteFail, err)
	}
	return nil
}

// LoadFile reads path into g and ui. See Load.
func LoadFile(path string, g *graph.Graph, ui *graph.UiMetaBank) (int, error) {
	if path == "" || g == nil {
		return 0, newError("load", ErrCodeNullPtr, nil)
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, newError("load", ErrCodeOpenFail, err)
	}
	defer f.Close()
	return Load(f, g, ui)
}
