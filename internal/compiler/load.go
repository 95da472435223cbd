package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Format is a document source format.
type Format int

const (
	FormatYAML Format = iota
	FormatCUE
)

// FormatForPath picks the format from a file extension. Anything other
// than .cue is read as YAML, which also accepts JSON.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		return FormatCUE
	}
	return FormatYAML
}

// ParseDocument decodes a document. YAML input rejects unknown fields.
// The result is not validated; CompileDocument does that.
func ParseDocument(data []byte, format Format, filename string) (*Document, error) {
	var doc Document
	switch format {
	case FormatCUE:
		ctx := cuecontext.New()
		v := ctx.CompileBytes(data, cue.Filename(filename))
		if err := v.Err(); err != nil {
			return nil, fmt.Errorf("building CUE value: %w", err)
		}
		if err := v.Validate(cue.Concrete(true)); err != nil {
			return nil, fmt.Errorf("validating CUE value: %w", err)
		}
		if err := v.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding CUE document: %w", err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("parsing YAML document: empty input")
			}
			return nil, fmt.Errorf("parsing YAML document: %w", err)
		}
	}
	return &doc, nil
}

// LoadDocumentFile reads and parses the document at path.
func LoadDocumentFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return ParseDocument(data, FormatForPath(path), path)
}

// MarshalDocument encodes doc as YAML.
func MarshalDocument(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}
