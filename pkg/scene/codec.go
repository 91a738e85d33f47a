package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Scene Serialization API
// =============================================================================

// Marshal encodes a scene as indented JSON.
func Marshal(s *Scene) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a scene from JSON bytes.
func Unmarshal(data []byte) (*Scene, error) {
	return Read(bytes.NewReader(data))
}

// Write encodes a scene as indented JSON to w.
func Write(s *Scene, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Read decodes a scene from r. Missing primitive arrays decode as empty.
func Read(r io.Reader) (*Scene, error) {
	s := New()
	if err := json.NewDecoder(r).Decode(s); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	normalize(s)
	return s, nil
}

// WriteFile writes a scene to a JSON file.
func WriteFile(s *Scene, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(s, f)
}

// ReadFile reads a scene from a JSON file.
func ReadFile(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// normalize replaces explicit nulls with empty slices.
func normalize(s *Scene) {
	if s.Lines == nil {
		s.Lines = []Line{}
	}
	if s.Commits == nil {
		s.Commits = []Commit{}
	}
	if s.Labels == nil {
		s.Labels = []Label{}
	}
	if s.Texts == nil {
		s.Texts = []Text{}
	}
}
