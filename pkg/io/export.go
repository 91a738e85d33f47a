package io

import (
	"io"

	"github.com/matzehuels/historygraph/pkg/scene"
)

// WriteScene encodes s as indented JSON and writes it to w.
func WriteScene(w io.Writer, s *scene.Scene) error {
	return scene.Write(s, w)
}

// ExportScene writes s to a JSON file at path.
func ExportScene(path string, s *scene.Scene) error {
	return scene.WriteFile(s, path)
}

// ReadScene decodes a scene previously written by [WriteScene].
func ReadScene(r io.Reader) (*scene.Scene, error) {
	return scene.Read(r)
}

// ImportScene reads a scene from the JSON file at path.
func ImportScene(path string) (*scene.Scene, error) {
	return scene.ReadFile(path)
}
