package output

import (
	"encoding/json"
	"io"
)

// JSONRenderer emits compiled graphs as JSON.
type JSONRenderer struct {
	out io.Writer
}

// NewJSON creates a JSON renderer writing to out.
func NewJSON(out io.Writer) *JSONRenderer {
	return &JSONRenderer{out: out}
}

// Render encodes the report as JSON.
func (j *JSONRenderer) Render(report Report) error {
	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")

	return enc.Encode(report)
}

// RenderPath encodes a promotion path as JSON.
func (j *JSONRenderer) RenderPath(path *PathReport) error {
	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")

	return enc.Encode(path)
}
