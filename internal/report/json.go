package report

import (
	"encoding/json"
	"io"

	"github.com/loamlabs/branchwatch/internal/model"
)

// JSONRenderer formats the report as JSON
type JSONRenderer struct {
	Pretty bool
}

// Render outputs the full report as a single JSON document.
func (f *JSONRenderer) Render(report *model.Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(report)
}
