// Package report renders scan results for terminals, Slack messages, and
// machine-readable output.
package report

import (
	"io"

	"github.com/loamlabs/branchwatch/internal/model"
)

// Format represents the output format
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Renderer defines the interface for report output formats.
type Renderer interface {
	Render(report *model.Report, w io.Writer) error
}

// NewRenderer creates a renderer for the specified format.
func NewRenderer(format Format) Renderer {
	switch format {
	case FormatJSON:
		return &JSONRenderer{}
	default:
		return &TextRenderer{}
	}
}
