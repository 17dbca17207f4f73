// Package views renders the dashboard HTML. The full page is served once;
// afterwards the handlers re-render individual fragments and patch them over
// SSE, so every fragment root carries a stable element id.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

// Views holds the parsed template set.
type Views struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New() (*Views, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Views{tmpl: tmpl}, nil
}

// WritePage renders the full dashboard page.
func (v *Views) WritePage(w io.Writer, data PageData) error {
	if data.Title == "" {
		data.Title = "DataCensus"
	}
	return v.tmpl.ExecuteTemplate(w, "index", data)
}

// Fragment renders a named fragment to a string for SSE patching.
func (v *Views) Fragment(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := v.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render fragment %s: %w", name, err)
	}
	return buf.String(), nil
}
