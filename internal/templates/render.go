// Package templates renders the dashboard page and the HTML fragments patched
// in over Datastar SSE.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed fragments/*.html pages/*.html
var files embed.FS

// funcMap provides common template functions.
var funcMap = template.FuncMap{
	// dict creates a map from key-value pairs, useful for passing multiple values to nested templates
	"dict": func(values ...any) map[string]any {
		if len(values)%2 != 0 {
			return nil
		}
		m := make(map[string]any, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				continue
			}
			m[key] = values[i+1]
		}
		return m
	},
	"km": func(v float64) string {
		return fmt.Sprintf("%.1f km", v)
	},
	"minutes": func(v float64) string {
		return fmt.Sprintf("%.0f min", v)
	},
	"hours": func(v float64) string {
		return fmt.Sprintf("%.1f h", v)
	},
}

// Renderer manages HTML templates. It is safe for concurrent use.
type Renderer struct {
	templates *template.Template
}

// New parses the embedded fragments and pages.
func New() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(files, "fragments/*.html", "pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: tmpl}, nil
}

// Render renders a named template to a string.
func (r *Renderer) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToBuffer(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToBuffer renders a named template to a buffer.
func (r *Renderer) RenderToBuffer(buf *bytes.Buffer, name string, data any) error {
	return r.RenderToWriter(buf, name, data)
}

// RenderToWriter renders a named template to w.
func (r *Renderer) RenderToWriter(w io.Writer, name string, data any) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// MustRender renders a template and panics on error.
// Use only when you're certain the template exists.
func (r *Renderer) MustRender(name string, data any) string {
	s, err := r.Render(name, data)
	if err != nil {
		panic(err)
	}
	return s
}
