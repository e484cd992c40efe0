// Package render turns catalog items into static HTML pages.
package render

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"

	"pagesync/internal/domain/item"
)

//go:embed item.html.tmpl
var defaultLayout string

type Template struct {
	tmpl *template.Template
}

// New parses the layout at path, or the embedded default layout when path is empty.
func New(path string) (*Template, error) {
	src := defaultLayout
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read page template: %w", err)
		}
		src = string(b)
	}

	t, err := template.New("item").Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	return &Template{tmpl: t}, nil
}

func (t *Template) Render(w io.Writer, it item.Item) error {
	return t.tmpl.Execute(w, it)
}
