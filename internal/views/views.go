// Package views renders the server-side HTML pages
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

//go:embed templates
var templateFS embed.FS

// pages is the set of renderable page templates, each paired with the layout
var pages = []string{
	"home",
	"book_detail",
	"search",
	"authors",
	"author_books",
	"register",
	"login",
	"edit_book",
}

// Renderer executes embedded page templates against handler-provided data
type Renderer struct {
	templates map[string]*template.Template
	logger    *zap.Logger
}

// New parses all embedded page templates
func New(logger *zap.Logger) (*Renderer, error) {
	templates := make(map[string]*template.Template, len(pages))

	for _, page := range pages {
		t, err := template.ParseFS(templateFS, "templates/layout.tmpl", "templates/"+page+".tmpl")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %q: %w", page, err)
		}
		templates[page] = t
	}

	return &Renderer{
		templates: templates,
		logger:    logger,
	}, nil
}

// Render writes a rendered page. The page executes into a buffer first so a
// template failure surfaces as a clean 500 instead of a half-written body.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) {
	t, ok := r.templates[page]
	if !ok {
		r.logger.Error("unknown page template", zap.String("page", page))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error("failed to execute template", zap.String("page", page), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
