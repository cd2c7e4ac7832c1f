// Package views renders the HTML pages from embedded templates.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var files embed.FS

// Page names.
const (
	PageLogin       = "login"
	PageApp         = "app"
	PageConfigError = "config_error"
)

// Tabs on the main page.
const (
	TabReview    = "review"
	TabGenerate  = "generate"
	TabGuideline = "guideline"
)

// PageData is everything a page may show.
type PageData struct {
	Title string
	Tab   string
	Error string
	Flash string

	ReviewDraft    string
	ReviewResult   string
	GenerateTopic  string
	GenerateResult string

	GuidelineFilename string

	ConfigProblems []string
}

// Tab normalises the ?tab= value, defaulting to review.
func Tab(v string) string {
	switch v {
	case TabGenerate, TabGuideline:
		return v
	default:
		return TabReview
	}
}

type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the layout together with each page.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{PageLogin, PageApp, PageConfigError} {
		t, err := template.ParseFS(files, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes page into a buffer first so a template error never
// leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data PageData) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	if data.Title == "" {
		data.Title = "가나다벗 - AI 글쓰기 도우미"
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
