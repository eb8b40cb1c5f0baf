// Package views renders the blog pages from embedded html/template files.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"io/fs"
	"net/http"
	"restblog/storage/models"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const (
	PageIndex = "index"
	PageNew   = "new"
	PageShow  = "show"
	PageEdit  = "edit"

	dateFormat    = "Mon Jan 02 2006"
	excerptLength = 100
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

type PageData struct {
	Title string
	Path  string
	Post  *models.Post
	Posts []models.Post
}

type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page together with the layout and partials.
// trustBody marks post bodies as safe HTML; enable it only when bodies are sanitized before storage.
func NewRenderer(trustBody bool) (*Renderer, error) {
	strict := bluemonday.StrictPolicy()
	functions := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(dateFormat)
		},
		"body": func(s string) template.HTML {
			if trustBody {
				return template.HTML(s)
			}
			return template.HTML(template.HTMLEscapeString(s))
		},
		"excerpt": func(s string) string {
			text := html.UnescapeString(strict.Sanitize(s))
			if utf8.RuneCountInString(text) <= excerptLength {
				return text
			}
			return string([]rune(text)[:excerptLength]) + "..."
		},
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{PageIndex, PageNew, PageShow, PageEdit} {
		ts, err := template.New("").Funcs(functions).ParseFS(templateFS,
			"templates/base.layout.html",
			"templates/*.partial.html",
			"templates/"+page+".page.html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s page: %w", page, err)
		}
		r.pages[page] = ts
	}
	return r, nil
}

// Render executes page into a buffer first so a failing template never leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data *PageData) error {
	ts, found := r.pages[page]
	if !found {
		return fmt.Errorf("unknown page %q", page)
	}
	if data == nil {
		data = &PageData{}
	}

	buf := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("render %s page: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
