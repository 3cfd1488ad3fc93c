// Package web renders the browser pages served next to the JSON API.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"brigade-backend/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"index", "table", "login", "register"}

// IndexPage is the overview: fastest runs plus each group's series.
type IndexPage struct {
	User        *models.Account
	Leaderboard []models.LeaderboardEntry
	Groups      []string
	Series      map[string]models.SeriesJSON
}

// TablePage lists the signed-in group's own records.
type TablePage struct {
	User    *models.Account
	Entries []*models.HistoryEntry
}

// FormPage backs the login and register forms.
type FormPage struct {
	User     *models.Account
	Username string
	Error    string
}

type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"inc":       func(i int) int { return i + 1 },
		"seconds":   func(v float64) string { return fmt.Sprintf("%.1f s", v) },
		"tableTime": func(t time.Time) string { return t.Format(models.TableTimestampLayout) },
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Renderer{pages: pages}, nil
}

// Render buffers the whole page before writing the status line.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data interface{}) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
