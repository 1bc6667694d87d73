package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/dustin/go-humanize"
	"mobiblog/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"login", "signup", "home", "blog", "editor",
	"myposts", "profile", "dashboard", "pending", "error",
}

var dateLayouts = []string{
	time.RFC1123,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var templateFuncs = template.FuncMap{
	// ago renders backend timestamps as "3 days ago"; unknown formats pass through
	"ago": func(s string) string {
		if t, ok := parseDate(s); ok {
			return humanize.Time(t)
		}
		return s
	},
	"date": func(s string) string {
		if t, ok := parseDate(s); ok {
			return t.Format("January 2, 2006")
		}
		return s
	},
	"statusClass": view.StatusClass,
	"bytes": func(n int64) string {
		return humanize.Bytes(uint64(n))
	},
}

// parseTemplates builds one template set per page, each sharing the layout.
func parseTemplates() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}
