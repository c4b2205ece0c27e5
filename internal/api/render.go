package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"example.com/octofit/internal/domain"
	"example.com/octofit/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"home.html",
	"users.html",
	"user_edit.html",
	"teams.html",
	"activities.html",
	"leaderboard.html",
	"workouts.html",
	"workout.html",
	"error.html",
}

// mdRenderer leaves WithUnsafe unset, so raw HTML in descriptions is escaped.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

var templateFuncs = template.FuncMap{
	"markdown":   renderMarkdown,
	"typeLabel":  view.TypeLabel,
	"dateLabel":  dateLabel,
	"joinedDate": joinedDate,
	"thousands":  thousands,
}

// thousands groups digits the way the browser's toLocaleString does, 1500 as "1,500".
func thousands(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

func parseTemplates() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tpl, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = tpl
	}
	return pages, nil
}

// page is the data handed to every template.
type page struct {
	Title     string
	Nav       string
	CSRFField template.HTML
	Flash     string
	Refresh   *refresh
	Data      any
}

type refresh struct {
	Seconds int
	URL     string
}

func refreshAfter(d time.Duration, url string) *refresh {
	if d < 0 {
		d = 0
	}
	return &refresh{Seconds: int(math.Ceil(d.Seconds())), URL: url}
}

// render executes the page into a buffer first so template errors never
// leave a half-written response.
func (h *Handler) render(w http.ResponseWriter, status int, name string, p page) {
	tpl, ok := h.pages[name]
	if !ok {
		http.Error(w, "unknown template "+name, http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, p); err != nil {
		log.Printf("render %s: %v", name, err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// dateLabel formats activity dates, e.g. "Mar 4, 2025".
func dateLabel(raw string) string {
	return formatTimestamp(raw, "Jan 2, 2006")
}

// joinedDate formats account creation dates, e.g. "3/4/2025".
func joinedDate(raw string) string {
	return formatTimestamp(raw, "1/2/2006")
}

func formatTimestamp(raw, layout string) string {
	if raw == "" {
		return "N/A"
	}
	ts := domain.ParseTimestamp(raw)
	if ts.IsZero() {
		return raw
	}
	return ts.Format(layout)
}
