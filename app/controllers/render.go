package controllers

import (
	"bytes"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"time"

	"inkwell/app/models"
	"inkwell/app/services"
	"inkwell/app/views"

	"github.com/dustin/go-humanize"
)

// Page is what every template receives. Data carries the page-specific values.
type Page struct {
	Title    string
	Session  *models.Session
	Message  string
	Error    string
	Redirect *Redirect
	Data     interface{}
}

// Redirect makes the layout emit a meta refresh to URL after Seconds.
type Redirect struct {
	URL     string
	Seconds int
}

// Renderer executes the embedded page templates
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

var pageNames = []string{"index", "show", "new", "edit", "login", "signup", "notfound"}

// NewRenderer parses the layout together with each page template.
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		templates: loadTemplates(),
		logger:    logger,
	}
}

// loadTemplates loads and parses all templates
func loadTemplates() map[string]*template.Template {
	funcs := template.FuncMap{
		"humanDate": humanDate,
	}
	templates := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		templates[name] = template.Must(template.New(name).Funcs(funcs).ParseFS(
			views.Templates(),
			"layout.html",
			name+".html",
		))
	}
	return templates
}

// humanDate renders the post date followed by its age, e.g. "2024-01-02 (3 days ago)".
func humanDate(post *models.Post) string {
	t, ok := post.PublishedAt()
	if !ok {
		return post.Date
	}
	return post.Date + " (" + humanize.Time(t) + ")"
}

// Render executes the named page into a buffer first so a template error
// never leaves a half-written response.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, page *Page) {
	if page.Session == nil {
		page.Session = services.SessionFromContext(r.Context())
	}

	tmpl, ok := rd.templates[name]
	if !ok {
		rd.logger.Error("unknown template", "name", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		rd.logger.Error("template error", "name", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// NotFound renders the not-found page with a 404.
func (rd *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rd.Render(w, r, http.StatusNotFound, "notfound", &Page{Title: "Not found"})
}

// redirectSeconds rounds a delay up to whole seconds for a meta refresh.
func redirectSeconds(delay time.Duration) int {
	if delay <= 0 {
		return 0
	}
	return int(math.Ceil(delay.Seconds()))
}
