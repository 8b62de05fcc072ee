// Package render turns page data into HTML through the embedded templates.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/anonto42/yatube/internal/models"
)

//go:embed templates
var files embed.FS

const (
	layoutFile   = "templates/base.html"
	includesGlob = "templates/includes/*.html"
)

// ViewerKey is the echo context key holding the logged in *models.User
const ViewerKey = "viewer"

// Data is what a handler hands to a template
type Data map[string]any

// Page is the value every template is executed with
type Page struct {
	Viewer *models.User
	Path   string
	Year   int
	Data
}

// Renderer implements echo.Renderer. Every page is parsed together with
// the layout and the includes into its own set.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"mediaURL": func(ref string) string {
		return "/media/" + ref
	},
	"date": func(t time.Time) string {
		return t.Format("2 January 2006")
	},
	"linebreaks": func(s string) template.HTML {
		lines := strings.Split(template.HTMLEscapeString(s), "\n")
		return template.HTML(strings.Join(lines, "<br>"))
	},
}

func New() (*Renderer, error) {
	pages, err := fs.Glob(files, "templates/*/*.html")
	if err != nil {
		return nil, err
	}
	pages = lo.Reject(pages, func(name string, _ int) bool {
		return strings.HasPrefix(name, "templates/includes/")
	})

	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		tmpl, err := template.New("base.html").Funcs(funcs).ParseFS(files, layoutFile, includesGlob, page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.pages[strings.TrimPrefix(page, "templates/")] = tmpl
	}
	return r, nil
}

// Has reports whether a page template exists
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	page := Page{Year: time.Now().Year()}
	switch d := data.(type) {
	case Data:
		page.Data = d
	case map[string]any:
		page.Data = d
	case nil:
		page.Data = Data{}
	default:
		page.Data = Data{"Value": d}
	}
	if c != nil {
		page.Path = c.Request().URL.Path
		page.Viewer, _ = c.Get(ViewerKey).(*models.User)
	}
	return tmpl.ExecuteTemplate(w, "base.html", page)
}
