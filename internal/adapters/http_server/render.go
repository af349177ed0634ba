package httpserver

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"globalhub/internal/app"
	"globalhub/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = map[app.PageKind]string{
	app.PageHome:     "home.html",
	app.PageCity:     "city.html",
	app.PageCategory: "category.html",
	app.PageBusiness: "business.html",
}

// Renderer turns a Page into HTML. Each page kind gets its own clone of the
// layout so "content" can be defined once per page.
type Renderer struct {
	site  app.Site
	pages map[app.PageKind]*template.Template
}

type pageView struct {
	Site    app.Site
	Meta    app.Metadata
	State   string
	Message string
	Data    app.PageData
}

func NewRenderer(site app.Site) (*Renderer, error) {
	base, err := template.New("layout.html").Funcs(funcMap(site)).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	r := &Renderer{site: site, pages: make(map[app.PageKind]*template.Template, len(pageTemplates))}
	for kind, file := range pageTemplates {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", kind, err)
		}
		if _, err := t.ParseFS(templateFS, "templates/"+file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		r.pages[kind] = t
	}
	return r, nil
}

// StatusFor maps a view state to the HTTP status of the response.
func StatusFor(s app.State) int {
	switch s {
	case app.StateNotFound:
		return http.StatusNotFound
	case app.StateError:
		return http.StatusBadGateway
	}
	return http.StatusOK
}

// Render executes into a buffer first so a template failure never
// produces a half-written page with a success status.
func (r *Renderer) Render(w http.ResponseWriter, p app.Page) error {
	t, ok := r.pages[p.Kind]
	if !ok {
		return fmt.Errorf("no template for page %s", p.Kind)
	}
	var buf bytes.Buffer
	v := pageView{
		Site:    r.site,
		Meta:    p.Meta,
		State:   p.View.State.String(),
		Message: p.View.Message,
		Data:    p.View.Data,
	}
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		return fmt.Errorf("render %s: %w", p.Kind, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if p.View.State == app.StateLoading {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.WriteHeader(StatusFor(p.View.State))
	_, err := buf.WriteTo(w)
	return err
}

func funcMap(site app.Site) template.FuncMap {
	waText := "Hola, vi su negocio en " + site.Name + " y me gustaría más información."
	return template.FuncMap{
		"path":    site.Path,
		"bizPath": site.BusinessPath,
		"str":     domain.Str,
		"tel": func(p *string) template.URL {
			n := keep(domain.Str(p), func(r rune) bool { return r == '+' || isDigit(r) })
			if n == "" {
				return ""
			}
			return template.URL("tel:" + n)
		},
		"whatsapp": func(p *string) string {
			return whatsAppLink(domain.Str(p), waText)
		},
		"mapURL": func(b *domain.Business) string {
			lat, lng, ok := b.Coords()
			if !ok {
				return ""
			}
			q := strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
			return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(q)
		},
	}
}

// whatsAppLink builds a wa.me link from the digits of number with a
// prefilled message. Returns "" when number has no digits.
func whatsAppLink(number, text string) string {
	digits := keep(number, isDigit)
	if digits == "" {
		return ""
	}
	return "https://wa.me/" + digits + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func keep(s string, f func(rune) bool) string {
	return strings.Map(func(r rune) rune {
		if f(r) {
			return r
		}
		return -1
	}, s)
}
