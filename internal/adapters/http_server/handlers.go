package httpserver

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"globalhub/internal/adapters/observability"
	"globalhub/internal/app"
)

type Handlers struct {
	Dir            *app.Directory
	Render         *Renderer
	SitemapWorkers int
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/sitemap.xml", h.sitemap)

	s.mux.Get("/", h.home)
	s.mux.Route("/es", func(r chi.Router) {
		r.Get("/", h.home)
		// static segments win over {city} in chi, so these must stay ahead of the city routes
		r.Get("/business/{slug}", h.legacyBusiness)
		r.Get("/{city}", h.city)
		r.Get("/{city}/{category}", h.category)
		r.Get("/{city}/negocio/{slug}", h.business)
		r.Get("/{city}/biz/{slug}", h.legacyCityBusiness)
	})
}

func (h *Handlers) home(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, h.Dir.HomePage(r.Context()))
}

func (h *Handlers) city(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")
	if h.missingSegment(w, r, app.PageCity, app.City(city)) {
		return
	}
	h.write(w, r, h.Dir.CityPage(r.Context(), city))
}

func (h *Handlers) category(w http.ResponseWriter, r *http.Request) {
	city, cat := chi.URLParam(r, "city"), chi.URLParam(r, "category")
	if h.missingSegment(w, r, app.PageCategory, app.City(city), app.Category(cat)) {
		return
	}
	h.write(w, r, h.Dir.CategoryPage(r.Context(), city, cat))
}

func (h *Handlers) business(w http.ResponseWriter, r *http.Request) {
	city, slug := chi.URLParam(r, "city"), chi.URLParam(r, "slug")
	if h.missingSegment(w, r, app.PageBusiness, app.City(city), app.Business(slug)) {
		return
	}
	h.write(w, r, h.Dir.BusinessPage(r.Context(), city, slug))
}

func (h *Handlers) legacyCityBusiness(w http.ResponseWriter, r *http.Request) {
	city, slug := chi.URLParam(r, "city"), chi.URLParam(r, "slug")
	if h.missingSegment(w, r, app.PageBusiness, app.City(city), app.Business(slug)) {
		return
	}
	http.Redirect(w, r, h.Dir.Site().BusinessPath(city, slug), http.StatusMovedPermanently)
}

func (h *Handlers) legacyBusiness(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if h.missingSegment(w, r, app.PageBusiness, app.Business(slug)) {
		return
	}
	to, err := h.Dir.LegacyBusinessURL(r.Context(), slug)
	if err == nil {
		http.Redirect(w, r, to, http.StatusMovedPermanently)
		return
	}
	if app.IsNotFound(err) {
		log.Debug().Str("slug", slug).Msg("legacy business slug missing or ambiguous")
	}
	h.write(w, r, h.Dir.FailedPage(app.PageBusiness, "business/"+slug, err))
}

// missingSegment renders not_found for the first empty slug in segs. The
// request is complete by the time it gets here, so the slug will never arrive
// and the page must not stay in loading.
func (h *Handlers) missingSegment(w http.ResponseWriter, r *http.Request, kind app.PageKind, segs ...app.Segment) bool {
	for _, s := range segs {
		if s.Slug == "" {
			h.write(w, r, h.Dir.FailedPage(kind, app.RouteKey(segs), &app.NotFoundError{Kind: s.Kind}))
			return true
		}
	}
	return false
}

func (h *Handlers) sitemap(w http.ResponseWriter, r *http.Request) {
	urls, err := h.Dir.SitemapURLs(r.Context(), h.SitemapWorkers)
	if err != nil {
		log.Error().Err(err).Msg("sitemap build failed")
		http.Error(w, "sitemap unavailable", http.StatusBadGateway)
		return
	}
	var buf bytes.Buffer
	if err := app.WriteSitemap(&buf, urls); err != nil {
		log.Error().Err(err).Msg("sitemap encode failed")
		http.Error(w, "sitemap unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		log.Error().Err(err).Msg("failed to write sitemap body")
	}
}

func (h *Handlers) write(w http.ResponseWriter, r *http.Request, p app.Page) {
	observability.ObservePage(p.Kind.String(), p.View.State.String())

	switch p.View.State {
	case app.StateError:
		var be *app.BackendError
		ev := log.Error().Err(p.View.Err).Str("page", p.Kind.String()).Str("path", r.URL.Path)
		if errors.As(p.View.Err, &be) {
			ev = ev.Str("segment", be.Kind.String())
		}
		ev.Msg("page load failed")
	case app.StateNotFound:
		log.Debug().Str("page", p.Kind.String()).Str("segment", p.View.Missing.String()).Str("path", r.URL.Path).Msg("page not found")
	}

	if err := h.Render.Render(w, p); err != nil {
		log.Error().Err(err).Str("page", p.Kind.String()).Msg("render failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
