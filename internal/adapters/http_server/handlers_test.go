package httpserver_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpserver "globalhub/internal/adapters/http_server"
	"globalhub/internal/app"
	"globalhub/internal/domain"
)

// ---- in-memory backend ----

type memRepo struct {
	cities     []domain.City
	categories []domain.Category
	businesses []domain.Business
	fail       error
}

func (m *memRepo) FindCityBySlug(_ context.Context, slug string) (domain.City, error) {
	if m.fail != nil {
		return domain.City{}, m.fail
	}
	for _, c := range m.cities {
		if c.Slug == slug {
			return c, nil
		}
	}
	return domain.City{}, domain.ErrNotFound
}

func (m *memRepo) ListCities(context.Context) ([]domain.City, error) { return m.cities, m.fail }

func (m *memRepo) FindCategoryBySlug(_ context.Context, slug string) (domain.Category, error) {
	for _, c := range m.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return domain.Category{}, domain.ErrNotFound
}

func (m *memRepo) ListCategories(context.Context) ([]domain.Category, error) {
	return m.categories, nil
}

func (m *memRepo) ListApprovedBusinesses(_ context.Context, cityID, categoryID string) ([]domain.BusinessSummary, error) {
	var out []domain.BusinessSummary
	for _, b := range m.businesses {
		if b.CityID == cityID && b.CategoryID == categoryID && b.IsApproved {
			out = append(out, domain.BusinessSummary{ID: b.ID, Name: b.Name, Slug: b.Slug, Description: b.Description, LogoURL: b.LogoURL, IsApproved: true})
		}
	}
	return out, nil
}

func (m *memRepo) FindApprovedBusiness(_ context.Context, cityID, slug string) (domain.Business, error) {
	for _, b := range m.businesses {
		if b.CityID == cityID && b.Slug == slug && b.IsApproved {
			return m.join(b), nil
		}
	}
	return domain.Business{}, domain.ErrNotFound
}

func (m *memRepo) FindApprovedBusinessesBySlug(_ context.Context, slug string) ([]domain.Business, error) {
	var out []domain.Business
	for _, b := range m.businesses {
		if b.Slug == slug && b.IsApproved {
			out = append(out, m.join(b))
		}
	}
	return out, nil
}

func (m *memRepo) join(b domain.Business) domain.Business {
	for i := range m.cities {
		if m.cities[i].ID == b.CityID {
			b.City = &m.cities[i]
		}
	}
	for i := range m.categories {
		if m.categories[i].ID == b.CategoryID {
			b.Category = &m.categories[i]
		}
	}
	return b
}

func ptr[T any](v T) *T { return &v }

func seed() *memRepo {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &memRepo{
		cities: []domain.City{
			{ID: "c1", NameES: "Cancún", Slug: "cancun"},
			{ID: "c2", NameES: "Tulum", Slug: "tulum"},
		},
		categories: []domain.Category{
			{ID: "k1", NameES: "Restaurantes", Slug: "restaurantes"},
			{ID: "k2", NameES: "Hoteles", Slug: "hoteles"},
		},
		businesses: []domain.Business{
			{ID: "b2", Name: "B Tacos", Slug: "b-tacos", CityID: "c1", CategoryID: "k1", IsApproved: true},
			{ID: "b1", Name: "A Mariscos", Slug: "a-mariscos", CityID: "c1", CategoryID: "k1", IsApproved: true,
				Description:   ptr("Mariscos frescos"),
				CoverImageURL: ptr("https://cdn.example.com/a.jpg"),
				Phone:         ptr("+52 998 123 4567"),
				WhatsApp:      ptr("+52 1 998 123-4567"),
				Lat:           ptr(21.16), Lng: ptr(-86.85),
				Promotion: &domain.Promotion{ID: "p1", Title: "2x1 en tacos", IsActive: true, StartsAt: &start}},
			{ID: "b3", Name: "Oculto", Slug: "oculto", CityID: "c1", CategoryID: "k1", IsApproved: false},
			{ID: "b4", Name: "Sol Tulum", Slug: "sol", CityID: "c2", CategoryID: "k2", IsApproved: true},
			{ID: "b5", Name: "Sol Cancún", Slug: "sol", CityID: "c1", CategoryID: "k2", IsApproved: true},
			{ID: "b6", Name: "Único", Slug: "unico", CityID: "c2", CategoryID: "k1", IsApproved: true},
		},
	}
}

func newServer(t *testing.T, repo domain.DirectoryRepository) *httptest.Server {
	t.Helper()
	site := app.NewSite("https://globalhub.example/", "Global Hub")
	dir := app.NewDirectory(repo, site).WithClock(func() time.Time {
		return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	})
	rnd, err := httpserver.NewRenderer(site)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	srv := httpserver.New(5 * time.Second)
	srv.MountHandlers(&httpserver.Handlers{Dir: dir, Render: rnd, SitemapWorkers: 2})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

// noRedirect keeps 301 responses visible to the test.
var noRedirect = &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, string) {
	t.Helper()
	res, err := noRedirect.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, string(b)
}

func mustContain(t *testing.T, body string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(body, p) {
			t.Errorf("body missing %q", p)
		}
	}
}

func TestHealthz(t *testing.T) {
	ts := newServer(t, seed())
	res, body := get(t, ts, "/healthz")
	if res.StatusCode != http.StatusOK || body != "ok" {
		t.Fatalf("healthz: %d %q", res.StatusCode, body)
	}
}

func TestHomePage_ListsCities(t *testing.T) {
	ts := newServer(t, seed())
	for _, p := range []string{"/", "/es", "/es/"} {
		res, body := get(t, ts, p)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("%s: status %d", p, res.StatusCode)
		}
		mustContain(t, body,
			"<title>Global Hub</title>",
			`<link rel="canonical" href="https://globalhub.example/es">`,
			`href="/es/cancun"`, "Tulum")
	}
}

func TestCityPage_ListsCategories(t *testing.T) {
	ts := newServer(t, seed())
	res, body := get(t, ts, "/es/cancun")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	mustContain(t, body,
		"<title>Cancún | Global Hub</title>",
		`href="/es/cancun/restaurantes"`,
		"Ver negocios")
}

func TestCategoryPage_SortedApprovedOnly(t *testing.T) {
	ts := newServer(t, seed())
	res, body := get(t, ts, "/es/cancun/restaurantes")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	mustContain(t, body,
		"<title>Restaurantes en Cancún | Global Hub</title>",
		`<meta property="og:locale" content="es_MX">`,
		`<meta name="twitter:card" content="summary_large_image">`,
		`<meta property="og:image" content="https://globalhub.example/og-default.jpg">`,
		"Negocios aprobados en esta categoría",
		`href="/es/cancun/negocio/a-mariscos"`)
	if strings.Contains(body, "Oculto") {
		t.Fatal("unapproved business rendered")
	}
	a, b := strings.Index(body, "A Mariscos"), strings.Index(body, "B Tacos")
	if a < 0 || b < 0 || a > b {
		t.Fatalf("listing not sorted by name: A at %d, B at %d", a, b)
	}
}

func TestCategoryPage_Empty(t *testing.T) {
	ts := newServer(t, seed())
	res, body := get(t, ts, "/es/tulum/restaurantes")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	mustContain(t, body, "Único")

	res, body = get(t, ts, "/es/cancun/hoteles")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	mustContain(t, body, "Sol Cancún")

	empty := seed()
	empty.businesses = nil
	ts = newServer(t, empty)
	res, body = get(t, ts, "/es/cancun/restaurantes")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	mustContain(t, body, "No hay negocios todavía.")
}

func TestNotFound_NamesFailingSegment(t *testing.T) {
	ts := newServer(t, seed())
	cases := map[string]string{
		"/es/merida":                   "Ciudad no encontrada",
		"/es/merida/restaurantes":      "Ciudad no encontrada",
		"/es/cancun/spa":               "Categoría no encontrada",
		"/es/cancun/negocio/no-existe": "Negocio no encontrado",
		"/es/cancun/negocio/oculto":    "Negocio no encontrado",
		"/es/tulum/negocio/a-mariscos": "Negocio no encontrado",
	}
	for path, msg := range cases {
		res, body := get(t, ts, path)
		if res.StatusCode != http.StatusNotFound {
			t.Errorf("%s: status %d, want 404", path, res.StatusCode)
		}
		mustContain(t, body, msg, "<title>Global Hub</title>")
	}
}

func TestEmptySegment_IsNotFound(t *testing.T) {
	ts := newServer(t, seed())
	cases := map[string]string{
		"/es//restaurantes":       "Ciudad no encontrada",
		"/es//negocio/a-mariscos": "Ciudad no encontrada",
		"/es//biz/a-mariscos":     "Ciudad no encontrada",
	}
	for path, msg := range cases {
		res, body := get(t, ts, path)
		if res.StatusCode != http.StatusNotFound {
			t.Errorf("%s: status %d, want 404", path, res.StatusCode)
		}
		if strings.Contains(body, "Cargando") {
			t.Errorf("%s: rendered the loading skeleton", path)
		}
		mustContain(t, body, msg)
	}
}

func TestBackendFailure_RendersErrorWithDefaults(t *testing.T) {
	repo := seed()
	repo.fail = errors.New("connection refused")
	ts := newServer(t, repo)

	res, body := get(t, ts, "/es/cancun/restaurantes")
	if res.StatusCode != http.StatusBadGateway {
		t.Fatalf("status %d, want 502", res.StatusCode)
	}
	mustContain(t, body, "Error al cargar datos", "<title>Global Hub</title>")
	if strings.Contains(body, "Cancún") || strings.Contains(body, "connection refused") {
		t.Fatal("error page leaked resolved data or backend detail")
	}
}

func TestBusinessPage_DetailAndContacts(t *testing.T) {
	ts := newServer(t, seed())
	res, body := get(t, ts, "/es/cancun/negocio/a-mariscos")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	mustContain(t, body,
		"<title>A Mariscos en Cancún | Global Hub</title>",
		`<meta name="description" content="Mariscos frescos">`,
		`<link rel="canonical" href="https://globalhub.example/es/cancun/negocio/a-mariscos">`,
		`<meta property="og:image" content="https://cdn.example.com/a.jpg">`,
		"Restaurantes · Cancún",
		"<strong>Promoción:</strong> 2x1 en tacos",
		`href="tel:&#43;529981234567"`,
		`href="https://wa.me/5219981234567?text=Hola%2C%20vi%20su%20negocio%20en%20Global%20Hub`,
		"https://www.google.com/maps/search/?api=1&amp;query=21.16%2C-86.85",
		`href="/es/cancun/restaurantes"`)
}

func TestBusinessPage_NoContactsNoPromotion(t *testing.T) {
	ts := newServer(t, seed())
	_, body := get(t, ts, "/es/cancun/negocio/b-tacos")
	mustContain(t, body, "Descubre B Tacos en Cancún. Promociones, contacto y más.")
	for _, s := range []string{"Promoción:", "wa.me", "tel:", "Contacto:"} {
		if strings.Contains(body, s) {
			t.Errorf("unexpected %q in page", s)
		}
	}
}

func TestLegacyCityRoute_Redirects(t *testing.T) {
	ts := newServer(t, seed())
	res, _ := get(t, ts, "/es/cancun/biz/a-mariscos")
	if res.StatusCode != http.StatusMovedPermanently {
		t.Fatalf("status %d", res.StatusCode)
	}
	if loc := res.Header.Get("Location"); loc != "/es/cancun/negocio/a-mariscos" {
		t.Fatalf("Location %q", loc)
	}
}

func TestLegacyBusinessRoute(t *testing.T) {
	ts := newServer(t, seed())

	res, _ := get(t, ts, "/es/business/unico")
	if res.StatusCode != http.StatusMovedPermanently || res.Header.Get("Location") != "/es/tulum/negocio/unico" {
		t.Fatalf("unique slug: %d %q", res.StatusCode, res.Header.Get("Location"))
	}

	// "sol" exists in two cities, so it is ambiguous
	res, body := get(t, ts, "/es/business/sol")
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("ambiguous slug: status %d", res.StatusCode)
	}
	mustContain(t, body, "Negocio no encontrado")
}

func TestSitemap(t *testing.T) {
	ts := newServer(t, seed())
	res, body := get(t, ts, "/sitemap.xml")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Fatalf("content type %q", ct)
	}
	mustContain(t, body,
		`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`,
		"<loc>https://globalhub.example/es</loc>",
		"<loc>https://globalhub.example/es/cancun/restaurantes</loc>",
		"<loc>https://globalhub.example/es/tulum/negocio/unico</loc>")
	if strings.Contains(body, "oculto") {
		t.Fatal("unapproved business in sitemap")
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[app.State]int{
		app.StateLoading:  http.StatusOK,
		app.StateReady:    http.StatusOK,
		app.StateNotFound: http.StatusNotFound,
		app.StateError:    http.StatusBadGateway,
	}
	for s, want := range cases {
		if got := httpserver.StatusFor(s); got != want {
			t.Errorf("%s: %d, want %d", s, got, want)
		}
	}
}
