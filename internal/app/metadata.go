package app

import (
	"net/url"
	"strings"

	"globalhub/internal/domain"
)

const (
	DefaultSiteName    = "Global Hub"
	defaultDescription = "Directorio de negocios locales en español: ofertas, promociones y contacto."
)

// PageKind selects the page template and its metadata rules.
type PageKind int

const (
	PageHome PageKind = iota
	PageCity
	PageCategory
	PageBusiness
)

func (p PageKind) String() string {
	switch p {
	case PageHome:
		return "home"
	case PageCity:
		return "city"
	case PageCategory:
		return "category"
	case PageBusiness:
		return "business"
	}
	return "unknown"
}

// Site carries the settings every page's metadata is derived from.
type Site struct {
	BaseURL  string // no trailing slash
	Name     string
	Lang     string // path segment, e.g. "es"
	OGLocale string // e.g. "es_MX"
}

func NewSite(baseURL, name string) Site {
	if name == "" {
		name = DefaultSiteName
	}
	return Site{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Name:     name,
		Lang:     "es",
		OGLocale: "es_MX",
	}
}

// Path builds "/{lang}/{seg}/..." with each segment escaped.
func (s Site) Path(segs ...string) string {
	var b strings.Builder
	b.WriteString("/")
	b.WriteString(s.Lang)
	for _, seg := range segs {
		b.WriteString("/")
		b.WriteString(url.PathEscape(seg))
	}
	return b.String()
}

// URL is Path prefixed with the base URL.
func (s Site) URL(segs ...string) string { return s.BaseURL + s.Path(segs...) }

func (s Site) DefaultImage() string { return s.BaseURL + "/og-default.jpg" }

// BusinessPath is the canonical detail path of a business inside a city.
func (s Site) BusinessPath(citySlug, businessSlug string) string {
	return s.Path(citySlug, "negocio", businessSlug)
}

type Metadata struct {
	Title        string
	Description  string
	CanonicalURL string
	Image        string
	ImageWidth   int
	ImageHeight  int
	ImageType    string
	OGType       string
	Locale       string
	TwitterCard  string
	SiteName     string
}

// BuildMetadata derives SEO and social metadata for a page from whatever part
// of the chain is resolved. Missing entities fall back to site defaults.
func BuildMetadata(site Site, page PageKind, chain Chain) Metadata {
	m := Metadata{
		Title:        site.Name,
		Description:  defaultDescription,
		CanonicalURL: site.URL(),
		Image:        site.DefaultImage(),
		ImageWidth:   1200,
		ImageHeight:  630,
		ImageType:    "image/jpeg",
		OGType:       "website",
		Locale:       site.OGLocale,
		TwitterCard:  "summary_large_image",
		SiteName:     site.Name,
	}
	city, cat, biz := chain.City, chain.Category, chain.Business

	switch {
	case page == PageCity && city != nil:
		m.Title = city.NameES + " | " + site.Name
		m.Description = "Explora negocios locales por categoría en " + city.NameES + "."
		m.CanonicalURL = site.URL(city.Slug)

	case page == PageCategory && city != nil && cat != nil:
		m.Title = cat.NameES + " en " + city.NameES + " | " + site.Name
		m.Description = "Explora " + cat.NameES + " en " + city.NameES + ". Ofertas y promociones de negocios locales."
		m.CanonicalURL = site.URL(city.Slug, cat.Slug)

	case page == PageBusiness && city != nil && biz != nil:
		m.Title = biz.Name + " en " + city.NameES + " | " + site.Name
		m.Description = domain.Str(biz.Description)
		if m.Description == "" {
			m.Description = "Descubre " + biz.Name + " en " + city.NameES + ". Promociones, contacto y más."
		}
		m.CanonicalURL = site.BaseURL + site.BusinessPath(city.Slug, biz.Slug)
		if img := domain.Str(biz.CoverImageURL); img != "" {
			m.Image = img
		}

	case city != nil:
		// partially resolved: canonical follows the resolved prefix only
		m.CanonicalURL = site.URL(city.Slug)
	}
	return m
}
