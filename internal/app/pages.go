package app

import (
	"context"
	"time"

	"globalhub/internal/domain"
)

// PageData is everything a ready page renders. Only the fields relevant to the
// page kind are populated.
type PageData struct {
	Chain      Chain
	Cities     []domain.City
	Categories []domain.Category
	Businesses []domain.BusinessSummary
	Promotion  *domain.Promotion // set only when currently visible
}

type Page struct {
	Kind PageKind
	View ViewState[PageData]
	Meta Metadata
}

// Directory assembles every page of the site from one resolver, one listing
// assembler and one metadata builder.
type Directory struct {
	resolver *Resolver
	listing  *Listing
	repo     domain.DirectoryRepository
	site     Site
	now      func() time.Time
}

func NewDirectory(r domain.DirectoryRepository, site Site) *Directory {
	return &Directory{
		resolver: NewResolver(r),
		listing:  NewListing(r),
		repo:     r,
		site:     site,
		now:      time.Now,
	}
}

func (d *Directory) Site() Site { return d.site }

// WithClock overrides the clock used to gate promotion windows.
func (d *Directory) WithClock(now func() time.Time) *Directory {
	d.now = now
	return d
}

func (d *Directory) HomePage(ctx context.Context) Page {
	return d.load(ctx, PageHome, nil)
}

func (d *Directory) CityPage(ctx context.Context, citySlug string) Page {
	return d.load(ctx, PageCity, []Segment{City(citySlug)})
}

func (d *Directory) CategoryPage(ctx context.Context, citySlug, categorySlug string) Page {
	return d.load(ctx, PageCategory, []Segment{City(citySlug), Category(categorySlug)})
}

func (d *Directory) BusinessPage(ctx context.Context, citySlug, businessSlug string) Page {
	return d.load(ctx, PageBusiness, []Segment{City(citySlug), Business(businessSlug)})
}

func (d *Directory) load(ctx context.Context, kind PageKind, segs []Segment) Page {
	m := NewMachine[PageData]()
	t := m.Begin(RouteKey(segs))
	if !Ready(segs) {
		return Page{Kind: kind, View: m.Current(), Meta: BuildMetadata(d.site, kind, Chain{})}
	}

	data, err := d.fetch(ctx, kind, segs)
	m.Settle(t, data, err)
	v := m.Current()

	// Failures render no partially resolved data, metadata included.
	meta := BuildMetadata(d.site, kind, Chain{})
	if v.State == StateReady {
		meta = BuildMetadata(d.site, kind, v.Data.Chain)
	}
	return Page{Kind: kind, View: v, Meta: meta}
}

func (d *Directory) fetch(ctx context.Context, kind PageKind, segs []Segment) (PageData, error) {
	var data PageData
	if kind == PageHome {
		cities, err := d.listing.Cities(ctx)
		if err != nil {
			return PageData{}, err
		}
		data.Cities = cities
		return data, nil
	}

	chain, err := d.resolver.Resolve(ctx, segs)
	if err != nil {
		return PageData{}, err
	}
	data.Chain = chain

	switch kind {
	case PageCity:
		data.Categories, err = d.listing.Categories(ctx)
	case PageCategory:
		data.Businesses, err = d.listing.Businesses(ctx, *chain.City, *chain.Category)
	case PageBusiness:
		if p := chain.Business.Promotion; p.VisibleAt(d.now()) {
			data.Promotion = p
		}
	}
	if err != nil {
		return PageData{}, err
	}
	return data, nil
}

// LegacyBusinessURL maps the city-less "/es/business/{slug}" form to the
// canonical detail path. It resolves only when exactly one approved business
// carries the slug.
func (d *Directory) LegacyBusinessURL(ctx context.Context, slug string) (string, error) {
	if slug == "" {
		return "", ErrNotReady
	}
	rows, err := d.repo.FindApprovedBusinessesBySlug(ctx, slug)
	if err != nil {
		return "", &BackendError{Kind: KindBusiness, Err: err}
	}
	var match *domain.Business
	n := 0
	for i := range rows {
		b := &rows[i]
		if !b.IsApproved || b.City == nil || b.City.ID != b.CityID {
			continue
		}
		match = b
		n++
	}
	if n != 1 {
		return "", &NotFoundError{Kind: KindBusiness, Slug: slug}
	}
	return d.site.BusinessPath(match.City.Slug, match.Slug), nil
}

// FailedPage runs err through the view state machine without a backend read,
// for routes that fail before a page load starts.
func (d *Directory) FailedPage(kind PageKind, key string, err error) Page {
	m := NewMachine[PageData]()
	m.Settle(m.Begin(key), PageData{}, err)
	return Page{Kind: kind, View: m.Current(), Meta: BuildMetadata(d.site, kind, Chain{})}
}
