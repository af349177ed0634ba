package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"globalhub/internal/domain"
)

// Kind is the entity type a path segment names.
type Kind int

const (
	KindCity Kind = iota + 1
	KindCategory
	KindBusiness
)

func (k Kind) String() string {
	switch k {
	case KindCity:
		return "city"
	case KindCategory:
		return "category"
	case KindBusiness:
		return "business"
	}
	return "unknown"
}

// Segment is one (kind, slug) step of a hierarchical path.
type Segment struct {
	Kind Kind
	Slug string
}

// City is a city segment.
func City(slug string) Segment { return Segment{Kind: KindCity, Slug: slug} }

// Category is a category segment.
func Category(slug string) Segment { return Segment{Kind: KindCategory, Slug: slug} }

// Business is a business segment, resolved inside the preceding city.
func Business(slug string) Segment { return Segment{Kind: KindBusiness, Slug: slug} }

// RouteKey identifies a path; two requests for the same key ask for the same view.
func RouteKey(segs []Segment) string {
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		parts = append(parts, s.Kind.String()+":"+s.Slug)
	}
	return strings.Join(parts, "/")
}

// Ready reports whether every slug is present.
func Ready(segs []Segment) bool {
	for _, s := range segs {
		if s.Slug == "" {
			return false
		}
	}
	return true
}

// Entity is the common projection of a resolved segment.
type Entity struct {
	Kind Kind
	ID   string
	Name string
	Slug string
}

// Chain holds the entities resolved so far. Any pointer may be nil while
// resolution is incomplete.
type Chain struct {
	Entities []Entity
	City     *domain.City
	Category *domain.Category
	Business *domain.Business
}

type Resolver struct{ repo domain.DirectoryRepository }

func NewResolver(r domain.DirectoryRepository) *Resolver { return &Resolver{repo: r} }

// Resolve walks segs in order, one backend read per segment, and stops at the
// first segment with no match. Business segments are looked up inside the city
// resolved before them.
func (r *Resolver) Resolve(ctx context.Context, segs []Segment) (Chain, error) {
	if !Ready(segs) {
		return Chain{}, ErrNotReady
	}
	chain := Chain{Entities: make([]Entity, 0, len(segs))}
	for _, seg := range segs {
		var err error
		switch seg.Kind {
		case KindCity:
			err = r.city(ctx, seg.Slug, &chain)
		case KindCategory:
			err = r.category(ctx, seg.Slug, &chain)
		case KindBusiness:
			err = r.business(ctx, seg.Slug, &chain)
		default:
			err = fmt.Errorf("unsupported segment kind %d", seg.Kind)
		}
		if err != nil {
			return Chain{}, err
		}
	}
	return chain, nil
}

func (r *Resolver) city(ctx context.Context, slug string, chain *Chain) error {
	c, err := r.repo.FindCityBySlug(ctx, slug)
	if err != nil {
		return classify(KindCity, slug, err)
	}
	chain.City = &c
	chain.Entities = append(chain.Entities, Entity{Kind: KindCity, ID: c.ID, Name: c.NameES, Slug: c.Slug})
	return nil
}

func (r *Resolver) category(ctx context.Context, slug string, chain *Chain) error {
	c, err := r.repo.FindCategoryBySlug(ctx, slug)
	if err != nil {
		return classify(KindCategory, slug, err)
	}
	chain.Category = &c
	chain.Entities = append(chain.Entities, Entity{Kind: KindCategory, ID: c.ID, Name: c.NameES, Slug: c.Slug})
	return nil
}

func (r *Resolver) business(ctx context.Context, slug string, chain *Chain) error {
	if chain.City == nil {
		return errors.New("business segment requires a resolved city")
	}
	b, err := r.repo.FindApprovedBusiness(ctx, chain.City.ID, slug)
	if err != nil {
		return classify(KindBusiness, slug, err)
	}
	// Unapproved rows and dangling city/category references are
	// indistinguishable from a missing slug.
	if !b.IsApproved || b.CityID != chain.City.ID || b.City == nil || b.Category == nil ||
		b.City.ID != b.CityID || b.Category.ID != b.CategoryID {
		return &NotFoundError{Kind: KindBusiness, Slug: slug}
	}
	if chain.Category == nil {
		chain.Category = b.Category
	}
	chain.Business = &b
	chain.Entities = append(chain.Entities, Entity{Kind: KindBusiness, ID: b.ID, Name: b.Name, Slug: b.Slug})
	return nil
}

func classify(k Kind, slug string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return &NotFoundError{Kind: k, Slug: slug}
	}
	return &BackendError{Kind: k, Err: err}
}
