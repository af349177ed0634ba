package app_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"globalhub/internal/domain"
)

// ---- in-memory backend ----

type fakeRepo struct {
	mu         sync.Mutex
	cities     []domain.City
	categories []domain.Category
	businesses []domain.Business

	// skipApprovalFilter makes listings return unapproved rows, as a broken backend would
	skipApprovalFilter bool
	failOn             map[string]error
	calls              []string
}

var errBackend = errors.New("connection refused")

func (f *fakeRepo) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	return f.failOn[op]
}

func (f *fakeRepo) called(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *fakeRepo) FindCityBySlug(ctx context.Context, slug string) (domain.City, error) {
	if err := f.record("city"); err != nil {
		return domain.City{}, err
	}
	for _, c := range f.cities {
		if c.Slug == slug {
			return c, nil
		}
	}
	return domain.City{}, domain.ErrNotFound
}

func (f *fakeRepo) ListCities(ctx context.Context) ([]domain.City, error) {
	if err := f.record("cities"); err != nil {
		return nil, err
	}
	return append([]domain.City(nil), f.cities...), nil
}

func (f *fakeRepo) FindCategoryBySlug(ctx context.Context, slug string) (domain.Category, error) {
	if err := f.record("category"); err != nil {
		return domain.Category{}, err
	}
	for _, c := range f.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return domain.Category{}, domain.ErrNotFound
}

func (f *fakeRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if err := f.record("categories"); err != nil {
		return nil, err
	}
	return append([]domain.Category(nil), f.categories...), nil
}

func (f *fakeRepo) ListApprovedBusinesses(ctx context.Context, cityID, categoryID string) ([]domain.BusinessSummary, error) {
	if err := f.record("businesses"); err != nil {
		return nil, err
	}
	var out []domain.BusinessSummary
	for _, b := range f.businesses {
		if b.CityID != cityID || b.CategoryID != categoryID {
			continue
		}
		if !b.IsApproved && !f.skipApprovalFilter {
			continue
		}
		out = append(out, domain.BusinessSummary{
			ID: b.ID, Name: b.Name, Slug: b.Slug, Description: b.Description,
			LogoURL: b.LogoURL, CoverImageURL: b.CoverImageURL, IsApproved: b.IsApproved,
		})
	}
	if !f.skipApprovalFilter {
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	}
	return out, nil
}

func (f *fakeRepo) FindApprovedBusiness(ctx context.Context, cityID, slug string) (domain.Business, error) {
	if err := f.record("business"); err != nil {
		return domain.Business{}, err
	}
	for _, b := range f.businesses {
		if b.CityID == cityID && b.Slug == slug && b.IsApproved {
			return f.join(b), nil
		}
	}
	return domain.Business{}, domain.ErrNotFound
}

func (f *fakeRepo) FindApprovedBusinessesBySlug(ctx context.Context, slug string) ([]domain.Business, error) {
	if err := f.record("businessesBySlug"); err != nil {
		return nil, err
	}
	var out []domain.Business
	for _, b := range f.businesses {
		if b.Slug == slug && b.IsApproved {
			out = append(out, f.join(b))
		}
	}
	return out, nil
}

func (f *fakeRepo) join(b domain.Business) domain.Business {
	for i := range f.cities {
		if f.cities[i].ID == b.CityID {
			c := f.cities[i]
			b.City = &c
		}
	}
	for i := range f.categories {
		if f.categories[i].ID == b.CategoryID {
			c := f.categories[i]
			b.Category = &c
		}
	}
	return b
}

// ---- fixtures ----

func seedRepo() *fakeRepo {
	return &fakeRepo{
		cities: []domain.City{
			{ID: "c1", NameES: "Cancún", Slug: "cancun"},
			{ID: "c2", NameES: "Tulum", Slug: "tulum"},
		},
		categories: []domain.Category{
			{ID: "k2", NameES: "Restaurantes", Slug: "restaurantes"},
			{ID: "k1", NameES: "Hoteles", Slug: "hoteles"},
		},
		businesses: []domain.Business{
			{ID: "b2", Name: "B Tacos", Slug: "b-tacos", CityID: "c1", CategoryID: "k2", IsApproved: true},
			{ID: "b1", Name: "A Mariscos", Slug: "a-mariscos", CityID: "c1", CategoryID: "k2", IsApproved: true,
				Description: ptr("Mariscos frescos"), CoverImageURL: ptr("https://cdn.example.com/a.jpg")},
			{ID: "b3", Name: "AA Oculto", Slug: "oculto", CityID: "c1", CategoryID: "k2", IsApproved: false},
			{ID: "b4", Name: "Hotel Sol", Slug: "hotel-sol", CityID: "c2", CategoryID: "k1", IsApproved: true},
			{ID: "b5", Name: "Huérfano", Slug: "huerfano", CityID: "c1", CategoryID: "missing", IsApproved: true},
		},
	}
}

func ptr[T any](v T) *T { return &v }

// leakyRepo returns businesses regardless of approval, as a misconfigured backend would.
type leakyRepo struct{ *fakeRepo }

func (l *leakyRepo) FindApprovedBusiness(ctx context.Context, cityID, slug string) (domain.Business, error) {
	for _, b := range l.businesses {
		if b.CityID == cityID && b.Slug == slug {
			return l.join(b), nil
		}
	}
	return domain.Business{}, domain.ErrNotFound
}
