package app

import (
	"context"
	"sort"

	"globalhub/internal/domain"
)

type Listing struct{ repo domain.DirectoryRepository }

func NewListing(r domain.DirectoryRepository) *Listing { return &Listing{repo: r} }

// Businesses returns the approved businesses of a city and category, ordered by
// name. An empty result is a success. Rows a backend returns without the
// approval flag are dropped here as well.
func (l *Listing) Businesses(ctx context.Context, city domain.City, cat domain.Category) ([]domain.BusinessSummary, error) {
	rows, err := l.repo.ListApprovedBusinesses(ctx, city.ID, cat.ID)
	if err != nil {
		return nil, &BackendError{Kind: KindBusiness, Err: err}
	}
	out := make([]domain.BusinessSummary, 0, len(rows))
	for _, b := range rows {
		if b.IsApproved {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (l *Listing) Categories(ctx context.Context) ([]domain.Category, error) {
	rows, err := l.repo.ListCategories(ctx)
	if err != nil {
		return nil, &BackendError{Kind: KindCategory, Err: err}
	}
	out := append(make([]domain.Category, 0, len(rows)), rows...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].NameES < out[j].NameES })
	return out, nil
}

func (l *Listing) Cities(ctx context.Context) ([]domain.City, error) {
	rows, err := l.repo.ListCities(ctx)
	if err != nil {
		return nil, &BackendError{Kind: KindCity, Err: err}
	}
	out := append(make([]domain.City, 0, len(rows)), rows...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].NameES < out[j].NameES })
	return out, nil
}
