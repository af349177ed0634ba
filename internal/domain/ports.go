package domain

import "context"

// DirectoryRepository is the read-only query contract of the hosted backend.
// Lookups return ErrNotFound (possibly wrapped) on a miss; any other error is a
// backend failure.
type DirectoryRepository interface {
	FindCityBySlug(ctx context.Context, slug string) (City, error)
	ListCities(ctx context.Context) ([]City, error)

	FindCategoryBySlug(ctx context.Context, slug string) (Category, error)
	ListCategories(ctx context.Context) ([]Category, error)

	// Approved only, ordered by name ascending.
	ListApprovedBusinesses(ctx context.Context, cityID, categoryID string) ([]BusinessSummary, error)
	// Approved only, with City, Category and Promotion joined.
	FindApprovedBusiness(ctx context.Context, cityID, slug string) (Business, error)
	// Approved only, across all cities, with City joined.
	FindApprovedBusinessesBySlug(ctx context.Context, slug string) ([]Business, error)
}

// Cache holds JSON-encodable values under string keys with a TTL in seconds.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
}
