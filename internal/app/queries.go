package app

import (
	"context"
	"time"

	"globalhub/internal/domain"
)

// CachedDirectory is a read-through cache over the reference data (cities and
// categories). Business reads always go to the backend so approval changes are
// visible immediately. Misses are not cached.
type CachedDirectory struct {
	domain.DirectoryRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewCachedDirectory(r domain.DirectoryRepository, c domain.Cache, ttl time.Duration) *CachedDirectory {
	return &CachedDirectory{DirectoryRepository: r, cache: c, cacheTTL: ttl}
}

func (s *CachedDirectory) FindCityBySlug(ctx context.Context, slug string) (domain.City, error) {
	key := "city:" + slug
	var c domain.City
	if ok, _ := s.cache.Get(ctx, key, &c); ok {
		return c, nil
	}
	c, err := s.DirectoryRepository.FindCityBySlug(ctx, slug)
	if err != nil {
		return domain.City{}, err
	}
	_ = s.cache.Set(ctx, key, c, int(s.cacheTTL.Seconds()))
	return c, nil
}

func (s *CachedDirectory) ListCities(ctx context.Context) ([]domain.City, error) {
	const key = "cities:all"
	var out []domain.City
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	rows, err := s.DirectoryRepository.ListCities(ctx)
	if err != nil {
		return nil, err
	}
	// copy so callers cannot mutate what was cached
	out = append([]domain.City(nil), rows...)
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

func (s *CachedDirectory) FindCategoryBySlug(ctx context.Context, slug string) (domain.Category, error) {
	key := "category:" + slug
	var c domain.Category
	if ok, _ := s.cache.Get(ctx, key, &c); ok {
		return c, nil
	}
	c, err := s.DirectoryRepository.FindCategoryBySlug(ctx, slug)
	if err != nil {
		return domain.Category{}, err
	}
	_ = s.cache.Set(ctx, key, c, int(s.cacheTTL.Seconds()))
	return c, nil
}

func (s *CachedDirectory) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const key = "categories:all"
	var out []domain.Category
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	rows, err := s.DirectoryRepository.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	out = append([]domain.Category(nil), rows...)
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}
