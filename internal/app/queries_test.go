package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"globalhub/internal/app"
	"globalhub/internal/domain"
)

type fakeCache struct {
	store map[string]any
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.City:
		*d = v.(domain.City)
	case *domain.Category:
		*d = v.(domain.Category)
	case *[]domain.City:
		*d = v.([]domain.City)
	case *[]domain.Category:
		*d = v.([]domain.Category)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func TestCachedDirectory_CityMissThenHit(t *testing.T) {
	repo := seedRepo()
	cache := &fakeCache{}
	d := app.NewCachedDirectory(repo, cache, 10*time.Minute)
	ctx := context.Background()

	c, err := d.FindCityBySlug(ctx, "cancun")
	if err != nil || c.NameES != "Cancún" {
		t.Fatalf("unexpected: %+v %v", c, err)
	}

	// mutate backend to prove the second read is served from cache
	repo.cities[0].NameES = "SHOULD NOT SEE THIS"

	c2, err := d.FindCityBySlug(ctx, "cancun")
	if err != nil || c2.NameES != "Cancún" {
		t.Fatalf("expected cached city, got %+v %v", c2, err)
	}
	if n := repo.called("city"); n != 1 {
		t.Fatalf("expected one backend read, got %d", n)
	}
}

func TestCachedDirectory_MissesAreNotCached(t *testing.T) {
	repo := seedRepo()
	d := app.NewCachedDirectory(repo, &fakeCache{}, time.Minute)
	ctx := context.Background()

	if _, err := d.FindCategoryBySlug(ctx, "spa"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	repo.categories = append(repo.categories, domain.Category{ID: "k3", NameES: "Spa", Slug: "spa"})
	if c, err := d.FindCategoryBySlug(ctx, "spa"); err != nil || c.ID != "k3" {
		t.Fatalf("expected fresh read after miss, got %+v %v", c, err)
	}
}

func TestCachedDirectory_ListCategoriesCopy(t *testing.T) {
	repo := seedRepo()
	d := app.NewCachedDirectory(repo, &fakeCache{}, time.Minute)
	ctx := context.Background()

	first, err := d.ListCategories(ctx)
	if err != nil || len(first) != 2 {
		t.Fatalf("unexpected: %+v %v", first, err)
	}
	repo.categories = nil
	second, _ := d.ListCategories(ctx)
	if len(second) != 2 {
		t.Fatalf("expected cached categories, got %+v", second)
	}
}

func TestCachedDirectory_BusinessesBypassCache(t *testing.T) {
	repo := seedRepo()
	d := app.NewCachedDirectory(repo, &fakeCache{}, time.Minute)
	ctx := context.Background()

	_, _ = d.ListApprovedBusinesses(ctx, "c1", "k2")
	_, _ = d.ListApprovedBusinesses(ctx, "c1", "k2")
	if n := repo.called("businesses"); n != 2 {
		t.Fatalf("business listings must not be cached, got %d reads", n)
	}
}
