package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"globalhub/internal/domain"
)

// Store implements domain.DirectoryRepository on PostgreSQL (the schema a
// Supabase project exposes). It only reads.
type Store struct{ db *pgxpool.Pool }

func New(db *pgxpool.Pool) *Store { return &Store{db: db} }

func (s *Store) FindCityBySlug(ctx context.Context, slug string) (domain.City, error) {
	var c domain.City
	err := s.db.QueryRow(ctx, `SELECT id::text, name_es, slug FROM city WHERE slug = $1`, slug).
		Scan(&c.ID, &c.NameES, &c.Slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.City{}, domain.ErrNotFound
	}
	return c, err
}

func (s *Store) ListCities(ctx context.Context) ([]domain.City, error) {
	rows, err := s.db.Query(ctx, `SELECT id::text, name_es, slug FROM city ORDER BY name_es ASC`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.City, error) {
		var c domain.City
		err := row.Scan(&c.ID, &c.NameES, &c.Slug)
		return c, err
	})
}

func (s *Store) FindCategoryBySlug(ctx context.Context, slug string) (domain.Category, error) {
	var c domain.Category
	err := s.db.QueryRow(ctx, `SELECT id::text, name_es, slug FROM category WHERE slug = $1`, slug).
		Scan(&c.ID, &c.NameES, &c.Slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Category{}, domain.ErrNotFound
	}
	return c, err
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.Query(ctx, `SELECT id::text, name_es, slug FROM category ORDER BY name_es ASC`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Category, error) {
		var c domain.Category
		err := row.Scan(&c.ID, &c.NameES, &c.Slug)
		return c, err
	})
}

func (s *Store) ListApprovedBusinesses(ctx context.Context, cityID, categoryID string) ([]domain.BusinessSummary, error) {
	query := `
		SELECT id::text, name, slug, description, logo_url, cover_image_url, is_approved
		FROM business
		WHERE city_id = $1::uuid AND category_id = $2::uuid AND is_approved = TRUE
		ORDER BY name ASC
	`
	rows, err := s.db.Query(ctx, query, cityID, categoryID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.BusinessSummary, error) {
		var b domain.BusinessSummary
		err := row.Scan(&b.ID, &b.Name, &b.Slug, &b.Description, &b.LogoURL, &b.CoverImageURL, &b.IsApproved)
		return b, err
	})
}

func (s *Store) FindApprovedBusiness(ctx context.Context, cityID, slug string) (domain.Business, error) {
	query := `
		SELECT
			b.id::text, b.name, b.slug, b.description, b.logo_url, b.cover_image_url,
			b.phone, b.whatsapp, b.website_url, b.address, b.lat, b.lng,
			b.city_id::text, b.category_id::text, b.is_approved,
			c.id::text, c.name_es, c.slug,
			k.id::text, k.name_es, k.slug,
			p.id::text, p.title, p.text, p.starts_at, p.ends_at, p.is_active
		FROM business b
		LEFT JOIN city c ON c.id = b.city_id
		LEFT JOIN category k ON k.id = b.category_id
		LEFT JOIN LATERAL (
			SELECT id, title, text, starts_at, ends_at, is_active
			FROM promotion
			WHERE business_id = b.id
			ORDER BY is_active DESC, starts_at DESC NULLS LAST, id
			LIMIT 1
		) p ON TRUE
		WHERE b.city_id = $1::uuid AND b.slug = $2 AND b.is_approved = TRUE
	`
	var (
		b                  domain.Business
		cID, cName, cSlug  *string
		kID, kName, kSlug  *string
		pID, pTitle, pText *string
		pStart, pEnd       *time.Time
		pActive            *bool
	)
	err := s.db.QueryRow(ctx, query, cityID, slug).Scan(
		&b.ID, &b.Name, &b.Slug, &b.Description, &b.LogoURL, &b.CoverImageURL,
		&b.Phone, &b.WhatsApp, &b.WebsiteURL, &b.Address, &b.Lat, &b.Lng,
		&b.CityID, &b.CategoryID, &b.IsApproved,
		&cID, &cName, &cSlug,
		&kID, &kName, &kSlug,
		&pID, &pTitle, &pText, &pStart, &pEnd, &pActive,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Business{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Business{}, fmt.Errorf("find business %q: %w", slug, err)
	}

	if cID != nil {
		b.City = &domain.City{ID: *cID, NameES: deref(cName), Slug: deref(cSlug)}
	}
	if kID != nil {
		b.Category = &domain.Category{ID: *kID, NameES: deref(kName), Slug: deref(kSlug)}
	}
	if pID != nil {
		b.Promotion = &domain.Promotion{
			ID: *pID, Title: deref(pTitle), Text: pText,
			StartsAt: pStart, EndsAt: pEnd, IsActive: pActive != nil && *pActive,
		}
	}
	return b, nil
}

func (s *Store) FindApprovedBusinessesBySlug(ctx context.Context, slug string) ([]domain.Business, error) {
	query := `
		SELECT b.id::text, b.name, b.slug, b.city_id::text, b.category_id::text, b.is_approved,
		       c.id::text, c.name_es, c.slug
		FROM business b
		LEFT JOIN city c ON c.id = b.city_id
		WHERE b.slug = $1 AND b.is_approved = TRUE
		ORDER BY c.name_es ASC
	`
	rows, err := s.db.Query(ctx, query, slug)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Business, error) {
		var (
			b                 domain.Business
			cID, cName, cSlug *string
		)
		if err := row.Scan(&b.ID, &b.Name, &b.Slug, &b.CityID, &b.CategoryID, &b.IsApproved,
			&cID, &cName, &cSlug); err != nil {
			return domain.Business{}, err
		}
		if cID != nil {
			b.City = &domain.City{ID: *cID, NameES: deref(cName), Slug: deref(cSlug)}
		}
		return b, nil
	})
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
