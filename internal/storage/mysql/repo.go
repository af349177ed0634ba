package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"globalhub/internal/domain"
)

func ptrStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func ptrF64(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// Repo implements domain.DirectoryRepository on MySQL. It only reads.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) FindCityBySlug(ctx context.Context, slug string) (domain.City, error) {
	var c domain.City
	err := r.db.QueryRowContext(ctx, findCitySQL, slug).Scan(&c.ID, &c.NameES, &c.Slug)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.City{}, domain.ErrNotFound
	}
	return c, err
}

func (r *Repo) ListCities(ctx context.Context) ([]domain.City, error) {
	rows, err := r.db.QueryContext(ctx, listCitiesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.City
	for rows.Next() {
		var c domain.City
		if err := rows.Scan(&c.ID, &c.NameES, &c.Slug); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) FindCategoryBySlug(ctx context.Context, slug string) (domain.Category, error) {
	var c domain.Category
	err := r.db.QueryRowContext(ctx, findCategorySQL, slug).Scan(&c.ID, &c.NameES, &c.Slug)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Category{}, domain.ErrNotFound
	}
	return c, err
}

func (r *Repo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, listCategoriesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.NameES, &c.Slug); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) ListApprovedBusinesses(ctx context.Context, cityID, categoryID string) ([]domain.BusinessSummary, error) {
	rows, err := r.db.QueryContext(ctx, listApprovedBusinessesSQL, cityID, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BusinessSummary
	for rows.Next() {
		var (
			b                 domain.BusinessSummary
			desc, logo, cover sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &desc, &logo, &cover, &b.IsApproved); err != nil {
			return nil, err
		}
		b.Description, b.LogoURL, b.CoverImageURL = ptrStr(desc), ptrStr(logo), ptrStr(cover)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) FindApprovedBusiness(ctx context.Context, cityID, slug string) (domain.Business, error) {
	var (
		b                                       domain.Business
		desc, logo, cover, phone, wa, web, addr sql.NullString
		lat, lng                                sql.NullFloat64
		cID, cName, cSlug                       sql.NullString
		kID, kName, kSlug                       sql.NullString
		pID, pTitle, pText                      sql.NullString
		pStart, pEnd                            sql.NullTime
		pActive                                 sql.NullBool
	)
	err := r.db.QueryRowContext(ctx, findApprovedBusinessSQL, cityID, slug).Scan(
		&b.ID, &b.Name, &b.Slug, &desc, &logo, &cover,
		&phone, &wa, &web, &addr, &lat, &lng,
		&b.CityID, &b.CategoryID, &b.IsApproved,
		&cID, &cName, &cSlug,
		&kID, &kName, &kSlug,
		&pID, &pTitle, &pText, &pStart, &pEnd, &pActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Business{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Business{}, fmt.Errorf("find business %q: %w", slug, err)
	}

	b.Description, b.LogoURL, b.CoverImageURL = ptrStr(desc), ptrStr(logo), ptrStr(cover)
	b.Phone, b.WhatsApp, b.WebsiteURL, b.Address = ptrStr(phone), ptrStr(wa), ptrStr(web), ptrStr(addr)
	b.Lat, b.Lng = ptrF64(lat), ptrF64(lng)
	if cID.Valid {
		b.City = &domain.City{ID: cID.String, NameES: cName.String, Slug: cSlug.String}
	}
	if kID.Valid {
		b.Category = &domain.Category{ID: kID.String, NameES: kName.String, Slug: kSlug.String}
	}
	if pID.Valid {
		p := &domain.Promotion{ID: pID.String, Title: pTitle.String, Text: ptrStr(pText), IsActive: pActive.Bool}
		if pStart.Valid {
			t := pStart.Time
			p.StartsAt = &t
		}
		if pEnd.Valid {
			t := pEnd.Time
			p.EndsAt = &t
		}
		b.Promotion = p
	}
	return b, nil
}

func (r *Repo) FindApprovedBusinessesBySlug(ctx context.Context, slug string) ([]domain.Business, error) {
	rows, err := r.db.QueryContext(ctx, findApprovedBusinessesBySlugSQL, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Business
	for rows.Next() {
		var (
			b                 domain.Business
			cID, cName, cSlug sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.CityID, &b.CategoryID, &b.IsApproved,
			&cID, &cName, &cSlug); err != nil {
			return nil, err
		}
		if cID.Valid {
			b.City = &domain.City{ID: cID.String, NameES: cName.String, Slug: cSlug.String}
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
