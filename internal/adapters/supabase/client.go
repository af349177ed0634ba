// internal/adapters/supabase/client.go
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"globalhub/internal/adapters/observability"
	"globalhub/internal/domain"
)

// Client reads the directory tables through Supabase's PostgREST endpoint.
// Reads are not retried; a failed request surfaces immediately.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if rps <= 0 {
		rps = 10
	}
	return &Client{
		base: strings.TrimRight(base, "/") + "/rest/v1",
		hc:   &http.Client{Timeout: 10 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

const (
	citySelect     = "id,name_es,slug"
	categorySelect = "id,name_es,slug"
	summarySelect  = "id,name,slug,description,logo_url,cover_image_url,is_approved"
	detailSelect   = "id,name,slug,description,logo_url,cover_image_url,phone,whatsapp,website_url,address,lat,lng," +
		"city_id,category_id,is_approved," +
		"city:city_id(id,slug,name_es)," +
		"category:category_id(id,slug,name_es)," +
		"promotion(id,title,text,starts_at,ends_at,is_active)"
	bySlugSelect = "id,name,slug,city_id,category_id,is_approved,city:city_id(id,slug,name_es)"
)

// ---- domain.DirectoryRepository ----

func (c *Client) FindCityBySlug(ctx context.Context, slug string) (domain.City, error) {
	q := url.Values{"select": {citySelect}, "slug": {eq(slug)}, "limit": {"1"}}
	var rows []domain.City
	if err := c.get(ctx, "city", q, &rows); err != nil {
		return domain.City{}, err
	}
	if len(rows) == 0 {
		return domain.City{}, domain.ErrNotFound
	}
	return rows[0], nil
}

func (c *Client) ListCities(ctx context.Context) ([]domain.City, error) {
	q := url.Values{"select": {citySelect}, "order": {"name_es.asc"}}
	var rows []domain.City
	if err := c.get(ctx, "city", q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) FindCategoryBySlug(ctx context.Context, slug string) (domain.Category, error) {
	q := url.Values{"select": {categorySelect}, "slug": {eq(slug)}, "limit": {"1"}}
	var rows []domain.Category
	if err := c.get(ctx, "category", q, &rows); err != nil {
		return domain.Category{}, err
	}
	if len(rows) == 0 {
		return domain.Category{}, domain.ErrNotFound
	}
	return rows[0], nil
}

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	q := url.Values{"select": {categorySelect}, "order": {"name_es.asc"}}
	var rows []domain.Category
	if err := c.get(ctx, "category", q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) ListApprovedBusinesses(ctx context.Context, cityID, categoryID string) ([]domain.BusinessSummary, error) {
	q := url.Values{
		"select":      {summarySelect},
		"city_id":     {eq(cityID)},
		"category_id": {eq(categoryID)},
		"is_approved": {"eq.true"},
		"order":       {"name.asc"},
	}
	var rows []domain.BusinessSummary
	if err := c.get(ctx, "business", q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) FindApprovedBusiness(ctx context.Context, cityID, slug string) (domain.Business, error) {
	q := url.Values{
		"select":      {detailSelect},
		"city_id":     {eq(cityID)},
		"slug":        {eq(slug)},
		"is_approved": {"eq.true"},
		"limit":       {"1"},
	}
	var rows []businessRow
	if err := c.get(ctx, "business", q, &rows); err != nil {
		return domain.Business{}, err
	}
	if len(rows) == 0 {
		return domain.Business{}, domain.ErrNotFound
	}
	return rows[0].toDomain()
}

func (c *Client) FindApprovedBusinessesBySlug(ctx context.Context, slug string) ([]domain.Business, error) {
	q := url.Values{
		"select":      {bySlugSelect},
		"slug":        {eq(slug)},
		"is_approved": {"eq.true"},
	}
	var rows []domain.Business
	if err := c.get(ctx, "business", q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// businessRow accepts the promotion embed either as an object (to-one) or as an
// array (to-many), depending on how the relation is declared.
type businessRow struct {
	domain.Business
	Promotion json.RawMessage `json:"promotion"`
}

func (r businessRow) toDomain() (domain.Business, error) {
	b := r.Business
	raw := bytes.TrimSpace(r.Promotion)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '[':
		var ps []domain.Promotion
		if err := json.Unmarshal(raw, &ps); err != nil {
			return domain.Business{}, fmt.Errorf("decode promotion list: %w", err)
		}
		for i := range ps {
			if ps[i].IsActive {
				b.Promotion = &ps[i]
				break
			}
		}
		if b.Promotion == nil && len(ps) > 0 {
			b.Promotion = &ps[0]
		}
	default:
		var p domain.Promotion
		if err := json.Unmarshal(raw, &p); err != nil {
			return domain.Business{}, fmt.Errorf("decode promotion: %w", err)
		}
		b.Promotion = &p
	}
	return b, nil
}

// ---- Internals ----

var (
	ErrUnauthorized = errors.New("supabase: unauthorized")
	ErrForbidden    = errors.New("supabase: forbidden")
)

func eq(v string) string { return "eq." + v }

// get performs one rate-limited GET against a table and decodes the JSON array into out.
func (c *Client) get(ctx context.Context, table string, q url.Values, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	u := c.base + "/" + table + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "globalhub/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("supabase", table, 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("supabase", table, resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK, http.StatusPartialContent:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s: %w", table, err)
		}
		return nil
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	default:
		// read a small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("supabase %s: bad status %d: %s", table, resp.StatusCode, strings.TrimSpace(string(b)))
	}
}
