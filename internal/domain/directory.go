package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned by stores when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type City struct {
	ID     string `json:"id"`
	NameES string `json:"name_es"`
	Slug   string `json:"slug"`
}

// Category is global; it is not scoped to a city.
type Category struct {
	ID     string `json:"id"`
	NameES string `json:"name_es"`
	Slug   string `json:"slug"`
}

// Business slugs are unique per (city_id, slug), not globally.
type Business struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	Description   *string    `json:"description"`
	LogoURL       *string    `json:"logo_url"`
	CoverImageURL *string    `json:"cover_image_url"`
	Phone         *string    `json:"phone"`
	WhatsApp      *string    `json:"whatsapp"`
	WebsiteURL    *string    `json:"website_url"`
	Address       *string    `json:"address"`
	Lat           *float64   `json:"lat"`
	Lng           *float64   `json:"lng"`
	CityID        string     `json:"city_id"`
	CategoryID    string     `json:"category_id"`
	IsApproved    bool       `json:"is_approved"`
	City          *City      `json:"city,omitempty"`
	Category      *Category  `json:"category,omitempty"`
	Promotion     *Promotion `json:"promotion,omitempty"`
}

// BusinessSummary is the listing projection of a Business.
type BusinessSummary struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Slug          string  `json:"slug"`
	Description   *string `json:"description"`
	LogoURL       *string `json:"logo_url"`
	CoverImageURL *string `json:"cover_image_url"`
	IsApproved    bool    `json:"is_approved"`
}

type Promotion struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Text     *string    `json:"text"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
	IsActive bool       `json:"is_active"`
}

// VisibleAt reports whether the promotion should be shown at t. The active flag
// gates it independently of the owning business; a window bound that is nil is open.
func (p *Promotion) VisibleAt(t time.Time) bool {
	if p == nil || !p.IsActive {
		return false
	}
	if p.StartsAt != nil && t.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && t.After(*p.EndsAt) {
		return false
	}
	return true
}

// Coords returns the business coordinates when both are set.
func (b Business) Coords() (lat, lng float64, ok bool) {
	if b.Lat == nil || b.Lng == nil {
		return 0, 0, false
	}
	return *b.Lat, *b.Lng, true
}

// Str dereferences an optional text field, treating blanks as absent.
func Str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
