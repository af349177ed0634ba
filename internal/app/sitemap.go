package app

import (
	"context"
	"encoding/xml"
	"io"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"globalhub/internal/domain"
)

// SitemapURLs lists every indexable URL: home, cities, city/category listings
// and approved business pages. Listings are fetched with at most workers reads
// in flight. A failed listing read drops only that city/category pair; failing
// to read cities or categories fails the whole sitemap.
func (d *Directory) SitemapURLs(ctx context.Context, workers int) ([]string, error) {
	if workers <= 0 {
		workers = 4
	}
	cities, err := d.listing.Cities(ctx)
	if err != nil {
		return nil, err
	}
	cats, err := d.listing.Categories(ctx)
	if err != nil {
		return nil, err
	}

	urls := []string{d.site.URL()}
	for _, c := range cities {
		urls = append(urls, d.site.URL(c.Slug))
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	sem := semaphore.NewWeighted(int64(workers))

	for _, city := range cities {
		for _, cat := range cats {
			if err := sem.Acquire(ctx, 1); err != nil {
				wg.Wait()
				return nil, err
			}
			wg.Add(1)
			go func(city domain.City, cat domain.Category) {
				defer wg.Done()
				defer sem.Release(1)

				biz, err := d.listing.Businesses(ctx, city, cat)
				if err != nil {
					log.Warn().Str("city", city.Slug).Str("category", cat.Slug).Err(err).Msg("sitemap listing skipped")
					return
				}
				mu.Lock()
				defer mu.Unlock()
				urls = append(urls, d.site.URL(city.Slug, cat.Slug))
				for _, b := range biz {
					urls = append(urls, d.site.BaseURL+d.site.BusinessPath(city.Slug, b.Slug))
				}
			}(city, cat)
		}
	}
	wg.Wait()
	sort.Strings(urls)
	return urls, nil
}

type urlset struct {
	XMLName xml.Name   `xml:"urlset"`
	NS      string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc string `xml:"loc"`
}

// WriteSitemap encodes urls in the sitemaps.org 0.9 format.
func WriteSitemap(w io.Writer, urls []string) error {
	set := urlset{NS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, u := range urls {
		set.URLs = append(set.URLs, urlEntry{Loc: u})
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(set)
}
