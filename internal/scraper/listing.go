// Package scraper fetches listing pages and project detail pages from the
// marketplace. Listings go through a plain colly collector; detail pages
// need a headless browser because the metadata panel is rendered
// client-side.
package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/alshabili/first-backend/internal/jobs"
)

const (
	defaultBaseURL   = "https://mostaql.com"
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	defaultLimit     = 10
)

// ListingConfig configures the listing scraper.
type ListingConfig struct {
	// BaseURL is the marketplace origin, without a trailing slash.
	BaseURL string
	// UserAgent is sent on every request.
	UserAgent string
	// Limit caps how many rows are taken per category, newest first.
	Limit int
	// Timeout bounds a single page fetch.
	Timeout time.Duration
}

// Listing scrapes category listing pages for fresh project references.
type Listing struct {
	cfg     ListingConfig
	limiter waiter
	logger  *zap.Logger
}

// waiter is the slice of ratelimit.Limiter the scrapers use.
type waiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// NewListing creates a listing scraper. A nil limiter disables rate
// limiting.
func NewListing(cfg ListingConfig, limiter waiter, logger *zap.Logger) *Listing {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Limit <= 0 {
		cfg.Limit = defaultLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Listing{cfg: cfg, limiter: limiter, logger: logger}
}

// ScrapeNewest visits each category's listing page sorted by recency and
// returns the newest project references per category. A category that
// fails to load is logged and omitted; the others still come back.
func (s *Listing) ScrapeNewest(ctx context.Context, categories []string) map[string][]jobs.JobRef {
	out := make(map[string][]jobs.JobRef, len(categories))
	for _, category := range categories {
		if ctx.Err() != nil {
			break
		}
		refs, err := s.scrapeCategory(ctx, category)
		if err != nil {
			s.logger.Warn("listing scrape failed",
				zap.String("category", category),
				zap.Error(err))
			continue
		}
		out[category] = refs
	}
	return out
}

func (s *Listing) scrapeCategory(ctx context.Context, category string) ([]jobs.JobRef, error) {
	pageURL := s.categoryURL(category)
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, pageURL); err != nil {
			return nil, err
		}
	}

	c := colly.NewCollector(
		colly.UserAgent(s.cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(s.cfg.Timeout)

	var refs []jobs.JobRef
	c.OnHTML(listingRowLink, func(e *colly.HTMLElement) {
		if len(refs) >= s.cfg.Limit {
			return
		}
		ref, ok := refFromHref(category, e.Request.AbsoluteURL(e.Attr("href")))
		if !ok {
			s.logger.Debug("skipping unparsable project link",
				zap.String("category", category),
				zap.String("href", e.Attr("href")))
			return
		}
		refs = append(refs, ref)
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("visit %s: %w", pageURL, err)
	}
	c.Wait()
	return refs, nil
}

func (s *Listing) categoryURL(category string) string {
	return fmt.Sprintf("%s/projects?category=%s&sort=latest", s.cfg.BaseURL, url.QueryEscape(category))
}

// refFromHref parses a project reference out of a listing link. Links look
// like https://mostaql.com/project/123456-some-slug; the numeric prefix of
// the last path segment is the external id.
func refFromHref(category, href string) (jobs.JobRef, bool) {
	u, err := url.Parse(href)
	if err != nil {
		return jobs.JobRef{}, false
	}
	const marker = "/project/"
	idx := strings.Index(u.Path, marker)
	if idx < 0 {
		return jobs.JobRef{}, false
	}
	segment := u.Path[idx+len(marker):]
	if i := strings.IndexByte(segment, '/'); i >= 0 {
		segment = segment[:i]
	}
	id, _, _ := strings.Cut(segment, "-")
	if id == "" || strings.TrimLeft(id, "0123456789") != "" {
		return jobs.JobRef{}, false
	}
	return jobs.JobRef{Category: category, ExternalID: id, URL: href}, true
}
