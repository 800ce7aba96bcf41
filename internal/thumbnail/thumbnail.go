// Package thumbnail resolves a preview image URL for a shared link by
// fetching the page and reading its Open Graph / Twitter card metadata.
package thumbnail

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

const (
	defaultTimeout = 5 * time.Second
	userAgent      = "Mozilla/5.0 (compatible; sharebin/1.0)"
)

// Fetcher resolves a preview image URL for a page, if it advertises one.
type Fetcher interface {
	// Fetch returns the absolute preview image URL, or "" when the page has
	// none. Errors mean the fetch itself failed; callers treat both the same
	// way (no thumbnail).
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// HTTPFetcher implements Fetcher with a plain GET and meta-tag parse.
type HTTPFetcher struct {
	client *http.Client
	log    logrus.FieldLogger
}

// NewHTTPFetcher creates a fetcher with the given per-request timeout.
// A timeout <= 0 falls back to a 5 second default.
func NewHTTPFetcher(timeout time.Duration, logger logrus.FieldLogger) *HTTPFetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
		log:    logger.WithField("component", "thumbnail"),
	}
}

// Fetch downloads the page and returns its og:image or twitter:image URL.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	img := ParseDocument(doc)
	if img == "" {
		f.log.WithField("url", pageURL).Debug("Page advertises no preview image")
		return "", nil
	}
	return resolveAgainst(pageURL, img), nil
}

// ParseDocument extracts the preview image reference from a parsed document.
// The og:image property wins over twitter:image; a blank content attribute
// counts as no image.
func ParseDocument(doc *goquery.Document) string {
	sel := doc.Find(`meta[property="og:image"], meta[name="twitter:image"]`).First()
	content, _ := sel.Attr("content")
	return strings.TrimSpace(content)
}

// resolveAgainst turns a possibly relative image reference into an absolute
// URL against the page it came from. Unresolvable references are returned
// as-is rather than dropped.
func resolveAgainst(pageURL, imgURL string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return imgURL
	}
	ref, err := url.Parse(imgURL)
	if err != nil {
		return imgURL
	}
	return base.ResolveReference(ref).String()
}
