// Package newsletter finds the most recent newsletter post by scraping the
// publication's sitemap and the post page.
package newsletter

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/pthm-cable/heroflow/config"
)

// ErrNoPosts is returned when the sitemap lists no post URLs.
var ErrNoPosts = errors.New("no posts found")

// Post is the latest post summary.
type Post struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

var (
	ogTitlePattern = regexp.MustCompile(`<meta\s+property="og:title"\s+content="([^"]+)"`)
	titlePattern   = regexp.MustCompile(`<title>([^<]+)</title>`)
	siteSuffix     = regexp.MustCompile(`\s*[|\-–—].*$`)
)

// maxBody caps how much of a response is read.
const maxBody = 8 << 20

// Client fetches the sitemap and post pages. It never retries.
type Client struct {
	cfg     config.NewsletterConfig
	http    *http.Client
	entries *regexp.Regexp
}

// NewClient creates a client. A nil httpClient gets one with cfg.Timeout.
func NewClient(cfg config.NewsletterConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:     cfg,
		http:    httpClient,
		entries: entryPattern(cfg.PostPrefix),
	}
}

func entryPattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`<url>\s*<loc>(` + regexp.QuoteMeta(prefix) + `[^<]+)</loc>\s*<lastmod>([^<]+)</lastmod>`)
}

// LatestEntry returns the post URL with the greatest lastmod. Dates compare
// as strings, which orders ISO 8601 timestamps correctly.
func LatestEntry(sitemap string, pattern *regexp.Regexp) (url, lastmod string, ok bool) {
	for _, m := range pattern.FindAllStringSubmatch(sitemap, -1) {
		if !ok || m[2] > lastmod {
			url, lastmod, ok = m[1], m[2], true
		}
	}
	return url, lastmod, ok
}

// ExtractTitle reads og:title, else <title> with the site suffix stripped,
// else fallback.
func ExtractTitle(page, fallback string) string {
	if m := ogTitlePattern.FindStringSubmatch(page); m != nil {
		return html.UnescapeString(m[1])
	}
	if m := titlePattern.FindStringSubmatch(page); m != nil {
		return html.UnescapeString(siteSuffix.ReplaceAllString(m[1], ""))
	}
	return fallback
}

// Latest fetches the sitemap, picks the newest post and reads its title.
func (c *Client) Latest(ctx context.Context) (Post, error) {
	sitemap, err := c.get(ctx, c.cfg.SitemapURL)
	if err != nil {
		return Post{}, fmt.Errorf("fetching sitemap: %w", err)
	}

	url, _, ok := LatestEntry(sitemap, c.entries)
	if !ok {
		return Post{}, ErrNoPosts
	}

	page, err := c.get(ctx, url)
	if err != nil {
		return Post{}, fmt.Errorf("fetching post: %w", err)
	}
	return Post{Title: ExtractTitle(page, c.cfg.FallbackTitle), URL: url}, nil
}

func (c *Client) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	var b strings.Builder
	if _, err := io.Copy(&b, io.LimitReader(resp.Body, maxBody)); err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}
	return b.String(), nil
}
