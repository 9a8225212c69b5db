package newsletter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pthm-cable/heroflow/config"
)

func sitemapXML(base string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<urlset>
  <url>
    <loc>%[1]s/p/first-issue</loc>
    <lastmod>2024-01-05T10:00:00Z</lastmod>
  </url>
  <url>
    <loc>%[1]s/p/third-issue</loc>
    <lastmod>2024-03-01T09:00:00Z</lastmod>
  </url>
  <url>
    <loc>%[1]s/about</loc>
    <lastmod>2025-01-01T00:00:00Z</lastmod>
  </url>
  <url>
    <loc>%[1]s/p/second-issue</loc>
    <lastmod>2024-02-11T08:00:00Z</lastmod>
  </url>
</urlset>`, base)
}

// newServer serves a sitemap and a post page; page is the third issue's HTML.
func newServer(t *testing.T, sitemap func(base string) string, page string) (*httptest.Server, config.NewsletterConfig) {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sitemap(srv.URL))
	})
	mux.HandleFunc("/p/third-issue", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	})

	cfg, err := config.Load("", "")
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	nc := cfg.Newsletter
	nc.SitemapURL = srv.URL + "/sitemap.xml"
	nc.PostPrefix = srv.URL + "/p/"
	return srv, nc
}

func TestLatestEntry(t *testing.T) {
	pattern := entryPattern("https://example.com/p/")
	url, lastmod, ok := LatestEntry(sitemapXML("https://example.com"), pattern)
	if !ok {
		t.Fatal("expected an entry")
	}
	if url != "https://example.com/p/third-issue" {
		t.Errorf("expected third issue, got %s", url)
	}
	if lastmod != "2024-03-01T09:00:00Z" {
		t.Errorf("expected its lastmod, got %s", lastmod)
	}

	if _, _, ok := LatestEntry("<urlset></urlset>", pattern); ok {
		t.Error("expected no entry in empty sitemap")
	}
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{"og title", `<head><meta property="og:title" content="Issue #12: Agents"><title>Other | Site</title></head>`, "Issue #12: Agents"},
		{"title with pipe suffix", `<title>Issue #12 | AI for FIs</title>`, "Issue #12"},
		{"title with dash suffix", `<title>Weekly Notes - AI for FIs</title>`, "Weekly Notes"},
		{"entity decoded", `<meta property="og:title" content="Risk &amp; Models">`, "Risk & Models"},
		{"fallback", `<html><body>no title</body></html>`, "Latest Issue"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractTitle(tt.page, "Latest Issue"); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestClient_Latest(t *testing.T) {
	_, cfg := newServer(t, sitemapXML, `<meta property="og:title" content="Third Issue">`)
	post, err := NewClient(cfg, nil).Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if post.Title != "Third Issue" {
		t.Errorf("expected title %q, got %q", "Third Issue", post.Title)
	}
	if post.URL != cfg.PostPrefix+"third-issue" {
		t.Errorf("expected third issue URL, got %s", post.URL)
	}
}

func TestClient_NoPosts(t *testing.T) {
	_, cfg := newServer(t, func(string) string { return "<urlset></urlset>" }, "")
	_, err := NewClient(cfg, nil).Latest(context.Background())
	if !errors.Is(err, ErrNoPosts) {
		t.Errorf("expected ErrNoPosts, got %v", err)
	}
}

func TestClient_SitemapFailure(t *testing.T) {
	srv, cfg := newServer(t, sitemapXML, "")
	cfg.SitemapURL = srv.URL + "/missing.xml"
	_, err := NewClient(cfg, nil).Latest(context.Background())
	if err == nil || errors.Is(err, ErrNoPosts) {
		t.Errorf("expected fetch error, got %v", err)
	}
}

func TestClient_AcceptsAny2xx(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNonAuthoritativeInfo)
		fmt.Fprint(w, sitemapXML(srv.URL))
	})
	mux.HandleFunc("/p/third-issue", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNonAuthoritativeInfo)
		fmt.Fprint(w, `<title>Third Issue | Site</title>`)
	})

	cfg, err := config.Load("", "")
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	nc := cfg.Newsletter
	nc.SitemapURL = srv.URL + "/sitemap.xml"
	nc.PostPrefix = srv.URL + "/p/"

	post, err := NewClient(nc, nil).Latest(context.Background())
	if err != nil {
		t.Fatalf("expected 203 responses to count as success, got %v", err)
	}
	if post.Title != "Third Issue" {
		t.Errorf("expected title %q, got %q", "Third Issue", post.Title)
	}
}

func goneSitemap(base string) string {
	return fmt.Sprintf(`<urlset><url><loc>%s/p/gone</loc><lastmod>2024-04-01</lastmod></url></urlset>`, base)
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name        string
		sitemap     func(string) string
		wantStatus  int
		wantBody    map[string]string
		wantCaching bool
	}{
		{"ok", sitemapXML, http.StatusOK, map[string]string{"title": "Third Issue"}, true},
		{"no posts", func(string) string { return "<urlset/>" }, http.StatusNotFound, map[string]string{"error": "No posts found"}, false},
		{"post fetch fails", goneSitemap, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch latest post"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cfg := newServer(t, tt.sitemap, `<title>Third Issue | Site</title>`)

			rec := httptest.NewRecorder()
			NewHandler(NewClient(cfg, nil), cfg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/latest-post", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			for k, v := range tt.wantBody {
				if body[k] != v {
					t.Errorf("expected %s=%q, got %q", k, v, body[k])
				}
			}
			cc := rec.Header().Get("Cache-Control")
			if tt.wantCaching && cc != "s-maxage=3600, stale-while-revalidate=86400" {
				t.Errorf("unexpected Cache-Control %q", cc)
			}
			if !tt.wantCaching && cc != "" {
				t.Errorf("expected no Cache-Control on errors, got %q", cc)
			}
		})
	}
}
