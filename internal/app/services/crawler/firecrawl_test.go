package crawler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFirecrawlScraper(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/scrape" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer fc-test-key" {
			t.Errorf("unexpected auth header: %q", got)
		}
		var req struct {
			URL     string   `json:"url"`
			Formats []string `json:"formats"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.URL != "https://example.com/recipes/pho" {
			t.Errorf("unexpected url: %s", req.URL)
		}
		if len(req.Formats) != 1 || req.Formats[0] != "markdown" {
			t.Errorf("unexpected formats: %v", req.Formats)
		}
		w.Write([]byte(`{
			"success": true,
			"data": {
				"markdown": "# Pho\n\nBroth, noodles, beef.",
				"metadata": {"title": "Pho Recipe", "statusCode": 200}
			}
		}`))
	}))
	defer server.Close()

	scraper, err := NewFirecrawlScraper(server.Client(), server.URL, "fc-test-key", nil)
	if err != nil {
		t.Fatalf("new scraper: %v", err)
	}

	res, err := scraper.Scrape(context.Background(), "https://example.com/recipes/pho")
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if res.Title != "Pho Recipe" || res.ResponseCode != 200 {
		t.Fatalf("unexpected result: %#v", res)
	}
	if res.Markdown != "# Pho\n\nBroth, noodles, beef." {
		t.Fatalf("unexpected markdown: %q", res.Markdown)
	}
	if res.ContentSize != len(res.Markdown) {
		t.Fatalf("content size mismatch: %d vs %d", res.ContentSize, len(res.Markdown))
	}
	if res.DurationMS <= 0 {
		t.Fatalf("expected measured duration, got %v", res.DurationMS)
	}
}

func TestFirecrawlScraperEngineError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"success": false, "error": "This website is no longer supported"}`))
	}))
	defer server.Close()

	scraper, err := NewFirecrawlScraper(server.Client(), server.URL, "", nil)
	if err != nil {
		t.Fatalf("new scraper: %v", err)
	}

	if _, err := scraper.Scrape(context.Background(), "https://example.com/x"); err == nil {
		t.Fatal("expected engine error")
	}
}

func TestFirecrawlScraperHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer server.Close()

	scraper, err := NewFirecrawlScraper(server.Client(), server.URL, "", nil)
	if err != nil {
		t.Fatalf("new scraper: %v", err)
	}

	res, err := scraper.Scrape(context.Background(), "https://example.com/x")
	if err == nil {
		t.Fatal("expected error for non-200 engine response")
	}
	if res.ResponseCode != http.StatusPaymentRequired {
		t.Fatalf("expected engine status carried on result, got %d", res.ResponseCode)
	}
}

func TestNewFirecrawlScraperValidation(t *testing.T) {
	if _, err := NewFirecrawlScraper(nil, "", "key", nil); err == nil {
		t.Fatal("expected error for empty URL")
	}
	if _, err := NewFirecrawlScraper(nil, "not a url", "key", nil); err == nil {
		t.Fatal("expected error for URL without scheme")
	}
}
