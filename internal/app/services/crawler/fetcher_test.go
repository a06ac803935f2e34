package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const fetcherTestPage = `<!DOCTYPE html>
<html>
<head><title>Bun Cha Recipe</title><style>body { color: red }</style></head>
<body>
<nav><a href="/">Home</a></nav>
<h1>Bun Cha</h1>
<p>Grilled pork with rice noodles.</p>
<h2>Ingredients</h2>
<ul>
<li>500g pork belly</li>
<li>2 <b>cloves</b> garlic</li>
</ul>
<script>trackVisit();</script>
<footer>About us</footer>
</body>
</html>`

func TestPlainFetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != fetcherUserAgent {
			t.Errorf("unexpected user agent: %q", got)
		}
		w.Write([]byte(fetcherTestPage))
	}))
	defer server.Close()

	fetcher := NewPlainFetcher(server.Client(), nil)
	res, err := fetcher.Scrape(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}

	if res.Title != "Bun Cha Recipe" {
		t.Fatalf("unexpected title: %q", res.Title)
	}
	if res.ResponseCode != http.StatusOK {
		t.Fatalf("unexpected response code: %d", res.ResponseCode)
	}
	for _, want := range []string{
		"# Bun Cha",
		"## Ingredients",
		"Grilled pork with rice noodles.",
		"- 500g pork belly",
		"- 2 cloves garlic",
	} {
		if !strings.Contains(res.Markdown, want) {
			t.Errorf("markdown missing %q:\n%s", want, res.Markdown)
		}
	}
	for _, reject := range []string{"trackVisit", "color: red", "Home", "About us"} {
		if strings.Contains(res.Markdown, reject) {
			t.Errorf("markdown should not contain %q:\n%s", reject, res.Markdown)
		}
	}
	if res.ContentSize != len(res.Markdown) {
		t.Fatalf("content size mismatch: %d vs %d", res.ContentSize, len(res.Markdown))
	}
}

func TestPlainFetcherHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := NewPlainFetcher(server.Client(), nil)
	res, err := fetcher.Scrape(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if res.ResponseCode != http.StatusInternalServerError {
		t.Fatalf("expected status carried on result, got %d", res.ResponseCode)
	}
	if res.DurationMS <= 0 {
		t.Fatalf("expected measured duration, got %v", res.DurationMS)
	}
}
