package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pantrylab/recipehub/internal/app/services/crawler"
	"github.com/pantrylab/recipehub/internal/app/storage/memory"
)

func TestCrawlerHandlerFlow(t *testing.T) {
	svc := crawler.New(memory.New(), quietTestLogger())
	handler := NewCrawlerHandler(svc)

	body := map[string]string{"domain": "https://monngonmoingay.com/mon-ngon/pho-bo"}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/crawl/domains", marshal(t, body)))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for new domain, got %d: %s", resp.Code, resp.Body.String())
	}
	var dom map[string]any
	decode(t, resp.Body, &dom)
	if dom["domain"] != "monngonmoingay.com" {
		t.Fatalf("expected host to be extracted, got %v", dom["domain"])
	}

	// Re-adding the same domain is a no-op and reports 200.
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/crawl/domains", marshal(t, map[string]string{"domain": "monngonmoingay.com"})))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for existing domain, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/crawl/domains?page=1&per_page=10", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 domain list, got %d", resp.Code)
	}
	var domains map[string]any
	decode(t, resp.Body, &domains)
	if domains["total"].(float64) != 1 {
		t.Fatalf("expected 1 domain, got %v", domains["total"])
	}

	pageURL := "https://monngonmoingay.com/pho-bo-tai"
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/crawl/pages", marshal(t, map[string]string{"url": pageURL})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for new page, got %d: %s", resp.Code, resp.Body.String())
	}
	var page map[string]any
	decode(t, resp.Body, &page)
	if page["status"] != "queued" {
		t.Fatalf("expected queued page, got %v", page["status"])
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/crawl/pages?status=queued", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for status listing, got %d", resp.Code)
	}
	var pages []map[string]any
	decode(t, resp.Body, &pages)
	if len(pages) != 1 {
		t.Fatalf("expected 1 queued page, got %d", len(pages))
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/crawl/pages?domain=monngonmoingay.com", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for domain listing, got %d", resp.Code)
	}

	// Complete the page through the service and read it back over HTTP.
	err := svc.CompletePage(context.Background(), pageURL, crawler.Result{
		Markdown:     "# Phở bò tái",
		Title:        "Phở bò tái",
		ResponseCode: 200,
		ContentSize:  14,
		DurationMS:   120.5,
	})
	if err != nil {
		t.Fatalf("complete page: %v", err)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/crawl/pages/detail?url="+pageURL, nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 detail, got %d: %s", resp.Code, resp.Body.String())
	}
	var detail struct {
		Page struct {
			Status          string `json:"status"`
			ContentMarkdown string `json:"content_markdown"`
		} `json:"page"`
		LastAttempt *struct {
			Status       string `json:"status"`
			ResponseCode *int   `json:"response_code"`
		} `json:"last_attempt"`
	}
	decode(t, resp.Body, &detail)
	if detail.Page.Status != "completed" || detail.Page.ContentMarkdown != "# Phở bò tái" {
		t.Fatalf("unexpected page detail: %+v", detail.Page)
	}
	if detail.LastAttempt == nil || detail.LastAttempt.Status != "completed" {
		t.Fatalf("expected completed last attempt, got %+v", detail.LastAttempt)
	}
	if detail.LastAttempt.ResponseCode == nil || *detail.LastAttempt.ResponseCode != 200 {
		t.Fatalf("expected response code 200, got %v", detail.LastAttempt.ResponseCode)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/crawl/pages/history?url="+pageURL, nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 history, got %d", resp.Code)
	}
	var history []map[string]any
	decode(t, resp.Body, &history)
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/crawl/stats", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 stats, got %d", resp.Code)
	}
	var stats map[string]any
	decode(t, resp.Body, &stats)
	if stats["completed_pages"].(float64) != 1 {
		t.Fatalf("expected 1 completed page, got %v", stats["completed_pages"])
	}
	if stats["total_domains"].(float64) != 1 {
		t.Fatalf("expected 1 domain, got %v", stats["total_domains"])
	}
}

func TestCrawlerHandlerValidation(t *testing.T) {
	handler := NewCrawlerHandler(crawler.New(memory.New(), quietTestLogger()))

	cases := []struct {
		name   string
		method string
		target string
		body   any
		status int
	}{
		{name: "empty domain", method: http.MethodPost, target: "/crawl/domains", body: map[string]string{"domain": "  "}, status: http.StatusBadRequest},
		{name: "malformed page url", method: http.MethodPost, target: "/crawl/pages", body: map[string]string{"url": "not-a-url"}, status: http.StatusBadRequest},
		{name: "unknown status", method: http.MethodGet, target: "/crawl/pages?status=exploded", status: http.StatusBadRequest},
		{name: "missing filter", method: http.MethodGet, target: "/crawl/pages", status: http.StatusBadRequest},
		{name: "unknown domain filter", method: http.MethodGet, target: "/crawl/pages?domain=nowhere.example", status: http.StatusNotFound},
		{name: "detail without url", method: http.MethodGet, target: "/crawl/pages/detail", status: http.StatusBadRequest},
		{name: "detail of unknown page", method: http.MethodGet, target: "/crawl/pages/detail?url=https://nowhere.example/x", status: http.StatusNotFound},
		{name: "history without url", method: http.MethodGet, target: "/crawl/pages/history", status: http.StatusBadRequest},
		{name: "bad pagination", method: http.MethodGet, target: "/crawl/domains?page=abc", status: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req *http.Request
			if tc.body != nil {
				req = httptest.NewRequest(tc.method, tc.target, marshal(t, tc.body))
			} else {
				req = httptest.NewRequest(tc.method, tc.target, nil)
			}
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, resp.Code, resp.Body.String())
			}
		})
	}
}
