package crawl

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// PageStatus tracks a page through the crawl queue.
type PageStatus string

const (
	StatusQueued    PageStatus = "queued"
	StatusCrawling  PageStatus = "crawling"
	StatusCompleted PageStatus = "completed"
	StatusFailed    PageStatus = "failed"
)

// Valid reports whether the status is one of the known queue states.
func (s PageStatus) Valid() bool {
	switch s {
	case StatusQueued, StatusCrawling, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Domain is a site whose pages are collected.
type Domain struct {
	ID        int64     `json:"id"`
	Domain    string    `json:"domain"`
	CreatedAt time.Time `json:"created_at"`
}

// Page is a single URL in the crawl queue. Content fields are populated once
// the page has been scraped.
type Page struct {
	ID              int64      `json:"id"`
	URL             string     `json:"url"`
	DomainID        int64      `json:"domain_id"`
	Status          PageStatus `json:"status"`
	ContentMarkdown string     `json:"content_markdown,omitempty"`
	Title           string     `json:"title,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// HistoryEntry records one crawl attempt against a page. Response code,
// content size and duration are only present when the engine reported them.
type HistoryEntry struct {
	ID              int64     `json:"id"`
	PageID          int64     `json:"page_id"`
	Status          string    `json:"status"`
	CrawledAt       time.Time `json:"crawled_at"`
	ResponseCode    *int      `json:"response_code,omitempty"`
	ErrorMessage    *string   `json:"error_message,omitempty"`
	ContentSize     *int      `json:"content_size,omitempty"`
	CrawlDurationMS *float64  `json:"crawl_duration_ms,omitempty"`
}

// Statistics summarizes the queue.
type Statistics struct {
	TotalPages     int `json:"total_pages"`
	QueuedPages    int `json:"queued_pages"`
	CrawlingPages  int `json:"crawling_pages"`
	CompletedPages int `json:"completed_pages"`
	FailedPages    int `json:"failed_pages"`
	TotalDomains   int `json:"total_domains"`
}

// DomainPage is one page of the collected-domains listing, newest first.
type DomainPage struct {
	Page       int      `json:"page"`
	PerPage    int      `json:"per_page"`
	Total      int      `json:"total"`
	TotalPages int      `json:"total_pages"`
	Domains    []Domain `json:"domains"`
}

// ValidateURL checks that a URL carries both a scheme and a host.
func ValidateURL(raw string) error {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid url %q: scheme and host required", raw)
	}
	return nil
}

// DomainOf extracts the host part of a URL.
func DomainOf(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("url %q has no host", raw)
	}
	return parsed.Host, nil
}
