package crawler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pantrylab/recipehub/pkg/logger"
)

// FirecrawlScraper scrapes pages through a Firecrawl-compatible engine
// (POST /v1/scrape, markdown format).
type FirecrawlScraper struct {
	client   *http.Client
	endpoint string
	apiKey   string
	log      *logger.Logger
}

// NewFirecrawlScraper constructs a scraper against the engine base URL.
func NewFirecrawlScraper(client *http.Client, baseURL, apiKey string, log *logger.Logger) (*FirecrawlScraper, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("scrape engine URL required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse scrape engine URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("scrape engine URL %q: scheme and host required", baseURL)
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if log == nil {
		log = logger.NewDefault("firecrawl")
	}
	return &FirecrawlScraper{
		client:   client,
		endpoint: strings.TrimRight(baseURL, "/") + "/v1/scrape",
		apiKey:   strings.TrimSpace(apiKey),
		log:      log,
	}, nil
}

func (s *FirecrawlScraper) Scrape(ctx context.Context, pageURL string) (Result, error) {
	start := time.Now()

	body, err := json.Marshal(struct {
		URL     string   `json:"url"`
		Formats []string `json:"formats"`
	}{
		URL:     pageURL,
		Formats: []string{"markdown"},
	})
	if err != nil {
		return Result{}, fmt.Errorf("encode scrape request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build scrape request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return Result{DurationMS: millisSince(start)}, fmt.Errorf("scrape request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{ResponseCode: resp.StatusCode, DurationMS: millisSince(start)},
			fmt.Errorf("scrape engine status %d", resp.StatusCode)
	}

	var payload struct {
		Success bool `json:"success"`
		Data    struct {
			Markdown string `json:"markdown"`
			Metadata struct {
				Title      string `json:"title"`
				StatusCode int    `json:"statusCode"`
			} `json:"metadata"`
		} `json:"data"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Result{DurationMS: millisSince(start)}, fmt.Errorf("decode scrape response: %w", err)
	}
	if !payload.Success {
		msg := payload.Error
		if msg == "" {
			msg = "unknown engine error"
		}
		return Result{DurationMS: millisSince(start)}, fmt.Errorf("scrape engine: %s", msg)
	}

	code := payload.Data.Metadata.StatusCode
	if code == 0 {
		code = http.StatusOK
	}
	return Result{
		Markdown:     payload.Data.Markdown,
		Title:        payload.Data.Metadata.Title,
		ResponseCode: code,
		ContentSize:  len(payload.Data.Markdown),
		DurationMS:   millisSince(start),
	}, nil
}

func millisSince(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
