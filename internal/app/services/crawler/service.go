// Package crawler implements the recipe-site crawl queue: collected domains,
// queued pages, the scrape worker and the per-attempt history log.
package crawler

import (
	"context"
	"fmt"
	"strings"

	"github.com/pantrylab/recipehub/internal/app/domain/crawl"
	"github.com/pantrylab/recipehub/internal/app/storage"
	"github.com/pantrylab/recipehub/pkg/logger"
)

// PageDetail pairs a page with its most recent crawl attempt, if any.
type PageDetail struct {
	Page        crawl.Page          `json:"page"`
	LastAttempt *crawl.HistoryEntry `json:"last_attempt,omitempty"`
}

// Service manages the crawl queue on top of a CrawlStore.
type Service struct {
	store storage.CrawlStore
	log   *logger.Logger
}

// New constructs a crawl service.
func New(store storage.CrawlStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("crawler")
	}
	return &Service{
		store: store,
		log:   log,
	}
}

// AddDomain registers a site for collection. Accepts either a bare host or a
// full URL, in which case the host part is used. Re-adding an existing domain
// is a no-op that returns the stored row.
func (s *Service) AddDomain(ctx context.Context, domain string) (crawl.Domain, bool, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return crawl.Domain{}, false, fmt.Errorf("domain is required")
	}
	if strings.Contains(domain, "://") {
		host, err := crawl.DomainOf(domain)
		if err != nil {
			return crawl.Domain{}, false, err
		}
		domain = host
	}

	stored, created, err := s.store.AddDomain(ctx, domain)
	if err != nil {
		return crawl.Domain{}, false, err
	}
	if created {
		s.log.WithField("domain", stored.Domain).Info("domain added")
	}
	return stored, created, nil
}

// ListDomains returns one page of collected domains, newest first.
func (s *Service) ListDomains(ctx context.Context, page, perPage int) (crawl.DomainPage, error) {
	return s.store.ListDomains(ctx, page, perPage)
}

// EnqueuePage puts a URL on the crawl queue. The page's domain is registered
// as a side effect. Re-adding a known URL returns the stored row untouched.
func (s *Service) EnqueuePage(ctx context.Context, url string) (crawl.Page, bool, error) {
	url = strings.TrimSpace(url)
	if err := crawl.ValidateURL(url); err != nil {
		return crawl.Page{}, false, err
	}

	stored, created, err := s.store.AddPage(ctx, url)
	if err != nil {
		return crawl.Page{}, false, err
	}
	if created {
		s.log.WithField("url", stored.URL).Info("page queued")
	}
	return stored, created, nil
}

// Page returns one queued page by URL.
func (s *Service) Page(ctx context.Context, url string) (crawl.Page, error) {
	return s.store.GetPage(ctx, strings.TrimSpace(url))
}

// PageDetail returns a page together with its latest crawl attempt.
func (s *Service) PageDetail(ctx context.Context, url string) (PageDetail, error) {
	page, err := s.store.GetPage(ctx, strings.TrimSpace(url))
	if err != nil {
		return PageDetail{}, err
	}
	history, err := s.store.ListHistory(ctx, page.URL)
	if err != nil {
		return PageDetail{}, err
	}
	detail := PageDetail{Page: page}
	if len(history) > 0 {
		detail.LastAttempt = &history[0]
	}
	return detail, nil
}

// PagesByStatus lists queue entries in one state.
func (s *Service) PagesByStatus(ctx context.Context, status string) ([]crawl.Page, error) {
	parsed := crawl.PageStatus(strings.ToLower(strings.TrimSpace(status)))
	if !parsed.Valid() {
		return nil, fmt.Errorf("invalid status %q", status)
	}
	return s.store.ListPagesByStatus(ctx, parsed)
}

// PagesByDomain lists all pages collected for one domain. A full URL is
// reduced to its host first.
func (s *Service) PagesByDomain(ctx context.Context, domain string) ([]crawl.Page, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return nil, fmt.Errorf("domain is required")
	}
	if strings.Contains(domain, "://") {
		host, err := crawl.DomainOf(domain)
		if err != nil {
			return nil, err
		}
		domain = host
	}
	return s.store.ListPagesByDomain(ctx, domain)
}

// History returns all crawl attempts for a page, newest first.
func (s *Service) History(ctx context.Context, url string) ([]crawl.HistoryEntry, error) {
	page, err := s.store.GetPage(ctx, strings.TrimSpace(url))
	if err != nil {
		return nil, err
	}
	return s.store.ListHistory(ctx, page.URL)
}

// Stats summarizes the queue.
func (s *Service) Stats(ctx context.Context) (crawl.Statistics, error) {
	return s.store.Stats(ctx)
}

// PendingPages returns the pages the worker should consider: fresh queue
// entries plus previously failed pages awaiting a retry.
func (s *Service) PendingPages(ctx context.Context) ([]crawl.Page, error) {
	queued, err := s.store.ListPagesByStatus(ctx, crawl.StatusQueued)
	if err != nil {
		return nil, err
	}
	failed, err := s.store.ListPagesByStatus(ctx, crawl.StatusFailed)
	if err != nil {
		return nil, err
	}
	return append(queued, failed...), nil
}

// MarkCrawling flags a page as being worked on.
func (s *Service) MarkCrawling(ctx context.Context, url string) error {
	return s.store.UpdatePageStatus(ctx, url, crawl.StatusCrawling)
}

// CompletePage stores scraped content and records a successful attempt.
func (s *Service) CompletePage(ctx context.Context, url string, res Result) error {
	if err := s.store.SavePageContent(ctx, url, res.Markdown, res.Title); err != nil {
		return err
	}
	page, err := s.store.GetPage(ctx, url)
	if err != nil {
		return err
	}

	code := res.ResponseCode
	size := res.ContentSize
	duration := res.DurationMS
	_, err = s.store.AddHistory(ctx, crawl.HistoryEntry{
		PageID:          page.ID,
		Status:          string(crawl.StatusCompleted),
		ResponseCode:    &code,
		ContentSize:     &size,
		CrawlDurationMS: &duration,
	})
	if err != nil {
		return err
	}

	s.log.WithField("url", url).
		WithField("content_size", size).
		Info("page crawled")
	return nil
}

// FailPage marks a page as failed and records the attempt with its cause.
func (s *Service) FailPage(ctx context.Context, url string, res Result, cause error) error {
	if err := s.store.UpdatePageStatus(ctx, url, crawl.StatusFailed); err != nil {
		return err
	}
	page, err := s.store.GetPage(ctx, url)
	if err != nil {
		return err
	}

	entry := crawl.HistoryEntry{
		PageID: page.ID,
		Status: string(crawl.StatusFailed),
	}
	if cause != nil {
		msg := cause.Error()
		entry.ErrorMessage = &msg
	}
	if res.ResponseCode != 0 {
		code := res.ResponseCode
		entry.ResponseCode = &code
	}
	if res.DurationMS > 0 {
		duration := res.DurationMS
		entry.CrawlDurationMS = &duration
	}
	if _, err := s.store.AddHistory(ctx, entry); err != nil {
		return err
	}

	s.log.WithField("url", url).WithError(cause).Warn("page crawl failed")
	return nil
}
