package crawler

import (
	"context"
	"sync"
	"time"

	"github.com/pantrylab/recipehub/internal/app/metrics"
	"github.com/pantrylab/recipehub/internal/app/system"
	"github.com/pantrylab/recipehub/pkg/logger"
)

var _ system.Service = (*Worker)(nil)

const (
	defaultWorkerInterval = 30 * time.Second
	defaultWorkerBatch    = 5
	maxRetryBackoff       = time.Hour
	pageScrapeTimeout     = 60 * time.Second
)

// Worker periodically drains the crawl queue: it picks up queued pages
// (and failed pages whose backoff has elapsed), scrapes them and stores
// the result. Failed pages are retried with exponential backoff.
type Worker struct {
	service  *Service
	log      *logger.Logger
	interval time.Duration
	batch    int
	scraper  Scraper

	mu          sync.Mutex
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	running     bool
	nextAttempt map[string]time.Time
	failures    map[string]int
}

// NewWorker constructs a lifecycle-managed crawl worker.
func NewWorker(service *Service, log *logger.Logger) *Worker {
	if log == nil {
		log = logger.NewDefault("crawl-worker")
	}
	return &Worker{
		service:     service,
		log:         log,
		interval:    defaultWorkerInterval,
		batch:       defaultWorkerBatch,
		nextAttempt: make(map[string]time.Time),
		failures:    make(map[string]int),
	}
}

// WithScraper sets the scrape engine the worker drives.
func (w *Worker) WithScraper(scraper Scraper) {
	w.mu.Lock()
	w.scraper = scraper
	w.mu.Unlock()
}

// WithInterval overrides the tick interval.
func (w *Worker) WithInterval(interval time.Duration) {
	if interval > 0 {
		w.interval = interval
	}
}

// WithBatchSize overrides how many pages one tick processes.
func (w *Worker) WithBatchSize(n int) {
	if n > 0 {
		w.batch = n
	}
}

func (w *Worker) Name() string { return "crawl-worker" }

func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.scraper == nil {
		w.mu.Unlock()
		w.log.Warn("scraper not configured; crawl worker disabled")
		return nil
	}
	if w.running {
		w.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				w.tick(runCtx)
			}
		}
	}()

	w.log.Info("crawl worker started")
	return nil
}

func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	cancel := w.cancel
	w.running = false
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.wg.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	w.log.Info("crawl worker stopped")
	return nil
}

func (w *Worker) tick(ctx context.Context) {
	if w.service == nil {
		return
	}

	pages, err := w.service.PendingPages(ctx)
	if err != nil {
		w.log.WithError(err).Warn("crawl worker tick failed")
		return
	}

	w.mu.Lock()
	scraper := w.scraper
	w.mu.Unlock()

	if scraper == nil {
		return
	}

	now := time.Now()
	processed := 0
	for _, page := range pages {
		if processed >= w.batch {
			return
		}
		if ctx.Err() != nil {
			return
		}
		if !w.shouldAttempt(page.URL, now) {
			continue
		}
		processed++
		w.crawlPage(ctx, scraper, page.URL)
	}
}

func (w *Worker) crawlPage(ctx context.Context, scraper Scraper, url string) {
	if err := w.service.MarkCrawling(ctx, url); err != nil {
		w.log.WithError(err).WithField("url", url).Warn("mark crawling failed")
		return
	}

	scrapeCtx, cancel := context.WithTimeout(ctx, pageScrapeTimeout)
	result, err := scraper.Scrape(scrapeCtx, url)
	cancel()

	duration := time.Duration(result.DurationMS * float64(time.Millisecond))
	if err != nil {
		metrics.RecordCrawlAttempt("failed", duration)
		if failErr := w.service.FailPage(ctx, url, result, err); failErr != nil {
			w.log.WithError(failErr).WithField("url", url).Warn("record crawl failure failed")
		}
		w.scheduleRetry(url)
		return
	}

	metrics.RecordCrawlAttempt("completed", duration)
	if err := w.service.CompletePage(ctx, url, result); err != nil {
		w.log.WithError(err).WithField("url", url).Warn("store crawl result failed")
		w.scheduleRetry(url)
		return
	}
	w.clearSchedule(url)
}

func (w *Worker) shouldAttempt(url string, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	next, ok := w.nextAttempt[url]
	if !ok || now.After(next) {
		return true
	}
	return false
}

// scheduleRetry pushes the next attempt out by interval * 2^(failures-1),
// capped at maxRetryBackoff.
func (w *Worker) scheduleRetry(url string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.failures[url]++
	backoff := w.interval
	for i := 1; i < w.failures[url]; i++ {
		backoff *= 2
		if backoff >= maxRetryBackoff {
			backoff = maxRetryBackoff
			break
		}
	}
	w.nextAttempt[url] = time.Now().Add(backoff)
}

func (w *Worker) clearSchedule(url string) {
	w.mu.Lock()
	delete(w.nextAttempt, url)
	delete(w.failures, url)
	w.mu.Unlock()
}
