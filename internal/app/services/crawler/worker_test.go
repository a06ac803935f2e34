package crawler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pantrylab/recipehub/internal/app/domain/crawl"
	"github.com/pantrylab/recipehub/internal/app/storage/memory"
)

func TestWorker_CrawlsQueuedPages(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()
	url := "https://example.com/recipes/pho-bo"

	if _, _, err := svc.EnqueuePage(ctx, url); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	var calls atomic.Int32
	worker := NewWorker(svc, nil)
	worker.WithInterval(5 * time.Millisecond)
	worker.WithScraper(ScraperFunc(func(_ context.Context, u string) (Result, error) {
		calls.Add(1)
		if u != url {
			t.Errorf("unexpected url: %s", u)
		}
		return Result{Markdown: "# Pho Bo", Title: "Pho Bo", ResponseCode: 200, ContentSize: 8, DurationMS: 3}, nil
	}))

	if err := worker.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		page, err := svc.Page(ctx, url)
		if err != nil {
			t.Fatalf("get page: %v", err)
		}
		if page.Status == crawl.StatusCompleted {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := worker.Stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	page, err := svc.Page(ctx, url)
	if err != nil {
		t.Fatalf("get page: %v", err)
	}
	if page.Status != crawl.StatusCompleted || page.ContentMarkdown != "# Pho Bo" {
		t.Fatalf("unexpected page after crawl: %#v", page)
	}
	if calls.Load() == 0 {
		t.Fatal("scraper never invoked")
	}

	history, err := svc.History(ctx, url)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) == 0 || history[0].Status != string(crawl.StatusCompleted) {
		t.Fatalf("unexpected history: %#v", history)
	}
}

func TestWorker_RecordsFailures(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()
	url := "https://example.com/recipes/broken"

	if _, _, err := svc.EnqueuePage(ctx, url); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	worker := NewWorker(svc, nil)
	worker.WithInterval(5 * time.Millisecond)
	worker.WithScraper(ScraperFunc(func(context.Context, string) (Result, error) {
		return Result{ResponseCode: 503, DurationMS: 2}, errors.New("status 503")
	}))

	if err := worker.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		page, err := svc.Page(ctx, url)
		if err != nil {
			t.Fatalf("get page: %v", err)
		}
		if page.Status == crawl.StatusFailed {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := worker.Stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	page, err := svc.Page(ctx, url)
	if err != nil {
		t.Fatalf("get page: %v", err)
	}
	if page.Status != crawl.StatusFailed {
		t.Fatalf("expected failed page, got %s", page.Status)
	}

	history, err := svc.History(ctx, url)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) == 0 {
		t.Fatal("expected failure recorded in history")
	}
	attempt := history[0]
	if attempt.ErrorMessage == nil || *attempt.ErrorMessage != "status 503" {
		t.Fatalf("unexpected error message: %#v", attempt.ErrorMessage)
	}
}

func TestWorker_StartWithoutScraper(t *testing.T) {
	worker := NewWorker(New(memory.New(), nil), nil)
	if err := worker.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	// Disabled worker has nothing running; Stop is a no-op.
	if err := worker.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestWorker_RetryBackoff(t *testing.T) {
	worker := NewWorker(New(memory.New(), nil), nil)
	worker.WithInterval(time.Minute)
	url := "https://example.com/x"

	if !worker.shouldAttempt(url, time.Now()) {
		t.Fatal("fresh url should be attempted")
	}

	worker.scheduleRetry(url)
	if worker.shouldAttempt(url, time.Now()) {
		t.Fatal("url should be backed off after failure")
	}
	if worker.shouldAttempt(url, time.Now().Add(30*time.Second)) {
		t.Fatal("first backoff should hold for the full interval")
	}
	if !worker.shouldAttempt(url, time.Now().Add(2*time.Minute)) {
		t.Fatal("url should be retried once the backoff elapses")
	}

	// Second failure doubles the wait.
	worker.scheduleRetry(url)
	if worker.shouldAttempt(url, time.Now().Add(90*time.Second)) {
		t.Fatal("second backoff should exceed one interval")
	}
	if !worker.shouldAttempt(url, time.Now().Add(3*time.Minute)) {
		t.Fatal("url should be retried after the doubled backoff")
	}

	worker.clearSchedule(url)
	if !worker.shouldAttempt(url, time.Now()) {
		t.Fatal("cleared url should be attempted immediately")
	}
}

func TestWorker_BackoffCapped(t *testing.T) {
	worker := NewWorker(New(memory.New(), nil), nil)
	worker.WithInterval(time.Minute)
	url := "https://example.com/y"

	for i := 0; i < 20; i++ {
		worker.scheduleRetry(url)
	}

	worker.mu.Lock()
	next := worker.nextAttempt[url]
	worker.mu.Unlock()

	if wait := time.Until(next); wait > maxRetryBackoff+time.Second {
		t.Fatalf("backoff exceeds cap: %v", wait)
	}
}
