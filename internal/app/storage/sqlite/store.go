// Package sqlite implements the crawl store on an embedded SQLite database.
// The crawler runs as a single process next to its data file, so SQLite with
// WAL journaling covers its write rate without an external database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pantrylab/recipehub/internal/app/domain/crawl"
	"github.com/pantrylab/recipehub/internal/app/storage"
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS domains (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		domain TEXT NOT NULL UNIQUE,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		domain_id INTEGER NOT NULL REFERENCES domains(id),
		status TEXT NOT NULL DEFAULT 'queued',
		content_markdown TEXT,
		title TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS crawl_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		page_id INTEGER NOT NULL REFERENCES pages(id),
		status TEXT NOT NULL,
		crawled_at INTEGER NOT NULL,
		response_code INTEGER,
		error_message TEXT,
		content_size INTEGER,
		crawl_duration_ms REAL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pages_status ON pages (status)`,
	`CREATE INDEX IF NOT EXISTS idx_pages_domain_id ON pages (domain_id)`,
	`CREATE INDEX IF NOT EXISTS idx_crawl_history_page_id ON crawl_history (page_id)`,
}

// Store provides SQLite-backed persistence for the crawl queue.
type Store struct {
	db *sql.DB
}

var _ storage.CrawlStore = (*Store)(nil)

// Open opens (or creates) a crawl store at the provided path. The parent
// directory of the database file is created when missing.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory %s: %w", dir, err)
		}
	}
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	for i, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) AddDomain(ctx context.Context, domain string) (crawl.Domain, bool, error) {
	if domain == "" {
		return crawl.Domain{}, false, fmt.Errorf("domain is required")
	}

	existing, err := s.getDomain(ctx, domain)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return crawl.Domain{}, false, err
	}

	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO domains (domain, created_at) VALUES (?, ?)`,
		domain, toMillis(now))
	if err != nil {
		return crawl.Domain{}, false, fmt.Errorf("insert domain: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return crawl.Domain{}, false, fmt.Errorf("domain id: %w", err)
	}

	return crawl.Domain{ID: id, Domain: domain, CreatedAt: now.UTC().Truncate(time.Millisecond)}, true, nil
}

func (s *Store) getDomain(ctx context.Context, domain string) (crawl.Domain, error) {
	var (
		dom       crawl.Domain
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, domain, created_at FROM domains WHERE domain = ?`,
		domain).Scan(&dom.ID, &dom.Domain, &createdAt)
	if err != nil {
		return crawl.Domain{}, err
	}
	dom.CreatedAt = fromMillis(createdAt)
	return dom, nil
}

func (s *Store) ListDomains(ctx context.Context, page, perPage int) (crawl.DomainPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM domains`).Scan(&total); err != nil {
		return crawl.DomainPage{}, fmt.Errorf("count domains: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, domain, created_at FROM domains
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		perPage, (page-1)*perPage)
	if err != nil {
		return crawl.DomainPage{}, fmt.Errorf("list domains: %w", err)
	}
	defer rows.Close()

	domains := make([]crawl.Domain, 0, perPage)
	for rows.Next() {
		var (
			dom       crawl.Domain
			createdAt int64
		)
		if err := rows.Scan(&dom.ID, &dom.Domain, &createdAt); err != nil {
			return crawl.DomainPage{}, fmt.Errorf("scan domain: %w", err)
		}
		dom.CreatedAt = fromMillis(createdAt)
		domains = append(domains, dom)
	}
	if err := rows.Err(); err != nil {
		return crawl.DomainPage{}, fmt.Errorf("iterate domains: %w", err)
	}

	return crawl.DomainPage{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
		Domains:    domains,
	}, nil
}

func (s *Store) AddPage(ctx context.Context, url string) (crawl.Page, bool, error) {
	existing, err := s.GetPage(ctx, url)
	if err == nil {
		return existing, false, nil
	}

	domain, err := crawl.DomainOf(url)
	if err != nil {
		return crawl.Page{}, false, err
	}
	dom, _, err := s.AddDomain(ctx, domain)
	if err != nil {
		return crawl.Page{}, false, err
	}

	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO pages (url, domain_id, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		url, dom.ID, string(crawl.StatusQueued), toMillis(now), toMillis(now))
	if err != nil {
		return crawl.Page{}, false, fmt.Errorf("insert page: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return crawl.Page{}, false, fmt.Errorf("page id: %w", err)
	}

	stamp := now.UTC().Truncate(time.Millisecond)
	return crawl.Page{
		ID:        id,
		URL:       url,
		DomainID:  dom.ID,
		Status:    crawl.StatusQueued,
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}, true, nil
}

const pageColumns = `id, url, domain_id, status, content_markdown, title, created_at, updated_at`

func scanPage(row interface{ Scan(...any) error }) (crawl.Page, error) {
	var (
		page      crawl.Page
		status    string
		content   sql.NullString
		title     sql.NullString
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(&page.ID, &page.URL, &page.DomainID, &status,
		&content, &title, &createdAt, &updatedAt)
	if err != nil {
		return crawl.Page{}, err
	}
	page.Status = crawl.PageStatus(status)
	page.ContentMarkdown = content.String
	page.Title = title.String
	page.CreatedAt = fromMillis(createdAt)
	page.UpdatedAt = fromMillis(updatedAt)
	return page, nil
}

func (s *Store) GetPage(ctx context.Context, url string) (crawl.Page, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE url = ?`, url)
	page, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return crawl.Page{}, fmt.Errorf("page %s not found", url)
	}
	if err != nil {
		return crawl.Page{}, fmt.Errorf("get page: %w", err)
	}
	return page, nil
}

func (s *Store) listPages(ctx context.Context, query string, args ...any) ([]crawl.Page, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	pages := make([]crawl.Page, 0)
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, page)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pages: %w", err)
	}
	return pages, nil
}

func (s *Store) ListPagesByStatus(ctx context.Context, status crawl.PageStatus) ([]crawl.Page, error) {
	return s.listPages(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE status = ? ORDER BY id`,
		string(status))
}

func (s *Store) ListPagesByDomain(ctx context.Context, domain string) ([]crawl.Page, error) {
	dom, err := s.getDomain(ctx, domain)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("domain %s not found", domain)
	}
	if err != nil {
		return nil, fmt.Errorf("get domain: %w", err)
	}
	return s.listPages(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE domain_id = ? ORDER BY id`,
		dom.ID)
}

func (s *Store) UpdatePageStatus(ctx context.Context, url string, status crawl.PageStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE pages SET status = ?, updated_at = ? WHERE url = ?`,
		string(status), toMillis(time.Now()), url)
	if err != nil {
		return fmt.Errorf("update page status: %w", err)
	}
	return requireRow(res, url)
}

func (s *Store) SavePageContent(ctx context.Context, url, markdown, title string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE pages
		 SET content_markdown = ?, title = ?, status = ?, updated_at = ?
		 WHERE url = ?`,
		markdown, title, string(crawl.StatusCompleted), toMillis(time.Now()), url)
	if err != nil {
		return fmt.Errorf("save page content: %w", err)
	}
	return requireRow(res, url)
}

func requireRow(res sql.Result, url string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("page %s not found", url)
	}
	return nil
}

func (s *Store) AddHistory(ctx context.Context, entry crawl.HistoryEntry) (crawl.HistoryEntry, error) {
	if entry.PageID == 0 {
		return crawl.HistoryEntry{}, fmt.Errorf("page_id is required")
	}
	if entry.CrawledAt.IsZero() {
		entry.CrawledAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	var (
		responseCode sql.NullInt64
		errorMessage sql.NullString
		contentSize  sql.NullInt64
		durationMS   sql.NullFloat64
	)
	if entry.ResponseCode != nil {
		responseCode = sql.NullInt64{Int64: int64(*entry.ResponseCode), Valid: true}
	}
	if entry.ErrorMessage != nil {
		errorMessage = sql.NullString{String: *entry.ErrorMessage, Valid: true}
	}
	if entry.ContentSize != nil {
		contentSize = sql.NullInt64{Int64: int64(*entry.ContentSize), Valid: true}
	}
	if entry.CrawlDurationMS != nil {
		durationMS = sql.NullFloat64{Float64: *entry.CrawlDurationMS, Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO crawl_history
		 (page_id, status, crawled_at, response_code, error_message, content_size, crawl_duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.PageID, entry.Status, toMillis(entry.CrawledAt),
		responseCode, errorMessage, contentSize, durationMS)
	if err != nil {
		return crawl.HistoryEntry{}, fmt.Errorf("insert history: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return crawl.HistoryEntry{}, fmt.Errorf("history id: %w", err)
	}
	entry.ID = id
	return entry, nil
}

func (s *Store) ListHistory(ctx context.Context, url string) ([]crawl.HistoryEntry, error) {
	page, err := s.GetPage(ctx, url)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, page_id, status, crawled_at, response_code, error_message, content_size, crawl_duration_ms
		 FROM crawl_history
		 WHERE page_id = ?
		 ORDER BY crawled_at DESC, id DESC`,
		page.ID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	entries := make([]crawl.HistoryEntry, 0)
	for rows.Next() {
		var (
			entry        crawl.HistoryEntry
			crawledAt    int64
			responseCode sql.NullInt64
			errorMessage sql.NullString
			contentSize  sql.NullInt64
			durationMS   sql.NullFloat64
		)
		if err := rows.Scan(&entry.ID, &entry.PageID, &entry.Status, &crawledAt,
			&responseCode, &errorMessage, &contentSize, &durationMS); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entry.CrawledAt = fromMillis(crawledAt)
		if responseCode.Valid {
			code := int(responseCode.Int64)
			entry.ResponseCode = &code
		}
		if errorMessage.Valid {
			msg := errorMessage.String
			entry.ErrorMessage = &msg
		}
		if contentSize.Valid {
			size := int(contentSize.Int64)
			entry.ContentSize = &size
		}
		if durationMS.Valid {
			ms := durationMS.Float64
			entry.CrawlDurationMS = &ms
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

func (s *Store) Stats(ctx context.Context) (crawl.Statistics, error) {
	var stats crawl.Statistics

	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM pages GROUP BY status`)
	if err != nil {
		return crawl.Statistics{}, fmt.Errorf("count pages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return crawl.Statistics{}, fmt.Errorf("scan status count: %w", err)
		}
		stats.TotalPages += count
		switch crawl.PageStatus(status) {
		case crawl.StatusQueued:
			stats.QueuedPages = count
		case crawl.StatusCrawling:
			stats.CrawlingPages = count
		case crawl.StatusCompleted:
			stats.CompletedPages = count
		case crawl.StatusFailed:
			stats.FailedPages = count
		}
	}
	if err := rows.Err(); err != nil {
		return crawl.Statistics{}, fmt.Errorf("iterate status counts: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM domains`).Scan(&stats.TotalDomains); err != nil {
		return crawl.Statistics{}, fmt.Errorf("count domains: %w", err)
	}

	return stats, nil
}
