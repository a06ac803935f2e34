package crawler

import "context"

// Result is what a scrape engine produced for one URL. DurationMS is
// measured by the engine around its fetch; on errors the engine still fills
// ResponseCode and DurationMS when it got that far.
type Result struct {
	Markdown     string
	Title        string
	ResponseCode int
	ContentSize  int
	DurationMS   float64
}

// Scraper fetches one page and returns its content as markdown.
type Scraper interface {
	Scrape(ctx context.Context, url string) (Result, error)
}

// ScraperFunc adapts a function to the Scraper interface.
type ScraperFunc func(ctx context.Context, url string) (Result, error)

func (f ScraperFunc) Scrape(ctx context.Context, url string) (Result, error) {
	return f(ctx, url)
}
