package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/pantrylab/recipehub/pkg/logger"
)

const (
	fetcherUserAgent = "recipehub-crawler/1.0"
	maxFetchBytes    = 2 << 20
)

// PlainFetcher is the fallback scraper used when no external engine is
// configured. It fetches the page directly and converts the HTML body
// into a rough markdown rendering.
type PlainFetcher struct {
	client *http.Client
	log    *logger.Logger
}

func NewPlainFetcher(client *http.Client, log *logger.Logger) *PlainFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = logger.NewDefault("fetcher")
	}
	return &PlainFetcher{client: client, log: log}
}

func (f *PlainFetcher) Scrape(ctx context.Context, pageURL string) (Result, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("build fetch request: %w", err)
	}
	req.Header.Set("User-Agent", fetcherUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return Result{DurationMS: millisSince(start)}, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{ResponseCode: resp.StatusCode, DurationMS: millisSince(start)},
			fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return Result{ResponseCode: resp.StatusCode, DurationMS: millisSince(start)},
			fmt.Errorf("parse %s: %w", pageURL, err)
	}

	markdown := renderMarkdown(doc)
	return Result{
		Markdown:     markdown,
		Title:        extractTitle(doc),
		ResponseCode: resp.StatusCode,
		ContentSize:  len(markdown),
		DurationMS:   millisSince(start),
	}, nil
}

func extractTitle(doc *html.Node) string {
	var title string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return title
}

// renderMarkdown flattens the document into headings, paragraphs and
// list items, skipping chrome elements that carry no recipe content.
func renderMarkdown(doc *html.Node) string {
	var lines []string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "nav", "footer", "header":
				return
			case "h1", "h2", "h3", "h4", "h5", "h6":
				if text := nodeText(n); text != "" {
					level := int(n.Data[1] - '0')
					lines = append(lines, strings.Repeat("#", level)+" "+text)
				}
				return
			case "p":
				if text := nodeText(n); text != "" {
					lines = append(lines, text)
				}
				return
			case "li":
				if text := nodeText(n); text != "" {
					lines = append(lines, "- "+text)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return strings.Join(lines, "\n\n")
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
