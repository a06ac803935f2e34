package recipes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pantrylab/recipehub/internal/app/domain/ingredient"
	"github.com/pantrylab/recipehub/internal/app/metrics"
	"github.com/pantrylab/recipehub/internal/app/services/ingredients"
	"github.com/pantrylab/recipehub/pkg/logger"
)

// ErrDirectoryUnavailable marks failures to reach the ingredient directory.
// Handlers map it to 502.
var ErrDirectoryUnavailable = errors.New("ingredient directory unavailable")

// DirectoryEntry is one ingredient as the directory reports it.
type DirectoryEntry struct {
	Name         string                  `json:"ingredient_name"`
	Countability ingredient.Countability `json:"countability"`
}

// Directory resolves the full ingredient catalog, keyed by ingredient id.
// Recipe validation and name enrichment both run against one snapshot so a
// request sees a consistent catalog.
type Directory interface {
	Lookup(ctx context.Context) (map[int64]DirectoryEntry, error)
}

// DirectoryFunc adapts a function to the Directory interface.
type DirectoryFunc func(ctx context.Context) (map[int64]DirectoryEntry, error)

func (f DirectoryFunc) Lookup(ctx context.Context) (map[int64]DirectoryEntry, error) {
	return f(ctx)
}

// HTTPDirectory fetches the catalog from the ingredient service.
type HTTPDirectory struct {
	client   *http.Client
	endpoint string
	log      *logger.Logger
}

// NewHTTPDirectory constructs a directory client against the ingredient
// service base URL (scheme://host:port).
func NewHTTPDirectory(client *http.Client, baseURL string, log *logger.Logger) (*HTTPDirectory, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("ingredient service URL required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse ingredient service URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("ingredient service URL %q: scheme and host required", baseURL)
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if log == nil {
		log = logger.NewDefault("recipes-directory")
	}
	return &HTTPDirectory{
		client:   client,
		endpoint: strings.TrimRight(baseURL, "/") + "/ingredients/",
		log:      log,
	}, nil
}

func (d *HTTPDirectory) Lookup(ctx context.Context) (map[int64]DirectoryEntry, error) {
	entries, err := d.lookup(ctx)
	metrics.RecordDirectoryLookup("http", err == nil)
	if err != nil {
		d.log.WithError(err).Warn("ingredient directory lookup failed")
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	return entries, nil
}

func (d *HTTPDirectory) lookup(ctx context.Context) (map[int64]DirectoryEntry, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build directory request: %w", err)
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("directory request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory status %d", resp.StatusCode)
	}

	var payload []struct {
		ID           int64  `json:"ingredient_id"`
		Name         string `json:"ingredient_name"`
		Countability string `json:"countability"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode directory response: %w", err)
	}

	entries := make(map[int64]DirectoryEntry, len(payload))
	for _, item := range payload {
		entries[item.ID] = DirectoryEntry{
			Name:         item.Name,
			Countability: ingredient.Countability(item.Countability),
		}
	}
	return entries, nil
}

// ServiceDirectory resolves the catalog from an in-process ingredient
// service. It backs the single-binary mode where both services share a
// process and the HTTP hop would be a detour.
type ServiceDirectory struct {
	ingredients *ingredients.Service
}

// NewServiceDirectory wraps an in-process ingredient service.
func NewServiceDirectory(svc *ingredients.Service) *ServiceDirectory {
	return &ServiceDirectory{ingredients: svc}
}

func (d *ServiceDirectory) Lookup(ctx context.Context) (map[int64]DirectoryEntry, error) {
	list, err := d.ingredients.ListIngredients(ctx)
	metrics.RecordDirectoryLookup("service", err == nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	entries := make(map[int64]DirectoryEntry, len(list))
	for _, ing := range list {
		entries[ing.ID] = DirectoryEntry{
			Name:         ing.Name,
			Countability: ing.Countability,
		}
	}
	return entries, nil
}
