package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pantrylab/recipehub/internal/app/domain/crawl"
	"github.com/pantrylab/recipehub/internal/app/domain/ingredient"
	"github.com/pantrylab/recipehub/internal/app/domain/recipe"
	"github.com/pantrylab/recipehub/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local
// development without a database.
type Store struct {
	mu      sync.RWMutex
	nextID  int64
	ingreds map[int64]ingredient.Ingredient
	tags    map[int64]ingredient.Tag
	recipes map[int64]recipe.Recipe
	domains map[string]crawl.Domain
	pages   map[string]crawl.Page
	history map[int64][]crawl.HistoryEntry
}

var _ storage.IngredientStore = (*Store)(nil)
var _ storage.RecipeStore = (*Store)(nil)
var _ storage.CrawlStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:  1,
		ingreds: make(map[int64]ingredient.Ingredient),
		tags:    make(map[int64]ingredient.Tag),
		recipes: make(map[int64]recipe.Recipe),
		domains: make(map[string]crawl.Domain),
		pages:   make(map[string]crawl.Page),
		history: make(map[int64][]crawl.HistoryEntry),
	}
}

func (s *Store) nextIDLocked() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// IngredientStore implementation ----------------------------------------------

func (s *Store) CreateIngredient(_ context.Context, ing ingredient.Ingredient) (ingredient.Ingredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ing.ID == 0 {
		ing.ID = s.nextIDLocked()
	} else if _, exists := s.ingreds[ing.ID]; exists {
		return ingredient.Ingredient{}, fmt.Errorf("ingredient %d already exists", ing.ID)
	}

	ing.TagIDs = cloneIDs(ing.TagIDs)
	s.ingreds[ing.ID] = ing
	return cloneIngredient(ing), nil
}

func (s *Store) GetIngredient(_ context.Context, id int64) (ingredient.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ing, ok := s.ingreds[id]
	if !ok {
		return ingredient.Ingredient{}, fmt.Errorf("ingredient %d not found", id)
	}
	return cloneIngredient(ing), nil
}

func (s *Store) GetIngredientByName(_ context.Context, name string) (ingredient.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ing := range s.ingreds {
		if ing.Name == name {
			return cloneIngredient(ing), nil
		}
	}
	return ingredient.Ingredient{}, fmt.Errorf("ingredient %q not found", name)
}

func (s *Store) ListIngredients(_ context.Context) ([]ingredient.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]ingredient.Ingredient, 0, len(s.ingreds))
	for _, ing := range s.ingreds {
		result = append(result, cloneIngredient(ing))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) CreateTag(_ context.Context, tag ingredient.Tag) (ingredient.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tag.ID == 0 {
		tag.ID = s.nextIDLocked()
	} else if _, exists := s.tags[tag.ID]; exists {
		return ingredient.Tag{}, fmt.Errorf("tag %d already exists", tag.ID)
	}

	s.tags[tag.ID] = tag
	return tag, nil
}

func (s *Store) GetTagByName(_ context.Context, name string) (ingredient.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tag := range s.tags {
		if tag.Name == name {
			return tag, nil
		}
	}
	return ingredient.Tag{}, fmt.Errorf("tag %q not found", name)
}

func (s *Store) ListTags(_ context.Context) ([]ingredient.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]ingredient.Tag, 0, len(s.tags))
	for _, tag := range s.tags {
		result = append(result, tag)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// RecipeStore implementation ---------------------------------------------------

func (s *Store) CreateRecipe(_ context.Context, rec recipe.Recipe) (recipe.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == 0 {
		rec.ID = s.nextIDLocked()
	} else if _, exists := s.recipes[rec.ID]; exists {
		return recipe.Recipe{}, fmt.Errorf("recipe %d already exists", rec.ID)
	}

	rec.Countable = cloneCountable(rec.Countable)
	rec.Uncountable = cloneUncountable(rec.Uncountable)
	s.recipes[rec.ID] = rec
	return cloneRecipe(rec), nil
}

func (s *Store) GetRecipe(_ context.Context, id int64) (recipe.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.recipes[id]
	if !ok {
		return recipe.Recipe{}, fmt.Errorf("recipe %d not found", id)
	}
	return cloneRecipe(rec), nil
}

func (s *Store) GetRecipeByName(_ context.Context, name string) (recipe.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.recipes {
		if rec.Name == name {
			return cloneRecipe(rec), nil
		}
	}
	return recipe.Recipe{}, fmt.Errorf("recipe %q not found", name)
}

func (s *Store) ListRecipes(_ context.Context) ([]recipe.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]recipe.Recipe, 0, len(s.recipes))
	for _, rec := range s.recipes {
		result = append(result, cloneRecipe(rec))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// CrawlStore implementation ----------------------------------------------------

func (s *Store) AddDomain(_ context.Context, domain string) (crawl.Domain, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addDomainLocked(domain)
}

func (s *Store) addDomainLocked(domain string) (crawl.Domain, bool, error) {
	if domain == "" {
		return crawl.Domain{}, false, fmt.Errorf("domain is required")
	}
	if existing, ok := s.domains[domain]; ok {
		return existing, false, nil
	}

	dom := crawl.Domain{
		ID:        s.nextIDLocked(),
		Domain:    domain,
		CreatedAt: time.Now().UTC(),
	}
	s.domains[domain] = dom
	return dom, true, nil
}

func (s *Store) ListDomains(_ context.Context, page, perPage int) (crawl.DomainPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]crawl.Domain, 0, len(s.domains))
	for _, dom := range s.domains {
		all = append(all, dom)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	total := len(all)
	totalPages := (total + perPage - 1) / perPage
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	return crawl.DomainPage{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		Domains:    all[start:end],
	}, nil
}

func (s *Store) AddPage(_ context.Context, url string) (crawl.Page, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.pages[url]; ok {
		return existing, false, nil
	}

	domain, err := crawl.DomainOf(url)
	if err != nil {
		return crawl.Page{}, false, err
	}
	dom, _, err := s.addDomainLocked(domain)
	if err != nil {
		return crawl.Page{}, false, err
	}

	now := time.Now().UTC()
	page := crawl.Page{
		ID:        s.nextIDLocked(),
		URL:       url,
		DomainID:  dom.ID,
		Status:    crawl.StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.pages[url] = page
	return page, true, nil
}

func (s *Store) GetPage(_ context.Context, url string) (crawl.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	page, ok := s.pages[url]
	if !ok {
		return crawl.Page{}, fmt.Errorf("page %s not found", url)
	}
	return page, nil
}

func (s *Store) ListPagesByStatus(_ context.Context, status crawl.PageStatus) ([]crawl.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]crawl.Page, 0)
	for _, page := range s.pages {
		if page.Status == status {
			result = append(result, page)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) ListPagesByDomain(_ context.Context, domain string) ([]crawl.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dom, ok := s.domains[domain]
	if !ok {
		return nil, fmt.Errorf("domain %s not found", domain)
	}

	result := make([]crawl.Page, 0)
	for _, page := range s.pages {
		if page.DomainID == dom.ID {
			result = append(result, page)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) UpdatePageStatus(_ context.Context, url string, status crawl.PageStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	page, ok := s.pages[url]
	if !ok {
		return fmt.Errorf("page %s not found", url)
	}
	page.Status = status
	page.UpdatedAt = time.Now().UTC()
	s.pages[url] = page
	return nil
}

func (s *Store) SavePageContent(_ context.Context, url, markdown, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	page, ok := s.pages[url]
	if !ok {
		return fmt.Errorf("page %s not found", url)
	}
	page.ContentMarkdown = markdown
	page.Title = title
	page.Status = crawl.StatusCompleted
	page.UpdatedAt = time.Now().UTC()
	s.pages[url] = page
	return nil
}

func (s *Store) AddHistory(_ context.Context, entry crawl.HistoryEntry) (crawl.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.PageID == 0 {
		return crawl.HistoryEntry{}, fmt.Errorf("page_id is required")
	}
	entry.ID = s.nextIDLocked()
	if entry.CrawledAt.IsZero() {
		entry.CrawledAt = time.Now().UTC()
	}

	s.history[entry.PageID] = append(s.history[entry.PageID], entry)
	return cloneHistory(entry), nil
}

func (s *Store) ListHistory(_ context.Context, url string) ([]crawl.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	page, ok := s.pages[url]
	if !ok {
		return nil, fmt.Errorf("page %s not found", url)
	}

	entries := s.history[page.ID]
	result := make([]crawl.HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		result = append(result, cloneHistory(entry))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CrawledAt.Equal(result[j].CrawledAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CrawledAt.After(result[j].CrawledAt)
	})
	return result, nil
}

func (s *Store) Stats(_ context.Context) (crawl.Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := crawl.Statistics{
		TotalPages:   len(s.pages),
		TotalDomains: len(s.domains),
	}
	for _, page := range s.pages {
		switch page.Status {
		case crawl.StatusQueued:
			stats.QueuedPages++
		case crawl.StatusCrawling:
			stats.CrawlingPages++
		case crawl.StatusCompleted:
			stats.CompletedPages++
		case crawl.StatusFailed:
			stats.FailedPages++
		}
	}
	return stats, nil
}

// Helpers ----------------------------------------------------------------------

func cloneIDs(src []int64) []int64 {
	if src == nil {
		return nil
	}
	return append([]int64(nil), src...)
}

func cloneIngredient(ing ingredient.Ingredient) ingredient.Ingredient {
	ing.TagIDs = cloneIDs(ing.TagIDs)
	if ing.EstimatedShelfLife != nil {
		v := *ing.EstimatedShelfLife
		ing.EstimatedShelfLife = &v
	}
	return ing
}

func cloneCountable(lines []recipe.CountableLine) []recipe.CountableLine {
	if lines == nil {
		return nil
	}
	return append([]recipe.CountableLine(nil), lines...)
}

func cloneUncountable(lines []recipe.UncountableLine) []recipe.UncountableLine {
	if lines == nil {
		return nil
	}
	return append([]recipe.UncountableLine(nil), lines...)
}

func cloneRecipe(rec recipe.Recipe) recipe.Recipe {
	rec.Countable = cloneCountable(rec.Countable)
	rec.Uncountable = cloneUncountable(rec.Uncountable)
	return rec
}

func cloneHistory(entry crawl.HistoryEntry) crawl.HistoryEntry {
	if entry.ResponseCode != nil {
		v := *entry.ResponseCode
		entry.ResponseCode = &v
	}
	if entry.ErrorMessage != nil {
		v := *entry.ErrorMessage
		entry.ErrorMessage = &v
	}
	if entry.ContentSize != nil {
		v := *entry.ContentSize
		entry.ContentSize = &v
	}
	if entry.CrawlDurationMS != nil {
		v := *entry.CrawlDurationMS
		entry.CrawlDurationMS = &v
	}
	return entry
}
