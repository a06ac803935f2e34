package memory

import (
	"context"
	"testing"
	"time"

	"github.com/pantrylab/recipehub/internal/app/domain/crawl"
	"github.com/pantrylab/recipehub/internal/app/domain/ingredient"
	"github.com/pantrylab/recipehub/internal/app/domain/recipe"
)

func TestIngredientLifecycle(t *testing.T) {
	store := New()
	ctx := context.Background()

	shelfLife := 7
	created, err := store.CreateIngredient(ctx, ingredient.Ingredient{
		Name:               "Tomato",
		EstimatedShelfLife: &shelfLife,
		Countability:       ingredient.Countable,
		TagIDs:             []int64{},
	})
	if err != nil {
		t.Fatalf("create ingredient: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected ingredient ID to be assigned")
	}

	got, err := store.GetIngredient(ctx, created.ID)
	if err != nil {
		t.Fatalf("get ingredient: %v", err)
	}
	if got.Name != "Tomato" {
		t.Fatalf("expected name Tomato, got %s", got.Name)
	}

	byName, err := store.GetIngredientByName(ctx, "Tomato")
	if err != nil {
		t.Fatalf("get ingredient by name: %v", err)
	}
	if byName.ID != created.ID {
		t.Fatalf("expected ID %d, got %d", created.ID, byName.ID)
	}

	if _, err := store.GetIngredient(ctx, 9999); err == nil {
		t.Fatal("expected error for missing ingredient")
	}

	list, err := store.ListIngredients(ctx)
	if err != nil {
		t.Fatalf("list ingredients: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 ingredient, got %d", len(list))
	}
}

func TestIngredientCloneIsolation(t *testing.T) {
	store := New()
	ctx := context.Background()

	created, err := store.CreateIngredient(ctx, ingredient.Ingredient{
		Name:         "Flour",
		Countability: ingredient.Uncountable,
		TagIDs:       []int64{1, 2},
	})
	if err != nil {
		t.Fatalf("create ingredient: %v", err)
	}

	created.TagIDs[0] = 99

	got, err := store.GetIngredient(ctx, created.ID)
	if err != nil {
		t.Fatalf("get ingredient: %v", err)
	}
	if got.TagIDs[0] != 1 {
		t.Fatalf("mutation leaked into store: %v", got.TagIDs)
	}
}

func TestTagLifecycle(t *testing.T) {
	store := New()
	ctx := context.Background()

	created, err := store.CreateTag(ctx, ingredient.Tag{Name: "vegetable"})
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}

	got, err := store.GetTagByName(ctx, "vegetable")
	if err != nil {
		t.Fatalf("get tag by name: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("expected ID %d, got %d", created.ID, got.ID)
	}

	if _, err := store.GetTagByName(ctx, "missing"); err == nil {
		t.Fatal("expected error for missing tag")
	}

	tags, err := store.ListTags(ctx)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(tags))
	}
}

func TestRecipeLifecycle(t *testing.T) {
	store := New()
	ctx := context.Background()

	created, err := store.CreateRecipe(ctx, recipe.Recipe{
		Name:            "Tomato Soup",
		DefaultServings: 4,
		Instructions:    "Simmer everything.",
		Countable:       []recipe.CountableLine{{IngredientID: 1, Quantity: 3}},
		Uncountable:     []recipe.UncountableLine{{IngredientID: 2, Quantity: 200, Unit: recipe.Gram}},
	})
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}

	got, err := store.GetRecipe(ctx, created.ID)
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	if len(got.Countable) != 1 || len(got.Uncountable) != 1 {
		t.Fatalf("unexpected ingredient lines: %+v", got)
	}

	byName, err := store.GetRecipeByName(ctx, "Tomato Soup")
	if err != nil {
		t.Fatalf("get recipe by name: %v", err)
	}
	if byName.ID != created.ID {
		t.Fatalf("expected ID %d, got %d", created.ID, byName.ID)
	}

	if _, err := store.GetRecipe(ctx, 9999); err == nil {
		t.Fatal("expected error for missing recipe")
	}
}

func TestAddDomainIdempotent(t *testing.T) {
	store := New()
	ctx := context.Background()

	first, created, err := store.AddDomain(ctx, "example.com")
	if err != nil {
		t.Fatalf("add domain: %v", err)
	}
	if !created {
		t.Fatal("expected first add to create the domain")
	}

	second, created, err := store.AddDomain(ctx, "example.com")
	if err != nil {
		t.Fatalf("re-add domain: %v", err)
	}
	if created {
		t.Fatal("expected second add to be a no-op")
	}
	if second.ID != first.ID {
		t.Fatalf("expected ID %d, got %d", first.ID, second.ID)
	}
}

func TestAddPageCreatesDomain(t *testing.T) {
	store := New()
	ctx := context.Background()

	page, created, err := store.AddPage(ctx, "https://example.com/recipes/1")
	if err != nil {
		t.Fatalf("add page: %v", err)
	}
	if !created {
		t.Fatal("expected page to be created")
	}
	if page.Status != crawl.StatusQueued {
		t.Fatalf("expected status queued, got %s", page.Status)
	}

	pages, err := store.ListPagesByDomain(ctx, "example.com")
	if err != nil {
		t.Fatalf("list pages by domain: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}

	_, created, err = store.AddPage(ctx, "https://example.com/recipes/1")
	if err != nil {
		t.Fatalf("re-add page: %v", err)
	}
	if created {
		t.Fatal("expected duplicate add to be a no-op")
	}
}

func TestPageStatusAndContent(t *testing.T) {
	store := New()
	ctx := context.Background()

	url := "https://example.com/recipes/2"
	if _, _, err := store.AddPage(ctx, url); err != nil {
		t.Fatalf("add page: %v", err)
	}

	if err := store.UpdatePageStatus(ctx, url, crawl.StatusCrawling); err != nil {
		t.Fatalf("update status: %v", err)
	}
	queued, err := store.ListPagesByStatus(ctx, crawl.StatusQueued)
	if err != nil {
		t.Fatalf("list queued: %v", err)
	}
	if len(queued) != 0 {
		t.Fatalf("expected no queued pages, got %d", len(queued))
	}

	if err := store.SavePageContent(ctx, url, "# Soup", "Soup"); err != nil {
		t.Fatalf("save content: %v", err)
	}
	page, err := store.GetPage(ctx, url)
	if err != nil {
		t.Fatalf("get page: %v", err)
	}
	if page.Status != crawl.StatusCompleted {
		t.Fatalf("expected status completed, got %s", page.Status)
	}
	if page.ContentMarkdown != "# Soup" || page.Title != "Soup" {
		t.Fatalf("unexpected content: %+v", page)
	}

	if err := store.UpdatePageStatus(ctx, "https://example.com/missing", crawl.StatusFailed); err == nil {
		t.Fatal("expected error for missing page")
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	store := New()
	ctx := context.Background()

	url := "https://example.com/recipes/3"
	page, _, err := store.AddPage(ctx, url)
	if err != nil {
		t.Fatalf("add page: %v", err)
	}

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		_, err := store.AddHistory(ctx, crawl.HistoryEntry{
			PageID:    page.ID,
			Status:    string(crawl.StatusCompleted),
			CrawledAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("add history: %v", err)
		}
	}

	entries, err := store.ListHistory(ctx, url)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].CrawledAt.After(entries[i-1].CrawledAt) {
			t.Fatal("expected history sorted newest first")
		}
	}
}

func TestStatsCountsByStatus(t *testing.T) {
	store := New()
	ctx := context.Background()

	urls := []string{
		"https://example.com/a",
		"https://example.com/b",
		"https://other.com/c",
	}
	for _, url := range urls {
		if _, _, err := store.AddPage(ctx, url); err != nil {
			t.Fatalf("add page %s: %v", url, err)
		}
	}
	if err := store.UpdatePageStatus(ctx, urls[0], crawl.StatusFailed); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if err := store.SavePageContent(ctx, urls[1], "# A", "A"); err != nil {
		t.Fatalf("save content: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalPages != 3 || stats.TotalDomains != 2 {
		t.Fatalf("unexpected totals: %+v", stats)
	}
	if stats.QueuedPages != 1 || stats.FailedPages != 1 || stats.CompletedPages != 1 {
		t.Fatalf("unexpected status counts: %+v", stats)
	}
}

func TestListDomainsPagination(t *testing.T) {
	store := New()
	ctx := context.Background()

	for _, domain := range []string{"a.com", "b.com", "c.com", "d.com", "e.com"} {
		if _, _, err := store.AddDomain(ctx, domain); err != nil {
			t.Fatalf("add domain %s: %v", domain, err)
		}
	}

	page, err := store.ListDomains(ctx, 1, 2)
	if err != nil {
		t.Fatalf("list domains: %v", err)
	}
	if page.Total != 5 || page.TotalPages != 3 {
		t.Fatalf("unexpected pagination: %+v", page)
	}
	if len(page.Domains) != 2 {
		t.Fatalf("expected 2 domains, got %d", len(page.Domains))
	}
	if page.Domains[0].Domain != "e.com" {
		t.Fatalf("expected newest domain first, got %s", page.Domains[0].Domain)
	}

	last, err := store.ListDomains(ctx, 3, 2)
	if err != nil {
		t.Fatalf("list last page: %v", err)
	}
	if len(last.Domains) != 1 {
		t.Fatalf("expected 1 domain on last page, got %d", len(last.Domains))
	}

	empty, err := store.ListDomains(ctx, 10, 2)
	if err != nil {
		t.Fatalf("list past end: %v", err)
	}
	if len(empty.Domains) != 0 {
		t.Fatalf("expected empty page, got %d", len(empty.Domains))
	}
}
