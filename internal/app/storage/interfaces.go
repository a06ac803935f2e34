package storage

import (
	"context"

	"github.com/pantrylab/recipehub/internal/app/domain/crawl"
	"github.com/pantrylab/recipehub/internal/app/domain/ingredient"
	"github.com/pantrylab/recipehub/internal/app/domain/recipe"
)

// IngredientStore persists ingredients and their tags.
type IngredientStore interface {
	CreateIngredient(ctx context.Context, ing ingredient.Ingredient) (ingredient.Ingredient, error)
	GetIngredient(ctx context.Context, id int64) (ingredient.Ingredient, error)
	GetIngredientByName(ctx context.Context, name string) (ingredient.Ingredient, error)
	ListIngredients(ctx context.Context) ([]ingredient.Ingredient, error)

	CreateTag(ctx context.Context, tag ingredient.Tag) (ingredient.Tag, error)
	GetTagByName(ctx context.Context, name string) (ingredient.Tag, error)
	ListTags(ctx context.Context) ([]ingredient.Tag, error)
}

// RecipeStore persists recipes together with their ingredient lines.
type RecipeStore interface {
	CreateRecipe(ctx context.Context, rec recipe.Recipe) (recipe.Recipe, error)
	GetRecipe(ctx context.Context, id int64) (recipe.Recipe, error)
	GetRecipeByName(ctx context.Context, name string) (recipe.Recipe, error)
	ListRecipes(ctx context.Context) ([]recipe.Recipe, error)
}

// CrawlStore persists the crawl queue, scraped content and attempt history.
// AddDomain and AddPage are idempotent: adding an existing domain or URL
// returns the stored row with created=false.
type CrawlStore interface {
	AddDomain(ctx context.Context, domain string) (crawl.Domain, bool, error)
	ListDomains(ctx context.Context, page, perPage int) (crawl.DomainPage, error)

	AddPage(ctx context.Context, url string) (crawl.Page, bool, error)
	GetPage(ctx context.Context, url string) (crawl.Page, error)
	ListPagesByStatus(ctx context.Context, status crawl.PageStatus) ([]crawl.Page, error)
	ListPagesByDomain(ctx context.Context, domain string) ([]crawl.Page, error)
	UpdatePageStatus(ctx context.Context, url string, status crawl.PageStatus) error
	SavePageContent(ctx context.Context, url, markdown, title string) error

	AddHistory(ctx context.Context, entry crawl.HistoryEntry) (crawl.HistoryEntry, error)
	ListHistory(ctx context.Context, url string) ([]crawl.HistoryEntry, error)

	Stats(ctx context.Context) (crawl.Statistics, error)
}
