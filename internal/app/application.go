package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-redis/redis/v8"

	crawlersvc "github.com/pantrylab/recipehub/internal/app/services/crawler"
	"github.com/pantrylab/recipehub/internal/app/services/ingredients"
	recipesvc "github.com/pantrylab/recipehub/internal/app/services/recipes"
	"github.com/pantrylab/recipehub/internal/app/storage"
	"github.com/pantrylab/recipehub/internal/app/storage/memory"
	"github.com/pantrylab/recipehub/internal/app/system"
	"github.com/pantrylab/recipehub/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Ingredients storage.IngredientStore
	Recipes     storage.RecipeStore
	Crawl       storage.CrawlStore
}

// Application ties the domain services together and manages their lifecycle.
// It is the single-process composition: the recipe service resolves
// ingredients in-process instead of over HTTP.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Ingredients *ingredients.Service
	Recipes     *recipesvc.Service
	Crawler     *crawlersvc.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Ingredients == nil {
		stores.Ingredients = mem
	}
	if stores.Recipes == nil {
		stores.Recipes = mem
	}
	if stores.Crawl == nil {
		stores.Crawl = mem
	}

	manager := system.NewManager()

	ingService := ingredients.New(stores.Ingredients, log)

	var directory recipesvc.Directory = recipesvc.NewServiceDirectory(ingService)
	if addr := strings.TrimSpace(os.Getenv("REDIS_ADDR")); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		directory = recipesvc.NewCachedDirectory(directory, client, 0, log)
	}
	recService := recipesvc.New(stores.Recipes, directory, log)

	crawlService := crawlersvc.New(stores.Crawl, log)
	worker := crawlersvc.NewWorker(crawlService, log)
	if endpoint := strings.TrimSpace(os.Getenv("FIRECRAWL_API_URL")); endpoint != "" {
		scraper, err := crawlersvc.NewFirecrawlScraper(nil, endpoint, os.Getenv("FIRECRAWL_API_KEY"), log)
		if err != nil {
			log.WithError(err).Warn("configure scrape engine")
		} else {
			worker.WithScraper(scraper)
		}
	} else {
		log.Warn("FIRECRAWL_API_URL not set; using built-in fetcher")
		worker.WithScraper(crawlersvc.NewPlainFetcher(nil, log))
	}

	for _, name := range []string{"ingredients", "recipes"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}
	if err := manager.Register(worker); err != nil {
		return nil, fmt.Errorf("register %s: %w", worker.Name(), err)
	}

	return &Application{
		manager:     manager,
		log:         log,
		Ingredients: ingService,
		Recipes:     recService,
		Crawler:     crawlService,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
