// Package main provides the shared entry point for the recipehub services.
// The service type is determined by the SERVICE environment variable; each
// service listens on its own port from config/services.yaml. SERVICE=all (the
// default) runs every service in one process on a single port.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/pantrylab/recipehub/internal/app/httpapi"
	"github.com/pantrylab/recipehub/internal/app/metrics"
	"github.com/pantrylab/recipehub/internal/app/runtime"
	crawlersvc "github.com/pantrylab/recipehub/internal/app/services/crawler"
	"github.com/pantrylab/recipehub/internal/app/services/ingredients"
	recipesvc "github.com/pantrylab/recipehub/internal/app/services/recipes"
	"github.com/pantrylab/recipehub/internal/app/storage"
	"github.com/pantrylab/recipehub/internal/app/storage/memory"
	"github.com/pantrylab/recipehub/internal/app/storage/postgres"
	"github.com/pantrylab/recipehub/internal/app/storage/sqlite"
	"github.com/pantrylab/recipehub/internal/app/system"
	"github.com/pantrylab/recipehub/internal/config"
	"github.com/pantrylab/recipehub/internal/middleware"
	"github.com/pantrylab/recipehub/internal/platform/database"
	"github.com/pantrylab/recipehub/internal/platform/migrations"
	"github.com/pantrylab/recipehub/pkg/logger"
)

// Available services
var availableServices = []string{
	config.ServiceIngredients, config.ServiceRecipes, config.ServiceCrawler, "all",
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serviceType := strings.TrimSpace(os.Getenv("SERVICE"))
	if serviceType == "" {
		serviceType = strings.TrimSpace(os.Getenv("SERVICE_TYPE")) // Fallback for older deploy scripts
	}
	if serviceType == "" {
		serviceType = "all"
	}

	if serviceType == "all" {
		runAll(ctx)
		return
	}

	log.Printf("Available services: %v", availableServices)
	log.Printf("Starting %s service...", serviceType)

	// Load services configuration
	servicesCfg := config.LoadServicesConfigOrDefault()

	// Check if service is enabled in config
	if !servicesCfg.IsEnabled(serviceType) {
		log.Printf("Service %s is disabled in configuration, exiting gracefully", serviceType)
		os.Exit(0) // Graceful exit for disabled services
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	appLog, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	var (
		handler http.Handler
		worker  system.Service
		closers []io.Closer
	)

	// Create service based on type
	switch serviceType {
	case config.ServiceIngredients:
		ingStore, _, closer, err := openCatalogStores(ctx, cfg, appLog)
		if err != nil {
			log.Fatalf("Failed to open stores: %v", err)
		}
		if closer != nil {
			closers = append(closers, closer)
		}
		handler = httpapi.NewIngredientsHandler(ingredients.New(ingStore, appLog))

	case config.ServiceRecipes:
		_, recStore, closer, err := openCatalogStores(ctx, cfg, appLog)
		if err != nil {
			log.Fatalf("Failed to open stores: %v", err)
		}
		if closer != nil {
			closers = append(closers, closer)
		}
		directory, err := buildDirectory(cfg, appLog)
		if err != nil {
			log.Fatalf("Failed to configure ingredient directory: %v", err)
		}
		handler = httpapi.NewRecipesHandler(recipesvc.New(recStore, directory, appLog))

	case config.ServiceCrawler:
		crawlStore, err := sqlite.Open(cfg.Crawler.DBPath)
		if err != nil {
			log.Fatalf("Failed to open crawl store: %v", err)
		}
		closers = append(closers, crawlStore)

		crawlSvc := crawlersvc.New(crawlStore, appLog)
		crawlWorker := crawlersvc.NewWorker(crawlSvc, appLog)
		crawlWorker.WithScraper(buildScraper(cfg, appLog))
		crawlWorker.WithInterval(cfg.Crawler.Interval)
		crawlWorker.WithBatchSize(cfg.Crawler.BatchSize)
		worker = crawlWorker
		handler = httpapi.NewCrawlerHandler(crawlSvc)

	default:
		log.Fatalf("Unknown service: %s. Available: %v", serviceType, availableServices)
	}

	// Start the background worker, if any
	if worker != nil {
		if err := worker.Start(ctx); err != nil {
			log.Fatalf("Failed to start %s: %v", worker.Name(), err)
		}
	}

	// Get port from environment or config
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		if settings, ok := servicesCfg.Settings(serviceType); ok && settings.Port > 0 {
			port = fmt.Sprintf("%d", settings.Port)
		} else {
			port = "8080"
		}
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + port,
		Handler:      wrapHandler(handler, cfg, appLog),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	go func() {
		log.Printf("%s service listening on port %s", serviceType, port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}

	if worker != nil {
		if err := worker.Stop(shutdownCtx); err != nil {
			log.Printf("Worker stop error: %v", err)
		}
	}
	for _, closer := range closers {
		if err := closer.Close(); err != nil {
			log.Printf("Close error: %v", err)
		}
	}

	log.Println("Service stopped")
}

// runAll runs every service in one process via the runtime composition.
func runAll(ctx context.Context) {
	log.Println("Starting all services in one process...")

	application, err := runtime.NewApplication()
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Run(runCtx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received %s, shutting down...", sig)
	case err := <-errCh:
		if err != nil {
			log.Printf("Server error: %v", err)
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}

	log.Println("Service stopped")
}

// openCatalogStores opens Postgres when DATABASE_URL is set and falls back to
// the in-memory store otherwise. The returned closer is nil in the in-memory
// case.
func openCatalogStores(ctx context.Context, cfg *config.Config, appLog *logger.Logger) (storage.IngredientStore, storage.RecipeStore, io.Closer, error) {
	if strings.TrimSpace(cfg.Database.URL) == "" {
		appLog.Warn("DATABASE_URL not set; data is not persisted")
		mem := memory.New()
		return mem, mem, nil, nil
	}

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := database.Open(openCtx, cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := migrations.Apply(openCtx, db); err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}

	store := postgres.New(db)
	return store, store, db, nil
}

// buildDirectory wires the recipe service's view of the ingredient catalog:
// an HTTP client against the ingredient service, optionally cached in Redis.
func buildDirectory(cfg *config.Config, appLog *logger.Logger) (recipesvc.Directory, error) {
	directory, err := recipesvc.NewHTTPDirectory(nil, cfg.Recipes.IngredientServiceURL, appLog)
	if err != nil {
		return nil, err
	}

	if addr := strings.TrimSpace(cfg.Recipes.RedisAddr); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		return recipesvc.NewCachedDirectory(directory, client, cfg.Recipes.DirectoryCacheTTL, appLog), nil
	}
	return directory, nil
}

// buildScraper selects the scrape engine: Firecrawl when configured, the
// built-in fetcher otherwise.
func buildScraper(cfg *config.Config, appLog *logger.Logger) crawlersvc.Scraper {
	if endpoint := strings.TrimSpace(cfg.Crawler.FirecrawlURL); endpoint != "" {
		scraper, err := crawlersvc.NewFirecrawlScraper(nil, endpoint, cfg.Crawler.FirecrawlKey, appLog)
		if err == nil {
			return scraper
		}
		appLog.WithError(err).Warn("configure scrape engine; falling back to built-in fetcher")
	} else {
		appLog.Warn("FIRECRAWL_API_URL not set; using built-in fetcher")
	}
	return crawlersvc.NewPlainFetcher(nil, appLog)
}

func wrapHandler(handler http.Handler, cfg *config.Config, appLog *logger.Logger) http.Handler {
	handler = metrics.InstrumentHandler(handler)
	handler = middleware.NewTracingMiddleware(appLog).Handler(handler)
	handler = middleware.NewRateLimiter(cfg.Server.RateLimitPerSec, cfg.Server.RateLimitBurst, appLog).Handler(handler)
	handler = middleware.NewCORSMiddleware(strings.Split(cfg.Server.AllowedOrigins, ",")).Handler(handler)
	return handler
}
