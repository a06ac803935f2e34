// Package runtime assembles the single-process recipehub server: all three
// services in one binary on one port, backed by the configured stores.
package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	app "github.com/pantrylab/recipehub/internal/app"
	"github.com/pantrylab/recipehub/internal/app/httpapi"
	"github.com/pantrylab/recipehub/internal/app/metrics"
	"github.com/pantrylab/recipehub/internal/app/storage"
	"github.com/pantrylab/recipehub/internal/app/storage/postgres"
	"github.com/pantrylab/recipehub/internal/app/storage/sqlite"
	"github.com/pantrylab/recipehub/internal/config"
	"github.com/pantrylab/recipehub/internal/middleware"
	"github.com/pantrylab/recipehub/internal/platform/database"
	"github.com/pantrylab/recipehub/internal/platform/migrations"
	"github.com/pantrylab/recipehub/pkg/logger"
)

// Application wires the services to their stores and manages the HTTP server
// lifecycle.
type Application struct {
	cfg        *config.Config
	log        *logger.Logger
	app        *app.Application
	httpServer *http.Server
	db         *sql.DB
	crawlStore *sqlite.Store
}

// NewApplication constructs a new application instance with default wiring.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	catalogStores, db, err := buildCatalogStores(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("configure stores: %w", err)
	}

	crawlStore, err := sqlite.Open(cfg.Crawler.DBPath)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("open crawl store: %w", err)
	}

	application, err := app.New(app.Stores{
		Ingredients: catalogStores.ingredients,
		Recipes:     catalogStores.recipes,
		Crawl:       crawlStore,
	}, log)
	if err != nil {
		_ = crawlStore.Close()
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("build application: %w", err)
	}

	handler := httpapi.NewHandler(application)
	handler = metrics.InstrumentHandler(handler)
	handler = middleware.NewTracingMiddleware(log).Handler(handler)
	handler = middleware.NewRateLimiter(cfg.Server.RateLimitPerSec, cfg.Server.RateLimitBurst, log).Handler(handler)
	handler = middleware.NewCORSMiddleware(strings.Split(cfg.Server.AllowedOrigins, ",")).Handler(handler)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Application{
		cfg:        cfg,
		log:        log,
		app:        application,
		httpServer: httpServer,
		db:         db,
		crawlStore: crawlStore,
	}, nil
}

// App exposes the composed application, mainly for tests.
func (a *Application) App() *app.Application {
	return a.app
}

// Run starts the services and the HTTP server and blocks until the context
// is cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("HTTP server listening on %s", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully drains the HTTP server and stops the services.
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := a.app.Stop(shutdownCtx); err != nil {
		a.log.WithError(err).Warn("error stopping services")
	}

	if a.crawlStore != nil {
		if err := a.crawlStore.Close(); err != nil {
			a.log.WithError(err).Warn("error closing crawl store")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.WithError(err).Warn("error closing database connection")
		}
	}

	return nil
}

type catalogStores struct {
	ingredients storage.IngredientStore
	recipes     storage.RecipeStore
}

// buildCatalogStores opens Postgres when DATABASE_URL is set and falls back
// to the shared in-memory store otherwise. The returned db is nil in the
// in-memory case.
func buildCatalogStores(cfg *config.Config, log *logger.Logger) (catalogStores, *sql.DB, error) {
	if strings.TrimSpace(cfg.Database.URL) == "" {
		log.Warn("DATABASE_URL not set; ingredient and recipe data is not persisted")
		return catalogStores{}, nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return catalogStores{}, nil, err
	}
	if err := migrations.Apply(ctx, db); err != nil {
		_ = db.Close()
		return catalogStores{}, nil, err
	}

	store := postgres.New(db)
	return catalogStores{ingredients: store, recipes: store}, db, nil
}

