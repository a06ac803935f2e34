// Package config loads runtime configuration for the recipehub services.
// Runtime settings come from the environment (optionally seeded from a .env
// file); per-service enablement and ports come from config/services.yaml.
package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	"github.com/pantrylab/recipehub/pkg/logger"
)

// Config is the full runtime configuration shared by all service binaries.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Crawler  CrawlerConfig
	Recipes  RecipesConfig
	Gemini   GeminiConfig
	Logging  logger.LoggingConfig
}

// ServerConfig holds HTTP server settings common to every service. Port is
// used by the single-process mode; the per-service binaries take their ports
// from config/services.yaml instead.
type ServerConfig struct {
	Host            string        `env:"HTTP_HOST,default=0.0.0.0"`
	Port            int           `env:"PORT,default=8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT,default=30s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT,default=30s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT,default=120s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT,default=30s"`
	RateLimitPerSec int           `env:"RATE_LIMIT_PER_SECOND,default=50"`
	RateLimitBurst  int           `env:"RATE_LIMIT_BURST,default=100"`
	AllowedOrigins  string        `env:"CORS_ALLOWED_ORIGINS,default=*"`
}

// DatabaseConfig holds the Postgres connection settings for the ingredient
// and recipe services. An empty URL means run on the in-memory store.
type DatabaseConfig struct {
	URL          string `env:"DATABASE_URL"`
	MaxOpenConns int    `env:"DATABASE_MAX_OPEN_CONNS,default=10"`
	MaxIdleConns int    `env:"DATABASE_MAX_IDLE_CONNS,default=5"`
}

// CrawlerConfig holds crawl store and worker settings. FirecrawlURL selects
// the scrape engine; when empty the built-in fetcher is used.
type CrawlerConfig struct {
	DBPath       string        `env:"CRAWLER_DB_PATH,default=data/crawler.db"`
	Interval     time.Duration `env:"CRAWLER_INTERVAL,default=30s"`
	BatchSize    int           `env:"CRAWLER_BATCH_SIZE,default=5"`
	FirecrawlURL string        `env:"FIRECRAWL_API_URL"`
	FirecrawlKey string        `env:"FIRECRAWL_API_KEY"`
}

// RecipesConfig holds the recipe service's view of the ingredient directory.
// RedisAddr enables the directory cache when set.
type RecipesConfig struct {
	IngredientServiceURL string        `env:"INGREDIENT_SERVICE_URL,default=http://127.0.0.1:8000"`
	RedisAddr            string        `env:"REDIS_ADDR"`
	DirectoryCacheTTL    time.Duration `env:"DIRECTORY_CACHE_TTL,default=30s"`
}

// GeminiConfig holds the extraction model settings.
type GeminiConfig struct {
	APIKey string `env:"GOOGLE_API_KEY"`
	Model  string `env:"GEMINI_MODEL,default=gemini-2.5-flash"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config from environment: %w", err)
	}
	return &cfg, nil
}

// Addr joins the configured host with a service port.
func (c ServerConfig) Addr(port int) string {
	return fmt.Sprintf("%s:%d", c.Host, port)
}
