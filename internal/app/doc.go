// Package app provides the application composition layer for recipehub.
//
// # Architecture Role
//
// The app package sits above the domain services and is responsible for
// composing them into a running application. It is NOT a business logic
// layer - business logic belongs in internal/app/services/.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Main application struct, wiring, and lifecycle
//	├── domain/             # Domain models (pure data structures)
//	│   ├── ingredient/     # Ingredient catalog models
//	│   ├── recipe/         # Recipes and ingredient lines
//	│   ├── crawl/          # Crawl domains, pages, and attempt history
//	│   └── extract/        # The extraction output schema
//	├── storage/            # Storage interfaces and implementations
//	│   ├── interfaces.go   # Store interfaces (IngredientStore, RecipeStore, CrawlStore)
//	│   ├── memory/         # In-memory implementation for testing
//	│   ├── postgres/       # PostgreSQL implementation for the catalog services
//	│   └── sqlite/         # SQLite implementation for the crawl queue
//	├── services/           # Business logic services
//	│   ├── ingredients/    # Ingredient catalog
//	│   ├── recipes/        # Recipes and the ingredient directory
//	│   ├── crawler/        # Crawl queue and scrape worker
//	│   └── extract/        # Text-to-recipe extraction
//	├── httpapi/            # HTTP API handlers and routing
//	├── system/             # Lifecycle management
//	└── metrics/            # Application metrics
//
// # Responsibilities
//
// The app package is responsible for:
//
//   - Composing services from internal/app/services/ with their dependencies
//   - Defining storage interfaces that services depend on
//   - Providing domain models shared across services
//   - Exposing HTTP API endpoints for external access
//   - Managing application-level concerns (metrics, lifecycle)
//
// # Dependency Direction
//
// The dependency flow is:
//
//	cmd/recipehub/
//	      │
//	      ▼
//	internal/app/ (composition)
//	      │
//	      ├──► internal/app/services/ (business logic)
//	      │
//	      ├──► internal/app/storage/ (persistence)
//	      │
//	      └──► internal/platform/ (drivers, migrations)
//
// # Example: Adding a New Domain
//
// When adding a new domain (e.g., "pantry"):
//
//  1. Create domain models in internal/app/domain/pantry/
//  2. Add a storage interface to internal/app/storage/interfaces.go
//  3. Implement storage in internal/app/storage/postgres/ and memory/
//  4. Create the service in internal/app/services/pantry/service.go
//  5. Wire the service in internal/app/application.go
//  6. Add HTTP handlers in internal/app/httpapi/pantry.go
package app
