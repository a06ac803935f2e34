// Package migrations applies the Postgres schema for the ingredient and
// recipe services. Statements are idempotent so every boot can run them.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS ingredient_tags (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS ingredients (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		estimated_shelf_life INTEGER,
		countability TEXT NOT NULL,
		tag_ids JSONB NOT NULL DEFAULT '[]'
	)`,
	`CREATE TABLE IF NOT EXISTS recipes (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		default_servings INTEGER NOT NULL,
		instructions TEXT NOT NULL,
		countable_ingredients JSONB NOT NULL DEFAULT '[]',
		uncountable_ingredients JSONB NOT NULL DEFAULT '[]'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ingredients_name ON ingredients (name)`,
	`CREATE INDEX IF NOT EXISTS idx_ingredients_countability ON ingredients (countability)`,
	`CREATE INDEX IF NOT EXISTS idx_recipes_name ON recipes (name)`,
}

// Apply runs every schema statement in order against db.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
	}
	return nil
}
