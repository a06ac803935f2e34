//go:build integration && postgres

package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/pantrylab/recipehub/internal/app/services/ingredients"
	"github.com/pantrylab/recipehub/internal/app/services/recipes"
	"github.com/pantrylab/recipehub/internal/app/storage/postgres"
	"github.com/pantrylab/recipehub/internal/platform/migrations"
)

func decodeResponse(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// Runs the ingredient and recipe services as two HTTP servers over a shared
// Postgres database and drives a full create-and-read flow across the
// service boundary.
func TestIntegrationPostgres(t *testing.T) {
	_ = godotenv.Load() // allow .env for local runs
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping Postgres integration")
	}

	ctx := context.Background()
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := migrations.Apply(ctx, db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	store := postgres.New(db)

	ingSvc := ingredients.New(store, quietTestLogger())
	ingServer := httptest.NewServer(NewIngredientsHandler(ingSvc))
	defer ingServer.Close()

	directory, err := recipes.NewHTTPDirectory(ingServer.Client(), ingServer.URL, quietTestLogger())
	if err != nil {
		t.Fatalf("new directory: %v", err)
	}
	recServer := httptest.NewServer(NewRecipesHandler(recipes.New(store, directory, quietTestLogger())))
	defer recServer.Close()

	client := recServer.Client()
	nonce := time.Now().UnixNano()

	if resp, err := client.Get(ingServer.URL + "/healthz"); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz failed: %v", err)
	}

	ingName := fmt.Sprintf("Trứng gà %d", nonce)
	resp, err := client.Post(ingServer.URL+"/ingredients/", "application/json", marshal(t, map[string]any{
		"ingredient_name": ingName,
		"countability":    "countable",
	}))
	if err != nil {
		t.Fatalf("create ingredient: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create ingredient status: %d", resp.StatusCode)
	}
	var ing struct {
		ID int64 `json:"ingredient_id"`
	}
	decodeResponse(t, resp, &ing)

	recName := fmt.Sprintf("Trứng luộc %d", nonce)
	resp, err = client.Post(recServer.URL+"/recipes/", "application/json", marshal(t, map[string]any{
		"recipe_name":      recName,
		"default_servings": 2,
		"instructions":     "Luộc 7 phút, ngâm nước lạnh.",
		"countable_ingredients": []map[string]any{
			{"ingredient_id": ing.ID, "quantity": 4},
		},
		"uncountable_ingredients": []map[string]any{},
	}))
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create recipe status: %d", resp.StatusCode)
	}
	var created struct {
		ID        int64 `json:"recipe_id"`
		Countable []struct {
			IngredientName string `json:"ingredient_name"`
		} `json:"countable_ingredients"`
	}
	decodeResponse(t, resp, &created)
	if len(created.Countable) != 1 || created.Countable[0].IngredientName != ingName {
		t.Fatalf("expected enriched line for %q, got %+v", ingName, created.Countable)
	}

	resp, err = client.Get(fmt.Sprintf("%s/recipes/%d", recServer.URL, created.ID))
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get recipe status: %d", resp.StatusCode)
	}
}
