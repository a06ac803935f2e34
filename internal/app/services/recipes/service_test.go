package recipes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/pantrylab/recipehub/internal/app/domain/ingredient"
	"github.com/pantrylab/recipehub/internal/app/domain/recipe"
	"github.com/pantrylab/recipehub/internal/app/storage/memory"
	"github.com/pantrylab/recipehub/pkg/logger"
)

func testDirectory() Directory {
	return DirectoryFunc(func(context.Context) (map[int64]DirectoryEntry, error) {
		return map[int64]DirectoryEntry{
			1: {Name: "Egg", Countability: ingredient.Countable},
			2: {Name: "Flour", Countability: ingredient.Uncountable},
			3: {Name: "Milk", Countability: ingredient.Uncountable},
		}, nil
	})
}

func TestService_CreateRecipe(t *testing.T) {
	store := memory.New()
	svc := New(store, testDirectory(), nil)
	ctx := context.Background()

	view, err := svc.Create(ctx, "Pancakes", 4, "Mix and fry.",
		[]recipe.CountableLine{{IngredientID: 1, Quantity: 3}},
		[]recipe.UncountableLine{
			{IngredientID: 2, Quantity: 200, Unit: recipe.Gram},
			{IngredientID: 3, Quantity: 300, Unit: recipe.Milliliter},
		})
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	if view.ID == 0 {
		t.Fatal("expected recipe ID to be assigned")
	}
	if len(view.Countable) != 1 || view.Countable[0].IngredientName != "Egg" {
		t.Fatalf("expected enriched countable line, got %#v", view.Countable)
	}
	if len(view.Uncountable) != 2 || view.Uncountable[0].IngredientName != "Flour" {
		t.Fatalf("expected enriched uncountable lines, got %#v", view.Uncountable)
	}

	_, err = svc.Create(ctx, "Pancakes", 2, "Again.", nil, nil)
	var dup *DuplicateNameError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateNameError, got %v", err)
	}
	if dup.Error() != "Recipe 'Pancakes' already exists." {
		t.Errorf("unexpected duplicate message %q", dup.Error())
	}
}

func TestService_CreateRecipeValidation(t *testing.T) {
	store := memory.New()
	svc := New(store, testDirectory(), nil)
	ctx := context.Background()

	cases := []struct {
		name        string
		countable   []recipe.CountableLine
		uncountable []recipe.UncountableLine
		wantErr     string
	}{
		{
			name:      "unknown countable ingredient",
			countable: []recipe.CountableLine{{IngredientID: 99, Quantity: 1}},
			wantErr:   "Countable ingredient ID 99 does not exist.",
		},
		{
			name:      "uncountable used as countable",
			countable: []recipe.CountableLine{{IngredientID: 2, Quantity: 1}},
			wantErr:   "Ingredient ID 2 is uncountable.",
		},
		{
			name:        "unknown uncountable ingredient",
			uncountable: []recipe.UncountableLine{{IngredientID: 42, Quantity: 1, Unit: recipe.Gram}},
			wantErr:     "Uncountable ingredient ID 42 does not exist.",
		},
		{
			name:        "countable used as uncountable",
			uncountable: []recipe.UncountableLine{{IngredientID: 1, Quantity: 1, Unit: recipe.Gram}},
			wantErr:     "Ingredient ID 1 is countable.",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "Test "+tc.name, 2, "Steps.", tc.countable, tc.uncountable)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if err.Error() != tc.wantErr {
				t.Errorf("expected %q, got %q", tc.wantErr, err.Error())
			}
		})
	}

	if _, err := svc.Create(ctx, "  ", 2, "Steps.", nil, nil); err == nil {
		t.Error("expected error for empty name")
	}
	if _, err := svc.Create(ctx, "Soup", 0, "Steps.", nil, nil); err == nil {
		t.Error("expected error for non-positive servings")
	}
	if _, err := svc.Create(ctx, "Soup", 2, "Steps.", nil,
		[]recipe.UncountableLine{{IngredientID: 2, Quantity: 1, Unit: "handful"}}); err == nil {
		t.Error("expected error for invalid unit")
	}
}

func TestService_DirectoryUnavailable(t *testing.T) {
	store := memory.New()
	failing := DirectoryFunc(func(context.Context) (map[int64]DirectoryEntry, error) {
		return nil, fmt.Errorf("%w: connection refused", ErrDirectoryUnavailable)
	})
	svc := New(store, failing, nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "Pho", 2, "Simmer.", nil, nil); !errors.Is(err, ErrDirectoryUnavailable) {
		t.Fatalf("expected ErrDirectoryUnavailable, got %v", err)
	}
	if _, err := svc.List(ctx); !errors.Is(err, ErrDirectoryUnavailable) {
		t.Fatalf("expected ErrDirectoryUnavailable from list, got %v", err)
	}
}

func TestService_ListResolvesUnknownNames(t *testing.T) {
	store := memory.New()
	svc := New(store, testDirectory(), nil)
	ctx := context.Background()

	// Stored line references an id the directory no longer knows.
	if _, err := store.CreateRecipe(ctx, recipe.Recipe{
		Name:            "Mystery Stew",
		DefaultServings: 2,
		Instructions:    "Stew it.",
		Countable:       []recipe.CountableLine{{IngredientID: 77, Quantity: 1}},
	}); err != nil {
		t.Fatalf("seed recipe: %v", err)
	}

	views, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list recipes: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 recipe, got %d", len(views))
	}
	if got := views[0].Countable[0].IngredientName; got != "Unknown" {
		t.Errorf("expected Unknown for missing ingredient, got %q", got)
	}
}

func TestService_Get(t *testing.T) {
	store := memory.New()
	svc := New(store, testDirectory(), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "Omelette", 1, "Whisk and cook.",
		[]recipe.CountableLine{{IngredientID: 1, Quantity: 2}}, nil)
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	if got.Name != "Omelette" || got.Countable[0].IngredientName != "Egg" {
		t.Fatalf("unexpected view %#v", got)
	}

	if _, err := svc.Get(ctx, 9999); err == nil {
		t.Fatal("expected error for missing recipe")
	}
}

func ExampleService_Create() {
	store := memory.New()
	log := logger.NewDefault("example-recipes")
	log.SetOutput(io.Discard)
	svc := New(store, testDirectory(), log)

	view, _ := svc.Create(context.Background(), "Scrambled Eggs", 2, "Whisk, then cook slowly.",
		[]recipe.CountableLine{{IngredientID: 1, Quantity: 4}}, nil)
	fmt.Println(view.Name, view.Countable[0].IngredientName)
	// Output:
	// Scrambled Eggs Egg
}
