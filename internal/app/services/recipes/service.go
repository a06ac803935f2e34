// Package recipes implements the recipe service. Recipes reference
// ingredients by id; the ingredient catalog lives in a separate service and
// is consulted through a Directory for validation and name enrichment.
package recipes

import (
	"context"
	"fmt"
	"strings"

	"github.com/pantrylab/recipehub/internal/app/domain/ingredient"
	"github.com/pantrylab/recipehub/internal/app/domain/recipe"
	"github.com/pantrylab/recipehub/internal/app/storage"
	"github.com/pantrylab/recipehub/pkg/logger"
)

// DuplicateNameError reports a recipe name conflict. Handlers map it to 409.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("Recipe '%s' already exists.", e.Name)
}

// Service manages recipes.
type Service struct {
	store     storage.RecipeStore
	directory Directory
	log       *logger.Logger
}

// New constructs a recipe service.
func New(store storage.RecipeStore, directory Directory, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("recipes")
	}
	return &Service{
		store:     store,
		directory: directory,
		log:       log,
	}
}

// Create validates a recipe against the ingredient directory and stores it.
// Countable lines must reference countable ingredients and uncountable lines
// uncountable ones; the validation messages are part of the API contract.
func (s *Service) Create(ctx context.Context, name string, defaultServings int, instructions string, countable []recipe.CountableLine, uncountable []recipe.UncountableLine) (recipe.View, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return recipe.View{}, fmt.Errorf("recipe_name is required")
	}
	if defaultServings <= 0 {
		return recipe.View{}, fmt.Errorf("default_servings must be positive")
	}
	for _, line := range uncountable {
		if !line.Unit.Valid() {
			return recipe.View{}, fmt.Errorf("invalid measurement unit %q", line.Unit)
		}
	}

	entries, err := s.directory.Lookup(ctx)
	if err != nil {
		return recipe.View{}, err
	}

	for _, line := range countable {
		entry, ok := entries[line.IngredientID]
		if !ok {
			return recipe.View{}, fmt.Errorf("Countable ingredient ID %d does not exist.", line.IngredientID)
		}
		if entry.Countability != ingredient.Countable {
			return recipe.View{}, fmt.Errorf("Ingredient ID %d is uncountable.", line.IngredientID)
		}
	}
	for _, line := range uncountable {
		entry, ok := entries[line.IngredientID]
		if !ok {
			return recipe.View{}, fmt.Errorf("Uncountable ingredient ID %d does not exist.", line.IngredientID)
		}
		if entry.Countability != ingredient.Uncountable {
			return recipe.View{}, fmt.Errorf("Ingredient ID %d is countable.", line.IngredientID)
		}
	}

	if _, err := s.store.GetRecipeByName(ctx, name); err == nil {
		return recipe.View{}, &DuplicateNameError{Name: name}
	}

	if countable == nil {
		countable = []recipe.CountableLine{}
	}
	if uncountable == nil {
		uncountable = []recipe.UncountableLine{}
	}
	created, err := s.store.CreateRecipe(ctx, recipe.Recipe{
		Name:            name,
		DefaultServings: defaultServings,
		Instructions:    instructions,
		Countable:       countable,
		Uncountable:     uncountable,
	})
	if err != nil {
		return recipe.View{}, err
	}

	s.log.WithField("recipe_id", created.ID).
		WithField("name", created.Name).
		Info("recipe created")
	return viewOf(created, entries), nil
}

// Get returns one recipe with its ingredient names resolved.
func (s *Service) Get(ctx context.Context, id int64) (recipe.View, error) {
	rec, err := s.store.GetRecipe(ctx, id)
	if err != nil {
		return recipe.View{}, err
	}
	entries, err := s.directory.Lookup(ctx)
	if err != nil {
		return recipe.View{}, err
	}
	return viewOf(rec, entries), nil
}

// List returns all recipes with their ingredient names resolved. The
// directory is consulted once for the whole listing.
func (s *Service) List(ctx context.Context) ([]recipe.View, error) {
	recs, err := s.store.ListRecipes(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.directory.Lookup(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]recipe.View, 0, len(recs))
	for _, rec := range recs {
		views = append(views, viewOf(rec, entries))
	}
	return views, nil
}

// viewOf joins a recipe with directory names. Ids the directory does not
// know resolve to "Unknown" rather than failing the whole listing.
func viewOf(rec recipe.Recipe, entries map[int64]DirectoryEntry) recipe.View {
	view := recipe.View{
		ID:              rec.ID,
		Name:            rec.Name,
		DefaultServings: rec.DefaultServings,
		Instructions:    rec.Instructions,
		Countable:       make([]recipe.CountableLineView, 0, len(rec.Countable)),
		Uncountable:     make([]recipe.UncountableLineView, 0, len(rec.Uncountable)),
	}
	for _, line := range rec.Countable {
		view.Countable = append(view.Countable, recipe.CountableLineView{
			IngredientID:   line.IngredientID,
			IngredientName: directoryName(entries, line.IngredientID),
			Quantity:       line.Quantity,
		})
	}
	for _, line := range rec.Uncountable {
		view.Uncountable = append(view.Uncountable, recipe.UncountableLineView{
			IngredientID:   line.IngredientID,
			IngredientName: directoryName(entries, line.IngredientID),
			Quantity:       line.Quantity,
			Unit:           line.Unit,
		})
	}
	return view
}

func directoryName(entries map[int64]DirectoryEntry, id int64) string {
	if entry, ok := entries[id]; ok {
		return entry.Name
	}
	return "Unknown"
}
