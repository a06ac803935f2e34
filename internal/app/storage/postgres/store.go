package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/pantrylab/recipehub/internal/app/domain/ingredient"
	"github.com/pantrylab/recipehub/internal/app/domain/recipe"
	"github.com/pantrylab/recipehub/internal/app/storage"
)

// Store implements the ingredient and recipe storage interfaces backed by
// PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.IngredientStore = (*Store)(nil)
var _ storage.RecipeStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- IngredientStore ----------------------------------------------------------

func (s *Store) CreateIngredient(ctx context.Context, ing ingredient.Ingredient) (ingredient.Ingredient, error) {
	tagIDsJSON, err := json.Marshal(ing.TagIDs)
	if err != nil {
		return ingredient.Ingredient{}, err
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO ingredients (name, estimated_shelf_life, countability, tag_ids)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, ing.Name, ing.EstimatedShelfLife, ing.Countability, tagIDsJSON)
	if err := row.Scan(&ing.ID); err != nil {
		return ingredient.Ingredient{}, err
	}
	return ing, nil
}

func (s *Store) GetIngredient(ctx context.Context, id int64) (ingredient.Ingredient, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, estimated_shelf_life, countability, tag_ids
		FROM ingredients
		WHERE id = $1
	`, id)
	return scanIngredient(row)
}

func (s *Store) GetIngredientByName(ctx context.Context, name string) (ingredient.Ingredient, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, estimated_shelf_life, countability, tag_ids
		FROM ingredients
		WHERE name = $1
	`, name)
	return scanIngredient(row)
}

func (s *Store) ListIngredients(ctx context.Context) ([]ingredient.Ingredient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, estimated_shelf_life, countability, tag_ids
		FROM ingredients
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ingredient.Ingredient
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, ing)
	}
	return result, rows.Err()
}

func (s *Store) CreateTag(ctx context.Context, tag ingredient.Tag) (ingredient.Tag, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO ingredient_tags (name)
		VALUES ($1)
		RETURNING id
	`, tag.Name)
	if err := row.Scan(&tag.ID); err != nil {
		return ingredient.Tag{}, err
	}
	return tag, nil
}

func (s *Store) GetTagByName(ctx context.Context, name string) (ingredient.Tag, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name
		FROM ingredient_tags
		WHERE name = $1
	`, name)

	var tag ingredient.Tag
	if err := row.Scan(&tag.ID, &tag.Name); err != nil {
		return ingredient.Tag{}, err
	}
	return tag, nil
}

func (s *Store) ListTags(ctx context.Context) ([]ingredient.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name
		FROM ingredient_tags
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ingredient.Tag
	for rows.Next() {
		var tag ingredient.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, err
		}
		result = append(result, tag)
	}
	return result, rows.Err()
}

// --- RecipeStore --------------------------------------------------------------

func (s *Store) CreateRecipe(ctx context.Context, rec recipe.Recipe) (recipe.Recipe, error) {
	countableJSON, err := json.Marshal(rec.Countable)
	if err != nil {
		return recipe.Recipe{}, err
	}
	uncountableJSON, err := json.Marshal(rec.Uncountable)
	if err != nil {
		return recipe.Recipe{}, err
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO recipes (name, default_servings, instructions, countable_ingredients, uncountable_ingredients)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, rec.Name, rec.DefaultServings, rec.Instructions, countableJSON, uncountableJSON)
	if err := row.Scan(&rec.ID); err != nil {
		return recipe.Recipe{}, err
	}
	return rec, nil
}

func (s *Store) GetRecipe(ctx context.Context, id int64) (recipe.Recipe, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, default_servings, instructions, countable_ingredients, uncountable_ingredients
		FROM recipes
		WHERE id = $1
	`, id)
	return scanRecipe(row)
}

func (s *Store) GetRecipeByName(ctx context.Context, name string) (recipe.Recipe, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, default_servings, instructions, countable_ingredients, uncountable_ingredients
		FROM recipes
		WHERE name = $1
	`, name)
	return scanRecipe(row)
}

func (s *Store) ListRecipes(ctx context.Context) ([]recipe.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, default_servings, instructions, countable_ingredients, uncountable_ingredients
		FROM recipes
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []recipe.Recipe
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// --- Helpers ------------------------------------------------------------------

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIngredient(row rowScanner) (ingredient.Ingredient, error) {
	var (
		ing       ingredient.Ingredient
		shelfLife sql.NullInt64
		tagIDsRaw []byte
	)
	if err := row.Scan(&ing.ID, &ing.Name, &shelfLife, &ing.Countability, &tagIDsRaw); err != nil {
		return ingredient.Ingredient{}, err
	}
	if shelfLife.Valid {
		v := int(shelfLife.Int64)
		ing.EstimatedShelfLife = &v
	}
	if len(tagIDsRaw) > 0 {
		_ = json.Unmarshal(tagIDsRaw, &ing.TagIDs)
	}
	if ing.TagIDs == nil {
		ing.TagIDs = []int64{}
	}
	return ing, nil
}

func scanRecipe(row rowScanner) (recipe.Recipe, error) {
	var (
		rec            recipe.Recipe
		countableRaw   []byte
		uncountableRaw []byte
	)
	if err := row.Scan(&rec.ID, &rec.Name, &rec.DefaultServings, &rec.Instructions, &countableRaw, &uncountableRaw); err != nil {
		return recipe.Recipe{}, err
	}
	if len(countableRaw) > 0 {
		_ = json.Unmarshal(countableRaw, &rec.Countable)
	}
	if len(uncountableRaw) > 0 {
		_ = json.Unmarshal(uncountableRaw, &rec.Uncountable)
	}
	if rec.Countable == nil {
		rec.Countable = []recipe.CountableLine{}
	}
	if rec.Uncountable == nil {
		rec.Uncountable = []recipe.UncountableLine{}
	}
	return rec, nil
}
