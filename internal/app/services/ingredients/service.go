// Package ingredients implements the ingredient catalog service: ingredients
// with shelf life and countability, plus the tag vocabulary they reference.
package ingredients

import (
	"context"
	"fmt"
	"strings"

	"github.com/pantrylab/recipehub/internal/app/domain/ingredient"
	"github.com/pantrylab/recipehub/internal/app/storage"
	"github.com/pantrylab/recipehub/pkg/logger"
)

// DuplicateNameError reports a unique-name conflict on creation. Handlers
// map it to 409.
type DuplicateNameError struct {
	Kind string
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s '%s' already exists.", e.Kind, e.Name)
}

// Service manages the ingredient catalog and its tags.
type Service struct {
	store storage.IngredientStore
	log   *logger.Logger
}

// New constructs an ingredient service.
func New(store storage.IngredientStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("ingredients")
	}
	return &Service{
		store: store,
		log:   log,
	}
}

// CreateIngredient validates and stores a new ingredient. Every referenced
// tag must already exist.
func (s *Service) CreateIngredient(ctx context.Context, name string, shelfLife *int, countability string, tagIDs []int64) (ingredient.Ingredient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ingredient.Ingredient{}, fmt.Errorf("ingredient_name is required")
	}

	kind := ingredient.Countability(strings.ToLower(strings.TrimSpace(countability)))
	if !kind.Valid() {
		return ingredient.Ingredient{}, fmt.Errorf("countability must be %q or %q", ingredient.Countable, ingredient.Uncountable)
	}
	if shelfLife != nil && *shelfLife < 0 {
		return ingredient.Ingredient{}, fmt.Errorf("estimated_shelf_life must not be negative")
	}

	if len(tagIDs) > 0 {
		known, err := s.tagIDSet(ctx)
		if err != nil {
			return ingredient.Ingredient{}, err
		}
		for _, id := range tagIDs {
			if _, ok := known[id]; !ok {
				return ingredient.Ingredient{}, fmt.Errorf("ingredient tag %d does not exist", id)
			}
		}
	}

	if _, err := s.store.GetIngredientByName(ctx, name); err == nil {
		return ingredient.Ingredient{}, &DuplicateNameError{Kind: "Ingredient", Name: name}
	}

	if tagIDs == nil {
		tagIDs = []int64{}
	}
	created, err := s.store.CreateIngredient(ctx, ingredient.Ingredient{
		Name:               name,
		EstimatedShelfLife: shelfLife,
		Countability:       kind,
		TagIDs:             tagIDs,
	})
	if err != nil {
		return ingredient.Ingredient{}, err
	}

	s.log.WithField("ingredient_id", created.ID).
		WithField("name", created.Name).
		Info("ingredient created")
	return created, nil
}

// GetIngredient returns one ingredient by id.
func (s *Service) GetIngredient(ctx context.Context, id int64) (ingredient.Ingredient, error) {
	return s.store.GetIngredient(ctx, id)
}

// ListIngredients returns all ingredients ordered by id.
func (s *Service) ListIngredients(ctx context.Context) ([]ingredient.Ingredient, error) {
	return s.store.ListIngredients(ctx)
}

// CreateTag stores a new ingredient tag.
func (s *Service) CreateTag(ctx context.Context, name string) (ingredient.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ingredient.Tag{}, fmt.Errorf("ingredient_tag_name is required")
	}

	if _, err := s.store.GetTagByName(ctx, name); err == nil {
		return ingredient.Tag{}, &DuplicateNameError{Kind: "Ingredient tag", Name: name}
	}

	created, err := s.store.CreateTag(ctx, ingredient.Tag{Name: name})
	if err != nil {
		return ingredient.Tag{}, err
	}

	s.log.WithField("tag_id", created.ID).
		WithField("name", created.Name).
		Info("ingredient tag created")
	return created, nil
}

// ListTags returns all tags ordered by id.
func (s *Service) ListTags(ctx context.Context) ([]ingredient.Tag, error) {
	return s.store.ListTags(ctx)
}

func (s *Service) tagIDSet(ctx context.Context) (map[int64]struct{}, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	set := make(map[int64]struct{}, len(tags))
	for _, tag := range tags {
		set[tag.ID] = struct{}{}
	}
	return set, nil
}
