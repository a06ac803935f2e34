package httpapi

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pantrylab/recipehub/internal/app/domain/recipe"
	"github.com/pantrylab/recipehub/internal/app/services/recipes"
)

type recipesHandler struct {
	svc *recipes.Service
}

// NewRecipesHandler returns the recipe service router.
func NewRecipesHandler(svc *recipes.Service) http.Handler {
	r := newRouter()
	(&recipesHandler{svc: svc}).routes(r)
	return r
}

func (h *recipesHandler) routes(r *mux.Router) {
	r.HandleFunc("/recipes/", h.create).Methods(http.MethodPost)
	r.HandleFunc("/recipes/", h.list).Methods(http.MethodGet)
	r.HandleFunc("/recipes/{id:[0-9]+}", h.get).Methods(http.MethodGet)
}

// Input lines accept ingredient_name alongside ingredient_id; the name is
// ignored on write and resolved through the directory on read.
type countableLineIn struct {
	IngredientID   int64   `json:"ingredient_id"`
	IngredientName string  `json:"ingredient_name"`
	Quantity       float64 `json:"quantity"`
}

type uncountableLineIn struct {
	IngredientID   int64   `json:"ingredient_id"`
	IngredientName string  `json:"ingredient_name"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
}

func (h *recipesHandler) create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name            string              `json:"recipe_name"`
		DefaultServings int                 `json:"default_servings"`
		Instructions    string              `json:"instructions"`
		Countable       []countableLineIn   `json:"countable_ingredients"`
		Uncountable     []uncountableLineIn `json:"uncountable_ingredients"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	countable := make([]recipe.CountableLine, 0, len(payload.Countable))
	for _, line := range payload.Countable {
		countable = append(countable, recipe.CountableLine{
			IngredientID: line.IngredientID,
			Quantity:     line.Quantity,
		})
	}
	uncountable := make([]recipe.UncountableLine, 0, len(payload.Uncountable))
	for _, line := range payload.Uncountable {
		uncountable = append(uncountable, recipe.UncountableLine{
			IngredientID: line.IngredientID,
			Quantity:     line.Quantity,
			Unit:         recipe.Unit(line.Unit),
		})
	}

	view, err := h.svc.Create(r.Context(), payload.Name, payload.DefaultServings, payload.Instructions, countable, uncountable)
	if err != nil {
		var dup *recipes.DuplicateNameError
		switch {
		case errors.As(err, &dup):
			writeError(w, http.StatusConflict, err)
		case errors.Is(err, recipes.ErrDirectoryUnavailable):
			writeError(w, http.StatusBadGateway, err)
		default:
			writeError(w, http.StatusBadRequest, err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *recipesHandler) list(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.List(r.Context())
	if err != nil {
		if errors.Is(err, recipes.ErrDirectoryUnavailable) {
			writeError(w, http.StatusBadGateway, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *recipesHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	view, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, recipes.ErrDirectoryUnavailable) {
			writeError(w, http.StatusBadGateway, err)
			return
		}
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
