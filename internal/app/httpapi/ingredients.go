package httpapi

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pantrylab/recipehub/internal/app/services/ingredients"
)

type ingredientsHandler struct {
	svc *ingredients.Service
}

// NewIngredientsHandler returns the ingredient service router.
func NewIngredientsHandler(svc *ingredients.Service) http.Handler {
	r := newRouter()
	(&ingredientsHandler{svc: svc}).routes(r)
	return r
}

func (h *ingredientsHandler) routes(r *mux.Router) {
	r.HandleFunc("/ingredients/", h.create).Methods(http.MethodPost)
	r.HandleFunc("/ingredients/", h.list).Methods(http.MethodGet)
	r.HandleFunc("/ingredients/tags/", h.createTag).Methods(http.MethodPost)
	r.HandleFunc("/ingredients/tags/", h.listTags).Methods(http.MethodGet)
	r.HandleFunc("/ingredients/{id:[0-9]+}", h.get).Methods(http.MethodGet)
}

func (h *ingredientsHandler) create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name         string  `json:"ingredient_name"`
		ShelfLife    *int    `json:"estimated_shelf_life"`
		Countability string  `json:"countability"`
		TagIDs       []int64 `json:"ingredienttag_ids"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	created, err := h.svc.CreateIngredient(r.Context(), payload.Name, payload.ShelfLife, payload.Countability, payload.TagIDs)
	if err != nil {
		var dup *ingredients.DuplicateNameError
		if errors.As(err, &dup) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ingredientsHandler) list(w http.ResponseWriter, r *http.Request) {
	ings, err := h.svc.ListIngredients(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, ings)
}

func (h *ingredientsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ing, err := h.svc.GetIngredient(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, ing)
}

func (h *ingredientsHandler) createTag(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name string `json:"ingredient_tag_name"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	created, err := h.svc.CreateTag(r.Context(), payload.Name)
	if err != nil {
		var dup *ingredients.DuplicateNameError
		if errors.As(err, &dup) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ingredientsHandler) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.ListTags(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}
