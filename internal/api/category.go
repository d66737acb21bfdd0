package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/ironkart/ironkart/internal/domain/catalog"
)

type categoryPayload struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Image        string `json:"image,omitempty"`
	DisplayOrder int    `json:"displayOrder"`
}

func toCategoryPayload(c catalog.Category) categoryPayload {
	return categoryPayload{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		Image:        c.Image,
		DisplayOrder: c.DisplayOrder,
	}
}

func (pl categoryPayload) toDomain() catalog.Category {
	return catalog.Category{
		ID:           pl.ID,
		Name:         pl.Name,
		Description:  pl.Description,
		Image:        pl.Image,
		DisplayOrder: pl.DisplayOrder,
	}
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	out := make([]categoryPayload, len(categories))
	for i, c := range categories {
		out[i] = toCategoryPayload(c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var pl categoryPayload
	if err := decodeJSON(r, &pl); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c := pl.toDomain()
	if err := c.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.categories.Create(r.Context(), &c); err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryPayload(c))
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	var pl categoryPayload
	if err := decodeJSON(r, &pl); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	pl.ID = chi.URLParam(r, "id")

	c := pl.toDomain()
	if err := c.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.categories.Update(r.Context(), &c); err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryPayload(c))
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		h.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
