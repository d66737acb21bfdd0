package api

import (
	"net/http"
	"strings"

	"github.com/go-faster/errors"

	"github.com/ironkart/ironkart/internal/domain/content"
)

type aboutPayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// getAbout serves the about-page copy, falling back to the built-in default
// until an admin has saved one.
func (h *Handler) getAbout(w http.ResponseWriter, r *http.Request) {
	a, err := h.about.Get(r.Context())
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			def := content.Default()
			writeJSON(w, http.StatusOK, aboutPayload{Title: def.Title, Content: def.Content})
			return
		}
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, aboutPayload{Title: a.Title, Content: a.Content})
}

func (h *Handler) putAbout(w http.ResponseWriter, r *http.Request) {
	var pl aboutPayload
	if err := decodeJSON(r, &pl); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(pl.Title) == "" || strings.TrimSpace(pl.Content) == "" {
		writeError(w, http.StatusBadRequest, "title and content must not be empty")
		return
	}

	a := content.About{
		ID:      "default",
		Title:   pl.Title,
		Content: pl.Content,
	}
	if err := h.about.Upsert(r.Context(), &a); err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pl)
}
