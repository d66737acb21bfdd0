package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/ironkart/ironkart/internal/domain/catalog"
)

// productPayload is the wire shape for products, shared by reads and admin
// writes.
type productPayload struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Category       string            `json:"category"`
	Price          decimal.Decimal   `json:"price"`
	OriginalPrice  *decimal.Decimal  `json:"originalPrice,omitempty"`
	Image          string            `json:"image"`
	Images         []string          `json:"images,omitempty"`
	Description    string            `json:"description"`
	Specifications map[string]string `json:"specifications,omitempty"`
	InStock        bool              `json:"inStock"`
	Featured       bool              `json:"featured"`
}

func toProductPayload(p catalog.Product) productPayload {
	return productPayload{
		ID:             p.ID,
		Name:           p.Name,
		Category:       p.Category,
		Price:          p.Price,
		OriginalPrice:  p.OriginalPrice,
		Image:          p.Image,
		Images:         p.Images,
		Description:    p.Description,
		Specifications: p.Specifications,
		InStock:        p.InStock,
		Featured:       p.Featured,
	}
}

func (pl productPayload) toDomain() catalog.Product {
	return catalog.Product{
		ID:             pl.ID,
		Name:           pl.Name,
		Category:       pl.Category,
		Price:          pl.Price,
		OriginalPrice:  pl.OriginalPrice,
		Image:          pl.Image,
		Images:         pl.Images,
		Description:    pl.Description,
		Specifications: pl.Specifications,
		InStock:        pl.InStock,
		Featured:       pl.Featured,
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := catalog.Filter{
		Category: q.Get("category"),
		Featured: q.Get("featured") == "true",
		Deals:    q.Get("deals") == "true",
		Query:    q.Get("q"),
	}

	products, err := h.products.List(r.Context(), filter)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	out := make([]productPayload, len(products))
	for i, p := range products {
		out[i] = toProductPayload(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductPayload(*p))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var pl productPayload
	if err := decodeJSON(r, &pl); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p := pl.toDomain()
	if err := p.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.products.Create(r.Context(), &p); err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductPayload(p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var pl productPayload
	if err := decodeJSON(r, &pl); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	pl.ID = chi.URLParam(r, "id")

	p := pl.toDomain()
	if err := p.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.products.Update(r.Context(), &p); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductPayload(p))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
