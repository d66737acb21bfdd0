package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/ironkart/ironkart/internal/domain/cart"
	"github.com/ironkart/ironkart/internal/domain/catalog"
	"github.com/ironkart/ironkart/internal/domain/pricing"
)

type cartItemPayload struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Category  string          `json:"category,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type cartPayload struct {
	Items     []cartItemPayload `json:"items"`
	ItemCount int               `json:"itemCount"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
}

func toCartPayload(c *cart.Cart) cartPayload {
	items := c.Items()
	out := cartPayload{
		Items:     make([]cartItemPayload, len(items)),
		ItemCount: c.ItemCount(),
		Subtotal:  c.Subtotal(),
	}
	for i, li := range items {
		out.Items[i] = cartItemPayload{
			ProductID: li.Product.ID,
			Name:      li.Product.Name,
			Category:  li.Product.Category,
			Price:     li.Product.Price,
			Image:     li.Product.Image,
			Quantity:  li.Quantity,
			Subtotal:  li.Subtotal(),
		}
	}
	return out
}

func sessionID(r *http.Request) string {
	return r.Header.Get(SessionHeader)
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	c := h.carts.Get(r.Context(), sessionID(r))
	writeJSON(w, http.StatusOK, toCartPayload(c))
}

type addCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	p, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.serverError(w, r, err)
		return
	}
	if !p.InStock {
		writeError(w, http.StatusConflict, "product is out of stock")
		return
	}

	snapshot := cart.ProductSnapshot{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price,
		Image:    p.Image,
	}
	if err := h.carts.AddItem(r.Context(), sessionID(r), snapshot, req.Quantity); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c := h.carts.Get(r.Context(), sessionID(r))
	writeJSON(w, http.StatusOK, toCartPayload(c))
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID := chi.URLParam(r, "productID")
	if err := h.carts.UpdateQuantity(r.Context(), sessionID(r), productID, req.Quantity); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c := h.carts.Get(r.Context(), sessionID(r))
	writeJSON(w, http.StatusOK, toCartPayload(c))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	if err := h.carts.RemoveItem(r.Context(), sessionID(r), productID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c := h.carts.Get(r.Context(), sessionID(r))
	writeJSON(w, http.StatusOK, toCartPayload(c))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), sessionID(r)); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type quotePayload struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// quoteCart prices the session's cart for the given delivery state without
// placing an order.
func (h *Handler) quoteCart(w http.ResponseWriter, r *http.Request) {
	c := h.carts.Get(r.Context(), sessionID(r))

	items := c.Items()
	lines := make([]pricing.Line, len(items))
	for i, li := range items {
		lines[i] = pricing.Line{ProductID: li.Product.ID, Subtotal: li.Subtotal()}
	}

	q := h.pricing.QuoteCart(r.Context(), lines, r.URL.Query().Get("state"))
	writeJSON(w, http.StatusOK, quotePayload{
		Subtotal: q.Subtotal,
		Shipping: q.Shipping,
		Tax:      q.Tax,
		Total:    q.Total,
	})
}
