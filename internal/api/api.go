// Package api exposes the storefront and admin HTTP endpoints.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/ironkart/ironkart/internal/domain/cart"
	"github.com/ironkart/ironkart/internal/domain/catalog"
	"github.com/ironkart/ironkart/internal/domain/content"
	"github.com/ironkart/ironkart/internal/domain/order"
	"github.com/ironkart/ironkart/internal/domain/pricing"
	"github.com/ironkart/ironkart/internal/media"
	"github.com/ironkart/ironkart/internal/session"
)

// SessionHeader carries the anonymous storefront session ID on cart and
// checkout requests.
const SessionHeader = "X-Session-ID"

// Handler wires the domain services to HTTP routes.
type Handler struct {
	products   catalog.Repository
	categories catalog.CategoryRepository
	carts      *cart.Store
	pricing    *pricing.Resolver
	checkout   *order.Service
	orders     order.Repository
	settings   pricing.SettingsRepository
	about      content.Repository
	media      media.Store
	sessions   *session.Manager
}

// Config collects the Handler's collaborators.
type Config struct {
	Products   catalog.Repository
	Categories catalog.CategoryRepository
	Carts      *cart.Store
	Pricing    *pricing.Resolver
	Checkout   *order.Service
	Orders     order.Repository
	Settings   pricing.SettingsRepository
	About      content.Repository
	Media      media.Store
	Sessions   *session.Manager
}

// NewHandler creates the API handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		products:   cfg.Products,
		categories: cfg.Categories,
		carts:      cfg.Carts,
		pricing:    cfg.Pricing,
		checkout:   cfg.Checkout,
		orders:     cfg.Orders,
		settings:   cfg.Settings,
		about:      cfg.About,
		media:      cfg.Media,
		sessions:   cfg.Sessions,
	}
}

// Register mounts all API routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)
		r.Get("/categories", h.listCategories)
		r.Get("/about", h.getAbout)

		r.Group(func(r chi.Router) {
			r.Use(h.requireSession)
			r.Get("/cart", h.getCart)
			r.Post("/cart", h.addCartItem)
			r.Delete("/cart", h.clearCart)
			r.Get("/cart/quote", h.quoteCart)
			r.Patch("/cart/{productID}", h.updateCartItem)
			r.Delete("/cart/{productID}", h.removeCartItem)
			r.Post("/checkout", h.postCheckout)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.login)

			r.Group(func(r chi.Router) {
				r.Use(h.requireAdmin)
				r.Post("/logout", h.logout)

				r.Post("/products", h.createProduct)
				r.Put("/products/{id}", h.updateProduct)
				r.Delete("/products/{id}", h.deleteProduct)

				r.Post("/categories", h.createCategory)
				r.Put("/categories/{id}", h.updateCategory)
				r.Delete("/categories/{id}", h.deleteCategory)

				r.Get("/orders", h.listOrders)
				r.Get("/orders/{id}", h.getOrder)
				r.Patch("/orders/{id}/status", h.updateOrderStatus)

				r.Get("/settings/tax", h.listTaxSettings)
				r.Post("/settings/tax", h.createTaxSetting)
				r.Delete("/settings/tax/{id}", h.deleteTaxSetting)
				r.Get("/settings/shipping", h.listShippingSettings)
				r.Post("/settings/shipping", h.createShippingSetting)
				r.Delete("/settings/shipping/{id}", h.deleteShippingSetting)
				r.Get("/settings/global", h.listGlobalSettings)
				r.Put("/settings/global", h.upsertGlobalSetting)

				r.Put("/about", h.putAbout)

				r.Post("/images", h.uploadImage)
				r.Delete("/images", h.deleteImage)
			})
		})
	})
}

// errorResponse is the uniform error envelope.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Code: status, Message: message})
}

// serverError logs the cause and responds with a generic 500 so internals do
// not leak to clients.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}

// requireSession rejects cart and checkout requests without a session header.
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(SessionHeader) == "" {
			writeError(w, http.StatusBadRequest, "missing "+SessionHeader+" header")
			return
		}
		next.ServeHTTP(w, r)
	})
}
