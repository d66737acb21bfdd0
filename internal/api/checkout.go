package api

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/ironkart/ironkart/internal/domain/order"
)

type checkoutRequest struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	Pincode    string `json:"pincode"`
	Notes      string `json:"notes"`
	AgreeTerms bool   `json:"agreeTerms"`
}

type orderItemPayload struct {
	ProductID    string          `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductPrice decimal.Decimal `json:"productPrice"`
	Quantity     int             `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type orderPayload struct {
	ID            string             `json:"id"`
	OrderNumber   string             `json:"orderNumber"`
	Items         []orderItemPayload `json:"items"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Shipping      decimal.Decimal    `json:"shipping"`
	Tax           decimal.Decimal    `json:"tax"`
	Total         decimal.Decimal    `json:"total"`
	Status        string             `json:"status"`
	PaymentStatus string             `json:"paymentStatus"`
	PaymentMethod string             `json:"paymentMethod,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
}

func toOrderPayload(o order.Order) orderPayload {
	out := orderPayload{
		ID:            o.ID,
		OrderNumber:   o.Number,
		Items:         make([]orderItemPayload, len(o.Items)),
		Subtotal:      o.Subtotal,
		Shipping:      o.Shipping,
		Tax:           o.Tax,
		Total:         o.Total,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		PaymentMethod: o.PaymentMethod,
		Notes:         o.Notes,
		CreatedAt:     o.CreatedAt,
	}
	for i, it := range o.Items {
		out.Items[i] = orderItemPayload{
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			ProductPrice: it.ProductPrice,
			Quantity:     it.Quantity,
			Subtotal:     it.Subtotal,
		}
	}
	return out
}

func (h *Handler) postCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.checkout.Checkout(r.Context(), order.CheckoutRequest{
		SessionID:  sessionID(r),
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
		Pincode:    req.Pincode,
		Notes:      req.Notes,
		AgreeTerms: req.AgreeTerms,
	})
	if err != nil {
		var missing *order.MissingFieldError
		switch {
		case errors.As(err, &missing):
			writeError(w, http.StatusBadRequest, missing.Error())
		case errors.Is(err, order.ErrTermsNotAccepted):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, order.ErrEmptyCart):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, order.ErrPaymentDeclined):
			writeError(w, http.StatusPaymentRequired, "payment was declined")
		default:
			h.serverError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, toOrderPayload(*o))
}
