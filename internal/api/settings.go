package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ironkart/ironkart/internal/domain/pricing"
)

type taxSettingPayload struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"productId,omitempty"`
	State         string          `json:"state"`
	TaxPercentage decimal.Decimal `json:"taxPercentage"`
	IsDefault     bool            `json:"isDefault"`
}

func (h *Handler) listTaxSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.ListTax(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	out := make([]taxSettingPayload, len(settings))
	for i, s := range settings {
		out[i] = taxSettingPayload{
			ID:            s.ID,
			ProductID:     s.ProductID,
			State:         s.State,
			TaxPercentage: s.TaxPercentage,
			IsDefault:     s.IsDefault,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createTaxSetting(w http.ResponseWriter, r *http.Request) {
	var pl taxSettingPayload
	if err := decodeJSON(r, &pl); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s := pricing.TaxSetting{
		ID:            uuid.New().String(),
		ProductID:     pl.ProductID,
		State:         pl.State,
		TaxPercentage: pl.TaxPercentage,
		IsDefault:     pl.IsDefault,
	}
	if err := s.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.settings.CreateTax(r.Context(), &s); err != nil {
		h.serverError(w, r, err)
		return
	}
	pl.ID = s.ID
	writeJSON(w, http.StatusCreated, pl)
}

func (h *Handler) deleteTaxSetting(w http.ResponseWriter, r *http.Request) {
	if err := h.settings.DeleteTax(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, pricing.ErrSettingNotFound) {
			writeError(w, http.StatusNotFound, "setting not found")
			return
		}
		h.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type shippingSettingPayload struct {
	ID                    string          `json:"id"`
	ProductID             string          `json:"productId,omitempty"`
	State                 string          `json:"state"`
	ShippingCharge        decimal.Decimal `json:"shippingCharge"`
	FreeShippingThreshold decimal.Decimal `json:"freeShippingThreshold"`
	IsDefault             bool            `json:"isDefault"`
}

func (h *Handler) listShippingSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.ListShipping(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	out := make([]shippingSettingPayload, len(settings))
	for i, s := range settings {
		out[i] = shippingSettingPayload{
			ID:                    s.ID,
			ProductID:             s.ProductID,
			State:                 s.State,
			ShippingCharge:        s.ShippingCharge,
			FreeShippingThreshold: s.FreeShippingThreshold,
			IsDefault:             s.IsDefault,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createShippingSetting(w http.ResponseWriter, r *http.Request) {
	var pl shippingSettingPayload
	if err := decodeJSON(r, &pl); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s := pricing.ShippingSetting{
		ID:                    uuid.New().String(),
		ProductID:             pl.ProductID,
		State:                 pl.State,
		ShippingCharge:        pl.ShippingCharge,
		FreeShippingThreshold: pl.FreeShippingThreshold,
		IsDefault:             pl.IsDefault,
	}
	if err := s.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.settings.CreateShipping(r.Context(), &s); err != nil {
		h.serverError(w, r, err)
		return
	}
	pl.ID = s.ID
	writeJSON(w, http.StatusCreated, pl)
}

func (h *Handler) deleteShippingSetting(w http.ResponseWriter, r *http.Request) {
	if err := h.settings.DeleteShipping(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, pricing.ErrSettingNotFound) {
			writeError(w, http.StatusNotFound, "setting not found")
			return
		}
		h.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type globalSettingPayload struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

func (h *Handler) listGlobalSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.ListGlobal(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	out := make([]globalSettingPayload, len(settings))
	for i, s := range settings {
		out[i] = globalSettingPayload{
			Key:         s.Key,
			Value:       s.Value,
			Description: s.Description,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) upsertGlobalSetting(w http.ResponseWriter, r *http.Request) {
	var pl globalSettingPayload
	if err := decodeJSON(r, &pl); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(pl.Key) == "" {
		writeError(w, http.StatusBadRequest, "key must not be empty")
		return
	}

	s := pricing.GlobalSetting{
		Key:         pl.Key,
		Value:       pl.Value,
		Description: pl.Description,
	}
	if err := h.settings.UpsertGlobal(r.Context(), &s); err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pl)
}
