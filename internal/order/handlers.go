package order

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/helloword214/zmstore-pos-sub006/internal/common"
	"github.com/helloword214/zmstore-pos-sub006/internal/obs"
)

// Loader loads persisted orders for the read endpoints.
type Loader interface {
	GetOrderWithItems(ctx context.Context, id int64) (Order, error)
}

// Handler serves the order read surface.
type Handler struct {
	Store    Loader
	Resolver Resolver
}

// Receipt handles GET /orders/{orderId}/receipt. The total and breakdown come
// from the freeze-first cascade, never from re-running today's rules.
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil || id <= 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid order id", nil)
		return
	}
	o, err := h.Store.GetOrderWithItems(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load order", nil)
		return
	}
	final, err := h.Resolver.ResolveFinalTotal(r.Context(), o)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to resolve order total", nil)
		return
	}
	if obs.OrderResolutionTotal != nil {
		obs.OrderResolutionTotal.WithLabelValues(string(final.Basis)).Inc()
	}
	view, err := h.Resolver.DiscountView(r.Context(), o)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to build receipt", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"orderId":    o.ID,
		"customerId": o.CustomerID,
		"createdAt":  o.CreatedAt,
		"finalTotal": final.Total,
		"basis":      final.Basis,
		"breakdown":  view,
	}})
}

// Total handles GET /orders/{orderId}/total, the bare resolved figure used by
// the credit ledger.
func (h *Handler) Total(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil || id <= 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid order id", nil)
		return
	}
	o, err := h.Store.GetOrderWithItems(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load order", nil)
		return
	}
	final, err := h.Resolver.ResolveFinalTotal(r.Context(), o)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to resolve order total", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": final})
}
