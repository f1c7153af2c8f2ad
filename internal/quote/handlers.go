// Package quote exposes the read-only pricing surface: live cart quotes and
// the purchase-time price check. Both funnel through the same evaluation as
// checkout so preview and enforcement cannot diverge.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	validator "github.com/go-playground/validator/v10"

	"github.com/helloword214/zmstore-pos-sub006/internal/checkout"
	"github.com/helloword214/zmstore-pos-sub006/internal/common"
	"github.com/helloword214/zmstore-pos-sub006/internal/obs"
	"github.com/helloword214/zmstore-pos-sub006/internal/pricing"
)

// Pricer evaluates a submitted cart against the customer's rules.
type Pricer interface {
	Evaluate(ctx context.Context, in checkout.Input) (pricing.Cart, pricing.Result, error)
}

// Handler serves the quote endpoints.
type Handler struct {
	Pricer   Pricer
	Validate *validator.Validate
}

// QuoteResponse is the body of a successful quote.
type QuoteResponse struct {
	Subtotal      float64                   `json:"subtotal"`
	DiscountTotal float64                   `json:"discountTotal"`
	Total         float64                   `json:"total"`
	Discounts     []pricing.AppliedDiscount `json:"discounts"`
	UnitPrices    map[string]float64        `json:"unitPrices"`
}

// CheckResponse reports whether the submitted prices pass the guard.
type CheckResponse struct {
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Quote handles POST /quote. Submitted unit prices are ignored for quoting;
// the response carries the engine's prices.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	// Zero the submitted prices so a stale kiosk cart cannot fail the quote.
	for i := range in.Items {
		in.Items[i].UnitPrice = 0
	}
	_, res, err := h.Pricer.Evaluate(r.Context(), in)
	if err != nil {
		countEvaluation("quote", "error")
		writeError(w, err)
		return
	}
	countEvaluation("quote", "ok")
	common.JSON(w, http.StatusOK, map[string]any{"data": QuoteResponse{
		Subtotal:      res.Subtotal,
		DiscountTotal: res.DiscountTotal,
		Total:         res.Total,
		Discounts:     res.Discounts,
		UnitPrices:    res.UnitPrices,
	}})
}

// Check handles POST /price-check. A guard violation is a 200 with ok=false
// so kiosks can render it inline; everything else is an error.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	_, _, err := h.Pricer.Evaluate(r.Context(), in)
	if err != nil {
		var appErr *common.AppError
		if errors.As(err, &appErr) && appErr.Code == "PRICE_ABOVE_ALLOWED" {
			countEvaluation("check", "reject")
			common.JSON(w, http.StatusOK, map[string]any{"data": CheckResponse{
				OK:      false,
				Code:    appErr.Code,
				Message: appErr.Message,
			}})
			return
		}
		countEvaluation("check", "error")
		writeError(w, err)
		return
	}
	countEvaluation("check", "ok")
	common.JSON(w, http.StatusOK, map[string]any{"data": CheckResponse{OK: true}})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (checkout.Input, bool) {
	var in checkout.Input
	if h.Pricer == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote handler not configured", nil)
		return in, false
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return in, false
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(in); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid cart", err.Error())
			return in, false
		}
	}
	return in, true
}

func countEvaluation(surface, result string) {
	if obs.QuoteEvaluationsTotal != nil {
		obs.QuoteEvaluationsTotal.WithLabelValues(surface, result).Inc()
	}
}

func writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusBadRequest
		}
		common.JSONError(w, status, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
}
