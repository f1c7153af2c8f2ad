package custpricing

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/helloword214/zmstore-pos-sub006/internal/common"
	"github.com/helloword214/zmstore-pos-sub006/internal/rules"
)

// Writer captures the datastore write the admin endpoint requires.
type Writer interface {
	InsertPriceRule(ctx context.Context, row Row) (int64, error)
}

// Handler serves the sourced-rule inspection endpoint cashiers use to answer
// "why did this customer get that price", plus the admin create endpoint.
type Handler struct {
	Svc      *Service
	Writer   Writer
	Validate *validator.Validate
}

// List handles GET /customers/{customerId}/rules. The response carries the
// rules as the engine sees them right now, already converted from rows.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "pricing service not configured", nil)
		return
	}
	customerID, err := strconv.ParseInt(chi.URLParam(r, "customerId"), 10, 64)
	if err != nil || customerID <= 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid customer id", nil)
		return
	}
	ruleSet, err := h.Svc.RulesNow(r.Context(), customerID)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load customer rules", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": ruleSet})
}

// CreateInput is the admin payload for a new customer pricing rule.
type CreateInput struct {
	ProductID int64      `json:"productId" validate:"required,gt=0"`
	UnitKind  string     `json:"unitKind" validate:"required,oneof=RETAIL PACK"`
	Mode      string     `json:"mode" validate:"required,oneof=FIXED_PRICE FIXED_DISCOUNT PERCENT_DISCOUNT"`
	Value     float64    `json:"value" validate:"gte=0"`
	StartsAt  *time.Time `json:"startsAt"`
	EndsAt    *time.Time `json:"endsAt"`
}

// Create handles POST /customers/{customerId}/rules. New rules affect quotes
// and future checkouts immediately; frozen orders are untouched by design of
// the resolution cascade, not by anything this endpoint does.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Writer == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "rule writer not configured", nil)
		return
	}
	customerID, err := strconv.ParseInt(chi.URLParam(r, "customerId"), 10, 64)
	if err != nil || customerID <= 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid customer id", nil)
		return
	}
	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(in); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid rule", err.Error())
			return
		}
	}
	if in.StartsAt != nil && in.EndsAt != nil && in.EndsAt.Before(*in.StartsAt) {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "endsAt precedes startsAt", nil)
		return
	}
	row := Row{
		CustomerID: customerID,
		ProductID:  in.ProductID,
		UnitKind:   rules.UnitKind(in.UnitKind),
		Mode:       Mode(in.Mode),
		Value:      in.Value,
		Active:     true,
		StartsAt:   in.StartsAt,
		EndsAt:     in.EndsAt,
	}
	id, err := h.Writer.InsertPriceRule(r.Context(), row)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create rule", nil)
		return
	}
	row.ID = id
	common.JSON(w, http.StatusCreated, map[string]any{"data": map[string]any{
		"id":         row.ID,
		"customerId": row.CustomerID,
		"productId":  row.ProductID,
		"unitKind":   row.UnitKind,
		"mode":       row.Mode,
		"value":      row.Value,
		"active":     row.Active,
		"startsAt":   row.StartsAt,
		"endsAt":     row.EndsAt,
	}})
}
