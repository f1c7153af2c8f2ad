package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/helloword214/zmstore-pos-sub006/internal/common"
)

// Writer captures the datastore write the admin endpoint requires.
type Writer interface {
	InsertProduct(ctx context.Context, p Product) (int64, error)
}

// Handler serves product reads and the admin create endpoint.
type Handler struct {
	Svc      *Service
	Writer   Writer
	Validate *validator.Validate
}

// Get handles GET /products/{productId}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil || id <= 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	product, err := h.Svc.Product(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load product", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": product})
}

// CreateInput is the admin payload for a new product.
type CreateInput struct {
	Name            string  `json:"name" validate:"required"`
	CategoryID      string  `json:"categoryId"`
	BrandID         string  `json:"brandId"`
	SKU             string  `json:"sku"`
	RetailPrice     float64 `json:"retailPrice" validate:"gte=0"`
	PackPrice       float64 `json:"packPrice" validate:"gte=0"`
	AllowRetailSale bool    `json:"allowRetailSale"`
}

// Create handles POST /products.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Writer == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog writer not configured", nil)
		return
	}
	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(in); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid product", err.Error())
			return
		}
	}
	product := Product{
		Name:            in.Name,
		CategoryID:      in.CategoryID,
		BrandID:         in.BrandID,
		SKU:             in.SKU,
		RetailPrice:     in.RetailPrice,
		PackPrice:       in.PackPrice,
		AllowRetailSale: in.AllowRetailSale,
	}
	id, err := h.Writer.InsertProduct(r.Context(), product)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create product", nil)
		return
	}
	product.ID = id
	common.JSON(w, http.StatusCreated, map[string]any{"data": product})
}
