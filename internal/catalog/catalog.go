// Package catalog exposes product base prices to the pricing engine's
// callers. The engine itself never fetches products; callers resolve the
// canonical base here before building a cart.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/helloword214/zmstore-pos-sub006/internal/money"
	"github.com/helloword214/zmstore-pos-sub006/internal/rules"
)

// ErrRetailNotAllowed is returned when a retail base price is requested for
// a product that may only be sold by the pack.
var ErrRetailNotAllowed = errors.New("product not allowed for retail sale")

// ErrNotFound is returned when the product does not exist.
var ErrNotFound = errors.New("product not found")

// Product carries the pricing-relevant slice of a catalog row.
type Product struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	CategoryID      string  `json:"categoryId"`
	BrandID         string  `json:"brandId"`
	SKU             string  `json:"sku"`
	RetailPrice     float64 `json:"retailPrice"`
	PackPrice       float64 `json:"packPrice"`
	AllowRetailSale bool    `json:"allowRetailSale"`
}

// BaseUnitPrice resolves the canonical undiscounted unit price for the unit
// kind: retail price per piece, pack (SRP) price per pack.
func (p Product) BaseUnitPrice(kind rules.UnitKind) (float64, error) {
	switch kind {
	case rules.UnitRetail:
		if !p.AllowRetailSale {
			return 0, ErrRetailNotAllowed
		}
		return money.ToNumber(p.RetailPrice), nil
	case rules.UnitPack:
		return money.ToNumber(p.PackPrice), nil
	default:
		return 0, fmt.Errorf("unknown unit kind %q", kind)
	}
}

// ProductStore captures the datastore read the service requires.
type ProductStore interface {
	GetProduct(ctx context.Context, id int64) (Product, error)
}

// Service serves product reads through a cache-aside Redis layer.
type Service struct {
	Store ProductStore
	Cache *Cache
}

// Product returns the product, preferring the cache.
func (s *Service) Product(ctx context.Context, id int64) (Product, error) {
	if s == nil || s.Store == nil {
		return Product{}, errors.New("catalog service not configured")
	}
	key := productKey(id)
	var cached Product
	if found, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && found {
		return cached, nil
	}
	product, err := s.Store.GetProduct(ctx, id)
	if err != nil {
		return Product{}, err
	}
	_ = s.Cache.SetJSON(ctx, key, product)
	return product, nil
}

// BaseUnitPrice implements the base resolver used by customer rule sourcing.
func (s *Service) BaseUnitPrice(ctx context.Context, productID int64, kind rules.UnitKind) (float64, error) {
	product, err := s.Product(ctx, productID)
	if err != nil {
		return 0, err
	}
	return product.BaseUnitPrice(kind)
}

// Invalidate drops the cached product after an admin edit.
func (s *Service) Invalidate(ctx context.Context, id int64) error {
	return s.Cache.Delete(ctx, productKey(id))
}

func productKey(id int64) string {
	return fmt.Sprintf("catalog:product:%d", id)
}
