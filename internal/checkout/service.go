// Package checkout creates orders behind the purchase-time price guard.
// Submitted unit prices are verified against the rule engine and the
// resulting per-line totals are frozen at creation time, which is what makes
// every new order resolve on the LINE_TOTALS basis forever after.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helloword214/zmstore-pos-sub006/internal/catalog"
	"github.com/helloword214/zmstore-pos-sub006/internal/common"
	"github.com/helloword214/zmstore-pos-sub006/internal/money"
	"github.com/helloword214/zmstore-pos-sub006/internal/obs"
	"github.com/helloword214/zmstore-pos-sub006/internal/order"
	"github.com/helloword214/zmstore-pos-sub006/internal/pricing"
	"github.com/helloword214/zmstore-pos-sub006/internal/repo"
	"github.com/helloword214/zmstore-pos-sub006/internal/rules"
)

// DefaultTolerance absorbs float transport noise when comparing a submitted
// price against the engine price: half a cent.
const DefaultTolerance = 0.005

// InputItem is one submitted order line. UnitPrice is the price the kiosk
// or cashier intends to charge; it is verified, never trusted.
type InputItem struct {
	ProductID int64          `json:"productId" validate:"required,gt=0"`
	Qty       float64        `json:"qty" validate:"gte=0"`
	UnitKind  rules.UnitKind `json:"unitKind" validate:"required,oneof=RETAIL PACK"`
	UnitPrice float64        `json:"unitPrice" validate:"gte=0"`
}

// Input is the checkout request payload.
type Input struct {
	CustomerID int64       `json:"customerId" validate:"required,gt=0"`
	Items      []InputItem `json:"items" validate:"required,min=1,dive"`
}

// Output reports the created order and its frozen totals.
type Output struct {
	OrderID       int64                     `json:"orderId"`
	Subtotal      float64                   `json:"subtotal"`
	DiscountTotal float64                   `json:"discountTotal"`
	Total         float64                   `json:"total"`
	Discounts     []pricing.AppliedDiscount `json:"discounts"`
}

// RuleSource yields the customer's currently valid rules.
type RuleSource interface {
	RulesNow(ctx context.Context, customerID int64) ([]rules.Rule, error)
}

// ProductSource yields catalog products for base price resolution.
type ProductSource interface {
	Product(ctx context.Context, id int64) (catalog.Product, error)
}

// Service performs guarded checkout.
type Service struct {
	Products  ProductSource
	Rules     RuleSource
	Store     *repo.Store
	Pool      *pgxpool.Pool
	Tolerance float64
}

// Evaluate builds the cart from base prices, runs the engine and verifies
// every submitted price. It is the shared half of Create so quote previews
// and checkout cannot drift apart.
func (s *Service) Evaluate(ctx context.Context, in Input) (pricing.Cart, pricing.Result, error) {
	if s == nil || s.Products == nil || s.Rules == nil {
		return nil, pricing.Result{}, errors.New("checkout service not configured")
	}
	if len(in.Items) == 0 {
		return nil, pricing.Result{}, common.NewAppError("EMPTY_ORDER", "order has no items", http.StatusBadRequest, nil)
	}

	cart := make(pricing.Cart, 0, len(in.Items))
	for i, item := range in.Items {
		product, err := s.Products.Product(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, pricing.Result{}, common.NewAppError("UNKNOWN_PRODUCT", fmt.Sprintf("product %d not found", item.ProductID), http.StatusBadRequest, err)
			}
			return nil, pricing.Result{}, err
		}
		base, err := product.BaseUnitPrice(item.UnitKind)
		if err != nil {
			return nil, pricing.Result{}, common.NewAppError("UNIT_NOT_SELLABLE", err.Error(), http.StatusBadRequest, err)
		}
		cart = append(cart, pricing.LineItem{
			ID:         strconv.Itoa(i),
			ProductID:  product.ID,
			Name:       product.Name,
			Qty:        item.Qty,
			UnitPrice:  base,
			UnitKind:   item.UnitKind,
			CategoryID: product.CategoryID,
			BrandID:    product.BrandID,
			SKU:        product.SKU,
		})
	}

	// A failed rule read blocks checkout rather than silently charging the
	// undiscounted price.
	ruleSet, err := s.Rules.RulesNow(ctx, in.CustomerID)
	if err != nil {
		return nil, pricing.Result{}, fmt.Errorf("load customer rules: %w", err)
	}
	res := pricing.Apply(cart, ruleSet)

	if err := verifySubmitted(res, in.Items, s.tolerance()); err != nil {
		if obs.PriceGuardTotal != nil {
			obs.PriceGuardTotal.WithLabelValues("reject").Inc()
		}
		return nil, pricing.Result{}, err
	}
	if obs.PriceGuardTotal != nil {
		obs.PriceGuardTotal.WithLabelValues("pass").Inc()
	}
	return cart, res, nil
}

// Create evaluates the order and persists it with frozen line totals inside
// one transaction.
func (s *Service) Create(ctx context.Context, in Input) (Output, error) {
	if s == nil || s.Store == nil || s.Pool == nil {
		return Output{}, errors.New("checkout service not configured")
	}
	cart, res, err := s.Evaluate(ctx, in)
	if err != nil {
		return Output{}, err
	}

	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Output{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	qtx := s.Store.WithTx(tx)

	orderID, _, err := qtx.CreateOrder(ctx, in.CustomerID, res.Subtotal, res.DiscountTotal, res.Total)
	if err != nil {
		return Output{}, err
	}
	for _, line := range cart {
		frozen := money.Round2(res.UnitPrices[line.ID] * money.ToNumber(line.Qty))
		if _, err := qtx.CreateOrderItem(ctx, orderID, order.Item{
			ProductID: line.ProductID,
			Name:      line.Name,
			Qty:       line.Qty,
			UnitPrice: line.UnitPrice,
			UnitKind:  line.UnitKind,
			LineTotal: &frozen,
		}); err != nil {
			return Output{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Output{}, err
	}
	if obs.DiscountAppliedTotal != nil && res.DiscountTotal > 0 {
		obs.DiscountAppliedTotal.Add(res.DiscountTotal)
	}

	return Output{
		OrderID:       orderID,
		Subtotal:      res.Subtotal,
		DiscountTotal: res.DiscountTotal,
		Total:         res.Total,
		Discounts:     res.Discounts,
	}, nil
}

// verifySubmitted rejects any line whose submitted unit price exceeds what
// the rules permit. Charging less than the engine price is the cashier's
// prerogative; charging more is never allowed.
func verifySubmitted(res pricing.Result, items []InputItem, tolerance float64) error {
	for i, item := range items {
		allowed := res.UnitPrices[strconv.Itoa(i)]
		submitted := money.ToNumber(item.UnitPrice)
		if submitted > allowed+tolerance {
			return common.NewAppError(
				"PRICE_ABOVE_ALLOWED",
				fmt.Sprintf("submitted price %.2f for product %d exceeds allowed %.2f", submitted, item.ProductID, allowed),
				http.StatusUnprocessableEntity,
				nil,
			)
		}
	}
	return nil
}

func (s *Service) tolerance() float64 {
	if s != nil && s.Tolerance > 0 {
		return s.Tolerance
	}
	return DefaultTolerance
}
