// Package order resolves the authoritative final total of a persisted order
// under the freeze-first policy: previously-recorded totals are always
// trusted over any re-computation, keeping financial history immutable when
// pricing rules are later edited, deleted or reordered.
package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/helloword214/zmstore-pos-sub006/internal/money"
	"github.com/helloword214/zmstore-pos-sub006/internal/obs"
	"github.com/helloword214/zmstore-pos-sub006/internal/pricing"
	"github.com/helloword214/zmstore-pos-sub006/internal/rules"
)

// ErrNotFound is returned when an order does not exist.
var ErrNotFound = errors.New("order not found")

// Basis identifies which leg of the priority cascade produced a total.
type Basis string

const (
	// BasisLineTotals means every item carried a frozen line total; no rule
	// lookup happened, so the result is immune to later rule edits.
	BasisLineTotals Basis = "LINE_TOTALS"
	// BasisOrderTotal means the order-level frozen total was used.
	BasisOrderTotal Basis = "ORDER_TOTAL"
	// BasisRulesAtTime means the total was reconstructed from the rules
	// valid at the order's creation instant. Legacy orders only.
	BasisRulesAtTime Basis = "RULES_AT_TIME"
)

// Item is one immutable order line. LineTotal is nil on orders persisted
// before totals were frozen at checkout.
type Item struct {
	ID        int64
	ProductID int64
	Name      string
	Qty       float64
	UnitPrice float64
	UnitKind  rules.UnitKind
	LineTotal *float64
}

// Order is the resolver's view of a persisted order.
type Order struct {
	ID         int64
	CustomerID int64
	CreatedAt  time.Time
	// Total is the order-level frozen total, nil on pre-freeze records.
	Total *float64
	Items []Item
}

// FinalTotal is the resolved authoritative total and how it was obtained.
type FinalTotal struct {
	Total float64 `json:"finalTotal"`
	Basis Basis   `json:"basis"`
}

// RuleSource loads the rules valid at a past instant; only the legacy
// RULES_AT_TIME path touches it.
type RuleSource interface {
	RulesValidAt(ctx context.Context, customerID int64, at time.Time) ([]rules.Rule, error)
}

// Resolver applies the freeze-first cascade.
type Resolver struct {
	Rules RuleSource
}

// ResolveFinalTotal walks the cascade: frozen line totals first, then the
// frozen order total, and only for legacy records a re-evaluation of the
// rules as they stood when the order was created.
func (r Resolver) ResolveFinalTotal(ctx context.Context, o Order) (FinalTotal, error) {
	if total, ok := frozenLineSum(o.Items); ok {
		return FinalTotal{Total: total, Basis: BasisLineTotals}, nil
	}
	if o.Total != nil && isFinite(*o.Total) {
		return FinalTotal{Total: money.Round2(*o.Total), Basis: BasisOrderTotal}, nil
	}
	res, err := r.replayAtCreation(ctx, o)
	if err != nil {
		return FinalTotal{}, err
	}
	return FinalTotal{Total: res.Total, Basis: BasisRulesAtTime}, nil
}

func (r Resolver) replayAtCreation(ctx context.Context, o Order) (pricing.Result, error) {
	if r.Rules == nil {
		return pricing.Result{}, errors.New("order resolver has no rule source for legacy records")
	}
	started := time.Now()
	ruleSet, err := r.Rules.RulesValidAt(ctx, o.CustomerID, o.CreatedAt)
	if err != nil {
		return pricing.Result{}, fmt.Errorf("load rules at order creation: %w", err)
	}
	res := pricing.Apply(cartFromItems(o.Items), ruleSet)
	if obs.RuleReplayLatency != nil {
		obs.RuleReplayLatency.Observe(float64(time.Since(started).Milliseconds()))
	}
	return res, nil
}

// frozenLineSum sums frozen line totals. It reports false unless every item
// carries a finite frozen total; a partially-frozen order falls through the
// cascade rather than mixing frozen and recomputed amounts.
func frozenLineSum(items []Item) (float64, bool) {
	if len(items) == 0 {
		return 0, false
	}
	var sum float64
	for _, it := range items {
		if it.LineTotal == nil || !isFinite(*it.LineTotal) {
			return 0, false
		}
		sum += money.Round2(*it.LineTotal)
	}
	return money.Round2(sum), true
}

func cartFromItems(items []Item) pricing.Cart {
	cart := make(pricing.Cart, 0, len(items))
	for _, it := range items {
		cart = append(cart, pricing.LineItem{
			ID:        strconv.FormatInt(it.ID, 10),
			ProductID: it.ProductID,
			Name:      it.Name,
			Qty:       it.Qty,
			UnitPrice: it.UnitPrice,
			UnitKind:  it.UnitKind,
		})
	}
	return cart
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
