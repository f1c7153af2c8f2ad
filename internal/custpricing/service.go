// Package custpricing loads a customer's persisted pricing rules and
// converts them into the in-memory rule model consumed by the pricing
// engine. Both the live quote preview and the purchase-time guard go through
// UnitPriceFor so UI and enforcement can never diverge.
package custpricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/helloword214/zmstore-pos-sub006/internal/money"
	"github.com/helloword214/zmstore-pos-sub006/internal/pricing"
	"github.com/helloword214/zmstore-pos-sub006/internal/rules"
)

// Mode enumerates how a persisted rule expresses its discount.
type Mode string

const (
	ModeFixedPrice      Mode = "FIXED_PRICE"
	ModeFixedDiscount   Mode = "FIXED_DISCOUNT"
	ModePercentDiscount Mode = "PERCENT_DISCOUNT"
)

// Row is one persisted customer pricing rule, fully typed. Rows become
// eligible for matching only while Active and inside the validity window;
// that filtering belongs to the store query, not the engine.
type Row struct {
	ID         int64
	CustomerID int64
	ProductID  int64
	UnitKind   rules.UnitKind
	Mode       Mode
	Value      float64
	Active     bool
	StartsAt   *time.Time
	EndsAt     *time.Time
}

// Store captures the datastore read the service requires.
type Store interface {
	// ListRulesValidAt returns the customer's active rules whose validity
	// window contains the instant. Open bounds are unbounded on that side.
	ListRulesValidAt(ctx context.Context, customerID int64, at time.Time) ([]Row, error)
}

// BaseResolver resolves the canonical undiscounted unit price for a product
// and unit kind. FIXED_DISCOUNT rows need it at load time so the pricing
// engine never has to know about amount-off semantics.
type BaseResolver interface {
	BaseUnitPrice(ctx context.Context, productID int64, kind rules.UnitKind) (float64, error)
}

// sourcedPriority is the fixed priority every converted customer rule gets.
const sourcedPriority = 10

// Service sources customer pricing rules. The store handle is injected;
// there is no package-level state.
type Service struct {
	Store Store
	Bases BaseResolver
	Now   func() time.Time
}

// RulesValidAt loads the customer's rules valid at the given instant and
// maps each row to exactly one engine rule.
func (s *Service) RulesValidAt(ctx context.Context, customerID int64, at time.Time) ([]rules.Rule, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("customer pricing service not configured")
	}
	rows, err := s.Store.ListRulesValidAt(ctx, customerID, at)
	if err != nil {
		return nil, fmt.Errorf("list customer pricing rules: %w", err)
	}
	out := make([]rules.Rule, 0, len(rows))
	for _, row := range rows {
		base := 0.0
		if row.Mode == ModeFixedDiscount {
			if s.Bases == nil {
				return nil, errors.New("base price resolver not configured")
			}
			base, err = s.Bases.BaseUnitPrice(ctx, row.ProductID, row.UnitKind)
			if err != nil {
				return nil, fmt.Errorf("resolve base price for product %d: %w", row.ProductID, err)
			}
		}
		rule, ok := RuleFromRow(row, base)
		if !ok {
			continue
		}
		out = append(out, rule)
	}
	return out, nil
}

// RulesNow is RulesValidAt evaluated at the current instant; live preview
// and quote paths use it.
func (s *Service) RulesNow(ctx context.Context, customerID int64) ([]rules.Rule, error) {
	return s.RulesValidAt(ctx, customerID, s.now())
}

// UnitPriceFor computes the unit price this customer pays right now for the
// product/unit-kind combination. The purchase-time guard calls this to
// verify a submitted price against what the rules permit.
func (s *Service) UnitPriceFor(ctx context.Context, customerID, productID int64, kind rules.UnitKind, baseUnitPrice float64) (float64, error) {
	ruleSet, err := s.RulesNow(ctx, customerID)
	if err != nil {
		return 0, err
	}
	cart := pricing.Cart{{
		ID:        "guard",
		ProductID: productID,
		Qty:       1,
		UnitPrice: baseUnitPrice,
		UnitKind:  kind,
	}}
	res := pricing.Apply(cart, ruleSet)
	return res.UnitPrices["guard"], nil
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// RuleFromRow converts a persisted row into an engine rule. The canonical
// base is only consulted for FIXED_DISCOUNT rows. The returned bool is false
// for rows with an unknown mode, which are skipped rather than guessed at.
func RuleFromRow(row Row, canonicalBase float64) (rules.Rule, bool) {
	rule := rules.Rule{
		ID:       fmt.Sprintf("CIP:%d", row.ID),
		Name:     fmt.Sprintf("Customer price rule #%d", row.ID),
		Priority: sourcedPriority,
		Enabled:  true,
		Selector: rules.Selector{
			ProductIDs: []int64{row.ProductID},
			UnitKind:   row.UnitKind,
		},
	}
	value := money.ToNumber(row.Value)
	if value < 0 {
		value = 0
	}
	switch row.Mode {
	case ModeFixedPrice:
		rule.Kind = rules.KindPriceOverride
		rule.PriceOverride = value
	case ModePercentDiscount:
		rule.Kind = rules.KindPercentOff
		rule.PercentOff = value
		rule.Stackable = true
	case ModeFixedDiscount:
		override := money.Round2(money.ToNumber(canonicalBase) - value)
		if override < 0 {
			override = 0
		}
		rule.Kind = rules.KindPriceOverride
		rule.PriceOverride = override
	default:
		return rules.Rule{}, false
	}
	return rule, true
}
