package custpricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/helloword214/zmstore-pos-sub006/internal/pricing"
	"github.com/helloword214/zmstore-pos-sub006/internal/rules"
)

type stubStore struct {
	rows []Row
	err  error
	at   time.Time
}

func (s *stubStore) ListRulesValidAt(_ context.Context, _ int64, at time.Time) ([]Row, error) {
	s.at = at
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

type stubBases struct {
	price float64
	err   error
}

func (s stubBases) BaseUnitPrice(_ context.Context, _ int64, _ rules.UnitKind) (float64, error) {
	return s.price, s.err
}

func TestRuleFromRowFixedPrice(t *testing.T) {
	rule, ok := RuleFromRow(Row{ID: 12, ProductID: 7, UnitKind: rules.UnitRetail, Mode: ModeFixedPrice, Value: 42.5}, 0)
	if !ok {
		t.Fatal("expected a rule")
	}
	if rule.ID != "CIP:12" {
		t.Fatalf("id = %q, want namespaced CIP id", rule.ID)
	}
	if rule.Kind != rules.KindPriceOverride || rule.PriceOverride != 42.5 {
		t.Fatalf("unexpected rule %#v", rule)
	}
	if rule.Priority != 10 {
		t.Fatalf("priority = %d, want 10", rule.Priority)
	}
	if len(rule.Selector.ProductIDs) != 1 || rule.Selector.ProductIDs[0] != 7 || rule.Selector.UnitKind != rules.UnitRetail {
		t.Fatalf("selector must scope to the product and unit kind: %#v", rule.Selector)
	}
}

func TestRuleFromRowFixedDiscount(t *testing.T) {
	rule, ok := RuleFromRow(Row{ID: 3, ProductID: 9, UnitKind: rules.UnitRetail, Mode: ModeFixedDiscount, Value: 15}, 50)
	if !ok {
		t.Fatal("expected a rule")
	}
	if rule.Kind != rules.KindPriceOverride || rule.PriceOverride != 35.00 {
		t.Fatalf("fixed discount 15 off base 50 must convert to override 35, got %#v", rule)
	}
}

func TestRuleFromRowFixedDiscountClampsAtZero(t *testing.T) {
	rule, _ := RuleFromRow(Row{ID: 3, ProductID: 9, Mode: ModeFixedDiscount, Value: 80}, 50)
	if rule.PriceOverride != 0 {
		t.Fatalf("override = %v, want clamp at 0", rule.PriceOverride)
	}
}

func TestRuleFromRowPercent(t *testing.T) {
	rule, ok := RuleFromRow(Row{ID: 5, ProductID: 2, Mode: ModePercentDiscount, Value: 12.5}, 0)
	if !ok || rule.Kind != rules.KindPercentOff || rule.PercentOff != 12.5 {
		t.Fatalf("unexpected rule %#v", rule)
	}
	if !rule.Stackable {
		t.Fatal("percent rules sourced from customer pricing are stackable")
	}
}

func TestRuleFromRowUnknownModeSkipped(t *testing.T) {
	if _, ok := RuleFromRow(Row{ID: 1, Mode: Mode("BOGO")}, 0); ok {
		t.Fatal("unknown mode must be skipped")
	}
}

func TestFixedDiscountEndToEnd(t *testing.T) {
	store := &stubStore{rows: []Row{{
		ID: 3, CustomerID: 1, ProductID: 9, UnitKind: rules.UnitRetail,
		Mode: ModeFixedDiscount, Value: 15, Active: true,
	}}}
	svc := &Service{Store: store, Bases: stubBases{price: 50}}
	ruleSet, err := svc.RulesNow(context.Background(), 1)
	if err != nil {
		t.Fatalf("rules now: %v", err)
	}
	cart := pricing.Cart{{ID: "l1", ProductID: 9, Qty: 3, UnitPrice: 50, UnitKind: rules.UnitRetail}}
	res := pricing.Apply(cart, ruleSet)
	if res.Total != 105.00 {
		t.Fatalf("total = %v, want 105.00", res.Total)
	}
	if len(res.Discounts) != 1 || res.Discounts[0].Amount != 45.00 {
		t.Fatalf("discount = %#v, want single 45.00 entry", res.Discounts)
	}
}

func TestRulesValidAtPassesInstant(t *testing.T) {
	store := &stubStore{}
	svc := &Service{Store: store}
	past := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if _, err := svc.RulesValidAt(context.Background(), 1, past); err != nil {
		t.Fatalf("rules valid at: %v", err)
	}
	if !store.at.Equal(past) {
		t.Fatalf("store received %v, want the historical instant %v", store.at, past)
	}
}

func TestStoreErrorPropagates(t *testing.T) {
	svc := &Service{Store: &stubStore{err: errors.New("db down")}}
	if _, err := svc.RulesNow(context.Background(), 1); err == nil {
		t.Fatal("expected the read failure to propagate so the guard can block checkout")
	}
}

func TestUnitPriceFor(t *testing.T) {
	store := &stubStore{rows: []Row{{
		ID: 8, CustomerID: 1, ProductID: 4, UnitKind: rules.UnitPack,
		Mode: ModePercentDiscount, Value: 10, Active: true,
	}}}
	svc := &Service{Store: store}
	price, err := svc.UnitPriceFor(context.Background(), 1, 4, rules.UnitPack, 200)
	if err != nil {
		t.Fatalf("unit price for: %v", err)
	}
	if price != 180.00 {
		t.Fatalf("price = %v, want 180.00", price)
	}
}
