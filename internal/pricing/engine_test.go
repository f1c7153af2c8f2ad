package pricing

import (
	"reflect"
	"testing"

	"github.com/helloword214/zmstore-pos-sub006/internal/rules"
)

func TestPercentOffScenario(t *testing.T) {
	cart := Cart{{ID: "l1", ProductID: 7, Qty: 2, UnitPrice: 50}}
	ruleSet := []rules.Rule{{
		ID:         "A",
		Kind:       rules.KindPercentOff,
		PercentOff: 20,
		Selector:   rules.Selector{ProductIDs: []int64{7}},
		Enabled:    true,
	}}
	res := Apply(cart, ruleSet)
	if res.Subtotal != 100.00 {
		t.Fatalf("subtotal = %v, want 100.00", res.Subtotal)
	}
	if res.Total != 80.00 {
		t.Fatalf("total = %v, want 80.00", res.Total)
	}
	if res.DiscountTotal != 20.00 {
		t.Fatalf("discountTotal = %v, want 20.00", res.DiscountTotal)
	}
	if len(res.Discounts) != 1 || res.Discounts[0].RuleID != "A" || res.Discounts[0].Amount != 20.00 {
		t.Fatalf("unexpected discounts %#v", res.Discounts)
	}
}

func TestPercentCompounding(t *testing.T) {
	cart := Cart{{ID: "l1", ProductID: 1, Qty: 1, UnitPrice: 100}}
	ruleSet := []rules.Rule{
		{ID: "p1", Kind: rules.KindPercentOff, PercentOff: 10, Stackable: true, Enabled: true},
		{ID: "p2", Kind: rules.KindPercentOff, PercentOff: 10, Stackable: true, Enabled: true},
	}
	res := Apply(cart, ruleSet)
	// 100 -> 90 -> 81, multiplicative, not 80.
	if res.Total != 81.00 {
		t.Fatalf("total = %v, want 81.00", res.Total)
	}
	if res.UnitPrices["l1"] != 81.00 {
		t.Fatalf("adjusted unit price = %v, want 81.00", res.UnitPrices["l1"])
	}
}

func TestOverrideExclusivity(t *testing.T) {
	cart := Cart{{ID: "l1", ProductID: 3, Qty: 1, UnitPrice: 100}}
	ruleSet := []rules.Rule{
		{ID: "low", Kind: rules.KindPriceOverride, PriceOverride: 40, Priority: 5, Enabled: true},
		{ID: "high", Kind: rules.KindPriceOverride, PriceOverride: 70, Priority: 10, Enabled: true},
	}
	res := Apply(cart, ruleSet)
	if res.UnitPrices["l1"] != 70.00 {
		t.Fatalf("adjusted unit price = %v, want the priority-10 override", res.UnitPrices["l1"])
	}
	if len(res.Discounts) != 1 || res.Discounts[0].RuleID != "high" {
		t.Fatalf("only the winning override may appear in the ledger, got %#v", res.Discounts)
	}
}

func TestOverrideTieBreakByID(t *testing.T) {
	cart := Cart{{ID: "l1", ProductID: 3, Qty: 1, UnitPrice: 100}}
	ruleSet := []rules.Rule{
		{ID: "B", Kind: rules.KindPriceOverride, PriceOverride: 60, Enabled: true},
		{ID: "A", Kind: rules.KindPriceOverride, PriceOverride: 50, Enabled: true},
	}
	res := Apply(cart, ruleSet)
	if res.Discounts[0].RuleID != "A" {
		t.Fatalf("equal priority must tie-break on ascending id, got %s", res.Discounts[0].RuleID)
	}
	if res.UnitPrices["l1"] != 50.00 {
		t.Fatalf("adjusted = %v, want 50.00", res.UnitPrices["l1"])
	}
}

func TestOverrideNeverRaisesPrice(t *testing.T) {
	cart := Cart{{ID: "l1", ProductID: 3, Qty: 2, UnitPrice: 30}}
	ruleSet := []rules.Rule{
		{ID: "bad", Kind: rules.KindPriceOverride, PriceOverride: 45, Enabled: true},
	}
	res := Apply(cart, ruleSet)
	if res.Total != 60.00 {
		t.Fatalf("total = %v, an override above the base price must not apply", res.Total)
	}
	if len(res.Discounts) != 0 {
		t.Fatalf("no discount entry expected, got %#v", res.Discounts)
	}
}

func TestOverrideThenPercentRegardlessOfPriority(t *testing.T) {
	// A higher-priority percent rule still runs after the override class.
	cart := Cart{{ID: "l1", ProductID: 3, Qty: 1, UnitPrice: 100}}
	ruleSet := []rules.Rule{
		{ID: "pct", Kind: rules.KindPercentOff, PercentOff: 10, Priority: 50, Enabled: true},
		{ID: "ovr", Kind: rules.KindPriceOverride, PriceOverride: 80, Priority: 1, Enabled: true},
	}
	res := Apply(cart, ruleSet)
	// 100 -> override 80 -> 10% off -> 72.
	if res.UnitPrices["l1"] != 72.00 {
		t.Fatalf("adjusted = %v, want 72.00", res.UnitPrices["l1"])
	}
}

func TestNoMatchingRules(t *testing.T) {
	cart := Cart{
		{ID: "l1", ProductID: 1, Qty: 3, UnitPrice: 12.5},
		{ID: "l2", ProductID: 2, Qty: 1, UnitPrice: 99.99},
	}
	ruleSet := []rules.Rule{{
		ID:         "other",
		Kind:       rules.KindPercentOff,
		PercentOff: 50,
		Selector:   rules.Selector{ProductIDs: []int64{42}},
		Enabled:    true,
	}}
	res := Apply(cart, ruleSet)
	if res.Total != res.Subtotal {
		t.Fatalf("total %v must equal subtotal %v when nothing matches", res.Total, res.Subtotal)
	}
	if len(res.Discounts) != 0 {
		t.Fatalf("expected empty discounts, got %#v", res.Discounts)
	}
}

func TestZeroQuantityLine(t *testing.T) {
	cart := Cart{{ID: "l1", ProductID: 7, Qty: 0, UnitPrice: 50}}
	ruleSet := []rules.Rule{{ID: "A", Kind: rules.KindPercentOff, PercentOff: 20, Enabled: true}}
	res := Apply(cart, ruleSet)
	if res.Subtotal != 0 || res.Total != 0 || res.DiscountTotal != 0 {
		t.Fatalf("zero-qty line must contribute nothing: %#v", res)
	}
	if res.UnitPrices["l1"] != 40.00 {
		t.Fatalf("effective price still computed for zero-qty line, got %v", res.UnitPrices["l1"])
	}
}

func TestSelectorIsolationByUnitKind(t *testing.T) {
	cart := Cart{{ID: "l1", ProductID: 7, Qty: 1, UnitPrice: 50, UnitKind: rules.UnitRetail}}
	ruleSet := []rules.Rule{{
		ID:         "pack-only",
		Kind:       rules.KindPercentOff,
		PercentOff: 25,
		Selector:   rules.Selector{ProductIDs: []int64{7}, UnitKind: rules.UnitPack},
		Enabled:    true,
	}}
	res := Apply(cart, ruleSet)
	if res.Total != 50.00 {
		t.Fatalf("PACK-scoped rule must not touch a RETAIL line, total = %v", res.Total)
	}
}

func TestIdempotence(t *testing.T) {
	cart := Cart{
		{ID: "l1", ProductID: 7, Qty: 2.5, UnitPrice: 33.33, UnitKind: rules.UnitRetail},
		{ID: "l2", ProductID: 8, Qty: 1, UnitPrice: 120, UnitKind: rules.UnitPack},
	}
	ruleSet := []rules.Rule{
		{ID: "ovr", Kind: rules.KindPriceOverride, PriceOverride: 30, Selector: rules.Selector{ProductIDs: []int64{7}}, Priority: 10, Enabled: true},
		{ID: "pct", Kind: rules.KindPercentOff, PercentOff: 7.5, Stackable: true, Enabled: true},
	}
	first := Apply(cart, ruleSet)
	second := Apply(cart, ruleSet)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated evaluation diverged:\n%#v\n%#v", first, second)
	}
}

func TestNonNegativity(t *testing.T) {
	cart := Cart{
		{ID: "l1", ProductID: 1, Qty: 3, UnitPrice: 10},
		{ID: "l2", ProductID: 2, Qty: 2, UnitPrice: 45.5},
	}
	ruleSet := []rules.Rule{
		{ID: "a", Kind: rules.KindPriceOverride, PriceOverride: 8, Selector: rules.Selector{ProductIDs: []int64{1}}, Enabled: true},
		{ID: "b", Kind: rules.KindPercentOff, PercentOff: 90, Enabled: true},
		{ID: "c", Kind: rules.KindPercentOff, PercentOff: 90, Enabled: true},
	}
	res := Apply(cart, ruleSet)
	if res.DiscountTotal < 0 {
		t.Fatalf("discount total went negative: %v", res.DiscountTotal)
	}
	for _, line := range cart {
		if res.UnitPrices[line.ID] > line.UnitPrice {
			t.Fatalf("line %s effective %v exceeds original %v", line.ID, res.UnitPrices[line.ID], line.UnitPrice)
		}
		if res.UnitPrices[line.ID] < 0 {
			t.Fatalf("line %s effective price negative", line.ID)
		}
	}
}
