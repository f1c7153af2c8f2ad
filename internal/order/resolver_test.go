package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/helloword214/zmstore-pos-sub006/internal/rules"
)

type stubRuleSource struct {
	rules []rules.Rule
	err   error
	at    time.Time
	calls int
}

func (s *stubRuleSource) RulesValidAt(_ context.Context, _ int64, at time.Time) ([]rules.Rule, error) {
	s.calls++
	s.at = at
	if s.err != nil {
		return nil, s.err
	}
	return s.rules, nil
}

func ptr(v float64) *float64 { return &v }

func TestResolveFrozenLineTotals(t *testing.T) {
	src := &stubRuleSource{rules: []rules.Rule{{
		ID: "CIP:1", Kind: rules.KindPercentOff, PercentOff: 50, Enabled: true,
	}}}
	resolver := Resolver{Rules: src}
	o := Order{
		ID: 10, CustomerID: 1, CreatedAt: time.Now(),
		Items: []Item{
			{ID: 1, ProductID: 7, Qty: 2, UnitPrice: 50, LineTotal: ptr(90)},
			{ID: 2, ProductID: 8, Qty: 1, UnitPrice: 20, LineTotal: ptr(20)},
		},
	}
	got, err := resolver.ResolveFinalTotal(context.Background(), o)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Basis != BasisLineTotals {
		t.Fatalf("basis = %s, want LINE_TOTALS", got.Basis)
	}
	if got.Total != 110.00 {
		t.Fatalf("total = %v, want 110.00", got.Total)
	}
	if src.calls != 0 {
		t.Fatal("frozen orders must never consult the rule source")
	}
}

func TestFreezeImmunity(t *testing.T) {
	// Rule edits after the fact must not change a frozen order's total.
	o := Order{
		ID: 10, CustomerID: 1, CreatedAt: time.Now(),
		Items: []Item{{ID: 1, ProductID: 7, Qty: 2, UnitPrice: 50, LineTotal: ptr(80)}},
	}
	before, err := Resolver{Rules: &stubRuleSource{}}.ResolveFinalTotal(context.Background(), o)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	edited := &stubRuleSource{rules: []rules.Rule{{
		ID: "CIP:9", Kind: rules.KindPriceOverride, PriceOverride: 1, Priority: 10, Enabled: true,
	}}}
	after, err := Resolver{Rules: edited}.ResolveFinalTotal(context.Background(), o)
	if err != nil {
		t.Fatalf("resolve after edit: %v", err)
	}
	if before != after {
		t.Fatalf("frozen total changed after rule edit: %v vs %v", before, after)
	}
	if after.Basis != BasisLineTotals || after.Total != 80.00 {
		t.Fatalf("got %#v, want LINE_TOTALS 80.00", after)
	}
	if edited.calls != 0 {
		t.Fatal("frozen orders must never consult the rule source")
	}
}

func TestResolveOrderTotalFallback(t *testing.T) {
	o := Order{
		ID: 11, CustomerID: 1, CreatedAt: time.Now(), Total: ptr(250.5),
		Items: []Item{
			{ID: 1, ProductID: 7, Qty: 2, UnitPrice: 50, LineTotal: ptr(90)},
			{ID: 2, ProductID: 8, Qty: 1, UnitPrice: 20}, // missing frozen total
		},
	}
	got, err := Resolver{}.ResolveFinalTotal(context.Background(), o)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Basis != BasisOrderTotal || got.Total != 250.50 {
		t.Fatalf("got %#v, want ORDER_TOTAL 250.50", got)
	}
}

func TestResolveLegacyReplaysRulesAtCreation(t *testing.T) {
	created := time.Date(2023, 6, 15, 9, 0, 0, 0, time.UTC)
	src := &stubRuleSource{rules: []rules.Rule{{
		ID:         "CIP:4",
		Kind:       rules.KindPercentOff,
		PercentOff: 20,
		Selector:   rules.Selector{ProductIDs: []int64{7}},
		Priority:   10,
		Enabled:    true,
	}}}
	o := Order{
		ID: 12, CustomerID: 3, CreatedAt: created,
		Items: []Item{{ID: 1, ProductID: 7, Qty: 2, UnitPrice: 50}},
	}
	got, err := Resolver{Rules: src}.ResolveFinalTotal(context.Background(), o)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Basis != BasisRulesAtTime {
		t.Fatalf("basis = %s, want RULES_AT_TIME", got.Basis)
	}
	if got.Total != 80.00 {
		t.Fatalf("total = %v, want 80.00", got.Total)
	}
	if !src.at.Equal(created) {
		t.Fatalf("rule source queried at %v, want the creation instant %v", src.at, created)
	}
}

func TestResolveLegacyRuleReadFailure(t *testing.T) {
	src := &stubRuleSource{err: errors.New("db down")}
	resolver := Resolver{Rules: src}
	o := Order{ID: 13, CustomerID: 1, CreatedAt: time.Now(), Items: []Item{{ID: 1, ProductID: 7, Qty: 1, UnitPrice: 10}}}
	if _, err := resolver.ResolveFinalTotal(context.Background(), o); err == nil {
		t.Fatal("legacy path must surface the rule read failure")
	}
	if src.calls != 1 {
		t.Fatalf("rule source called %d times, want 1", src.calls)
	}
}

func TestDiscountViewFrozenLines(t *testing.T) {
	o := Order{
		ID: 14, CustomerID: 1, CreatedAt: time.Now(),
		Items: []Item{{ID: 1, Name: "Rice 25kg", ProductID: 7, Qty: 2, UnitPrice: 50, LineTotal: ptr(80)}},
	}
	view, err := Resolver{}.DiscountView(context.Background(), o)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.Basis != BasisLineTotals {
		t.Fatalf("basis = %s", view.Basis)
	}
	if view.Lines[0].Discount != 20.00 {
		t.Fatalf("line discount = %v, want 20.00", view.Lines[0].Discount)
	}
	if view.DiscountTotal != 20.00 || view.Total != 80.00 {
		t.Fatalf("unexpected view %#v", view)
	}
}

func TestDiscountViewOrderTotalHidesLineAttribution(t *testing.T) {
	o := Order{
		ID: 15, CustomerID: 1, CreatedAt: time.Now(), Total: ptr(90),
		Items: []Item{{ID: 1, ProductID: 7, Qty: 2, UnitPrice: 50}},
	}
	view, err := Resolver{}.DiscountView(context.Background(), o)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.Basis != BasisOrderTotal {
		t.Fatalf("basis = %s", view.Basis)
	}
	if view.Lines[0].Discount != 0 {
		t.Fatal("per-line attribution is unknowable from an order-level total")
	}
	if view.DiscountTotal != 10.00 {
		t.Fatalf("discount total = %v, want 10.00", view.DiscountTotal)
	}
}
