// Package pricing implements the discount application algorithm: given a
// cart and a rule set it produces per-line effective prices and a discount
// breakdown. The computation is pure and deterministic so that a live quote,
// the checkout guard and a historical reprint all reproduce identical totals.
package pricing

import (
	"cmp"
	"slices"

	"github.com/helloword214/zmstore-pos-sub006/internal/money"
	"github.com/helloword214/zmstore-pos-sub006/internal/rules"
)

// LineItem is one cart entry. UnitPrice is the undiscounted base derived
// from the product's retail or pack price upstream.
type LineItem struct {
	ID         string
	ProductID  int64
	Name       string
	Qty        float64
	UnitPrice  float64
	UnitKind   rules.UnitKind
	CategoryID string
	BrandID    string
	SKU        string
}

// Cart is an ordered sequence of line items. Order never changes totals but
// is preserved for per-line discount reporting.
type Cart []LineItem

// AppliedDiscount is one ledger entry: a rule that actually reduced at least
// one line, with the total amount it removed across the cart.
type AppliedDiscount struct {
	RuleID string  `json:"ruleId"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Result aggregates the outcome of applying a rule set to a cart.
type Result struct {
	Subtotal      float64           `json:"subtotal"`
	Discounts     []AppliedDiscount `json:"discounts"`
	DiscountTotal float64           `json:"discountTotal"`
	Total         float64           `json:"total"`
	// UnitPrices maps line id to the final adjusted unit price.
	UnitPrices map[string]float64 `json:"unitPrices"`
}

// Apply evaluates the rule set against the cart. Callers are expected to
// have filtered out disabled rules and rules outside their validity window;
// Apply performs no time-based filtering.
//
// Rules are sorted once per call by priority descending then id ascending.
// That ordering decides which override wins when several match one line.
// Override rules are mutually exclusive per line: only the first matching
// override in sorted order applies, regardless of Stackable. Percent rules
// then compound sequentially against the running effective price.
//
// Known quirk, kept on purpose: the override class always resolves before
// any percent rule, even when a percent rule carries a higher priority
// value. Existing receipts already reflect this ordering.
func Apply(cart Cart, ruleSet []rules.Rule) Result {
	sorted := make([]rules.Rule, len(ruleSet))
	copy(sorted, ruleSet)
	slices.SortStableFunc(sorted, func(a, b rules.Rule) int {
		if a.Priority != b.Priority {
			return cmp.Compare(b.Priority, a.Priority)
		}
		return cmp.Compare(a.ID, b.ID)
	})

	ledger := make(map[string]*AppliedDiscount)
	var touched []string
	touch := func(r rules.Rule, delta float64) {
		entry, ok := ledger[r.ID]
		if !ok {
			entry = &AppliedDiscount{RuleID: r.ID, Name: r.Name}
			ledger[r.ID] = entry
			touched = append(touched, r.ID)
		}
		entry.Amount = money.Round2(entry.Amount + delta)
	}

	unitPrices := make(map[string]float64, len(cart))
	var subtotal, total float64

	for _, line := range cart {
		qty := money.ToNumber(line.Qty)
		if qty < 0 {
			qty = 0
		}
		current := money.ToNumber(line.UnitPrice)
		subtotal += money.Round2(current * qty)

		matched := matchingRules(sorted, line)

		if override, ok := firstOverride(matched); ok {
			value := money.Round2(money.ToNumber(override.PriceOverride))
			// Never raise a price, even for a misconfigured rule.
			if value >= 0 && value < current {
				delta := money.Round2((current - value) * qty)
				if delta < 0 {
					delta = 0
				}
				touch(override, delta)
				current = value
			}
		}

		for _, r := range matched {
			if r.Kind != rules.KindPercentOff {
				continue
			}
			pct := money.ToNumber(r.PercentOff)
			if pct <= 0 {
				continue
			}
			next := money.Round2(current * (1 - pct/100))
			delta := money.Round2((current - next) * qty)
			if delta < 0 {
				delta = 0
			}
			touch(r, delta)
			current = next
		}

		unitPrices[line.ID] = current
		total += money.Round2(current * qty)
	}

	subtotal = money.Round2(subtotal)
	total = money.Round2(total)

	discounts := make([]AppliedDiscount, 0, len(touched))
	for _, id := range touched {
		if entry := ledger[id]; entry.Amount != 0 {
			discounts = append(discounts, *entry)
		}
	}

	return Result{
		Subtotal:      subtotal,
		Discounts:     discounts,
		DiscountTotal: money.Round2(subtotal - total),
		Total:         total,
		UnitPrices:    unitPrices,
	}
}

func matchingRules(sorted []rules.Rule, line LineItem) []rules.Rule {
	item := rules.Item{
		ProductID:  line.ProductID,
		UnitKind:   line.UnitKind,
		CategoryID: line.CategoryID,
		BrandID:    line.BrandID,
		SKU:        line.SKU,
	}
	matched := make([]rules.Rule, 0, len(sorted))
	for _, r := range sorted {
		if r.Selector.Matches(item) {
			matched = append(matched, r)
		}
	}
	return matched
}

func firstOverride(matched []rules.Rule) (rules.Rule, bool) {
	for _, r := range matched {
		if r.Kind == rules.KindPriceOverride {
			return r, true
		}
	}
	return rules.Rule{}, false
}
