// Package rules defines the discount rule model shared by the pricing
// engine, customer rule sourcing and the quote surface.
package rules

// UnitKind distinguishes retail (piece) pricing from pack pricing.
type UnitKind string

const (
	UnitRetail UnitKind = "RETAIL"
	UnitPack   UnitKind = "PACK"
)

// Kind discriminates the rule union. Adding a kind requires touching every
// switch that consumes it.
type Kind string

const (
	// KindPriceOverride replaces the effective unit price with a fixed value.
	KindPriceOverride Kind = "PRICE_OVERRIDE"
	// KindPercentOff reduces the current effective unit price by a percentage.
	KindPercentOff Kind = "PERCENT_OFF"
)

// Rule is one discount rule. The kind-specific value lives in PriceOverride
// or PercentOff depending on Kind; the other field is ignored.
type Rule struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Kind          Kind     `json:"kind"`
	PriceOverride float64  `json:"priceOverride,omitempty"`
	PercentOff    float64  `json:"percentOff,omitempty"`
	Selector      Selector `json:"selector"`
	Priority      int      `json:"priority"`
	Enabled       bool     `json:"enabled"`
	Stackable     bool     `json:"stackable"`
	Notes         string   `json:"notes,omitempty"`
}

// Item carries the line attributes a selector can match against.
type Item struct {
	ProductID  int64
	UnitKind   UnitKind
	CategoryID string
	BrandID    string
	SKU        string
}

// Selector filters the line items a rule may affect. An all-empty selector
// matches everything; populated fields are conjunctive.
type Selector struct {
	ProductIDs  []int64  `json:"productIds,omitempty"`
	UnitKind    UnitKind `json:"unitKind,omitempty"`
	CategoryIDs []string `json:"categoryIds,omitempty"`
	BrandIDs    []string `json:"brandIds,omitempty"`
	SKU         string   `json:"sku,omitempty"`
}

// Matches reports whether every populated selector field is satisfied by the
// item. Comparisons are exact membership or exact equality; there is no
// partial matching.
func (s Selector) Matches(it Item) bool {
	if len(s.ProductIDs) > 0 && !containsInt64(s.ProductIDs, it.ProductID) {
		return false
	}
	if s.UnitKind != "" && s.UnitKind != it.UnitKind {
		return false
	}
	if len(s.CategoryIDs) > 0 && !containsString(s.CategoryIDs, it.CategoryID) {
		return false
	}
	if len(s.BrandIDs) > 0 && !containsString(s.BrandIDs, it.BrandID) {
		return false
	}
	if s.SKU != "" && s.SKU != it.SKU {
		return false
	}
	return true
}

func containsInt64(values []int64, v int64) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func containsString(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v && v != "" {
			return true
		}
	}
	return false
}
