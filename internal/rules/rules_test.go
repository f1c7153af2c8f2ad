package rules

import "testing"

func TestEmptySelectorMatchesEverything(t *testing.T) {
	if !(Selector{}).Matches(Item{ProductID: 7, UnitKind: UnitRetail}) {
		t.Fatal("empty selector must match any item")
	}
	if !(Selector{}).Matches(Item{}) {
		t.Fatal("empty selector must match a zero item")
	}
}

func TestSelectorUnitKindIsolation(t *testing.T) {
	sel := Selector{ProductIDs: []int64{7}, UnitKind: UnitPack}
	if sel.Matches(Item{ProductID: 7, UnitKind: UnitRetail}) {
		t.Fatal("PACK selector must not match a RETAIL line even when product ids match")
	}
	if !sel.Matches(Item{ProductID: 7, UnitKind: UnitPack}) {
		t.Fatal("expected PACK line to match")
	}
}

func TestSelectorConjunctive(t *testing.T) {
	sel := Selector{ProductIDs: []int64{1, 2}, CategoryIDs: []string{"feeds"}, SKU: "FD-001"}
	item := Item{ProductID: 2, CategoryID: "feeds", SKU: "FD-001"}
	if !sel.Matches(item) {
		t.Fatal("all populated fields satisfied, expected match")
	}
	item.SKU = "FD-999"
	if sel.Matches(item) {
		t.Fatal("one unsatisfied field must fail the whole selector")
	}
}

func TestSelectorMissingItemAttribute(t *testing.T) {
	sel := Selector{CategoryIDs: []string{"feeds"}}
	if sel.Matches(Item{ProductID: 9}) {
		t.Fatal("item without a category cannot satisfy a category-scoped selector")
	}
}
