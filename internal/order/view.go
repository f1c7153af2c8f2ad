package order

import (
	"context"
	"strconv"

	"github.com/helloword214/zmstore-pos-sub006/internal/money"
)

// ViewLine is the per-line projection shown on receipts and acknowledgments.
type ViewLine struct {
	ItemID    int64   `json:"itemId"`
	Name      string  `json:"name"`
	Qty       float64 `json:"qty"`
	Original  float64 `json:"originalLineTotal"`
	Effective float64 `json:"effectiveLineTotal"`
	Discount  float64 `json:"discount"`
}

// View is a display-only breakdown following the same freeze-first cascade
// as ResolveFinalTotal.
type View struct {
	Basis         Basis      `json:"basis"`
	Subtotal      float64    `json:"subtotal"`
	DiscountTotal float64    `json:"discountTotal"`
	Total         float64    `json:"total"`
	Lines         []ViewLine `json:"lines"`
}

// DiscountView builds the receipt breakdown. Per-line deltas are only
// inferable when frozen line totals exist or when the legacy replay ran;
// with just an order-level total the per-rule attribution is gone, so the
// lines report zero visible discount even if one was applied at the time.
func (r Resolver) DiscountView(ctx context.Context, o Order) (View, error) {
	if _, ok := frozenLineSum(o.Items); ok {
		return viewFromFrozenLines(o), nil
	}
	if o.Total != nil && isFinite(*o.Total) {
		return viewFromOrderTotal(o), nil
	}
	res, err := r.replayAtCreation(ctx, o)
	if err != nil {
		return View{}, err
	}
	view := View{
		Basis:         BasisRulesAtTime,
		Subtotal:      res.Subtotal,
		DiscountTotal: res.DiscountTotal,
		Total:         res.Total,
		Lines:         make([]ViewLine, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		original := money.Round2(money.ToNumber(it.UnitPrice) * money.ToNumber(it.Qty))
		effectiveUnit := res.UnitPrices[strconv.FormatInt(it.ID, 10)]
		effective := money.Round2(effectiveUnit * money.ToNumber(it.Qty))
		view.Lines = append(view.Lines, ViewLine{
			ItemID:    it.ID,
			Name:      it.Name,
			Qty:       it.Qty,
			Original:  original,
			Effective: effective,
			Discount:  nonNegative(money.Round2(original - effective)),
		})
	}
	return view, nil
}

func viewFromFrozenLines(o Order) View {
	view := View{Basis: BasisLineTotals, Lines: make([]ViewLine, 0, len(o.Items))}
	var subtotal, total float64
	for _, it := range o.Items {
		original := money.Round2(money.ToNumber(it.UnitPrice) * money.ToNumber(it.Qty))
		effective := money.Round2(*it.LineTotal)
		subtotal += original
		total += effective
		view.Lines = append(view.Lines, ViewLine{
			ItemID:    it.ID,
			Name:      it.Name,
			Qty:       it.Qty,
			Original:  original,
			Effective: effective,
			Discount:  nonNegative(money.Round2(original - effective)),
		})
	}
	view.Subtotal = money.Round2(subtotal)
	view.Total = money.Round2(total)
	view.DiscountTotal = nonNegative(money.Round2(view.Subtotal - view.Total))
	return view
}

func viewFromOrderTotal(o Order) View {
	view := View{Basis: BasisOrderTotal, Lines: make([]ViewLine, 0, len(o.Items))}
	var subtotal float64
	for _, it := range o.Items {
		original := money.Round2(money.ToNumber(it.UnitPrice) * money.ToNumber(it.Qty))
		subtotal += original
		view.Lines = append(view.Lines, ViewLine{
			ItemID:    it.ID,
			Name:      it.Name,
			Qty:       it.Qty,
			Original:  original,
			Effective: original,
			Discount:  0,
		})
	}
	view.Subtotal = money.Round2(subtotal)
	view.Total = money.Round2(*o.Total)
	view.DiscountTotal = nonNegative(money.Round2(view.Subtotal - view.Total))
	return view
}

func nonNegative(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}
