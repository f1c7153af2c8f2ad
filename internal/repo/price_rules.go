package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/helloword214/zmstore-pos-sub006/internal/custpricing"
	"github.com/helloword214/zmstore-pos-sub006/internal/rules"
)

const listRulesValidAtSQL = `
SELECT id, customer_id, product_id, unit_kind, mode, value, active, starts_at, ends_at
FROM customer_price_rules
WHERE customer_id = $1
  AND active = TRUE
  AND (starts_at IS NULL OR starts_at <= $2)
  AND (ends_at IS NULL OR ends_at >= $2)
ORDER BY id`

// priceRuleRow is the typed shape of one customer_price_rules row.
type priceRuleRow struct {
	ID         int64
	CustomerID int64
	ProductID  int64
	UnitKind   string
	Mode       string
	Value      float64
	Active     bool
	StartsAt   pgtype.Timestamptz
	EndsAt     pgtype.Timestamptz
}

// ListRulesValidAt returns the customer's active pricing rules whose
// validity window contains the instant. Open bounds are unbounded.
func (s *Store) ListRulesValidAt(ctx context.Context, customerID int64, at time.Time) ([]custpricing.Row, error) {
	dbRows, err := s.DB.Query(ctx, listRulesValidAtSQL, customerID, at)
	if err != nil {
		return nil, err
	}
	defer dbRows.Close()

	var out []custpricing.Row
	for dbRows.Next() {
		var row priceRuleRow
		if err := dbRows.Scan(
			&row.ID,
			&row.CustomerID,
			&row.ProductID,
			&row.UnitKind,
			&row.Mode,
			&row.Value,
			&row.Active,
			&row.StartsAt,
			&row.EndsAt,
		); err != nil {
			return nil, err
		}
		out = append(out, priceRuleFromRow(row))
	}
	return out, dbRows.Err()
}

const insertPriceRuleSQL = `
INSERT INTO customer_price_rules (customer_id, product_id, unit_kind, mode, value, active, starts_at, ends_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`

// InsertPriceRule creates a customer pricing rule and returns its id.
func (s *Store) InsertPriceRule(ctx context.Context, row custpricing.Row) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, insertPriceRuleSQL,
		row.CustomerID,
		row.ProductID,
		string(row.UnitKind),
		string(row.Mode),
		row.Value,
		row.Active,
		nullableTime(row.StartsAt),
		nullableTime(row.EndsAt),
	).Scan(&id)
	return id, err
}

func priceRuleFromRow(row priceRuleRow) custpricing.Row {
	return custpricing.Row{
		ID:         row.ID,
		CustomerID: row.CustomerID,
		ProductID:  row.ProductID,
		UnitKind:   rules.UnitKind(row.UnitKind),
		Mode:       custpricing.Mode(row.Mode),
		Value:      row.Value,
		Active:     row.Active,
		StartsAt:   timePtr(row.StartsAt),
		EndsAt:     timePtr(row.EndsAt),
	}
}

func timePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

func nullableTime(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}
