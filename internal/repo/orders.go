package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/helloword214/zmstore-pos-sub006/internal/order"
	"github.com/helloword214/zmstore-pos-sub006/internal/rules"
)

const getOrderSQL = `
SELECT id, customer_id, total, created_at
FROM orders
WHERE id = $1`

const listOrderItemsSQL = `
SELECT id, product_id, name, qty, unit_price, unit_kind, line_total
FROM order_items
WHERE order_id = $1
ORDER BY id`

// orderRow is the typed shape of one orders row.
type orderRow struct {
	ID         int64
	CustomerID int64
	Total      pgtype.Float8
	CreatedAt  time.Time
}

// orderItemRow is the typed shape of one order_items row.
type orderItemRow struct {
	ID        int64
	ProductID int64
	Name      string
	Qty       float64
	UnitPrice float64
	UnitKind  string
	LineTotal pgtype.Float8
}

// GetOrderWithItems loads an order and its immutable item list.
func (s *Store) GetOrderWithItems(ctx context.Context, id int64) (order.Order, error) {
	var row orderRow
	err := s.DB.QueryRow(ctx, getOrderSQL, id).Scan(&row.ID, &row.CustomerID, &row.Total, &row.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, order.ErrNotFound
		}
		return order.Order{}, err
	}

	itemRows, err := s.DB.Query(ctx, listOrderItemsSQL, id)
	if err != nil {
		return order.Order{}, err
	}
	defer itemRows.Close()

	o := order.Order{
		ID:         row.ID,
		CustomerID: row.CustomerID,
		CreatedAt:  row.CreatedAt,
		Total:      floatPtr(row.Total),
	}
	for itemRows.Next() {
		var item orderItemRow
		if err := itemRows.Scan(
			&item.ID,
			&item.ProductID,
			&item.Name,
			&item.Qty,
			&item.UnitPrice,
			&item.UnitKind,
			&item.LineTotal,
		); err != nil {
			return order.Order{}, err
		}
		o.Items = append(o.Items, order.Item{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice,
			UnitKind:  rules.UnitKind(item.UnitKind),
			LineTotal: floatPtr(item.LineTotal),
		})
	}
	return o, itemRows.Err()
}

const insertOrderSQL = `
INSERT INTO orders (customer_id, subtotal, discount_total, total, created_at)
VALUES ($1, $2, $3, $4, now())
RETURNING id, created_at`

// CreateOrder persists the order header with its frozen totals.
func (s *Store) CreateOrder(ctx context.Context, customerID int64, subtotal, discountTotal, total float64) (int64, time.Time, error) {
	var (
		id        int64
		createdAt time.Time
	)
	err := s.DB.QueryRow(ctx, insertOrderSQL, customerID, subtotal, discountTotal, total).Scan(&id, &createdAt)
	return id, createdAt, err
}

const insertOrderItemSQL = `
INSERT INTO order_items (order_id, product_id, name, qty, unit_price, unit_kind, line_total)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`

// CreateOrderItem persists one order line with its frozen line total.
func (s *Store) CreateOrderItem(ctx context.Context, orderID int64, item order.Item) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, insertOrderItemSQL,
		orderID,
		item.ProductID,
		item.Name,
		item.Qty,
		item.UnitPrice,
		string(item.UnitKind),
		nullableFloat(item.LineTotal),
	).Scan(&id)
	return id, err
}

func floatPtr(v pgtype.Float8) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullableFloat(v *float64) pgtype.Float8 {
	if v == nil {
		return pgtype.Float8{}
	}
	return pgtype.Float8{Float64: *v, Valid: true}
}
