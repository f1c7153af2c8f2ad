package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/helloword214/zmstore-pos-sub006/internal/catalog"
)

const getProductSQL = `
SELECT id, name, category_id, brand_id, sku, retail_price, pack_price, allow_retail_sale
FROM products
WHERE id = $1`

// productRow is the typed shape of one products row.
type productRow struct {
	ID              int64
	Name            string
	CategoryID      pgtype.Text
	BrandID         pgtype.Text
	SKU             pgtype.Text
	RetailPrice     float64
	PackPrice       float64
	AllowRetailSale bool
}

// GetProduct loads a single product by id.
func (s *Store) GetProduct(ctx context.Context, id int64) (catalog.Product, error) {
	var row productRow
	err := s.DB.QueryRow(ctx, getProductSQL, id).Scan(
		&row.ID,
		&row.Name,
		&row.CategoryID,
		&row.BrandID,
		&row.SKU,
		&row.RetailPrice,
		&row.PackPrice,
		&row.AllowRetailSale,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Product{}, catalog.ErrNotFound
		}
		return catalog.Product{}, err
	}
	return productFromRow(row), nil
}

const insertProductSQL = `
INSERT INTO products (name, category_id, brand_id, sku, retail_price, pack_price, allow_retail_sale)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`

// InsertProduct creates a product and returns its id.
func (s *Store) InsertProduct(ctx context.Context, p catalog.Product) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, insertProductSQL,
		p.Name,
		nullableText(p.CategoryID),
		nullableText(p.BrandID),
		nullableText(p.SKU),
		p.RetailPrice,
		p.PackPrice,
		p.AllowRetailSale,
	).Scan(&id)
	return id, err
}

func productFromRow(row productRow) catalog.Product {
	return catalog.Product{
		ID:              row.ID,
		Name:            row.Name,
		CategoryID:      textValue(row.CategoryID),
		BrandID:         textValue(row.BrandID),
		SKU:             textValue(row.SKU),
		RetailPrice:     row.RetailPrice,
		PackPrice:       row.PackPrice,
		AllowRetailSale: row.AllowRetailSale,
	}
}

func textValue(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

func nullableText(v string) pgtype.Text {
	if v == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: v, Valid: true}
}
