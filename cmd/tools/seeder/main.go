package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedProducts(db)
	seedCustomers(db)
	seedPriceRules(db)

	log.Println("Seeding completed successfully!")
}

func seedProducts(db *sql.DB) {
	products := []struct {
		Name        string
		CategoryID  string
		BrandID     string
		SKU         string
		RetailPrice float64
		PackPrice   float64
		AllowRetail bool
	}{
		{"Sinandomeng Rice 1kg", "grains", "sinandomeng", "RICE-SNDM-1K", 52.00, 2500.00, true},
		{"Integra 1000 Feed", "feeds", "bmeg", "FEED-INT-1000", 38.50, 1850.00, true},
		{"Hog Grower Pellet", "feeds", "bmeg", "FEED-HOG-GRW", 0, 1620.00, false},
		{"Lucky Me Pancit Canton", "instant", "luckyme", "NOODLE-LM-PC", 15.00, 360.00, true},
		{"Cooking Oil 1L", "condiments", "golden", "OIL-GF-1L", 85.00, 990.00, true},
		{"Brown Sugar 1kg", "baking", "local", "SUGAR-BR-1K", 68.00, 1620.00, true},
		{"Corned Beef 150g", "canned", "argentina", "CAN-AR-CB150", 32.00, 1520.00, true},
		{"Chick Booster Mash", "feeds", "bmeg", "FEED-CHK-BST", 45.00, 2100.00, true},
	}

	fmt.Println("Seeding Products...")
	for _, p := range products {
		_, err := db.Exec(`
			INSERT INTO products (name, category_id, brand_id, sku, retail_price, pack_price, allow_retail_sale)
			SELECT $1, $2, $3, $4, $5, $6, $7
			WHERE NOT EXISTS (SELECT 1 FROM products WHERE sku = $4);
		`, p.Name, p.CategoryID, p.BrandID, p.SKU, p.RetailPrice, p.PackPrice, p.AllowRetail)
		if err != nil {
			log.Printf("Failed to seed product %s: %v", p.SKU, err)
		}
	}
}

func seedCustomers(db *sql.DB) {
	customers := []string{
		"Aling Nena",
		"Mang Ben Piggery",
		"Tindahan ni Rosa",
		"Barangay Captain Cruz",
		"JM Poultry Supply",
	}

	fmt.Println("Seeding Customers...")
	for _, name := range customers {
		_, err := db.Exec(`
			INSERT INTO customers (name)
			SELECT $1
			WHERE NOT EXISTS (SELECT 1 FROM customers WHERE name = $1);
		`, name)
		if err != nil {
			log.Printf("Failed to seed customer %s: %v", name, err)
		}
	}
}

func seedPriceRules(db *sql.DB) {
	rules := []struct {
		Customer string
		SKU      string
		UnitKind string
		Mode     string
		Value    float64
	}{
		// Suki piggery gets sacks at a fixed price.
		{"Mang Ben Piggery", "FEED-INT-1000", "PACK", "FIXED_PRICE", 1780.00},
		// Sari-sari store reseller gets a percentage off retail noodles.
		{"Tindahan ni Rosa", "NOODLE-LM-PC", "RETAIL", "PERCENT_DISCOUNT", 10},
		// Long-time customer gets a peso amount off rice per kilo.
		{"Aling Nena", "RICE-SNDM-1K", "RETAIL", "FIXED_DISCOUNT", 2.00},
		{"JM Poultry Supply", "FEED-CHK-BST", "PACK", "FIXED_PRICE", 1995.00},
	}

	fmt.Println("Seeding Customer Price Rules...")
	for _, r := range rules {
		_, err := db.Exec(`
			INSERT INTO customer_price_rules (customer_id, product_id, unit_kind, mode, value, active)
			SELECT c.id, p.id, $3, $4, $5, TRUE
			FROM customers c, products p
			WHERE c.name = $1 AND p.sku = $2
			  AND NOT EXISTS (
				SELECT 1 FROM customer_price_rules r
				JOIN customers c2 ON c2.id = r.customer_id
				JOIN products p2 ON p2.id = r.product_id
				WHERE c2.name = $1 AND p2.sku = $2 AND r.mode = $4
			  );
		`, r.Customer, r.SKU, r.UnitKind, r.Mode, r.Value)
		if err != nil {
			log.Printf("Failed to seed rule for %s on %s: %v", r.Customer, r.SKU, err)
		}
	}
}
