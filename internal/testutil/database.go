package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the integration-test database, skipping the test when it
// is not reachable. Override the DSN with STOCKROOM_TEST_DSN.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("STOCKROOM_TEST_DSN")
	if dsn == "" {
		dsn = "root:@tcp(localhost:3306)/stockroom_test?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties the allocation tables and closes the handle.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"allocation_history", "stock_records", "product_variants", "products", "locations"}
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the schema the allocation core needs. Mirrors
// migrations/00001_create_allocation_tables.sql.
func SetupTestTables(t *testing.T, db *sql.DB) {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS locations (
			id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			kind ENUM('WAREHOUSE', 'BRANCH') NOT NULL,
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			sku VARCHAR(64) NOT NULL DEFAULT '',
			has_variants TINYINT(1) NOT NULL DEFAULT 0,
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			is_deleted TINYINT(1) NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS product_variants (
			id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			product_id INT NOT NULL,
			name VARCHAR(255) NOT NULL,
			sku VARCHAR(64) NOT NULL DEFAULT '',
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_variants_product (product_id)
		)`,
		`CREATE TABLE IF NOT EXISTS stock_records (
			id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			product_id INT NOT NULL,
			variant_id INT NOT NULL DEFAULT 0,
			location_id INT NOT NULL,
			quantity INT NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_stock_key (product_id, variant_id, location_id),
			KEY idx_stock_location (location_id)
		)`,
		`CREATE TABLE IF NOT EXISTS allocation_history (
			id CHAR(36) NOT NULL PRIMARY KEY,
			product_id INT NOT NULL,
			variant_id INT NOT NULL DEFAULT 0,
			source_location_id INT NOT NULL,
			destination_location_id INT NOT NULL,
			quantity INT NOT NULL,
			notes TEXT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_history_product (product_id),
			KEY idx_history_destination (destination_location_id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to create test table: %v", err)
		}
	}
}

// SeedLocation inserts a location row and returns its id.
func SeedLocation(t *testing.T, db *sql.DB, name, kind string) int {
	result, err := db.Exec(`INSERT INTO locations (name, kind) VALUES (?, ?)`, name, kind)
	if err != nil {
		t.Fatalf("failed to seed location: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("failed to read location id: %v", err)
	}
	return int(id)
}

// SeedProduct inserts a product row and returns its id.
func SeedProduct(t *testing.T, db *sql.DB, name string, hasVariants bool) int {
	result, err := db.Exec(`INSERT INTO products (name, has_variants) VALUES (?, ?)`, name, hasVariants)
	if err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("failed to read product id: %v", err)
	}
	return int(id)
}

// SeedVariant inserts a variant row and returns its id.
func SeedVariant(t *testing.T, db *sql.DB, productID int, name string) int {
	result, err := db.Exec(`INSERT INTO product_variants (product_id, name) VALUES (?, ?)`, productID, name)
	if err != nil {
		t.Fatalf("failed to seed variant: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("failed to read variant id: %v", err)
	}
	return int(id)
}

// SeedStock inserts a stock record directly.
func SeedStock(t *testing.T, db *sql.DB, productID, variantID, locationID, quantity int) {
	_, err := db.Exec(
		`INSERT INTO stock_records (product_id, variant_id, location_id, quantity) VALUES (?, ?, ?, ?)`,
		productID, variantID, locationID, quantity,
	)
	if err != nil {
		t.Fatalf("failed to seed stock record: %v", err)
	}
}
