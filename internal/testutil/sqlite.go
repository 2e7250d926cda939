// Package testutil opens throwaway SQLite databases carrying the warehouse schema.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter atomic.Int64

// schemaDDL mirrors pkg/migrate/migrations with SQLite types.
var schemaDDL = []string{
	`CREATE TABLE users (
		user_id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		role TEXT NOT NULL CHECK (role IN ('admin', 'manager', 'staff')),
		email TEXT NOT NULL,
		phone TEXT,
		date_joined DATE NOT NULL DEFAULT CURRENT_DATE,
		password TEXT NOT NULL
	)`,
	`CREATE TABLE suppliers (
		supplier_id INTEGER PRIMARY KEY AUTOINCREMENT,
		supplier_name TEXT NOT NULL,
		supplier_phone TEXT,
		supplier_email TEXT,
		supplier_city TEXT
	)`,
	`CREATE TABLE products (
		product_id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_name TEXT NOT NULL,
		category TEXT,
		unit_price DECIMAL(10,2) NOT NULL CHECK (unit_price >= 0),
		is_available BOOLEAN NOT NULL DEFAULT TRUE,
		reorder_level INTEGER
	)`,
	`CREATE TABLE warehouse (
		warehouse_id INTEGER PRIMARY KEY AUTOINCREMENT,
		warehouse_city TEXT NOT NULL,
		warehouse_total_capacity INTEGER NOT NULL CHECK (warehouse_total_capacity > 0)
	)`,
	`CREATE TABLE orders (
		order_id INTEGER PRIMARY KEY AUTOINCREMENT,
		supplier_id INTEGER REFERENCES suppliers(supplier_id) ON UPDATE CASCADE ON DELETE SET NULL,
		order_date DATE NOT NULL DEFAULT CURRENT_DATE,
		order_status TEXT NOT NULL DEFAULT 'pending' CHECK (order_status IN ('pending', 'received', 'cancelled')),
		created_by INTEGER REFERENCES users(user_id) ON UPDATE CASCADE ON DELETE SET NULL
	)`,
	`CREATE TABLE order_items (
		order_item_id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id INTEGER NOT NULL REFERENCES orders(order_id) ON UPDATE CASCADE ON DELETE CASCADE,
		product_id INTEGER NOT NULL REFERENCES products(product_id) ON UPDATE CASCADE ON DELETE CASCADE,
		quantity_ordered INTEGER NOT NULL CHECK (quantity_ordered > 0),
		unit_price DECIMAL(10,2) NOT NULL CHECK (unit_price >= 0)
	)`,
	`CREATE TABLE payments (
		payment_id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id INTEGER NOT NULL REFERENCES orders(order_id) ON UPDATE CASCADE ON DELETE CASCADE,
		amount_paid DECIMAL(10,2) NOT NULL CHECK (amount_paid > 0),
		payment_status TEXT NOT NULL CHECK (payment_status IN ('pending', 'partial', 'completed')),
		payment_date DATE NOT NULL DEFAULT CURRENT_DATE,
		recorded_by INTEGER REFERENCES users(user_id) ON UPDATE CASCADE ON DELETE SET NULL
	)`,
	`CREATE TABLE inventory (
		inventory_id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id INTEGER NOT NULL REFERENCES products(product_id) ON UPDATE CASCADE ON DELETE CASCADE,
		warehouse_id INTEGER NOT NULL REFERENCES warehouse(warehouse_id) ON UPDATE CASCADE ON DELETE CASCADE,
		stock_left INTEGER NOT NULL DEFAULT 0 CHECK (stock_left >= 0),
		last_restocked DATETIME DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT product_warehouse_unique UNIQUE (product_id, warehouse_id)
	)`,
	`CREATE TABLE stock_movement (
		movement_id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id INTEGER NOT NULL REFERENCES products(product_id) ON UPDATE CASCADE ON DELETE CASCADE,
		warehouse_id INTEGER NOT NULL REFERENCES warehouse(warehouse_id) ON UPDATE CASCADE ON DELETE CASCADE,
		movement_type TEXT NOT NULL CHECK (movement_type IN ('in', 'out')),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		movement_date DATE NOT NULL DEFAULT CURRENT_DATE,
		performed_by INTEGER REFERENCES users(user_id) ON UPDATE CASCADE ON DELETE SET NULL
	)`,
}

// OpenDB returns an isolated in-memory database with the schema applied and
// foreign keys enforced. It is closed when the test ends.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, dbCounter.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// one connection keeps the in-memory database alive and serialises writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schemaDDL {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return db
}
