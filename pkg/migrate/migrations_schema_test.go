package migrate_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"go-warehouse-ms/pkg/migrate"
)

func TestWarehouseSchemaMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_warehouse_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no schema migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"-- +goose Up",
		"-- +goose Down",
		"username VARCHAR(255) NOT NULL UNIQUE",
		"CHECK (role IN ('admin', 'manager', 'staff'))",
		"CHECK (order_status IN ('pending', 'received', 'cancelled'))",
		"CHECK (payment_status IN ('pending', 'partial', 'completed'))",
		"CHECK (warehouse_total_capacity > 0)",
		"CHECK (stock_left >= 0)",
		"CONSTRAINT product_warehouse_unique UNIQUE (product_id, warehouse_id)",
		"FOREIGN KEY (supplier_id) REFERENCES suppliers(supplier_id) ON UPDATE CASCADE ON DELETE SET NULL",
		"FOREIGN KEY (order_id) REFERENCES orders(order_id) ON UPDATE CASCADE ON DELETE CASCADE",
		"FOREIGN KEY (performed_by) REFERENCES users(user_id) ON UPDATE CASCADE ON DELETE SET NULL",
		"DROP TABLE IF EXISTS users",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestEmbeddedMigrationsMatchDirectory(t *testing.T) {
	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	require.NoError(t, err)

	embedded, err := migrate.Files()
	require.NoError(t, err)
	require.Len(t, embedded, len(onDisk))
	for i, path := range onDisk {
		require.Equal(t, filepath.Base(path), embedded[i])
	}
}

func TestRunRequiresDB(t *testing.T) {
	require.Error(t, migrate.Run(context.Background(), nil, "up"))
}
