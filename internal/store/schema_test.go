package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplatesAreCachedAndStable(t *testing.T) {
	a := insertTemplate(TableSuppliers, sortedColumns(map[string]any{"supplier_name": 1, "supplier_city": 2}))
	b := insertTemplate(TableSuppliers, sortedColumns(map[string]any{"supplier_city": 3, "supplier_name": 4}))
	assert.Equal(t, a, b)
	assert.Equal(t, Statement("INSERT INTO suppliers (supplier_city, supplier_name) VALUES (@v_supplier_city, @v_supplier_name) RETURNING supplier_id"), a)

	_, cached := templates.Load("insert|suppliers|supplier_city,supplier_name")
	assert.True(t, cached)
}

func TestStatementShapes(t *testing.T) {
	assert.Equal(t, Statement("SELECT * FROM warehouse WHERE warehouse_city = @k LIMIT 1"), viewTemplate(TableWarehouse, "warehouse_city"))
	assert.Equal(t, Statement("UPDATE products SET category = @v_category, unit_price = @v_unit_price WHERE product_id = @k"),
		updateTemplate(TableProducts, "product_id", []string{"category", "unit_price"}))
	assert.Equal(t, Statement("DELETE FROM orders WHERE order_id = @k"), deleteTemplate(TableOrders, "order_id"))
	assert.Equal(t, Statement("SELECT product_id FROM products WHERE product_name = @s0 AND category = @s1 LIMIT 1"),
		resolveTemplate(TableProducts, "product_id", []string{"product_name", "category"}))
	assert.Equal(t, Statement("SELECT unit_price FROM products WHERE product_id = @k LIMIT 1"),
		columnTemplate(TableProducts, "unit_price", "product_id"))
}

func TestCheckIdentifiers(t *testing.T) {
	assert.NoError(t, checkIdentifiers(TableInventory, "inventory_id", "stock_left"))
	assert.ErrorIs(t, checkIdentifiers(TableInventory, "stock"), ErrUnknownIdentifier)
	assert.ErrorIs(t, checkIdentifiers(Table("inventory i"), "stock_left"), ErrUnknownIdentifier)
}

func TestPrimaryKeys(t *testing.T) {
	for table, pk := range map[Table]string{
		TableUsers:         "user_id",
		TableWarehouse:     "warehouse_id",
		TableStockMovement: "movement_id",
		TableOrderItems:    "order_item_id",
	} {
		assert.Equal(t, pk, table.PrimaryKey())
	}
}

func TestRowConversions(t *testing.T) {
	row := Row{"a": int32(7), "b": "12.50", "c": []byte("9"), "d": nil, "e": float64(3)}

	n, ok := row.Int64("a")
	assert.True(t, ok)
	assert.Equal(t, int64(7), n)

	n, ok = row.Int64("c")
	assert.True(t, ok)
	assert.Equal(t, int64(9), n)

	_, ok = row.Int64("d")
	assert.False(t, ok)

	d, ok := row.Decimal("b")
	assert.True(t, ok)
	assert.Equal(t, "12.5", d.String())

	d, ok = row.Decimal("e")
	assert.True(t, ok)
	assert.Equal(t, "3", d.String())

	_, ok = row.String("missing")
	assert.False(t, ok)
}
