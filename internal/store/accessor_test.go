package store_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-warehouse-ms/internal/model"
	"go-warehouse-ms/internal/store"
	"go-warehouse-ms/internal/testutil"
	pkgerrors "go-warehouse-ms/pkg/errors"
)

func newAccessor(t *testing.T) *store.Accessor {
	t.Helper()
	return store.NewAccessor(testutil.OpenDB(t))
}

func TestInsertThenViewRoundTrip(t *testing.T) {
	ctx := context.Background()
	acc := newAccessor(t)

	id, err := acc.Insert(ctx, store.TableSuppliers, map[string]any{
		"supplier_name":  "Acme",
		"supplier_phone": "555-0100",
		"supplier_email": "sales@acme.test",
		"supplier_city":  "Lyon",
	})
	require.NoError(t, err)
	require.Positive(t, id)

	row, found, err := acc.View(ctx, store.TableSuppliers, "supplier_id", id)
	require.NoError(t, err)
	require.True(t, found)

	gotID, ok := row.Int64("supplier_id")
	require.True(t, ok)
	assert.Equal(t, id, gotID)
	for col, want := range map[string]string{
		"supplier_name":  "Acme",
		"supplier_phone": "555-0100",
		"supplier_email": "sales@acme.test",
		"supplier_city":  "Lyon",
	} {
		got, ok := row.String(col)
		require.True(t, ok, col)
		assert.Equal(t, want, got, col)
	}
}

func TestInsertKeepsDecimalValues(t *testing.T) {
	ctx := context.Background()
	acc := newAccessor(t)

	id, err := acc.Insert(ctx, store.TableProducts, map[string]any{
		"product_name": "Bolt",
		"unit_price":   decimal.RequireFromString("12.50"),
	})
	require.NoError(t, err)

	price, found, err := acc.GetColumn(ctx, store.TableProducts, "unit_price", "product_id", id)
	require.NoError(t, err)
	require.True(t, found)
	got, err := store.AsDecimal(price)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("12.5")), "got %s", got)
}

func TestViewAbsentKey(t *testing.T) {
	row, found, err := newAccessor(t).View(context.Background(), store.TableWarehouse, "warehouse_id", 999)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, row)
}

func TestResolveKey(t *testing.T) {
	ctx := context.Background()
	acc := newAccessor(t)

	_, found, err := acc.ResolveKey(ctx, store.TableProducts, "product_id", []string{"product_name"}, []any{"Widget"})
	require.NoError(t, err)
	assert.False(t, found, "absent before insert")

	id, err := acc.Insert(ctx, store.TableProducts, map[string]any{"product_name": "Widget", "unit_price": 3})
	require.NoError(t, err)

	got, found, err := acc.ResolveKey(ctx, store.TableProducts, "product_id", []string{"product_name"}, []any{"Widget"})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, id, got)
}

func TestResolveKeyConjunctive(t *testing.T) {
	ctx := context.Background()
	acc := newAccessor(t)

	_, err := acc.Insert(ctx, store.TableSuppliers, map[string]any{"supplier_name": "Acme", "supplier_city": "Lyon"})
	require.NoError(t, err)
	paris, err := acc.Insert(ctx, store.TableSuppliers, map[string]any{"supplier_name": "Acme", "supplier_city": "Paris"})
	require.NoError(t, err)

	got, found, err := acc.ResolveKey(ctx, store.TableSuppliers, "supplier_id",
		[]string{"supplier_name", "supplier_city"}, []any{"Acme", "Paris"})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, paris, got)

	_, found, err = acc.ResolveKey(ctx, store.TableSuppliers, "supplier_id",
		[]string{"supplier_name", "supplier_city"}, []any{"Acme", "Nice"})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestResolveKeyRejectsMismatchedInput(t *testing.T) {
	ctx := context.Background()
	acc := newAccessor(t)

	_, _, err := acc.ResolveKey(ctx, store.TableProducts, "product_id", []string{"product_name", "category"}, []any{"x"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, _, err = acc.ResolveKey(ctx, store.TableProducts, "product_id", nil, nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestUpdateAndDeleteMissingKeyAreNoops(t *testing.T) {
	ctx := context.Background()
	acc := newAccessor(t)

	id, err := acc.Insert(ctx, store.TableWarehouse, map[string]any{"warehouse_city": "Oslo", "warehouse_total_capacity": 100})
	require.NoError(t, err)

	require.NoError(t, acc.Update(ctx, store.TableWarehouse, "warehouse_id", id+100, map[string]any{"warehouse_city": "Bergen"}))
	require.NoError(t, acc.Delete(ctx, store.TableWarehouse, "warehouse_id", id+100))

	rows, err := acc.List(ctx, store.TableWarehouse)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	city, _ := rows[0].String("warehouse_city")
	assert.Equal(t, "Oslo", city)
}

func TestUpdateThenDelete(t *testing.T) {
	ctx := context.Background()
	acc := newAccessor(t)

	id, err := acc.Insert(ctx, store.TableWarehouse, map[string]any{"warehouse_city": "Oslo", "warehouse_total_capacity": 100})
	require.NoError(t, err)

	require.NoError(t, acc.Update(ctx, store.TableWarehouse, "warehouse_id", id, map[string]any{"warehouse_total_capacity": 250}))
	row, found, err := acc.View(ctx, store.TableWarehouse, "warehouse_id", id)
	require.NoError(t, err)
	require.True(t, found)
	capacity, _ := row.Int64("warehouse_total_capacity")
	assert.Equal(t, int64(250), capacity)

	require.NoError(t, acc.Delete(ctx, store.TableWarehouse, "warehouse_id", id))
	_, found, err = acc.View(ctx, store.TableWarehouse, "warehouse_id", id)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUnknownIdentifiersAreRejected(t *testing.T) {
	ctx := context.Background()
	acc := newAccessor(t)

	_, _, err := acc.View(ctx, store.Table("users; DROP TABLE users"), "user_id", 1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = acc.Insert(ctx, store.TableUsers, map[string]any{"username": "x", "is_admin": true})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	err = acc.Update(ctx, store.TableProducts, "product_id = 1 OR 1", 1, map[string]any{"category": "x"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, _, err = acc.GetColumn(ctx, store.TableProducts, "password", "product_id", 1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = store.ParseTable("payments")
	assert.NoError(t, err)
	_, err = store.ParseTable("pg_user")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestEmptyFieldsRejected(t *testing.T) {
	ctx := context.Background()
	acc := newAccessor(t)

	_, err := acc.Insert(ctx, store.TableSuppliers, map[string]any{})
	assert.ErrorIs(t, err, store.ErrEmptyFields)

	err = acc.Update(ctx, store.TableSuppliers, "supplier_id", 1, nil)
	assert.ErrorIs(t, err, store.ErrEmptyFields)
}

func TestConstraintViolationsAreClassified(t *testing.T) {
	ctx := context.Background()
	acc := newAccessor(t)

	user := map[string]any{"username": "ana", "role": "staff", "email": "ana@example.com", "password": "x"}
	_, err := acc.Insert(ctx, store.TableUsers, user)
	require.NoError(t, err)

	_, err = acc.Insert(ctx, store.TableUsers, user)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConstraint), "duplicate username: %v", err)

	_, err = acc.Insert(ctx, store.TableOrderItems, map[string]any{
		"order_id": 42, "product_id": 42, "quantity_ordered": 1, "unit_price": 1,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConstraint), "missing parents: %v", err)
	assert.True(t, pkgerrors.IsExecution(err))

	_, err = acc.Insert(ctx, store.TableUsers, map[string]any{"username": "bo", "role": "owner", "email": "b@example.com", "password": "x"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConstraint), "bad enum: %v", err)
}

func TestDeleteCascadesToChildren(t *testing.T) {
	ctx := context.Background()
	acc := newAccessor(t)

	supplier, err := acc.Insert(ctx, store.TableSuppliers, map[string]any{"supplier_name": "Acme"})
	require.NoError(t, err)
	product, err := acc.Insert(ctx, store.TableProducts, map[string]any{"product_name": "Bolt", "unit_price": 2})
	require.NoError(t, err)
	order, err := acc.Insert(ctx, store.TableOrders, map[string]any{"supplier_id": supplier, "order_status": "pending"})
	require.NoError(t, err)
	_, err = acc.Insert(ctx, store.TableOrderItems, map[string]any{
		"order_id": order, "product_id": product, "quantity_ordered": 3, "unit_price": 2,
	})
	require.NoError(t, err)

	require.NoError(t, acc.Delete(ctx, store.TableSuppliers, "supplier_id", supplier))
	row, found, err := acc.View(ctx, store.TableOrders, "order_id", order)
	require.NoError(t, err)
	require.True(t, found)
	assert.Nil(t, row["supplier_id"], "supplier reference set null")

	require.NoError(t, acc.Delete(ctx, store.TableOrders, "order_id", order))
	items, err := acc.List(ctx, store.TableOrderItems)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListIntoModels(t *testing.T) {
	ctx := context.Background()
	acc := newAccessor(t)

	for _, city := range []string{"Oslo", "Lima"} {
		_, err := acc.Insert(ctx, store.TableWarehouse, map[string]any{"warehouse_city": city, "warehouse_total_capacity": 10})
		require.NoError(t, err)
	}

	var warehouses []model.Warehouse
	require.NoError(t, acc.ListInto(ctx, store.TableWarehouse, &warehouses))
	require.Len(t, warehouses, 2)
	assert.Equal(t, "Oslo", warehouses[0].WarehouseCity)
	assert.Equal(t, int64(10), warehouses[1].TotalCapacity)
}

func TestTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	acc := newAccessor(t)
	sentinel := pkgerrors.New(pkgerrors.CodeConflict, "stop")

	err := acc.Transaction(ctx, func(tx *store.Accessor) error {
		if _, err := tx.Insert(ctx, store.TableSuppliers, map[string]any{"supplier_name": "Ghost"}); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	rows, err := acc.List(ctx, store.TableSuppliers)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestTransactionSurvivesFailedStatement(t *testing.T) {
	ctx := context.Background()
	acc := newAccessor(t)

	err := acc.Transaction(ctx, func(tx *store.Accessor) error {
		_, err := tx.Insert(ctx, store.TableOrderItems, map[string]any{
			"order_id": 1, "product_id": 1, "quantity_ordered": 1, "unit_price": 1,
		})
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConstraint))

		_, err = tx.Insert(ctx, store.TableSuppliers, map[string]any{"supplier_name": "Kept"})
		return err
	})
	require.NoError(t, err)

	rows, err := acc.List(ctx, store.TableSuppliers)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestLockRow(t *testing.T) {
	ctx := context.Background()
	acc := newAccessor(t)

	id, err := acc.Insert(ctx, store.TableWarehouse, map[string]any{"warehouse_city": "Oslo", "warehouse_total_capacity": 100})
	require.NoError(t, err)

	_, _, err = acc.LockRow(ctx, store.TableWarehouse, "warehouse_id", id)
	require.ErrorIs(t, err, store.ErrNotInTransaction)

	err = acc.Transaction(ctx, func(tx *store.Accessor) error {
		row, found, err := tx.LockRow(ctx, store.TableWarehouse, "warehouse_id", id)
		require.NoError(t, err)
		require.True(t, found)
		capacity, _ := row.Int64("warehouse_total_capacity")
		assert.Equal(t, int64(100), capacity)

		_, found, err = tx.LockRow(ctx, store.TableWarehouse, "warehouse_id", id+1)
		require.NoError(t, err)
		assert.False(t, found)
		return nil
	})
	require.NoError(t, err)
}

func TestExecutorScanAggregate(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	acc := store.NewAccessor(db)

	wh, err := acc.Insert(ctx, store.TableWarehouse, map[string]any{"warehouse_city": "Oslo", "warehouse_total_capacity": 100})
	require.NoError(t, err)
	for _, name := range []string{"a", "b"} {
		p, err := acc.Insert(ctx, store.TableProducts, map[string]any{"product_name": name, "unit_price": 1})
		require.NoError(t, err)
		_, err = acc.Insert(ctx, store.TableInventory, map[string]any{"product_id": p, "warehouse_id": wh, "stock_left": 40})
		require.NoError(t, err)
	}

	var total struct {
		Total int64 `gorm:"column:total"`
	}
	require.NoError(t, store.NewExecutor(db).Scan(ctx, store.StmtWarehouseStockTotal, map[string]any{"warehouse_id": wh}, &total))
	assert.Equal(t, int64(80), total.Total)
}

func TestExecutorRunWithoutFetch(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	exec := store.NewExecutor(db)

	rows, err := exec.Run(ctx, "INSERT INTO suppliers (supplier_name) VALUES (@name)", map[string]any{"name": "Acme"}, false)
	require.NoError(t, err)
	assert.Nil(t, rows)

	rows, err = exec.Run(ctx, "SELECT supplier_name FROM suppliers", nil, true)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	name, _ := rows[0].String("supplier_name")
	assert.Equal(t, "Acme", name)

	_, err = exec.Run(ctx, "SELECT * FROM no_such_table", nil, true)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeExecution))
	assert.False(t, pkgerrors.IsCode(err, pkgerrors.CodeConstraint))
}

func TestViewAsAndQueryAs(t *testing.T) {
	ctx := context.Background()
	acc := newAccessor(t)

	id, err := acc.Insert(ctx, store.TableProducts, map[string]any{
		"product_name":  "Nut",
		"unit_price":    decimal.RequireFromString("0.25"),
		"reorder_level": 10,
	})
	require.NoError(t, err)

	product, found, err := store.ViewAs[model.Product](ctx, acc, store.TableProducts, "product_id", id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Nut", product.ProductName)
	assert.True(t, product.IsAvailable, "defaults to available")
	require.NotNil(t, product.ReorderLevel)
	assert.Equal(t, 10, *product.ReorderLevel)
	assert.True(t, product.UnitPrice.Equal(decimal.RequireFromString("0.25")))

	_, found, err = store.ViewAs[model.Product](ctx, acc, store.TableProducts, "product_id", id+1)
	require.NoError(t, err)
	assert.False(t, found)

	low, err := store.QueryAs[model.LowStockProduct](ctx, acc, store.StmtLowStockProducts, nil)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, int64(0), low[0].StockLeft)
}
