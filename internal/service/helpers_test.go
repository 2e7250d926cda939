package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-warehouse-ms/internal/model"
	"go-warehouse-ms/internal/policy"
	"go-warehouse-ms/internal/store"
	"go-warehouse-ms/internal/testutil"
)

type fixture struct {
	acc     *store.Accessor
	admin   *model.Principal
	manager *model.Principal
	staff   *model.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	acc := store.NewAccessor(testutil.OpenDB(t))
	f := &fixture{acc: acc}
	f.admin = f.user(t, "root", model.RoleAdmin, "rootpass")
	f.manager = f.user(t, "mgr", model.RoleManager, "mgrpass")
	f.staff = f.user(t, "clerk", model.RoleStaff, "clerkpass")
	return f
}

func (f *fixture) user(t *testing.T, username string, role model.Role, password string) *model.Principal {
	t.Helper()
	hash, err := model.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	id, err := f.acc.Insert(context.Background(), store.TableUsers, map[string]any{
		"username": username,
		"role":     string(role),
		"email":    username + "@example.com",
		"password": hash,
	})
	require.NoError(t, err)
	return &model.Principal{UserID: id, Username: username, Role: role}
}

func (f *fixture) warehouse(t *testing.T, city string, capacity int64) int64 {
	t.Helper()
	id, err := f.acc.Insert(context.Background(), store.TableWarehouse, map[string]any{
		"warehouse_city":           city,
		"warehouse_total_capacity": capacity,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) product(t *testing.T, name string, price string) int64 {
	t.Helper()
	id, err := f.acc.Insert(context.Background(), store.TableProducts, map[string]any{
		"product_name": name,
		"unit_price":   decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) stock(t *testing.T, productID, warehouseID, qty int64) int64 {
	t.Helper()
	id, err := f.acc.Insert(context.Background(), store.TableInventory, map[string]any{
		"product_id":   productID,
		"warehouse_id": warehouseID,
		"stock_left":   qty,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) supplier(t *testing.T, name string) int64 {
	t.Helper()
	id, err := f.acc.Insert(context.Background(), store.TableSuppliers, map[string]any{"supplier_name": name})
	require.NoError(t, err)
	return id
}

func (f *fixture) order(t *testing.T, supplierID int64, status model.OrderStatus) int64 {
	t.Helper()
	id, err := f.acc.Insert(context.Background(), store.TableOrders, map[string]any{
		"supplier_id":  supplierID,
		"order_status": string(status),
		"created_by":   f.manager.UserID,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) item(t *testing.T, orderID, productID, qty int64, price string) {
	t.Helper()
	_, err := f.acc.Insert(context.Background(), store.TableOrderItems, map[string]any{
		"order_id":         orderID,
		"product_id":       productID,
		"quantity_ordered": qty,
		"unit_price":       decimal.RequireFromString(price),
	})
	require.NoError(t, err)
}

func (f *fixture) payment(t *testing.T, orderID int64, amount string) {
	t.Helper()
	_, err := f.acc.Insert(context.Background(), store.TablePayments, map[string]any{
		"order_id":       orderID,
		"amount_paid":    decimal.RequireFromString(amount),
		"payment_status": string(model.PaymentPartial),
	})
	require.NoError(t, err)
}

func (f *fixture) count(t *testing.T, table store.Table) int {
	t.Helper()
	rows, err := f.acc.List(context.Background(), table)
	require.NoError(t, err)
	return len(rows)
}

type recordingHub struct {
	mu        sync.Mutex
	events    []map[string]any
	resources []policy.Resource
}

func (h *recordingHub) Publish(resource policy.Resource, payload map[string]any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, payload)
	h.resources = append(h.resources, resource)
}

func (h *recordingHub) actions() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.events))
	for _, e := range h.events {
		if a, ok := e["action"].(string); ok {
			out = append(out, a)
		}
	}
	return out
}
