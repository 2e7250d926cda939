package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-warehouse-ms/internal/auth"
	"go-warehouse-ms/internal/middleware"
	"go-warehouse-ms/internal/model"
	"go-warehouse-ms/internal/service"
	"go-warehouse-ms/internal/store"
	"go-warehouse-ms/internal/testutil"
	"go-warehouse-ms/pkg/config"
	pkgerrors "go-warehouse-ms/pkg/errors"
	"go-warehouse-ms/pkg/logger"
	"go-warehouse-ms/pkg/metrics"
)

type testServer struct {
	app    *fiber.App
	acc    *store.Accessor
	tokens map[model.Role]string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	logg := logger.Nop()
	acc := store.NewAccessor(testutil.OpenDB(t))
	m := metrics.NewRuleMetrics(prometheus.NewRegistry())
	jwtCfg := config.JWTConfig{Secret: "handler-test", Issuer: "go-warehouse-ms", ExpirationHours: 1}

	gate, err := auth.NewGate(acc, bcrypt.MinCost)
	require.NoError(t, err)
	authService := service.NewAuthService(gate, acc, jwtCfg, bcrypt.MinCost, logg)
	userService := service.NewUserService(acc, logg, bcrypt.MinCost)

	handlers := Handlers{
		Auth:      NewAuthHandler(authService, logg),
		Inventory: NewInventoryHandler(service.NewInventoryService(acc, nil, logg, m), logg),
		Product:   NewProductHandler(service.NewProductService(acc, nil, logg), logg),
		Warehouse: NewWarehouseHandler(service.NewWarehouseService(acc, logg), logg),
		Supplier:  NewSupplierHandler(service.NewSupplierService(acc, logg), logg),
		Order:     NewOrderHandler(service.NewOrderService(acc, nil, logg, m), logg),
		Payment:   NewPaymentHandler(service.NewPaymentService(acc, nil, logg, m), logg),
		User:      NewUserHandler(userService, logg),
		Report:    NewReportHandler(service.NewReportService(acc, logg), logg),
	}
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logg)})
	handlers.Register(app.Group("/api/v1"), middleware.RequireAuth(authService, logg))

	_, err = userService.EnsureAdmin(ctx, config.AdminConfig{Username: "root", Password: "rootpass", Email: "root@example.com"})
	require.NoError(t, err)
	admin := &model.Principal{UserID: 1, Username: "root", Role: model.RoleAdmin}
	for _, u := range []service.CreateUserRequest{
		{Username: "mgr", Password: "mgrpass", Email: "mgr@example.com", Role: model.RoleManager},
		{Username: "clerk", Password: "clerkpass", Email: "clerk@example.com", Role: model.RoleStaff},
	} {
		_, err := userService.CreateUser(ctx, admin, u)
		require.NoError(t, err)
	}

	s := &testServer{app: app, acc: acc, tokens: map[model.Role]string{}}
	for role, creds := range map[model.Role][2]string{
		model.RoleAdmin:   {"root", "rootpass"},
		model.RoleManager: {"mgr", "mgrpass"},
		model.RoleStaff:   {"clerk", "clerkpass"},
	} {
		resp, err := authService.Login(ctx, creds[0], creds[1])
		require.NoError(t, err)
		s.tokens[role] = resp.Token
	}
	return s
}

func (s *testServer) do(t *testing.T, method, path string, role model.Role, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token, ok := s.tokens[role]; ok {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestLoginEndpoint(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "mgr", "password": "mgrpass"})
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["token"])

	status, wrong := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "mgr", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, status)
	_, unknown := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "ghost", "password": "nope"})
	assert.Equal(t, wrong, unknown)

	status, _ = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "mgr"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, me := s.do(t, http.MethodGet, "/api/v1/auth/me", model.RoleStaff, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, me["permissions"], "inventory:view")
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newTestServer(t)
	status, _ := s.do(t, http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestPolicyDenialIsForbidden(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/v1/products", model.RoleStaff, map[string]any{"product_name": "Bolt", "unit_price": "1.00"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, string(pkgerrors.CodeForbidden), body["code"])

	status, _ = s.do(t, http.MethodGet, "/api/v1/orders", model.RoleStaff, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodGet, "/api/v1/users", model.RoleManager, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestInventoryCapacityOverHTTP(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodPost, "/api/v1/warehouses", model.RoleManager, map[string]any{"warehouse_city": "Oslo", "warehouse_total_capacity": 100})
	require.Equal(t, http.StatusCreated, status)
	for _, name := range []string{"Bolt", "Nut"} {
		status, _ = s.do(t, http.MethodPost, "/api/v1/products", model.RoleManager, map[string]any{"product_name": name, "unit_price": "1.00"})
		require.Equal(t, http.StatusCreated, status)
	}

	status, _ = s.do(t, http.MethodPost, "/api/v1/inventory", model.RoleManager, map[string]any{"product_name": "Bolt", "warehouse_city": "Oslo", "stock_left": 80})
	require.Equal(t, http.StatusCreated, status)

	status, body := s.do(t, http.MethodPost, "/api/v1/inventory", model.RoleManager, map[string]any{"product_name": "Nut", "warehouse_city": "Oslo", "stock_left": 30})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, string(pkgerrors.CodeConflict), body["code"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 20, details["available"])

	status, _ = s.do(t, http.MethodPost, "/api/v1/inventory", model.RoleManager, map[string]any{"product_name": "Nut", "warehouse_city": "Oslo", "stock_left": 20})
	assert.Equal(t, http.StatusCreated, status)

	status, found := s.do(t, http.MethodGet, "/api/v1/inventory/search?product_name=Nut&warehouse_city=Oslo", model.RoleStaff, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 20, found["stock_left"])
}

func TestPaymentsOverHTTP(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodPost, "/api/v1/suppliers", model.RoleManager, map[string]any{"supplier_name": "Acme"})
	require.Equal(t, http.StatusCreated, status)
	status, _ = s.do(t, http.MethodPost, "/api/v1/products", model.RoleManager, map[string]any{"product_name": "Crate", "unit_price": "100.00"})
	require.Equal(t, http.StatusCreated, status)

	status, created := s.do(t, http.MethodPost, "/api/v1/orders", model.RoleManager, map[string]any{"supplier_name": "Acme"})
	require.Equal(t, http.StatusCreated, status)
	orderID := int64(created["data"].(map[string]any)["order_id"].(float64))
	orderPath := "/api/v1/orders/" + strconv.FormatInt(orderID, 10)

	status, _ = s.do(t, http.MethodPost, orderPath+"/items", model.RoleManager, map[string]any{"product_name": "Crate", "quantity_ordered": 5})
	require.Equal(t, http.StatusCreated, status)

	status, body := s.do(t, http.MethodPost, "/api/v1/payments", model.RoleManager, map[string]any{"order_id": orderID, "amount_paid": "200.00"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, string(model.PaymentPartial), body["data"].(map[string]any)["payment_status"])

	status, body = s.do(t, http.MethodPost, "/api/v1/payments", model.RoleManager, map[string]any{"order_id": orderID, "amount_paid": "350.00"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "payment exceeds order balance", body["error"])

	status, _ = s.do(t, http.MethodPut, orderPath+"/status", model.RoleManager, map[string]any{"order_status": "cancelled"})
	require.Equal(t, http.StatusOK, status)

	status, body = s.do(t, http.MethodPost, "/api/v1/payments", model.RoleManager, map[string]any{"order_id": orderID, "amount_paid": "10.00"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, string(pkgerrors.CodeStateConflict), body["code"])

	status, _ = s.do(t, http.MethodPut, orderPath+"/status", model.RoleManager, map[string]any{"order_status": "received"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestBadInput(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/api/v1/products/abc", model.RoleStaff, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid product ID", body["error"])

	req := httptest.NewRequest(http.MethodPost, "/api/v1/warehouses", bytes.NewBufferString("{not json"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+s.tokens[model.RoleManager])
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	status, _ = s.do(t, http.MethodGet, "/api/v1/products/999", model.RoleStaff, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRespondErrorHidesDatabaseDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		cause := errors.New(`relation "secret_table" does not exist`)
		return respondError(c, logger.Nop(), pkgerrors.Wrap(pkgerrors.CodeExecution, cause, "statement failed"))
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return respondError(c, logger.Nop(), errors.New("something odd"))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret_table")
	assert.Contains(t, string(raw), "statement execution failed")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/plain", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
