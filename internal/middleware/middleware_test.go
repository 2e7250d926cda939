package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-warehouse-ms/internal/model"
	"go-warehouse-ms/pkg/logger"
)

type stubValidator struct {
	token     string
	principal *model.Principal
}

func (s stubValidator) ValidateToken(_ context.Context, token string) (*model.Principal, error) {
	if token != s.token {
		return nil, errors.New("bad token")
	}
	return s.principal, nil
}

func newTestApp() *fiber.App {
	validator := stubValidator{
		token:     "good",
		principal: &model.Principal{UserID: 7, Username: "mgr", Role: model.RoleManager},
	}
	app := fiber.New()
	app.Use(RequestID(logger.Nop()))
	app.Get("/me", RequireAuth(validator, logger.Nop()), func(c *fiber.Ctx) error {
		p := PrincipalFrom(c)
		return c.JSON(fiber.Map{"username": p.Username})
	})
	app.Get("/ws", RequireWebSocketAuth(validator, logger.Nop()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/public", func(c *fiber.Ctx) error {
		if PrincipalFrom(c) != nil {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireAuth(t *testing.T) {
	app := newTestApp()
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "valid token", header: "Bearer good", want: fiber.StatusOK},
		{name: "lowercase scheme", header: "bearer good", want: fiber.StatusOK},
		{name: "missing header", header: "", want: fiber.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", want: fiber.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", want: fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestRequireWebSocketAuth(t *testing.T) {
	app := newTestApp()

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ws?token=good", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/ws", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestPrincipalFromPublicRoute(t *testing.T) {
	resp, err := newTestApp().Test(httptest.NewRequest(fiber.MethodGet, "/public", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequestID(t *testing.T) {
	app := newTestApp()

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/public", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(HeaderRequestID))

	req := httptest.NewRequest(fiber.MethodGet, "/public", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "req-123", resp.Header.Get(HeaderRequestID))
}

func TestAccessLogRecordsFinalStatus(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	app := fiber.New()
	app.Use(RequestID(logg), AccessLog(logg))
	app.Get("/missing", func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})

	req := httptest.NewRequest(fiber.MethodGet, "/missing", nil)
	req.Header.Set(HeaderRequestID, "req-9")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "request handled", entry["message"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/missing", entry["path"])
	assert.EqualValues(t, fiber.StatusNotFound, entry["status"], "status is logged after the error handler ran")
	assert.Equal(t, "req-9", entry["request_id"])
	assert.Contains(t, entry, "duration_ms")
}
