package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/pkg/telemetry"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthApp(t *testing.T) (*fiber.App, *services.AuthService) {
	t.Helper()
	auth := services.NewAuthService(nil, nil, "middleware-secret", time.Hour, 0)

	app := fiber.New()
	app.Use(middleware.RequestLogger(zap.NewNop()))
	app.Get("/me", middleware.AuthRequired(auth), func(c *fiber.Ctx) error {
		return c.SendString(middleware.CurrentUserID(c))
	})
	app.Get("/admin", middleware.AuthRequired(auth), middleware.RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app, auth
}

func bearer(t *testing.T, auth *services.AuthService, role models.Role) string {
	t.Helper()
	token, err := auth.IssueToken(&models.User{ID: "user-1", Email: "a@example.com", Role: role})
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthRequired(t *testing.T) {
	app, auth := newAuthApp(t)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic abc", fiber.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", fiber.StatusUnauthorized},
		{"valid token", bearer(t, auth, models.RoleCustomer), fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRequireRole(t *testing.T) {
	app, auth := newAuthApp(t)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", bearer(t, auth, models.RoleCustomer))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", bearer(t, auth, models.RoleAdmin))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestRequestLogger_RequestID(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.RequestLogger(zap.NewNop()))
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString(middleware.RequestID(c))
	})
	app.Get("/fail", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
	require.NoError(t, err)
	generated := resp.Header.Get(middleware.RequestIDHeader)
	assert.Len(t, generated, 26)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middleware.RequestIDHeader, "caller-id")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "caller-id", resp.Header.Get(middleware.RequestIDHeader))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestMetrics_PassesErrorsThrough(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.Metrics(telemetry.NewNoopMetrics()))
	app.Get("/missing", func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
