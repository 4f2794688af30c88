package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestIdentity(t *testing.T) {
	app := fiber.New()
	app.Use(Logger(zap.NewNop()))
	app.Use(Identity())
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": UserID(c), "role": UserRole(c), "reviewer": IsReviewer(c)})
	})

	tests := []struct {
		name       string
		userID     string
		role       string
		wantStatus int
		wantRole   string
	}{
		{name: "missing user", wantStatus: http.StatusUnauthorized},
		{name: "default role", userID: "pilot-1", wantStatus: http.StatusOK, wantRole: RolePilot},
		{name: "reviewer", userID: "rev-1", role: "Reviewer", wantStatus: http.StatusOK, wantRole: RoleReviewer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.userID != "" {
				req.Header.Set(HeaderUserID, tt.userID)
			}
			if tt.role != "" {
				req.Header.Set(HeaderUserRole, tt.role)
			}

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus != http.StatusOK {
				return
			}

			var body struct {
				ID   string `json:"id"`
				Role string `json:"role"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.userID, body.ID)
			assert.Equal(t, tt.wantRole, body.Role)
		})
	}
}

func TestRequireRole(t *testing.T) {
	app := fiber.New()
	app.Use(Identity())
	app.Get("/review", RequireRole(RoleReviewer), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/review", nil)
	req.Header.Set(HeaderUserID, "pilot-1")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/review", nil)
	req.Header.Set(HeaderUserID, "rev-1")
	req.Header.Set(HeaderUserRole, RoleReviewer)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestRecovery(t *testing.T) {
	app := fiber.New()
	app.Use(Recovery(zap.NewNop()))
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
