package authkit_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storepos/authkit"
)

func setupProtectedApp(t *testing.T, minRole authkit.UserRole) (*fiber.App, authkit.TokenService) {
	t.Helper()

	cfg := testConfig()
	tokens, err := authkit.NewTokenService(cfg, nullLogger{})
	require.NoError(t, err)

	app := fiber.New()

	handlers := []fiber.Handler{authkit.RequireAuth(tokens, cfg)}
	if minRole != "" {
		handlers = append(handlers, authkit.RequireRole(cfg, minRole))
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		session, err := authkit.SessionFromContext(c, cfg)
		if err != nil {
			return err
		}
		return c.JSON(session)
	})

	app.Get("/protected", handlers...)

	return app, tokens
}

func getProtected(t *testing.T, app *fiber.App, authorization string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}

	res, err := app.Test(req)
	require.NoError(t, err)

	return res
}

func TestRequireAuth(t *testing.T) {
	t.Run("valid bearer token reaches the handler", func(t *testing.T) {
		app, tokens := setupProtectedApp(t, "")

		access, err := tokens.Generate(fullIdentity())
		require.NoError(t, err)

		res := getProtected(t, app, "Bearer "+access)
		require.Equal(t, fiber.StatusOK, res.StatusCode)

		defer res.Body.Close()
		session := &authkit.SessionObject{}
		require.NoError(t, json.NewDecoder(res.Body).Decode(session))
		assert.Equal(t, "alice", session.Username)
		assert.Equal(t, authkit.RoleManager, session.Role)
	})

	t.Run("missing header", func(t *testing.T) {
		app, _ := setupProtectedApp(t, "")

		res := getProtected(t, app, "")
		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	})

	t.Run("malformed header", func(t *testing.T) {
		app, tokens := setupProtectedApp(t, "")

		access, err := tokens.Generate(fullIdentity())
		require.NoError(t, err)

		for _, header := range []string{access, "Basic " + access, "Bearer"} {
			res := getProtected(t, app, header)
			assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
		}
	})

	t.Run("expired token names the expiry", func(t *testing.T) {
		app, tokens := setupProtectedApp(t, "")

		impl, ok := tokens.(*authkit.TokenServiceImpl)
		require.True(t, ok)
		impl.WithClock(func() time.Time { return time.Now().Add(-time.Hour) })
		access, err := tokens.Generate(fullIdentity())
		impl.WithClock(time.Now)
		require.NoError(t, err)

		res := getProtected(t, app, "Bearer "+access)
		require.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
		assert.Equal(t, "token expired", decodeMap(t, res)["message"])
	})

	t.Run("tampered token", func(t *testing.T) {
		app, tokens := setupProtectedApp(t, "")

		access, err := tokens.Generate(fullIdentity())
		require.NoError(t, err)

		res := getProtected(t, app, "Bearer "+access+"tampered")
		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	})
}

func TestRequireRole(t *testing.T) {
	t.Run("sufficient role passes", func(t *testing.T) {
		app, tokens := setupProtectedApp(t, authkit.RoleManager)

		access, err := tokens.Generate(fullIdentity()) // role manager
		require.NoError(t, err)

		res := getProtected(t, app, "Bearer "+access)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
	})

	t.Run("insufficient role is forbidden", func(t *testing.T) {
		app, tokens := setupProtectedApp(t, authkit.RoleAdmin)

		access, err := tokens.Generate(fullIdentity())
		require.NoError(t, err)

		res := getProtected(t, app, "Bearer "+access)
		require.Equal(t, fiber.StatusForbidden, res.StatusCode)
		assert.Equal(t, "insufficient permissions", decodeMap(t, res)["message"])
	})
}
