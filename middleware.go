package authkit

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

const bearerScheme = "Bearer"

// RequireAuth returns a fiber middleware that validates the bearer token
// with the same TokenService that minted it (signature, issuer,
// audience, expiry) and stashes the claims in the request locals under
// cfg.GetContextKey().
func RequireAuth(tokens TokenService, cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			return unauthorized(c, "missing authentication token")
		}

		claims, err := tokens.Validate(raw)
		if err != nil {
			if IsTokenExpiredError(err) {
				return unauthorized(c, "token expired")
			}
			return unauthorized(c, "invalid authentication token")
		}

		c.Locals(cfg.GetContextKey(), claims)

		return c.Next()
	}
}

// RequireRole returns a middleware enforcing a minimum role on a route
// already behind RequireAuth
func RequireRole(cfg Config, minRole UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := ClaimsFromContext(c, cfg)
		if err != nil {
			return unauthorized(c, "missing authentication token")
		}

		if !claims.IsAtLeast(string(minRole)) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "insufficient permissions",
			})
		}

		return c.Next()
	}
}

// ClaimsFromContext retrieves the validated claims stored by RequireAuth
func ClaimsFromContext(c *fiber.Ctx, cfg Config) (AuthClaims, error) {
	value := c.Locals(cfg.GetContextKey())
	if value == nil {
		return nil, ErrUnableToMapClaims
	}

	claims, ok := value.(AuthClaims)
	if !ok {
		return nil, goerrors.New("unexpected claims type in context", goerrors.CategoryInternal)
	}

	return claims, nil
}

// SessionFromContext is ClaimsFromContext plus the SessionObject
// translation
func SessionFromContext(c *fiber.Ctx, cfg Config) (*SessionObject, error) {
	claims, err := ClaimsFromContext(c, cfg)
	if err != nil {
		return nil, err
	}
	return SessionFromClaims(claims)
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerScheme) {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
