package authkit

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
)

// AuthControllerRoutes are the paths the controller mounts
type AuthControllerRoutes struct {
	Login     string
	Refresh   string
	Logout    string
	LogoutAll string
}

// AuthController exposes the auth flows as JSON endpoints. It is a thin
// translation layer: binding, payload validation, client IP capture, and
// the optional refresh-token cookie; every decision lives in the Auther.
type AuthController struct {
	Debug  bool
	Logger Logger
	Auther Authenticator
	Tokens TokenService
	Config Config
	Routes *AuthControllerRoutes
	// CookieName, when set, mirrors the refresh token into an HTTP-only
	// cookie and lets refresh/logout requests omit it from the body.
	CookieName string
}

// AuthControllerOption mutates the controller during construction
type AuthControllerOption func(*AuthController) *AuthController

// NewAuthController builds a controller, panicking on missing
// collaborators since that is a wiring bug, not a runtime condition.
func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Login:     "/auth/login",
			Refresh:   "/auth/refresh",
			Logout:    "/auth/logout",
			LogoutAll: "/auth/logout-all",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Tokens == nil {
		panic("Missing TokenService in auth controller...")
	}

	if c.Config == nil {
		panic("Missing Config in auth controller...")
	}

	return c
}

// WithAuther sets the Authenticator
func WithAuther(a Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = a
		return c
	}
}

// WithTokenService sets the TokenService used by the bearer middleware
func WithTokenService(t TokenService) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Tokens = t
		return c
	}
}

// WithConfig sets the Config
func WithConfig(cfg Config) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Config = cfg
		return c
	}
}

// WithControllerLogger sets the logger
func WithControllerLogger(l Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = l
		return c
	}
}

// WithRefreshCookie enables the refresh-token cookie
func WithRefreshCookie(name string) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.CookieName = name
		return c
	}
}

// RegisterAuthRoutes mounts the auth endpoints on the given router
func RegisterAuthRoutes(app fiber.Router, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Login, controller.LoginPost)
	app.Post(controller.Routes.Refresh, controller.RefreshPost)
	app.Post(controller.Routes.Logout, controller.LogoutPost)
	app.Post(controller.Routes.LogoutAll,
		RequireAuth(controller.Tokens, controller.Config),
		controller.LogoutAllPost,
	)

	return controller
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Identifier, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Password, validation.Required),
	)
}

// RefreshRequest payload; the token may come from the body or, when the
// cookie is enabled, from the cookie.
type RefreshRequest struct {
	RefreshToken string `form:"refresh_token" json:"refresh_token"`
}

// LogoutAllRequest payload
type LogoutAllRequest struct {
	UserID string `form:"user_id" json:"user_id"`
}

// LoginPost handles POST /auth/login
func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return badRequest(c, "failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		// same generic answer as a wrong password: field-level detail
		// would leak which part of the credential was missing
		return unauthorizedResult(c, failure(MsgInvalidCredentials))
	}

	if a.Debug {
		a.Logger.Debug("login payload: %s", payload)
	}

	result := a.Auther.Login(c.Context(), payload.Identifier, payload.Password, c.IP())
	if !result.Success {
		return unauthorizedResult(c, result)
	}

	if a.Debug && result.Payload != nil {
		a.Logger.Debug("login user: %s", print.MaybePrettyJSON(result.Payload.User))
	}

	a.setRefreshCookie(c, result.Payload)

	return c.JSON(result)
}

// RefreshPost handles POST /auth/refresh
func (a *AuthController) RefreshPost(c *fiber.Ctx) error {
	token := a.refreshTokenFrom(c)
	if token == "" {
		return unauthorizedResult(c, failure(MsgInvalidRefreshToken))
	}

	result := a.Auther.Refresh(c.Context(), token, c.IP())
	if !result.Success {
		a.clearRefreshCookie(c)
		return unauthorizedResult(c, result)
	}

	a.setRefreshCookie(c, result.Payload)

	return c.JSON(result)
}

// LogoutPost handles POST /auth/logout
func (a *AuthController) LogoutPost(c *fiber.Ctx) error {
	token := a.refreshTokenFrom(c)

	ok := a.Auther.Logout(c.Context(), token, c.IP())
	a.clearRefreshCookie(c)

	return c.JSON(fiber.Map{"success": ok})
}

// LogoutAllPost handles POST /auth/logout-all. Callers revoke their own
// sessions; revoking someone else's requires user administration rights.
func (a *AuthController) LogoutAllPost(c *fiber.Ctx) error {
	session, err := SessionFromContext(c, a.Config)
	if err != nil {
		return unauthorizedResult(c, failure("missing authentication token"))
	}

	payload := new(LogoutAllRequest)
	if len(c.Body()) > 0 {
		if err := c.BodyParser(payload); err != nil {
			return badRequest(c, "failed to parse request body")
		}
	}

	target := payload.UserID
	if target == "" {
		target = session.UserID
	}

	if target != session.UserID && !CanManageUsers(session.Role) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "insufficient permissions",
		})
	}

	ok := a.Auther.LogoutAll(c.Context(), target, c.IP())
	a.clearRefreshCookie(c)

	return c.JSON(fiber.Map{"success": ok})
}

func (a *AuthController) refreshTokenFrom(c *fiber.Ctx) string {
	payload := new(RefreshRequest)
	if len(c.Body()) > 0 {
		if err := c.BodyParser(payload); err != nil {
			a.Logger.Debug("refresh parse payload", "error", err)
		}
	}

	if payload.RefreshToken != "" {
		return payload.RefreshToken
	}

	if a.CookieName != "" {
		return c.Cookies(a.CookieName)
	}

	return ""
}

func (a *AuthController) setRefreshCookie(c *fiber.Ctx, payload *TokenPayload) {
	if a.CookieName == "" || payload == nil {
		return
	}

	c.Cookie(&fiber.Cookie{
		Name:     a.CookieName,
		Value:    payload.RefreshToken,
		Expires:  payload.ExpiresAt,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *AuthController) clearRefreshCookie(c *fiber.Ctx) {
	if a.CookieName == "" {
		return
	}

	c.Cookie(&fiber.Cookie{
		Name:     a.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * 24 * 365),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

func unauthorizedResult(c *fiber.Ctx, result *AuthResult) error {
	return c.Status(fiber.StatusUnauthorized).JSON(result)
}

// String implements fmt.Stringer for debug output without the password
func (r LoginRequest) String() string {
	return fmt.Sprintf("identifier=%s password=<redacted>", r.Identifier)
}
