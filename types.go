package authkit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Logger is the minimal logging contract the package needs. The host
// application injects its own implementation; defLogger is the fallback.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated identity as embedded
// in access-token claims.
type Identity interface {
	ID() string
	Username() string
	Email() string
	FirstName() string
	LastName() string
	Role() string
	Active() bool
}

// Config holds auth options. Implementations must be immutable once
// constructed; components read it only at construction time.
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetIssuer() string
	GetAudience() []string
	// GetAccessTokenTTL is the access-token lifetime in minutes.
	GetAccessTokenTTL() int
	// GetRefreshTokenTTL is the refresh-token lifetime in days.
	GetRefreshTokenTTL() int
	// GetRefreshTokenRetention is how many days an inactive refresh token
	// is kept for audit purposes before pruning removes it.
	GetRefreshTokenRetention() int
}

// TokenService generates and validates access tokens
type TokenService interface {
	Generate(identity Identity) (string, error)
	SignClaims(claims *JWTClaims) (string, error)
	Validate(token string) (AuthClaims, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// LifecycleManager orchestrates the refresh-token state machine. Every
// operation runs its reads and writes inside one transaction.
type LifecycleManager interface {
	Issue(ctx context.Context, user *User, ip string) (*TokenPayload, error)
	Rotate(ctx context.Context, tokenValue, ip string) (*TokenPayload, error)
	Revoke(ctx context.Context, tokenValue, ip string) error
	RevokeAll(ctx context.Context, userID uuid.UUID, ip string) (int, error)
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, identifier, password, ip string) *AuthResult
	Refresh(ctx context.Context, refreshToken, ip string) *AuthResult
	Logout(ctx context.Context, refreshToken, ip string) bool
	LogoutAll(ctx context.Context, userID, ip string) bool
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
