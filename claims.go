package authkit

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthClaims represents structured access-token claims
type AuthClaims interface {
	Subject() string
	UserID() string
	Username() string
	Email() string
	Role() string
	ActiveAccount() bool
	HasRole(role string) bool
	IsAtLeast(minRole string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UID       string `json:"uid,omitempty"`
	Uname     string `json:"username,omitempty"`
	UserEmail string `json:"email,omitempty"`
	GivenName string `json:"given_name,omitempty"`
	Surname   string `json:"family_name,omitempty"`
	UserRole  string `json:"role,omitempty"`
	Active    bool   `json:"active"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Username returns the username claim
func (c *JWTClaims) Username() string {
	return c.Uname
}

// Email returns the email claim
func (c *JWTClaims) Email() string {
	return c.UserEmail
}

// Role returns the role claim
func (c *JWTClaims) Role() string {
	return c.UserRole
}

// ActiveAccount reports whether the account was active at issuance time
func (c *JWTClaims) ActiveAccount() bool {
	return c.Active
}

// HasRole checks if the user has a specific role
func (c *JWTClaims) HasRole(role string) bool {
	return c.UserRole == role
}

// IsAtLeast checks if the user's role is at least the minimum required role
func (c *JWTClaims) IsAtLeast(minRole string) bool {
	return RoleIsAtLeast(UserRole(c.UserRole), UserRole(minRole))
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// ensureTokenID gives every issued token a unique jti so individual
// access tokens can be traced in logs.
func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
