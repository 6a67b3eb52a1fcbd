package authkit

import (
	"time"
)

// SessionObject is the request-scoped view of a validated access token,
// detached from the JWT machinery so handlers do not touch raw claims.
type SessionObject struct {
	UserID         string     `json:"user_id,omitempty"`
	Username       string     `json:"username,omitempty"`
	Email          string     `json:"email,omitempty"`
	Role           UserRole   `json:"role,omitempty"`
	Active         bool       `json:"active"`
	Issuer         string     `json:"issuer,omitempty"`
	Audience       []string   `json:"audience,omitempty"`
	IssuedAt       *time.Time `json:"issued_at,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

// HasRole checks if the session carries a specific role
func (s *SessionObject) HasRole(role string) bool {
	return string(s.Role) == role
}

// IsAtLeast checks if the session's role meets the minimum required role
func (s *SessionObject) IsAtLeast(minRole UserRole) bool {
	return RoleIsAtLeast(s.Role, minRole)
}

// SessionFromClaims converts validated claims into a SessionObject
func SessionFromClaims(claims AuthClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrUnableToMapClaims
	}

	session := &SessionObject{
		UserID:   claims.UserID(),
		Username: claims.Username(),
		Email:    claims.Email(),
		Role:     UserRole(claims.Role()),
		Active:   claims.ActiveAccount(),
	}

	if issuedAt := claims.IssuedAt(); !issuedAt.IsZero() {
		at := issuedAt
		session.IssuedAt = &at
	}

	if expires := claims.Expires(); !expires.IsZero() {
		at := expires
		session.ExpirationDate = &at
	}

	if jwtClaims, ok := claims.(*JWTClaims); ok {
		session.Issuer = jwtClaims.RegisteredClaims.Issuer
		session.Audience = append(session.Audience, jwtClaims.RegisteredClaims.Audience...)
	}

	return session, nil
}
