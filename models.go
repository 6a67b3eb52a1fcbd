package authkit

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model. The auth core reads users but does not own
// their lifecycle; CRUD lives with the surrounding API.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role          UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	FirstName     string     `bun:"first_name" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name" json:"last_name,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	IsActive      bool       `bun:"is_active,notnull" json:"is_active"`
	LastLoginAt   *time.Time `bun:"last_login_at,nullzero" json:"last_login_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// PublicUser is the projection of a user that is safe to return to API
// clients: no password hash, no soft-delete bookkeeping.
type PublicUser struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name,omitempty"`
	LastName    string     `json:"last_name,omitempty"`
	Role        UserRole   `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// Public returns the client-safe projection of the user
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}

	return &PublicUser{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
	}
}

// RefreshToken represents one issued long-lived credential. The record is
// append-only from the moment revocation fields are set: RevokedAt is
// never cleared and token values are never reused.
type RefreshToken struct {
	bun.BaseModel   `bun:"table:refresh_tokens,alias:rtk"`
	Token           string     `bun:"token,pk,notnull" json:"token"`
	UserID          uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id"`
	ExpiresAt       time.Time  `bun:"expires_at,notnull" json:"expires_at"`
	CreatedAt       time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	CreatedByIP     string     `bun:"created_by_ip" json:"created_by_ip,omitempty"`
	RevokedAt       *time.Time `bun:"revoked_at,nullzero" json:"revoked_at,omitempty"`
	RevokedByIP     string     `bun:"revoked_by_ip" json:"revoked_by_ip,omitempty"`
	ReplacedByToken string     `bun:"replaced_by_token" json:"replaced_by_token,omitempty"`
}

// IsExpired reports whether the token is expired at the given instant.
// A token presented at exactly ExpiresAt is expired.
func (t *RefreshToken) IsExpired(at time.Time) bool {
	return !at.Before(t.ExpiresAt)
}

// IsRevoked reports whether revocation fields have been set, either by an
// explicit revoke or by rotation.
func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// IsRotated reports whether the token was superseded during rotation
func (t *RefreshToken) IsRotated() bool {
	return t.ReplacedByToken != ""
}

// IsActive reports whether the token can still be exchanged
func (t *RefreshToken) IsActive(at time.Time) bool {
	return !t.IsRevoked() && !t.IsExpired(at)
}
