package authkit_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/storepos/authkit"
)

func TestRefreshTokenStates(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("active token", func(t *testing.T) {
		token := &authkit.RefreshToken{
			Token:     "tok-active",
			ExpiresAt: now.Add(time.Hour),
		}

		assert.True(t, token.IsActive(now))
		assert.False(t, token.IsExpired(now))
		assert.False(t, token.IsRevoked())
		assert.False(t, token.IsRotated())
	})

	t.Run("expired exactly at the boundary", func(t *testing.T) {
		token := &authkit.RefreshToken{
			Token:     "tok-boundary",
			ExpiresAt: now,
		}

		assert.True(t, token.IsExpired(now))
		assert.False(t, token.IsActive(now))
		assert.True(t, token.IsActive(now.Add(-time.Nanosecond)))
	})

	t.Run("revoked token is inactive regardless of expiry", func(t *testing.T) {
		revokedAt := now.Add(-time.Minute)
		token := &authkit.RefreshToken{
			Token:     "tok-revoked",
			ExpiresAt: now.Add(time.Hour),
			RevokedAt: &revokedAt,
		}

		assert.True(t, token.IsRevoked())
		assert.False(t, token.IsActive(now))
		assert.False(t, token.IsRotated())
	})

	t.Run("rotated token carries its successor", func(t *testing.T) {
		revokedAt := now
		token := &authkit.RefreshToken{
			Token:           "tok-old",
			ExpiresAt:       now.Add(time.Hour),
			RevokedAt:       &revokedAt,
			ReplacedByToken: "tok-new",
		}

		assert.True(t, token.IsRevoked())
		assert.True(t, token.IsRotated())
		assert.False(t, token.IsActive(now))
	})
}

func TestUserPublic(t *testing.T) {
	t.Run("strips sensitive fields", func(t *testing.T) {
		lastLogin := time.Now()
		user := &authkit.User{
			ID:           uuid.New(),
			Username:     "alice",
			Email:        "alice@storepos.test",
			FirstName:    "Alice",
			LastName:     "Smith",
			PasswordHash: "$2a$14$something",
			Role:         authkit.RoleManager,
			IsActive:     true,
			LastLoginAt:  &lastLogin,
		}

		public := user.Public()

		assert.Equal(t, user.ID, public.ID)
		assert.Equal(t, "alice", public.Username)
		assert.Equal(t, "alice@storepos.test", public.Email)
		assert.Equal(t, authkit.RoleManager, public.Role)
		assert.True(t, public.IsActive)
		assert.Equal(t, &lastLogin, public.LastLoginAt)
	})

	t.Run("nil user yields nil projection", func(t *testing.T) {
		var user *authkit.User
		assert.Nil(t, user.Public())
	})
}
