package authkit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storepos/authkit"
)

func TestSimpleConfigDefaults(t *testing.T) {
	cfg := authkit.SimpleConfig{SigningKey: "key"}

	assert.Equal(t, authkit.DefaultAccessTokenTTLMinutes, cfg.GetAccessTokenTTL())
	assert.Equal(t, authkit.DefaultRefreshTokenTTLDays, cfg.GetRefreshTokenTTL())
	assert.Equal(t, authkit.DefaultRefreshTokenRetentionDys, cfg.GetRefreshTokenRetention())
	assert.Equal(t, authkit.DefaultSigningMethod, cfg.GetSigningMethod())
	assert.Equal(t, authkit.DefaultContextKey, cfg.GetContextKey())
}

func TestSimpleConfigOverrides(t *testing.T) {
	cfg := authkit.SimpleConfig{
		SigningKey:                "key",
		SigningMethod:             "HS512",
		ContextKey:                "session",
		Issuer:                    "storepos",
		Audience:                  []string{"storepos-api", "storepos-admin"},
		AccessTokenTTLMinutes:     30,
		RefreshTokenTTLDays:       14,
		RefreshTokenRetentionDays: 5,
	}

	assert.Equal(t, 30, cfg.GetAccessTokenTTL())
	assert.Equal(t, 14, cfg.GetRefreshTokenTTL())
	assert.Equal(t, 5, cfg.GetRefreshTokenRetention())
	assert.Equal(t, "HS512", cfg.GetSigningMethod())
	assert.Equal(t, "session", cfg.GetContextKey())
	assert.Equal(t, "storepos", cfg.GetIssuer())
	assert.Equal(t, []string{"storepos-api", "storepos-admin"}, cfg.GetAudience())
}

func TestSimpleConfigValidate(t *testing.T) {
	tests := []struct {
		name       string
		signingKey string
		wantErr    bool
	}{
		{"valid key", "some-secret", false},
		{"empty key", "", true},
		{"whitespace key", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authkit.SimpleConfig{SigningKey: tt.signingKey}.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, authkit.ErrMissingSigningKey)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("AUTH_SIGNING_KEY", "env-secret")
	t.Setenv("AUTH_ISSUER", "storepos-env")
	t.Setenv("AUTH_AUDIENCE", "storepos-api, storepos-admin ,")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "45")
	t.Setenv("AUTH_REFRESH_TOKEN_TTL_DAYS", "not-a-number")

	cfg := authkit.ConfigFromEnv("does-not-exist.env")

	assert.Equal(t, "env-secret", cfg.GetSigningKey())
	assert.Equal(t, "storepos-env", cfg.GetIssuer())
	assert.Equal(t, []string{"storepos-api", "storepos-admin"}, cfg.GetAudience())
	assert.Equal(t, 45, cfg.GetAccessTokenTTL())

	// unparsable values fall back to the default
	assert.Equal(t, authkit.DefaultRefreshTokenTTLDays, cfg.GetRefreshTokenTTL())
	assert.NoError(t, cfg.Validate())
}
