package authkit

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Default TTLs. Access tokens are short lived and stateless, refresh
// tokens are long lived and persisted; inactive refresh tokens stick
// around for the retention window so the audit trail survives rotation.
const (
	DefaultAccessTokenTTLMinutes    = 15
	DefaultRefreshTokenTTLDays      = 7
	DefaultRefreshTokenRetentionDys = 2
	DefaultSigningMethod            = "HS256"
	DefaultContextKey               = "authkit"
)

// SimpleConfig is an immutable Config implementation. Populate it once at
// startup and hand it to the constructors; nothing in this package reads
// ambient state afterwards.
type SimpleConfig struct {
	SigningKey                string
	SigningMethod             string
	ContextKey                string
	Issuer                    string
	Audience                  []string
	AccessTokenTTLMinutes     int
	RefreshTokenTTLDays       int
	RefreshTokenRetentionDays int
}

var _ Config = SimpleConfig{}

// GetSigningKey returns the HMAC signing secret
func (c SimpleConfig) GetSigningKey() string {
	return c.SigningKey
}

// GetSigningMethod returns the JWT signing method name
func (c SimpleConfig) GetSigningMethod() string {
	if c.SigningMethod == "" {
		return DefaultSigningMethod
	}
	return c.SigningMethod
}

// GetContextKey returns the request-locals key used by the middleware
func (c SimpleConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return DefaultContextKey
	}
	return c.ContextKey
}

// GetIssuer returns the token issuer
func (c SimpleConfig) GetIssuer() string {
	return c.Issuer
}

// GetAudience returns the token audience
func (c SimpleConfig) GetAudience() []string {
	return c.Audience
}

// GetAccessTokenTTL returns the access-token lifetime in minutes
func (c SimpleConfig) GetAccessTokenTTL() int {
	if c.AccessTokenTTLMinutes <= 0 {
		return DefaultAccessTokenTTLMinutes
	}
	return c.AccessTokenTTLMinutes
}

// GetRefreshTokenTTL returns the refresh-token lifetime in days
func (c SimpleConfig) GetRefreshTokenTTL() int {
	if c.RefreshTokenTTLDays <= 0 {
		return DefaultRefreshTokenTTLDays
	}
	return c.RefreshTokenTTLDays
}

// GetRefreshTokenRetention returns the inactive-token retention in days
func (c SimpleConfig) GetRefreshTokenRetention() int {
	if c.RefreshTokenRetentionDays <= 0 {
		return DefaultRefreshTokenRetentionDys
	}
	return c.RefreshTokenRetentionDays
}

// Validate enforces startup-time requirements. A missing signing key is
// fatal: the service must refuse to start rather than issue unsigned or
// guessably signed tokens.
func (c SimpleConfig) Validate() error {
	if strings.TrimSpace(c.SigningKey) == "" {
		return ErrMissingSigningKey
	}
	return nil
}

// ConfigFromEnv builds a SimpleConfig from the environment. A .env file
// is loaded if present; a missing file is not an error.
func ConfigFromEnv(filenames ...string) SimpleConfig {
	_ = godotenv.Load(filenames...)

	cfg := SimpleConfig{
		SigningKey:    os.Getenv("AUTH_SIGNING_KEY"),
		SigningMethod: os.Getenv("AUTH_SIGNING_METHOD"),
		ContextKey:    os.Getenv("AUTH_CONTEXT_KEY"),
		Issuer:        os.Getenv("AUTH_ISSUER"),
	}

	if aud := os.Getenv("AUTH_AUDIENCE"); aud != "" {
		for _, a := range strings.Split(aud, ",") {
			if a = strings.TrimSpace(a); a != "" {
				cfg.Audience = append(cfg.Audience, a)
			}
		}
	}

	cfg.AccessTokenTTLMinutes = envInt("AUTH_ACCESS_TOKEN_TTL_MINUTES")
	cfg.RefreshTokenTTLDays = envInt("AUTH_REFRESH_TOKEN_TTL_DAYS")
	cfg.RefreshTokenRetentionDays = envInt("AUTH_REFRESH_TOKEN_RETENTION_DAYS")

	return cfg
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
