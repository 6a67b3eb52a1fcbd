package authkit

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes attached to structured errors. The API layer can switch on
// these without string-matching messages.
const (
	TextCodeInvalidCreds      = "INVALID_CREDENTIALS"
	TextCodeAccountInactive   = "ACCOUNT_INACTIVE"
	TextCodeTokenExpired      = "TOKEN_EXPIRED"
	TextCodeTokenMalformed    = "TOKEN_MALFORMED"
	TextCodeRefreshInvalid    = "REFRESH_TOKEN_INVALID"
	TextCodeRefreshReused     = "REFRESH_TOKEN_REUSED"
	TextCodeRotationConflict  = "REFRESH_TOKEN_CONFLICT"
	TextCodeMissingSigningKey = "MISSING_SIGNING_KEY"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound)

// ErrMismatchedHashAndPassword is returned for any credential failure.
// Deliberately generic so callers cannot distinguish "no such user" from
// "wrong password".
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrAccountInactive marks a login attempt against a deactivated account.
// The orchestrator surfaces it with the same generic message as a
// credential mismatch; the text code exists for internal logging only.
var ErrAccountInactive = errors.New("account is inactive", errors.CategoryAuth).
	WithTextCode(TextCodeAccountInactive)

// ErrNoEmptyString is returned when hashing an empty or blank password
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation)

// ErrTokenExpired marks an access token past its expiry
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed marks a token that failed signature or structural checks
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed)

// ErrRefreshTokenInvalid covers a presented refresh token that does not
// exist, is expired, or is otherwise unusable.
var ErrRefreshTokenInvalid = errors.New("invalid refresh token", errors.CategoryAuth).
	WithTextCode(TextCodeRefreshInvalid)

// ErrRefreshTokenReused marks the presentation of a token that was already
// rotated or revoked. Repeated occurrences indicate token replay or theft
// and should be treated as a compromise signal by the caller.
var ErrRefreshTokenReused = errors.New("refresh token already used", errors.CategoryAuth).
	WithTextCode(TextCodeRefreshReused)

// ErrRotationConflict is returned to the loser of a race between two
// rotations of the same token. Exactly one rotation commits.
var ErrRotationConflict = errors.New("refresh token rotated concurrently", errors.CategoryConflict).
	WithTextCode(TextCodeRotationConflict)

// ErrMissingSigningKey is a configuration error: the service must not
// start without a signing secret.
var ErrMissingSigningKey = errors.New("jwt signing key is required", errors.CategoryValidation).
	WithTextCode(TextCodeMissingSigningKey)

// ErrUnableToDecodeSession unable to decode claims from a parsed token
var ErrUnableToDecodeSession = errors.New("unable to decode session", errors.CategoryAuth)

// ErrUnableToMapClaims unable to get claims from token
var ErrUnableToMapClaims = errors.New("unable to map claims", errors.CategoryAuth)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}

	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == TextCodeTokenExpired {
		return true
	}

	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}

	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == TextCodeTokenMalformed {
		return true
	}

	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsTokenReuseError reports whether err marks the replay of an already
// rotated or revoked refresh token.
func IsTokenReuseError(err error) bool {
	if err == nil {
		return false
	}

	var rich *errors.Error
	if errors.As(err, &rich) {
		return rich.TextCode == TextCodeRefreshReused || rich.TextCode == TextCodeRotationConflict
	}

	return false
}
