package authkit

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// Generic client-facing messages. Login and refresh failures never
// reveal whether the user exists, the account is inactive, or the token
// was expired versus already rotated.
const (
	MsgInvalidCredentials  = "invalid credentials"
	MsgInvalidRefreshToken = "invalid refresh token"
	MsgLoginSuccessful     = "authentication successful"
	MsgTokenRefreshed      = "token refreshed"
)

// AuthResult is the uniform envelope the API layer receives. No raw
// error from the lower layers ever crosses this boundary.
type AuthResult struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Payload *TokenPayload `json:"payload,omitempty"`
}

func failure(message string) *AuthResult {
	return &AuthResult{Success: false, Message: message}
}

func success(message string, payload *TokenPayload) *AuthResult {
	return &AuthResult{Success: true, Message: message, Payload: payload}
}

// Auther combines credential verification with the token lifecycle for
// the login / refresh / logout flows.
type Auther struct {
	repo      RepositoryManager
	hasher    PasswordAuthenticator
	lifecycle LifecycleManager
	logger    Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repo RepositoryManager, lifecycle LifecycleManager) *Auther {
	return &Auther{
		repo:      repo,
		hasher:    BcryptHasher{},
		lifecycle: lifecycle,
		logger:    defLogger{},
	}
}

// WithLogger replaces the fallback logger
func (a *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// WithPasswordAuthenticator swaps the password scheme; use
// LegacyPasswordHasher for databases carrying fixed-salt SHA-256 hashes
// from the original backend.
func (a *Auther) WithPasswordAuthenticator(hasher PasswordAuthenticator) *Auther {
	if hasher != nil {
		a.hasher = hasher
	}
	return a
}

// Login verifies credentials and issues a token pair. Unknown user,
// wrong password, and inactive account all produce the same generic
// failure so callers cannot enumerate accounts.
func (a *Auther) Login(ctx context.Context, identifier, password, ip string) *AuthResult {
	if strings.TrimSpace(identifier) == "" || password == "" {
		return failure(MsgInvalidCredentials)
	}

	user, err := a.repo.Users().GetByCredentialIdentifier(ctx, identifier)
	if err != nil {
		if !repository.IsRecordNotFound(err) {
			a.logger.Error("login user lookup failed", "error", err)
		}
		return failure(MsgInvalidCredentials)
	}

	if !user.IsActive {
		a.logger.Info("login rejected for inactive account", "user_id", user.ID.String())
		return failure(MsgInvalidCredentials)
	}

	if err := a.hasher.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return failure(MsgInvalidCredentials)
	}

	payload, err := a.lifecycle.Issue(ctx, user, ip)
	if err != nil {
		a.logger.Error("login token issuance failed", "error", err, "user_id", user.ID.String())
		return failure(authFailureMessage(err))
	}

	return success(MsgLoginSuccessful, payload)
}

// Refresh rotates a refresh token. All failures collapse into the same
// generic message; reuse and rotation conflicts are logged distinctly by
// the lifecycle manager before they arrive here.
func (a *Auther) Refresh(ctx context.Context, refreshToken, ip string) *AuthResult {
	if strings.TrimSpace(refreshToken) == "" {
		return failure(MsgInvalidRefreshToken)
	}

	payload, err := a.lifecycle.Rotate(ctx, refreshToken, ip)
	if err != nil {
		if IsTokenReuseError(err) {
			a.logger.Warn("refresh rejected: token replay", "ip", ip)
		} else {
			a.logger.Info("refresh rejected", "error", err)
		}
		return failure(MsgInvalidRefreshToken)
	}

	return success(MsgTokenRefreshed, payload)
}

// Logout revokes a single refresh token. Returns false when the token
// was unknown or already inactive.
func (a *Auther) Logout(ctx context.Context, refreshToken, ip string) bool {
	if strings.TrimSpace(refreshToken) == "" {
		return false
	}

	if err := a.lifecycle.Revoke(ctx, refreshToken, ip); err != nil {
		a.logger.Info("logout rejected", "error", err)
		return false
	}

	return true
}

// LogoutAll revokes every active session of the user. Unlike the other
// flows this is an internal/administrative call, so an unknown user id
// is reported (as false) rather than masked.
func (a *Auther) LogoutAll(ctx context.Context, userID, ip string) bool {
	id, err := uuid.Parse(userID)
	if err != nil {
		return false
	}

	count, err := a.lifecycle.RevokeAll(ctx, id, ip)
	if err != nil {
		a.logger.Error("logout-all failed", "error", err, "user_id", userID)
		return false
	}

	a.logger.Info("logout-all revoked sessions", "user_id", userID, "count", count)
	return true
}

// authFailureMessage keeps auth-category failures generic and lets only
// neutral internal messages through.
func authFailureMessage(err error) string {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.Category == goerrors.CategoryAuth {
		return MsgInvalidCredentials
	}
	return "authentication failed"
}
