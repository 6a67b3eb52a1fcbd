package authkit

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// refreshTokenEntropy is the number of random bytes backing a refresh
// token value before text encoding.
const refreshTokenEntropy = 64

// TokenPayload is the tuple returned by Issue and Rotate. ExpiresAt is
// the refresh token's expiry; the access token carries its own.
type TokenPayload struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresAt    time.Time   `json:"expires_at"`
	User         *PublicUser `json:"user,omitempty"`
}

// TokenLifecycle drives a refresh-token lineage through its states:
// Active to Rotated (revoked + replaced_by_token in one transaction),
// Active to Revoked (logout / revoke-all), or Active to Expired (derived
// from the clock, no write). Every operation re-reads persisted state
// inside its transaction; nothing is cached in process, so revocation
// takes effect immediately across server processes.
type TokenLifecycle struct {
	repo   RepositoryManager
	tokens TokenService
	cfg    Config
	logger Logger
	now    func() time.Time
}

var _ LifecycleManager = (*TokenLifecycle)(nil)

// NewTokenLifecycle returns a lifecycle manager over the given
// repositories and token codec
func NewTokenLifecycle(repo RepositoryManager, tokens TokenService, cfg Config) *TokenLifecycle {
	return &TokenLifecycle{
		repo:   repo,
		tokens: tokens,
		cfg:    cfg,
		logger: defLogger{},
		now:    time.Now,
	}
}

// WithLogger replaces the fallback logger
func (l *TokenLifecycle) WithLogger(logger Logger) *TokenLifecycle {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// WithClock overrides the time source, used by tests
func (l *TokenLifecycle) WithClock(now func() time.Time) *TokenLifecycle {
	if now != nil {
		l.now = now
	}
	return l
}

// GenerateRefreshTokenValue returns a new opaque token value with 64
// bytes of CSPRNG entropy, base64url encoded.
func GenerateRefreshTokenValue() (string, error) {
	buf := make([]byte, refreshTokenEntropy)
	if _, err := rand.Read(buf); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read token entropy")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (l *TokenLifecycle) newRefreshToken(userID uuid.UUID, ip string, at time.Time) (*RefreshToken, error) {
	value, err := GenerateRefreshTokenValue()
	if err != nil {
		return nil, err
	}

	return &RefreshToken{
		Token:       value,
		UserID:      userID,
		ExpiresAt:   at.Add(time.Duration(l.cfg.GetRefreshTokenTTL()) * 24 * time.Hour),
		CreatedAt:   at,
		CreatedByIP: ip,
	}, nil
}

// Issue creates a fresh token pair for an already verified user: one new
// refresh token is appended, stale inactive tokens are pruned, and the
// user's last login is stamped. Prior refresh-token state is untouched.
func (l *TokenLifecycle) Issue(ctx context.Context, user *User, ip string) (*TokenPayload, error) {
	if user == nil {
		return nil, ErrIdentityNotFound
	}

	now := l.now()

	accessToken, err := l.tokens.Generate(NewIdentityFromUser(user))
	if err != nil {
		return nil, err
	}

	refresh, err := l.newRefreshToken(user.ID, ip, now)
	if err != nil {
		return nil, err
	}

	err = l.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := l.repo.RefreshTokens().CreateTx(ctx, tx, refresh); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store refresh token")
		}

		if err := l.repo.Users().TrackSuccessfulLoginTx(ctx, tx, user, now); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to track login")
		}

		return l.prune(ctx, tx, user.ID, now)
	})

	if err != nil {
		return nil, err
	}

	user.LastLoginAt = &now

	return &TokenPayload{
		AccessToken:  accessToken,
		RefreshToken: refresh.Token,
		ExpiresAt:    refresh.ExpiresAt,
		User:         user.Public(),
	}, nil
}

// Rotate exchanges an active refresh token for a new pair. The presented
// token transitions to Rotated with replaced_by_token pointing at its
// successor; old revocation, new insert, prune and the last-login stamp
// commit as one transaction or not at all.
//
// Rotation is strictly single use. A token that was already rotated,
// revoked, or expired is rejected, never silently re-issued: when two
// callers race on the same value the conditional revoke lets exactly one
// commit and the loser fails with ErrRotationConflict.
func (l *TokenLifecycle) Rotate(ctx context.Context, tokenValue, ip string) (*TokenPayload, error) {
	if tokenValue == "" {
		return nil, ErrRefreshTokenInvalid
	}

	now := l.now()

	var payload *TokenPayload

	err := l.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		current, err := l.repo.RefreshTokens().GetByTokenTx(ctx, tx, tokenValue)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrRefreshTokenInvalid
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load refresh token")
		}

		if current.IsRevoked() {
			// replay of a rotated or revoked token is a compromise
			// signal, logged apart from ordinary invalid presentations
			l.logger.Warn("refresh token reuse detected",
				"user_id", current.UserID.String(),
				"ip", ip,
				"rotated", current.IsRotated(),
			)
			return ErrRefreshTokenReused
		}

		if current.IsExpired(now) {
			return ErrRefreshTokenInvalid
		}

		user, err := l.repo.Users().GetByUserIDTx(ctx, tx, current.UserID)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrRefreshTokenInvalid
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load token owner")
		}

		if !user.IsActive {
			return ErrAccountInactive
		}

		next, err := l.newRefreshToken(user.ID, ip, now)
		if err != nil {
			return err
		}

		affected, err := l.repo.RefreshTokens().RevokeTx(ctx, tx, current.Token, ip, next.Token, now)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke rotated token")
		}

		if affected == 0 {
			// a concurrent rotation of the same value won the race
			l.logger.Warn("concurrent refresh token rotation lost",
				"user_id", user.ID.String(),
				"ip", ip,
			)
			return ErrRotationConflict
		}

		if err := l.repo.RefreshTokens().CreateTx(ctx, tx, next); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store rotated token")
		}

		if err := l.repo.Users().TrackSuccessfulLoginTx(ctx, tx, user, now); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to track login")
		}

		if err := l.prune(ctx, tx, user.ID, now); err != nil {
			return err
		}

		user.LastLoginAt = &now

		accessToken, err := l.tokens.Generate(NewIdentityFromUser(user))
		if err != nil {
			return err
		}

		payload = &TokenPayload{
			AccessToken:  accessToken,
			RefreshToken: next.Token,
			ExpiresAt:    next.ExpiresAt,
			User:         user.Public(),
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return payload, nil
}

// Revoke transitions a single active token to Revoked, with no
// replacement reference. Used for single-session logout.
func (l *TokenLifecycle) Revoke(ctx context.Context, tokenValue, ip string) error {
	if tokenValue == "" {
		return ErrRefreshTokenInvalid
	}

	now := l.now()

	return l.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		current, err := l.repo.RefreshTokens().GetByTokenTx(ctx, tx, tokenValue)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrRefreshTokenInvalid
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load refresh token")
		}

		if !current.IsActive(now) {
			return ErrRefreshTokenInvalid
		}

		affected, err := l.repo.RefreshTokens().RevokeTx(ctx, tx, current.Token, ip, "", now)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke token")
		}

		if affected == 0 {
			return ErrRotationConflict
		}

		return nil
	})
}

// RevokeAll transitions every active token of a user to Revoked with a
// shared timestamp and source IP. Used for password changes, compromise
// response, and administrative suspension. Returns how many tokens were
// revoked; zero with a nil error means the user had no active sessions.
func (l *TokenLifecycle) RevokeAll(ctx context.Context, userID uuid.UUID, ip string) (int, error) {
	now := l.now()

	var revoked int64

	err := l.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := l.repo.Users().GetByUserIDTx(ctx, tx, userID); err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrIdentityNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user")
		}

		n, err := l.repo.RefreshTokens().RevokeAllForUserTx(ctx, tx, userID, ip, now)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke user tokens")
		}

		revoked = n
		return nil
	})

	if err != nil {
		return 0, err
	}

	return int(revoked), nil
}

// prune drops tokens that are both inactive and past the retention
// window. Runs inside the caller's transaction so cleanup rides along
// with the mutation that triggered it.
func (l *TokenLifecycle) prune(ctx context.Context, tx bun.Tx, userID uuid.UUID, now time.Time) error {
	cutoff := now.Add(-time.Duration(l.cfg.GetRefreshTokenRetention()) * 24 * time.Hour)

	if _, err := l.repo.RefreshTokens().PruneInactiveTx(ctx, tx, userID, cutoff, now); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to prune stale tokens")
	}

	return nil
}
