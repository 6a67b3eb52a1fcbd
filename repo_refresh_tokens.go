package authkit

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RefreshTokens persists refresh-token records. Mutations are meant to
// run inside a RepositoryManager.RunInTx transaction so that a rotation
// (insert new + revoke old + prune) commits as one unit; the Tx-less
// variants exist for single-statement callers.
//
// Revocation methods are conditional on `revoked_at IS NULL` and report
// how many rows they touched: zero rows means another transaction
// revoked or rotated the token first. That conditional update is the
// serialization point for concurrent rotations of the same token value.
type RefreshTokens interface {
	GetByToken(ctx context.Context, token string) (*RefreshToken, error)
	GetByTokenTx(ctx context.Context, tx bun.IDB, token string) (*RefreshToken, error)
	ListByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) ([]*RefreshToken, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *RefreshToken) error
	RevokeTx(ctx context.Context, tx bun.IDB, token, ip, replacedBy string, at time.Time) (int64, error)
	RevokeAllForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, ip string, at time.Time) (int64, error)
	PruneInactiveTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, createdBefore, now time.Time) (int64, error)
}

type refreshTokens struct {
	db *bun.DB
}

var _ RefreshTokens = (*refreshTokens)(nil)

// NewRefreshTokensRepository builds the RefreshTokens repository. The
// token value is the primary key, so the generic uuid-keyed repository
// does not fit; queries go straight through bun.
func NewRefreshTokensRepository(db *bun.DB) RefreshTokens {
	return &refreshTokens{db: db}
}

func (r *refreshTokens) GetByToken(ctx context.Context, token string) (*RefreshToken, error) {
	return r.GetByTokenTx(ctx, r.db, token)
}

func (r *refreshTokens) GetByTokenTx(ctx context.Context, tx bun.IDB, token string) (*RefreshToken, error) {
	record := &RefreshToken{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", token).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows || repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

func (r *refreshTokens) ListByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) ([]*RefreshToken, error) {
	var records []*RefreshToken
	err := tx.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)

	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	return records, nil
}

func (r *refreshTokens) CreateTx(ctx context.Context, tx bun.IDB, record *RefreshToken) error {
	_, err := tx.NewInsert().
		Model(record).
		Exec(ctx)
	return err
}

// RevokeTx sets the revocation fields on an active token. replacedBy is
// empty for a plain revocation and carries the successor's value during
// rotation, so both fields are always written together.
func (r *refreshTokens) RevokeTx(ctx context.Context, tx bun.IDB, token, ip, replacedBy string, at time.Time) (int64, error) {
	res, err := tx.NewUpdate().
		Model((*RefreshToken)(nil)).
		Set("revoked_at = ?", at).
		Set("revoked_by_ip = ?", ip).
		Set("replaced_by_token = ?", replacedBy).
		Where("token = ?", token).
		Where("revoked_at IS NULL").
		Exec(ctx)

	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (r *refreshTokens) RevokeAllForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, ip string, at time.Time) (int64, error) {
	res, err := tx.NewUpdate().
		Model((*RefreshToken)(nil)).
		Set("revoked_at = ?", at).
		Set("revoked_by_ip = ?", ip).
		Where("user_id = ?", userID).
		Where("revoked_at IS NULL").
		Where("expires_at > ?", at).
		Exec(ctx)

	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// PruneInactiveTx removes a user's tokens that are both inactive and
// at or past the retention window; a token created exactly one window
// ago is eligible. Active tokens are never pruned, whatever their age.
func (r *refreshTokens) PruneInactiveTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, createdBefore, now time.Time) (int64, error) {
	res, err := tx.NewDelete().
		Model((*RefreshToken)(nil)).
		Where("user_id = ?", userID).
		Where("created_at <= ?", createdBefore).
		Where("(revoked_at IS NOT NULL OR expires_at <= ?)", now).
		Exec(ctx)

	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
