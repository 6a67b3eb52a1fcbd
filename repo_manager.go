package authkit

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories plus the unit-of-work
// commit contract: callers batch mutations inside RunInTx and the whole
// set commits or nothing does.
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	RefreshTokens() RefreshTokens
}

type mngr struct {
	db            *bun.DB
	users         Users
	refreshTokens RefreshTokens
}

// NewRepositoryManager wires the repositories over one bun DB
func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:            db,
		users:         NewUsersRepository(db),
		refreshTokens: NewRefreshTokensRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.refreshTokens == nil {
		return errors.New("repository refreshTokens should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) RefreshTokens() RefreshTokens {
	return m.refreshTokens
}
