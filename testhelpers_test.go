package authkit_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/storepos/authkit"
)

func testConfig() authkit.SimpleConfig {
	return authkit.SimpleConfig{
		SigningKey: "test-signing-key",
		Issuer:     "storepos-test",
		Audience:   []string{"storepos-api"},
	}
}

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)

	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()

	_, err = db.NewCreateTable().Model((*authkit.User)(nil)).Exec(ctx)
	require.NoError(t, err)

	_, err = db.NewCreateTable().Model((*authkit.RefreshToken)(nil)).Exec(ctx)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	return db
}

func seedUser(t *testing.T, db *bun.DB, username, password string, role authkit.UserRole, active bool) *authkit.User {
	t.Helper()

	// low cost keeps the suite fast; production uses DefaultBcryptCost
	hash, err := authkit.BcryptHasher{Cost: 4}.HashPassword(password)
	require.NoError(t, err)

	user := &authkit.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@storepos.test",
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: hash,
		Role:         role,
		IsActive:     active,
	}

	_, err = db.NewInsert().Model(user).Exec(context.Background())
	require.NoError(t, err)

	return user
}

func loadToken(t *testing.T, db *bun.DB, value string) *authkit.RefreshToken {
	t.Helper()

	record := &authkit.RefreshToken{}
	err := db.NewSelect().
		Model(record).
		Where("token = ?", value).
		Scan(context.Background())
	require.NoError(t, err)

	return record
}

func insertToken(t *testing.T, db *bun.DB, token *authkit.RefreshToken) {
	t.Helper()

	_, err := db.NewInsert().Model(token).Exec(context.Background())
	require.NoError(t, err)
}

func activeToken(userID uuid.UUID, value string, now time.Time) *authkit.RefreshToken {
	return &authkit.RefreshToken{
		Token:       value,
		UserID:      userID,
		ExpiresAt:   now.Add(7 * 24 * time.Hour),
		CreatedAt:   now,
		CreatedByIP: "10.0.0.1",
	}
}
