package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"shareit/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCreatesDirectory(t *testing.T) {
	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "nested", "dir", "shareit.db")

	db, err := Open(context.Background(), config.DatabaseConfig{Path: path}, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Ping(context.Background()))
}

func TestWithinTxRollsBack(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.WithinTx(ctx, func(ctx context.Context) error {
		if err := db.CreateUser(ctx, newUser("rolled")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	users, err := db.ListUsers(ctx)
	require.NoError(t, err)
	for _, u := range users {
		assert.NotEqual(t, "rolled", u.Name)
	}
}

func TestWithinTxNested(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := db.WithinTx(ctx, func(ctx context.Context) error {
		if err := db.CreateUser(ctx, newUser("outer")); err != nil {
			return err
		}
		return db.WithinTx(ctx, func(ctx context.Context) error {
			return db.CreateUser(ctx, newUser("inner"))
		})
	})
	require.NoError(t, err)

	users, err := db.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
