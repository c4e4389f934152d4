package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := Open(context.Background(), config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "shareit.db")}, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustUser(t *testing.T, db *DB, name string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com"}
	require.NoError(t, db.CreateUser(context.Background(), u))
	return u
}

func mustItem(t *testing.T, db *DB, ownerID int64, name string, available bool) *models.Item {
	t.Helper()
	item := &models.Item{OwnerID: ownerID, Name: name, Description: name + " description", Available: available}
	require.NoError(t, db.CreateItem(context.Background(), item))
	return item
}

func mustBooking(t *testing.T, db *DB, itemID, bookerID int64, start, end time.Time, status models.BookingStatus) *models.Booking {
	t.Helper()
	b := &models.Booking{ItemID: itemID, BookerID: bookerID, Start: start, End: end, Status: status}
	require.NoError(t, db.CreateBooking(context.Background(), b))
	return b
}
