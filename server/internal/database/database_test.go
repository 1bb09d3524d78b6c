package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Migrate())
	require.NoError(t, db.Ping())

	n, err := db.CountSessions(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSessionsTableServesSQLiteStore(t *testing.T) {
	db := openTestDB(t)
	store := sqlite3store.NewWithCleanupInterval(db.DB, 0)

	require.NoError(t, store.Commit("tok", []byte("payload"), time.Now().Add(time.Hour)))

	data, found, err := store.Find("tok")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("payload"), data)

	n, err := db.CountSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, store.Delete("tok"))
	_, found, err = store.Find("tok")
	require.NoError(t, err)
	assert.False(t, found)
}
