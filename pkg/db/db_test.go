package db_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hamprofile/pkg/db"
)

func TestDB(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "nested", "db_test.db")

	d, err := db.Init(path)
	require.NoError(t, err)
	require.NotNil(t, d)
	defer d.Close()

	for _, table := range []string{"cache", "profiles"} {
		var n int
		err := d.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, table)
	}
}

func TestDB_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	d, err := db.Init(path)
	require.NoError(t, err)
	d.Close()

	d, err = db.Init(path)
	require.NoError(t, err, "migrations must be idempotent")
	d.Close()
}

func TestDB_Prune(t *testing.T) {
	d, err := db.Init(filepath.Join(t.TempDir(), "prune.db"))
	require.NoError(t, err)
	defer d.Close()

	old := time.Now().Add(-40 * 24 * time.Hour).UTC().Format("2006-01-02 15:04:05")
	fresh := time.Now().Add(-time.Hour).UTC().Format("2006-01-02 15:04:05")

	_, err = d.Exec("INSERT INTO cache (key, value, created_at) VALUES (?, ?, ?), (?, ?, ?)",
		"old", "x", old, "new", "y", fresh)
	require.NoError(t, err)
	_, err = d.Exec("INSERT INTO profiles (id, created_at) VALUES (?, ?), (?, ?)",
		"p-old", old, "p-new", fresh)
	require.NoError(t, err)

	n, err := d.PruneCache(30 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = d.PruneProfiles(30 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var left int
	require.NoError(t, d.QueryRow("SELECT count(*) FROM cache WHERE key = 'new'").Scan(&left))
	assert.Equal(t, 1, left)
	require.NoError(t, d.QueryRow("SELECT count(*) FROM profiles WHERE id = 'p-new'").Scan(&left))
	assert.Equal(t, 1, left)
}
