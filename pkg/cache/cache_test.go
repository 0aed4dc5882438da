package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hamprofile/pkg/db"
)

func newTestCache(t *testing.T) (*SQLiteCache, *db.DB) {
	t.Helper()
	d, err := db.Init(filepath.Join(t.TempDir(), "cache_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return NewSQLiteCache(d), d
}

func TestSQLiteCache(t *testing.T) {
	c, d := newTestCache(t)
	ctx := context.Background()

	val, hit := c.GetCache(ctx, "any-key")
	assert.False(t, hit)
	assert.Nil(t, val)

	payload := []byte(`{"results":[{"latitude":56.0,"longitude":60.0,"elevation":250}]}`)
	require.NoError(t, c.SetCache(ctx, "any-key", payload))

	val, hit = c.GetCache(ctx, "any-key")
	assert.True(t, hit)
	assert.Equal(t, payload, val)

	// Stored compressed
	var raw []byte
	require.NoError(t, d.QueryRow("SELECT value FROM cache WHERE key = ?", "any-key").Scan(&raw))
	assert.Equal(t, []byte{0x1f, 0x8b}, raw[:2])

	// Overwrite
	require.NoError(t, c.SetCache(ctx, "any-key", []byte("second")))
	val, _ = c.GetCache(ctx, "any-key")
	assert.Equal(t, "second", string(val))
}

func TestSQLiteCache_Uncompressed(t *testing.T) {
	c, d := newTestCache(t)

	_, err := d.Exec("INSERT INTO cache (key, value) VALUES (?, ?)", "plain", []byte("raw-bytes"))
	require.NoError(t, err)

	val, hit := c.GetCache(context.Background(), "plain")
	assert.True(t, hit)
	assert.Equal(t, "raw-bytes", string(val))
}
