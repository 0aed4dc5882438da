package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hamprofile/pkg/db"
	"hamprofile/pkg/probe"
)

func TestStartupProbes(t *testing.T) {
	dbConn, err := db.Init(filepath.Join(t.TempDir(), "probe.db"))
	require.NoError(t, err)
	defer dbConn.Close()

	t.Run("no source is not fatal", func(t *testing.T) {
		results := probe.Run(context.Background(), startupProbes(dbConn, nil))
		require.Len(t, results, 2)
		assert.True(t, results[0].Passed())
		assert.ErrorIs(t, results[1].Error, errNoSource)
		assert.NoError(t, probe.Analyze(results))
	})

	t.Run("closed database is fatal", func(t *testing.T) {
		closed, err := db.Init(filepath.Join(t.TempDir(), "closed.db"))
		require.NoError(t, err)
		require.NoError(t, closed.Close())

		results := probe.Run(context.Background(), startupProbes(closed, flatSource{elevation: 10}))
		assert.False(t, results[0].Passed())
		assert.True(t, results[1].Passed())
		assert.Error(t, probe.Analyze(results))
	})
}
