package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hamprofile/pkg/db"
	"hamprofile/pkg/geo"
	"hamprofile/pkg/model"
)

// setupTestStore creates a test database and store for each test.
func setupTestStore(t *testing.T) (*SQLiteStore, *db.DB) {
	t.Helper()
	d, err := db.Init(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return NewSQLiteStore(d), d
}

func testProfile(id string) *model.Profile {
	return &model.Profile{
		ID:            id,
		From:          geo.Endpoint{Point: geo.Point{Lat: 56.8, Lon: 60.6}, Elevation: 270, AntennaHeight: 25},
		To:            geo.Endpoint{Point: geo.Point{Lat: 57.1, Lon: 61.2}, Elevation: 240, AntennaHeight: 40},
		Samples:       []float64{270, 281.5, 300, 255, 240},
		EarthArc:      true,
		FullElevation: false,
	}
}

func TestProfileStore_SaveGet(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	p := testProfile("p1")
	require.NoError(t, s.SaveProfile(ctx, p))
	assert.False(t, p.CreatedAt.IsZero(), "CreatedAt is filled in")

	got, err := s.GetProfile(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.From, got.From)
	assert.Equal(t, p.To, got.To)
	assert.Equal(t, p.Samples, got.Samples)
	assert.True(t, got.EarthArc)
	assert.False(t, got.FullElevation)
	assert.WithinDuration(t, p.CreatedAt, got.CreatedAt, time.Second)
}

func TestProfileStore_NotFound(t *testing.T) {
	s, _ := setupTestStore(t)
	got, err := s.GetProfile(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestProfileStore_Replace(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	p := testProfile("p1")
	require.NoError(t, s.SaveProfile(ctx, p))
	p.FullElevation = true
	p.Samples = []float64{1, 2}
	require.NoError(t, s.SaveProfile(ctx, p))

	got, err := s.GetProfile(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, got.FullElevation)
	assert.Equal(t, []float64{1, 2}, got.Samples)

	n, err := s.CountProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestProfileStore_EmptyID(t *testing.T) {
	s, _ := setupTestStore(t)
	assert.Error(t, s.SaveProfile(context.Background(), &model.Profile{}))
}

func TestProfileStore_List(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	tests := []struct {
		id  string
		age time.Duration
	}{
		{"old", 3 * time.Hour},
		{"new", time.Minute},
		{"mid", time.Hour},
	}
	for _, tt := range tests {
		p := testProfile(tt.id)
		p.CreatedAt = now.Add(-tt.age)
		require.NoError(t, s.SaveProfile(ctx, p))
	}

	list, err := s.ListProfiles(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, 5, list[0].SampleCount)
	assert.Equal(t, 56.8, list[0].From.Lat)

	limited, err := s.ListProfiles(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestProfileStore_Delete(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveProfile(ctx, testProfile("p1")))

	ok, err := s.DeleteProfile(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.DeleteProfile(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProfileStore_Prune(t *testing.T) {
	s, d := setupTestStore(t)
	ctx := context.Background()

	stale := testProfile("stale")
	stale.CreatedAt = time.Now().Add(-14 * 24 * time.Hour)
	require.NoError(t, s.SaveProfile(ctx, stale))
	require.NoError(t, s.SaveProfile(ctx, testProfile("fresh")))

	n, err := d.PruneProfiles(7 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := s.GetProfile(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
