package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hamprofile/pkg/db"
	"hamprofile/pkg/model"
)

// Store defines the repository interface.
type Store interface {
	ProfileStore

	// Close closes the store connection.
	Close() error
}

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Profiles ---

const profileColumns = `id, from_lat, from_lon, from_elevation, from_antenna,
	to_lat, to_lon, to_elevation, to_antenna, samples, earth_arc, full_elevation, created_at`

// GetProfile returns nil, nil when no profile has the given id.
func (s *SQLiteStore) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)

	var p model.Profile
	var samples sql.NullString
	var created dbTime
	err := row.Scan(
		&p.ID,
		&p.From.Lat, &p.From.Lon, &p.From.Elevation, &p.From.AntennaHeight,
		&p.To.Lat, &p.To.Lon, &p.To.Elevation, &p.To.AntennaHeight,
		&samples, &p.EarthArc, &p.FullElevation, &created,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}

	if samples.Valid && samples.String != "" {
		if err := json.Unmarshal([]byte(samples.String), &p.Samples); err != nil {
			return nil, fmt.Errorf("decode samples of %s: %w", id, err)
		}
	}
	p.CreatedAt = created.Time
	return &p, nil
}

// SaveProfile inserts or replaces p. A zero CreatedAt is set to now.
func (s *SQLiteStore) SaveProfile(ctx context.Context, p *model.Profile) error {
	if p.ID == "" {
		return errors.New("profile id is empty")
	}
	samples, err := json.Marshal(p.Samples)
	if err != nil {
		return fmt.Errorf("encode samples: %w", err)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.From.Lat, p.From.Lon, p.From.Elevation, p.From.AntennaHeight,
		p.To.Lat, p.To.Lon, p.To.Elevation, p.To.AntennaHeight,
		string(samples), p.EarthArc, p.FullElevation, db.FormatTime(p.CreatedAt),
	)
	return err
}

// ListProfiles returns the newest profiles first. limit <= 0 means no limit.
func (s *SQLiteStore) ListProfiles(ctx context.Context, limit int) ([]model.ProfileSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, from_lat, from_lon, to_lat, to_lon, json_array_length(samples), created_at
		 FROM profiles ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ProfileSummary
	for rows.Next() {
		var p model.ProfileSummary
		var count sql.NullInt64
		var created dbTime
		if err := rows.Scan(&p.ID, &p.From.Lat, &p.From.Lon, &p.To.Lat, &p.To.Lon, &count, &created); err != nil {
			return nil, err
		}
		p.SampleCount = int(count.Int64)
		p.CreatedAt = created.Time
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeleteProfile reports whether a row was removed.
func (s *SQLiteStore) DeleteProfile(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *SQLiteStore) CountProfiles(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&n)
	return n, err
}

// dbTime scans a DATETIME column whether the driver hands back a time.Time
// or the raw CURRENT_TIMESTAMP text.
type dbTime struct {
	time.Time
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
	case time.Time:
		t.Time = v.UTC()
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("unsupported time value %T", src)
	}
	return nil
}

func (t *dbTime) parse(s string) error {
	for _, layout := range []string{db.TimeLayout, time.RFC3339Nano} {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognised time %q", s)
}
