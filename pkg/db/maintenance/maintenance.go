package maintenance

import (
	"context"
	"log/slog"
	"time"

	"hamprofile/pkg/db"
)

// Retention controls how long rows survive maintenance.
type Retention struct {
	Cache    time.Duration
	Profiles time.Duration
}

// Run prunes expired cache entries and stored profiles. A zero duration
// disables pruning for that table. Failures are logged, not returned, so a
// broken database never blocks startup.
func Run(ctx context.Context, d *db.DB, r Retention) {
	slog.Info("Starting database maintenance...")

	if ctx.Err() != nil {
		return
	}
	if r.Cache > 0 {
		if n, err := d.PruneCache(r.Cache); err != nil {
			slog.Error("Cache pruning failed", "error", err)
		} else {
			slog.Info("Cache pruning completed", "removed", n)
		}
	}

	if ctx.Err() != nil {
		return
	}
	if r.Profiles > 0 {
		if n, err := d.PruneProfiles(r.Profiles); err != nil {
			slog.Error("Profile pruning failed", "error", err)
		} else {
			slog.Info("Profile pruning completed", "removed", n)
		}
	}
}
