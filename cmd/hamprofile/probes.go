package main

import (
	"context"
	"errors"

	"hamprofile/pkg/db"
	"hamprofile/pkg/probe"
	"hamprofile/pkg/terrain"
)

var errNoSource = errors.New("no elevation source configured; requests must carry samples")

// startupProbes checks the database and the elevation source. Only the
// database is required: the server can still render posted samples.
func startupProbes(dbConn *db.DB, src terrain.ElevationSource) []probe.Probe {
	return []probe.Probe{
		{
			Name:     "Database",
			Check:    func(ctx context.Context) error { return dbConn.PingContext(ctx) },
			Critical: true,
		},
		{
			Name: "Elevation source",
			Check: func(ctx context.Context) error {
				if src == nil {
					return errNoSource
				}
				return nil
			},
		},
	}
}
