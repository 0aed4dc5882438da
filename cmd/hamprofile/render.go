package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"hamprofile/pkg/canvas"
	"hamprofile/pkg/chart"
	"hamprofile/pkg/config"
	"hamprofile/pkg/geo"
	"hamprofile/pkg/terrain"
)

// renderOnce samples the path given on the command line, writes the chart
// PNG and prints a short summary to w.
func renderOnce(ctx context.Context, cfg *config.Config, opts *options, sampler *terrain.Sampler, w io.Writer) error {
	if !opts.haveFrom || !opts.haveTo {
		return errors.New("-from and -to are required unless -serve is given")
	}
	if sampler == nil {
		return errors.New("no elevation source available")
	}

	from, to := opts.from, opts.to
	if math.IsNaN(from.Elevation) || math.IsNaN(to.Elevation) {
		if err := sampler.FillEndpoints(ctx, &from, &to); err != nil {
			return err
		}
	}

	_, samples, err := sampler.Sample(ctx, from.Point, to.Point, cfg.Chart.Samples)
	if err != nil {
		return err
	}

	c := canvas.New(cfg.Chart.Width, cfg.Chart.Height)
	defer c.Close()

	r := chart.New(c,
		chart.WithLogger(slog.With("component", "chart")),
		chart.WithEarthRadius(cfg.Chart.EarthRadius.Meters()),
		chart.WithSeaLevel(cfg.Chart.SeaLevel),
	)
	r.Render(from, to, samples, cfg.Chart.EarthArc, cfg.Chart.FullElevation)

	if err := c.SavePNG(opts.out); err != nil {
		return fmt.Errorf("write %s: %w", opts.out, err)
	}

	elevations := make([]float64, len(samples))
	for i, s := range samples {
		elevations[i] = s.Elevation
	}
	report := terrain.Clearance(from, to, elevations, cfg.Chart.EarthRadius.Meters(), cfg.Terrain.Clearance.Meters())

	distance := geo.PathDistance(geo.AngularSeparation(from.Point, to.Point), cfg.Chart.EarthRadius.Meters())
	fmt.Fprintf(w, "Wrote %s\n", opts.out)
	fmt.Fprintf(w, "Distance: %.2f km, bearing %.1f°\n", distance/1000, geo.Bearing(from.Point, to.Point))
	if st := r.State(); st != nil {
		stats := st.Stats()
		fmt.Fprintf(w, "Terrain: %.0f..%.0f m (avg %.0f m)\n", stats.MinRaw, stats.MaxRaw, stats.Average)
	}
	if report.Clear {
		fmt.Fprintf(w, "Line of sight: clear, worst margin %.1f m at sample %d\n", report.WorstMargin, report.WorstIndex)
	} else {
		fmt.Fprintf(w, "Line of sight: BLOCKED, %.1f m at sample %d\n", report.WorstMargin, report.WorstIndex)
	}

	slog.Info("Chart rendered", "out", opts.out, "samples", len(samples), "clear", report.Clear)
	return nil
}
