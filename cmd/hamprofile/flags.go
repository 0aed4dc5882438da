package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"hamprofile/pkg/config"
	"hamprofile/pkg/geo"
)

type options struct {
	configPath string
	initConfig bool
	serve      bool

	from, to geo.Endpoint
	haveFrom bool
	haveTo   bool
	samples  int
	out      string

	// Only applied when given on the command line
	earthArc      *bool
	fullElevation *bool
	seaLevel      *bool
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("hamprofile", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var from, to string
	var arc, full, sea bool
	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to the config file")
	fs.BoolVar(&opts.initConfig, "init-config", false, "Generate default config file and exit")
	fs.BoolVar(&opts.serve, "serve", false, "Start the HTTP API instead of rendering once")
	fs.StringVar(&from, "from", "", "First endpoint: lat,lon[,elevation[,antenna]]")
	fs.StringVar(&to, "to", "", "Second endpoint: lat,lon[,elevation[,antenna]]")
	fs.IntVar(&opts.samples, "samples", 0, "Number of terrain samples (default from config)")
	fs.BoolVar(&arc, "arc", false, "Add the Earth's bulge to the terrain")
	fs.BoolVar(&full, "full", false, "Start the elevation axis at sea level")
	fs.BoolVar(&sea, "sea-level", false, "Draw the sea-level arc")
	fs.StringVar(&opts.out, "out", "profile.png", "Output PNG file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "arc":
			opts.earthArc = &arc
		case "full":
			opts.fullElevation = &full
		case "sea-level":
			opts.seaLevel = &sea
		}
	})

	var err error
	if from != "" {
		if opts.from, err = parseEndpoint(from); err != nil {
			return nil, fmt.Errorf("-from: %w", err)
		}
		opts.haveFrom = true
	}
	if to != "" {
		if opts.to, err = parseEndpoint(to); err != nil {
			return nil, fmt.Errorf("-to: %w", err)
		}
		opts.haveTo = true
	}
	if opts.samples < 0 {
		return nil, fmt.Errorf("-samples must not be negative")
	}
	return opts, nil
}

// apply overrides config values with the flags the user gave.
func (o *options) apply(cfg *config.Config) {
	if o.samples > 0 {
		cfg.Chart.Samples = o.samples
	}
	if o.earthArc != nil {
		cfg.Chart.EarthArc = *o.earthArc
	}
	if o.fullElevation != nil {
		cfg.Chart.FullElevation = *o.fullElevation
	}
	if o.seaLevel != nil {
		cfg.Chart.SeaLevel = *o.seaLevel
	}
}

// parseEndpoint reads "lat,lon[,elevation[,antenna]]". A missing or "?"
// elevation is left as NaN for the elevation source to fill in.
func parseEndpoint(s string) (geo.Endpoint, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 4 {
		return geo.Endpoint{}, fmt.Errorf("want lat,lon[,elevation[,antenna]], got %q", s)
	}

	vals := [4]float64{0, 0, math.NaN(), 0}
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if i == 2 && (p == "" || p == "?") {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return geo.Endpoint{}, fmt.Errorf("field %d of %q: %w", i+1, s, err)
		}
		vals[i] = v
	}

	ep := geo.Endpoint{
		Point:         geo.Point{Lat: vals[0], Lon: vals[1]},
		Elevation:     vals[2],
		AntennaHeight: vals[3],
	}
	if ep.Lat < -90 || ep.Lat > 90 || ep.Lon < -180 || ep.Lon > 180 {
		return geo.Endpoint{}, fmt.Errorf("coordinates out of range in %q", s)
	}
	if ep.AntennaHeight < 0 {
		return geo.Endpoint{}, fmt.Errorf("negative antenna height in %q", s)
	}
	return ep, nil
}
