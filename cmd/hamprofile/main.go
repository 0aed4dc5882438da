package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"hamprofile/pkg/cache"
	"hamprofile/pkg/config"
	"hamprofile/pkg/db"
	"hamprofile/pkg/db/maintenance"
	"hamprofile/pkg/logging"
	"hamprofile/pkg/probe"
	"hamprofile/pkg/request"
	"hamprofile/pkg/store"
	"hamprofile/pkg/terrain"
	"hamprofile/pkg/tracker"
	"hamprofile/pkg/version"
)

const defaultConfigPath = "configs/hamprofile.yaml"

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	// Handle --init-config flag
	if opts.initConfig {
		if err := config.GenerateDefault(opts.configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", opts.configPath)
		return
	}

	// API keys may live in .env next to the binary
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
	}

	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appCfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	opts.apply(appCfg)

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("hamprofile started", "version", version.Version, "serve", opts.serve)

	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbConn.Close()

	maintenance.Run(ctx, dbConn, maintenance.Retention{
		Cache:    appCfg.DB.CacheRetention.Std(),
		Profiles: appCfg.DB.ProfileRetention.Std(),
	})

	tr := tracker.New()
	reqClient := request.New(cache.NewSQLiteCache(dbConn), tr, appCfg.Request)

	src, closeSrc := initSource(appCfg, reqClient)
	defer closeSrc()
	var sampler *terrain.Sampler
	if src != nil {
		sampler = terrain.NewSampler(src, slog.With("component", "sampler"))
	}

	if opts.serve {
		if err := probe.Analyze(probe.Run(ctx, startupProbes(dbConn, src))); err != nil {
			return fmt.Errorf("startup checks failed: %w", err)
		}
		return runServer(ctx, appCfg, sampler, store.NewSQLiteStore(dbConn), tr)
	}
	return renderOnce(ctx, appCfg, opts, sampler, os.Stdout)
}

// initSource picks the elevation source named in the config. A missing grid
// file is not fatal: the API then only accepts requests that carry samples.
func initSource(cfg *config.Config, client *request.Client) (terrain.ElevationSource, func()) {
	switch cfg.Terrain.Source {
	case "api":
		slog.Info("Elevation: remote API", "url", cfg.Elevation.URL)
		return terrain.NewHTTPSource(client, cfg.Elevation.URL, cfg.Elevation.Key, cfg.Elevation.BatchSize), func() {}
	default:
		provider, err := terrain.NewElevationProvider(cfg.Terrain.ElevationFile)
		if err != nil {
			slog.Warn("Elevation: ETOPO1 data not found or invalid", "path", cfg.Terrain.ElevationFile, "error", err)
			return nil, func() {}
		}
		slog.Info("Elevation: ETOPO1 loaded", "path", cfg.Terrain.ElevationFile)
		return terrain.NewGridSource(provider), func() { _ = provider.Close() }
	}
}
