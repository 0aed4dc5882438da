package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "hamprofile.yaml")

	tests := []struct {
		name          string
		setup         func()
		validate      func(*testing.T, *Config)
		checkFile     func(*testing.T)
		expectedError bool
	}{
		{
			name:  "NewFile_Defaults",
			setup: func() {}, // No file
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Chart.Width != 800 || cfg.Chart.Height != 400 {
					t.Errorf("expected default chart 800x400, got %dx%d", cfg.Chart.Width, cfg.Chart.Height)
				}
				if !cfg.Chart.EarthArc {
					t.Error("expected earth arc enabled by default")
				}
				if cfg.Chart.EarthRadius.Meters() != 6372795 {
					t.Errorf("expected earth radius 6372795, got %v", cfg.Chart.EarthRadius)
				}
				if cfg.Terrain.Source != "grid" {
					t.Errorf("expected default source 'grid', got '%s'", cfg.Terrain.Source)
				}
			},
			checkFile: func(t *testing.T) {
				content, err := os.ReadFile(configPath)
				if err != nil {
					t.Fatalf("failed to read config file: %v", err)
				}
				if !strings.Contains(string(content), "source: grid") {
					t.Error("config file missing default values")
				}
				if !strings.Contains(string(content), "# Options: grid") {
					t.Error("config file missing source options comment")
				}
			},
		},
		{
			name: "ExistingFile_Override",
			setup: func() {
				err := os.WriteFile(configPath, []byte("chart:\n  width: 1024\n  samples: 500\nterrain:\n  source: api\n"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Chart.Width != 1024 {
					t.Errorf("expected width 1024, got %d", cfg.Chart.Width)
				}
				if cfg.Chart.Height != 400 {
					t.Errorf("expected default height 400 kept, got %d", cfg.Chart.Height)
				}
				if cfg.Chart.Samples != 500 {
					t.Errorf("expected samples 500, got %d", cfg.Chart.Samples)
				}
				if cfg.Terrain.Source != "api" {
					t.Errorf("expected source 'api', got '%s'", cfg.Terrain.Source)
				}
			},
			checkFile: func(t *testing.T) {
				content, err := os.ReadFile(configPath)
				if err != nil {
					t.Fatalf("failed to read config file: %v", err)
				}
				if !strings.Contains(string(content), "width: 1024") {
					t.Error("config file should persist custom value")
				}
				if !strings.Contains(string(content), "session_ttl:") {
					t.Error("config file should gain missing fields")
				}
			},
		},
		{
			name: "Durations",
			setup: func() {
				err := os.WriteFile(configPath, []byte("db:\n  cache_retention: 2w\nserver:\n  session_ttl: 90m\n"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.DB.CacheRetention.Std() != 2*Week {
					t.Errorf("expected 2w, got %v", cfg.DB.CacheRetention.Std())
				}
				if cfg.Server.SessionTTL.Std() != 90*time.Minute {
					t.Errorf("expected 90m, got %v", cfg.Server.SessionTTL.Std())
				}
			},
			checkFile: func(t *testing.T) {},
		},
		{
			name: "Key_Env_Override",
			setup: func() {
				t.Setenv("ELEVATION_API_KEY", "env_secret_key")
				err := os.WriteFile(configPath, []byte("elevation_api:\n  key: \"\"\n"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Elevation.Key != "env_secret_key" {
					t.Errorf("expected Key 'env_secret_key', got '%s'", cfg.Elevation.Key)
				}
			},
			checkFile: func(t *testing.T) {
				// Env overrides should NOT be saved to disk
				content, err := os.ReadFile(configPath)
				if err != nil {
					t.Fatalf("failed to read config file: %v", err)
				}
				if strings.Contains(string(content), "env_secret_key") {
					t.Error("environment secret should NOT be persisted to config file")
				}
			},
		},
		{
			name: "Path_Env_Expansion",
			setup: func() {
				t.Setenv("HAM_HOME", "/home/ham")
				t.Setenv("APP_DATA", "/app/data")
				err := os.WriteFile(configPath, []byte("db:\n  path: \"$HAM_HOME/db.sqlite\"\nterrain:\n  elevation_file: \"%APP_DATA%/etopo1.bin\"\n"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.DB.Path != "/home/ham/db.sqlite" {
					t.Errorf("expected DB path '/home/ham/db.sqlite', got '%s'", cfg.DB.Path)
				}
				if cfg.Terrain.ElevationFile != "/app/data/etopo1.bin" {
					t.Errorf("expected elevation file '/app/data/etopo1.bin', got '%s'", cfg.Terrain.ElevationFile)
				}
			},
			checkFile: func(t *testing.T) {
				// Original raw paths with variables should be preserved on disk
				content, err := os.ReadFile(configPath)
				if err != nil {
					t.Fatalf("failed to read config file: %v", err)
				}
				if !strings.Contains(string(content), "$HAM_HOME") {
					t.Error("config file should persist raw $VAR path")
				}
				if !strings.Contains(string(content), "%APP_DATA%") {
					t.Error("config file should persist raw %VAR% path")
				}
			},
		},
		{
			name: "Invalid_YAML",
			setup: func() {
				err := os.WriteFile(configPath, []byte("chart: [not a map]"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			expectedError: true,
		},
		{
			name: "Invalid_Source",
			setup: func() {
				err := os.WriteFile(configPath, []byte("terrain:\n  source: lidar\n"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			expectedError: true,
		},
		{
			name: "Invalid_Samples",
			setup: func() {
				err := os.WriteFile(configPath, []byte("chart:\n  samples: 1\n"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Remove(configPath)
			tt.setup()

			cfg, err := Load(configPath)
			if (err != nil) != tt.expectedError {
				t.Fatalf("Load() error = %v, expectedError %v", err, tt.expectedError)
			}
			if err == nil {
				tt.validate(t, cfg)
				tt.checkFile(t)
			}
		})
	}
}

func TestGenerateDefault(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "default_config.yaml")

	err := GenerateDefault(configPath)
	if err != nil {
		t.Fatalf("GenerateDefault() error = %v", err)
	}

	// Verify file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("GenerateDefault() did not create file")
	}

	// Running again should not fail
	err = GenerateDefault(configPath)
	if err != nil {
		t.Errorf("GenerateDefault() error on second run = %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() of generated file failed: %v", err)
	}
	if cfg.Chart.Samples != DefaultConfig().Chart.Samples {
		t.Errorf("generated config samples = %d", cfg.Chart.Samples)
	}
}
