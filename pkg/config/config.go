package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Chart     ChartConfig     `yaml:"chart"`
	Terrain   TerrainConfig   `yaml:"terrain"`
	Elevation ElevationConfig `yaml:"elevation_api"`
	Request   RequestConfig   `yaml:"request"`
	Log       LogConfig       `yaml:"log"`
	DB        DBConfig        `yaml:"db"`
	Server    ServerConfig    `yaml:"server"`
}

// ChartConfig holds the default chart rendering settings.
type ChartConfig struct {
	Width         int      `yaml:"width"`
	Height        int      `yaml:"height"`
	Samples       int      `yaml:"samples"`
	EarthArc      bool     `yaml:"earth_arc"`
	FullElevation bool     `yaml:"full_elevation"`
	SeaLevel      bool     `yaml:"sea_level"`
	EarthRadius   Distance `yaml:"earth_radius"`
}

// TerrainConfig holds elevation source and clearance settings.
type TerrainConfig struct {
	Source        string   `yaml:"source"` // "grid", "api"
	ElevationFile string   `yaml:"elevation_file"`
	Clearance     Distance `yaml:"clearance"`
}

// ElevationConfig holds settings for the remote elevation lookup API.
type ElevationConfig struct {
	URL       string `yaml:"url"`
	Key       string `yaml:"key"`
	BatchSize int    `yaml:"batch_size"`
}

// RequestConfig holds HTTP request settings.
type RequestConfig struct {
	Retries   int           `yaml:"retries"`
	Timeout   Duration      `yaml:"timeout"`
	Gap       Duration      `yaml:"gap"`
	UserAgent string        `yaml:"user_agent"`
	Backoff   BackoffConfig `yaml:"backoff"`
}

// BackoffConfig holds exponential backoff settings.
type BackoffConfig struct {
	BaseDelay Duration `yaml:"base_delay"`
	MaxDelay  Duration `yaml:"max_delay"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path             string   `yaml:"path"`
	CacheRetention   Duration `yaml:"cache_retention"`
	ProfileRetention Duration `yaml:"profile_retention"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address     string   `yaml:"address"`
	SessionTTL  Duration `yaml:"session_ttl"`
	MaxSessions int      `yaml:"max_sessions"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Chart: ChartConfig{
			Width:       800,
			Height:      400,
			Samples:     256,
			EarthArc:    true,
			EarthRadius: Distance(6372795),
		},
		Terrain: TerrainConfig{
			Source:        "grid",
			ElevationFile: "./data/etopo1/etopo1_ice_g_i2.bin",
			Clearance:     Distance(0),
		},
		Elevation: ElevationConfig{
			URL:       "https://api.open-elevation.com/api/v1/lookup",
			BatchSize: 100,
		},
		Request: RequestConfig{
			Retries: 3,
			Timeout: Duration(30 * time.Second),
			Gap:     Duration(100 * time.Millisecond),
			Backoff: BackoffConfig{
				BaseDelay: Duration(500 * time.Millisecond),
				MaxDelay:  Duration(60 * time.Second),
			},
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path:             "./data/hamprofile.db",
			CacheRetention:   Duration(30 * Day),
			ProfileRetention: Duration(Week),
		},
		Server: ServerConfig{
			Address:     "localhost:8090",
			SessionTTL:  Duration(time.Hour),
			MaxSessions: 64,
		},
	}
}

// Load reads the config at path, creating it with defaults when missing.
// Existing files are rewritten so newly added fields appear with defaults.
// Secrets come from the environment when the file leaves them empty and
// are never written back.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	if cfg.Elevation.Key == "" {
		if key := os.Getenv("ELEVATION_API_KEY"); key != "" {
			cfg.Elevation.Key = key
		}
	}

	cfg.Terrain.ElevationFile = expandPath(cfg.Terrain.ElevationFile)
	cfg.DB.Path = expandPath(cfg.DB.Path)
	cfg.Log.Server.Path = expandPath(cfg.Log.Server.Path)
	cfg.Log.Requests.Path = expandPath(cfg.Log.Requests.Path)

	return cfg, nil
}

// Validate rejects settings the renderer cannot work with.
func (c *Config) Validate() error {
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("invalid chart size %dx%d", c.Chart.Width, c.Chart.Height)
	}
	if c.Chart.Samples < 2 {
		return fmt.Errorf("chart.samples must be at least 2, got %d", c.Chart.Samples)
	}
	switch c.Terrain.Source {
	case "grid", "api":
	default:
		return fmt.Errorf("unknown terrain.source %q: must be grid or api", c.Terrain.Source)
	}
	if c.Elevation.BatchSize <= 0 {
		return fmt.Errorf("elevation_api.batch_size must be positive, got %d", c.Elevation.BatchSize)
	}
	return nil
}

var winEnvVar = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_]*)%`)

// expandPath resolves $VAR, ${VAR} and %VAR% references.
func expandPath(p string) string {
	p = winEnvVar.ReplaceAllStringFunc(p, func(m string) string {
		return os.Getenv(m[1 : len(m)-1])
	})
	return os.ExpandEnv(p)
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# hamprofile configuration
# ------------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
#   Distance: m (meters), km (kilometers), mi (statute miles), ft (feet)

`)
	data = append(header, data...)

	reSource := regexp.MustCompile(`(?m)^(\s+)source:`)
	data = reSource.ReplaceAll(data, []byte("${1}# Options: grid (ETOPO1 file), api (elevation_api)\n${1}source:"))

	reKey := regexp.MustCompile(`(?m)^(\s+)key:`)
	data = reKey.ReplaceAll(data, []byte("${1}# Leave empty to read ELEVATION_API_KEY from the environment\n${1}key:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
