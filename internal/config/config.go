package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// TMDB contains configuration for The Movie Database, the primary catalog.
type TMDB struct {
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url"`
	ImageBaseURL      string  `toml:"image_base_url"`
	Language          string  `toml:"language"`
	Region            string  `toml:"region"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
}

// Watchmode contains configuration for the Watchmode availability catalog.
// An empty API key disables the secondary catalog.
type Watchmode struct {
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url"`
	Region            string  `toml:"region"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
}

// Upstream contains retry settings shared by both catalog clients.
type Upstream struct {
	RetryAttempts    int `toml:"retry_attempts"`
	RetryDelayMillis int `toml:"retry_delay_millis"`
}

// Batch contains batch orchestration settings.
type Batch struct {
	Concurrency  int `toml:"concurrency"`
	PacingMillis int `toml:"pacing_millis"`
	MaxTitles    int `toml:"max_titles"`
}

// Resolver contains the cross-catalog scoring weights. They are heuristics
// and may be tuned without code changes.
type Resolver struct {
	MovieBonus      int `toml:"movie_bonus"`
	ExactTitle      int `toml:"exact_title"`
	PrefixTitle     int `toml:"prefix_title"`
	ContainsTitle   int `toml:"contains_title"`
	ExactYear       int `toml:"exact_year"`
	AdjacentYear    int `toml:"adjacent_year"`
	NearYear        int `toml:"near_year"`
	ExternalIDBonus int `toml:"external_id_bonus"`
}

// Cache contains settings for the in-process upstream response cache.
type Cache struct {
	Enabled    bool `toml:"enabled"`
	Size       int  `toml:"size"`
	TTLSeconds int  `toml:"ttl_seconds"`
}

// Server contains HTTP API settings.
type Server struct {
	Bind               string `toml:"bind"`
	APIToken           string `toml:"api_token"`
	RateLimitPerMinute int    `toml:"rate_limit_per_minute"`
	RateLimitBurst     int    `toml:"rate_limit_burst"`
	Metrics            bool   `toml:"metrics"`
}

// Letterboxd contains list-import settings.
type Letterboxd struct {
	MaxPages       int    `toml:"max_pages"`
	UserAgent      string `toml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	File          string `toml:"file"`
	MaxSizeMB     int    `toml:"max_size_mb"`
	MaxBackups    int    `toml:"max_backups"`
	RetentionDays int    `toml:"retention_days"`
	Compress      bool   `toml:"compress"`
}

// Config encapsulates all configuration values for StreamList.
//
// Configuration sections by subsystem:
//   - TMDB: primary catalog (search, details, genres, fallback providers)
//   - Watchmode: secondary availability catalog
//   - Upstream: retry policy for both catalogs
//   - Batch: chunk size and pacing for batch runs
//   - Resolver: cross-catalog scoring weights
//   - Cache: in-process response cache
//   - Server: HTTP API bind address, auth, rate limits
//   - Letterboxd: watchlist import
//   - Logging: log format, level, and rotation
type Config struct {
	TMDB       TMDB       `toml:"tmdb"`
	Watchmode  Watchmode  `toml:"watchmode"`
	Upstream   Upstream   `toml:"upstream"`
	Batch      Batch      `toml:"batch"`
	Resolver   Resolver   `toml:"resolver"`
	Cache      Cache      `toml:"cache"`
	Server     Server     `toml:"server"`
	Letterboxd Letterboxd `toml:"letterboxd"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has
// environment fallbacks applied and all values normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("streamlist.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// WatchmodeEnabled reports whether the secondary catalog is configured.
func (c *Config) WatchmodeEnabled() bool {
	return strings.TrimSpace(c.Watchmode.APIKey) != ""
}

// BatchPacing returns the pause inserted between batch chunks.
func (c *Config) BatchPacing() time.Duration {
	return time.Duration(c.Batch.PacingMillis) * time.Millisecond
}

// RetryDelay returns the base delay between upstream retry attempts.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Upstream.RetryDelayMillis) * time.Millisecond
}

// CacheTTL returns the upstream response cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
