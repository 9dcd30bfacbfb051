package config

import (
	"fmt"

	"streamlist/internal/services"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateWatchmode(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	if err := c.validateResolver(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("%w: tmdb.api_key is required. Set TMDB_API_KEY env var or edit %s (create with 'streamlist config init')", services.ErrConfiguration, defaultPath)
	}
	if len(c.TMDB.Region) != 2 {
		return fmt.Errorf("%w: tmdb.region must be a two-letter country code, got %q", services.ErrConfiguration, c.TMDB.Region)
	}
	if c.TMDB.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: tmdb.requests_per_second must be >= 0", services.ErrConfiguration)
	}
	return nil
}

func (c *Config) validateWatchmode() error {
	if len(c.Watchmode.Region) != 2 {
		return fmt.Errorf("%w: watchmode.region must be a two-letter country code, got %q", services.ErrConfiguration, c.Watchmode.Region)
	}
	if c.Watchmode.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: watchmode.requests_per_second must be >= 0", services.ErrConfiguration)
	}
	if c.Upstream.RetryAttempts < 0 {
		return fmt.Errorf("%w: upstream.retry_attempts must be >= 0", services.ErrConfiguration)
	}
	if c.Upstream.RetryDelayMillis < 0 {
		return fmt.Errorf("%w: upstream.retry_delay_millis must be >= 0", services.ErrConfiguration)
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("%w: batch.concurrency must be >= 1", services.ErrConfiguration)
	}
	if c.Batch.PacingMillis < 0 {
		return fmt.Errorf("%w: batch.pacing_millis must be >= 0", services.ErrConfiguration)
	}
	if c.Batch.MaxTitles < 1 {
		return fmt.Errorf("%w: batch.max_titles must be >= 1", services.ErrConfiguration)
	}
	return nil
}

func (c *Config) validateResolver() error {
	r := c.Resolver
	if r.ExactTitle < r.PrefixTitle || r.PrefixTitle < r.ContainsTitle {
		return fmt.Errorf("%w: resolver title weights must satisfy exact_title >= prefix_title >= contains_title", services.ErrConfiguration)
	}
	if r.ExactYear < r.AdjacentYear || r.AdjacentYear < r.NearYear {
		return fmt.Errorf("%w: resolver year weights must satisfy exact_year >= adjacent_year >= near_year", services.ErrConfiguration)
	}
	if r.ExternalIDBonus < 0 || r.MovieBonus < 0 {
		return fmt.Errorf("%w: resolver bonuses must be >= 0", services.ErrConfiguration)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.RateLimitPerMinute < 0 || c.Server.RateLimitBurst < 0 {
		return fmt.Errorf("%w: server rate limits must be >= 0", services.ErrConfiguration)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: logging.format must be console or json, got %q", services.ErrConfiguration, c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: logging.level must be one of debug, info, warn, error, got %q", services.ErrConfiguration, c.Logging.Level)
	}
	return nil
}
