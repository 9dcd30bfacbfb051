package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeTMDB()
	c.normalizeWatchmode()
	c.normalizeBatch()
	c.normalizeCache()
	c.normalizeServer()
	c.normalizeLetterboxd()
	return c.normalizeLogging()
}

func (c *Config) normalizeTMDB() {
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = value
		}
	}
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.ImageBaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.ImageBaseURL), "/")
	if c.TMDB.ImageBaseURL == "" {
		c.TMDB.ImageBaseURL = defaultTMDBImageBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	c.TMDB.Region = normalizeRegion(c.TMDB.Region)
	if c.TMDB.TimeoutSeconds <= 0 {
		c.TMDB.TimeoutSeconds = defaultUpstreamTimeout
	}
}

func (c *Config) normalizeWatchmode() {
	if c.Watchmode.APIKey == "" {
		if value, ok := os.LookupEnv("WATCHMODE_API_KEY"); ok {
			c.Watchmode.APIKey = value
		}
	}
	c.Watchmode.APIKey = strings.TrimSpace(c.Watchmode.APIKey)
	c.Watchmode.BaseURL = strings.TrimRight(strings.TrimSpace(c.Watchmode.BaseURL), "/")
	if c.Watchmode.BaseURL == "" {
		c.Watchmode.BaseURL = defaultWatchmodeBaseURL
	}
	c.Watchmode.Region = normalizeRegion(c.Watchmode.Region)
	if c.Watchmode.TimeoutSeconds <= 0 {
		c.Watchmode.TimeoutSeconds = defaultUpstreamTimeout
	}
}

func (c *Config) normalizeBatch() {
	if c.Batch.Concurrency == 0 {
		c.Batch.Concurrency = defaultBatchConcurrency
	}
	if c.Batch.MaxTitles == 0 {
		c.Batch.MaxTitles = defaultBatchMaxTitles
	}
}

func (c *Config) normalizeCache() {
	if c.Cache.Size <= 0 {
		c.Cache.Size = defaultCacheSize
	}
	if c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = defaultCacheTTLSeconds
	}
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	if c.Server.APIToken == "" {
		if value, ok := os.LookupEnv("STREAMLIST_API_TOKEN"); ok {
			c.Server.APIToken = value
		}
	}
	c.Server.APIToken = strings.TrimSpace(c.Server.APIToken)
}

func (c *Config) normalizeLetterboxd() {
	if c.Letterboxd.MaxPages <= 0 {
		c.Letterboxd.MaxPages = defaultLetterboxdMaxPages
	}
	c.Letterboxd.UserAgent = strings.TrimSpace(c.Letterboxd.UserAgent)
	if c.Letterboxd.UserAgent == "" {
		c.Letterboxd.UserAgent = defaultLetterboxdUserAgent
	}
	if c.Letterboxd.TimeoutSeconds <= 0 {
		c.Letterboxd.TimeoutSeconds = defaultLetterboxdTimeout
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		expanded, err := expandPath(strings.TrimSpace(c.Logging.File))
		if err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
		c.Logging.File = expanded
	}
	return nil
}

func normalizeRegion(region string) string {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		return defaultRegion
	}
	return region
}
