package config

const (
	defaultConfigPath            = "~/.config/streamlist/config.toml"
	defaultTMDBBaseURL           = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL      = "https://image.tmdb.org/t/p"
	defaultTMDBLanguage          = "en-US"
	defaultRegion                = "US"
	defaultWatchmodeBaseURL      = "https://api.watchmode.com/v1"
	defaultRequestsPerSecond     = 20
	defaultUpstreamTimeout       = 10
	defaultRetryAttempts         = 2
	defaultRetryDelayMillis      = 250
	defaultBatchConcurrency      = 8
	defaultBatchPacingMillis     = 100
	defaultBatchMaxTitles        = 500
	defaultCacheSize             = 2048
	defaultCacheTTLSeconds       = 3600
	defaultServerBind            = "127.0.0.1:7490"
	defaultRateLimitPerMinute    = 30
	defaultRateLimitBurst        = 10
	defaultLetterboxdMaxPages    = 4
	defaultLetterboxdUserAgent   = "StreamList/1.0"
	defaultLetterboxdTimeout     = 15
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogMaxSizeMB          = 50
	defaultLogMaxBackups         = 5
	defaultLogRetentionDays      = 30
	defaultResolverMovieBonus    = 30
	defaultResolverExactTitle    = 120
	defaultResolverPrefixTitle   = 80
	defaultResolverContainsTitle = 45
	defaultResolverExactYear     = 90
	defaultResolverAdjacentYear  = 55
	defaultResolverNearYear      = 25
	defaultResolverExternalBonus = 1000
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		TMDB: TMDB{
			BaseURL:           defaultTMDBBaseURL,
			ImageBaseURL:      defaultTMDBImageBaseURL,
			Language:          defaultTMDBLanguage,
			Region:            defaultRegion,
			RequestsPerSecond: defaultRequestsPerSecond,
			TimeoutSeconds:    defaultUpstreamTimeout,
		},
		Watchmode: Watchmode{
			BaseURL:           defaultWatchmodeBaseURL,
			Region:            defaultRegion,
			RequestsPerSecond: defaultRequestsPerSecond,
			TimeoutSeconds:    defaultUpstreamTimeout,
		},
		Upstream: Upstream{
			RetryAttempts:    defaultRetryAttempts,
			RetryDelayMillis: defaultRetryDelayMillis,
		},
		Batch: Batch{
			Concurrency:  defaultBatchConcurrency,
			PacingMillis: defaultBatchPacingMillis,
			MaxTitles:    defaultBatchMaxTitles,
		},
		Resolver: DefaultResolver(),
		Cache: Cache{
			Enabled:    true,
			Size:       defaultCacheSize,
			TTLSeconds: defaultCacheTTLSeconds,
		},
		Server: Server{
			Bind:               defaultServerBind,
			RateLimitPerMinute: defaultRateLimitPerMinute,
			RateLimitBurst:     defaultRateLimitBurst,
			Metrics:            true,
		},
		Letterboxd: Letterboxd{
			MaxPages:       defaultLetterboxdMaxPages,
			UserAgent:      defaultLetterboxdUserAgent,
			TimeoutSeconds: defaultLetterboxdTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			MaxSizeMB:     defaultLogMaxSizeMB,
			MaxBackups:    defaultLogMaxBackups,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

// DefaultResolver returns the stock cross-catalog scoring weights.
func DefaultResolver() Resolver {
	return Resolver{
		MovieBonus:      defaultResolverMovieBonus,
		ExactTitle:      defaultResolverExactTitle,
		PrefixTitle:     defaultResolverPrefixTitle,
		ContainsTitle:   defaultResolverContainsTitle,
		ExactYear:       defaultResolverExactYear,
		AdjacentYear:    defaultResolverAdjacentYear,
		NearYear:        defaultResolverNearYear,
		ExternalIDBonus: defaultResolverExternalBonus,
	}
}
