package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"streamlist/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a config suitable for tests: a TMDB key is set,
// Watchmode is disabled, retries and pacing are off, and the server binds an
// ephemeral port. Options are applied last.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfgVal := config.Default()
	cfgVal.TMDB.APIKey = "test"
	cfgVal.Upstream.RetryAttempts = 0
	cfgVal.Batch.PacingMillis = 0
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{t: t, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithTMDBKey sets the TMDB API key on the test config.
func WithTMDBKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.APIKey = key
	}
}

// WithTMDBServer points the primary catalog at a fake server.
func WithTMDBServer(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.BaseURL = baseURL
	}
}

// WithWatchmodeServer enables the secondary catalog against a fake server.
func WithWatchmodeServer(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Watchmode.APIKey = "test"
		b.cfg.Watchmode.BaseURL = baseURL
	}
}

// WriteConfig encodes cfg as TOML at path, creating parent directories.
func WriteConfig(t testing.TB, path string, cfg *config.Config) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}
