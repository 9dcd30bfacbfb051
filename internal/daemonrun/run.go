package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"streamlist/internal/api"
	"streamlist/internal/availability"
	"streamlist/internal/catalog"
	"streamlist/internal/catalog/tmdb"
	"streamlist/internal/catalog/watchmode"
	"streamlist/internal/config"
	"streamlist/internal/letterboxd"
	"streamlist/internal/logging"
	"streamlist/internal/metrics"
	"streamlist/internal/pipeline"
	"streamlist/internal/preflight"
	"streamlist/internal/resolver"
)

// Stack holds the wired pipeline components built from configuration.
type Stack struct {
	TMDB       *tmdb.Client
	Watchmode  *watchmode.Client
	Resolver   *resolver.Resolver
	Aggregator *availability.Aggregator
	Runner     *pipeline.Runner
	Importer   *letterboxd.Importer
	Metrics    *metrics.Recorder
}

// Build constructs the catalog clients, resolver, aggregator, batch runner,
// and list importer. Watchmode is nil when no key is configured; the
// resolver then never matches and availability comes from TMDB alone.
func Build(cfg *config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*Stack, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	tmdbClient, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
		tmdb.WithFetcherOptions(fetcherOptions(cfg, cfg.TMDB.RequestsPerSecond, cfg.TMDB.TimeoutSeconds, recorder)),
		tmdb.WithImageBaseURL(cfg.TMDB.ImageBaseURL),
		tmdb.WithRegion(cfg.TMDB.Region),
		tmdb.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("tmdb client: %w", err)
	}

	stack := &Stack{TMDB: tmdbClient, Metrics: recorder}

	// Interface values stay untyped nil when Watchmode is off.
	var (
		resolverCatalog resolver.Catalog
		secondary       availability.SecondarySource
	)
	if cfg.WatchmodeEnabled() {
		wm, err := watchmode.New(cfg.Watchmode.APIKey, cfg.Watchmode.BaseURL,
			watchmode.WithFetcherOptions(fetcherOptions(cfg, cfg.Watchmode.RequestsPerSecond, cfg.Watchmode.TimeoutSeconds, recorder)),
			watchmode.WithRegion(cfg.Watchmode.Region),
			watchmode.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("watchmode client: %w", err)
		}
		stack.Watchmode = wm
		resolverCatalog = wm
		secondary = wm
	} else {
		logging.WarnWithContext(logger, "watchmode disabled", "watchmode_disabled",
			logging.String(logging.FieldErrorHint, "set watchmode.api_key or WATCHMODE_API_KEY"),
			logging.String(logging.FieldImpact, "streaming sources come from tmdb watch providers only"),
		)
	}

	stack.Resolver = resolver.New(resolverCatalog,
		resolver.WithWeights(resolver.WeightsFromConfig(cfg.Resolver)),
		resolver.WithLogger(logger),
		resolver.WithMetrics(recorder),
	)
	stack.Aggregator = availability.New(tmdbClient, secondary,
		availability.WithRegion(cfg.Watchmode.Region),
		availability.WithLogger(logger),
	)
	stack.Runner = pipeline.NewRunner(tmdbClient, stack.Resolver, stack.Aggregator, pipeline.Options{
		Concurrency: cfg.Batch.Concurrency,
		Pacing:      cfg.BatchPacing(),
		MaxTitles:   cfg.Batch.MaxTitles,
		Logger:      logger,
		Metrics:     recorder,
	})
	stack.Importer = letterboxd.NewImporter(
		letterboxd.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Letterboxd.TimeoutSeconds) * time.Second}),
		letterboxd.WithMaxPages(cfg.Letterboxd.MaxPages),
		letterboxd.WithUserAgent(cfg.Letterboxd.UserAgent),
		letterboxd.WithLogger(logger),
	)
	return stack, nil
}

// Preflight checks the configured catalogs and log directory.
func (s *Stack) Preflight(ctx context.Context, cfg *config.Config) []preflight.Result {
	var secondary preflight.SecondaryCatalog
	if s.Watchmode != nil {
		secondary = s.Watchmode
	}
	return preflight.RunAll(ctx, cfg, s.TMDB, secondary)
}

func logPreflight(logger *slog.Logger, results []preflight.Result) {
	for _, r := range results {
		if r.Passed {
			logger.Debug("preflight check passed", logging.String("check", r.Name), logging.String("detail", r.Detail))
			continue
		}
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldImpact, "requests depending on this check will fail until it recovers"),
		)
	}
}

func fetcherOptions(cfg *config.Config, rps float64, timeoutSeconds int, recorder *metrics.Recorder) catalog.FetcherOptions {
	opts := catalog.FetcherOptions{
		Timeout:           time.Duration(timeoutSeconds) * time.Second,
		RequestsPerSecond: rps,
		RetryAttempts:     cfg.Upstream.RetryAttempts,
		RetryDelay:        cfg.RetryDelay(),
		Metrics:           recorder,
	}
	if cfg.Cache.Enabled {
		opts.CacheSize = cfg.Cache.Size
		opts.CacheTTL = cfg.CacheTTL()
	}
	return opts
}

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
	Bind     string
}

// Run serves the HTTP API until SIGINT, SIGTERM, or cmdCtx cancellation.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logCfg := *cfg
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		logCfg.Logging.Level = level
	}
	logger, err := logging.NewFromConfig(&logCfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logger.With(logging.String("run_id", uuid.NewString()))

	recorder := metrics.New(true)
	stack, err := Build(cfg, logger, recorder)
	if err != nil {
		return err
	}

	bind := strings.TrimSpace(opts.Bind)
	if bind == "" {
		bind = cfg.Server.Bind
	}
	server := api.NewServer(bind, api.Options{
		Runner:             stack.Runner,
		Importer:           stack.Importer,
		APIToken:           cfg.Server.APIToken,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
		RateLimitBurst:     cfg.Server.RateLimitBurst,
		Metrics:            recorder,
		ExposeMetrics:      cfg.Server.Metrics,
		Logger:             logger,
	})
	if err := server.Start(signalCtx); err != nil {
		return err
	}

	logger.Info("streamlist daemon started",
		logging.String("bind", server.Addr()),
		logging.Bool("watchmode", stack.Watchmode != nil),
		logging.Int("batch_concurrency", cfg.Batch.Concurrency),
		logging.Bool("auth", cfg.Server.APIToken != ""),
	)

	// Startup checks run alongside the listener.
	var wg sync.WaitGroup
	wg.Go(func() {
		logPreflight(logger, stack.Preflight(signalCtx, cfg))
	})

	<-signalCtx.Done()
	server.Stop()
	wg.Wait()
	logger.Info("streamlist daemon stopped")
	return nil
}
