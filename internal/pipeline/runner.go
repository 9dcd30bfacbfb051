package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"streamlist/internal/availability"
	"streamlist/internal/catalog"
	"streamlist/internal/logging"
	"streamlist/internal/metrics"
	"streamlist/internal/resolver"
	"streamlist/internal/services"
)

const (
	DefaultConcurrency = 8
	DefaultPacing      = 100 * time.Millisecond
)

// ErrNoTitles is returned when a batch has no non-blank titles.
var ErrNoTitles = fmt.Errorf("%w: no titles provided", services.ErrValidation)

// PrimaryCatalog is the subset of the TMDB client the pipeline uses.
type PrimaryCatalog interface {
	SearchTitle(ctx context.Context, text string) (*catalog.CanonicalTitle, error)
	FetchDetails(ctx context.Context, id int64) (catalog.Details, error)
	GenreMap(ctx context.Context) (map[int]string, error)
	PosterURL(path string) string
}

// Resolver finds the secondary catalog id for a canonical title.
type Resolver interface {
	Resolve(ctx context.Context, title *catalog.CanonicalTitle) (*resolver.Match, error)
}

// Aggregator builds the streaming-source list for a title.
type Aggregator interface {
	Aggregate(ctx context.Context, secondaryID *int64, primaryID int64, primaryTitle string) []availability.StreamingSource
}

// Options tune a Runner. Zero values fall back to package defaults.
type Options struct {
	Concurrency int
	Pacing      time.Duration
	// MaxTitles rejects oversized batches; zero means unlimited.
	MaxTitles int
	Logger    *slog.Logger
	Metrics   *metrics.Recorder
}

// Runner executes the pipeline.
type Runner struct {
	primary     PrimaryCatalog
	resolver    Resolver
	aggregator  Aggregator
	concurrency int
	pacing      time.Duration
	maxTitles   int
	logger      *slog.Logger
	metrics     *metrics.Recorder
	sleep       func(ctx context.Context, d time.Duration)
}

// NewRunner wires the pipeline stages together.
func NewRunner(primary PrimaryCatalog, res Resolver, agg Aggregator, opts Options) *Runner {
	r := &Runner{
		primary:     primary,
		resolver:    res,
		aggregator:  agg,
		concurrency: opts.Concurrency,
		pacing:      opts.Pacing,
		maxTitles:   opts.MaxTitles,
		logger:      logging.NewComponentLogger(opts.Logger, "pipeline"),
		metrics:     opts.Metrics,
		sleep:       sleepContext,
	}
	if r.concurrency < 1 {
		r.concurrency = DefaultConcurrency
	}
	if r.pacing < 0 {
		r.pacing = 0
	}
	return r
}

// RunBatch resolves titles with the runner's configured concurrency and
// pacing.
func (r *Runner) RunBatch(ctx context.Context, titles []string) ([]Movie, error) {
	return r.RunBatchWith(ctx, titles, r.concurrency, r.pacing)
}

// RunBatchWith resolves titles in chunks of concurrency, sleeping pacing
// between chunks. Blank titles are dropped first; the result has one Movie
// per remaining title, in order.
func (r *Runner) RunBatchWith(ctx context.Context, titles []string, concurrency int, pacing time.Duration) ([]Movie, error) {
	cleaned := CleanTitles(titles)
	if len(cleaned) == 0 {
		return nil, ErrNoTitles
	}
	if r.maxTitles > 0 && len(cleaned) > r.maxTitles {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "run batch",
			fmt.Sprintf("%d titles exceeds the limit of %d", len(cleaned), r.maxTitles), nil)
	}
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	if pacing < 0 {
		pacing = 0
	}

	batchID := uuid.NewString()
	ctx = services.WithBatchID(ctx, batchID)
	logger := logging.WithContext(ctx, r.logger)
	start := time.Now()

	genres, err := r.primary.GenreMap(ctx)
	if err != nil {
		logger.Error("genre map unavailable", logging.Error(err))
		return nil, fmt.Errorf("load genre map: %w", err)
	}

	chunks := (len(cleaned) + concurrency - 1) / concurrency
	logger.Info("batch started",
		logging.Int("titles", len(cleaned)),
		logging.Int("dropped_blank", len(titles)-len(cleaned)),
		logging.Int("concurrency", concurrency),
		logging.Int("chunks", chunks),
		logging.Duration("pacing", pacing),
	)

	movies := make([]Movie, len(cleaned))
	for chunkStart := 0; chunkStart < len(cleaned); chunkStart += concurrency {
		chunkEnd := min(chunkStart+concurrency, len(cleaned))
		p := pool.New().WithMaxGoroutines(chunkEnd - chunkStart)
		for i := chunkStart; i < chunkEnd; i++ {
			p.Go(func() {
				movies[i] = r.runOne(ctx, cleaned[i], genres)
			})
		}
		p.Wait()
		if chunkEnd < len(cleaned) && pacing > 0 {
			r.sleep(ctx, pacing)
		}
	}

	notFound := 0
	for _, m := range movies {
		if m.NotFound {
			notFound++
		}
	}
	elapsed := time.Since(start)
	r.metrics.ObserveBatch(elapsed)
	logger.Info("batch complete",
		logging.Int("titles", len(movies)),
		logging.Int("not_found", notFound),
		logging.Duration("elapsed", elapsed),
	)
	return movies, nil
}

// runOne never fails: errors and panics degrade to whatever the pipeline
// produced so far, or a not-found movie when the search itself failed.
func (r *Runner) runOne(ctx context.Context, query string, genres map[int]string) (movie Movie) {
	ctx = services.WithTitle(ctx, query)
	logger := logging.WithContext(ctx, r.logger)
	movie = NotFoundMovie(query)

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("title pipeline panicked", logging.Any("panic", rec))
			r.metrics.ObserveTitle("panic")
		}
	}()

	if err := r.titleInto(ctx, query, genres, &movie); err != nil {
		logging.WarnWithContext(logger, "title search failed", "title_search_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check tmdb connectivity and api key"),
			logging.String(logging.FieldImpact, "title reported as not found"),
		)
		r.metrics.ObserveTitle("error")
		return movie
	}
	if movie.NotFound {
		r.metrics.ObserveTitle("not_found")
	} else {
		r.metrics.ObserveTitle("found")
	}
	return movie
}

// Title runs the pipeline for one title. A nil error with NotFound set means
// TMDB had no match; a non-nil error means the search itself failed.
func (r *Runner) Title(ctx context.Context, query string, genres map[int]string) (Movie, error) {
	movie := NotFoundMovie(query)
	err := r.titleInto(ctx, query, genres, &movie)
	return movie, err
}

// titleInto fills out step by step so a panic in a later stage still leaves
// the earlier stages' data behind.
func (r *Runner) titleInto(ctx context.Context, query string, genres map[int]string, out *Movie) error {
	logger := logging.WithContext(ctx, r.logger)

	match, err := r.primary.SearchTitle(ctx, query)
	if err != nil {
		return err
	}
	if match == nil {
		logger.Info("no tmdb match")
		return nil
	}

	title := *match
	details, err := r.primary.FetchDetails(ctx, title.PrimaryID)
	if err != nil {
		logging.WarnWithContext(logger, "tmdb details failed", "tmdb_details_failed",
			logging.Int64("tmdb_id", title.PrimaryID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "runtime and imdb id unavailable"),
		)
	} else {
		title.RuntimeMinutes = details.RuntimeMinutes
		title.IMDbID = details.IMDbID
	}
	*out = assemble(title, genres, r.primary.PosterURL(title.PosterPath))

	var secondaryID *int64
	if r.resolver != nil {
		m, err := r.resolver.Resolve(ctx, &title)
		if err != nil {
			logging.WarnWithContext(logger, "cross-catalog resolve failed", "resolve_failed",
				logging.Int64("tmdb_id", title.PrimaryID),
				logging.Error(err),
				logging.String(logging.FieldImpact, "using tmdb watch providers"),
			)
		} else if m != nil {
			secondaryID = &m.ID
		}
	}

	if r.aggregator != nil {
		if sources := r.aggregator.Aggregate(ctx, secondaryID, title.PrimaryID, title.Title); sources != nil {
			out.Sources = sources
		}
	}
	logger.Debug("title resolved",
		logging.Int64("tmdb_id", title.PrimaryID),
		logging.Bool("cross_catalog_match", secondaryID != nil),
		logging.Int("sources", len(out.Sources)),
	)
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
