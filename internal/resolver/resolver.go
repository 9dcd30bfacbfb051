package resolver

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"streamlist/internal/catalog"
	"streamlist/internal/catalog/watchmode"
	"streamlist/internal/logging"
	"streamlist/internal/metrics"
)

// Strategy names, in chain order.
const (
	StrategyTMDBID       = "tmdb_id"
	StrategyIMDbID       = "imdb_id"
	StrategyNameSearch   = "name_search"
	StrategyAutocomplete = "autocomplete"
)

// Catalog is the subset of the Watchmode client the resolver uses.
type Catalog interface {
	FieldSearch(ctx context.Context, field watchmode.SearchField, value string) ([]watchmode.Title, error)
	Autocomplete(ctx context.Context, value string) ([]watchmode.Title, error)
}

// Match is a confident cross-catalog hit.
type Match struct {
	ID       int64
	Strategy string
	// Score is zero for the authoritative id strategies.
	Score int
}

type strategy struct {
	name string
	run  func(ctx context.Context, title *catalog.CanonicalTitle) (*Match, error)
}

// Resolver walks the strategy chain against a secondary catalog.
type Resolver struct {
	catalog    Catalog
	weights    Weights
	logger     *slog.Logger
	metrics    *metrics.Recorder
	strategies []strategy
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithWeights overrides the scoring weights.
func WithWeights(w Weights) Option {
	return func(r *Resolver) { r.weights = w }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithMetrics records which strategy wins.
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Resolver) { r.metrics = m }
}

// New builds a resolver. A nil catalog yields a resolver that never matches,
// which is how a missing Watchmode key is handled.
func New(c Catalog, opts ...Option) *Resolver {
	r := &Resolver{
		catalog: c,
		weights: DefaultWeights(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "resolver")
	r.strategies = []strategy{
		{name: StrategyTMDBID, run: r.byTMDBID},
		{name: StrategyIMDbID, run: r.byIMDbID},
		{name: StrategyNameSearch, run: r.byNameSearch},
		{name: StrategyAutocomplete, run: r.byAutocomplete},
	}
	return r
}

// Resolve returns the secondary-catalog match for title, or nil when no
// strategy produced a confident hit. The only error is context cancellation.
func (r *Resolver) Resolve(ctx context.Context, title *catalog.CanonicalTitle) (*Match, error) {
	if r == nil || r.catalog == nil || title == nil {
		return nil, nil
	}
	logger := logging.WithContext(ctx, r.logger)
	for _, s := range r.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		match, err := s.run(ctx, title)
		if err != nil {
			logging.WarnWithContext(logger, "resolver strategy failed", "resolver_strategy_failed",
				logging.String("strategy", s.name),
				logging.Int64("tmdb_id", title.PrimaryID),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check watchmode connectivity and quota"),
				logging.String(logging.FieldImpact, "falling through to next strategy"),
			)
			continue
		}
		if match == nil {
			logger.Debug("resolver strategy found nothing", logging.String("strategy", s.name))
			continue
		}
		match.Strategy = s.name
		logger.Debug("resolved cross-catalog match",
			logging.String("strategy", s.name),
			logging.Int64("tmdb_id", title.PrimaryID),
			logging.Int64("watchmode_id", match.ID),
			logging.Int("score", match.Score),
		)
		r.metrics.ObserveResolution(s.name)
		return match, nil
	}
	r.metrics.ObserveResolution("")
	logger.Debug("no cross-catalog match", logging.Int64("tmdb_id", title.PrimaryID))
	return nil, nil
}

func (r *Resolver) byTMDBID(ctx context.Context, title *catalog.CanonicalTitle) (*Match, error) {
	if title.PrimaryID <= 0 {
		return nil, nil
	}
	return r.firstResult(ctx, watchmode.FieldTMDBMovieID, strconv.FormatInt(title.PrimaryID, 10))
}

func (r *Resolver) byIMDbID(ctx context.Context, title *catalog.CanonicalTitle) (*Match, error) {
	if strings.TrimSpace(title.IMDbID) == "" {
		return nil, nil
	}
	return r.firstResult(ctx, watchmode.FieldIMDbID, title.IMDbID)
}

func (r *Resolver) firstResult(ctx context.Context, field watchmode.SearchField, value string) (*Match, error) {
	results, err := r.catalog.FieldSearch(ctx, field, value)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &Match{ID: results[0].ID}, nil
}

func (r *Resolver) byNameSearch(ctx context.Context, title *catalog.CanonicalTitle) (*Match, error) {
	return r.rankedAttempts(ctx, title, titleAttempts(title), func(ctx context.Context, query string) ([]watchmode.Title, error) {
		return r.catalog.FieldSearch(ctx, watchmode.FieldName, query)
	})
}

func (r *Resolver) byAutocomplete(ctx context.Context, title *catalog.CanonicalTitle) (*Match, error) {
	attempts := titleAttempts(title)
	if title.Year > 0 {
		year := strconv.Itoa(title.Year)
		for _, a := range titleAttempts(title) {
			attempts = append(attempts, attempt{query: a.query + " " + year, scoreAs: a.scoreAs})
		}
	}
	return r.rankedAttempts(ctx, title, attempts, r.catalog.Autocomplete)
}

type attempt struct {
	query   string
	scoreAs string
}

// titleAttempts returns the TMDB title then the original query, skipping
// blanks and case-insensitive duplicates.
func titleAttempts(title *catalog.CanonicalTitle) []attempt {
	var attempts []attempt
	seen := make(map[string]struct{}, 2)
	for _, candidate := range []string{title.Title, title.OriginalQueryTitle} {
		candidate = strings.TrimSpace(candidate)
		key := strings.ToLower(candidate)
		if candidate == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		attempts = append(attempts, attempt{query: candidate, scoreAs: candidate})
	}
	return attempts
}

type searchFunc func(ctx context.Context, query string) ([]watchmode.Title, error)

// rankedAttempts tries each attempt in order and returns the first positive
// top-ranked candidate. Errors on individual attempts are skipped; the last
// one is reported only when every attempt failed.
func (r *Resolver) rankedAttempts(ctx context.Context, title *catalog.CanonicalTitle, attempts []attempt, search searchFunc) (*Match, error) {
	var lastErr error
	failures := 0
	for _, a := range attempts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidates, err := search(ctx, a.query)
		if err != nil {
			lastErr = err
			failures++
			r.logger.Debug("resolver attempt failed",
				logging.String("query", a.query),
				logging.Error(err),
			)
			continue
		}
		if best, ok := r.Rank(title, a.scoreAs, candidates); ok {
			return &best, nil
		}
	}
	if failures > 0 && failures == len(attempts) {
		return nil, lastErr
	}
	return nil, nil
}

type scored struct {
	title watchmode.Title
	score int
}

// Rank scores candidates against queryTitle and the canonical title's year,
// adds the external-id bonus, and returns the top candidate when its total is
// positive. Ties keep upstream order.
func (r *Resolver) Rank(title *catalog.CanonicalTitle, queryTitle string, candidates []watchmode.Title) (Match, bool) {
	if len(candidates) == 0 {
		return Match{}, false
	}
	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		s := r.weights.Score(queryTitle, title.Year, c)
		if externalIDMatches(title, c) {
			s += r.weights.ExternalIDBonus
		}
		ranked = append(ranked, scored{title: c, score: s})
	}
	slices.SortStableFunc(ranked, func(a, b scored) int {
		return b.score - a.score
	})
	top := ranked[0]
	if top.score <= 0 {
		return Match{}, false
	}
	return Match{ID: top.title.ID, Score: top.score}, true
}

func externalIDMatches(title *catalog.CanonicalTitle, c watchmode.Title) bool {
	if title.PrimaryID > 0 && c.TMDBID == title.PrimaryID {
		return true
	}
	imdb := strings.TrimSpace(title.IMDbID)
	return imdb != "" && strings.EqualFold(imdb, c.IMDbID)
}
