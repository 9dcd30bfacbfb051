package availability

import (
	"context"
	"log/slog"
	"strings"

	"streamlist/internal/catalog"
	"streamlist/internal/logging"
	"streamlist/internal/taxonomy"
)

// StreamingSource is one service a title can be watched on.
type StreamingSource struct {
	ServiceID taxonomy.ID `json:"serviceId"`
	Name      string      `json:"name"`
	URL       string      `json:"web_url"`
	Logo      string      `json:"logo"`
}

// PrimarySource is the TMDB fallback.
type PrimarySource interface {
	FetchAvailability(ctx context.Context, id int64) ([]catalog.RawSourceRecord, error)
}

// SecondarySource is the Watchmode source list.
type SecondarySource interface {
	Sources(ctx context.Context, titleID int64) ([]catalog.RawSourceRecord, error)
}

var allowedOffers = map[string]struct{}{
	catalog.OfferSubscription: {},
	catalog.OfferFree:         {},
	catalog.OfferAds:          {},
	catalog.OfferTVE:          {},
}

// Aggregator merges availability for one title.
type Aggregator struct {
	primary   PrimarySource
	secondary SecondarySource
	region    string
	logger    *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithRegion sets the only region secondary records may carry.
func WithRegion(region string) Option {
	return func(a *Aggregator) {
		if region = strings.ToUpper(strings.TrimSpace(region)); region != "" {
			a.region = region
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) { a.logger = logger }
}

// New builds an Aggregator. secondary may be nil when Watchmode is disabled.
func New(primary PrimarySource, secondary SecondarySource, opts ...Option) *Aggregator {
	a := &Aggregator{
		primary:   primary,
		secondary: secondary,
		region:    "US",
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.NewComponentLogger(a.logger, "availability")
	return a
}

// Aggregate returns the streaming sources for a title. secondaryID is the
// Watchmode id when the resolver found one.
func (a *Aggregator) Aggregate(ctx context.Context, secondaryID *int64, primaryID int64, primaryTitle string) []StreamingSource {
	logger := logging.WithContext(ctx, a.logger)

	if secondaryID != nil && *secondaryID > 0 && a.secondary != nil {
		records, err := a.secondary.Sources(ctx, *secondaryID)
		if err != nil {
			logging.WarnWithContext(logger, "watchmode sources failed", "watchmode_sources_failed",
				logging.Int64("watchmode_id", *secondaryID),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check watchmode connectivity and quota"),
				logging.String(logging.FieldImpact, "falling back to tmdb watch providers"),
			)
		} else if sources := Normalize(a.filterSecondary(records), primaryTitle); len(sources) > 0 {
			return sources
		}
	}

	if a.primary == nil || primaryID <= 0 {
		return []StreamingSource{}
	}
	records, err := a.primary.FetchAvailability(ctx, primaryID)
	if err != nil {
		logging.WarnWithContext(logger, "tmdb watch providers failed", "tmdb_providers_failed",
			logging.Int64("tmdb_id", primaryID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check tmdb connectivity"),
			logging.String(logging.FieldImpact, "title shown without streaming sources"),
		)
		return []StreamingSource{}
	}
	return Normalize(records, primaryTitle)
}

func (a *Aggregator) filterSecondary(records []catalog.RawSourceRecord) []catalog.RawSourceRecord {
	kept := make([]catalog.RawSourceRecord, 0, len(records))
	for _, r := range records {
		if _, ok := allowedOffers[strings.ToLower(strings.TrimSpace(r.OfferType))]; !ok {
			continue
		}
		if region := strings.TrimSpace(r.Region); region != "" && !strings.EqualFold(region, a.region) {
			continue
		}
		if strings.TrimSpace(r.URL) == "" {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// Normalize maps records onto the service taxonomy, repairs URLs against
// title, and keeps the first record per service. Unknown providers are
// dropped.
func Normalize(records []catalog.RawSourceRecord, title string) []StreamingSource {
	sources := make([]StreamingSource, 0, len(records))
	seen := make(map[taxonomy.ID]struct{}, len(records))
	for _, r := range records {
		id, ok := taxonomy.Normalize(r.ProviderName)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		svc, ok := taxonomy.Lookup(id)
		if !ok {
			continue
		}
		seen[id] = struct{}{}
		sources = append(sources, StreamingSource{
			ServiceID: id,
			Name:      svc.DisplayName,
			URL:       taxonomy.RepairURL(id, title, r.URL),
			Logo:      svc.LogoRef,
		})
	}
	return sources
}
