package tmdb

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"streamlist/internal/catalog"
	"streamlist/internal/logging"
	"streamlist/internal/services"
)

const (
	catalogName         = "tmdb"
	defaultImageBaseURL = "https://image.tmdb.org/t/p"
	defaultRegion       = "US"
	posterSize          = "w500"
)

type searchResult struct {
	ID          catalog.FlexID `json:"id"`
	Title       string         `json:"title"`
	Overview    string         `json:"overview"`
	ReleaseDate string         `json:"release_date"`
	GenreIDs    []int          `json:"genre_ids"`
	VoteAverage float64        `json:"vote_average"`
	PosterPath  *string        `json:"poster_path"`
}

type searchResponse struct {
	Page    int            `json:"page"`
	Results []searchResult `json:"results"`
}

type movieDetails struct {
	Runtime *int    `json:"runtime"`
	IMDbID  *string `json:"imdb_id"`
}

type genreList struct {
	Genres []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

type provider struct {
	ProviderName string `json:"provider_name"`
}

type regionProviders struct {
	Link     string     `json:"link"`
	Flatrate []provider `json:"flatrate"`
	Free     []provider `json:"free"`
	Ads      []provider `json:"ads"`
}

type watchProvidersResponse struct {
	Results map[string]regionProviders `json:"results"`
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey       string
	baseURL      string
	imageBaseURL string
	language     string
	region       string
	fetchOpts    catalog.FetcherOptions
	fetcher      *catalog.Fetcher
	logger       *slog.Logger

	genres     atomic.Pointer[map[int]string]
	genreGroup singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.fetchOpts.HTTPClient = client
		}
	}
}

// WithFetcherOptions sets rate limiting, retry, cache, and metrics behavior.
// The secret parameter and logger are always managed by the client.
func WithFetcherOptions(opts catalog.FetcherOptions) Option {
	return func(c *Client) {
		httpClient := c.fetchOpts.HTTPClient
		c.fetchOpts = opts
		if c.fetchOpts.HTTPClient == nil {
			c.fetchOpts.HTTPClient = httpClient
		}
	}
}

// WithImageBaseURL overrides the poster image host.
func WithImageBaseURL(base string) Option {
	return func(c *Client) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			c.imageBaseURL = base
		}
	}
}

// WithRegion sets the watch-provider region (ISO 3166-1 alpha-2).
func WithRegion(region string) Option {
	return func(c *Client) {
		if region = strings.ToUpper(strings.TrimSpace(region)); region != "" {
			c.region = region
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a TMDB client. A missing API key is a configuration error.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, catalogName, "new", "api key required (set TMDB_API_KEY)", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, catalogName, "new", "base url required", nil)
	}
	client := &Client{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		imageBaseURL: defaultImageBaseURL,
		language:     strings.TrimSpace(language),
		region:       defaultRegion,
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, catalogName)
	client.fetchOpts.SecretParam = "api_key"
	client.fetchOpts.Logger = client.logger
	client.fetcher = catalog.NewFetcher(catalogName, client.fetchOpts)
	return client, nil
}

// Region returns the watch-provider region.
func (c *Client) Region() string { return c.region }

// SearchTitle returns the first ranked movie for text, or nil when TMDB has
// no result. The upstream ranking is trusted as-is.
func (c *Client) SearchTitle(ctx context.Context, text string) (*catalog.CanonicalTitle, error) {
	query := strings.TrimSpace(text)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, catalogName, "search", "query must not be empty", nil)
	}
	endpoint, err := c.endpoint("/search/movie", url.Values{
		"query":         {query},
		"include_adult": {"false"},
		"page":          {"1"},
	})
	if err != nil {
		return nil, err
	}
	var payload searchResponse
	if err := c.fetcher.GetJSON(ctx, "search", endpoint, &payload); err != nil {
		return nil, err
	}
	for _, result := range payload.Results {
		if result.ID.Int64() <= 0 {
			continue
		}
		title := &catalog.CanonicalTitle{
			PrimaryID:          result.ID.Int64(),
			Title:              strings.TrimSpace(result.Title),
			OriginalQueryTitle: query,
			Year:               parseYear(result.ReleaseDate),
			Overview:           strings.TrimSpace(result.Overview),
			GenreIDs:           append([]int(nil), result.GenreIDs...),
			VoteAverage:        result.VoteAverage,
		}
		if title.Title == "" {
			title.Title = query
		}
		if result.PosterPath != nil {
			title.PosterPath = *result.PosterPath
		}
		return title, nil
	}
	return nil, nil
}

// FetchDetails returns runtime and IMDb id for a movie. Absent fields are
// zero values.
func (c *Client) FetchDetails(ctx context.Context, id int64) (catalog.Details, error) {
	if id <= 0 {
		return catalog.Details{}, services.Wrap(services.ErrValidation, catalogName, "details", "movie id must be positive", nil)
	}
	endpoint, err := c.endpoint(fmt.Sprintf("/movie/%d", id), nil)
	if err != nil {
		return catalog.Details{}, err
	}
	var payload movieDetails
	if err := c.fetcher.GetJSON(ctx, "details", endpoint, &payload); err != nil {
		return catalog.Details{}, err
	}
	var details catalog.Details
	if payload.Runtime != nil && *payload.Runtime > 0 {
		details.RuntimeMinutes = *payload.Runtime
	}
	if payload.IMDbID != nil {
		details.IMDbID = strings.TrimSpace(*payload.IMDbID)
	}
	return details, nil
}

// GenreMap returns the genre id to name map. The result is shared and must
// not be modified.
func (c *Client) GenreMap(ctx context.Context) (map[int]string, error) {
	if cached := c.genres.Load(); cached != nil {
		return *cached, nil
	}
	value, err, shared := c.genreGroup.Do("genres", func() (any, error) {
		if cached := c.genres.Load(); cached != nil {
			return *cached, nil
		}
		genres, err := c.fetchGenres(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.genres.Store(&genres)
		c.logger.Debug("genre map loaded", logging.Int("genres", len(genres)))
		return genres, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("genre map fetch shared with concurrent caller")
	}
	return value.(map[int]string), nil
}

func (c *Client) fetchGenres(ctx context.Context) (map[int]string, error) {
	endpoint, err := c.endpoint("/genre/movie/list", nil)
	if err != nil {
		return nil, err
	}
	var payload genreList
	if err := c.fetcher.GetJSON(ctx, "genres", endpoint, &payload); err != nil {
		return nil, err
	}
	genres := make(map[int]string, len(payload.Genres))
	for _, genre := range payload.Genres {
		if name := strings.TrimSpace(genre.Name); name != "" {
			genres[genre.ID] = name
		}
	}
	return genres, nil
}

// FetchAvailability returns the configured region's streaming providers for
// a movie: subscription, then free, then ad-supported, deduplicated by
// provider name. Every record carries the region's TMDB watch link.
func (c *Client) FetchAvailability(ctx context.Context, id int64) ([]catalog.RawSourceRecord, error) {
	if id <= 0 {
		return nil, services.Wrap(services.ErrValidation, catalogName, "providers", "movie id must be positive", nil)
	}
	endpoint, err := c.endpoint(fmt.Sprintf("/movie/%d/watch/providers", id), nil)
	if err != nil {
		return nil, err
	}
	var payload watchProvidersResponse
	if err := c.fetcher.GetJSON(ctx, "providers", endpoint, &payload); err != nil {
		return nil, err
	}
	region, ok := payload.Results[c.region]
	if !ok {
		return nil, nil
	}

	groups := []struct {
		offer     string
		providers []provider
	}{
		{catalog.OfferSubscription, region.Flatrate},
		{catalog.OfferFree, region.Free},
		{catalog.OfferAds, region.Ads},
	}
	seen := make(map[string]struct{})
	var records []catalog.RawSourceRecord
	for _, group := range groups {
		for _, p := range group.providers {
			name := strings.TrimSpace(p.ProviderName)
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			records = append(records, catalog.RawSourceRecord{
				ProviderName: name,
				Region:       c.region,
				OfferType:    group.offer,
				URL:          region.Link,
			})
		}
	}
	return records, nil
}

// PosterURL builds the poster image URL for a TMDB path fragment. An empty
// path yields an empty URL.
func (c *Client) PosterURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.imageBaseURL + "/" + posterSize + path
}

func (c *Client) endpoint(path string, params url.Values) (*url.URL, error) {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("parse tmdb url: %w", err)
	}
	query := url.Values{}
	for key, values := range params {
		query[key] = values
	}
	query.Set("api_key", c.apiKey)
	if c.language != "" {
		query.Set("language", c.language)
	}
	endpoint.RawQuery = query.Encode()
	return endpoint, nil
}

func parseYear(date string) int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return 0
	}
	return year
}
