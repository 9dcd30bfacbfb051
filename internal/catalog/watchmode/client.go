package watchmode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"streamlist/internal/catalog"
	"streamlist/internal/logging"
	"streamlist/internal/services"
)

const (
	catalogName   = "watchmode"
	defaultRegion = "US"

	// Movie-only autocomplete results.
	searchTypeMovies = "2"
)

// SearchField selects the column a field search matches on.
type SearchField string

const (
	FieldTMDBMovieID SearchField = "tmdb_movie_id"
	FieldIMDbID      SearchField = "imdb_id"
	FieldName        SearchField = "name"
)

// Title is one search candidate. IDs that the upstream omits are zero.
type Title struct {
	ID     int64
	Name   string
	Type   string
	Year   int
	TMDBID int64
	IMDbID string
}

// IsMovie reports whether the candidate's content type is a movie.
func (t Title) IsMovie() bool {
	return strings.EqualFold(strings.TrimSpace(t.Type), "movie")
}

type titleResult struct {
	ID     catalog.FlexID `json:"id"`
	Name   string         `json:"name"`
	Type   string         `json:"type"`
	Year   catalog.FlexID `json:"year"`
	TMDBID catalog.FlexID `json:"tmdb_id"`
	IMDbID string         `json:"imdb_id"`
}

type searchResponse struct {
	TitleResults []titleResult `json:"title_results"`
	Results      []titleResult `json:"results"`
}

type source struct {
	SourceID catalog.FlexID `json:"source_id"`
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Region   string         `json:"region"`
	WebURL   string         `json:"web_url"`
}

// Client provides access to the Watchmode API.
type Client struct {
	apiKey    string
	baseURL   string
	region    string
	fetchOpts catalog.FetcherOptions
	fetcher   *catalog.Fetcher
	logger    *slog.Logger
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
func WithFetcherOptions(opts catalog.FetcherOptions) Option {
	return func(c *Client) {
		httpClient := c.fetchOpts.HTTPClient
		c.fetchOpts = opts
		if c.fetchOpts.HTTPClient == nil {
			c.fetchOpts.HTTPClient = httpClient
		}
	}
}

// WithRegion sets the source-list region.
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

// New creates a Watchmode client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, catalogName, "new", "api key required (set WATCHMODE_API_KEY)", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, catalogName, "new", "base url required", nil)
	}
	client := &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		region:  defaultRegion,
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, catalogName)
	client.fetchOpts.SecretParam = "apiKey"
	client.fetchOpts.Logger = client.logger
	client.fetcher = catalog.NewFetcher(catalogName, client.fetchOpts)
	return client, nil
}

// Region returns the configured source region.
func (c *Client) Region() string { return c.region }

// FieldSearch runs an exact search on one field and returns candidates in
// upstream order.
func (c *Client) FieldSearch(ctx context.Context, field SearchField, value string) ([]Title, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, services.Wrap(services.ErrValidation, catalogName, "search", "search value must not be empty", nil)
	}
	endpoint, err := c.endpoint("/search/", url.Values{
		"search_field": {string(field)},
		"search_value": {value},
	})
	if err != nil {
		return nil, err
	}
	var payload searchResponse
	if err := c.fetcher.GetJSON(ctx, "search_"+string(field), endpoint, &payload); err != nil {
		return nil, err
	}
	return convertTitles(payload.TitleResults), nil
}

// Autocomplete runs the lighter autocomplete search restricted to movies.
func (c *Client) Autocomplete(ctx context.Context, value string) ([]Title, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, services.Wrap(services.ErrValidation, catalogName, "autocomplete", "search value must not be empty", nil)
	}
	endpoint, err := c.endpoint("/autocomplete-search/", url.Values{
		"search_value": {value},
		"search_type":  {searchTypeMovies},
	})
	if err != nil {
		return nil, err
	}
	var payload searchResponse
	if err := c.fetcher.GetJSON(ctx, "autocomplete", endpoint, &payload); err != nil {
		return nil, err
	}
	results := payload.Results
	if len(results) == 0 {
		results = payload.TitleResults
	}
	return convertTitles(results), nil
}

// Sources returns the raw source list for a Watchmode title id, scoped to
// the configured region. Records are returned unfiltered.
func (c *Client) Sources(ctx context.Context, titleID int64) ([]catalog.RawSourceRecord, error) {
	if titleID <= 0 {
		return nil, services.Wrap(services.ErrValidation, catalogName, "sources", "title id must be positive", nil)
	}
	endpoint, err := c.endpoint(fmt.Sprintf("/title/%d/sources/", titleID), url.Values{
		"regions": {c.region},
	})
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := c.fetcher.GetJSON(ctx, "sources", endpoint, &raw); err != nil {
		return nil, err
	}
	items, err := decodeSources(raw)
	if err != nil {
		return nil, &catalog.UpstreamError{Catalog: catalogName, Op: "sources", Err: err}
	}
	records := make([]catalog.RawSourceRecord, 0, len(items))
	for _, item := range items {
		records = append(records, catalog.RawSourceRecord{
			ProviderName: strings.TrimSpace(item.Name),
			Region:       strings.ToUpper(strings.TrimSpace(item.Region)),
			OfferType:    strings.ToLower(strings.TrimSpace(item.Type)),
			URL:          strings.TrimSpace(item.WebURL),
		})
	}
	return records, nil
}

// The sources endpoint answers with a bare array; older responses wrap it
// in {"sources": [...]}.
func decodeSources(raw json.RawMessage) ([]source, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var items []source
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode sources: %w", err)
		}
		return items, nil
	}
	var wrapped struct {
		Sources []source `json:"sources"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("decode sources: %w", err)
	}
	return wrapped.Sources, nil
}

func convertTitles(results []titleResult) []Title {
	titles := make([]Title, 0, len(results))
	for _, r := range results {
		if r.ID.Int64() <= 0 {
			continue
		}
		titles = append(titles, Title{
			ID:     r.ID.Int64(),
			Name:   strings.TrimSpace(r.Name),
			Type:   strings.TrimSpace(r.Type),
			Year:   int(r.Year.Int64()),
			TMDBID: r.TMDBID.Int64(),
			IMDbID: strings.TrimSpace(r.IMDbID),
		})
	}
	return titles
}

func (c *Client) endpoint(path string, params url.Values) (*url.URL, error) {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("parse watchmode url: %w", err)
	}
	query := url.Values{}
	for key, values := range params {
		query[key] = values
	}
	query.Set("apiKey", c.apiKey)
	endpoint.RawQuery = query.Encode()
	return endpoint, nil
}
