package letterboxd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"streamlist/internal/catalog"
	"streamlist/internal/logging"
	"streamlist/internal/services"
)

const (
	DefaultMaxPages  = 4
	DefaultUserAgent = "StreamList/1.0"
	maxPageBytes     = 4 << 20
)

// Importer fetches list pages from Letterboxd.
type Importer struct {
	httpClient *http.Client
	maxPages   int
	userAgent  string
	logger     *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(i *Importer) {
		if client != nil {
			i.httpClient = client
		}
	}
}

// WithMaxPages bounds pagination.
func WithMaxPages(n int) Option {
	return func(i *Importer) {
		if n > 0 {
			i.maxPages = n
		}
	}
}

// WithUserAgent sets the User-Agent header sent to Letterboxd.
func WithUserAgent(ua string) Option {
	return func(i *Importer) {
		if ua = strings.TrimSpace(ua); ua != "" {
			i.userAgent = ua
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Importer) { i.logger = logger }
}

// NewImporter builds an Importer with a 15 second default timeout.
func NewImporter(opts ...Option) *Importer {
	i := &Importer{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		maxPages:   DefaultMaxPages,
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.logger = logging.NewComponentLogger(i.logger, "letterboxd")
	return i
}

// Import walks up to the configured number of pages starting at listURL and
// returns every distinct title in order of first appearance.
func (i *Importer) Import(ctx context.Context, listURL string) ([]string, error) {
	listURL = strings.TrimSpace(listURL)
	if listURL == "" {
		return nil, services.Wrap(services.ErrValidation, "letterboxd", "import", "Missing url query parameter", nil)
	}
	if !ValidURL(listURL) {
		return nil, services.Wrap(services.ErrValidation, "letterboxd", "import", "URL must be from letterboxd.com", nil)
	}

	titles := newOrderedSet()
	visited := make(map[string]struct{}, i.maxPages)
	next := listURL
	pages := 0
	for ; pages < i.maxPages && next != ""; pages++ {
		if _, seen := visited[next]; seen {
			break
		}
		visited[next] = struct{}{}

		doc, err := i.fetchPage(ctx, next)
		if err != nil {
			return nil, err
		}
		titles.merge(extractTitles(doc))
		next = nextPageURL(doc, next)
		if next != "" && !ValidURL(next) {
			next = ""
		}
	}
	i.logger.Info("letterboxd list imported",
		logging.String("url", listURL),
		logging.Int("pages", pages),
		logging.Int("titles", len(titles.items)),
	)
	if titles.items == nil {
		return []string{}, nil
	}
	return titles.items, nil
}

func (i *Importer) fetchPage(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", i.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, &catalog.UpstreamError{Catalog: "letterboxd", Op: "page", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &catalog.UpstreamError{
			Catalog:    "letterboxd",
			Op:         "page",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to fetch Letterboxd page: %d", resp.StatusCode),
		}
	}
	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, &catalog.UpstreamError{Catalog: "letterboxd", Op: "page", Err: fmt.Errorf("parse html: %w", err)}
	}
	return doc, nil
}
