package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"streamlist/internal/logging"
	"streamlist/internal/metrics"
)

const maxResponseBytes = 8 << 20

// FetcherOptions tune a Fetcher. Zero values disable the corresponding
// behavior: no rate limit, no retries, no cache.
type FetcherOptions struct {
	HTTPClient        *http.Client
	Timeout           time.Duration
	RequestsPerSecond float64
	RetryAttempts     int
	RetryDelay        time.Duration
	CacheSize         int
	CacheTTL          time.Duration
	// SecretParam names the query parameter carrying the API key so it can be
	// redacted from errors and logs.
	SecretParam string
	Metrics     *metrics.Recorder
	Logger      *slog.Logger
}

// Fetcher performs JSON GET requests against one catalog.
type Fetcher struct {
	catalog     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	attempts    uint
	delay       time.Duration
	cache       *expirable.LRU[string, []byte]
	secretParam string
	metrics     *metrics.Recorder
	logger      *slog.Logger
}

// NewFetcher builds a Fetcher for the named catalog.
func NewFetcher(catalog string, opts FetcherOptions) *Fetcher {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	f := &Fetcher{
		catalog:     catalog,
		httpClient:  client,
		attempts:    1,
		delay:       opts.RetryDelay,
		secretParam: opts.SecretParam,
		metrics:     opts.Metrics,
		logger:      logging.NewComponentLogger(opts.Logger, catalog),
	}
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	if opts.RetryAttempts > 0 {
		f.attempts = uint(opts.RetryAttempts) + 1
	}
	if opts.CacheSize > 0 && opts.CacheTTL > 0 {
		f.cache = expirable.NewLRU[string, []byte](opts.CacheSize, nil, opts.CacheTTL)
	}
	return f
}

// Catalog returns the catalog name used in errors and metrics.
func (f *Fetcher) Catalog() string { return f.catalog }

// GetJSON fetches endpoint and decodes the body into out. op names the
// operation for errors and metrics. Successful bodies are cached by URL.
func (f *Fetcher) GetJSON(ctx context.Context, op string, endpoint *url.URL, out any) error {
	key := endpoint.String()
	if f.cache != nil {
		if body, ok := f.cache.Get(key); ok {
			f.metrics.ObserveCache(f.catalog, true)
			return f.decode(op, body, out)
		}
		f.metrics.ObserveCache(f.catalog, false)
	}

	var body []byte
	err := retry.Do(
		func() error {
			var attemptErr error
			body, attemptErr = f.fetchOnce(ctx, op, key)
			return attemptErr
		},
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(f.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var ue *UpstreamError
			return errors.As(err, &ue) && ue.Retryable()
		}),
		retry.OnRetry(func(n uint, err error) {
			f.logger.Debug("retrying upstream request",
				logging.String("op", op),
				logging.Int("attempt", int(n)+1),
				logging.Error(err),
			)
		}),
	)
	if err != nil {
		var ue *UpstreamError
		if errors.As(err, &ue) {
			return err
		}
		return &UpstreamError{Catalog: f.catalog, Op: op, Err: err}
	}
	if err := f.decode(op, body, out); err != nil {
		return err
	}
	if f.cache != nil {
		f.cache.Add(key, body)
	}
	return nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, op, rawURL string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, &UpstreamError{Catalog: f.catalog, Op: op, Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &UpstreamError{Catalog: f.catalog, Op: op, Err: fmt.Errorf("build request: %w", f.redactErr(err))}
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := f.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		f.metrics.ObserveUpstream(f.catalog, op, "error", latency)
		return nil, &UpstreamError{
			Catalog:   f.catalog,
			Op:        op,
			Err:       fmt.Errorf("execute request (latency=%v): %w", latency, f.redactErr(err)),
			retryable: ctx.Err() == nil,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		f.metrics.ObserveUpstream(f.catalog, op, "status_"+statusClass(resp.StatusCode), latency)
		return nil, &UpstreamError{
			Catalog:    f.catalog,
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("latency=%v", latency),
			retryable:  statusRetryable(resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		f.metrics.ObserveUpstream(f.catalog, op, "error", latency)
		return nil, &UpstreamError{Catalog: f.catalog, Op: op, Err: fmt.Errorf("read body: %w", err), retryable: true}
	}
	f.metrics.ObserveUpstream(f.catalog, op, "ok", latency)
	f.logger.Debug("upstream request complete",
		logging.String("op", op),
		logging.Int("status", resp.StatusCode),
		logging.Duration("latency", latency),
	)
	return body, nil
}

func (f *Fetcher) decode(op string, body []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &UpstreamError{Catalog: f.catalog, Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (f *Fetcher) redactErr(err error) error {
	var urlErr *url.Error
	if f.secretParam == "" || !errors.As(err, &urlErr) {
		return err
	}
	redacted := *urlErr
	redacted.URL = RedactURL(urlErr.URL, f.secretParam)
	return &redacted
}

// RedactURL masks the value of param in rawURL.
func RedactURL(rawURL, param string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || param == "" {
		return rawURL
	}
	query := parsed.Query()
	if query.Get(param) == "" {
		return rawURL
	}
	query.Set(param, "REDACTED")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func statusClass(code int) string {
	switch {
	case code == 429:
		return "429"
	case code >= 500:
		return "5xx"
	case code == 404:
		return "404"
	default:
		return fmt.Sprintf("%dxx", code/100)
	}
}
