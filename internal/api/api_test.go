package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"streamlist/internal/metrics"
	"streamlist/internal/pipeline"
	"streamlist/internal/services"
	"streamlist/internal/taxonomy"
)

type runnerStub struct {
	mu     sync.Mutex
	titles []string
	err    error
}

func (s *runnerStub) RunBatch(_ context.Context, titles []string) ([]pipeline.Movie, error) {
	s.mu.Lock()
	s.titles = append([]string(nil), titles...)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	movies := make([]pipeline.Movie, 0, len(titles))
	for _, title := range titles {
		movies = append(movies, pipeline.Movie{ID: pipeline.Slugify(title), Title: title})
	}
	return movies, nil
}

type importerStub struct {
	titles []string
	err    error
	got    string
}

func (s *importerStub) Import(_ context.Context, listURL string) ([]string, error) {
	s.got = listURL
	return s.titles, s.err
}

func newTestRouter(t *testing.T, opts Options) http.Handler {
	t.Helper()
	if opts.Runner == nil {
		opts.Runner = &runnerStub{}
	}
	if opts.Importer == nil {
		opts.Importer = &importerStub{}
	}
	router, _ := NewRouter(opts)
	return router
}

func do(t *testing.T, h http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return resp.Error
}

func TestFetchMoviesTrimsAndRuns(t *testing.T) {
	runner := &runnerStub{}
	h := newTestRouter(t, Options{Runner: runner})

	rec := do(t, h, http.MethodPost, "/api/fetch-movies", `{"titles":["  Heat ", "", 42, "Alien"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !reflect.DeepEqual(runner.titles, []string{"Heat", "Alien"}) {
		t.Fatalf("runner received %#v", runner.titles)
	}
	var movies []pipeline.Movie
	if err := json.Unmarshal(rec.Body.Bytes(), &movies); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(movies) != 2 || movies[0].Title != "Heat" {
		t.Fatalf("unexpected movies %#v", movies)
	}
}

func TestFetchMoviesRejectsEmptyTitles(t *testing.T) {
	h := newTestRouter(t, Options{})
	for _, body := range []string{`{"titles":[]}`, `{"titles":["  "]}`, `{}`, `{"titles":"Heat"}`} {
		rec := do(t, h, http.MethodPost, "/api/fetch-movies", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rec.Code)
		}
		if msg := decodeError(t, rec); msg != "No titles provided" {
			t.Fatalf("body %s: unexpected error %q", body, msg)
		}
	}
}

func TestFetchMoviesRejectsMalformedBody(t *testing.T) {
	h := newTestRouter(t, Options{})
	rec := do(t, h, http.MethodPost, "/api/fetch-movies", `{"titles":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestFetchMoviesBatchErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"upstream", fmt.Errorf("load genre map: %w", services.ErrUpstream), http.StatusInternalServerError},
		{"validation", services.Wrap(services.ErrValidation, "pipeline", "run batch", "too many", nil), http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestRouter(t, Options{Runner: &runnerStub{err: tc.err}})
			rec := do(t, h, http.MethodPost, "/api/fetch-movies", `{"titles":["Heat"]}`)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
			if msg := decodeError(t, rec); msg != tc.err.Error() {
				t.Fatalf("expected error message %q, got %q", tc.err.Error(), msg)
			}
		})
	}
}

func TestScrapeLetterboxdValidation(t *testing.T) {
	h := newTestRouter(t, Options{})
	cases := map[string]string{
		"/api/scrape-letterboxd":                                   "Missing url query parameter",
		"/api/scrape-letterboxd?url=%20%20":                        "Missing url query parameter",
		"/api/scrape-letterboxd?url=https://example.com/watchlist": "URL must be from letterboxd.com",
	}
	for target, want := range cases {
		rec := do(t, h, http.MethodGet, target, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
		if msg := decodeError(t, rec); msg != want {
			t.Fatalf("%s: expected %q, got %q", target, want, msg)
		}
	}
}

func TestScrapeLetterboxd(t *testing.T) {
	importer := &importerStub{titles: []string{"Heat", "Alien"}}
	h := newTestRouter(t, Options{Importer: importer})

	rec := do(t, h, http.MethodGet, "/api/scrape-letterboxd?url=https://letterboxd.com/me/watchlist/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if importer.got != "https://letterboxd.com/me/watchlist/" {
		t.Fatalf("importer got %q", importer.got)
	}
	var resp TitlesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(resp.Titles, []string{"Heat", "Alien"}) {
		t.Fatalf("unexpected titles %#v", resp.Titles)
	}
}

func TestScrapeLetterboxdFailure(t *testing.T) {
	importer := &importerStub{err: errors.New("letterboxd page returned 503")}
	h := newTestRouter(t, Options{Importer: importer})

	rec := do(t, h, http.MethodGet, "/api/scrape-letterboxd?url=https://letterboxd.com/me/watchlist/", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "letterboxd page returned 503" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestServicesListsTaxonomy(t *testing.T) {
	h := newTestRouter(t, Options{})
	rec := do(t, h, http.MethodGet, "/api/services", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []taxonomy.Service
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, taxonomy.All()) {
		t.Fatalf("services mismatch: %#v", got)
	}
}

func TestShareRoundTrip(t *testing.T) {
	h := newTestRouter(t, Options{})
	rec := do(t, h, http.MethodPost, "/api/share", `{"titles":["Heat"],"services":["netflix"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var created ShareResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil || created.State == "" {
		t.Fatalf("decode share response %q: %v", rec.Body.String(), err)
	}

	rec = do(t, h, http.MethodGet, "/api/share/"+created.State, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var state ShareRequest
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(state, ShareRequest{Titles: []string{"Heat"}, Services: []string{"netflix"}}) {
		t.Fatalf("unexpected state %#v", state)
	}

	rec = do(t, h, http.MethodGet, "/api/share/%21%21%21", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad token, got %d", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	h := newTestRouter(t, Options{})

	rec := do(t, h, http.MethodGet, "/healthz", "")
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected generated request id")
	}
	rec = do(t, h, http.MethodGet, "/healthz", "", requestIDHeader, "abc-123")
	if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("expected propagated request id, got %q", got)
	}
}

func TestBearerTokenGuardsAPIOnly(t *testing.T) {
	h := newTestRouter(t, Options{APIToken: "secret"})

	if rec := do(t, h, http.MethodGet, "/api/services", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/services", "", "Authorization", "Bearer wrong"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/services", "", "Authorization", "Bearer secret"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected open healthz, got %d", rec.Code)
	}
}

func TestRateLimitPerClient(t *testing.T) {
	h := newTestRouter(t, Options{RateLimitPerMinute: 1, RateLimitBurst: 2})

	for i := range 2 {
		if rec := do(t, h, http.MethodGet, "/api/services", "", "X-Forwarded-For", "10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}
	rec := do(t, h, http.MethodGet, "/api/services", "", "X-Forwarded-For", "10.0.0.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
	if rec := do(t, h, http.MethodGet, "/api/services", "", "X-Forwarded-For", "10.0.0.2"); rec.Code != http.StatusOK {
		t.Fatalf("other client should not be limited, got %d", rec.Code)
	}
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	recorder := metrics.New(false)
	h := newTestRouter(t, Options{Metrics: recorder, ExposeMetrics: true})

	do(t, h, http.MethodGet, "/api/services", "")
	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	want := `streamlist_http_requests_total{code="200",route="/api/services"} 1`
	if !strings.Contains(rec.Body.String(), want) {
		t.Fatalf("expected %q in exposition:\n%s", want, rec.Body.String())
	}
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	h := newTestRouter(t, Options{})
	rec := do(t, h, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "not found" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestRateLimiterSweepEvictsIdleClients(t *testing.T) {
	rl := newIPRateLimiter(60, 1)
	now := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return now }

	rl.allow("10.0.0.1")
	now = now.Add(5 * time.Minute)
	rl.allow("10.0.0.2")
	now = now.Add(6 * time.Minute)

	if evicted := rl.sweep(); evicted != 1 {
		t.Fatalf("expected 1 eviction, got %d", evicted)
	}
	if _, ok := rl.limiters["10.0.0.2"]; !ok {
		t.Fatal("recent client should survive sweep")
	}
}

func TestNewIPRateLimiterDisabled(t *testing.T) {
	if rl := newIPRateLimiter(0, 5); rl != nil {
		t.Fatal("expected nil limiter when rate is zero")
	}
}

func TestServerStartStop(t *testing.T) {
	srv := NewServer("127.0.0.1:0", Options{Runner: &runnerStub{}, Importer: &importerStub{}})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("GET healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	srv.Stop()
}
