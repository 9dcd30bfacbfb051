package daemonrun

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"streamlist/internal/config"
	"streamlist/internal/logging"
	"streamlist/internal/metrics"
	"streamlist/internal/services"
	"streamlist/internal/testsupport"
)

func testConfig(t *testing.T, opts ...testsupport.ConfigOption) *config.Config {
	return testsupport.NewConfig(t, opts...)
}

func TestBuildWithoutWatchmode(t *testing.T) {
	stack, err := Build(testConfig(t), logging.NewNop(), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if stack.Watchmode != nil {
		t.Fatal("expected watchmode to be disabled without a key")
	}
	if stack.TMDB == nil || stack.Runner == nil || stack.Importer == nil {
		t.Fatalf("incomplete stack: %+v", stack)
	}
	match, err := stack.Resolver.Resolve(context.Background(), nil)
	if err != nil || match != nil {
		t.Fatalf("expected no match from disabled resolver, got %v, %v", match, err)
	}
}

func TestBuildWithWatchmode(t *testing.T) {
	cfg := testConfig(t)
	cfg.Watchmode.APIKey = "wm-key"
	stack, err := Build(cfg, nil, metrics.New(false))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if stack.Watchmode == nil {
		t.Fatal("expected watchmode client")
	}
	if stack.Watchmode.Region() != "US" {
		t.Fatalf("unexpected region %q", stack.Watchmode.Region())
	}
}

func TestBuildRequiresTMDBKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.TMDB.APIKey = ""
	if _, err := Build(cfg, nil, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	tmdbServer := testsupport.NewTMDBServer(t)
	cfg := testConfig(t, testsupport.WithTMDBServer(tmdbServer.URL))
	go func() { done <- Run(ctx, cfg, Options{Bind: "127.0.0.1:0"}) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestStackPreflight(t *testing.T) {
	tmdbServer := testsupport.NewTMDBServer(t)
	watchmodeServer := testsupport.NewWatchmodeServer(t)

	stack, err := Build(testConfig(t, testsupport.WithTMDBServer(tmdbServer.URL)), logging.NewNop(), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	results := stack.Preflight(context.Background(), testConfig(t))
	if len(results) != 2 || !results[0].Passed || !results[1].Passed {
		t.Fatalf("expected passing tmdb and disabled watchmode, got %+v", results)
	}
	if !strings.Contains(results[1].Detail, "disabled") {
		t.Fatalf("expected disabled watchmode detail, got %q", results[1].Detail)
	}

	cfg := testConfig(t,
		testsupport.WithTMDBServer(tmdbServer.URL),
		testsupport.WithWatchmodeServer(watchmodeServer.URL),
	)
	stack, err = Build(cfg, logging.NewNop(), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, r := range stack.Preflight(context.Background(), cfg) {
		if !r.Passed {
			t.Fatalf("expected %s to pass, got %q", r.Name, r.Detail)
		}
	}
}

func TestBuildEndToEndPrefersWatchmodeSources(t *testing.T) {
	movie := testsupport.Movie{
		TMDBID:        949,
		WatchmodeID:   1323,
		Title:         "Heat",
		Year:          1995,
		Runtime:       170,
		IMDbID:        "tt0113277",
		GenreIDs:      []int{80},
		Rating:        7.9,
		TMDBProviders: []string{"Hulu"},
		WatchmodeSources: []testsupport.Source{
			{Name: "Netflix", Type: "sub", Region: "US", WebURL: "https://www.netflix.com/title/113277"},
			{Name: "Apple TV", Type: "buy", Region: "US", WebURL: "https://tv.apple.com/movie/heat"},
			{Name: "Netflix", Type: "sub", Region: "GB", WebURL: "https://www.netflix.com/title/1"},
		},
	}
	tmdbServer := testsupport.NewTMDBServer(t, movie)
	watchmodeServer := testsupport.NewWatchmodeServer(t, movie)
	cfg := testConfig(t,
		testsupport.WithTMDBServer(tmdbServer.URL),
		testsupport.WithWatchmodeServer(watchmodeServer.URL),
	)

	recorder := metrics.New(false)
	stack, err := Build(cfg, logging.NewNop(), recorder)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	movies, err := stack.Runner.RunBatch(context.Background(), []string{"Heat", "Unknown Film"})
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("expected 2 movies, got %d", len(movies))
	}
	heat := movies[0]
	if heat.ID != "949" || heat.Year != 1995 || heat.Runtime != 170 {
		t.Fatalf("unexpected movie %+v", heat)
	}
	if len(heat.Sources) != 1 || heat.Sources[0].Name != "Netflix" {
		t.Fatalf("expected single netflix source, got %+v", heat.Sources)
	}
	if heat.Sources[0].URL != "https://www.netflix.com/title/113277" {
		t.Fatalf("expected direct netflix url, got %q", heat.Sources[0].URL)
	}
	if !movies[1].NotFound {
		t.Fatalf("expected second title to be not found, got %+v", movies[1])
	}
	rec := httptest.NewRecorder()
	recorder.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if want := `streamlist_resolver_outcomes_total{strategy="tmdb_id"} 1`; !strings.Contains(rec.Body.String(), want) {
		t.Fatalf("expected %q in exposition", want)
	}
}
