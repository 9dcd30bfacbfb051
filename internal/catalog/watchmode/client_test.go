package watchmode_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"streamlist/internal/catalog"
	"streamlist/internal/catalog/watchmode"
	"streamlist/internal/services"
)

func newClient(t *testing.T, handler http.HandlerFunc) *watchmode.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := watchmode.New("wm", server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := watchmode.New("", "https://api.watchmode.com/v1"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestFieldSearchSendsFieldAndDecodesIDs(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/search/" || q.Get("apiKey") != "wm" || q.Get("search_field") != "tmdb_movie_id" || q.Get("search_value") != "496243" {
			t.Errorf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"title_results":[
			{"id":1295258,"name":"Parasite","type":"movie","year":2019,"tmdb_id":"496243","imdb_id":"tt6751668"},
			{"id":"bogus"}
		]}`))
	})
	titles, err := client.FieldSearch(context.Background(), watchmode.FieldTMDBMovieID, "496243")
	if err != nil {
		t.Fatalf("FieldSearch returned error: %v", err)
	}
	if len(titles) != 1 {
		t.Fatalf("expected one usable title, got %+v", titles)
	}
	got := titles[0]
	if got.ID != 1295258 || got.TMDBID != 496243 || got.IMDbID != "tt6751668" || got.Year != 2019 || !got.IsMovie() {
		t.Fatalf("unexpected title: %+v", got)
	}
}

func TestAutocompleteAcceptsBothResultKeys(t *testing.T) {
	calls := 0
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("search_type") != "2" {
			t.Errorf("expected movie search type, got %q", r.URL.RawQuery)
		}
		if calls == 1 {
			_, _ = w.Write([]byte(`{"results":[{"id":10,"name":"Heat","type":"movie","year":1995}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"title_results":[{"id":11,"name":"Heat","type":"tv_series","year":2020}]}`))
	})
	first, err := client.Autocomplete(context.Background(), "Heat")
	if err != nil || len(first) != 1 || first[0].ID != 10 {
		t.Fatalf("unexpected first result %+v err=%v", first, err)
	}
	second, err := client.Autocomplete(context.Background(), "Heat 2020")
	if err != nil || len(second) != 1 || second[0].ID != 11 || second[0].IsMovie() {
		t.Fatalf("unexpected second result %+v err=%v", second, err)
	}
}

func TestSourcesDecodesArrayAndWrappedShapes(t *testing.T) {
	calls := 0
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/title/42/sources/" || r.URL.Query().Get("regions") != "US" {
			t.Errorf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		if calls == 1 {
			_, _ = w.Write([]byte(`[{"source_id":203,"name":"Netflix","type":"sub","region":"us","web_url":"https://www.netflix.com/title/1"}]`))
			return
		}
		_, _ = w.Write([]byte(`{"title_id":"42","sources":[{"name":"Hulu","type":"SUB","region":"US","web_url":"https://www.hulu.com/x"}]}`))
	})
	records, err := client.Sources(context.Background(), 42)
	if err != nil {
		t.Fatalf("Sources returned error: %v", err)
	}
	want := catalog.RawSourceRecord{ProviderName: "Netflix", Region: "US", OfferType: "sub", URL: "https://www.netflix.com/title/1"}
	if len(records) != 1 || records[0] != want {
		t.Fatalf("unexpected records %+v", records)
	}
	records, err = client.Sources(context.Background(), 42)
	if err != nil || len(records) != 1 || records[0].ProviderName != "Hulu" || records[0].OfferType != "sub" {
		t.Fatalf("unexpected wrapped records %+v err=%v", records, err)
	}
}

func TestSourcesUpstreamFailure(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	if _, err := client.Sources(context.Background(), 42); !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
