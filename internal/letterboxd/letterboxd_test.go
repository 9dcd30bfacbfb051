package letterboxd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"streamlist/internal/services"
)

const pageOne = `<html><body>
<ul class="poster-list">
  <li><div class="film-poster" data-film-slug="/film/the-godfather/"><img alt="The Godfather" src="x.jpg"></div></li>
  <li><div class="film-poster" data-film-slug="parasite-2019"><img alt="Parasite" src="y.jpg"></div></li>
  <li><div class="film-poster" data-film-slug="the-godfather"><img alt="The Godfather" src="x.jpg"></div></li>
</ul>
<div class="pagination"><a class="next" href="/user/list/page/2/">Older</a></div>
</body></html>`

func TestValidURL(t *testing.T) {
	cases := map[string]bool{
		"https://letterboxd.com/user/watchlist/": true,
		"http://letterboxd.com/user/list/x/":     true,
		"https://www.letterboxd.com/user/":       true,
		"https://letterboxd.com.evil.example/":   false,
		"https://notletterboxd.com/user/":        false,
		"ftp://letterboxd.com/user/":             false,
		"letterboxd.com/user/watchlist/":         false,
		"":                                       false,
	}
	for raw, want := range cases {
		if got := ValidURL(raw); got != want {
			t.Errorf("ValidURL(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestExtractTitles(t *testing.T) {
	got := ExtractTitles(pageOne)
	want := []string{"The Godfather", "Parasite 2019", "Parasite"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractTitles = %#v, want %#v", got, want)
	}
}

func TestExtractTitlesEmptyPage(t *testing.T) {
	if got := ExtractTitles("<html><body><p>nothing</p></body></html>"); len(got) != 0 {
		t.Fatalf("expected no titles, got %#v", got)
	}
}

func TestNextPageURL(t *testing.T) {
	got := NextPageURL(pageOne, "https://letterboxd.com/user/list/")
	if got != "https://letterboxd.com/user/list/page/2/" {
		t.Fatalf("NextPageURL = %q", got)
	}
	if got := NextPageURL("<html></html>", "https://letterboxd.com/user/list/"); got != "" {
		t.Fatalf("expected empty next url, got %q", got)
	}
}

// rewriteTransport sends every request to the test server while keeping the
// letterboxd.com URLs the importer validates.
type rewriteTransport struct {
	target string
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.URL.Scheme = "http"
	clone.URL.Host = strings.TrimPrefix(rt.target, "http://")
	return http.DefaultTransport.RoundTrip(clone)
}

func newTestImporter(t *testing.T, handler http.Handler, opts ...Option) *Importer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := &http.Client{Transport: rewriteTransport{target: srv.URL}}
	return NewImporter(append([]Option{WithHTTPClient(client)}, opts...)...)
}

func TestImportFollowsPaginationUpToLimit(t *testing.T) {
	var hits atomic.Int32
	var userAgent atomic.Value
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		userAgent.Store(r.Header.Get("User-Agent"))
		fmt.Fprintf(w, `<div class="film-poster" data-film-slug="film-%d"><img alt="Film %d"></div>
<a class="next" href="/user/list/page/%d/">next</a>`, n, n, n+1)
	})
	imp := newTestImporter(t, handler)

	titles, err := imp.Import(context.Background(), "https://letterboxd.com/user/list/")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if hits.Load() != DefaultMaxPages {
		t.Fatalf("expected %d page fetches, got %d", DefaultMaxPages, hits.Load())
	}
	if len(titles) != DefaultMaxPages {
		t.Fatalf("expected %d distinct titles, got %#v", DefaultMaxPages, titles)
	}
	if titles[0] != "Film 1" || titles[3] != "Film 4" {
		t.Fatalf("unexpected order: %#v", titles)
	}
	if ua, _ := userAgent.Load().(string); ua != DefaultUserAgent {
		t.Fatalf("expected user agent %q, got %q", DefaultUserAgent, ua)
	}
}

func TestImportStopsWithoutNextLink(t *testing.T) {
	var hits atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `<div class="film-poster" data-film-slug="heat"><img alt="Heat"></div>`)
	})
	imp := newTestImporter(t, handler)

	titles, err := imp.Import(context.Background(), "https://letterboxd.com/user/watchlist/")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected single fetch, got %d", hits.Load())
	}
	if !reflect.DeepEqual(titles, []string{"Heat"}) {
		t.Fatalf("unexpected titles %#v", titles)
	}
}

func TestImportRejectsForeignURL(t *testing.T) {
	imp := NewImporter()
	_, err := imp.Import(context.Background(), "https://example.com/list/")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = imp.Import(context.Background(), "  ")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for blank url, got %v", err)
	}
}

func TestImportReportsUpstreamStatus(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	imp := newTestImporter(t, handler)

	_, err := imp.Import(context.Background(), "https://letterboxd.com/nobody/list/")
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestImportWithMaxPagesOption(t *testing.T) {
	var hits atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := hits.Add(1)
		fmt.Fprintf(w, `<a class="next" href="/p/%d/">next</a>`, n+1)
	})
	imp := newTestImporter(t, handler, WithMaxPages(2))

	titles, err := imp.Import(context.Background(), "https://letterboxd.com/user/list/")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected 2 fetches, got %d", hits.Load())
	}
	if titles == nil || len(titles) != 0 {
		t.Fatalf("expected empty non-nil titles, got %#v", titles)
	}
}
