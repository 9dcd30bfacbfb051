package testsupport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

// Genres served by the fake TMDB genre endpoint.
var Genres = map[int]string{18: "Drama", 28: "Action", 35: "Comedy", 53: "Thriller", 80: "Crime"}

// Movie is a fixture shared by the fake catalogs. WatchmodeID zero keeps
// the title out of the fake Watchmode index.
type Movie struct {
	TMDBID      int64
	WatchmodeID int64
	Title       string
	Year        int
	Runtime     int
	IMDbID      string
	GenreIDs    []int
	Rating      float64
	Overview    string
	PosterPath  string
	// TMDBProviders are flatrate provider names on the TMDB watch endpoint.
	TMDBProviders []string
	// WatchmodeSources are served by the fake Watchmode sources endpoint.
	WatchmodeSources []Source
}

// Source is one Watchmode source record.
type Source struct {
	Name   string
	Type   string
	Region string
	WebURL string
}

// NewTMDBServer serves search, details, genres, and watch providers for the
// given movies. Search matches titles case-insensitively.
func NewTMDBServer(t testing.TB, movies ...Movie) *httptest.Server {
	t.Helper()

	byID := make(map[int64]Movie, len(movies))
	for _, m := range movies {
		byID[m.TMDBID] = m
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /genre/movie/list", func(w http.ResponseWriter, _ *http.Request) {
		genres := make([]map[string]any, 0, len(Genres))
		for id, name := range Genres {
			genres = append(genres, map[string]any{"id": id, "name": name})
		}
		writeJSON(w, map[string]any{"genres": genres})
	})
	mux.HandleFunc("GET /search/movie", func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("query"))
		results := []map[string]any{}
		for _, m := range movies {
			if strings.EqualFold(m.Title, query) {
				results = append(results, map[string]any{
					"id":           m.TMDBID,
					"title":        m.Title,
					"overview":     m.Overview,
					"release_date": fmt.Sprintf("%04d-06-01", m.Year),
					"genre_ids":    m.GenreIDs,
					"vote_average": m.Rating,
					"poster_path":  m.PosterPath,
				})
			}
		}
		writeJSON(w, map[string]any{"page": 1, "results": results})
	})
	mux.HandleFunc("GET /movie/{id}", func(w http.ResponseWriter, r *http.Request) {
		m, ok := lookup(byID, r.PathValue("id"))
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, map[string]any{"runtime": m.Runtime, "imdb_id": m.IMDbID})
	})
	mux.HandleFunc("GET /movie/{id}/watch/providers", func(w http.ResponseWriter, r *http.Request) {
		m, ok := lookup(byID, r.PathValue("id"))
		if !ok {
			http.NotFound(w, r)
			return
		}
		flatrate := make([]map[string]any, 0, len(m.TMDBProviders))
		for _, name := range m.TMDBProviders {
			flatrate = append(flatrate, map[string]any{"provider_name": name})
		}
		writeJSON(w, map[string]any{"results": map[string]any{
			"US": map[string]any{
				"link":     fmt.Sprintf("https://www.themoviedb.org/movie/%d/watch", m.TMDBID),
				"flatrate": flatrate,
			},
		}})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// NewWatchmodeServer serves field search by TMDB id, IMDb id, and name, plus
// per-title sources.
func NewWatchmodeServer(t testing.TB, movies ...Movie) *httptest.Server {
	t.Helper()

	indexed := make([]Movie, 0, len(movies))
	byID := make(map[int64]Movie, len(movies))
	for _, m := range movies {
		if m.WatchmodeID > 0 {
			indexed = append(indexed, m)
			byID[m.WatchmodeID] = m
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /search/", func(w http.ResponseWriter, r *http.Request) {
		field := r.URL.Query().Get("search_field")
		value := strings.TrimSpace(r.URL.Query().Get("search_value"))
		results := []map[string]any{}
		for _, m := range indexed {
			var hit bool
			switch field {
			case "tmdb_movie_id":
				hit = strconv.FormatInt(m.TMDBID, 10) == value
			case "imdb_id":
				hit = m.IMDbID != "" && m.IMDbID == value
			case "name":
				hit = strings.EqualFold(m.Title, value)
			}
			if hit {
				results = append(results, watchmodeTitle(m))
			}
		}
		writeJSON(w, map[string]any{"title_results": results})
	})
	mux.HandleFunc("GET /autocomplete-search/", func(w http.ResponseWriter, r *http.Request) {
		value := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search_value")))
		results := []map[string]any{}
		for _, m := range indexed {
			if strings.HasPrefix(value, strings.ToLower(m.Title)) {
				results = append(results, watchmodeTitle(m))
			}
		}
		writeJSON(w, map[string]any{"results": results})
	})
	mux.HandleFunc("GET /title/{id}/sources/", func(w http.ResponseWriter, r *http.Request) {
		m, ok := lookup(byID, r.PathValue("id"))
		if !ok {
			http.NotFound(w, r)
			return
		}
		sources := make([]map[string]any, 0, len(m.WatchmodeSources))
		for _, s := range m.WatchmodeSources {
			sources = append(sources, map[string]any{
				"name":    s.Name,
				"type":    s.Type,
				"region":  s.Region,
				"web_url": s.WebURL,
			})
		}
		writeJSON(w, sources)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func watchmodeTitle(m Movie) map[string]any {
	return map[string]any{
		"id":      m.WatchmodeID,
		"name":    m.Title,
		"type":    "movie",
		"year":    m.Year,
		"tmdb_id": m.TMDBID,
		"imdb_id": m.IMDbID,
	}
}

func lookup(byID map[int64]Movie, raw string) (Movie, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Movie{}, false
	}
	m, ok := byID[id]
	return m, ok
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
