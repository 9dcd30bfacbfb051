// Package tmdb wraps the subset of the TMDB v3 API StreamList relies on:
// movie search, movie details, the genre list, and per-region watch
// providers.
//
// The genre map is fetched lazily, at most once per successful fetch, and
// shared by every caller for the life of the process. Concurrent first
// callers wait on one in-flight request; a failed fetch is not cached.
package tmdb
