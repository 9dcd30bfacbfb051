// Package catalog holds the upstream plumbing shared by the TMDB and
// Watchmode clients: the UpstreamError type, catalog id coercion, and a
// Fetcher that applies rate limiting, bounded retries, response caching, and
// metrics around JSON GET requests.
package catalog
