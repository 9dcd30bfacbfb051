// Package resolver finds the Watchmode title id for a TMDB match.
//
// The two catalogs share no reliable key, so Resolve walks an ordered chain
// of strategies and stops at the first confident hit:
//
//  1. tmdb_id: exact field search on the TMDB id (authoritative)
//  2. imdb_id: exact field search on the IMDb id
//  3. name_search: ranked name search over the TMDB title and the raw query
//  4. autocomplete: ranked autocomplete over the same strings plus "<title> <year>"
//
// Upstream failures inside a strategy are logged and treated as "no result";
// a nil match after the whole chain is a normal outcome.
package resolver
