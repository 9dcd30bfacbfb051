// Package availability turns raw provider rows from either catalog into the
// deduplicated per-service StreamingSource list shown to users.
//
// Watchmode is consulted first when a cross-catalog id is known. TMDB's own
// watch providers are the fallback whenever Watchmode yields nothing usable,
// including when it fails. Failures never abort a title; they degrade to an
// empty list.
package availability
