// Package pipeline runs the per-title StreamList pipeline (TMDB search,
// details, cross-catalog resolution, availability) and the batch
// orchestrator that drives it over many titles.
//
// RunBatch is the single entry point outer layers use. It processes titles
// in consecutive chunks: each chunk runs concurrently, chunks never overlap,
// and a pacing delay separates them. Output order and length match the
// cleaned input. One title's failure never fails the batch; only missing
// input or an unavailable genre map surface as batch errors.
package pipeline
