// Package services defines shared utilities consumed by the catalog clients,
// the resolution pipeline, and the transport layer.
//
// Key responsibilities:
//   - Context helpers that stamp request IDs, batch IDs, and input titles for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures as
//     upstream, configuration, or validation problems so callers can decide
//     between degrading a single title and failing a whole batch.
//
// Use these helpers when wiring new components so operational behaviour (error
// classification, observability) stays uniform across the pipeline.
package services
