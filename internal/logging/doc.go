// Package logging assembles structured slog loggers and formatting helpers used
// across StreamList components.
//
// It owns the console/JSON handlers, rotating file output, and level parsing,
// and exposes context-aware helpers so pipeline code automatically tags log
// lines with request IDs, batch IDs, and the title being resolved. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
package logging
