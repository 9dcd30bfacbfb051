// Package api serves StreamList over HTTP.
//
// Routes:
//
//	POST /api/fetch-movies        titles -> []pipeline.Movie
//	GET  /api/scrape-letterboxd   ?url= -> {"titles": [...]}
//	GET  /api/services            service taxonomy
//	POST /api/share               titles + services -> {"state": token}
//	GET  /api/share/{state}       token -> titles + services
//	GET  /healthz
//	GET  /metrics                 Prometheus exposition (optional)
//
// Every response carries an X-Request-ID header. The /api subrouter applies a
// per-client token bucket and, when configured, bearer token auth. Errors are
// returned as {"error": message}.
//
// The router only depends on the BatchRunner and ListImporter interfaces, so
// handlers are tested with fakes and httptest.
package api
