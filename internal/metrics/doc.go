// Package metrics owns the Prometheus collectors shared by the catalog
// clients, the resolver, the batch runner, and the HTTP API.
//
// A nil *Recorder is valid and records nothing, so components accept one
// optionally and tests can skip metrics entirely.
package metrics
