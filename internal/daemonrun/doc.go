// Package daemonrun wires configuration into a running StreamList process:
// catalog clients, resolver, aggregator, batch runner, list importer, and
// the HTTP server. Build is shared with the CLI so one-shot commands and the
// daemon use the same components.
package daemonrun
