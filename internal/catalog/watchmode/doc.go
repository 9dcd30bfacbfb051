// Package watchmode wraps the Watchmode v1 endpoints used for availability:
// field search by external id or name, autocomplete search, and per-title
// source lists.
package watchmode
