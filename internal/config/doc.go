// Package config loads, normalizes, and validates StreamList configuration data.
//
// It supplies repository defaults, reads TOML files, and honours environment
// fallbacks such as TMDB_API_KEY and WATCHMODE_API_KEY. The Config type
// centralizes every knob the daemon and CLI need: catalog credentials and
// endpoints, batch pacing, resolver scoring weights, cache sizing, and the
// HTTP server settings.
//
// Always obtain settings through this package so downstream code receives
// trimmed values, canonical regions, and clear validation errors.
package config
