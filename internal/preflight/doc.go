// Package preflight checks upstream catalog keys and filesystem paths.
//
// The daemon runs the checks at startup and logs failures as warnings;
// "streamlist config validate --check" prints them and fails on any failure.
// Disabled features report as passing with a "disabled" detail.
package preflight
