// Package taxonomy defines the closed set of streaming services StreamList
// recognises, the alias table that maps free-text provider names onto them,
// and the per-service URL repair rules.
//
// Everything here is static data and pure functions; callers never mutate
// the registry.
package taxonomy
