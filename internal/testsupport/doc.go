// Package testsupport provides test configuration builders and fake TMDB and
// Watchmode servers backed by a shared movie fixture list.
package testsupport
