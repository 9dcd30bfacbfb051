package preflight

import (
	"context"
	"path/filepath"
	"strings"

	"streamlist/internal/catalog/watchmode"
	"streamlist/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// PrimaryCatalog is the TMDB call used to verify the key.
type PrimaryCatalog interface {
	GenreMap(ctx context.Context) (map[int]string, error)
}

// SecondaryCatalog is the Watchmode call used to verify the key.
type SecondaryCatalog interface {
	FieldSearch(ctx context.Context, field watchmode.SearchField, value string) ([]watchmode.Title, error)
}

// RunAll executes every applicable check. secondary is nil when Watchmode is
// disabled.
func RunAll(ctx context.Context, cfg *config.Config, primary PrimaryCatalog, secondary SecondaryCatalog) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckTMDB(ctx, primary)}

	if secondary == nil {
		results = append(results, Result{Name: watchmodeName, Passed: true, Detail: "disabled (no api key)"})
	} else {
		results = append(results, CheckWatchmode(ctx, secondary))
	}

	if file := strings.TrimSpace(cfg.Logging.File); file != "" {
		results = append(results, CheckDirectoryAccess("Log directory", filepath.Dir(file)))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
