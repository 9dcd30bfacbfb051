package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"streamlist/internal/catalog"
	"streamlist/internal/catalog/watchmode"
)

const (
	tmdbName      = "TMDB"
	watchmodeName = "Watchmode"
	checkTimeout  = 10 * time.Second

	// The Matrix; present in both catalogs.
	probeTMDBID = "603"
)

// CheckTMDB verifies the TMDB key by loading the genre list.
func CheckTMDB(ctx context.Context, primary PrimaryCatalog) Result {
	if primary == nil {
		return Result{Name: tmdbName, Detail: "client not configured"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	genres, err := primary.GenreMap(checkCtx)
	if err != nil {
		return Result{Name: tmdbName, Detail: summarizeUpstreamError(err)}
	}
	return Result{Name: tmdbName, Passed: true, Detail: fmt.Sprintf("API reachable (%d genres)", len(genres))}
}

// CheckWatchmode verifies the Watchmode key with a single id lookup.
func CheckWatchmode(ctx context.Context, secondary SecondaryCatalog) Result {
	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if _, err := secondary.FieldSearch(checkCtx, watchmode.FieldTMDBMovieID, probeTMDBID); err != nil {
		return Result{Name: watchmodeName, Detail: summarizeUpstreamError(err)}
	}
	return Result{Name: watchmodeName, Passed: true, Detail: "API reachable"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func summarizeUpstreamError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (API unreachable)"
	}
	var upstream *catalog.UpstreamError
	if errors.As(err, &upstream) {
		switch upstream.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "auth failed (invalid api key)"
		case http.StatusTooManyRequests:
			return "rate limited (quota exhausted?)"
		}
	}
	return err.Error()
}
