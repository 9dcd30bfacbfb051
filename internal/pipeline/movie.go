package pipeline

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mozillazg/go-unidecode"

	"streamlist/internal/availability"
	"streamlist/internal/catalog"
)

const (
	notFoundOverview = "No match found on TMDB."
	noOverview       = "No overview available."
)

// Movie is the pipeline's output for one input title.
type Movie struct {
	ID       string                         `json:"id"`
	Title    string                         `json:"title"`
	Year     int                            `json:"year"`
	Poster   string                         `json:"poster"`
	Overview string                         `json:"overview"`
	Genres   []string                       `json:"genres"`
	Runtime  int                            `json:"runtime"`
	Rating   float64                        `json:"imdbRating"`
	Sources  []availability.StreamingSource `json:"streamingSources"`
	NotFound bool                           `json:"notFound,omitempty"`
}

// NotFoundMovie is the terminal result for a title TMDB could not match.
func NotFoundMovie(query string) Movie {
	return Movie{
		ID:       Slugify(query),
		Title:    query,
		Overview: notFoundOverview,
		Genres:   []string{},
		Sources:  []availability.StreamingSource{},
		NotFound: true,
	}
}

func assemble(title catalog.CanonicalTitle, genres map[int]string, poster string) Movie {
	overview := strings.TrimSpace(title.Overview)
	if overview == "" {
		overview = noOverview
	}
	return Movie{
		ID:       strconv.FormatInt(title.PrimaryID, 10),
		Title:    title.Title,
		Year:     title.Year,
		Poster:   poster,
		Overview: overview,
		Genres:   genreNames(title.GenreIDs, genres),
		Runtime:  title.RuntimeMinutes,
		Rating:   roundRating(title.VoteAverage),
		Sources:  []availability.StreamingSource{},
	}
}

func genreNames(ids []int, genres map[int]string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := genres[id]; ok && name != "" {
			names = append(names, name)
		}
	}
	return names
}

func roundRating(v float64) float64 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	return math.Round(v*10) / 10
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpace   = regexp.MustCompile(`\s+`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slugify derives a stable id for a title that has no catalog id.
func Slugify(value string) string {
	s := strings.ToLower(strings.TrimSpace(unidecode.Unidecode(value)))
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugSpace.ReplaceAllString(s, "-")
	return slugDashes.ReplaceAllString(s, "-")
}

// CleanTitles trims titles and drops blanks, preserving order.
func CleanTitles(titles []string) []string {
	cleaned := make([]string, 0, len(titles))
	for _, title := range titles {
		if title = strings.TrimSpace(title); title != "" {
			cleaned = append(cleaned, title)
		}
	}
	return cleaned
}
