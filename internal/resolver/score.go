package resolver

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"

	"streamlist/internal/catalog/watchmode"
	"streamlist/internal/config"
)

// Weights are the scoring heuristics. They are tunable, not derived.
type Weights struct {
	MovieBonus      int
	ExactTitle      int
	PrefixTitle     int
	ContainsTitle   int
	ExactYear       int
	AdjacentYear    int
	NearYear        int
	ExternalIDBonus int
}

// DefaultWeights returns the stock weights.
func DefaultWeights() Weights {
	return WeightsFromConfig(config.DefaultResolver())
}

// WeightsFromConfig converts the [resolver] configuration section.
func WeightsFromConfig(cfg config.Resolver) Weights {
	return Weights{
		MovieBonus:      cfg.MovieBonus,
		ExactTitle:      cfg.ExactTitle,
		PrefixTitle:     cfg.PrefixTitle,
		ContainsTitle:   cfg.ContainsTitle,
		ExactYear:       cfg.ExactYear,
		AdjacentYear:    cfg.AdjacentYear,
		NearYear:        cfg.NearYear,
		ExternalIDBonus: cfg.ExternalIDBonus,
	}
}

var (
	quoteStripper = strings.NewReplacer("'", "", "’", "", "‘", "", "\"", "", "“", "", "”", "", "`", "")
	nonAlphaNum   = regexp.MustCompile(`[^a-z0-9]+`)
)

// NormalizeTitle folds diacritics, lowercases, drops quote characters, and
// collapses every other non-alphanumeric run to a single space.
func NormalizeTitle(title string) string {
	s := strings.ToLower(title)
	s = quoteStripper.Replace(s)
	s = strings.ToLower(unidecode.Unidecode(s))
	s = quoteStripper.Replace(s)
	s = nonAlphaNum.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Score rates how well candidate matches the query using the default weights.
func Score(queryTitle string, queryYear int, candidate watchmode.Title) int {
	return DefaultWeights().Score(queryTitle, queryYear, candidate)
}

// Score rates how well candidate matches the query. Year terms apply only
// when both years are known (non-zero).
func (w Weights) Score(queryTitle string, queryYear int, candidate watchmode.Title) int {
	score := 0
	if candidate.IsMovie() {
		score += w.MovieBonus
	}
	score += w.titleScore(NormalizeTitle(queryTitle), NormalizeTitle(candidate.Name))
	score += w.yearScore(queryYear, candidate.Year)
	return score
}

func (w Weights) titleScore(query, candidate string) int {
	if query == "" || candidate == "" {
		return 0
	}
	switch {
	case query == candidate:
		return w.ExactTitle
	case strings.HasPrefix(query, candidate) || strings.HasPrefix(candidate, query):
		return w.PrefixTitle
	case strings.Contains(query, candidate) || strings.Contains(candidate, query):
		return w.ContainsTitle
	default:
		return 0
	}
}

func (w Weights) yearScore(queryYear, candidateYear int) int {
	if queryYear <= 0 || candidateYear <= 0 {
		return 0
	}
	diff := queryYear - candidateYear
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff == 0:
		return w.ExactYear
	case diff == 1:
		return w.AdjacentYear
	case diff <= 3:
		return w.NearYear
	default:
		return -diff
	}
}
