package taxonomy

import (
	"net/url"
	"regexp"
	"strings"
)

type urlRule struct {
	domain *regexp.Regexp
	search func(escaped string) string
}

// Pluto and Roku are not registry services but carry rules so that records
// normalized onto them by callers still get a usable link.
const (
	pluto ID = "pluto"
	roku  ID = "roku"
)

var urlRules = map[ID]urlRule{
	Netflix: {
		domain: regexp.MustCompile(`netflix\.com`),
		search: func(q string) string { return "https://www.netflix.com/search?q=" + q },
	},
	HBO: {
		domain: regexp.MustCompile(`(max|hbo|hbomax)\.com`),
		search: func(q string) string { return "https://play.max.com/search?q=" + q },
	},
	Hulu: {
		domain: regexp.MustCompile(`hulu\.com`),
		search: func(q string) string { return "https://www.hulu.com/search?q=" + q },
	},
	Prime: {
		domain: regexp.MustCompile(`amazon\.com|primevideo\.com`),
		search: func(q string) string { return "https://www.amazon.com/s?k=" + q + "&i=instant-video" },
	},
	Apple: {
		domain: regexp.MustCompile(`apple\.com`),
		search: func(q string) string { return "https://tv.apple.com/search?term=" + q },
	},
	Disney: {
		domain: regexp.MustCompile(`disneyplus\.com`),
		search: func(q string) string { return "https://www.disneyplus.com/search/" + q },
	},
	Peacock: {
		domain: regexp.MustCompile(`peacocktv\.com`),
		search: func(q string) string { return "https://www.peacocktv.com/watch/search?query=" + q },
	},
	Paramount: {
		domain: regexp.MustCompile(`paramountplus\.com`),
		search: func(q string) string { return "https://www.paramountplus.com/search/?term=" + q },
	},
	Tubi: {
		domain: regexp.MustCompile(`tubi(tv)?\.com`),
		search: func(q string) string { return "https://tubitv.com/search/" + q },
	},
	Plex: {
		domain: regexp.MustCompile(`plex\.tv`),
		search: func(q string) string { return "https://watch.plex.tv/search?q=" + q },
	},
	pluto: {
		domain: regexp.MustCompile(`pluto\.tv`),
		search: func(q string) string { return "https://pluto.tv/en/search?query=" + q },
	},
	roku: {
		domain: regexp.MustCompile(`roku\.com|therokuchannel`),
		search: func(q string) string { return "https://therokuchannel.roku.com/search/" + q },
	},
}

// RepairURL returns rawURL when it points at the service's own domain and the
// service's search page for title otherwise. Services without a rule keep
// rawURL unchanged.
func RepairURL(id ID, title, rawURL string) string {
	rule, ok := urlRules[id]
	if !ok {
		return rawURL
	}
	rawURL = strings.TrimSpace(rawURL)
	if rawURL != "" && rule.domain.MatchString(strings.ToLower(rawURL)) {
		return rawURL
	}
	return rule.search(escapeComponent(strings.TrimSpace(title)))
}

// escapeComponent escapes title for use in either a query value or a path
// segment, encoding spaces as %20.
func escapeComponent(title string) string {
	return strings.ReplaceAll(url.QueryEscape(title), "+", "%20")
}
