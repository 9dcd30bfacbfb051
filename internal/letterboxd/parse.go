package letterboxd

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ValidURL reports whether raw is an absolute URL on letterboxd.com or one
// of its subdomains.
func ValidURL(raw string) bool {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Host == "" {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	return host == "letterboxd.com" || strings.HasSuffix(host, ".letterboxd.com")
}

// ExtractTitles returns the distinct titles on a page in document order:
// slug-derived titles first, then poster alt text.
func ExtractTitles(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	return extractTitles(doc)
}

// NextPageURL returns the absolute URL of the next page, or "" on the last
// page.
func NextPageURL(html, current string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return nextPageURL(doc, current)
}

func extractTitles(doc *goquery.Document) []string {
	set := newOrderedSet()
	caser := cases.Title(language.English)

	doc.Find("[data-film-slug]").Each(func(_ int, s *goquery.Selection) {
		slug, _ := s.Attr("data-film-slug")
		if title := slugToTitle(caser, slug); title != "" {
			set.add(title)
		}
	})
	doc.Find(".film-poster img[alt]").Each(func(_ int, s *goquery.Selection) {
		alt, _ := s.Attr("alt")
		set.add(strings.TrimSpace(alt))
	})
	return set.items
}

func nextPageURL(doc *goquery.Document, current string) string {
	href, ok := doc.Find("a.next[href]").First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return ""
	}
	base, err := url.Parse(current)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func slugToTitle(caser cases.Caser, slug string) string {
	slug = strings.TrimSpace(slug)
	slug = strings.TrimPrefix(slug, "/film/")
	slug = strings.Trim(slug, "/")
	if slug == "" {
		return ""
	}
	words := strings.Fields(strings.ReplaceAll(slug, "-", " "))
	return caser.String(strings.Join(words, " "))
}

type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(item string) {
	if item == "" {
		return
	}
	if _, ok := s.seen[item]; ok {
		return
	}
	s.seen[item] = struct{}{}
	s.items = append(s.items, item)
}

func (s *orderedSet) merge(items []string) {
	for _, item := range items {
		s.add(item)
	}
}
