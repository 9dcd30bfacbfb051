package taxonomy_test

import (
	"strings"
	"testing"

	"streamlist/internal/taxonomy"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  taxonomy.ID
		ok    bool
	}{
		{"Netflix", taxonomy.Netflix, true},
		{"  Netflix basic with Ads ", taxonomy.Netflix, true},
		{"HBO Max", taxonomy.HBO, true},
		{"Max", taxonomy.HBO, true},
		{"Amazon Prime Video", taxonomy.Prime, true},
		{"Prime Video", taxonomy.Prime, true},
		{"Apple TV Plus", taxonomy.Apple, true},
		{"Disney Plus", taxonomy.Disney, true},
		{"Paramount+ Amazon Channel", taxonomy.Prime, true},
		{"Peacock Premium", taxonomy.Peacock, true},
		{"Tubi TV", taxonomy.Tubi, true},
		{"Plex", taxonomy.Plex, true},
		{"Hulu", taxonomy.Hulu, true},
		{"Mubi", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := taxonomy.Normalize(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("Normalize(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLogoFor(t *testing.T) {
	if got := taxonomy.LogoFor("Disney+"); got != "/icons/disney.svg" {
		t.Fatalf("unexpected logo %q", got)
	}
	if got := taxonomy.LogoFor("Criterion Channel"); got != "" {
		t.Fatalf("expected empty logo for unknown service, got %q", got)
	}
}

func TestAllReturnsCopyInOrder(t *testing.T) {
	all := taxonomy.All()
	if len(all) != 10 {
		t.Fatalf("expected 10 services, got %d", len(all))
	}
	if all[0].ID != taxonomy.Netflix || all[9].ID != taxonomy.Paramount {
		t.Fatalf("unexpected order: %v ... %v", all[0].ID, all[9].ID)
	}
	all[0].DisplayName = "mutated"
	svc, ok := taxonomy.Lookup(taxonomy.Netflix)
	if !ok || svc.DisplayName != "Netflix" {
		t.Fatalf("registry mutated through All(): %+v", svc)
	}
	if svc.LogoRef != "/icons/netflix.svg" || svc.Color != "#E50914" {
		t.Fatalf("unexpected netflix entry: %+v", svc)
	}
}

func TestRepairURL(t *testing.T) {
	tests := []struct {
		name  string
		id    taxonomy.ID
		title string
		raw   string
		want  string
	}{
		{"matching domain kept", taxonomy.Netflix, "Heat", "https://www.netflix.com/title/123", "https://www.netflix.com/title/123"},
		{"foreign domain replaced", taxonomy.Netflix, "Heat", "https://www.themoviedb.org/movie/949/watch", "https://www.netflix.com/search?q=Heat"},
		{"empty url replaced", taxonomy.Hulu, "The Bear", "", "https://www.hulu.com/search?q=The%20Bear"},
		{"hbo on max domain kept", taxonomy.HBO, "Dune", "https://play.max.com/movie/abc", "https://play.max.com/movie/abc"},
		{"prime video domain kept", taxonomy.Prime, "Dune", "https://www.primevideo.com/detail/x", "https://www.primevideo.com/detail/x"},
		{"prime search", taxonomy.Prime, "Dune", "https://example.com", "https://www.amazon.com/s?k=Dune&i=instant-video"},
		{"tubitv domain kept", taxonomy.Tubi, "Drive", "https://tubitv.com/movies/1", "https://tubitv.com/movies/1"},
		{"escapes title", taxonomy.Apple, "Amélie & Co", "", "https://tv.apple.com/search?term=Am%C3%A9lie%20%26%20Co"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := taxonomy.RepairURL(tt.id, tt.title, tt.raw); got != tt.want {
				t.Fatalf("RepairURL = %q, want %q", got, tt.want)
			}
		})
	}
	if got := taxonomy.RepairURL(taxonomy.ID("mubi"), "Heat", "https://mubi.com/x"); got != "https://mubi.com/x" {
		t.Fatalf("expected unknown service url untouched, got %q", got)
	}
	for _, svc := range taxonomy.All() {
		if got := taxonomy.RepairURL(svc.ID, "x", ""); !strings.HasPrefix(got, "https://") {
			t.Fatalf("expected search url for %s, got %q", svc.ID, got)
		}
	}
}
