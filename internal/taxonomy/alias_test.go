package taxonomy

import (
	"strings"
	"testing"
)

func TestEveryAliasMapsToOwner(t *testing.T) {
	for _, entry := range aliasTable {
		for _, alias := range entry.aliases {
			for _, variant := range []string{alias, strings.ToUpper(alias), strings.ToUpper(alias[:1]) + alias[1:]} {
				got, ok := Normalize(variant)
				if !ok || got != entry.id {
					t.Fatalf("Normalize(%q) = (%q, %v), want %q", variant, got, ok, entry.id)
				}
			}
		}
	}
}

func TestDisplayNamesRoundTrip(t *testing.T) {
	for _, svc := range All() {
		if LogoFor(svc.DisplayName) == "" {
			t.Fatalf("no logo for %q", svc.DisplayName)
		}
		if got, ok := Normalize(svc.DisplayName); !ok || got != svc.ID {
			t.Fatalf("Normalize(%q) = (%q, %v), want %q", svc.DisplayName, got, ok, svc.ID)
		}
	}
}
