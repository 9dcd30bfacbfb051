package taxonomy

import "strings"

// ID identifies a known streaming service.
type ID string

const (
	Netflix   ID = "netflix"
	HBO       ID = "hbo"
	Hulu      ID = "hulu"
	Tubi      ID = "tubi"
	Plex      ID = "plex"
	Prime     ID = "prime"
	Apple     ID = "apple"
	Disney    ID = "disney"
	Peacock   ID = "peacock"
	Paramount ID = "paramount"
)

// Service describes one entry of the registry.
type Service struct {
	ID          ID     `json:"id"`
	DisplayName string `json:"name"`
	Color       string `json:"color"`
	LogoRef     string `json:"logo"`
}

type aliasEntry struct {
	id      ID
	aliases []string
}

var registry = []Service{
	{ID: Netflix, DisplayName: "Netflix", Color: "#E50914"},
	{ID: HBO, DisplayName: "HBO Max", Color: "#9B59B6"},
	{ID: Hulu, DisplayName: "Hulu", Color: "#1CE783"},
	{ID: Tubi, DisplayName: "Tubi", Color: "#FA3A2C"},
	{ID: Plex, DisplayName: "Plex", Color: "#F9BE03"},
	{ID: Prime, DisplayName: "Prime Video", Color: "#00A8E0"},
	{ID: Apple, DisplayName: "Apple TV+", Color: "#FFFFFF"},
	{ID: Disney, DisplayName: "Disney+", Color: "#113CCF"},
	{ID: Peacock, DisplayName: "Peacock", Color: "#F5A623"},
	{ID: Paramount, DisplayName: "Paramount+", Color: "#0064FF"},
}

// Aliases are matched by substring in registration order, so within an entry
// the more specific alias must come first.
var aliasTable = []aliasEntry{
	{Netflix, []string{"netflix"}},
	{HBO, []string{"hbo max", "hbomax", "hbo", "max"}},
	{Hulu, []string{"hulu"}},
	{Tubi, []string{"tubi"}},
	{Plex, []string{"plex"}},
	{Prime, []string{"amazon prime video", "amazon prime", "prime video", "amazon"}},
	{Apple, []string{"apple tv plus", "apple tv+", "apple tv", "apple"}},
	{Disney, []string{"disney plus", "disney+", "disney"}},
	{Peacock, []string{"peacock"}},
	{Paramount, []string{"paramount plus", "paramount+", "paramount"}},
}

var byID map[ID]Service

func init() {
	byID = make(map[ID]Service, len(registry))
	for i := range registry {
		registry[i].LogoRef = "/icons/" + string(registry[i].ID) + ".svg"
		byID[registry[i].ID] = registry[i]
	}
}

// Normalize maps a free-text provider name to a service id. The first alias
// contained in the lowercased, trimmed text wins.
func Normalize(freeText string) (ID, bool) {
	normalized := strings.ToLower(strings.TrimSpace(freeText))
	if normalized == "" {
		return "", false
	}
	for _, entry := range aliasTable {
		for _, alias := range entry.aliases {
			if strings.Contains(normalized, alias) {
				return entry.id, true
			}
		}
	}
	return "", false
}

// LogoFor returns the logo reference for a free-text provider name, or "".
func LogoFor(freeText string) string {
	id, ok := Normalize(freeText)
	if !ok {
		return ""
	}
	return byID[id].LogoRef
}

// Lookup returns the registry entry for id.
func Lookup(id ID) (Service, bool) {
	svc, ok := byID[id]
	return svc, ok
}

// All returns a copy of the registry in registration order.
func All() []Service {
	out := make([]Service, len(registry))
	copy(out, registry)
	return out
}
