// Package share encodes a result view (titles plus active service filters)
// into a URL-safe token and back.
package share

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"streamlist/internal/services"
)

// State is the payload carried by a share token.
type State struct {
	Titles   []string `json:"titles"`
	Services []string `json:"services"`
}

// Encode returns the unpadded base64url encoding of the JSON payload.
func Encode(titles, serviceIDs []string) string {
	state := State{Titles: nonNil(titles), Services: nonNil(serviceIDs)}
	payload, err := json.Marshal(state)
	if err != nil {
		// []string always marshals.
		panic(fmt.Sprintf("share: marshal state: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(payload)
}

// Decode reverses Encode. Entries that are not strings are dropped, and a
// missing or non-array field decodes as empty.
func Decode(token string) (State, error) {
	token = strings.TrimRight(strings.TrimSpace(token), "=")
	if token == "" {
		return State{}, services.Wrap(services.ErrValidation, "share", "decode", "empty share token", nil)
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return State{}, services.Wrap(services.ErrValidation, "share", "decode", "invalid share token", err)
	}

	var loose struct {
		Titles   json.RawMessage `json:"titles"`
		Services json.RawMessage `json:"services"`
	}
	if err := json.Unmarshal(raw, &loose); err != nil {
		return State{}, services.Wrap(services.ErrValidation, "share", "decode", "invalid share payload", err)
	}
	return State{
		Titles:   stringEntries(loose.Titles),
		Services: stringEntries(loose.Services),
	}, nil
}

func stringEntries(raw json.RawMessage) []string {
	out := []string{}
	var items []any
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return out
	}
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
