package share

import (
	"encoding/base64"
	"errors"
	"reflect"
	"strings"
	"testing"

	"streamlist/internal/services"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	token := Encode([]string{"Amélie", "Heat"}, []string{"netflix", "hulu"})
	if strings.ContainsAny(token, "+/=") {
		t.Fatalf("token is not url safe: %q", token)
	}
	state, err := Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := State{Titles: []string{"Amélie", "Heat"}, Services: []string{"netflix", "hulu"}}
	if !reflect.DeepEqual(state, want) {
		t.Fatalf("Decode = %#v, want %#v", state, want)
	}
}

func TestEncodeNilSlices(t *testing.T) {
	raw, err := base64.RawURLEncoding.DecodeString(Encode(nil, nil))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(raw) != `{"titles":[],"services":[]}` {
		t.Fatalf("unexpected payload %s", raw)
	}
}

func TestDecodeDropsNonStringEntries(t *testing.T) {
	token := base64.RawURLEncoding.EncodeToString([]byte(`{"titles":["Heat",7,null,{"x":1}],"services":"netflix"}`))
	state, err := Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(state.Titles, []string{"Heat"}) {
		t.Fatalf("titles = %#v", state.Titles)
	}
	if state.Services == nil || len(state.Services) != 0 {
		t.Fatalf("services = %#v, want empty", state.Services)
	}
}

func TestDecodeAcceptsPaddedToken(t *testing.T) {
	token := base64.URLEncoding.EncodeToString([]byte(`{"titles":["A"]}`))
	state, err := Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(state.Titles, []string{"A"}) {
		t.Fatalf("titles = %#v", state.Titles)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, token := range []string{"", "!!!", base64.RawURLEncoding.EncodeToString([]byte("not json"))} {
		if _, err := Decode(token); !errors.Is(err, services.ErrValidation) {
			t.Errorf("Decode(%q) error = %v, want validation", token, err)
		}
	}
}
