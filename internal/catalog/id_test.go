package catalog_test

import (
	"encoding/json"
	"testing"

	"streamlist/internal/catalog"
)

func TestCoerceID(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int64
		ok    bool
	}{
		{"int", 603, 603, true},
		{"int64", int64(27205), 27205, true},
		{"float", 496243.0, 496243, true},
		{"json number", json.Number("1018"), 1018, true},
		{"numeric string", "550", 550, true},
		{"embedded digits", "movie-603-matrix", 603, true},
		{"imdb style", "tt0133093", 133093, true},
		{"zero", 0, 0, false},
		{"negative", -5, 0, false},
		{"no digits", "matrix", 0, false},
		{"empty", "", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := catalog.CoerceID(tt.value)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("CoerceID(%#v) = (%d, %v), want (%d, %v)", tt.value, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFlexIDDecodesMixedShapes(t *testing.T) {
	var payload struct {
		A catalog.FlexID `json:"a"`
		B catalog.FlexID `json:"b"`
		C catalog.FlexID `json:"c"`
		D catalog.FlexID `json:"d"`
		E catalog.FlexID `json:"e"`
	}
	raw := `{"a": 1345, "b": "1345", "c": null, "d": {"nested": 1}, "e": 12.0}`
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.A != 1345 || payload.B != 1345 {
		t.Fatalf("expected 1345 for number and string, got %d %d", payload.A, payload.B)
	}
	if payload.C != 0 || payload.D != 0 {
		t.Fatalf("expected zero for null and object, got %d %d", payload.C, payload.D)
	}
	if payload.E.Int64() != 12 {
		t.Fatalf("expected 12 for float, got %d", payload.E)
	}
}
