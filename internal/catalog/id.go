package catalog

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CoerceID extracts a catalog id from a JSON-ish value. Numbers are truncated
// to integers; strings yield their first run of digits ("movie-603" -> 603).
// Non-positive or missing ids report false.
func CoerceID(v any) (int64, bool) {
	switch value := v.(type) {
	case nil:
		return 0, false
	case int:
		return positive(int64(value))
	case int32:
		return positive(int64(value))
	case int64:
		return positive(value)
	case uint32:
		return positive(int64(value))
	case float32:
		return coerceFloat(float64(value))
	case float64:
		return coerceFloat(value)
	case json.Number:
		if n, err := value.Int64(); err == nil {
			return positive(n)
		}
		if f, err := value.Float64(); err == nil {
			return coerceFloat(f)
		}
		return coerceString(value.String())
	case string:
		return coerceString(value)
	case FlexID:
		return positive(int64(value))
	default:
		return 0, false
	}
}

func coerceFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 {
		return 0, false
	}
	return positive(int64(f))
}

func coerceString(s string) (int64, bool) {
	start := strings.IndexFunc(s, isDigit)
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(s) && isDigit(rune(s[end])) {
		end++
	}
	n, err := strconv.ParseInt(s[start:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return positive(n)
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func positive(n int64) (int64, bool) {
	if n <= 0 {
		return 0, false
	}
	return n, true
}

// FlexID decodes ids that upstreams send either as numbers or strings.
// Anything that does not coerce decodes to zero.
type FlexID int64

func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	var raw any
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		*f = 0
		return nil
	}
	id, _ := CoerceID(raw)
	*f = FlexID(id)
	return nil
}

// Int64 returns the id, zero when absent.
func (f FlexID) Int64() int64 { return int64(f) }
