package httpapi

import (
	"encoding/json"
	"strconv"
	"strings"
)

// flexFloat accepts a JSON number, a numeric string, or garbage. Malformed
// input is treated as absent rather than rejected; required-ness is enforced
// by the services, not the decoder.
type flexFloat struct {
	value *float64
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	f.value = nil
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	f.value = &v
	return nil
}

// flexInt is the integer counterpart. Fractional or out-of-32-bit-range
// values are treated as absent, never floored or wrapped.
type flexInt struct {
	value *int
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	f.value = nil
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return nil
	}
	n := int(v)
	f.value = &n
	return nil
}
