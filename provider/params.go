package provider

import (
	"fmt"
	"maps"
	"strconv"
)

// Clone returns a shallow copy of the bag.
func (p Params) Clone() Params {
	out := make(Params, len(p)+2)
	maps.Copy(out, p)
	return out
}

// String returns the value under key as a string, or def when missing or empty.
func (p Params) String(key, def string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return def
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprintf("%v", v)
	}
	if s == "" {
		return def
	}
	return s
}

// Strings returns the value under key as a string slice. []any values keep
// their string elements only.
func (p Params) Strings(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, it := range v {
			if s, ok := it.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v != "" {
			return []string{v}
		}
	}
	return nil
}

// Int returns the value under key as an int, or def.
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// SetDefault stores def under key unless a non-empty value is already present.
func (p Params) SetDefault(key string, def any) {
	if v, ok := p[key]; ok && v != nil && v != "" {
		return
	}
	p[key] = def
}
