package config

import (
	"math"
	"strings"
	"time"
)

// Config is a read-only view over decoded YAML or JSON. Keys are literal
// entries or dotted paths into nested sections ("memory.token_budget").
// Accessors fall back to the supplied default when the key is absent or
// holds a value of the wrong kind.
type Config struct {
	data map[string]any
}

// New wraps data. A nil map yields an empty Config.
func New(data map[string]any) Config {
	if data == nil {
		data = map[string]any{}
	}
	return Config{data: data}
}

// Raw exposes the underlying map. Callers must not modify it.
func (c Config) Raw() map[string]any { return c.data }

// Has reports whether key resolves to a value.
func (c Config) Has(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

// Sub returns the section at key. Missing keys and scalars give an empty
// Config.
func (c Config) Sub(key string) Config {
	v, _ := c.lookup(key)
	section, _ := section(v)
	return New(section)
}

func (c Config) String(key, def string) string {
	if s, ok := c.get(key).(string); ok {
		return s
	}
	return def
}

func (c Config) Bool(key string, def bool) bool {
	if b, ok := c.get(key).(bool); ok {
		return b
	}
	return def
}

// Int accepts integers and floats without a fractional part.
func (c Config) Int(key string, def int) int {
	f, ok := number(c.get(key))
	if !ok || f != math.Trunc(f) {
		return def
	}
	return int(f)
}

func (c Config) Float(key string, def float64) float64 {
	if f, ok := number(c.get(key)); ok {
		return f
	}
	return def
}

// Duration accepts time.ParseDuration strings, time.Duration values and
// plain numbers, which count seconds.
func (c Config) Duration(key string, def time.Duration) time.Duration {
	switch v := c.get(key).(type) {
	case time.Duration:
		return v
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		return def
	}
	if secs, ok := number(c.get(key)); ok {
		return time.Duration(secs * float64(time.Second))
	}
	return def
}

// StringSlice returns def unless every element is a string.
func (c Config) StringSlice(key string, def []string) []string {
	switch v := c.get(key).(type) {
	case []string:
		return v
	case []any:
		out := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return def
			}
			out[i] = s
		}
		return out
	}
	return def
}

func (c Config) get(key string) any {
	v, _ := c.lookup(key)
	return v
}

// lookup prefers a literal key over a dotted path.
func (c Config) lookup(key string) (any, bool) {
	if v, ok := c.data[key]; ok {
		return v, true
	}
	if !strings.Contains(key, ".") {
		return nil, false
	}
	var cur any = c.data
	for _, part := range strings.Split(key, ".") {
		m, ok := section(cur)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// section normalizes the map shapes produced by the YAML and JSON decoders.
func section(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out, true
	}
	return nil, false
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
