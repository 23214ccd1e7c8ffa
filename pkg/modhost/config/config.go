package config

import "github.com/randalmurphal/modhost/pkg/modhost/strutil"

// Config wraps a map[string]any for type-safe value extraction.
// All accessor methods return default values if the key is missing
// or the value cannot be converted to the requested type.
type Config struct {
	data map[string]any
}

// New creates a Config from the given map.
// If data is nil, an empty Config is returned.
func New(data map[string]any) Config {
	if data == nil {
		data = make(map[string]any)
	}
	return Config{data: data}
}

// Section returns the nested settings stored under name.
//
// Section names are matched after trimming and folding ASCII case, so a
// file may spell a module "[Radar]" or "radar". An exact key match wins
// over a folded one. A missing or non-map section yields an empty Config.
func (c Config) Section(name string) Config {
	if v, ok := c.data[name]; ok {
		return sectionOf(v)
	}
	// Several keys may fold to the same name; the lowest one wins.
	want := strutil.ToLower(strutil.Trim(name))
	match, found := "", false
	for k := range c.data {
		if strutil.ToLower(strutil.Trim(k)) == want && (!found || k < match) {
			match, found = k, true
		}
	}
	if !found {
		return New(nil)
	}
	return sectionOf(c.data[match])
}

func sectionOf(v any) Config {
	switch m := v.(type) {
	case map[string]any:
		return New(m)
	case Config:
		return m
	}
	return New(nil)
}

// String returns the string value for key, or defaultVal if missing or not a string.
func (c Config) String(key, defaultVal string) string {
	v, ok := c.data[key]
	if !ok {
		return defaultVal
	}
	if s, ok := v.(string); ok {
		return s
	}
	return defaultVal
}

// Bool returns the boolean value for key, or defaultVal if missing or not convertible.
//
// Accepts:
//   - bool: used directly
//   - string: "true" or "false" in any ASCII case, surrounding whitespace ignored
func (c Config) Bool(key string, defaultVal bool) bool {
	v, ok := c.data[key]
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		if b, ok := strutil.ToBool(strutil.Trim(val)); ok {
			return b
		}
	}
	return defaultVal
}

// Int returns the integer value for key, or defaultVal if missing or not convertible.
//
// Accepts:
//   - int: used directly
//   - int64: converted to int
//   - float64: converted to int (truncated, only if no fractional part)
//   - string: decimal, 0-prefixed octal or 0x-prefixed hexadecimal text
func (c Config) Int(key string, defaultVal int) int {
	v, ok := c.data[key]
	if !ok {
		return defaultVal
	}
	if n, ok := toInt(v); ok {
		return n
	}
	return defaultVal
}

func toInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		// Only convert if there's no fractional part
		if val == float64(int(val)) {
			return int(val), true
		}
	case string:
		return strutil.ToInteger[int](strutil.Trim(val))
	}
	return 0, false
}

// IntSlice returns the integer slice for key, or defaultVal if missing or
// if any element is not convertible. Elements follow the rules of Int.
func (c Config) IntSlice(key string, defaultVal []int) []int {
	v, ok := c.data[key]
	if !ok {
		return defaultVal
	}
	var items []any
	switch val := v.(type) {
	case []int:
		return val
	case []string:
		for _, s := range val {
			items = append(items, s)
		}
	case []any:
		items = val
	default:
		return defaultVal
	}

	result := make([]int, 0, len(items))
	for _, item := range items {
		n, ok := toInt(item)
		if !ok {
			return defaultVal
		}
		result = append(result, n)
	}
	return result
}

// Has returns true if the key exists in the config.
func (c Config) Has(key string) bool {
	_, ok := c.data[key]
	return ok
}

// Raw returns the underlying map.
// The returned map should not be modified.
func (c Config) Raw() map[string]any {
	return c.data
}
