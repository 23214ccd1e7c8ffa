package modules

import (
	"fmt"
	"slices"
	"strings"

	"github.com/randalmurphal/modhost/pkg/modhost/config"
	"github.com/randalmurphal/modhost/pkg/modhost/strutil"
)

// byteSet reads a list of byte values (key codes, packet opcodes) from key.
// Elements may be integers or integer text in any supported base.
func byteSet(cfg config.Config, key string) (map[byte]bool, error) {
	set := make(map[byte]bool)
	if !cfg.Has(key) {
		return set, nil
	}
	values := cfg.IntSlice(key, nil)
	if values == nil {
		return set, fmt.Errorf("%s: expected a list of integers", key)
	}
	for _, v := range values {
		if v < 0 || v > 0xFF {
			return set, fmt.Errorf("%s: %d out of range 0-255", key, v)
		}
		set[byte(v)] = true
	}
	return set, nil
}

// parseByte parses one byte value typed by a user, e.g. "0x7A" or "122".
func parseByte(s string) (byte, bool) {
	return strutil.ToInteger[uint8](strutil.Trim(s))
}

// command splits user input into a lower-cased verb and its argument.
func command(msg string) (verb, arg string) {
	msg = strutil.Trim(msg)
	verb, arg, _ = strings.Cut(msg, " ")
	return strutil.ToLower(verb), strutil.Trim(arg)
}

// formatBytes renders a byte set as sorted hexadecimal values.
func formatBytes(set map[byte]bool) string {
	keys := make([]byte, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("0x%02X", k)
	}
	return strings.Join(parts, " ")
}
