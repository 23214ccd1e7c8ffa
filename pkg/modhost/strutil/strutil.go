package strutil

import (
	"strconv"
	"strings"
	"unsafe"
)

// Integer is the set of integer types ToInteger can produce.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// whitespace matches the C locale's isspace set.
const whitespace = " \t\n\v\f\r"

// ToLowerChar returns the lowercase form of an uppercase ASCII letter.
// Any other byte is returned unchanged.
func ToLowerChar(ch byte) byte {
	if ch >= 'A' && ch <= 'Z' {
		return ch + ('a' - 'A')
	}
	return ch
}

// ToLower returns a copy of s with every uppercase 7-bit ASCII letter
// converted to lowercase.
func ToLower(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				b[j] = ToLowerChar(b[j])
			}
			return string(b)
		}
	}
	return s
}

// Trim returns s with leading and trailing whitespace removed.
func Trim(s string) string {
	return strings.Trim(s, whitespace)
}

// ToBool reports the boolean named by s. Only "true" and "false" are
// recognized, compared case-insensitively. ok is false for anything else.
func ToBool(s string) (value bool, ok bool) {
	switch ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// IsDecimalDigit reports whether ch is '0' through '9'.
func IsDecimalDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// IsOctalDigit reports whether ch is '0' through '7'.
func IsOctalDigit(ch byte) bool {
	return ch >= '0' && ch <= '7'
}

// IsHexDigit reports whether ch is a hexadecimal digit of either case.
func IsHexDigit(ch byte) bool {
	return IsDigitOfBase(ch, 16)
}

// IsDigitOfBase reports whether ch is a valid digit in the given base.
// Bases outside [1, 36] never have valid digits.
func IsDigitOfBase(ch byte, base int) bool {
	v, ok := digitValue(ch)
	return ok && base >= 1 && base <= 36 && v < base
}

func digitValue(ch byte) (int, bool) {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0'), true
	case ch >= 'a' && ch <= 'z':
		return int(ch-'a') + 10, true
	case ch >= 'A' && ch <= 'Z':
		return int(ch-'A') + 10, true
	}
	return 0, false
}

// splitSign separates an optional leading '+' or '-' from s.
func splitSign(s string) (sign string, rest string) {
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		return s[:1], s[1:]
	}
	return "", s
}

// IntegerBaseFromPrefix detects the base of s from its prefix alone.
// Only octal, decimal and hexadecimal are detected.
func IntegerBaseFromPrefix(s string) (int, bool) {
	_, s = splitSign(s)
	switch {
	case len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X'):
		return 16, true
	case len(s) >= 2 && s[0] == '0':
		return 8, true
	case len(s) >= 1 && IsDecimalDigit(s[0]):
		return 10, true
	}
	return 0, false
}

// IntegerBase detects the base of s and checks that every digit after the
// prefix is valid for it.
func IntegerBase(s string) (int, bool) {
	base, ok := IntegerBaseFromPrefix(s)
	if !ok {
		return 0, false
	}
	_, digits := splitSign(s)
	digits = stripPrefix(digits, base)
	if digits == "" {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if !IsDigitOfBase(digits[i], base) {
			return 0, false
		}
	}
	return base, true
}

func stripPrefix(digits string, base int) string {
	switch base {
	case 16:
		return digits[2:]
	case 8:
		return digits[1:]
	}
	return digits
}

// ToInteger converts s to T, detecting the base from its prefix.
// ok is false when s is not a number or does not fit in T.
func ToInteger[T Integer](s string) (T, bool) {
	v, _, ok := parseInteger[T](s)
	return v, ok
}

func parseInteger[T Integer](s string) (T, int, bool) {
	base, ok := IntegerBase(s)
	if !ok {
		return 0, 0, false
	}
	sign, digits := splitSign(s)
	digits = stripPrefix(digits, base)

	var zero T
	bits := int(unsafe.Sizeof(zero)) * 8
	if ^zero < 0 {
		n, err := strconv.ParseInt(sign+digits, base, bits)
		if err != nil {
			return 0, 0, false
		}
		return T(n), base, true
	}

	if sign == "-" {
		n, err := strconv.ParseUint(digits, base, bits)
		if err != nil || n != 0 {
			return 0, 0, false
		}
		return 0, base, true
	}
	n, err := strconv.ParseUint(digits, base, bits)
	if err != nil {
		return 0, 0, false
	}
	return T(n), base, true
}

// IsDecimal reports whether s is a decimal number representable as T.
func IsDecimal[T Integer](s string) bool {
	_, base, ok := parseInteger[T](s)
	return ok && base == 10
}

// IsHex reports whether s is a "0x"-prefixed number representable as T.
func IsHex[T Integer](s string) bool {
	_, base, ok := parseInteger[T](s)
	return ok && base == 16
}

// IsOctal reports whether s is a "0"-prefixed octal number representable as T.
func IsOctal[T Integer](s string) bool {
	_, base, ok := parseInteger[T](s)
	return ok && base == 8
}

// ToIntegerFromDigit converts a single digit in the given base to T.
func ToIntegerFromDigit[T Integer](ch byte, base int) (T, bool) {
	if !IsDigitOfBase(ch, base) {
		return 0, false
	}
	v, _ := digitValue(ch)
	t := T(v)
	if int(t) != v {
		return 0, false
	}
	return t, true
}
