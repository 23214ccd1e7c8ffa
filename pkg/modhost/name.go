package modhost

import "github.com/randalmurphal/modhost/pkg/modhost/strutil"

// Normalize returns the canonical form of a module name: surrounding
// whitespace removed and ASCII letters folded to lower case.
// Bytes outside 7-bit ASCII are left untouched.
func Normalize(name string) string {
	return strutil.ToLower(strutil.Trim(name))
}
