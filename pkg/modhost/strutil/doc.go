/*
Package strutil provides the small string helpers modules use to interpret
configuration text and host commands.

All case handling is restricted to 7-bit ASCII. Bytes outside that range are
passed through unchanged, so names and settings behave identically no matter
which code page the host used to produce them.

# Conversions

	strutil.ToBool("TRUE")             // true, true
	strutil.ToBool("yes")              // false, false
	strutil.ToInteger[uint8]("0x7A")   // 122, true
	strutil.ToInteger[int]("-017")     // -15, true (octal)
	strutil.ToInteger[int8]("300")     // 0, false (out of range)

Integer text may carry a leading sign. The base is taken from the prefix:
"0x" or "0X" selects hexadecimal, a leading "0" followed by more digits
selects octal, and anything else is decimal.
*/
package strutil
