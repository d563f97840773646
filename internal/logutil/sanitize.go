package logutil

import "strings"

// SanitizeForLog strips newlines and other control characters from
// operator-provided strings so a crafted tunnel name or hostname cannot
// inject fake log entries.
func SanitizeForLog(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case r < 32:
			return -1
		default:
			return r
		}
	}, s)
}
