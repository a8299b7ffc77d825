// Package namer resolves task descriptions into session and branch names.
package namer

import (
	"strings"
	"unicode"
)

// Sanitize normalizes a raw name into a slug that is valid both as a git
// branch name and as a tmux session name: lowercase, alphanumeric runs
// joined by single dashes, no leading or trailing dashes. maxLen bounds the
// result in runes; zero means unbounded. The result is stable for a given
// input and may be empty when the input has no alphanumeric content.
func Sanitize(name string, maxLen int) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	lowered = strings.TrimLeft(lowered, "-_ ")

	var b strings.Builder
	previousDash := false
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			previousDash = false
		} else if !previousDash {
			b.WriteByte('-')
			previousDash = true
		}
	}

	sanitized := strings.Trim(b.String(), "-")
	if maxLen > 0 {
		runes := []rune(sanitized)
		if len(runes) > maxLen {
			sanitized = strings.TrimRight(string(runes[:maxLen]), "-")
		}
	}
	return sanitized
}
