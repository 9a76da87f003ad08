package internal

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"unicode"
)

// Version is the wordsmith release, overridden at build time with
// -ldflags "-X codeberg.org/snonux/wordsmith/internal.Version=...".
var Version = "0.1.0"

// MediaName returns a stable file base name for media belonging to word.
// Format: sanitized(word)_md5(lower(word))[:8]
func MediaName(word string) string {
	hash := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(word))))
	return SanitizeFilename(strings.TrimSpace(word)) + "_" + hex.EncodeToString(hash[:])[:8]
}

// SanitizeFilename creates a safe filename from a string
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
