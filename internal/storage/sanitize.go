package storage

import "strings"

// MaxSanitizedLen caps sanitized query labels so filenames stay manageable
const MaxSanitizedLen = 50

// SanitizeKey converts arbitrary query text into a filesystem- and
// object-key-safe token: alphanumerics, '_' and '-' pass through, everything
// else maps to '_'; leading/trailing underscores are stripped, the result is
// lowercased and truncated to MaxSanitizedLen characters. Distinct queries
// can collide after sanitization; that is accepted rather than defended
// against.
func SanitizeKey(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.ToLower(strings.Trim(b.String(), "_"))
	if len(out) > MaxSanitizedLen {
		// Truncation can expose a new trailing underscore; strip again so
		// the no-leading/trailing-underscore guarantee holds.
		out = strings.Trim(out[:MaxSanitizedLen], "_")
	}
	return out
}
