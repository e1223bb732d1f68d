// Package course canonicalizes free-text course identifiers so that
// equality-based matching works regardless of how a student typed them.
package course

import (
	"strings"
	"unicode"
)

// Normalize returns the canonical form of a course identifier: all
// whitespace removed, uppercased. "cse 101" and "CSE101" normalize to the
// same value. The function is idempotent and must be applied at every write
// path and at lookup time, never in only one of the two.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// NormalizeSection canonicalizes section and discussion codes. Unlike course
// identifiers, internal whitespace never appears in section codes, so a trim
// plus uppercase is enough.
func NormalizeSection(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
