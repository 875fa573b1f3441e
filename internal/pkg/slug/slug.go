// Package slug turns arbitrary titles into URL-safe identifiers.
package slug

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	disallowed    = regexp.MustCompile(`[^a-z0-9-]`)
	hyphenRun     = regexp.MustCompile(`-{2,}`)
)

// Generate lowercases s, replaces whitespace runs with a single hyphen,
// strips every character outside [a-z0-9-], collapses repeated hyphens
// and trims leading/trailing hyphens. The transform is total and
// idempotent: Generate(Generate(s)) == Generate(s).
func Generate(s string) string {
	out := strings.ToLower(strings.TrimSpace(s))
	out = whitespaceRun.ReplaceAllString(out, "-")
	out = disallowed.ReplaceAllString(out, "")
	out = hyphenRun.ReplaceAllString(out, "-")
	return strings.Trim(out, "-")
}

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Valid reports whether s is already a well-formed slug.
func Valid(s string) bool {
	return slugPattern.MatchString(s)
}
