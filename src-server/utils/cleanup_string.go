package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize a user-supplied display name: trim spaces, title-case,
// drop a trailing period. The caser is built per call, it is not safe
// for concurrent use.
func CleanupString(s string) string {
	s = strings.TrimSpace(s)
	s = cases.Title(language.English).String(s)
	return strings.TrimSuffix(s, ".")
}
