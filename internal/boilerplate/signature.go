package boilerplate

import (
	"regexp"
	"strings"
)

var (
	dateRe  = regexp.MustCompile(`\d{4}[年/-]\d{1,2}[月/-]\d{1,2}日?`)
	digitRe = regexp.MustCompile(`\d+`)
)

// Signature normalizes a line for cross-page comparison. Date-like patterns
// and digit runs are replaced with placeholders so that "Page 3" and
// "Page 47", or dated running headers, count as the same recurring pattern.
// Dates are generalized before digit runs, otherwise the digits inside a
// date would already be gone when the date pattern is applied.
func Signature(line string) string {
	s := dateRe.ReplaceAllString(strings.TrimSpace(line), "[DATE]")
	s = digitRe.ReplaceAllString(s, "[NUM]")
	return strings.Join(strings.Fields(s), " ")
}
