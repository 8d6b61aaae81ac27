// Package boilerplate detects running headers, footers and page numbers
// that recur across the pages of an extracted document. Detection is a
// population-level pass: it runs once over the whole page set and produces
// an immutable Set that every per-page cleaning call consults.
package boilerplate

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/nkotake/seion/internal/pagetext"
)

// Config controls detection behavior.
type Config struct {
	Window            int     // Non-empty lines inspected at each end of a page.
	ThresholdFraction float64 // Fraction of pages a signature must appear on.
	MaxLineLength     int     // Candidate cutoff in runes; longer lines are body text.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Window:            3,
		ThresholdFraction: 0.4,
		MaxLineLength:     120,
	}
}

// Set holds the detected boilerplate signatures, split by page position.
// A signature appears in at most one of the two groups.
type Set struct {
	headers map[string]struct{}
	footers map[string]struct{}
}

// Contains reports whether the signature was detected at either position.
func (s Set) Contains(sig string) bool {
	if _, ok := s.headers[sig]; ok {
		return true
	}
	_, ok := s.footers[sig]
	return ok
}

// IsHeader reports whether the signature was classified as a running header.
func (s Set) IsHeader(sig string) bool {
	_, ok := s.headers[sig]
	return ok
}

// IsFooter reports whether the signature was classified as a running footer.
func (s Set) IsFooter(sig string) bool {
	_, ok := s.footers[sig]
	return ok
}

// Size returns the total number of detected signatures.
func (s Set) Size() int {
	return len(s.headers) + len(s.footers)
}

// Detect finds line signatures that recur across the page set. For each page
// the first and last cfg.Window non-empty lines are candidates, deduplicated
// within the page so a signature counts at most once per page. A signature
// qualifies when it appears on at least max(2, ThresholdFraction×pages)
// pages; it is classified as header or footer by where it was seen more
// often, with ties going to footer. A single page can never produce
// boilerplate: cross-page repetition is impossible, so the result is empty.
func Detect(pages []pagetext.Page, cfg Config) Set {
	set := Set{
		headers: make(map[string]struct{}),
		footers: make(map[string]struct{}),
	}
	if len(pages) < 2 {
		return set
	}
	if cfg.Window <= 0 {
		cfg.Window = 3
	}
	if cfg.ThresholdFraction <= 0 {
		cfg.ThresholdFraction = 0.4
	}
	if cfg.MaxLineLength <= 0 {
		cfg.MaxLineLength = 120
	}

	pageCount := make(map[string]int)
	topCount := make(map[string]int)
	bottomCount := make(map[string]int)

	for _, page := range pages {
		top := windowSignatures(topLines(page.Lines, cfg.Window), cfg.MaxLineLength)
		bottom := windowSignatures(bottomLines(page.Lines, cfg.Window), cfg.MaxLineLength)

		seen := make(map[string]struct{}, len(top)+len(bottom))
		for sig := range top {
			topCount[sig]++
			seen[sig] = struct{}{}
		}
		for sig := range bottom {
			bottomCount[sig]++
			seen[sig] = struct{}{}
		}
		for sig := range seen {
			pageCount[sig]++
		}
	}

	threshold := math.Max(2, cfg.ThresholdFraction*float64(len(pages)))
	for sig, count := range pageCount {
		if float64(count) < threshold {
			continue
		}
		if topCount[sig] > bottomCount[sig] {
			set.headers[sig] = struct{}{}
		} else {
			set.footers[sig] = struct{}{}
		}
	}
	return set
}

// windowSignatures maps the candidate lines of one page window to their
// deduplicated signatures.
func windowSignatures(lines []string, maxLen int) map[string]struct{} {
	sigs := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || utf8.RuneCountInString(trimmed) > maxLen {
			continue
		}
		if sig := Signature(trimmed); sig != "" {
			sigs[sig] = struct{}{}
		}
	}
	return sigs
}

func topLines(lines []string, k int) []string {
	out := make([]string, 0, k)
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
		if len(out) == k {
			break
		}
	}
	return out
}

func bottomLines(lines []string, k int) []string {
	out := make([]string, 0, k)
	for i := len(lines) - 1; i >= 0 && len(out) < k; i-- {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		out = append(out, lines[i])
	}
	return out
}
