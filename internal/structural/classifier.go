// Package structural classifies short non-prose lines: chapter and section
// headings, bare page numbers, and the duplicated sidebar titles that PDF
// extraction tends to emit twice. Classification is per page and stateless.
package structural

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Division keywords that mark a short line as a heading, in native and
// transliterated forms.
var defaultKeywords = []string{
	"第", "章", "節", "部", "編", "項", "条", "款", "号",
	"Chapter", "Section", "Part",
}

// Heading shapes that identify a structural line regardless of length.
var chapterPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^第[一二三四五六七八九十\d]+章`),
	regexp.MustCompile(`^第[一二三四五六七八九十\d]+節`),
	regexp.MustCompile(`^第[一二三四五六七八九十\d]+部`),
	regexp.MustCompile(`^\d+\.\d+`),
	regexp.MustCompile(`^\d+章`),
	regexp.MustCompile(`^\d+節`),
	regexp.MustCompile(`^Chapter\s+\d+`),
	regexp.MustCompile(`^Section\s+\d+`),
	regexp.MustCompile(`^Part\s+\d+`),
}

// Page-number shapes: bare integers, hyphen-wrapped, bracketed, P.-prefixed,
// and the ページ suffix/prefix forms.
var pageNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+$`),
	regexp.MustCompile(`^[-‐]\s*\d+\s*[-‐]$`),
	regexp.MustCompile(`^\[\s*\d+\s*\]$`),
	regexp.MustCompile(`^\(\s*\d+\s*\)$`),
	regexp.MustCompile(`^[Pp]\.\s*\d+$`),
	regexp.MustCompile(`^\d+\s*ページ$`),
	regexp.MustCompile(`^ページ\s*\d+$`),
}

// duplicateWindow is how many preceding lines are checked for an exact
// repeat of a short heading.
const duplicateWindow = 5

// shortDuplicateCutoff bounds the duplicate-heading rule.
const shortDuplicateCutoff = 30

// Classifier decides whether a line is document structure rather than prose.
// The keyword and pattern lists are fixed data; the short-line cutoff is the
// only tunable.
type Classifier struct {
	shortLineCutoff int
	keywords        []string
}

// NewClassifier returns a classifier with the given short-line cutoff in
// runes. A non-positive cutoff selects the default of 20.
func NewClassifier(shortLineCutoff int) *Classifier {
	if shortLineCutoff <= 0 {
		shortLineCutoff = 20
	}
	return &Classifier{
		shortLineCutoff: shortLineCutoff,
		keywords:        defaultKeywords,
	}
}

// IsStructural reports whether a single line, viewed in isolation, is
// structure rather than prose. It never fails: anything it cannot classify
// is prose.
func (c *Classifier) IsStructural(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	for _, re := range chapterPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	if c.IsPageNumber(line) {
		return true
	}
	return c.isShortHeading(line)
}

// IsPageNumber reports whether the line is one of the bare page-number
// shapes. Page numbers are noise even when heading stripping is disabled.
func (c *Classifier) IsPageNumber(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	for _, re := range pageNumberPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func (c *Classifier) isShortHeading(line string) bool {
	if utf8.RuneCountInString(line) > c.shortLineCutoff {
		return false
	}
	for _, kw := range c.keywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}

// StructuralIndices is the page-level variant: it returns the set of line
// indices judged structural within the context of the whole page. The
// keyword rule additionally requires a blank (or absent) neighbor so that
// keyword-bearing prose inside a paragraph is not misclassified, and a short
// line exactly repeating one of the previous five lines is flagged as a
// duplicated heading.
func (c *Classifier) StructuralIndices(lines []string) map[int]bool {
	indices := make(map[int]bool)
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if c.IsPageNumber(trimmed) {
			indices[i] = true
			continue
		}

		for _, re := range chapterPatterns {
			if re.MatchString(trimmed) {
				indices[i] = true
				break
			}
		}
		if indices[i] {
			continue
		}

		if c.isShortHeading(trimmed) {
			prevBlank := i == 0 || strings.TrimSpace(lines[i-1]) == ""
			nextBlank := i == len(lines)-1 || strings.TrimSpace(lines[i+1]) == ""
			if prevBlank || nextBlank {
				indices[i] = true
				continue
			}
		}

		if utf8.RuneCountInString(trimmed) < shortDuplicateCutoff {
			for j := max(0, i-duplicateWindow); j < i; j++ {
				if strings.TrimSpace(lines[j]) == trimmed {
					indices[i] = true
					break
				}
			}
		}
	}
	return indices
}
