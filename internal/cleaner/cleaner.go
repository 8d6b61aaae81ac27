// Package cleaner strips non-prose content from one page's lines: detected
// boilerplate, structural headings and page numbers, and the extraction
// metadata preamble. What remains is normalized and keeps its paragraph
// breaks. Cleaning never fails; a page can at worst come back empty.
package cleaner

import (
	"strings"

	"github.com/nkotake/seion/internal/boilerplate"
	"github.com/nkotake/seion/internal/pagetext"
	"github.com/nkotake/seion/internal/structural"
	"github.com/nkotake/seion/internal/textnorm"
)

// DefaultPreambleMarkers are the line prefixes of the metadata preamble some
// extraction tools prepend to each page. The preamble ends at a ==========
// separator line.
var DefaultPreambleMarkers = []string{"PDFファイル:", "ページ番号:"}

const preambleSeparator = "=========="

// Options controls per-page cleaning.
type Options struct {
	StripStructural bool     // Remove headings and sidebar titles, not just page numbers.
	Aggressive      bool     // Aggressive whitespace normalization (strips indentation).
	PreambleMarkers []string // Line prefixes that open a metadata preamble; nil selects defaults.
}

// DefaultOptions returns the cleaning defaults.
func DefaultOptions() Options {
	return Options{
		StripStructural: true,
		Aggressive:      true,
	}
}

// Clean removes boilerplate and structural lines from a page and normalizes
// the rest. Retained lines keep their original order; consecutive blank
// lines collapse to one; removing a heading also removes a directly
// following blank line so the surrounding gap goes with it. The returned
// text is empty when nothing but noise was on the page.
func Clean(page pagetext.Page, set boilerplate.Set, cls *structural.Classifier, opts Options) string {
	markers := opts.PreambleMarkers
	if markers == nil {
		markers = DefaultPreambleMarkers
	}
	lines := StripPreamble(page.Lines, markers)

	var structuralIdx map[int]bool
	if opts.StripStructural {
		structuralIdx = cls.StructuralIndices(lines)
	}

	kept := make([]string, 0, len(lines))
	skipNext := false
	for i, line := range lines {
		if skipNext {
			skipNext = false
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if len(kept) > 0 && kept[len(kept)-1] != "" {
				kept = append(kept, "")
			}
			continue
		}

		if set.Contains(boilerplate.Signature(trimmed)) {
			continue
		}

		if opts.StripStructural && structuralIdx[i] {
			// Drop the blank line after a removed heading too.
			if i+1 < len(lines) && strings.TrimSpace(lines[i+1]) == "" {
				skipNext = true
			}
			continue
		}

		// Page numbers are noise regardless of StripStructural.
		if cls.IsPageNumber(trimmed) {
			continue
		}

		kept = append(kept, line)
	}

	// Trim a trailing blank left by removals.
	for len(kept) > 0 && kept[len(kept)-1] == "" {
		kept = kept[:len(kept)-1]
	}

	text := strings.Join(kept, "\n")
	text = textnorm.RemoveMeaninglessSpaces(text)
	return textnorm.Clean(text, opts.Aggressive)
}

// StripPreamble removes a recognized metadata preamble from the head of a
// page: lines starting with one of the markers and everything up to the
// separator line that closes the block. Pages without a preamble pass
// through untouched.
func StripPreamble(lines []string, markers []string) []string {
	out := make([]string, 0, len(lines))
	skipping := false
	for _, line := range lines {
		if hasAnyPrefix(line, markers) {
			skipping = true
			continue
		}
		if skipping && strings.HasPrefix(line, preambleSeparator) {
			skipping = false
			continue
		}
		if !skipping {
			out = append(out, line)
		}
	}
	return out
}

func hasAnyPrefix(line string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
