// Package textnorm canonicalizes whitespace in text extracted from paged
// documents. PDF extraction leaves layout artifacts behind: invisible
// characters, full-width spaces used for alignment, and spaces injected
// between characters that were never separated in the source. Both passes
// here are pure and idempotent.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	// Zero-width spaces, joiners, word joiner, BOM.
	invisibleRe = regexp.MustCompile(`[\x{200B}\x{200C}\x{200D}\x{2060}\x{FEFF}]`)

	multiSpaceRe = regexp.MustCompile(` {2,}`)

	// A space before closing punctuation or after opening punctuation is an
	// extraction artifact.
	spaceBeforeCloserRe = regexp.MustCompile(` ([。、！？）」』】)])`)
	spaceAfterOpenerRe  = regexp.MustCompile(`([（「『【(]) `)

	// A space directly between two Japanese-script characters.
	japaneseGapRe = regexp.MustCompile(`([ぁ-ゔァ-ヶー一-龠々〆〇]) +([ぁ-ゔァ-ヶー一-龠々〆〇])`)

	blankRunRe = regexp.MustCompile(`\n{3,}`)
)

// Clean normalizes whitespace in text. A run of ideographic spaces at the
// start of a line is intentional indentation and survives unless aggressive
// is set; mid-line ideographic spaces always become ordinary spaces. In
// aggressive mode, spaces between two Japanese-script characters are removed
// entirely. Malformed or empty input comes back unchanged; Clean never
// fails.
func Clean(text string, aggressive bool) string {
	text = invisibleRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\t", " ")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		stripped := strings.TrimLeft(line, "　")
		indent := line[:len(line)-len(stripped)]

		stripped = strings.ReplaceAll(stripped, "　", " ")
		stripped = multiSpaceRe.ReplaceAllString(stripped, " ")
		stripped = spaceBeforeCloserRe.ReplaceAllString(stripped, "$1")
		stripped = spaceAfterOpenerRe.ReplaceAllString(stripped, "$1")

		if aggressive {
			stripped = closeJapaneseGaps(stripped)
		}

		if !aggressive && indent != "" {
			cleaned = append(cleaned, strings.TrimRight(indent+stripped, " \t　"))
		} else {
			cleaned = append(cleaned, strings.TrimSpace(stripped))
		}
	}
	text = strings.Join(cleaned, "\n")

	text = blankRunRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// closeJapaneseGaps removes spaces between Japanese-script characters. The
// replacement is repeated until a fixed point so that chains like
// "あ い う" collapse fully in one call.
func closeJapaneseGaps(line string) string {
	for {
		next := japaneseGapRe.ReplaceAllString(line, "$1$2")
		if next == line {
			return line
		}
		line = next
	}
}
