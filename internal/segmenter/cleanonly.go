package segmenter

import (
	"strings"

	"github.com/nkotake/seion/internal/textnorm"
)

// hybridMaxRunes is the fixed limit of the hybrid strategy, chosen for
// comfortable subtitle-length synthesis lines.
const hybridMaxRunes = 45

// segmentHybrid renormalizes whitespace and runs the punctuation cascade
// with the fixed hybrid limit, ignoring the configured maximum.
func (s *Segmenter) segmentHybrid(text string) []string {
	text = textnorm.RemoveMeaninglessSpaces(text)
	text = textnorm.Clean(text, true)
	return s.segmentPunctuation(text, hybridMaxRunes)
}

// Thresholds of the conservative strategy: lines longer than
// cleanOnlyLineLimit break at sentence enders, and sentence pieces both
// longer than cleanOnlyCommaLimit and holding more than three commas break
// after every third comma.
const (
	cleanOnlyLineLimit  = 80
	cleanOnlyCommaLimit = 60
	cleanOnlyCommaGroup = 3
)

// segmentCleanOnly normalizes aggressively but leaves line structure alone
// except where a line is too long to synthesize in one piece.
func (s *Segmenter) segmentCleanOnly(text string) []string {
	text = textnorm.RemoveMeaninglessSpaces(text)
	text = textnorm.Clean(text, true)

	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if runeLen(line) <= cleanOnlyLineLimit {
			out = append(out, line)
			continue
		}
		for _, sentence := range splitSentences(line) {
			if runeLen(sentence) > cleanOnlyCommaLimit && strings.Count(sentence, "、") > cleanOnlyCommaGroup {
				out = append(out, splitEveryNthComma(sentence, cleanOnlyCommaGroup)...)
			} else {
				out = append(out, sentence)
			}
		}
	}
	return out
}

// splitEveryNthComma cuts after every n-th comma, keeping the comma on the
// preceding piece.
func splitEveryNthComma(sentence string, n int) []string {
	parts := strings.SplitAfter(sentence, "、")
	var out []string
	var cur strings.Builder
	count := 0
	for _, part := range parts {
		cur.WriteString(part)
		if strings.HasSuffix(part, "、") {
			count++
			if count == n {
				out = append(out, strings.TrimSpace(cur.String()))
				cur.Reset()
				count = 0
			}
		}
	}
	if piece := strings.TrimSpace(cur.String()); piece != "" {
		out = append(out, piece)
	}
	return out
}
