package textnorm

import (
	"regexp"
	"strings"
)

// Unicode space variants that extraction tools emit in place of an ordinary
// space. The ideographic space (U+3000) is deliberately absent: it can carry
// meaning (indentation) and is handled by Clean.
var spaceVariantReplacer = strings.NewReplacer(
	" ", " ", // no-break space
	" ", " ", // ogham space mark
	" ", " ", " ", " ", " ", " ", " ", " ", " ", " ",
	" ", " ", " ", " ", " ", " ", " ", " ", " ", " ",
	" ", " ", // hair space
	" ", " ", // narrow no-break space
	" ", " ", // medium mathematical space
)

var (
	gapBeforeCloserRe = regexp.MustCompile(`([ぁ-ゔァ-ヶー一-龠]) +([。、！？」』）】])`)
	gapAfterOpenerRe  = regexp.MustCompile(`([「『（【]) +([ぁ-ゔァ-ヶー一-龠])`)

	// A space between a digit and a unit counter (year, month, day, hour,
	// minute, second, yen, item counters).
	digitUnitGapRe = regexp.MustCompile(`(\d) +([年月日時分秒円個本枚冊])`)
)

// RemoveMeaninglessSpaces strips spaces that carry no meaning in Japanese
// text: space variants are unified, every line is trimmed, spaces inside
// Japanese script and around punctuation are dropped, and digit/unit gaps
// are closed. Runs of blank lines collapse to a single blank line. The pass
// is idempotent.
func RemoveMeaninglessSpaces(text string) string {
	text = spaceVariantReplacer.Replace(text)

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			cleaned = append(cleaned, "")
			continue
		}

		line = closeJapaneseGaps(line)
		line = gapBeforeCloserRe.ReplaceAllString(line, "$1$2")
		line = gapAfterOpenerRe.ReplaceAllString(line, "$1$2")
		line = digitUnitGapRe.ReplaceAllString(line, "$1$2")
		line = multiSpaceRe.ReplaceAllString(line, " ")

		cleaned = append(cleaned, line)
	}

	result := make([]string, 0, len(cleaned))
	prevEmpty := false
	for _, line := range cleaned {
		if line == "" {
			if !prevEmpty {
				result = append(result, line)
				prevEmpty = true
			}
			continue
		}
		result = append(result, line)
		prevEmpty = false
	}
	return strings.Join(result, "\n")
}
