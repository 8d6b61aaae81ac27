package segmenter

import (
	"regexp"
	"strings"
)

// Clause boundaries worth a breath: case particles followed by a comma,
// noun-modifying connectives, and copula forms with a comma.
var (
	particleBreakRe   = regexp.MustCompile(`(は、|が、|を、|に、|で、|と、|から、|まで、|より、)`)
	connectiveBreakRe = regexp.MustCompile(`(という|といった|などの|ような|ために)`)
	copulaBreakRe     = regexp.MustCompile(`(であり、|であって、|ですが、|ですけれど、)`)
)

var clauseBlankRunRe = regexp.MustCompile(`\n{2,}`)

// minClauseRunes keeps fragments produced by aggressive break insertion from
// standing alone as lines.
const minClauseRunes = 10

// segmentClause inserts newlines after clause markers and then folds the
// fragments too short to read naturally back into their predecessors. Unlike
// the punctuation cascade this strategy ignores the length limits.
func (s *Segmenter) segmentClause(text string) []string {
	text = particleBreakRe.ReplaceAllString(text, "$1\n")
	text = copulaBreakRe.ReplaceAllString(text, "$1\n")
	text = connectiveBreakRe.ReplaceAllString(text, "$1\n")
	text = clauseBlankRunRe.ReplaceAllString(text, "\n")

	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if runeLen(line) < minClauseRunes && len(out) > 0 {
			out[len(out)-1] += line
			continue
		}
		out = append(out, line)
	}
	return out
}
