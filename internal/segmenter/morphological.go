package segmenter

import "strings"

// sentenceEnders also terminate a chunk in the morphological strategy.
var sentenceEnders = map[string]bool{"。": true, "！": true, "？": true}

// segmentMorphological accumulates morphemes and breaks at the first
// particle or punctuation boundary once the chunk approaches the length
// limit. Boundaries inside a word never occur because only whole token
// surfaces are appended.
func (s *Segmenter) segmentMorphological(text string) []string {
	var chunks []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		chunks = append(chunks, s.splitByTokens(line)...)
	}
	return mergeShort(chunks, s.cfg.MinLineLength, s.cfg.MaxLineLength)
}

func (s *Segmenter) splitByTokens(line string) []string {
	tokens := s.tokenizer.Tokenize(line)
	if len(tokens) == 0 {
		return []string{line}
	}

	var out []string
	var cur strings.Builder
	curRunes := 0
	flush := func() {
		if piece := strings.TrimSpace(cur.String()); piece != "" {
			out = append(out, piece)
		}
		cur.Reset()
		curRunes = 0
	}

	for _, tok := range tokens {
		cur.WriteString(tok.Surface)
		curRunes += runeLen(tok.Surface)

		if sentenceEnders[tok.Surface] {
			flush()
			continue
		}
		if curRunes < s.cfg.MaxLineLength {
			continue
		}
		// Over the limit: break at the next natural boundary.
		if tok.POS == "助詞" || tok.POS == "記号" || strings.HasSuffix(tok.Surface, "、") {
			flush()
		}
	}
	flush()
	return out
}
