package segmenter

import "strings"

// Connective expressions tried, in order, when a comma-free run still
// exceeds the length limit.
var connectives = []string{"が、", "けれど", "しかし", "また、", "そして", "ので", "から"}

// segmentPunctuation is the default cascade: sentences first, then commas,
// then connectives. Pieces that still exceed the limit after all three
// stages are emitted as-is rather than cut mid-word.
func (s *Segmenter) segmentPunctuation(text string, maxLen int) []string {
	var chunks []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, sentence := range splitSentences(line) {
			if runeLen(sentence) <= maxLen {
				chunks = append(chunks, sentence)
				continue
			}
			chunks = append(chunks, splitOnComma(sentence, maxLen)...)
		}
	}
	return mergeShort(chunks, s.cfg.MinLineLength, maxLen)
}

// splitSentences cuts after 。！？, keeping the delimiter with its sentence.
func splitSentences(line string) []string {
	var out []string
	var b strings.Builder
	for _, r := range line {
		b.WriteRune(r)
		if r == '。' || r == '！' || r == '？' {
			if s := strings.TrimSpace(b.String()); s != "" {
				out = append(out, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		out = append(out, s)
	}
	return out
}

// splitOnComma packs comma-delimited pieces greedily up to maxLen. A single
// piece longer than maxLen is handed to the connective stage.
func splitOnComma(sentence string, maxLen int) []string {
	parts := strings.SplitAfter(sentence, "、")
	var out []string
	var cur strings.Builder
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}
	for _, part := range parts {
		if runeLen(part) > maxLen {
			flush()
			out = append(out, splitOnConnective(part, maxLen)...)
			continue
		}
		if cur.Len() > 0 && runeLen(cur.String())+runeLen(part) > maxLen {
			flush()
		}
		cur.WriteString(part)
	}
	flush()
	return out
}

// splitOnConnective breaks after the first connective found in the piece and
// recurses on the remainder. With no connective present the piece is
// returned whole.
func splitOnConnective(piece string, maxLen int) []string {
	piece = strings.TrimSpace(piece)
	if piece == "" {
		return nil
	}
	if runeLen(piece) <= maxLen {
		return []string{piece}
	}
	for _, conn := range connectives {
		idx := strings.Index(piece, conn)
		if idx < 0 {
			continue
		}
		cut := idx + len(conn)
		if cut >= len(piece) {
			continue
		}
		head := strings.TrimSpace(piece[:cut])
		rest := splitOnConnective(piece[cut:], maxLen)
		return append([]string{head}, rest...)
	}
	return []string{piece}
}

// mergeShort runs a forward pass folding undersized chunks into a neighbor
// whenever the combined chunk still fits maxLen. A trailing chunk may stay
// short when nothing can absorb it.
func mergeShort(chunks []string, minLen, maxLen int) []string {
	if minLen <= 0 || len(chunks) < 2 {
		return chunks
	}
	var out []string
	for _, chunk := range chunks {
		if len(out) > 0 {
			prev := out[len(out)-1]
			if (runeLen(prev) < minLen || runeLen(chunk) < minLen) &&
				runeLen(prev)+runeLen(chunk) <= maxLen {
				out[len(out)-1] = prev + chunk
				continue
			}
		}
		out = append(out, chunk)
	}
	return out
}
