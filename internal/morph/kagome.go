// Package morph adapts the kagome morphological analyzer with its bundled
// IPA dictionary to the segmenter's Tokenizer interface. Dictionary loading
// is the expensive part, so one Analyzer should be built at startup and
// shared; it is safe for concurrent use.
package morph

import (
	"fmt"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/nkotake/seion/internal/segmenter"
)

// Analyzer wraps a kagome tokenizer.
type Analyzer struct {
	t *tokenizer.Tokenizer
}

// New loads the IPA dictionary and builds the analyzer.
func New() (*Analyzer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("init kagome tokenizer: %w", err)
	}
	return &Analyzer{t: t}, nil
}

// Tokenize returns the morphemes of text with their top-level part of
// speech. Tokens with no dictionary entry keep an empty POS.
func (a *Analyzer) Tokenize(text string) []segmenter.Token {
	kts := a.t.Tokenize(text)
	out := make([]segmenter.Token, 0, len(kts))
	for _, kt := range kts {
		tok := segmenter.Token{Surface: kt.Surface}
		if pos := kt.POS(); len(pos) > 0 {
			tok.POS = pos[0]
		}
		out = append(out, tok)
	}
	return out
}
