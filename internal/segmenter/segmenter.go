// Package segmenter turns cleaned Japanese prose into short lines sized for
// speech synthesis. Five strategies are available; all of them guarantee
// that concatenating the output (ignoring line breaks) loses no content
// characters, only whitespace.
package segmenter

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// Strategy selects the splitting algorithm.
type Strategy string

const (
	// StrategyPunctuation splits on sentence enders, then commas, then
	// connective words until every line fits the length limit.
	StrategyPunctuation Strategy = "punctuation"
	// StrategyClause inserts breaks after clause-marking particles and
	// connective expressions without enforcing a length limit.
	StrategyClause Strategy = "clause"
	// StrategyMorphological uses a tokenizer to break at particle
	// boundaries near the length limit.
	StrategyMorphological Strategy = "morphological"
	// StrategyHybrid normalizes whitespace and then applies the
	// punctuation cascade with a fixed limit of 45 runes.
	StrategyHybrid Strategy = "hybrid"
	// StrategyCleanOnly keeps the text nearly intact, breaking only
	// pathologically long lines.
	StrategyCleanOnly Strategy = "clean-only"
)

// ParseStrategy maps a configuration string to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyPunctuation:
		return StrategyPunctuation, nil
	case StrategyClause:
		return StrategyClause, nil
	case StrategyMorphological:
		return StrategyMorphological, nil
	case StrategyHybrid:
		return StrategyHybrid, nil
	case StrategyCleanOnly:
		return StrategyCleanOnly, nil
	}
	return "", fmt.Errorf("unknown segmentation strategy %q", s)
}

// Token is one morpheme as reported by a tokenizer.
type Token struct {
	Surface string
	POS     string // Top-level part of speech, e.g. 名詞, 助詞, 記号.
}

// Tokenizer produces morphemes for the morphological strategy. Implementations
// must return tokens whose surfaces concatenate back to the input.
type Tokenizer interface {
	Tokenize(text string) []Token
}

// Config bounds the produced line lengths in runes.
type Config struct {
	MaxLineLength int
	MinLineLength int
}

// DefaultConfig returns the length defaults.
func DefaultConfig() Config {
	return Config{MaxLineLength: 45, MinLineLength: 15}
}

// Validate checks the length bounds.
func (c Config) Validate() error {
	if c.MaxLineLength <= 0 {
		return fmt.Errorf("max line length must be positive, got %d", c.MaxLineLength)
	}
	if c.MinLineLength < 0 {
		return fmt.Errorf("min line length must not be negative, got %d", c.MinLineLength)
	}
	if c.MinLineLength > c.MaxLineLength {
		return fmt.Errorf("min line length %d exceeds max %d", c.MinLineLength, c.MaxLineLength)
	}
	return nil
}

// Segmenter applies one strategy with one length configuration. It is safe
// for concurrent use.
type Segmenter struct {
	strategy  Strategy
	cfg       Config
	tokenizer Tokenizer
	logger    *slog.Logger
}

// New builds a segmenter. The tokenizer may be nil; the morphological
// strategy then falls back to the punctuation cascade at segmentation time.
func New(strategy Strategy, cfg Config, tok Tokenizer, logger *slog.Logger) (*Segmenter, error) {
	if _, err := ParseStrategy(string(strategy)); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Segmenter{strategy: strategy, cfg: cfg, tokenizer: tok, logger: logger}, nil
}

// Strategy returns the configured strategy.
func (s *Segmenter) Strategy() Strategy {
	return s.strategy
}

// Segment splits text into synthesis-sized chunks. Empty input yields an
// empty slice, never nil panic material for callers ranging over the result.
func (s *Segmenter) Segment(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	switch s.strategy {
	case StrategyClause:
		return s.segmentClause(text)
	case StrategyMorphological:
		if s.tokenizer == nil {
			s.logger.Warn("no tokenizer available, falling back to punctuation strategy")
			return s.segmentPunctuation(text, s.cfg.MaxLineLength)
		}
		return s.segmentMorphological(text)
	case StrategyHybrid:
		return s.segmentHybrid(text)
	case StrategyCleanOnly:
		return s.segmentCleanOnly(text)
	default:
		return s.segmentPunctuation(text, s.cfg.MaxLineLength)
	}
}

// runeLen is shorthand used throughout the strategies.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
