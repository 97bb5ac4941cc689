// Package quality implements the Gopher-style heuristic quality filter:
// numeric bounds over whitespace-tokenized text. Tokenization is
// whitespace-based and locale-naive; CJK and other non-space-delimited
// scripts tokenize as long pseudo-words, inflate the mean word length and
// usually fail the filter. That bias is a property of the heuristic, kept
// on purpose.
package quality

import (
	"strings"
	"unicode"
)

// Bounds configures the filter. A document passes only when every bound is
// satisfied; one violated bound fails it outright.
type Bounds struct {
	MinWords             int     `mapstructure:"min_words" json:"min_words"`
	MaxWords             int     `mapstructure:"max_words" json:"max_words"`
	MinMeanWordLength    float64 `mapstructure:"min_mean_word_length" json:"min_mean_word_length"`
	MaxMeanWordLength    float64 `mapstructure:"max_mean_word_length" json:"max_mean_word_length"`
	MaxEllipsisLineRatio float64 `mapstructure:"max_ellipsis_line_ratio" json:"max_ellipsis_line_ratio"`
	MaxBulletLineRatio   float64 `mapstructure:"max_bullet_line_ratio" json:"max_bullet_line_ratio"`
	MinAlphaWordRatio    float64 `mapstructure:"min_alpha_word_ratio" json:"min_alpha_word_ratio"`
	RequireStopword      bool    `mapstructure:"require_stopword" json:"require_stopword"`
}

// DefaultBounds returns the Gopher paper defaults.
func DefaultBounds() Bounds {
	return Bounds{
		MinWords:             50,
		MaxWords:             100000,
		MinMeanWordLength:    3,
		MaxMeanWordLength:    10,
		MaxEllipsisLineRatio: 0.3,
		MaxBulletLineRatio:   0.9,
		MinAlphaWordRatio:    0.8,
		RequireStopword:      true,
	}
}

// stopwords is the fixed set checked by the RequireStopword bound.
var stopwords = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range []string{"the", "be", "to", "of", "and", "a", "in", "that", "have", "i"} {
		set[w] = struct{}{}
	}
	return set
}()

// Passes reports whether text satisfies every bound. Empty text always
// fails (word count 0 < MinWords). Pure: same text and bounds, same answer.
func Passes(text string, b Bounds) bool {
	words := strings.Fields(text)
	if len(words) == 0 {
		return false
	}

	wordCount := len(words)
	if wordCount < b.MinWords || wordCount > b.MaxWords {
		return false
	}

	totalLen := 0
	alphaWords := 0
	hasStopword := false
	for _, w := range words {
		totalLen += len([]rune(w))
		if containsAlpha(w) {
			alphaWords++
		}
		if !hasStopword {
			if _, ok := stopwords[strings.ToLower(w)]; ok {
				hasStopword = true
			}
		}
	}

	mean := float64(totalLen) / float64(wordCount)
	if mean < b.MinMeanWordLength || mean > b.MaxMeanWordLength {
		return false
	}

	lines := strings.Split(text, "\n")
	ellipsisLines := 0
	bulletLines := 0
	for _, line := range lines {
		if endsWithEllipsis(line) {
			ellipsisLines++
		}
		if isBulletLine(line) {
			bulletLines++
		}
	}
	if float64(ellipsisLines)/float64(len(lines)) > b.MaxEllipsisLineRatio {
		return false
	}
	if float64(bulletLines)/float64(len(lines)) > b.MaxBulletLineRatio {
		return false
	}

	if float64(alphaWords)/float64(wordCount) < b.MinAlphaWordRatio {
		return false
	}

	if b.RequireStopword && !hasStopword {
		return false
	}

	return true
}

func containsAlpha(word string) bool {
	for _, r := range word {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func endsWithEllipsis(line string) bool {
	trimmed := strings.TrimRightFunc(line, unicode.IsSpace)
	return strings.HasSuffix(trimmed, "...") || strings.HasSuffix(trimmed, "…")
}

func isBulletLine(line string) bool {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	if trimmed == "" {
		return false
	}
	switch []rune(trimmed)[0] {
	case '-', '*', '•':
		return true
	}
	return false
}
