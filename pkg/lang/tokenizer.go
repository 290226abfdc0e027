// Package lang turns article text into tokens, sentences, word frequencies,
// reading pages and search queries.
package lang

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrUnsupportedLanguage is returned when no tokenizer exists for a language tag.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrSegmentationInvariant means sentence and token lengths disagree on the same text.
	ErrSegmentationInvariant = errors.New("sentence segmentation overran token sequence")
)

// Token is a contiguous span of the source text.
type Token struct {
	Text  string `json:"text"`
	Start int    `json:"start"` // byte offset, inclusive
	End   int    `json:"end"`   // byte offset, exclusive
}

// IsWord reports whether the token holds at least one letter or digit.
func (t Token) IsWord() bool {
	return strings.IndexFunc(t.Text, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsNumber(r)
	}) >= 0
}

// Len returns the token length in bytes.
func (t Token) Len() int { return len(t.Text) }

// segmenter cuts text into pieces. Pieces are expected in source order;
// anything a segmenter skips is recovered by alignSpans.
type segmenter func(text string) ([]string, error)

var segmenters = map[string]segmenter{
	"en":    segmentEnglish,
	"zh":    segmentChinese,
	"zh-CN": segmentChinese,
	"zh-TW": segmentChinese,
	"ja":    segmentJapanese,
}

// Supported reports whether Tokenize accepts the language tag.
func Supported(language string) bool {
	_, ok := segmenters[language]
	return ok
}

// Tokenize splits text into words, punctuation and whitespace tokens.
// Concatenating the Text of every returned token yields text unchanged.
func Tokenize(text, language string) ([]Token, error) {
	seg, ok := segmenters[language]
	if !ok {
		return nil, fmt.Errorf("tokenize %q: %w", language, ErrUnsupportedLanguage)
	}
	if text == "" {
		return nil, nil
	}
	pieces, err := seg(text)
	if err != nil {
		return nil, fmt.Errorf("tokenize %q: %w", language, err)
	}
	return alignSpans(text, pieces), nil
}

// Texts returns the token strings in order.
func Texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

// alignSpans locates each piece in text, in order, and emits gaps between
// pieces as tokens of their own so the result covers text without holes.
func alignSpans(text string, pieces []string) []Token {
	tokens := make([]Token, 0, len(pieces))
	pos := 0
	for _, p := range pieces {
		if p == "" {
			continue
		}
		i := strings.Index(text[pos:], p)
		if i < 0 {
			// Segmenters that normalize their output can return text that is
			// not a literal substring; the gap emitted later covers it.
			continue
		}
		if i > 0 {
			tokens = append(tokens, Token{Text: text[pos : pos+i], Start: pos, End: pos + i})
		}
		start := pos + i
		tokens = append(tokens, Token{Text: text[start : start+len(p)], Start: start, End: start + len(p)})
		pos = start + len(p)
	}
	if pos < len(text) {
		tokens = append(tokens, Token{Text: text[pos:], Start: pos, End: len(text)})
	}
	return tokens
}
