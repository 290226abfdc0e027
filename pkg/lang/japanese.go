package lang

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

var japaneseTokenizer = sync.OnceValues(func() (*tokenizer.Tokenizer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("load japanese dictionary: %w", err)
	}
	return t, nil
})

// segmentJapanese cuts text along the lowest-cost path of the IPA lattice.
func segmentJapanese(text string) ([]string, error) {
	t, err := japaneseTokenizer()
	if err != nil {
		return nil, err
	}
	tokens := t.Tokenize(text)
	pieces := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Class == tokenizer.DUMMY {
			continue
		}
		pieces = append(pieces, tok.Surface)
	}
	return pieces, nil
}

// Morpheme is one Japanese token with its dictionary form and reading.
type Morpheme struct {
	Surface  string
	BaseForm string // dictionary form, e.g. 行く for 行っ
	Reading  string // katakana, empty if unknown
	POS      string // primary part of speech
}

// JapaneseMorphemes analyzes text with the IPA dictionary, skipping unknown
// and whitespace-only tokens.
func JapaneseMorphemes(text string) ([]Morpheme, error) {
	t, err := japaneseTokenizer()
	if err != nil {
		return nil, err
	}
	var out []Morpheme
	for _, tok := range t.Tokenize(text) {
		if tok.Class == tokenizer.DUMMY || strings.TrimSpace(tok.Surface) == "" {
			continue
		}
		// IPA features: 0 POS, 6 base form, 7 reading
		features := tok.Features()
		m := Morpheme{Surface: tok.Surface, BaseForm: tok.Surface}
		if len(features) > 0 {
			m.POS = features[0]
		}
		if len(features) > 6 && features[6] != "*" {
			m.BaseForm = features[6]
		}
		if len(features) > 7 && features[7] != "*" {
			m.Reading = features[7]
		}
		out = append(out, m)
	}
	return out, nil
}
