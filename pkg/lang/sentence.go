package lang

import "fmt"

// Sentences groups a token sequence by sentence. Stops holds token indices:
// Stops[0] is 0 and Groups[i] == tokens[Stops[i]:Stops[i+1]].
type Sentences struct {
	Groups [][]Token
	Stops  []int
}

// Len returns the number of sentences.
func (s *Sentences) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Groups)
}

var sentenceSplitters = map[string]func(string) []string{
	"en": splitSentencesEnglish,
}

// HasSentenceModel reports whether Segment supports the language.
func HasSentenceModel(language string) bool {
	_, ok := sentenceSplitters[language]
	return ok
}

// Segment maps sentence boundaries of text onto tokens, which must be the
// output of Tokenize for the same text. It returns nil for languages without
// a sentence model.
//
// Alignment is by byte length only: a sentence closes at the first token
// that reaches its end offset. A token straddling a boundary belongs to the
// earlier sentence, and a sentence it covers entirely yields no group.
func Segment(text string, tokens []Token, language string) (*Sentences, error) {
	split, ok := sentenceSplitters[language]
	if !ok {
		return nil, nil
	}
	raw := split(text)
	stops := make([]int, 1, len(raw)+1)
	idx, pos, end := 0, 0, 0
	for n, sentence := range raw {
		end += len(sentence)
		if pos >= end {
			continue
		}
		for pos < end {
			if idx >= len(tokens) {
				return nil, fmt.Errorf("sentence %d of %d needs %d more bytes at token %d: %w",
					n+1, len(raw), end-pos, idx, ErrSegmentationInvariant)
			}
			pos += tokens[idx].Len()
			idx++
		}
		stops = append(stops, idx)
	}

	groups := make([][]Token, len(stops)-1)
	for i := range groups {
		groups[i] = tokens[stops[i]:stops[i+1]]
	}
	return &Sentences{Groups: groups, Stops: stops}, nil
}
