package lang

import (
	"strings"

	"github.com/rivo/uniseg"
)

// segmentEnglish splits on UAX #29 word boundaries. Letters joined by an
// apostrophe ("I've") stay together and runs of spaces form one piece.
func segmentEnglish(text string) ([]string, error) {
	var pieces []string
	state := -1
	for len(text) > 0 {
		var word string
		word, text, state = uniseg.FirstWordInString(text, state)
		pieces = append(pieces, word)
	}
	return pieces, nil
}

// splitSentencesEnglish returns UAX #29 sentences. They partition text.
// A CR LF pair is never split across two sentences, matching word
// segmentation, which keeps it as one token.
func splitSentencesEnglish(text string) []string {
	var sentences []string
	state := -1
	for len(text) > 0 {
		var sentence string
		sentence, text, state = uniseg.FirstSentenceInString(text, state)
		if n := len(sentences); n > 0 && strings.HasSuffix(sentences[n-1], "\r") && strings.HasPrefix(sentence, "\n") {
			sentences[n-1] += "\n"
			sentence = sentence[1:]
			if sentence == "" {
				continue
			}
		}
		sentences = append(sentences, sentence)
	}
	return sentences
}
