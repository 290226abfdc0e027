package lang

import "unicode"

// stopChars are excluded from word counts. Each entry is a single character:
// ASCII punctuation, CJK full-width punctuation and quotes, and whitespace.
var stopChars = func() map[string]bool {
	const chars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_{|}~`" +
		"。？！，、；：“”‘’「」『』（）【】—…～《》〈〉" +
		" \t\n\r"
	set := make(map[string]bool, len(chars))
	for _, r := range chars {
		set[string(r)] = true
	}
	return set
}()

// IsStopWord reports whether a case-folded token is excluded from frequency
// counting. A token made only of stop characters and whitespace is a stop
// word no matter its length.
func IsStopWord(folded string) bool {
	if stopChars[folded] {
		return true
	}
	for _, r := range folded {
		if !stopChars[string(r)] && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
