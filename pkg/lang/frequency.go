package lang

import (
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Frequencies maps a case-folded word to the number of times it occurs.
type Frequencies map[string]int

// WordCount is one entry of a sorted frequency listing.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Fold returns the case-folded form under which words are counted and
// tracked.
func Fold(word string) string {
	return cases.Lower(language.Und).String(word)
}

// Aggregate counts case-folded words, skipping stop words. The second return
// value is the number of distinct words, which always equals len(freq).
func Aggregate(tokens []Token) (Frequencies, int) {
	fold := cases.Lower(language.Und)
	freq := make(Frequencies)
	distinct := 0
	for _, t := range tokens {
		w := fold.String(t.Text)
		if IsStopWord(w) {
			continue
		}
		if _, seen := freq[w]; !seen {
			distinct++
		}
		freq[w]++
	}
	return freq, distinct
}

// Sorted lists words by descending count, ties broken alphabetically.
func (f Frequencies) Sorted() []WordCount {
	pairs := make([]WordCount, 0, len(f))
	for w, c := range f {
		pairs = append(pairs, WordCount{Word: w, Count: c})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Count != pairs[j].Count {
			return pairs[i].Count > pairs[j].Count
		}
		return pairs[i].Word < pairs[j].Word
	})
	return pairs
}

// Total returns the sum of all counts.
func (f Frequencies) Total() int {
	n := 0
	for _, c := range f {
		n += c
	}
	return n
}
