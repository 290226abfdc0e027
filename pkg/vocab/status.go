// Package vocab tracks which words a user is learning or already knows, per
// language, and the user's own definitions for them.
package vocab

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidStatus is returned for a destination other than known, learning or new.
var ErrInvalidStatus = errors.New("invalid word status")

// Status is the learning state of one word.
type Status int

const (
	// StatusNew is the implicit state of every word never marked otherwise.
	StatusNew Status = iota
	StatusLearning
	StatusKnown
)

func (s Status) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusLearning:
		return "learning"
	case StatusKnown:
		return "known"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ParseStatus maps "known", "learning" or "new" to a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "known":
		return StatusKnown, nil
	case "learning":
		return StatusLearning, nil
	case "new":
		return StatusNew, nil
	}
	return StatusNew, fmt.Errorf("%q: %w", s, ErrInvalidStatus)
}

// WordSet is a set of words. Values are always 1, matching the stored shape.
type WordSet map[string]int

// Sorted returns the words in lexical order.
func (s WordSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// LanguageWords holds the materialized states of one (user, language) pair.
// A word is in at most one of the two sets; absence from both means new.
type LanguageWords struct {
	Learning WordSet `json:"learning"`
	Known    WordSet `json:"known"`
}

// NewLanguageWords returns an empty LanguageWords.
func NewLanguageWords() *LanguageWords {
	return &LanguageWords{Learning: WordSet{}, Known: WordSet{}}
}

// Clone returns a deep copy.
func (lw *LanguageWords) Clone() *LanguageWords {
	c := NewLanguageWords()
	for w, v := range lw.Learning {
		c.Learning[w] = v
	}
	for w, v := range lw.Known {
		c.Known[w] = v
	}
	return c
}

// StatusOf returns the state of word.
func (lw *LanguageWords) StatusOf(word string) Status {
	if _, ok := lw.Known[word]; ok {
		return StatusKnown
	}
	if _, ok := lw.Learning[word]; ok {
		return StatusLearning
	}
	return StatusNew
}

// MoveTo puts word into the destination state. Moving into learning or known
// inserts into that set and deletes from the other; moving to new deletes
// from both. Repeating a move has no further effect, and an unknown status
// leaves lw unchanged.
func (lw *LanguageWords) MoveTo(word string, to Status) {
	if lw.Learning == nil {
		lw.Learning = WordSet{}
	}
	if lw.Known == nil {
		lw.Known = WordSet{}
	}
	switch to {
	case StatusKnown:
		delete(lw.Learning, word)
		lw.Known[word] = 1
	case StatusLearning:
		delete(lw.Known, word)
		lw.Learning[word] = 1
	case StatusNew:
		delete(lw.Known, word)
		delete(lw.Learning, word)
	}
}

// MoveAllTo applies MoveTo to every word in order.
func (lw *LanguageWords) MoveAllTo(words []string, to Status) {
	for _, w := range words {
		lw.MoveTo(w, to)
	}
}

// Change is one word whose state differs between two snapshots.
type Change struct {
	Word string
	From Status
	To   Status
}

// Diff lists the words whose state differs from before to after, sorted by word.
func Diff(before, after *LanguageWords) []Change {
	seen := make(map[string]bool)
	var changes []Change
	check := func(set WordSet) {
		for w := range set {
			if seen[w] {
				continue
			}
			seen[w] = true
			from, to := before.StatusOf(w), after.StatusOf(w)
			if from != to {
				changes = append(changes, Change{Word: w, From: from, To: to})
			}
		}
	}
	check(before.Learning)
	check(before.Known)
	check(after.Learning)
	check(after.Known)
	sort.Slice(changes, func(i, j int) bool { return changes[i].Word < changes[j].Word })
	return changes
}

// UserWordData is everything stored for one user: word states and
// definitions, both keyed by language.
type UserWordData struct {
	Status      map[string]*LanguageWords     `json:"word_status_data"`
	Definitions map[string]map[string]string `json:"word_definition_data"`
}

// NewUserWordData returns an empty UserWordData.
func NewUserWordData() *UserWordData {
	return &UserWordData{
		Status:      make(map[string]*LanguageWords),
		Definitions: make(map[string]map[string]string),
	}
}

// Language returns the word states for lang, creating an empty entry if needed.
func (d *UserWordData) Language(lang string) *LanguageWords {
	lw, ok := d.Status[lang]
	if !ok {
		lw = NewLanguageWords()
		d.Status[lang] = lw
	}
	return lw
}

// Definition returns the user's definition of word, if any.
func (d *UserWordData) Definition(lang, word string) (string, bool) {
	def, ok := d.Definitions[lang][word]
	return def, ok
}

// SetDefinition stores a definition for word.
func (d *UserWordData) SetDefinition(lang, word, definition string) {
	defs, ok := d.Definitions[lang]
	if !ok {
		defs = make(map[string]string)
		d.Definitions[lang] = defs
	}
	defs[word] = definition
}
