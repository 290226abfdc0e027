package dictionary

import (
	"encoding/json"
	"slices"
	"sort"
	"strings"
)

// DefinitionEntry is the compact JSON form of one dictionary entry.
type DefinitionEntry struct {
	Senses []string `json:"senses"`
	POS    []string `json:"pos"`
}

// Glossary is a read-only index of dictionary entries by written form. It is
// safe for concurrent use.
type Glossary struct {
	index map[string][]JMdictEntry
	size  int
}

// NewGlossary indexes entries by every kanji and kana form.
func NewGlossary(entries []JMdictEntry) *Glossary {
	idx := make(map[string][]JMdictEntry)
	for _, e := range entries {
		for _, k := range e.Kanji {
			idx[k.Text] = append(idx[k.Text], e)
		}
		for _, k := range e.Kana {
			idx[k.Text] = append(idx[k.Text], e)
		}
	}
	return &Glossary{index: idx, size: len(entries)}
}

// Len returns the number of indexed entries.
func (g *Glossary) Len() int { return g.size }

// Lookup returns the entries written as word, sorted by id. A non-empty
// reading (hiragana or katakana) keeps only entries with that reading.
func (g *Glossary) Lookup(word, reading string) []JMdictEntry {
	var results []JMdictEntry
	seen := make(map[string]bool)
	for _, e := range g.index[word] {
		if seen[e.Id] || !hasReading(e, reading) {
			continue
		}
		seen[e.Id] = true
		results = append(results, e)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Id < results[j].Id
	})
	return results
}

func hasReading(entry JMdictEntry, reading string) bool {
	if reading == "" {
		return true
	}
	want := ToHiragana(reading)
	return slices.ContainsFunc(entry.Kana, func(k JMdictElement) bool {
		return ToHiragana(k.Text) == want
	})
}

// Suggest returns a one-line definition of word for a user to accept or
// edit, and whether the glossary knows the word.
func (g *Glossary) Suggest(word string) (string, bool) {
	return g.SuggestForm(word, "", "")
}

// SuggestForm is Suggest for an inflected surface form. The dictionary form
// base is tried first, narrowed by reading when that still matches, then the
// surface itself.
func (g *Glossary) SuggestForm(surface, base, reading string) (string, bool) {
	var matches []JMdictEntry
	if base != "" {
		if matches = g.Lookup(base, reading); len(matches) == 0 {
			matches = g.Lookup(base, "")
		}
	}
	if len(matches) == 0 {
		matches = g.Lookup(surface, "")
	}
	if len(matches) == 0 {
		return "", false
	}
	return Summarize(matches), true
}

// PrimaryReading returns the first common kana reading of entry in hiragana,
// or its first reading.
func PrimaryReading(entry JMdictEntry) string {
	if len(entry.Kana) == 0 {
		return ""
	}
	for _, k := range entry.Kana {
		if k.Common {
			return ToHiragana(k.Text)
		}
	}
	return ToHiragana(entry.Kana[0].Text)
}

// Summarize renders entries as "reading: gloss; gloss / reading: gloss".
func Summarize(entries []JMdictEntry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		var glosses []string
		for _, s := range e.Sense {
			for _, gl := range s.Gloss {
				glosses = append(glosses, gl.Text)
			}
		}
		if len(glosses) == 0 {
			continue
		}
		text := strings.Join(glosses, "; ")
		if r := PrimaryReading(e); r != "" {
			text = r + ": " + text
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " / ")
}

// ToHiragana converts Katakana to Hiragana.
func ToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}

// FormatDefinitions formats the entries into a JSON string.
func FormatDefinitions(entries []JMdictEntry) (string, error) {
	defs := make([]DefinitionEntry, 0, len(entries))
	for _, e := range entries {
		var d DefinitionEntry
		for _, s := range e.Sense {
			for _, g := range s.Gloss {
				d.Senses = append(d.Senses, g.Text)
			}
			d.POS = append(d.POS, s.PartOfSpeech...)
		}
		defs = append(defs, d)
	}
	raw, err := json.Marshal(defs)
	return string(raw), err
}
