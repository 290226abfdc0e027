// Package dictionary loads a JMdict-simplified export into an in-memory
// glossary used to suggest definitions for Japanese words.
package dictionary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// JMdictEntry matches the structure of jmdict-simplified entries.
type JMdictEntry struct {
	Id    string          `json:"id"`
	Kanji []JMdictElement `json:"kanji"`
	Kana  []JMdictElement `json:"kana"`
	Sense []JMdictSense   `json:"sense"`
}

type JMdictElement struct {
	Text   string   `json:"text"`
	Common bool     `json:"common"`
	Tags   []string `json:"tags"`
}

type JMdictSense struct {
	PartOfSpeech []string      `json:"partOfSpeech"`
	Gloss        []JMdictGloss `json:"gloss"`
}

type JMdictGloss struct {
	Text string `json:"text"`
	Lang string `json:"lang"` // defaults to 'eng' if missing
}

// Load parses a jmdict-simplified document, either the release format
// {"words": [...]} or a bare array of entries.
func Load(r io.Reader) ([]JMdictEntry, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var wrapped struct {
		Words []JMdictEntry `json:"words"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.Words) > 0 {
		return wrapped.Words, nil
	}
	var entries []JMdictEntry
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to parse dictionary as object or array: %w", err)
	}
	return entries, nil
}

// LoadFile reads a dictionary file.
func LoadFile(path string) ([]JMdictEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}
