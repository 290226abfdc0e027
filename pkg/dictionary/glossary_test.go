package dictionary

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDict = `
{
  "words": [
    {
      "id": "1",
      "kanji": [{"text": "犬", "common": true}],
      "kana": [{"text": "いぬ", "common": true}],
      "sense": [{"gloss": [{"text": "dog"}], "partOfSpeech": ["n"]}]
    },
    {
      "id": "2",
      "kanji": [{"text": "走る", "common": true}],
      "kana": [{"text": "はしる", "common": true}],
      "sense": [{"gloss": [{"text": "to run"}, {"text": "to dash"}], "partOfSpeech": ["v5r"]}]
    },
    {
      "id": "3",
      "kanji": [],
      "kana": [{"text": "テスト", "common": true}],
      "sense": [{"gloss": [{"text": "test"}], "partOfSpeech": ["n"]}]
    }
  ]
}`

func TestLoadFormats(t *testing.T) {
	entries, err := Load(strings.NewReader(sampleDict))
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	entries, err = Load(strings.NewReader(`[{"id":"9","kana":[{"text":"ねこ"}]}]`))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "9", entries[0].Id)

	_, err = Load(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDict), 0o644))
	entries, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func newSampleGlossary(t *testing.T) *Glossary {
	t.Helper()
	entries, err := Load(strings.NewReader(sampleDict))
	require.NoError(t, err)
	return NewGlossary(entries)
}

func TestGlossaryLookup(t *testing.T) {
	g := newSampleGlossary(t)
	assert.Equal(t, 3, g.Len())

	tests := []struct {
		name    string
		word    string
		reading string
		wantIDs []string
	}{
		{"kanji", "犬", "", []string{"1"}},
		{"kana form", "いぬ", "", []string{"1"}},
		{"katakana reading", "犬", "イヌ", []string{"1"}},
		{"wrong reading", "犬", "ねこ", nil},
		{"katakana word", "テスト", "", []string{"3"}},
		{"unknown", "未知", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []string
			for _, e := range g.Lookup(tt.word, tt.reading) {
				ids = append(ids, e.Id)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestGlossarySuggest(t *testing.T) {
	g := newSampleGlossary(t)

	def, ok := g.Suggest("走る")
	require.True(t, ok)
	assert.Equal(t, "はしる: to run; to dash", def)

	def, ok = g.Suggest("テスト")
	require.True(t, ok)
	assert.Equal(t, "てすと: test", def)

	_, ok = g.Suggest("未知")
	assert.False(t, ok)
}

func TestToHiragana(t *testing.T) {
	assert.Equal(t, "いぬ", ToHiragana("イヌ"))
	assert.Equal(t, "はしる", ToHiragana("ハシル"))
	assert.Equal(t, "abc漢字", ToHiragana("abc漢字"))
}

func TestFormatDefinitions(t *testing.T) {
	g := newSampleGlossary(t)
	out, err := FormatDefinitions(g.Lookup("走る", ""))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"senses":["to run","to dash"],"pos":["v5r"]}]`, out)
}

func TestGlossarySuggestForm(t *testing.T) {
	g := newSampleGlossary(t)

	def, ok := g.SuggestForm("走っ", "走る", "ハシッ")
	require.True(t, ok, "reading of the inflected form does not block the base form")
	assert.Equal(t, "はしる: to run; to dash", def)

	def, ok = g.SuggestForm("犬", "犬", "イヌ")
	require.True(t, ok)
	assert.Equal(t, "いぬ: dog", def)

	_, ok = g.SuggestForm("走っ", "", "")
	assert.False(t, ok)
}
