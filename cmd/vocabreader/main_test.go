package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t      *testing.T
	dbPath string
}

func newCLI(t *testing.T) *cli {
	t.Setenv("VOCAB_LOG_LEVEL", "warn")
	return &cli{t: t, dbPath: filepath.Join(t.TempDir(), "vocab.db")}
}

func (c *cli) run(args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	err := run(c.t.Context(), append([]string{"-db", c.dbPath}, args...), &stdout, &stderr)
	return stdout.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "vocabreader %s", strings.Join(args, " "))
	return out
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCLIImportSearchShow(t *testing.T) {
	c := newCLI(t)
	cats := writeFile(t, "cats.txt", "The cat sat on the mat. The cat slept.")
	birds := writeFile(t, "birds.txt", "A bird sang in the tree.")

	out := c.mustRun("import", "-lang", "en", "-user", "ann", "-tags", "pets, home", cats, birds)
	assert.Contains(t, out, "imported article 1: cats")
	assert.Contains(t, out, "imported article 2: birds")

	out = c.mustRun("search", "-lang", "en", "cat", "dog")
	assert.Contains(t, out, "cats")
	assert.NotContains(t, out, "birds")

	out = c.mustRun("search", "-lang", "en", "zebra")
	assert.Contains(t, out, "no articles found")

	c.mustRun("status", "-user", "ann", "-lang", "en", "-status", "known", "The", "mat")
	c.mustRun("status", "-user", "ann", "-lang", "en", "-status", "learning", "cat")

	out = c.mustRun("show", "-id", "1", "-size", "large", "-user", "ann")
	assert.Contains(t, out, "cats (en) | page 1/1 | 6 unique words")
	assert.Contains(t, out, "The cat sat on the mat. The cat slept.")
	assert.Contains(t, out, "new (3): on sat slept")
	assert.Contains(t, out, "learning (1): cat")
	assert.Contains(t, out, "known (2): the mat")
}

func TestCLIWordsAndDefinitions(t *testing.T) {
	c := newCLI(t)
	c.mustRun("status", "-user", "mei", "-lang", "zh", "-status", "learning", "学习", "中文")
	c.mustRun("status", "-user", "mei", "-lang", "zh", "-status", "known", "中文")
	c.mustRun("define", "-user", "mei", "-lang", "zh", "学习", "to", "study")

	out := c.mustRun("words", "-user", "mei", "-lang", "zh")
	var data struct {
		Status      map[string]map[string]map[string]int `json:"word_status_data"`
		Definitions map[string]map[string]string         `json:"word_definition_data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &data))
	assert.Equal(t, map[string]int{"学习": 1}, data.Status["zh"]["learning"])
	assert.Equal(t, map[string]int{"中文": 1}, data.Status["zh"]["known"])
	assert.Equal(t, "to study", data.Definitions["zh"]["学习"])

	_, err := c.run("status", "-user", "mei", "-lang", "zh", "-status", "forgotten", "学习")
	assert.Error(t, err)
}

func TestCLIImportURL(t *testing.T) {
	paragraph := "<p>Reading every day builds a larger vocabulary, and short articles about familiar topics are the easiest place to begin that habit.</p>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<html><head><title>Daily Reading</title></head><body><article>%s</article></body></html>",
			strings.Repeat(paragraph, 5))
	}))
	defer srv.Close()

	c := newCLI(t)
	out := c.mustRun("import", "-url", srv.URL+"/daily", "-user", "ann")
	assert.Contains(t, out, "Daily Reading")

	out = c.mustRun("search", "vocabulary")
	assert.Contains(t, out, "Daily Reading")
}

func TestCLISuggest(t *testing.T) {
	c := newCLI(t)
	text := writeFile(t, "ja.txt", "犬が走る。犬はかわいい。")
	dict := writeFile(t, "jmdict.json", `{"words":[
		{"id":"1","kanji":[{"text":"犬","common":true}],"kana":[{"text":"いぬ","common":true}],"sense":[{"gloss":[{"text":"dog"}]}]},
		{"id":"2","kanji":[{"text":"走る","common":true}],"kana":[{"text":"はしる","common":true}],"sense":[{"gloss":[{"text":"to run"}]}]}
	]}`)

	c.mustRun("import", "-lang", "ja", "-user", "ken", text)

	out := c.mustRun("suggest", "-user", "ken", "-id", "1", "-dict", dict)
	assert.Contains(t, out, "犬\tいぬ: dog")

	c.mustRun("status", "-user", "ken", "-lang", "ja", "-status", "known", "犬")
	out = c.mustRun("suggest", "-user", "ken", "-id", "1", "-dict", dict, "-apply")
	assert.NotContains(t, out, "犬\t")

	out = c.mustRun("words", "-user", "ken", "-lang", "ja")
	assert.NotContains(t, out, "いぬ: dog")
}

func TestCLIErrors(t *testing.T) {
	c := newCLI(t)

	_, err := c.run()
	assert.ErrorIs(t, err, flag.ErrHelp)

	_, err = c.run("frobnicate")
	assert.ErrorContains(t, err, "unknown command")

	_, err = c.run("import", "-lang", "xx", "file.txt")
	assert.Error(t, err)

	_, err = c.run("show", "-id", "99")
	assert.Error(t, err)

	_, err = c.run("words")
	assert.ErrorContains(t, err, "-user is required")
}

func TestCLISavedAndUploaded(t *testing.T) {
	c := newCLI(t)
	dogs := writeFile(t, "dogs.txt", "A dog ran.")
	cats := writeFile(t, "cats.txt", "A cat sat.")
	c.mustRun("import", "-lang", "en", "-user", "ann", dogs)
	c.mustRun("import", "-lang", "en", "-user", "bo", cats)

	out := c.mustRun("save", "-user", "bo", "-id", "1")
	assert.Contains(t, out, "save article 1 for bo")

	out = c.mustRun("saved", "-user", "bo")
	assert.Contains(t, out, "dogs")
	assert.NotContains(t, out, "cats")

	out = c.mustRun("uploaded", "-user", "bo")
	assert.Contains(t, out, "cats")
	assert.NotContains(t, out, "dogs")

	c.mustRun("unsave", "-user", "bo", "-id", "1")
	out = c.mustRun("saved", "-user", "bo")
	assert.Contains(t, out, "no articles found")

	_, err := c.run("unsave", "-user", "bo", "-id", "1")
	assert.Error(t, err)
	_, err = c.run("save", "-user", "bo", "-id", "42")
	assert.Error(t, err)

	out = c.mustRun("users")
	assert.Equal(t, "1\tann\ten\n2\tbo\ten\n", out)
}

func TestCLIImportWindowsLineEndings(t *testing.T) {
	c := newCLI(t)
	notes := writeFile(t, "notes.txt", "First line here.\r\nSecond line here.\r\n\r\nA new paragraph\r\n")

	out := c.mustRun("import", "-lang", "en", "-user", "ann", notes)
	assert.Contains(t, out, "imported article 1: notes")

	out = c.mustRun("show", "-id", "1", "-size", "large")
	assert.Contains(t, out, "notes (en) | page 1/1")
	assert.Contains(t, out, "Second line here.")
}
