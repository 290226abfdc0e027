package ingest

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const paragraph = "The reading group met on a quiet afternoon to discuss the novel, and everyone agreed that the long chapters about the harbor were the most rewarding part of the whole book."

func articleHTML(title, extra string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<html><head><title>%s</title></head><body><article><h1>%s</h1>", title, title)
	for range 6 {
		b.WriteString("<p>" + paragraph + "</p>")
	}
	b.WriteString(extra)
	b.WriteString("</article></body></html>")
	return b.String()
}

func newSite(t *testing.T, robots string, page func(w http.ResponseWriter)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			if robots == "" {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, robots)
			return
		}
		page(w)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchExtractsArticle(t *testing.T) {
	srv := newSite(t, "", func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, articleHTML("Harbor Notes", "<p>漢字<rp>(</rp><rt>かんじ</rt><rp>)</rp>を読む練習は、毎日少しずつ続けることが大切だと先生はいつも話していました。</p>"))
	})

	f := NewFetcher(FetcherConfig{CheckRobots: true}, nil)
	page, err := f.Fetch(t.Context(), srv.URL+"/story")
	require.NoError(t, err)
	assert.Contains(t, page.Title, "Harbor Notes")
	assert.Contains(t, page.Text, "reading group")
	assert.Contains(t, page.Text, "漢字を読む")
	assert.NotContains(t, page.Text, "かんじ")
}

func TestFetchDecodesDeclaredCharset(t *testing.T) {
	srv := newSite(t, "", func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// \xe9 is é in latin-1
		fmt.Fprint(w, articleHTML("Caf\xe9 Stories", "<p>Every morning the caf\xe9 on the corner served bread to the people who came to read the newspapers.</p>"))
	})

	page, err := NewFetcher(FetcherConfig{}, nil).Fetch(t.Context(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, page.Text, "café")
}

func TestFetchRespectsRobots(t *testing.T) {
	srv := newSite(t, "User-agent: *\nDisallow: /private\n", func(w http.ResponseWriter) {
		fmt.Fprint(w, articleHTML("Secret", ""))
	})
	f := NewFetcher(FetcherConfig{CheckRobots: true}, nil)

	_, err := f.Fetch(t.Context(), srv.URL+"/private/page")
	assert.ErrorIs(t, err, ErrDisallowed)

	_, err = f.Fetch(t.Context(), srv.URL+"/public/page")
	assert.NoError(t, err)
}

func TestFetchRejectsLargeBody(t *testing.T) {
	srv := newSite(t, "", func(w http.ResponseWriter) {
		fmt.Fprint(w, articleHTML("Big", ""))
	})

	_, err := NewFetcher(FetcherConfig{MaxBodyBytes: 64}, nil).Fetch(t.Context(), srv.URL)
	assert.True(t, errors.Is(err, ErrTooLarge), "got %v", err)
}

func TestFetchRejectsBadStatusAndURL(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	f := NewFetcher(FetcherConfig{}, nil)

	_, err := f.Fetch(t.Context(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "status 404")

	_, err = f.Fetch(t.Context(), "ftp://example.com/file")
	assert.ErrorContains(t, err, "invalid url")
}
