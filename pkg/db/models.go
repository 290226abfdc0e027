package db

import (
	"strings"
	"time"

	"github.com/japaniel/vocabreader/pkg/lang"
)

// User is an account that owns word states and definitions.
type User struct {
	ID         int64
	Username   string
	NativeLang string
	CreatedOn  time.Time
}

// Article is an analyzed text with everything a reader needs to render it.
type Article struct {
	ID            int64
	Title         string
	Author        string
	Content       string
	ContentLength int
	Language      string
	Tags          []string
	Words         []string
	UniqueWords   map[string]int
	UniqueCount   int
	// SentenceStops is nil for languages without a sentence model.
	SentenceStops []int
	PagesSmall    [][]string
	PagesMedium   [][]string
	PagesLarge    [][]string
	UploaderID    int64
	IsSystem      bool
	IsPrivate     bool
	SourceURL     string
	CreatedOn     time.Time
}

// ArticleSummary is the list view of an article.
type ArticleSummary struct {
	ID            int64
	Title         string
	Author        string
	ContentLength int
	Language      string
	Tags          []string
	UniqueCount   int
	IsSystem      bool
	CreatedOn     time.Time
}

// NewArticle builds an Article row from an analyzed document.
func NewArticle(title, author, content string, doc *lang.Document) *Article {
	return &Article{
		Title:         title,
		Author:        author,
		Content:       content,
		ContentLength: len(content),
		Language:      doc.Language,
		Words:         lang.Texts(doc.Tokens),
		UniqueWords:   doc.Frequencies,
		UniqueCount:   doc.UniqueCount,
		SentenceStops: doc.SentenceStops(),
		PagesSmall:    lang.PageTexts(doc.Pages.Small),
		PagesMedium:   lang.PageTexts(doc.Pages.Medium),
		PagesLarge:    lang.PageTexts(doc.Pages.Large),
	}
}

// searchBody is the text indexed for full-text search: word tokens only,
// space separated so unsegmented scripts still index per word.
func (a *Article) searchBody() string {
	var b strings.Builder
	for _, w := range a.Words {
		if !(lang.Token{Text: w}).IsWord() {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
	}
	return b.String()
}
