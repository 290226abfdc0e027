package lang

import (
	"fmt"
	"regexp"
)

// Version returns the current version of the package.
func Version() string { return "0.2.0" }

// Document is the full analysis of one article body.
type Document struct {
	Language    string
	Tokens      []Token
	Frequencies Frequencies
	UniqueCount int
	// Sentences is nil for languages without a sentence model.
	Sentences *Sentences
	Pages     PageSet
}

// SentenceStops returns the sentence boundary offsets, or nil.
func (d *Document) SentenceStops() []int {
	if d.Sentences == nil {
		return nil
	}
	return d.Sentences.Stops
}

// Analyzer runs the tokenize, count, segment and paginate chain.
type Analyzer struct {
	sizes PageSizes
}

// NewAnalyzer creates an analyzer paginating with the given sizes. Zero sizes
// fall back to DefaultPageSizes.
func NewAnalyzer(sizes PageSizes) *Analyzer {
	if sizes.Small <= 0 {
		sizes.Small = DefaultPageSizes.Small
	}
	if sizes.Medium <= 0 {
		sizes.Medium = DefaultPageSizes.Medium
	}
	if sizes.Large <= 0 {
		sizes.Large = DefaultPageSizes.Large
	}
	return &Analyzer{sizes: sizes}
}

// PageSizes returns the budgets this analyzer paginates with.
func (a *Analyzer) PageSizes() PageSizes { return a.sizes }

// AnalyzeDocument processes an article body in the given language.
func (a *Analyzer) AnalyzeDocument(text, language string) (*Document, error) {
	tokens, err := Tokenize(text, language)
	if err != nil {
		return nil, err
	}
	freq, unique := Aggregate(tokens)

	sentences, err := Segment(text, tokens, language)
	if err != nil {
		return nil, fmt.Errorf("segment %q: %w", language, err)
	}

	doc := &Document{
		Language:    language,
		Tokens:      tokens,
		Frequencies: freq,
		UniqueCount: unique,
		Sentences:   sentences,
	}
	if sentences != nil {
		doc.Pages = Paginate(sentences.Groups, a.sizes)
	}
	return doc, nil
}

var (
	// (?s) allows dot to match newlines
	// (?i) makes it case-insensitive
	reRT = regexp.MustCompile(`(?si)<rt\b[^>]*>.*?</rt>`)
	reRP = regexp.MustCompile(`(?si)<rp\b[^>]*>.*?</rp>`)
)

// SanitizeRuby removes ruby text (<rt>...</rt>) and ruby parentheses (<rp>...</rp>)
// from HTML content. Readability extracts all text including furigana, which
// duplicates readings into the body (e.g. "漢字" becomes "漢字かんじ").
// It operates on bytes and is safe for Shift_JIS as well, because <, >, r, t, p
// are ASCII and < is not a trailing byte in Shift_JIS.
func SanitizeRuby(content []byte) []byte {
	cleaned := reRT.ReplaceAll(content, []byte{})
	cleaned = reRP.ReplaceAll(cleaned, []byte{})
	return cleaned
}
