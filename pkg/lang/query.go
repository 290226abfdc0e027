package lang

import "strings"

// QuerySeparator joins the terms of a disjunctive search query.
const QuerySeparator = " OR "

// BuildQuery tokenizes text and joins every token except single spaces with
// QuerySeparator. It returns an empty query when text or language is empty.
func BuildQuery(text, language string) (string, error) {
	if text == "" || language == "" {
		return "", nil
	}
	tokens, err := Tokenize(text, language)
	if err != nil {
		return "", err
	}
	terms := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t.Text == " " {
			continue
		}
		terms = append(terms, t.Text)
	}
	return strings.Join(terms, QuerySeparator), nil
}
