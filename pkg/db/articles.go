package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/japaniel/vocabreader/pkg/lang"
)

// ListLimit is the number of rows returned per list or search page.
const ListLimit = 10

// summaryColumns are the columns scanSummaries reads, from an articles table
// aliased as a.
const summaryColumns = `a.id, a.title, a.author, a.content_length, a.lang,
		a.tags, a.unique_count, a.is_system, a.created_on`

// ArticlePatch names the article fields to change; nil fields are left alone.
type ArticlePatch struct {
	Title     *string
	Author    *string
	Tags      []string
	IsPrivate *bool
}

// InsertArticle stores a and indexes it for search. a.ID is set on success.
// Run it inside a transaction so the article and its index row land together.
func InsertArticle(ctx context.Context, exec DBExecutor, a *Article) (int64, error) {
	enc := jsonEncoder{}
	tags := enc.marshal(nonNil(a.Tags))
	words := enc.marshal(nonNil(a.Words))
	unique := enc.marshal(a.UniqueWords)
	var stops any
	if a.SentenceStops != nil {
		stops = enc.marshal(a.SentenceStops)
	}
	sm := enc.marshal(nonNilPages(a.PagesSmall))
	md := enc.marshal(nonNilPages(a.PagesMedium))
	lg := enc.marshal(nonNilPages(a.PagesLarge))
	if enc.err != nil {
		return 0, fmt.Errorf("insert article: %w", enc.err)
	}

	var uploader any
	if a.UploaderID != 0 {
		uploader = a.UploaderID
	}
	var id int64
	err := exec.QueryRowContext(ctx, `INSERT INTO articles
		(title, author, content, content_length, lang, tags, words, unique_words, unique_count,
		 sentence_stops, pages_sm, pages_md, pages_lg, uploader_id, is_system, is_private, source_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		a.Title, a.Author, a.Content, a.ContentLength, a.Language, tags, words, unique, a.UniqueCount,
		stops, sm, md, lg, uploader, a.IsSystem, a.IsPrivate, a.SourceURL).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert article: %w", err)
	}
	if _, err := exec.ExecContext(ctx,
		`INSERT INTO article_fts (docid, title, body) VALUES (?, ?, ?)`,
		id, a.Title, a.searchBody()); err != nil {
		return 0, fmt.Errorf("index article %d: %w", id, err)
	}
	a.ID = id
	return id, nil
}

// GetArticle loads one article with all analysis columns.
func GetArticle(ctx context.Context, exec DBExecutor, id int64) (*Article, error) {
	var (
		a                                              Article
		author, stops, sourceURL                       sql.NullString
		uploader                                       sql.NullInt64
		tags, words, unique, pagesSm, pagesMd, pagesLg string
	)
	err := exec.QueryRowContext(ctx, `SELECT id, title, author, content, content_length, lang, tags,
		words, unique_words, unique_count, sentence_stops, pages_sm, pages_md, pages_lg,
		uploader_id, is_system, is_private, source_url, created_on
		FROM articles WHERE id = ?`, id).Scan(
		&a.ID, &a.Title, &author, &a.Content, &a.ContentLength, &a.Language, &tags,
		&words, &unique, &a.UniqueCount, &stops, &pagesSm, &pagesMd, &pagesLg,
		&uploader, &a.IsSystem, &a.IsPrivate, &sourceURL, &a.CreatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get article %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get article %d: %w", id, err)
	}
	a.Author = author.String
	a.SourceURL = sourceURL.String
	a.UploaderID = uploader.Int64

	dec := jsonDecoder{}
	dec.unmarshal(tags, &a.Tags)
	dec.unmarshal(words, &a.Words)
	dec.unmarshal(unique, &a.UniqueWords)
	if stops.Valid {
		dec.unmarshal(stops.String, &a.SentenceStops)
	}
	dec.unmarshal(pagesSm, &a.PagesSmall)
	dec.unmarshal(pagesMd, &a.PagesMedium)
	dec.unmarshal(pagesLg, &a.PagesLarge)
	if dec.err != nil {
		return nil, fmt.Errorf("decode article %d: %w", id, dec.err)
	}
	return &a, nil
}

// ListArticles returns the newest articles, optionally restricted to one
// language, ListLimit at a time starting at offset.
func ListArticles(ctx context.Context, exec DBExecutor, language string, offset int) ([]ArticleSummary, error) {
	rows, err := exec.QueryContext(ctx, `SELECT `+summaryColumns+`
		FROM articles a
		WHERE (? = '' OR a.lang = ?)
		ORDER BY a.created_on DESC, a.id DESC
		LIMIT ? OFFSET ?`, language, language, ListLimit, max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return scanSummaries(rows)
}

// ListUploadedArticles returns the articles a user uploaded, newest first,
// ListLimit at a time starting at offset.
func ListUploadedArticles(ctx context.Context, exec DBExecutor, userID int64, offset int) ([]ArticleSummary, error) {
	rows, err := exec.QueryContext(ctx, `SELECT `+summaryColumns+`
		FROM articles a
		WHERE a.uploader_id = ?
		ORDER BY a.created_on DESC, a.id DESC
		LIMIT ? OFFSET ?`, userID, ListLimit, max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("list uploaded articles: %w", err)
	}
	return scanSummaries(rows)
}

// SearchArticles runs a full-text query built by lang.BuildQuery against
// article titles and bodies. Only word terms of the query are matched.
func SearchArticles(ctx context.Context, exec DBExecutor, query, language string, offset int) ([]ArticleSummary, error) {
	match := MatchExpression(query)
	if match == "" {
		return nil, nil
	}
	rows, err := exec.QueryContext(ctx, `SELECT `+summaryColumns+`
		FROM article_fts f
		JOIN articles a ON a.id = f.docid
		WHERE article_fts MATCH ? AND (? = '' OR a.lang = ?)
		ORDER BY a.created_on DESC, a.id DESC
		LIMIT ? OFFSET ?`, match, language, language, ListLimit, max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	return scanSummaries(rows)
}

// MatchExpression turns an OR query into an FTS MATCH expression. Terms
// without a letter or digit are dropped and the rest are quoted, so query
// text can never inject FTS operators.
func MatchExpression(query string) string {
	var terms []string
	seen := make(map[string]bool)
	for _, t := range strings.Split(query, lang.QuerySeparator) {
		if !(lang.Token{Text: t}).IsWord() {
			continue
		}
		t = strings.TrimSpace(t)
		if seen[t] {
			continue
		}
		seen[t] = true
		terms = append(terms, `"`+strings.ReplaceAll(t, `"`, `""`)+`"`)
	}
	return strings.Join(terms, " OR ")
}

// UpdateArticle applies patch to an article and keeps its search row in step.
func UpdateArticle(ctx context.Context, exec DBExecutor, id int64, patch ArticlePatch) error {
	var b UpdateBuilder
	b.SetString("title", patch.Title).SetString("author", patch.Author).SetBool("is_private", patch.IsPrivate)
	if patch.Tags != nil {
		raw, err := json.Marshal(patch.Tags)
		if err != nil {
			return fmt.Errorf("update article: %w", err)
		}
		b.Set("tags", string(raw))
	}
	q, args, err := b.Build("articles", id)
	if err != nil {
		return err
	}
	res, err := exec.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update article %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update article %d: %w", id, ErrNotFound)
	}
	if patch.Title != nil {
		if _, err := exec.ExecContext(ctx,
			`UPDATE article_fts SET title = ? WHERE docid = ?`, *patch.Title, id); err != nil {
			return fmt.Errorf("reindex article %d: %w", id, err)
		}
	}
	return nil
}

func scanSummaries(rows *sql.Rows) ([]ArticleSummary, error) {
	defer rows.Close()
	var out []ArticleSummary
	for rows.Next() {
		var (
			s      ArticleSummary
			author sql.NullString
			tags   string
		)
		if err := rows.Scan(&s.ID, &s.Title, &author, &s.ContentLength, &s.Language,
			&tags, &s.UniqueCount, &s.IsSystem, &s.CreatedOn); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		s.Author = author.String
		if err := json.Unmarshal([]byte(tags), &s.Tags); err != nil {
			return nil, fmt.Errorf("decode tags of article %d: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// jsonEncoder marshals several columns and keeps the first error.
type jsonEncoder struct{ err error }

func (e *jsonEncoder) marshal(v any) string {
	if e.err != nil {
		return ""
	}
	raw, err := json.Marshal(v)
	if err != nil {
		e.err = err
		return ""
	}
	return string(raw)
}

type jsonDecoder struct{ err error }

func (d *jsonDecoder) unmarshal(s string, v any) {
	if d.err != nil {
		return
	}
	d.err = json.Unmarshal([]byte(s), v)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilPages(p [][]string) [][]string {
	if p == nil {
		return [][]string{}
	}
	return p
}
