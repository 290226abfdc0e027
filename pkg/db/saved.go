package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SaveArticle adds an article to a user's saved list. Saving an article
// twice keeps the first saved_on.
func SaveArticle(ctx context.Context, exec DBExecutor, userID, articleID int64) error {
	if err := articleExists(ctx, exec, articleID); err != nil {
		return fmt.Errorf("save article: %w", err)
	}
	_, err := exec.ExecContext(ctx, `INSERT INTO saved_articles (user_id, article_id)
		VALUES (?, ?)
		ON CONFLICT(user_id, article_id) DO NOTHING`, userID, articleID)
	if err != nil {
		return fmt.Errorf("save article %d for user %d: %w", articleID, userID, err)
	}
	return nil
}

// UnsaveArticle removes an article from a user's saved list. It returns
// ErrNotFound when the article was not saved.
func UnsaveArticle(ctx context.Context, exec DBExecutor, userID, articleID int64) error {
	res, err := exec.ExecContext(ctx,
		`DELETE FROM saved_articles WHERE user_id = ? AND article_id = ?`, userID, articleID)
	if err != nil {
		return fmt.Errorf("unsave article %d for user %d: %w", articleID, userID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("unsave article %d for user %d: %w", articleID, userID, ErrNotFound)
	}
	return nil
}

// ListSavedArticles returns a user's saved articles, most recently saved
// first, ListLimit at a time starting at offset.
func ListSavedArticles(ctx context.Context, exec DBExecutor, userID int64, offset int) ([]ArticleSummary, error) {
	rows, err := exec.QueryContext(ctx, `SELECT `+summaryColumns+`
		FROM saved_articles s
		JOIN articles a ON a.id = s.article_id
		WHERE s.user_id = ?
		ORDER BY s.saved_on DESC, s.rowid DESC
		LIMIT ? OFFSET ?`, userID, ListLimit, max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("list saved articles: %w", err)
	}
	return scanSummaries(rows)
}

func articleExists(ctx context.Context, exec DBExecutor, id int64) error {
	var one int
	err := exec.QueryRowContext(ctx, `SELECT 1 FROM articles WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("article %d: %w", id, ErrNotFound)
	}
	return err
}
