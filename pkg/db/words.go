package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/japaniel/vocabreader/pkg/vocab"
)

// WordStore persists word states and definitions in sqlite. It implements
// vocab.Store.
type WordStore struct {
	db  *sql.DB
	log *logrus.Entry
}

var _ vocab.Store = (*WordStore)(nil)

// NewWordStore returns a WordStore on conn. A nil logger discards output.
func NewWordStore(conn *sql.DB, logger *logrus.Entry) *WordStore {
	if logger == nil {
		logger = discardLogger()
	}
	return &WordStore{db: conn, log: logger.WithField("component", "wordstore")}
}

// UpdateWords runs fn on the current states of (userID, lang) inside one
// transaction and writes the resulting row changes. Any error rolls the
// whole update back.
func (s *WordStore) UpdateWords(ctx context.Context, userID int64, lang string, fn func(*vocab.LanguageWords) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.log.WithError(rbErr).Warn("rollback failed")
			}
		}
	}()

	before, err := loadLanguageWords(ctx, tx, userID, lang)
	if err != nil {
		return err
	}
	after := before.Clone()
	if err = fn(after); err != nil {
		return err
	}
	changes := vocab.Diff(before, after)
	for _, c := range changes {
		if err = applyChange(ctx, tx, userID, lang, c); err != nil {
			return fmt.Errorf("word %q: %w", c.Word, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.log.WithFields(logrus.Fields{"user": userID, "lang": lang, "changes": len(changes)}).Debug("word states written")
	return nil
}

func loadLanguageWords(ctx context.Context, exec DBExecutor, userID int64, lang string) (*vocab.LanguageWords, error) {
	rows, err := exec.QueryContext(ctx,
		`SELECT word, status FROM word_status WHERE user_id = ? AND lang = ?`, userID, lang)
	if err != nil {
		return nil, fmt.Errorf("load word states: %w", err)
	}
	defer rows.Close()
	lw := vocab.NewLanguageWords()
	for rows.Next() {
		var word, status string
		if err := rows.Scan(&word, &status); err != nil {
			return nil, fmt.Errorf("scan word state: %w", err)
		}
		st, err := vocab.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		lw.MoveTo(word, st)
	}
	return lw, rows.Err()
}

func applyChange(ctx context.Context, exec DBExecutor, userID int64, lang string, c vocab.Change) error {
	if c.To == vocab.StatusNew {
		_, err := exec.ExecContext(ctx,
			`DELETE FROM word_status WHERE user_id = ? AND lang = ? AND word = ?`,
			userID, lang, c.Word)
		return err
	}
	_, err := exec.ExecContext(ctx, `INSERT INTO word_status (user_id, lang, word, status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, lang, word) DO UPDATE SET
			status = excluded.status,
			updated_on = CURRENT_TIMESTAMP`,
		userID, lang, c.Word, c.To.String())
	return err
}

// SetDefinition stores or replaces the user's definition of a word.
func (s *WordStore) SetDefinition(ctx context.Context, userID int64, lang, word, definition string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO word_definitions (user_id, lang, word, definition)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, lang, word) DO UPDATE SET
			definition = excluded.definition,
			updated_on = CURRENT_TIMESTAMP`,
		userID, lang, word, definition)
	if err != nil {
		return fmt.Errorf("upsert definition: %w", err)
	}
	return nil
}

// LoadUserWordData reads every word state and definition of a user.
func (s *WordStore) LoadUserWordData(ctx context.Context, userID int64) (*vocab.UserWordData, error) {
	return LoadUserWordData(ctx, s.db, userID)
}

// LoadUserWordData reads every word state and definition of a user through exec.
func LoadUserWordData(ctx context.Context, exec DBExecutor, userID int64) (*vocab.UserWordData, error) {
	data := vocab.NewUserWordData()
	if err := loadStates(ctx, exec, userID, data); err != nil {
		return nil, err
	}
	if err := loadDefinitions(ctx, exec, userID, data); err != nil {
		return nil, err
	}
	return data, nil
}

func loadStates(ctx context.Context, exec DBExecutor, userID int64, data *vocab.UserWordData) error {
	rows, err := exec.QueryContext(ctx,
		`SELECT lang, word, status FROM word_status WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("load word states: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var lang, word, status string
		if err := rows.Scan(&lang, &word, &status); err != nil {
			return fmt.Errorf("scan word state: %w", err)
		}
		st, err := vocab.ParseStatus(status)
		if err != nil {
			return err
		}
		data.Language(lang).MoveTo(word, st)
	}
	return rows.Err()
}

func loadDefinitions(ctx context.Context, exec DBExecutor, userID int64, data *vocab.UserWordData) error {
	rows, err := exec.QueryContext(ctx,
		`SELECT lang, word, definition FROM word_definitions WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("load definitions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var lang, word, def string
		if err := rows.Scan(&lang, &word, &def); err != nil {
			return fmt.Errorf("scan definition: %w", err)
		}
		data.SetDefinition(lang, word, def)
	}
	return rows.Err()
}
