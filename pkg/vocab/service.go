package vocab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrEmptyWord is returned when an operation is given a blank word.
var ErrEmptyWord = errors.New("word must be non-empty")

// Store persists word states and definitions.
//
// UpdateWords loads the current states of (userID, lang), passes them to fn
// and persists the result only if fn and every write succeed. Calls for the
// same (userID, lang) must not interleave.
type Store interface {
	UpdateWords(ctx context.Context, userID int64, lang string, fn func(*LanguageWords) error) error
	SetDefinition(ctx context.Context, userID int64, lang, word, definition string) error
	LoadUserWordData(ctx context.Context, userID int64) (*UserWordData, error)
}

// Service applies status transitions and definition updates on a Store.
type Service struct {
	store Store
	log   *logrus.Entry
}

// NewService creates a Service. A nil logger discards output.
func NewService(store Store, logger *logrus.Entry) *Service {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = logrus.NewEntry(l)
	}
	return &Service{store: store, log: logger.WithField("component", "vocab")}
}

// UpdateStatus moves one word to the status named by status.
func (s *Service) UpdateStatus(ctx context.Context, userID int64, lang, word, status string) error {
	to, err := ParseStatus(status)
	if err != nil {
		return err
	}
	if strings.TrimSpace(word) == "" {
		return ErrEmptyWord
	}
	err = s.store.UpdateWords(ctx, userID, lang, func(lw *LanguageWords) error {
		lw.MoveTo(word, to)
		return nil
	})
	if err != nil {
		return fmt.Errorf("update word status: %w", err)
	}
	s.log.WithFields(logrus.Fields{"user": userID, "lang": lang, "word": word, "status": to}).Debug("word status updated")
	return nil
}

// UpdateStatusBatch moves every word to the status named by status. Either
// all words move or, on error, none do.
func (s *Service) UpdateStatusBatch(ctx context.Context, userID int64, lang string, words []string, status string) error {
	to, err := ParseStatus(status)
	if err != nil {
		return err
	}
	if len(words) == 0 {
		return nil
	}
	for _, w := range words {
		if strings.TrimSpace(w) == "" {
			return ErrEmptyWord
		}
	}
	err = s.store.UpdateWords(ctx, userID, lang, func(lw *LanguageWords) error {
		lw.MoveAllTo(words, to)
		return nil
	})
	if err != nil {
		return fmt.Errorf("update word status batch: %w", err)
	}
	s.log.WithFields(logrus.Fields{"user": userID, "lang": lang, "words": len(words), "status": to}).Debug("word status batch updated")
	return nil
}

// SetDefinition stores the user's definition of a word. The word's status is
// not touched.
func (s *Service) SetDefinition(ctx context.Context, userID int64, lang, word, definition string) error {
	if strings.TrimSpace(word) == "" {
		return ErrEmptyWord
	}
	if err := s.store.SetDefinition(ctx, userID, lang, word, definition); err != nil {
		return fmt.Errorf("update word definition: %w", err)
	}
	return nil
}

// WordData returns all states and definitions of a user.
func (s *Service) WordData(ctx context.Context, userID int64) (*UserWordData, error) {
	d, err := s.store.LoadUserWordData(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get word data: %w", err)
	}
	return d, nil
}

// StatusOf returns the status of one word.
func (s *Service) StatusOf(ctx context.Context, userID int64, lang, word string) (Status, error) {
	d, err := s.WordData(ctx, userID)
	if err != nil {
		return StatusNew, err
	}
	lw, ok := d.Status[lang]
	if !ok {
		return StatusNew, nil
	}
	return lw.StatusOf(word), nil
}
