package vocab

import (
	"context"
	"sync"
)

// MemoryStore is a Store kept in process memory for service tests. Updates are applied to a
// copy and swapped in only on success.
type MemoryStore struct {
	mu   sync.Mutex
	data map[int64]*UserWordData

	// BeforeCommit, if set, sees the changes of every update before they are
	// applied. Returning an error aborts the update.
	BeforeCommit func(userID int64, lang string, changes []Change) error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[int64]*UserWordData)}
}

func (m *MemoryStore) user(userID int64) *UserWordData {
	d, ok := m.data[userID]
	if !ok {
		d = NewUserWordData()
		m.data[userID] = d
	}
	return d
}

// UpdateWords implements Store.
func (m *MemoryStore) UpdateWords(ctx context.Context, userID int64, lang string, fn func(*LanguageWords) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	d := m.user(userID)
	before, ok := d.Status[lang]
	if !ok {
		before = NewLanguageWords()
	}
	after := before.Clone()
	if err := fn(after); err != nil {
		return err
	}
	if m.BeforeCommit != nil {
		if err := m.BeforeCommit(userID, lang, Diff(before, after)); err != nil {
			return err
		}
	}
	d.Status[lang] = after
	return nil
}

// SetDefinition implements Store.
func (m *MemoryStore) SetDefinition(ctx context.Context, userID int64, lang, word, definition string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user(userID).SetDefinition(lang, word, definition)
	return nil
}

// LoadUserWordData implements Store. The result is a copy.
func (m *MemoryStore) LoadUserWordData(ctx context.Context, userID int64) (*UserWordData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := NewUserWordData()
	d, ok := m.data[userID]
	if !ok {
		return out, nil
	}
	for lang, lw := range d.Status {
		out.Status[lang] = lw.Clone()
	}
	for lang, defs := range d.Definitions {
		for w, def := range defs {
			out.SetDefinition(lang, w, def)
		}
	}
	return out, nil
}
