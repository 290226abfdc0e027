package db

import (
	"errors"
	"strings"
)

// ErrNoChanges is returned by partial updates with nothing to set.
var ErrNoChanges = errors.New("no fields to update")

// UpdateBuilder collects column assignments for a partial UPDATE.
// Columns are added only when their value is present, so callers can pass
// optional patch fields straight through.
type UpdateBuilder struct {
	sets []string
	args []any
}

// Set adds "column = ?" unconditionally.
func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, column+" = ?")
	b.args = append(b.args, value)
	return b
}

// SetString adds the column when v is non-nil.
func (b *UpdateBuilder) SetString(column string, v *string) *UpdateBuilder {
	if v != nil {
		b.Set(column, *v)
	}
	return b
}

// SetBool adds the column when v is non-nil.
func (b *UpdateBuilder) SetBool(column string, v *bool) *UpdateBuilder {
	if v != nil {
		b.Set(column, *v)
	}
	return b
}

// Empty reports whether no assignment was added.
func (b *UpdateBuilder) Empty() bool { return len(b.sets) == 0 }

// Build returns "UPDATE table SET ... WHERE id = ?" and its arguments.
func (b *UpdateBuilder) Build(table string, id int64) (string, []any, error) {
	if b.Empty() {
		return "", nil, ErrNoChanges
	}
	q := "UPDATE " + table + " SET " + strings.Join(b.sets, ", ") + " WHERE id = ?"
	args := append(append([]any(nil), b.args...), id)
	return q, args, nil
}
