package ingest

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScratchDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })
	_, err = conn.Exec("CREATE TABLE test (id INTEGER PRIMARY KEY, val TEXT)")
	require.NoError(t, err)
	return conn
}

func insertVal(val string) WriteFunc {
	return func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO test (val) VALUES (?)", val)
		return err
	}
}

func countRows(t *testing.T, conn *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM test").Scan(&n))
	return n
}

func TestBatchWriterTransactions(t *testing.T) {
	conn := newScratchDB(t)
	bw := NewBatchWriter(conn, 2, 0, nil)

	require.NoError(t, bw.Submit(insertVal("A")))
	require.NoError(t, bw.Submit(insertVal("B")))
	require.NoError(t, bw.Submit(insertVal("C")))

	done := make(chan error, 1)
	go func() { done <- bw.Close() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for batch commit/close")
	}

	assert.Equal(t, 3, countRows(t, conn))
	assert.Equal(t, int64(3), bw.Committed())
}

func TestBatchWriterRollback(t *testing.T) {
	conn := newScratchDB(t)
	bw := NewBatchWriter(conn, 2, 0, nil)
	errCh := make(chan error, 1)
	bw.OnError = func(e error) { errCh <- e }

	intentional := errors.New("intentional error")
	require.NoError(t, bw.Submit(insertVal("C")))
	require.NoError(t, bw.Submit(func(ctx context.Context, tx *sql.Tx) error { return intentional }))

	assert.ErrorIs(t, bw.Close(), intentional)
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, intentional)
	default:
		t.Fatal("expected OnError to be called")
	}
	assert.Zero(t, countRows(t, conn))
	assert.Zero(t, bw.Committed())
}

func TestBatchWriterFlushesBySize(t *testing.T) {
	bw := NewBatchWriter(nil, 5, 0, nil)
	var mu sync.Mutex
	called := 0
	for range 12 {
		require.NoError(t, bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
			mu.Lock()
			called++
			mu.Unlock()
			return nil
		}))
	}
	require.NoError(t, bw.Close())
	assert.Equal(t, 12, called)
}

func TestBatchWriterFlushesOnInterval(t *testing.T) {
	bw := NewBatchWriter(nil, 10, 20*time.Millisecond, nil)
	flushed := make(chan struct{})
	require.NoError(t, bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
		close(flushed)
		return nil
	}))

	select {
	case <-flushed:
	case <-time.After(time.Second):
		t.Fatal("interval flush did not run")
	}
	require.NoError(t, bw.Close())
}

func TestBatchWriterSubmitAfterClose(t *testing.T) {
	bw := NewBatchWriter(nil, 1, 0, nil)
	require.NoError(t, bw.Close())
	assert.Equal(t, ErrBatchWriterClosed, bw.Submit(func(ctx context.Context, tx *sql.Tx) error { return nil }))
	assert.Equal(t, ErrBatchWriterClosed, bw.Close())
}

func TestBatchWriterDropsBatchAfterAbort(t *testing.T) {
	bw := NewBatchWriter(nil, 1, 0, nil)
	errCh := make(chan error, 4)
	bw.OnError = func(e error) { errCh <- e }

	blocker := make(chan struct{})
	require.NoError(t, bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
		<-blocker
		return nil
	}))

	bw.Abort()
	require.NoError(t, bw.Submit(func(ctx context.Context, tx *sql.Tx) error { return nil }))
	close(blocker)

	select {
	case e := <-errCh:
		assert.Contains(t, e.Error(), "dropping batch")
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected OnError to be called when batch dropped")
	}
	assert.Error(t, bw.Close())
}
