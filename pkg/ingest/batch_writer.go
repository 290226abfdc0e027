package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// WriteFunc performs database writes inside the batch transaction.
type WriteFunc func(ctx context.Context, tx *sql.Tx) error

// BatchWriter buffers writes and commits them in batches, one transaction per
// batch. A failing write rolls back its whole batch. Batches are committed
// in submission order by a single goroutine.
type BatchWriter struct {
	mu          sync.Mutex
	buf         []WriteFunc
	cap         int
	flushTicker *time.Ticker
	closed      bool
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc

	commitCh chan []WriteFunc
	db       *sql.DB
	log      *logrus.Entry
	// OnError receives every batch failure. It runs on the committer goroutine.
	OnError func(error)

	committed atomic.Int64

	errMu   sync.Mutex
	lastErr error
}

// NewBatchWriter creates a BatchWriter on conn that flushes when bufferSize
// writes are pending or, if flushInterval is positive, on every interval.
// A nil conn runs writes with a nil transaction.
func NewBatchWriter(conn *sql.DB, bufferSize int, flushInterval time.Duration, logger *logrus.Entry) *BatchWriter {
	if bufferSize <= 0 {
		bufferSize = 10
	}
	if logger == nil {
		logger = discardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	bw := &BatchWriter{
		buf:      make([]WriteFunc, 0, bufferSize),
		cap:      bufferSize,
		ctx:      ctx,
		cancel:   cancel,
		commitCh: make(chan []WriteFunc, 2),
		db:       conn,
		log:      logger.WithField("component", "batchwriter"),
	}

	bw.wg.Add(1)
	go bw.committer()

	if flushInterval > 0 {
		bw.flushTicker = time.NewTicker(flushInterval)
		bw.wg.Add(1)
		go bw.loop()
	}
	return bw
}

// Submit enqueues a write. It blocks while two full batches already wait
// for the committer.
func (bw *BatchWriter) Submit(w WriteFunc) error {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.closed {
		return ErrBatchWriterClosed
	}
	bw.buf = append(bw.buf, w)
	if len(bw.buf) >= bw.cap {
		bw.flushLocked()
	}
	return nil
}

// Committed returns the number of writes committed so far.
func (bw *BatchWriter) Committed() int64 { return bw.committed.Load() }

// Abort stops the writer from queueing further batches. Pending batches that
// cannot be queued are dropped and reported as errors.
func (bw *BatchWriter) Abort() { bw.cancel() }

// flushLocked assumes bw.mu is held.
func (bw *BatchWriter) flushLocked() {
	if len(bw.buf) == 0 {
		return
	}
	batch := bw.buf
	bw.buf = make([]WriteFunc, 0, bw.cap)

	if bw.ctx.Err() != nil {
		bw.fail(fmt.Errorf("batch writer: dropping batch of %d items due to context cancellation", len(batch)))
		return
	}
	select {
	case bw.commitCh <- batch:
	case <-bw.ctx.Done():
		bw.fail(fmt.Errorf("batch writer: dropping batch of %d items due to context cancellation", len(batch)))
	}
}

func (bw *BatchWriter) fail(err error) {
	bw.errMu.Lock()
	if bw.lastErr == nil {
		bw.lastErr = err
	}
	bw.errMu.Unlock()
	bw.log.WithError(err).Error("batch failed")
	if bw.OnError != nil {
		bw.OnError(err)
	}
}

func (bw *BatchWriter) committer() {
	defer bw.wg.Done()
	for batch := range bw.commitCh {
		if err := bw.commit(batch); err != nil {
			bw.fail(err)
			continue
		}
		bw.committed.Add(int64(len(batch)))
		bw.log.WithField("items", len(batch)).Debug("batch committed")
	}
}

func (bw *BatchWriter) commit(batch []WriteFunc) error {
	// Batches queued before Close still commit after the writer context ends.
	ctx := context.WithoutCancel(bw.ctx)

	if bw.db == nil {
		for _, w := range batch {
			if err := w(ctx, nil); err != nil {
				return err
			}
		}
		return nil
	}

	tx, err := bw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	for _, w := range batch {
		if err := w(ctx, tx); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch (%d items): %w", len(batch), err)
	}
	return nil
}

func (bw *BatchWriter) loop() {
	defer bw.wg.Done()
	for {
		select {
		case <-bw.ctx.Done():
			return
		case <-bw.flushTicker.C:
			bw.mu.Lock()
			bw.flushLocked()
			bw.mu.Unlock()
		}
	}
}

// Close flushes what is buffered, waits for every queued batch and returns
// the first error seen during the writer's lifetime.
func (bw *BatchWriter) Close() error {
	bw.mu.Lock()
	if bw.closed {
		bw.mu.Unlock()
		return ErrBatchWriterClosed
	}
	bw.closed = true
	if bw.flushTicker != nil {
		bw.flushTicker.Stop()
	}
	bw.flushLocked()
	bw.mu.Unlock()

	bw.cancel()
	close(bw.commitCh)
	bw.wg.Wait()

	bw.errMu.Lock()
	defer bw.errMu.Unlock()
	return bw.lastErr
}

// ErrBatchWriterClosed is returned by Submit and Close after Close.
var ErrBatchWriterClosed = &BatchWriterError{"batch writer closed"}

// BatchWriterError is the typed error of BatchWriter operations.
type BatchWriterError struct{ msg string }

func (e *BatchWriterError) Error() string { return e.msg }

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
