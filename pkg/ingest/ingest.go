// Package ingest imports articles: it fetches and extracts web pages,
// analyzes texts concurrently and stores them in batched transactions.
package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/japaniel/vocabreader/pkg/db"
	"github.com/japaniel/vocabreader/pkg/lang"
)

// SystemUserID is the uploader whose articles are marked as system articles.
const SystemUserID int64 = 1

// WorkerPoolInterface abstracts the worker pool so tests can inject failing implementations.
type WorkerPoolInterface interface {
	Start(ctx context.Context)
	Submit(Job) error
	// SubmitCtx attempts to enqueue a job but returns promptly if ctx is canceled.
	SubmitCtx(ctx context.Context, job Job) error
	Close()
}

// Source is one text to import.
type Source struct {
	Title     string
	Author    string
	Text      string
	Language  string
	URL       string
	Tags      []string
	IsPrivate bool
}

// Ingester analyzes many articles in parallel and stores them in input order.
type Ingester struct {
	DB            *sql.DB
	Analyzer      *lang.Analyzer
	BatchSize     int
	FlushInterval time.Duration
	Workers       int
	Logger        *logrus.Entry
	// OnProgress is called with the number of articles handed to the writer.
	OnProgress func(current, total int)

	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) WorkerPoolInterface
}

// NewIngester creates an Ingester with default batching and concurrency.
func NewIngester(conn *sql.DB, analyzer *lang.Analyzer, logger *logrus.Entry) *Ingester {
	if analyzer == nil {
		analyzer = lang.NewAnalyzer(lang.DefaultPageSizes)
	}
	if logger == nil {
		logger = discardLogger()
	}
	return &Ingester{
		DB:            conn,
		Analyzer:      analyzer,
		BatchSize:     20,
		FlushInterval: 100 * time.Millisecond,
		Workers:       4,
		Logger:        logger.WithField("component", "ingest"),
	}
}

type analyzed struct {
	index   int
	article *db.Article
	err     error
}

// Ingest analyzes and stores sources on behalf of uploaderID and returns the
// new article ids in input order. The first failure stops the import and is
// returned with nil ids; batches committed before it stay stored.
func (ig *Ingester) Ingest(ctx context.Context, uploaderID int64, sources []Source) ([]int64, error) {
	if len(sources) == 0 {
		return nil, nil
	}
	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := max(ig.Workers, 1)
	var wp WorkerPoolInterface
	if ig.PoolFactory != nil {
		wp = ig.PoolFactory(workers, workers*2)
	} else {
		wp = NewWorkerPool(workers, workers*2)
	}
	results := make(chan analyzed, workers*2)
	bw := NewBatchWriter(ig.DB, ig.BatchSize, ig.FlushInterval, ig.logger())
	ids := make([]int64, len(sources))

	consumerDone := make(chan error, 1)
	go func() {
		consumerDone <- ig.consume(results, bw, ids, cancel)
	}()

	wp.Start(ctx)
	var submitErr error
	for i, src := range sources {
		job := func(ctx context.Context) error {
			res := ig.analyze(i, src, uploaderID)
			select {
			case results <- res:
			case <-ctx.Done():
			}
			return res.err
		}
		if err := wp.SubmitCtx(ctx, job); err != nil {
			if ctx.Err() == nil {
				submitErr = fmt.Errorf("submit article %d: %w", i, err)
				cancel()
			}
			break
		}
	}

	// every worker has returned once Close does, so nothing sends on results
	wp.Close()
	close(results)
	consumerErr := <-consumerDone
	closeErr := bw.Close()

	err := firstErr(submitErr, consumerErr, closeErr, parent.Err())
	if err != nil {
		ig.logger().WithError(err).WithField("committed", bw.Committed()).Error("ingest failed")
		return nil, err
	}
	ig.logger().WithField("articles", len(ids)).Info("ingest complete")
	return ids, nil
}

// consume reorders analysis results and hands them to the writer in input
// order. ids[i] is set by the committer once article i is inserted.
func (ig *Ingester) consume(results <-chan analyzed, bw *BatchWriter, ids []int64, cancel context.CancelFunc) error {
	pending := make(map[int]*db.Article)
	next := 0
	for res := range results {
		if res.err != nil {
			cancel()
			return res.err
		}
		pending[res.index] = res.article
		for {
			a, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			idx := next
			err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
				id, err := db.InsertArticle(ctx, tx, a)
				if err != nil {
					return fmt.Errorf("store article %d %q: %w", idx, a.Title, err)
				}
				ids[idx] = id
				return nil
			})
			if err != nil {
				cancel()
				return err
			}
			next++
			if ig.OnProgress != nil {
				ig.OnProgress(next, len(ids))
			}
		}
	}
	return nil
}

func (ig *Ingester) analyze(index int, src Source, uploaderID int64) analyzed {
	analyzer := ig.Analyzer
	if analyzer == nil {
		analyzer = lang.NewAnalyzer(lang.DefaultPageSizes)
	}
	doc, err := analyzer.AnalyzeDocument(src.Text, src.Language)
	if err != nil {
		return analyzed{index: index, err: fmt.Errorf("analyze article %d %q: %w", index, src.Title, err)}
	}
	a := db.NewArticle(src.Title, src.Author, src.Text, doc)
	a.Tags = src.Tags
	a.SourceURL = src.URL
	a.IsPrivate = src.IsPrivate
	a.UploaderID = uploaderID
	a.IsSystem = uploaderID == SystemUserID
	ig.logger().WithFields(logrus.Fields{"index": index, "tokens": len(doc.Tokens), "unique": doc.UniqueCount}).Debug("article analyzed")
	return analyzed{index: index, article: a}
}

func (ig *Ingester) logger() *logrus.Entry {
	if ig.Logger == nil {
		return discardLogger()
	}
	return ig.Logger
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
