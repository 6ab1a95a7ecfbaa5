// Package worker relays committed outbox entries to Kafka.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"duediligence/pkg/platform/audit/store/postgres"
)

// Outbox is the source of unpublished audit entries.
type Outbox interface {
	FetchUnpublished(ctx context.Context, limit int) ([]postgres.OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Producer delivers one record synchronously.
type Producer interface {
	Produce(ctx context.Context, key string, value []byte) error
}

// TxRunner runs fn in a transaction carried on the context.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Worker polls the outbox and publishes entries in creation order. Entries
// are marked published in the same transaction that locked them, so a crash
// between produce and commit redelivers rather than drops.
type Worker struct {
	outbox    Outbox
	producer  Producer
	runInTx   TxRunner
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

type Option func(*Worker)

func WithInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

func NewWorker(outbox Outbox, producer Producer, runInTx TxRunner, opts ...Option) *Worker {
	w := &Worker{
		outbox:    outbox,
		producer:  producer,
		runInTx:   runInTx,
		logger:    slog.Default(),
		interval:  time.Second,
		batchSize: 100,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until ctx is cancelled. Relay failures are logged and retried on
// the next tick.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.RelayOnce(ctx); err != nil && ctx.Err() == nil {
				w.logger.ErrorContext(ctx, "outbox relay failed", "error", err)
			}
		}
	}
}

// RelayOnce publishes one batch and returns how many entries were delivered.
func (w *Worker) RelayOnce(ctx context.Context) (int, error) {
	var published int
	err := w.runInTx(ctx, func(ctx context.Context) error {
		entries, err := w.outbox.FetchUnpublished(ctx, w.batchSize)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(entries))
		var produceErr error
		for _, e := range entries {
			if produceErr = w.producer.Produce(ctx, e.AggregateID, e.Payload); produceErr != nil {
				break
			}
			ids = append(ids, e.ID)
		}
		if err := w.outbox.MarkPublished(ctx, ids, time.Now().UTC()); err != nil {
			return err
		}
		published = len(ids)
		if len(ids) < len(entries) {
			w.logger.WarnContext(ctx, "outbox relay stopped early",
				"published", len(ids),
				"pending", len(entries)-len(ids),
				"entry_id", entries[len(ids)].ID,
				"error", produceErr,
			)
		}
		return nil
	})
	return published, err
}
