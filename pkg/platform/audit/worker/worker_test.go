package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duediligence/pkg/platform/audit/store/postgres"
)

type fakeOutbox struct {
	entries   []postgres.OutboxEntry
	published []uuid.UUID
}

func (f *fakeOutbox) FetchUnpublished(_ context.Context, limit int) ([]postgres.OutboxEntry, error) {
	var out []postgres.OutboxEntry
	for _, e := range f.entries {
		if len(out) == limit {
			break
		}
		done := false
		for _, id := range f.published {
			if id == e.ID {
				done = true
			}
		}
		if !done {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeOutbox) MarkPublished(_ context.Context, ids []uuid.UUID, _ time.Time) error {
	f.published = append(f.published, ids...)
	return nil
}

type fakeProducer struct {
	keys   []string
	failOn int
}

func (p *fakeProducer) Produce(_ context.Context, key string, _ []byte) error {
	if p.failOn > 0 && len(p.keys)+1 == p.failOn {
		return errors.New("broker down")
	}
	p.keys = append(p.keys, key)
	return nil
}

func direct(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func entries(n int) []postgres.OutboxEntry {
	out := make([]postgres.OutboxEntry, n)
	for i := range out {
		out[i] = postgres.OutboxEntry{ID: uuid.New(), AggregateID: uuid.NewString(), Payload: []byte(`{}`)}
	}
	return out
}

func quiet() Option {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRelayOncePublishesInOrder(t *testing.T) {
	outbox := &fakeOutbox{entries: entries(3)}
	producer := &fakeProducer{}
	w := NewWorker(outbox, producer, direct, quiet())

	n, err := w.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	for i, e := range outbox.entries {
		assert.Equal(t, e.AggregateID, producer.keys[i])
	}

	n, err = w.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRelayOnceRespectsBatchSize(t *testing.T) {
	outbox := &fakeOutbox{entries: entries(5)}
	w := NewWorker(outbox, &fakeProducer{}, direct, WithBatchSize(2), quiet())

	n, err := w.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRelayOnceStopsAtFirstProduceFailure(t *testing.T) {
	outbox := &fakeOutbox{entries: entries(3)}
	w := NewWorker(outbox, &fakeProducer{failOn: 2}, direct, quiet())

	n, err := w.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []uuid.UUID{outbox.entries[0].ID}, outbox.published)
}

func TestRelayOnceLogsProduceError(t *testing.T) {
	outbox := &fakeOutbox{entries: entries(2)}
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	w := NewWorker(outbox, &fakeProducer{failOn: 2}, direct, WithLogger(logger))

	_, err := w.RelayOnce(context.Background())
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "outbox relay stopped early", record["msg"])
	assert.Equal(t, "broker down", record["error"])
	assert.Equal(t, outbox.entries[1].ID.String(), record["entry_id"])
	assert.EqualValues(t, 1, record["pending"])
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := NewWorker(&fakeOutbox{}, &fakeProducer{}, direct, WithInterval(time.Millisecond), quiet())

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
