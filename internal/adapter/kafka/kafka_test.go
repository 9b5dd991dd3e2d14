package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/river-radar-sim/internal/domain"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func testRecord(tick uint64) domain.ReadingRecord {
	return domain.ReadingRecord{
		SessionID: "run-42",
		Reading: domain.Reading{
			Tick:         tick,
			Timestamp:    time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
			Velocity:     0.43,
			HitType:      domain.HitWater,
			DischargeM3s: 12.5,
			Status:       domain.StatusAlert,
		},
	}
}

func TestSerializeToMessage(t *testing.T) {
	msg, err := serializeToMessage(testRecord(7))
	require.NoError(t, err)

	assert.Equal(t, []byte("run-42"), msg.Key)
	assert.Contains(t, string(msg.Value), `"tick":7`)
	assert.Equal(t, time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC), msg.Time)

	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "emitted_at", msg.Headers[0].Key)
	assert.Equal(t, []byte("2026-03-14T09:30:00Z"), msg.Headers[0].Value)
	assert.Equal(t, "hit_type", msg.Headers[1].Key)
	assert.Equal(t, []byte("WATER"), msg.Headers[1].Value)
	assert.Equal(t, "status", msg.Headers[2].Key)
	assert.Equal(t, []byte("alert"), msg.Headers[2].Value)
}

func TestWriterPublish(t *testing.T) {
	fw := &fakeWriter{}
	w := &Writer{writer: fw, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	require.NoError(t, w.Publish(context.Background(), nil))
	assert.Empty(t, fw.msgs)

	require.NoError(t, w.Publish(context.Background(), []domain.ReadingRecord{testRecord(1), testRecord(2)}))
	assert.Len(t, fw.msgs, 2)
	assert.Equal(t, "kafka", w.Name())

	require.NoError(t, w.Close())
	assert.True(t, fw.closed)
}

func TestWriterPublishError(t *testing.T) {
	fw := &fakeWriter{err: errors.New("leader not available")}
	w := &Writer{writer: fw, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	err := w.Publish(context.Background(), []domain.ReadingRecord{testRecord(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
}
