package audit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memStorage struct {
	mu      sync.Mutex
	batches [][]Event
}

func (m *memStorage) WriteBatch(_ context.Context, events []Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	batch := make([]Event, len(events))
	copy(batch, events)
	m.batches = append(m.batches, batch)
	return nil
}

func (m *memStorage) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.batches {
		n += len(b)
	}
	return n
}

func TestTrail_FlushOnBatchSize(t *testing.T) {
	storage := &memStorage{}
	trail := NewTrail(storage, zap.NewNop(), TrailOptions{
		BufferSize:    100,
		BatchSize:     5,
		FlushInterval: time.Hour, // таймер не должен сработать в этом тесте
	})
	trail.Start()

	for i := 0; i < 5; i++ {
		trail.Record(Event{ID: fmt.Sprintf("e-%d", i), RequestID: "req-1", Transition: "submit"})
	}

	require.Eventually(t, func() bool { return storage.total() == 5 },
		2*time.Second, 10*time.Millisecond)

	storage.mu.Lock()
	defer storage.mu.Unlock()
	require.Len(t, storage.batches, 1)
	assert.Len(t, storage.batches[0], 5)
}

func TestTrail_StopDrainsBuffer(t *testing.T) {
	storage := &memStorage{}
	trail := NewTrail(storage, zap.NewNop(), TrailOptions{
		BufferSize:    100,
		BatchSize:     1000, // порог пачки недостижим
		FlushInterval: time.Hour,
	})
	trail.Start()

	for i := 0; i < 7; i++ {
		trail.Record(Event{ID: fmt.Sprintf("e-%d", i)})
	}

	// Stop обязан дописать всё, что лежит в буфере
	trail.Stop()
	assert.Equal(t, 7, storage.total())
}

func TestTrail_RecordAfterStopIsDropped(t *testing.T) {
	storage := &memStorage{}
	trail := NewTrail(storage, zap.NewNop(), TrailOptions{BufferSize: 10})
	trail.Start()
	trail.Stop()

	// Не должно паниковать записью в закрытый канал
	trail.Record(Event{ID: "late"})
	assert.Equal(t, 0, storage.total())
}

func TestTrail_TimestampDefaulted(t *testing.T) {
	storage := &memStorage{}
	trail := NewTrail(storage, zap.NewNop(), TrailOptions{BufferSize: 10})
	trail.Start()

	trail.Record(Event{ID: "e-1"})
	trail.Stop()

	require.Equal(t, 1, storage.total())
	assert.False(t, storage.batches[0][0].Timestamp.IsZero())
}
