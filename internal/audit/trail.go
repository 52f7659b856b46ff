package audit

/*
Trail — буферизованный журнал переходов жизненного цикла.

Запись не блокирует обработку запроса: события уходят в канал, воркер
копит пачку и пишет её в PostgreSQL по таймеру или при достижении лимита.
При остановке сервиса канал запирается и буфер дописывается до конца
(Drain Pattern), чтобы не потерять события при перезагрузке.
*/

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Storage определяет, куда физически сохраняются события.
type Storage interface {
	// WriteBatch сохраняет пачку событий за один раз
	WriteBatch(ctx context.Context, events []Event) error
}

// Recorder — то, что нужно сервисам от журнала.
type Recorder interface {
	Record(event Event)
}

type Trail struct {
	ch        chan Event
	repo      Storage
	logger    *zap.Logger
	batchSize int
	interval  time.Duration
	gauge     prometheus.Gauge
	wg        sync.WaitGroup
	isClosed  int32 // атомарный флаг: 1 — вход заперт, Record дропает
}

type TrailOptions struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration

	// BufferGauge отражает заполненность буфера (saturation); может быть nil
	BufferGauge prometheus.Gauge
}

func NewTrail(repo Storage, logger *zap.Logger, opts TrailOptions) *Trail {
	if opts.BufferSize <= 0 {
		opts.BufferSize = 1000
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = time.Second
	}
	return &Trail{
		ch:        make(chan Event, opts.BufferSize),
		repo:      repo,
		logger:    logger.With(zap.String("mod", "audit-trail")),
		batchSize: opts.BatchSize,
		interval:  opts.FlushInterval,
		gauge:     opts.BufferGauge,
	}
}

func (t *Trail) Start() {
	t.wg.Add(1)
	go t.worker()
}

// Stop запирает вход в канал и ждет, пока воркер всё допишет.
func (t *Trail) Stop() {
	atomic.StoreInt32(&t.isClosed, 1)

	// Крошечная пауза, чтобы текущие Record успели проскочить
	time.Sleep(10 * time.Millisecond)

	t.logger.Info("stopping audit trail: closing channel and flushing buffer")
	close(t.ch)
	t.wg.Wait()
	t.logger.Info("audit trail stopped gracefully")
}

func (t *Trail) Record(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if atomic.LoadInt32(&t.isClosed) == 1 {
		t.logger.Warn("audit event dropped: trail is stopping", zap.String("id", event.ID))
		return
	}

	// Load Shedding: при переполненном буфере событие не теряем молча,
	// а фиксируем в обычном логе
	select {
	case t.ch <- event:
		if t.gauge != nil {
			t.gauge.Set(float64(len(t.ch)))
		}
	default:
		t.logger.Error("audit_buffer_overflow",
			zap.String("request_id", event.RequestID),
			zap.String("transition", event.Transition),
		)
	}
}

func (t *Trail) worker() {
	defer t.wg.Done()

	batch := make([]Event, 0, t.batchSize)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		// Background: основной контекст к этому моменту может быть уже закрыт
		if err := t.repo.WriteBatch(context.Background(), batch); err != nil {
			t.logger.Error("audit flush failed", zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case event, ok := <-t.ch:
			if !ok {
				// Канал заперт в Stop(): вычитали остатки — финальный сброс и выход
				flush()
				t.logger.Info("audit worker finished")
				return
			}
			batch = append(batch, event)
			if len(batch) >= t.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
