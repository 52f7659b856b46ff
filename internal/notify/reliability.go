package notify

import (
	"context"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker"
	"github.com/xela07ax/traveldesk/internal/infra"
	"github.com/xela07ax/traveldesk/internal/lifecycle"
)

// ReliableNotifier оборачивает доставку сигнала в retry и предохранитель.
// Если Redis лежит, предохранитель открывается и мы перестаем тратить время
// в горячем пути: переход уже закоммичен, пропавший сигнал — деградация,
// а не потеря данных.
type ReliableNotifier struct {
	next TransitionNotifier
	cb   *gobreaker.CircuitBreaker
}

func NewReliableNotifier(next TransitionNotifier, cfg infra.EngineConfig) *ReliableNotifier {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "transition-notifier",
		MaxRequests: cfg.CBMaxRequests,
		Interval:    cfg.CBInterval,
		Timeout:     cfg.CBTimeout, // время, через которое CB попробует закрыться
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &ReliableNotifier{next: next, cb: cb}
}

func (w *ReliableNotifier) TransitionApplied(ctx context.Context, out *lifecycle.Outcome) error {
	_, err := w.cb.Execute(func() (interface{}, error) {
		r := retry.New(
			retry.Context(ctx),
			retry.Attempts(3),
		)
		return nil, r.Do(func() error {
			tCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			return w.next.TransitionApplied(tCtx, out)
		})
	})
	return err
}
