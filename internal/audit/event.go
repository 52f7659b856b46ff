package audit

import (
	"time"

	"github.com/xela07ax/traveldesk/internal/domain"
)

// Event — одна запись журнала переходов: кто, над какой заявкой, какой
// переход и из какого статуса в какой. Пишется после коммита транзакции.
type Event struct {
	ID            string               `json:"id"`
	TraceID       string               `json:"trace_id"`
	ActorID       string               `json:"actor_id"`
	ActorRole     domain.UserRole      `json:"actor_role"`
	RequestID     string               `json:"request_id"`
	RequestNumber string               `json:"request_number"`
	Transition    string               `json:"transition"`
	FromStatus    domain.RequestStatus `json:"from_status"`
	ToStatus      domain.RequestStatus `json:"to_status"`
	Timestamp     time.Time            `json:"timestamp"`
}
