package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/xela07ax/traveldesk/internal/audit"
)

// WriteBatch пишет пачку событий журнала переходов одним INSERT.
// Вызывается воркером audit.Trail, не горячим путем запроса.
func (r *Repo) WriteBatch(ctx context.Context, events []audit.Event) error {
	if len(events) == 0 {
		return nil
	}

	const numFields = 10
	var sb strings.Builder
	vals := make([]interface{}, 0, len(events)*numFields)

	for i, e := range events {
		p := i * numFields
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d),",
			p+1, p+2, p+3, p+4, p+5, p+6, p+7, p+8, p+9, p+10)

		vals = append(vals,
			e.ID, e.TraceID, e.ActorID, e.ActorRole, e.RequestID,
			e.RequestNumber, e.Transition, e.FromStatus, e.ToStatus, e.Timestamp,
		)
	}

	query := fmt.Sprintf(
		`INSERT INTO transition_log
		 (id, trace_id, actor_id, actor_role, request_id, request_number, transition, from_status, to_status, timestamp)
		 VALUES %s`,
		strings.TrimSuffix(sb.String(), ","),
	)

	if _, err := r.pool.Exec(ctx, query, vals...); err != nil {
		return fmt.Errorf("postgres: write transition log batch: %w", err)
	}
	return nil
}
