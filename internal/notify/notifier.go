// Package notify доставляет внеполосные уведомления о переходах жизненного
// цикла. Сервис только публикует сигнал в Redis; подписчики (почтовый воркер,
// мессенджер-интеграции) сами решают, как донести его до адресата. Отказ
// доставки никогда не откатывает уже зафиксированный переход.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/traveldesk/internal/domain"
	"github.com/xela07ax/traveldesk/internal/infra"
	"github.com/xela07ax/traveldesk/internal/lifecycle"
	"go.uber.org/zap"
)

// TransitionNotifier — контракт для сервисного слоя.
type TransitionNotifier interface {
	TransitionApplied(ctx context.Context, out *lifecycle.Outcome) error
}

// Signal — полезная нагрузка сообщения в канале.
type Signal struct {
	RequestID     string               `json:"request_id"`
	RequestNumber string               `json:"request_number"`
	Transition    lifecycle.Transition `json:"transition"`
	FromStatus    domain.RequestStatus `json:"from_status"`
	ToStatus      domain.RequestStatus `json:"to_status"`
	TargetRole    domain.UserRole      `json:"target_role"`
}

// RedisNotifier публикует сигнал перехода в общий канал.
type RedisNotifier struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisNotifier(rdb *redis.Client, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{
		rdb:    rdb,
		logger: logger.Named("notifier"),
	}
}

func (n *RedisNotifier) TransitionApplied(ctx context.Context, out *lifecycle.Outcome) error {
	// Переходы без адресата (delete, add-comment) сигнала не порождают
	if out.NotifyRole == "" {
		return nil
	}

	payload, err := json.Marshal(Signal{
		RequestID:     out.Request.ID,
		RequestNumber: out.Request.RequestNumber,
		Transition:    out.Transition,
		FromStatus:    out.PreviousStatus,
		ToStatus:      out.Request.Status,
		TargetRole:    out.NotifyRole,
	})
	if err != nil {
		return fmt.Errorf("notify: marshal signal: %w", err)
	}

	if err := n.rdb.Publish(ctx, infra.RedisChanRequestTransitions, payload).Err(); err != nil {
		return fmt.Errorf("notify: publish signal: %w", err)
	}

	n.logger.Debug("transition signal published",
		zap.String("request_number", out.Request.RequestNumber),
		zap.String("transition", string(out.Transition)),
		zap.String("target_role", string(out.NotifyRole)))

	return nil
}
