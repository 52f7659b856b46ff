package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xela07ax/traveldesk/internal/audit"
	"github.com/xela07ax/traveldesk/internal/domain"
	"github.com/xela07ax/traveldesk/internal/infra"
	"github.com/xela07ax/traveldesk/internal/lifecycle"
	"github.com/xela07ax/traveldesk/internal/notify"
	"go.uber.org/zap"
)

// TravelRepository описывает требования сервиса к хранилищу заявок.
// Контракт: GetTravelRequest не видит мягко удаленные (NotFound);
// SaveOutcome атомарен и возвращает ConflictError проигравшему гонку.
type TravelRepository interface {
	GetTravelRequest(ctx context.Context, id string) (*domain.TravelRequest, error)
	CreateTravelRequest(ctx context.Context, req *domain.TravelRequest) error
	SaveOutcome(ctx context.Context, out *lifecycle.Outcome) error
	ListTravelRequestsByEmployee(ctx context.Context, employeeID string) ([]*domain.TravelRequest, error)
	ListTravelRequestsByStatus(ctx context.Context, status domain.RequestStatus) ([]*domain.TravelRequest, error)
	ListComments(ctx context.Context, travelRequestID string) ([]*domain.Comment, error)
}

// TravelService оркестрирует жизненный цикл: загрузка заявки → чистый
// движок → атомарное сохранение → журнал, метрики, сигнал уведомления.
// Сам сервис решений не принимает — вся логика переходов в lifecycle.
type TravelService struct {
	engine   *lifecycle.Engine
	repo     TravelRepository
	notifier notify.TransitionNotifier
	trail    audit.Recorder
	metrics  *infra.Metrics
	logger   *zap.Logger
}

func NewTravelService(
	engine *lifecycle.Engine,
	repo TravelRepository,
	notifier notify.TransitionNotifier,
	trail audit.Recorder,
	metrics *infra.Metrics,
	logger *zap.Logger,
) *TravelService {
	return &TravelService{
		engine:   engine,
		repo:     repo,
		notifier: notifier,
		trail:    trail,
		metrics:  metrics,
		logger:   logger.Named("travel-service"),
	}
}

// Create принимает уже типизированную заготовку заявки: разбор строковых
// enum-значений остался на границе (в хендлере). Номер, статус и владельца
// назначает движок.
func (s *TravelService) Create(ctx context.Context, in domain.TravelRequest, actor domain.Actor) (*domain.TravelRequest, error) {
	req, err := s.engine.NewTravelRequest(in, actor)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateTravelRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("service: create travel request: %w", err)
	}

	s.trail.Record(audit.Event{
		ID:            uuid.NewString(),
		TraceID:       infra.TraceIDFromContext(ctx),
		ActorID:       actor.ID,
		ActorRole:     actor.Role,
		RequestID:     req.ID,
		RequestNumber: req.RequestNumber,
		Transition:    "create",
		FromStatus:    "",
		ToStatus:      req.Status,
	})

	s.logger.Info("travel request created",
		zap.String("request_number", req.RequestNumber),
		zap.String("employee_id", actor.ID))

	return req, nil
}

func (s *TravelService) Get(ctx context.Context, id string) (*domain.TravelRequest, error) {
	return s.repo.GetTravelRequest(ctx, id)
}

// ListOwn — заявки самого сотрудника.
func (s *TravelService) ListOwn(ctx context.Context, actor domain.Actor) ([]*domain.TravelRequest, error) {
	return s.repo.ListTravelRequestsByEmployee(ctx, actor.ID)
}

// ListPending — очередь менеджера: всё, что ждет его решения.
func (s *TravelService) ListPending(ctx context.Context) ([]*domain.TravelRequest, error) {
	return s.repo.ListTravelRequestsByStatus(ctx, domain.StatusSubmittedToManager)
}

func (s *TravelService) Submit(ctx context.Context, id string, actor domain.Actor) (*lifecycle.Outcome, error) {
	return s.apply(ctx, id, actor, lifecycle.TransitionSubmit,
		func(req domain.TravelRequest) (*lifecycle.Outcome, error) {
			return s.engine.Submit(req, actor)
		})
}

func (s *TravelService) Approve(ctx context.Context, id string, actor domain.Actor, commentText string) (*lifecycle.Outcome, error) {
	return s.apply(ctx, id, actor, lifecycle.TransitionApprove,
		func(req domain.TravelRequest) (*lifecycle.Outcome, error) {
			return s.engine.Approve(req, actor, commentText)
		})
}

func (s *TravelService) Disapprove(ctx context.Context, id string, actor domain.Actor, commentText string) (*lifecycle.Outcome, error) {
	return s.apply(ctx, id, actor, lifecycle.TransitionDisapprove,
		func(req domain.TravelRequest) (*lifecycle.Outcome, error) {
			return s.engine.Disapprove(req, actor, commentText)
		})
}

func (s *TravelService) ReturnToEmployee(ctx context.Context, id string, actor domain.Actor, commentText string) (*lifecycle.Outcome, error) {
	return s.apply(ctx, id, actor, lifecycle.TransitionReturnToEmployee,
		func(req domain.TravelRequest) (*lifecycle.Outcome, error) {
			return s.engine.ReturnToEmployee(req, actor, commentText)
		})
}

func (s *TravelService) Delete(ctx context.Context, id string, actor domain.Actor) (*lifecycle.Outcome, error) {
	return s.apply(ctx, id, actor, lifecycle.TransitionDelete,
		func(req domain.TravelRequest) (*lifecycle.Outcome, error) {
			return s.engine.Delete(req, actor)
		})
}

func (s *TravelService) AddComment(ctx context.Context, id string, actor domain.Actor, commentText string) (*lifecycle.Outcome, error) {
	return s.apply(ctx, id, actor, lifecycle.TransitionAddComment,
		func(req domain.TravelRequest) (*lifecycle.Outcome, error) {
			return s.engine.AddComment(req, actor, commentText)
		})
}

func (s *TravelService) ListComments(ctx context.Context, travelRequestID string) ([]*domain.Comment, error) {
	return s.repo.ListComments(ctx, travelRequestID)
}

// apply — единый механизм исполнения перехода: одна загрузка, одна попытка,
// никакого ретрая. Отказ доставки сигнала не откатывает переход.
func (s *TravelService) apply(
	ctx context.Context,
	id string,
	actor domain.Actor,
	transition lifecycle.Transition,
	fn func(domain.TravelRequest) (*lifecycle.Outcome, error),
) (*lifecycle.Outcome, error) {
	req, err := s.repo.GetTravelRequest(ctx, id)
	if err != nil {
		s.metrics.TransitionsTotal.WithLabelValues(string(transition), resultLabel(err)).Inc()
		return nil, err
	}

	out, err := fn(*req)
	if err != nil {
		s.metrics.TransitionsTotal.WithLabelValues(string(transition), resultLabel(err)).Inc()
		return nil, err
	}

	if err := s.repo.SaveOutcome(ctx, out); err != nil {
		s.metrics.TransitionsTotal.WithLabelValues(string(transition), resultLabel(err)).Inc()
		s.logger.Error("failed to persist transition",
			zap.String("request_id", id),
			zap.String("transition", string(transition)),
			zap.Error(err))
		return nil, err
	}

	s.metrics.TransitionsTotal.WithLabelValues(string(transition), "applied").Inc()

	commentID := ""
	if out.Comment != nil {
		commentID = out.Comment.ID
	}

	s.trail.Record(audit.Event{
		ID:            uuid.NewString(),
		TraceID:       infra.TraceIDFromContext(ctx),
		ActorID:       actor.ID,
		ActorRole:     actor.Role,
		RequestID:     out.Request.ID,
		RequestNumber: out.Request.RequestNumber,
		Transition:    string(transition),
		FromStatus:    out.PreviousStatus,
		ToStatus:      out.Request.Status,
	})

	// Переход уже закоммичен: пропавший сигнал — деградация, а не откат
	if err := s.notifier.TransitionApplied(ctx, out); err != nil {
		s.metrics.NotifyFailures.Inc()
		s.logger.Warn("transition signal delivery failed",
			zap.String("request_number", out.Request.RequestNumber),
			zap.String("transition", string(transition)),
			zap.Error(err))
	}

	s.logger.Info("transition applied",
		zap.String("request_number", out.Request.RequestNumber),
		zap.String("transition", string(transition)),
		zap.String("from", string(out.PreviousStatus)),
		zap.String("to", string(out.Request.Status)),
		zap.String("actor_id", actor.ID),
		zap.String("comment_id", commentID))

	return out, nil
}

// resultLabel переводит классификацию ошибки в метку метрики.
func resultLabel(err error) string {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return "validation"
	case domain.KindAuthorization:
		return "authorization"
	case domain.KindInvalidState:
		return "invalid_state"
	case domain.KindNotFound:
		return "not_found"
	case domain.KindConflict:
		return "conflict"
	default:
		return "error"
	}
}
