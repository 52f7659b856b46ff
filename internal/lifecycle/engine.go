// Package lifecycle реализует конечный автомат заявки на командировку.
//
// Движок чистый: никакого I/O, никакого разделяемого состояния. Каждая
// операция принимает копию заявки и актора, проверяет предусловия и
// возвращает Outcome — описание мутаций, которые вызывающая сторона обязана
// сохранить атомарно (новый статус, таймстемпы, прикрепленный комментарий).
// Одновременные вызовы для разных заявок безопасны; гонку по одной и той же
// заявке разрешает слой персистентности (см. SaveOutcome в репозитории).
package lifecycle

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xela07ax/traveldesk/internal/domain"
)

// Transition — именованная операция движка.
type Transition string

const (
	TransitionSubmit           Transition = "submit"
	TransitionApprove          Transition = "approve"
	TransitionDisapprove       Transition = "disapprove"
	TransitionReturnToEmployee Transition = "return-to-employee"
	TransitionDelete           Transition = "delete"
	TransitionAddComment       Transition = "add-comment"
)

// Outcome — результат успешного перехода: что именно надо персистить.
// Request — обновленная копия целиком, Comment — новый комментарий (если
// переход его порождает), NotifyRole — кому уходит уведомление (пустая
// строка — уведомление не нужно).
type Outcome struct {
	Request        domain.TravelRequest
	Comment        *domain.Comment
	Transition     Transition
	PreviousStatus domain.RequestStatus
	NotifyRole     domain.UserRole
}

// Engine проверяет предусловия переходов и вычисляет их результат.
// Часы и генератор идентификаторов подменяемы ради детерминированных тестов.
type Engine struct {
	// strictDisapprove требует статус SubmittedToManager для отклонения.
	// Референсное поведение — без проверки статуса (менеджер может отклонить
	// из любого активного состояния); включаем флагом до решения продукта.
	strictDisapprove bool

	now   func() time.Time
	newID func() string
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option        { return func(e *Engine) { e.now = now } }
func WithIDGenerator(newID func() string) Option   { return func(e *Engine) { e.newID = newID } }
func WithStrictDisapprove(strict bool) Option      { return func(e *Engine) { e.strictDisapprove = strict } }

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewTravelRequest создает заявку в статусе Draft с одноразово присвоенным
// номером. Единственный легальный вход в жизненный цикл.
func (e *Engine) NewTravelRequest(req domain.TravelRequest, actor domain.Actor) (*domain.TravelRequest, error) {
	if actor.Role != domain.RoleEmployee {
		return nil, domain.NewAuthorizationError("Only employees can create travel requests")
	}

	req.ID = e.newID()
	req.RequestNumber = NewRequestNumber(e.now())
	req.EmployeeID = actor.ID
	req.Status = domain.StatusDraft
	req.CreatedDate = e.now()
	req.SubmittedDate = nil
	req.ModifiedDate = nil
	req.ManagerID = nil
	req.IsDeleted = false
	req.DeletedDate = nil

	return &req, nil
}

// Submit переводит заявку на рассмотрение менеджеру.
// Легален только из Draft или ReturnedToEmployee и только для владельца.
func (e *Engine) Submit(req domain.TravelRequest, actor domain.Actor) (*Outcome, error) {
	if !CanPerform(actor, TransitionSubmit, &req) {
		return nil, domain.NewAuthorizationError("Only the owning employee can submit this request")
	}
	if req.Status != domain.StatusDraft && req.Status != domain.StatusReturnedToEmployee {
		return nil, domain.NewInvalidStateError("Only draft or returned requests can be submitted")
	}
	// Обязательные поля: табельный номер, проект, дата поездки
	if req.EmployeeCode == "" || req.ProjectName == "" || req.TravelDate == nil {
		return nil, domain.NewValidationError("All questions are mandatory to fill by the user")
	}

	prev := req.Status
	now := e.now()
	req.Status = domain.StatusSubmittedToManager
	req.SubmittedDate = &now

	return &Outcome{
		Request:        req,
		Transition:     TransitionSubmit,
		PreviousStatus: prev,
		NotifyRole:     domain.RoleManager,
	}, nil
}

// Approve фиксирует одобрение менеджером. Комментарий обязателен,
// ManagerID назначается здесь (первое действие менеджера по заявке).
func (e *Engine) Approve(req domain.TravelRequest, actor domain.Actor, commentText string) (*Outcome, error) {
	if isBlank(commentText) {
		return nil, domain.NewValidationError("Comments cannot be left blank")
	}
	if !CanPerform(actor, TransitionApprove, &req) {
		return nil, domain.NewAuthorizationError("Only managers can approve travel requests")
	}
	if req.Status != domain.StatusSubmittedToManager {
		return nil, domain.NewInvalidStateError("Request must be in SubmittedToManager status")
	}

	return e.decide(req, actor, commentText, TransitionApprove,
		domain.StatusApprovedByManager, domain.RoleHRTravelAdmin), nil
}

// Disapprove фиксирует отклонение менеджером. В нестрогом (референсном)
// режиме текущий статус не проверяется.
func (e *Engine) Disapprove(req domain.TravelRequest, actor domain.Actor, commentText string) (*Outcome, error) {
	if isBlank(commentText) {
		return nil, domain.NewValidationError("Comments cannot be left blank")
	}
	if !CanPerform(actor, TransitionDisapprove, &req) {
		return nil, domain.NewAuthorizationError("Only managers can disapprove travel requests")
	}
	if e.strictDisapprove && req.Status != domain.StatusSubmittedToManager {
		return nil, domain.NewInvalidStateError("Request must be in SubmittedToManager status")
	}

	return e.decide(req, actor, commentText, TransitionDisapprove,
		domain.StatusRejectedByManager, domain.RoleEmployee), nil
}

// decide — общая часть approve/disapprove: статус, ManagerID, таймстемп, комментарий.
func (e *Engine) decide(
	req domain.TravelRequest,
	actor domain.Actor,
	commentText string,
	transition Transition,
	next domain.RequestStatus,
	notify domain.UserRole,
) *Outcome {
	prev := req.Status
	now := e.now()

	req.Status = next
	managerID := actor.ID
	req.ManagerID = &managerID
	req.ModifiedDate = &now

	return &Outcome{
		Request:        req,
		Comment:        e.newComment(req.ID, actor.ID, commentText),
		Transition:     transition,
		PreviousStatus: prev,
		NotifyRole:     notify,
	}
}

// ReturnToEmployee возвращает заявку владельцу на доработку.
// ManagerID не трогаем: возврат — не решение по существу.
func (e *Engine) ReturnToEmployee(req domain.TravelRequest, actor domain.Actor, commentText string) (*Outcome, error) {
	if isBlank(commentText) {
		return nil, domain.NewValidationError("Comments cannot be left blank")
	}
	if !CanPerform(actor, TransitionReturnToEmployee, &req) {
		return nil, domain.NewAuthorizationError("Only managers or HR travel admins can return requests")
	}

	prev := req.Status
	now := e.now()
	req.Status = domain.StatusReturnedToEmployee
	req.ModifiedDate = &now

	return &Outcome{
		Request:        req,
		Comment:        e.newComment(req.ID, actor.ID, commentText),
		Transition:     TransitionReturnToEmployee,
		PreviousStatus: prev,
		NotifyRole:     domain.RoleEmployee,
	}, nil
}

// Delete — мягкое удаление. Только владелец и только из Draft;
// статус при этом не меняется.
func (e *Engine) Delete(req domain.TravelRequest, actor domain.Actor) (*Outcome, error) {
	if !CanPerform(actor, TransitionDelete, &req) {
		return nil, domain.NewAuthorizationError("Only the owning employee can delete this request")
	}
	if req.Status != domain.StatusDraft {
		return nil, domain.NewInvalidStateError("Only draft requests can be deleted")
	}

	now := e.now()
	req.IsDeleted = true
	req.DeletedDate = &now

	return &Outcome{
		Request:        req,
		Transition:     TransitionDelete,
		PreviousStatus: req.Status,
	}, nil
}

// AddComment прикрепляет комментарий без смены статуса.
// Доступно любому аутентифицированному актору в любом статусе.
func (e *Engine) AddComment(req domain.TravelRequest, actor domain.Actor, commentText string) (*Outcome, error) {
	if isBlank(commentText) {
		return nil, domain.NewValidationError("Comment text cannot be empty")
	}
	if !CanPerform(actor, TransitionAddComment, &req) {
		return nil, domain.NewAuthorizationError("Authentication required to comment")
	}

	return &Outcome{
		Request:        req,
		Comment:        e.newComment(req.ID, actor.ID, commentText),
		Transition:     TransitionAddComment,
		PreviousStatus: req.Status,
	}, nil
}

func (e *Engine) newComment(requestID, userID, text string) *domain.Comment {
	return &domain.Comment{
		ID:              e.newID(),
		TravelRequestID: requestID,
		UserID:          userID,
		CommentText:     text,
		CreatedDate:     e.now(),
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
