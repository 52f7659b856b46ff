package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/traveldesk/internal/domain"
	"github.com/xela07ax/traveldesk/internal/infra/auth"
	"github.com/xela07ax/traveldesk/internal/lifecycle"
	"go.uber.org/zap"
)

// TravelService Описываем, что нам нужно от сервиса
type TravelService interface {
	Create(ctx context.Context, in domain.TravelRequest, actor domain.Actor) (*domain.TravelRequest, error)
	Get(ctx context.Context, id string) (*domain.TravelRequest, error)
	ListOwn(ctx context.Context, actor domain.Actor) ([]*domain.TravelRequest, error)
	ListPending(ctx context.Context) ([]*domain.TravelRequest, error)

	Submit(ctx context.Context, id string, actor domain.Actor) (*lifecycle.Outcome, error)
	Approve(ctx context.Context, id string, actor domain.Actor, commentText string) (*lifecycle.Outcome, error)
	Disapprove(ctx context.Context, id string, actor domain.Actor, commentText string) (*lifecycle.Outcome, error)
	ReturnToEmployee(ctx context.Context, id string, actor domain.Actor, commentText string) (*lifecycle.Outcome, error)
	Delete(ctx context.Context, id string, actor domain.Actor) (*lifecycle.Outcome, error)
}

type TravelHandler struct {
	service TravelService
	logger  *zap.Logger
}

func NewTravelHandler(s TravelService, logger *zap.Logger) *TravelHandler {
	return &TravelHandler{service: s, logger: logger.Named("travel-handler")}
}

// createTravelRequest — тело POST /api/travel-requests.
// Даты — RFC3339, enum-поля — строки, разбираем здесь.
type createTravelRequest struct {
	EmployeeCode        string  `json:"employee_code"`
	EmployeeName        string  `json:"employee_name"`
	ProjectName         string  `json:"project_name"`
	DepartmentName      string  `json:"department_name"`
	ReasonForTravelling string  `json:"reason_for_travelling"`
	TypeOfBooking       string  `json:"type_of_booking"`
	AadharNumber        *string `json:"aadhar_number"`
	PassportNumber      *string `json:"passport_number"`
	TravelDate          *string `json:"travel_date"`
	DaysOfStay          *int    `json:"days_of_stay"`
	MealRequired        *string `json:"meal_required"`
	MealPreference      *string `json:"meal_preference"`
}

func (h *TravelHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body createTravelRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.NewValidationError("Invalid request body"))
		return
	}

	in, err := body.toDomain()
	if err != nil {
		writeError(w, err)
		return
	}

	req, err := h.service.Create(r.Context(), *in, actor)
	if err != nil {
		h.logOnInternal("create travel request", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, req)
}

func (h *TravelHandler) Get(w http.ResponseWriter, r *http.Request) {
	req, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// ListOwn — заявки текущего сотрудника.
func (h *TravelHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	list, err := h.service.ListOwn(r.Context(), actor)
	if err != nil {
		h.logOnInternal("list own travel requests", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ListPending — очередь на решение менеджера.
func (h *TravelHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListPending(r.Context())
	if err != nil {
		h.logOnInternal("list pending travel requests", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// decisionRequest — тело approve/disapprove/return: комментарий обязателен,
// но проверяет это движок, не хендлер.
type decisionRequest struct {
	Comment string `json:"comment"`
}

func (h *TravelHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, id string, actor domain.Actor) (*lifecycle.Outcome, error) {
		return h.service.Submit(ctx, id, actor)
	})
}

func (h *TravelHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Approve)
}

func (h *TravelHandler) Disapprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Disapprove)
}

func (h *TravelHandler) ReturnToEmployee(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.ReturnToEmployee)
}

func (h *TravelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if _, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), actor); err != nil {
		h.logOnInternal("delete travel request", err)
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// transition — общий каркас перехода без тела запроса.
func (h *TravelHandler) transition(
	w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, id string, actor domain.Actor) (*lifecycle.Outcome, error),
) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	out, err := op(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		h.logOnInternal("apply transition", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out.Request)
}

// decide — каркас перехода с обязательным комментарием в теле.
func (h *TravelHandler) decide(
	w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, id string, actor domain.Actor, comment string) (*lifecycle.Outcome, error),
) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.NewValidationError("Invalid request body"))
		return
	}

	out, err := op(r.Context(), chi.URLParam(r, "id"), actor, body.Comment)
	if err != nil {
		h.logOnInternal("apply decision", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out.Request)
}

// Доменные ошибки клиент и так увидит; в лог идут только неожиданные.
func (h *TravelHandler) logOnInternal(msg string, err error) {
	if domain.KindOf(err) == 0 {
		h.logger.Error(msg, zap.Error(err))
	}
}

func (b *createTravelRequest) toDomain() (*domain.TravelRequest, error) {
	booking, err := domain.ParseBookingType(b.TypeOfBooking)
	if err != nil {
		return nil, err
	}

	req := &domain.TravelRequest{
		EmployeeCode:        b.EmployeeCode,
		EmployeeName:        b.EmployeeName,
		ProjectName:         b.ProjectName,
		DepartmentName:      b.DepartmentName,
		ReasonForTravelling: b.ReasonForTravelling,
		TypeOfBooking:       booking,
		AadharNumber:        b.AadharNumber,
		PassportNumber:      b.PassportNumber,
		DaysOfStay:          b.DaysOfStay,
	}

	if b.TravelDate != nil {
		t, err := time.Parse(time.RFC3339, *b.TravelDate)
		if err != nil {
			return nil, domain.NewValidationError("Invalid travel date, expected RFC3339")
		}
		req.TravelDate = &t
	}
	if b.MealRequired != nil {
		m, err := domain.ParseMealType(*b.MealRequired)
		if err != nil {
			return nil, err
		}
		req.MealRequired = &m
	}
	if b.MealPreference != nil {
		p, err := domain.ParseMealPreference(*b.MealPreference)
		if err != nil {
			return nil, err
		}
		req.MealPreference = &p
	}

	return req, nil
}
