package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/traveldesk/internal/domain"
	"github.com/xela07ax/traveldesk/internal/service"
	"go.uber.org/zap"
)

// UserService Описываем, что нам нужно от сервиса
type UserService interface {
	Add(ctx context.Context, in service.AddUserInput) (*domain.User, error)
	Edit(ctx context.Context, id string, in service.EditUserInput) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	AssignRole(ctx context.Context, id string, role domain.UserRole) error
	Total(ctx context.Context) (int, error)
	Grid(ctx context.Context, pageNumber, pageSize int) (*service.UserGridPage, error)
}

type UserHandler struct {
	service UserService
	logger  *zap.Logger
}

func NewUserHandler(s UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{service: s, logger: logger.Named("user-handler")}
}

type addUserRequest struct {
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	EmployeeCode string  `json:"employee_code"`
	Department   string  `json:"department"`
	Role         string  `json:"role"`
	ManagerName  *string `json:"manager_name"`
	ManagerID    *string `json:"manager_id"`
}

func (h *UserHandler) Add(w http.ResponseWriter, r *http.Request) {
	var body addUserRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.NewValidationError("Invalid request body"))
		return
	}

	role, err := domain.ParseUserRole(body.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.Add(r.Context(), service.AddUserInput{
		FirstName:    body.FirstName,
		LastName:     body.LastName,
		Email:        body.Email,
		Password:     body.Password,
		EmployeeCode: body.EmployeeCode,
		Department:   body.Department,
		Role:         role,
		ManagerName:  body.ManagerName,
		ManagerID:    body.ManagerID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

type editUserRequest struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Department  string  `json:"department"`
	Role        string  `json:"role"`
	ManagerName *string `json:"manager_name"`
	ManagerID   *string `json:"manager_id"`
}

func (h *UserHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var body editUserRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.NewValidationError("Invalid request body"))
		return
	}

	role, err := domain.ParseUserRole(body.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.Edit(r.Context(), chi.URLParam(r, "id"), service.EditUserInput{
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		Department:  body.Department,
		Role:        role,
		ManagerName: body.ManagerName,
		ManagerID:   body.ManagerID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Роль прилетает типизированным телом, не query-параметром
type assignRoleRequest struct {
	Role string `json:"role"`
}

func (h *UserHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	var body assignRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.NewValidationError("Invalid request body"))
		return
	}

	role, err := domain.ParseUserRole(body.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.AssignRole(r.Context(), chi.URLParam(r, "id"), role); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) Total(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.Total(r.Context())
	if err != nil {
		h.logger.Error("count users failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"total": total})
}

// Grid — страница пользователей: ?page_number=1&page_size=20.
// Кривые значения не ошибка — сервис нормализует их к дефолтам.
func (h *UserHandler) Grid(w http.ResponseWriter, r *http.Request) {
	pageNumber, _ := strconv.Atoi(r.URL.Query().Get("page_number"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	page, err := h.service.Grid(r.Context(), pageNumber, pageSize)
	if err != nil {
		h.logger.Error("user grid failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
