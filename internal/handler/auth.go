package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/xela07ax/traveldesk/internal/domain"
	"github.com/xela07ax/traveldesk/internal/service"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// AuthService Описываем, что нам нужно от сервиса
type AuthService interface {
	Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenResponse, error)
}

// UserRegistrar — создание учетки для публичной регистрации.
// Тот же Add, что и у админского сервиса: правила (хеш, дубликаты) общие.
type UserRegistrar interface {
	Add(ctx context.Context, in service.AddUserInput) (*domain.User, error)
}

type AuthHandler struct {
	service   AuthService
	registrar UserRegistrar
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// NewAuthHandler: ratePerMin ограничивает общий поток попыток логина и
// регистраций (защита от перебора паролей и мусорных учеток).
func NewAuthHandler(s AuthService, registrar UserRegistrar, ratePerMin int, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service:   s,
		registrar: registrar,
		limiter:   rate.NewLimiter(rate.Limit(float64(ratePerMin)/60.0), ratePerMin),
		logger:    logger.Named("auth-handler"),
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow() {
		writeJSON(w, http.StatusTooManyRequests, errorBody{Message: "Too many login attempts, try again later"})
		return
	}

	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewValidationError("Invalid request body"))
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, domain.NewValidationError("Email and password are required"))
		return
	}

	token, err := h.service.Login(r.Context(), req)
	if err != nil {
		// Для логина 403 превращаем в 401: клиент не аутентифицирован
		if domain.IsKind(err, domain.KindAuthorization) {
			writeJSON(w, http.StatusUnauthorized, errorBody{Message: err.Error()})
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, token)
}

// Register — публичная самостоятельная регистрация. Тело то же, что у
// админского добавления пользователя (addUserRequest в user.go).
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow() {
		writeJSON(w, http.StatusTooManyRequests, errorBody{Message: "Too many attempts, try again later"})
		return
	}

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

	user, err := h.registrar.Add(r.Context(), service.AddUserInput{
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

	h.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))
	writeJSON(w, http.StatusCreated, user)
}
