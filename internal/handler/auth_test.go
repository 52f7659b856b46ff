package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/traveldesk/internal/domain"
	"github.com/xela07ax/traveldesk/internal/service"
	"go.uber.org/zap"
)

type stubAuthService struct {
	resp *domain.TokenResponse
	err  error
}

func (s *stubAuthService) Login(context.Context, domain.LoginRequest) (*domain.TokenResponse, error) {
	return s.resp, s.err
}

type stubRegistrar struct {
	got  *service.AddUserInput
	user *domain.User
	err  error
}

func (s *stubRegistrar) Add(_ context.Context, in service.AddUserInput) (*domain.User, error) {
	s.got = &in
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func newAuthRouter(svc AuthService, registrar UserRegistrar) *chi.Mux {
	h := NewAuthHandler(svc, registrar, 60, zap.NewNop())
	r := chi.NewRouter()
	r.Post("/api/auth/login", h.Login)
	r.Post("/api/auth/register", h.Register)
	return r
}

func postJSON(t *testing.T, router http.Handler, url, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthHandler_Login(t *testing.T) {
	router := newAuthRouter(&stubAuthService{resp: &domain.TokenResponse{
		AccessToken: "tok", TokenType: "Bearer", UserID: "u1",
	}}, &stubRegistrar{})

	rec := postJSON(t, router, "/api/auth/login",
		`{"email":"admin@traveldesk.com","password":"Admin@123"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access_token":"tok"`)
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	router := newAuthRouter(&stubAuthService{
		err: domain.NewAuthorizationError("Invalid email or password"),
	}, &stubRegistrar{})

	rec := postJSON(t, router, "/api/auth/login",
		`{"email":"a@b.c","password":"wrong"}`)

	// Для логина отказ авторизации — это 401, не 403
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	router := newAuthRouter(&stubAuthService{}, &stubRegistrar{})

	rec := postJSON(t, router, "/api/auth/login", `{"email":"a@b.c"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// Публичная регистрация — единственный путь в систему без уже выданного
// токена: на нее не вешается ни auth middleware, ни RequireRoles.
func TestAuthHandler_Register(t *testing.T) {
	registrar := &stubRegistrar{user: &domain.User{
		ID: "u1", Email: "alex@example.com", Role: domain.RoleEmployee, IsActive: true,
	}}
	router := newAuthRouter(&stubAuthService{}, registrar)

	rec := postJSON(t, router, "/api/auth/register", `{
		"first_name": "Alex",
		"last_name": "Morgan",
		"email": "alex@example.com",
		"password": "s3cret",
		"employee_code": "EMP-1",
		"department": "Engineering",
		"role": "Employee"
	}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"alex@example.com"`)
	// Хеш пароля наружу не уходит
	assert.NotContains(t, rec.Body.String(), "password_hash")

	require.NotNil(t, registrar.got)
	assert.Equal(t, "s3cret", registrar.got.Password)
	assert.Equal(t, domain.RoleEmployee, registrar.got.Role)
}

func TestAuthHandler_Register_Duplicate(t *testing.T) {
	router := newAuthRouter(&stubAuthService{}, &stubRegistrar{
		err: domain.NewValidationError("User with this email or employee ID already exists"),
	})

	rec := postJSON(t, router, "/api/auth/register",
		`{"email":"alex@example.com","password":"x","employee_code":"EMP-1","role":"Employee"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
}

func TestAuthHandler_Register_InvalidRole(t *testing.T) {
	registrar := &stubRegistrar{}
	router := newAuthRouter(&stubAuthService{}, registrar)

	rec := postJSON(t, router, "/api/auth/register",
		`{"email":"a@b.c","password":"x","employee_code":"EMP-1","role":"Overlord"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	// До сервиса такой запрос не доходит
	assert.Nil(t, registrar.got)
}

func TestAuthHandler_Register_BadBody(t *testing.T) {
	router := newAuthRouter(&stubAuthService{}, &stubRegistrar{})

	rec := postJSON(t, router, "/api/auth/register", "{broken")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
