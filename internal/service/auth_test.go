package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/traveldesk/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserReader struct {
	user *domain.User
}

func (f *fakeUserReader) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	if f.user != nil && f.user.Email == email {
		cp := *f.user
		return &cp, nil
	}
	return nil, nil
}

func newAuthFixture(t *testing.T) (*AuthService, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &fakeUserReader{user: &domain.User{
		ID:           "u1",
		FirstName:    "Alex",
		LastName:     "Morgan",
		Email:        "alex@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleManager,
		IsActive:     true,
	}}

	return NewAuthService(users, key, time.Hour, zap.NewNop()), key
}

func TestAuthService_Login(t *testing.T) {
	svc, key := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "alex@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "u1", resp.UserID)
	assert.Equal(t, "Manager", resp.Role)

	// Выданный токен проверяется публичной половиной той же пары
	token, err := jwt.ParseWithClaims(resp.AccessToken, &domain.CustomClaims{},
		func(*jwt.Token) (interface{}, error) { return &key.PublicKey, nil })
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(*domain.CustomClaims)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "Manager", claims.Role)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "alex@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindAuthorization))
	assert.EqualError(t, err, "Invalid email or password")
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "s3cret",
	})
	require.Error(t, err)
	// Текст ошибки тот же: не раскрываем, существует ли адрес
	assert.EqualError(t, err, "Invalid email or password")
}
