package service

import (
	"context"
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/xela07ax/traveldesk/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserReader — минимум, который нужен логину от хранилища пользователей.
type UserReader interface {
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// AuthService выдает RS256-токены по паре email/пароль.
type AuthService struct {
	users      UserReader
	privateKey *rsa.PrivateKey
	tokenTTL   time.Duration
	logger     *zap.Logger

	now func() time.Time
}

func NewAuthService(users UserReader, privateKey *rsa.PrivateKey, tokenTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		privateKey: privateKey,
		tokenTTL:   tokenTTL,
		logger:     logger.Named("auth-service"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Login проверяет учетные данные и выдает подписанный токен.
// Какая именно половина пары не совпала — наружу не сообщаем.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("service: login lookup: %w", err)
	}
	if user == nil {
		return nil, domain.NewAuthorizationError("Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("failed login attempt", zap.String("email", req.Email))
		return nil, domain.NewAuthorizationError("Invalid email or password")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, fmt.Errorf("service: sign token: %w", err)
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))

	return &domain.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		UserID:      user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Role:        string(user.Role),
	}, nil
}

func (s *AuthService) issueToken(user *domain.User) (string, error) {
	now := s.now()
	claims := domain.CustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.privateKey)
}
