package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xela07ax/traveldesk/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Допустимые размеры страницы админского грида.
var gridPageSizes = map[int]bool{20: true, 50: true, 100: true}

// UserRepository — требования админского сервиса к хранилищу пользователей.
type UserRepository interface {
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, u *domain.User) error
	UpdateUser(ctx context.Context, u *domain.User) error
	DeactivateUser(ctx context.Context, id string) error
	AssignRole(ctx context.Context, id string, role domain.UserRole) error
	CountUsers(ctx context.Context) (int, error)
	UserGrid(ctx context.Context, pageNumber, pageSize int) ([]*domain.User, int, error)
}

// UserService — админские операции над учетными записями.
type UserService struct {
	repo       UserRepository
	bcryptCost int
	logger     *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewUserService(repo UserRepository, bcryptCost int, logger *zap.Logger) *UserService {
	return &UserService{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger.Named("user-service"),
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
}

// AddUserInput — создание учетки админом. Роль уже типизирована.
type AddUserInput struct {
	FirstName    string
	LastName     string
	Email        string
	Password     string
	EmployeeCode string
	Department   string
	Role         domain.UserRole
	ManagerName  *string
	ManagerID    *string
}

func (s *UserService) Add(ctx context.Context, in AddUserInput) (*domain.User, error) {
	if strings.TrimSpace(in.Email) == "" || strings.TrimSpace(in.Password) == "" ||
		strings.TrimSpace(in.EmployeeCode) == "" {
		return nil, domain.NewValidationError("Email, password and employee ID are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("service: hash password: %w", err)
	}

	user := &domain.User{
		ID:           s.newID(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: string(hash),
		EmployeeCode: in.EmployeeCode,
		Department:   in.Department,
		Role:         in.Role,
		ManagerName:  in.ManagerName,
		ManagerID:    in.ManagerID,
		CreatedDate:  s.now(),
		IsActive:     true,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))
	return user, nil
}

// EditUserInput — поля, которые админ может править. Email и пароль
// через эту операцию не меняются.
type EditUserInput struct {
	FirstName   string
	LastName    string
	Department  string
	Role        domain.UserRole
	ManagerName *string
	ManagerID   *string
}

func (s *UserService) Edit(ctx context.Context, id string, in EditUserInput) (*domain.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.Department = in.Department
	user.Role = in.Role
	user.ManagerName = in.ManagerName
	user.ManagerID = in.ManagerID

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user updated", zap.String("user_id", id))
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeactivateUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deactivated", zap.String("user_id", id))
	return nil
}

// AssignRole меняет роль; строка из тела запроса разбирается хендлером.
func (s *UserService) AssignRole(ctx context.Context, id string, role domain.UserRole) error {
	if err := s.repo.AssignRole(ctx, id, role); err != nil {
		return err
	}
	s.logger.Info("role assigned",
		zap.String("user_id", id),
		zap.String("role", string(role)))
	return nil
}

func (s *UserService) Total(ctx context.Context) (int, error) {
	return s.repo.CountUsers(ctx)
}

// UserGridPage — страница грида плюс данные для пагинатора.
type UserGridPage struct {
	Users      []*domain.User `json:"users"`
	TotalCount int            `json:"total_count"`
	PageNumber int            `json:"page_number"`
	PageSize   int            `json:"page_size"`
}

// Grid нормализует параметры страницы: номер < 1 становится 1,
// размер вне множества {20, 50, 100} — 20.
func (s *UserService) Grid(ctx context.Context, pageNumber, pageSize int) (*UserGridPage, error) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if !gridPageSizes[pageSize] {
		pageSize = 20
	}

	users, total, err := s.repo.UserGrid(ctx, pageNumber, pageSize)
	if err != nil {
		return nil, err
	}

	return &UserGridPage{
		Users:      users,
		TotalCount: total,
		PageNumber: pageNumber,
		PageSize:   pageSize,
	}, nil
}
