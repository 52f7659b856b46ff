package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/traveldesk/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	users map[string]*domain.User

	gridPageNumber int
	gridPageSize   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("User not found")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) CreateUser(_ context.Context, u *domain.User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email || existing.EmployeeCode == u.EmployeeCode {
			return domain.NewValidationError("User with this email or employee ID already exists")
		}
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) UpdateUser(_ context.Context, u *domain.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return domain.NewNotFoundError("User not found")
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) DeactivateUser(_ context.Context, id string) error {
	u, ok := f.users[id]
	if !ok {
		return domain.NewNotFoundError("User not found")
	}
	u.IsActive = false
	return nil
}

func (f *fakeUserRepo) AssignRole(_ context.Context, id string, role domain.UserRole) error {
	u, ok := f.users[id]
	if !ok {
		return domain.NewNotFoundError("User not found")
	}
	u.Role = role
	return nil
}

func (f *fakeUserRepo) CountUsers(context.Context) (int, error) {
	return len(f.users), nil
}

func (f *fakeUserRepo) UserGrid(_ context.Context, pageNumber, pageSize int) ([]*domain.User, int, error) {
	f.gridPageNumber = pageNumber
	f.gridPageSize = pageSize
	return []*domain.User{}, len(f.users), nil
}

func newTestUserService(repo *fakeUserRepo) *UserService {
	// MinCost, чтобы тесты не жгли CPU на хешировании
	return NewUserService(repo, bcrypt.MinCost, zap.NewNop())
}

func TestUserService_Add(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo)

	user, err := svc.Add(context.Background(), AddUserInput{
		FirstName:    "Alex",
		LastName:     "Morgan",
		Email:        "alex@example.com",
		Password:     "s3cret",
		EmployeeCode: "EMP-1",
		Department:   "Engineering",
		Role:         domain.RoleEmployee,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.True(t, user.IsActive)
	// Пароль хранится только в виде bcrypt-хеша
	assert.NotEqual(t, "s3cret", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")))
}

func TestUserService_Add_Duplicate(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo)

	in := AddUserInput{
		Email: "alex@example.com", Password: "x", EmployeeCode: "EMP-1", Role: domain.RoleEmployee,
	}
	_, err := svc.Add(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.Add(context.Background(), in)
	require.Error(t, err)
	assert.EqualError(t, err, "User with this email or employee ID already exists")
}

func TestUserService_Add_MissingFields(t *testing.T) {
	svc := newTestUserService(newFakeUserRepo())

	_, err := svc.Add(context.Background(), AddUserInput{Email: "a@b.c", Password: " "})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestUserService_Edit(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo)

	created, err := svc.Add(context.Background(), AddUserInput{
		Email: "alex@example.com", Password: "x", EmployeeCode: "EMP-1", Role: domain.RoleEmployee,
	})
	require.NoError(t, err)

	updated, err := svc.Edit(context.Background(), created.ID, EditUserInput{
		FirstName:  "Alex",
		LastName:   "Morgan",
		Department: "Travel",
		Role:       domain.RoleManager,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, updated.Role)
	assert.Equal(t, "Travel", updated.Department)
	// Хеш пароля при редактировании не трогается
	assert.Equal(t, created.PasswordHash, repo.users[created.ID].PasswordHash)
}

func TestUserService_AssignRole(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo)

	created, err := svc.Add(context.Background(), AddUserInput{
		Email: "alex@example.com", Password: "x", EmployeeCode: "EMP-1", Role: domain.RoleEmployee,
	})
	require.NoError(t, err)

	require.NoError(t, svc.AssignRole(context.Background(), created.ID, domain.RoleHRTravelAdmin))
	assert.Equal(t, domain.RoleHRTravelAdmin, repo.users[created.ID].Role)

	err = svc.AssignRole(context.Background(), "missing", domain.RoleAdmin)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestUserService_GridNormalization(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo)

	cases := []struct {
		pageNumber, pageSize int
		wantNumber, wantSize int
	}{
		{1, 20, 1, 20},
		{3, 50, 3, 50},
		{2, 100, 2, 100},
		{0, 20, 1, 20},   // номер страницы меньше 1
		{-5, 50, 1, 50},  // отрицательный номер
		{1, 7, 1, 20},    // размер вне множества
		{1, 0, 1, 20},    // нулевой размер
		{1, 1000, 1, 20}, // слишком большой размер
	}

	for _, tc := range cases {
		page, err := svc.Grid(context.Background(), tc.pageNumber, tc.pageSize)
		require.NoError(t, err)
		assert.Equal(t, tc.wantNumber, repo.gridPageNumber)
		assert.Equal(t, tc.wantSize, repo.gridPageSize)
		assert.Equal(t, tc.wantNumber, page.PageNumber)
		assert.Equal(t, tc.wantSize, page.PageSize)
	}
}
