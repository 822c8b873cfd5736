package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories"
)

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) CreateUser(ctx context.Context, exec repositories.Executor,
	user models.CreateUser, passwordHash string,
) (models.User, error) {
	args := m.Called(ctx, exec, user, passwordHash)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserRepository) UserById(ctx context.Context, exec repositories.Executor, userId string) (models.User, error) {
	args := m.Called(ctx, exec, userId)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserRepository) UserByEmail(ctx context.Context, exec repositories.Executor, email string) (*models.User, error) {
	args := m.Called(ctx, exec, email)
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepository) ListUsers(ctx context.Context, exec repositories.Executor) ([]models.User, error) {
	args := m.Called(ctx, exec)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *UserRepository) UpdateUserPassword(ctx context.Context, exec repositories.Executor, userId, passwordHash string) error {
	args := m.Called(ctx, exec, userId, passwordHash)
	return args.Error(0)
}

func (m *UserRepository) DeleteUser(ctx context.Context, exec repositories.Executor, userId string) error {
	args := m.Called(ctx, exec, userId)
	return args.Error(0)
}

// GetSocioByRut lets the mock serve the login lookups as well
func (m *UserRepository) GetSocioByRut(ctx context.Context, exec repositories.Executor, rut string) (*models.Socio, error) {
	args := m.Called(ctx, exec, rut)
	return args.Get(0).(*models.Socio), args.Error(1)
}
