package usecases

import (
	"context"
	"net/mail"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories"
	"github.com/portal-apr/portal-apr-backend/usecases/executor_factory"
	"github.com/portal-apr/portal-apr-backend/usecases/security"
	"github.com/portal-apr/portal-apr-backend/usecases/token"
)

type UserRepository interface {
	CreateUser(ctx context.Context, exec repositories.Executor, user models.CreateUser, passwordHash string) (models.User, error)
	UserById(ctx context.Context, exec repositories.Executor, userId string) (models.User, error)
	UserByEmail(ctx context.Context, exec repositories.Executor, email string) (*models.User, error)
	ListUsers(ctx context.Context, exec repositories.Executor) ([]models.User, error)
	UpdateUserPassword(ctx context.Context, exec repositories.Executor, userId, passwordHash string) error
	DeleteUser(ctx context.Context, exec repositories.Executor, userId string) error
}

type UserUseCase struct {
	enforceUserSecurity security.EnforceSecurityUser
	executorFactory     executor_factory.ExecutorFactory
	userRepository      UserRepository
}

func (usecase *UserUseCase) ListUsers(ctx context.Context) ([]models.User, error) {
	if err := usecase.enforceUserSecurity.ListUsers(); err != nil {
		return nil, err
	}
	return usecase.userRepository.ListUsers(ctx, usecase.executorFactory.NewExecutor())
}

func (usecase *UserUseCase) AddUser(ctx context.Context, createUser models.CreateUser) (models.User, error) {
	if err := usecase.enforceUserSecurity.CreateUser(createUser); err != nil {
		return models.User{}, err
	}
	return CreateStaffUser(ctx, usecase.executorFactory, usecase.userRepository, createUser)
}

// CreateStaffUser creates a committee user. It does not enforce any security: it is shared
// with the maintenance commands.
func CreateStaffUser(
	ctx context.Context,
	executorFactory executor_factory.ExecutorFactory,
	userRepository UserRepository,
	createUser models.CreateUser,
) (models.User, error) {
	if !createUser.Role.IsStaff() {
		return models.User{}, errors.Wrapf(models.BadParameterError, "invalid role %s", createUser.Role)
	}
	// lowercase email to maintain uniqueness
	createUser.Email = strings.ToLower(strings.TrimSpace(createUser.Email))
	if _, err := mail.ParseAddress(createUser.Email); err != nil {
		return models.User{}, errors.Wrapf(models.BadParameterError, "invalid email %q", createUser.Email)
	}
	hash, err := token.HashPassword(createUser.Password)
	if err != nil {
		return models.User{}, err
	}

	user, err := userRepository.CreateUser(ctx, executorFactory.NewExecutor(), createUser, hash)
	if repositories.IsUniqueViolationError(err) {
		return models.User{}, errors.Wrapf(models.ConflictError, "a user with email %s already exists", createUser.Email)
	}
	return user, err
}

func (usecase *UserUseCase) SetUserPassword(ctx context.Context, userId, password string) error {
	exec := usecase.executorFactory.NewExecutor()
	user, err := usecase.userRepository.UserById(ctx, exec, userId)
	if err != nil {
		return err
	}
	if err := usecase.enforceUserSecurity.SetUserPassword(user); err != nil {
		return err
	}
	hash, err := token.HashPassword(password)
	if err != nil {
		return err
	}
	return usecase.userRepository.UpdateUserPassword(ctx, exec, user.Id, hash)
}

func (usecase *UserUseCase) DeleteUser(ctx context.Context, userId string) error {
	exec := usecase.executorFactory.NewExecutor()
	user, err := usecase.userRepository.UserById(ctx, exec, userId)
	if err != nil {
		return err
	}
	if err := usecase.enforceUserSecurity.DeleteUser(user); err != nil {
		return err
	}
	return usecase.userRepository.DeleteUser(ctx, exec, userId)
}
