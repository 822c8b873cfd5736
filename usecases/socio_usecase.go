package usecases

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/pure_utils"
	"github.com/portal-apr/portal-apr-backend/repositories"
	"github.com/portal-apr/portal-apr-backend/usecases/executor_factory"
	"github.com/portal-apr/portal-apr-backend/usecases/security"
	"github.com/portal-apr/portal-apr-backend/usecases/token"
)

type SocioRepository interface {
	CreateSocio(ctx context.Context, exec repositories.Executor, input models.CreateSocioInput) (models.Socio, error)
	GetSocioById(ctx context.Context, exec repositories.Executor, socioId string) (models.Socio, error)
	ListSocios(ctx context.Context, exec repositories.Executor, filters models.SocioFilters,
		pagination models.PaginationAndSorting) ([]models.Socio, error)
	UpdateSocio(ctx context.Context, exec repositories.Executor, input models.UpdateSocioInput) error
	UpdateSocioPassword(ctx context.Context, exec repositories.Executor, socioId, passwordHash string) error
}

type SocioUsecase struct {
	enforceSecurity    security.EnforceSecuritySocio
	executorFactory    executor_factory.ExecutorFactory
	transactionFactory executor_factory.TransactionFactory
	repository         SocioRepository
}

func invalidRut(err error) error {
	return errors.Wrap(models.BadParameterError, err.Error())
}

func (usecase *SocioUsecase) ListSocios(ctx context.Context, filters models.SocioFilters,
	pagination models.PaginationAndSorting,
) ([]models.Socio, error) {
	if err := usecase.enforceSecurity.ListSocios(); err != nil {
		return nil, err
	}
	return usecase.repository.ListSocios(ctx, usecase.executorFactory.NewExecutor(), filters, pagination.WithDefaults())
}

func (usecase *SocioUsecase) GetSocio(ctx context.Context, socioId string) (models.Socio, error) {
	socio, err := usecase.repository.GetSocioById(ctx, usecase.executorFactory.NewExecutor(), socioId)
	if err != nil {
		return models.Socio{}, err
	}
	if err := usecase.enforceSecurity.ReadSocio(socio); err != nil {
		return models.Socio{}, err
	}
	return socio, nil
}

func (usecase *SocioUsecase) CreateSocio(ctx context.Context, input models.CreateSocioInput) (models.Socio, error) {
	if err := usecase.enforceSecurity.CreateSocio(); err != nil {
		return models.Socio{}, err
	}

	rut, err := pure_utils.ValidateRut(input.Rut)
	if err != nil {
		return models.Socio{}, invalidRut(err)
	}
	input.Rut = rut
	if input.NumeroSocio <= 0 {
		return models.Socio{}, errors.Wrap(models.BadParameterError, "numero_socio must be positive")
	}

	socio, err := usecase.repository.CreateSocio(ctx, usecase.executorFactory.NewExecutor(), input)
	switch {
	case repositories.IsUniqueViolationOn(err, repositories.ConstraintSocioRut):
		return models.Socio{}, errors.Wrapf(models.ConflictError, "a socio with rut %s already exists", input.Rut)
	case repositories.IsUniqueViolationOn(err, repositories.ConstraintSocioNumero):
		return models.Socio{}, errors.Wrapf(models.ConflictError, "socio number %d is taken", input.NumeroSocio)
	case repositories.IsUniqueViolationError(err):
		return models.Socio{}, errors.Wrap(models.ConflictError, "duplicate socio")
	}
	return socio, err
}

func (usecase *SocioUsecase) UpdateSocio(ctx context.Context, input models.UpdateSocioInput) (models.Socio, error) {
	if input.Estado != nil && models.SocioEstadoFrom(string(*input.Estado)) == "" {
		return models.Socio{}, errors.Wrapf(models.BadParameterError, "unknown estado %q", *input.Estado)
	}

	return executor_factory.TransactionReturnValue(ctx, usecase.transactionFactory, func(
		tx repositories.Transaction,
	) (models.Socio, error) {
		socio, err := usecase.repository.GetSocioById(ctx, tx, input.Id)
		if err != nil {
			return models.Socio{}, err
		}
		if err := usecase.enforceSecurity.UpdateSocio(socio); err != nil {
			return models.Socio{}, err
		}
		if err := usecase.repository.UpdateSocio(ctx, tx, input); err != nil {
			return models.Socio{}, err
		}
		return usecase.repository.GetSocioById(ctx, tx, input.Id)
	})
}

// SetSocioPassword sets the portal password of a socio: staff on any socio, a socio on itself.
func (usecase *SocioUsecase) SetSocioPassword(ctx context.Context, socioId, password string) error {
	if err := usecase.enforceSecurity.SetSocioPassword(socioId); err != nil {
		return err
	}
	hash, err := token.HashPassword(password)
	if err != nil {
		return err
	}
	exec := usecase.executorFactory.NewExecutor()
	if _, err := usecase.repository.GetSocioById(ctx, exec, socioId); err != nil {
		return err
	}
	return usecase.repository.UpdateSocioPassword(ctx, exec, socioId, hash)
}
