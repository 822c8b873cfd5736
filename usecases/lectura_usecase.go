package usecases

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories"
	"github.com/portal-apr/portal-apr-backend/repositories/clock"
	"github.com/portal-apr/portal-apr-backend/usecases/executor_factory"
	"github.com/portal-apr/portal-apr-backend/usecases/security"
)

type LecturaRepository interface {
	GetSocioById(ctx context.Context, exec repositories.Executor, socioId string) (models.Socio, error)
	CreateLectura(ctx context.Context, exec repositories.Executor, lectura models.Lectura) (models.Lectura, error)
	LastLecturaBefore(ctx context.Context, exec repositories.Executor, socioId string, periodo models.Periodo) (*models.Lectura, error)
	ListLecturas(ctx context.Context, exec repositories.Executor, filters models.LecturaFilters,
		pagination models.PaginationAndSorting) ([]models.Lectura, error)
}

type LecturaUsecase struct {
	enforceSecurity security.EnforceSecurityLectura
	executorFactory executor_factory.ExecutorFactory
	repository      LecturaRepository
	clock           clock.Clock
}

func (usecase *LecturaUsecase) ListLecturas(ctx context.Context, filters models.LecturaFilters,
	pagination models.PaginationAndSorting,
) ([]models.Lectura, error) {
	if err := usecase.enforceSecurity.ReadLecturas(filters.SocioId); err != nil {
		return nil, err
	}
	return usecase.repository.ListLecturas(ctx, usecase.executorFactory.NewExecutor(), filters, pagination.WithDefaults())
}

func (usecase *LecturaUsecase) RegisterLectura(ctx context.Context, input models.CreateLecturaInput) (models.Lectura, error) {
	if err := usecase.enforceSecurity.WriteLectura(); err != nil {
		return models.Lectura{}, err
	}
	return usecase.registerLectura(ctx, input)
}

// RegisterLecturas registers the readings of a round. Each reading is stored on its own: a
// failing one does not prevent the others.
func (usecase *LecturaUsecase) RegisterLecturas(ctx context.Context, inputs []models.CreateLecturaInput) ([]models.RegisterLecturaResult, error) {
	if err := usecase.enforceSecurity.WriteLectura(); err != nil {
		return nil, err
	}

	results := make([]models.RegisterLecturaResult, len(inputs))
	for i, input := range inputs {
		results[i].SocioId = input.SocioId
		lectura, err := usecase.registerLectura(ctx, input)
		if err != nil {
			results[i].Error = err
			continue
		}
		results[i].Lectura = &lectura
	}
	return results, nil
}

func (usecase *LecturaUsecase) registerLectura(ctx context.Context, input models.CreateLecturaInput) (models.Lectura, error) {
	periodo, err := models.ParsePeriodo(input.Periodo.String())
	if err != nil {
		return models.Lectura{}, err
	}
	if input.LecturaActual < 0 {
		return models.Lectura{}, errors.Wrap(models.BadParameterError, "lectura_actual cannot be negative")
	}

	exec := usecase.executorFactory.NewExecutor()
	if _, err := usecase.repository.GetSocioById(ctx, exec, input.SocioId); err != nil {
		return models.Lectura{}, err
	}

	var anterior float64
	if input.LecturaAnterior != nil {
		anterior = *input.LecturaAnterior
	} else {
		previous, err := usecase.repository.LastLecturaBefore(ctx, exec, input.SocioId, periodo)
		if err != nil {
			return models.Lectura{}, err
		}
		if previous != nil {
			anterior = previous.LecturaActual
		}
	}
	if input.LecturaActual < anterior {
		return models.Lectura{}, errors.Wrapf(models.ErrInvalidReading, "%v < %v", input.LecturaActual, anterior)
	}

	fecha := input.FechaLectura
	if fecha.IsZero() {
		fecha = usecase.clock.Now()
	}

	lectura, err := usecase.repository.CreateLectura(ctx, exec, models.Lectura{
		SocioId:         input.SocioId,
		Periodo:         periodo,
		LecturaAnterior: anterior,
		LecturaActual:   input.LecturaActual,
		FechaLectura:    fecha,
		RegistradoPor:   usecase.enforceSecurity.Credentials().ActorIdentity.UserId,
	})
	if repositories.IsUniqueViolationError(err) {
		return models.Lectura{}, errors.Wrapf(models.ConflictError,
			"a lectura already exists for socio %s in %s", input.SocioId, periodo)
	}
	return lectura, err
}
