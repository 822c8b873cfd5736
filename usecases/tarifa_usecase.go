package usecases

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/pure_utils"
	"github.com/portal-apr/portal-apr-backend/repositories"
	"github.com/portal-apr/portal-apr-backend/usecases/billing"
	"github.com/portal-apr/portal-apr-backend/usecases/executor_factory"
	"github.com/portal-apr/portal-apr-backend/usecases/security"
	"github.com/portal-apr/portal-apr-backend/usecases/tracking"
)

type TarifaRepository interface {
	CreateTarifa(ctx context.Context, exec repositories.Executor, input models.CreateTarifaInput) (string, error)
	GetTarifa(ctx context.Context, exec repositories.Executor, tarifaId string) (models.Tarifa, error)
	ListTarifas(ctx context.Context, exec repositories.Executor) ([]models.Tarifa, error)
	UpdateTarifa(ctx context.Context, exec repositories.Executor, input models.UpdateTarifaInput) error
	ReplaceEscalones(ctx context.Context, exec repositories.Executor, tarifaId string, escalones []models.EscalonInput) error
	ActivateTarifa(ctx context.Context, exec repositories.Transaction, tarifaId string) error
}

type activeTarifaCache interface {
	Get(ctx context.Context, exec repositories.Executor) (models.Tarifa, error)
	Invalidate()
}

type TarifaUsecase struct {
	enforceSecurity    security.EnforceSecurityTarifa
	executorFactory    executor_factory.ExecutorFactory
	transactionFactory executor_factory.TransactionFactory
	repository         TarifaRepository
	activeTarifa       activeTarifaCache
}

// sortedEscalonInputs orders the bands by their lower bound and checks that they form a valid
// scale. The repository numbers bands in slice order.
func sortedEscalonInputs(inputs []models.EscalonInput) ([]models.EscalonInput, error) {
	sorted := slices.Clone(inputs)
	slices.SortFunc(sorted, func(a, b models.EscalonInput) int { return cmp.Compare(a.DesdeM3, b.DesdeM3) })

	escalones := make([]models.Escalon, len(sorted))
	for i, e := range sorted {
		escalones[i] = models.Escalon{Orden: i + 1, DesdeM3: e.DesdeM3, HastaM3: e.HastaM3, PrecioM3: e.PrecioM3}
	}
	if err := billing.ValidateEscalones(escalones); err != nil {
		return nil, err
	}
	return sorted, nil
}

func validatePercentage(name string, value float64) error {
	if value < 0 || value > 100 {
		return errors.Wrapf(models.BadParameterError, "%s must be between 0 and 100", name)
	}
	return nil
}

func validateTarifaFields(cargoFijo int64, subsidio, limite, recargo float64) error {
	if cargoFijo < 0 {
		return errors.Wrap(models.BadParameterError, "cargo_fijo cannot be negative")
	}
	if limite < 0 {
		return errors.Wrap(models.BadParameterError, "subsidio_limite_m3 cannot be negative")
	}
	return errors.Join(
		validatePercentage("subsidio_porcentaje", subsidio),
		validatePercentage("recargo_mora_porcentaje", recargo),
	)
}

func (usecase *TarifaUsecase) ListTarifas(ctx context.Context) ([]models.Tarifa, error) {
	if err := usecase.enforceSecurity.ReadTarifas(); err != nil {
		return nil, err
	}
	return usecase.repository.ListTarifas(ctx, usecase.executorFactory.NewExecutor())
}

func (usecase *TarifaUsecase) GetTarifa(ctx context.Context, tarifaId string) (models.Tarifa, error) {
	if err := usecase.enforceSecurity.ReadTarifas(); err != nil {
		return models.Tarifa{}, err
	}
	return usecase.repository.GetTarifa(ctx, usecase.executorFactory.NewExecutor(), tarifaId)
}

func (usecase *TarifaUsecase) GetActiveTarifa(ctx context.Context) (models.Tarifa, error) {
	if err := usecase.enforceSecurity.ReadTarifas(); err != nil {
		return models.Tarifa{}, err
	}
	return usecase.activeTarifa.Get(ctx, usecase.executorFactory.NewExecutor())
}

func (usecase *TarifaUsecase) CreateTarifa(ctx context.Context, input models.CreateTarifaInput) (models.Tarifa, error) {
	if err := usecase.enforceSecurity.WriteTarifa(); err != nil {
		return models.Tarifa{}, err
	}
	return CreateTarifa(ctx, usecase.transactionFactory, usecase.repository, usecase.activeTarifa, input)
}

// CreateTarifa validates and stores a tarifa, activating it if asked. It does not enforce any
// security: it is shared with the maintenance commands.
func CreateTarifa(
	ctx context.Context,
	transactionFactory executor_factory.TransactionFactory,
	repository TarifaRepository,
	activeTarifa activeTarifaCache,
	input models.CreateTarifaInput,
) (models.Tarifa, error) {
	input.Nombre = strings.TrimSpace(input.Nombre)
	if input.Nombre == "" {
		return models.Tarifa{}, errors.Wrap(models.BadParameterError, "nombre is required")
	}
	input.Modo = models.ModoTarifaFrom(string(input.Modo))
	if err := validateTarifaFields(input.CargoFijo, input.SubsidioPorcentaje,
		input.SubsidioLimiteM3, input.RecargoMoraPorcentaje); err != nil {
		return models.Tarifa{}, err
	}
	escalones, err := sortedEscalonInputs(input.Escalones)
	if err != nil {
		return models.Tarifa{}, err
	}
	input.Escalones = escalones

	tarifa, err := executor_factory.TransactionReturnValue(ctx, transactionFactory, func(
		tx repositories.Transaction,
	) (models.Tarifa, error) {
		id, err := repository.CreateTarifa(ctx, tx, input)
		if err != nil {
			return models.Tarifa{}, err
		}
		if input.Activa {
			if err := repository.ActivateTarifa(ctx, tx, id); err != nil {
				return models.Tarifa{}, activationConflict(err)
			}
		}
		return repository.GetTarifa(ctx, tx, id)
	})
	if err != nil {
		return models.Tarifa{}, err
	}

	activeTarifa.Invalidate()
	if tarifa.Activa {
		tracking.TrackEvent(ctx, models.AnalyticsTarifaActivated, map[string]any{"tarifa_id": tarifa.Id})
	}
	return tarifa, nil
}

func (usecase *TarifaUsecase) UpdateTarifa(ctx context.Context, input models.UpdateTarifaInput) (models.Tarifa, error) {
	if err := usecase.enforceSecurity.WriteTarifa(); err != nil {
		return models.Tarifa{}, err
	}
	if input.Escalones != nil {
		escalones, err := sortedEscalonInputs(input.Escalones)
		if err != nil {
			return models.Tarifa{}, err
		}
		input.Escalones = escalones
	}

	tarifa, err := executor_factory.TransactionReturnValue(ctx, usecase.transactionFactory, func(
		tx repositories.Transaction,
	) (models.Tarifa, error) {
		current, err := usecase.repository.GetTarifa(ctx, tx, input.Id)
		if err != nil {
			return models.Tarifa{}, err
		}
		if err := validateTarifaFields(
			pure_utils.PtrValueOrDefault(input.CargoFijo, current.CargoFijo),
			pure_utils.PtrValueOrDefault(input.SubsidioPorcentaje, current.SubsidioPorcentaje),
			pure_utils.PtrValueOrDefault(input.SubsidioLimiteM3, current.SubsidioLimiteM3),
			pure_utils.PtrValueOrDefault(input.RecargoMoraPorcentaje, current.RecargoMoraPorcentaje),
		); err != nil {
			return models.Tarifa{}, err
		}
		if input.Modo != nil {
			input.Modo = pure_utils.Ptr(models.ModoTarifaFrom(string(*input.Modo)))
		}

		if err := usecase.repository.UpdateTarifa(ctx, tx, input); err != nil {
			return models.Tarifa{}, err
		}
		if input.Escalones != nil {
			if err := usecase.repository.ReplaceEscalones(ctx, tx, input.Id, input.Escalones); err != nil {
				return models.Tarifa{}, err
			}
		}
		return usecase.repository.GetTarifa(ctx, tx, input.Id)
	})
	if err != nil {
		return models.Tarifa{}, err
	}

	usecase.activeTarifa.Invalidate()
	return tarifa, nil
}

// ActivateTarifa makes the tarifa the one used for new boletas, deactivating the others.
func (usecase *TarifaUsecase) ActivateTarifa(ctx context.Context, tarifaId string) (models.Tarifa, error) {
	if err := usecase.enforceSecurity.WriteTarifa(); err != nil {
		return models.Tarifa{}, err
	}

	tarifa, err := executor_factory.TransactionReturnValue(ctx, usecase.transactionFactory, func(
		tx repositories.Transaction,
	) (models.Tarifa, error) {
		tarifa, err := usecase.repository.GetTarifa(ctx, tx, tarifaId)
		if err != nil {
			return models.Tarifa{}, err
		}
		if err := billing.ValidateEscalones(tarifa.Escalones); err != nil {
			return models.Tarifa{}, errors.Wrap(err, "repair the tarifa before activating it")
		}
		if err := usecase.repository.ActivateTarifa(ctx, tx, tarifaId); err != nil {
			return models.Tarifa{}, activationConflict(err)
		}
		return usecase.repository.GetTarifa(ctx, tx, tarifaId)
	})
	if err != nil {
		return models.Tarifa{}, err
	}

	usecase.activeTarifa.Invalidate()
	tracking.TrackEvent(ctx, models.AnalyticsTarifaActivated, map[string]any{"tarifa_id": tarifa.Id})
	return tarifa, nil
}

// Simulate computes the charges of a consumption, with the given tarifa or the active one.
func (usecase *TarifaUsecase) Simulate(ctx context.Context, consumoM3 float64, tarifaId string) (models.Cargos, error) {
	if err := usecase.enforceSecurity.ReadTarifas(); err != nil {
		return models.Cargos{}, err
	}

	exec := usecase.executorFactory.NewExecutor()
	var (
		tarifa models.Tarifa
		err    error
	)
	if tarifaId != "" {
		tarifa, err = usecase.repository.GetTarifa(ctx, exec, tarifaId)
	} else {
		tarifa, err = usecase.activeTarifa.Get(ctx, exec)
	}
	if err != nil {
		return models.Cargos{}, err
	}
	return billing.ComputeCharges(tarifa, consumoM3)
}

// activationConflict reports two activations racing on the single active tarifa index
func activationConflict(err error) error {
	if repositories.IsUniqueViolationOn(err, repositories.ConstraintSingleActiveTarifa) {
		return errors.Wrap(models.ConflictError, "another tarifa was activated at the same time")
	}
	return err
}
