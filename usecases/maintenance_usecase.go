package usecases

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/pure_utils"
	"github.com/portal-apr/portal-apr-backend/repositories"
	"github.com/portal-apr/portal-apr-backend/usecases/billing"
	"github.com/portal-apr/portal-apr-backend/usecases/executor_factory"
	"github.com/portal-apr/portal-apr-backend/usecases/token"
	"github.com/portal-apr/portal-apr-backend/utils"
)

type maintenanceSocioRepository interface {
	GetSocioByRut(ctx context.Context, exec repositories.Executor, rut string) (*models.Socio, error)
	UpdateSocioPassword(ctx context.Context, exec repositories.Executor, socioId, passwordHash string) error
}

// MaintenanceUsecase holds the operations run by hand from the command line. They run without
// credentials.
type MaintenanceUsecase struct {
	executorFactory    executor_factory.ExecutorFactory
	transactionFactory executor_factory.TransactionFactory
	userRepository     UserRepository
	socioRepository    maintenanceSocioRepository
	tarifaRepository   TarifaRepository
	activeTarifa       activeTarifaCache
	reconciler         reconciliationRunner
}

func (usecase *MaintenanceUsecase) ResetAdminPassword(ctx context.Context, email, password string) error {
	exec := usecase.executorFactory.NewExecutor()
	user, err := usecase.userRepository.UserByEmail(ctx, exec, email)
	if err != nil {
		return err
	}
	if user == nil {
		return errors.Wrapf(models.ErrUnknownUser, "no user with email %s", email)
	}
	hash, err := token.HashPassword(password)
	if err != nil {
		return err
	}
	return usecase.userRepository.UpdateUserPassword(ctx, exec, user.Id, hash)
}

func (usecase *MaintenanceUsecase) ResetSocioPassword(ctx context.Context, rut, password string) error {
	rut, err := pure_utils.ValidateRut(rut)
	if err != nil {
		return invalidRut(err)
	}
	exec := usecase.executorFactory.NewExecutor()
	socio, err := usecase.socioRepository.GetSocioByRut(ctx, exec, rut)
	if err != nil {
		return err
	}
	if socio == nil {
		return errors.Wrapf(models.NotFoundError, "no socio with rut %s", rut)
	}
	hash, err := token.HashPassword(password)
	if err != nil {
		return err
	}
	return usecase.socioRepository.UpdateSocioPassword(ctx, exec, socio.Id, hash)
}

// RepairTarifas fixes the bands of every tarifa that does not tile [0, +inf). With dryRun, the
// repairs are only reported.
func (usecase *MaintenanceUsecase) RepairTarifas(ctx context.Context, dryRun bool) ([]models.TarifaRepair, error) {
	logger := utils.LoggerFromContext(ctx)
	tarifas, err := usecase.tarifaRepository.ListTarifas(ctx, usecase.executorFactory.NewExecutor())
	if err != nil {
		return nil, err
	}

	repairs := make([]models.TarifaRepair, 0)
	for _, tarifa := range tarifas {
		repaired, changed := billing.RepairEscalones(tarifa.Escalones)
		if !changed {
			continue
		}
		if err := billing.ValidateEscalones(repaired); err != nil {
			return repairs, errors.Wrapf(err, "tarifa %s (%s) cannot be repaired automatically", tarifa.Id, tarifa.Nombre)
		}
		repairs = append(repairs, models.TarifaRepair{
			TarifaId: tarifa.Id,
			Nombre:   tarifa.Nombre,
			Before:   tarifa.Escalones,
			After:    repaired,
		})
		logger.InfoContext(ctx, "tarifa needs a repair", "tarifa_id", tarifa.Id, "nombre", tarifa.Nombre, "dry_run", dryRun)
		if dryRun {
			continue
		}

		inputs := pure_utils.Map(repaired, func(e models.Escalon) models.EscalonInput {
			return models.EscalonInput{DesdeM3: e.DesdeM3, HastaM3: e.HastaM3, PrecioM3: e.PrecioM3}
		})
		if err := usecase.transactionFactory.Transaction(ctx, func(tx repositories.Transaction) error {
			return usecase.tarifaRepository.ReplaceEscalones(ctx, tx, tarifa.Id, inputs)
		}); err != nil {
			return repairs, errors.Wrapf(err, "could not repair tarifa %s", tarifa.Id)
		}
	}

	if len(repairs) > 0 && !dryRun {
		usecase.activeTarifa.Invalidate()
	}
	return repairs, nil
}

func (usecase *MaintenanceUsecase) Reconcile(ctx context.Context) (models.ReconciliationRun, error) {
	return usecase.reconciler.Run(ctx, models.TriggerCli)
}
