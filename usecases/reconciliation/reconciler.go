package reconciliation

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/pure_utils"
	"github.com/portal-apr/portal-apr-backend/repositories"
	"github.com/portal-apr/portal-apr-backend/repositories/clock"
	"github.com/portal-apr/portal-apr-backend/usecases/executor_factory"
	"github.com/portal-apr/portal-apr-backend/utils"
)

const (
	DefaultPendingTtl = 30 * time.Minute
	snapshotLimit     = 500
)

const (
	outcomeApplied = "applied"
	outcomeSkipped = "skipped"
	outcomeError   = "error"
)

type Repository interface {
	ListApprovedPagosWithUnpaidBoletas(ctx context.Context, exec repositories.Executor, limit int) ([]models.Pago, error)
	ListPagadaBoletasWithoutApprovedPago(ctx context.Context, exec repositories.Executor, limit int) ([]models.Boleta, error)
	ListPendingPagosCreatedBefore(ctx context.Context, exec repositories.Executor, before time.Time, limit int) ([]models.Pago, error)
	ListBoletasByIds(ctx context.Context, exec repositories.Executor, boletaIds []string, forUpdate bool) ([]models.Boleta, error)
	GetBoletaById(ctx context.Context, exec repositories.Executor, boletaId string, forUpdate bool) (models.Boleta, error)
	GetPagoById(ctx context.Context, exec repositories.Executor, pagoId string, forUpdate bool) (models.Pago, error)
	ApprovedPagoExistsForBoleta(ctx context.Context, exec repositories.Executor, boletaId string) (bool, error)
	MarkBoletasPagadas(ctx context.Context, exec repositories.Executor, boletaIds []string, pagadaAt time.Time) error
	SetBoletaEstado(ctx context.Context, exec repositories.Executor, boletaId string, estado models.BoletaEstado) error
	CreateReconciliationRun(ctx context.Context, exec repositories.Executor, run models.ReconciliationRun) error
}

type pagoSettler interface {
	SettlePago(ctx context.Context, pago models.Pago, expire bool) (models.Pago, error)
}

// Reconciler applies the reconciliation plan. Every action runs in its own transaction and
// re-reads its rows under lock: an action whose rows changed since the snapshot is skipped.
type Reconciler struct {
	executorFactory    executor_factory.ExecutorFactory
	transactionFactory executor_factory.TransactionFactory
	repository         Repository
	settler            pagoSettler
	clock              clock.Clock
	pendingTtl         time.Duration
}

func NewReconciler(
	executorFactory executor_factory.ExecutorFactory,
	transactionFactory executor_factory.TransactionFactory,
	repository Repository,
	settler pagoSettler,
	pendingTtl time.Duration,
) *Reconciler {
	if pendingTtl <= 0 {
		pendingTtl = DefaultPendingTtl
	}
	return &Reconciler{
		executorFactory:    executorFactory,
		transactionFactory: transactionFactory,
		repository:         repository,
		settler:            settler,
		clock:              clock.New(),
		pendingTtl:         pendingTtl,
	}
}

func (r *Reconciler) PendingTtl() time.Duration {
	return r.pendingTtl
}

// Run takes a snapshot, plans and applies the fixes, and stores the run. Failed actions are
// recorded in the run and do not stop the others.
func (r *Reconciler) Run(ctx context.Context, trigger models.ReconciliationTrigger) (models.ReconciliationRun, error) {
	logger := utils.LoggerFromContext(ctx).With("trigger", trigger)
	now := r.clock.Now()
	run := models.ReconciliationRun{
		Id:        uuid.NewString(),
		Trigger:   trigger,
		StartedAt: now,
	}

	snapshot, err := r.snapshot(ctx, now)
	if err != nil {
		return run, errors.Wrap(err, "error while reading reconciliation snapshot")
	}

	for _, action := range PlanReconciliation(snapshot, now, r.pendingTtl) {
		outcome := outcomeApplied
		if err := r.apply(ctx, action, now, &run); err != nil {
			outcome = outcomeError
			if errors.Is(err, errSkipped) {
				outcome = outcomeSkipped
				run.Skipped++
			} else {
				logger.WarnContext(ctx, "reconciliation action failed",
					"action", action.Kind, "pago_id", action.PagoId, "error", err.Error())
				run.AddError(errors.Wrapf(err, "%s %s%v", action.Kind, action.PagoId, action.BoletaIds))
			}
		}
		utils.MetricReconciliationActions.WithLabelValues(string(action.Kind), outcome).Inc()
	}

	run.FinishedAt = r.clock.Now()
	utils.MetricReconciliationRunDuration.Observe(run.FinishedAt.Sub(run.StartedAt).Seconds())

	if err := r.repository.CreateReconciliationRun(ctx, r.executorFactory.NewExecutor(), run); err != nil {
		return run, errors.Wrap(err, "error while storing reconciliation run")
	}

	logger.InfoContext(ctx, "reconciliation done",
		"boletas_marked_paid", run.BoletasMarkedPaid,
		"boletas_reverted", run.BoletasReverted,
		"pagos_approved", run.PagosApproved,
		"pagos_rejected", run.PagosRejected,
		"pagos_expired", run.PagosExpired,
		"skipped", run.Skipped,
		"errors", len(run.Errors))
	return run, nil
}

func (r *Reconciler) snapshot(ctx context.Context, now time.Time) (models.ReconciliationSnapshot, error) {
	exec := r.executorFactory.NewExecutor()

	approved, err := r.repository.ListApprovedPagosWithUnpaidBoletas(ctx, exec, snapshotLimit)
	if err != nil {
		return models.ReconciliationSnapshot{}, err
	}
	linked := make([]string, 0)
	for _, pago := range approved {
		linked = append(linked, pago.AppliedBoletaIds()...)
	}
	boletas, err := r.repository.ListBoletasByIds(ctx, exec, pure_utils.Deduplicate(linked), false)
	if err != nil {
		return models.ReconciliationSnapshot{}, err
	}

	orphans, err := r.repository.ListPagadaBoletasWithoutApprovedPago(ctx, exec, snapshotLimit)
	if err != nil {
		return models.ReconciliationSnapshot{}, err
	}
	known := make(map[string]bool, len(boletas))
	for _, b := range boletas {
		known[b.Id] = true
	}
	for _, b := range orphans {
		if !known[b.Id] {
			boletas = append(boletas, b)
		}
	}

	pending, err := r.repository.ListPendingPagosCreatedBefore(ctx, exec, now.Add(-r.pendingTtl), snapshotLimit)
	if err != nil {
		return models.ReconciliationSnapshot{}, err
	}

	return models.ReconciliationSnapshot{
		ApprovedPagos: approved,
		Boletas:       boletas,
		PendingPagos:  pending,
	}, nil
}

var errSkipped = errors.New("state changed since the snapshot")

func (r *Reconciler) apply(ctx context.Context, action models.ReconciliationAction, now time.Time, run *models.ReconciliationRun) error {
	switch action.Kind {
	case models.ActionMarkBoletasPagada:
		count, err := r.markBoletasPagada(ctx, action)
		run.BoletasMarkedPaid += count
		return err
	case models.ActionRevertBoleta:
		if err := r.revertBoleta(ctx, action.BoletaIds[0], now); err != nil {
			return err
		}
		run.BoletasReverted++
		return nil
	case models.ActionCheckGateway:
		estado, err := r.checkGateway(ctx, action.PagoId)
		if err != nil {
			return err
		}
		switch estado {
		case models.PagoAprobado:
			run.PagosApproved++
		case models.PagoRechazado:
			run.PagosRejected++
		case models.PagoExpirado:
			run.PagosExpired++
		default:
			return errSkipped
		}
		return nil
	}
	return errors.Newf("unknown reconciliation action %s", action.Kind)
}

func (r *Reconciler) markBoletasPagada(ctx context.Context, action models.ReconciliationAction) (int, error) {
	return executor_factory.TransactionReturnValue(ctx, r.transactionFactory, func(tx repositories.Transaction) (int, error) {
		pago, err := r.repository.GetPagoById(ctx, tx, action.PagoId, true)
		if err != nil {
			return 0, err
		}
		if pago.Estado != models.PagoAprobado {
			return 0, errSkipped
		}

		boletas, err := r.repository.ListBoletasByIds(ctx, tx, action.BoletaIds, true)
		if err != nil {
			return 0, err
		}
		ids := make([]string, 0, len(boletas))
		for _, b := range boletas {
			if b.IsPayable() {
				ids = append(ids, b.Id)
			}
		}
		if len(ids) == 0 {
			return 0, errSkipped
		}

		pagadaAt := r.clock.Now()
		if pago.ConfirmadoAt != nil {
			pagadaAt = *pago.ConfirmadoAt
		}
		if err := r.repository.MarkBoletasPagadas(ctx, tx, ids, pagadaAt); err != nil {
			return 0, err
		}
		return len(ids), nil
	})
}

func (r *Reconciler) revertBoleta(ctx context.Context, boletaId string, now time.Time) error {
	return r.transactionFactory.Transaction(ctx, func(tx repositories.Transaction) error {
		boleta, err := r.repository.GetBoletaById(ctx, tx, boletaId, true)
		if err != nil {
			return err
		}
		if boleta.Estado != models.BoletaPagada {
			return errSkipped
		}
		paid, err := r.repository.ApprovedPagoExistsForBoleta(ctx, tx, boletaId)
		if err != nil {
			return err
		}
		if paid {
			return errSkipped
		}
		return r.repository.SetBoletaEstado(ctx, tx, boletaId, boleta.UnpaidEstadoAt(now))
	})
}

func (r *Reconciler) checkGateway(ctx context.Context, pagoId string) (models.PagoEstado, error) {
	pago, err := r.repository.GetPagoById(ctx, r.executorFactory.NewExecutor(), pagoId, false)
	if err != nil {
		return "", err
	}
	if pago.Estado != models.PagoPendiente {
		return "", errSkipped
	}
	settled, err := r.settler.SettlePago(ctx, pago, true)
	if err != nil {
		return "", err
	}
	return settled.Estado, nil
}
