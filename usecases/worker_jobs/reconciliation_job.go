package worker_jobs

import (
	"context"
	"time"

	"github.com/riverqueue/river"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/utils"
)

const (
	DEFAULT_RECONCILIATION_INTERVAL = 30 * time.Second
	RECONCILIATION_QUEUE            = "reconciliation"
)

// NewReconciliationPeriodicJob replaces the polling loop that kept pagos and boletas in sync.
// Runs are unique by period, so a single worker of the cluster runs each one.
func NewReconciliationPeriodicJob(interval time.Duration) *river.PeriodicJob {
	if interval <= 0 {
		interval = DEFAULT_RECONCILIATION_INTERVAL
	}
	return river.NewPeriodicJob(
		river.PeriodicInterval(interval),
		func() (river.JobArgs, *river.InsertOpts) {
			return models.ReconciliationArgs{Trigger: string(models.TriggerScheduled)},
				&river.InsertOpts{
					Queue: RECONCILIATION_QUEUE,
					// a missed run is caught up by the next one
					MaxAttempts: 1,
					UniqueOpts: river.UniqueOpts{
						ByQueue:  true,
						ByPeriod: interval,
					},
				}
		},
		&river.PeriodicJobOpts{RunOnStart: true},
	)
}

type reconciler interface {
	Run(ctx context.Context, trigger models.ReconciliationTrigger) (models.ReconciliationRun, error)
}

type ReconciliationWorker struct {
	river.WorkerDefaults[models.ReconciliationArgs]

	reconciler reconciler
	timeout    time.Duration
}

func NewReconciliationWorker(reconciler reconciler, interval time.Duration) *ReconciliationWorker {
	if interval <= 0 {
		interval = DEFAULT_RECONCILIATION_INTERVAL
	}
	return &ReconciliationWorker{reconciler: reconciler, timeout: 4 * interval}
}

func (w *ReconciliationWorker) Timeout(job *river.Job[models.ReconciliationArgs]) time.Duration {
	return w.timeout
}

func (w *ReconciliationWorker) Work(ctx context.Context, job *river.Job[models.ReconciliationArgs]) error {
	logger := utils.LoggerFromContext(ctx)

	trigger := models.ReconciliationTrigger(job.Args.Trigger)
	if trigger == "" {
		trigger = models.TriggerScheduled
	}
	run, err := w.reconciler.Run(ctx, trigger)
	if err != nil {
		return err
	}

	// failed actions are retried by the next run
	if runErr := run.Err(); runErr != nil {
		logger.WarnContext(ctx, "reconciliation run finished with errors", "errors", run.Errors)
	}
	if run.BoletasMarkedPaid+run.BoletasReverted+run.PagosApproved+run.PagosRejected+run.PagosExpired > 0 {
		logger.InfoContext(ctx, "reconciliation run fixed rows",
			"boletas_marked_paid", run.BoletasMarkedPaid,
			"boletas_reverted", run.BoletasReverted,
			"pagos_approved", run.PagosApproved,
			"pagos_rejected", run.PagosRejected,
			"pagos_expired", run.PagosExpired,
		)
	}
	return nil
}
