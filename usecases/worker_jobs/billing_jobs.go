package worker_jobs

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riverqueue/river"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories/clock"
	"github.com/portal-apr/portal-apr-backend/utils"
)

const (
	BILLING_QUEUE          = "billing"
	DEFAULT_BILLING_CRON   = "0 6 1 * *"
	DEFAULT_OVERDUE_CRON   = "0 5 * * *"
	ISSUE_PERIOD_TIMEOUT   = 30 * time.Minute
	MARK_OVERDUE_TIMEOUT   = 10 * time.Minute
	EXPORT_PERIOD_TIMEOUT  = 10 * time.Minute
	billingJobUniquePeriod = time.Hour
)

// NewIssuePeriodPeriodicJob issues the boletas of the month that just ended. The periodo is
// left empty and resolved when the job runs.
func NewIssuePeriodPeriodicJob(schedule river.PeriodicSchedule) *river.PeriodicJob {
	return river.NewPeriodicJob(
		schedule,
		func() (river.JobArgs, *river.InsertOpts) {
			return models.IssuePeriodArgs{}, &river.InsertOpts{
				Queue: BILLING_QUEUE,
				UniqueOpts: river.UniqueOpts{
					ByArgs:   true,
					ByPeriod: billingJobUniquePeriod,
				},
			}
		},
		&river.PeriodicJobOpts{RunOnStart: false},
	)
}

func NewMarkOverduePeriodicJob(schedule river.PeriodicSchedule) *river.PeriodicJob {
	return river.NewPeriodicJob(
		schedule,
		func() (river.JobArgs, *river.InsertOpts) {
			return models.MarkOverdueArgs{}, &river.InsertOpts{
				Queue: BILLING_QUEUE,
				UniqueOpts: river.UniqueOpts{
					ByQueue:  true,
					ByPeriod: billingJobUniquePeriod,
				},
			}
		},
		&river.PeriodicJobOpts{RunOnStart: true},
	)
}

type periodIssuer interface {
	IssuePeriod(ctx context.Context, periodo models.Periodo) (models.IssuePeriodReport, error)
	MarkOverdue(ctx context.Context) (int, error)
}

type IssuePeriodWorker struct {
	river.WorkerDefaults[models.IssuePeriodArgs]

	issuer periodIssuer
	clock  clock.Clock
}

func NewIssuePeriodWorker(issuer periodIssuer) *IssuePeriodWorker {
	return &IssuePeriodWorker{issuer: issuer, clock: clock.New()}
}

func (w *IssuePeriodWorker) Timeout(job *river.Job[models.IssuePeriodArgs]) time.Duration {
	return ISSUE_PERIOD_TIMEOUT
}

// Work issues the boletas of the periodo. Boletas already issued are skipped, so a retry only
// handles the socios that failed.
func (w *IssuePeriodWorker) Work(ctx context.Context, job *river.Job[models.IssuePeriodArgs]) error {
	logger := utils.LoggerFromContext(ctx)

	periodo := job.Args.Periodo
	if periodo == "" {
		periodo = models.PeriodoOf(w.clock.Now()).Previous()
	}
	report, err := w.issuer.IssuePeriod(ctx, periodo)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "boletas issued",
		"periodo", periodo,
		"issued", report.Issued,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	if report.Failed > 0 {
		return errors.Newf("%d boletas could not be issued for %s", report.Failed, periodo)
	}
	return nil
}

type MarkOverdueWorker struct {
	river.WorkerDefaults[models.MarkOverdueArgs]

	issuer periodIssuer
}

func NewMarkOverdueWorker(issuer periodIssuer) *MarkOverdueWorker {
	return &MarkOverdueWorker{issuer: issuer}
}

func (w *MarkOverdueWorker) Timeout(job *river.Job[models.MarkOverdueArgs]) time.Duration {
	return MARK_OVERDUE_TIMEOUT
}

func (w *MarkOverdueWorker) Work(ctx context.Context, job *river.Job[models.MarkOverdueArgs]) error {
	count, err := w.issuer.MarkOverdue(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		utils.LoggerFromContext(ctx).InfoContext(ctx, "boletas marked overdue", "count", count)
	}
	return nil
}

type periodExporter interface {
	ExportPeriod(ctx context.Context, periodo models.Periodo) (models.ExportResult, error)
}

type ExportPeriodWorker struct {
	river.WorkerDefaults[models.ExportPeriodArgs]

	exporter periodExporter
}

func NewExportPeriodWorker(exporter periodExporter) *ExportPeriodWorker {
	return &ExportPeriodWorker{exporter: exporter}
}

func (w *ExportPeriodWorker) Timeout(job *river.Job[models.ExportPeriodArgs]) time.Duration {
	return EXPORT_PERIOD_TIMEOUT
}

func (w *ExportPeriodWorker) Work(ctx context.Context, job *river.Job[models.ExportPeriodArgs]) error {
	result, err := w.exporter.ExportPeriod(ctx, job.Args.Periodo)
	if err != nil {
		return err
	}
	utils.LoggerFromContext(ctx).InfoContext(ctx, "boletas exported",
		"periodo", result.Periodo, "file", result.FileName, "rows", result.Rows)
	return nil
}
