package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/utils"
)

const (
	nbRetriesIssuePeriod = 5
	priorityIssuePeriod  = 2 // nb: higher number is lower priority (between 1 and 4)
	nbRetriesExport      = 3
)

type TaskQueueRepository interface {
	EnqueueIssuePeriodTask(ctx context.Context, periodo models.Periodo) error
	EnqueueExportPeriodTask(ctx context.Context, tx Transaction, periodo models.Periodo) error
	EnqueueReconciliationTask(ctx context.Context, trigger models.ReconciliationTrigger) error
}

type riverRepository struct {
	client *river.Client[pgx.Tx]
}

func NewTaskQueueRepository(client *river.Client[pgx.Tx]) TaskQueueRepository {
	return riverRepository{client: client}
}

func (r riverRepository) EnqueueIssuePeriodTask(ctx context.Context, periodo models.Periodo) error {
	res, err := r.client.Insert(ctx, models.IssuePeriodArgs{Periodo: periodo}, &river.InsertOpts{
		MaxAttempts: nbRetriesIssuePeriod,
		Priority:    priorityIssuePeriod,
		UniqueOpts: river.UniqueOpts{
			ByArgs:   true,
			ByPeriod: time.Hour,
		},
	})
	if err != nil {
		return err
	}
	utils.LoggerFromContext(ctx).DebugContext(ctx, "Enqueued issue period task",
		"periodo", periodo, "job_id", res.Job.ID, "skipped_as_duplicate", res.UniqueSkippedAsDuplicate)
	return nil
}

func (r riverRepository) EnqueueExportPeriodTask(ctx context.Context, tx Transaction, periodo models.Periodo) error {
	res, err := r.client.InsertTx(ctx, tx.RawTx(), models.ExportPeriodArgs{Periodo: periodo}, &river.InsertOpts{
		MaxAttempts: nbRetriesExport,
		UniqueOpts: river.UniqueOpts{
			ByArgs:   true,
			ByPeriod: time.Minute,
		},
	})
	if err != nil {
		return err
	}
	utils.LoggerFromContext(ctx).DebugContext(ctx, "Enqueued export period task", "periodo", periodo, "job_id", res.Job.ID)
	return nil
}

func (r riverRepository) EnqueueReconciliationTask(ctx context.Context, trigger models.ReconciliationTrigger) error {
	res, err := r.client.Insert(ctx, models.ReconciliationArgs{Trigger: string(trigger)}, &river.InsertOpts{
		UniqueOpts: river.UniqueOpts{
			ByQueue:  true,
			ByPeriod: 10 * time.Second,
		},
	})
	if err != nil {
		return err
	}
	utils.LoggerFromContext(ctx).DebugContext(ctx, "Enqueued reconciliation task", "job_id", res.Job.ID)
	return nil
}
