package repositories

import (
	"context"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories/dbmodels"
)

func (repo *PortalDbRepository) CreateReconciliationRun(ctx context.Context, exec Executor, run models.ReconciliationRun) error {
	errs := run.Errors
	if errs == nil {
		errs = []string{}
	}
	_, err := ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Insert(dbmodels.TABLE_RECONCILIATION_RUNS).
			Columns(
				"id",
				"trigger",
				"started_at",
				"finished_at",
				"boletas_marked_paid",
				"boletas_reverted",
				"pagos_approved",
				"pagos_rejected",
				"pagos_expired",
				"skipped",
				"errors",
			).
			Values(
				run.Id,
				run.Trigger,
				run.StartedAt,
				run.FinishedAt,
				run.BoletasMarkedPaid,
				run.BoletasReverted,
				run.PagosApproved,
				run.PagosRejected,
				run.PagosExpired,
				run.Skipped,
				errs,
			),
	)
	return err
}

func (repo *PortalDbRepository) ListReconciliationRuns(ctx context.Context, exec Executor, pagination models.PaginationAndSorting) ([]models.ReconciliationRun, error) {
	return SqlToListOfModels(
		ctx,
		exec,
		applyPagination(
			NewQueryBuilder().
				Select(dbmodels.ReconciliationRunFields...).
				From(dbmodels.TABLE_RECONCILIATION_RUNS),
			"started_at",
			pagination,
		),
		dbmodels.AdaptReconciliationRun,
	)
}
