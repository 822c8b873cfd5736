package usecases

import (
	"context"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories"
	"github.com/portal-apr/portal-apr-backend/usecases/executor_factory"
	"github.com/portal-apr/portal-apr-backend/usecases/security"
	"github.com/portal-apr/portal-apr-backend/usecases/tracking"
)

type ReconciliationRunRepository interface {
	ListReconciliationRuns(ctx context.Context, exec repositories.Executor,
		pagination models.PaginationAndSorting) ([]models.ReconciliationRun, error)
}

type reconciliationRunner interface {
	Run(ctx context.Context, trigger models.ReconciliationTrigger) (models.ReconciliationRun, error)
}

type ReconciliationUsecase struct {
	enforceSecurity security.EnforceSecurityPago
	executorFactory executor_factory.ExecutorFactory
	repository      ReconciliationRunRepository
	reconciler      reconciliationRunner
}

// RunNow runs a reconciliation pass synchronously, on top of the scheduled ones
func (usecase *ReconciliationUsecase) RunNow(ctx context.Context) (models.ReconciliationRun, error) {
	if err := usecase.enforceSecurity.RunReconciliation(); err != nil {
		return models.ReconciliationRun{}, err
	}
	tracking.TrackEvent(ctx, models.AnalyticsReconciliationStarted, map[string]any{"trigger": models.TriggerManual})
	return usecase.reconciler.Run(ctx, models.TriggerManual)
}

func (usecase *ReconciliationUsecase) ListRuns(ctx context.Context, pagination models.PaginationAndSorting) ([]models.ReconciliationRun, error) {
	if err := usecase.enforceSecurity.ReadReconciliationRuns(); err != nil {
		return nil, err
	}
	return usecase.repository.ListReconciliationRuns(ctx, usecase.executorFactory.NewExecutor(), pagination.WithDefaults())
}
