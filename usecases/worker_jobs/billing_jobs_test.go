package worker_jobs

import (
	"context"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/portal-apr/portal-apr-backend/mocks"
	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories/clock"
)

func TestIssuePeriodWorker_defaultsToPreviousMonth(t *testing.T) {
	issuer := new(mocks.BoletaIssuer)
	issuer.On("IssuePeriod", mock.Anything, models.Periodo("2024-04")).
		Return(models.IssuePeriodReport{Periodo: "2024-04", Issued: 10}, nil)
	worker := NewIssuePeriodWorker(issuer)
	worker.clock = clock.NewMock(time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC))

	err := worker.Work(context.Background(), &river.Job[models.IssuePeriodArgs]{Args: models.IssuePeriodArgs{}})

	assert.NoError(t, err)
	issuer.AssertExpectations(t)
}

func TestIssuePeriodWorker_retriesFailures(t *testing.T) {
	issuer := new(mocks.BoletaIssuer)
	issuer.On("IssuePeriod", mock.Anything, models.Periodo("2024-02")).
		Return(models.IssuePeriodReport{Periodo: "2024-02", Issued: 8, Failed: 2}, nil)
	worker := NewIssuePeriodWorker(issuer)

	err := worker.Work(context.Background(), &river.Job[models.IssuePeriodArgs]{
		Args: models.IssuePeriodArgs{Periodo: "2024-02"},
	})

	assert.Error(t, err)
}

func TestMarkOverdueWorker(t *testing.T) {
	issuer := new(mocks.BoletaIssuer)
	issuer.On("MarkOverdue", mock.Anything).Return(3, nil)

	err := NewMarkOverdueWorker(issuer).Work(context.Background(), &river.Job[models.MarkOverdueArgs]{})

	assert.NoError(t, err)
	issuer.AssertExpectations(t)
}

func TestExportPeriodWorker(t *testing.T) {
	exporter := new(mocks.BoletaExporter)
	exporter.On("ExportPeriod", mock.Anything, models.Periodo("2024-04")).
		Return(models.ExportResult{Periodo: "2024-04", FileName: "boletas/2024-04/x.csv", Rows: 12}, nil)

	err := NewExportPeriodWorker(exporter).Work(context.Background(), &river.Job[models.ExportPeriodArgs]{
		Args: models.ExportPeriodArgs{Periodo: "2024-04"},
	})

	assert.NoError(t, err)
	exporter.AssertExpectations(t)
}

func TestReconciliationWorker_runErrorsAreNotRetried(t *testing.T) {
	reconciler := new(mocks.Reconciler)
	reconciler.On("Run", mock.Anything, models.TriggerScheduled).
		Return(models.ReconciliationRun{PagosApproved: 1, Errors: []string{"gateway timeout"}}, nil)

	worker := NewReconciliationWorker(reconciler, 0)
	err := worker.Work(context.Background(), &river.Job[models.ReconciliationArgs]{})

	assert.NoError(t, err)
	assert.Equal(t, 4*DEFAULT_RECONCILIATION_INTERVAL, worker.Timeout(nil))
	reconciler.AssertExpectations(t)
}

func TestReconciliationWorker_manualTrigger(t *testing.T) {
	reconciler := new(mocks.Reconciler)
	reconciler.On("Run", mock.Anything, models.TriggerManual).Return(models.ReconciliationRun{}, nil)

	err := NewReconciliationWorker(reconciler, time.Minute).Work(context.Background(),
		&river.Job[models.ReconciliationArgs]{Args: models.ReconciliationArgs{Trigger: string(models.TriggerManual)}})

	assert.NoError(t, err)
	reconciler.AssertExpectations(t)
}
