package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories"
)

type TaskQueueRepository struct {
	mock.Mock
}

func (m *TaskQueueRepository) EnqueueIssuePeriodTask(ctx context.Context, periodo models.Periodo) error {
	args := m.Called(ctx, periodo)
	return args.Error(0)
}

func (m *TaskQueueRepository) EnqueueExportPeriodTask(ctx context.Context, tx repositories.Transaction, periodo models.Periodo) error {
	args := m.Called(ctx, tx, periodo)
	return args.Error(0)
}

func (m *TaskQueueRepository) EnqueueReconciliationTask(ctx context.Context, trigger models.ReconciliationTrigger) error {
	args := m.Called(ctx, trigger)
	return args.Error(0)
}
