package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories"
)

type BoletaIssuer struct {
	mock.Mock
}

func (m *BoletaIssuer) IssueBoleta(ctx context.Context, socioId string, periodo models.Periodo) (models.Boleta, error) {
	args := m.Called(ctx, socioId, periodo)
	return args.Get(0).(models.Boleta), args.Error(1)
}

func (m *BoletaIssuer) IssuePeriod(ctx context.Context, periodo models.Periodo) (models.IssuePeriodReport, error) {
	args := m.Called(ctx, periodo)
	return args.Get(0).(models.IssuePeriodReport), args.Error(1)
}

func (m *BoletaIssuer) MarkOverdue(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type BoletaExporter struct {
	mock.Mock
}

func (m *BoletaExporter) ExportPeriod(ctx context.Context, periodo models.Periodo) (models.ExportResult, error) {
	args := m.Called(ctx, periodo)
	return args.Get(0).(models.ExportResult), args.Error(1)
}

type ActiveTarifaCache struct {
	mock.Mock
}

func (m *ActiveTarifaCache) Get(ctx context.Context, exec repositories.Executor) (models.Tarifa, error) {
	args := m.Called(ctx, exec)
	return args.Get(0).(models.Tarifa), args.Error(1)
}

func (m *ActiveTarifaCache) Refresh(ctx context.Context, exec repositories.Executor) (models.Tarifa, error) {
	args := m.Called(ctx, exec)
	return args.Get(0).(models.Tarifa), args.Error(1)
}

func (m *ActiveTarifaCache) Invalidate() {
	m.Called()
}

type Reconciler struct {
	mock.Mock
}

func (m *Reconciler) Run(ctx context.Context, trigger models.ReconciliationTrigger) (models.ReconciliationRun, error) {
	args := m.Called(ctx, trigger)
	return args.Get(0).(models.ReconciliationRun), args.Error(1)
}
