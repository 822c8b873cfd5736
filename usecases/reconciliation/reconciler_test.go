package reconciliation

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories"
	"github.com/portal-apr/portal-apr-backend/repositories/clock"
	"github.com/portal-apr/portal-apr-backend/usecases/executor_factory"
)

type repositoryMock struct {
	mock.Mock
}

func (m *repositoryMock) ListApprovedPagosWithUnpaidBoletas(ctx context.Context, exec repositories.Executor, limit int) ([]models.Pago, error) {
	args := m.Called(exec, limit)
	return args.Get(0).([]models.Pago), args.Error(1)
}

func (m *repositoryMock) ListPagadaBoletasWithoutApprovedPago(ctx context.Context, exec repositories.Executor, limit int) ([]models.Boleta, error) {
	args := m.Called(exec, limit)
	return args.Get(0).([]models.Boleta), args.Error(1)
}

func (m *repositoryMock) ListPendingPagosCreatedBefore(ctx context.Context, exec repositories.Executor, before time.Time, limit int) ([]models.Pago, error) {
	args := m.Called(exec, before, limit)
	return args.Get(0).([]models.Pago), args.Error(1)
}

func (m *repositoryMock) ListBoletasByIds(ctx context.Context, exec repositories.Executor, boletaIds []string, forUpdate bool) ([]models.Boleta, error) {
	args := m.Called(exec, boletaIds, forUpdate)
	return args.Get(0).([]models.Boleta), args.Error(1)
}

func (m *repositoryMock) GetBoletaById(ctx context.Context, exec repositories.Executor, boletaId string, forUpdate bool) (models.Boleta, error) {
	args := m.Called(exec, boletaId, forUpdate)
	return args.Get(0).(models.Boleta), args.Error(1)
}

func (m *repositoryMock) GetPagoById(ctx context.Context, exec repositories.Executor, pagoId string, forUpdate bool) (models.Pago, error) {
	args := m.Called(exec, pagoId, forUpdate)
	return args.Get(0).(models.Pago), args.Error(1)
}

func (m *repositoryMock) ApprovedPagoExistsForBoleta(ctx context.Context, exec repositories.Executor, boletaId string) (bool, error) {
	args := m.Called(exec, boletaId)
	return args.Bool(0), args.Error(1)
}

func (m *repositoryMock) MarkBoletasPagadas(ctx context.Context, exec repositories.Executor, boletaIds []string, pagadaAt time.Time) error {
	args := m.Called(exec, boletaIds, pagadaAt)
	return args.Error(0)
}

func (m *repositoryMock) SetBoletaEstado(ctx context.Context, exec repositories.Executor, boletaId string, estado models.BoletaEstado) error {
	args := m.Called(exec, boletaId, estado)
	return args.Error(0)
}

func (m *repositoryMock) CreateReconciliationRun(ctx context.Context, exec repositories.Executor, run models.ReconciliationRun) error {
	args := m.Called(exec, run)
	return args.Error(0)
}

type settlerMock struct {
	mock.Mock
}

func (m *settlerMock) SettlePago(ctx context.Context, pago models.Pago, expire bool) (models.Pago, error) {
	args := m.Called(pago, expire)
	return args.Get(0).(models.Pago), args.Error(1)
}

type ReconcilerTestSuite struct {
	suite.Suite
	repository *repositoryMock
	settler    *settlerMock
	exec       executor_factory.ExecutorFactoryStub
	now        time.Time
	confirmed  time.Time
}

func (suite *ReconcilerTestSuite) SetupTest() {
	suite.repository = new(repositoryMock)
	suite.settler = new(settlerMock)
	suite.exec = executor_factory.NewExecutorFactoryStub()
	suite.now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	suite.confirmed = suite.now.Add(-2 * time.Hour)
}

func (suite *ReconcilerTestSuite) makeReconciler() *Reconciler {
	r := NewReconciler(
		suite.exec,
		executor_factory.NewTransactionFactoryStub(suite.exec),
		suite.repository,
		suite.settler,
		30*time.Minute,
	)
	r.clock = clock.NewMock(suite.now)
	return r
}

func (suite *ReconcilerTestSuite) expectSnapshot(approved []models.Pago, linked []models.Boleta, orphans []models.Boleta, pending []models.Pago) {
	suite.repository.On("ListApprovedPagosWithUnpaidBoletas", mock.Anything, snapshotLimit).Return(approved, nil)
	suite.repository.On("ListBoletasByIds", mock.Anything, mock.Anything, false).Return(linked, nil)
	suite.repository.On("ListPagadaBoletasWithoutApprovedPago", mock.Anything, snapshotLimit).Return(orphans, nil)
	suite.repository.On("ListPendingPagosCreatedBefore", mock.Anything, suite.now.Add(-30*time.Minute), snapshotLimit).
		Return(pending, nil)
}

func (suite *ReconcilerTestSuite) TestRun_applies_every_kind_of_action() {
	t := suite.T()
	approvedPago := models.Pago{
		Id: "p1", Estado: models.PagoAprobado, BoletaIds: []string{"b1"}, ConfirmadoAt: &suite.confirmed,
	}
	pendingPago := models.Pago{
		Id: "p2", Estado: models.PagoPendiente, Metodo: models.MetodoWebpay, CreatedAt: suite.now.Add(-time.Hour),
	}
	b1 := models.Boleta{Id: "b1", Estado: models.BoletaVencida, FechaVencimiento: suite.now.Add(-time.Hour)}
	b2 := models.Boleta{Id: "b2", Estado: models.BoletaPagada, FechaVencimiento: suite.now.Add(time.Hour)}
	suite.expectSnapshot([]models.Pago{approvedPago}, []models.Boleta{b1}, []models.Boleta{b2}, []models.Pago{pendingPago})

	// mark b1 pagada
	suite.exec.Mock.ExpectBegin()
	suite.repository.On("GetPagoById", mock.Anything, "p1", true).Return(approvedPago, nil)
	suite.repository.On("ListBoletasByIds", mock.Anything, []string{"b1"}, true).Return([]models.Boleta{b1}, nil)
	suite.repository.On("MarkBoletasPagadas", mock.Anything, []string{"b1"}, suite.confirmed).Return(nil)
	suite.exec.Mock.ExpectCommit()

	// revert b2
	suite.exec.Mock.ExpectBegin()
	suite.repository.On("GetBoletaById", mock.Anything, "b2", true).Return(b2, nil)
	suite.repository.On("ApprovedPagoExistsForBoleta", mock.Anything, "b2").Return(false, nil)
	suite.repository.On("SetBoletaEstado", mock.Anything, "b2", models.BoletaPendiente).Return(nil)
	suite.exec.Mock.ExpectCommit()

	// expire p2
	expired := pendingPago
	expired.Estado = models.PagoExpirado
	suite.repository.On("GetPagoById", mock.Anything, "p2", false).Return(pendingPago, nil)
	suite.settler.On("SettlePago", pendingPago, true).Return(expired, nil)

	suite.repository.On("CreateReconciliationRun", mock.Anything, mock.MatchedBy(func(run models.ReconciliationRun) bool {
		return run.Trigger == models.TriggerManual &&
			run.BoletasMarkedPaid == 1 &&
			run.BoletasReverted == 1 &&
			run.PagosExpired == 1 &&
			run.Skipped == 0 &&
			len(run.Errors) == 0
	})).Return(nil)

	run, err := suite.makeReconciler().Run(context.Background(), models.TriggerManual)

	require.NoError(t, err)
	assert.NoError(t, run.Err())
	suite.repository.AssertExpectations(t)
	suite.settler.AssertExpectations(t)
	assert.NoError(t, suite.exec.Mock.ExpectationsWereMet())
}

func (suite *ReconcilerTestSuite) TestRun_skips_rows_changed_since_snapshot() {
	t := suite.T()
	b2 := models.Boleta{Id: "b2", Estado: models.BoletaPagada, FechaVencimiento: suite.now.Add(time.Hour)}
	suite.expectSnapshot([]models.Pago{}, []models.Boleta{}, []models.Boleta{b2}, []models.Pago{})

	// a pago was approved for b2 meanwhile
	suite.exec.Mock.ExpectBegin()
	suite.repository.On("GetBoletaById", mock.Anything, "b2", true).Return(b2, nil)
	suite.repository.On("ApprovedPagoExistsForBoleta", mock.Anything, "b2").Return(true, nil)
	suite.exec.Mock.ExpectRollback()

	suite.repository.On("CreateReconciliationRun", mock.Anything, mock.MatchedBy(func(run models.ReconciliationRun) bool {
		return run.Skipped == 1 && run.BoletasReverted == 0 && len(run.Errors) == 0
	})).Return(nil)

	_, err := suite.makeReconciler().Run(context.Background(), models.TriggerScheduled)

	require.NoError(t, err)
	suite.repository.AssertNotCalled(t, "SetBoletaEstado", mock.Anything, mock.Anything, mock.Anything)
	assert.NoError(t, suite.exec.Mock.ExpectationsWereMet())
}

func (suite *ReconcilerTestSuite) TestRun_records_gateway_failures() {
	t := suite.T()
	pendingPago := models.Pago{
		Id: "p2", Estado: models.PagoPendiente, Metodo: models.MetodoFlow, CreatedAt: suite.now.Add(-time.Hour),
	}
	suite.expectSnapshot([]models.Pago{}, []models.Boleta{}, []models.Boleta{}, []models.Pago{pendingPago})
	suite.repository.On("GetPagoById", mock.Anything, "p2", false).Return(pendingPago, nil)
	suite.settler.On("SettlePago", pendingPago, true).Return(models.Pago{}, models.ErrGatewayUnavailable)

	suite.repository.On("CreateReconciliationRun", mock.Anything, mock.MatchedBy(func(run models.ReconciliationRun) bool {
		return len(run.Errors) == 1
	})).Return(nil)

	run, err := suite.makeReconciler().Run(context.Background(), models.TriggerCli)

	require.NoError(t, err)
	assert.Error(t, run.Err())
}

func (suite *ReconcilerTestSuite) TestRun_snapshot_error() {
	t := suite.T()
	suite.repository.On("ListApprovedPagosWithUnpaidBoletas", mock.Anything, snapshotLimit).
		Return([]models.Pago{}, errors.New("connection refused"))

	_, err := suite.makeReconciler().Run(context.Background(), models.TriggerScheduled)

	assert.Error(t, err)
	suite.repository.AssertNotCalled(t, "CreateReconciliationRun", mock.Anything, mock.Anything)
}

func TestReconciler(t *testing.T) {
	suite.Run(t, new(ReconcilerTestSuite))
}
