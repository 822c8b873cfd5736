package payments

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
	"github.com/portal-apr/portal-apr-backend/repositories/payment_gateways"
	"github.com/portal-apr/portal-apr-backend/usecases/executor_factory"
)

type settlerRepositoryMock struct {
	mock.Mock
}

func (m *settlerRepositoryMock) InsertGatewayNotification(ctx context.Context, exec repositories.Executor,
	notification models.GatewayNotification, hash string,
) (bool, error) {
	args := m.Called(exec, notification, hash)
	return args.Bool(0), args.Error(1)
}

func (m *settlerRepositoryMock) GetPagoById(ctx context.Context, exec repositories.Executor, pagoId string, forUpdate bool) (models.Pago, error) {
	args := m.Called(exec, pagoId, forUpdate)
	return args.Get(0).(models.Pago), args.Error(1)
}

func (m *settlerRepositoryMock) GetPagoByGatewayToken(ctx context.Context, exec repositories.Executor, metodo models.MetodoPago, token string) (*models.Pago, error) {
	args := m.Called(exec, metodo, token)
	return args.Get(0).(*models.Pago), args.Error(1)
}

func (m *settlerRepositoryMock) GetPagoByBuyOrder(ctx context.Context, exec repositories.Executor, buyOrder string) (*models.Pago, error) {
	args := m.Called(exec, buyOrder)
	return args.Get(0).(*models.Pago), args.Error(1)
}

func (m *settlerRepositoryMock) LockPagoIfPending(ctx context.Context, exec repositories.Transaction, pagoId string) (*models.Pago, error) {
	args := m.Called(exec, pagoId)
	return args.Get(0).(*models.Pago), args.Error(1)
}

func (m *settlerRepositoryMock) ResolvePago(ctx context.Context, exec repositories.Executor, pagoId string, resolution models.PagoResolution) (bool, error) {
	args := m.Called(exec, pagoId, resolution)
	return args.Bool(0), args.Error(1)
}

func (m *settlerRepositoryMock) ListBoletasByIds(ctx context.Context, exec repositories.Executor, boletaIds []string, forUpdate bool) ([]models.Boleta, error) {
	args := m.Called(exec, boletaIds, forUpdate)
	return args.Get(0).([]models.Boleta), args.Error(1)
}

func (m *settlerRepositoryMock) MarkBoletasPagadas(ctx context.Context, exec repositories.Executor, boletaIds []string, pagadaAt time.Time) error {
	args := m.Called(exec, boletaIds, pagadaAt)
	return args.Error(0)
}

func (m *settlerRepositoryMock) MarkPagoBoletasCredited(ctx context.Context, exec repositories.Executor, pagoId string, boletaIds []string) error {
	args := m.Called(exec, pagoId, boletaIds)
	return args.Error(0)
}

func (m *settlerRepositoryMock) AddSocioSaldoFavor(ctx context.Context, exec repositories.Executor, socioId string, amount int64) error {
	args := m.Called(exec, socioId, amount)
	return args.Error(0)
}

type SettlerTestSuite struct {
	suite.Suite
	repository *settlerRepositoryMock
	exec       executor_factory.ExecutorFactoryStub
	fake       *payment_gateways.Fake
	now        time.Time
	pago       models.Pago
	token      string
}

func (suite *SettlerTestSuite) SetupTest() {
	suite.repository = new(settlerRepositoryMock)
	suite.exec = executor_factory.NewExecutorFactoryStub()
	suite.fake = payment_gateways.NewFake()
	suite.now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	trx, err := suite.fake.CreateTransaction(context.Background(), models.GatewayTransactionRequest{
		BuyOrder:  "BO-1",
		Amount:    12500,
		ReturnUrl: "http://localhost/gateways/fake/return",
	})
	suite.Require().NoError(err)
	suite.token = trx.Token
	suite.pago = models.Pago{
		Id:           "pago-1",
		SocioId:      "socio-1",
		Monto:        12500,
		Metodo:       models.MetodoFake,
		Estado:       models.PagoPendiente,
		BuyOrder:     "BO-1",
		GatewayToken: trx.Token,
		BoletaIds:    []string{"b1", "b2"},
	}
}

func (suite *SettlerTestSuite) makeSettler() *Settler {
	settler := NewSettler(
		suite.exec,
		executor_factory.NewTransactionFactoryStub(suite.exec),
		suite.repository,
		payment_gateways.NewRegistry(suite.fake),
	)
	settler.clock = clock.NewMock(suite.now)
	return settler
}

func (suite *SettlerTestSuite) notification() models.GatewayNotification {
	return models.GatewayNotification{
		Gateway:    models.MetodoFake,
		Payload:    map[string]string{"token": suite.token},
		ReceivedAt: suite.now,
	}
}

func (suite *SettlerTestSuite) TestConfirm_approves_and_pays_boletas() {
	t := suite.T()
	approved := suite.pago
	approved.Estado = models.PagoAprobado

	suite.repository.On("InsertGatewayNotification", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	suite.repository.On("GetPagoByGatewayToken", mock.Anything, models.MetodoFake, suite.token).Return(&suite.pago, nil)
	suite.exec.Mock.ExpectBegin()
	suite.repository.On("LockPagoIfPending", mock.Anything, "pago-1").Return(&suite.pago, nil)
	suite.repository.On("ResolvePago", mock.Anything, "pago-1", models.PagoResolution{
		Estado:               models.PagoAprobado,
		GatewayTransactionId: "fake-" + suite.token,
	}).Return(true, nil)
	suite.repository.On("ListBoletasByIds", mock.Anything, []string{"b1", "b2"}, true).Return([]models.Boleta{
		{Id: "b1", Estado: models.BoletaPendiente, Total: 5000},
		{Id: "b2", Estado: models.BoletaVencida, Total: 7500},
	}, nil)
	suite.repository.On("MarkBoletasPagadas", mock.Anything, []string{"b1", "b2"}, suite.now).Return(nil)
	suite.repository.On("GetPagoById", mock.Anything, "pago-1", false).Return(approved, nil)
	suite.exec.Mock.ExpectCommit()

	pago, err := suite.makeSettler().ConfirmGatewayPayment(context.Background(), suite.notification())

	require.NoError(t, err)
	assert.Equal(t, models.PagoAprobado, pago.Estado)
	suite.repository.AssertExpectations(t)
	suite.repository.AssertNotCalled(t, "AddSocioSaldoFavor", mock.Anything, mock.Anything, mock.Anything)
	assert.NoError(t, suite.exec.Mock.ExpectationsWereMet())
}

func (suite *SettlerTestSuite) TestConfirm_replayed_notification_on_settled_pago_is_a_noop() {
	t := suite.T()
	approved := suite.pago
	approved.Estado = models.PagoAprobado
	suite.repository.On("InsertGatewayNotification", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	suite.repository.On("GetPagoByGatewayToken", mock.Anything, models.MetodoFake, suite.token).Return(&approved, nil)

	pago, err := suite.makeSettler().ConfirmGatewayPayment(context.Background(), suite.notification())

	require.NoError(t, err)
	assert.Equal(t, models.PagoAprobado, pago.Estado)
	suite.repository.AssertNotCalled(t, "LockPagoIfPending", mock.Anything, mock.Anything)
	assert.NoError(t, suite.exec.Mock.ExpectationsWereMet())
}

func (suite *SettlerTestSuite) TestConfirm_replay_after_gateway_failure_settles_pago() {
	t := suite.T()
	gateway := &unavailableOnceGateway{Fake: suite.fake}
	settler := NewSettler(suite.exec, executor_factory.NewTransactionFactoryStub(suite.exec),
		suite.repository, payment_gateways.NewRegistry(gateway))
	settler.clock = clock.NewMock(suite.now)
	approved := suite.pago
	approved.Estado = models.PagoAprobado

	suite.repository.On("InsertGatewayNotification", mock.Anything, mock.Anything, mock.Anything).Return(true, nil).Once()
	suite.repository.On("InsertGatewayNotification", mock.Anything, mock.Anything, mock.Anything).Return(false, nil).Once()
	suite.repository.On("GetPagoByGatewayToken", mock.Anything, models.MetodoFake, suite.token).Return(&suite.pago, nil)

	_, err := settler.ConfirmGatewayPayment(context.Background(), suite.notification())
	require.ErrorIs(t, err, models.ErrGatewayUnavailable)
	suite.repository.AssertNotCalled(t, "LockPagoIfPending", mock.Anything, mock.Anything)

	suite.exec.Mock.ExpectBegin()
	suite.repository.On("LockPagoIfPending", mock.Anything, "pago-1").Return(&suite.pago, nil)
	suite.repository.On("ResolvePago", mock.Anything, "pago-1", mock.MatchedBy(func(r models.PagoResolution) bool {
		return r.Estado == models.PagoAprobado
	})).Return(true, nil)
	suite.repository.On("ListBoletasByIds", mock.Anything, []string{"b1", "b2"}, true).Return([]models.Boleta{
		{Id: "b1", Estado: models.BoletaPendiente, Total: 5000},
		{Id: "b2", Estado: models.BoletaPendiente, Total: 7500},
	}, nil)
	suite.repository.On("MarkBoletasPagadas", mock.Anything, []string{"b1", "b2"}, suite.now).Return(nil)
	suite.repository.On("GetPagoById", mock.Anything, "pago-1", false).Return(approved, nil)
	suite.exec.Mock.ExpectCommit()

	pago, err := settler.ConfirmGatewayPayment(context.Background(), suite.notification())

	require.NoError(t, err)
	assert.Equal(t, models.PagoAprobado, pago.Estado)
	assert.Equal(t, 2, gateway.commits)
	suite.repository.AssertExpectations(t)
	assert.NoError(t, suite.exec.Mock.ExpectationsWereMet())
}

func (suite *SettlerTestSuite) TestConfirm_same_notification_hashes_identically() {
	t := suite.T()
	first := suite.notification()
	second := suite.notification()
	second.ReceivedAt = suite.now.Add(time.Minute)

	h1, err := notificationHash(first)
	require.NoError(t, err)
	h2, err := notificationHash(second)
	require.NoError(t, err)
	assert.Equal(t, h1, h2, "the reception time is not part of the hash")

	second.Payload = map[string]string{"token": "other"}
	h3, err := notificationHash(second)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func (suite *SettlerTestSuite) TestConfirm_unknown_pago() {
	t := suite.T()
	suite.repository.On("InsertGatewayNotification", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	suite.repository.On("GetPagoByGatewayToken", mock.Anything, models.MetodoFake, suite.token).Return((*models.Pago)(nil), nil)

	_, err := suite.makeSettler().ConfirmGatewayPayment(context.Background(), suite.notification())

	assert.ErrorIs(t, err, models.NotFoundError)
}

func (suite *SettlerTestSuite) TestSettle_amount_mismatch_rejects() {
	t := suite.T()
	pago := suite.pago
	pago.Monto = 10000
	rejected := pago
	rejected.Estado = models.PagoRechazado

	suite.exec.Mock.ExpectBegin()
	suite.repository.On("LockPagoIfPending", mock.Anything, "pago-1").Return(&pago, nil)
	suite.repository.On("ResolvePago", mock.Anything, "pago-1", mock.MatchedBy(func(r models.PagoResolution) bool {
		return r.Estado == models.PagoRechazado && r.Motivo == models.ErrAmountMismatch.Error()
	})).Return(true, nil)
	suite.repository.On("GetPagoById", mock.Anything, "pago-1", false).Return(rejected, nil)
	suite.exec.Mock.ExpectCommit()

	result, err := suite.makeSettler().SettlePago(context.Background(), pago, false)

	require.NoError(t, err)
	assert.Equal(t, models.PagoRechazado, result.Estado)
	suite.repository.AssertNotCalled(t, "MarkBoletasPagadas", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SettlerTestSuite) TestSettle_unknown_transaction_expires() {
	t := suite.T()
	pago := suite.pago
	pago.GatewayToken = "never-created"
	expired := pago
	expired.Estado = models.PagoExpirado

	suite.exec.Mock.ExpectBegin()
	suite.repository.On("LockPagoIfPending", mock.Anything, "pago-1").Return(&pago, nil)
	suite.repository.On("ResolvePago", mock.Anything, "pago-1", mock.MatchedBy(func(r models.PagoResolution) bool {
		return r.Estado == models.PagoExpirado
	})).Return(true, nil)
	suite.repository.On("GetPagoById", mock.Anything, "pago-1", false).Return(expired, nil)
	suite.exec.Mock.ExpectCommit()

	result, err := suite.makeSettler().SettlePago(context.Background(), pago, true)

	require.NoError(t, err)
	assert.Equal(t, models.PagoExpirado, result.Estado)
}

func (suite *SettlerTestSuite) TestSettle_concurrently_settled_pago_is_left_alone() {
	t := suite.T()
	approved := suite.pago
	approved.Estado = models.PagoAprobado

	suite.exec.Mock.ExpectBegin()
	suite.repository.On("LockPagoIfPending", mock.Anything, "pago-1").Return((*models.Pago)(nil), nil)
	suite.repository.On("GetPagoById", mock.Anything, "pago-1", false).Return(approved, nil)
	suite.exec.Mock.ExpectCommit()

	result, err := suite.makeSettler().SettlePago(context.Background(), suite.pago, false)

	require.NoError(t, err)
	assert.Equal(t, models.PagoAprobado, result.Estado)
	suite.repository.AssertNotCalled(t, "ResolvePago", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SettlerTestSuite) TestSettle_credits_boletas_paid_twice() {
	t := suite.T()
	approved := suite.pago
	approved.Estado = models.PagoAprobado

	suite.exec.Mock.ExpectBegin()
	suite.repository.On("LockPagoIfPending", mock.Anything, "pago-1").Return(&suite.pago, nil)
	suite.repository.On("ResolvePago", mock.Anything, "pago-1", mock.Anything).Return(true, nil)
	suite.repository.On("ListBoletasByIds", mock.Anything, []string{"b1", "b2"}, true).Return([]models.Boleta{
		{Id: "b1", Estado: models.BoletaPendiente, Total: 5000},
		{Id: "b2", Estado: models.BoletaPagada, Total: 7500},
	}, nil)
	suite.repository.On("MarkBoletasPagadas", mock.Anything, []string{"b1"}, suite.now).Return(nil)
	suite.repository.On("MarkPagoBoletasCredited", mock.Anything, "pago-1", []string{"b2"}).Return(nil)
	suite.repository.On("AddSocioSaldoFavor", mock.Anything, "socio-1", int64(7500)).Return(nil)
	suite.repository.On("GetPagoById", mock.Anything, "pago-1", false).Return(approved, nil)
	suite.exec.Mock.ExpectCommit()

	_, err := suite.makeSettler().SettlePago(context.Background(), suite.pago, false)

	require.NoError(t, err)
	suite.repository.AssertExpectations(t)
}

func (suite *SettlerTestSuite) TestSettle_pending_without_expire_keeps_pago() {
	t := suite.T()
	settler := NewSettler(suite.exec, executor_factory.NewTransactionFactoryStub(suite.exec),
		suite.repository, payment_gateways.NewRegistry(pendingGateway{}))

	result, err := settler.SettlePago(context.Background(), suite.pago, false)

	require.NoError(t, err)
	assert.Equal(t, suite.pago, result)
	assert.NoError(t, suite.exec.Mock.ExpectationsWereMet())
}

// unavailableOnceGateway fails its first commit like a gateway answering 503
type unavailableOnceGateway struct {
	*payment_gateways.Fake
	commits int
}

func (g *unavailableOnceGateway) Commit(ctx context.Context, ref models.GatewayReference) (models.GatewayTransactionResult, error) {
	g.commits++
	if g.commits == 1 {
		return models.GatewayTransactionResult{}, errors.Wrap(models.ErrGatewayUnavailable, "commit")
	}
	return g.Fake.Commit(ctx, ref)
}

// pendingGateway reports every transaction as pending and cannot commit
type pendingGateway struct{}

func (pendingGateway) Name() models.MetodoPago { return models.MetodoFake }

func (pendingGateway) CreateTransaction(ctx context.Context, req models.GatewayTransactionRequest) (models.GatewayTransaction, error) {
	return models.GatewayTransaction{Token: "pending"}, nil
}

func (pendingGateway) GetStatus(ctx context.Context, ref models.GatewayReference) (models.GatewayTransactionResult, error) {
	return models.GatewayTransactionResult{Status: models.GatewayStatusPending, Detail: "INITIALIZED"}, nil
}

func (pendingGateway) ReferenceFromCallback(payload map[string]string) (models.GatewayReference, error) {
	return models.GatewayReference{Token: payload["token"]}, nil
}

func TestSettler(t *testing.T) {
	suite.Run(t, new(SettlerTestSuite))
}
