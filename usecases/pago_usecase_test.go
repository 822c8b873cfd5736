package usecases

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/portal-apr/portal-apr-backend/mocks"
	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories/clock"
	"github.com/portal-apr/portal-apr-backend/repositories/payment_gateways"
	"github.com/portal-apr/portal-apr-backend/usecases/executor_factory"
	"github.com/portal-apr/portal-apr-backend/usecases/security"
)

type gatewayConfirmerMock struct {
	mock.Mock
}

func (m *gatewayConfirmerMock) ConfirmGatewayPayment(ctx context.Context, notification models.GatewayNotification) (models.Pago, error) {
	args := m.Called(ctx, notification)
	return args.Get(0).(models.Pago), args.Error(1)
}

type PagoUsecaseTestSuite struct {
	suite.Suite
	repository *mocks.PortalDbRepository
	exec       executor_factory.ExecutorFactoryStub
	now        time.Time
	socio      models.Socio
	boletas    []models.Boleta
	boletaIds  []string
}

func (suite *PagoUsecaseTestSuite) SetupTest() {
	suite.repository = new(mocks.PortalDbRepository)
	suite.exec = executor_factory.NewExecutorFactoryStub()
	suite.now = time.Date(2024, 5, 25, 12, 0, 0, 0, time.UTC)
	suite.socio = models.Socio{Id: "socio-1", NumeroSocio: 42, Email: "socio@example.com"}
	suite.boletas = []models.Boleta{
		{Id: "boleta-1", SocioId: "socio-1", Folio: 10, Total: 5000, Estado: models.BoletaPendiente},
		{Id: "boleta-2", SocioId: "socio-1", Folio: 11, Total: 3000, Estado: models.BoletaVencida},
	}
	suite.boletaIds = []string{"boleta-1", "boleta-2"}
}

func (suite *PagoUsecaseTestSuite) makeUsecase(creds models.Credentials) *PagoUsecase {
	return &PagoUsecase{
		enforceSecurity:    security.NewEnforceSecurity(creds),
		executorFactory:    suite.exec,
		transactionFactory: executor_factory.NewTransactionFactoryStub(suite.exec),
		repository:         suite.repository,
		gateways:           payment_gateways.NewRegistry(payment_gateways.NewFake()),
		settler:            new(gatewayConfirmerMock),
		config: PaymentsConfig{
			PublicApiUrl: "https://api.apr.cl/",
			PortalAppUrl: "https://portal.apr.cl",
			PendingTtl:   30 * time.Minute,
		},
		clock: clock.NewMock(suite.now),
	}
}

func socioCredentials(socioId string) models.Credentials {
	return models.Credentials{
		Role:          models.SOCIO,
		ActorIdentity: models.Identity{SocioId: socioId, Name: "Socio"},
	}
}

func staffCredentials(role models.Role) models.Credentials {
	return models.Credentials{
		Role:          role,
		ActorIdentity: models.Identity{UserId: "user-1", Email: "staff@apr.cl", Name: "Staff"},
	}
}

func (suite *PagoUsecaseTestSuite) TestStartCheckout_nominal() {
	t := suite.T()
	suite.exec.Mock.ExpectBegin()
	suite.exec.Mock.ExpectCommit()

	suite.repository.On("GetSocioById", mock.Anything, mock.Anything, "socio-1").Return(suite.socio, nil)
	suite.repository.On("ListBoletasByIds", mock.Anything, mock.Anything, suite.boletaIds, true).Return(suite.boletas, nil)
	suite.repository.On("PendingPagosOnBoletas", mock.Anything, mock.Anything, suite.boletaIds,
		suite.now.Add(-30*time.Minute)).Return([]models.Pago{}, nil)
	suite.repository.On("CreatePago", mock.Anything, mock.Anything, mock.MatchedBy(func(p models.PagoToCreate) bool {
		return p.Monto == 8000 && p.Estado == models.PagoPendiente && p.Metodo == models.MetodoFake &&
			len(p.BuyOrder) == buyOrderLength && p.SocioId == "socio-1"
	})).Return(nil)
	suite.repository.On("SetPagoGatewayToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	suite.repository.On("GetPagoById", mock.Anything, mock.Anything, mock.Anything, false).Return(models.Pago{
		Id: "pago-1", SocioId: "socio-1", Monto: 8000, Metodo: models.MetodoFake, Estado: models.PagoPendiente,
	}, nil)

	checkout, err := suite.makeUsecase(socioCredentials("socio-1")).StartCheckout(context.Background(), models.CheckoutInput{
		SocioId:   "socio-1",
		BoletaIds: []string{"boleta-1", "boleta-2", "boleta-1"},
		Metodo:    models.MetodoFake,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(8000), checkout.Pago.Monto)
	assert.True(t, strings.HasPrefix(checkout.RedirectUrl, "https://api.apr.cl/gateways/fake/return?token="),
		checkout.RedirectUrl)
	suite.repository.AssertExpectations(t)
	assert.NoError(t, suite.exec.Mock.ExpectationsWereMet())
}

func (suite *PagoUsecaseTestSuite) TestStartCheckout_boletaHeldByPendingPago() {
	t := suite.T()
	suite.exec.Mock.ExpectBegin()
	suite.exec.Mock.ExpectRollback()

	suite.repository.On("GetSocioById", mock.Anything, mock.Anything, "socio-1").Return(suite.socio, nil)
	suite.repository.On("ListBoletasByIds", mock.Anything, mock.Anything, suite.boletaIds, true).Return(suite.boletas, nil)
	suite.repository.On("PendingPagosOnBoletas", mock.Anything, mock.Anything, suite.boletaIds, mock.Anything).
		Return([]models.Pago{{Id: "pago-0"}}, nil)

	_, err := suite.makeUsecase(socioCredentials("socio-1")).StartCheckout(context.Background(), models.CheckoutInput{
		SocioId:   "socio-1",
		BoletaIds: suite.boletaIds,
		Metodo:    models.MetodoFake,
	})

	assert.ErrorIs(t, err, models.ErrBoletaPendingCheckout)
	suite.repository.AssertNotCalled(t, "CreatePago", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PagoUsecaseTestSuite) TestStartCheckout_boletaOfAnotherSocio() {
	t := suite.T()
	suite.exec.Mock.ExpectBegin()
	suite.exec.Mock.ExpectRollback()

	boletas := []models.Boleta{suite.boletas[0], {Id: "boleta-2", SocioId: "socio-2", Total: 3000, Estado: models.BoletaPendiente}}
	suite.repository.On("GetSocioById", mock.Anything, mock.Anything, "socio-1").Return(suite.socio, nil)
	suite.repository.On("ListBoletasByIds", mock.Anything, mock.Anything, suite.boletaIds, true).Return(boletas, nil)

	_, err := suite.makeUsecase(socioCredentials("socio-1")).StartCheckout(context.Background(), models.CheckoutInput{
		SocioId:   "socio-1",
		BoletaIds: suite.boletaIds,
		Metodo:    models.MetodoFake,
	})

	assert.ErrorIs(t, err, models.NotFoundError)
}

func (suite *PagoUsecaseTestSuite) TestStartCheckout_paidBoleta() {
	t := suite.T()
	suite.exec.Mock.ExpectBegin()
	suite.exec.Mock.ExpectRollback()

	boletas := []models.Boleta{suite.boletas[0], {Id: "boleta-2", SocioId: "socio-1", Total: 3000, Estado: models.BoletaPagada}}
	suite.repository.On("GetSocioById", mock.Anything, mock.Anything, "socio-1").Return(suite.socio, nil)
	suite.repository.On("ListBoletasByIds", mock.Anything, mock.Anything, suite.boletaIds, true).Return(boletas, nil)

	_, err := suite.makeUsecase(socioCredentials("socio-1")).StartCheckout(context.Background(), models.CheckoutInput{
		SocioId:   "socio-1",
		BoletaIds: suite.boletaIds,
		Metodo:    models.MetodoFake,
	})

	assert.ErrorIs(t, err, models.ErrBoletaNotPayable)
}

func (suite *PagoUsecaseTestSuite) TestStartCheckout_forbiddenForStaff() {
	t := suite.T()

	_, err := suite.makeUsecase(staffCredentials(models.ADMIN)).StartCheckout(context.Background(), models.CheckoutInput{
		SocioId:   "socio-1",
		BoletaIds: suite.boletaIds,
		Metodo:    models.MetodoFake,
	})

	assert.ErrorIs(t, err, models.ForbiddenError)
}

func (suite *PagoUsecaseTestSuite) TestStartCheckout_unknownGateway() {
	t := suite.T()

	_, err := suite.makeUsecase(socioCredentials("socio-1")).StartCheckout(context.Background(), models.CheckoutInput{
		SocioId:   "socio-1",
		BoletaIds: suite.boletaIds,
		Metodo:    models.MetodoWebpay,
	})

	assert.Error(t, err)
	suite.repository.AssertNotCalled(t, "GetSocioById", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PagoUsecaseTestSuite) TestRegisterManualPayment_nominal() {
	t := suite.T()
	suite.exec.Mock.ExpectBegin()
	suite.exec.Mock.ExpectCommit()

	suite.repository.On("ListBoletasByIds", mock.Anything, mock.Anything, suite.boletaIds, true).Return(suite.boletas, nil)
	suite.repository.On("CreatePago", mock.Anything, mock.Anything, mock.MatchedBy(func(p models.PagoToCreate) bool {
		return p.Monto == 8000 && p.Metodo == models.MetodoEfectivo && p.RegistradoPor == "user-1"
	})).Return(nil)
	suite.repository.On("ResolvePago", mock.Anything, mock.Anything, mock.Anything,
		models.PagoResolution{Estado: models.PagoAprobado}).Return(true, nil)
	suite.repository.On("MarkBoletasPagadas", mock.Anything, mock.Anything, suite.boletaIds, suite.now).Return(nil)
	suite.repository.On("GetPagoById", mock.Anything, mock.Anything, mock.Anything, false).Return(models.Pago{
		Id: "pago-1", Monto: 8000, Metodo: models.MetodoEfectivo, Estado: models.PagoAprobado,
	}, nil)

	pago, err := suite.makeUsecase(staffCredentials(models.OPERADOR)).RegisterManualPayment(context.Background(),
		models.ManualPaymentInput{
			SocioId:   "socio-1",
			BoletaIds: suite.boletaIds,
			Metodo:    models.MetodoEfectivo,
			Monto:     8000,
		})

	assert.NoError(t, err)
	assert.Equal(t, models.PagoAprobado, pago.Estado)
	suite.repository.AssertExpectations(t)
	assert.NoError(t, suite.exec.Mock.ExpectationsWereMet())
}

func (suite *PagoUsecaseTestSuite) TestRegisterManualPayment_partialAmount() {
	t := suite.T()
	suite.exec.Mock.ExpectBegin()
	suite.exec.Mock.ExpectRollback()

	suite.repository.On("ListBoletasByIds", mock.Anything, mock.Anything, suite.boletaIds, true).Return(suite.boletas, nil)

	_, err := suite.makeUsecase(staffCredentials(models.OPERADOR)).RegisterManualPayment(context.Background(),
		models.ManualPaymentInput{
			SocioId:   "socio-1",
			BoletaIds: suite.boletaIds,
			Metodo:    models.MetodoTransferencia,
			Monto:     5000,
		})

	assert.ErrorIs(t, err, models.BadParameterError)
	suite.repository.AssertNotCalled(t, "CreatePago", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PagoUsecaseTestSuite) TestRegisterManualPayment_onlineMetodo() {
	t := suite.T()

	_, err := suite.makeUsecase(staffCredentials(models.OPERADOR)).RegisterManualPayment(context.Background(),
		models.ManualPaymentInput{SocioId: "socio-1", BoletaIds: suite.boletaIds, Metodo: models.MetodoWebpay})

	assert.ErrorIs(t, err, models.ErrManualMethodRequired)
}

func (suite *PagoUsecaseTestSuite) TestRegisterManualPayment_forbiddenForSocio() {
	t := suite.T()

	_, err := suite.makeUsecase(socioCredentials("socio-1")).RegisterManualPayment(context.Background(),
		models.ManualPaymentInput{SocioId: "socio-1", BoletaIds: suite.boletaIds, Metodo: models.MetodoEfectivo})

	assert.ErrorIs(t, err, models.ForbiddenError)
}

func (suite *PagoUsecaseTestSuite) TestAnnulPago_revertsBoletasNotCoveredElsewhere() {
	t := suite.T()
	suite.exec.Mock.ExpectBegin()
	suite.exec.Mock.ExpectCommit()

	pago := models.Pago{Id: "pago-1", SocioId: "socio-1", Estado: models.PagoAprobado, BoletaIds: suite.boletaIds}
	boletas := []models.Boleta{
		{Id: "boleta-1", Estado: models.BoletaPagada, FechaVencimiento: suite.now.AddDate(0, 0, 5)},
		{Id: "boleta-2", Estado: models.BoletaPagada, FechaVencimiento: suite.now.AddDate(0, 0, -5)},
	}
	suite.repository.On("GetPagoById", mock.Anything, mock.Anything, "pago-1", true).Return(pago, nil)
	suite.repository.On("AnnulPago", mock.Anything, mock.Anything, "pago-1", "cheque sin fondos").Return(nil)
	suite.repository.On("ListBoletasByIds", mock.Anything, mock.Anything, suite.boletaIds, true).Return(boletas, nil)
	suite.repository.On("ApprovedPagoExistsForBoleta", mock.Anything, mock.Anything, "boleta-1").Return(true, nil)
	suite.repository.On("ApprovedPagoExistsForBoleta", mock.Anything, mock.Anything, "boleta-2").Return(false, nil)
	suite.repository.On("SetBoletaEstado", mock.Anything, mock.Anything, "boleta-2", models.BoletaVencida).Return(nil)
	annulled := pago
	annulled.Estado = models.PagoAnulado
	suite.repository.On("GetPagoById", mock.Anything, mock.Anything, "pago-1", false).Return(annulled, nil)

	result, err := suite.makeUsecase(staffCredentials(models.ADMIN)).AnnulPago(context.Background(), "pago-1", "cheque sin fondos")

	assert.NoError(t, err)
	assert.Equal(t, models.PagoAnulado, result.Estado)
	suite.repository.AssertNotCalled(t, "SetBoletaEstado", mock.Anything, mock.Anything, "boleta-1", mock.Anything)
	suite.repository.AssertExpectations(t)
}

func (suite *PagoUsecaseTestSuite) TestAnnulPago_takesBackCredit() {
	t := suite.T()
	suite.exec.Mock.ExpectBegin()
	suite.exec.Mock.ExpectCommit()

	pago := models.Pago{
		Id:                "pago-1",
		SocioId:           "socio-1",
		Estado:            models.PagoAprobado,
		BoletaIds:         suite.boletaIds,
		CreditedBoletaIds: []string{"boleta-2"},
	}
	suite.repository.On("GetPagoById", mock.Anything, mock.Anything, "pago-1", true).Return(pago, nil)
	suite.repository.On("AnnulPago", mock.Anything, mock.Anything, "pago-1", "duplicado").Return(nil)
	suite.repository.On("ListBoletasByIds", mock.Anything, mock.Anything, []string{"boleta-2"}, false).
		Return([]models.Boleta{{Id: "boleta-2", Estado: models.BoletaPagada, Total: 3000}}, nil)
	suite.repository.On("AddSocioSaldoFavor", mock.Anything, mock.Anything, "socio-1", int64(-3000)).Return(nil)
	suite.repository.On("ListBoletasByIds", mock.Anything, mock.Anything, []string{"boleta-1"}, true).
		Return([]models.Boleta{{Id: "boleta-1", Estado: models.BoletaPagada, FechaVencimiento: suite.now.AddDate(0, 0, 5)}}, nil)
	suite.repository.On("ApprovedPagoExistsForBoleta", mock.Anything, mock.Anything, "boleta-1").Return(false, nil)
	suite.repository.On("SetBoletaEstado", mock.Anything, mock.Anything, "boleta-1", models.BoletaPendiente).Return(nil)
	annulled := pago
	annulled.Estado = models.PagoAnulado
	suite.repository.On("GetPagoById", mock.Anything, mock.Anything, "pago-1", false).Return(annulled, nil)

	_, err := suite.makeUsecase(staffCredentials(models.ADMIN)).AnnulPago(context.Background(), "pago-1", "duplicado")

	assert.NoError(t, err)
	suite.repository.AssertNotCalled(t, "SetBoletaEstado", mock.Anything, mock.Anything, "boleta-2", mock.Anything)
	suite.repository.AssertExpectations(t)
}

func (suite *PagoUsecaseTestSuite) TestAnnulPago_notApproved() {
	t := suite.T()
	suite.exec.Mock.ExpectBegin()
	suite.exec.Mock.ExpectRollback()

	suite.repository.On("GetPagoById", mock.Anything, mock.Anything, "pago-1", true).
		Return(models.Pago{Id: "pago-1", Estado: models.PagoRechazado}, nil)

	_, err := suite.makeUsecase(staffCredentials(models.ADMIN)).AnnulPago(context.Background(), "pago-1", "")

	assert.True(t, errors.Is(err, models.ErrPagoNotApproved))
}

func (suite *PagoUsecaseTestSuite) TestResultUrl() {
	url := suite.makeUsecase(socioCredentials("socio-1")).ResultUrl(models.Pago{Id: "pago-1", Estado: models.PagoAprobado})
	assert.Equal(suite.T(), "https://portal.apr.cl/pagos/pago-1?estado=aprobado", url)
}

func TestPagoUsecase(t *testing.T) {
	suite.Run(t, new(PagoUsecaseTestSuite))
}
