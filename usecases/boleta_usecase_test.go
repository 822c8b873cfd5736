package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/portal-apr/portal-apr-backend/mocks"
	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/usecases/executor_factory"
	"github.com/portal-apr/portal-apr-backend/usecases/security"
)

type BoletaUsecaseTestSuite struct {
	suite.Suite
	repository *mocks.PortalDbRepository
	issuer     *mocks.BoletaIssuer
	exporter   *mocks.BoletaExporter
	taskQueue  *mocks.TaskQueueRepository
	exec       executor_factory.ExecutorFactoryStub
}

func (suite *BoletaUsecaseTestSuite) SetupTest() {
	suite.repository = new(mocks.PortalDbRepository)
	suite.issuer = new(mocks.BoletaIssuer)
	suite.exporter = new(mocks.BoletaExporter)
	suite.taskQueue = new(mocks.TaskQueueRepository)
	suite.exec = executor_factory.NewExecutorFactoryStub()
}

func (suite *BoletaUsecaseTestSuite) makeUsecase(creds models.Credentials) *BoletaUsecase {
	return &BoletaUsecase{
		enforceSecurity:    security.NewEnforceSecurity(creds),
		executorFactory:    suite.exec,
		transactionFactory: executor_factory.NewTransactionFactoryStub(suite.exec),
		repository:         suite.repository,
		issuer:             suite.issuer,
		exporter:           suite.exporter,
		taskQueue:          suite.taskQueue,
	}
}

func (suite *BoletaUsecaseTestSuite) TestGetBoleta_otherSocio() {
	t := suite.T()
	suite.repository.On("GetBoletaById", mock.Anything, mock.Anything, "boleta-1", false).
		Return(models.Boleta{Id: "boleta-1", SocioId: "socio-2"}, nil)

	_, err := suite.makeUsecase(socioCredentials("socio-1")).GetBoleta(context.Background(), "boleta-1")

	assert.ErrorIs(t, err, models.ForbiddenError)
}

func (suite *BoletaUsecaseTestSuite) TestListBoletas_socioCannotListAll() {
	_, err := suite.makeUsecase(socioCredentials("socio-1")).ListBoletas(context.Background(),
		models.BoletaFilters{}, models.PaginationAndSorting{})
	assert.ErrorIs(suite.T(), err, models.ForbiddenError)
}

func (suite *BoletaUsecaseTestSuite) TestIssuePeriod() {
	t := suite.T()
	report := models.IssuePeriodReport{Periodo: "2024-04", Issued: 120, Skipped: 3}
	suite.issuer.On("IssuePeriod", mock.Anything, models.Periodo("2024-04")).Return(report, nil)

	result, err := suite.makeUsecase(staffCredentials(models.OPERADOR)).IssuePeriod(context.Background(), "2024-04")

	assert.NoError(t, err)
	assert.Equal(t, 120, result.Issued)
	suite.issuer.AssertExpectations(t)
}

func (suite *BoletaUsecaseTestSuite) TestEnqueueIssuePeriod() {
	t := suite.T()
	suite.taskQueue.On("EnqueueIssuePeriodTask", mock.Anything, models.Periodo("2024-04")).Return(nil)

	err := suite.makeUsecase(staffCredentials(models.ADMIN)).EnqueueIssuePeriod(context.Background(), "2024-04")

	assert.NoError(t, err)
	suite.taskQueue.AssertExpectations(t)
}

func (suite *BoletaUsecaseTestSuite) TestEnqueueExportPeriod_inTransaction() {
	t := suite.T()
	suite.exec.Mock.ExpectBegin()
	suite.exec.Mock.ExpectCommit()
	suite.taskQueue.On("EnqueueExportPeriodTask", mock.Anything, mock.Anything, models.Periodo("2024-04")).Return(nil)

	err := suite.makeUsecase(staffCredentials(models.OPERADOR)).EnqueueExportPeriod(context.Background(), "2024-04")

	assert.NoError(t, err)
	suite.taskQueue.AssertExpectations(t)
	assert.NoError(t, suite.exec.Mock.ExpectationsWereMet())
}

func (suite *BoletaUsecaseTestSuite) TestAnnulBoleta_nominal() {
	t := suite.T()
	suite.exec.Mock.ExpectBegin()
	suite.exec.Mock.ExpectCommit()
	suite.repository.On("GetBoletaById", mock.Anything, mock.Anything, "boleta-1", true).
		Return(models.Boleta{Id: "boleta-1", Estado: models.BoletaVencida}, nil)
	suite.repository.On("SetBoletaEstado", mock.Anything, mock.Anything, "boleta-1", models.BoletaAnulada).Return(nil)
	suite.repository.On("GetBoletaById", mock.Anything, mock.Anything, "boleta-1", false).
		Return(models.Boleta{Id: "boleta-1", Estado: models.BoletaAnulada}, nil)

	boleta, err := suite.makeUsecase(staffCredentials(models.ADMIN)).AnnulBoleta(context.Background(), "boleta-1")

	assert.NoError(t, err)
	assert.Equal(t, models.BoletaAnulada, boleta.Estado)
	suite.repository.AssertExpectations(t)
}

func (suite *BoletaUsecaseTestSuite) TestAnnulBoleta_alreadyAnnulled() {
	t := suite.T()
	suite.exec.Mock.ExpectBegin()
	suite.exec.Mock.ExpectCommit()
	suite.repository.On("GetBoletaById", mock.Anything, mock.Anything, "boleta-1", true).
		Return(models.Boleta{Id: "boleta-1", Estado: models.BoletaAnulada}, nil)

	boleta, err := suite.makeUsecase(staffCredentials(models.ADMIN)).AnnulBoleta(context.Background(), "boleta-1")

	assert.NoError(t, err)
	assert.Equal(t, models.BoletaAnulada, boleta.Estado)
	suite.repository.AssertNotCalled(t, "SetBoletaEstado", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BoletaUsecaseTestSuite) TestAnnulBoleta_paid() {
	t := suite.T()
	suite.exec.Mock.ExpectBegin()
	suite.exec.Mock.ExpectRollback()
	suite.repository.On("GetBoletaById", mock.Anything, mock.Anything, "boleta-1", true).
		Return(models.Boleta{Id: "boleta-1", Estado: models.BoletaPagada}, nil)

	_, err := suite.makeUsecase(staffCredentials(models.ADMIN)).AnnulBoleta(context.Background(), "boleta-1")

	assert.ErrorIs(t, err, models.ErrBoletaAlreadyPaid)
}

func (suite *BoletaUsecaseTestSuite) TestAnnulBoleta_forbiddenForOperador() {
	t := suite.T()
	suite.exec.Mock.ExpectBegin()
	suite.exec.Mock.ExpectRollback()
	suite.repository.On("GetBoletaById", mock.Anything, mock.Anything, "boleta-1", true).
		Return(models.Boleta{Id: "boleta-1", Estado: models.BoletaPendiente}, nil)

	_, err := suite.makeUsecase(staffCredentials(models.OPERADOR)).AnnulBoleta(context.Background(), "boleta-1")

	assert.ErrorIs(t, err, models.ForbiddenError)
}

func TestBoletaUsecase(t *testing.T) {
	suite.Run(t, new(BoletaUsecaseTestSuite))
}
