package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/portal-apr/portal-apr-backend/mocks"
	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/pure_utils"
	"github.com/portal-apr/portal-apr-backend/repositories/clock"
	"github.com/portal-apr/portal-apr-backend/usecases/executor_factory"
	"github.com/portal-apr/portal-apr-backend/usecases/security"
)

type LecturaUsecaseTestSuite struct {
	suite.Suite
	repository *mocks.PortalDbRepository
	exec       executor_factory.ExecutorFactoryStub
	now        time.Time
}

func (suite *LecturaUsecaseTestSuite) SetupTest() {
	suite.repository = new(mocks.PortalDbRepository)
	suite.exec = executor_factory.NewExecutorFactoryStub()
	suite.now = time.Date(2024, 4, 30, 9, 0, 0, 0, time.UTC)
}

func (suite *LecturaUsecaseTestSuite) makeUsecase(creds models.Credentials) *LecturaUsecase {
	return &LecturaUsecase{
		enforceSecurity: security.NewEnforceSecurity(creds),
		executorFactory: suite.exec,
		repository:      suite.repository,
		clock:           clock.NewMock(suite.now),
	}
}

func (suite *LecturaUsecaseTestSuite) TestRegisterLectura_previousReadingDefaultsToLastLectura() {
	t := suite.T()
	suite.repository.On("GetSocioById", mock.Anything, mock.Anything, "socio-1").Return(models.Socio{Id: "socio-1"}, nil)
	suite.repository.On("LastLecturaBefore", mock.Anything, mock.Anything, "socio-1", models.Periodo("2024-04")).
		Return(&models.Lectura{LecturaActual: 120}, nil)
	expected := models.Lectura{
		SocioId:         "socio-1",
		Periodo:         "2024-04",
		LecturaAnterior: 120,
		LecturaActual:   134.5,
		FechaLectura:    suite.now,
		RegistradoPor:   "user-1",
	}
	suite.repository.On("CreateLectura", mock.Anything, mock.Anything, expected).Return(expected, nil)

	lectura, err := suite.makeUsecase(staffCredentials(models.OPERADOR)).RegisterLectura(context.Background(),
		models.CreateLecturaInput{SocioId: "socio-1", Periodo: "2024-04", LecturaActual: 134.5})

	assert.NoError(t, err)
	assert.Equal(t, 14.5, lectura.LecturaActual-lectura.LecturaAnterior)
	suite.repository.AssertExpectations(t)
}

func (suite *LecturaUsecaseTestSuite) TestRegisterLectura_firstReadingStartsAtZero() {
	t := suite.T()
	suite.repository.On("GetSocioById", mock.Anything, mock.Anything, "socio-1").Return(models.Socio{Id: "socio-1"}, nil)
	suite.repository.On("LastLecturaBefore", mock.Anything, mock.Anything, "socio-1", models.Periodo("2024-04")).
		Return((*models.Lectura)(nil), nil)
	suite.repository.On("CreateLectura", mock.Anything, mock.Anything, mock.MatchedBy(func(l models.Lectura) bool {
		return l.LecturaAnterior == 0 && l.LecturaActual == 12
	})).Return(models.Lectura{}, nil)

	_, err := suite.makeUsecase(staffCredentials(models.OPERADOR)).RegisterLectura(context.Background(),
		models.CreateLecturaInput{SocioId: "socio-1", Periodo: "2024-04", LecturaActual: 12})

	assert.NoError(t, err)
	suite.repository.AssertExpectations(t)
}

func (suite *LecturaUsecaseTestSuite) TestRegisterLectura_meterGoingBackwards() {
	t := suite.T()
	suite.repository.On("GetSocioById", mock.Anything, mock.Anything, "socio-1").Return(models.Socio{Id: "socio-1"}, nil)

	_, err := suite.makeUsecase(staffCredentials(models.OPERADOR)).RegisterLectura(context.Background(),
		models.CreateLecturaInput{
			SocioId:         "socio-1",
			Periodo:         "2024-04",
			LecturaAnterior: pure_utils.Ptr(140.0),
			LecturaActual:   130,
		})

	assert.ErrorIs(t, err, models.ErrInvalidReading)
	suite.repository.AssertNotCalled(t, "CreateLectura", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LecturaUsecaseTestSuite) TestRegisterLectura_invalidPeriodo() {
	_, err := suite.makeUsecase(staffCredentials(models.OPERADOR)).RegisterLectura(context.Background(),
		models.CreateLecturaInput{SocioId: "socio-1", Periodo: "2024-13", LecturaActual: 10})
	assert.ErrorIs(suite.T(), err, models.ErrInvalidPeriodo)
}

func (suite *LecturaUsecaseTestSuite) TestRegisterLectura_forbiddenForSocio() {
	_, err := suite.makeUsecase(socioCredentials("socio-1")).RegisterLectura(context.Background(),
		models.CreateLecturaInput{SocioId: "socio-1", Periodo: "2024-04", LecturaActual: 10})
	assert.ErrorIs(suite.T(), err, models.ForbiddenError)
}

func (suite *LecturaUsecaseTestSuite) TestRegisterLecturas_reportsEachReading() {
	t := suite.T()
	suite.repository.On("GetSocioById", mock.Anything, mock.Anything, "socio-1").Return(models.Socio{Id: "socio-1"}, nil)
	suite.repository.On("GetSocioById", mock.Anything, mock.Anything, "socio-2").Return(models.Socio{Id: "socio-2"}, nil)
	suite.repository.On("CreateLectura", mock.Anything, mock.Anything, mock.MatchedBy(func(l models.Lectura) bool {
		return l.SocioId == "socio-1"
	})).Return(models.Lectura{Id: "lectura-1", SocioId: "socio-1"}, nil)
	suite.repository.On("CreateLectura", mock.Anything, mock.Anything, mock.MatchedBy(func(l models.Lectura) bool {
		return l.SocioId == "socio-2"
	})).Return(models.Lectura{}, &pgconn.PgError{Code: pgerrcode.UniqueViolation})

	results, err := suite.makeUsecase(staffCredentials(models.OPERADOR)).RegisterLecturas(context.Background(),
		[]models.CreateLecturaInput{
			{SocioId: "socio-1", Periodo: "2024-04", LecturaAnterior: pure_utils.Ptr(0.0), LecturaActual: 10},
			{SocioId: "socio-2", Periodo: "2024-04", LecturaAnterior: pure_utils.Ptr(0.0), LecturaActual: 10},
		})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Error)
	assert.Equal(t, "lectura-1", results[0].Lectura.Id)
	assert.ErrorIs(t, results[1].Error, models.ConflictError)
	assert.Nil(t, results[1].Lectura)
}

func TestLecturaUsecase(t *testing.T) {
	suite.Run(t, new(LecturaUsecaseTestSuite))
}
