package usecases

import (
	"context"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/portal-apr/portal-apr-backend/mocks"
	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/usecases/executor_factory"
	"github.com/portal-apr/portal-apr-backend/usecases/security"
)

type UserUsecaseTestSuite struct {
	suite.Suite
	userRepository *mocks.UserRepository
	exec           executor_factory.ExecutorFactoryStub
}

func (suite *UserUsecaseTestSuite) SetupTest() {
	suite.userRepository = new(mocks.UserRepository)
	suite.exec = executor_factory.NewExecutorFactoryStub()
}

func (suite *UserUsecaseTestSuite) makeUsecase(creds models.Credentials) *UserUseCase {
	return &UserUseCase{
		enforceUserSecurity: security.NewEnforceSecurity(creds),
		executorFactory:     suite.exec,
		userRepository:      suite.userRepository,
	}
}

func (suite *UserUsecaseTestSuite) TestAddUser_nominal() {
	t := suite.T()
	createUser := models.CreateUser{Email: " Tesorera@APR.cl ", Name: "Tesorera", Role: models.OPERADOR, Password: "agua-potable"}
	suite.userRepository.On("CreateUser", mock.Anything, mock.Anything, mock.MatchedBy(func(u models.CreateUser) bool {
		return u.Email == "tesorera@apr.cl"
	}), mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("agua-potable")) == nil
	})).Return(models.User{Id: "user-2", Email: "tesorera@apr.cl", Role: models.OPERADOR}, nil)

	user, err := suite.makeUsecase(staffCredentials(models.ADMIN)).AddUser(context.Background(), createUser)

	assert.NoError(t, err)
	assert.Equal(t, "user-2", user.Id)
	suite.userRepository.AssertExpectations(t)
}

func (suite *UserUsecaseTestSuite) TestAddUser_invalidEmail() {
	_, err := suite.makeUsecase(staffCredentials(models.ADMIN)).AddUser(context.Background(),
		models.CreateUser{Email: "not an email", Role: models.OPERADOR, Password: "agua-potable"})
	assert.ErrorIs(suite.T(), err, models.BadParameterError)
}

func (suite *UserUsecaseTestSuite) TestAddUser_duplicateEmail() {
	t := suite.T()
	suite.userRepository.On("CreateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(models.User{}, &pgconn.PgError{Code: pgerrcode.UniqueViolation})

	_, err := suite.makeUsecase(staffCredentials(models.ADMIN)).AddUser(context.Background(),
		models.CreateUser{Email: "a@apr.cl", Role: models.ADMIN, Password: "agua-potable"})

	assert.ErrorIs(t, err, models.ConflictError)
}

func (suite *UserUsecaseTestSuite) TestAddUser_socioRole() {
	_, err := suite.makeUsecase(staffCredentials(models.ADMIN)).AddUser(context.Background(),
		models.CreateUser{Email: "a@apr.cl", Role: models.SOCIO, Password: "agua-potable"})
	assert.ErrorIs(suite.T(), err, models.BadParameterError)
}

func (suite *UserUsecaseTestSuite) TestAddUser_forbiddenForOperador() {
	_, err := suite.makeUsecase(staffCredentials(models.OPERADOR)).AddUser(context.Background(),
		models.CreateUser{Email: "a@apr.cl", Role: models.OPERADOR, Password: "agua-potable"})
	assert.ErrorIs(suite.T(), err, models.ForbiddenError)
}

func (suite *UserUsecaseTestSuite) TestSetUserPassword_operadorOnOtherUser() {
	t := suite.T()
	suite.userRepository.On("UserById", mock.Anything, mock.Anything, "user-9").Return(models.User{Id: "user-9"}, nil)

	err := suite.makeUsecase(staffCredentials(models.OPERADOR)).SetUserPassword(context.Background(), "user-9", "agua-potable")

	assert.ErrorIs(t, err, models.ForbiddenError)
	suite.userRepository.AssertNotCalled(t, "UpdateUserPassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *UserUsecaseTestSuite) TestSetUserPassword_tooShort() {
	t := suite.T()
	suite.userRepository.On("UserById", mock.Anything, mock.Anything, "user-1").Return(models.User{Id: "user-1"}, nil)

	err := suite.makeUsecase(staffCredentials(models.OPERADOR)).SetUserPassword(context.Background(), "user-1", "short")

	assert.ErrorIs(t, err, models.BadParameterError)
}

func (suite *UserUsecaseTestSuite) TestDeleteUser_cannotDeleteSelf() {
	t := suite.T()
	suite.userRepository.On("UserById", mock.Anything, mock.Anything, "user-1").Return(models.User{Id: "user-1"}, nil)

	err := suite.makeUsecase(staffCredentials(models.ADMIN)).DeleteUser(context.Background(), "user-1")

	assert.ErrorIs(t, err, models.BadParameterError)
	suite.userRepository.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserUsecase(t *testing.T) {
	suite.Run(t, new(UserUsecaseTestSuite))
}
