package usecases

import (
	"context"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/portal-apr/portal-apr-backend/mocks"
	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/usecases/executor_factory"
	"github.com/portal-apr/portal-apr-backend/usecases/security"
)

type chatHubMock struct {
	mock.Mock
}

func (m *chatHubMock) Publish(payload []byte, rooms ...string) {
	m.Called(payload, rooms)
}

func (m *chatHubMock) Serve(ctx context.Context, conn *websocket.Conn, rooms []string,
	onMessage func(ctx context.Context, body string) error,
) {
	m.Called(conn, rooms, onMessage)
}

type ChatUsecaseTestSuite struct {
	suite.Suite
	repository *mocks.PortalDbRepository
	hub        *chatHubMock
	exec       executor_factory.ExecutorFactoryStub
}

func (suite *ChatUsecaseTestSuite) SetupTest() {
	suite.repository = new(mocks.PortalDbRepository)
	suite.hub = new(chatHubMock)
	suite.exec = executor_factory.NewExecutorFactoryStub()
}

func (suite *ChatUsecaseTestSuite) makeUsecase(creds models.Credentials) *ChatUsecase {
	return &ChatUsecase{
		enforceSecurity: security.NewEnforceSecurity(creds),
		executorFactory: suite.exec,
		repository:      suite.repository,
		hub:             suite.hub,
	}
}

func (suite *ChatUsecaseTestSuite) TestSendMessage_socioWritesInOwnConversation() {
	t := suite.T()
	suite.repository.On("GetSocioById", mock.Anything, mock.Anything, "socio-1").Return(models.Socio{Id: "socio-1"}, nil)
	suite.repository.On("CreateChatMessage", mock.Anything, mock.Anything, models.ChatMessageToCreate{
		SocioId:    "socio-1",
		Sender:     models.ChatSenderSocio,
		AuthorId:   "socio-1",
		AuthorName: "Socio",
		Body:       "hay un corte de agua?",
	}).Return(models.ChatMessage{Id: "msg-1", SocioId: "socio-1", Sender: models.ChatSenderSocio}, nil)
	suite.hub.On("Publish", mock.Anything, []string{"socio-1", models.ChatRoomAll}).Return()

	message, err := suite.makeUsecase(socioCredentials("socio-1")).SendMessage(context.Background(), "", "  hay un corte de agua?  ")

	assert.NoError(t, err)
	assert.Equal(t, "msg-1", message.Id)
	suite.repository.AssertExpectations(t)
	suite.hub.AssertExpectations(t)
}

func (suite *ChatUsecaseTestSuite) TestSendMessage_staffReply() {
	t := suite.T()
	suite.repository.On("GetSocioById", mock.Anything, mock.Anything, "socio-1").Return(models.Socio{Id: "socio-1"}, nil)
	suite.repository.On("CreateChatMessage", mock.Anything, mock.Anything, mock.MatchedBy(func(m models.ChatMessageToCreate) bool {
		return m.Sender == models.ChatSenderStaff && m.AuthorId == "user-1" && m.SocioId == "socio-1"
	})).Return(models.ChatMessage{Id: "msg-2"}, nil)
	suite.hub.On("Publish", mock.Anything, mock.Anything).Return()

	_, err := suite.makeUsecase(staffCredentials(models.OPERADOR)).SendMessage(context.Background(), "socio-1", "mañana")

	assert.NoError(t, err)
	suite.repository.AssertExpectations(t)
}

func (suite *ChatUsecaseTestSuite) TestSendMessage_otherSocioConversation() {
	_, err := suite.makeUsecase(socioCredentials("socio-1")).SendMessage(context.Background(), "socio-2", "hola")
	assert.ErrorIs(suite.T(), err, models.ForbiddenError)
}

func (suite *ChatUsecaseTestSuite) TestSendMessage_invalidBody() {
	t := suite.T()
	usecase := suite.makeUsecase(socioCredentials("socio-1"))

	_, err := usecase.SendMessage(context.Background(), "", "   ")
	assert.ErrorIs(t, err, models.BadParameterError)

	_, err = usecase.SendMessage(context.Background(), "", strings.Repeat("a", maxChatMessageLength+1))
	assert.ErrorIs(t, err, models.BadParameterError)
	suite.repository.AssertNotCalled(t, "CreateChatMessage", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ChatUsecaseTestSuite) TestMarkRead_publishesOnlyWhenSomethingWasRead() {
	t := suite.T()
	suite.repository.On("MarkChatRead", mock.Anything, mock.Anything, "socio-1", models.ChatSenderStaff).Return(int64(0), nil).Once()
	suite.repository.On("MarkChatRead", mock.Anything, mock.Anything, "socio-1", models.ChatSenderStaff).Return(int64(2), nil).Once()
	suite.hub.On("Publish", mock.Anything, []string{"socio-1", models.ChatRoomAll}).Return().Once()
	usecase := suite.makeUsecase(staffCredentials(models.ADMIN))

	count, err := usecase.MarkRead(context.Background(), "socio-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)

	count, err = usecase.MarkRead(context.Background(), "socio-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)
	suite.hub.AssertExpectations(t)
}

func (suite *ChatUsecaseTestSuite) TestChatRooms() {
	t := suite.T()

	rooms, err := suite.makeUsecase(staffCredentials(models.OPERADOR)).ChatRooms("")
	assert.NoError(t, err)
	assert.Equal(t, []string{models.ChatRoomAll}, rooms)

	rooms, err = suite.makeUsecase(staffCredentials(models.OPERADOR)).ChatRooms("socio-3")
	assert.NoError(t, err)
	assert.Equal(t, []string{"socio-3"}, rooms)

	rooms, err = suite.makeUsecase(socioCredentials("socio-1")).ChatRooms("")
	assert.NoError(t, err)
	assert.Equal(t, []string{"socio-1"}, rooms)

	_, err = suite.makeUsecase(socioCredentials("socio-1")).ChatRooms("socio-3")
	assert.ErrorIs(t, err, models.ForbiddenError)
}

func TestChatUsecase(t *testing.T) {
	suite.Run(t, new(ChatUsecaseTestSuite))
}
