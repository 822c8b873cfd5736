package usecases

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories"
	"github.com/portal-apr/portal-apr-backend/usecases/chat"
	"github.com/portal-apr/portal-apr-backend/usecases/executor_factory"
	"github.com/portal-apr/portal-apr-backend/usecases/security"
	"github.com/portal-apr/portal-apr-backend/usecases/tracking"
)

const maxChatMessageLength = 2000

type ChatRepository interface {
	GetSocioById(ctx context.Context, exec repositories.Executor, socioId string) (models.Socio, error)
	CreateChatMessage(ctx context.Context, exec repositories.Executor, message models.ChatMessageToCreate) (models.ChatMessage, error)
	ListChatMessages(ctx context.Context, exec repositories.Executor, socioId string,
		pagination models.PaginationAndSorting) ([]models.ChatMessage, error)
	MarkChatRead(ctx context.Context, exec repositories.Executor, socioId string, readBy models.ChatSender) (int64, error)
	ListChatConversations(ctx context.Context, exec repositories.Executor) ([]models.ChatConversation, error)
}

type chatHub interface {
	Publish(payload []byte, rooms ...string)
	Serve(ctx context.Context, conn *websocket.Conn, rooms []string, onMessage func(ctx context.Context, body string) error)
}

type ChatUsecase struct {
	enforceSecurity security.EnforceSecurityChat
	executorFactory executor_factory.ExecutorFactory
	repository      ChatRepository
	hub             chatHub
}

func (usecase *ChatUsecase) sender() models.ChatSender {
	if usecase.enforceSecurity.Credentials().Role.IsStaff() {
		return models.ChatSenderStaff
	}
	return models.ChatSenderSocio
}

// conversationOf defaults the conversation of a socio to its own
func (usecase *ChatUsecase) conversationOf(socioId string) string {
	if socioId == "" {
		return usecase.enforceSecurity.Credentials().ActorIdentity.SocioId
	}
	return socioId
}

func (usecase *ChatUsecase) ListMessages(ctx context.Context, socioId string,
	pagination models.PaginationAndSorting,
) ([]models.ChatMessage, error) {
	socioId = usecase.conversationOf(socioId)
	if err := usecase.enforceSecurity.ReadChat(socioId); err != nil {
		return nil, err
	}
	return usecase.repository.ListChatMessages(ctx, usecase.executorFactory.NewExecutor(), socioId, pagination.WithDefaults())
}

func (usecase *ChatUsecase) ListConversations(ctx context.Context) ([]models.ChatConversation, error) {
	if err := usecase.enforceSecurity.ReadAllChats(); err != nil {
		return nil, err
	}
	return usecase.repository.ListChatConversations(ctx, usecase.executorFactory.NewExecutor())
}

// SendMessage stores a message in the conversation of the socio and pushes it to the socio
// and to the staff
func (usecase *ChatUsecase) SendMessage(ctx context.Context, socioId, body string) (models.ChatMessage, error) {
	socioId = usecase.conversationOf(socioId)
	if socioId == "" {
		return models.ChatMessage{}, errors.Wrap(models.BadParameterError, "socio_id is required")
	}
	if err := usecase.enforceSecurity.WriteChat(socioId); err != nil {
		return models.ChatMessage{}, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return models.ChatMessage{}, errors.Wrap(models.BadParameterError, "empty message")
	}
	if utf8.RuneCountInString(body) > maxChatMessageLength {
		return models.ChatMessage{}, errors.Wrapf(models.BadParameterError,
			"messages are limited to %d characters", maxChatMessageLength)
	}

	exec := usecase.executorFactory.NewExecutor()
	if _, err := usecase.repository.GetSocioById(ctx, exec, socioId); err != nil {
		return models.ChatMessage{}, err
	}

	identity := usecase.enforceSecurity.Credentials().ActorIdentity
	authorId := identity.UserId
	if authorId == "" {
		authorId = identity.SocioId
	}
	message, err := usecase.repository.CreateChatMessage(ctx, exec, models.ChatMessageToCreate{
		SocioId:    socioId,
		Sender:     usecase.sender(),
		AuthorId:   authorId,
		AuthorName: identity.Name,
		Body:       body,
	})
	if err != nil {
		return models.ChatMessage{}, err
	}

	usecase.hub.Publish(chat.MessageEvent(message), socioId, models.ChatRoomAll)
	tracking.TrackEvent(ctx, models.AnalyticsChatMessageSent, map[string]any{"sender": message.Sender})
	return message, nil
}

// MarkRead marks as read the messages sent by the other side of the conversation
func (usecase *ChatUsecase) MarkRead(ctx context.Context, socioId string) (int64, error) {
	socioId = usecase.conversationOf(socioId)
	if err := usecase.enforceSecurity.ReadChat(socioId); err != nil {
		return 0, err
	}
	readBy := usecase.sender()
	count, err := usecase.repository.MarkChatRead(ctx, usecase.executorFactory.NewExecutor(), socioId, readBy)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		usecase.hub.Publish(chat.ReadEvent(socioId, readBy), socioId, models.ChatRoomAll)
	}
	return count, nil
}

// ChatRooms returns the rooms a connection joins: its own conversation for a socio, every
// conversation for staff, or the one they opened.
func (usecase *ChatUsecase) ChatRooms(socioId string) ([]string, error) {
	if usecase.enforceSecurity.Credentials().Role.IsStaff() {
		if socioId != "" {
			return []string{socioId}, nil
		}
		if err := usecase.enforceSecurity.ReadAllChats(); err != nil {
			return nil, err
		}
		return []string{models.ChatRoomAll}, nil
	}

	socioId = usecase.conversationOf(socioId)
	if err := usecase.enforceSecurity.ReadChat(socioId); err != nil {
		return nil, err
	}
	return []string{socioId}, nil
}

// ServeChat pumps a websocket connection until it closes. Messages typed in the connection are
// sent like SendMessage.
func (usecase *ChatUsecase) ServeChat(ctx context.Context, conn *websocket.Conn, rooms []string) {
	usecase.hub.Serve(ctx, conn, rooms, func(ctx context.Context, raw string) error {
		incoming := chat.ParseIncoming(raw)
		if incoming.SocioId == "" && len(rooms) == 1 && rooms[0] != models.ChatRoomAll {
			incoming.SocioId = rooms[0]
		}
		_, err := usecase.SendMessage(ctx, incoming.SocioId, incoming.Body)
		return err
	})
}
