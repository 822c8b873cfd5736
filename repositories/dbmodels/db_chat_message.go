package dbmodels

import (
	"time"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/utils"
)

type DBChatMessage struct {
	Id         string     `db:"id"`
	SocioId    string     `db:"socio_id"`
	Sender     string     `db:"sender"`
	AuthorId   string     `db:"author_id"`
	AuthorName string     `db:"author_name"`
	Body       string     `db:"body"`
	CreatedAt  time.Time  `db:"created_at"`
	ReadAt     *time.Time `db:"read_at"`
}

type DBChatConversation struct {
	SocioId       string    `db:"socio_id"`
	SocioNombre   string    `db:"socio_nombre"`
	LastMessageAt time.Time `db:"last_message_at"`
	Unread        int       `db:"unread"`
}

const TABLE_CHAT_MESSAGES = "chat_messages"

var ChatMessageFields = utils.ColumnList[DBChatMessage]()

func AdaptChatMessage(db DBChatMessage) (models.ChatMessage, error) {
	return models.ChatMessage{
		Id:         db.Id,
		SocioId:    db.SocioId,
		Sender:     models.ChatSender(db.Sender),
		AuthorId:   db.AuthorId,
		AuthorName: db.AuthorName,
		Body:       db.Body,
		CreatedAt:  db.CreatedAt,
		ReadAt:     db.ReadAt,
	}, nil
}

func AdaptChatConversation(db DBChatConversation) (models.ChatConversation, error) {
	return models.ChatConversation(db), nil
}
