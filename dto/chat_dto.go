package dto

import (
	"time"

	"github.com/portal-apr/portal-apr-backend/models"
)

type ChatMessage struct {
	Id         string     `json:"id"`
	SocioId    string     `json:"socio_id"`
	Sender     string     `json:"sender"`
	AuthorId   string     `json:"author_id"`
	AuthorName string     `json:"author_name"`
	Body       string     `json:"body"`
	CreatedAt  time.Time  `json:"created_at"`
	ReadAt     *time.Time `json:"read_at"`
}

func AdaptChatMessageDto(m models.ChatMessage) ChatMessage {
	return ChatMessage{
		Id:         m.Id,
		SocioId:    m.SocioId,
		Sender:     string(m.Sender),
		AuthorId:   m.AuthorId,
		AuthorName: m.AuthorName,
		Body:       m.Body,
		CreatedAt:  m.CreatedAt,
		ReadAt:     m.ReadAt,
	}
}

type ChatConversation struct {
	SocioId       string    `json:"socio_id"`
	SocioNombre   string    `json:"socio_nombre"`
	LastMessageAt time.Time `json:"last_message_at"`
	Unread        int       `json:"unread"`
}

func AdaptChatConversationDto(c models.ChatConversation) ChatConversation {
	return ChatConversation{
		SocioId:       c.SocioId,
		SocioNombre:   c.SocioNombre,
		LastMessageAt: c.LastMessageAt,
		Unread:        c.Unread,
	}
}

// the conversation defaults to the one of the socio calling
type ChatConversationQuery struct {
	SocioId string `form:"socio_id" binding:"omitempty,uuid"`
}

type SendChatMessageBody struct {
	SocioId string `json:"socio_id" binding:"omitempty,uuid"`
	Body    string `json:"body" binding:"required"`
}

type MarkChatReadBody struct {
	SocioId string `json:"socio_id" binding:"omitempty,uuid"`
}
