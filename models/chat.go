package models

import "time"

const ChatRoomAll = "all"

type ChatSender string

const (
	ChatSenderSocio ChatSender = "socio"
	ChatSenderStaff ChatSender = "staff"
)

type ChatMessage struct {
	Id         string
	SocioId    string
	Sender     ChatSender
	AuthorId   string
	AuthorName string
	Body       string
	CreatedAt  time.Time
	ReadAt     *time.Time
}

type ChatMessageToCreate struct {
	SocioId    string
	Sender     ChatSender
	AuthorId   string
	AuthorName string
	Body       string
}

type ChatConversation struct {
	SocioId       string
	SocioNombre   string
	LastMessageAt time.Time
	Unread        int
}
