package chat

import (
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"

	"github.com/portal-apr/portal-apr-backend/models"
)

const (
	EventMessage = "message"
	EventRead    = "read"
)

type messageJson struct {
	Id         string     `json:"id"`
	SocioId    string     `json:"socio_id"`
	Sender     string     `json:"sender"`
	AuthorName string     `json:"author_name"`
	Body       string     `json:"body"`
	CreatedAt  time.Time  `json:"created_at"`
	ReadAt     *time.Time `json:"read_at"`
}

type event struct {
	Type    string       `json:"type"`
	SocioId string       `json:"socio_id"`
	Message *messageJson `json:"message,omitempty"`
	ReadBy  string       `json:"read_by,omitempty"`
}

func MessageEvent(message models.ChatMessage) []byte {
	payload, _ := json.Marshal(event{
		Type:    EventMessage,
		SocioId: message.SocioId,
		Message: &messageJson{
			Id:         message.Id,
			SocioId:    message.SocioId,
			Sender:     string(message.Sender),
			AuthorName: message.AuthorName,
			Body:       message.Body,
			CreatedAt:  message.CreatedAt,
			ReadAt:     message.ReadAt,
		},
	})
	return payload
}

func ReadEvent(socioId string, readBy models.ChatSender) []byte {
	payload, _ := json.Marshal(event{Type: EventRead, SocioId: socioId, ReadBy: string(readBy)})
	return payload
}

// IncomingMessage is a message typed in a websocket client. Clients send either a JSON object
// {"socio_id": "...", "body": "..."} or the bare text; staff must name the socio.
type IncomingMessage struct {
	SocioId string
	Body    string
}

func ParseIncoming(raw string) IncomingMessage {
	if !gjson.Valid(raw) {
		return IncomingMessage{Body: raw}
	}
	parsed := gjson.Parse(raw)
	if !parsed.IsObject() {
		return IncomingMessage{Body: raw}
	}
	return IncomingMessage{
		SocioId: parsed.Get("socio_id").String(),
		Body:    parsed.Get("body").String(),
	}
}
