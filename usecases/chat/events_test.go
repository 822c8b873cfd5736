package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/portal-apr/portal-apr-backend/models"
)

func TestParseIncoming(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want IncomingMessage
	}{
		{"plain text", "hola, tengo una consulta", IncomingMessage{Body: "hola, tengo una consulta"}},
		{"json object", `{"socio_id":"s1","body":"su boleta fue anulada"}`, IncomingMessage{SocioId: "s1", Body: "su boleta fue anulada"}},
		{"json without socio", `{"body":"gracias"}`, IncomingMessage{Body: "gracias"}},
		{"json scalar", `"gracias"`, IncomingMessage{Body: `"gracias"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseIncoming(tt.raw))
		})
	}
}

func TestMessageEvent(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	payload := MessageEvent(models.ChatMessage{
		Id:         "m1",
		SocioId:    "s1",
		Sender:     models.ChatSenderStaff,
		AuthorId:   "u1",
		AuthorName: "Directiva",
		Body:       "Corte programado el martes",
		CreatedAt:  at,
	})

	assert.JSONEq(t, `{
		"type": "message",
		"socio_id": "s1",
		"message": {
			"id": "m1",
			"socio_id": "s1",
			"sender": "staff",
			"author_name": "Directiva",
			"body": "Corte programado el martes",
			"created_at": "2024-03-01T10:00:00Z",
			"read_at": null
		}
	}`, string(payload))
}

func TestReadEvent(t *testing.T) {
	assert.JSONEq(t, `{"type":"read","socio_id":"s1","read_by":"socio"}`,
		string(ReadEvent("s1", models.ChatSenderSocio)))
}
