package dbmodels

import (
	"time"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/utils"
)

type DBGatewayNotification struct {
	Id         string            `db:"id"`
	Gateway    string            `db:"gateway"`
	Token      string            `db:"token"`
	Payload    map[string]string `db:"payload"`
	Hash       string            `db:"hash"`
	ReceivedAt time.Time         `db:"received_at"`
}

const TABLE_GATEWAY_NOTIFICATIONS = "gateway_notifications"

var GatewayNotificationFields = utils.ColumnList[DBGatewayNotification]()

func AdaptGatewayNotification(db DBGatewayNotification) (models.GatewayNotification, error) {
	return models.GatewayNotification{
		Gateway:    models.MetodoPagoFrom(db.Gateway),
		Token:      db.Token,
		Payload:    db.Payload,
		ReceivedAt: db.ReceivedAt,
	}, nil
}
