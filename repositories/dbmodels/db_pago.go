package dbmodels

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/utils"
)

type DBPago struct {
	Id                   string      `db:"id"`
	SocioId              string      `db:"socio_id"`
	Monto                int64       `db:"monto"`
	Metodo               string      `db:"metodo"`
	Estado               string      `db:"estado"`
	BuyOrder             string      `db:"buy_order"`
	GatewayToken         string      `db:"gateway_token"`
	GatewayTransactionId pgtype.Text `db:"gateway_transaction_id"`
	RegistradoPor        string      `db:"registrado_por"`
	MotivoRechazo        string      `db:"motivo_rechazo"`
	CreatedAt            time.Time   `db:"created_at"`
	UpdatedAt            time.Time   `db:"updated_at"`
	ConfirmadoAt         *time.Time  `db:"confirmado_at"`
}

type DBPagoWithBoletas struct {
	DBPago
	BoletaIds         []string `db:"boleta_ids"`
	CreditedBoletaIds []string `db:"credited_boleta_ids"`
}

const (
	TABLE_PAGOS        = "pagos"
	TABLE_PAGO_BOLETAS = "pago_boletas"
)

var PagoFields = utils.ColumnList[DBPago]()

// select the linked boleta ids of the pago aliased as "p"
const (
	SelectPagoBoletaIds         = "ARRAY(SELECT pb.boleta_id::text FROM pago_boletas pb WHERE pb.pago_id = p.id ORDER BY pb.boleta_id) AS boleta_ids"
	SelectPagoCreditedBoletaIds = "ARRAY(SELECT pb.boleta_id::text FROM pago_boletas pb WHERE pb.pago_id = p.id AND NOT pb.applied ORDER BY pb.boleta_id) AS credited_boleta_ids"
)

func AdaptPago(db DBPago) (models.Pago, error) {
	return models.Pago{
		Id:                   db.Id,
		SocioId:              db.SocioId,
		Monto:                db.Monto,
		Metodo:               models.MetodoPagoFrom(db.Metodo),
		Estado:               models.PagoEstadoFrom(db.Estado),
		BuyOrder:             db.BuyOrder,
		GatewayToken:         db.GatewayToken,
		GatewayTransactionId: db.GatewayTransactionId.String,
		RegistradoPor:        db.RegistradoPor,
		MotivoRechazo:        db.MotivoRechazo,
		CreatedAt:            db.CreatedAt,
		UpdatedAt:            db.UpdatedAt,
		ConfirmadoAt:         db.ConfirmadoAt,
		BoletaIds:            []string{},
		CreditedBoletaIds:    []string{},
	}, nil
}

func AdaptPagoWithBoletas(db DBPagoWithBoletas) (models.Pago, error) {
	pago, err := AdaptPago(db.DBPago)
	if err != nil {
		return models.Pago{}, err
	}
	if db.BoletaIds != nil {
		pago.BoletaIds = db.BoletaIds
	}
	if db.CreditedBoletaIds != nil {
		pago.CreditedBoletaIds = db.CreditedBoletaIds
	}
	return pago, nil
}
