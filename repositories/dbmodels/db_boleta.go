package dbmodels

import (
	"time"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/utils"
)

type DBBoleta struct {
	Id               string                  `db:"id"`
	Folio            int64                   `db:"folio"`
	SocioId          string                  `db:"socio_id"`
	Periodo          string                  `db:"periodo"`
	TarifaId         string                  `db:"tarifa_id"`
	LecturaId        string                  `db:"lectura_id"`
	ConsumoM3        float64                 `db:"consumo_m3"`
	CargoFijo        int64                   `db:"cargo_fijo"`
	CargoConsumo     int64                   `db:"cargo_consumo"`
	Subsidio         int64                   `db:"subsidio"`
	Recargo          int64                   `db:"recargo"`
	SaldoAnterior    int64                   `db:"saldo_anterior"`
	Total            int64                   `db:"total"`
	Detalle          []models.DetalleEscalon `db:"detalle"`
	Estado           string                  `db:"estado"`
	FechaEmision     time.Time               `db:"fecha_emision"`
	FechaVencimiento time.Time               `db:"fecha_vencimiento"`
	PagadaAt         *time.Time              `db:"pagada_at"`
	CreatedAt        time.Time               `db:"created_at"`
	UpdatedAt        time.Time               `db:"updated_at"`
}

const TABLE_BOLETAS = "boletas"

var BoletaFields = utils.ColumnList[DBBoleta]()

func AdaptBoleta(db DBBoleta) (models.Boleta, error) {
	detalle := db.Detalle
	if detalle == nil {
		detalle = []models.DetalleEscalon{}
	}
	return models.Boleta{
		Id:               db.Id,
		Folio:            db.Folio,
		SocioId:          db.SocioId,
		Periodo:          models.Periodo(db.Periodo),
		TarifaId:         db.TarifaId,
		LecturaId:        db.LecturaId,
		ConsumoM3:        db.ConsumoM3,
		CargoFijo:        db.CargoFijo,
		CargoConsumo:     db.CargoConsumo,
		Subsidio:         db.Subsidio,
		Recargo:          db.Recargo,
		SaldoAnterior:    db.SaldoAnterior,
		Total:            db.Total,
		Detalle:          detalle,
		Estado:           models.BoletaEstadoFrom(db.Estado),
		FechaEmision:     db.FechaEmision,
		FechaVencimiento: db.FechaVencimiento,
		PagadaAt:         db.PagadaAt,
		CreatedAt:        db.CreatedAt,
		UpdatedAt:        db.UpdatedAt,
	}, nil
}
