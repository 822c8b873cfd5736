package dbmodels

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/utils"
)

type DBTarifa struct {
	Id                    string    `db:"id"`
	Nombre                string    `db:"nombre"`
	CargoFijo             int64     `db:"cargo_fijo"`
	Modo                  string    `db:"modo"`
	SubsidioPorcentaje    float64   `db:"subsidio_porcentaje"`
	SubsidioLimiteM3      float64   `db:"subsidio_limite_m3"`
	RecargoMoraPorcentaje float64   `db:"recargo_mora_porcentaje"`
	VigenteDesde          time.Time `db:"vigente_desde"`
	Activa                bool      `db:"activa"`
	CreatedAt             time.Time `db:"created_at"`
	UpdatedAt             time.Time `db:"updated_at"`
}

type DBEscalon struct {
	Id       string        `db:"id"`
	TarifaId string        `db:"tarifa_id"`
	Orden    int           `db:"orden"`
	DesdeM3  float64       `db:"desde_m3"`
	HastaM3  pgtype.Float8 `db:"hasta_m3"`
	PrecioM3 int64         `db:"precio_m3"`
}

const (
	TABLE_TARIFAS   = "tarifas"
	TABLE_ESCALONES = "escalones"
)

var (
	TarifaFields  = utils.ColumnList[DBTarifa]()
	EscalonFields = utils.ColumnList[DBEscalon]()
)

func AdaptTarifa(db DBTarifa) (models.Tarifa, error) {
	return models.Tarifa{
		Id:                    db.Id,
		Nombre:                db.Nombre,
		CargoFijo:             db.CargoFijo,
		Modo:                  models.ModoTarifaFrom(db.Modo),
		SubsidioPorcentaje:    db.SubsidioPorcentaje,
		SubsidioLimiteM3:      db.SubsidioLimiteM3,
		RecargoMoraPorcentaje: db.RecargoMoraPorcentaje,
		VigenteDesde:          db.VigenteDesde,
		Activa:                db.Activa,
		CreatedAt:             db.CreatedAt,
		UpdatedAt:             db.UpdatedAt,
	}, nil
}

func AdaptEscalon(db DBEscalon) (models.Escalon, error) {
	escalon := models.Escalon{
		Id:       db.Id,
		TarifaId: db.TarifaId,
		Orden:    db.Orden,
		DesdeM3:  db.DesdeM3,
		PrecioM3: db.PrecioM3,
	}
	if db.HastaM3.Valid {
		hasta := db.HastaM3.Float64
		escalon.HastaM3 = &hasta
	}
	return escalon, nil
}
