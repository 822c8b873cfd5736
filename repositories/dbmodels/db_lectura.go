package dbmodels

import (
	"time"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/utils"
)

type DBLectura struct {
	Id              string    `db:"id"`
	SocioId         string    `db:"socio_id"`
	Periodo         string    `db:"periodo"`
	LecturaAnterior float64   `db:"lectura_anterior"`
	LecturaActual   float64   `db:"lectura_actual"`
	FechaLectura    time.Time `db:"fecha_lectura"`
	RegistradoPor   string    `db:"registrado_por"`
	CreatedAt       time.Time `db:"created_at"`
}

const TABLE_LECTURAS = "lecturas"

var LecturaFields = utils.ColumnList[DBLectura]()

func AdaptLectura(db DBLectura) (models.Lectura, error) {
	return models.Lectura{
		Id:              db.Id,
		SocioId:         db.SocioId,
		Periodo:         models.Periodo(db.Periodo),
		LecturaAnterior: db.LecturaAnterior,
		LecturaActual:   db.LecturaActual,
		FechaLectura:    db.FechaLectura,
		RegistradoPor:   db.RegistradoPor,
		CreatedAt:       db.CreatedAt,
	}, nil
}
