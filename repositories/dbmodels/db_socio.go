package dbmodels

import (
	"time"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/utils"
)

type DBSocio struct {
	Id            string    `db:"id"`
	NumeroSocio   int       `db:"numero_socio"`
	Rut           string    `db:"rut"`
	Nombres       string    `db:"nombres"`
	Apellidos     string    `db:"apellidos"`
	Email         string    `db:"email"`
	Telefono      string    `db:"telefono"`
	Direccion     string    `db:"direccion"`
	NumeroMedidor string    `db:"numero_medidor"`
	Estado        string    `db:"estado"`
	SaldoFavor    int64     `db:"saldo_favor"`
	PasswordHash  string    `db:"password_hash"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

const TABLE_SOCIOS = "socios"

var SocioFields = utils.ColumnList[DBSocio]()

func AdaptSocio(db DBSocio) (models.Socio, error) {
	return models.Socio{
		Id:            db.Id,
		NumeroSocio:   db.NumeroSocio,
		Rut:           db.Rut,
		Nombres:       db.Nombres,
		Apellidos:     db.Apellidos,
		Email:         db.Email,
		Telefono:      db.Telefono,
		Direccion:     db.Direccion,
		NumeroMedidor: db.NumeroMedidor,
		Estado:        models.SocioEstadoFrom(db.Estado),
		SaldoFavor:    db.SaldoFavor,
		PasswordHash:  db.PasswordHash,
		CreatedAt:     db.CreatedAt,
		UpdatedAt:     db.UpdatedAt,
	}, nil
}
