package repositories

import (
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Constraints and unique indexes the usecases tell apart
const (
	ConstraintSocioRut           = "socios_rut_key"
	ConstraintSocioNumero        = "socios_numero_socio_key"
	ConstraintSingleActiveTarifa = "tarifas_single_active_idx"
	ConstraintBoletaPeriodo      = "boletas_socio_periodo_idx"
)

func IsUniqueViolationError(err error) bool {
	var pgxErr *pgconn.PgError
	return errors.As(err, &pgxErr) && pgxErr.Code == pgerrcode.UniqueViolation
}

// IsUniqueViolationOn is IsUniqueViolationError restricted to one constraint or unique index
func IsUniqueViolationOn(err error, constraint string) bool {
	var pgxErr *pgconn.PgError
	return errors.As(err, &pgxErr) && pgxErr.Code == pgerrcode.UniqueViolation &&
		pgxErr.ConstraintName == constraint
}
