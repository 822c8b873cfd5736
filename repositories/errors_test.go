package repositories

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolationOn(t *testing.T) {
	err := errors.Wrap(&pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: ConstraintSocioRut,
	}, "insert socio")

	assert.True(t, IsUniqueViolationError(err))
	assert.True(t, IsUniqueViolationOn(err, ConstraintSocioRut))
	assert.False(t, IsUniqueViolationOn(err, ConstraintSocioNumero))

	fk := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: ConstraintSocioRut}
	assert.False(t, IsUniqueViolationOn(fk, ConstraintSocioRut))
	assert.False(t, IsUniqueViolationError(nil))
}
