package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPago_AppliedBoletaIds(t *testing.T) {
	pago := Pago{BoletaIds: []string{"b1", "b2", "b3"}}
	assert.Equal(t, []string{"b1", "b2", "b3"}, pago.AppliedBoletaIds())

	pago.CreditedBoletaIds = []string{"b2"}
	assert.Equal(t, []string{"b1", "b3"}, pago.AppliedBoletaIds())

	pago.CreditedBoletaIds = []string{"b1", "b2", "b3"}
	assert.Empty(t, pago.AppliedBoletaIds())
}
