package api

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validatee struct {
	Rut     string   `json:"rut" binding:"required,rut"`
	Periodo string   `json:"periodo" binding:"omitempty,periodo"`
	Ids     []string `json:"ids" binding:"omitempty,min=2"`
	Estado  string   `form:"estado" binding:"omitempty,oneof=activo retirado"`
}

func validationMessages(t *testing.T, o validatee) []string {
	t.Helper()
	registerValidators()

	err := binding.Validator.ValidateStruct(o)
	require.Error(t, err)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, adaptFieldValidationError(fe))
	}
	return messages
}

func TestValidatorAcceptsValidPayload(t *testing.T) {
	registerValidators()
	assert.NoError(t, binding.Validator.ValidateStruct(validatee{
		Rut:     "12.345.678-5",
		Periodo: "2024-03",
		Ids:     []string{"a", "b"},
		Estado:  "activo",
	}))
}

func TestValidatorMessages(t *testing.T) {
	messages := validationMessages(t, validatee{
		Rut:     "12345678-9",
		Periodo: "2024-13",
		Ids:     []string{"a"},
		Estado:  "moroso",
	})

	assert.ElementsMatch(t, []string{
		"field `rut` should be a valid rut, like 12345678-5",
		"field `periodo` should be a periodo formatted YYYY-MM",
		"field `ids` must have at least 2 items",
		"field `estado` must be one of activo, retirado",
	}, messages)
}
