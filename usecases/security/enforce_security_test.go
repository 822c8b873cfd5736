package security

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/portal-apr/portal-apr-backend/models"
)

func socioCreds(socioId string) models.Credentials {
	return models.Credentials{Role: models.SOCIO, ActorIdentity: models.Identity{SocioId: socioId}}
}

func staffCreds(role models.Role, userId string) models.Credentials {
	return models.Credentials{Role: role, ActorIdentity: models.Identity{UserId: userId}}
}

func TestOwnSocioOrStaff(t *testing.T) {
	tts := []struct {
		name    string
		creds   models.Credentials
		socioId string
		err     error
	}{
		{"socio reads itself", socioCreds("s1"), "s1", nil},
		{"socio reads another socio", socioCreds("s1"), "s2", models.ForbiddenError},
		{"socio without filter", socioCreds("s1"), "", models.ForbiddenError},
		{"operador reads any socio", staffCreds(models.OPERADOR, "u1"), "s2", nil},
		{"admin lists everything", staffCreds(models.ADMIN, "u1"), "", nil},
		{"anonymous", models.Credentials{}, "s1", models.UnAuthorizedError},
	}

	for _, tt := range tts {
		t.Run(tt.name, func(t *testing.T) {
			err := NewEnforceSecurity(tt.creds).OwnSocioOrStaff(tt.socioId)
			if tt.err == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tt.err), "got %v", err)
			}
		})
	}
}

func TestOperadorCannotManage(t *testing.T) {
	e := NewEnforceSecurity(staffCreds(models.OPERADOR, "u1"))

	assert.NoError(t, e.IssueBoletas())
	assert.NoError(t, e.RegisterManualPayment())
	assert.NoError(t, e.WriteLectura())
	assert.ErrorIs(t, e.WriteTarifa(), models.ForbiddenError)
	assert.ErrorIs(t, e.AnnulBoleta(models.Boleta{}), models.ForbiddenError)
	assert.ErrorIs(t, e.AnnulPago(models.Pago{}), models.ForbiddenError)
	assert.ErrorIs(t, e.CreateUser(models.CreateUser{Role: models.OPERADOR}), models.ForbiddenError)
	assert.ErrorIs(t, e.RunReconciliation(), models.ForbiddenError)
}

func TestSocioPermissions(t *testing.T) {
	e := NewEnforceSecurity(socioCreds("s1"))

	assert.NoError(t, e.ReadTarifas())
	assert.NoError(t, e.StartCheckout("s1"))
	assert.NoError(t, e.ReadBoleta(models.Boleta{SocioId: "s1"}))
	assert.NoError(t, e.WriteChat("s1"))
	assert.ErrorIs(t, e.StartCheckout("s2"), models.ForbiddenError)
	assert.ErrorIs(t, e.ReadPago(models.Pago{SocioId: "s2"}), models.ForbiddenError)
	assert.ErrorIs(t, e.ListSocios(), models.ForbiddenError)
	assert.ErrorIs(t, e.ReadAllChats(), models.ForbiddenError)
	assert.ErrorIs(t, e.IssueBoletas(), models.ForbiddenError)
}

func TestStaffCannotCheckout(t *testing.T) {
	e := NewEnforceSecurity(staffCreds(models.ADMIN, "u1"))
	assert.ErrorIs(t, e.StartCheckout("s1"), models.ForbiddenError)
}

func TestUserManagement(t *testing.T) {
	admin := NewEnforceSecurity(staffCreds(models.ADMIN, "admin"))
	operador := NewEnforceSecurity(staffCreds(models.OPERADOR, "op"))

	assert.NoError(t, admin.CreateUser(models.CreateUser{Role: models.OPERADOR}))
	assert.ErrorIs(t, admin.CreateUser(models.CreateUser{Role: models.SOCIO}), models.BadParameterError)
	assert.NoError(t, admin.SetUserPassword(models.User{Id: "op"}))
	assert.NoError(t, operador.SetUserPassword(models.User{Id: "op"}))
	assert.ErrorIs(t, operador.SetUserPassword(models.User{Id: "admin"}), models.ForbiddenError)
	assert.ErrorIs(t, admin.DeleteUser(models.User{Id: "admin"}), models.BadParameterError)
	assert.NoError(t, admin.DeleteUser(models.User{Id: "op"}))
}
