package security

import (
	"github.com/portal-apr/portal-apr-backend/models"
)

type EnforceSecuritySocio interface {
	EnforceSecurity
	ReadSocio(socio models.Socio) error
	ListSocios() error
	CreateSocio() error
	UpdateSocio(socio models.Socio) error
	SetSocioPassword(socioId string) error
}

func (e *EnforceSecurityImpl) ReadSocio(socio models.Socio) error {
	return e.OwnSocioOrStaff(socio.Id)
}

func (e *EnforceSecurityImpl) ListSocios() error {
	return e.Staff()
}

func (e *EnforceSecurityImpl) CreateSocio() error {
	return e.Staff()
}

func (e *EnforceSecurityImpl) UpdateSocio(socio models.Socio) error {
	return e.Staff()
}

func (e *EnforceSecurityImpl) SetSocioPassword(socioId string) error {
	return e.OwnSocioOrStaff(socioId)
}
