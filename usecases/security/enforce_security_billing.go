package security

import (
	"github.com/portal-apr/portal-apr-backend/models"
)

type EnforceSecurityTarifa interface {
	EnforceSecurity
	ReadTarifas() error
	WriteTarifa() error
}

// any logged in user can look at the tariffs, they are printed on the boletas anyway
func (e *EnforceSecurityImpl) ReadTarifas() error {
	return e.authenticated()
}

func (e *EnforceSecurityImpl) WriteTarifa() error {
	return e.Admin()
}

type EnforceSecurityLectura interface {
	EnforceSecurity
	ReadLecturas(socioId string) error
	WriteLectura() error
}

func (e *EnforceSecurityImpl) ReadLecturas(socioId string) error {
	return e.OwnSocioOrStaff(socioId)
}

func (e *EnforceSecurityImpl) WriteLectura() error {
	return e.Staff()
}

type EnforceSecurityBoleta interface {
	EnforceSecurity
	ReadBoleta(boleta models.Boleta) error
	ListBoletas(socioId string) error
	IssueBoletas() error
	AnnulBoleta(boleta models.Boleta) error
	ExportBoletas() error
}

func (e *EnforceSecurityImpl) ReadBoleta(boleta models.Boleta) error {
	return e.OwnSocioOrStaff(boleta.SocioId)
}

// socioId is the filter of the listing. Socios must filter on themselves.
func (e *EnforceSecurityImpl) ListBoletas(socioId string) error {
	return e.OwnSocioOrStaff(socioId)
}

func (e *EnforceSecurityImpl) IssueBoletas() error {
	return e.Staff()
}

func (e *EnforceSecurityImpl) AnnulBoleta(boleta models.Boleta) error {
	return e.Admin()
}

func (e *EnforceSecurityImpl) ExportBoletas() error {
	return e.Staff()
}
