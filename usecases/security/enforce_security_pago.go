package security

import (
	"github.com/cockroachdb/errors"

	"github.com/portal-apr/portal-apr-backend/models"
)

type EnforceSecurityPago interface {
	EnforceSecurity
	ReadPago(pago models.Pago) error
	ListPagos(socioId string) error
	StartCheckout(socioId string) error
	RegisterManualPayment() error
	AnnulPago(pago models.Pago) error
	RunReconciliation() error
	ReadReconciliationRuns() error
}

func (e *EnforceSecurityImpl) ReadPago(pago models.Pago) error {
	return e.OwnSocioOrStaff(pago.SocioId)
}

func (e *EnforceSecurityImpl) ListPagos(socioId string) error {
	return e.OwnSocioOrStaff(socioId)
}

// Online payments are made by the socio. Staff register payments at the office instead.
func (e *EnforceSecurityImpl) StartCheckout(socioId string) error {
	if err := e.authenticated(); err != nil {
		return err
	}
	if e.Creds.Role != models.SOCIO || e.Creds.ActorIdentity.SocioId != socioId {
		return errors.Wrap(models.ForbiddenError, "only the socio can pay its boletas online")
	}
	return nil
}

func (e *EnforceSecurityImpl) RegisterManualPayment() error {
	return e.Staff()
}

func (e *EnforceSecurityImpl) AnnulPago(pago models.Pago) error {
	return e.Admin()
}

func (e *EnforceSecurityImpl) RunReconciliation() error {
	return e.Admin()
}

func (e *EnforceSecurityImpl) ReadReconciliationRuns() error {
	return e.Staff()
}
