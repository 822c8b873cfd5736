package security

import (
	"github.com/cockroachdb/errors"

	"github.com/portal-apr/portal-apr-backend/models"
)

type EnforceSecurity interface {
	Credentials() models.Credentials
	Staff() error
	Admin() error
	OwnSocioOrStaff(socioId string) error
}

type EnforceSecurityImpl struct {
	Creds models.Credentials
}

func NewEnforceSecurity(creds models.Credentials) *EnforceSecurityImpl {
	return &EnforceSecurityImpl{Creds: creds}
}

func (e *EnforceSecurityImpl) Credentials() models.Credentials {
	return e.Creds
}

func (e *EnforceSecurityImpl) authenticated() error {
	if e.Creds.Role == models.NO_ROLE {
		return errors.Wrap(models.UnAuthorizedError, "missing credentials")
	}
	return nil
}

func (e *EnforceSecurityImpl) Staff() error {
	if err := e.authenticated(); err != nil {
		return err
	}
	if !e.Creds.Role.IsStaff() {
		return errors.Wrapf(models.ForbiddenError, "role %s is not staff", e.Creds.Role)
	}
	return nil
}

func (e *EnforceSecurityImpl) Admin() error {
	if err := e.authenticated(); err != nil {
		return err
	}
	if e.Creds.Role != models.ADMIN {
		return errors.Wrapf(models.ForbiddenError, "role %s is not admin", e.Creds.Role)
	}
	return nil
}

// OwnSocioOrStaff lets staff through, and socios only on their own resources
func (e *EnforceSecurityImpl) OwnSocioOrStaff(socioId string) error {
	if err := e.authenticated(); err != nil {
		return err
	}
	if e.Creds.Role.IsStaff() {
		return nil
	}
	if e.Creds.Role == models.SOCIO && socioId != "" && e.Creds.ActorIdentity.SocioId == socioId {
		return nil
	}
	return errors.Wrapf(models.ForbiddenError, "socio %s cannot access resources of socio %s",
		e.Creds.ActorIdentity.SocioId, socioId)
}
