package security

import (
	"github.com/cockroachdb/errors"

	"github.com/portal-apr/portal-apr-backend/models"
)

type EnforceSecurityUser interface {
	EnforceSecurity
	ListUsers() error
	CreateUser(input models.CreateUser) error
	SetUserPassword(user models.User) error
	DeleteUser(user models.User) error
}

func (e *EnforceSecurityImpl) ListUsers() error {
	return e.Admin()
}

func (e *EnforceSecurityImpl) CreateUser(input models.CreateUser) error {
	if !input.Role.IsStaff() {
		return errors.Wrapf(models.BadParameterError, "cannot create a user with role %s", input.Role)
	}
	return e.Admin()
}

// staff can change their own password, admins anyone's
func (e *EnforceSecurityImpl) SetUserPassword(user models.User) error {
	if err := e.Staff(); err != nil {
		return err
	}
	if e.Creds.Role != models.ADMIN && e.Creds.ActorIdentity.UserId != user.Id {
		return errors.Wrap(models.ForbiddenError, "non-admins can only change their own password")
	}
	return nil
}

func (e *EnforceSecurityImpl) DeleteUser(user models.User) error {
	if e.Creds.ActorIdentity.UserId == user.Id {
		return errors.Wrap(models.BadParameterError, "cannot delete yourself")
	}
	return e.Admin()
}
