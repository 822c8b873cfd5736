package token

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/portal-apr/portal-apr-backend/models"
)

const MinPasswordLength = 8

// compared against when the account does not exist, so that unknown accounts take as long
// as wrong passwords
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("portal-apr-dummy-password"), bcrypt.DefaultCost)

func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", errors.Wrapf(models.BadParameterError, "password must have at least %d characters", MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "could not hash password")
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
