package models

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Base errors, related to default API status codes
var (
	// BadParameterError is rendered with the http status code 400
	BadParameterError = errors.New("bad parameter")

	// UnAuthorizedError is rendered with the http status code 401
	UnAuthorizedError = errors.New("unauthorized")

	// ForbiddenError is rendered with the http status code 403
	ForbiddenError = errors.New("forbidden")

	// NotFoundError is rendered with the http status code 404
	NotFoundError = errors.New("not found")

	// ConflictError is rendered with the http status code 409
	ConflictError = errors.New("duplicate value")

	// UnprocessableEntityError is rendered with the http status code 422
	UnprocessableEntityError = errors.New("unprocessable entity")
)

// DB related errors
var ErrIgnoreRollBackError = errors.New("ignore rollback error")

// Authentication related errors
var (
	ErrUnknownUser        = errors.Wrap(NotFoundError, "unknown user")
	ErrInvalidCredentials = errors.Wrap(UnAuthorizedError, "invalid credentials")
)

// Billing related errors
var (
	ErrNoActiveTarifa        = errors.Wrap(UnprocessableEntityError, "there is no active tarifa")
	ErrInvalidEscalones      = errors.Wrap(BadParameterError, "invalid escalones")
	ErrInvalidReading        = errors.Wrap(BadParameterError, "current reading is lower than the previous one")
	ErrMissingLectura        = errors.Wrap(UnprocessableEntityError, "no lectura for this socio and periodo")
	ErrBoletaAlreadyIssued   = errors.Wrap(ConflictError, "a boleta already exists for this socio and periodo")
	ErrBoletaNotPayable      = errors.Wrap(BadParameterError, "boleta is not payable")
	ErrBoletaAlreadyPaid     = errors.Wrap(BadParameterError, "boleta is already paid")
	ErrSocioNotActive        = errors.Wrap(UnprocessableEntityError, "socio is not active")
	ErrInvalidPeriodo        = errors.Wrap(BadParameterError, "invalid periodo, expected YYYY-MM")
	ErrBoletaPendingCheckout = errors.Wrap(ConflictError, "boleta already has a payment in progress")
)

// Payment related errors
var (
	ErrPagoNotPending         = errors.Wrap(BadParameterError, "pago is not pending")
	ErrPagoNotApproved        = errors.Wrap(BadParameterError, "pago is not approved")
	ErrAmountMismatch         = errors.New("amount confirmed by the gateway does not match the pago")
	ErrUnknownGateway         = errors.Wrap(NotFoundError, "unknown payment gateway")
	ErrGatewayUnavailable     = errors.New("payment gateway is unavailable")
	ErrGatewayRejected        = errors.New("payment gateway rejected the request")
	ErrGatewayTransactionGone = errors.Wrap(NotFoundError, "transaction not found on the payment gateway")
	ErrManualMethodRequired   = errors.Wrap(BadParameterError, "manual payments must use efectivo or transferencia")
)

type FieldValidationError map[string]string

func (e FieldValidationError) Error() string {
	return fmt.Sprintf("%v", map[string]string(e))
}
