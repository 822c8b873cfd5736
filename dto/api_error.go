package dto

type APIErrorResponse struct {
	Message   string    `json:"message"`
	ErrorCode ErrorCode `json:"error_code,omitempty"`
	Messages  []string  `json:"messages,omitempty"`
}

type ErrorCode string

const (
	// billing related
	NoActiveTarifa       ErrorCode = "no_active_tarifa"
	MissingLectura       ErrorCode = "missing_lectura"
	BoletaAlreadyIssued  ErrorCode = "boleta_already_issued"
	BoletaNotPayable     ErrorCode = "boleta_not_payable"
	BoletaPendingPayment ErrorCode = "boleta_pending_payment"
	SocioNotActive       ErrorCode = "socio_not_active"

	// payment related
	PaymentGatewayUnavailable ErrorCode = "payment_gateway_unavailable"
	PaymentGatewayRejected    ErrorCode = "payment_gateway_rejected"

	// general
	InvalidPayload ErrorCode = "invalid_payload"
	UnknownUser    ErrorCode = "unknown_user"
)
