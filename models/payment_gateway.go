package models

import "time"

type GatewayTransactionStatus int

const (
	GatewayStatusUnknown GatewayTransactionStatus = iota
	GatewayStatusPending
	GatewayStatusApproved
	GatewayStatusRejected
)

func (s GatewayTransactionStatus) String() string {
	switch s {
	case GatewayStatusPending:
		return "pending"
	case GatewayStatusApproved:
		return "approved"
	case GatewayStatusRejected:
		return "rejected"
	}
	return "unknown"
}

type GatewayTransactionRequest struct {
	BuyOrder  string
	SessionId string
	Amount    int64
	Subject   string
	Email     string
	ReturnUrl string
	NotifyUrl string
	CancelUrl string
}

type GatewayTransaction struct {
	Token       string
	RedirectUrl string
}

type GatewayTransactionResult struct {
	Status        GatewayTransactionStatus
	TransactionId string
	BuyOrder      string
	Amount        int64
	Detail        string
	ProcessedAt   time.Time
}

// GatewayNotification is a callback received from a gateway, either a server to server
// notification or the browser return. Token identifies the pago on the gateway side.
type GatewayNotification struct {
	Gateway    MetodoPago
	Token      string
	Payload    map[string]string
	ReceivedAt time.Time `hash:"ignore"`
}

// GatewayReference identifies a transaction on the gateway side. Amount is the amount the
// pago expects, needed by gateways that bill in another currency.
type GatewayReference struct {
	Token    string
	BuyOrder string
	Amount   int64
}

func (p Pago) GatewayReference() GatewayReference {
	return GatewayReference{
		Token:    p.GatewayToken,
		BuyOrder: p.BuyOrder,
		Amount:   p.Monto,
	}
}
