package payment_gateways

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/portal-apr/portal-apr-backend/models"
)

type PaymentGateway interface {
	Name() models.MetodoPago
	CreateTransaction(ctx context.Context, req models.GatewayTransactionRequest) (models.GatewayTransaction, error)
	GetStatus(ctx context.Context, ref models.GatewayReference) (models.GatewayTransactionResult, error)
	// ReferenceFromCallback extracts the transaction reference from a notification or return payload
	ReferenceFromCallback(payload map[string]string) (models.GatewayReference, error)
}

// Committer is implemented by gateways where an authorized transaction must be committed
// (or captured) by the merchant before it is final.
type Committer interface {
	Commit(ctx context.Context, ref models.GatewayReference) (models.GatewayTransactionResult, error)
}

// Settle returns the final state of a transaction, committing it first when the gateway needs it.
// A rejected commit usually means the transaction was already committed or aborted, so the
// status is read instead.
func Settle(ctx context.Context, gateway PaymentGateway, ref models.GatewayReference) (models.GatewayTransactionResult, error) {
	committer, ok := gateway.(Committer)
	if !ok {
		return gateway.GetStatus(ctx, ref)
	}

	result, err := committer.Commit(ctx, ref)
	if err == nil {
		return result, nil
	}
	if errors.Is(err, models.ErrGatewayRejected) {
		return gateway.GetStatus(ctx, ref)
	}
	return models.GatewayTransactionResult{}, err
}

// NotificationResolver is implemented by gateways whose webhooks only carry their own id of the
// payment, which must be looked up to find the pago.
type NotificationResolver interface {
	ResolveNotification(ctx context.Context, payload map[string]string) (models.GatewayReference, error)
}

// ReferenceOf extracts the reference of a callback, looking it up on the gateway when the payload
// does not carry it.
func ReferenceOf(ctx context.Context, gateway PaymentGateway, payload map[string]string) (models.GatewayReference, error) {
	ref, err := gateway.ReferenceFromCallback(payload)
	if err == nil {
		return ref, nil
	}
	resolver, ok := gateway.(NotificationResolver)
	if !ok {
		return models.GatewayReference{}, err
	}
	return resolver.ResolveNotification(ctx, payload)
}

type Registry struct {
	gateways map[models.MetodoPago]PaymentGateway
}

func NewRegistry(gateways ...PaymentGateway) *Registry {
	registry := &Registry{gateways: make(map[models.MetodoPago]PaymentGateway, len(gateways))}
	for _, g := range gateways {
		registry.gateways[g.Name()] = g
	}
	return registry
}

func (r *Registry) Get(metodo models.MetodoPago) (PaymentGateway, error) {
	gateway, ok := r.gateways[metodo]
	if !ok {
		return nil, errors.Wrapf(models.ErrUnknownGateway, "gateway %s is not configured", metodo)
	}
	return gateway, nil
}

func (r *Registry) Names() []models.MetodoPago {
	names := make([]models.MetodoPago, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	return names
}
