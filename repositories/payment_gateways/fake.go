package payment_gateways

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/portal-apr/portal-apr-backend/models"
)

// Fake is an in-memory gateway for development. Its "payment form" is the return url itself:
// following the redirect approves the transaction unless the query says otherwise.
type Fake struct {
	mu           sync.Mutex
	transactions map[string]fakeTransaction
}

type fakeTransaction struct {
	buyOrder string
	amount   int64
	status   models.GatewayTransactionStatus
}

func NewFake() *Fake {
	return &Fake{transactions: make(map[string]fakeTransaction)}
}

func (f *Fake) Name() models.MetodoPago {
	return models.MetodoFake
}

func (f *Fake) CreateTransaction(ctx context.Context, req models.GatewayTransactionRequest) (models.GatewayTransaction, error) {
	token := uuid.NewString()
	f.mu.Lock()
	f.transactions[token] = fakeTransaction{
		buyOrder: req.BuyOrder,
		amount:   req.Amount,
		status:   models.GatewayStatusPending,
	}
	f.mu.Unlock()

	redirect, err := url.Parse(req.ReturnUrl)
	if err != nil {
		return models.GatewayTransaction{}, err
	}
	query := redirect.Query()
	query.Set("token", token)
	redirect.RawQuery = query.Encode()
	return models.GatewayTransaction{Token: token, RedirectUrl: redirect.String()}, nil
}

// SetStatus forces the outcome of a transaction
func (f *Fake) SetStatus(token string, status models.GatewayTransactionStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.transactions[token]; ok {
		t.status = status
		f.transactions[token] = t
	}
}

func (f *Fake) Commit(ctx context.Context, ref models.GatewayReference) (models.GatewayTransactionResult, error) {
	f.mu.Lock()
	t, ok := f.transactions[ref.Token]
	if ok && t.status == models.GatewayStatusPending {
		t.status = models.GatewayStatusApproved
		f.transactions[ref.Token] = t
	}
	f.mu.Unlock()
	if !ok {
		return models.GatewayTransactionResult{}, errors.Wrap(models.ErrGatewayTransactionGone, "fake commit")
	}
	return f.result(ref.Token, t), nil
}

func (f *Fake) GetStatus(ctx context.Context, ref models.GatewayReference) (models.GatewayTransactionResult, error) {
	f.mu.Lock()
	t, ok := f.transactions[ref.Token]
	f.mu.Unlock()
	if !ok {
		return models.GatewayTransactionResult{}, errors.Wrap(models.ErrGatewayTransactionGone, "fake status")
	}
	return f.result(ref.Token, t), nil
}

func (f *Fake) result(token string, t fakeTransaction) models.GatewayTransactionResult {
	result := models.GatewayTransactionResult{
		Status:   t.status,
		BuyOrder: t.buyOrder,
		Amount:   t.amount,
	}
	if t.status == models.GatewayStatusApproved {
		result.TransactionId = "fake-" + token
		result.ProcessedAt = time.Now()
	}
	return result
}

func (f *Fake) ReferenceFromCallback(payload map[string]string) (models.GatewayReference, error) {
	token := payload["token"]
	if token == "" {
		return models.GatewayReference{}, errors.Wrap(models.BadParameterError, "fake callback without token")
	}
	if payload["outcome"] == "reject" {
		f.SetStatus(token, models.GatewayStatusRejected)
	}
	return models.GatewayReference{Token: token}, nil
}
