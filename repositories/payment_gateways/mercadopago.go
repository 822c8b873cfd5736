package payment_gateways

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/portal-apr/portal-apr-backend/infra"
	"github.com/portal-apr/portal-apr-backend/models"
)

const MercadoPagoUrl = "https://api.mercadopago.com"

// MercadoPago uses checkout preferences. The preference id is the token; payments made on it
// are found back through the external reference, which is our buy order.
type MercadoPago struct {
	http   *httpClient
	config infra.MercadoPagoConfig
}

func NewMercadoPago(config infra.MercadoPagoConfig, client *http.Client) *MercadoPago {
	baseUrl := config.BaseUrl
	if baseUrl == "" {
		baseUrl = MercadoPagoUrl
	}
	return &MercadoPago{
		http:   newHttpClient(models.MetodoMercadoPago, baseUrl, client),
		config: config,
	}
}

func (m *MercadoPago) Name() models.MetodoPago {
	return models.MetodoMercadoPago
}

func (m *MercadoPago) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + m.config.AccessToken}
}

func (m *MercadoPago) CreateTransaction(ctx context.Context, req models.GatewayTransactionRequest) (models.GatewayTransaction, error) {
	body, err := json.Marshal(map[string]any{
		"items": []map[string]any{{
			"title":       req.Subject,
			"quantity":    1,
			"unit_price":  req.Amount,
			"currency_id": "CLP",
		}},
		"payer":              map[string]any{"email": req.Email},
		"external_reference": req.BuyOrder,
		"notification_url":   req.NotifyUrl,
		"back_urls": map[string]string{
			"success": req.ReturnUrl,
			"pending": req.ReturnUrl,
			"failure": req.CancelUrl,
		},
		"auto_return": "approved",
	})
	if err != nil {
		return models.GatewayTransaction{}, err
	}

	resp, err := m.http.do(ctx, gatewayRequest{
		operation:   "create",
		method:      http.MethodPost,
		path:        "/checkout/preferences",
		contentType: "application/json",
		headers:     m.headers(),
		body:        body,
	})
	if err != nil {
		return models.GatewayTransaction{}, err
	}

	id := resp.Get("id").String()
	initPoint := resp.Get("init_point").String()
	if id == "" || initPoint == "" {
		return models.GatewayTransaction{}, errors.Wrap(models.ErrGatewayRejected, "mercadopago create: missing id or init_point")
	}
	return models.GatewayTransaction{Token: id, RedirectUrl: initPoint}, nil
}

// GetStatus looks at the most recent payment made for the buy order. No payment yet means
// the user has not paid.
func (m *MercadoPago) GetStatus(ctx context.Context, ref models.GatewayReference) (models.GatewayTransactionResult, error) {
	query := url.Values{
		"external_reference": {ref.BuyOrder},
		"sort":               {"date_created"},
		"criteria":           {"desc"},
	}
	resp, err := m.http.do(ctx, gatewayRequest{
		operation: "status",
		method:    http.MethodGet,
		path:      "/v1/payments/search?" + query.Encode(),
		headers:   m.headers(),
	})
	if err != nil {
		return models.GatewayTransactionResult{}, err
	}

	results := resp.Get("results").Array()
	if len(results) == 0 {
		return models.GatewayTransactionResult{Status: models.GatewayStatusPending, BuyOrder: ref.BuyOrder}, nil
	}

	// an approved payment wins over later failed attempts
	payment := results[0]
	for _, r := range results {
		if r.Get("status").String() == "approved" {
			payment = r
			break
		}
	}

	result := models.GatewayTransactionResult{
		TransactionId: payment.Get("id").String(),
		BuyOrder:      payment.Get("external_reference").String(),
		Amount:        payment.Get("transaction_amount").Int(),
		Detail:        payment.Get("status_detail").String(),
	}
	if t, err := time.Parse(time.RFC3339, payment.Get("date_approved").String()); err == nil {
		result.ProcessedAt = t
	}
	switch payment.Get("status").String() {
	case "approved":
		result.Status = models.GatewayStatusApproved
	case "pending", "in_process", "authorized", "in_mediation":
		result.Status = models.GatewayStatusPending
	case "rejected", "cancelled", "refunded", "charged_back":
		result.Status = models.GatewayStatusRejected
	default:
		result.Status = models.GatewayStatusUnknown
	}
	return result, nil
}

// The browser return carries external_reference. Webhooks only carry the payment id, which is
// looked up to find the external reference.
func (m *MercadoPago) ReferenceFromCallback(payload map[string]string) (models.GatewayReference, error) {
	if ref := payload["external_reference"]; ref != "" {
		return models.GatewayReference{BuyOrder: ref, Token: payload["preference_id"]}, nil
	}
	return models.GatewayReference{}, errors.Wrap(models.BadParameterError, "mercadopago callback without external_reference")
}

// ResolveNotification turns a webhook payment id into the buy order it pays. Webhooks send
// "type=payment&data.id=123", the older IPN sends "topic=payment&id=123".
func (m *MercadoPago) ResolveNotification(ctx context.Context, payload map[string]string) (models.GatewayReference, error) {
	paymentId := payload["data.id"]
	if paymentId == "" && payload["topic"] == "payment" {
		paymentId = payload["id"]
	}
	if paymentId == "" {
		return models.GatewayReference{}, errors.Wrap(models.BadParameterError, "mercadopago notification without payment id")
	}
	resp, err := m.http.do(ctx, gatewayRequest{
		operation: "payment",
		method:    http.MethodGet,
		path:      "/v1/payments/" + url.PathEscape(paymentId),
		headers:   m.headers(),
	})
	if err != nil {
		return models.GatewayReference{}, err
	}
	buyOrder := resp.Get("external_reference").String()
	if buyOrder == "" {
		return models.GatewayReference{}, errors.Wrap(models.BadParameterError, "mercadopago payment without external_reference")
	}
	return models.GatewayReference{BuyOrder: buyOrder}, nil
}
