package payment_gateways

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/portal-apr/portal-apr-backend/infra"
	"github.com/portal-apr/portal-apr-backend/models"
)

const PaypalSandboxUrl = "https://api-m.sandbox.paypal.com"

// Paypal uses the orders v2 api. PayPal does not settle in CLP, so amounts are converted
// to the configured currency and compared in that currency.
type Paypal struct {
	http   *httpClient
	config infra.PaypalConfig
}

func NewPaypal(ctx context.Context, config infra.PaypalConfig, client *http.Client) *Paypal {
	baseUrl := config.BaseUrl
	if baseUrl == "" {
		baseUrl = PaypalSandboxUrl
	}
	if config.Currency == "" {
		config.Currency = "USD"
	}
	if config.ClpPerUnit <= 0 {
		config.ClpPerUnit = 950
	}

	oauthConfig := clientcredentials.Config{
		ClientID:     config.ClientId,
		ClientSecret: config.ClientSecret,
		TokenURL:     baseUrl + "/v1/oauth2/token",
	}
	if client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, client)
	}
	authClient := oauthConfig.Client(ctx)
	authClient.Timeout = defaultRequestTimeout

	return &Paypal{
		http:   newHttpClient(models.MetodoPaypal, baseUrl, authClient),
		config: config,
	}
}

func (p *Paypal) Name() models.MetodoPago {
	return models.MetodoPaypal
}

func (p *Paypal) convert(amount int64) string {
	value := float64(amount) / p.config.ClpPerUnit
	return strconv.FormatFloat(math.Round(value*100)/100, 'f', 2, 64)
}

func (p *Paypal) CreateTransaction(ctx context.Context, req models.GatewayTransactionRequest) (models.GatewayTransaction, error) {
	body, err := json.Marshal(map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"reference_id": req.BuyOrder,
			"custom_id":    req.BuyOrder,
			"description":  req.Subject,
			"amount": map[string]string{
				"currency_code": p.config.Currency,
				"value":         p.convert(req.Amount),
			},
		}},
		"application_context": map[string]string{
			"return_url":  req.ReturnUrl,
			"cancel_url":  req.CancelUrl,
			"user_action": "PAY_NOW",
		},
	})
	if err != nil {
		return models.GatewayTransaction{}, err
	}

	resp, err := p.http.do(ctx, gatewayRequest{
		operation:   "create",
		method:      http.MethodPost,
		path:        "/v2/checkout/orders",
		contentType: "application/json",
		headers:     map[string]string{"PayPal-Request-Id": req.BuyOrder},
		body:        body,
	})
	if err != nil {
		return models.GatewayTransaction{}, err
	}

	id := resp.Get("id").String()
	approveUrl := resp.Get(`links.#(rel=="approve").href`).String()
	if approveUrl == "" {
		approveUrl = resp.Get(`links.#(rel=="payer-action").href`).String()
	}
	if id == "" || approveUrl == "" {
		return models.GatewayTransaction{}, errors.Wrap(models.ErrGatewayRejected, "paypal create: missing order id or approve link")
	}
	return models.GatewayTransaction{Token: id, RedirectUrl: approveUrl}, nil
}

func (p *Paypal) Commit(ctx context.Context, ref models.GatewayReference) (models.GatewayTransactionResult, error) {
	resp, err := p.http.do(ctx, gatewayRequest{
		operation:   "capture",
		method:      http.MethodPost,
		path:        fmt.Sprintf("/v2/checkout/orders/%s/capture", url.PathEscape(ref.Token)),
		contentType: "application/json",
		headers:     map[string]string{"PayPal-Request-Id": "capture-" + ref.Token},
		body:        []byte("{}"),
	})
	if err != nil {
		return models.GatewayTransactionResult{}, err
	}
	return p.adaptOrder(resp, ref), nil
}

func (p *Paypal) GetStatus(ctx context.Context, ref models.GatewayReference) (models.GatewayTransactionResult, error) {
	resp, err := p.http.do(ctx, gatewayRequest{
		operation: "status",
		method:    http.MethodGet,
		path:      "/v2/checkout/orders/" + url.PathEscape(ref.Token),
	})
	if err != nil {
		return models.GatewayTransactionResult{}, err
	}
	return p.adaptOrder(resp, ref), nil
}

func (p *Paypal) adaptOrder(order gjson.Result, ref models.GatewayReference) models.GatewayTransactionResult {
	unit := order.Get("purchase_units.0")
	capture := unit.Get("payments.captures.0")

	result := models.GatewayTransactionResult{
		BuyOrder: unit.Get("reference_id").String(),
		Detail:   order.Get("status").String(),
	}

	// report the expected CLP amount only when the order amount matches its conversion
	value := capture.Get("amount.value").String()
	if value == "" {
		value = unit.Get("amount.value").String()
	}
	if value == p.convert(ref.Amount) {
		result.Amount = ref.Amount
	} else {
		result.Amount = -1
	}

	switch order.Get("status").String() {
	case "COMPLETED":
		if capture.Exists() && capture.Get("status").String() != "COMPLETED" {
			result.Status = models.GatewayStatusPending
			break
		}
		result.Status = models.GatewayStatusApproved
		result.TransactionId = capture.Get("id").String()
		if t, err := time.Parse(time.RFC3339, capture.Get("create_time").String()); err == nil {
			result.ProcessedAt = t
		}
	case "CREATED", "SAVED", "APPROVED", "PAYER_ACTION_REQUIRED":
		result.Status = models.GatewayStatusPending
	case "VOIDED":
		result.Status = models.GatewayStatusRejected
	default:
		result.Status = models.GatewayStatusUnknown
	}
	return result
}

// PayPal returns the user with the order id in the "token" query parameter
func (p *Paypal) ReferenceFromCallback(payload map[string]string) (models.GatewayReference, error) {
	if token := payload["token"]; token != "" {
		return models.GatewayReference{Token: token}, nil
	}
	return models.GatewayReference{}, errors.Wrap(models.BadParameterError, "paypal callback without token")
}
