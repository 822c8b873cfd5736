package payment_gateways

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"

	"github.com/portal-apr/portal-apr-backend/infra"
	"github.com/portal-apr/portal-apr-backend/models"
)

const (
	WebpayIntegrationUrl = "https://webpay3gint.transbank.cl"
	webpayTransactions   = "/rswebpaytransaction/api/webpay/v1.2/transactions"
)

// Webpay is a Transbank Webpay Plus client. Transactions are created, the user pays on the
// Transbank form, and the merchant commits the transaction when the user comes back.
type Webpay struct {
	http   *httpClient
	config infra.WebpayConfig
}

func NewWebpay(config infra.WebpayConfig, client *http.Client) *Webpay {
	baseUrl := config.BaseUrl
	if baseUrl == "" {
		baseUrl = WebpayIntegrationUrl
	}
	return &Webpay{
		http:   newHttpClient(models.MetodoWebpay, baseUrl, client),
		config: config,
	}
}

func (w *Webpay) Name() models.MetodoPago {
	return models.MetodoWebpay
}

func (w *Webpay) headers() map[string]string {
	return map[string]string{
		"Tbk-Api-Key-Id":     w.config.CommerceCode,
		"Tbk-Api-Key-Secret": w.config.ApiKeySecret,
	}
}

func (w *Webpay) CreateTransaction(ctx context.Context, req models.GatewayTransactionRequest) (models.GatewayTransaction, error) {
	body, err := json.Marshal(map[string]any{
		"buy_order":  req.BuyOrder,
		"session_id": req.SessionId,
		"amount":     req.Amount,
		"return_url": req.ReturnUrl,
	})
	if err != nil {
		return models.GatewayTransaction{}, err
	}

	resp, err := w.http.do(ctx, gatewayRequest{
		operation:   "create",
		method:      http.MethodPost,
		path:        webpayTransactions,
		contentType: "application/json",
		headers:     w.headers(),
		body:        body,
	})
	if err != nil {
		return models.GatewayTransaction{}, err
	}

	token := resp.Get("token").String()
	formUrl := resp.Get("url").String()
	if token == "" || formUrl == "" {
		return models.GatewayTransaction{}, errors.Wrap(models.ErrGatewayRejected, "webpay create: missing token or url")
	}
	return models.GatewayTransaction{
		Token:       token,
		RedirectUrl: formUrl + "?token_ws=" + url.QueryEscape(token),
	}, nil
}

func (w *Webpay) Commit(ctx context.Context, ref models.GatewayReference) (models.GatewayTransactionResult, error) {
	resp, err := w.http.do(ctx, gatewayRequest{
		operation:   "commit",
		method:      http.MethodPut,
		path:        webpayTransactions + "/" + url.PathEscape(ref.Token),
		contentType: "application/json",
		headers:     w.headers(),
	})
	if err != nil {
		return models.GatewayTransactionResult{}, err
	}
	return adaptWebpayResult(resp), nil
}

func (w *Webpay) GetStatus(ctx context.Context, ref models.GatewayReference) (models.GatewayTransactionResult, error) {
	resp, err := w.http.do(ctx, gatewayRequest{
		operation: "status",
		method:    http.MethodGet,
		path:      webpayTransactions + "/" + url.PathEscape(ref.Token),
		headers:   w.headers(),
	})
	if err != nil {
		return models.GatewayTransactionResult{}, err
	}
	return adaptWebpayResult(resp), nil
}

func adaptWebpayResult(resp gjson.Result) models.GatewayTransactionResult {
	result := models.GatewayTransactionResult{
		BuyOrder:      resp.Get("buy_order").String(),
		Amount:        resp.Get("amount").Int(),
		TransactionId: resp.Get("authorization_code").String(),
		Detail:        resp.Get("status").String(),
	}
	if t, err := time.Parse(time.RFC3339, resp.Get("transaction_date").String()); err == nil {
		result.ProcessedAt = t
	}

	switch resp.Get("status").String() {
	case "AUTHORIZED":
		if resp.Get("response_code").Int() == 0 {
			result.Status = models.GatewayStatusApproved
		} else {
			result.Status = models.GatewayStatusRejected
		}
	case "INITIALIZED":
		result.Status = models.GatewayStatusPending
	case "FAILED", "REVERSED", "NULLIFIED", "PARTIALLY_NULLIFIED", "CAPTURED_NULLIFIED":
		result.Status = models.GatewayStatusRejected
	default:
		result.Status = models.GatewayStatusUnknown
	}
	if result.Status == models.GatewayStatusApproved && result.TransactionId == "" {
		result.TransactionId = result.BuyOrder
	}
	return result
}

// A normal return carries token_ws. When the user aborts on the Transbank form, the return
// carries TBK_TOKEN and TBK_ORDEN_COMPRA instead.
func (w *Webpay) ReferenceFromCallback(payload map[string]string) (models.GatewayReference, error) {
	if token := payload["token_ws"]; token != "" {
		return models.GatewayReference{Token: token}, nil
	}
	if token := payload["TBK_TOKEN"]; token != "" {
		return models.GatewayReference{Token: token, BuyOrder: payload["TBK_ORDEN_COMPRA"]}, nil
	}
	if buyOrder := payload["TBK_ORDEN_COMPRA"]; buyOrder != "" {
		// timeout on the form: no token at all
		return models.GatewayReference{BuyOrder: buyOrder}, nil
	}
	return models.GatewayReference{}, errors.Wrap(models.BadParameterError, "webpay callback without token")
}
