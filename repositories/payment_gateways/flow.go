package payment_gateways

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/portal-apr/portal-apr-backend/infra"
	"github.com/portal-apr/portal-apr-backend/models"
)

const FlowSandboxUrl = "https://sandbox.flow.cl/api"

// Flow payment statuses
const (
	flowStatusPending   = 1
	flowStatusPaid      = 2
	flowStatusRejected  = 3
	flowStatusCancelled = 4
)

type Flow struct {
	http   *httpClient
	config infra.FlowConfig
}

func NewFlow(config infra.FlowConfig, client *http.Client) *Flow {
	baseUrl := config.BaseUrl
	if baseUrl == "" {
		baseUrl = FlowSandboxUrl
	}
	return &Flow{
		http:   newHttpClient(models.MetodoFlow, baseUrl, client),
		config: config,
	}
}

func (f *Flow) Name() models.MetodoPago {
	return models.MetodoFlow
}

// sign adds the apiKey and the "s" signature: the HMAC-SHA256 of the concatenated
// key+value pairs, sorted by key.
func (f *Flow) sign(params url.Values) url.Values {
	params.Set("apiKey", f.config.ApiKey)
	params.Del("s")

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var toSign strings.Builder
	for _, k := range keys {
		toSign.WriteString(k)
		toSign.WriteString(params.Get(k))
	}

	mac := hmac.New(sha256.New, []byte(f.config.SecretKey))
	mac.Write([]byte(toSign.String()))
	params.Set("s", hex.EncodeToString(mac.Sum(nil)))
	return params
}

func (f *Flow) CreateTransaction(ctx context.Context, req models.GatewayTransactionRequest) (models.GatewayTransaction, error) {
	params := f.sign(url.Values{
		"commerceOrder":   {req.BuyOrder},
		"subject":         {req.Subject},
		"currency":        {"CLP"},
		"amount":          {strconv.FormatInt(req.Amount, 10)},
		"email":           {req.Email},
		"urlConfirmation": {req.NotifyUrl},
		"urlReturn":       {req.ReturnUrl},
	})

	resp, err := f.http.do(ctx, gatewayRequest{
		operation:   "create",
		method:      http.MethodPost,
		path:        "/payment/create",
		contentType: "application/x-www-form-urlencoded",
		body:        []byte(params.Encode()),
	})
	if err != nil {
		return models.GatewayTransaction{}, err
	}

	token := resp.Get("token").String()
	payUrl := resp.Get("url").String()
	if token == "" || payUrl == "" {
		return models.GatewayTransaction{}, errors.Wrap(models.ErrGatewayRejected, "flow create: missing token or url")
	}
	return models.GatewayTransaction{
		Token:       token,
		RedirectUrl: payUrl + "?token=" + url.QueryEscape(token),
	}, nil
}

func (f *Flow) GetStatus(ctx context.Context, ref models.GatewayReference) (models.GatewayTransactionResult, error) {
	params := f.sign(url.Values{"token": {ref.Token}})

	resp, err := f.http.do(ctx, gatewayRequest{
		operation: "status",
		method:    http.MethodGet,
		path:      "/payment/getStatus?" + params.Encode(),
	})
	if err != nil {
		return models.GatewayTransactionResult{}, err
	}

	result := models.GatewayTransactionResult{
		TransactionId: resp.Get("flowOrder").String(),
		BuyOrder:      resp.Get("commerceOrder").String(),
		Amount:        resp.Get("amount").Int(),
		Detail:        resp.Get("paymentData.media").String(),
	}
	switch resp.Get("status").Int() {
	case flowStatusPaid:
		result.Status = models.GatewayStatusApproved
	case flowStatusPending:
		result.Status = models.GatewayStatusPending
	case flowStatusRejected, flowStatusCancelled:
		result.Status = models.GatewayStatusRejected
	default:
		result.Status = models.GatewayStatusUnknown
	}
	return result, nil
}

// Flow posts the token to both the confirmation and the return urls
func (f *Flow) ReferenceFromCallback(payload map[string]string) (models.GatewayReference, error) {
	if token := payload["token"]; token != "" {
		return models.GatewayReference{Token: token}, nil
	}
	return models.GatewayReference{}, errors.Wrap(models.BadParameterError, "flow callback without token")
}
