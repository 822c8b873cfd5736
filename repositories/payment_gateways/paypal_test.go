package payment_gateways

import (
	"context"
	"testing"
	"time"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portal-apr/portal-apr-backend/infra"
	"github.com/portal-apr/portal-apr-backend/models"
)

const paypalTestUrl = "https://paypal.test"

func newTestPaypal() *Paypal {
	p := NewPaypal(context.Background(), infra.PaypalConfig{
		BaseUrl:      paypalTestUrl,
		ClientId:     "id",
		ClientSecret: "secret",
		Currency:     "USD",
		ClpPerUnit:   1000,
	}, nil)
	p.http.delay = time.Millisecond
	return p
}

func mockPaypalToken() {
	gock.New(paypalTestUrl).
		Post("/v1/oauth2/token").
		Reply(200).
		JSON(map[string]any{"access_token": "AT", "token_type": "Bearer", "expires_in": 3600})
}

func TestPaypalCreateAndCapture(t *testing.T) {
	defer gock.Off()
	mockPaypalToken()
	gock.New(paypalTestUrl).
		Post("/v2/checkout/orders").
		MatchHeader("Authorization", "Bearer AT").
		Reply(201).
		JSON(map[string]any{
			"id":     "ORDER1",
			"status": "CREATED",
			"links": []map[string]string{
				{"rel": "self", "href": "https://paypal.test/v2/checkout/orders/ORDER1"},
				{"rel": "approve", "href": "https://paypal.test/checkoutnow?token=ORDER1"},
			},
		})
	gock.New(paypalTestUrl).
		Post("/v2/checkout/orders/ORDER1/capture").
		Reply(201).
		JSON(map[string]any{
			"id":     "ORDER1",
			"status": "COMPLETED",
			"purchase_units": []map[string]any{{
				"reference_id": "BO-9",
				"payments": map[string]any{"captures": []map[string]any{{
					"id":     "CAP1",
					"status": "COMPLETED",
					"amount": map[string]string{"currency_code": "USD", "value": "12.50"},
				}}},
			}},
		})

	p := newTestPaypal()
	trx, err := p.CreateTransaction(context.Background(), models.GatewayTransactionRequest{BuyOrder: "BO-9", Amount: 12500})
	require.NoError(t, err)
	assert.Equal(t, "ORDER1", trx.Token)
	assert.Equal(t, "https://paypal.test/checkoutnow?token=ORDER1", trx.RedirectUrl)

	result, err := p.Commit(context.Background(), models.GatewayReference{Token: "ORDER1", Amount: 12500})
	require.NoError(t, err)
	assert.Equal(t, models.GatewayStatusApproved, result.Status)
	assert.Equal(t, "CAP1", result.TransactionId)
	assert.Equal(t, int64(12500), result.Amount)
	assert.True(t, gock.IsDone())
}

func TestPaypalAmountMismatch(t *testing.T) {
	defer gock.Off()
	mockPaypalToken()
	gock.New(paypalTestUrl).
		Get("/v2/checkout/orders/ORDER2").
		Reply(200).
		JSON(map[string]any{
			"id":     "ORDER2",
			"status": "COMPLETED",
			"purchase_units": []map[string]any{{
				"reference_id": "BO-10",
				"amount":       map[string]string{"currency_code": "USD", "value": "1.00"},
			}},
		})

	result, err := newTestPaypal().GetStatus(context.Background(), models.GatewayReference{Token: "ORDER2", Amount: 12500})
	require.NoError(t, err)
	assert.Equal(t, models.GatewayStatusApproved, result.Status)
	assert.NotEqual(t, int64(12500), result.Amount)
}

func TestPaypalConvert(t *testing.T) {
	p := newTestPaypal()
	assert.Equal(t, "12.50", p.convert(12500))
	assert.Equal(t, "0.99", p.convert(987))
}
