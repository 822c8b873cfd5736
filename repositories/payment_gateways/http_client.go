package payment_gateways

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/utils"
)

const (
	defaultRequestTimeout = 15 * time.Second
	defaultRatePerSecond  = 5
	maxResponseSize       = 1 << 20
)

type gatewayRequest struct {
	operation   string
	method      string
	path        string
	contentType string
	headers     map[string]string
	body        []byte
}

// httpClient is the plumbing shared by the gateway clients: a client side rate limit, retries
// with exponential backoff on transport errors and 5xx responses, and json response parsing.
type httpClient struct {
	gateway models.MetodoPago
	baseUrl string
	client  *http.Client
	limiter *rate.Limiter
	retries uint
	delay   time.Duration
}

// NewTracedHttpClient is the client given to the gateways: each request to a gateway is a
// client span of the provider, and the trace context is propagated in the headers.
func NewTracedHttpClient(tracerProvider trace.TracerProvider) *http.Client {
	return &http.Client{
		Timeout: defaultRequestTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithTracerProvider(tracerProvider),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		),
	}
}

func newHttpClient(gateway models.MetodoPago, baseUrl string, client *http.Client) *httpClient {
	if client == nil {
		client = &http.Client{Timeout: defaultRequestTimeout}
	}
	return &httpClient{
		gateway: gateway,
		baseUrl: strings.TrimSuffix(baseUrl, "/"),
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(defaultRatePerSecond), defaultRatePerSecond),
		retries: 3,
		delay:   200 * time.Millisecond,
	}
}

type statusError struct {
	status int
	body   string
}

func (e statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.status, e.body)
}

func (c *httpClient) do(ctx context.Context, req gatewayRequest) (gjson.Result, error) {
	start := time.Now()
	var response gjson.Result

	err := retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			body, err := c.roundTrip(ctx, req)
			if err != nil {
				return err
			}
			if len(bytes.TrimSpace(body)) > 0 && !gjson.ValidBytes(body) {
				return retry.Unrecoverable(errors.Newf("%s %s returned an invalid json body", req.method, req.path))
			}
			response = gjson.ParseBytes(body)
			return nil
		},
		retry.Attempts(c.retries),
		retry.LastErrorOnly(true),
		retry.Delay(c.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			utils.LoggerFromContext(ctx).WarnContext(ctx, "retrying gateway request",
				"gateway", c.gateway, "operation", req.operation, "attempt", n+1, "error", err.Error())
		}),
	)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	utils.MetricGatewayRequestLatency.
		With(prometheus.Labels{"gateway": string(c.gateway), "operation": req.operation, "outcome": outcome}).
		Observe(time.Since(start).Seconds())

	if err != nil {
		return gjson.Result{}, c.classify(req, err)
	}
	return response, nil
}

func (c *httpClient) roundTrip(ctx context.Context, req gatewayRequest) ([]byte, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseUrl+req.path, body)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		// transport errors are retried
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, statusError{status: resp.StatusCode, body: string(respBody)}
	case resp.StatusCode >= 400:
		return nil, retry.Unrecoverable(statusError{status: resp.StatusCode, body: string(respBody)})
	}
	return respBody, nil
}

func (c *httpClient) classify(req gatewayRequest, err error) error {
	var statusErr statusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.status == http.StatusNotFound:
			return errors.Wrapf(models.ErrGatewayTransactionGone, "%s %s: %s", c.gateway, req.operation, statusErr.Error())
		case statusErr.status < 500 && statusErr.status != http.StatusTooManyRequests:
			return errors.Wrapf(models.ErrGatewayRejected, "%s %s: %s", c.gateway, req.operation, statusErr.Error())
		}
	}
	return errors.Wrapf(models.ErrGatewayUnavailable, "%s %s: %s", c.gateway, req.operation, err.Error())
}
