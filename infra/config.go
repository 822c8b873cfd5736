package infra

import (
	"fmt"
	"time"
)

type PgConfig struct {
	ConnectionString   string
	Database           string
	Hostname           string
	Password           string
	Port               string
	User               string
	MaxPoolConnections int
	SslMode            string
}

func (config PgConfig) GetConnectionString() string {
	if config.ConnectionString != "" {
		return config.ConnectionString
	}

	if config.SslMode == "" {
		config.SslMode = "prefer"
	}

	return fmt.Sprintf("host=%s user=%s password=%s database=%s sslmode=%s port=%s",
		config.Hostname, config.User, config.Password, config.Database, config.SslMode, config.Port)
}

type TelemetryConfiguration struct {
	Enabled         bool
	ApplicationName string
	SamplingMap     TelemetrySamplingMap
}

type TelemetrySamplingMap struct {
	HttpRoutes map[string]float64
	SpanNames  map[string]float64
}

type BillingConfiguration struct {
	// cron expression of the monthly issuance of boletas
	BillingCron string
	// cron expression of the daily overdue sweep
	OverdueCron string
	DueDays     int
	// blob bucket url where period exports are written (file://, mem://, s3://, gs://)
	ExportBucketUrl string
}

type ReconciliationConfiguration struct {
	Interval          time.Duration
	PendingPaymentTTL time.Duration
}

type WebpayConfig struct {
	BaseUrl      string
	CommerceCode string
	ApiKeySecret string
}

type FlowConfig struct {
	BaseUrl   string
	ApiKey    string
	SecretKey string
}

type MercadoPagoConfig struct {
	BaseUrl     string
	AccessToken string
}

type PaypalConfig struct {
	BaseUrl      string
	ClientId     string
	ClientSecret string
	// CLP amounts are converted to this currency at the given rate
	Currency   string
	ClpPerUnit float64
}

type GatewaysConfiguration struct {
	Webpay      WebpayConfig
	Flow        FlowConfig
	MercadoPago MercadoPagoConfig
	Paypal      PaypalConfig
	// registers the fake gateway, for development
	EnableFake bool
	// base url of this api, used to build the gateway return and notification urls
	PublicApiUrl string
	// base url of the portal app, where users land after paying
	PortalAppUrl string
}
