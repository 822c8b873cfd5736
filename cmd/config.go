package cmd

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/portal-apr/portal-apr-backend/infra"
	"github.com/portal-apr/portal-apr-backend/usecases/worker_jobs"
	"github.com/portal-apr/portal-apr-backend/utils"
)

const appName = "portal-apr-backend"

// CompiledConfig holds the values set at build time with -ldflags
type CompiledConfig struct {
	Version         string
	SegmentWriteKey string
}

type ServerConfig struct {
	jwtSigningKey       string
	jwtSigningKeyFile   string
	loggingFormat       string
	sentryDsn           string
	enableTracing       bool
	otelSamplingRates   string
	profilingToken      string
	createAdminEmail    string
	createAdminName     string
	createAdminPassword string
}

func serverConfigFromEnv() ServerConfig {
	return ServerConfig{
		jwtSigningKey:       utils.GetEnv("AUTHENTICATION_JWT_SIGNING_KEY", ""),
		jwtSigningKeyFile:   utils.GetEnv("AUTHENTICATION_JWT_SIGNING_KEY_FILE", ""),
		loggingFormat:       utils.GetEnv("LOGGING_FORMAT", "text"),
		sentryDsn:           utils.GetEnv("SENTRY_DSN", ""),
		enableTracing:       utils.GetEnv("ENABLE_TRACING", false),
		otelSamplingRates:   utils.GetEnv("OTEL_SAMPLING_RATES", ""),
		profilingToken:      utils.GetEnv("DEBUG_PROFILING_TOKEN", ""),
		createAdminEmail:    utils.GetEnv("CREATE_ADMIN_EMAIL", ""),
		createAdminName:     utils.GetEnv("CREATE_ADMIN_NAME", "Administrador"),
		createAdminPassword: utils.GetEnv("CREATE_ADMIN_PASSWORD", ""),
	}
}

func (config ServerConfig) Validate() error {
	if config.createAdminEmail != "" && len(config.createAdminPassword) < 8 {
		return errors.New("CREATE_ADMIN_PASSWORD must be at least 8 characters long when CREATE_ADMIN_EMAIL is set")
	}
	if _, err := parseSamplingRates(config.otelSamplingRates); err != nil {
		return err
	}
	return nil
}

func pgConfigFromEnv() infra.PgConfig {
	return infra.PgConfig{
		ConnectionString:   utils.GetEnv("PG_CONNECTION_STRING", ""),
		Database:           utils.GetEnv("PG_DATABASE", "portal"),
		Hostname:           utils.GetEnv("PG_HOSTNAME", ""),
		Password:           utils.GetEnv("PG_PASSWORD", ""),
		Port:               utils.GetEnv("PG_PORT", "5432"),
		User:               utils.GetEnv("PG_USER", ""),
		MaxPoolConnections: utils.GetEnv("PG_MAX_POOL_SIZE", infra.DEFAULT_MAX_CONNECTIONS),
		SslMode:            utils.GetEnv("PG_SSL_MODE", "prefer"),
	}
}

func billingConfigFromEnv() infra.BillingConfiguration {
	return infra.BillingConfiguration{
		BillingCron:     utils.GetEnv("BILLING_CRON", worker_jobs.DEFAULT_BILLING_CRON),
		OverdueCron:     utils.GetEnv("OVERDUE_CRON", worker_jobs.DEFAULT_OVERDUE_CRON),
		DueDays:         utils.GetEnv("BOLETA_DUE_DAYS", 20),
		ExportBucketUrl: utils.GetEnv("EXPORT_BUCKET_URL", "file:///tmp/portal-exports"),
	}
}

func reconciliationConfigFromEnv() infra.ReconciliationConfiguration {
	return infra.ReconciliationConfiguration{
		Interval:          time.Duration(utils.GetEnv("RECONCILIATION_INTERVAL_SECOND", 30)) * time.Second,
		PendingPaymentTTL: time.Duration(utils.GetEnv("PENDING_PAYMENT_TTL_MINUTE", 30)) * time.Minute,
	}
}

func gatewaysConfigFromEnv(env string) infra.GatewaysConfiguration {
	return infra.GatewaysConfiguration{
		Webpay: infra.WebpayConfig{
			BaseUrl:      utils.GetEnv("WEBPAY_BASE_URL", ""),
			CommerceCode: utils.GetEnv("WEBPAY_COMMERCE_CODE", ""),
			ApiKeySecret: utils.GetEnv("WEBPAY_API_KEY_SECRET", ""),
		},
		Flow: infra.FlowConfig{
			BaseUrl:   utils.GetEnv("FLOW_BASE_URL", ""),
			ApiKey:    utils.GetEnv("FLOW_API_KEY", ""),
			SecretKey: utils.GetEnv("FLOW_SECRET_KEY", ""),
		},
		MercadoPago: infra.MercadoPagoConfig{
			BaseUrl:     utils.GetEnv("MERCADOPAGO_BASE_URL", ""),
			AccessToken: utils.GetEnv("MERCADOPAGO_ACCESS_TOKEN", ""),
		},
		Paypal: infra.PaypalConfig{
			BaseUrl:      utils.GetEnv("PAYPAL_BASE_URL", ""),
			ClientId:     utils.GetEnv("PAYPAL_CLIENT_ID", ""),
			ClientSecret: utils.GetEnv("PAYPAL_CLIENT_SECRET", ""),
			Currency:     utils.GetEnv("PAYPAL_CURRENCY", "USD"),
			ClpPerUnit:   utils.GetEnv("PAYPAL_CLP_PER_UNIT", 950.0),
		},
		EnableFake:   utils.GetEnv("ENABLE_FAKE_GATEWAY", env == "development"),
		PublicApiUrl: utils.GetEnv("PUBLIC_API_URL", "http://localhost:8080"),
		PortalAppUrl: utils.GetEnv("PORTAL_APP_URL", "http://localhost:5173"),
	}
}

// parseSamplingRates reads "key=rate" pairs separated by commas. Keys starting with a slash
// are http route prefixes, the others are span names.
func parseSamplingRates(raw string) (infra.TelemetrySamplingMap, error) {
	samplingMap := infra.TelemetrySamplingMap{
		HttpRoutes: make(map[string]float64),
		SpanNames:  make(map[string]float64),
	}
	if strings.TrimSpace(raw) == "" {
		return samplingMap, nil
	}

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || key == "" {
			return samplingMap, errors.Newf("invalid sampling rate %q, expected key=rate", pair)
		}
		rate, err := strconv.ParseFloat(value, 64)
		if err != nil || rate < 0 || rate > 1 {
			return samplingMap, errors.Newf("invalid sampling rate %q, the rate must be between 0 and 1", pair)
		}
		if strings.HasPrefix(key, "/") {
			samplingMap.HttpRoutes[key] = rate
		} else {
			samplingMap.SpanNames[key] = rate
		}
	}
	return samplingMap, nil
}
