package cmd

import (
	"context"
	"crypto/rsa"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/portal-apr/portal-apr-backend/infra"
	"github.com/portal-apr/portal-apr-backend/repositories"
	"github.com/portal-apr/portal-apr-backend/repositories/payment_gateways"
	"github.com/portal-apr/portal-apr-backend/usecases"
	"github.com/portal-apr/portal-apr-backend/utils"
)

// newPaymentGateways registers the gateways that have credentials. The fake gateway is only
// registered on demand.
func newPaymentGateways(ctx context.Context, config infra.GatewaysConfiguration,
	telemetry infra.TelemetryRessources,
) []payment_gateways.PaymentGateway {
	logger := utils.LoggerFromContext(ctx)
	gateways := make([]payment_gateways.PaymentGateway, 0, 5)
	client := payment_gateways.NewTracedHttpClient(telemetry.TracerProvider)

	if config.Webpay.CommerceCode != "" {
		gateways = append(gateways, payment_gateways.NewWebpay(config.Webpay, client))
	}
	if config.Flow.ApiKey != "" {
		gateways = append(gateways, payment_gateways.NewFlow(config.Flow, client))
	}
	if config.MercadoPago.AccessToken != "" {
		gateways = append(gateways, payment_gateways.NewMercadoPago(config.MercadoPago, client))
	}
	if config.Paypal.ClientId != "" {
		gateways = append(gateways, payment_gateways.NewPaypal(ctx, config.Paypal, client))
	}
	if config.EnableFake {
		logger.WarnContext(ctx, "the fake payment gateway is enabled")
		gateways = append(gateways, payment_gateways.NewFake())
	}

	names := make([]string, 0, len(gateways))
	for _, g := range gateways {
		names = append(names, string(g.Name()))
	}
	logger.InfoContext(ctx, "payment gateways", slog.Any("gateways", names))
	return gateways
}

func openPool(ctx context.Context, pgConfig infra.PgConfig, telemetry infra.TelemetryRessources) (*pgxpool.Pool, error) {
	return infra.NewPostgresConnectionPool(ctx, pgConfig.GetConnectionString(),
		telemetry.TracerProvider, pgConfig.MaxPoolConnections)
}

type usecasesConfig struct {
	billing             infra.BillingConfiguration
	reconciliation      infra.ReconciliationConfiguration
	gateways            infra.GatewaysConfiguration
	tokenLifetimeMinute int
}

func newUsecases(repos repositories.Repositories, config usecasesConfig) usecases.Usecases {
	return usecases.NewUsecases(repos,
		usecases.WithAppName(appName),
		usecases.WithDueDays(config.billing.DueDays),
		usecases.WithExportBucketUrl(config.billing.ExportBucketUrl),
		usecases.WithTokenLifetimeMinute(config.tokenLifetimeMinute),
		usecases.WithPayments(usecases.PaymentsConfig{
			PublicApiUrl: config.gateways.PublicApiUrl,
			PortalAppUrl: config.gateways.PortalAppUrl,
			PendingTtl:   config.reconciliation.PendingPaymentTTL,
		}),
	)
}

// newRepositories wires the repositories. The river client and the signing key are optional:
// commands that neither enqueue jobs nor sign tokens pass nil.
func newRepositories(
	ctx context.Context,
	pool *pgxpool.Pool,
	gateways infra.GatewaysConfiguration,
	telemetry infra.TelemetryRessources,
	signingKey *rsa.PrivateKey,
	riverOpt ...repositories.Option,
) repositories.Repositories {
	opts := append([]repositories.Option{
		repositories.WithPaymentGateways(newPaymentGateways(ctx, gateways, telemetry)...),
	}, riverOpt...)
	if signingKey != nil {
		opts = append(opts, repositories.WithJwtSigningKey(signingKey))
	}
	return repositories.NewRepositories(pool, opts...)
}
