package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/portal-apr/portal-apr-backend/api"
	"github.com/portal-apr/portal-apr-backend/infra"
	"github.com/portal-apr/portal-apr-backend/repositories"
	"github.com/portal-apr/portal-apr-backend/utils"
)

func RunServer(config CompiledConfig) error {
	// This is where we read the environment variables and set up the configuration for the application.
	apiConfig := api.Configuration{
		Env:                 utils.GetEnv("ENV", "development"),
		AppName:             appName,
		AppVersion:          config.Version,
		Port:                utils.GetRequiredEnv[string]("PORT"),
		PublicApiUrl:        utils.GetEnv("PUBLIC_API_URL", "http://localhost:8080"),
		PortalAppUrl:        utils.GetEnv("PORTAL_APP_URL", "http://localhost:5173"),
		RequestLoggingLevel: utils.GetEnv("REQUEST_LOGGING_LEVEL", "all"),
		TokenLifetimeMinute: utils.GetEnv("TOKEN_LIFETIME_MINUTE", 60*2),
		SegmentWriteKey:     utils.GetEnv("SEGMENT_WRITE_KEY", config.SegmentWriteKey),
		DisableSegment:      utils.GetEnv("DISABLE_SEGMENT", false),
		DefaultTimeout:      time.Duration(utils.GetEnv("DEFAULT_TIMEOUT_SECOND", 5)) * time.Second,
		PaymentTimeout:      time.Duration(utils.GetEnv("PAYMENT_TIMEOUT_SECOND", 30)) * time.Second,
		EnablePrometheus:    utils.GetEnv("ENABLE_PROMETHEUS", true),
	}
	pgConfig := pgConfigFromEnv()
	serverConfig := serverConfigFromEnv()
	gatewaysConfig := gatewaysConfigFromEnv(apiConfig.Env)

	logger := utils.NewLogger(serverConfig.loggingFormat)
	ctx := utils.StoreLoggerInContext(context.Background(), logger)

	if err := serverConfig.Validate(); err != nil {
		logger.ErrorContext(ctx, "invalid server configuration", "error", err.Error())
		return err
	}
	samplingMap, _ := parseSamplingRates(serverConfig.otelSamplingRates)

	signingKey, err := infra.ReadParseOrGenerateSigningKey(logger,
		serverConfig.jwtSigningKey, serverConfig.jwtSigningKeyFile)
	if err != nil {
		logger.ErrorContext(ctx, "could not load the jwt signing key", "error", err.Error())
		return err
	}

	infra.SetupSentry(serverConfig.sentryDsn, apiConfig.Env, config.Version)
	defer sentry.Flush(3 * time.Second)

	telemetryRessources, err := infra.InitTelemetry(infra.TelemetryConfiguration{
		ApplicationName: apiConfig.AppName,
		Enabled:         serverConfig.enableTracing,
		SamplingMap:     samplingMap,
	}, config.Version)
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		telemetryRessources = infra.NoopTelemetry()
	}

	pool, err := openPool(ctx, pgConfig, telemetryRessources)
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}
	defer pool.Close()

	// insert-only client: the api enqueues the jobs the worker runs
	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{})
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	repos := newRepositories(ctx, pool, gatewaysConfig, telemetryRessources, signingKey,
		repositories.WithRiverClient(riverClient))
	uc := newUsecases(repos, usecasesConfig{
		billing:             billingConfigFromEnv(),
		reconciliation:      reconciliationConfigFromEnv(),
		gateways:            gatewaysConfig,
		tokenLifetimeMinute: apiConfig.TokenLifetimeMinute,
	})

	////////////////////////////////////////////////////////////
	// Seed the database
	////////////////////////////////////////////////////////////
	if serverConfig.createAdminEmail != "" {
		seedUsecase := uc.NewSeedUseCase()
		if err := seedUsecase.SeedAdmin(ctx, serverConfig.createAdminEmail,
			serverConfig.createAdminName, serverConfig.createAdminPassword); err != nil {
			utils.LogAndReportSentryError(ctx, err)
			return err
		}
	}

	deps := api.InitDependencies(apiConfig, uc)

	router := api.InitRouterMiddlewares(ctx, apiConfig, deps.SegmentClient, telemetryRessources)
	utils.SetupProfilerEndpoints(router, serverConfig.profilingToken)
	server := api.NewServer(router, apiConfig, uc, deps.Authentication)

	notify, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.InfoContext(ctx, "starting server", slog.String("port", apiConfig.Port),
			slog.String("version", config.Version))
		err := server.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			utils.LogAndReportSentryError(ctx, errors.Wrap(err, "Error while serving the app"))
		}
		logger.InfoContext(ctx, "server returned")
	}()

	<-notify.Done()
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := deps.SegmentClient.Close(); err != nil {
		logger.WarnContext(ctx, "could not flush segment events", "error", err.Error())
	}
	if err := telemetryRessources.Shutdown(shutdownCtx); err != nil {
		logger.WarnContext(ctx, "could not flush traces", "error", err.Error())
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.LogAndReportSentryError(
			ctx,
			errors.Wrap(err, "Error while shutting down the server"),
		)
		return err
	}

	return nil
}
