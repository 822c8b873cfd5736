package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"

	"github.com/portal-apr/portal-apr-backend/infra"
	"github.com/portal-apr/portal-apr-backend/jobs"
	"github.com/portal-apr/portal-apr-backend/repositories"
	"github.com/portal-apr/portal-apr-backend/usecases"
	"github.com/portal-apr/portal-apr-backend/usecases/worker_jobs"
	"github.com/portal-apr/portal-apr-backend/utils"
)

// periodicJobs schedules the monthly issuance, the daily overdue sweep and the reconciliation
func periodicJobs(billing infra.BillingConfiguration, reconciliation infra.ReconciliationConfiguration) ([]*river.PeriodicJob, error) {
	billingSchedule, err := worker_jobs.NewCronSchedule(billing.BillingCron)
	if err != nil {
		return nil, errors.Wrap(err, "BILLING_CRON")
	}
	overdueSchedule, err := worker_jobs.NewCronSchedule(billing.OverdueCron)
	if err != nil {
		return nil, errors.Wrap(err, "OVERDUE_CRON")
	}
	return []*river.PeriodicJob{
		worker_jobs.NewIssuePeriodPeriodicJob(billingSchedule),
		worker_jobs.NewMarkOverduePeriodicJob(overdueSchedule),
		worker_jobs.NewReconciliationPeriodicJob(reconciliation.Interval),
	}, nil
}

func RunTaskQueue(config CompiledConfig) error {
	// This is where we read the environment variables and set up the configuration for the application.
	pgConfig := pgConfigFromEnv()
	billingConfig := billingConfigFromEnv()
	reconciliationConfig := reconciliationConfigFromEnv()
	workerConfig := struct {
		env               string
		loggingFormat     string
		sentryDsn         string
		enableTracing     bool
		otelSamplingRates string
		probePort         string
	}{
		env:               utils.GetEnv("ENV", "development"),
		loggingFormat:     utils.GetEnv("LOGGING_FORMAT", "text"),
		sentryDsn:         utils.GetEnv("SENTRY_DSN", ""),
		enableTracing:     utils.GetEnv("ENABLE_TRACING", false),
		otelSamplingRates: utils.GetEnv("OTEL_SAMPLING_RATES", ""),
		probePort:         utils.GetEnv("PROBE_PORT", ""),
	}
	gatewaysConfig := gatewaysConfigFromEnv(workerConfig.env)

	logger := utils.NewLogger(workerConfig.loggingFormat)
	ctx := utils.StoreLoggerInContext(context.Background(), logger)

	samplingMap, err := parseSamplingRates(workerConfig.otelSamplingRates)
	if err != nil {
		logger.ErrorContext(ctx, "invalid worker configuration", "error", err.Error())
		return err
	}

	infra.SetupSentry(workerConfig.sentryDsn, workerConfig.env, config.Version)
	defer sentry.Flush(3 * time.Second)

	telemetryRessources, err := infra.InitTelemetry(infra.TelemetryConfiguration{
		ApplicationName: appName + "-worker",
		Enabled:         workerConfig.enableTracing,
		SamplingMap:     samplingMap,
	}, config.Version)
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		telemetryRessources = infra.NoopTelemetry()
	}
	ctx = utils.StoreOpenTelemetryTracerInContext(ctx, telemetryRessources.Tracer)

	pool, err := openPool(ctx, pgConfig, telemetryRessources)
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}
	defer pool.Close()

	// First, create an insert-only client to pass to the repos. The client that runs the jobs
	// needs the workers, and the workers need the repos.
	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{})
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	repos := newRepositories(ctx, pool, gatewaysConfig, telemetryRessources, nil,
		repositories.WithRiverClient(riverClient))
	uc := newUsecases(repos, usecasesConfig{
		billing:        billingConfig,
		reconciliation: reconciliationConfig,
		gateways:       gatewaysConfig,
	})

	workers := river.NewWorkers()
	river.AddWorker(workers, uc.NewIssuePeriodWorker())
	river.AddWorker(workers, uc.NewMarkOverdueWorker())
	river.AddWorker(workers, uc.NewExportPeriodWorker())
	river.AddWorker(workers, uc.NewReconciliationWorker(reconciliationConfig.Interval))

	periodic, err := periodicJobs(billingConfig, reconciliationConfig)
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	riverClient, err = river.NewClient(riverpgxv5.New(pool), &river.Config{
		FetchPollInterval: 100 * time.Millisecond,
		Queues:            usecases.TaskQueues(),
		PeriodicJobs:      periodic,

		// Must be larger than the time it takes to process a job: issuing a period is the longest.
		RescueStuckJobsAfter: worker_jobs.ISSUE_PERIOD_TIMEOUT + time.Minute,
		WorkerMiddleware: []rivertype.WorkerMiddleware{
			jobs.NewTracingMiddleware(telemetryRessources.Tracer),
			jobs.NewSentryMiddleware(),
			jobs.NewLoggerMiddleware(logger),
			jobs.NewRecoveredMiddleware(),
		},
		Workers: workers,
	})
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	if err := riverClient.Start(ctx); err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}
	logger.InfoContext(ctx, "worker started", "billing_cron", billingConfig.BillingCron,
		"overdue_cron", billingConfig.OverdueCron, "reconciliation_interval", reconciliationConfig.Interval)

	// non-blocking http server answering the liveness probes of the orchestrator
	if workerConfig.probePort != "" {
		go func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("OK"))
			})
			if err := http.ListenAndServe(":"+workerConfig.probePort, mux); err != nil {
				utils.LogAndReportSentryError(ctx, err)
			}
		}()
	}

	// Teardown sequence
	sigintOrTerm := make(chan os.Signal, 1)
	signal.Notify(sigintOrTerm, syscall.SIGINT, syscall.SIGTERM)

	go cleanStop(ctx, sigintOrTerm, riverClient)

	<-riverClient.Stopped()
	logger.InfoContext(ctx, "River client stopped")

	return nil
}

// cleanStop waits for SIGINT/SIGTERM, then lets the running jobs finish. A second signal, or
// the soft stop timeout, cancels the jobs.
func cleanStop(ctx context.Context, sigintOrTerm chan os.Signal, riverClient *river.Client[pgx.Tx]) {
	logger := utils.LoggerFromContext(ctx)
	<-sigintOrTerm
	logger.InfoContext(ctx, "Received SIGINT/SIGTERM; initiating soft stop (try to wait for jobs to finish)")

	softStopCtx, softStopCtxCancel := context.WithTimeout(ctx, 10*time.Second)
	defer softStopCtxCancel()

	go func() {
		select {
		case <-sigintOrTerm:
			logger.InfoContext(ctx, "Received SIGINT/SIGTERM again; initiating hard stop (cancel everything)")
			softStopCtxCancel()
		case <-softStopCtx.Done():
			logger.InfoContext(ctx, "Soft stop timeout; initiating hard stop (cancel everything)")
		}
	}()

	err := riverClient.Stop(softStopCtx)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		logger.ErrorContext(ctx, "Soft stop failed", "error", err)
		panic(err)
	}
	if err == nil {
		logger.InfoContext(ctx, "Soft stop succeeded")
		return
	}

	hardStopCtx, hardStopCtxCancel := context.WithTimeout(ctx, 10*time.Second)
	defer hardStopCtxCancel()

	// an issuance stuck on a row lock only stops with the context
	err = riverClient.StopAndCancel(hardStopCtx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		logger.InfoContext(ctx, "Hard stop timeout; ignoring stop procedure and exiting unsafely")
	} else if err != nil {
		panic(err)
	}
}
