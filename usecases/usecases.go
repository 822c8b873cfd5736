package usecases

import (
	"time"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories"
	"github.com/portal-apr/portal-apr-backend/repositories/clock"
	"github.com/portal-apr/portal-apr-backend/usecases/billing"
	"github.com/portal-apr/portal-apr-backend/usecases/chat"
	"github.com/portal-apr/portal-apr-backend/usecases/executor_factory"
	"github.com/portal-apr/portal-apr-backend/usecases/payments"
	"github.com/portal-apr/portal-apr-backend/usecases/reconciliation"
	"github.com/portal-apr/portal-apr-backend/usecases/security"
	"github.com/portal-apr/portal-apr-backend/usecases/token"
	"github.com/portal-apr/portal-apr-backend/usecases/worker_jobs"
)

const DefaultTokenLifetimeMinute = 60 * 12

type Usecases struct {
	Repositories        repositories.Repositories
	appName             string
	dueDays             int
	exportBucketUrl     string
	payments            PaymentsConfig
	tokenLifetimeMinute int

	// shared by every request
	activeTarifa *billing.ActiveTarifaCache
	chatHub      *chat.Hub
}

type Option func(*options)

func WithAppName(appName string) Option {
	return func(o *options) {
		o.appName = appName
	}
}

func WithDueDays(days int) Option {
	return func(o *options) {
		o.dueDays = days
	}
}

func WithExportBucketUrl(bucket string) Option {
	return func(o *options) {
		o.exportBucketUrl = bucket
	}
}

func WithPayments(config PaymentsConfig) Option {
	return func(o *options) {
		o.payments = config
	}
}

func WithTokenLifetimeMinute(minutes int) Option {
	return func(o *options) {
		o.tokenLifetimeMinute = minutes
	}
}

type options struct {
	appName             string
	dueDays             int
	exportBucketUrl     string
	payments            PaymentsConfig
	tokenLifetimeMinute int
}

func newUsecasesWithOptions(repositories repositories.Repositories, o *options) Usecases {
	if o.dueDays <= 0 {
		o.dueDays = billing.DefaultDueDays
	}
	if o.payments.PendingTtl <= 0 {
		o.payments.PendingTtl = reconciliation.DefaultPendingTtl
	}
	if o.tokenLifetimeMinute <= 0 {
		o.tokenLifetimeMinute = DefaultTokenLifetimeMinute
	}
	return Usecases{
		Repositories:        repositories,
		appName:             o.appName,
		dueDays:             o.dueDays,
		exportBucketUrl:     o.exportBucketUrl,
		payments:            o.payments,
		tokenLifetimeMinute: o.tokenLifetimeMinute,
		activeTarifa:        billing.NewActiveTarifaCache(repositories.PortalDbRepository),
		chatHub:             chat.NewHub(),
	}
}

func NewUsecases(repositories repositories.Repositories, opts ...Option) Usecases {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return newUsecasesWithOptions(repositories, o)
}

func (usecases *Usecases) NewExecutorFactory() executor_factory.ExecutorFactory {
	return executor_factory.NewDbExecutorFactory(usecases.Repositories.ExecutorGetter)
}

func (usecases *Usecases) NewTransactionFactory() executor_factory.TransactionFactory {
	return executor_factory.NewDbExecutorFactory(usecases.Repositories.ExecutorGetter)
}

func (usecases *Usecases) NewLivenessUsecase() LivenessUsecase {
	return LivenessUsecase{
		executorFactory:    usecases.NewExecutorFactory(),
		livenessRepository: usecases.Repositories.PortalDbRepository,
		minSchemaVersion:   repositories.LatestMigrationVersion(),
	}
}

func (usecases *Usecases) NewSeedUseCase() SeedUseCase {
	return SeedUseCase{
		transactionFactory: usecases.NewTransactionFactory(),
		executorFactory:    usecases.NewExecutorFactory(),
		userRepository:     usecases.Repositories.PortalDbRepository,
		tarifaRepository:   usecases.Repositories.PortalDbRepository,
		activeTarifa:       usecases.activeTarifa,
	}
}

func (usecases *Usecases) NewMaintenanceUsecase() MaintenanceUsecase {
	return MaintenanceUsecase{
		executorFactory:    usecases.NewExecutorFactory(),
		transactionFactory: usecases.NewTransactionFactory(),
		userRepository:     usecases.Repositories.PortalDbRepository,
		socioRepository:    usecases.Repositories.PortalDbRepository,
		tarifaRepository:   usecases.Repositories.PortalDbRepository,
		activeTarifa:       usecases.activeTarifa,
		reconciler:         usecases.NewReconciler(),
	}
}

func (usecases *Usecases) NewTokenGenerator() *token.Generator {
	return token.NewGenerator(
		usecases.NewExecutorFactory(),
		usecases.Repositories.PortalDbRepository,
		usecases.Repositories.JwtRepository,
		usecases.tokenLifetimeMinute,
	)
}

func (usecases *Usecases) NewTokenValidator() *token.Validator {
	return token.NewValidator(usecases.Repositories.JwtRepository)
}

func (usecases *Usecases) NewIssuer() *billing.Issuer {
	return billing.NewIssuer(
		usecases.NewExecutorFactory(),
		usecases.NewTransactionFactory(),
		usecases.Repositories.PortalDbRepository,
		usecases.activeTarifa,
		usecases.dueDays,
	)
}

func (usecases *Usecases) NewExporter() *billing.Exporter {
	return billing.NewExporter(
		usecases.NewExecutorFactory(),
		usecases.Repositories.PortalDbRepository,
		usecases.Repositories.BlobRepository,
		usecases.exportBucketUrl,
	)
}

func (usecases *Usecases) NewSettler() *payments.Settler {
	return payments.NewSettler(
		usecases.NewExecutorFactory(),
		usecases.NewTransactionFactory(),
		usecases.Repositories.PortalDbRepository,
		usecases.Repositories.PaymentGateways,
	)
}

func (usecases *Usecases) NewReconciler() *reconciliation.Reconciler {
	return reconciliation.NewReconciler(
		usecases.NewExecutorFactory(),
		usecases.NewTransactionFactory(),
		usecases.Repositories.PortalDbRepository,
		usecases.NewSettler(),
		usecases.payments.PendingTtl,
	)
}

// NewGatewayCallbackUsecase serves the unauthenticated return and notify endpoints of the
// gateways. Every secured operation of the returned usecase is denied.
func (usecases *Usecases) NewGatewayCallbackUsecase() PagoUsecase {
	return usecases.newPagoUsecase(models.Credentials{})
}

func (usecases *Usecases) newPagoUsecase(creds models.Credentials) PagoUsecase {
	return PagoUsecase{
		enforceSecurity:    security.NewEnforceSecurity(creds),
		executorFactory:    usecases.NewExecutorFactory(),
		transactionFactory: usecases.NewTransactionFactory(),
		repository:         usecases.Repositories.PortalDbRepository,
		gateways:           usecases.Repositories.PaymentGateways,
		settler:            usecases.NewSettler(),
		config:             usecases.payments,
		clock:              clock.New(),
	}
}

func (usecases *Usecases) NewReconciliationWorker(interval time.Duration) *worker_jobs.ReconciliationWorker {
	return worker_jobs.NewReconciliationWorker(usecases.NewReconciler(), interval)
}

func (usecases *Usecases) NewIssuePeriodWorker() *worker_jobs.IssuePeriodWorker {
	return worker_jobs.NewIssuePeriodWorker(usecases.NewIssuer())
}

func (usecases *Usecases) NewMarkOverdueWorker() *worker_jobs.MarkOverdueWorker {
	return worker_jobs.NewMarkOverdueWorker(usecases.NewIssuer())
}

func (usecases *Usecases) NewExportPeriodWorker() *worker_jobs.ExportPeriodWorker {
	return worker_jobs.NewExportPeriodWorker(usecases.NewExporter())
}
