package repositories

import (
	"crypto/rsa"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"

	"github.com/portal-apr/portal-apr-backend/repositories/payment_gateways"
)

type Repositories struct {
	ExecutorGetter      ExecutorGetter
	PortalDbRepository  *PortalDbRepository
	TaskQueueRepository TaskQueueRepository
	BlobRepository      BlobRepository
	PaymentGateways     *payment_gateways.Registry
	JwtRepository       *JwtRepository
}

type Option func(*options)

type options struct {
	riverClient *river.Client[pgx.Tx]
	gateways    []payment_gateways.PaymentGateway
	signingKey  *rsa.PrivateKey
}

func WithJwtSigningKey(key *rsa.PrivateKey) Option {
	return func(o *options) {
		o.signingKey = key
	}
}

func WithRiverClient(client *river.Client[pgx.Tx]) Option {
	return func(o *options) {
		o.riverClient = client
	}
}

func WithPaymentGateways(gateways ...payment_gateways.PaymentGateway) Option {
	return func(o *options) {
		o.gateways = append(o.gateways, gateways...)
	}
}

func NewRepositories(pool *pgxpool.Pool, opts ...Option) Repositories {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	repositories := Repositories{
		ExecutorGetter:     NewExecutorGetter(pool),
		PortalDbRepository: NewPortalDbRepository(),
		BlobRepository:     NewBlobRepository(),
		PaymentGateways:    payment_gateways.NewRegistry(o.gateways...),
	}
	if o.riverClient != nil {
		repositories.TaskQueueRepository = NewTaskQueueRepository(o.riverClient)
	}
	if o.signingKey != nil {
		repositories.JwtRepository = NewJWTRepository(o.signingKey)
	}
	return repositories
}
