package executor_factory

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories"
)

// ExecutorFactoryStub hands out executors backed by a pgxmock pool. Transactions go through
// Begin and Commit (or Rollback) on the mock, so tests set ExpectBegin and ExpectCommit.
type ExecutorFactoryStub struct {
	Mock pgxmock.PgxPoolIface
}

func NewExecutorFactoryStub() ExecutorFactoryStub {
	pool, _ := pgxmock.NewPool()

	return ExecutorFactoryStub{
		Mock: pool,
	}
}

type PgExecutorStub struct {
	pgxmock.PgxPoolIface
}

func (stub ExecutorFactoryStub) NewExecutor() repositories.Executor {
	return PgExecutorStub{
		stub.Mock,
	}
}

type TransactionFactoryStub struct {
	ExecutorFactoryStub
}

func NewTransactionFactoryStub(executorFactory ExecutorFactoryStub) TransactionFactoryStub {
	return TransactionFactoryStub{executorFactory}
}

func (stub TransactionFactoryStub) Transaction(ctx context.Context, fn func(tx repositories.Transaction) error) error {
	tx, err := stub.Mock.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(repositories.NewPgTx(tx)); err != nil {
		_ = tx.Rollback(ctx)
		if errors.Is(err, models.ErrIgnoreRollBackError) {
			return nil
		}
		return err
	}
	return tx.Commit(ctx)
}
