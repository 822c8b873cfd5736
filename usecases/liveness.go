package usecases

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories"
	"github.com/portal-apr/portal-apr-backend/usecases/executor_factory"
)

type livenessRepository interface {
	SchemaVersion(ctx context.Context, exec repositories.Executor) (int64, error)
}

type LivenessUsecase struct {
	executorFactory    executor_factory.ExecutorFactory
	livenessRepository livenessRepository
	// oldest schema the binary runs against
	minSchemaVersion int64
}

// Liveness fails when the database is unreachable, or still on a schema older than the code.
func (u *LivenessUsecase) Liveness(ctx context.Context) (models.Liveness, error) {
	version, err := u.livenessRepository.SchemaVersion(ctx, u.executorFactory.NewExecutor())
	if err != nil {
		return models.Liveness{}, err
	}
	if version < u.minSchemaVersion {
		return models.Liveness{}, errors.Newf("schema version %d is older than %d, run the migrations",
			version, u.minSchemaVersion)
	}
	return models.Liveness{SchemaVersion: version}, nil
}
