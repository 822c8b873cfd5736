package usecases

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories"
	"github.com/portal-apr/portal-apr-backend/usecases/executor_factory"
	"github.com/portal-apr/portal-apr-backend/usecases/security"
	"github.com/portal-apr/portal-apr-backend/usecases/tracking"
	"github.com/portal-apr/portal-apr-backend/utils"
)

type BoletaRepository interface {
	GetBoletaById(ctx context.Context, exec repositories.Executor, boletaId string, forUpdate bool) (models.Boleta, error)
	ListBoletas(ctx context.Context, exec repositories.Executor, filters models.BoletaFilters,
		pagination models.PaginationAndSorting) ([]models.Boleta, error)
	SetBoletaEstado(ctx context.Context, exec repositories.Executor, boletaId string, estado models.BoletaEstado) error
}

type boletaIssuer interface {
	IssueBoleta(ctx context.Context, socioId string, periodo models.Periodo) (models.Boleta, error)
	IssuePeriod(ctx context.Context, periodo models.Periodo) (models.IssuePeriodReport, error)
}

type boletaExporter interface {
	ExportPeriod(ctx context.Context, periodo models.Periodo) (models.ExportResult, error)
}

type boletaTaskQueue interface {
	EnqueueIssuePeriodTask(ctx context.Context, periodo models.Periodo) error
	EnqueueExportPeriodTask(ctx context.Context, tx repositories.Transaction, periodo models.Periodo) error
}

type BoletaUsecase struct {
	enforceSecurity    security.EnforceSecurityBoleta
	executorFactory    executor_factory.ExecutorFactory
	transactionFactory executor_factory.TransactionFactory
	repository         BoletaRepository
	issuer             boletaIssuer
	exporter           boletaExporter
	taskQueue          boletaTaskQueue
}

func (usecase *BoletaUsecase) ListBoletas(ctx context.Context, filters models.BoletaFilters,
	pagination models.PaginationAndSorting,
) ([]models.Boleta, error) {
	if err := usecase.enforceSecurity.ListBoletas(filters.SocioId); err != nil {
		return nil, err
	}
	return usecase.repository.ListBoletas(ctx, usecase.executorFactory.NewExecutor(), filters, pagination.WithDefaults())
}

func (usecase *BoletaUsecase) GetBoleta(ctx context.Context, boletaId string) (models.Boleta, error) {
	boleta, err := usecase.repository.GetBoletaById(ctx, usecase.executorFactory.NewExecutor(), boletaId, false)
	if err != nil {
		return models.Boleta{}, err
	}
	if err := usecase.enforceSecurity.ReadBoleta(boleta); err != nil {
		return models.Boleta{}, err
	}
	return boleta, nil
}

func (usecase *BoletaUsecase) IssueBoleta(ctx context.Context, socioId string, periodo models.Periodo) (models.Boleta, error) {
	if err := usecase.enforceSecurity.IssueBoletas(); err != nil {
		return models.Boleta{}, err
	}
	boleta, err := usecase.issuer.IssueBoleta(ctx, socioId, periodo)
	if err != nil {
		return models.Boleta{}, err
	}
	tracking.TrackEvent(ctx, models.AnalyticsBoletasIssued, map[string]any{"periodo": periodo, "count": 1})
	return boleta, nil
}

// IssuePeriod issues the boletas of every active socio with a lectura for the periodo
func (usecase *BoletaUsecase) IssuePeriod(ctx context.Context, periodo models.Periodo) (models.IssuePeriodReport, error) {
	if err := usecase.enforceSecurity.IssueBoletas(); err != nil {
		return models.IssuePeriodReport{}, err
	}
	report, err := usecase.issuer.IssuePeriod(ctx, periodo)
	if err != nil {
		return models.IssuePeriodReport{}, err
	}
	tracking.TrackEvent(ctx, models.AnalyticsBoletasIssued, map[string]any{"periodo": periodo, "count": report.Issued})
	return report, nil
}

// EnqueueIssuePeriod hands the issuance of a periodo to the worker
func (usecase *BoletaUsecase) EnqueueIssuePeriod(ctx context.Context, periodo models.Periodo) error {
	if err := usecase.enforceSecurity.IssueBoletas(); err != nil {
		return err
	}
	return usecase.taskQueue.EnqueueIssuePeriodTask(ctx, periodo)
}

func (usecase *BoletaUsecase) AnnulBoleta(ctx context.Context, boletaId string) (models.Boleta, error) {
	boleta, err := executor_factory.TransactionReturnValue(ctx, usecase.transactionFactory, func(
		tx repositories.Transaction,
	) (models.Boleta, error) {
		boleta, err := usecase.repository.GetBoletaById(ctx, tx, boletaId, true)
		if err != nil {
			return models.Boleta{}, err
		}
		if err := usecase.enforceSecurity.AnnulBoleta(boleta); err != nil {
			return models.Boleta{}, err
		}
		switch boleta.Estado {
		case models.BoletaAnulada:
			return boleta, nil
		case models.BoletaPagada:
			return models.Boleta{}, errors.Wrapf(models.ErrBoletaAlreadyPaid, "folio %d cannot be annulled", boleta.Folio)
		}
		if err := usecase.repository.SetBoletaEstado(ctx, tx, boletaId, models.BoletaAnulada); err != nil {
			return models.Boleta{}, err
		}
		return usecase.repository.GetBoletaById(ctx, tx, boletaId, false)
	})
	if err != nil {
		return models.Boleta{}, err
	}

	utils.LoggerFromContext(ctx).InfoContext(ctx, "boleta annulled", "boleta_id", boleta.Id, "folio", boleta.Folio)
	tracking.TrackEvent(ctx, models.AnalyticsBoletaAnnulled, map[string]any{"boleta_id": boleta.Id})
	return boleta, nil
}

func (usecase *BoletaUsecase) ExportPeriod(ctx context.Context, periodo models.Periodo) (models.ExportResult, error) {
	if err := usecase.enforceSecurity.ExportBoletas(); err != nil {
		return models.ExportResult{}, err
	}
	return usecase.exporter.ExportPeriod(ctx, periodo)
}

func (usecase *BoletaUsecase) EnqueueExportPeriod(ctx context.Context, periodo models.Periodo) error {
	if err := usecase.enforceSecurity.ExportBoletas(); err != nil {
		return err
	}
	return usecase.transactionFactory.Transaction(ctx, func(tx repositories.Transaction) error {
		return usecase.taskQueue.EnqueueExportPeriodTask(ctx, tx, periodo)
	})
}
