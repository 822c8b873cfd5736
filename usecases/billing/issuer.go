package billing

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories"
	"github.com/portal-apr/portal-apr-backend/repositories/clock"
	"github.com/portal-apr/portal-apr-backend/usecases/executor_factory"
	"github.com/portal-apr/portal-apr-backend/utils"
)

const (
	DefaultDueDays          = 20
	defaultIssueConcurrency = 8
	overdueBatchSize        = 200
)

type IssuerRepository interface {
	GetSocioById(ctx context.Context, exec repositories.Executor, socioId string) (models.Socio, error)
	ListActiveSocioIds(ctx context.Context, exec repositories.Executor) ([]string, error)
	GetLectura(ctx context.Context, exec repositories.Executor, socioId string, periodo models.Periodo) (*models.Lectura, error)
	GetTarifa(ctx context.Context, exec repositories.Executor, tarifaId string) (models.Tarifa, error)
	GetLiveBoleta(ctx context.Context, exec repositories.Executor, socioId string, periodo models.Periodo) (*models.Boleta, error)
	UnpaidBalanceBefore(ctx context.Context, exec repositories.Executor, socioId string, periodo models.Periodo) (int64, error)
	CreateBoleta(ctx context.Context, exec repositories.Executor, boleta models.BoletaToCreate) (models.Boleta, error)
	LockOverdueBoletas(ctx context.Context, exec repositories.Transaction, now time.Time, limit int) ([]models.Boleta, error)
	MarkBoletaVencida(ctx context.Context, exec repositories.Executor, boletaId string, recargo int64) error
}

type activeTarifaGetter interface {
	Get(ctx context.Context, exec repositories.Executor) (models.Tarifa, error)
	Refresh(ctx context.Context, exec repositories.Executor) (models.Tarifa, error)
}

// Issuer computes and stores boletas. It carries no credentials: callers enforce security.
type Issuer struct {
	executorFactory    executor_factory.ExecutorFactory
	transactionFactory executor_factory.TransactionFactory
	repository         IssuerRepository
	activeTarifa       activeTarifaGetter
	clock              clock.Clock
	dueDays            int
	concurrency        int
}

func NewIssuer(
	executorFactory executor_factory.ExecutorFactory,
	transactionFactory executor_factory.TransactionFactory,
	repository IssuerRepository,
	activeTarifa activeTarifaGetter,
	dueDays int,
) *Issuer {
	if dueDays <= 0 {
		dueDays = DefaultDueDays
	}
	return &Issuer{
		executorFactory:    executorFactory,
		transactionFactory: transactionFactory,
		repository:         repository,
		activeTarifa:       activeTarifa,
		clock:              clock.New(),
		dueDays:            dueDays,
		concurrency:        defaultIssueConcurrency,
	}
}

// IssueBoleta bills the lectura of the socio for the periodo with the active tarifa.
// Unpaid boletas of earlier periods are reported in SaldoAnterior but not added to the total:
// they stay payable on their own.
func (i *Issuer) IssueBoleta(ctx context.Context, socioId string, periodo models.Periodo) (models.Boleta, error) {
	boleta, err := executor_factory.TransactionReturnValue(ctx, i.transactionFactory, func(
		tx repositories.Transaction,
	) (models.Boleta, error) {
		socio, err := i.repository.GetSocioById(ctx, tx, socioId)
		if err != nil {
			return models.Boleta{}, err
		}
		if socio.Estado == models.SocioRetirado {
			return models.Boleta{}, errors.Wrapf(models.ErrSocioNotActive, "socio %d", socio.NumeroSocio)
		}

		existing, err := i.repository.GetLiveBoleta(ctx, tx, socioId, periodo)
		if err != nil {
			return models.Boleta{}, err
		}
		if existing != nil {
			return models.Boleta{}, errors.Wrapf(models.ErrBoletaAlreadyIssued, "folio %d", existing.Folio)
		}

		lectura, err := i.repository.GetLectura(ctx, tx, socioId, periodo)
		if err != nil {
			return models.Boleta{}, err
		}
		if lectura == nil {
			return models.Boleta{}, errors.Wrapf(models.ErrMissingLectura, "socio %d, periodo %s", socio.NumeroSocio, periodo)
		}

		tarifa, err := i.activeTarifa.Get(ctx, tx)
		if err != nil {
			return models.Boleta{}, err
		}
		cargos, err := ComputeCharges(tarifa, lectura.Consumo())
		if err != nil {
			return models.Boleta{}, errors.Wrapf(err, "socio %d", socio.NumeroSocio)
		}

		saldo, err := i.repository.UnpaidBalanceBefore(ctx, tx, socioId, periodo)
		if err != nil {
			return models.Boleta{}, err
		}

		now := i.clock.Now()
		boleta, err := i.repository.CreateBoleta(ctx, tx, models.BoletaToCreate{
			SocioId:          socioId,
			Periodo:          periodo,
			TarifaId:         tarifa.Id,
			LecturaId:        lectura.Id,
			Cargos:           cargos,
			SaldoAnterior:    saldo,
			FechaEmision:     now,
			FechaVencimiento: now.AddDate(0, 0, i.dueDays),
		})
		if repositories.IsUniqueViolationOn(err, repositories.ConstraintBoletaPeriodo) {
			return models.Boleta{}, errors.Wrapf(models.ErrBoletaAlreadyIssued, "socio %d, periodo %s", socio.NumeroSocio, periodo)
		}
		return boleta, err
	})
	if err != nil {
		return models.Boleta{}, err
	}

	utils.MetricBoletasIssued.WithLabelValues(periodo.String()).Inc()
	return boleta, nil
}

// IssuePeriod issues the boletas of every active socio. Socios without a lectura or already
// billed are skipped, other failures are reported per socio and do not stop the run.
func (i *Issuer) IssuePeriod(ctx context.Context, periodo models.Periodo) (models.IssuePeriodReport, error) {
	logger := utils.LoggerFromContext(ctx).With("periodo", periodo.String())
	exec := i.executorFactory.NewExecutor()

	// the tarifa may have been activated by another process: reload it once for the run, and
	// fail fast instead of reporting the same error for every socio
	tarifa, err := i.activeTarifa.Refresh(ctx, exec)
	if err != nil {
		return models.IssuePeriodReport{}, err
	}
	logger.InfoContext(ctx, "issuing period", "tarifa_id", tarifa.Id)

	socioIds, err := i.repository.ListActiveSocioIds(ctx, exec)
	if err != nil {
		return models.IssuePeriodReport{}, errors.Wrap(err, "error while listing active socios")
	}

	results := make([]models.IssueBoletaResult, len(socioIds))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(i.concurrency)
	for idx, socioId := range socioIds {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			result := models.IssueBoletaResult{SocioId: socioId}
			boleta, err := i.IssueBoleta(groupCtx, socioId, periodo)
			if err != nil {
				result.Error = err
			} else {
				result.Boleta = &boleta
			}
			results[idx] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return models.IssuePeriodReport{}, err
	}

	report := models.IssuePeriodReport{Periodo: periodo, Results: results}
	for _, result := range results {
		switch {
		case result.Error == nil:
			report.Issued++
		case errors.Is(result.Error, models.ErrMissingLectura),
			errors.Is(result.Error, models.ErrBoletaAlreadyIssued):
			report.Skipped++
		default:
			report.Failed++
			logger.WarnContext(ctx, "could not issue boleta", "socio_id", result.SocioId, "error", result.Error.Error())
		}
	}

	logger.InfoContext(ctx, "period issued",
		"issued", report.Issued, "skipped", report.Skipped, "failed", report.Failed)
	return report, nil
}

// MarkOverdue moves the pending boletas past their due date to vencida, adding the late fee of
// the tarifa they were billed with. The fee is only ever applied once per boleta.
func (i *Issuer) MarkOverdue(ctx context.Context) (int, error) {
	now := i.clock.Now()
	total := 0
	tarifas := make(map[string]models.Tarifa)

	for {
		count, err := executor_factory.TransactionReturnValue(ctx, i.transactionFactory, func(
			tx repositories.Transaction,
		) (int, error) {
			boletas, err := i.repository.LockOverdueBoletas(ctx, tx, now, overdueBatchSize)
			if err != nil {
				return 0, err
			}
			for _, boleta := range boletas {
				tarifa, ok := tarifas[boleta.TarifaId]
				if !ok {
					tarifa, err = i.repository.GetTarifa(ctx, tx, boleta.TarifaId)
					if err != nil {
						return 0, err
					}
					tarifas[boleta.TarifaId] = tarifa
				}

				updated := ApplyRecargo(boleta, tarifa.RecargoMoraPorcentaje)
				if err := i.repository.MarkBoletaVencida(ctx, tx, boleta.Id, updated.Recargo-boleta.Recargo); err != nil {
					return 0, err
				}
			}
			return len(boletas), nil
		})
		if err != nil {
			return total, err
		}
		total += count
		if count < overdueBatchSize {
			break
		}
	}

	utils.LoggerFromContext(ctx).InfoContext(ctx, "boletas marked overdue", "count", total)
	return total, nil
}
