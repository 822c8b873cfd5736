package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/hashstructure/v2"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories"
	"github.com/portal-apr/portal-apr-backend/repositories/clock"
	"github.com/portal-apr/portal-apr-backend/repositories/payment_gateways"
	"github.com/portal-apr/portal-apr-backend/usecases/executor_factory"
	"github.com/portal-apr/portal-apr-backend/usecases/tracking"
	"github.com/portal-apr/portal-apr-backend/utils"
)

type SettlerRepository interface {
	InsertGatewayNotification(ctx context.Context, exec repositories.Executor,
		notification models.GatewayNotification, hash string) (bool, error)
	GetPagoById(ctx context.Context, exec repositories.Executor, pagoId string, forUpdate bool) (models.Pago, error)
	GetPagoByGatewayToken(ctx context.Context, exec repositories.Executor, metodo models.MetodoPago, token string) (*models.Pago, error)
	GetPagoByBuyOrder(ctx context.Context, exec repositories.Executor, buyOrder string) (*models.Pago, error)
	LockPagoIfPending(ctx context.Context, exec repositories.Transaction, pagoId string) (*models.Pago, error)
	ResolvePago(ctx context.Context, exec repositories.Executor, pagoId string, resolution models.PagoResolution) (bool, error)
	ListBoletasByIds(ctx context.Context, exec repositories.Executor, boletaIds []string, forUpdate bool) ([]models.Boleta, error)
	MarkBoletasPagadas(ctx context.Context, exec repositories.Executor, boletaIds []string, pagadaAt time.Time) error
	MarkPagoBoletasCredited(ctx context.Context, exec repositories.Executor, pagoId string, boletaIds []string) error
	AddSocioSaldoFavor(ctx context.Context, exec repositories.Executor, socioId string, amount int64) error
}

type gatewayRegistry interface {
	Get(metodo models.MetodoPago) (payment_gateways.PaymentGateway, error)
}

// Settler moves pending gateway pagos to their final state, from a gateway callback or from
// a status check. Every path is idempotent: a pago that is already final is left untouched.
type Settler struct {
	executorFactory    executor_factory.ExecutorFactory
	transactionFactory executor_factory.TransactionFactory
	repository         SettlerRepository
	gateways           gatewayRegistry
	clock              clock.Clock
}

func NewSettler(
	executorFactory executor_factory.ExecutorFactory,
	transactionFactory executor_factory.TransactionFactory,
	repository SettlerRepository,
	gateways gatewayRegistry,
) *Settler {
	return &Settler{
		executorFactory:    executorFactory,
		transactionFactory: transactionFactory,
		repository:         repository,
		gateways:           gateways,
		clock:              clock.New(),
	}
}

func notificationHash(notification models.GatewayNotification) (string, error) {
	hash, err := hashstructure.Hash(notification, hashstructure.FormatV2, nil)
	if err != nil {
		return "", errors.Wrap(err, "could not hash gateway notification")
	}
	return fmt.Sprintf("%016x", hash), nil
}

// ConfirmGatewayPayment handles a callback of a gateway, either the server notification or the
// browser return. Every notification is stored once. A callback on a final pago is a no-op, while
// a replay on a pago that is still pending queries the gateway again: gateways retry the same
// notification after a failed delivery. It returns the pago in its current state.
func (s *Settler) ConfirmGatewayPayment(ctx context.Context, notification models.GatewayNotification) (models.Pago, error) {
	logger := utils.LoggerFromContext(ctx).With("gateway", notification.Gateway)
	exec := s.executorFactory.NewExecutor()

	gateway, err := s.gateways.Get(notification.Gateway)
	if err != nil {
		return models.Pago{}, err
	}
	ref, err := payment_gateways.ReferenceOf(ctx, gateway, notification.Payload)
	if err != nil {
		return models.Pago{}, err
	}
	notification.Token = ref.Token
	if notification.Token == "" {
		notification.Token = ref.BuyOrder
	}
	if notification.ReceivedAt.IsZero() {
		notification.ReceivedAt = s.clock.Now()
	}

	hash, err := notificationHash(notification)
	if err != nil {
		return models.Pago{}, err
	}
	fresh, err := s.repository.InsertGatewayNotification(ctx, exec, notification, hash)
	if err != nil {
		return models.Pago{}, err
	}

	pago, err := s.findPago(ctx, exec, notification.Gateway, ref)
	if err != nil {
		return models.Pago{}, err
	}
	if pago.Estado.IsFinal() {
		logger.DebugContext(ctx, "gateway callback on a settled pago",
			"pago_id", pago.Id, "estado", pago.Estado, "replayed", !fresh)
		return pago, nil
	}
	if !fresh {
		logger.InfoContext(ctx, "replayed gateway callback on a pending pago", "pago_id", pago.Id)
	}

	return s.SettlePago(ctx, pago, false)
}

func (s *Settler) findPago(ctx context.Context, exec repositories.Executor, metodo models.MetodoPago,
	ref models.GatewayReference,
) (models.Pago, error) {
	var (
		pago *models.Pago
		err  error
	)
	if ref.Token != "" {
		pago, err = s.repository.GetPagoByGatewayToken(ctx, exec, metodo, ref.Token)
		if err != nil {
			return models.Pago{}, err
		}
	}
	if pago == nil && ref.BuyOrder != "" {
		pago, err = s.repository.GetPagoByBuyOrder(ctx, exec, ref.BuyOrder)
		if err != nil {
			return models.Pago{}, err
		}
	}
	if pago == nil || pago.Metodo != metodo {
		return models.Pago{}, errors.Wrapf(models.NotFoundError, "no %s pago for token %q and buy order %q",
			metodo, ref.Token, ref.BuyOrder)
	}
	return *pago, nil
}

// SettlePago asks the gateway for the outcome of a pending pago and stores it. With expire, a
// pago that is still pending on the gateway side is expired. Gateway errors are returned as is
// so that the caller can retry later.
func (s *Settler) SettlePago(ctx context.Context, pago models.Pago, expire bool) (models.Pago, error) {
	logger := utils.LoggerFromContext(ctx).With("pago_id", pago.Id, "metodo", pago.Metodo)

	gateway, err := s.gateways.Get(pago.Metodo)
	if err != nil {
		return models.Pago{}, err
	}

	var resolution *models.PagoResolution
	result, err := payment_gateways.Settle(ctx, gateway, pago.GatewayReference())
	switch {
	case errors.Is(err, models.ErrGatewayTransactionGone):
		resolution = &models.PagoResolution{Estado: models.PagoRechazado, Motivo: "transaction unknown to the gateway"}
		if expire {
			resolution.Estado = models.PagoExpirado
		}
	case err != nil:
		return models.Pago{}, err
	default:
		resolution = resolutionOf(pago, result, expire)
	}

	if resolution == nil {
		logger.DebugContext(ctx, "pago still pending on the gateway", "detail", result.Detail)
		return pago, nil
	}
	if resolution.Estado == models.PagoRechazado && result.Status == models.GatewayStatusApproved {
		utils.LogAndReportSentryError(ctx, errors.Wrapf(models.ErrAmountMismatch,
			"pago %s: expected %d, gateway confirmed %d", pago.Id, pago.Monto, result.Amount))
	}

	return s.applyResolution(ctx, pago.Id, *resolution)
}

func resolutionOf(pago models.Pago, result models.GatewayTransactionResult, expire bool) *models.PagoResolution {
	switch result.Status {
	case models.GatewayStatusApproved:
		if result.Amount != pago.Monto {
			return &models.PagoResolution{
				Estado:               models.PagoRechazado,
				GatewayTransactionId: result.TransactionId,
				Motivo:               models.ErrAmountMismatch.Error(),
			}
		}
		return &models.PagoResolution{
			Estado:               models.PagoAprobado,
			GatewayTransactionId: result.TransactionId,
		}
	case models.GatewayStatusRejected:
		return &models.PagoResolution{
			Estado:               models.PagoRechazado,
			GatewayTransactionId: result.TransactionId,
			Motivo:               result.Detail,
		}
	}
	if expire {
		return &models.PagoResolution{Estado: models.PagoExpirado, Motivo: "checkout abandoned"}
	}
	return nil
}

// applyResolution stores the resolution with the pago row locked. If the pago was settled
// concurrently, the stored state wins.
func (s *Settler) applyResolution(ctx context.Context, pagoId string, resolution models.PagoResolution) (models.Pago, error) {
	pago, err := executor_factory.TransactionReturnValue(ctx, s.transactionFactory, func(
		tx repositories.Transaction,
	) (models.Pago, error) {
		locked, err := s.repository.LockPagoIfPending(ctx, tx, pagoId)
		if err != nil {
			return models.Pago{}, err
		}
		if locked == nil {
			return s.repository.GetPagoById(ctx, tx, pagoId, false)
		}

		if _, err := s.repository.ResolvePago(ctx, tx, pagoId, resolution); err != nil {
			return models.Pago{}, err
		}
		if resolution.Estado == models.PagoAprobado {
			if err := s.payBoletas(ctx, tx, *locked); err != nil {
				return models.Pago{}, err
			}
		}

		utils.MetricPagoResolutions.WithLabelValues(string(locked.Metodo), string(resolution.Estado)).Inc()
		return s.repository.GetPagoById(ctx, tx, pagoId, false)
	})
	if err != nil {
		return models.Pago{}, err
	}

	event := models.AnalyticsPagoRejected
	if pago.Estado == models.PagoAprobado {
		event = models.AnalyticsPagoApproved
	}
	tracking.TrackEventWithUserId(ctx, event, tracking.SocioUserId(pago.SocioId), map[string]any{
		"pago_id": pago.Id,
		"metodo":  pago.Metodo,
		"estado":  pago.Estado,
	})
	return pago, nil
}

// payBoletas marks the boletas of an approved pago as pagada. A boleta that stopped being
// payable meanwhile (paid twice, or annulled) is credited to the socio instead, and its link to
// the pago is flagged so that the pago no longer counts as paying it.
func (s *Settler) payBoletas(ctx context.Context, tx repositories.Transaction, pago models.Pago) error {
	boletas, err := s.repository.ListBoletasByIds(ctx, tx, pago.BoletaIds, true)
	if err != nil {
		return err
	}

	payable := make([]string, 0, len(boletas))
	credited := make([]string, 0)
	var credit int64
	for _, boleta := range boletas {
		if boleta.IsPayable() {
			payable = append(payable, boleta.Id)
		} else {
			credited = append(credited, boleta.Id)
			credit += boleta.Total
		}
	}

	if err := s.repository.MarkBoletasPagadas(ctx, tx, payable, s.clock.Now()); err != nil {
		return err
	}
	if len(credited) == 0 {
		return nil
	}
	utils.LoggerFromContext(ctx).WarnContext(ctx, "pago covers boletas that are no longer payable",
		"pago_id", pago.Id, "credit", credit, "boletas", credited)
	if err := s.repository.MarkPagoBoletasCredited(ctx, tx, pago.Id, credited); err != nil {
		return err
	}
	return s.repository.AddSocioSaldoFavor(ctx, tx, pago.SocioId, credit)
}
