package usecases

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/pure_utils"
	"github.com/portal-apr/portal-apr-backend/repositories"
	"github.com/portal-apr/portal-apr-backend/repositories/clock"
	"github.com/portal-apr/portal-apr-backend/repositories/payment_gateways"
	"github.com/portal-apr/portal-apr-backend/usecases/executor_factory"
	"github.com/portal-apr/portal-apr-backend/usecases/security"
	"github.com/portal-apr/portal-apr-backend/usecases/tracking"
	"github.com/portal-apr/portal-apr-backend/utils"
)

// webpay refuses buy orders longer than 26 characters
const buyOrderLength = 26

type PagoRepository interface {
	GetSocioById(ctx context.Context, exec repositories.Executor, socioId string) (models.Socio, error)
	ListBoletasByIds(ctx context.Context, exec repositories.Executor, boletaIds []string, forUpdate bool) ([]models.Boleta, error)
	PendingPagosOnBoletas(ctx context.Context, exec repositories.Executor, boletaIds []string, createdAfter time.Time) ([]models.Pago, error)
	CreatePago(ctx context.Context, exec repositories.Transaction, pago models.PagoToCreate) error
	GetPagoById(ctx context.Context, exec repositories.Executor, pagoId string, forUpdate bool) (models.Pago, error)
	ListPagos(ctx context.Context, exec repositories.Executor, filters models.PagoFilters,
		pagination models.PaginationAndSorting) ([]models.Pago, error)
	SetPagoGatewayToken(ctx context.Context, exec repositories.Executor, pagoId, token string) error
	ResolvePago(ctx context.Context, exec repositories.Executor, pagoId string, resolution models.PagoResolution) (bool, error)
	AnnulPago(ctx context.Context, exec repositories.Executor, pagoId string, motivo string) error
	MarkBoletasPagadas(ctx context.Context, exec repositories.Executor, boletaIds []string, pagadaAt time.Time) error
	SetBoletaEstado(ctx context.Context, exec repositories.Executor, boletaId string, estado models.BoletaEstado) error
	ApprovedPagoExistsForBoleta(ctx context.Context, exec repositories.Executor, boletaId string) (bool, error)
	AddSocioSaldoFavor(ctx context.Context, exec repositories.Executor, socioId string, amount int64) error
}

type paymentGateways interface {
	Get(metodo models.MetodoPago) (payment_gateways.PaymentGateway, error)
	Names() []models.MetodoPago
}

type gatewayConfirmer interface {
	ConfirmGatewayPayment(ctx context.Context, notification models.GatewayNotification) (models.Pago, error)
}

type PaymentsConfig struct {
	// base url of this api, used to build the gateway callback urls
	PublicApiUrl string
	// base url of the portal, where socios land after paying
	PortalAppUrl string
	PendingTtl   time.Duration
}

type PagoUsecase struct {
	enforceSecurity    security.EnforceSecurityPago
	executorFactory    executor_factory.ExecutorFactory
	transactionFactory executor_factory.TransactionFactory
	repository         PagoRepository
	gateways           paymentGateways
	settler            gatewayConfirmer
	config             PaymentsConfig
	clock              clock.Clock
}

func newBuyOrder() (id, buyOrder string) {
	id = uuid.NewString()
	return id, strings.ReplaceAll(id, "-", "")[:buyOrderLength]
}

func (usecase *PagoUsecase) ListPagos(ctx context.Context, filters models.PagoFilters,
	pagination models.PaginationAndSorting,
) ([]models.Pago, error) {
	if err := usecase.enforceSecurity.ListPagos(filters.SocioId); err != nil {
		return nil, err
	}
	return usecase.repository.ListPagos(ctx, usecase.executorFactory.NewExecutor(), filters, pagination.WithDefaults())
}

func (usecase *PagoUsecase) GetPago(ctx context.Context, pagoId string) (models.Pago, error) {
	pago, err := usecase.repository.GetPagoById(ctx, usecase.executorFactory.NewExecutor(), pagoId, false)
	if err != nil {
		return models.Pago{}, err
	}
	if err := usecase.enforceSecurity.ReadPago(pago); err != nil {
		return models.Pago{}, err
	}
	return pago, nil
}

// OnlineMetodos lists the gateways a socio can pay with
func (usecase *PagoUsecase) OnlineMetodos() []models.MetodoPago {
	return usecase.gateways.Names()
}

// payableBoletas locks the boletas and checks that they all belong to the socio and can be
// paid. It returns the amount to pay.
func (usecase *PagoUsecase) payableBoletas(ctx context.Context, tx repositories.Transaction, socioId string,
	boletaIds []string,
) (int64, error) {
	if len(boletaIds) == 0 {
		return 0, errors.Wrap(models.BadParameterError, "at least one boleta is required")
	}
	boletas, err := usecase.repository.ListBoletasByIds(ctx, tx, boletaIds, true)
	if err != nil {
		return 0, err
	}
	if len(boletas) != len(boletaIds) {
		return 0, errors.Wrap(models.NotFoundError, "some boletas do not exist")
	}

	var total int64
	for _, boleta := range boletas {
		if boleta.SocioId != socioId {
			return 0, errors.Wrapf(models.NotFoundError, "boleta %s does not belong to socio %s", boleta.Id, socioId)
		}
		if !boleta.IsPayable() {
			return 0, errors.Wrapf(models.ErrBoletaNotPayable, "folio %d is %s", boleta.Folio, boleta.Estado)
		}
		total += boleta.Total
	}
	if total <= 0 {
		return 0, errors.Wrap(models.BadParameterError, "nothing to pay")
	}
	return total, nil
}

// StartCheckout creates a pending pago for the boletas and opens a transaction on the gateway.
// A boleta held by a pending pago younger than the ttl cannot enter another checkout.
func (usecase *PagoUsecase) StartCheckout(ctx context.Context, input models.CheckoutInput) (models.Checkout, error) {
	if err := usecase.enforceSecurity.StartCheckout(input.SocioId); err != nil {
		return models.Checkout{}, err
	}
	if input.Metodo.IsManual() {
		return models.Checkout{}, errors.Wrapf(models.BadParameterError, "%s is not an online payment method", input.Metodo)
	}
	gateway, err := usecase.gateways.Get(input.Metodo)
	if err != nil {
		return models.Checkout{}, err
	}
	boletaIds := pure_utils.Deduplicate(input.BoletaIds)

	pagoId, buyOrder := newBuyOrder()
	var (
		socio models.Socio
		monto int64
	)
	err = usecase.transactionFactory.Transaction(ctx, func(tx repositories.Transaction) error {
		socio, err = usecase.repository.GetSocioById(ctx, tx, input.SocioId)
		if err != nil {
			return err
		}
		monto, err = usecase.payableBoletas(ctx, tx, input.SocioId, boletaIds)
		if err != nil {
			return err
		}

		pending, err := usecase.repository.PendingPagosOnBoletas(ctx, tx, boletaIds,
			usecase.clock.Now().Add(-usecase.config.PendingTtl))
		if err != nil {
			return err
		}
		if len(pending) > 0 {
			return errors.Wrapf(models.ErrBoletaPendingCheckout, "pago %s", pending[0].Id)
		}

		return usecase.repository.CreatePago(ctx, tx, models.PagoToCreate{
			Id:        pagoId,
			SocioId:   input.SocioId,
			Monto:     monto,
			Metodo:    input.Metodo,
			Estado:    models.PagoPendiente,
			BuyOrder:  buyOrder,
			BoletaIds: boletaIds,
		})
	})
	if err != nil {
		return models.Checkout{}, err
	}

	exec := usecase.executorFactory.NewExecutor()
	transaction, err := gateway.CreateTransaction(ctx, models.GatewayTransactionRequest{
		BuyOrder:  buyOrder,
		SessionId: input.SocioId,
		Amount:    monto,
		Subject:   fmt.Sprintf("Pago de %d boleta(s), socio %d", len(boletaIds), socio.NumeroSocio),
		Email:     socio.Email,
		ReturnUrl: usecase.gatewayUrl(input.Metodo, "return"),
		NotifyUrl: usecase.gatewayUrl(input.Metodo, "notify"),
		CancelUrl: usecase.ResultUrl(models.Pago{Id: pagoId, Estado: models.PagoRechazado}),
	})
	if err != nil {
		// release the boletas right away rather than waiting for the ttl
		if _, rejectErr := usecase.repository.ResolvePago(ctx, exec, pagoId, models.PagoResolution{
			Estado: models.PagoRechazado,
			Motivo: err.Error(),
		}); rejectErr != nil {
			utils.LogAndReportSentryError(ctx, rejectErr)
		}
		return models.Checkout{}, err
	}

	if err := usecase.repository.SetPagoGatewayToken(ctx, exec, pagoId, transaction.Token); err != nil {
		return models.Checkout{}, err
	}
	pago, err := usecase.repository.GetPagoById(ctx, exec, pagoId, false)
	if err != nil {
		return models.Checkout{}, err
	}

	tracking.TrackEvent(ctx, models.AnalyticsCheckoutStarted, map[string]any{
		"pago_id": pago.Id,
		"metodo":  pago.Metodo,
		"monto":   pago.Monto,
	})
	return models.Checkout{Pago: pago, RedirectUrl: transaction.RedirectUrl}, nil
}

func (usecase *PagoUsecase) gatewayUrl(metodo models.MetodoPago, kind string) string {
	return strings.TrimSuffix(usecase.config.PublicApiUrl, "/") + "/gateways/" + string(metodo) + "/" + kind
}

// ResultUrl is the portal page a socio is sent to at the end of a checkout
func (usecase *PagoUsecase) ResultUrl(pago models.Pago) string {
	query := url.Values{"estado": {string(pago.Estado)}}
	return strings.TrimSuffix(usecase.config.PortalAppUrl, "/") + "/pagos/" + url.PathEscape(pago.Id) + "?" + query.Encode()
}

// ConfirmGatewayPayment handles a gateway callback. It is called without credentials: the
// outcome is always read back from the gateway.
func (usecase *PagoUsecase) ConfirmGatewayPayment(ctx context.Context, metodo models.MetodoPago,
	payload map[string]string,
) (models.Pago, error) {
	return usecase.settler.ConfirmGatewayPayment(ctx, models.GatewayNotification{
		Gateway: metodo,
		Payload: payload,
	})
}

// RegisterManualPayment records a payment received at the office. Pagos pay whole boletas: the
// amount, when given, must be the total of the boletas.
func (usecase *PagoUsecase) RegisterManualPayment(ctx context.Context, input models.ManualPaymentInput) (models.Pago, error) {
	if err := usecase.enforceSecurity.RegisterManualPayment(); err != nil {
		return models.Pago{}, err
	}
	if !input.Metodo.IsManual() {
		return models.Pago{}, errors.Wrapf(models.ErrManualMethodRequired, "got %q", input.Metodo)
	}
	boletaIds := pure_utils.Deduplicate(input.BoletaIds)
	registradoPor := usecase.enforceSecurity.Credentials().ActorIdentity.UserId

	pago, err := executor_factory.TransactionReturnValue(ctx, usecase.transactionFactory, func(
		tx repositories.Transaction,
	) (models.Pago, error) {
		monto, err := usecase.payableBoletas(ctx, tx, input.SocioId, boletaIds)
		if err != nil {
			return models.Pago{}, err
		}
		if input.Monto != 0 && input.Monto != monto {
			return models.Pago{}, errors.Wrapf(models.BadParameterError,
				"the amount %s does not match the boletas total %s", utils.FormatCLP(input.Monto), utils.FormatCLP(monto))
		}

		pagoId, buyOrder := newBuyOrder()
		if err := usecase.repository.CreatePago(ctx, tx, models.PagoToCreate{
			Id:            pagoId,
			SocioId:       input.SocioId,
			Monto:         monto,
			Metodo:        input.Metodo,
			Estado:        models.PagoPendiente,
			BuyOrder:      buyOrder,
			BoletaIds:     boletaIds,
			RegistradoPor: registradoPor,
		}); err != nil {
			return models.Pago{}, err
		}
		if _, err := usecase.repository.ResolvePago(ctx, tx, pagoId, models.PagoResolution{
			Estado: models.PagoAprobado,
		}); err != nil {
			return models.Pago{}, err
		}
		if err := usecase.repository.MarkBoletasPagadas(ctx, tx, boletaIds, usecase.clock.Now()); err != nil {
			return models.Pago{}, err
		}
		return usecase.repository.GetPagoById(ctx, tx, pagoId, false)
	})
	if err != nil {
		return models.Pago{}, err
	}

	utils.MetricPagoResolutions.WithLabelValues(string(pago.Metodo), string(pago.Estado)).Inc()
	tracking.TrackEvent(ctx, models.AnalyticsManualPagoRegistered, map[string]any{
		"pago_id": pago.Id,
		"metodo":  pago.Metodo,
		"monto":   pago.Monto,
	})
	return pago, nil
}

// AnnulPago cancels an approved pago. Its boletas become unpaid again, unless another approved
// pago also covers them. What the pago credited to the socio is taken back.
func (usecase *PagoUsecase) AnnulPago(ctx context.Context, pagoId, motivo string) (models.Pago, error) {
	pago, err := executor_factory.TransactionReturnValue(ctx, usecase.transactionFactory, func(
		tx repositories.Transaction,
	) (models.Pago, error) {
		pago, err := usecase.repository.GetPagoById(ctx, tx, pagoId, true)
		if err != nil {
			return models.Pago{}, err
		}
		if err := usecase.enforceSecurity.AnnulPago(pago); err != nil {
			return models.Pago{}, err
		}
		if pago.Estado != models.PagoAprobado {
			return models.Pago{}, errors.Wrapf(models.ErrPagoNotApproved, "pago %s is %s", pago.Id, pago.Estado)
		}
		if err := usecase.repository.AnnulPago(ctx, tx, pagoId, motivo); err != nil {
			return models.Pago{}, err
		}

		if len(pago.CreditedBoletaIds) > 0 {
			credited, err := usecase.repository.ListBoletasByIds(ctx, tx, pago.CreditedBoletaIds, false)
			if err != nil {
				return models.Pago{}, err
			}
			var credit int64
			for _, boleta := range credited {
				credit += boleta.Total
			}
			if err := usecase.repository.AddSocioSaldoFavor(ctx, tx, pago.SocioId, -credit); err != nil {
				return models.Pago{}, err
			}
		}

		boletas, err := usecase.repository.ListBoletasByIds(ctx, tx, pago.AppliedBoletaIds(), true)
		if err != nil {
			return models.Pago{}, err
		}
		now := usecase.clock.Now()
		for _, boleta := range boletas {
			if boleta.Estado != models.BoletaPagada {
				continue
			}
			stillPaid, err := usecase.repository.ApprovedPagoExistsForBoleta(ctx, tx, boleta.Id)
			if err != nil {
				return models.Pago{}, err
			}
			if stillPaid {
				continue
			}
			if err := usecase.repository.SetBoletaEstado(ctx, tx, boleta.Id, boleta.UnpaidEstadoAt(now)); err != nil {
				return models.Pago{}, err
			}
		}
		return usecase.repository.GetPagoById(ctx, tx, pagoId, false)
	})
	if err != nil {
		return models.Pago{}, err
	}

	utils.LoggerFromContext(ctx).InfoContext(ctx, "pago annulled", "pago_id", pago.Id, "motivo", motivo)
	tracking.TrackEvent(ctx, models.AnalyticsPagoAnnulled, map[string]any{"pago_id": pago.Id})
	return pago, nil
}
