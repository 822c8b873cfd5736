package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories/dbmodels"
)

func selectPagos() squirrel.SelectBuilder {
	return NewQueryBuilder().
		Select(columnsNames("p", dbmodels.PagoFields)...).
		Column(dbmodels.SelectPagoBoletaIds).
		Column(dbmodels.SelectPagoCreditedBoletaIds).
		From(dbmodels.TABLE_PAGOS + " AS p")
}

func (repo *PortalDbRepository) CreatePago(ctx context.Context, exec Transaction, pago models.PagoToCreate) error {
	if _, err := ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Insert(dbmodels.TABLE_PAGOS).
			Columns(
				"id",
				"socio_id",
				"monto",
				"metodo",
				"estado",
				"buy_order",
				"registrado_por",
			).
			Values(
				pago.Id,
				pago.SocioId,
				pago.Monto,
				pago.Metodo,
				pago.Estado,
				pago.BuyOrder,
				pago.RegistradoPor,
			),
	); err != nil {
		return err
	}

	insert := NewQueryBuilder().
		Insert(dbmodels.TABLE_PAGO_BOLETAS).
		Columns("pago_id", "boleta_id")
	for _, boletaId := range pago.BoletaIds {
		insert = insert.Values(pago.Id, boletaId)
	}
	_, err := ExecBuilder(ctx, exec, insert)
	return err
}

func (repo *PortalDbRepository) GetPagoById(ctx context.Context, exec Executor, pagoId string, forUpdate bool) (models.Pago, error) {
	query := selectPagos().Where(squirrel.Eq{"p.id": pagoId})
	if forUpdate {
		query = query.Suffix("FOR UPDATE")
	}
	return SqlToModel(ctx, exec, query, dbmodels.AdaptPagoWithBoletas)
}

// LockPagoIfPending locks the pago row if it is still pending and nobody else holds it
func (repo *PortalDbRepository) LockPagoIfPending(ctx context.Context, exec Transaction, pagoId string) (*models.Pago, error) {
	return SqlToOptionalModel(
		ctx,
		exec,
		selectPagos().
			Where(squirrel.Eq{"p.id": pagoId}).
			Where(squirrel.Eq{"p.estado": models.PagoPendiente}).
			Suffix("FOR UPDATE SKIP LOCKED"),
		dbmodels.AdaptPagoWithBoletas,
	)
}

func (repo *PortalDbRepository) GetPagoByGatewayToken(ctx context.Context, exec Executor, metodo models.MetodoPago, token string) (*models.Pago, error) {
	return SqlToOptionalModel(
		ctx,
		exec,
		selectPagos().
			Where(squirrel.Eq{"p.metodo": metodo}).
			Where(squirrel.Eq{"p.gateway_token": token}).
			Where(squirrel.NotEq{"p.gateway_token": ""}),
		dbmodels.AdaptPagoWithBoletas,
	)
}

func (repo *PortalDbRepository) GetPagoByBuyOrder(ctx context.Context, exec Executor, buyOrder string) (*models.Pago, error) {
	return SqlToOptionalModel(ctx, exec, selectPagos().Where(squirrel.Eq{"p.buy_order": buyOrder}), dbmodels.AdaptPagoWithBoletas)
}

func (repo *PortalDbRepository) ListPagos(
	ctx context.Context,
	exec Executor,
	filters models.PagoFilters,
	pagination models.PaginationAndSorting,
) ([]models.Pago, error) {
	query := selectPagos()
	if filters.SocioId != "" {
		query = query.Where(squirrel.Eq{"p.socio_id": filters.SocioId})
	}
	if filters.Estado != "" {
		query = query.Where(squirrel.Eq{"p.estado": filters.Estado})
	}
	if filters.Metodo != "" {
		query = query.Where(squirrel.Eq{"p.metodo": filters.Metodo})
	}
	return SqlToListOfModels(ctx, exec, applyPagination(query, "p.created_at", pagination), dbmodels.AdaptPagoWithBoletas)
}

func (repo *PortalDbRepository) SetPagoGatewayToken(ctx context.Context, exec Executor, pagoId, token string) error {
	_, err := ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Update(dbmodels.TABLE_PAGOS).
			Set("gateway_token", token).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": pagoId}),
	)
	return err
}

// ResolvePago moves a pending pago to its final state. It does nothing if the pago is no longer
// pending, and reports whether a row was updated.
func (repo *PortalDbRepository) ResolvePago(ctx context.Context, exec Executor, pagoId string, resolution models.PagoResolution) (bool, error) {
	query := NewQueryBuilder().
		Update(dbmodels.TABLE_PAGOS).
		Set("estado", resolution.Estado).
		Set("motivo_rechazo", resolution.Motivo).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": pagoId}).
		Where(squirrel.Eq{"estado": models.PagoPendiente})
	if resolution.GatewayTransactionId != "" {
		query = query.Set("gateway_transaction_id", resolution.GatewayTransactionId)
	}
	if resolution.Estado == models.PagoAprobado {
		query = query.Set("confirmado_at", squirrel.Expr("NOW()"))
	}

	affected, err := ExecBuilder(ctx, exec, query)
	return affected > 0, err
}

func (repo *PortalDbRepository) AnnulPago(ctx context.Context, exec Executor, pagoId string, motivo string) error {
	_, err := ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Update(dbmodels.TABLE_PAGOS).
			Set("estado", models.PagoAnulado).
			Set("motivo_rechazo", motivo).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": pagoId}),
	)
	return err
}

// PendingPagosOnBoletas returns the pending pagos created after the given time that hold one
// of the boletas
func (repo *PortalDbRepository) PendingPagosOnBoletas(ctx context.Context, exec Executor, boletaIds []string, createdAfter time.Time) ([]models.Pago, error) {
	return SqlToListOfModels(
		ctx,
		exec,
		selectPagos().
			Where(squirrel.Eq{"p.estado": models.PagoPendiente}).
			Where(squirrel.Gt{"p.created_at": createdAfter}).
			Where(squirrel.Expr(
				"EXISTS (SELECT 1 FROM pago_boletas pb WHERE pb.pago_id = p.id AND pb.boleta_id = ANY(?))",
				boletaIds,
			)),
		dbmodels.AdaptPagoWithBoletas,
	)
}

// ApprovedPagoExistsForBoleta tells whether an approved pago pays the boleta. Pagos that were
// credited to the socio for this boleta do not count.
func (repo *PortalDbRepository) ApprovedPagoExistsForBoleta(ctx context.Context, exec Executor, boletaId string) (bool, error) {
	query, args, err := NewQueryBuilder().
		Select("1").
		From(dbmodels.TABLE_PAGO_BOLETAS + " AS pb").
		Join(dbmodels.TABLE_PAGOS + " AS p ON p.id = pb.pago_id").
		Where(squirrel.Eq{"pb.boleta_id": boletaId}).
		Where("pb.applied").
		Where(squirrel.Eq{"p.estado": models.PagoAprobado}).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, err
	}
	var exists bool
	err = exec.QueryRow(ctx, query, args...).Scan(&exists)
	return exists, err
}

// ListApprovedPagosWithUnpaidBoletas returns the approved pagos that have a linked boleta
// in a state other than pagada or anulada
func (repo *PortalDbRepository) ListApprovedPagosWithUnpaidBoletas(ctx context.Context, exec Executor, limit int) ([]models.Pago, error) {
	return SqlToListOfModels(
		ctx,
		exec,
		selectPagos().
			Where(squirrel.Eq{"p.estado": models.PagoAprobado}).
			Where(squirrel.Expr(
				`EXISTS (SELECT 1 FROM pago_boletas pb JOIN boletas b ON b.id = pb.boleta_id
				WHERE pb.pago_id = p.id AND pb.applied AND b.estado IN (?, ?))`,
				models.BoletaPendiente, models.BoletaVencida,
			)).
			OrderBy("p.confirmado_at").
			Limit(uint64(limit)),
		dbmodels.AdaptPagoWithBoletas,
	)
}

// ListPagadaBoletasWithoutApprovedPago returns the boletas marked as paid that no approved pago pays
func (repo *PortalDbRepository) ListPagadaBoletasWithoutApprovedPago(ctx context.Context, exec Executor, limit int) ([]models.Boleta, error) {
	return SqlToListOfModels(
		ctx,
		exec,
		NewQueryBuilder().
			Select(columnsNames("b", dbmodels.BoletaFields)...).
			From(dbmodels.TABLE_BOLETAS+" AS b").
			Where(squirrel.Eq{"b.estado": models.BoletaPagada}).
			Where(squirrel.Expr(
				`NOT EXISTS (SELECT 1 FROM pago_boletas pb JOIN pagos p ON p.id = pb.pago_id
				WHERE pb.boleta_id = b.id AND pb.applied AND p.estado = ?)`,
				models.PagoAprobado,
			)).
			OrderBy("b.folio").
			Limit(uint64(limit)),
		dbmodels.AdaptBoleta,
	)
}

func (repo *PortalDbRepository) ListPendingPagosCreatedBefore(ctx context.Context, exec Executor, before time.Time, limit int) ([]models.Pago, error) {
	return SqlToListOfModels(
		ctx,
		exec,
		selectPagos().
			Where(squirrel.Eq{"p.estado": models.PagoPendiente}).
			Where(squirrel.Lt{"p.created_at": before}).
			OrderBy("p.created_at").
			Limit(uint64(limit)),
		dbmodels.AdaptPagoWithBoletas,
	)
}

// MarkPagoBoletasCredited flags boletas of the pago as credited to the socio instead of paid
func (repo *PortalDbRepository) MarkPagoBoletasCredited(ctx context.Context, exec Executor, pagoId string, boletaIds []string) error {
	if len(boletaIds) == 0 {
		return nil
	}
	_, err := ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Update(dbmodels.TABLE_PAGO_BOLETAS).
			Set("applied", false).
			Where(squirrel.Eq{"pago_id": pagoId, "boleta_id": boletaIds}),
	)
	return err
}

// InsertGatewayNotification stores a gateway callback. It returns false if a notification
// with the same content hash was already stored.
func (repo *PortalDbRepository) InsertGatewayNotification(ctx context.Context, exec Executor, notification models.GatewayNotification, hash string) (bool, error) {
	affected, err := ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Insert(dbmodels.TABLE_GATEWAY_NOTIFICATIONS).
			Columns("gateway", "token", "payload", "hash", "received_at").
			Values(notification.Gateway, notification.Token, notification.Payload, hash, notification.ReceivedAt).
			Suffix("ON CONFLICT (hash) DO NOTHING"),
	)
	return affected > 0, err
}

func (repo *PortalDbRepository) ListPagoIdsOfBoleta(ctx context.Context, exec Executor, boletaId string) ([]string, error) {
	return SqlToListOfRow(
		ctx,
		exec,
		NewQueryBuilder().
			Select("pago_id::text").
			From(dbmodels.TABLE_PAGO_BOLETAS).
			Where(squirrel.Eq{"boleta_id": boletaId}).
			OrderBy("pago_id"),
		func(row pgx.CollectableRow) (string, error) {
			var id string
			err := row.Scan(&id)
			return id, err
		},
	)
}
