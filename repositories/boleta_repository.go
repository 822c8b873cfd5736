package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories/dbmodels"
)

func selectBoletas() squirrel.SelectBuilder {
	return NewQueryBuilder().
		Select(dbmodels.BoletaFields...).
		From(dbmodels.TABLE_BOLETAS)
}

func (repo *PortalDbRepository) CreateBoleta(ctx context.Context, exec Executor, boleta models.BoletaToCreate) (models.Boleta, error) {
	cargos := boleta.Cargos
	return SqlToModel(
		ctx,
		exec,
		NewQueryBuilder().
			Insert(dbmodels.TABLE_BOLETAS).
			Columns(
				"socio_id",
				"periodo",
				"tarifa_id",
				"lectura_id",
				"consumo_m3",
				"cargo_fijo",
				"cargo_consumo",
				"subsidio",
				"saldo_anterior",
				"total",
				"detalle",
				"estado",
				"fecha_emision",
				"fecha_vencimiento",
			).
			Values(
				boleta.SocioId,
				boleta.Periodo.String(),
				boleta.TarifaId,
				boleta.LecturaId,
				cargos.ConsumoM3,
				cargos.CargoFijo,
				cargos.CargoConsumo,
				cargos.Subsidio,
				boleta.SaldoAnterior,
				cargos.Total(),
				cargos.Detalle,
				models.BoletaPendiente,
				boleta.FechaEmision,
				boleta.FechaVencimiento,
			).
			Suffix("RETURNING "+strings.Join(dbmodels.BoletaFields, ",")),
		dbmodels.AdaptBoleta,
	)
}

func (repo *PortalDbRepository) GetBoletaById(ctx context.Context, exec Executor, boletaId string, forUpdate bool) (models.Boleta, error) {
	query := selectBoletas().Where(squirrel.Eq{"id": boletaId})
	if forUpdate {
		query = query.Suffix("FOR UPDATE")
	}
	return SqlToModel(ctx, exec, query, dbmodels.AdaptBoleta)
}

// ListBoletasByIds returns the boletas in id order. With forUpdate, rows are locked in that
// same order so that concurrent lockers cannot deadlock.
func (repo *PortalDbRepository) ListBoletasByIds(ctx context.Context, exec Executor, boletaIds []string, forUpdate bool) ([]models.Boleta, error) {
	if len(boletaIds) == 0 {
		return []models.Boleta{}, nil
	}
	query := selectBoletas().Where(squirrel.Eq{"id": boletaIds}).OrderBy("id")
	if forUpdate {
		query = query.Suffix("FOR UPDATE")
	}
	return SqlToListOfModels(ctx, exec, query, dbmodels.AdaptBoleta)
}

// GetLiveBoleta returns the boleta of the socio for the periodo that was not annulled
func (repo *PortalDbRepository) GetLiveBoleta(ctx context.Context, exec Executor, socioId string, periodo models.Periodo) (*models.Boleta, error) {
	return SqlToOptionalModel(
		ctx,
		exec,
		selectBoletas().
			Where(squirrel.Eq{"socio_id": socioId}).
			Where(squirrel.Eq{"periodo": periodo.String()}).
			Where(squirrel.NotEq{"estado": models.BoletaAnulada}),
		dbmodels.AdaptBoleta,
	)
}

func (repo *PortalDbRepository) ListBoletas(
	ctx context.Context,
	exec Executor,
	filters models.BoletaFilters,
	pagination models.PaginationAndSorting,
) ([]models.Boleta, error) {
	query := selectBoletas()
	if filters.SocioId != "" {
		query = query.Where(squirrel.Eq{"socio_id": filters.SocioId})
	}
	if filters.Periodo != "" {
		query = query.Where(squirrel.Eq{"periodo": filters.Periodo.String()})
	}
	if len(filters.Estados) > 0 {
		query = query.Where(squirrel.Eq{"estado": filters.Estados})
	}
	return SqlToListOfModels(ctx, exec, applyPagination(query, "folio", pagination), dbmodels.AdaptBoleta)
}

// UnpaidBalanceBefore sums the totals of the payable boletas of the socio for earlier periods
func (repo *PortalDbRepository) UnpaidBalanceBefore(ctx context.Context, exec Executor, socioId string, periodo models.Periodo) (int64, error) {
	query, args, err := NewQueryBuilder().
		Select("COALESCE(SUM(total), 0)").
		From(dbmodels.TABLE_BOLETAS).
		Where(squirrel.Eq{"socio_id": socioId}).
		Where(squirrel.Lt{"periodo": periodo.String()}).
		Where(squirrel.Eq{"estado": []models.BoletaEstado{models.BoletaPendiente, models.BoletaVencida}}).
		ToSql()
	if err != nil {
		return 0, err
	}
	var balance int64
	err = exec.QueryRow(ctx, query, args...).Scan(&balance)
	return balance, err
}

// LockOverdueBoletas locks the pending boletas whose due date is past. Rows locked by
// another worker are skipped.
func (repo *PortalDbRepository) LockOverdueBoletas(ctx context.Context, exec Transaction, now time.Time, limit int) ([]models.Boleta, error) {
	return SqlToListOfModels(
		ctx,
		exec,
		selectBoletas().
			Where(squirrel.Eq{"estado": models.BoletaPendiente}).
			Where(squirrel.Lt{"fecha_vencimiento": now}).
			OrderBy("fecha_vencimiento").
			Limit(uint64(limit)).
			Suffix("FOR UPDATE SKIP LOCKED"),
		dbmodels.AdaptBoleta,
	)
}

// MarkBoletaVencida moves the boleta to vencida and adds the late fee to its total
func (repo *PortalDbRepository) MarkBoletaVencida(ctx context.Context, exec Executor, boletaId string, recargo int64) error {
	_, err := ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Update(dbmodels.TABLE_BOLETAS).
			Set("estado", models.BoletaVencida).
			Set("recargo", squirrel.Expr("recargo + ?", recargo)).
			Set("total", squirrel.Expr("total + ?", recargo)).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": boletaId}),
	)
	return err
}

func (repo *PortalDbRepository) MarkBoletasPagadas(ctx context.Context, exec Executor, boletaIds []string, pagadaAt time.Time) error {
	if len(boletaIds) == 0 {
		return nil
	}
	_, err := ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Update(dbmodels.TABLE_BOLETAS).
			Set("estado", models.BoletaPagada).
			Set("pagada_at", pagadaAt).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": boletaIds}),
	)
	return err
}

// SetBoletaEstado puts a boleta back in an unpaid state, or annuls it
func (repo *PortalDbRepository) SetBoletaEstado(ctx context.Context, exec Executor, boletaId string, estado models.BoletaEstado) error {
	_, err := ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Update(dbmodels.TABLE_BOLETAS).
			Set("estado", estado).
			Set("pagada_at", nil).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": boletaId}),
	)
	return err
}

func (repo *PortalDbRepository) ListBoletaExportRows(ctx context.Context, exec Executor, periodo models.Periodo) ([]models.BoletaExportRow, error) {
	query := NewQueryBuilder().
		Select(columnsNames("b", dbmodels.BoletaFields)...).
		Column("s.numero_socio").
		Column("s.rut").
		Column("s.nombres || ' ' || s.apellidos").
		From(dbmodels.TABLE_BOLETAS + " AS b").
		Join(dbmodels.TABLE_SOCIOS + " AS s ON s.id = b.socio_id").
		Where(squirrel.Eq{"b.periodo": periodo.String()}).
		OrderBy("b.folio")

	return SqlToListOfRow(ctx, exec, query, func(row pgx.CollectableRow) (models.BoletaExportRow, error) {
		var db dbmodels.DBBoleta
		var out models.BoletaExportRow
		err := row.Scan(
			&db.Id, &db.Folio, &db.SocioId, &db.Periodo, &db.TarifaId, &db.LecturaId,
			&db.ConsumoM3, &db.CargoFijo, &db.CargoConsumo, &db.Subsidio, &db.Recargo,
			&db.SaldoAnterior, &db.Total, &db.Detalle, &db.Estado, &db.FechaEmision,
			&db.FechaVencimiento, &db.PagadaAt, &db.CreatedAt, &db.UpdatedAt,
			&out.NumeroSocio, &out.Rut, &out.Nombre,
		)
		if err != nil {
			return out, err
		}
		out.Boleta, err = dbmodels.AdaptBoleta(db)
		return out, err
	})
}
