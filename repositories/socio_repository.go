package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories/dbmodels"
)

func selectSocios() squirrel.SelectBuilder {
	return NewQueryBuilder().
		Select(dbmodels.SocioFields...).
		From(dbmodels.TABLE_SOCIOS)
}

func (repo *PortalDbRepository) CreateSocio(ctx context.Context, exec Executor, input models.CreateSocioInput) (models.Socio, error) {
	var numeroSocio any = input.NumeroSocio
	if input.NumeroSocio == 0 {
		numeroSocio = squirrel.Expr("(SELECT COALESCE(MAX(numero_socio), 0) + 1 FROM socios)")
	}

	return SqlToModel(
		ctx,
		exec,
		NewQueryBuilder().
			Insert(dbmodels.TABLE_SOCIOS).
			Columns(
				"numero_socio",
				"rut",
				"nombres",
				"apellidos",
				"email",
				"telefono",
				"direccion",
				"numero_medidor",
				"estado",
			).
			Values(
				numeroSocio,
				input.Rut,
				input.Nombres,
				input.Apellidos,
				input.Email,
				input.Telefono,
				input.Direccion,
				input.NumeroMedidor,
				models.SocioActivo,
			).
			Suffix("RETURNING "+strings.Join(dbmodels.SocioFields, ",")),
		dbmodels.AdaptSocio,
	)
}

func (repo *PortalDbRepository) GetSocioById(ctx context.Context, exec Executor, socioId string) (models.Socio, error) {
	return SqlToModel(ctx, exec, selectSocios().Where(squirrel.Eq{"id": socioId}), dbmodels.AdaptSocio)
}

func (repo *PortalDbRepository) GetSocioByRut(ctx context.Context, exec Executor, rut string) (*models.Socio, error) {
	return SqlToOptionalModel(ctx, exec, selectSocios().Where(squirrel.Eq{"rut": rut}), dbmodels.AdaptSocio)
}

func (repo *PortalDbRepository) ListSocios(
	ctx context.Context,
	exec Executor,
	filters models.SocioFilters,
	pagination models.PaginationAndSorting,
) ([]models.Socio, error) {
	query := selectSocios()
	if filters.Estado != "" {
		query = query.Where(squirrel.Eq{"estado": filters.Estado})
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := fmt.Sprintf("%%%s%%", search)
		query = query.Where(squirrel.Or{
			squirrel.ILike{"rut": pattern},
			squirrel.ILike{"nombres || ' ' || apellidos": pattern},
			squirrel.Expr("numero_socio::text = ?", search),
		})
	}
	pagination.Order = models.SortingOrderAsc
	return SqlToListOfModels(ctx, exec, applyPagination(query, "numero_socio", pagination), dbmodels.AdaptSocio)
}

// ListActiveSocioIds returns all the socios that are billed
func (repo *PortalDbRepository) ListActiveSocioIds(ctx context.Context, exec Executor) ([]string, error) {
	query := NewQueryBuilder().
		Select("id").
		From(dbmodels.TABLE_SOCIOS).
		Where(squirrel.Eq{"estado": models.SocioActivo}).
		OrderBy("numero_socio")
	return SqlToListOfRow(ctx, exec, query, func(row pgx.CollectableRow) (string, error) {
		var id string
		err := row.Scan(&id)
		return id, err
	})
}

func (repo *PortalDbRepository) UpdateSocio(ctx context.Context, exec Executor, input models.UpdateSocioInput) error {
	query := NewQueryBuilder().
		Update(dbmodels.TABLE_SOCIOS).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": input.Id})

	if input.Nombres != nil {
		query = query.Set("nombres", *input.Nombres)
	}
	if input.Apellidos != nil {
		query = query.Set("apellidos", *input.Apellidos)
	}
	if input.Email != nil {
		query = query.Set("email", *input.Email)
	}
	if input.Telefono != nil {
		query = query.Set("telefono", *input.Telefono)
	}
	if input.Direccion != nil {
		query = query.Set("direccion", *input.Direccion)
	}
	if input.NumeroMedidor != nil {
		query = query.Set("numero_medidor", *input.NumeroMedidor)
	}
	if input.Estado != nil {
		query = query.Set("estado", *input.Estado)
	}

	affected, err := ExecBuilder(ctx, exec, query)
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.NotFoundError
	}
	return nil
}

func (repo *PortalDbRepository) UpdateSocioPassword(ctx context.Context, exec Executor, socioId, passwordHash string) error {
	affected, err := ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Update(dbmodels.TABLE_SOCIOS).
			Set("password_hash", passwordHash).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": socioId}),
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.NotFoundError
	}
	return nil
}

func (repo *PortalDbRepository) AddSocioSaldoFavor(ctx context.Context, exec Executor, socioId string, amount int64) error {
	_, err := ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Update(dbmodels.TABLE_SOCIOS).
			Set("saldo_favor", squirrel.Expr("saldo_favor + ?", amount)).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": socioId}),
	)
	return err
}
