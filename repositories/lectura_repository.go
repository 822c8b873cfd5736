package repositories

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories/dbmodels"
)

func selectLecturas() squirrel.SelectBuilder {
	return NewQueryBuilder().
		Select(dbmodels.LecturaFields...).
		From(dbmodels.TABLE_LECTURAS)
}

func (repo *PortalDbRepository) CreateLectura(ctx context.Context, exec Executor, lectura models.Lectura) (models.Lectura, error) {
	return SqlToModel(
		ctx,
		exec,
		NewQueryBuilder().
			Insert(dbmodels.TABLE_LECTURAS).
			Columns(
				"socio_id",
				"periodo",
				"lectura_anterior",
				"lectura_actual",
				"fecha_lectura",
				"registrado_por",
			).
			Values(
				lectura.SocioId,
				lectura.Periodo.String(),
				lectura.LecturaAnterior,
				lectura.LecturaActual,
				lectura.FechaLectura,
				lectura.RegistradoPor,
			).
			Suffix("RETURNING "+strings.Join(dbmodels.LecturaFields, ",")),
		dbmodels.AdaptLectura,
	)
}

func (repo *PortalDbRepository) GetLectura(ctx context.Context, exec Executor, socioId string, periodo models.Periodo) (*models.Lectura, error) {
	return SqlToOptionalModel(
		ctx,
		exec,
		selectLecturas().
			Where(squirrel.Eq{"socio_id": socioId}).
			Where(squirrel.Eq{"periodo": periodo.String()}),
		dbmodels.AdaptLectura,
	)
}

// LastLecturaBefore returns the most recent reading of a period strictly before the given one
func (repo *PortalDbRepository) LastLecturaBefore(ctx context.Context, exec Executor, socioId string, periodo models.Periodo) (*models.Lectura, error) {
	return SqlToOptionalModel(
		ctx,
		exec,
		selectLecturas().
			Where(squirrel.Eq{"socio_id": socioId}).
			Where(squirrel.Lt{"periodo": periodo.String()}).
			OrderBy("periodo DESC").
			Limit(1),
		dbmodels.AdaptLectura,
	)
}

func (repo *PortalDbRepository) ListLecturas(
	ctx context.Context,
	exec Executor,
	filters models.LecturaFilters,
	pagination models.PaginationAndSorting,
) ([]models.Lectura, error) {
	query := selectLecturas()
	if filters.SocioId != "" {
		query = query.Where(squirrel.Eq{"socio_id": filters.SocioId})
	}
	if filters.Periodo != "" {
		query = query.Where(squirrel.Eq{"periodo": filters.Periodo.String()})
	}
	return SqlToListOfModels(ctx, exec, applyPagination(query, "periodo", pagination), dbmodels.AdaptLectura)
}
