package repositories

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/pure_utils"
	"github.com/portal-apr/portal-apr-backend/repositories/dbmodels"
)

func selectTarifas() squirrel.SelectBuilder {
	return NewQueryBuilder().
		Select(dbmodels.TarifaFields...).
		From(dbmodels.TABLE_TARIFAS)
}

// attaches the escalones of the tarifas, in band order
func (repo *PortalDbRepository) withEscalones(ctx context.Context, exec Executor, tarifas []models.Tarifa) ([]models.Tarifa, error) {
	if len(tarifas) == 0 {
		return tarifas, nil
	}
	ids := pure_utils.Map(tarifas, func(t models.Tarifa) string { return t.Id })

	escalones, err := SqlToListOfModels(
		ctx,
		exec,
		NewQueryBuilder().
			Select(dbmodels.EscalonFields...).
			From(dbmodels.TABLE_ESCALONES).
			Where(squirrel.Eq{"tarifa_id": ids}).
			OrderBy("tarifa_id", "orden"),
		dbmodels.AdaptEscalon,
	)
	if err != nil {
		return nil, err
	}

	byTarifa := pure_utils.GroupBy(escalones, func(e models.Escalon) string { return e.TarifaId })
	for i := range tarifas {
		tarifas[i].Escalones = byTarifa[tarifas[i].Id]
		if tarifas[i].Escalones == nil {
			tarifas[i].Escalones = []models.Escalon{}
		}
	}
	return tarifas, nil
}

func (repo *PortalDbRepository) CreateTarifa(ctx context.Context, exec Executor, input models.CreateTarifaInput) (string, error) {
	vigenteDesde := any(squirrel.Expr("NOW()"))
	if !input.VigenteDesde.IsZero() {
		vigenteDesde = input.VigenteDesde
	}
	modo := input.Modo
	if modo == "" {
		modo = models.ModoProgresivo
	}

	var id string
	query, args, err := NewQueryBuilder().
		Insert(dbmodels.TABLE_TARIFAS).
		Columns(
			"nombre",
			"cargo_fijo",
			"modo",
			"subsidio_porcentaje",
			"subsidio_limite_m3",
			"recargo_mora_porcentaje",
			"vigente_desde",
		).
		Values(
			input.Nombre,
			input.CargoFijo,
			modo,
			input.SubsidioPorcentaje,
			input.SubsidioLimiteM3,
			input.RecargoMoraPorcentaje,
			vigenteDesde,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return "", err
	}
	if err := exec.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return "", err
	}

	if err := repo.ReplaceEscalones(ctx, exec, id, input.Escalones); err != nil {
		return "", err
	}
	return id, nil
}

// ReplaceEscalones deletes the bands of the tarifa and inserts the given ones, numbered in order
func (repo *PortalDbRepository) ReplaceEscalones(ctx context.Context, exec Executor, tarifaId string, escalones []models.EscalonInput) error {
	if _, err := ExecBuilder(ctx, exec, NewQueryBuilder().
		Delete(dbmodels.TABLE_ESCALONES).
		Where(squirrel.Eq{"tarifa_id": tarifaId})); err != nil {
		return err
	}
	if len(escalones) == 0 {
		return nil
	}

	insert := NewQueryBuilder().
		Insert(dbmodels.TABLE_ESCALONES).
		Columns("tarifa_id", "orden", "desde_m3", "hasta_m3", "precio_m3")
	for i, e := range escalones {
		insert = insert.Values(tarifaId, i+1, e.DesdeM3, e.HastaM3, e.PrecioM3)
	}
	_, err := ExecBuilder(ctx, exec, insert)
	return err
}

func (repo *PortalDbRepository) GetTarifa(ctx context.Context, exec Executor, tarifaId string) (models.Tarifa, error) {
	tarifa, err := SqlToModel(ctx, exec, selectTarifas().Where(squirrel.Eq{"id": tarifaId}), dbmodels.AdaptTarifa)
	if err != nil {
		return models.Tarifa{}, err
	}
	tarifas, err := repo.withEscalones(ctx, exec, []models.Tarifa{tarifa})
	if err != nil {
		return models.Tarifa{}, err
	}
	return tarifas[0], nil
}

func (repo *PortalDbRepository) GetActiveTarifa(ctx context.Context, exec Executor) (*models.Tarifa, error) {
	tarifa, err := SqlToOptionalModel(ctx, exec, selectTarifas().Where(squirrel.Eq{"activa": true}), dbmodels.AdaptTarifa)
	if err != nil || tarifa == nil {
		return nil, err
	}
	tarifas, err := repo.withEscalones(ctx, exec, []models.Tarifa{*tarifa})
	if err != nil {
		return nil, err
	}
	return &tarifas[0], nil
}

func (repo *PortalDbRepository) ListTarifas(ctx context.Context, exec Executor) ([]models.Tarifa, error) {
	tarifas, err := SqlToListOfModels(ctx, exec, selectTarifas().OrderBy("vigente_desde DESC"), dbmodels.AdaptTarifa)
	if err != nil {
		return nil, err
	}
	return repo.withEscalones(ctx, exec, tarifas)
}

func (repo *PortalDbRepository) UpdateTarifa(ctx context.Context, exec Executor, input models.UpdateTarifaInput) error {
	query := NewQueryBuilder().
		Update(dbmodels.TABLE_TARIFAS).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": input.Id})

	if input.Nombre != nil {
		query = query.Set("nombre", strings.TrimSpace(*input.Nombre))
	}
	if input.CargoFijo != nil {
		query = query.Set("cargo_fijo", *input.CargoFijo)
	}
	if input.Modo != nil {
		query = query.Set("modo", *input.Modo)
	}
	if input.SubsidioPorcentaje != nil {
		query = query.Set("subsidio_porcentaje", *input.SubsidioPorcentaje)
	}
	if input.SubsidioLimiteM3 != nil {
		query = query.Set("subsidio_limite_m3", *input.SubsidioLimiteM3)
	}
	if input.RecargoMoraPorcentaje != nil {
		query = query.Set("recargo_mora_porcentaje", *input.RecargoMoraPorcentaje)
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

// ActivateTarifa makes the tarifa the only active one. Must run in a transaction.
func (repo *PortalDbRepository) ActivateTarifa(ctx context.Context, exec Transaction, tarifaId string) error {
	if _, err := ExecBuilder(ctx, exec, NewQueryBuilder().
		Update(dbmodels.TABLE_TARIFAS).
		Set("activa", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"activa": true}).
		Where(squirrel.NotEq{"id": tarifaId})); err != nil {
		return err
	}

	affected, err := ExecBuilder(ctx, exec, NewQueryBuilder().
		Update(dbmodels.TABLE_TARIFAS).
		Set("activa", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": tarifaId}))
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.NotFoundError
	}
	return nil
}
