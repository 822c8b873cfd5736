package usecases

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/usecases/executor_factory"
	"github.com/portal-apr/portal-apr-backend/utils"
)

type SeedUseCase struct {
	transactionFactory executor_factory.TransactionFactory
	executorFactory    executor_factory.ExecutorFactory
	userRepository     UserRepository
	tarifaRepository   TarifaRepository
	activeTarifa       activeTarifaCache
}

// SeedAdmin creates the first admin of the committee. An existing user with the same email is
// left as is.
func (usecase *SeedUseCase) SeedAdmin(ctx context.Context, email, name, password string) error {
	_, err := CreateStaffUser(ctx, usecase.executorFactory, usecase.userRepository, models.CreateUser{
		Email:    email,
		Name:     name,
		Role:     models.ADMIN,
		Password: password,
	})
	// ignore user already added
	if errors.Is(err, models.ConflictError) {
		utils.LoggerFromContext(ctx).InfoContext(ctx, "admin already exists", "email", email)
		return nil
	}
	return err
}

// SeedTarifaFromFile creates a tarifa described in a YAML file, such as
//
//	nombre: Tarifa 2024
//	cargo_fijo: 3500
//	modo: progresivo
//	subsidio_porcentaje: 50
//	subsidio_limite_m3: 15
//	recargo_mora_porcentaje: 2
//	activa: true
//	escalones:
//	  - {desde_m3: 0, hasta_m3: 10, precio_m3: 450}
//	  - {desde_m3: 10, precio_m3: 700}
func (usecase *SeedUseCase) SeedTarifaFromFile(ctx context.Context, path string) (models.Tarifa, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.Tarifa{}, errors.Wrapf(err, "could not read %s", path)
	}
	var input models.CreateTarifaInput
	if err := yaml.Unmarshal(raw, &input); err != nil {
		return models.Tarifa{}, errors.Wrapf(models.BadParameterError, "invalid tarifa file %s: %s", path, err)
	}
	return CreateTarifa(ctx, usecase.transactionFactory, usecase.tarifaRepository, usecase.activeTarifa, input)
}
