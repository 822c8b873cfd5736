package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"

	"github.com/portal-apr/portal-apr-backend/infra"
	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/usecases"
	"github.com/portal-apr/portal-apr-backend/utils"
)

// MaintenanceTask is one operation run by hand on the database. Passwords are read from the
// NEW_PASSWORD environment variable, never from the command line.
type MaintenanceTask struct {
	CreateAdminEmail string
	ResetAdminEmail  string
	ResetSocioRut    string
	RepairTarifas    bool
	DryRun           bool
	SeedTarifaFile   string
	ReconcileOnce    bool
	AdminName        string
}

func (task MaintenanceTask) IsSet() bool {
	return task.CreateAdminEmail != "" || task.ResetAdminEmail != "" || task.ResetSocioRut != "" ||
		task.RepairTarifas || task.SeedTarifaFile != "" || task.ReconcileOnce
}

func RunMaintenance(config CompiledConfig, task MaintenanceTask) error {
	env := utils.GetEnv("ENV", "development")
	logger := utils.NewLogger(utils.GetEnv("LOGGING_FORMAT", "text"))
	ctx := utils.StoreLoggerInContext(context.Background(), logger)

	infra.SetupSentry(utils.GetEnv("SENTRY_DSN", ""), env, config.Version)
	defer sentry.Flush(3 * time.Second)

	telemetry := infra.NoopTelemetry()
	pool, err := openPool(ctx, pgConfigFromEnv(), telemetry)
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}
	defer pool.Close()

	gatewaysConfig := gatewaysConfigFromEnv(env)
	repos := newRepositories(ctx, pool, gatewaysConfig, telemetry, nil)
	uc := newUsecases(repos, usecasesConfig{
		billing:        billingConfigFromEnv(),
		reconciliation: reconciliationConfigFromEnv(),
		gateways:       gatewaysConfig,
	})

	if err := runMaintenanceTask(ctx, uc, task, utils.GetEnv("NEW_PASSWORD", "")); err != nil {
		logger.ErrorContext(ctx, "maintenance task failed", "error", err.Error())
		return err
	}
	return nil
}

func runMaintenanceTask(ctx context.Context, uc usecases.Usecases, task MaintenanceTask, password string) error {
	logger := utils.LoggerFromContext(ctx)
	maintenance := uc.NewMaintenanceUsecase()

	needsPassword := task.CreateAdminEmail != "" || task.ResetAdminEmail != "" || task.ResetSocioRut != ""
	if needsPassword && len(password) < 8 {
		return errors.New("NEW_PASSWORD must be set and at least 8 characters long")
	}

	switch {
	case task.CreateAdminEmail != "":
		seed := uc.NewSeedUseCase()
		if err := seed.SeedAdmin(ctx, task.CreateAdminEmail, task.AdminName, password); err != nil {
			return err
		}
		logger.InfoContext(ctx, "admin ready", "email", task.CreateAdminEmail)

	case task.ResetAdminEmail != "":
		if err := maintenance.ResetAdminPassword(ctx, task.ResetAdminEmail, password); err != nil {
			return err
		}
		logger.InfoContext(ctx, "admin password reset", "email", task.ResetAdminEmail)

	case task.ResetSocioRut != "":
		if err := maintenance.ResetSocioPassword(ctx, task.ResetSocioRut, password); err != nil {
			return err
		}
		logger.InfoContext(ctx, "socio password reset", "rut", task.ResetSocioRut)

	case task.RepairTarifas:
		repairs, err := maintenance.RepairTarifas(ctx, task.DryRun)
		for _, repair := range repairs {
			logger.InfoContext(ctx, "tarifa repair",
				"tarifa_id", repair.TarifaId,
				"nombre", repair.Nombre,
				slog.Any("before", describeEscalones(repair.Before)),
				slog.Any("after", describeEscalones(repair.After)),
			)
		}
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "tarifas checked", "repairs", len(repairs), "dry_run", task.DryRun)

	case task.SeedTarifaFile != "":
		seed := uc.NewSeedUseCase()
		tarifa, err := seed.SeedTarifaFromFile(ctx, task.SeedTarifaFile)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "tarifa created", "tarifa_id", tarifa.Id, "nombre", tarifa.Nombre, "activa", tarifa.Activa)

	case task.ReconcileOnce:
		run, err := maintenance.Reconcile(ctx)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "reconciliation done",
			"boletas_marked_paid", run.BoletasMarkedPaid,
			"boletas_reverted", run.BoletasReverted,
			"pagos_approved", run.PagosApproved,
			"pagos_rejected", run.PagosRejected,
			"pagos_expired", run.PagosExpired,
			"skipped", run.Skipped,
			"errors", len(run.Errors),
		)
		if len(run.Errors) > 0 {
			return errors.Newf("reconciliation finished with %d errors", len(run.Errors))
		}

	default:
		return errors.New("no maintenance task given")
	}
	return nil
}

func describeEscalones(escalones []models.Escalon) []string {
	out := make([]string, 0, len(escalones))
	for _, e := range escalones {
		hasta := "+inf"
		if e.HastaM3 != nil {
			hasta = strconv.FormatFloat(*e.HastaM3, 'f', -1, 64)
		}
		out = append(out, fmt.Sprintf("[%s, %s) %d", strconv.FormatFloat(e.DesdeM3, 'f', -1, 64), hasta, e.PrecioM3))
	}
	return out
}
