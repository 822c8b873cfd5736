package cmd

import (
	"context"

	"github.com/portal-apr/portal-apr-backend/repositories"
	"github.com/portal-apr/portal-apr-backend/utils"
)

func RunMigrations() error {
	pgConfig := pgConfigFromEnv()

	logger := utils.NewLogger(utils.GetEnv("LOGGING_FORMAT", "text"))
	ctx := utils.StoreLoggerInContext(context.Background(), logger)

	if err := repositories.RunMigrations(ctx, pgConfig.GetConnectionString(), logger); err != nil {
		logger.ErrorContext(ctx, "error running migrations", "error", err.Error())
		return err
	}
	logger.InfoContext(ctx, "migrations done")
	return nil
}
