package repositories

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/cockroachdb/errors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const migrationsDir = "migrations"

// goose keeps its configuration in globals
var gooseSetup sync.Once

func openMigrationDb(ctx context.Context, connectionString string) (*sql.DB, error) {
	db, err := sql.Open("pgx", connectionString)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open the migration connection")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "unable to ping the database")
	}
	return db, nil
}

// RunMigrations applies the embedded sql migrations, in order, on a dedicated database/sql
// connection.
func RunMigrations(ctx context.Context, connectionString string, logger *slog.Logger) error {
	db, err := openMigrationDb(ctx, connectionString)
	if err != nil {
		return err
	}
	defer db.Close()

	var dialectErr error
	gooseSetup.Do(func() {
		goose.SetBaseFS(embedMigrations)
		dialectErr = goose.SetDialect("postgres")
	})
	if dialectErr != nil {
		return dialectErr
	}
	goose.SetLogger(gooseLogger{ctx: ctx, logger: logger})

	logger.InfoContext(ctx, "running migrations", "target", LatestMigrationVersion())
	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		return errors.Wrap(err, "unable to run migrations")
	}
	return nil
}

// LatestMigrationVersion is the version of the newest embedded migration. The liveness probe
// compares it with the database.
func LatestMigrationVersion() int64 {
	entries, err := fs.ReadDir(embedMigrations, migrationsDir)
	if err != nil {
		return 0
	}
	var latest int64
	for _, entry := range entries {
		version, err := goose.NumericComponent(entry.Name())
		if err == nil && version > latest {
			latest = version
		}
	}
	return latest
}

type gooseLogger struct {
	ctx    context.Context
	logger *slog.Logger
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.logger.ErrorContext(l.ctx, fmt.Sprintf(format, v...))
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.logger.InfoContext(l.ctx, fmt.Sprintf(format, v...))
}
