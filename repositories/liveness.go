package repositories

import (
	"context"

	"github.com/cockroachdb/errors"
)

// SchemaVersion is the last goose migration applied to the database. Answering it proves the
// connection works.
func (repo *PortalDbRepository) SchemaVersion(ctx context.Context, exec Executor) (int64, error) {
	var version int64
	err := exec.QueryRow(ctx,
		"SELECT COALESCE(MAX(version_id), 0) FROM goose_db_version WHERE is_applied").Scan(&version)
	if err != nil {
		return 0, errors.Wrap(err, "could not read the schema version")
	}
	return version, nil
}
