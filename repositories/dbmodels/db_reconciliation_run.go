package dbmodels

import (
	"time"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/utils"
)

type DBReconciliationRun struct {
	Id                string    `db:"id"`
	Trigger           string    `db:"trigger"`
	StartedAt         time.Time `db:"started_at"`
	FinishedAt        time.Time `db:"finished_at"`
	BoletasMarkedPaid int       `db:"boletas_marked_paid"`
	BoletasReverted   int       `db:"boletas_reverted"`
	PagosApproved     int       `db:"pagos_approved"`
	PagosRejected     int       `db:"pagos_rejected"`
	PagosExpired      int       `db:"pagos_expired"`
	Skipped           int       `db:"skipped"`
	Errors            []string  `db:"errors"`
}

const TABLE_RECONCILIATION_RUNS = "reconciliation_runs"

var ReconciliationRunFields = utils.ColumnList[DBReconciliationRun]()

func AdaptReconciliationRun(db DBReconciliationRun) (models.ReconciliationRun, error) {
	return models.ReconciliationRun{
		Id:                db.Id,
		Trigger:           models.ReconciliationTrigger(db.Trigger),
		StartedAt:         db.StartedAt,
		FinishedAt:        db.FinishedAt,
		BoletasMarkedPaid: db.BoletasMarkedPaid,
		BoletasReverted:   db.BoletasReverted,
		PagosApproved:     db.PagosApproved,
		PagosRejected:     db.PagosRejected,
		PagosExpired:      db.PagosExpired,
		Skipped:           db.Skipped,
		Errors:            db.Errors,
	}, nil
}
