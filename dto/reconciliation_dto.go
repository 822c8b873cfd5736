package dto

import (
	"time"

	"github.com/portal-apr/portal-apr-backend/models"
)

type ReconciliationRun struct {
	Id                string    `json:"id"`
	Trigger           string    `json:"trigger"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
	BoletasMarkedPaid int       `json:"boletas_marked_paid"`
	BoletasReverted   int       `json:"boletas_reverted"`
	PagosApproved     int       `json:"pagos_approved"`
	PagosRejected     int       `json:"pagos_rejected"`
	PagosExpired      int       `json:"pagos_expired"`
	Skipped           int       `json:"skipped"`
	Errors            []string  `json:"errors"`
}

func AdaptReconciliationRunDto(run models.ReconciliationRun) ReconciliationRun {
	errs := run.Errors
	if errs == nil {
		errs = []string{}
	}
	return ReconciliationRun{
		Id:                run.Id,
		Trigger:           string(run.Trigger),
		StartedAt:         run.StartedAt,
		FinishedAt:        run.FinishedAt,
		BoletasMarkedPaid: run.BoletasMarkedPaid,
		BoletasReverted:   run.BoletasReverted,
		PagosApproved:     run.PagosApproved,
		PagosRejected:     run.PagosRejected,
		PagosExpired:      run.PagosExpired,
		Skipped:           run.Skipped,
		Errors:            errs,
	}
}
