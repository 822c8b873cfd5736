package models

import (
	"time"

	"github.com/cockroachdb/errors"
)

type ReconciliationActionKind string

const (
	// an approved pago has linked boletas that are not pagada
	ActionMarkBoletasPagada ReconciliationActionKind = "mark_boletas_pagada"
	// a pagada boleta has no approved pago
	ActionRevertBoleta ReconciliationActionKind = "revert_boleta"
	// a pending pago outlived its ttl and must be settled with the gateway
	ActionCheckGateway ReconciliationActionKind = "check_gateway"
)

type ReconciliationAction struct {
	Kind      ReconciliationActionKind
	PagoId    string
	BoletaIds []string
	// target state of the reverted boleta
	TargetEstado BoletaEstado
}

// ReconciliationSnapshot is the state the planner reasons on. It only holds the rows that
// may need fixing, read without locks.
type ReconciliationSnapshot struct {
	// approved pagos with at least one linked boleta that is not pagada
	ApprovedPagos []Pago
	// boletas linked to those pagos, and pagada boletas with no approved pago
	Boletas []Boleta
	// ids of pagada boletas that are linked to an approved pago
	BoletasWithApprovedPago []string
	PendingPagos            []Pago
}

type ReconciliationTrigger string

const (
	TriggerScheduled ReconciliationTrigger = "scheduled"
	TriggerManual    ReconciliationTrigger = "manual"
	TriggerCli       ReconciliationTrigger = "cli"
)

type ReconciliationRun struct {
	Id                string
	Trigger           ReconciliationTrigger
	StartedAt         time.Time
	FinishedAt        time.Time
	BoletasMarkedPaid int
	BoletasReverted   int
	PagosApproved     int
	PagosRejected     int
	PagosExpired      int
	Skipped           int
	Errors            []string
}

func (r *ReconciliationRun) AddError(err error) {
	r.Errors = append(r.Errors, err.Error())
}

func (r ReconciliationRun) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return errors.Newf("reconciliation run finished with %d errors: %s", len(r.Errors), r.Errors[0])
}
