package reconciliation

import (
	"slices"
	"time"

	"github.com/hashicorp/go-set/v2"

	"github.com/portal-apr/portal-apr-backend/models"
)

// PlanReconciliation lists the fixes needed to bring pagos and boletas back in agreement:
//   - approved pagos with linked boletas still unpaid get those boletas marked pagada, except
//     the boletas the pago was credited for
//   - pagada boletas with no approved pago are reverted to pendiente or vencida
//   - pending pagos created before now-ttl are checked against their gateway
//
// Annulled boletas are never touched.
func PlanReconciliation(snapshot models.ReconciliationSnapshot, now time.Time, ttl time.Duration) []models.ReconciliationAction {
	boletas := make(map[string]models.Boleta, len(snapshot.Boletas))
	for _, b := range snapshot.Boletas {
		boletas[b.Id] = b
	}

	paidByApproved := set.From(snapshot.BoletasWithApprovedPago)
	actions := make([]models.ReconciliationAction, 0)

	for _, pago := range snapshot.ApprovedPagos {
		if pago.Estado != models.PagoAprobado {
			continue
		}
		applied := pago.AppliedBoletaIds()
		paidByApproved.InsertSlice(applied)

		unpaid := make([]string, 0, len(applied))
		for _, id := range applied {
			if b, ok := boletas[id]; ok && b.IsPayable() {
				unpaid = append(unpaid, id)
			}
		}
		if len(unpaid) > 0 {
			slices.Sort(unpaid)
			actions = append(actions, models.ReconciliationAction{
				Kind:      models.ActionMarkBoletasPagada,
				PagoId:    pago.Id,
				BoletaIds: unpaid,
			})
		}
	}

	for _, b := range snapshot.Boletas {
		if b.Estado != models.BoletaPagada || paidByApproved.Contains(b.Id) {
			continue
		}
		actions = append(actions, models.ReconciliationAction{
			Kind:         models.ActionRevertBoleta,
			BoletaIds:    []string{b.Id},
			TargetEstado: b.UnpaidEstadoAt(now),
		})
	}

	deadline := now.Add(-ttl)
	for _, pago := range snapshot.PendingPagos {
		if pago.Estado != models.PagoPendiente || pago.Metodo.IsManual() || !pago.CreatedAt.Before(deadline) {
			continue
		}
		actions = append(actions, models.ReconciliationAction{
			Kind:   models.ActionCheckGateway,
			PagoId: pago.Id,
		})
	}

	return actions
}
