package models

// periodic reconciliation of pagos and boletas
type ReconciliationArgs struct {
	Trigger string `json:"trigger"`
}

func (ReconciliationArgs) Kind() string { return "reconciliation" }

// issues the boletas of a billing period. An empty periodo means the previous month at run time.
type IssuePeriodArgs struct {
	Periodo Periodo `json:"periodo"`
}

func (IssuePeriodArgs) Kind() string { return "issue_period" }

type MarkOverdueArgs struct{}

func (MarkOverdueArgs) Kind() string { return "mark_overdue" }

type ExportPeriodArgs struct {
	Periodo Periodo `json:"periodo"`
}

func (ExportPeriodArgs) Kind() string { return "export_period" }
