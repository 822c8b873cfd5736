package models

import "time"

type BoletaEstado string

const (
	BoletaPendiente BoletaEstado = "pendiente"
	BoletaPagada    BoletaEstado = "pagada"
	BoletaVencida   BoletaEstado = "vencida"
	BoletaAnulada   BoletaEstado = "anulada"
)

func BoletaEstadoFrom(s string) BoletaEstado {
	switch e := BoletaEstado(s); e {
	case BoletaPendiente, BoletaPagada, BoletaVencida, BoletaAnulada:
		return e
	}
	return ""
}

type Boleta struct {
	Id               string
	Folio            int64
	SocioId          string
	Periodo          Periodo
	TarifaId         string
	LecturaId        string
	ConsumoM3        float64
	CargoFijo        int64
	CargoConsumo     int64
	Subsidio         int64
	Recargo          int64
	SaldoAnterior    int64
	Total            int64
	Detalle          []DetalleEscalon
	Estado           BoletaEstado
	FechaEmision     time.Time
	FechaVencimiento time.Time
	PagadaAt         *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (b Boleta) IsPayable() bool {
	return b.Estado == BoletaPendiente || b.Estado == BoletaVencida
}

// UnpaidEstadoAt is the state an unpaid boleta should be in at the given time
func (b Boleta) UnpaidEstadoAt(now time.Time) BoletaEstado {
	if now.After(b.FechaVencimiento) {
		return BoletaVencida
	}
	return BoletaPendiente
}

type BoletaToCreate struct {
	SocioId          string
	Periodo          Periodo
	TarifaId         string
	LecturaId        string
	Cargos           Cargos
	SaldoAnterior    int64
	FechaEmision     time.Time
	FechaVencimiento time.Time
}

type BoletaFilters struct {
	SocioId string
	Periodo Periodo
	Estados []BoletaEstado
}

type IssueBoletaResult struct {
	SocioId string
	Boleta  *Boleta
	Error   error
}

type IssuePeriodReport struct {
	Periodo Periodo
	Issued  int
	Skipped int
	Failed  int
	Results []IssueBoletaResult
}

type BoletaExportRow struct {
	Boleta      Boleta
	NumeroSocio int
	Rut         string
	Nombre      string
}
