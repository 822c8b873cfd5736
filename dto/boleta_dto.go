package dto

import (
	"time"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/pure_utils"
	"github.com/portal-apr/portal-apr-backend/utils"
)

type Boleta struct {
	Id               string                  `json:"id"`
	Folio            int64                   `json:"folio"`
	SocioId          string                  `json:"socio_id"`
	Periodo          string                  `json:"periodo"`
	TarifaId         string                  `json:"tarifa_id"`
	LecturaId        string                  `json:"lectura_id"`
	ConsumoM3        float64                 `json:"consumo_m3"`
	CargoFijo        int64                   `json:"cargo_fijo"`
	CargoConsumo     int64                   `json:"cargo_consumo"`
	Subsidio         int64                   `json:"subsidio"`
	Recargo          int64                   `json:"recargo"`
	SaldoAnterior    int64                   `json:"saldo_anterior"`
	Total            int64                   `json:"total"`
	TotalFormateado  string                  `json:"total_formateado"`
	Detalle          []models.DetalleEscalon `json:"detalle"`
	Estado           string                  `json:"estado"`
	FechaEmision     time.Time               `json:"fecha_emision"`
	FechaVencimiento time.Time               `json:"fecha_vencimiento"`
	PagadaAt         *time.Time              `json:"pagada_at"`
}

func AdaptBoletaDto(b models.Boleta) Boleta {
	detalle := b.Detalle
	if detalle == nil {
		detalle = []models.DetalleEscalon{}
	}
	return Boleta{
		Id:               b.Id,
		Folio:            b.Folio,
		SocioId:          b.SocioId,
		Periodo:          b.Periodo.String(),
		TarifaId:         b.TarifaId,
		LecturaId:        b.LecturaId,
		ConsumoM3:        b.ConsumoM3,
		CargoFijo:        b.CargoFijo,
		CargoConsumo:     b.CargoConsumo,
		Subsidio:         b.Subsidio,
		Recargo:          b.Recargo,
		SaldoAnterior:    b.SaldoAnterior,
		Total:            b.Total,
		TotalFormateado:  utils.FormatCLP(b.Total),
		Detalle:          detalle,
		Estado:           string(b.Estado),
		FechaEmision:     b.FechaEmision,
		FechaVencimiento: b.FechaVencimiento,
		PagadaAt:         b.PagadaAt,
	}
}

type BoletaFilters struct {
	SocioId string   `form:"socio_id" binding:"omitempty,uuid"`
	Periodo string   `form:"periodo" binding:"omitempty,periodo"`
	Estados []string `form:"estado" binding:"omitempty,dive,oneof=pendiente pagada vencida anulada"`
}

func AdaptBoletaFilters(filters BoletaFilters) models.BoletaFilters {
	return models.BoletaFilters{
		SocioId: filters.SocioId,
		Periodo: models.Periodo(filters.Periodo),
		Estados: pure_utils.Map(filters.Estados, models.BoletaEstadoFrom),
	}
}

// IssueBoletasBody issues the boleta of one socio when SocioId is set, or enqueues the issuance of
// the whole periodo otherwise.
type IssueBoletasBody struct {
	Periodo string `json:"periodo" binding:"required,periodo"`
	SocioId string `json:"socio_id" binding:"omitempty,uuid"`
}

type ExportBoletasBody struct {
	Periodo string `json:"periodo" binding:"required,periodo"`
	// run the export in the request instead of the task queue
	Sync bool `json:"sync"`
}

type ExportResult struct {
	Periodo   string `json:"periodo"`
	FileName  string `json:"file_name"`
	Rows      int    `json:"rows"`
	SignedUrl string `json:"signed_url,omitempty"`
}

func AdaptExportResultDto(r models.ExportResult) ExportResult {
	return ExportResult{
		Periodo:   r.Periodo.String(),
		FileName:  r.FileName,
		Rows:      r.Rows,
		SignedUrl: r.SignedUrl,
	}
}
