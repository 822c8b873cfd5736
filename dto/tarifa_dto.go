package dto

import (
	"time"

	"github.com/guregu/null/v5"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/pure_utils"
	"github.com/portal-apr/portal-apr-backend/utils"
)

type Escalon struct {
	Id       string   `json:"id"`
	Orden    int      `json:"orden"`
	DesdeM3  float64  `json:"desde_m3"`
	HastaM3  *float64 `json:"hasta_m3"`
	PrecioM3 int64    `json:"precio_m3"`
}

func AdaptEscalonDto(e models.Escalon) Escalon {
	return Escalon{
		Id:       e.Id,
		Orden:    e.Orden,
		DesdeM3:  e.DesdeM3,
		HastaM3:  e.HastaM3,
		PrecioM3: e.PrecioM3,
	}
}

type Tarifa struct {
	Id                    string    `json:"id"`
	Nombre                string    `json:"nombre"`
	CargoFijo             int64     `json:"cargo_fijo"`
	Modo                  string    `json:"modo"`
	SubsidioPorcentaje    float64   `json:"subsidio_porcentaje"`
	SubsidioLimiteM3      float64   `json:"subsidio_limite_m3"`
	RecargoMoraPorcentaje float64   `json:"recargo_mora_porcentaje"`
	VigenteDesde          time.Time `json:"vigente_desde"`
	Activa                bool      `json:"activa"`
	Escalones             []Escalon `json:"escalones"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func AdaptTarifaDto(t models.Tarifa) Tarifa {
	return Tarifa{
		Id:                    t.Id,
		Nombre:                t.Nombre,
		CargoFijo:             t.CargoFijo,
		Modo:                  string(t.Modo),
		SubsidioPorcentaje:    t.SubsidioPorcentaje,
		SubsidioLimiteM3:      t.SubsidioLimiteM3,
		RecargoMoraPorcentaje: t.RecargoMoraPorcentaje,
		VigenteDesde:          t.VigenteDesde,
		Activa:                t.Activa,
		Escalones:             pure_utils.Map(t.Escalones, AdaptEscalonDto),
		CreatedAt:             t.CreatedAt,
		UpdatedAt:             t.UpdatedAt,
	}
}

type EscalonBody struct {
	DesdeM3  float64  `json:"desde_m3" binding:"min=0"`
	HastaM3  *float64 `json:"hasta_m3"`
	PrecioM3 int64    `json:"precio_m3" binding:"min=0"`
}

func adaptEscalonInput(body EscalonBody) models.EscalonInput {
	return models.EscalonInput{
		DesdeM3:  body.DesdeM3,
		HastaM3:  body.HastaM3,
		PrecioM3: body.PrecioM3,
	}
}

type CreateTarifaBody struct {
	Nombre                string        `json:"nombre" binding:"required"`
	CargoFijo             int64         `json:"cargo_fijo" binding:"min=0"`
	Modo                  string        `json:"modo" binding:"omitempty,oneof=progresivo plano"`
	SubsidioPorcentaje    float64       `json:"subsidio_porcentaje" binding:"min=0,max=100"`
	SubsidioLimiteM3      float64       `json:"subsidio_limite_m3" binding:"min=0"`
	RecargoMoraPorcentaje float64       `json:"recargo_mora_porcentaje" binding:"min=0,max=100"`
	VigenteDesde          time.Time     `json:"vigente_desde"`
	Activa                bool          `json:"activa"`
	Escalones             []EscalonBody `json:"escalones" binding:"required,min=1,dive"`
}

func AdaptCreateTarifaInput(body CreateTarifaBody) models.CreateTarifaInput {
	return models.CreateTarifaInput{
		Nombre:                body.Nombre,
		CargoFijo:             body.CargoFijo,
		Modo:                  models.ModoTarifaFrom(body.Modo),
		SubsidioPorcentaje:    body.SubsidioPorcentaje,
		SubsidioLimiteM3:      body.SubsidioLimiteM3,
		RecargoMoraPorcentaje: body.RecargoMoraPorcentaje,
		VigenteDesde:          body.VigenteDesde,
		Activa:                body.Activa,
		Escalones:             pure_utils.Map(body.Escalones, adaptEscalonInput),
	}
}

type UpdateTarifaBody struct {
	Nombre                null.String   `json:"nombre"`
	CargoFijo             null.Int64    `json:"cargo_fijo"`
	Modo                  null.String   `json:"modo" binding:"omitempty,oneof=progresivo plano"`
	SubsidioPorcentaje    null.Float    `json:"subsidio_porcentaje"`
	SubsidioLimiteM3      null.Float    `json:"subsidio_limite_m3"`
	RecargoMoraPorcentaje null.Float    `json:"recargo_mora_porcentaje"`
	Escalones             []EscalonBody `json:"escalones" binding:"omitempty,dive"`
}

func AdaptUpdateTarifaInput(tarifaId string, body UpdateTarifaBody) models.UpdateTarifaInput {
	input := models.UpdateTarifaInput{
		Id:                    tarifaId,
		Nombre:                body.Nombre.Ptr(),
		CargoFijo:             body.CargoFijo.Ptr(),
		SubsidioPorcentaje:    body.SubsidioPorcentaje.Ptr(),
		SubsidioLimiteM3:      body.SubsidioLimiteM3.Ptr(),
		RecargoMoraPorcentaje: body.RecargoMoraPorcentaje.Ptr(),
	}
	if body.Modo.Valid {
		modo := models.ModoTarifaFrom(body.Modo.String)
		input.Modo = &modo
	}
	if body.Escalones != nil {
		input.Escalones = pure_utils.Map(body.Escalones, adaptEscalonInput)
	}
	return input
}

type SimulateBody struct {
	ConsumoM3 float64 `json:"consumo_m3" binding:"min=0"`
	// defaults to the active tarifa
	TarifaId string `json:"tarifa_id" binding:"omitempty,uuid"`
}

type Cargos struct {
	ConsumoM3       float64                 `json:"consumo_m3"`
	CargoFijo       int64                   `json:"cargo_fijo"`
	CargoConsumo    int64                   `json:"cargo_consumo"`
	Subsidio        int64                   `json:"subsidio"`
	Total           int64                   `json:"total"`
	TotalFormateado string                  `json:"total_formateado"`
	Detalle         []models.DetalleEscalon `json:"detalle"`
}

func AdaptCargosDto(c models.Cargos) Cargos {
	return Cargos{
		ConsumoM3:       c.ConsumoM3,
		CargoFijo:       c.CargoFijo,
		CargoConsumo:    c.CargoConsumo,
		Subsidio:        c.Subsidio,
		Total:           c.Total(),
		TotalFormateado: utils.FormatCLP(c.Total()),
		Detalle:         c.Detalle,
	}
}
