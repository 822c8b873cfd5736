package models

import "time"

type ModoTarifa string

const (
	// every band bills the part of the consumption that falls inside it
	ModoProgresivo ModoTarifa = "progresivo"
	// the whole consumption is billed at the price of the band it falls into
	ModoPlano ModoTarifa = "plano"
)

func ModoTarifaFrom(s string) ModoTarifa {
	switch ModoTarifa(s) {
	case ModoPlano:
		return ModoPlano
	default:
		return ModoProgresivo
	}
}

type Tarifa struct {
	Id                    string
	Nombre                string
	CargoFijo             int64
	Modo                  ModoTarifa
	SubsidioPorcentaje    float64
	SubsidioLimiteM3      float64
	RecargoMoraPorcentaje float64
	VigenteDesde          time.Time
	Activa                bool
	Escalones             []Escalon
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Escalon is a consumption band [DesdeM3, HastaM3). A nil HastaM3 means the band is open ended.
type Escalon struct {
	Id       string
	TarifaId string
	Orden    int
	DesdeM3  float64
	HastaM3  *float64
	PrecioM3 int64
}

func (e Escalon) Contains(consumoM3 float64) bool {
	return consumoM3 >= e.DesdeM3 && (e.HastaM3 == nil || consumoM3 < *e.HastaM3)
}

type EscalonInput struct {
	DesdeM3  float64  `yaml:"desde_m3"`
	HastaM3  *float64 `yaml:"hasta_m3"`
	PrecioM3 int64    `yaml:"precio_m3"`
}

type CreateTarifaInput struct {
	Nombre                string         `yaml:"nombre"`
	CargoFijo             int64          `yaml:"cargo_fijo"`
	Modo                  ModoTarifa     `yaml:"modo"`
	SubsidioPorcentaje    float64        `yaml:"subsidio_porcentaje"`
	SubsidioLimiteM3      float64        `yaml:"subsidio_limite_m3"`
	RecargoMoraPorcentaje float64        `yaml:"recargo_mora_porcentaje"`
	VigenteDesde          time.Time      `yaml:"vigente_desde"`
	Activa                bool           `yaml:"activa"`
	Escalones             []EscalonInput `yaml:"escalones"`
}

type UpdateTarifaInput struct {
	Id                    string
	Nombre                *string
	CargoFijo             *int64
	Modo                  *ModoTarifa
	SubsidioPorcentaje    *float64
	SubsidioLimiteM3      *float64
	RecargoMoraPorcentaje *float64
	Escalones             []EscalonInput
}

// DetalleEscalon is the consumption billed inside one band, as printed on the boleta
type DetalleEscalon struct {
	Orden     int      `json:"orden"`
	DesdeM3   float64  `json:"desde_m3"`
	HastaM3   *float64 `json:"hasta_m3"`
	ConsumoM3 float64  `json:"consumo_m3"`
	PrecioM3  int64    `json:"precio_m3"`
	Monto     int64    `json:"monto"`
}

type Cargos struct {
	ConsumoM3    float64
	CargoFijo    int64
	CargoConsumo int64
	Subsidio     int64
	Detalle      []DetalleEscalon
}

func (c Cargos) Total() int64 {
	return max(c.CargoFijo+c.CargoConsumo-c.Subsidio, 0)
}

// TarifaRepair reports the bands of a tarifa before and after RepairEscalones
type TarifaRepair struct {
	TarifaId string
	Nombre   string
	Before   []Escalon
	After    []Escalon
}
