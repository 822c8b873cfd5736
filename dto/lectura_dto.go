package dto

import (
	"time"

	"github.com/portal-apr/portal-apr-backend/models"
)

type Lectura struct {
	Id              string    `json:"id"`
	SocioId         string    `json:"socio_id"`
	Periodo         string    `json:"periodo"`
	LecturaAnterior float64   `json:"lectura_anterior"`
	LecturaActual   float64   `json:"lectura_actual"`
	ConsumoM3       float64   `json:"consumo_m3"`
	FechaLectura    time.Time `json:"fecha_lectura"`
	RegistradoPor   string    `json:"registrado_por"`
	CreatedAt       time.Time `json:"created_at"`
}

func AdaptLecturaDto(l models.Lectura) Lectura {
	return Lectura{
		Id:              l.Id,
		SocioId:         l.SocioId,
		Periodo:         l.Periodo.String(),
		LecturaAnterior: l.LecturaAnterior,
		LecturaActual:   l.LecturaActual,
		ConsumoM3:       l.Consumo(),
		FechaLectura:    l.FechaLectura,
		RegistradoPor:   l.RegistradoPor,
		CreatedAt:       l.CreatedAt,
	}
}

type CreateLecturaBody struct {
	SocioId         string    `json:"socio_id" binding:"required,uuid"`
	Periodo         string    `json:"periodo" binding:"required,periodo"`
	LecturaAnterior *float64  `json:"lectura_anterior" binding:"omitempty,min=0"`
	LecturaActual   float64   `json:"lectura_actual" binding:"min=0"`
	FechaLectura    time.Time `json:"fecha_lectura"`
}

func AdaptCreateLecturaInput(body CreateLecturaBody) models.CreateLecturaInput {
	return models.CreateLecturaInput{
		SocioId:         body.SocioId,
		Periodo:         models.Periodo(body.Periodo),
		LecturaAnterior: body.LecturaAnterior,
		LecturaActual:   body.LecturaActual,
		FechaLectura:    body.FechaLectura,
	}
}

type CreateLecturasBatchBody struct {
	Lecturas []CreateLecturaBody `json:"lecturas" binding:"required,min=1,max=2000,dive"`
}

type LecturaResult struct {
	SocioId string   `json:"socio_id"`
	Lectura *Lectura `json:"lectura,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func AdaptLecturaResultDto(result models.RegisterLecturaResult) LecturaResult {
	out := LecturaResult{SocioId: result.SocioId}
	if result.Lectura != nil {
		lectura := AdaptLecturaDto(*result.Lectura)
		out.Lectura = &lectura
	}
	if result.Error != nil {
		out.Error = result.Error.Error()
	}
	return out
}

type LecturaFilters struct {
	SocioId string `form:"socio_id" binding:"omitempty,uuid"`
	Periodo string `form:"periodo" binding:"omitempty,periodo"`
}

func AdaptLecturaFilters(filters LecturaFilters) models.LecturaFilters {
	return models.LecturaFilters{
		SocioId: filters.SocioId,
		Periodo: models.Periodo(filters.Periodo),
	}
}
