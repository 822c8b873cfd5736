package dto

import (
	"time"

	"github.com/guregu/null/v5"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/utils"
)

type Socio struct {
	Id                   string    `json:"id"`
	NumeroSocio          int       `json:"numero_socio"`
	Rut                  string    `json:"rut"`
	Nombres              string    `json:"nombres"`
	Apellidos            string    `json:"apellidos"`
	Email                string    `json:"email"`
	Telefono             string    `json:"telefono"`
	Direccion            string    `json:"direccion"`
	NumeroMedidor        string    `json:"numero_medidor"`
	Estado               string    `json:"estado"`
	SaldoFavor           int64     `json:"saldo_favor"`
	SaldoFavorFormateado string    `json:"saldo_favor_formateado"`
	HasPassword          bool      `json:"has_password"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func AdaptSocioDto(socio models.Socio) Socio {
	return Socio{
		Id:                   socio.Id,
		NumeroSocio:          socio.NumeroSocio,
		Rut:                  socio.Rut,
		Nombres:              socio.Nombres,
		Apellidos:            socio.Apellidos,
		Email:                socio.Email,
		Telefono:             socio.Telefono,
		Direccion:            socio.Direccion,
		NumeroMedidor:        socio.NumeroMedidor,
		Estado:               string(socio.Estado),
		SaldoFavor:           socio.SaldoFavor,
		SaldoFavorFormateado: utils.FormatCLP(socio.SaldoFavor),
		HasPassword:          socio.PasswordHash != "",
		CreatedAt:            socio.CreatedAt,
		UpdatedAt:            socio.UpdatedAt,
	}
}

type CreateSocioBody struct {
	NumeroSocio   int    `json:"numero_socio" binding:"required,min=1"`
	Rut           string `json:"rut" binding:"required,rut"`
	Nombres       string `json:"nombres" binding:"required"`
	Apellidos     string `json:"apellidos" binding:"required"`
	Email         string `json:"email" binding:"omitempty,email"`
	Telefono      string `json:"telefono"`
	Direccion     string `json:"direccion"`
	NumeroMedidor string `json:"numero_medidor"`
}

func AdaptCreateSocioInput(body CreateSocioBody) models.CreateSocioInput {
	return models.CreateSocioInput{
		NumeroSocio:   body.NumeroSocio,
		Rut:           body.Rut,
		Nombres:       body.Nombres,
		Apellidos:     body.Apellidos,
		Email:         body.Email,
		Telefono:      body.Telefono,
		Direccion:     body.Direccion,
		NumeroMedidor: body.NumeroMedidor,
	}
}

type UpdateSocioBody struct {
	Nombres       null.String `json:"nombres"`
	Apellidos     null.String `json:"apellidos"`
	Email         null.String `json:"email"`
	Telefono      null.String `json:"telefono"`
	Direccion     null.String `json:"direccion"`
	NumeroMedidor null.String `json:"numero_medidor"`
	Estado        null.String `json:"estado" binding:"omitempty,oneof=activo suspendido retirado"`
}

func AdaptUpdateSocioInput(socioId string, body UpdateSocioBody) models.UpdateSocioInput {
	input := models.UpdateSocioInput{
		Id:            socioId,
		Nombres:       body.Nombres.Ptr(),
		Apellidos:     body.Apellidos.Ptr(),
		Email:         body.Email.Ptr(),
		Telefono:      body.Telefono.Ptr(),
		Direccion:     body.Direccion.Ptr(),
		NumeroMedidor: body.NumeroMedidor.Ptr(),
	}
	if body.Estado.Valid {
		estado := models.SocioEstadoFrom(body.Estado.String)
		input.Estado = &estado
	}
	return input
}

type SocioFilters struct {
	Search string `form:"q"`
	Estado string `form:"estado" binding:"omitempty,oneof=activo suspendido retirado"`
}

func AdaptSocioFilters(filters SocioFilters) models.SocioFilters {
	return models.SocioFilters{
		Search: filters.Search,
		Estado: models.SocioEstadoFrom(filters.Estado),
	}
}
