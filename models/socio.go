package models

import (
	"strings"
	"time"
)

type SocioEstado string

const (
	SocioActivo     SocioEstado = "activo"
	SocioSuspendido SocioEstado = "suspendido"
	SocioRetirado   SocioEstado = "retirado"
)

func SocioEstadoFrom(s string) SocioEstado {
	switch SocioEstado(strings.ToLower(s)) {
	case SocioActivo:
		return SocioActivo
	case SocioSuspendido:
		return SocioSuspendido
	case SocioRetirado:
		return SocioRetirado
	}
	return ""
}

type Socio struct {
	Id            string
	NumeroSocio   int
	Rut           string
	Nombres       string
	Apellidos     string
	Email         string
	Telefono      string
	Direccion     string
	NumeroMedidor string
	Estado        SocioEstado
	SaldoFavor    int64
	PasswordHash  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (s Socio) NombreCompleto() string {
	return strings.TrimSpace(s.Nombres + " " + s.Apellidos)
}

func (s Socio) IntoCredentials() Credentials {
	return Credentials{
		ActorIdentity: Identity{
			SocioId: s.Id,
			Email:   s.Email,
			Name:    s.NombreCompleto(),
		},
		Role: SOCIO,
	}
}

type CreateSocioInput struct {
	NumeroSocio   int
	Rut           string
	Nombres       string
	Apellidos     string
	Email         string
	Telefono      string
	Direccion     string
	NumeroMedidor string
}

type UpdateSocioInput struct {
	Id            string
	Nombres       *string
	Apellidos     *string
	Email         *string
	Telefono      *string
	Direccion     *string
	NumeroMedidor *string
	Estado        *SocioEstado
}

type SocioFilters struct {
	Search string
	Estado SocioEstado
}
