package models

import "time"

type Lectura struct {
	Id              string
	SocioId         string
	Periodo         Periodo
	LecturaAnterior float64
	LecturaActual   float64
	FechaLectura    time.Time
	RegistradoPor   string
	CreatedAt       time.Time
}

func (l Lectura) Consumo() float64 {
	return l.LecturaActual - l.LecturaAnterior
}

type CreateLecturaInput struct {
	SocioId         string
	Periodo         Periodo
	LecturaAnterior *float64
	LecturaActual   float64
	FechaLectura    time.Time
}

type LecturaFilters struct {
	SocioId string
	Periodo Periodo
}

type RegisterLecturaResult struct {
	SocioId string
	Lectura *Lectura
	Error   error
}
