package models

import (
	"time"

	"github.com/cockroachdb/errors"
)

const periodoLayout = "2006-01"

// Periodo is a billing month, formatted YYYY-MM
type Periodo string

func ParsePeriodo(s string) (Periodo, error) {
	t, err := time.Parse(periodoLayout, s)
	if err != nil {
		return "", errors.Wrapf(ErrInvalidPeriodo, "%q", s)
	}
	return Periodo(t.Format(periodoLayout)), nil
}

func PeriodoOf(t time.Time) Periodo {
	return Periodo(t.Format(periodoLayout))
}

func (p Periodo) Start() time.Time {
	t, _ := time.Parse(periodoLayout, string(p))
	return t
}

func (p Periodo) Previous() Periodo {
	return PeriodoOf(p.Start().AddDate(0, -1, 0))
}

func (p Periodo) String() string {
	return string(p)
}
