package billing

import (
	"math"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/pure_utils"
)

// round to integer pesos, half away from zero
func round(amount float64) int64 {
	return int64(math.Round(amount))
}

// m3 are stored with liter precision
func roundM3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func sortedEscalones(escalones []models.Escalon) []models.Escalon {
	sorted := slices.Clone(escalones)
	slices.SortStableFunc(sorted, func(a, b models.Escalon) int {
		if a.DesdeM3 != b.DesdeM3 {
			if a.DesdeM3 < b.DesdeM3 {
				return -1
			}
			return 1
		}
		return a.Orden - b.Orden
	})
	return sorted
}

// ComputeCharges prices a consumption with a tariff. The fixed charge is always billed; the
// subsidy applies to the consumption charge of the first SubsidioLimiteM3 cubic meters.
func ComputeCharges(tarifa models.Tarifa, consumoM3 float64) (models.Cargos, error) {
	if consumoM3 < 0 {
		return models.Cargos{}, errors.Wrapf(models.ErrInvalidReading, "consumption %.3f m3", consumoM3)
	}
	consumoM3 = roundM3(consumoM3)

	cargos := models.Cargos{
		ConsumoM3: consumoM3,
		CargoFijo: tarifa.CargoFijo,
		Detalle:   []models.DetalleEscalon{},
	}
	if consumoM3 == 0 {
		return cargos, nil
	}

	escalones := sortedEscalones(tarifa.Escalones)
	if err := ValidateEscalones(escalones); err != nil {
		return models.Cargos{}, err
	}

	var subsidizable int64
	switch tarifa.Modo {
	case models.ModoPlano:
		cargos.Detalle, subsidizable = plano(escalones, consumoM3, tarifa.SubsidioLimiteM3)
	default:
		cargos.Detalle, subsidizable = progresivo(escalones, consumoM3, tarifa.SubsidioLimiteM3)
	}
	for _, d := range cargos.Detalle {
		cargos.CargoConsumo += d.Monto
	}

	pct := min(max(tarifa.SubsidioPorcentaje, 0), 100)
	cargos.Subsidio = round(float64(subsidizable) * pct / 100)
	return cargos, nil
}

func progresivo(escalones []models.Escalon, consumoM3, subsidioLimiteM3 float64) ([]models.DetalleEscalon, int64) {
	detalle := make([]models.DetalleEscalon, 0, len(escalones))
	var subsidizable int64

	for _, e := range escalones {
		upper := consumoM3
		if e.HastaM3 != nil {
			upper = min(upper, *e.HastaM3)
		}
		inBand := roundM3(upper - e.DesdeM3)
		if inBand <= 0 {
			break
		}
		detalle = append(detalle, models.DetalleEscalon{
			Orden:     e.Orden,
			DesdeM3:   e.DesdeM3,
			HastaM3:   e.HastaM3,
			ConsumoM3: inBand,
			PrecioM3:  e.PrecioM3,
			Monto:     round(inBand * float64(e.PrecioM3)),
		})

		subsidizedUpper := upper
		if subsidioLimiteM3 > 0 {
			subsidizedUpper = min(upper, subsidioLimiteM3)
		}
		if subsidized := roundM3(subsidizedUpper - e.DesdeM3); subsidized > 0 {
			subsidizable += round(subsidized * float64(e.PrecioM3))
		}
	}
	return detalle, subsidizable
}

func plano(escalones []models.Escalon, consumoM3, subsidioLimiteM3 float64) ([]models.DetalleEscalon, int64) {
	// consumption past a closed last band is billed at the last band's price
	band := escalones[len(escalones)-1]
	for _, e := range escalones {
		if e.Contains(consumoM3) {
			band = e
			break
		}
	}

	subsidized := consumoM3
	if subsidioLimiteM3 > 0 {
		subsidized = min(consumoM3, subsidioLimiteM3)
	}
	return []models.DetalleEscalon{{
		Orden:     band.Orden,
		DesdeM3:   band.DesdeM3,
		HastaM3:   band.HastaM3,
		ConsumoM3: consumoM3,
		PrecioM3:  band.PrecioM3,
		Monto:     round(consumoM3 * float64(band.PrecioM3)),
	}}, round(subsidized * float64(band.PrecioM3))
}

// ValidateEscalones checks that the bands, sorted by DesdeM3, tile [0, +inf) without gaps or
// overlaps. Only the last band may be open ended.
func ValidateEscalones(escalones []models.Escalon) error {
	if len(escalones) == 0 {
		return errors.Wrap(models.ErrInvalidEscalones, "a tariff needs at least one band")
	}
	escalones = sortedEscalones(escalones)

	if escalones[0].DesdeM3 != 0 {
		return errors.Wrapf(models.ErrInvalidEscalones, "the first band starts at %v m3 instead of 0", escalones[0].DesdeM3)
	}
	for i, e := range escalones {
		if e.PrecioM3 < 0 {
			return errors.Wrapf(models.ErrInvalidEscalones, "band %d has a negative price", i+1)
		}
		last := i == len(escalones)-1
		if e.HastaM3 == nil {
			if !last {
				return errors.Wrapf(models.ErrInvalidEscalones, "band %d is open ended but is not the last one", i+1)
			}
			continue
		}
		if *e.HastaM3 <= e.DesdeM3 {
			return errors.Wrapf(models.ErrInvalidEscalones, "band %d is empty", i+1)
		}
		if !last && *e.HastaM3 != escalones[i+1].DesdeM3 {
			return errors.Wrapf(models.ErrInvalidEscalones,
				"band %d ends at %v m3 but band %d starts at %v m3", i+1, *e.HastaM3, i+2, escalones[i+1].DesdeM3)
		}
	}
	return nil
}

// RepairEscalones sorts the bands, renumbers them, drops empty ones, closes gaps by extending
// the previous band and opens the last band. Of two bands starting at the same volume, the
// first in order is kept. It reports whether anything changed.
func RepairEscalones(escalones []models.Escalon) ([]models.Escalon, bool) {
	if len(escalones) == 0 {
		return escalones, false
	}
	sorted := sortedEscalones(escalones)

	repaired := make([]models.Escalon, 0, len(sorted))
	for _, e := range sorted {
		e.HastaM3 = clonePtr(e.HastaM3)
		if len(repaired) == 0 {
			e.DesdeM3 = 0
		} else {
			prev := &repaired[len(repaired)-1]
			switch {
			case e.DesdeM3 <= prev.DesdeM3:
				// duplicate start: shrinking prev would empty it
				continue
			case prev.HastaM3 == nil:
				prev.HastaM3 = pure_utils.Ptr(e.DesdeM3)
			case *prev.HastaM3 > e.DesdeM3:
				// overlap: the band starts where the previous one ends
				e.DesdeM3 = *prev.HastaM3
			case *prev.HastaM3 < e.DesdeM3:
				prev.HastaM3 = pure_utils.Ptr(e.DesdeM3)
			}
		}
		if e.HastaM3 != nil && *e.HastaM3 <= e.DesdeM3 {
			continue
		}
		if e.PrecioM3 < 0 {
			e.PrecioM3 = 0
		}
		repaired = append(repaired, e)
	}
	if len(repaired) == 0 {
		// every band was empty: keep the first one, open ended
		first := sorted[0]
		first.DesdeM3 = 0
		repaired = append(repaired, first)
	}
	repaired[len(repaired)-1].HastaM3 = nil
	for i := range repaired {
		repaired[i].Orden = i + 1
	}

	return repaired, !sameEscalones(escalones, repaired)
}

func sameEscalones(a, b []models.Escalon) bool {
	return slices.EqualFunc(a, b, func(x, y models.Escalon) bool {
		sameHasta := (x.HastaM3 == nil && y.HastaM3 == nil) ||
			(x.HastaM3 != nil && y.HastaM3 != nil && *x.HastaM3 == *y.HastaM3)
		return x.Orden == y.Orden && x.DesdeM3 == y.DesdeM3 && sameHasta && x.PrecioM3 == y.PrecioM3
	})
}

// ApplyRecargo adds the late fee to an overdue boleta. The fee is a percentage of what the
// boleta bills for the period and is applied only once.
func ApplyRecargo(boleta models.Boleta, pct float64) models.Boleta {
	if boleta.Recargo > 0 || pct <= 0 {
		return boleta
	}
	base := max(boleta.CargoFijo+boleta.CargoConsumo-boleta.Subsidio, 0)
	boleta.Recargo = round(float64(base) * pct / 100)
	boleta.Total = base + boleta.Recargo
	return boleta
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	return pure_utils.Ptr(*p)
}
