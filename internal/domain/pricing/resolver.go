// Package pricing resuelve qué tramo de precio de alquiler aplica a una duración y fecha.
// Funciones puras: no consultan persistencia.
package pricing

import (
	"sort"
	"time"

	"github.com/jhoicas/Alquiler-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Selection tramo elegido junto con su costo para la duración pedida.
type Selection struct {
	Tier      *entity.RentalPricingTier
	Periods   int64
	TotalCost decimal.Decimal
}

// ApplicableTiers filtra los tramos aplicables a (days, on) y los ordena por prioridad ascendente.
// Empates de prioridad se ordenan por ID para que el resultado sea determinista.
func ApplicableTiers(tiers []*entity.RentalPricingTier, days int, on time.Time) []*entity.RentalPricingTier {
	out := make([]*entity.RentalPricingTier, 0, len(tiers))
	for _, t := range tiers {
		if t != nil && t.AppliesTo(days, on) {
			out = append(out, t)
		}
	}
	return SortByPriority(out)
}

// SortByPriority ordena los tramos por prioridad ascendente y luego por ID. Ordena en sitio.
func SortByPriority(tiers []*entity.RentalPricingTier) []*entity.RentalPricingTier {
	sort.SliceStable(tiers, func(i, j int) bool {
		if tiers[i].Priority != tiers[j].Priority {
			return tiers[i].Priority < tiers[j].Priority
		}
		return tiers[i].ID < tiers[j].ID
	})
	return tiers
}

// BestTier devuelve el tramo aplicable de menor costo total; empates por menor prioridad.
// ok=false cuando ningún tramo aplica, lo cual no es un error.
func BestTier(tiers []*entity.RentalPricingTier, days int, on time.Time) (Selection, bool) {
	if days <= 0 {
		return Selection{}, false
	}
	var (
		best  Selection
		found bool
	)
	// ApplicableTiers ya viene en orden de prioridad: ante igual costo gana el primero.
	for _, t := range ApplicableTiers(tiers, days, on) {
		cost := t.TotalCost(days)
		if !found || cost.LessThan(best.TotalCost) {
			best = Selection{Tier: t, Periods: t.Periods(days), TotalCost: cost}
			found = true
		}
	}
	return best, found
}

// Evaluate calcula el costo de cada tramo aplicable, en orden de prioridad.
func Evaluate(tiers []*entity.RentalPricingTier, days int, on time.Time) []Selection {
	applicable := ApplicableTiers(tiers, days, on)
	out := make([]Selection, 0, len(applicable))
	for _, t := range applicable {
		out = append(out, Selection{Tier: t, Periods: t.Periods(days), TotalCost: t.TotalCost(days)})
	}
	return out
}

// ActiveDefault devuelve el tramo activo marcado como default, si existe.
func ActiveDefault(tiers []*entity.RentalPricingTier) *entity.RentalPricingTier {
	for _, t := range tiers {
		if t != nil && t.IsDefault && t.IsActive {
			return t
		}
	}
	return nil
}
