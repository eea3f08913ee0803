package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/Alquiler-api/internal/domain"
	"github.com/shopspring/decimal"
)

// PeriodType unidad de facturación de un tramo de precio.
type PeriodType string

// Tipos de período soportados.
const (
	PeriodHourly  PeriodType = "HOURLY"
	PeriodDaily   PeriodType = "DAILY"
	PeriodWeekly  PeriodType = "WEEKLY"
	PeriodMonthly PeriodType = "MONTHLY"
)

// defaultPeriodDays longitud por defecto cuando no se envía period_days.
var defaultPeriodDays = map[PeriodType]int{
	PeriodDaily:   1,
	PeriodWeekly:  7,
	PeriodMonthly: 30,
}

// RentalPricingTier tramo de precio de alquiler de un ítem.
// Aplica cuando está activo, la fecha cae en [EffectiveDate, ExpiryDate] y la duración
// en días cae en [MinRentalDays, MaxRentalDays] (nil = sin límite).
type RentalPricingTier struct {
	ID            string
	ItemID        string
	TierName      string
	PeriodType    PeriodType
	PeriodDays    *int // DAILY/WEEKLY/MONTHLY
	PeriodHours   *int // HOURLY
	RatePerPeriod decimal.Decimal

	EffectiveDate time.Time
	ExpiryDate    *time.Time
	MinRentalDays *int
	MaxRentalDays *int

	Priority  int // menor = preferido en empates
	IsDefault bool
	IsActive  bool
	Version   int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Normalize completa valores implícitos: nombre en mayúsculas del período, period_days por defecto
// y fechas truncadas a día.
func (t *RentalPricingTier) Normalize() {
	t.PeriodType = PeriodType(strings.ToUpper(strings.TrimSpace(string(t.PeriodType))))
	t.TierName = strings.TrimSpace(t.TierName)
	if t.PeriodType != PeriodHourly && t.PeriodDays == nil {
		if d, ok := defaultPeriodDays[t.PeriodType]; ok {
			t.PeriodDays = &d
		}
	}
	t.RatePerPeriod = t.RatePerPeriod.Round(2)
	t.EffectiveDate = DateOnly(t.EffectiveDate)
	if t.ExpiryDate != nil {
		d := DateOnly(*t.ExpiryDate)
		t.ExpiryDate = &d
	}
}

// Validate verifica los campos del tramo. Llamar después de Normalize.
func (t *RentalPricingTier) Validate() error {
	if t.ItemID == "" {
		return domain.Validationf("item_id es requerido")
	}
	if t.TierName == "" {
		return domain.Validationf("tier_name es requerido")
	}
	switch t.PeriodType {
	case PeriodHourly:
		if t.PeriodHours == nil || *t.PeriodHours <= 0 {
			return domain.Validationf("period_hours debe ser mayor que cero para tramos HOURLY")
		}
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		if t.PeriodDays == nil || *t.PeriodDays <= 0 {
			return domain.Validationf("period_days debe ser mayor que cero")
		}
	default:
		return domain.Validationf("period_type inválido: %q", t.PeriodType)
	}
	if t.RatePerPeriod.IsNegative() {
		return domain.Validationf("rate_per_period no puede ser negativo")
	}
	if t.EffectiveDate.IsZero() {
		return domain.Validationf("effective_date es requerido")
	}
	if t.ExpiryDate != nil && t.ExpiryDate.Before(t.EffectiveDate) {
		return domain.Validationf("expiry_date no puede ser anterior a effective_date")
	}
	if t.MinRentalDays != nil && *t.MinRentalDays < 0 {
		return domain.Validationf("min_rental_days no puede ser negativo")
	}
	if t.MaxRentalDays != nil && *t.MaxRentalDays < 1 {
		return domain.Validationf("max_rental_days debe ser al menos 1")
	}
	if t.MinRentalDays != nil && t.MaxRentalDays != nil && *t.MinRentalDays > *t.MaxRentalDays {
		return domain.Validationf("min_rental_days no puede superar max_rental_days")
	}
	return nil
}

// Periods número de períodos facturables para days días, redondeando hacia arriba.
func (t *RentalPricingTier) Periods(days int) int64 {
	if days <= 0 {
		return 0
	}
	if t.PeriodType == PeriodHourly && t.PeriodHours != nil && *t.PeriodHours > 0 {
		hours := int64(days) * 24
		return ceilDiv(hours, int64(*t.PeriodHours))
	}
	if t.PeriodDays != nil && *t.PeriodDays > 0 {
		return ceilDiv(int64(days), int64(*t.PeriodDays))
	}
	return int64(days)
}

// TotalCost costo de alquilar days días con este tramo: ceil(days / período) * tarifa.
func (t *RentalPricingTier) TotalCost(days int) decimal.Decimal {
	return t.RatePerPeriod.Mul(decimal.NewFromInt(t.Periods(days)))
}

// AppliesTo informa si el tramo es aplicable a una duración y fecha de cálculo.
func (t *RentalPricingTier) AppliesTo(days int, on time.Time) bool {
	if !t.IsActive {
		return false
	}
	day := DateOnly(on)
	if DateOnly(t.EffectiveDate).After(day) {
		return false
	}
	if t.ExpiryDate != nil && DateOnly(*t.ExpiryDate).Before(day) {
		return false
	}
	if t.MinRentalDays != nil && days < *t.MinRentalDays {
		return false
	}
	if t.MaxRentalDays != nil && days > *t.MaxRentalDays {
		return false
	}
	return true
}

// DateOnly trunca t a la fecha calendario en UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
