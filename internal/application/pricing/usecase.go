// Package pricing orquesta los tramos de precio de alquiler: alta, plantilla estándar,
// cambio de default y resolución del mejor precio para una duración.
package pricing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Alquiler-api/internal/application/dto"
	"github.com/jhoicas/Alquiler-api/internal/domain"
	"github.com/jhoicas/Alquiler-api/internal/domain/entity"
	dompricing "github.com/jhoicas/Alquiler-api/internal/domain/pricing"
	"github.com/jhoicas/Alquiler-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DateLayout formato de fechas de tramos y cálculos (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// Nombres y prioridades de la plantilla estándar.
const (
	StandardDailyName   = "Diario"
	StandardWeeklyName  = "Semanal"
	StandardMonthlyName = "Mensual"

	standardDailyPriority   = 10
	standardWeeklyPriority  = 20
	standardMonthlyPriority = 30
)

// Origen del precio de una cotización.
const (
	SourceTier     = "TIER"
	SourceBaseRate = "BASE_RATE"
)

// UseCase casos de uso de tramos de precio de alquiler.
type UseCase struct {
	txRunner     TxRunner
	tierRepo     repository.RentalPricingRepository
	itemRepo     repository.ItemRepository
	customerRepo repository.CustomerRepository
	levelRepo    repository.StockLevelRepository
	pdf          QuotePDFGenerator
	log          zerolog.Logger
	now          func() time.Time
}

// NewUseCase construye el caso de uso. pdf puede ser nil si no se exponen cotizaciones en PDF.
func NewUseCase(
	txRunner TxRunner,
	tierRepo repository.RentalPricingRepository,
	itemRepo repository.ItemRepository,
	customerRepo repository.CustomerRepository,
	levelRepo repository.StockLevelRepository,
	pdf QuotePDFGenerator,
	log zerolog.Logger,
) *UseCase {
	return &UseCase{
		txRunner:     txRunner,
		tierRepo:     tierRepo,
		itemRepo:     itemRepo,
		customerRepo: customerRepo,
		levelRepo:    levelRepo,
		pdf:          pdf,
		log:          log.With().Str("component", "pricing").Logger(),
		now:          time.Now,
	}
}

// CreateTier crea un tramo para el ítem. Si llega como default y el ítem ya tiene un default activo
// se rechaza con CONFLICT antes de escribir.
func (uc *UseCase) CreateTier(ctx context.Context, itemID string, in dto.CreateTierRequest) (*dto.TierResponse, error) {
	if _, err := uc.requireItem(ctx, itemID); err != nil {
		return nil, err
	}
	tier, err := uc.buildTier(itemID, in)
	if err != nil {
		return nil, err
	}
	err = uc.txRunner.RunPricing(ctx, func(tierRepo repository.RentalPricingRepository) error {
		if tier.IsDefault {
			existing, err := tierRepo.ListByItemForUpdate(ctx, itemID)
			if err != nil {
				return err
			}
			if d := dompricing.ActiveDefault(existing); d != nil {
				return domain.Conflictf("el ítem ya tiene un tramo default activo (%s)", d.TierName)
			}
		}
		return tierRepo.Create(ctx, tier)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("item_id", itemID).
		Str("tier_id", tier.ID).
		Str("tier_name", tier.TierName).
		Bool("is_default", tier.IsDefault).
		Msg("tramo de precio creado")
	return ToTierResponse(tier), nil
}

// CreateStandardTemplate crea en bloque los tramos estándar: diario (obligatorio y default),
// semanal y mensual (opcionales). Todo o nada.
func (uc *UseCase) CreateStandardTemplate(ctx context.Context, itemID string, in dto.StandardTemplateRequest) ([]dto.TierResponse, error) {
	if _, err := uc.requireItem(ctx, itemID); err != nil {
		return nil, err
	}
	if !in.DailyRate.IsPositive() {
		return nil, domain.Validationf("daily_rate es obligatorio y debe ser mayor que cero")
	}
	effective, err := parseDate(in.EffectiveDate, uc.now())
	if err != nil {
		return nil, err
	}

	reqs := []dto.CreateTierRequest{{
		TierName:      StandardDailyName,
		PeriodType:    string(entity.PeriodDaily),
		PeriodDays:    intPtr(1),
		RatePerPeriod: in.DailyRate,
		MinRentalDays: intPtr(1),
		Priority:      standardDailyPriority,
		IsDefault:     true,
	}}
	if in.WeeklyRate != nil {
		reqs = append(reqs, dto.CreateTierRequest{
			TierName:      StandardWeeklyName,
			PeriodType:    string(entity.PeriodWeekly),
			PeriodDays:    intPtr(7),
			RatePerPeriod: *in.WeeklyRate,
			MinRentalDays: intPtr(7),
			Priority:      standardWeeklyPriority,
		})
	}
	if in.MonthlyRate != nil {
		reqs = append(reqs, dto.CreateTierRequest{
			TierName:      StandardMonthlyName,
			PeriodType:    string(entity.PeriodMonthly),
			PeriodDays:    intPtr(30),
			RatePerPeriod: *in.MonthlyRate,
			MinRentalDays: intPtr(30),
			Priority:      standardMonthlyPriority,
		})
	}

	tiers := make([]*entity.RentalPricingTier, 0, len(reqs))
	for _, r := range reqs {
		r.EffectiveDate = effective.Format(DateLayout)
		t, err := uc.buildTier(itemID, r)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}

	err = uc.txRunner.RunPricing(ctx, func(tierRepo repository.RentalPricingRepository) error {
		existing, err := tierRepo.ListByItemForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if d := dompricing.ActiveDefault(existing); d != nil {
			return domain.Conflictf("el ítem ya tiene un tramo default activo (%s)", d.TierName)
		}
		for _, t := range tiers {
			if err := tierRepo.Create(ctx, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("item_id", itemID).Int("tiers", len(tiers)).Msg("plantilla estándar de precios creada")
	return toTierResponses(tiers), nil
}

// GetTier obtiene un tramo por ID.
func (uc *UseCase) GetTier(ctx context.Context, id string) (*dto.TierResponse, error) {
	tier, err := uc.tierRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tier == nil {
		return nil, domain.NotFoundf("tramo de precio %s no encontrado", id)
	}
	return ToTierResponse(tier), nil
}

// ListTiers lista los tramos de un ítem en orden de prioridad.
func (uc *UseCase) ListTiers(ctx context.Context, itemID string, onlyActive bool) ([]dto.TierResponse, error) {
	if _, err := uc.requireItem(ctx, itemID); err != nil {
		return nil, err
	}
	tiers, err := uc.tierRepo.ListByItem(ctx, itemID, onlyActive)
	if err != nil {
		return nil, err
	}
	return toTierResponses(tiers), nil
}

// UpdateTier modifica tarifa, vigencia, rango de días, prioridad o estado de un tramo.
// Reactivar un tramo default cuando otro default ya está activo es CONFLICT.
func (uc *UseCase) UpdateTier(ctx context.Context, id string, in dto.UpdateTierRequest) (*dto.TierResponse, error) {
	var result *entity.RentalPricingTier
	err := uc.txRunner.RunPricing(ctx, func(tierRepo repository.RentalPricingRepository) error {
		current, err := tierRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.NotFoundf("tramo de precio %s no encontrado", id)
		}
		tiers, err := tierRepo.ListByItemForUpdate(ctx, current.ItemID)
		if err != nil {
			return err
		}
		var tier *entity.RentalPricingTier
		for _, t := range tiers {
			if t.ID == id {
				tier = t
				break
			}
		}
		if tier == nil {
			return domain.NotFoundf("tramo de precio %s no encontrado", id)
		}
		wasActive := tier.IsActive
		if err := applyTierUpdate(tier, in); err != nil {
			return err
		}
		if tier.IsDefault && tier.IsActive && !wasActive {
			for _, t := range tiers {
				if t.ID != tier.ID && t.IsDefault && t.IsActive {
					return domain.Conflictf("el ítem ya tiene un tramo default activo (%s)", t.TierName)
				}
			}
		}
		tier.UpdatedAt = uc.now()
		if err := tierRepo.Update(ctx, tier); err != nil {
			return err
		}
		result = tier
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("tier_id", result.ID).Int64("version", result.Version).Msg("tramo de precio actualizado")
	return ToTierResponse(result), nil
}

// SetDefaultTier transfiere la marca default del ítem al tramo indicado.
// Limpiar y marcar ocurren en una sola transacción con los tramos del ítem bloqueados.
func (uc *UseCase) SetDefaultTier(ctx context.Context, itemID, tierID string) ([]dto.TierResponse, error) {
	if _, err := uc.requireItem(ctx, itemID); err != nil {
		return nil, err
	}
	var tiers []*entity.RentalPricingTier
	err := uc.txRunner.RunPricing(ctx, func(tierRepo repository.RentalPricingRepository) error {
		list, err := tierRepo.ListByItemForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		var target *entity.RentalPricingTier
		for _, t := range list {
			if t.ID == tierID {
				target = t
			}
		}
		if target == nil {
			return domain.NotFoundf("tramo de precio %s no encontrado para el ítem %s", tierID, itemID)
		}
		if !target.IsActive {
			return domain.Validationf("un tramo inactivo no puede ser default")
		}
		if err := tierRepo.ClearDefaults(ctx, itemID); err != nil {
			return err
		}
		if err := tierRepo.SetDefault(ctx, tierID); err != nil {
			return err
		}
		// Releer dentro de la tx: versión y updated_at cambian en ClearDefaults/SetDefault.
		tiers, err = tierRepo.ListByItem(ctx, itemID, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("item_id", itemID).Str("tier_id", tierID).Msg("tramo default actualizado")
	return toTierResponses(dompricing.SortByPriority(tiers)), nil
}

// BestPricingFor devuelve el tramo aplicable más barato para rentalDays días en la fecha indicada
// (vacía = hoy). Que ningún tramo aplique no es un error: Found=false.
func (uc *UseCase) BestPricingFor(ctx context.Context, itemID string, rentalDays int, calculationDate string) (*dto.BestPricingResponse, error) {
	on, tiers, err := uc.loadForCalculation(ctx, itemID, rentalDays, calculationDate)
	if err != nil {
		return nil, err
	}
	out := &dto.BestPricingResponse{
		ItemID:          itemID,
		RentalDays:      rentalDays,
		CalculationDate: on.Format(DateLayout),
	}
	if sel, ok := dompricing.BestTier(tiers, rentalDays, on); ok {
		out.Found = true
		c := toTierCost(sel)
		out.Best = &c
	}
	return out, nil
}

// ApplicableTiers devuelve cada tramo aplicable con su costo, en orden de prioridad.
func (uc *UseCase) ApplicableTiers(ctx context.Context, itemID string, rentalDays int, calculationDate string) ([]dto.TierCostDTO, error) {
	on, tiers, err := uc.loadForCalculation(ctx, itemID, rentalDays, calculationDate)
	if err != nil {
		return nil, err
	}
	sels := dompricing.Evaluate(tiers, rentalDays, on)
	out := make([]dto.TierCostDTO, 0, len(sels))
	for _, s := range sels {
		out = append(out, toTierCost(s))
	}
	return out, nil
}

// Quote arma una cotización de alquiler: mejor tramo, alternativas y total por cantidad.
// Si ningún tramo aplica se usa la tarifa diaria base del ítem.
func (uc *UseCase) Quote(ctx context.Context, in dto.QuoteRequest) (*dto.QuoteResponse, error) {
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 0 {
		return nil, domain.Validationf("quantity debe ser mayor que cero")
	}
	item, err := uc.requireItem(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if !item.IsRentable {
		return nil, domain.Validationf("el ítem %s no está disponible para alquiler", item.SKU)
	}
	on, tiers, err := uc.loadForCalculation(ctx, in.ItemID, in.RentalDays, in.CalculationDate)
	if err != nil {
		return nil, err
	}

	q := &dto.QuoteResponse{
		ItemID:          item.ID,
		ItemName:        item.Name,
		SKU:             item.SKU,
		RentalDays:      in.RentalDays,
		Quantity:        in.Quantity,
		CalculationDate: on.Format(DateLayout),
		Alternatives:    []dto.TierCostDTO{},
		Available:       decimal.Zero,
		GeneratedAt:     uc.now(),
	}
	if in.CustomerID != "" {
		customer, err := uc.customerRepo.GetByID(ctx, in.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, domain.NotFoundf("cliente %s no encontrado", in.CustomerID)
		}
		q.CustomerID = customer.ID
		q.CustomerName = customer.Name
	}

	for _, s := range dompricing.Evaluate(tiers, in.RentalDays, on) {
		q.Alternatives = append(q.Alternatives, toTierCost(s))
	}
	if sel, ok := dompricing.BestTier(tiers, in.RentalDays, on); ok {
		c := toTierCost(sel)
		q.Selected = &c
		q.PricingSource = SourceTier
		q.UnitTotal = sel.TotalCost
	} else if item.BaseDailyRate != nil {
		q.PricingSource = SourceBaseRate
		q.UnitTotal = item.BaseDailyRate.Mul(decimal.NewFromInt(int64(in.RentalDays)))
	} else {
		return nil, domain.NotFoundf("no hay precio de alquiler aplicable al ítem %s para %d días", item.SKU, in.RentalDays)
	}
	q.UnitTotal = q.UnitTotal.Round(2)
	q.GrandTotal = q.UnitTotal.Mul(decimal.NewFromInt(int64(in.Quantity))).Round(2)

	available, err := uc.levelRepo.SumAvailableByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	q.Available = available.Round(2)
	return q, nil
}

// QuotePDF arma la cotización y la renderiza en PDF.
func (uc *UseCase) QuotePDF(ctx context.Context, in dto.QuoteRequest) ([]byte, *dto.QuoteResponse, error) {
	if uc.pdf == nil {
		return nil, nil, domain.Validationf("generación de PDF no configurada")
	}
	q, err := uc.Quote(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	b, err := uc.pdf.GenerateQuotePDF(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	return b, q, nil
}

func (uc *UseCase) loadForCalculation(ctx context.Context, itemID string, rentalDays int, calculationDate string) (time.Time, []*entity.RentalPricingTier, error) {
	if rentalDays < 1 {
		return time.Time{}, nil, domain.Validationf("rental_days debe ser al menos 1")
	}
	on, err := parseDate(calculationDate, uc.now())
	if err != nil {
		return time.Time{}, nil, err
	}
	if _, err := uc.requireItem(ctx, itemID); err != nil {
		return time.Time{}, nil, err
	}
	tiers, err := uc.tierRepo.ListByItem(ctx, itemID, true)
	if err != nil {
		return time.Time{}, nil, err
	}
	return on, tiers, nil
}

func (uc *UseCase) requireItem(ctx context.Context, itemID string) (*entity.Item, error) {
	if itemID == "" {
		return nil, domain.Validationf("item_id es requerido")
	}
	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || !item.IsActive {
		return nil, domain.NotFoundf("ítem %s no encontrado", itemID)
	}
	return item, nil
}

func (uc *UseCase) buildTier(itemID string, in dto.CreateTierRequest) (*entity.RentalPricingTier, error) {
	effective, err := parseDate(in.EffectiveDate, uc.now())
	if err != nil {
		return nil, err
	}
	now := uc.now()
	tier := &entity.RentalPricingTier{
		ID:            uuid.New().String(),
		ItemID:        itemID,
		TierName:      in.TierName,
		PeriodType:    entity.PeriodType(in.PeriodType),
		PeriodDays:    in.PeriodDays,
		PeriodHours:   in.PeriodHours,
		RatePerPeriod: in.RatePerPeriod,
		EffectiveDate: effective,
		MinRentalDays: in.MinRentalDays,
		MaxRentalDays: in.MaxRentalDays,
		Priority:      in.Priority,
		IsDefault:     in.IsDefault,
		IsActive:      true,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if strings.TrimSpace(in.ExpiryDate) != "" {
		exp, err := parseDate(in.ExpiryDate, time.Time{})
		if err != nil {
			return nil, err
		}
		tier.ExpiryDate = &exp
	}
	tier.Normalize()
	if err := tier.Validate(); err != nil {
		return nil, err
	}
	return tier, nil
}

func applyTierUpdate(t *entity.RentalPricingTier, in dto.UpdateTierRequest) error {
	if in.TierName != nil {
		t.TierName = *in.TierName
	}
	if in.RatePerPeriod != nil {
		t.RatePerPeriod = *in.RatePerPeriod
	}
	if in.EffectiveDate != nil {
		d, err := parseDate(*in.EffectiveDate, time.Time{})
		if err != nil {
			return err
		}
		t.EffectiveDate = d
	}
	if in.ClearExpiry {
		t.ExpiryDate = nil
	} else if in.ExpiryDate != nil {
		d, err := parseDate(*in.ExpiryDate, time.Time{})
		if err != nil {
			return err
		}
		t.ExpiryDate = &d
	}
	if in.MinRentalDays != nil {
		t.MinRentalDays = in.MinRentalDays
	}
	if in.MaxRentalDays != nil {
		t.MaxRentalDays = in.MaxRentalDays
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	if in.IsActive != nil {
		t.IsActive = *in.IsActive
	}
	t.Normalize()
	return t.Validate()
}

// parseDate interpreta YYYY-MM-DD; vacío devuelve def truncado a día.
func parseDate(s string, def time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		if def.IsZero() {
			return time.Time{}, domain.Validationf("fecha requerida (YYYY-MM-DD)")
		}
		return entity.DateOnly(def), nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, domain.Validationf("fecha inválida %q (YYYY-MM-DD)", s)
	}
	return t, nil
}

func intPtr(v int) *int { return &v }

func toTierCost(s dompricing.Selection) dto.TierCostDTO {
	return dto.TierCostDTO{
		Tier:      *ToTierResponse(s.Tier),
		Periods:   s.Periods,
		TotalCost: s.TotalCost.Round(2),
	}
}

func toTierResponses(list []*entity.RentalPricingTier) []dto.TierResponse {
	out := make([]dto.TierResponse, 0, len(list))
	for _, t := range list {
		out = append(out, *ToTierResponse(t))
	}
	return out
}

// ToTierResponse convierte el entity en su DTO de salida.
func ToTierResponse(t *entity.RentalPricingTier) *dto.TierResponse {
	if t == nil {
		return nil
	}
	r := &dto.TierResponse{
		ID:            t.ID,
		ItemID:        t.ItemID,
		TierName:      t.TierName,
		PeriodType:    string(t.PeriodType),
		PeriodDays:    t.PeriodDays,
		PeriodHours:   t.PeriodHours,
		RatePerPeriod: t.RatePerPeriod,
		EffectiveDate: t.EffectiveDate.Format(DateLayout),
		MinRentalDays: t.MinRentalDays,
		MaxRentalDays: t.MaxRentalDays,
		Priority:      t.Priority,
		IsDefault:     t.IsDefault,
		IsActive:      t.IsActive,
		Version:       t.Version,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	if t.ExpiryDate != nil {
		s := t.ExpiryDate.Format(DateLayout)
		r.ExpiryDate = &s
	}
	return r
}
