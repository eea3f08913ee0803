package pricing_test

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/jhoicas/Alquiler-api/internal/application/dto"
	"github.com/jhoicas/Alquiler-api/internal/application/pricing"
	"github.com/jhoicas/Alquiler-api/internal/domain"
	"github.com/jhoicas/Alquiler-api/internal/domain/entity"
	"github.com/jhoicas/Alquiler-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Fakes en memoria ─────────────────────────────────────────────────────────

type memTiers struct {
	byID map[string]entity.RentalPricingTier
}

func (m *memTiers) Create(_ context.Context, t *entity.RentalPricingTier) error {
	for _, v := range m.byID {
		if v.ItemID == t.ItemID && v.TierName == t.TierName && v.EffectiveDate.Equal(t.EffectiveDate) {
			return domain.Conflictf("tramo duplicado")
		}
		if t.IsDefault && t.IsActive && v.ItemID == t.ItemID && v.IsDefault && v.IsActive {
			return domain.Conflictf("default duplicado")
		}
	}
	m.byID[t.ID] = *t
	return nil
}

func (m *memTiers) GetByID(_ context.Context, id string) (*entity.RentalPricingTier, error) {
	v, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (m *memTiers) Update(_ context.Context, t *entity.RentalPricingTier) error {
	t.Version++
	m.byID[t.ID] = *t
	return nil
}

func (m *memTiers) ListByItem(_ context.Context, itemID string, onlyActive bool) ([]*entity.RentalPricingTier, error) {
	var out []*entity.RentalPricingTier
	for _, v := range m.byID {
		if v.ItemID != itemID || (onlyActive && !v.IsActive) {
			continue
		}
		c := v
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

func (m *memTiers) ListByItemForUpdate(ctx context.Context, itemID string) ([]*entity.RentalPricingTier, error) {
	return m.ListByItem(ctx, itemID, false)
}

func (m *memTiers) ClearDefaults(_ context.Context, itemID string) error {
	for id, v := range m.byID {
		if v.ItemID == itemID && v.IsDefault {
			v.IsDefault = false
			v.Version++
			m.byID[id] = v
		}
	}
	return nil
}

func (m *memTiers) SetDefault(_ context.Context, tierID string) error {
	v := m.byID[tierID]
	v.IsDefault = true
	v.Version++
	m.byID[tierID] = v
	return nil
}

func (m *memTiers) defaults(itemID string) int {
	n := 0
	for _, v := range m.byID {
		if v.ItemID == itemID && v.IsDefault && v.IsActive {
			n++
		}
	}
	return n
}

type memPricingTx struct{ tiers *memTiers }

func (t *memPricingTx) RunPricing(_ context.Context, fn func(repository.RentalPricingRepository) error) error {
	return fn(t.tiers)
}

type stubItems struct{ byID map[string]*entity.Item }

func (s *stubItems) Create(context.Context, *entity.Item) error { return nil }
func (s *stubItems) GetByID(_ context.Context, id string) (*entity.Item, error) {
	return s.byID[id], nil
}
func (s *stubItems) GetBySKU(context.Context, string) (*entity.Item, error) { return nil, nil }
func (s *stubItems) Update(context.Context, *entity.Item) error             { return nil }
func (s *stubItems) List(context.Context, string, int, int) ([]*entity.Item, error) {
	return nil, nil
}
func (s *stubItems) Deactivate(context.Context, string) error { return nil }

type stubCustomers struct{}

func (stubCustomers) Create(context.Context, *entity.Customer) error { return nil }
func (stubCustomers) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	if id == "cust-1" {
		return &entity.Customer{ID: id, Name: "Constructora Andes", IsActive: true}, nil
	}
	return nil, nil
}
func (stubCustomers) GetByTaxID(context.Context, string) (*entity.Customer, error) { return nil, nil }
func (stubCustomers) List(context.Context, int, int) ([]*entity.Customer, error) {
	return nil, nil
}
func (stubCustomers) Update(context.Context, *entity.Customer) error { return nil }

type stubLevels struct{ levels []*entity.StockLevel }

func (s *stubLevels) Create(context.Context, *entity.StockLevel) error { return nil }
func (s *stubLevels) GetByID(context.Context, string) (*entity.StockLevel, error) {
	return nil, nil
}
func (s *stubLevels) GetByItemAndLocation(context.Context, string, string) (*entity.StockLevel, error) {
	return nil, nil
}
func (s *stubLevels) GetForUpdate(context.Context, string) (*entity.StockLevel, error) {
	return nil, nil
}
func (s *stubLevels) UpdateWithVersion(context.Context, *entity.StockLevel, int64) error {
	return nil
}
func (s *stubLevels) List(_ context.Context, f repository.StockLevelFilter) ([]*entity.StockLevel, error) {
	var out []*entity.StockLevel
	for _, l := range s.levels {
		if f.ItemID == "" || l.ItemID == f.ItemID {
			out = append(out, l)
		}
	}
	return out, nil
}
func (s *stubLevels) SumAvailableByItem(_ context.Context, itemID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, l := range s.levels {
		if l.ItemID == itemID && l.IsActive {
			total = total.Add(l.Available)
		}
	}
	return total, nil
}
func (s *stubLevels) ValuationByLocation(context.Context) ([]repository.LocationValuation, error) {
	return nil, nil
}

type stubPDF struct{ called bool }

func (s *stubPDF) GenerateQuotePDF(_ context.Context, q *dto.QuoteResponse) ([]byte, error) {
	s.called = true
	return []byte("%PDF-" + q.SKU), nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func intp(v int) *int { return &v }

type pricingFixture struct {
	uc    *pricing.UseCase
	tiers *memTiers
	pdf   *stubPDF
}

func newPricingFixture() *pricingFixture {
	tiers := &memTiers{byID: map[string]entity.RentalPricingTier{}}
	base := dec("25")
	items := &stubItems{byID: map[string]*entity.Item{
		"item-x": {ID: "item-x", SKU: "AND-X", Name: "Andamio X", IsRentable: true, IsActive: true, BaseDailyRate: &base},
		"item-s": {ID: "item-s", SKU: "VEN-S", Name: "Solo venta", IsActive: true},
	}}
	stock, _ := entity.NewStockLevel("item-x", "loc-1", entity.InitialQuantities{OnHand: dec("7")})
	pdf := &stubPDF{}
	uc := pricing.NewUseCase(&memPricingTx{tiers: tiers}, tiers, items, stubCustomers{},
		&stubLevels{levels: []*entity.StockLevel{stock}}, pdf, zerolog.Nop())
	return &pricingFixture{uc: uc, tiers: tiers, pdf: pdf}
}

// seedScenario crea Diario $20 (1-6 días, prioridad 10) y Semanal $120 (7-29 días, prioridad 20).
func (f *pricingFixture) seedScenario(t *testing.T) (daily, weekly *dto.TierResponse) {
	t.Helper()
	ctx := context.Background()
	var err error
	daily, err = f.uc.CreateTier(ctx, "item-x", dto.CreateTierRequest{
		TierName: "Diario", PeriodType: "DAILY", RatePerPeriod: dec("20"),
		EffectiveDate: "2026-01-01", MinRentalDays: intp(1), MaxRentalDays: intp(6),
		Priority: 10, IsDefault: true,
	})
	require.NoError(t, err)
	weekly, err = f.uc.CreateTier(ctx, "item-x", dto.CreateTierRequest{
		TierName: "Semanal", PeriodType: "WEEKLY", RatePerPeriod: dec("120"),
		EffectiveDate: "2026-01-01", MinRentalDays: intp(7), MaxRentalDays: intp(29),
		Priority: 20,
	})
	require.NoError(t, err)
	return daily, weekly
}

// ── Mejor precio ─────────────────────────────────────────────────────────────

func TestBestPricingFor_TenDaysPicksWeekly(t *testing.T) {
	f := newPricingFixture()
	_, weekly := f.seedScenario(t)

	res, err := f.uc.BestPricingFor(context.Background(), "item-x", 10, "2026-03-01")
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, weekly.ID, res.Best.Tier.ID)
	assert.Equal(t, int64(2), res.Best.Periods)
	assert.True(t, dec("240").Equal(res.Best.TotalCost))
}

func TestBestPricingFor_NoApplicableTierIsNotAnError(t *testing.T) {
	f := newPricingFixture()
	f.seedScenario(t)

	res, err := f.uc.BestPricingFor(context.Background(), "item-x", 45, "2026-03-01")
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Nil(t, res.Best)

	res, err = f.uc.BestPricingFor(context.Background(), "item-x", 3, "2025-12-31")
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestBestPricingFor_InvalidInput(t *testing.T) {
	f := newPricingFixture()
	_, err := f.uc.BestPricingFor(context.Background(), "item-x", 0, "")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = f.uc.BestPricingFor(context.Background(), "item-x", 3, "01/03/2026")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = f.uc.BestPricingFor(context.Background(), "missing", 3, "")
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestApplicableTiers_PriorityOrder(t *testing.T) {
	f := newPricingFixture()
	f.seedScenario(t)
	_, err := f.uc.CreateTier(context.Background(), "item-x", dto.CreateTierRequest{
		TierName: "Promo", PeriodType: "DAILY", RatePerPeriod: dec("15"),
		EffectiveDate: "2026-01-01", Priority: 5,
	})
	require.NoError(t, err)

	list, err := f.uc.ApplicableTiers(context.Background(), "item-x", 3, "2026-03-01")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Promo", list[0].Tier.TierName)
	assert.Equal(t, "Diario", list[1].Tier.TierName)
	assert.True(t, dec("45").Equal(list[0].TotalCost))
}

// ── Defaults ─────────────────────────────────────────────────────────────────

func TestCreateTier_SecondActiveDefaultIsConflict(t *testing.T) {
	f := newPricingFixture()
	f.seedScenario(t)

	_, err := f.uc.CreateTier(context.Background(), "item-x", dto.CreateTierRequest{
		TierName: "Otro", PeriodType: "DAILY", RatePerPeriod: dec("18"),
		EffectiveDate: "2026-02-01", IsDefault: true,
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	assert.Len(t, f.tiers.byID, 2)
}

func TestCreateTier_DuplicateNameAndDateIsConflict(t *testing.T) {
	f := newPricingFixture()
	f.seedScenario(t)

	_, err := f.uc.CreateTier(context.Background(), "item-x", dto.CreateTierRequest{
		TierName: "Semanal", PeriodType: "WEEKLY", RatePerPeriod: dec("100"), EffectiveDate: "2026-01-01",
	})
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestCreateTier_ValidationErrors(t *testing.T) {
	f := newPricingFixture()
	cases := map[string]dto.CreateTierRequest{
		"sin nombre":       {PeriodType: "DAILY", RatePerPeriod: dec("1")},
		"periodo inválido": {TierName: "X", PeriodType: "YEARLY", RatePerPeriod: dec("1")},
		"tarifa negativa":  {TierName: "X", PeriodType: "DAILY", RatePerPeriod: dec("-1")},
		"rango invertido":  {TierName: "X", PeriodType: "DAILY", RatePerPeriod: dec("1"), MinRentalDays: intp(9), MaxRentalDays: intp(3)},
		"vence antes":      {TierName: "X", PeriodType: "DAILY", RatePerPeriod: dec("1"), EffectiveDate: "2026-05-01", ExpiryDate: "2026-04-01"},
		"horas faltantes":  {TierName: "X", PeriodType: "HOURLY", RatePerPeriod: dec("1")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.uc.CreateTier(context.Background(), "item-x", in)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		})
	}
}

func TestSetDefaultTier_MovesTheSingleDefault(t *testing.T) {
	f := newPricingFixture()
	daily, weekly := f.seedScenario(t)

	list, err := f.uc.SetDefaultTier(context.Background(), "item-x", weekly.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, f.tiers.defaults("item-x"))
	assert.True(t, f.tiers.byID[weekly.ID].IsDefault)
	assert.False(t, f.tiers.byID[daily.ID].IsDefault)
	for _, tr := range list {
		assert.Equal(t, tr.ID == weekly.ID, tr.IsDefault)
	}
}

func TestSetDefaultTier_ReturnsPersistedVersions(t *testing.T) {
	f := newPricingFixture()
	daily, weekly := f.seedScenario(t)

	list, err := f.uc.SetDefaultTier(context.Background(), "item-x", weekly.ID)
	require.NoError(t, err)
	got := map[string]dto.TierResponse{}
	for _, tr := range list {
		got[tr.ID] = tr
	}
	assert.Equal(t, daily.Version+1, got[daily.ID].Version)
	assert.Equal(t, weekly.Version+1, got[weekly.ID].Version)
	assert.Equal(t, f.tiers.byID[daily.ID].Version, got[daily.ID].Version)
	assert.Equal(t, f.tiers.byID[weekly.ID].Version, got[weekly.ID].Version)
}

func TestSetDefaultTier_UnknownOrInactiveTier(t *testing.T) {
	f := newPricingFixture()
	daily, weekly := f.seedScenario(t)

	_, err := f.uc.SetDefaultTier(context.Background(), "item-x", "missing")
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	off := false
	_, err = f.uc.UpdateTier(context.Background(), weekly.ID, dto.UpdateTierRequest{IsActive: &off})
	require.NoError(t, err)
	_, err = f.uc.SetDefaultTier(context.Background(), "item-x", weekly.ID)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.True(t, f.tiers.byID[daily.ID].IsDefault)
}

func TestUpdateTier_ChangesRateAndBumpsVersion(t *testing.T) {
	f := newPricingFixture()
	daily, _ := f.seedScenario(t)
	rate := dec("22.5")

	res, err := f.uc.UpdateTier(context.Background(), daily.ID, dto.UpdateTierRequest{RatePerPeriod: &rate})
	require.NoError(t, err)
	assert.True(t, rate.Equal(res.RatePerPeriod))
	assert.Equal(t, int64(2), res.Version)
}

// ── Plantilla estándar ───────────────────────────────────────────────────────

func TestCreateStandardTemplate_CreatesThreeTiers(t *testing.T) {
	f := newPricingFixture()
	weekly, monthly := dec("120"), dec("400")

	list, err := f.uc.CreateStandardTemplate(context.Background(), "item-x", dto.StandardTemplateRequest{
		DailyRate: dec("20"), WeeklyRate: &weekly, MonthlyRate: &monthly, EffectiveDate: "2026-01-01",
	})
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, pricing.StandardDailyName, list[0].TierName)
	assert.True(t, list[0].IsDefault)
	assert.Equal(t, 10, list[0].Priority)
	assert.Equal(t, 7, *list[1].MinRentalDays)
	assert.Equal(t, 30, *list[2].PeriodDays)
	assert.Equal(t, 1, f.tiers.defaults("item-x"))

	res, err := f.uc.BestPricingFor(context.Background(), "item-x", 30, "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, pricing.StandardMonthlyName, res.Best.Tier.TierName)
}

func TestCreateStandardTemplate_RejectsWhenDefaultExists(t *testing.T) {
	f := newPricingFixture()
	f.seedScenario(t)

	_, err := f.uc.CreateStandardTemplate(context.Background(), "item-x", dto.StandardTemplateRequest{DailyRate: dec("20")})
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	assert.Len(t, f.tiers.byID, 2)
}

func TestCreateStandardTemplate_DailyRateRequired(t *testing.T) {
	f := newPricingFixture()
	_, err := f.uc.CreateStandardTemplate(context.Background(), "item-x", dto.StandardTemplateRequest{})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

// ── Cotización ───────────────────────────────────────────────────────────────

func TestQuote_UsesBestTierAndQuantity(t *testing.T) {
	f := newPricingFixture()
	f.seedScenario(t)

	q, err := f.uc.Quote(context.Background(), dto.QuoteRequest{
		ItemID: "item-x", RentalDays: 10, Quantity: 3, CalculationDate: "2026-03-01", CustomerID: "cust-1",
	})
	require.NoError(t, err)
	assert.Equal(t, pricing.SourceTier, q.PricingSource)
	assert.True(t, dec("240").Equal(q.UnitTotal))
	assert.True(t, dec("720").Equal(q.GrandTotal))
	assert.Equal(t, "Constructora Andes", q.CustomerName)
	assert.True(t, dec("7").Equal(q.Available))
	assert.Len(t, q.Alternatives, 1)
}

func TestQuote_SumsAvailableAcrossEveryLocation(t *testing.T) {
	base := dec("25")
	items := &stubItems{byID: map[string]*entity.Item{
		"item-x": {ID: "item-x", SKU: "AND-X", Name: "Andamio X", IsRentable: true, IsActive: true, BaseDailyRate: &base},
	}}
	levels := &stubLevels{}
	for i := 0; i < 150; i++ {
		l, err := entity.NewStockLevel("item-x", fmt.Sprintf("loc-%03d", i), entity.InitialQuantities{OnHand: dec("2")})
		require.NoError(t, err)
		levels.levels = append(levels.levels, l)
	}
	levels.levels[0].IsActive = false
	tiers := &memTiers{byID: map[string]entity.RentalPricingTier{}}
	uc := pricing.NewUseCase(&memPricingTx{tiers: tiers}, tiers, items, stubCustomers{}, levels, &stubPDF{}, zerolog.Nop())

	q, err := uc.Quote(context.Background(), dto.QuoteRequest{ItemID: "item-x", RentalDays: 1})
	require.NoError(t, err)
	assert.True(t, dec("298").Equal(q.Available), "available = %s", q.Available)
}

func TestQuote_FallsBackToBaseDailyRate(t *testing.T) {
	f := newPricingFixture()

	q, err := f.uc.Quote(context.Background(), dto.QuoteRequest{ItemID: "item-x", RentalDays: 4})
	require.NoError(t, err)
	assert.Equal(t, pricing.SourceBaseRate, q.PricingSource)
	assert.Nil(t, q.Selected)
	assert.True(t, dec("100").Equal(q.GrandTotal))
	assert.Equal(t, 1, q.Quantity)
}

func TestQuote_Errors(t *testing.T) {
	f := newPricingFixture()
	ctx := context.Background()

	_, err := f.uc.Quote(ctx, dto.QuoteRequest{ItemID: "item-s", RentalDays: 2})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = f.uc.Quote(ctx, dto.QuoteRequest{ItemID: "item-x", RentalDays: 2, CustomerID: "nadie"})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	_, err = f.uc.Quote(ctx, dto.QuoteRequest{ItemID: "item-x", RentalDays: 2, Quantity: -1})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestQuotePDF_RendersQuote(t *testing.T) {
	f := newPricingFixture()
	b, q, err := f.uc.QuotePDF(context.Background(), dto.QuoteRequest{ItemID: "item-x", RentalDays: 1})
	require.NoError(t, err)
	assert.True(t, f.pdf.called)
	assert.Equal(t, "%PDF-AND-X", string(b))
	assert.Equal(t, "AND-X", q.SKU)
}

func TestQuote_DefaultsCalculationDateToToday(t *testing.T) {
	f := newPricingFixture()
	q, err := f.uc.Quote(context.Background(), dto.QuoteRequest{ItemID: "item-x", RentalDays: 1})
	require.NoError(t, err)
	assert.Equal(t, entity.DateOnly(time.Now()).Format(pricing.DateLayout), q.CalculationDate)
}
