package usecase_test

import (
	"context"
	"testing"

	"github.com/jhoicas/Alquiler-api/internal/application/dto"
	"github.com/jhoicas/Alquiler-api/internal/application/usecase"
	"github.com/jhoicas/Alquiler-api/internal/domain"
	"github.com/jhoicas/Alquiler-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memItems struct{ byID map[string]*entity.Item }

func (m *memItems) Create(_ context.Context, i *entity.Item) error { m.byID[i.ID] = i; return nil }
func (m *memItems) GetByID(_ context.Context, id string) (*entity.Item, error) {
	return m.byID[id], nil
}
func (m *memItems) GetBySKU(_ context.Context, sku string) (*entity.Item, error) {
	for _, i := range m.byID {
		if i.SKU == sku {
			return i, nil
		}
	}
	return nil, nil
}
func (m *memItems) Update(_ context.Context, i *entity.Item) error { m.byID[i.ID] = i; return nil }
func (m *memItems) List(_ context.Context, _ string, _, _ int) ([]*entity.Item, error) {
	out := make([]*entity.Item, 0, len(m.byID))
	for _, i := range m.byID {
		out = append(out, i)
	}
	return out, nil
}
func (m *memItems) Deactivate(_ context.Context, id string) error {
	m.byID[id].IsActive = false
	return nil
}

type memLocations struct{ byID map[string]*entity.Location }

func (m *memLocations) Create(_ context.Context, l *entity.Location) error {
	m.byID[l.ID] = l
	return nil
}
func (m *memLocations) GetByID(_ context.Context, id string) (*entity.Location, error) {
	return m.byID[id], nil
}
func (m *memLocations) Update(_ context.Context, l *entity.Location) error {
	m.byID[l.ID] = l
	return nil
}
func (m *memLocations) List(_ context.Context, _, _ int) ([]*entity.Location, error) {
	return nil, nil
}
func (m *memLocations) Deactivate(_ context.Context, id string) error {
	m.byID[id].IsActive = false
	return nil
}

type memCustomers struct{ list []*entity.Customer }

func (m *memCustomers) Create(_ context.Context, c *entity.Customer) error {
	m.list = append(m.list, c)
	return nil
}
func (m *memCustomers) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	for _, c := range m.list {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}
func (m *memCustomers) GetByTaxID(_ context.Context, taxID string) (*entity.Customer, error) {
	for _, c := range m.list {
		if c.TaxID == taxID {
			return c, nil
		}
	}
	return nil, nil
}
func (m *memCustomers) List(_ context.Context, _, _ int) ([]*entity.Customer, error) {
	return m.list, nil
}
func (m *memCustomers) Update(context.Context, *entity.Customer) error { return nil }

// ── Items ────────────────────────────────────────────────────────────────────

func TestItemUseCase_CreateDefaultsAndDuplicateSKU(t *testing.T) {
	uc := usecase.NewItemUseCase(&memItems{byID: map[string]*entity.Item{}})
	ctx := context.Background()

	it, err := uc.Create(ctx, dto.CreateItemRequest{SKU: " AND-01 ", Name: "Andamio"})
	require.NoError(t, err)
	assert.Equal(t, "AND-01", it.SKU)
	assert.True(t, it.IsRentable)
	assert.True(t, it.IsActive)
	assert.Equal(t, "UND", it.UnitMeasure)

	_, err = uc.Create(ctx, dto.CreateItemRequest{SKU: "AND-01", Name: "Otro"})
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestItemUseCase_UpdateAndDelete(t *testing.T) {
	uc := usecase.NewItemUseCase(&memItems{byID: map[string]*entity.Item{}})
	ctx := context.Background()
	it, err := uc.Create(ctx, dto.CreateItemRequest{SKU: "MZ-1", Name: "Mezcladora"})
	require.NoError(t, err)

	neg := decimal.NewFromInt(-1)
	_, err = uc.Update(ctx, it.ID, dto.UpdateItemRequest{BaseDailyRate: &neg})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	rate := decimal.NewFromInt(35)
	updated, err := uc.Update(ctx, it.ID, dto.UpdateItemRequest{BaseDailyRate: &rate})
	require.NoError(t, err)
	require.NotNil(t, updated.BaseDailyRate)
	assert.True(t, rate.Equal(*updated.BaseDailyRate))

	require.NoError(t, uc.Delete(ctx, it.ID))
	got, err := uc.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	assert.Equal(t, domain.KindNotFound, domain.KindOf(uc.Delete(ctx, "nope")))
}

// ── Locations ────────────────────────────────────────────────────────────────

func TestLocationUseCase_TypeNormalization(t *testing.T) {
	uc := usecase.NewLocationUseCase(&memLocations{byID: map[string]*entity.Location{}})
	ctx := context.Background()

	l, err := uc.Create(ctx, dto.CreateLocationRequest{Code: "bog", Name: "Bogotá"})
	require.NoError(t, err)
	assert.Equal(t, "BOG", l.Code)
	assert.Equal(t, entity.LocationTypeWarehouse, l.Type)

	_, err = uc.Create(ctx, dto.CreateLocationRequest{Code: "x", Name: "X", Type: "garaje"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	store := "store"
	l, err = uc.Update(ctx, l.ID, dto.UpdateLocationRequest{Type: &store})
	require.NoError(t, err)
	assert.Equal(t, entity.LocationTypeStore, l.Type)
}

// ── Customers ────────────────────────────────────────────────────────────────

func TestCustomerUseCase_DuplicateTaxID(t *testing.T) {
	uc := usecase.NewCustomerUseCase(&memCustomers{})
	ctx := context.Background()

	c, err := uc.Create(ctx, dto.CreateCustomerRequest{Name: "Constructora", TaxID: "900123456"})
	require.NoError(t, err)
	assert.True(t, c.IsActive)

	_, err = uc.Create(ctx, dto.CreateCustomerRequest{Name: "Otra", TaxID: "900123456"})
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	_, err = uc.Create(ctx, dto.CreateCustomerRequest{Name: "Sin documento"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	list, err := uc.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 20, list.Page.Limit)
}

func TestCustomerUseCase_NITConDigitoDeVerificacion(t *testing.T) {
	uc := usecase.NewCustomerUseCase(&memCustomers{})
	ctx := context.Background()

	c, err := uc.Create(ctx, dto.CreateCustomerRequest{Name: "Obras SAS", TaxID: "800.197.268", TaxIDType: "NIT"})
	require.NoError(t, err)
	assert.Equal(t, "800197268-4", c.TaxID)

	_, err = uc.Create(ctx, dto.CreateCustomerRequest{Name: "Mismo NIT", TaxID: "8001972684", TaxIDType: "NIT"})
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	_, err = uc.Create(ctx, dto.CreateCustomerRequest{Name: "DV errado", TaxID: "800197268-1", TaxIDType: "NIT"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}
