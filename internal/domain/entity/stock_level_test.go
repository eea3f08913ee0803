package entity_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/jhoicas/Alquiler-api/internal/domain"
	"github.com/jhoicas/Alquiler-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func newLevel(t *testing.T, in entity.InitialQuantities) *entity.StockLevel {
	t.Helper()
	l, err := entity.NewStockLevel("item-1", "loc-1", in)
	require.NoError(t, err)
	return l
}

func assertDec(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "%s: esperado %s, obtenido %s", field, want, got)
}

func TestNewStockLevel_CalculaDisponible(t *testing.T) {
	l := newLevel(t, entity.InitialQuantities{OnHand: d("20"), Reserved: d("5"), Damaged: d("2")})
	assertDec(t, "13", l.Available, "available")
	assert.Equal(t, int64(1), l.Version)
	assert.Equal(t, entity.StockStatusInStock, l.Status)
	assert.True(t, l.InvariantHolds())
}

func TestNewStockLevel_Rechazos(t *testing.T) {
	tests := []struct {
		name string
		in   entity.InitialQuantities
	}{
		{"particiones superan on_hand", entity.InitialQuantities{OnHand: d("5"), Reserved: d("6")}},
		{"suma explícita no cuadra", entity.InitialQuantities{OnHand: d("10"), Available: dp("9")}},
		{"cantidad negativa", entity.InitialQuantities{OnHand: d("-1"), Available: dp("-1")}},
		{"reorden mayor que máximo", entity.InitialQuantities{OnHand: d("10"), ReorderPoint: dp("20"), MaximumStock: dp("15")}},
		{"costo negativo", entity.InitialQuantities{OnHand: d("10"), AverageCost: dp("-3")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := entity.NewStockLevel("item-1", "loc-1", tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation))
		})
	}

	_, err := entity.NewStockLevel("", "loc-1", entity.InitialQuantities{})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestNewStockLevel_ToleraRedondeo(t *testing.T) {
	l := newLevel(t, entity.InitialQuantities{OnHand: d("10"), Available: dp("9.99")})
	assert.True(t, l.InvariantHolds())
}

func TestStockLevel_ReservaYAlquiler(t *testing.T) {
	l := newLevel(t, entity.InitialQuantities{OnHand: d("100"), Available: dp("100")})

	require.NoError(t, l.Reserve(d("30")))
	assertDec(t, "70", l.Available, "available")
	assertDec(t, "30", l.Reserved, "reserved")

	require.NoError(t, l.RentOut(d("50")))
	assertDec(t, "20", l.Available, "available")
	assertDec(t, "50", l.OnRent, "on_rent")

	before := *l
	err := l.RentOut(d("25"))
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Equal(t, before, *l, "un rechazo no modifica el nivel")
	assert.Equal(t, int64(3), l.Version)
}

func TestStockLevel_DevolucionConDanos(t *testing.T) {
	l := newLevel(t, entity.InitialQuantities{OnHand: d("15"), OnRent: d("10")})
	assertDec(t, "5", l.Available, "available")

	require.NoError(t, l.ReturnFromRent(d("10"), d("3")))
	assertDec(t, "0", l.OnRent, "on_rent")
	assertDec(t, "12", l.Available, "available")
	assertDec(t, "3", l.Damaged, "damaged")
	assert.True(t, l.InvariantHolds())

	assert.Error(t, l.ReturnFromRent(d("1"), d("0")), "no queda nada en alquiler")
}

func TestStockLevel_DevolucionValidaDanadas(t *testing.T) {
	l := newLevel(t, entity.InitialQuantities{OnHand: d("10"), OnRent: d("10")})
	assert.Error(t, l.ReturnFromRent(d("2"), d("3")))
	assert.Error(t, l.ReturnFromRent(d("2"), d("-1")))
	assert.Error(t, l.ReturnFromRent(d("0"), d("0")))
}

func TestStockLevel_CicloDeReparacion(t *testing.T) {
	l := newLevel(t, entity.InitialQuantities{OnHand: d("10"), Damaged: d("6")})

	require.NoError(t, l.MoveToRepair(d("4")))
	require.NoError(t, l.CompleteRepair(d("2")))
	require.NoError(t, l.MarkBeyondRepair(d("1"), true))
	require.NoError(t, l.MarkBeyondRepair(d("2"), false))
	require.NoError(t, l.WriteOff(d("3")))

	assertDec(t, "7", l.OnHand, "on_hand")
	assertDec(t, "6", l.Available, "available")
	assertDec(t, "0", l.Damaged, "damaged")
	assertDec(t, "1", l.UnderRepair, "under_repair")
	assertDec(t, "0", l.BeyondRepair, "beyond_repair")
	assert.True(t, l.InvariantHolds())

	assert.Error(t, l.MoveToRepair(d("1")))
	assert.Error(t, l.CompleteRepair(d("2")))
	assert.Error(t, l.WriteOff(d("1")))
	assert.Error(t, l.MarkBeyondRepair(d("2"), true))
}

func TestStockLevel_AjusteDeCantidad(t *testing.T) {
	l := newLevel(t, entity.InitialQuantities{OnHand: d("10"), Reserved: d("8")})

	require.NoError(t, l.AdjustQuantity(d("5"), true))
	assertDec(t, "15", l.OnHand, "on_hand")
	assertDec(t, "7", l.Available, "available")

	assert.Error(t, l.AdjustQuantity(d("-8"), true), "no puede descontar más que lo disponible")
	assert.Error(t, l.AdjustQuantity(d("1"), false))
	assert.Error(t, l.AdjustQuantity(d("-20"), true))

	require.NoError(t, l.AdjustQuantity(d("-7"), true))
	assertDec(t, "8", l.OnHand, "on_hand")
	assert.Equal(t, entity.StockStatusOutOfStock, l.Status)
}

func TestStockLevel_AjusteCeroConfirmaConteo(t *testing.T) {
	l := newLevel(t, entity.InitialQuantities{OnHand: d("10"), Reserved: d("3")})
	before := l.Version

	require.NoError(t, l.AdjustQuantity(d("0"), true))
	assertDec(t, "10", l.OnHand, "on_hand")
	assertDec(t, "7", l.Available, "available")
	assertDec(t, "3", l.Reserved, "reserved")
	assert.Equal(t, before+1, l.Version)
	assert.True(t, l.InvariantHolds())

	require.NoError(t, l.AdjustQuantity(d("0"), false))
	assert.Equal(t, before+2, l.Version)
}

func TestStockLevel_LiberarReserva(t *testing.T) {
	l := newLevel(t, entity.InitialQuantities{OnHand: d("10")})
	require.NoError(t, l.Reserve(d("4")))
	require.NoError(t, l.ReleaseReservation(d("3")))
	assertDec(t, "9", l.Available, "available")
	assertDec(t, "1", l.Reserved, "reserved")
	assert.Error(t, l.ReleaseReservation(d("2")))
}

func TestStockLevel_CostoPromedio(t *testing.T) {
	l := newLevel(t, entity.InitialQuantities{OnHand: d("10"), AverageCost: dp("100")})
	assertDec(t, "1000", l.TotalValue, "total_value")

	require.NoError(t, l.UpdateAverageCost(d("10"), d("130")))
	require.NotNil(t, l.AverageCost)
	assertDec(t, "115", *l.AverageCost, "average_cost")
	assertDec(t, "130", *l.LastPurchaseCost, "last_purchase_cost")
	assertDec(t, "10", l.OnHand, "on_hand no cambia")

	assert.Error(t, l.UpdateAverageCost(d("0"), d("1")))
	assert.Error(t, l.UpdateAverageCost(d("1"), d("-1")))
}

func TestStockLevel_CostoPromedioSinCostoPrevio(t *testing.T) {
	l := newLevel(t, entity.InitialQuantities{OnHand: d("4")})
	require.NoError(t, l.UpdateAverageCost(d("6"), d("33.333")))
	assertDec(t, "33.33", *l.AverageCost, "average_cost")
}

func TestStockLevel_Umbrales(t *testing.T) {
	l := newLevel(t, entity.InitialQuantities{OnHand: d("50"), Available: dp("5"), Reserved: d("45")})
	require.NoError(t, l.UpdateThresholds(dp("10"), dp("20"), nil))
	assert.Equal(t, entity.StockStatusLowStock, l.Status)

	require.NoError(t, l.UpdateThresholds(nil, nil, dp("40")))
	assert.Equal(t, entity.StockStatusOverstocked, l.Status)

	err := l.UpdateThresholds(dp("50"), nil, dp("40"))
	require.Error(t, err)
	assert.Equal(t, entity.StockStatusOverstocked, l.Status)
}

// Secuencias aleatorias de operaciones: la suma de particiones y la no-negatividad se mantienen
// tras cada llamada, tenga éxito o no.
func TestStockLevel_InvarianteEnSecuenciasAleatorias(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	qty := func() decimal.Decimal { return decimal.NewFromInt(int64(rng.Intn(15))) }

	for run := 0; run < 200; run++ {
		l := newLevel(t, entity.InitialQuantities{OnHand: decimal.NewFromInt(int64(rng.Intn(50)))})
		for step := 0; step < 50; step++ {
			prev := *l
			var err error
			switch rng.Intn(10) {
			case 0:
				err = l.AdjustQuantity(qty().Sub(decimal.NewFromInt(5)), true)
			case 1:
				err = l.Reserve(qty())
			case 2:
				err = l.ReleaseReservation(qty())
			case 3:
				err = l.RentOut(qty())
			case 4:
				n := qty()
				err = l.ReturnFromRent(n, decimal.NewFromInt(int64(rng.Intn(int(n.IntPart())+1))))
			case 5:
				err = l.MoveToRepair(qty())
			case 6:
				err = l.CompleteRepair(qty())
			case 7:
				err = l.MarkBeyondRepair(qty(), rng.Intn(2) == 0)
			case 8:
				err = l.WriteOff(qty())
			case 9:
				err = l.UpdateAverageCost(qty(), decimal.NewFromInt(int64(rng.Intn(1000))))
			}
			if err != nil {
				require.Equal(t, prev, *l, "run %d paso %d: un error no debe modificar el nivel", run, step)
				continue
			}
			require.True(t, l.InvariantHolds(), "run %d paso %d", run, step)
			require.NoError(t, l.Validate(), "run %d paso %d", run, step)
			require.Equal(t, prev.Version+1, l.Version)
			if l.OnHand.IsZero() {
				require.Equal(t, entity.StockStatusOutOfStock, l.Status)
			}
		}
	}
}
