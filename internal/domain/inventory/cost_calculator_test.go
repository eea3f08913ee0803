package inventory_test

import (
	"testing"

	"github.com/jhoicas/Alquiler-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCostCalculator(t *testing.T) {
	dec := decimal.RequireFromString
	tests := []struct {
		name                         string
		stock, cost, entrada, precio string
		want                         string
	}{
		{"promedio ponderado", "10", "100", "10", "130", "115"},
		{"sin stock previo", "0", "0", "5", "42", "42"},
		{"entrada a costo cero", "3", "90", "6", "0", "30"},
		{"sin unidades", "0", "10", "0", "10", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inventory.CostCalculator(dec(tt.stock), dec(tt.cost), dec(tt.entrada), dec(tt.precio))
			assert.Truef(t, dec(tt.want).Equal(got), "esperado %s, obtenido %s", tt.want, got)
		})
	}
}
