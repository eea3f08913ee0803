package entity

import (
	"time"

	"github.com/jhoicas/Alquiler-api/internal/domain"
	"github.com/jhoicas/Alquiler-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// QuantityTolerance margen absorbido por redondeo al comparar la suma de particiones con OnHand.
var QuantityTolerance = decimal.New(1, -2)

// StockLevel representa las cantidades de un ítem en una ubicación, partidas por estado.
// Invariante: Available + Reserved + OnRent + Damaged + UnderRepair + BeyondRepair == OnHand (± 0.01).
// Toda mutación pasa por los métodos de este tipo; ninguno deja la invariante rota.
type StockLevel struct {
	ID         string
	ItemID     string
	LocationID string

	OnHand       decimal.Decimal
	Available    decimal.Decimal
	Reserved     decimal.Decimal
	OnRent       decimal.Decimal
	Damaged      decimal.Decimal
	UnderRepair  decimal.Decimal
	BeyondRepair decimal.Decimal

	ReorderPoint    *decimal.Decimal
	ReorderQuantity *decimal.Decimal
	MaximumStock    *decimal.Decimal

	AverageCost      *decimal.Decimal
	LastPurchaseCost *decimal.Decimal
	TotalValue       decimal.Decimal // OnHand * AverageCost, 2 decimales

	Status  StockStatus
	Version int64 // se incrementa en cada cambio de estado; base del compare-and-swap en persistencia

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InitialQuantities valores de arranque de un nivel de stock.
// Si Available es nil se calcula como OnHand menos el resto de particiones.
type InitialQuantities struct {
	OnHand       decimal.Decimal
	Available    *decimal.Decimal
	Reserved     decimal.Decimal
	OnRent       decimal.Decimal
	Damaged      decimal.Decimal
	UnderRepair  decimal.Decimal
	BeyondRepair decimal.Decimal

	ReorderPoint    *decimal.Decimal
	ReorderQuantity *decimal.Decimal
	MaximumStock    *decimal.Decimal
	AverageCost     *decimal.Decimal
}

// NewStockLevel construye y valida un nivel de stock para (itemID, locationID).
func NewStockLevel(itemID, locationID string, in InitialQuantities) (*StockLevel, error) {
	if itemID == "" || locationID == "" {
		return nil, domain.Validationf("item_id y location_id son requeridos")
	}
	s := &StockLevel{
		ItemID:          itemID,
		LocationID:      locationID,
		OnHand:          q(in.OnHand),
		Reserved:        q(in.Reserved),
		OnRent:          q(in.OnRent),
		Damaged:         q(in.Damaged),
		UnderRepair:     q(in.UnderRepair),
		BeyondRepair:    q(in.BeyondRepair),
		ReorderPoint:    qp(in.ReorderPoint),
		ReorderQuantity: qp(in.ReorderQuantity),
		MaximumStock:    qp(in.MaximumStock),
		AverageCost:     qp(in.AverageCost),
		IsActive:        true,
	}
	if in.Available != nil {
		s.Available = q(*in.Available)
	} else {
		s.Available = s.OnHand.Sub(s.allocated())
		if s.Available.IsNegative() {
			return nil, domain.Validationf("las particiones (%s) superan on_hand (%s)", s.allocated(), s.OnHand)
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s.refresh()
	return s, nil
}

// Validate verifica no-negatividad, la invariante de suma y el orden de umbrales.
func (s *StockLevel) Validate() error {
	parts := []struct {
		name string
		v    decimal.Decimal
	}{
		{"on_hand", s.OnHand},
		{"available", s.Available},
		{"reserved", s.Reserved},
		{"on_rent", s.OnRent},
		{"damaged", s.Damaged},
		{"under_repair", s.UnderRepair},
		{"beyond_repair", s.BeyondRepair},
	}
	for _, p := range parts {
		if p.v.IsNegative() {
			return domain.Validationf("%s no puede ser negativo (%s)", p.name, p.v)
		}
	}
	if !s.InvariantHolds() {
		return domain.Validationf("la suma de particiones (%s) no coincide con on_hand (%s)",
			s.Available.Add(s.allocated()), s.OnHand)
	}
	return validateThresholds(s.ReorderPoint, s.ReorderQuantity, s.MaximumStock, s.AverageCost)
}

// InvariantHolds informa si la suma de particiones coincide con OnHand dentro de la tolerancia.
func (s *StockLevel) InvariantHolds() bool {
	diff := s.Available.Add(s.allocated()).Sub(s.OnHand).Abs()
	return diff.LessThanOrEqual(QuantityTolerance)
}

// allocated suma todas las particiones salvo Available.
func (s *StockLevel) allocated() decimal.Decimal {
	return s.Reserved.Add(s.OnRent).Add(s.Damaged).Add(s.UnderRepair).Add(s.BeyondRepair)
}

// AdjustQuantity suma delta a OnHand (recepción, conteo físico).
// Con affectAvailable, Available absorbe el mismo delta; sin él la invariante se rompería,
// por lo que esa combinación se rechaza. Delta cero confirma un conteo: no cambia cantidades
// pero sí incrementa la versión.
func (s *StockLevel) AdjustQuantity(delta decimal.Decimal, affectAvailable bool) error {
	delta = q(delta)
	newOnHand := s.OnHand.Add(delta)
	if newOnHand.IsNegative() {
		return domain.Validationf("on_hand resultante negativo (%s)", newOnHand)
	}
	if !affectAvailable && !delta.IsZero() {
		return domain.Validationf("un ajuste de on_hand debe afectar available para conservar la suma de particiones")
	}
	if delta.IsNegative() && delta.Abs().GreaterThan(s.Available) {
		return domain.Validationf("no se pueden descontar %s: solo hay %s disponibles", delta.Abs(), s.Available)
	}
	s.OnHand = newOnHand
	s.Available = s.Available.Add(delta)
	s.refresh()
	return nil
}

// Reserve aparta qty unidades disponibles.
func (s *StockLevel) Reserve(qty decimal.Decimal) error {
	qty = q(qty)
	if err := requirePositive(qty); err != nil {
		return err
	}
	if qty.GreaterThan(s.Available) {
		return domain.Validationf("no se pueden reservar %s: solo hay %s disponibles", qty, s.Available)
	}
	s.Available = s.Available.Sub(qty)
	s.Reserved = s.Reserved.Add(qty)
	s.refresh()
	return nil
}

// ReleaseReservation devuelve qty unidades reservadas a disponibles.
func (s *StockLevel) ReleaseReservation(qty decimal.Decimal) error {
	qty = q(qty)
	if err := requirePositive(qty); err != nil {
		return err
	}
	if qty.GreaterThan(s.Reserved) {
		return domain.Validationf("no se pueden liberar %s: solo hay %s reservadas", qty, s.Reserved)
	}
	s.Reserved = s.Reserved.Sub(qty)
	s.Available = s.Available.Add(qty)
	s.refresh()
	return nil
}

// RentOut entrega qty unidades disponibles en alquiler.
func (s *StockLevel) RentOut(qty decimal.Decimal) error {
	qty = q(qty)
	if err := requirePositive(qty); err != nil {
		return err
	}
	if qty.GreaterThan(s.Available) {
		return domain.Validationf("no se pueden alquilar %s: solo hay %s disponibles", qty, s.Available)
	}
	s.Available = s.Available.Sub(qty)
	s.OnRent = s.OnRent.Add(qty)
	s.refresh()
	return nil
}

// ReturnFromRent recibe qty unidades alquiladas, de las cuales damagedQty vuelven dañadas.
func (s *StockLevel) ReturnFromRent(qty, damagedQty decimal.Decimal) error {
	qty, damagedQty = q(qty), q(damagedQty)
	if err := requirePositive(qty); err != nil {
		return err
	}
	if qty.GreaterThan(s.OnRent) {
		return domain.Validationf("no se pueden devolver %s: solo hay %s en alquiler", qty, s.OnRent)
	}
	if damagedQty.IsNegative() {
		return domain.Validationf("damaged_quantity no puede ser negativo")
	}
	if damagedQty.GreaterThan(qty) {
		return domain.Validationf("damaged_quantity (%s) no puede superar la cantidad devuelta (%s)", damagedQty, qty)
	}
	s.OnRent = s.OnRent.Sub(qty)
	s.Available = s.Available.Add(qty.Sub(damagedQty))
	s.Damaged = s.Damaged.Add(damagedQty)
	s.refresh()
	return nil
}

// MoveToRepair envía qty unidades dañadas a reparación.
func (s *StockLevel) MoveToRepair(qty decimal.Decimal) error {
	qty = q(qty)
	if err := requirePositive(qty); err != nil {
		return err
	}
	if qty.GreaterThan(s.Damaged) {
		return domain.Validationf("no se pueden reparar %s: solo hay %s dañadas", qty, s.Damaged)
	}
	s.Damaged = s.Damaged.Sub(qty)
	s.UnderRepair = s.UnderRepair.Add(qty)
	s.refresh()
	return nil
}

// CompleteRepair reincorpora qty unidades reparadas a disponibles.
func (s *StockLevel) CompleteRepair(qty decimal.Decimal) error {
	qty = q(qty)
	if err := requirePositive(qty); err != nil {
		return err
	}
	if qty.GreaterThan(s.UnderRepair) {
		return domain.Validationf("no se pueden completar %s: solo hay %s en reparación", qty, s.UnderRepair)
	}
	s.UnderRepair = s.UnderRepair.Sub(qty)
	s.Available = s.Available.Add(qty)
	s.refresh()
	return nil
}

// MarkBeyondRepair declara qty unidades irreparables, tomadas de dañadas o (fromRepair) de reparación.
func (s *StockLevel) MarkBeyondRepair(qty decimal.Decimal, fromRepair bool) error {
	qty = q(qty)
	if err := requirePositive(qty); err != nil {
		return err
	}
	if fromRepair {
		if qty.GreaterThan(s.UnderRepair) {
			return domain.Validationf("no se pueden descartar %s: solo hay %s en reparación", qty, s.UnderRepair)
		}
		s.UnderRepair = s.UnderRepair.Sub(qty)
	} else {
		if qty.GreaterThan(s.Damaged) {
			return domain.Validationf("no se pueden descartar %s: solo hay %s dañadas", qty, s.Damaged)
		}
		s.Damaged = s.Damaged.Sub(qty)
	}
	s.BeyondRepair = s.BeyondRepair.Add(qty)
	s.refresh()
	return nil
}

// WriteOff da de baja qty unidades irreparables; salen de OnHand.
func (s *StockLevel) WriteOff(qty decimal.Decimal) error {
	qty = q(qty)
	if err := requirePositive(qty); err != nil {
		return err
	}
	if qty.GreaterThan(s.BeyondRepair) {
		return domain.Validationf("no se pueden dar de baja %s: solo hay %s irreparables", qty, s.BeyondRepair)
	}
	s.BeyondRepair = s.BeyondRepair.Sub(qty)
	s.OnHand = s.OnHand.Sub(qty)
	s.refresh()
	return nil
}

// UpdateAverageCost recalcula el costo promedio ponderado con una entrada de newQty a newCost.
// Sin costo previo, el stock existente se valora a newCost.
func (s *StockLevel) UpdateAverageCost(newQty, newCost decimal.Decimal) error {
	if !newQty.IsPositive() {
		return domain.Validationf("la cantidad de entrada debe ser mayor que cero")
	}
	if newCost.IsNegative() {
		return domain.Validationf("el costo de entrada no puede ser negativo")
	}
	current := newCost
	if s.AverageCost != nil {
		current = *s.AverageCost
	}
	avg := inventory.CostCalculator(s.OnHand, current, newQty, newCost).Round(2)
	last := newCost
	s.AverageCost = &avg
	s.LastPurchaseCost = &last
	s.refresh()
	return nil
}

// UpdateThresholds reemplaza los umbrales de reorden y máximo.
func (s *StockLevel) UpdateThresholds(reorderPoint, reorderQuantity, maximumStock *decimal.Decimal) error {
	reorderPoint, reorderQuantity, maximumStock = qp(reorderPoint), qp(reorderQuantity), qp(maximumStock)
	if err := validateThresholds(reorderPoint, reorderQuantity, maximumStock, nil); err != nil {
		return err
	}
	s.ReorderPoint = reorderPoint
	s.ReorderQuantity = reorderQuantity
	s.MaximumStock = maximumStock
	s.refresh()
	return nil
}

// refresh recalcula los derivados y avanza la versión.
func (s *StockLevel) refresh() {
	s.TotalValue = decimal.Zero
	if s.AverageCost != nil {
		s.TotalValue = s.OnHand.Mul(*s.AverageCost).Round(2)
	}
	s.Status = ClassifyStockStatus(s.OnHand, s.Available, s.ReorderPoint, s.MaximumStock)
	s.Version++
}

func validateThresholds(reorderPoint, reorderQuantity, maximumStock, averageCost *decimal.Decimal) error {
	if reorderPoint != nil && reorderPoint.IsNegative() {
		return domain.Validationf("reorder_point no puede ser negativo")
	}
	if reorderQuantity != nil && reorderQuantity.IsNegative() {
		return domain.Validationf("reorder_quantity no puede ser negativo")
	}
	if maximumStock != nil && maximumStock.IsNegative() {
		return domain.Validationf("maximum_stock no puede ser negativo")
	}
	if averageCost != nil && averageCost.IsNegative() {
		return domain.Validationf("average_cost no puede ser negativo")
	}
	if reorderPoint != nil && maximumStock != nil && reorderPoint.GreaterThan(*maximumStock) {
		return domain.Validationf("reorder_point (%s) no puede superar maximum_stock (%s)", *reorderPoint, *maximumStock)
	}
	return nil
}

func requirePositive(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return domain.Validationf("la cantidad debe ser mayor que cero")
	}
	return nil
}

// q normaliza una cantidad a 2 decimales.
func q(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

func qp(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := d.Round(2)
	return &v
}
