package inventory_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/Alquiler-api/internal/domain"
	"github.com/jhoicas/Alquiler-api/internal/domain/entity"
	"github.com/jhoicas/Alquiler-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ── Fakes en memoria ─────────────────────────────────────────────────────────

type memLevels struct {
	mu     sync.Mutex
	byID   map[string]entity.StockLevel
	locs   map[string]string // location_id -> nombre
	onSave func(id string)   // hook previo al CAS; simula otro escritor
}

func newMemLevels() *memLevels {
	return &memLevels{byID: map[string]entity.StockLevel{}, locs: map[string]string{}}
}

func (m *memLevels) Create(_ context.Context, l *entity.StockLevel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.byID {
		if v.ItemID == l.ItemID && v.LocationID == l.LocationID {
			return domain.Conflictf("duplicado")
		}
	}
	m.byID[l.ID] = *l
	return nil
}

func (m *memLevels) GetByID(_ context.Context, id string) (*entity.StockLevel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (m *memLevels) GetByItemAndLocation(_ context.Context, itemID, locationID string) (*entity.StockLevel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.byID {
		if v.ItemID == itemID && v.LocationID == locationID {
			c := v
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memLevels) GetForUpdate(ctx context.Context, id string) (*entity.StockLevel, error) {
	return m.GetByID(ctx, id)
}

func (m *memLevels) UpdateWithVersion(_ context.Context, l *entity.StockLevel, expected int64) error {
	if m.onSave != nil {
		m.onSave(l.ID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[l.ID]
	if !ok || cur.Version != expected {
		return domain.VersionConflictf("versión obsoleta")
	}
	m.byID[l.ID] = *l
	return nil
}

func (m *memLevels) List(_ context.Context, f repository.StockLevelFilter) ([]*entity.StockLevel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.StockLevel
	for _, v := range m.byID {
		if f.ItemID != "" && v.ItemID != f.ItemID {
			continue
		}
		if f.LocationID != "" && v.LocationID != f.LocationID {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, v.Status) {
			continue
		}
		c := v
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memLevels) SumAvailableByItem(_ context.Context, itemID string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, v := range m.byID {
		if v.ItemID == itemID && v.IsActive {
			total = total.Add(v.Available)
		}
	}
	return total, nil
}

func (m *memLevels) ValuationByLocation(_ context.Context) ([]repository.LocationValuation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	agg := map[string]*repository.LocationValuation{}
	for _, v := range m.byID {
		a, ok := agg[v.LocationID]
		if !ok {
			a = &repository.LocationValuation{LocationID: v.LocationID, LocationName: m.locs[v.LocationID]}
			agg[v.LocationID] = a
		}
		a.Levels++
		a.OnHand = a.OnHand.Add(v.OnHand)
		a.TotalValue = a.TotalValue.Add(v.TotalValue)
	}
	out := make([]repository.LocationValuation, 0, len(agg))
	for _, a := range agg {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LocationID < out[j].LocationID })
	return out, nil
}

func containsStatus(list []entity.StockStatus, s entity.StockStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type memMovements struct {
	mu   sync.Mutex
	list []*entity.StockMovement
}

func (m *memMovements) Create(_ context.Context, mov *entity.StockMovement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.list = append(m.list, mov)
	return nil
}

func (m *memMovements) ListByStockLevel(_ context.Context, id string, limit, offset int) ([]*entity.StockMovement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.StockMovement
	for i := len(m.list) - 1; i >= 0; i-- {
		if m.list[i].StockLevelID == id {
			out = append(out, m.list[i])
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// memTx ejecuta fn con los repos en memoria; los errores no revierten nada,
// por eso los entity validan antes de mutar.
type memTx struct {
	levels    *memLevels
	movements *memMovements
}

func (t *memTx) Run(_ context.Context, fn func(repository.StockLevelRepository, repository.StockMovementRepository) error) error {
	return fn(t.levels, t.movements)
}

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
	return nil, nil
}
func (m *memItems) Deactivate(_ context.Context, id string) error { return nil }

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
func (m *memLocations) Deactivate(_ context.Context, _ string) error { return nil }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func fixedNow() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
