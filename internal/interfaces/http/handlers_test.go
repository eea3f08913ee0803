package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Alquiler-api/internal/application/dto"
	"github.com/jhoicas/Alquiler-api/internal/application/inventory"
	"github.com/jhoicas/Alquiler-api/internal/domain"
	"github.com/jhoicas/Alquiler-api/internal/domain/entity"
	"github.com/jhoicas/Alquiler-api/internal/domain/repository"
	apphttp "github.com/jhoicas/Alquiler-api/internal/interfaces/http"
)

// ── fakes en memoria ─────────────────────────────────────────────────────────

type memStock struct {
	mu        sync.Mutex
	levels    map[string]*entity.StockLevel
	movements []*entity.StockMovement
}

func newMemStock() *memStock { return &memStock{levels: map[string]*entity.StockLevel{}} }

func clone(l *entity.StockLevel) *entity.StockLevel {
	c := *l
	return &c
}

func (m *memStock) Create(_ context.Context, l *entity.StockLevel) error {
	for _, x := range m.levels {
		if x.ItemID == l.ItemID && x.LocationID == l.LocationID {
			return domain.Conflictf("duplicado")
		}
	}
	m.levels[l.ID] = clone(l)
	return nil
}

func (m *memStock) GetByID(_ context.Context, id string) (*entity.StockLevel, error) {
	if l, ok := m.levels[id]; ok {
		return clone(l), nil
	}
	return nil, nil
}

func (m *memStock) GetByItemAndLocation(_ context.Context, itemID, locationID string) (*entity.StockLevel, error) {
	for _, l := range m.levels {
		if l.ItemID == itemID && l.LocationID == locationID {
			return clone(l), nil
		}
	}
	return nil, nil
}

func (m *memStock) GetForUpdate(ctx context.Context, id string) (*entity.StockLevel, error) {
	return m.GetByID(ctx, id)
}

func (m *memStock) UpdateWithVersion(_ context.Context, l *entity.StockLevel, expected int64) error {
	cur, ok := m.levels[l.ID]
	if !ok || cur.Version != expected {
		return domain.VersionConflictf("versión")
	}
	m.levels[l.ID] = clone(l)
	return nil
}

func (m *memStock) List(_ context.Context, _ repository.StockLevelFilter) ([]*entity.StockLevel, error) {
	out := make([]*entity.StockLevel, 0, len(m.levels))
	for _, l := range m.levels {
		out = append(out, clone(l))
	}
	return out, nil
}

func (m *memStock) SumAvailableByItem(_ context.Context, itemID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, l := range m.levels {
		if l.ItemID == itemID {
			total = total.Add(l.Available)
		}
	}
	return total, nil
}

func (m *memStock) ValuationByLocation(context.Context) ([]repository.LocationValuation, error) {
	return nil, nil
}

type memMoves struct{ s *memStock }

func (m memMoves) Create(_ context.Context, mv *entity.StockMovement) error {
	m.s.movements = append(m.s.movements, mv)
	return nil
}

func (m memMoves) ListByStockLevel(_ context.Context, id string, _, _ int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for i := len(m.s.movements) - 1; i >= 0; i-- {
		if m.s.movements[i].StockLevelID == id {
			out = append(out, m.s.movements[i])
		}
	}
	return out, nil
}

type memTx struct{ s *memStock }

func (t memTx) Run(_ context.Context, fn func(repository.StockLevelRepository, repository.StockMovementRepository) error) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return fn(t.s, memMoves{t.s})
}

type stubCatalog struct{}

func (stubCatalog) Create(context.Context, *entity.Item) error { return nil }
func (stubCatalog) GetByID(_ context.Context, id string) (*entity.Item, error) {
	if id == "item-1" {
		return &entity.Item{ID: id, SKU: "AND-01", Name: "Andamio", IsActive: true, IsRentable: true}, nil
	}
	return nil, nil
}
func (stubCatalog) GetBySKU(context.Context, string) (*entity.Item, error) { return nil, nil }
func (stubCatalog) Update(context.Context, *entity.Item) error { return nil }
func (stubCatalog) List(context.Context, string, int, int) ([]*entity.Item, error) { return nil, nil }
func (stubCatalog) Deactivate(context.Context, string) error { return nil }

type stubLocations struct{}

func (stubLocations) Create(context.Context, *entity.Location) error { return nil }
func (stubLocations) GetByID(_ context.Context, id string) (*entity.Location, error) {
	if id == "loc-1" {
		return &entity.Location{ID: id, Code: "BOD-1", Name: "Bodega", IsActive: true}, nil
	}
	return nil, nil
}
func (stubLocations) Update(context.Context, *entity.Location) error { return nil }
func (stubLocations) List(context.Context, int, int) ([]*entity.Location, error) { return nil, nil }
func (stubLocations) Deactivate(context.Context, string) error { return nil }

// ── helpers ─────────────────────────────────────────────────────────────────

func buildStockApp(t *testing.T) *fiber.App {
	t.Helper()
	s := newMemStock()
	uc := inventory.NewStockUseCase(memTx{s}, s, memMoves{s}, stubCatalog{}, stubLocations{}, zerolog.Nop())
	h := apphttp.NewStockHandler(uc)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(zerolog.Nop())})
	g := app.Group("/api/stock-levels", apphttp.AuthMiddleware(testJWTSecret))
	staff := apphttp.RequireRole("admin", "bodeguero")
	rental := apphttp.RequireRole("admin", "bodeguero", "vendedor")
	g.Post("/", staff, h.Create)
	g.Get("/:id", rental, h.GetByID)
	g.Get("/:id/movements", rental, h.ListMovements)
	g.Post("/:id/adjust", staff, h.Adjust)
	g.Post("/:id/reserve", rental, h.Reserve)
	g.Post("/:id/rent-out", rental, h.RentOut)
	g.Post("/:id/return", rental, h.Return)
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	resp.Body.Close()
	return resp, buf.Bytes()
}

func createLevel(t *testing.T, app *fiber.App) dto.StockLevelResponse {
	t.Helper()
	resp, body := call(t, app, http.MethodPost, "/api/stock-levels", "bodeguero", fiber.Map{
		"item_id": "item-1", "location_id": "loc-1", "on_hand": "10",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var out dto.StockLevelResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

// ── tests ───────────────────────────────────────────────────────────────────

func TestStockHandler_CreateAndRentalFlow(t *testing.T) {
	app := buildStockApp(t)
	level := createLevel(t, app)
	assert.Equal(t, int64(1), level.Version)
	assert.True(t, decimal.NewFromInt(10).Equal(level.Available))

	resp, body := call(t, app, http.MethodPost, "/api/stock-levels/"+level.ID+"/rent-out", "vendedor", fiber.Map{"quantity": "4"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = call(t, app, http.MethodPost, "/api/stock-levels/"+level.ID+"/return", "vendedor", fiber.Map{
		"quantity": "4", "damaged_quantity": "1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out dto.StockLevelResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.True(t, decimal.NewFromInt(9).Equal(out.Available))
	assert.True(t, decimal.NewFromInt(1).Equal(out.Damaged))
	assert.Equal(t, int64(3), out.Version)

	resp, body = call(t, app, http.MethodGet, "/api/stock-levels/"+level.ID+"/movements", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var moves []dto.StockMovementResponse
	require.NoError(t, json.Unmarshal(body, &moves))
	require.Len(t, moves, 3)
	assert.Equal(t, entity.MovementTypeReturn, moves[0].Type)
}

func TestStockHandler_ErrorKindsMapToStatus(t *testing.T) {
	app := buildStockApp(t)
	level := createLevel(t, app)

	tests := []struct {
		name   string
		method string
		path   string
		role   string
		body   any
		status int
		code   string
	}{
		{"reserva mayor a disponible", http.MethodPost, "/api/stock-levels/" + level.ID + "/reserve", "vendedor",
			fiber.Map{"quantity": "11"}, http.StatusBadRequest, "VALIDATION"},
		{"versión esperada vieja", http.MethodPost, "/api/stock-levels/" + level.ID + "/reserve", "vendedor",
			fiber.Map{"quantity": "1", "expected_version": 7}, http.StatusConflict, "VERSION_CONFLICT"},
		{"nivel inexistente", http.MethodGet, "/api/stock-levels/nope", "admin", nil, http.StatusNotFound, "NOT_FOUND"},
		{"nivel duplicado", http.MethodPost, "/api/stock-levels", "admin",
			fiber.Map{"item_id": "item-1", "location_id": "loc-1", "on_hand": "1"}, http.StatusConflict, "CONFLICT"},
		{"ítem inexistente", http.MethodPost, "/api/stock-levels", "admin",
			fiber.Map{"item_id": "x", "location_id": "loc-1", "on_hand": "1"}, http.StatusNotFound, "NOT_FOUND"},
		{"vendedor no ajusta", http.MethodPost, "/api/stock-levels/" + level.ID + "/adjust", "vendedor",
			fiber.Map{"delta": "1"}, http.StatusForbidden, "FORBIDDEN"},
		{"sin token", http.MethodGet, "/api/stock-levels/" + level.ID, "", nil, http.StatusUnauthorized, "MISSING_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := call(t, app, tt.method, tt.path, tt.role, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode, string(body))
			var e dto.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &e))
			assert.Equal(t, tt.code, e.Code)
		})
	}
}

func TestStockHandler_InvalidBody(t *testing.T) {
	app := buildStockApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/stock-levels", strings.NewReader("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, "admin"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestErrorHandler_InternalErrorsHideDetail(t *testing.T) {
	var logs bytes.Buffer
	log := zerolog.New(&logs)
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(log)})
	app.Use(apphttp.RequestLogger(log))
	app.Get("/boom", func(*fiber.Ctx) error { return errors.New("pq: conexión rota en 10.0.0.5") })
	app.Get("/gone", func(*fiber.Ctx) error { return domain.NotFoundf("no está") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	var e dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "INTERNAL", e.Code)
	assert.NotContains(t, e.Message, "10.0.0.5")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/gone", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	out := logs.String()
	assert.Contains(t, out, `"path":"/boom"`)
	assert.Contains(t, out, `"status":500`)
	assert.Contains(t, out, `"status":404`)
}

func TestRequestLogger_LogsLatency(t *testing.T) {
	var logs bytes.Buffer
	app := fiber.New()
	app.Use(apphttp.RequestLogger(zerolog.New(&logs)))
	app.Get("/ok", func(c *fiber.Ctx) error {
		time.Sleep(time.Millisecond)
		return c.SendString("ok")
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, logs.String(), `"status":200`)
	assert.Contains(t, logs.String(), `"latency"`)
}
