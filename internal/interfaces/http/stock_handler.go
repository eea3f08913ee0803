package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Alquiler-api/internal/application/dto"
	"github.com/jhoicas/Alquiler-api/internal/application/inventory"
	"github.com/jhoicas/Alquiler-api/internal/domain/entity"
	"github.com/jhoicas/Alquiler-api/internal/domain/repository"
)

// StockHandler maneja niveles de stock y sus mutaciones (protegido).
type StockHandler struct {
	uc *inventory.StockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.StockUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// Create godoc
// @Summary      Crear nivel de stock
// @Description  Crea el nivel de un ítem en una ubicación. Si available se omite se calcula
//
//	como on_hand menos el resto de particiones.
//
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockLevelRequest  true  "item_id, location_id y cantidades iniciales"
// @Success      201   {object}  dto.StockLevelResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock-levels [post]
func (h *StockHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateStockLevelRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.CreateStockLevel(c.Context(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener nivel de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del nivel"
// @Success      200  {object}  dto.StockLevelResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-levels/{id} [get]
func (h *StockHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar niveles de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  false  "Filtrar por ítem"
// @Param        location_id  query  string  false  "Filtrar por ubicación"
// @Param        status       query  string  false  "Estados separados por coma (IN_STOCK,LOW_STOCK,OUT_OF_STOCK,OVERSTOCKED)"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.StockLevelListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock-levels [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	filter := repository.StockLevelFilter{
		ItemID:     c.Query("item_id"),
		LocationID: c.Query("location_id"),
		Limit:      limit,
		Offset:     offset,
	}
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			st := entity.StockStatus(strings.ToUpper(strings.TrimSpace(s)))
			if !st.Valid() {
				return badRequest(c, "VALIDATION", "status inválido: "+s)
			}
			filter.Statuses = append(filter.Statuses, st)
		}
	}
	if filter.ItemID != "" && filter.LocationID != "" && len(filter.Statuses) == 0 {
		out, err := h.uc.GetByItemAndLocation(c.Context(), filter.ItemID, filter.LocationID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(dto.StockLevelListResponse{
			Items: []dto.StockLevelResponse{*out},
			Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: 1},
		})
	}
	out, err := h.uc.List(c.Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Movimientos de un nivel de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del nivel"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {array}   dto.StockMovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-levels/{id}/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	out, err := h.uc.ListMovements(c.Context(), c.Params("id"), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// mutate parsea el body en T y ejecuta op sobre el nivel :id con el usuario del token.
func mutate[T any](c *fiber.Ctx, op func(ctx context.Context, userID, id string, in T) (*dto.StockLevelResponse, error)) error {
	var in T
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := op(c.Context(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Adjust godoc
// @Summary      Ajustar cantidad en mano
// @Description  Suma delta a on_hand (recepción o conteo). affect_available=false solo se admite con delta 0; delta 0 confirma un conteo.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del nivel"
// @Param        body  body  dto.AdjustQuantityRequest  true  "delta, affect_available, expected_version"
// @Success      200   {object}  dto.StockLevelResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock-levels/{id}/adjust [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	return mutate(c, h.uc.AdjustQuantity)
}

// Reserve godoc
// @Summary      Reservar unidades
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del nivel"
// @Param        body  body  dto.QuantityRequest  true  "quantity, expected_version"
// @Success      200   {object}  dto.StockLevelResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock-levels/{id}/reserve [post]
func (h *StockHandler) Reserve(c *fiber.Ctx) error {
	return mutate(c, h.uc.Reserve)
}

// Release POST /api/stock-levels/{id}/release
func (h *StockHandler) Release(c *fiber.Ctx) error {
	return mutate(c, h.uc.ReleaseReservation)
}

// RentOut POST /api/stock-levels/{id}/rent-out
func (h *StockHandler) RentOut(c *fiber.Ctx) error {
	return mutate(c, h.uc.RentOut)
}

// Return godoc
// @Summary      Registrar devolución de alquiler
// @Description  Las unidades devueltas pasan a disponible salvo damaged_quantity, que pasa a dañado.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del nivel"
// @Param        body  body  dto.ReturnFromRentRequest  true  "quantity, damaged_quantity"
// @Success      200   {object}  dto.StockLevelResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock-levels/{id}/return [post]
func (h *StockHandler) Return(c *fiber.Ctx) error {
	return mutate(c, h.uc.ReturnFromRent)
}

// StartRepair POST /api/stock-levels/{id}/repair
func (h *StockHandler) StartRepair(c *fiber.Ctx) error {
	return mutate(c, h.uc.MoveToRepair)
}

// CompleteRepair POST /api/stock-levels/{id}/complete-repair
func (h *StockHandler) CompleteRepair(c *fiber.Ctx) error {
	return mutate(c, h.uc.CompleteRepair)
}

// BeyondRepair POST /api/stock-levels/{id}/beyond-repair
func (h *StockHandler) BeyondRepair(c *fiber.Ctx) error {
	return mutate(c, h.uc.MarkBeyondRepair)
}

// WriteOff godoc
// @Summary      Dar de baja unidades dañadas
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del nivel"
// @Param        body  body  dto.QuantityRequest  true  "quantity"
// @Success      200   {object}  dto.StockLevelResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock-levels/{id}/write-off [post]
func (h *StockHandler) WriteOff(c *fiber.Ctx) error {
	return mutate(c, h.uc.WriteOff)
}

// UpdateCost godoc
// @Summary      Actualizar costo promedio
// @Description  Promedio ponderado con las unidades recibidas; no cambia cantidades.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del nivel"
// @Param        body  body  dto.UpdateCostRequest  true  "quantity, unit_cost"
// @Success      200   {object}  dto.StockLevelResponse
// @Router       /api/stock-levels/{id}/cost [post]
func (h *StockHandler) UpdateCost(c *fiber.Ctx) error {
	return mutate(c, h.uc.UpdateAverageCost)
}

// UpdateThresholds PUT /api/stock-levels/{id}/thresholds
func (h *StockHandler) UpdateThresholds(c *fiber.Ctx) error {
	return mutate(c, h.uc.UpdateThresholds)
}
