package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Alquiler-api/internal/application/inventory"
)

// ReportHandler reportes de inventario: reposición y valorización (protegido).
type ReportHandler struct {
	replenishment *inventory.ReplenishmentUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(replenishment *inventory.ReplenishmentUseCase) *ReportHandler {
	return &ReportHandler{replenishment: replenishment}
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Niveles en LOW_STOCK u OUT_OF_STOCK con la cantidad sugerida de pedido,
//
//	primero los agotados y luego por mayor déficit.
//
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Filtrar por ubicación (UUID). Vacío = todas."
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/reports/replenishment [get]
func (h *ReportHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.Context(), c.Query("location_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}

// GetValuation godoc
// @Summary      Valorización de inventario por ubicación
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ValuationReport
// @Router       /api/reports/valuation [get]
func (h *ReportHandler) GetValuation(c *fiber.Ctx) error {
	out, err := h.replenishment.Valuation(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
