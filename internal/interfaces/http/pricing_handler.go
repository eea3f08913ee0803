package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Alquiler-api/internal/application/dto"
	"github.com/jhoicas/Alquiler-api/internal/application/pricing"
)

// PricingHandler maneja tramos de precio de alquiler y su resolución (protegido).
type PricingHandler struct {
	uc *pricing.UseCase
}

// NewPricingHandler construye el handler.
func NewPricingHandler(uc *pricing.UseCase) *PricingHandler {
	return &PricingHandler{uc: uc}
}

// CreateTier godoc
// @Summary      Crear tramo de precio
// @Tags         pricing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del ítem"
// @Param        body  body  dto.CreateTierRequest  true  "Datos del tramo (fechas YYYY-MM-DD)"
// @Success      201   {object}  dto.TierResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/items/{id}/pricing-tiers [post]
func (h *PricingHandler) CreateTier(c *fiber.Ctx) error {
	var in dto.CreateTierRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.CreateTier(c.Context(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CreateStandardTemplate godoc
// @Summary      Crear plantilla estándar (diario, semanal, mensual)
// @Tags         pricing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del ítem"
// @Param        body  body  dto.StandardTemplateRequest  true  "daily_rate obligatorio"
// @Success      201   {array}   dto.TierResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/items/{id}/pricing-tiers/template [post]
func (h *PricingHandler) CreateStandardTemplate(c *fiber.Ctx) error {
	var in dto.StandardTemplateRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.CreateStandardTemplate(c.Context(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListTiers godoc
// @Summary      Listar tramos de un ítem
// @Tags         pricing
// @Security     Bearer
// @Produce      json
// @Param        id           path   string  true   "ID del ítem"
// @Param        only_active  query  bool    false  "Solo activos"  default(false)
// @Success      200  {array}  dto.TierResponse
// @Router       /api/items/{id}/pricing-tiers [get]
func (h *PricingHandler) ListTiers(c *fiber.Ctx) error {
	out, err := h.uc.ListTiers(c.Context(), c.Params("id"), c.QueryBool("only_active", false))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetTier GET /api/pricing-tiers/{id}
func (h *PricingHandler) GetTier(c *fiber.Ctx) error {
	out, err := h.uc.GetTier(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateTier godoc
// @Summary      Actualizar tramo de precio
// @Tags         pricing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del tramo"
// @Param        body  body  dto.UpdateTierRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.TierResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/pricing-tiers/{id} [put]
func (h *PricingHandler) UpdateTier(c *fiber.Ctx) error {
	var in dto.UpdateTierRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.UpdateTier(c.Context(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SetDefault godoc
// @Summary      Marcar tramo default del ítem
// @Description  Quita la marca al default anterior y la pone en el tramo indicado, en una transacción.
// @Tags         pricing
// @Security     Bearer
// @Produce      json
// @Param        id       path  string  true  "ID del ítem"
// @Param        tierId   path  string  true  "ID del tramo"
// @Success      200  {array}   dto.TierResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/pricing-tiers/{tierId}/default [put]
func (h *PricingHandler) SetDefault(c *fiber.Ctx) error {
	out, err := h.uc.SetDefaultTier(c.Context(), c.Params("id"), c.Params("tierId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// BestPricing godoc
// @Summary      Mejor tramo para una duración
// @Description  Devuelve el tramo aplicable de menor costo total. found=false si ninguno aplica.
// @Tags         pricing
// @Security     Bearer
// @Produce      json
// @Param        id    path   string  true   "ID del ítem"
// @Param        days  query  int     true   "Días de alquiler (>= 1)"
// @Param        date  query  string  false  "Fecha de cálculo YYYY-MM-DD (por defecto hoy)"
// @Success      200  {object}  dto.BestPricingResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/pricing/best [get]
func (h *PricingHandler) BestPricing(c *fiber.Ctx) error {
	out, err := h.uc.BestPricingFor(c.Context(), c.Params("id"), c.QueryInt("days", 0), c.Query("date"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ApplicableTiers GET /api/items/{id}/pricing/applicable?days=&date=
func (h *PricingHandler) ApplicableTiers(c *fiber.Ctx) error {
	out, err := h.uc.ApplicableTiers(c.Context(), c.Params("id"), c.QueryInt("days", 0), c.Query("date"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Quote godoc
// @Summary      Cotizar alquiler
// @Tags         pricing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.QuoteRequest  true  "item_id, rental_days, quantity, calculation_date, customer_id"
// @Success      200   {object}  dto.QuoteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/rental-quotes [post]
func (h *PricingHandler) Quote(c *fiber.Ctx) error {
	var in dto.QuoteRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Quote(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// QuotePDF godoc
// @Summary      Cotización de alquiler en PDF
// @Tags         pricing
// @Security     Bearer
// @Accept       json
// @Produce      application/pdf
// @Param        body  body  dto.QuoteRequest  true  "item_id, rental_days, quantity, calculation_date, customer_id"
// @Success      200   {file}    binary
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/rental-quotes/pdf [post]
func (h *PricingHandler) QuotePDF(c *fiber.Ctx) error {
	var in dto.QuoteRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	pdfBytes, q, err := h.uc.QuotePDF(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="cotizacion-`+q.SKU+`.pdf"`)
	return c.Send(pdfBytes)
}
