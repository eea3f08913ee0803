package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Alquiler-api/internal/application/dto"
	"github.com/jhoicas/Alquiler-api/internal/domain"
	"github.com/rs/zerolog"
)

// statusByKind código HTTP para cada Kind de error de dominio.
var statusByKind = map[domain.Kind]int{
	domain.KindValidation:      fiber.StatusBadRequest,
	domain.KindNotFound:        fiber.StatusNotFound,
	domain.KindConflict:        fiber.StatusConflict,
	domain.KindVersionConflict: fiber.StatusConflict,
	domain.KindUnauthorized:    fiber.StatusUnauthorized,
	domain.KindForbidden:       fiber.StatusForbidden,
}

// writeError traduce un error de caso de uso a respuesta HTTP con dto.ErrorResponse{Code: Kind}.
// Los errores INTERNAL no exponen el detalle al cliente.
func writeError(c *fiber.Ctx, err error) error {
	kind := domain.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: string(domain.KindInternal), Message: "error interno",
		})
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: string(kind), Message: err.Error()})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func invalidBody(c *fiber.Ctx) error {
	return badRequest(c, "INVALID_BODY", "cuerpo inválido")
}

// ErrorHandler manejador de errores de Fiber: *fiber.Error conserva su código,
// el resto pasa por writeError. Los 5xx se registran con el logger.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
		}
		if domain.KindOf(err) == domain.KindInternal {
			log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
		}
		return writeError(c, err)
	}
}

// pagination lee limit/offset con límites: limit por defecto 20, máximo 100.
func pagination(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", 20)
	offset = c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
