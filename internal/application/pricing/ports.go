package pricing

import (
	"context"

	"github.com/jhoicas/Alquiler-api/internal/application/dto"
	"github.com/jhoicas/Alquiler-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con el repositorio de tramos atado a ella.
// El cambio de tramo default (limpiar + marcar) ocurre completo o no ocurre.
type TxRunner interface {
	RunPricing(ctx context.Context, fn func(tierRepo repository.RentalPricingRepository) error) error
}

// QuotePDFGenerator genera la representación PDF de una cotización de alquiler.
type QuotePDFGenerator interface {
	GenerateQuotePDF(ctx context.Context, quote *dto.QuoteResponse) ([]byte, error)
}
