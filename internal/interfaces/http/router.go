package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Alquiler-api/internal/application/auth"
	"github.com/jhoicas/Alquiler-api/internal/application/inventory"
	"github.com/jhoicas/Alquiler-api/internal/application/pricing"
	"github.com/jhoicas/Alquiler-api/internal/application/usecase"
	"github.com/jhoicas/Alquiler-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	ItemUC        *usecase.ItemUseCase
	LocationUC    *usecase.LocationUseCase
	CustomerUC    *usecase.CustomerUseCase
	StockUC       *inventory.StockUseCase
	Replenishment *inventory.ReplenishmentUseCase
	PricingUC     *pricing.UseCase
	JWTSecret     string
}

// Router registra las rutas de la API.
//
// Roles: lectura para todos los roles autenticados; mutaciones de stock para admin|bodeguero
// (reservas y alquiler también para vendedor); escritura de precios y catálogo solo admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	const (
		admin     = entity.RoleAdmin
		bodeguero = entity.RoleBodeguero
		vendedor  = entity.RoleVendedor
	)
	anyRole := RequireRole(admin, bodeguero, vendedor)
	warehouseStaff := RequireRole(admin, bodeguero)
	rentalStaff := RequireRole(admin, bodeguero, vendedor)
	adminOnly := RequireRole(admin)

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Post("/auth/register", adminOnly, authHandler.Register)
	protected.Get("/auth/me", anyRole, authHandler.Me)

	// Items
	itemHandler := NewItemHandler(deps.ItemUC)
	pricingHandler := NewPricingHandler(deps.PricingUC)
	items := protected.Group("/items")
	items.Get("/", anyRole, itemHandler.List)
	items.Post("/", adminOnly, itemHandler.Create)
	items.Get("/:id", anyRole, itemHandler.GetByID)
	items.Put("/:id", adminOnly, itemHandler.Update)
	items.Delete("/:id", adminOnly, itemHandler.Delete)

	// Pricing por ítem
	items.Get("/:id/pricing-tiers", anyRole, pricingHandler.ListTiers)
	items.Post("/:id/pricing-tiers", adminOnly, pricingHandler.CreateTier)
	items.Post("/:id/pricing-tiers/template", adminOnly, pricingHandler.CreateStandardTemplate)
	items.Put("/:id/pricing-tiers/:tierId/default", adminOnly, pricingHandler.SetDefault)
	items.Get("/:id/pricing/best", anyRole, pricingHandler.BestPricing)
	items.Get("/:id/pricing/applicable", anyRole, pricingHandler.ApplicableTiers)

	tiers := protected.Group("/pricing-tiers")
	tiers.Get("/:id", anyRole, pricingHandler.GetTier)
	tiers.Put("/:id", adminOnly, pricingHandler.UpdateTier)

	quotes := protected.Group("/rental-quotes")
	quotes.Post("/", anyRole, pricingHandler.Quote)
	quotes.Post("/pdf", anyRole, pricingHandler.QuotePDF)

	// Locations
	locationHandler := NewLocationHandler(deps.LocationUC)
	locations := protected.Group("/locations")
	locations.Get("/", anyRole, locationHandler.List)
	locations.Post("/", adminOnly, locationHandler.Create)
	locations.Get("/:id", anyRole, locationHandler.GetByID)
	locations.Put("/:id", adminOnly, locationHandler.Update)
	locations.Delete("/:id", adminOnly, locationHandler.Delete)

	// Customers
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers := protected.Group("/customers")
	customers.Get("/", anyRole, customerHandler.List)
	customers.Post("/", rentalStaff, customerHandler.Create)
	customers.Get("/:id", anyRole, customerHandler.GetByID)

	// Stock levels
	stockHandler := NewStockHandler(deps.StockUC)
	stock := protected.Group("/stock-levels")
	stock.Get("/", anyRole, stockHandler.List)
	stock.Post("/", warehouseStaff, stockHandler.Create)
	stock.Get("/:id", anyRole, stockHandler.GetByID)
	stock.Get("/:id/movements", anyRole, stockHandler.ListMovements)
	stock.Post("/:id/adjust", warehouseStaff, stockHandler.Adjust)
	stock.Post("/:id/reserve", rentalStaff, stockHandler.Reserve)
	stock.Post("/:id/release", rentalStaff, stockHandler.Release)
	stock.Post("/:id/rent-out", rentalStaff, stockHandler.RentOut)
	stock.Post("/:id/return", rentalStaff, stockHandler.Return)
	stock.Post("/:id/repair", warehouseStaff, stockHandler.StartRepair)
	stock.Post("/:id/complete-repair", warehouseStaff, stockHandler.CompleteRepair)
	stock.Post("/:id/beyond-repair", warehouseStaff, stockHandler.BeyondRepair)
	stock.Post("/:id/write-off", warehouseStaff, stockHandler.WriteOff)
	stock.Post("/:id/cost", warehouseStaff, stockHandler.UpdateCost)
	stock.Put("/:id/thresholds", warehouseStaff, stockHandler.UpdateThresholds)

	// Reports
	reportHandler := NewReportHandler(deps.Replenishment)
	reports := protected.Group("/reports")
	reports.Get("/replenishment", warehouseStaff, reportHandler.GetReplenishmentList)
	reports.Get("/valuation", adminOnly, reportHandler.GetValuation)
}
