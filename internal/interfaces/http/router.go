package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmacia-api/internal/application/auth"
	"github.com/jhoicas/Farmacia-api/internal/application/expiry"
	"github.com/jhoicas/Farmacia-api/internal/application/inventory"
	"github.com/jhoicas/Farmacia-api/internal/application/pos"
	"github.com/jhoicas/Farmacia-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC    *usecase.ProductUseCase
	InventoryUC  *inventory.UseCase
	Reservations *inventory.ReservationEngine
	ExpiryUC     *expiry.UseCase
	POSUC        *pos.UseCase
	AuthUC       *auth.AuthUseCase
	JWTSecret    string
}

// Router registra las rutas de la API.
//
// RBAC: la gestión de catálogo e inventario queda para admin y farmacéutico;
// el punto de venta y las consultas están abiertos a cualquier usuario
// autenticado (incluye cajeros).
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	manage := RequireRole("admin", "farmaceutico")

	// Products y categorías (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", manage, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/search", productHandler.List)
	products.Get("/sku/:sku", productHandler.GetBySKU)
	products.Get("/barcode/:code", productHandler.GetByBarcode)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", manage, productHandler.Update)
	products.Delete("/:id", manage, productHandler.Deactivate)

	categories := protected.Group("/categories")
	categories.Post("/", manage, productHandler.CreateCategory)
	categories.Get("/", productHandler.ListCategories)

	// Batches e inventario (protegido)
	inventoryHandler := NewInventoryHandler(deps.InventoryUC, deps.Reservations)
	products.Get("/:id/batches", inventoryHandler.BatchesByProduct)
	products.Get("/:id/stock", inventoryHandler.AvailableStock)

	batches := protected.Group("/batches")
	batches.Post("/", manage, inventoryHandler.CreateBatch)
	batches.Get("/:id", inventoryHandler.GetBatch)
	batches.Post("/:id/adjust", manage, inventoryHandler.AdjustStock)

	invGroup := protected.Group("/inventory")
	invGroup.Get("/movements", inventoryHandler.Movements)
	invGroup.Get("/replenishment", inventoryHandler.Replenishment)
	invGroup.Post("/reservations", inventoryHandler.Reserve)
	invGroup.Post("/reservations/release", inventoryHandler.Release)

	// Vencimientos (protegido; la baja de lotes es de gestión)
	expiryGroup := protected.Group("/expiry")
	expiryHandler := NewExpiryHandler(deps.ExpiryUC)
	products.Get("/:id/expiry-alerts", expiryHandler.AlertsByProduct)
	expiryGroup.Get("/alerts", expiryHandler.Alerts)
	expiryGroup.Get("/alerts/critical", expiryHandler.CriticalAlerts)
	expiryGroup.Get("/alerts/high-priority", expiryHandler.HighPriorityAlerts)
	expiryGroup.Get("/summary", expiryHandler.Summary)
	expiryGroup.Get("/dashboard", expiryHandler.Dashboard)
	expiryGroup.Post("/batches/:id/mark-expired", manage, expiryHandler.MarkExpired)

	// Punto de venta (protegido)
	posGroup := protected.Group("/pos")
	posHandler := NewPOSHandler(deps.POSUC)
	posGroup.Post("/quote", posHandler.Quote)
	posGroup.Post("/sales", posHandler.ProcessSale)
	posGroup.Get("/sales", posHandler.ListSales)
	posGroup.Get("/sales/:id", posHandler.GetSale)
	posGroup.Get("/sales/:id/receipt", posHandler.Receipt)

	// Clientes (protegido)
	customers := protected.Group("/customers")
	customers.Post("/", posHandler.CreateCustomer)
	customers.Get("/", posHandler.ListCustomers)
	customers.Get("/:id", posHandler.GetCustomer)
}
