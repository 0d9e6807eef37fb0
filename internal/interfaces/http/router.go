package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/luc4n/StockMaster/internal/application/movement"
	"github.com/luc4n/StockMaster/internal/application/reporting"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	MovementUC  *movement.UseCase
	ReportingUC *reporting.UseCase
	JWTSecret   string
}

// Router registra las rutas de la API. Toda la API es protegida: los tokens
// los emite el proveedor de identidad externo.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	movementHandler := NewMovementHandler(deps.MovementUC)
	reportingHandler := NewReportingHandler(deps.ReportingUC)

	// Operaciones de movimiento (escritura sobre el ledger)
	movements := api.Group("/movements")
	movements.Post("/distribute", movementHandler.Distribute)
	movements.Post("/return", movementHandler.Return)
	movements.Post("/transfer", movementHandler.Transfer)
	movements.Get("/", reportingHandler.ListMovements)

	// Vendedores (directorio externo, solo lectura) y sus saldos
	vendors := api.Group("/vendors")
	vendors.Get("/", reportingHandler.ListVendors)
	vendors.Get("/:id/balances", reportingHandler.GetVendorBalances)

	// Catálogo con estoque central
	products := api.Group("/products")
	products.Get("/", reportingHandler.ListProducts)

	// Dashboard y exportación
	api.Get("/dashboard/summary", reportingHandler.GetFleetSummary)
	api.Get("/reports/fleet.pdf", reportingHandler.ExportFleetReport)
}
