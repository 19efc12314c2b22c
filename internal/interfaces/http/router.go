package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/clinistock-api/internal/application/inventory"
	"github.com/jhoicas/clinistock-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC     *usecase.ProductUseCase
	CaseUC        *inventory.CaseUseCase
	CloseCaseUC   *inventory.CloseCaseUseCase
	ReservationUC *inventory.ReservationUseCase
	StockUC       *inventory.StockUseCase
	ProcurementUC *inventory.ReceivePurchaseOrderUseCase
	BackorderUC   *inventory.BackorderReportUseCase
	JWTSecret     string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; las
// operaciones clínicas son de clinico/admin y las de bodega de bodeguero/admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	clinico := RequireRole(RoleClinico)
	bodeguero := RequireRole(RoleBodeguero)

	// Products (catálogo)
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", bodeguero, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	// Cases
	cases := api.Group("/cases")
	caseHandler := NewCaseHandler(deps.CaseUC, deps.CloseCaseUC)
	reservationHandler := NewReservationHandler(deps.ReservationUC)
	cases.Post("/", clinico, caseHandler.Create)
	cases.Get("/:id", caseHandler.GetByID)
	cases.Get("/:id/readiness", caseHandler.Readiness)
	cases.Get("/:id/reservations", reservationHandler.ListByCase)
	cases.Post("/:id/close", clinico, caseHandler.Close)
	cases.Get("/:id/closure", caseHandler.GetClosure)

	// Reservations
	reservations := api.Group("/reservations")
	reservations.Post("/", clinico, reservationHandler.Create)
	reservations.Post("/batch", clinico, reservationHandler.CreateBatch)
	reservations.Post("/direct-usage", clinico, reservationHandler.DirectUsage)
	reservations.Get("/:id", reservationHandler.GetByID)
	reservations.Post("/:id/confirm", clinico, reservationHandler.Confirm)
	reservations.Post("/:id/prepare", bodeguero, reservationHandler.Prepare)
	reservations.Post("/:id/use", clinico, reservationHandler.Use)
	reservations.Post("/:id/cancel", clinico, reservationHandler.Cancel)

	// Stock
	stockHandler := NewStockHandler(deps.StockUC, deps.ProcurementUC, deps.BackorderUC)
	stock := api.Group("/stock")
	stock.Post("/receipts", bodeguero, stockHandler.ManualReceipt)
	stock.Post("/adjustments", bodeguero, stockHandler.Adjust)
	stock.Get("/backorders", stockHandler.BackorderReport)
	stock.Get("/lots/:id", stockHandler.GetLot)
	stock.Get("/lots/:id/movements", stockHandler.ListLotMovements)
	stock.Get("/lots/:id/audit", stockHandler.AuditLot)

	// Purchase orders
	purchaseOrders := api.Group("/purchase-orders")
	purchaseOrders.Post("/receipts", bodeguero, stockHandler.ReceivePurchaseOrder)

	// Vistas de stock por producto
	products.Get("/:id/lots", stockHandler.ListLots)
	products.Get("/:id/movements", stockHandler.ListProductMovements)
}
