package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/clinistock-api/internal/application/dto"
	"github.com/jhoicas/clinistock-api/internal/application/inventory"
	"github.com/jhoicas/clinistock-api/internal/domain/entity"
)

// StockHandler maneja las peticiones HTTP de existencias: recepciones,
// ajustes, consultas del libro y reporte de backorders (protegido).
type StockHandler struct {
	stockUC     *inventory.StockUseCase
	procurement *inventory.ReceivePurchaseOrderUseCase
	backorders  *inventory.BackorderReportUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(
	stockUC *inventory.StockUseCase,
	procurement *inventory.ReceivePurchaseOrderUseCase,
	backorders *inventory.BackorderReportUseCase,
) *StockHandler {
	return &StockHandler{stockUC: stockUC, procurement: procurement, backorders: backorders}
}

// ReceivePurchaseOrder godoc
// @Summary      Recibir orden de compra y reconciliar backorders
// @Description  Suma la existencia al lote y ata las reservas en backorder del
//
//	producto en orden de llegada hasta donde alcance lo recibido.
//
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceivePurchaseOrderRequest  true  "product_id, quantity, unit_cost y lote destino"
// @Success      200   {object}  dto.ReceivePurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/receipts [post]
func (h *StockHandler) ReceivePurchaseOrder(c *fiber.Ctx) error {
	var in dto.ReceivePurchaseOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.procurement.Receive(c.Context(), inventory.ReceivePurchaseOrderInput{
		ProductID:  in.ProductID,
		Quantity:   in.Quantity,
		UnitCost:   in.UnitCost,
		LotID:      in.LotID,
		LotCode:    in.LotCode,
		ExpiryDate: in.ExpiryDate,
		PORef:      in.PORef,
		Actor:      GetUserID(c),
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.ReceivePurchaseOrderResponse{
		Lot:                   toStockLotResponse(result.Lot),
		FulfilledReservations: result.FulfilledReservations,
		ReadinessByCase:       result.ReadinessByCase,
		RemainingAvailable:    result.RemainingAvailable,
		StillBackordered:      result.StillBackorderedForSKU,
	})
}

// ManualReceipt godoc
// @Summary      Registrar entrada manual de existencia
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ManualReceiptRequest  true  "product_id, quantity, unit_cost"
// @Success      201   {object}  dto.StockLotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/receipts [post]
func (h *StockHandler) ManualReceipt(c *fiber.Ctx) error {
	var in dto.ManualReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lot, err := h.stockUC.ManualReceive(c.Context(), inventory.ReceiveInput{
		ProductID:  in.ProductID,
		LotID:      in.LotID,
		LotCode:    in.LotCode,
		ExpiryDate: in.ExpiryDate,
		Quantity:   in.Quantity,
		UnitCost:   in.UnitCost,
		RefKind:    entity.MovementRefManual,
		Actor:      GetUserID(c),
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toStockLotResponse(lot))
}

// Adjust godoc
// @Summary      Ajuste manual de existencia (+/-)
// @Description  El ajuste negativo nunca puede dejar la existencia por debajo
//
//	de lo reservado.
//
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "lot_id y delta firmado"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.LotID == "" || in.Delta == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "lot_id y delta son requeridos"})
	}
	if err := h.stockUC.Adjust(c.Context(), in.LotID, in.Delta, GetUserID(c)); err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "ajuste registrado"})
}

// ListLots godoc
// @Summary      Listar lotes de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {array}  dto.StockLotResponse
// @Router       /api/products/{id}/lots [get]
func (h *StockHandler) ListLots(c *fiber.Ctx) error {
	lots, err := h.stockUC.ListLots(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.StockLotResponse, 0, len(lots))
	for _, lot := range lots {
		out = append(out, toStockLotResponse(lot))
	}
	return c.JSON(out)
}

// GetLot godoc
// @Summary      Obtener lote por ID
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.StockLotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/lots/{id} [get]
func (h *StockHandler) GetLot(c *fiber.Ctx) error {
	lot, err := h.stockUC.GetLot(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toStockLotResponse(lot))
}

// ListLotMovements godoc
// @Summary      Listar movimientos de un lote
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del lote"
// @Param        limit   query  int     false  "Límite"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {array}  dto.StockMovementResponse
// @Router       /api/stock/lots/{id}/movements [get]
func (h *StockHandler) ListLotMovements(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	movements, err := h.stockUC.ListMovementsByLot(c.Context(), c.Params("id"), limit, offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toStockMovementResponses(movements))
}

// ListProductMovements godoc
// @Summary      Listar movimientos de un producto en un rango de fechas
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        from    query  string  false  "Desde (RFC3339)"
// @Param        to      query  string  false  "Hasta (RFC3339)"
// @Param        limit   query  int     false  "Límite"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {array}   dto.StockMovementResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/products/{id}/movements [get]
func (h *StockHandler) ListProductMovements(c *fiber.Ctx) error {
	var from, to *time.Time
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
		}
		to = &t
	}
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	movements, err := h.stockUC.ListMovementsByProduct(c.Context(), c.Params("id"), from, to, limit, offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toStockMovementResponses(movements))
}

// AuditLot godoc
// @Summary      Verificación contable de un lote
// @Description  Compara la existencia del lote contra la suma de los deltas del
//
//	libro de movimientos (excluye liberaciones de hold).
//
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.LotAuditResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/lots/{id}/audit [get]
func (h *StockHandler) AuditLot(c *fiber.Ctx) error {
	audit, err := h.stockUC.AuditLot(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.LotAuditResponse{
		LotID:        audit.LotID,
		OnHand:       audit.OnHand,
		MovementsSum: audit.MovementsSum,
		Consistent:   audit.Consistent,
	})
}

// BackorderReport godoc
// @Summary      Reporte de compras pendientes
// @Description  Demanda en backorder agregada por producto con cantidad
//
//	sugerida de pedido, ordenada por urgencia.
//
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.BackorderSuggestionDTO
// @Router       /api/stock/backorders [get]
func (h *StockHandler) BackorderReport(c *fiber.Ctx) error {
	list, err := h.backorders.Generate(c.Context())
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "backorders": list})
}
