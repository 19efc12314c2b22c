package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceivePurchaseOrderRequest body para POST /api/purchase-orders/receipts.
// Con lot_id se completa un lote existente; si no, lot_code/expiry_date
// describen el lote nuevo (o reutilizan uno con el mismo código).
type ReceivePurchaseOrderRequest struct {
	ProductID  string          `json:"product_id"`
	Quantity   int64           `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	LotID      string          `json:"lot_id,omitempty"`
	LotCode    string          `json:"lot_code,omitempty"`
	ExpiryDate *time.Time      `json:"expiry_date,omitempty"`
	PORef      string          `json:"po_ref,omitempty"`
}

// ReceivePurchaseOrderResponse resultado de la reconciliación de recepción.
type ReceivePurchaseOrderResponse struct {
	Lot                   StockLotResponse  `json:"lot"`
	FulfilledReservations []string          `json:"fulfilled_reservations"`
	ReadinessByCase       map[string]string `json:"readiness_by_case"`
	RemainingAvailable    int64             `json:"remaining_available"`
	StillBackordered      int               `json:"still_backordered"`
}

// ManualReceiptRequest body para POST /api/stock/receipts (entrada manual).
type ManualReceiptRequest struct {
	ProductID  string          `json:"product_id"`
	Quantity   int64           `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	LotID      string          `json:"lot_id,omitempty"`
	LotCode    string          `json:"lot_code,omitempty"`
	ExpiryDate *time.Time      `json:"expiry_date,omitempty"`
}

// AdjustmentRequest body para POST /api/stock/adjustments.
type AdjustmentRequest struct {
	LotID string `json:"lot_id"`
	Delta int64  `json:"delta"` // firmado; negativo descuenta
}

// StockLotResponse representación HTTP de un lote, con el disponible derivado.
type StockLotResponse struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	LotCode    string          `json:"lot_code,omitempty"`
	ExpiryDate *time.Time      `json:"expiry_date,omitempty"`
	OnHand     int64           `json:"on_hand"`
	Reserved   int64           `json:"reserved"`
	Available  int64           `json:"available"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	ReceivedAt time.Time       `json:"received_at"`
}

// StockMovementResponse fila del libro de movimientos para las pantallas de
// auditoría.
type StockMovementResponse struct {
	ID        string          `json:"id"`
	LotID     string          `json:"lot_id"`
	ProductID string          `json:"product_id"`
	Kind      string          `json:"kind"`
	Quantity  int64           `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	RefKind   string          `json:"ref_kind,omitempty"`
	RefID     string          `json:"ref_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	CreatedBy string          `json:"created_by,omitempty"`
}

// LotAuditResponse resultado de la verificación contable de un lote.
type LotAuditResponse struct {
	LotID        string `json:"lot_id"`
	OnHand       int64  `json:"on_hand"`
	MovementsSum int64  `json:"movements_sum"`
	Consistent   bool   `json:"consistent"`
}

// BackorderSuggestionDTO una línea del reporte de compras pendientes:
// demanda en backorder por producto con cantidad sugerida de pedido.
type BackorderSuggestionDTO struct {
	ProductID    string `json:"product_id"`
	SKU          string `json:"sku"`
	ProductName  string `json:"product_name"`
	PendingQty   int64  `json:"pending_qty"`
	Requests     int    `json:"requests"`
	OnHand       int64  `json:"on_hand"`
	ReorderPoint int64  `json:"reorder_point"`
	SuggestedQty int64  `json:"suggested_qty"`
	OldestCaseID string `json:"oldest_case_id,omitempty"`
	Priority     int    `json:"priority"` // 1 = más urgente
}
