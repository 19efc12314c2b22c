package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de inventario.
const (
	MovementKindReceive        = "receive"         // entrada por recepción (manual o compra)
	MovementKindReserveRelease = "reserve-release" // liberación de hold (no afecta existencia)
	MovementKindUse            = "use"             // consumo en procedimiento
	MovementKindAdjust         = "adjust"          // ajuste manual (+/-)
)

// Referencias causales de un movimiento.
const (
	MovementRefReservation   = "reservation"
	MovementRefPurchaseOrder = "purchase_order"
	MovementRefManual        = "manual"
)

// StockMovement es una fila inmutable del libro de movimientos (append-only).
// Quantity es el delta firmado sobre la existencia del lote, salvo para
// reserve-release, donde registra la cantidad liberada del hold a título
// informativo (no cambia la existencia).
type StockMovement struct {
	ID        string
	LotID     string
	ProductID string
	Kind      string
	Quantity  int64
	UnitCost  decimal.Decimal
	RefKind   string // reservation, purchase_order, manual
	RefID     string // vacío para manual
	CreatedAt time.Time
	CreatedBy string
}

// AffectsOnHand indica si el tipo de movimiento modifica la existencia física.
// La suma de los deltas de estos tipos debe cuadrar con la existencia actual.
func AffectsOnHand(kind string) bool {
	return kind != MovementKindReserveRelease
}
