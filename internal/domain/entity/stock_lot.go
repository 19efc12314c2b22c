package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLot representa un lote recibido de un insumo, con trazabilidad de
// vencimiento y costo. OnHand y Reserved solo los muta el Stock Ledger;
// la cantidad disponible siempre se deriva, nunca se almacena.
// Invariante: 0 <= Reserved <= OnHand.
type StockLot struct {
	ID         string
	ProductID  string
	LotCode    string          // número de lote del fabricante
	ExpiryDate *time.Time      // nil = sin vencimiento
	OnHand     int64           // existencia física
	Reserved   int64           // cantidad apartada para casos
	UnitCost   decimal.Decimal // costo unitario del lote
	ReceivedAt time.Time
	UpdatedAt  time.Time
}

// Available devuelve la cantidad disponible para nuevas reservas (derivada).
func (l *StockLot) Available() int64 {
	return l.OnHand - l.Reserved
}

// Expired indica si el lote está vencido a la fecha dada.
func (l *StockLot) Expired(at time.Time) bool {
	return l.ExpiryDate != nil && l.ExpiryDate.Before(at)
}
