package entity

import "time"

// Estados de una reserva de material.
const (
	ReservationPending   = "pending"   // solicitada, hold tomado (o backorder)
	ReservationConfirmed = "confirmed" // disponibilidad verificada
	ReservationPrepared  = "prepared"  // material alistado para el caso
	ReservationUsed      = "used"      // consumida (terminal)
	ReservationCancelled = "cancelled" // cancelada (terminal)
)

// reservationTransitions define la máquina de estados de la reserva.
// El flujo ad-hoc de "agregar material en procedimiento" NO pasa por aquí:
// nace directamente en used vía CreateDirectUsage (arista inicial explícita).
var reservationTransitions = map[string][]string{
	ReservationPending:   {ReservationConfirmed, ReservationCancelled},
	ReservationConfirmed: {ReservationPrepared, ReservationUsed, ReservationCancelled},
	ReservationPrepared:  {ReservationUsed, ReservationCancelled},
	ReservationUsed:      {},
	ReservationCancelled: {},
}

// CanTransition indica si el cambio de estado from → to es válido.
func CanTransition(from, to string) bool {
	for _, allowed := range reservationTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminalReservationStatus indica si el estado es terminal (used o cancelled).
func IsTerminalReservationStatus(status string) bool {
	return status == ReservationUsed || status == ReservationCancelled
}

// Reservation representa una línea de demanda de material para un caso,
// opcionalmente atada a un lote concreto. Nunca se borra; se cancela.
type Reservation struct {
	ID               string
	CaseID           string
	ProductID        string
	LotID            *string // nil mientras esté en backorder
	RequestedQty     int64
	UsedQty          *int64 // se fija al consumir
	Status           string
	OutOfStock       bool   // true = esperando recepción de compra
	RequestedLotText string // texto libre cuando aún no existe lote
	EvidenceRefs     []string
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CreatedBy        string
	UpdatedBy        string // último actor que cambió el estado
}

// Active indica si la reserva está en un estado no terminal
// (pending, confirmed o prepared).
func (r *Reservation) Active() bool {
	return !IsTerminalReservationStatus(r.Status)
}

// HoldsStock indica si la reserva mantiene cantidad apartada en un lote.
func (r *Reservation) HoldsStock() bool {
	return r.LotID != nil && r.Active() && !r.OutOfStock
}
