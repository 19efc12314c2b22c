package dto

import "time"

// CreateReservationRequest body para POST /api/reservations.
// Sin lot_id y con auto_select (por defecto) el lote se elige por FEFO;
// si nada alcanza la reserva queda en backorder.
type CreateReservationRequest struct {
	CaseID           string  `json:"case_id"`
	ProductID        string  `json:"product_id"`
	Quantity         int64   `json:"quantity"`
	LotID            *string `json:"lot_id,omitempty"`
	AutoSelect       *bool   `json:"auto_select,omitempty"` // nil = true
	RequestedLotText string  `json:"requested_lot_text,omitempty"`
	Notes            string  `json:"notes,omitempty"`
}

// BatchReservationRequest body para POST /api/reservations/batch (el carrito
// del cliente traducido a un lote de comandos de creación, todo o nada).
type BatchReservationRequest struct {
	CaseID string                     `json:"case_id"`
	Items  []CreateReservationRequest `json:"items"`
}

// MarkUsedRequest body para POST /api/reservations/:id/use.
type MarkUsedRequest struct {
	UsedQuantity *int64   `json:"used_quantity,omitempty"` // nil = cantidad solicitada
	EvidenceRefs []string `json:"evidence_refs,omitempty"` // ids opacos del colaborador de evidencias
}

// DirectUsageRequest body para POST /api/reservations/direct-usage
// (material agregado en medio del procedimiento; nace consumido).
type DirectUsageRequest struct {
	CaseID       string   `json:"case_id"`
	ProductID    string   `json:"product_id"`
	Quantity     int64    `json:"quantity"`
	LotID        *string  `json:"lot_id,omitempty"`
	EvidenceRefs []string `json:"evidence_refs,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

// ReservationResponse representación HTTP de una reserva.
type ReservationResponse struct {
	ID               string     `json:"id"`
	CaseID           string     `json:"case_id"`
	ProductID        string     `json:"product_id"`
	LotID            *string    `json:"lot_id,omitempty"`
	RequestedQty     int64      `json:"requested_qty"`
	UsedQty          *int64     `json:"used_qty,omitempty"`
	Status           string     `json:"status"`
	OutOfStock       bool       `json:"out_of_stock"`
	RequestedLotText string     `json:"requested_lot_text,omitempty"`
	EvidenceRefs     []string   `json:"evidence_refs,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
