package dto

import "time"

// CreateCaseRequest body para POST /api/cases (alta mínima; el CRUD completo
// es del dashboard).
type CreateCaseRequest struct {
	PatientRef  string     `json:"patient_ref,omitempty"`
	Description string     `json:"description,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// CaseResponse representación HTTP de un caso.
type CaseResponse struct {
	ID          string     `json:"id"`
	PatientRef  string     `json:"patient_ref,omitempty"`
	Description string     `json:"description,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Readiness   string     `json:"readiness"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	ClosedBy    string     `json:"closed_by,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CloseCaseRequest body para POST /api/cases/:id/close.
type CloseCaseRequest struct {
	Notes string `json:"notes,omitempty"`
}

// ClosureLineDTO línea del acta de cierre.
type ClosureLineDTO struct {
	ReservationID string `json:"reservation_id"`
	ProductID     string `json:"product_id"`
	LotID         string `json:"lot_id,omitempty"`
	Quantity      int64  `json:"quantity"`
}

// CaseClosureResponse acta de cierre de un caso.
type CaseClosureResponse struct {
	ID            string           `json:"id"`
	CaseID        string           `json:"case_id"`
	UsedLines     []ClosureLineDTO `json:"used_lines"`
	ReleasedLines []ClosureLineDTO `json:"released_lines"`
	Actor         string           `json:"actor"`
	Notes         string           `json:"notes,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}
