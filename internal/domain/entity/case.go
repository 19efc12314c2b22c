package entity

import "time"

// Estados de preparación de un caso (procedimiento agendado).
// Los cuatro primeros se derivan del conjunto de reservas; completed y
// cancelled son terminales y solo los fija el cierre de caso o una
// cancelación explícita.
const (
	CaseUnscheduled       = "unscheduled"
	CaseShortage          = "shortage"
	CaseAwaitingMaterials = "awaiting-materials"
	CaseReady             = "ready"
	CaseCompleted         = "completed"
	CaseCancelled         = "cancelled"
)

// IsTerminalReadiness indica si el estado de preparación es terminal.
func IsTerminalReadiness(readiness string) bool {
	return readiness == CaseCompleted || readiness == CaseCancelled
}

// Case representa un procedimiento clínico agendado. El CRUD completo vive
// en el dashboard; el motor solo necesita identidad, estado de preparación
// (cacheado, siempre recomputable) y los datos de cierre.
type Case struct {
	ID          string
	PatientRef  string // referencia opaca al paciente (el dashboard es dueño)
	Description string
	ScheduledAt *time.Time
	Readiness   string
	ClosedAt    *time.Time
	ClosedBy    string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ClosureLine resume una reserva dentro del acta de cierre.
type ClosureLine struct {
	ReservationID string `json:"reservation_id"`
	ProductID     string `json:"product_id"`
	LotID         string `json:"lot_id,omitempty"`
	Quantity      int64  `json:"quantity"`
}

// CaseClosure es el registro de auditoría del cierre de un caso: qué se
// consumió, qué holds se liberaron y quién cerró. Una sola fila por caso.
type CaseClosure struct {
	ID            string
	CaseID        string
	UsedLines     []ClosureLine
	ReleasedLines []ClosureLine
	Actor         string
	Notes         string
	CreatedAt     time.Time
}
