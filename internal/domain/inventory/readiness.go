package inventory

import "github.com/jhoicas/clinistock-api/internal/domain/entity"

// ResolveReadiness deriva el estado de preparación de un caso a partir de su
// conjunto de reservas. Es una función pura: no muta nada y puede recomputarse
// en cualquier momento. Precedencia: shortage > awaiting-materials > ready.
//
// No se consulta para casos en estado terminal (completed/cancelled); eso lo
// decide el caller antes de llamar.
func ResolveReadiness(reservations []*entity.Reservation) string {
	shortage := false
	awaiting := false
	engaged := 0

	for _, r := range reservations {
		if r.Status == entity.ReservationCancelled {
			continue
		}
		engaged++

		// Backorder vigente: falta material por recibir.
		if r.OutOfStock && (r.Status == entity.ReservationPending || r.Status == entity.ReservationConfirmed) {
			shortage = true
			continue
		}
		// Hold aún sin confirmar disponibilidad.
		if r.Status != entity.ReservationConfirmed &&
			r.Status != entity.ReservationPrepared &&
			r.Status != entity.ReservationUsed {
			awaiting = true
		}
	}

	// Sin reservas vivas el caso no está comprometido materialmente.
	if engaged == 0 {
		return entity.CaseUnscheduled
	}
	if shortage {
		return entity.CaseShortage
	}
	if awaiting {
		return entity.CaseAwaitingMaterials
	}
	return entity.CaseReady
}
