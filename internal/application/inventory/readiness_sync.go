package inventory

import (
	"context"

	"github.com/jhoicas/clinistock-api/internal/domain/entity"
	domaininv "github.com/jhoicas/clinistock-api/internal/domain/inventory"
	"github.com/jhoicas/clinistock-api/internal/domain/repository"
)

// syncCaseReadiness recomputa y cachea el estado de preparación del caso a
// partir de sus reservas, releyendo dentro de la misma tx (nunca sobre un
// snapshot previo a la mutación). Los estados terminales no se tocan.
// Devuelve el estado resultante.
func syncCaseReadiness(
	ctx context.Context,
	resRepo repository.ReservationRepository,
	caseRepo repository.CaseRepository,
	caseID string,
) (string, error) {
	c, err := caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return "", err
	}
	if c == nil {
		return "", nil
	}
	if entity.IsTerminalReadiness(c.Readiness) {
		return c.Readiness, nil
	}

	reservations, err := resRepo.ListByCase(ctx, caseID)
	if err != nil {
		return "", err
	}
	readiness := domaininv.ResolveReadiness(reservations)
	if readiness == c.Readiness {
		return readiness, nil
	}
	if err := caseRepo.UpdateReadiness(ctx, caseID, readiness); err != nil {
		return "", err
	}
	return readiness, nil
}
