package repository

import (
	"context"
	"time"

	"github.com/jhoicas/clinistock-api/internal/domain/entity"
)

// CaseRepository puerto de persistencia para casos y sus actas de cierre.
type CaseRepository interface {
	Create(ctx context.Context, c *entity.Case) error
	GetByID(ctx context.Context, id string) (*entity.Case, error)
	// GetForUpdate bloquea la fila del caso; serializa el cierre frente a la
	// creación de nuevas reservas para el mismo caso.
	GetForUpdate(ctx context.Context, id string) (*entity.Case, error)
	UpdateReadiness(ctx context.Context, id, readiness string) error
	// Close fija completed, closed_at y closed_by condicionado a que el caso
	// no esté ya en estado terminal. Cero filas = domain.ErrAlreadyClosed.
	Close(ctx context.Context, id, closedBy string, closedAt time.Time) error

	CreateClosure(ctx context.Context, closure *entity.CaseClosure) error
	GetClosureByCase(ctx context.Context, caseID string) (*entity.CaseClosure, error)
}
