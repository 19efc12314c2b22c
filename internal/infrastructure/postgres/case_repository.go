package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/clinistock-api/internal/domain"
	"github.com/jhoicas/clinistock-api/internal/domain/entity"
	"github.com/jhoicas/clinistock-api/internal/domain/repository"
)

var _ repository.CaseRepository = (*CaseRepo)(nil)

// CaseRepo implementación de CaseRepository sobre PostgreSQL (usable con pool o tx).
type CaseRepo struct {
	q Querier
}

// NewCaseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCaseRepository(q Querier) *CaseRepo {
	return &CaseRepo{q: q}
}

const caseColumns = `id, patient_ref, description, scheduled_at, readiness, closed_at, closed_by, notes, created_at, updated_at`

// Create persiste un caso nuevo.
func (r *CaseRepo) Create(ctx context.Context, c *entity.Case) error {
	query := `
		INSERT INTO cases (id, patient_ref, description, scheduled_at, readiness, closed_at, closed_by, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.PatientRef, c.Description, c.ScheduledAt, c.Readiness,
		c.ClosedAt, c.ClosedBy, c.Notes, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert case: %w", err)
	}
	return nil
}

// GetByID obtiene un caso por ID.
func (r *CaseRepo) GetByID(ctx context.Context, id string) (*entity.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "get case")
}

// GetForUpdate obtiene el caso y bloquea la fila. Este bloqueo serializa el
// cierre del caso contra reservas nuevas sobre el mismo caso.
func (r *CaseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "get case for update")
}

// UpdateReadiness actualiza el estado de preparación cacheado.
func (r *CaseRepo) UpdateReadiness(ctx context.Context, id, readiness string) error {
	query := `
		UPDATE cases
		SET readiness = $2, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, readiness)
	if err != nil {
		return fmt.Errorf("update case readiness: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Close marca el caso como completado. Condicionado a que no esté ya en
// estado terminal: cero filas = caso ya cerrado o cancelado.
func (r *CaseRepo) Close(ctx context.Context, id, closedBy string, closedAt time.Time) error {
	query := `
		UPDATE cases
		SET readiness = $4, closed_at = $3, closed_by = $2, updated_at = now()
		WHERE id = $1 AND readiness NOT IN ($4, $5)`
	tag, err := r.q.Exec(ctx, query, id, closedBy, closedAt,
		entity.CaseCompleted, entity.CaseCancelled)
	if err != nil {
		return fmt.Errorf("close case: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyClosed
	}
	return nil
}

// CreateClosure persiste el acta de cierre con las líneas en JSONB.
func (r *CaseRepo) CreateClosure(ctx context.Context, closure *entity.CaseClosure) error {
	usedLines, err := json.Marshal(closure.UsedLines)
	if err != nil {
		return fmt.Errorf("marshal used lines: %w", err)
	}
	releasedLines, err := json.Marshal(closure.ReleasedLines)
	if err != nil {
		return fmt.Errorf("marshal released lines: %w", err)
	}
	query := `
		INSERT INTO case_closures (id, case_id, used_lines, released_lines, actor, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.q.Exec(ctx, query,
		closure.ID, closure.CaseID, usedLines, releasedLines,
		closure.Actor, closure.Notes, closure.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert case closure: %w", err)
	}
	return nil
}

// GetClosureByCase obtiene el acta de cierre de un caso.
func (r *CaseRepo) GetClosureByCase(ctx context.Context, caseID string) (*entity.CaseClosure, error) {
	query := `
		SELECT id, case_id, used_lines, released_lines, actor, notes, created_at
		FROM case_closures WHERE case_id = $1`
	var closure entity.CaseClosure
	var usedLines, releasedLines []byte
	err := r.q.QueryRow(ctx, query, caseID).Scan(
		&closure.ID, &closure.CaseID, &usedLines, &releasedLines,
		&closure.Actor, &closure.Notes, &closure.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get case closure: %w", err)
	}
	if err := json.Unmarshal(usedLines, &closure.UsedLines); err != nil {
		return nil, fmt.Errorf("unmarshal used lines: %w", err)
	}
	if err := json.Unmarshal(releasedLines, &closure.ReleasedLines); err != nil {
		return nil, fmt.Errorf("unmarshal released lines: %w", err)
	}
	return &closure, nil
}

func (r *CaseRepo) scanOne(row pgx.Row, op string) (*entity.Case, error) {
	var c entity.Case
	err := row.Scan(&c.ID, &c.PatientRef, &c.Description, &c.ScheduledAt,
		&c.Readiness, &c.ClosedAt, &c.ClosedBy, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}
