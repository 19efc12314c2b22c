package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/clinistock-api/internal/domain"
	"github.com/jhoicas/clinistock-api/internal/domain/entity"
	"github.com/jhoicas/clinistock-api/internal/domain/repository"
)

// CaseUseCase expone el alta mínima de casos y la consulta del estado de
// preparación. El CRUD completo del caso (paciente, agenda, formularios) es
// del dashboard; el motor solo necesita la fila para colgar reservas.
type CaseUseCase struct {
	txRunner TxRunner
	caseRepo repository.CaseRepository
	resRepo  repository.ReservationRepository
}

// NewCaseUseCase construye el caso de uso.
func NewCaseUseCase(txRunner TxRunner, caseRepo repository.CaseRepository, resRepo repository.ReservationRepository) *CaseUseCase {
	return &CaseUseCase{txRunner: txRunner, caseRepo: caseRepo, resRepo: resRepo}
}

// CreateCaseInput datos mínimos para crear un caso.
type CreateCaseInput struct {
	PatientRef  string
	Description string
	ScheduledAt *time.Time
	Notes       string
}

// Create registra un caso en unscheduled (sin reservas todavía).
func (uc *CaseUseCase) Create(ctx context.Context, in CreateCaseInput) (*entity.Case, error) {
	now := time.Now()
	c := &entity.Case{
		ID:          uuid.New().String(),
		PatientRef:  in.PatientRef,
		Description: in.Description,
		ScheduledAt: in.ScheduledAt,
		Readiness:   entity.CaseUnscheduled,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.caseRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID devuelve un caso.
func (uc *CaseUseCase) GetByID(ctx context.Context, caseID string) (*entity.Case, error) {
	c, err := uc.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// Readiness devuelve el estado de preparación. El campo cacheado siempre es
// recomputable: con recompute=true se rederiva del conjunto de reservas y se
// actualiza el cache en una transacción.
func (uc *CaseUseCase) Readiness(ctx context.Context, caseID string, recompute bool) (string, error) {
	if !recompute {
		c, err := uc.GetByID(ctx, caseID)
		if err != nil {
			return "", err
		}
		return c.Readiness, nil
	}

	var readiness string
	err := uc.txRunner.Run(ctx, func(
		_ repository.StockLotRepository,
		_ repository.StockMovementRepository,
		resRepo repository.ReservationRepository,
		caseRepo repository.CaseRepository,
	) error {
		c, err := caseRepo.GetForUpdate(ctx, caseID)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.ErrNotFound
		}
		readiness, err = syncCaseReadiness(ctx, resRepo, caseRepo, caseID)
		return err
	})
	if err != nil {
		return "", err
	}
	return readiness, nil
}
