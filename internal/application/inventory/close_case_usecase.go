package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/clinistock-api/internal/domain"
	"github.com/jhoicas/clinistock-api/internal/domain/entity"
	"github.com/jhoicas/clinistock-api/internal/domain/repository"
)

// CloseCaseUseCase cierra un procedimiento: las reservas usadas quedan como
// están (el consumo físico ya ocurrió al marcarlas used, único punto de
// descuento), las activas se cancelan liberando sus holds, el caso pasa a
// completed y se deja un acta de cierre. Todo o nada: cualquier fallo
// revierte el cierre completo.
type CloseCaseUseCase struct {
	txRunner TxRunner
	caseRepo repository.CaseRepository // atado al pool, solo lecturas
}

// NewCloseCaseUseCase construye el caso de uso.
func NewCloseCaseUseCase(txRunner TxRunner, caseRepo repository.CaseRepository) *CloseCaseUseCase {
	return &CloseCaseUseCase{txRunner: txRunner, caseRepo: caseRepo}
}

// Close cierra el caso de forma idempotente: una segunda invocación devuelve
// ErrAlreadyClosed sin efecto alguno. La fila del caso queda bloqueada durante
// el cierre, así que no pueden crearse reservas nuevas mientras tanto.
func (uc *CloseCaseUseCase) Close(ctx context.Context, caseID, notes, actor string) (*entity.CaseClosure, error) {
	if caseID == "" {
		return nil, domain.ErrInvalidInput
	}

	var closure *entity.CaseClosure
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.StockLotRepository,
		movRepo repository.StockMovementRepository,
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
		if entity.IsTerminalReadiness(c.Readiness) {
			return domain.ErrAlreadyClosed
		}

		reservations, err := resRepo.ListByCase(ctx, caseID)
		if err != nil {
			return err
		}

		now := time.Now()
		ledger := NewLedger(lotRepo, movRepo)
		summary := &entity.CaseClosure{
			ID:        uuid.New().String(),
			CaseID:    caseID,
			Actor:     actor,
			Notes:     notes,
			CreatedAt: now,
		}

		for _, res := range reservations {
			switch {
			case res.Status == entity.ReservationUsed:
				// Ya consumida en MarkUsed; solo va al acta.
				qty := res.RequestedQty
				if res.UsedQty != nil {
					qty = *res.UsedQty
				}
				summary.UsedLines = append(summary.UsedLines, closureLine(res, qty))
			case res.Active():
				// Sin usar al cierre: cancelar y compensar el hold.
				released := int64(0)
				if res.LotID != nil && !res.OutOfStock {
					released, err = ledger.Release(ctx, *res.LotID, res.RequestedQty, entity.MovementRefReservation, res.ID, actor)
					if err != nil {
						return err
					}
				}
				if err := resRepo.UpdateStatus(ctx, res.ID, res.Status, entity.ReservationCancelled, actor); err != nil {
					return err
				}
				summary.ReleasedLines = append(summary.ReleasedLines, closureLine(res, released))
			}
		}

		if err := caseRepo.Close(ctx, caseID, actor, now); err != nil {
			return err
		}
		if err := caseRepo.CreateClosure(ctx, summary); err != nil {
			return err
		}
		closure = summary
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closure, nil
}

// GetClosure devuelve el acta de cierre de un caso (lectura).
func (uc *CloseCaseUseCase) GetClosure(ctx context.Context, caseID string) (*entity.CaseClosure, error) {
	closure, err := uc.caseRepo.GetClosureByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if closure == nil {
		return nil, domain.ErrNotFound
	}
	return closure, nil
}

func closureLine(res *entity.Reservation, qty int64) entity.ClosureLine {
	line := entity.ClosureLine{
		ReservationID: res.ID,
		ProductID:     res.ProductID,
		Quantity:      qty,
	}
	if res.LotID != nil {
		line.LotID = *res.LotID
	}
	return line
}
