package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/clinistock-api/internal/domain"
	"github.com/jhoicas/clinistock-api/internal/domain/entity"
	"github.com/jhoicas/clinistock-api/internal/domain/repository"
)

// StockUseCase agrupa las operaciones de bodega que no pasan por una reserva:
// recepción manual, ajustes y las consultas de lotes/movimientos que consumen
// las pantallas de auditoría y reportes.
type StockUseCase struct {
	txRunner TxRunner
	lotRepo  repository.StockLotRepository      // atado al pool, solo lecturas
	movRepo  repository.StockMovementRepository // idem
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(txRunner TxRunner, lotRepo repository.StockLotRepository, movRepo repository.StockMovementRepository) *StockUseCase {
	return &StockUseCase{txRunner: txRunner, lotRepo: lotRepo, movRepo: movRepo}
}

// ManualReceive registra una entrada manual de material (sin orden de compra),
// por el mismo camino del libro que una recepción de compra.
func (uc *StockUseCase) ManualReceive(ctx context.Context, in ReceiveInput) (*entity.StockLot, error) {
	in.RefKind = entity.MovementRefManual
	in.RefID = ""

	var lot *entity.StockLot
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.StockLotRepository,
		movRepo repository.StockMovementRepository,
		_ repository.ReservationRepository,
		_ repository.CaseRepository,
	) error {
		var err error
		lot, err = NewLedger(lotRepo, movRepo).Receive(ctx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return lot, nil
}

// Adjust aplica un ajuste manual (+/-) sobre un lote.
func (uc *StockUseCase) Adjust(ctx context.Context, lotID string, delta int64, actor string) error {
	return uc.txRunner.Run(ctx, func(
		lotRepo repository.StockLotRepository,
		movRepo repository.StockMovementRepository,
		_ repository.ReservationRepository,
		_ repository.CaseRepository,
	) error {
		return NewLedger(lotRepo, movRepo).Adjust(ctx, lotID, delta, actor)
	})
}

// ListLots devuelve los lotes de un producto con su disponible derivado.
func (uc *StockUseCase) ListLots(ctx context.Context, productID string) ([]*entity.StockLot, error) {
	return uc.lotRepo.ListByProduct(ctx, productID)
}

// GetLot devuelve un lote.
func (uc *StockUseCase) GetLot(ctx context.Context, lotID string) (*entity.StockLot, error) {
	lot, err := uc.lotRepo.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	return lot, nil
}

// ListMovementsByLot lista el libro de un lote (paginado, más reciente primero).
func (uc *StockUseCase) ListMovementsByLot(ctx context.Context, lotID string, limit, offset int) ([]*entity.StockMovement, error) {
	return uc.movRepo.ListByLot(ctx, lotID, limit, offset)
}

// ListMovementsByProduct lista el libro de un producto en un rango de fechas.
func (uc *StockUseCase) ListMovementsByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return uc.movRepo.ListByProduct(ctx, productID, from, to, limit, offset)
}

// LotAudit resultado de la verificación contable de un lote.
type LotAudit struct {
	LotID        string
	OnHand       int64
	MovementsSum int64 // suma de deltas receive/use/adjust
	Consistent   bool  // MovementsSum == OnHand
}

// AuditLot verifica el invariante contable del lote: la suma de los deltas de
// movimientos que afectan existencia debe cuadrar con la existencia actual.
func (uc *StockUseCase) AuditLot(ctx context.Context, lotID string) (*LotAudit, error) {
	lot, err := uc.lotRepo.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	sum, err := uc.movRepo.SumOnHandDeltas(ctx, lotID)
	if err != nil {
		return nil, err
	}
	return &LotAudit{
		LotID:        lotID,
		OnHand:       lot.OnHand,
		MovementsSum: sum,
		Consistent:   sum == lot.OnHand,
	}, nil
}
