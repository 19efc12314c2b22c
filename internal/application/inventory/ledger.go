package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/clinistock-api/internal/domain"
	"github.com/jhoicas/clinistock-api/internal/domain/entity"
	"github.com/jhoicas/clinistock-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Ledger es el único componente que muta cantidades de lotes. Se construye
// sobre repositorios ya atados a una transacción (dentro de TxRunner.Run),
// de modo que cada operación es atómica por lote.
type Ledger struct {
	lots repository.StockLotRepository
	movs repository.StockMovementRepository
}

// NewLedger construye el libro de inventario sobre los repos de la tx actual.
func NewLedger(lots repository.StockLotRepository, movs repository.StockMovementRepository) *Ledger {
	return &Ledger{lots: lots, movs: movs}
}

// Reserve aparta qty unidades del lote. Un hold no es un cambio físico:
// no genera movimiento. Falla con ErrInsufficientAvailable si no alcanza.
func (l *Ledger) Reserve(ctx context.Context, lotID string, qty int64) error {
	if qty <= 0 {
		return domain.ErrInvalidInput
	}
	return l.lots.Reserve(ctx, lotID, qty)
}

// Release libera hasta qty unidades del hold (tope en 0) y registra un
// movimiento reserve-release con la cantidad efectivamente liberada.
// Devuelve esa cantidad.
func (l *Ledger) Release(ctx context.Context, lotID string, qty int64, refKind, refID, actor string) (int64, error) {
	if qty <= 0 {
		return 0, domain.ErrInvalidInput
	}
	released, err := l.lots.Release(ctx, lotID, qty)
	if err != nil {
		return 0, err
	}
	if released == 0 {
		return 0, nil
	}
	lot, err := l.lots.GetByID(ctx, lotID)
	if err != nil {
		return 0, err
	}
	mov := &entity.StockMovement{
		ID:        uuid.New().String(),
		LotID:     lotID,
		ProductID: lot.ProductID,
		Kind:      entity.MovementKindReserveRelease,
		Quantity:  released,
		UnitCost:  lot.UnitCost,
		RefKind:   refKind,
		RefID:     refID,
		CreatedAt: time.Now(),
		CreatedBy: actor,
	}
	return released, l.movs.Create(ctx, mov)
}

// Consume descuenta qty de existencia y de hold (este último con tope en 0)
// y registra el movimiento use. Falla con ErrInvariantViolation si dejaría
// reserved > on_hand.
func (l *Ledger) Consume(ctx context.Context, lotID string, qty int64, refKind, refID, actor string) error {
	if qty <= 0 {
		return domain.ErrInvalidInput
	}
	lot, err := l.lots.GetByID(ctx, lotID)
	if err != nil {
		return err
	}
	if lot == nil {
		return domain.ErrNotFound
	}
	if err := l.lots.Consume(ctx, lotID, qty); err != nil {
		return err
	}
	mov := &entity.StockMovement{
		ID:        uuid.New().String(),
		LotID:     lotID,
		ProductID: lot.ProductID,
		Kind:      entity.MovementKindUse,
		Quantity:  -qty,
		UnitCost:  lot.UnitCost,
		RefKind:   refKind,
		RefID:     refID,
		CreatedAt: time.Now(),
		CreatedBy: actor,
	}
	return l.movs.Create(ctx, mov)
}

// ReceiveInput datos de una recepción de material (manual o por compra).
type ReceiveInput struct {
	ProductID  string
	LotID      string // lote existente a completar; vacío = crear
	LotCode    string
	ExpiryDate *time.Time
	Quantity   int64
	UnitCost   decimal.Decimal
	RefKind    string // purchase_order o manual
	RefID      string
	Actor      string
}

// Receive crea o completa un lote, suma existencia y registra el movimiento
// receive. Devuelve el lote afectado con sus cantidades actualizadas.
func (l *Ledger) Receive(ctx context.Context, in ReceiveInput) (*entity.StockLot, error) {
	if in.Quantity <= 0 || in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var lot *entity.StockLot
	var err error

	switch {
	case in.LotID != "":
		lot, err = l.lots.GetForUpdate(ctx, in.LotID)
		if err != nil {
			return nil, err
		}
		if lot == nil || lot.ProductID != in.ProductID {
			return nil, domain.ErrNotFound
		}
		if err := l.lots.AddOnHand(ctx, lot.ID, in.Quantity); err != nil {
			return nil, err
		}
	default:
		// Reutilizar el lote si ya existe uno con el mismo código.
		if in.LotCode != "" {
			lot, err = l.lots.GetByProductAndCode(ctx, in.ProductID, in.LotCode)
			if err != nil {
				return nil, err
			}
		}
		if lot != nil {
			if err := l.lots.AddOnHand(ctx, lot.ID, in.Quantity); err != nil {
				return nil, err
			}
		} else {
			lot = &entity.StockLot{
				ID:         uuid.New().String(),
				ProductID:  in.ProductID,
				LotCode:    in.LotCode,
				ExpiryDate: in.ExpiryDate,
				OnHand:     in.Quantity,
				Reserved:   0,
				UnitCost:   in.UnitCost,
				ReceivedAt: now,
				UpdatedAt:  now,
			}
			if err := l.lots.Create(ctx, lot); err != nil {
				return nil, err
			}
		}
	}

	mov := &entity.StockMovement{
		ID:        uuid.New().String(),
		LotID:     lot.ID,
		ProductID: in.ProductID,
		Kind:      entity.MovementKindReceive,
		Quantity:  in.Quantity,
		UnitCost:  in.UnitCost,
		RefKind:   in.RefKind,
		RefID:     in.RefID,
		CreatedAt: now,
		CreatedBy: in.Actor,
	}
	if err := l.movs.Create(ctx, mov); err != nil {
		return nil, err
	}
	// Releer para devolver cantidades ya actualizadas.
	return l.lots.GetByID(ctx, lot.ID)
}

// Adjust aplica un ajuste manual (+/-) a la existencia del lote y registra
// el movimiento adjust. El repositorio rechaza ajustes que rompan
// 0 <= reserved <= on_hand.
func (l *Ledger) Adjust(ctx context.Context, lotID string, delta int64, actor string) error {
	if delta == 0 {
		return domain.ErrInvalidInput
	}
	lot, err := l.lots.GetByID(ctx, lotID)
	if err != nil {
		return err
	}
	if lot == nil {
		return domain.ErrNotFound
	}
	if err := l.lots.AddOnHand(ctx, lotID, delta); err != nil {
		return err
	}
	mov := &entity.StockMovement{
		ID:        uuid.New().String(),
		LotID:     lotID,
		ProductID: lot.ProductID,
		Kind:      entity.MovementKindAdjust,
		Quantity:  delta,
		UnitCost:  lot.UnitCost,
		RefKind:   entity.MovementRefManual,
		RefID:     "",
		CreatedAt: time.Now(),
		CreatedBy: actor,
	}
	return l.movs.Create(ctx, mov)
}
