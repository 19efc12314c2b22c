package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/clinistock-api/internal/domain"
	"github.com/jhoicas/clinistock-api/internal/domain/entity"
	"github.com/jhoicas/clinistock-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ReceivePurchaseOrderUseCase reconcilia una recepción de compra contra los
// backorders: ingresa el lote al libro y ata las reservas en espera del
// producto, de la más antigua a la más reciente (primera en pedir, primera
// en recibir). Todo en una sola transacción.
type ReceivePurchaseOrderUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
}

// NewReceivePurchaseOrderUseCase construye el caso de uso.
func NewReceivePurchaseOrderUseCase(txRunner TxRunner, productRepo repository.ProductRepository) *ReceivePurchaseOrderUseCase {
	return &ReceivePurchaseOrderUseCase{txRunner: txRunner, productRepo: productRepo}
}

// ReceivePurchaseOrderInput datos del evento de recepción (entrada externa).
type ReceivePurchaseOrderInput struct {
	ProductID  string
	Quantity   int64
	UnitCost   decimal.Decimal
	LotID      string // lote existente a completar; vacío = crear/reutilizar por código
	LotCode    string
	ExpiryDate *time.Time
	PORef      string // referencia de la orden de compra
	Actor      string
}

// ReceivePurchaseOrderResult resultado de la reconciliación.
type ReceivePurchaseOrderResult struct {
	Lot                    *entity.StockLot
	FulfilledReservations  []string          // reservas atadas al lote recibido
	ReadinessByCase        map[string]string // estado de preparación resultante por caso
	RemainingAvailable     int64
	StillBackorderedForSKU int // reservas del producto que siguen en backorder
}

// Receive ejecuta la recepción y la reconciliación de backorders.
func (uc *ReceivePurchaseOrderUseCase) Receive(ctx context.Context, in ReceivePurchaseOrderInput) (*ReceivePurchaseOrderResult, error) {
	if in.ProductID == "" || in.Quantity <= 0 || in.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	result := &ReceivePurchaseOrderResult{ReadinessByCase: map[string]string{}}
	err = uc.txRunner.Run(ctx, func(
		lotRepo repository.StockLotRepository,
		movRepo repository.StockMovementRepository,
		resRepo repository.ReservationRepository,
		caseRepo repository.CaseRepository,
	) error {
		ledger := NewLedger(lotRepo, movRepo)
		lot, err := ledger.Receive(ctx, ReceiveInput{
			ProductID:  in.ProductID,
			LotID:      in.LotID,
			LotCode:    in.LotCode,
			ExpiryDate: in.ExpiryDate,
			Quantity:   in.Quantity,
			UnitCost:   in.UnitCost,
			RefKind:    entity.MovementRefPurchaseOrder,
			RefID:      in.PORef,
			Actor:      in.Actor,
		})
		if err != nil {
			return err
		}

		backorders, err := resRepo.ListBackordered(ctx, in.ProductID)
		if err != nil {
			return err
		}

		// Atender en orden estricto de creación (primera en pedir, primera en
		// recibir). Cuando el disponible ya no alcanza para la siguiente más
		// antigua, se detiene: lo recibido queda esperando la próxima
		// recepción en vez de saltar a reservas más recientes.
		touched := map[string]bool{}
		for i, res := range backorders {
			if err := ledger.Reserve(ctx, lot.ID, res.RequestedQty); err != nil {
				if errors.Is(err, domain.ErrInsufficientAvailable) {
					result.StillBackorderedForSKU = len(backorders) - i
					break
				}
				return err
			}
			if err := resRepo.AttachLot(ctx, res.ID, lot.ID, in.Actor); err != nil {
				return err
			}
			result.FulfilledReservations = append(result.FulfilledReservations, res.ID)
			touched[res.CaseID] = true
		}

		for caseID := range touched {
			readiness, err := syncCaseReadiness(ctx, resRepo, caseRepo, caseID)
			if err != nil {
				return err
			}
			result.ReadinessByCase[caseID] = readiness
		}

		// Releer el lote para reportar el disponible final.
		final, err := lotRepo.GetByID(ctx, lot.ID)
		if err != nil {
			return err
		}
		result.Lot = final
		result.RemainingAvailable = final.Available()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
