package repository

import (
	"context"

	"github.com/jhoicas/clinistock-api/internal/domain/entity"
)

// StockLotRepository puerto de persistencia para lotes de inventario.
// Las operaciones de cantidad (Reserve, Consume, AddOnHand) deben ser UPDATEs
// condicionales atómicos: nunca leer-calcular-escribir en pasos separados.
type StockLotRepository interface {
	Create(ctx context.Context, lot *entity.StockLot) error
	GetByID(ctx context.Context, id string) (*entity.StockLot, error)
	// GetForUpdate obtiene el lote bloqueando la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.StockLot, error)
	GetByProductAndCode(ctx context.Context, productID, lotCode string) (*entity.StockLot, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockLot, error)

	// Reserve incrementa reserved si hay disponible suficiente.
	// Devuelve domain.ErrInsufficientAvailable si disponible < qty.
	Reserve(ctx context.Context, lotID string, qty int64) error
	// Release decrementa reserved con tope en 0 y devuelve la cantidad
	// efectivamente liberada (puede ser menor que qty).
	Release(ctx context.Context, lotID string, qty int64) (int64, error)
	// Consume decrementa on_hand y reserved (con tope en 0) en qty.
	// Devuelve domain.ErrInvariantViolation si dejaría reserved > on_hand.
	Consume(ctx context.Context, lotID string, qty int64) error
	// AddOnHand suma delta (firmado) a on_hand. Con delta negativo falla con
	// domain.ErrInvariantViolation si dejaría on_hand < reserved o < 0.
	AddOnHand(ctx context.Context, lotID string, delta int64) error

	// SelectForDemand elige el lote para satisfacer una demanda: FEFO con
	// fallback (vencimiento más próximo con disponible >= qty; si ninguno con
	// vencimiento califica, el de mayor disponible entre los que alcanzan).
	// Devuelve nil si ningún lote tiene disponible suficiente.
	SelectForDemand(ctx context.Context, productID string, qty int64) (*entity.StockLot, error)
}
