package repository

import (
	"context"
	"time"

	"github.com/jhoicas/clinistock-api/internal/domain/entity"
)

// StockMovementRepository puerto para el libro de movimientos (append-only).
// No hay Update ni Delete: los movimientos son inmutables.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByLot(ctx context.Context, lotID string, limit, offset int) ([]*entity.StockMovement, error)
	ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	// SumOnHandDeltas suma los deltas de los movimientos que afectan existencia
	// (excluye reserve-release). Debe cuadrar con la existencia actual del lote.
	SumOnHandDeltas(ctx context.Context, lotID string) (int64, error)
}
