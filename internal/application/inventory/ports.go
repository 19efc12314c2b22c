package inventory

import (
	"context"

	"github.com/jhoicas/clinistock-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de
// reservas: o se confirma todo o no se ve nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lotRepo repository.StockLotRepository,
		movRepo repository.StockMovementRepository,
		resRepo repository.ReservationRepository,
		caseRepo repository.CaseRepository,
	) error) error
}
