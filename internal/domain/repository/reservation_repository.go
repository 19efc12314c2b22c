package repository

import (
	"context"

	"github.com/jhoicas/clinistock-api/internal/domain/entity"
)

// BackorderItem agrupa la demanda en backorder de un producto para el
// reporte de compras.
type BackorderItem struct {
	ProductID    string
	SKU          string
	ProductName  string
	PendingQty   int64 // suma de cantidades solicitadas en backorder
	Requests     int   // número de reservas esperando
	ReorderPoint int64
	OldestCaseID string
}

// ReservationRepository puerto de persistencia para reservas de material.
// Los cambios de estado son UPDATEs condicionales sobre el estado previo:
// cero filas afectadas significa que otro actor ganó la carrera.
type ReservationRepository interface {
	Create(ctx context.Context, reservation *entity.Reservation) error
	GetByID(ctx context.Context, id string) (*entity.Reservation, error)
	// GetForUpdate obtiene la reserva bloqueando la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Reservation, error)
	ListByCase(ctx context.Context, caseID string) ([]*entity.Reservation, error)
	// ListBackordered devuelve reservas con out_of_stock=true en estado
	// pending/confirmed para el producto, de más antigua a más reciente.
	ListBackordered(ctx context.Context, productID string) ([]*entity.Reservation, error)
	// SummarizeBackorders agrega la demanda en backorder por producto.
	SummarizeBackorders(ctx context.Context) ([]BackorderItem, error)

	// UpdateStatus cambia el estado condicionado al estado previo y registra
	// el actor en updated_by. Devuelve domain.ErrConcurrentModification si la
	// fila ya no está en from.
	UpdateStatus(ctx context.Context, id, from, to, actor string) error
	// AttachLot ata el lote a una reserva en backorder, limpia out_of_stock y
	// la deja en confirmed. Condicionado a que siga en backorder.
	AttachLot(ctx context.Context, id, lotID, actor string) error
	// SetUsed marca la reserva como usada fijando cantidad y evidencias,
	// condicionado al estado previo.
	SetUsed(ctx context.Context, id string, usedQty int64, evidenceRefs []string, from, actor string) error
}
