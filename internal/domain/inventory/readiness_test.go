package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/clinistock-api/internal/domain/entity"
	"github.com/jhoicas/clinistock-api/internal/domain/inventory"
)

func res(status string, outOfStock bool) *entity.Reservation {
	return &entity.Reservation{Status: status, OutOfStock: outOfStock}
}

func TestResolveReadiness_SinReservas(t *testing.T) {
	assert.Equal(t, entity.CaseUnscheduled, inventory.ResolveReadiness(nil))
}

func TestResolveReadiness_TodasCanceladas(t *testing.T) {
	got := inventory.ResolveReadiness([]*entity.Reservation{
		res(entity.ReservationCancelled, false),
		res(entity.ReservationCancelled, true),
	})
	assert.Equal(t, entity.CaseUnscheduled, got,
		"un caso cuyo total de reservas fue cancelado no está comprometido")
}

func TestResolveReadiness_TodasConfirmadas(t *testing.T) {
	got := inventory.ResolveReadiness([]*entity.Reservation{
		res(entity.ReservationConfirmed, false),
		res(entity.ReservationPrepared, false),
		res(entity.ReservationUsed, false),
	})
	assert.Equal(t, entity.CaseReady, got)
}

func TestResolveReadiness_PendienteSinBackorder(t *testing.T) {
	got := inventory.ResolveReadiness([]*entity.Reservation{
		res(entity.ReservationConfirmed, false),
		res(entity.ReservationPending, false),
	})
	assert.Equal(t, entity.CaseAwaitingMaterials, got)
}

func TestResolveReadiness_BackorderGanaSobreAwaiting(t *testing.T) {
	got := inventory.ResolveReadiness([]*entity.Reservation{
		res(entity.ReservationPending, false),
		res(entity.ReservationPending, true),
	})
	assert.Equal(t, entity.CaseShortage, got,
		"shortage tiene precedencia sobre awaiting-materials")
}

func TestResolveReadiness_BackorderConfirmadoSigueEnShortage(t *testing.T) {
	got := inventory.ResolveReadiness([]*entity.Reservation{
		res(entity.ReservationConfirmed, true),
	})
	assert.Equal(t, entity.CaseShortage, got)
}

func TestResolveReadiness_CanceladasNoCuentan(t *testing.T) {
	got := inventory.ResolveReadiness([]*entity.Reservation{
		res(entity.ReservationCancelled, true), // backorder cancelado no es faltante
		res(entity.ReservationConfirmed, false),
	})
	assert.Equal(t, entity.CaseReady, got)
}
