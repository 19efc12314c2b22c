package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinistock-api/internal/application/inventory"
	"github.com/jhoicas/clinistock-api/internal/domain"
	"github.com/jhoicas/clinistock-api/internal/domain/entity"
)

func TestCloseCase_UsadasAlActaYActivasLiberadas(t *testing.T) {
	env := newTestEnv()
	env.seedProduct("p1", "SUTURA", 0)
	env.seedProduct("p2", "GASA", 0)
	env.seedCase("c1")
	env.seedLot("lote1", "p1", 10, nil)
	env.seedLot("lote2", "p2", 10, nil)
	lot1, lot2 := "lote1", "lote2"

	usada, err := env.resUC.Create(context.Background(), inventory.CreateReservationInput{
		CaseID: "c1", ProductID: "p1", RequestedQty: 4, LotID: &lot1, Actor: "dr-a",
	})
	require.NoError(t, err)
	require.NoError(t, env.resUC.MarkConfirmed(context.Background(), usada.ID, "dr-a"))
	require.NoError(t, env.resUC.MarkUsed(context.Background(), usada.ID, nil, nil, "dr-a"))

	pendiente, err := env.resUC.Create(context.Background(), inventory.CreateReservationInput{
		CaseID: "c1", ProductID: "p2", RequestedQty: 3, LotID: &lot2, Actor: "dr-a",
	})
	require.NoError(t, err)

	closure, err := env.closeUC.Close(context.Background(), "c1", "cirugía terminada", "dr-a")
	require.NoError(t, err)

	// Acta: la usada en used_lines, la pendiente en released_lines.
	require.Len(t, closure.UsedLines, 1)
	assert.Equal(t, usada.ID, closure.UsedLines[0].ReservationID)
	assert.Equal(t, int64(4), closure.UsedLines[0].Quantity)
	require.Len(t, closure.ReleasedLines, 1)
	assert.Equal(t, pendiente.ID, closure.ReleasedLines[0].ReservationID)
	assert.Equal(t, int64(3), closure.ReleasedLines[0].Quantity)

	// El cierre no vuelve a descontar: el consumo ocurrió en MarkUsed.
	assert.Equal(t, int64(6), env.store.lots["lote1"].OnHand)
	// El hold de la pendiente se liberó sin tocar existencia.
	assert.Equal(t, int64(10), env.store.lots["lote2"].OnHand)
	assert.Equal(t, int64(0), env.store.lots["lote2"].Reserved)

	assert.Equal(t, entity.ReservationCancelled, env.store.reservations[pendiente.ID].Status)

	c := env.store.cases["c1"]
	assert.Equal(t, entity.CaseCompleted, c.Readiness)
	require.NotNil(t, c.ClosedAt)
	assert.Equal(t, "dr-a", c.ClosedBy)
}

func TestCloseCase_SegundoCierreEsIdempotente(t *testing.T) {
	env := newTestEnv()
	env.seedProduct("p1", "GASA", 0)
	env.seedCase("c1")
	env.seedLot("lote1", "p1", 5, nil)
	lotID := "lote1"

	_, err := env.resUC.Create(context.Background(), inventory.CreateReservationInput{
		CaseID: "c1", ProductID: "p1", RequestedQty: 2, LotID: &lotID, Actor: "dr-a",
	})
	require.NoError(t, err)

	_, err = env.closeUC.Close(context.Background(), "c1", "", "dr-a")
	require.NoError(t, err)

	_, err = env.closeUC.Close(context.Background(), "c1", "", "dr-a")
	assert.ErrorIs(t, err, domain.ErrAlreadyClosed)

	// Sin doble liberación.
	assert.Equal(t, int64(0), env.store.lots["lote1"].Reserved)
	assert.Equal(t, int64(5), env.store.lots["lote1"].OnHand)
}

func TestCloseCase_BackorderCanceladaSinTocarLibro(t *testing.T) {
	env := newTestEnv()
	env.seedProduct("p1", "IMPLANTE", 0)
	env.seedCase("c1")

	res, err := env.resUC.Create(context.Background(), inventory.CreateReservationInput{
		CaseID: "c1", ProductID: "p1", RequestedQty: 5, AutoSelect: true, Actor: "dr-a",
	})
	require.NoError(t, err)
	require.True(t, res.OutOfStock)

	closure, err := env.closeUC.Close(context.Background(), "c1", "", "dr-a")
	require.NoError(t, err)

	require.Len(t, closure.ReleasedLines, 1)
	assert.Equal(t, int64(0), closure.ReleasedLines[0].Quantity,
		"un backorder no tenía hold que liberar")
	assert.Equal(t, entity.ReservationCancelled, env.store.reservations[res.ID].Status)
	assert.Empty(t, env.store.movements, "cancelar un backorder no genera movimientos")
}

func TestCloseCase_GetClosure(t *testing.T) {
	env := newTestEnv()
	env.seedProduct("p1", "GASA", 0)
	env.seedCase("c1")

	_, err := env.closeUC.GetClosure(context.Background(), "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.closeUC.Close(context.Background(), "c1", "sin reservas", "dr-a")
	require.NoError(t, err)

	closure, err := env.closeUC.GetClosure(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", closure.CaseID)
	assert.Equal(t, "sin reservas", closure.Notes)
}
