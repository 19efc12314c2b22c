package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinistock-api/internal/application/inventory"
	"github.com/jhoicas/clinistock-api/internal/domain"
	"github.com/jhoicas/clinistock-api/internal/domain/entity"
)

// seedBackorder crea una reserva en backorder vía el caso de uso (camino real).
func seedBackorder(t *testing.T, env *testEnv, caseID, productID string, qty int64) string {
	t.Helper()
	res, err := env.resUC.Create(context.Background(), inventory.CreateReservationInput{
		CaseID: caseID, ProductID: productID, RequestedQty: qty, AutoSelect: true, Actor: "dr-a",
	})
	require.NoError(t, err)
	require.True(t, res.OutOfStock, "la semilla debe quedar en backorder")
	return res.ID
}

func TestReceive_AtaBackordersEnOrdenDeLlegada(t *testing.T) {
	env := newTestEnv()
	env.seedProduct("p1", "IMPLANTE", 0)
	env.seedCase("c1")
	env.seedCase("c2")

	first := seedBackorder(t, env, "c1", "p1", 3)
	second := seedBackorder(t, env, "c2", "p1", 4)

	// Llegan 5: alcanzan para la primera (3) pero no para la segunda (4).
	result, err := env.procUC.Receive(context.Background(), inventory.ReceivePurchaseOrderInput{
		ProductID: "p1", Quantity: 5, UnitCost: decimal.NewFromInt(100),
		LotCode: "OC-900", PORef: "oc-900", Actor: "bod-1",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{first}, result.FulfilledReservations)
	assert.Equal(t, 1, result.StillBackorderedForSKU)
	assert.Equal(t, int64(2), result.RemainingAvailable, "5 recibidas - 3 apartadas")

	attached := env.store.reservations[first]
	assert.False(t, attached.OutOfStock)
	assert.Equal(t, entity.ReservationConfirmed, attached.Status)
	require.NotNil(t, attached.LotID)
	assert.Equal(t, result.Lot.ID, *attached.LotID)

	waiting := env.store.reservations[second]
	assert.True(t, waiting.OutOfStock, "la segunda sigue esperando la próxima recepción")
	assert.Nil(t, waiting.LotID)

	// Preparación por caso: c1 quedó listo, c2 sigue en faltante.
	assert.Equal(t, entity.CaseReady, result.ReadinessByCase["c1"])
	assert.Equal(t, entity.CaseShortage, env.store.cases["c2"].Readiness)
	_, touched := result.ReadinessByCase["c2"]
	assert.False(t, touched, "solo los casos con reservas atadas entran al resultado")
}

func TestReceive_SeDetieneEnLaMasAntiguaAunqueOtraQuepa(t *testing.T) {
	env := newTestEnv()
	env.seedProduct("p1", "IMPLANTE", 0)
	env.seedCase("c1")
	env.seedCase("c2")

	seedBackorder(t, env, "c1", "p1", 4) // la más antigua pide 4
	seedBackorder(t, env, "c2", "p1", 1) // la más nueva pediría solo 1

	result, err := env.procUC.Receive(context.Background(), inventory.ReceivePurchaseOrderInput{
		ProductID: "p1", Quantity: 2, UnitCost: decimal.NewFromInt(100),
		LotCode: "OC-901", Actor: "bod-1",
	})
	require.NoError(t, err)

	// Orden estricto: no se salta a la más nueva aunque quepa.
	assert.Empty(t, result.FulfilledReservations)
	assert.Equal(t, 2, result.StillBackorderedForSKU)
	assert.Equal(t, int64(2), result.RemainingAvailable,
		"lo recibido queda esperando la próxima recepción")
}

func TestReceive_CompletaLoteExistentePorCodigo(t *testing.T) {
	env := newTestEnv()
	env.seedProduct("p1", "SUTURA", 0)
	env.seedLot("lote1", "p1", 3, nil)
	env.store.lots["lote1"].LotCode = "S-77"

	result, err := env.procUC.Receive(context.Background(), inventory.ReceivePurchaseOrderInput{
		ProductID: "p1", Quantity: 7, UnitCost: decimal.NewFromInt(20),
		LotCode: "S-77", Actor: "bod-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "lote1", result.Lot.ID, "mismo código de lote = completar, no duplicar")
	assert.Equal(t, int64(10), result.Lot.OnHand)
	require.Len(t, env.store.movements, 1)
	assert.Equal(t, entity.MovementKindReceive, env.store.movements[0].Kind)
	assert.Equal(t, int64(7), env.store.movements[0].Quantity)
}

func TestReceive_ProductoInexistente(t *testing.T) {
	env := newTestEnv()

	_, err := env.procUC.Receive(context.Background(), inventory.ReceivePurchaseOrderInput{
		ProductID: "no-existe", Quantity: 5, UnitCost: decimal.NewFromInt(1), Actor: "bod-1",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReceive_CantidadInvalida(t *testing.T) {
	env := newTestEnv()
	env.seedProduct("p1", "SUTURA", 0)

	_, err := env.procUC.Receive(context.Background(), inventory.ReceivePurchaseOrderInput{
		ProductID: "p1", Quantity: 0, UnitCost: decimal.NewFromInt(1), Actor: "bod-1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
