package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/clinistock-api/internal/domain/entity"
)

func TestCanTransition_FlujoFeliz(t *testing.T) {
	assert.True(t, entity.CanTransition(entity.ReservationPending, entity.ReservationConfirmed))
	assert.True(t, entity.CanTransition(entity.ReservationConfirmed, entity.ReservationPrepared))
	assert.True(t, entity.CanTransition(entity.ReservationPrepared, entity.ReservationUsed))
}

func TestCanTransition_ConfirmedDirectoAUsed(t *testing.T) {
	// El alistamiento (prepared) es opcional: se puede consumir directo.
	assert.True(t, entity.CanTransition(entity.ReservationConfirmed, entity.ReservationUsed))
}

func TestCanTransition_CancelacionDesdeEstadosActivos(t *testing.T) {
	assert.True(t, entity.CanTransition(entity.ReservationPending, entity.ReservationCancelled))
	assert.True(t, entity.CanTransition(entity.ReservationConfirmed, entity.ReservationCancelled))
	assert.True(t, entity.CanTransition(entity.ReservationPrepared, entity.ReservationCancelled))
}

func TestCanTransition_TransicionesInvalidas(t *testing.T) {
	// pending no puede saltar a prepared ni a used sin confirmar.
	assert.False(t, entity.CanTransition(entity.ReservationPending, entity.ReservationPrepared))
	assert.False(t, entity.CanTransition(entity.ReservationPending, entity.ReservationUsed))
	// No hay vuelta atrás.
	assert.False(t, entity.CanTransition(entity.ReservationConfirmed, entity.ReservationPending))
	assert.False(t, entity.CanTransition(entity.ReservationPrepared, entity.ReservationConfirmed))
}

func TestCanTransition_EstadosTerminalesNoSalen(t *testing.T) {
	for _, from := range []string{entity.ReservationUsed, entity.ReservationCancelled} {
		for _, to := range []string{
			entity.ReservationPending, entity.ReservationConfirmed,
			entity.ReservationPrepared, entity.ReservationUsed, entity.ReservationCancelled,
		} {
			assert.False(t, entity.CanTransition(from, to),
				"no debe haber salida de %s hacia %s", from, to)
		}
	}
}

func TestIsTerminalReservationStatus(t *testing.T) {
	assert.True(t, entity.IsTerminalReservationStatus(entity.ReservationUsed))
	assert.True(t, entity.IsTerminalReservationStatus(entity.ReservationCancelled))
	assert.False(t, entity.IsTerminalReservationStatus(entity.ReservationPending))
	assert.False(t, entity.IsTerminalReservationStatus(entity.ReservationConfirmed))
	assert.False(t, entity.IsTerminalReservationStatus(entity.ReservationPrepared))
}

func TestHoldsStock(t *testing.T) {
	lotID := "lote-1"

	conHold := &entity.Reservation{LotID: &lotID, Status: entity.ReservationConfirmed}
	assert.True(t, conHold.HoldsStock())

	backorder := &entity.Reservation{Status: entity.ReservationPending, OutOfStock: true}
	assert.False(t, backorder.HoldsStock(), "backorder sin lote no aparta existencia")

	cancelada := &entity.Reservation{LotID: &lotID, Status: entity.ReservationCancelled}
	assert.False(t, cancelada.HoldsStock(), "reserva terminal ya no aparta existencia")
}
