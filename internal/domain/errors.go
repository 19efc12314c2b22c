package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrInsufficientAvailable  = errors.New("cantidad disponible insuficiente en el lote")
	ErrInvalidTransition      = errors.New("transición de estado de reserva inválida")
	ErrInvariantViolation     = errors.New("la operación violaría el invariante del lote (0 <= reservado <= existencia)")
	ErrAlreadyClosed          = errors.New("el caso ya fue cerrado")
	ErrConcurrentModification = errors.New("modificación concurrente detectada, reintente la operación")
)
