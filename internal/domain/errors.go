package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrBatchNotFound       = errors.New("lote no encontrado")
	ErrBatchInactive       = errors.New("lote inactivo o ya vencido")
	ErrUserNotFound        = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists  = errors.New("el email ya está registrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrInvalidState        = errors.New("estado de inventario inconsistente")
	ErrEmptyCart           = errors.New("el carrito está vacío")
	ErrInsufficientPayment = errors.New("monto pagado insuficiente")
)

// InsufficientStockError lleva el detalle de una reserva fallida: cuánto se
// pidió y cuánto se habría podido reservar. errors.Is(err, ErrInsufficientStock)
// sigue funcionando en los handlers.
type InsufficientStockError struct {
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: solicitado %d, disponible %d", e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// InvalidStateError se produce al confirmar una reserva cuyo lote ya no
// respalda la cantidad reservada (modificación concurrente). Nunca se
// auto-corrige: se propaga con contexto para conciliación manual.
type InvalidStateError struct {
	BatchID  int64
	Expected int
	Actual   int
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("estado inconsistente en lote %d: reservado %d, respaldado %d", e.BatchID, e.Expected, e.Actual)
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}
