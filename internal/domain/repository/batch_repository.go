package repository

import (
	"context"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// ReservationPolicy orden de consumo de lotes al reservar.
type ReservationPolicy string

const (
	// PolicyFIFO consume primero el lote más próximo a vencer (por defecto).
	PolicyFIFO ReservationPolicy = "fifo"
	// PolicyLIFO consume primero el lote más lejano a vencer.
	PolicyLIFO ReservationPolicy = "lifo"
)

// BatchWithProduct snapshot de lote + vista mínima de su producto, usado por
// el motor de vencimientos. Valores materializados: el núcleo nunca recorre
// grafos de objetos vivos.
type BatchWithProduct struct {
	Batch   entity.Batch
	Product entity.ProductMeta
}

// BatchRepository define el puerto de persistencia de lotes (el "libro de
// lotes" del que dependen la reserva y el motor de vencimientos).
//
// ApplyReservationDelta y ApplySaleDeduction deben ser atómicos por lote:
// cada llamada se serializa en la base (UPDATE condicionado) y rechaza
// cualquier resultado que viole reserved <= current o reserved >= 0. El motor
// de reservas no sostiene ningún lock entre llamadas; confía en ese rechazo.
type BatchRepository interface {
	Create(batch *entity.Batch) error
	GetByID(id int64) (*entity.Batch, error)
	ListByProduct(productID int64, activeOnly, availableOnly bool) ([]*entity.Batch, error)

	// ListReservable devuelve lotes activos, no vencidos y con disponible > 0,
	// ordenados según policy (FIFO = vencimiento ascendente).
	ListReservable(ctx context.Context, productID int64, policy ReservationPolicy) ([]*entity.Batch, error)

	// ApplyReservationDelta ajusta reserved_quantity en delta (positivo
	// reserva, negativo libera). Los deltas negativos se recortan en cero
	// para que liberar dos veces nunca deje la reserva negativa.
	ApplyReservationDelta(batchID int64, delta int) error

	// ApplySaleDeduction descuenta quantity de current y reserved a la vez.
	// Rechaza con ErrInvalidState si la cantidad excede cualquiera de los dos.
	ApplySaleDeduction(batchID int64, quantity int) error

	// AdjustQuantity fija current_quantity en newQuantity (conteo físico).
	// Rechaza con ErrConflict si la nueva cantidad queda por debajo de lo
	// ya reservado.
	AdjustQuantity(batchID int64, newQuantity int) error

	// MarkExpired fuerza current_quantity = 0 y expired = true; devuelve la
	// cantidad dada de baja para el registro de auditoría.
	// ErrBatchInactive si el lote ya estaba vencido o sin stock.
	MarkExpired(batchID int64) (removed int, err error)

	// ListActiveWithProduct snapshot de todos los lotes activos con la vista
	// mínima de su producto, para clasificación y resumen de vencimientos.
	ListActiveWithProduct(ctx context.Context) ([]BatchWithProduct, error)

	// AvailableStock suma el stock actual de los lotes activos del producto.
	AvailableStock(ctx context.Context, productID int64) (int, error)
}
