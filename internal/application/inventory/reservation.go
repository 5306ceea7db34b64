package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// ReservationLine porción reservada sobre un lote concreto. Valor inmutable:
// una vez emitida la reserva, las líneas no se modifican.
type ReservationLine struct {
	BatchID     int64
	BatchNumber string
	Quantity    int
	UnitPrice   decimal.Decimal
	ExpiryDate  time.Time
}

// Reservation resultado de una reserva todo-o-nada sobre uno o más lotes.
type Reservation struct {
	ProductID int64
	Requested int
	Lines     []ReservationLine
}

// ReservationEngine reserva stock por lotes con semántica todo-o-nada:
// o se aparta la cantidad completa o no se aparta nada. El motor no sostiene
// locks entre llamadas; cada delta se serializa en el libro de lotes y un
// rechazo ahí se trata como "el lote ya no tiene disponible".
type ReservationEngine struct {
	batches repository.BatchRepository
	tx      TxRunner
}

func NewReservationEngine(batches repository.BatchRepository, tx TxRunner) *ReservationEngine {
	return &ReservationEngine{batches: batches, tx: tx}
}

// Reserve aparta quantity unidades del producto recorriendo los lotes en el
// orden de policy (FIFO = el más próximo a vencer primero). Si el disponible
// total no alcanza, revierte todo lo apartado y devuelve
// *domain.InsufficientStockError con lo que sí había.
func (e *ReservationEngine) Reserve(ctx context.Context, productID int64, quantity int, policy repository.ReservationPolicy) (*Reservation, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if policy == "" {
		policy = repository.PolicyFIFO
	}

	batches, err := e.batches.ListReservable(ctx, productID, policy)
	if err != nil {
		return nil, err
	}

	res := &Reservation{ProductID: productID, Requested: quantity}
	remaining := quantity

	for _, b := range batches {
		if remaining == 0 {
			break
		}
		take := b.Available()
		if take <= 0 {
			continue
		}
		if take > remaining {
			take = remaining
		}
		if err := e.batches.ApplyReservationDelta(b.ID, take); err != nil {
			// Otro proceso consumió el lote entre el snapshot y el delta:
			// se sigue con el siguiente lote.
			if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrBatchNotFound) {
				continue
			}
			e.rollback(res)
			return nil, err
		}
		res.Lines = append(res.Lines, ReservationLine{
			BatchID:     b.ID,
			BatchNumber: b.BatchNumber,
			Quantity:    take,
			UnitPrice:   b.SellingPricePerUnit,
			ExpiryDate:  b.ExpiryDate,
		})
		remaining -= take
	}

	if remaining > 0 {
		e.rollback(res)
		return nil, &domain.InsufficientStockError{
			Requested: quantity,
			Available: quantity - remaining,
		}
	}
	return res, nil
}

// Release devuelve al disponible todo lo apartado por la reserva. Es
// idempotente: liberar dos veces, o liberar sobre un lote dado de baja
// entre medias, nunca falla ni deja reservas negativas.
func (e *ReservationEngine) Release(res *Reservation) error {
	if res == nil {
		return nil
	}
	var firstErr error
	for _, line := range res.Lines {
		err := e.batches.ApplyReservationDelta(line.BatchID, -line.Quantity)
		if err == nil || errors.Is(err, domain.ErrBatchNotFound) {
			continue
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// rollback revierte los deltas ya aplicados de una reserva a medio construir.
func (e *ReservationEngine) rollback(res *Reservation) {
	_ = e.Release(res)
}

// Confirm convierte la reserva en salida definitiva de stock dentro de una
// transacción propia. Ver ConfirmInTx.
func (e *ReservationEngine) Confirm(ctx context.Context, res *Reservation, reference string, userID int64) error {
	return e.tx.Run(ctx, func(r TxRepos) error {
		return e.ConfirmInTx(res, reference, userID, r.Batches, r.Movements)
	})
}

// ConfirmInTx descuenta cada línea de la reserva del lote correspondiente y
// registra el movimiento de venta, usando repositorios ya ligados a una
// transacción (para integrarse con el cierre de venta del POS).
//
// Si un lote no refleja la reserva esperada, la deducción se rechaza con
// *domain.InvalidStateError y la transacción completa se revierte. Ese estado
// indica corrupción del libro de lotes: se reporta siempre, nunca se corrige
// en silencio.
func (e *ReservationEngine) ConfirmInTx(res *Reservation, reference string, userID int64, batches repository.BatchRepository, movements repository.StockMovementRepository) error {
	if res == nil || len(res.Lines) == 0 {
		return domain.ErrInvalidInput
	}
	txID := uuid.NewString()
	for _, line := range res.Lines {
		if err := batches.ApplySaleDeduction(line.BatchID, line.Quantity); err != nil {
			return err
		}
		mov := &entity.StockMovement{
			TransactionID: txID,
			ProductID:     res.ProductID,
			BatchID:       line.BatchID,
			Type:          entity.MovementTypeSale,
			Quantity:      -line.Quantity,
			Reference:     reference,
			UserID:        userID,
		}
		if err := movements.Create(mov); err != nil {
			return err
		}
	}
	return nil
}
