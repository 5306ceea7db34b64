package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

func seedProductWithBatches(ledger *memLedger) (b1, b2, b3 *entity.Batch) {
	ledger.addProduct(&entity.Product{ID: 1, SKU: "AMX-500", Name: "Amoxicilina 500mg", SellingPrice: dec("12.50"), IsActive: true})
	// Tres lotes del mismo producto con vencimientos escalonados.
	b1 = ledger.addBatch(&entity.Batch{ProductID: 1, BatchNumber: "L-001", CurrentQuantity: 10, SellingPricePerUnit: dec("12.50"), ExpiryDate: daysFromNow(15)})
	b2 = ledger.addBatch(&entity.Batch{ProductID: 1, BatchNumber: "L-002", CurrentQuantity: 20, SellingPricePerUnit: dec("12.50"), ExpiryDate: daysFromNow(60)})
	b3 = ledger.addBatch(&entity.Batch{ProductID: 1, BatchNumber: "L-003", CurrentQuantity: 30, SellingPricePerUnit: dec("12.50"), ExpiryDate: daysFromNow(180)})
	return b1, b2, b3
}

func TestReserve_ConsumeUnSoloLote(t *testing.T) {
	ledger := newMemLedger()
	b1, _, _ := seedProductWithBatches(ledger)
	engine := NewReservationEngine(ledger, &memTxRunner{ledger: ledger})

	res, err := engine.Reserve(context.Background(), 1, 8, repository.PolicyFIFO)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, b1.ID, res.Lines[0].BatchID)
	assert.Equal(t, 8, res.Lines[0].Quantity)

	got, _ := ledger.GetByID(b1.ID)
	assert.Equal(t, 8, got.ReservedQuantity)
	assert.Equal(t, 10, got.CurrentQuantity, "reservar no descuenta stock")
}

func TestReserve_FIFOConsumeElMasProximoAVencerPrimero(t *testing.T) {
	ledger := newMemLedger()
	b1, b2, _ := seedProductWithBatches(ledger)
	engine := NewReservationEngine(ledger, &memTxRunner{ledger: ledger})

	// 25 unidades: agota el lote a 15 días (10) y toma 15 del siguiente.
	res, err := engine.Reserve(context.Background(), 1, 25, repository.PolicyFIFO)
	require.NoError(t, err)
	require.Len(t, res.Lines, 2)
	assert.Equal(t, b1.ID, res.Lines[0].BatchID)
	assert.Equal(t, 10, res.Lines[0].Quantity)
	assert.Equal(t, b2.ID, res.Lines[1].BatchID)
	assert.Equal(t, 15, res.Lines[1].Quantity)
}

func TestReserve_LIFOConsumeElMasLejanoPrimero(t *testing.T) {
	ledger := newMemLedger()
	_, _, b3 := seedProductWithBatches(ledger)
	engine := NewReservationEngine(ledger, &memTxRunner{ledger: ledger})

	res, err := engine.Reserve(context.Background(), 1, 5, repository.PolicyLIFO)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, b3.ID, res.Lines[0].BatchID)
}

func TestReserve_InsuficienteRevierteTodo(t *testing.T) {
	ledger := newMemLedger()
	b1, b2, b3 := seedProductWithBatches(ledger)
	engine := NewReservationEngine(ledger, &memTxRunner{ledger: ledger})

	// Disponible total: 60. Pedir 61 debe fallar sin dejar nada reservado.
	_, err := engine.Reserve(context.Background(), 1, 61, repository.PolicyFIFO)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 61, insufficient.Requested)
	assert.Equal(t, 60, insufficient.Available)

	for _, id := range []int64{b1.ID, b2.ID, b3.ID} {
		got, _ := ledger.GetByID(id)
		assert.Zero(t, got.ReservedQuantity, "lote %d debe quedar sin reservas", id)
	}
}

func TestReserve_IgnoraVencidosYSinDisponible(t *testing.T) {
	ledger := newMemLedger()
	ledger.addProduct(&entity.Product{ID: 1, Name: "Ibuprofeno", IsActive: true})
	expired := ledger.addBatch(&entity.Batch{ProductID: 1, BatchNumber: "V-001", CurrentQuantity: 50, ExpiryDate: daysFromNow(-1)})
	full := ledger.addBatch(&entity.Batch{ProductID: 1, BatchNumber: "R-001", CurrentQuantity: 10, ReservedQuantity: 10, ExpiryDate: daysFromNow(30)})
	ok := ledger.addBatch(&entity.Batch{ProductID: 1, BatchNumber: "B-001", CurrentQuantity: 10, ExpiryDate: daysFromNow(90)})
	engine := NewReservationEngine(ledger, &memTxRunner{ledger: ledger})

	res, err := engine.Reserve(context.Background(), 1, 5, repository.PolicyFIFO)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, ok.ID, res.Lines[0].BatchID)

	gotExpired, _ := ledger.GetByID(expired.ID)
	assert.Zero(t, gotExpired.ReservedQuantity)
	gotFull, _ := ledger.GetByID(full.ID)
	assert.Equal(t, 10, gotFull.ReservedQuantity)
}

func TestReserve_SaltaLoteEnConflictoYSigue(t *testing.T) {
	ledger := newMemLedger()
	b1, b2, _ := seedProductWithBatches(ledger)
	ledger.failDeltaForBatch = b1.ID // otro proceso se adelantó en ese lote
	engine := NewReservationEngine(ledger, &memTxRunner{ledger: ledger})

	res, err := engine.Reserve(context.Background(), 1, 5, repository.PolicyFIFO)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, b2.ID, res.Lines[0].BatchID)
}

func TestReserve_CantidadInvalida(t *testing.T) {
	ledger := newMemLedger()
	engine := NewReservationEngine(ledger, &memTxRunner{ledger: ledger})

	_, err := engine.Reserve(context.Background(), 1, 0, repository.PolicyFIFO)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = engine.Reserve(context.Background(), 1, -3, repository.PolicyFIFO)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRelease_DevuelveElDisponible(t *testing.T) {
	ledger := newMemLedger()
	b1, _, _ := seedProductWithBatches(ledger)
	engine := NewReservationEngine(ledger, &memTxRunner{ledger: ledger})

	res, err := engine.Reserve(context.Background(), 1, 8, repository.PolicyFIFO)
	require.NoError(t, err)
	require.NoError(t, engine.Release(res))

	got, _ := ledger.GetByID(b1.ID)
	assert.Zero(t, got.ReservedQuantity)
	assert.Equal(t, 10, got.CurrentQuantity)
}

func TestRelease_EsIdempotente(t *testing.T) {
	ledger := newMemLedger()
	b1, _, _ := seedProductWithBatches(ledger)
	engine := NewReservationEngine(ledger, &memTxRunner{ledger: ledger})

	res, err := engine.Reserve(context.Background(), 1, 8, repository.PolicyFIFO)
	require.NoError(t, err)

	require.NoError(t, engine.Release(res))
	require.NoError(t, engine.Release(res), "liberar dos veces no debe fallar")

	got, _ := ledger.GetByID(b1.ID)
	assert.Zero(t, got.ReservedQuantity, "la reserva nunca queda negativa")
}

func TestRelease_LoteDadoDeBajaNoFalla(t *testing.T) {
	ledger := newMemLedger()
	b1, _, _ := seedProductWithBatches(ledger)
	engine := NewReservationEngine(ledger, &memTxRunner{ledger: ledger})

	res, err := engine.Reserve(context.Background(), 1, 8, repository.PolicyFIFO)
	require.NoError(t, err)

	// El lote se retira (vencimiento forzado) con la reserva viva.
	_, err = ledger.MarkExpired(b1.ID)
	require.NoError(t, err)

	assert.NoError(t, engine.Release(res))
}

func TestConfirm_DescuentaStockYRegistraVenta(t *testing.T) {
	ledger := newMemLedger()
	b1, b2, _ := seedProductWithBatches(ledger)
	engine := NewReservationEngine(ledger, &memTxRunner{ledger: ledger})

	res, err := engine.Reserve(context.Background(), 1, 15, repository.PolicyFIFO)
	require.NoError(t, err)
	require.NoError(t, engine.Confirm(context.Background(), res, "POS202608310001", 7))

	got1, _ := ledger.GetByID(b1.ID)
	assert.Zero(t, got1.CurrentQuantity)
	assert.Zero(t, got1.ReservedQuantity)
	got2, _ := ledger.GetByID(b2.ID)
	assert.Equal(t, 15, got2.CurrentQuantity)
	assert.Zero(t, got2.ReservedQuantity)

	sales := ledger.movementsOfType(entity.MovementTypeSale)
	require.Len(t, sales, 2)
	assert.Equal(t, -10, sales[0].Quantity)
	assert.Equal(t, -5, sales[1].Quantity)
	assert.Equal(t, sales[0].TransactionID, sales[1].TransactionID, "las líneas comparten transacción")
	assert.Equal(t, "POS202608310001", sales[0].Reference)
	assert.Equal(t, int64(7), sales[0].UserID)
}

func TestConfirm_EstadoInconsistenteEsFatal(t *testing.T) {
	ledger := newMemLedger()
	b1, _, _ := seedProductWithBatches(ledger)
	engine := NewReservationEngine(ledger, &memTxRunner{ledger: ledger})

	res, err := engine.Reserve(context.Background(), 1, 8, repository.PolicyFIFO)
	require.NoError(t, err)

	// Alguien pisó la reserva por fuera del motor.
	require.NoError(t, ledger.ApplyReservationDelta(b1.ID, -8))

	err = engine.Confirm(context.Background(), res, "POS202608310002", 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	var invalid *domain.InvalidStateError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, b1.ID, invalid.BatchID)
	assert.Equal(t, 8, invalid.Expected)
	assert.Zero(t, invalid.Actual)
}
