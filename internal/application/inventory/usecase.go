package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// UseCase operaciones de inventario por lotes: recepción, ajustes por conteo
// físico, historial de movimientos y sugerencias de reposición.
type UseCase struct {
	batches   repository.BatchRepository
	movements repository.StockMovementRepository
	products  repository.ProductRepository
	tx        TxRunner
}

func NewUseCase(batches repository.BatchRepository, movements repository.StockMovementRepository, products repository.ProductRepository, tx TxRunner) *UseCase {
	return &UseCase{batches: batches, movements: movements, products: products, tx: tx}
}

// RegisterBatch recibe un lote nuevo y deja el movimiento de compra en la
// misma transacción.
func (uc *UseCase) RegisterBatch(ctx context.Context, req dto.CreateBatchRequest, userID int64) (*entity.Batch, error) {
	if req.ProductID <= 0 || req.BatchNumber == "" || req.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if req.ExpiryDate.Before(time.Now()) {
		return nil, fmt.Errorf("fecha de vencimiento en el pasado: %w", domain.ErrInvalidInput)
	}

	product, err := uc.products.GetByID(req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, domain.ErrConflict
	}

	batch := &entity.Batch{
		ProductID:           req.ProductID,
		BatchNumber:         req.BatchNumber,
		LotNumber:           req.LotNumber,
		InitialQuantity:     req.Quantity,
		CurrentQuantity:     req.Quantity,
		CostPerUnit:         req.CostPerUnit,
		SellingPricePerUnit: req.SellingPrice,
		ManufactureDate:     req.ManufactureDate,
		ExpiryDate:          req.ExpiryDate,
		ReceivedDate:        time.Now(),
		SupplierName:        req.SupplierName,
		InvoiceNumber:       req.SupplierInvoice,
		IsActive:            true,
		Notes:               req.Notes,
	}
	if batch.SellingPricePerUnit.IsZero() {
		batch.SellingPricePerUnit = product.SellingPrice
	}

	err = uc.tx.Run(ctx, func(r TxRepos) error {
		if err := r.Batches.Create(batch); err != nil {
			return err
		}
		cost := req.CostPerUnit
		mov := &entity.StockMovement{
			TransactionID: uuid.NewString(),
			ProductID:     batch.ProductID,
			BatchID:       batch.ID,
			Type:          entity.MovementTypePurchase,
			Quantity:      req.Quantity,
			UnitCost:      &cost,
			Reference:     req.SupplierInvoice,
			Notes:         req.Notes,
			UserID:        userID,
		}
		return r.Movements.Create(mov)
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// AdjustStock fija la cantidad actual de un lote tras un conteo físico y
// registra la diferencia como movimiento de ajuste.
func (uc *UseCase) AdjustStock(ctx context.Context, batchID int64, req dto.AdjustStockRequest, userID int64) (*entity.Batch, error) {
	if req.NewQuantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	batch, err := uc.batches.GetByID(batchID)
	if err != nil {
		return nil, err
	}
	if !batch.IsActive || batch.IsExpired {
		return nil, domain.ErrBatchInactive
	}
	if req.NewQuantity < batch.ReservedQuantity {
		return nil, fmt.Errorf("la nueva cantidad deja reservas descubiertas: %w", domain.ErrConflict)
	}

	diff := req.NewQuantity - batch.CurrentQuantity
	if diff == 0 {
		return batch, nil
	}

	err = uc.tx.Run(ctx, func(r TxRepos) error {
		if err := r.Batches.AdjustQuantity(batchID, req.NewQuantity); err != nil {
			return err
		}
		mov := &entity.StockMovement{
			TransactionID: uuid.NewString(),
			ProductID:     batch.ProductID,
			BatchID:       batchID,
			Type:          entity.MovementTypeAdjustment,
			Quantity:      diff,
			Notes:         req.Reason,
			UserID:        userID,
		}
		return r.Movements.Create(mov)
	})
	if err != nil {
		return nil, err
	}
	batch.CurrentQuantity = req.NewQuantity
	return batch, nil
}

// GetBatch devuelve un lote por id.
func (uc *UseCase) GetBatch(batchID int64) (*entity.Batch, error) {
	return uc.batches.GetByID(batchID)
}

// BatchesByProduct lista los lotes de un producto.
func (uc *UseCase) BatchesByProduct(productID int64, activeOnly bool) ([]*entity.Batch, error) {
	return uc.batches.ListByProduct(productID, activeOnly, false)
}

// AvailableStock devuelve el stock vendible del producto (actual - reservado
// sobre lotes activos no vencidos).
func (uc *UseCase) AvailableStock(ctx context.Context, productID int64) (int, error) {
	return uc.batches.AvailableStock(ctx, productID)
}

// Movements devuelve el historial de movimientos según filtro.
func (uc *UseCase) Movements(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return uc.movements.List(ctx, filter)
}

// ReplenishmentSuggestions lista los productos bajo su punto de reorden,
// ordenados del déficit relativo mayor al menor. El stock ideal se estima en
// 1.5x el punto de reorden.
func (uc *UseCase) ReplenishmentSuggestions(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	items, err := uc.products.ListBelowReorderPoint(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ReplenishmentSuggestionDTO, 0, len(items))
	for _, it := range items {
		ideal := it.ReorderPoint + it.ReorderPoint/2
		orderQty := ideal - it.CurrentStock
		if orderQty <= 0 {
			continue
		}
		out = append(out, dto.ReplenishmentSuggestionDTO{
			ProductID:          it.ProductID,
			SKU:                it.SKU,
			ProductName:        it.ProductName,
			CurrentStock:       it.CurrentStock,
			ReorderPoint:       it.ReorderPoint,
			IdealStock:         ideal,
			SuggestedOrderQty:  orderQty,
			UnitCost:           it.UnitCost,
			EstimatedOrderCost: it.UnitCost.Mul(decimal.NewFromInt(int64(orderQty))),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		di := deficitRatio(out[i].CurrentStock, out[i].ReorderPoint)
		dj := deficitRatio(out[j].CurrentStock, out[j].ReorderPoint)
		if di != dj {
			return di > dj
		}
		return out[i].ProductID < out[j].ProductID
	})
	for i := range out {
		out[i].Priority = i + 1
	}
	return out, nil
}

// deficitRatio qué tan por debajo del punto de reorden está el producto
// (1 = sin stock, 0 = justo en el punto).
func deficitRatio(current, reorder int) float64 {
	if reorder <= 0 {
		return 0
	}
	return float64(reorder-current) / float64(reorder)
}
