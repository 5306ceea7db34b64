// Package expiry orquesta el motor de riesgo de vencimiento sobre el libro de
// lotes: alertas priorizadas, resumen agregado, panel y baja de lotes vencidos.
package expiry

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/application/inventory"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	domexpiry "github.com/jhoicas/Farmacia-api/internal/domain/expiry"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// AlertOptions filtros de la consulta de alertas.
type AlertOptions struct {
	// Levels vacío = todos los niveles.
	Levels []domexpiry.AlertLevel
	// ProductID 0 = todos los productos.
	ProductID int64
	// MinQuantity excluye lotes con menos stock que este mínimo.
	MinQuantity int
	// IncludeExpired incluye lotes ya vencidos que aún figuran con stock.
	IncludeExpired bool
	// Limit 0 = sin límite.
	Limit int
}

// UseCase motor de vencimientos: clasifica, puntúa y agrega sobre un snapshot
// inmutable del libro de lotes. Nunca modifica stock salvo en MarkExpired.
type UseCase struct {
	batches    repository.BatchRepository
	tx         inventory.TxRunner
	thresholds domexpiry.Thresholds
}

func NewUseCase(batches repository.BatchRepository, tx inventory.TxRunner, thresholds domexpiry.Thresholds) *UseCase {
	return &UseCase{batches: batches, tx: tx, thresholds: thresholds}
}

// Alerts devuelve las alertas de vencimiento ordenadas por puntaje
// descendente; a igual puntaje, el más próximo a vencer primero.
func (uc *UseCase) Alerts(ctx context.Context, opts AlertOptions) ([]dto.ExpiryAlertDTO, error) {
	snapshot, err := uc.batches.ListActiveWithProduct(ctx)
	if err != nil {
		return nil, err
	}
	today := time.Now()

	wanted := make(map[domexpiry.AlertLevel]bool, len(opts.Levels))
	for _, lv := range opts.Levels {
		wanted[lv] = true
	}

	alerts := make([]dto.ExpiryAlertDTO, 0, len(snapshot))
	for _, row := range snapshot {
		b := row.Batch
		if !b.IsActive || !row.Product.IsActive || b.CurrentQuantity <= 0 {
			continue
		}
		if b.CurrentQuantity < opts.MinQuantity {
			continue
		}
		if opts.ProductID != 0 && b.ProductID != opts.ProductID {
			continue
		}
		days := b.DaysUntilExpiry(today)
		if days < 0 && !opts.IncludeExpired {
			continue
		}
		level := domexpiry.Classify(days, uc.thresholds)
		if len(wanted) > 0 && !wanted[level] {
			continue
		}
		alerts = append(alerts, dto.ExpiryAlertDTO{
			BatchID:           b.ID,
			ProductID:         row.Product.ID,
			ProductName:       row.Product.Name,
			BatchNumber:       b.BatchNumber,
			ExpiryDate:        b.ExpiryDate,
			DaysUntilExpiry:   days,
			AlertLevel:        string(level),
			CurrentQuantity:   b.CurrentQuantity,
			EstimatedValue:    b.EstimatedValue(),
			PriorityScore:     domexpiry.PriorityScore(days, b.CurrentQuantity, b.SellingPricePerUnit, row.Product.IsControlled),
			RecommendedAction: domexpiry.RecommendedAction(level, b.CurrentQuantity),
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].PriorityScore != alerts[j].PriorityScore {
			return alerts[i].PriorityScore > alerts[j].PriorityScore
		}
		if alerts[i].DaysUntilExpiry != alerts[j].DaysUntilExpiry {
			return alerts[i].DaysUntilExpiry < alerts[j].DaysUntilExpiry
		}
		return alerts[i].BatchID < alerts[j].BatchID
	})

	if opts.Limit > 0 && len(alerts) > opts.Limit {
		alerts = alerts[:opts.Limit]
	}
	return alerts, nil
}

// Summary agrega el riesgo por ventanas de vencimiento. Las ventanas son
// acumulativas a propósito: "vence dentro de 30 días" incluye lo que vence
// dentro de 7, porque responden a la pregunta operativa "¿cuánto está en
// riesgo dentro de N días?". Los vencidos van en su propio bucket.
func (uc *UseCase) Summary(ctx context.Context) (dto.ExpirySummaryDTO, error) {
	snapshot, err := uc.batches.ListActiveWithProduct(ctx)
	if err != nil {
		return dto.ExpirySummaryDTO{}, err
	}
	today := time.Now()

	out := dto.ExpirySummaryDTO{GeneratedAt: today}
	zero := decimal.Zero
	out.TotalValue = zero
	out.Breakdown.Critical.Value, out.Breakdown.High.Value = zero, zero
	out.Breakdown.Medium.Value, out.Breakdown.Low.Value, out.Expired.Value = zero, zero, zero

	windows := []struct {
		maxDays int
		bucket  *dto.ExpiryBucketDTO
	}{
		{uc.thresholds.CriticalDays, &out.Breakdown.Critical},
		{uc.thresholds.HighDays, &out.Breakdown.High},
		{uc.thresholds.MediumDays, &out.Breakdown.Medium},
		{uc.thresholds.LowDays, &out.Breakdown.Low},
	}

	for _, row := range snapshot {
		b := row.Batch
		if !b.IsActive || !row.Product.IsActive || b.CurrentQuantity <= 0 {
			continue
		}
		days := b.DaysUntilExpiry(today)
		value := b.EstimatedValue()

		if days < 0 {
			out.Expired.Batches++
			out.Expired.Quantity += b.CurrentQuantity
			out.Expired.Value = out.Expired.Value.Add(value)
			continue
		}

		out.TotalBatches++
		out.TotalQuantity += b.CurrentQuantity
		out.TotalValue = out.TotalValue.Add(value)
		for _, w := range windows {
			if days <= w.maxDays {
				w.bucket.Batches++
				w.bucket.Quantity += b.CurrentQuantity
				w.bucket.Value = w.bucket.Value.Add(value)
			}
		}
	}
	return out, nil
}

// Dashboard combina resumen, alertas más urgentes y recomendaciones operativas.
func (uc *UseCase) Dashboard(ctx context.Context) (dto.ExpiryDashboardDTO, error) {
	summary, err := uc.Summary(ctx)
	if err != nil {
		return dto.ExpiryDashboardDTO{}, err
	}
	top, err := uc.Alerts(ctx, AlertOptions{
		Levels: []domexpiry.AlertLevel{domexpiry.LevelCritical, domexpiry.LevelHigh},
		Limit:  10,
	})
	if err != nil {
		return dto.ExpiryDashboardDTO{}, err
	}

	var recs []string
	if summary.Expired.Batches > 0 {
		recs = append(recs, fmt.Sprintf("Retirar %d lote(s) ya vencido(s) del inventario", summary.Expired.Batches))
	}
	if summary.Breakdown.Critical.Batches > 0 {
		recs = append(recs, fmt.Sprintf("Atender %d lote(s) que vencen dentro de %d días", summary.Breakdown.Critical.Batches, uc.thresholds.CriticalDays))
	}
	if summary.Breakdown.High.Batches > summary.Breakdown.Critical.Batches {
		recs = append(recs, "Planificar promociones para los lotes que vencen este mes")
	}
	if len(recs) == 0 {
		recs = append(recs, "Sin riesgo inmediato de vencimientos")
	}

	return dto.ExpiryDashboardDTO{
		Summary:         summary,
		TopAlerts:       top,
		Recommendations: recs,
	}, nil
}

// MarkExpired da de baja un lote vencido: fuerza su stock a cero y deja el
// movimiento de auditoría en la misma transacción.
func (uc *UseCase) MarkExpired(ctx context.Context, batchID, userID int64) (dto.MarkExpiredResponse, error) {
	batch, err := uc.batches.GetByID(batchID)
	if err != nil {
		return dto.MarkExpiredResponse{}, err
	}
	if !batch.ExpiredAt(time.Now()) {
		return dto.MarkExpiredResponse{}, fmt.Errorf("el lote %s aún no vence: %w", batch.BatchNumber, domain.ErrConflict)
	}

	var removed int
	err = uc.tx.Run(ctx, func(r inventory.TxRepos) error {
		removed, err = r.Batches.MarkExpired(batchID)
		if err != nil {
			return err
		}
		mov := &entity.StockMovement{
			TransactionID: uuid.NewString(),
			ProductID:     batch.ProductID,
			BatchID:       batchID,
			Type:          entity.MovementTypeExpired,
			Quantity:      -removed,
			Notes:         fmt.Sprintf("Lote %s retirado por vencimiento", batch.BatchNumber),
			UserID:        userID,
		}
		return r.Movements.Create(mov)
	})
	if err != nil {
		return dto.MarkExpiredResponse{}, err
	}
	return dto.MarkExpiredResponse{BatchID: batchID, QuantityRemoved: removed}, nil
}
