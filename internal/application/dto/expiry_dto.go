package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpiryAlertDTO alerta de vencimiento para un lote.
type ExpiryAlertDTO struct {
	BatchID           int64           `json:"batch_id"`
	ProductID         int64           `json:"product_id"`
	ProductName       string          `json:"product_name"`
	BatchNumber       string          `json:"batch_number"`
	ExpiryDate        time.Time       `json:"expiry_date"`
	DaysUntilExpiry   int             `json:"days_until_expiry"`
	AlertLevel        string          `json:"alert_level"`
	CurrentQuantity   int             `json:"current_quantity"`
	EstimatedValue    decimal.Decimal `json:"estimated_value"`
	PriorityScore     float64         `json:"priority_score"`
	RecommendedAction string          `json:"recommended_action"`
}

// ExpiryBucketDTO acumulado de lotes dentro de una ventana de vencimiento:
// cuántos lotes, cuántas unidades y cuánto valor de venta.
type ExpiryBucketDTO struct {
	Batches  int             `json:"batches"`
	Quantity int             `json:"quantity"`
	Value    decimal.Decimal `json:"value"`
}

// ExpiryBreakdownDTO desglose por nivel. Las ventanas son acumulativas: un
// lote a 5 días cuenta en critical, high, medium y low a la vez.
type ExpiryBreakdownDTO struct {
	Critical ExpiryBucketDTO `json:"critical"` // <= 7 días
	High     ExpiryBucketDTO `json:"high"`     // <= 30 días
	Medium   ExpiryBucketDTO `json:"medium"`   // <= 90 días
	Low      ExpiryBucketDTO `json:"low"`      // <= 180 días
}

// ExpirySummaryDTO resumen agregado del riesgo de vencimiento. Los vencidos
// van en su propio bucket, fuera de los totales y del desglose.
type ExpirySummaryDTO struct {
	TotalBatches  int                `json:"total_batches"`
	TotalQuantity int                `json:"total_quantity"`
	TotalValue    decimal.Decimal    `json:"total_value"`
	Breakdown     ExpiryBreakdownDTO `json:"expiry_breakdown"`
	Expired       ExpiryBucketDTO    `json:"expired"` // ya vencidos con stock
	GeneratedAt   time.Time          `json:"generated_at"`
}

// ExpiryDashboardDTO vista combinada para el panel de vencimientos.
type ExpiryDashboardDTO struct {
	Summary         ExpirySummaryDTO `json:"summary"`
	TopAlerts       []ExpiryAlertDTO `json:"top_alerts"`
	Recommendations []string         `json:"recommendations"`
}

// MarkExpiredResponse resultado de retirar un lote vencido.
type MarkExpiredResponse struct {
	BatchID         int64 `json:"batch_id"`
	QuantityRemoved int   `json:"quantity_removed"`
}
