package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateBatchRequest body para POST /api/batches (ingreso de lote).
type CreateBatchRequest struct {
	ProductID       int64           `json:"product_id"`
	BatchNumber     string          `json:"batch_number"`
	LotNumber       string          `json:"lot_number,omitempty"`
	Quantity        int             `json:"quantity"`
	CostPerUnit     decimal.Decimal `json:"cost_per_unit"`
	SellingPrice    decimal.Decimal `json:"selling_price_per_unit"`
	ManufactureDate *time.Time      `json:"manufacture_date,omitempty"`
	ExpiryDate      time.Time       `json:"expiry_date"`
	SupplierName    string          `json:"supplier_name,omitempty"`
	SupplierInvoice string          `json:"supplier_invoice,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

// BatchResponse respuesta pública de lote.
type BatchResponse struct {
	ID               int64           `json:"id"`
	ProductID        int64           `json:"product_id"`
	BatchNumber      string          `json:"batch_number"`
	LotNumber        string          `json:"lot_number,omitempty"`
	InitialQuantity  int             `json:"initial_quantity"`
	CurrentQuantity  int             `json:"current_quantity"`
	ReservedQuantity int             `json:"reserved_quantity"`
	Available        int             `json:"available"`
	CostPerUnit      decimal.Decimal `json:"cost_per_unit"`
	SellingPrice     decimal.Decimal `json:"selling_price_per_unit"`
	ExpiryDate       time.Time       `json:"expiry_date"`
	ReceivedDate     time.Time       `json:"received_date"`
	SupplierName     string          `json:"supplier_name,omitempty"`
	IsActive         bool            `json:"is_active"`
	IsExpired        bool            `json:"is_expired"`
}

// AdjustStockRequest body para POST /api/batches/:id/adjust.
// NewQuantity reemplaza la cantidad actual del lote; la diferencia queda
// registrada como movimiento de ajuste.
type AdjustStockRequest struct {
	NewQuantity int    `json:"new_quantity"`
	Reason      string `json:"reason"`
}

// MovementResponse respuesta pública de movimiento de stock.
type MovementResponse struct {
	ID            int64            `json:"id"`
	TransactionID string           `json:"transaction_id"`
	ProductID     int64            `json:"product_id"`
	BatchID       int64            `json:"batch_id,omitempty"`
	Type          string           `json:"type"`
	Quantity      int              `json:"quantity"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	Reference     string           `json:"reference,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	UserID        int64            `json:"user_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ReserveStockRequest body para POST /api/inventory/reserve.
type ReserveStockRequest struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Policy    string `json:"policy,omitempty"` // fifo (default) | lifo
}

// ReservationLineDTO porción reservada sobre un lote concreto.
type ReservationLineDTO struct {
	BatchID     int64           `json:"batch_id"`
	BatchNumber string          `json:"batch_number"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ExpiryDate  time.Time       `json:"expiry_date"`
}

// ReservationResponse resultado de una reserva todo-o-nada.
type ReservationResponse struct {
	ProductID int64                `json:"product_id"`
	Requested int                  `json:"requested"`
	Lines     []ReservationLineDTO `json:"lines"`
}

// AvailableStockResponse stock disponible (actual - reservado) de un producto.
type AvailableStockResponse struct {
	ProductID int64 `json:"product_id"`
	Available int   `json:"available"`
}
