package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock (value object conceptual).
const (
	MovementTypePurchase   = "purchase"   // recepción de lote
	MovementTypeSale       = "sale"       // venta confirmada
	MovementTypeAdjustment = "adjustment" // ajuste manual
	MovementTypeReturn     = "return"     // devolución
	MovementTypeExpired    = "expired"    // baja por vencimiento
	MovementTypeDamaged    = "damaged"    // baja por daño
	MovementTypeTransfer   = "transfer"   // traslado
)

// StockMovement registra un cambio de cantidad sobre un lote para auditoría.
// Quantity es positivo para entradas y negativo para salidas.
type StockMovement struct {
	ID            int64
	TransactionID string // agrupa movimientos de una misma operación (uuid)
	ProductID     int64
	BatchID       int64
	Type          string
	Quantity      int
	UnitCost      *decimal.Decimal
	Reference     string // número de venta, orden de compra, etc.
	Notes         string
	UserID        int64
	CreatedAt     time.Time
}
