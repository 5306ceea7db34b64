package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados en el punto de venta.
const (
	PaymentCash        = "cash"
	PaymentCreditCard  = "credit_card"
	PaymentDebitCard   = "debit_card"
	PaymentInsurance   = "insurance"
	PaymentCheck       = "check"
	PaymentGiftCard    = "gift_card"
	PaymentStoreCredit = "store_credit"
)

// Estados de una venta.
const (
	SaleStatusPending   = "pending"
	SaleStatusCompleted = "completed"
	SaleStatusCancelled = "cancelled"
	SaleStatusRefunded  = "refunded"
)

// Sale representa una transacción del punto de venta.
type Sale struct {
	ID         int64
	SaleNumber string // POSyyyymmddNNNN, único

	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal

	PaymentMethod    string
	PaymentReference string
	AmountPaid       decimal.Decimal
	ChangeGiven      decimal.Decimal

	Status string
	Notes  string

	CustomerID *int64
	CashierID  int64

	CreatedAt   time.Time
	CompletedAt *time.Time

	Items []SaleItem
}

// SaleItem es una línea de venta. Guarda el lote del que salió el stock para
// trazabilidad (recalls, sustancias controladas).
type SaleItem struct {
	ID             int64
	SaleID         int64
	ProductID      int64
	Quantity       int
	UnitPrice      decimal.Decimal
	DiscountAmount decimal.Decimal
	LineTotal      decimal.Decimal

	PrescriptionNumber string
	PrescriberName     string
	DaysSupply         int

	BatchID     *int64
	BatchNumber string

	CreatedAt time.Time
}
