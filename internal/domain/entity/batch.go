package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch representa un lote recibido de un producto, con su propia fecha de
// vencimiento y precios. Invariantes: 0 <= Reserved <= Current <= Initial;
// un lote vencido (IsExpired) siempre tiene Current = 0.
type Batch struct {
	ID        int64
	ProductID int64

	BatchNumber string
	LotNumber   string

	InitialQuantity  int // inmutable después de la recepción
	CurrentQuantity  int
	ReservedQuantity int

	CostPerUnit         decimal.Decimal
	SellingPricePerUnit decimal.Decimal

	ManufactureDate *time.Time
	ExpiryDate      time.Time
	ReceivedDate    time.Time

	SupplierName        string
	PurchaseOrderNumber string
	InvoiceNumber       string

	IsActive  bool
	IsExpired bool
	Notes     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Available devuelve la cantidad reservable (actual menos reservada).
func (b *Batch) Available() int {
	return b.CurrentQuantity - b.ReservedQuantity
}

// DaysUntilExpiry devuelve los días hasta el vencimiento respecto a today
// (negativo si ya venció). Se compara por fecha calendario, no por hora.
func (b *Batch) DaysUntilExpiry(today time.Time) int {
	expiry := dateOnly(b.ExpiryDate)
	ref := dateOnly(today)
	return int(expiry.Sub(ref).Hours() / 24)
}

// ExpiredAt indica si el lote está vencido respecto a today.
func (b *Batch) ExpiredAt(today time.Time) bool {
	return dateOnly(b.ExpiryDate).Before(dateOnly(today))
}

// EstimatedValue devuelve el valor de venta del stock actual del lote.
func (b *Batch) EstimatedValue() decimal.Decimal {
	return b.SellingPricePerUnit.Mul(decimal.NewFromInt(int64(b.CurrentQuantity)))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
