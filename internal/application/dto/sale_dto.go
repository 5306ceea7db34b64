package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItemRequest línea del carrito en una venta POS.
type CartItemRequest struct {
	ProductID          int64            `json:"product_id"`
	Quantity           int              `json:"quantity"`
	DiscountAmount     *decimal.Decimal `json:"discount_amount,omitempty"`
	PrescriptionNumber string           `json:"prescription_number,omitempty"`
	PrescriberName     string           `json:"prescriber_name,omitempty"`
	DaysSupply         int              `json:"days_supply,omitempty"`
}

// ProcessSaleRequest body para POST /api/pos/sales.
type ProcessSaleRequest struct {
	Items            []CartItemRequest `json:"items"`
	CustomerID       *int64            `json:"customer_id,omitempty"`
	PaymentMethod    string            `json:"payment_method"`
	AmountPaid       decimal.Decimal   `json:"amount_paid"`
	PaymentReference string            `json:"payment_reference,omitempty"`
	DiscountAmount   *decimal.Decimal  `json:"discount_amount,omitempty"`
	Notes            string            `json:"notes,omitempty"`
}

// QuoteRequest body para POST /api/pos/quote: calcula totales sin tocar stock.
type QuoteRequest struct {
	Items          []CartItemRequest `json:"items"`
	DiscountAmount *decimal.Decimal  `json:"discount_amount,omitempty"`
}

// QuoteResponse totales estimados del carrito.
type QuoteResponse struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
	ItemCount      int             `json:"item_count"`
}

// SaleItemResponse línea de venta persistida.
type SaleItemResponse struct {
	ProductID      int64           `json:"product_id"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	LineTotal      decimal.Decimal `json:"line_total"`
	BatchID        *int64          `json:"batch_id,omitempty"`
	BatchNumber    string          `json:"batch_number,omitempty"`
}

// SaleResponse venta completada.
type SaleResponse struct {
	ID             int64              `json:"id"`
	SaleNumber     string             `json:"sale_number"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	TaxAmount      decimal.Decimal    `json:"tax_amount"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	TotalAmount    decimal.Decimal    `json:"total_amount"`
	PaymentMethod  string             `json:"payment_method"`
	AmountPaid     decimal.Decimal    `json:"amount_paid"`
	ChangeGiven    decimal.Decimal    `json:"change_given"`
	Status         string             `json:"status"`
	CustomerID     *int64             `json:"customer_id,omitempty"`
	CashierID      int64              `json:"cashier_id"`
	Items          []SaleItemResponse `json:"items"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// CustomerRequest body para crear cliente.
type CustomerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// CustomerResponse respuesta pública de cliente.
type CustomerResponse struct {
	ID            int64           `json:"id"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	Email         string          `json:"email,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	LoyaltyPoints int             `json:"loyalty_points"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	LastVisit     *time.Time      `json:"last_visit,omitempty"`
	IsActive      bool            `json:"is_active"`
}
