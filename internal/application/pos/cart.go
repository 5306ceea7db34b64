// Package pos implementa el punto de venta: carrito, cierre de venta sobre
// reservas todo-o-nada, fidelización y recibo.
package pos

import "github.com/shopspring/decimal"

// CartItem línea de carrito ya validada contra el catálogo.
type CartItem struct {
	ProductID   int64
	ProductName string
	SKU         string

	Quantity       int
	UnitPrice      decimal.Decimal
	DiscountAmount decimal.Decimal

	PrescriptionNumber string
	PrescriberName     string
	DaysSupply         int
}

// LineTotal precio por cantidad menos el descuento de línea, nunca negativo.
func (i CartItem) LineTotal() decimal.Decimal {
	total := i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity))).Sub(i.DiscountAmount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// Cart carrito de venta. Valor inmutable una vez construido: los totales se
// derivan siempre de las líneas, nunca se guardan.
type Cart struct {
	Items          []CartItem
	CustomerID     *int64
	DiscountAmount decimal.Decimal // descuento global sobre el subtotal
	TaxRate        decimal.Decimal // ej. 0.15
}

// ItemCount unidades totales del carrito.
func (c Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Subtotal suma de los totales de línea, antes del descuento global.
func (c Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.Items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// TaxableBase subtotal menos descuento global, nunca negativo.
func (c Cart) TaxableBase() decimal.Decimal {
	base := c.Subtotal().Sub(c.DiscountAmount)
	if base.IsNegative() {
		return decimal.Zero
	}
	return base
}

// TaxAmount impuesto sobre la base gravable, redondeado a 2 decimales.
func (c Cart) TaxAmount() decimal.Decimal {
	return c.TaxableBase().Mul(c.TaxRate).Round(2)
}

// Total importe final a cobrar.
func (c Cart) Total() decimal.Decimal {
	return c.TaxableBase().Add(c.TaxAmount())
}
