package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto farmacéutico. Los precios por lote pueden
// diferir del precio de lista; el stock vive en los lotes (Batch), nunca aquí.
type Product struct {
	ID          int64
	SKU         string // código único
	Barcode     string // EAN/UPC, opcional
	NDCNumber   string // National Drug Code, opcional
	Name        string
	GenericName string
	BrandName   string
	Description string
	DosageForm  string // tableta, cápsula, jarabe, etc.
	Strength    string // 500mg, 10ml, etc.
	Manufacturer string

	CostPrice        decimal.Decimal // costo de referencia
	SellingPrice     decimal.Decimal // precio de venta de lista
	MarkupPercentage decimal.Decimal

	MinStockLevel int
	MaxStockLevel int
	ReorderPoint  int

	RequiresPrescription        bool
	IsControlledSubstance       bool
	ControlledSubstanceSchedule string // II, III, IV...

	CategoryID     int64
	IsActive       bool
	IsDiscontinued bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductMeta es la vista mínima de producto que necesita el motor de
// vencimientos: evita recorrer el agregado completo en cada snapshot.
type ProductMeta struct {
	ID           int64
	Name         string
	IsActive     bool
	IsControlled bool
}
