package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	SKU          string `json:"sku"`
	Barcode      string `json:"barcode,omitempty"`
	NDCNumber    string `json:"ndc_number,omitempty"`
	Name         string `json:"name"`
	GenericName  string `json:"generic_name,omitempty"`
	BrandName    string `json:"brand_name,omitempty"`
	Description  string `json:"description,omitempty"`
	DosageForm   string `json:"dosage_form,omitempty"`
	Strength     string `json:"strength,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`

	CostPrice        decimal.Decimal  `json:"cost_price"`
	SellingPrice     decimal.Decimal  `json:"selling_price"`
	MarkupPercentage *decimal.Decimal `json:"markup_percentage,omitempty"`

	MinStockLevel int `json:"min_stock_level,omitempty"`
	MaxStockLevel int `json:"max_stock_level,omitempty"`
	ReorderPoint  int `json:"reorder_point,omitempty"`

	RequiresPrescription        bool   `json:"requires_prescription,omitempty"`
	IsControlledSubstance       bool   `json:"is_controlled_substance,omitempty"`
	ControlledSubstanceSchedule string `json:"controlled_substance_schedule,omitempty"`

	CategoryID int64 `json:"category_id,omitempty"`
}

// UpdateProductRequest body para PUT /api/products/:id. Campos nil no se tocan.
type UpdateProductRequest struct {
	Name         *string `json:"name,omitempty"`
	GenericName  *string `json:"generic_name,omitempty"`
	BrandName    *string `json:"brand_name,omitempty"`
	Barcode      *string `json:"barcode,omitempty"`
	Description  *string `json:"description,omitempty"`
	DosageForm   *string `json:"dosage_form,omitempty"`
	Strength     *string `json:"strength,omitempty"`
	Manufacturer *string `json:"manufacturer,omitempty"`

	CostPrice    *decimal.Decimal `json:"cost_price,omitempty"`
	SellingPrice *decimal.Decimal `json:"selling_price,omitempty"`

	MinStockLevel *int `json:"min_stock_level,omitempty"`
	MaxStockLevel *int `json:"max_stock_level,omitempty"`
	ReorderPoint  *int `json:"reorder_point,omitempty"`

	RequiresPrescription  *bool `json:"requires_prescription,omitempty"`
	IsControlledSubstance *bool `json:"is_controlled_substance,omitempty"`

	CategoryID *int64 `json:"category_id,omitempty"`
	IsActive   *bool  `json:"is_active,omitempty"`
}

// ProductResponse respuesta pública de producto.
type ProductResponse struct {
	ID                    int64           `json:"id"`
	SKU                   string          `json:"sku"`
	Barcode               string          `json:"barcode,omitempty"`
	NDCNumber             string          `json:"ndc_number,omitempty"`
	Name                  string          `json:"name"`
	GenericName           string          `json:"generic_name,omitempty"`
	BrandName             string          `json:"brand_name,omitempty"`
	Description           string          `json:"description,omitempty"`
	DosageForm            string          `json:"dosage_form,omitempty"`
	Strength              string          `json:"strength,omitempty"`
	Manufacturer          string          `json:"manufacturer,omitempty"`
	CostPrice             decimal.Decimal `json:"cost_price"`
	SellingPrice          decimal.Decimal `json:"selling_price"`
	MinStockLevel         int             `json:"min_stock_level"`
	MaxStockLevel         int             `json:"max_stock_level,omitempty"`
	ReorderPoint          int             `json:"reorder_point"`
	RequiresPrescription  bool            `json:"requires_prescription"`
	IsControlledSubstance bool            `json:"is_controlled_substance"`
	CategoryID            int64           `json:"category_id,omitempty"`
	IsActive              bool            `json:"is_active"`
	IsDiscontinued        bool            `json:"is_discontinued"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// CategoryRequest body para crear categoría.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CategoryResponse respuesta pública de categoría.
type CategoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un SKU bajo su
// punto de reorden.
type ReplenishmentSuggestionDTO struct {
	ProductID          int64           `json:"product_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	CurrentStock       int             `json:"current_stock"`
	ReorderPoint       int             `json:"reorder_point"`
	IdealStock         int             `json:"ideal_stock"`          // ReorderPoint * 1.5
	SuggestedOrderQty  int             `json:"suggested_order_qty"`  // IdealStock - CurrentStock
	UnitCost           decimal.Decimal `json:"unit_cost"`
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	Priority           int             `json:"priority"`             // 1 = más urgente
}
