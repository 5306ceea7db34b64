package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// ProductSearch filtros del listado/búsqueda de productos.
type ProductSearch struct {
	Query      string // busca en nombre, genérico, marca y SKU
	CategoryID int64  // 0 = todas
	ActiveOnly bool
	Limit      int
	Offset     int
}

// ReplenishmentItem producto bajo su punto de reorden con su stock agregado.
type ReplenishmentItem struct {
	ProductID    int64
	SKU          string
	ProductName  string
	CurrentStock int
	ReorderPoint int
	UnitCost     decimal.Decimal
	SellingPrice decimal.Decimal
}

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id int64) (*entity.Product, error)
	GetBySKU(sku string) (*entity.Product, error)
	GetByBarcode(barcode string) (*entity.Product, error)
	Update(product *entity.Product) error
	List(ctx context.Context, filter ProductSearch) ([]*entity.Product, error)
	// Deactivate baja lógica: is_active = false, nunca DELETE.
	Deactivate(id int64) error

	// ListBelowReorderPoint productos activos cuyo stock total en lotes
	// activos está por debajo de su punto de reorden, mayor déficit primero.
	ListBelowReorderPoint(ctx context.Context) ([]ReplenishmentItem, error)
}

// CategoryRepository define el puerto de persistencia para Category.
type CategoryRepository interface {
	Create(category *entity.Category) error
	GetByID(id int64) (*entity.Category, error)
	List(activeOnly bool) ([]*entity.Category, error)
}
