package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas.
type SaleRepository interface {
	// Create persiste la venta y sus líneas; asigna IDs.
	Create(sale *entity.Sale) error
	GetByID(id int64) (*entity.Sale, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Sale, error)
	// LastSaleNumber devuelve el mayor número de venta con el prefijo dado
	// ("" si no hay ventas). Usado para la secuencia diaria POSyyyymmddNNNN.
	LastSaleNumber(prefix string) (string, error)
}

// CustomerRepository define el puerto de persistencia para clientes.
type CustomerRepository interface {
	Create(customer *entity.Customer) error
	GetByID(id int64) (*entity.Customer, error)
	List(activeOnly bool, limit, offset int) ([]*entity.Customer, error)
	// AddLoyalty acumula puntos y gasto, y actualiza la última visita.
	AddLoyalty(customerID int64, points int, spent decimal.Decimal) error
}
