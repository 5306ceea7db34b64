package inventory

import (
	"context"

	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// TxRepos repositorios ligados a una misma transacción de base de datos.
type TxRepos struct {
	Batches   repository.BatchRepository
	Movements repository.StockMovementRepository
	Sales     repository.SaleRepository
	Customers repository.CustomerRepository
}

// TxRunner ejecuta fn dentro de una transacción. Si fn devuelve error la
// transacción se revierte completa; si devuelve nil se confirma.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}
