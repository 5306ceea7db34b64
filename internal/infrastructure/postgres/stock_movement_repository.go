package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación de la auditoría de movimientos sobre
// PostgreSQL (usable con pool o tx). Los movimientos son de solo inserción:
// nunca se actualizan ni borran.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador de movimientos.
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta el movimiento y asigna ID y timestamp.
func (r *StockMovementRepo) Create(m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (
			transaction_id, product_id, batch_id, movement_type,
			quantity, unit_cost, reference, notes, user_id
		) VALUES ($1, $2, NULLIF($3, 0), $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, 0))
		RETURNING id, created_at`
	err := r.q.QueryRow(context.Background(), query,
		m.TransactionID, m.ProductID, m.BatchID, m.Type,
		m.Quantity, m.UnitCost, m.Reference, m.Notes, m.UserID,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// List devuelve el historial según filtro, del más reciente al más antiguo.
func (r *StockMovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, transaction_id, product_id, COALESCE(batch_id, 0), movement_type,
		       quantity, unit_cost, COALESCE(reference, ''), COALESCE(notes, ''),
		       COALESCE(user_id, 0), created_at
		FROM stock_movements WHERE 1=1`
	args := []any{}
	n := 0

	if filter.ProductID != 0 {
		n++
		query += fmt.Sprintf(` AND product_id = $%d`, n)
		args = append(args, filter.ProductID)
	}
	if filter.BatchID != 0 {
		n++
		query += fmt.Sprintf(` AND batch_id = $%d`, n)
		args = append(args, filter.BatchID)
	}
	if filter.Type != "" {
		n++
		query += fmt.Sprintf(` AND movement_type = $%d`, n)
		args = append(args, filter.Type)
	}
	if filter.From != nil {
		n++
		query += fmt.Sprintf(` AND created_at >= $%d`, n)
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		n++
		query += fmt.Sprintf(` AND created_at < $%d`, n)
		args = append(args, *filter.To)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	n++
	query += fmt.Sprintf(` LIMIT $%d`, n)
	args = append(args, filter.Limit)
	n++
	query += fmt.Sprintf(` OFFSET $%d`, n)
	args = append(args, filter.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()

	var out []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		err := rows.Scan(
			&m.ID, &m.TransactionID, &m.ProductID, &m.BatchID, &m.Type,
			&m.Quantity, &m.UnitCost, &m.Reference, &m.Notes,
			&m.UserID, &m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
