package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación del libro de lotes sobre PostgreSQL (usable con
// pool o tx). La serialización por lote se delega a UPDATEs condicionados:
// un UPDATE cuyo WHERE no se cumple afecta 0 filas y se traduce a rechazo.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const batchColumns = `
	id, product_id, batch_number, lot_number,
	initial_quantity, current_quantity, reserved_quantity,
	cost_per_unit, selling_price_per_unit,
	manufacture_date, expiry_date, received_date,
	supplier_name, purchase_order_number, invoice_number,
	is_active, is_expired, notes, created_at, updated_at`

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	err := row.Scan(
		&b.ID, &b.ProductID, &b.BatchNumber, &b.LotNumber,
		&b.InitialQuantity, &b.CurrentQuantity, &b.ReservedQuantity,
		&b.CostPerUnit, &b.SellingPricePerUnit,
		&b.ManufactureDate, &b.ExpiryDate, &b.ReceivedDate,
		&b.SupplierName, &b.PurchaseOrderNumber, &b.InvoiceNumber,
		&b.IsActive, &b.IsExpired, &b.Notes, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserta el lote y asigna ID y timestamps.
func (r *BatchRepo) Create(b *entity.Batch) error {
	query := `
		INSERT INTO batches (
			product_id, batch_number, lot_number,
			initial_quantity, current_quantity, reserved_quantity,
			cost_per_unit, selling_price_per_unit,
			manufacture_date, expiry_date, received_date,
			supplier_name, purchase_order_number, invoice_number,
			is_active, is_expired, notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(context.Background(), query,
		b.ProductID, b.BatchNumber, b.LotNumber,
		b.InitialQuantity, b.CurrentQuantity, b.ReservedQuantity,
		b.CostPerUnit, b.SellingPricePerUnit,
		b.ManufactureDate, b.ExpiryDate, b.ReceivedDate,
		b.SupplierName, b.PurchaseOrderNumber, b.InvoiceNumber,
		b.IsActive, b.IsExpired, b.Notes,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("lote %s del producto %d: %w", b.BatchNumber, b.ProductID, domain.ErrDuplicate)
		}
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por id.
func (r *BatchRepo) GetByID(id int64) (*entity.Batch, error) {
	query := `SELECT` + batchColumns + ` FROM batches WHERE id = $1`
	b, err := scanBatch(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBatchNotFound
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

// ListByProduct lista los lotes de un producto, del más próximo a vencer al
// más lejano.
func (r *BatchRepo) ListByProduct(productID int64, activeOnly, availableOnly bool) ([]*entity.Batch, error) {
	query := `SELECT` + batchColumns + ` FROM batches WHERE product_id = $1`
	if activeOnly {
		query += ` AND is_active AND NOT is_expired`
	}
	if availableOnly {
		query += ` AND current_quantity - reserved_quantity > 0`
	}
	query += ` ORDER BY expiry_date, id`

	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	return collectBatches(rows)
}

// ListReservable lotes activos, no vencidos y con disponible > 0, en el orden
// de consumo de la política.
func (r *BatchRepo) ListReservable(ctx context.Context, productID int64, policy repository.ReservationPolicy) ([]*entity.Batch, error) {
	order := `expiry_date ASC, id ASC`
	if policy == repository.PolicyLIFO {
		order = `expiry_date DESC, id DESC`
	}
	query := `SELECT` + batchColumns + `
		FROM batches
		WHERE product_id = $1
		  AND is_active AND NOT is_expired
		  AND expiry_date >= CURRENT_DATE
		  AND current_quantity - reserved_quantity > 0
		ORDER BY ` + order

	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list reservable batches: %w", err)
	}
	defer rows.Close()
	return collectBatches(rows)
}

func collectBatches(rows pgx.Rows) ([]*entity.Batch, error) {
	var out []*entity.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ApplyReservationDelta ajusta la reserva en una sola sentencia atómica. El
// recorte en cero de los deltas negativos vive en el SQL: liberar dos veces
// deja la reserva en cero, no en negativo.
func (r *BatchRepo) ApplyReservationDelta(batchID int64, delta int) error {
	query := `
		UPDATE batches
		SET reserved_quantity = GREATEST(reserved_quantity + $2, 0),
		    updated_at = now()
		WHERE id = $1
		  AND GREATEST(reserved_quantity + $2, 0) <= current_quantity`
	tag, err := r.q.Exec(context.Background(), query, batchID, delta)
	if err != nil {
		return fmt.Errorf("apply reservation delta: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.rejectReason(batchID, domain.ErrConflict)
	}
	return nil
}

// ApplySaleDeduction descuenta la venta de current y reserved a la vez. Si el
// lote no cubre la cantidad en ambos contadores, devuelve InvalidStateError
// con lo esperado y lo encontrado: estado corrupto, se reporta siempre.
func (r *BatchRepo) ApplySaleDeduction(batchID int64, quantity int) error {
	query := `
		UPDATE batches
		SET current_quantity = current_quantity - $2,
		    reserved_quantity = reserved_quantity - $2,
		    updated_at = now()
		WHERE id = $1
		  AND reserved_quantity >= $2
		  AND current_quantity >= $2`
	tag, err := r.q.Exec(context.Background(), query, batchID, quantity)
	if err != nil {
		return fmt.Errorf("apply sale deduction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var reserved int
		err := r.q.QueryRow(context.Background(),
			`SELECT reserved_quantity FROM batches WHERE id = $1`, batchID).Scan(&reserved)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrBatchNotFound
		}
		if err != nil {
			return fmt.Errorf("inspect batch %d: %w", batchID, err)
		}
		return &domain.InvalidStateError{BatchID: batchID, Expected: quantity, Actual: reserved}
	}
	return nil
}

// AdjustQuantity fija current_quantity tras un conteo físico, sin dejar
// reservas descubiertas.
func (r *BatchRepo) AdjustQuantity(batchID int64, newQuantity int) error {
	query := `
		UPDATE batches
		SET current_quantity = $2, updated_at = now()
		WHERE id = $1 AND reserved_quantity <= $2`
	tag, err := r.q.Exec(context.Background(), query, batchID, newQuantity)
	if err != nil {
		return fmt.Errorf("adjust quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.rejectReason(batchID, domain.ErrConflict)
	}
	return nil
}

// MarkExpired fuerza el lote a vencido con stock cero y devuelve la cantidad
// dada de baja.
func (r *BatchRepo) MarkExpired(batchID int64) (int, error) {
	query := `
		WITH prev AS (
			SELECT current_quantity FROM batches WHERE id = $1 FOR UPDATE
		)
		UPDATE batches
		SET current_quantity = 0,
		    reserved_quantity = 0,
		    is_expired = TRUE,
		    is_active = FALSE,
		    updated_at = now()
		WHERE id = $1 AND NOT is_expired AND current_quantity > 0
		RETURNING (SELECT current_quantity FROM prev)`
	var removed int
	err := r.q.QueryRow(context.Background(), query, batchID).Scan(&removed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, r.rejectReason(batchID, domain.ErrBatchInactive)
		}
		return 0, fmt.Errorf("mark expired: %w", err)
	}
	return removed, nil
}

// ListActiveWithProduct snapshot de lotes activos con la vista mínima del
// producto, para el motor de vencimientos.
func (r *BatchRepo) ListActiveWithProduct(ctx context.Context) ([]repository.BatchWithProduct, error) {
	query := `
		SELECT
			b.id, b.product_id, b.batch_number, b.lot_number,
			b.initial_quantity, b.current_quantity, b.reserved_quantity,
			b.cost_per_unit, b.selling_price_per_unit,
			b.manufacture_date, b.expiry_date, b.received_date,
			b.supplier_name, b.purchase_order_number, b.invoice_number,
			b.is_active, b.is_expired, b.notes, b.created_at, b.updated_at,
			p.id, p.name, p.is_active, p.is_controlled_substance
		FROM batches b
		JOIN products p ON p.id = b.product_id
		WHERE b.is_active
		ORDER BY b.expiry_date, b.id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active batches: %w", err)
	}
	defer rows.Close()

	var out []repository.BatchWithProduct
	for rows.Next() {
		var row repository.BatchWithProduct
		b := &row.Batch
		p := &row.Product
		err := rows.Scan(
			&b.ID, &b.ProductID, &b.BatchNumber, &b.LotNumber,
			&b.InitialQuantity, &b.CurrentQuantity, &b.ReservedQuantity,
			&b.CostPerUnit, &b.SellingPricePerUnit,
			&b.ManufactureDate, &b.ExpiryDate, &b.ReceivedDate,
			&b.SupplierName, &b.PurchaseOrderNumber, &b.InvoiceNumber,
			&b.IsActive, &b.IsExpired, &b.Notes, &b.CreatedAt, &b.UpdatedAt,
			&p.ID, &p.Name, &p.IsActive, &p.IsControlled,
		)
		if err != nil {
			return nil, fmt.Errorf("scan batch with product: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// AvailableStock stock vendible del producto sobre lotes activos no vencidos.
func (r *BatchRepo) AvailableStock(ctx context.Context, productID int64) (int, error) {
	query := `
		SELECT COALESCE(SUM(current_quantity - reserved_quantity), 0)
		FROM batches
		WHERE product_id = $1
		  AND is_active AND NOT is_expired
		  AND expiry_date >= CURRENT_DATE`
	var total int
	if err := r.q.QueryRow(ctx, query, productID).Scan(&total); err != nil {
		return 0, fmt.Errorf("available stock: %w", err)
	}
	return total, nil
}

// rejectReason distingue "lote inexistente" de "condición no cumplida" cuando
// un UPDATE condicionado no afecta filas.
func (r *BatchRepo) rejectReason(batchID int64, reject error) error {
	var exists bool
	err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM batches WHERE id = $1)`, batchID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("inspect batch %d: %w", batchID, err)
	}
	if !exists {
		return domain.ErrBatchNotFound
	}
	return reject
}
