package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste la venta y sus líneas; asigna IDs.
func (r *SaleRepo) Create(s *entity.Sale) error {
	ctx := context.Background()
	query := `
		INSERT INTO sales (
			sale_number, subtotal, tax_amount, discount_amount, total_amount,
			payment_method, payment_reference, amount_paid, change_given,
			status, notes, customer_id, cashier_id, completed_at
		) VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,''),$8,$9,$10,NULLIF($11,''),$12,$13,$14)
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		s.SaleNumber, s.Subtotal, s.TaxAmount, s.DiscountAmount, s.TotalAmount,
		s.PaymentMethod, s.PaymentReference, s.AmountPaid, s.ChangeGiven,
		s.Status, s.Notes, s.CustomerID, s.CashierID, s.CompletedAt,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("venta %s: %w", s.SaleNumber, domain.ErrDuplicate)
		}
		return fmt.Errorf("create sale: %w", err)
	}

	itemQuery := `
		INSERT INTO sale_items (
			sale_id, product_id, quantity, unit_price, discount_amount, line_total,
			prescription_number, prescriber_name, days_supply, batch_id, batch_number
		) VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,''),NULLIF($8,''),NULLIF($9,0),$10,NULLIF($11,''))
		RETURNING id, created_at`
	for i := range s.Items {
		it := &s.Items[i]
		it.SaleID = s.ID
		err := r.q.QueryRow(ctx, itemQuery,
			it.SaleID, it.ProductID, it.Quantity, it.UnitPrice, it.DiscountAmount, it.LineTotal,
			it.PrescriptionNumber, it.PrescriberName, it.DaysSupply, it.BatchID, it.BatchNumber,
		).Scan(&it.ID, &it.CreatedAt)
		if err != nil {
			return fmt.Errorf("create sale item: %w", err)
		}
	}
	return nil
}

const saleColumns = `
	id, sale_number, subtotal, tax_amount, discount_amount, total_amount,
	payment_method, COALESCE(payment_reference, ''), amount_paid, change_given,
	status, COALESCE(notes, ''), customer_id, cashier_id, created_at, completed_at`

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(
		&s.ID, &s.SaleNumber, &s.Subtotal, &s.TaxAmount, &s.DiscountAmount, &s.TotalAmount,
		&s.PaymentMethod, &s.PaymentReference, &s.AmountPaid, &s.ChangeGiven,
		&s.Status, &s.Notes, &s.CustomerID, &s.CashierID, &s.CreatedAt, &s.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID obtiene una venta con sus líneas.
func (r *SaleRepo) GetByID(id int64) (*entity.Sale, error) {
	ctx := context.Background()
	s, err := scanSale(r.q.QueryRow(ctx, `SELECT`+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, quantity, unit_price, discount_amount, line_total,
		       COALESCE(prescription_number, ''), COALESCE(prescriber_name, ''),
		       COALESCE(days_supply, 0), batch_id, COALESCE(batch_number, ''), created_at
		FROM sale_items WHERE sale_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("get sale items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it entity.SaleItem
		err := rows.Scan(
			&it.ID, &it.SaleID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.DiscountAmount, &it.LineTotal,
			&it.PrescriptionNumber, &it.PrescriberName,
			&it.DaysSupply, &it.BatchID, &it.BatchNumber, &it.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		s.Items = append(s.Items, it)
	}
	return s, rows.Err()
}

// List historial de ventas, la más reciente primero (sin líneas).
func (r *SaleRepo) List(ctx context.Context, limit, offset int) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx,
		`SELECT`+saleColumns+` FROM sales ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var out []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// LastSaleNumber mayor número de venta con el prefijo dado ("" si no hay).
// Se consulta dentro de la transacción que inserta la venta; el índice único
// de sale_number corta cualquier carrera restante.
func (r *SaleRepo) LastSaleNumber(prefix string) (string, error) {
	var last string
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(MAX(sale_number), '') FROM sales WHERE sale_number LIKE $1 || '%'`,
		prefix).Scan(&last)
	if err != nil {
		return "", fmt.Errorf("last sale number: %w", err)
	}
	return last, nil
}

// ── clientes ────────────────────────────────────────────────────────────────

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository sobre PostgreSQL.
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador de clientes.
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// Create inserta el cliente y asigna ID.
func (r *CustomerRepo) Create(c *entity.Customer) error {
	query := `
		INSERT INTO customers (first_name, last_name, phone, email, loyalty_points, total_spent, is_active)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(context.Background(), query,
		c.FirstName, c.LastName, c.Phone, c.Email, c.LoyaltyPoints, c.TotalSpent, c.IsActive,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("cliente %s: %w", c.Email, domain.ErrDuplicate)
		}
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

const customerColumns = `
	id, first_name, last_name, COALESCE(phone, ''), COALESCE(email, ''),
	loyalty_points, total_spent, last_visit, is_active, created_at, updated_at`

// GetByID obtiene un cliente por id.
func (r *CustomerRepo) GetByID(id int64) (*entity.Customer, error) {
	var c entity.Customer
	err := r.q.QueryRow(context.Background(),
		`SELECT`+customerColumns+` FROM customers WHERE id = $1`, id,
	).Scan(&c.ID, &c.FirstName, &c.LastName, &c.Phone, &c.Email,
		&c.LoyaltyPoints, &c.TotalSpent, &c.LastVisit, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// List lista clientes paginados.
func (r *CustomerRepo) List(activeOnly bool, limit, offset int) ([]*entity.Customer, error) {
	query := `SELECT` + customerColumns + ` FROM customers`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY last_name, first_name, id LIMIT $1 OFFSET $2`

	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var out []*entity.Customer
	for rows.Next() {
		var c entity.Customer
		err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Phone, &c.Email,
			&c.LoyaltyPoints, &c.TotalSpent, &c.LastVisit, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// AddLoyalty acumula puntos y gasto, y actualiza la última visita.
func (r *CustomerRepo) AddLoyalty(customerID int64, points int, spent decimal.Decimal) error {
	query := `
		UPDATE customers
		SET loyalty_points = loyalty_points + $2,
		    total_spent = total_spent + $3,
		    last_visit = now(),
		    updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, customerID, points, spent)
	if err != nil {
		return fmt.Errorf("add loyalty: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
