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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `
	id, sku, COALESCE(barcode, ''), COALESCE(ndc_number, ''),
	name, COALESCE(generic_name, ''), COALESCE(brand_name, ''), COALESCE(description, ''),
	COALESCE(dosage_form, ''), COALESCE(strength, ''), COALESCE(manufacturer, ''),
	cost_price, selling_price, markup_percentage,
	min_stock_level, max_stock_level, reorder_point,
	requires_prescription, is_controlled_substance, COALESCE(controlled_substance_schedule, ''),
	COALESCE(category_id, 0), is_active, is_discontinued, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.SKU, &p.Barcode, &p.NDCNumber,
		&p.Name, &p.GenericName, &p.BrandName, &p.Description,
		&p.DosageForm, &p.Strength, &p.Manufacturer,
		&p.CostPrice, &p.SellingPrice, &p.MarkupPercentage,
		&p.MinStockLevel, &p.MaxStockLevel, &p.ReorderPoint,
		&p.RequiresPrescription, &p.IsControlledSubstance, &p.ControlledSubstanceSchedule,
		&p.CategoryID, &p.IsActive, &p.IsDiscontinued, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserta el producto y asigna ID y timestamps.
func (r *ProductRepo) Create(p *entity.Product) error {
	query := `
		INSERT INTO products (
			sku, barcode, ndc_number,
			name, generic_name, brand_name, description,
			dosage_form, strength, manufacturer,
			cost_price, selling_price, markup_percentage,
			min_stock_level, max_stock_level, reorder_point,
			requires_prescription, is_controlled_substance, controlled_substance_schedule,
			category_id, is_active, is_discontinued
		) VALUES (
			$1, NULLIF($2, ''), NULLIF($3, ''),
			$4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''),
			NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''),
			$11, $12, $13,
			$14, $15, $16,
			$17, $18, NULLIF($19, ''),
			NULLIF($20, 0), $21, $22
		)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(context.Background(), query,
		p.SKU, p.Barcode, p.NDCNumber,
		p.Name, p.GenericName, p.BrandName, p.Description,
		p.DosageForm, p.Strength, p.Manufacturer,
		p.CostPrice, p.SellingPrice, p.MarkupPercentage,
		p.MinStockLevel, p.MaxStockLevel, p.ReorderPoint,
		p.RequiresPrescription, p.IsControlledSubstance, p.ControlledSubstanceSchedule,
		p.CategoryID, p.IsActive, p.IsDiscontinued,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("producto %s: %w", p.SKU, domain.ErrDuplicate)
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por id.
func (r *ProductRepo) GetByID(id int64) (*entity.Product, error) {
	query := `SELECT` + productColumns + ` FROM products WHERE id = $1`
	return r.getOne(query, id)
}

// GetBySKU obtiene un producto por SKU.
func (r *ProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	query := `SELECT` + productColumns + ` FROM products WHERE sku = $1`
	return r.getOne(query, sku)
}

// GetByBarcode búsqueda por escaneo en caja.
func (r *ProductRepo) GetByBarcode(barcode string) (*entity.Product, error) {
	query := `SELECT` + productColumns + ` FROM products WHERE barcode = $1`
	return r.getOne(query, barcode)
}

func (r *ProductRepo) getOne(query string, arg any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(context.Background(), query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update persiste todos los campos editables del producto.
func (r *ProductRepo) Update(p *entity.Product) error {
	query := `
		UPDATE products SET
			barcode = NULLIF($2, ''),
			name = $3, generic_name = NULLIF($4, ''), brand_name = NULLIF($5, ''),
			description = NULLIF($6, ''),
			dosage_form = NULLIF($7, ''), strength = NULLIF($8, ''), manufacturer = NULLIF($9, ''),
			cost_price = $10, selling_price = $11, markup_percentage = $12,
			min_stock_level = $13, max_stock_level = $14, reorder_point = $15,
			requires_prescription = $16, is_controlled_substance = $17,
			category_id = NULLIF($18, 0), is_active = $19, is_discontinued = $20,
			updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		p.ID, p.Barcode,
		p.Name, p.GenericName, p.BrandName,
		p.Description,
		p.DosageForm, p.Strength, p.Manufacturer,
		p.CostPrice, p.SellingPrice, p.MarkupPercentage,
		p.MinStockLevel, p.MaxStockLevel, p.ReorderPoint,
		p.RequiresPrescription, p.IsControlledSubstance,
		p.CategoryID, p.IsActive, p.IsDiscontinued,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("producto %s: %w", p.SKU, domain.ErrDuplicate)
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista/busca productos según filtro.
func (r *ProductRepo) List(ctx context.Context, filter repository.ProductSearch) ([]*entity.Product, error) {
	query := `SELECT` + productColumns + ` FROM products WHERE 1=1`
	args := []any{}
	n := 0

	if filter.Query != "" {
		n++
		query += fmt.Sprintf(` AND (name ILIKE $%d OR generic_name ILIKE $%d OR brand_name ILIKE $%d OR sku ILIKE $%d)`, n, n, n, n)
		args = append(args, "%"+filter.Query+"%")
	}
	if filter.CategoryID != 0 {
		n++
		query += fmt.Sprintf(` AND category_id = $%d`, n)
		args = append(args, filter.CategoryID)
	}
	if filter.ActiveOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY name, id`
	n++
	query += fmt.Sprintf(` LIMIT $%d`, n)
	args = append(args, filter.Limit)
	n++
	query += fmt.Sprintf(` OFFSET $%d`, n)
	args = append(args, filter.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Deactivate baja lógica: is_active = false, nunca DELETE.
func (r *ProductRepo) Deactivate(id int64) error {
	tag, err := r.q.Exec(context.Background(),
		`UPDATE products SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListBelowReorderPoint productos activos con stock total (en lotes activos no
// vencidos) por debajo de su punto de reorden.
func (r *ProductRepo) ListBelowReorderPoint(ctx context.Context) ([]repository.ReplenishmentItem, error) {
	query := `
		SELECT p.id, p.sku, p.name,
		       COALESCE(SUM(b.current_quantity) FILTER (WHERE b.is_active AND NOT b.is_expired), 0) AS stock,
		       p.reorder_point, p.cost_price, p.selling_price
		FROM products p
		LEFT JOIN batches b ON b.product_id = p.id
		WHERE p.is_active AND p.reorder_point > 0
		GROUP BY p.id
		HAVING COALESCE(SUM(b.current_quantity) FILTER (WHERE b.is_active AND NOT b.is_expired), 0) < p.reorder_point
		ORDER BY p.id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list below reorder point: %w", err)
	}
	defer rows.Close()

	var out []repository.ReplenishmentItem
	for rows.Next() {
		var it repository.ReplenishmentItem
		if err := rows.Scan(&it.ProductID, &it.SKU, &it.ProductName, &it.CurrentStock, &it.ReorderPoint, &it.UnitCost, &it.SellingPrice); err != nil {
			return nil, fmt.Errorf("scan replenishment item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ── categorías ──────────────────────────────────────────────────────────────

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo implementación de CategoryRepository sobre PostgreSQL.
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador de categorías.
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

// Create inserta la categoría y asigna ID.
func (r *CategoryRepo) Create(c *entity.Category) error {
	query := `
		INSERT INTO categories (name, description, is_active)
		VALUES ($1, NULLIF($2, ''), $3)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(context.Background(), query, c.Name, c.Description, c.IsActive).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("categoría %s: %w", c.Name, domain.ErrDuplicate)
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// GetByID obtiene una categoría por id.
func (r *CategoryRepo) GetByID(id int64) (*entity.Category, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), is_active, created_at, updated_at
		FROM categories WHERE id = $1`
	var c entity.Category
	err := r.q.QueryRow(context.Background(), query, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// List lista categorías, opcionalmente solo activas.
func (r *CategoryRepo) List(activeOnly bool) ([]*entity.Category, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), is_active, created_at, updated_at
		FROM categories`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []*entity.Category
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
