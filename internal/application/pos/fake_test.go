package pos

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/application/inventory"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// memStore estado compartido de las pruebas del POS: catálogo, libro de
// lotes, ventas, clientes y movimientos, con la misma semántica de rechazo
// que los adaptadores de postgres.
type memStore struct {
	products  map[int64]*entity.Product
	batches   map[int64]*entity.Batch
	customers map[int64]*entity.Customer
	sales     []*entity.Sale
	movements []*entity.StockMovement

	nextBatch int64
	nextSale  int64

	failSaleCreate bool // fuerza el fallo de la fase transaccional
}

func newMemStore() *memStore {
	return &memStore{
		products:  map[int64]*entity.Product{},
		batches:   map[int64]*entity.Batch{},
		customers: map[int64]*entity.Customer{},
	}
}

func (s *memStore) addProduct(p *entity.Product) { s.products[p.ID] = p }

func (s *memStore) addBatch(b *entity.Batch) *entity.Batch {
	s.nextBatch++
	b.ID = s.nextBatch
	b.IsActive = true
	s.batches[b.ID] = b
	return b
}

func (s *memStore) addCustomer(c *entity.Customer) *entity.Customer {
	c.IsActive = true
	s.customers[c.ID] = c
	return c
}

// ── lotes ───────────────────────────────────────────────────────────────────

type memBatches struct{ store *memStore }

func (r *memBatches) Create(b *entity.Batch) error {
	r.store.nextBatch++
	b.ID = r.store.nextBatch
	r.store.batches[b.ID] = b
	return nil
}

func (r *memBatches) GetByID(id int64) (*entity.Batch, error) {
	b, ok := r.store.batches[id]
	if !ok {
		return nil, domain.ErrBatchNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memBatches) ListByProduct(int64, bool, bool) ([]*entity.Batch, error) { return nil, nil }

func (r *memBatches) ListReservable(_ context.Context, productID int64, policy repository.ReservationPolicy) ([]*entity.Batch, error) {
	now := time.Now()
	var out []*entity.Batch
	for _, b := range r.store.batches {
		if b.ProductID != productID || !b.IsActive || b.IsExpired || b.ExpiredAt(now) || b.Available() <= 0 {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if policy == repository.PolicyLIFO {
			return out[i].ExpiryDate.After(out[j].ExpiryDate)
		}
		return out[i].ExpiryDate.Before(out[j].ExpiryDate)
	})
	return out, nil
}

func (r *memBatches) ApplyReservationDelta(batchID int64, delta int) error {
	b, ok := r.store.batches[batchID]
	if !ok {
		return domain.ErrBatchNotFound
	}
	next := b.ReservedQuantity + delta
	if next < 0 {
		next = 0
	}
	if next > b.CurrentQuantity {
		return domain.ErrConflict
	}
	b.ReservedQuantity = next
	return nil
}

func (r *memBatches) ApplySaleDeduction(batchID int64, quantity int) error {
	b, ok := r.store.batches[batchID]
	if !ok {
		return domain.ErrBatchNotFound
	}
	if quantity > b.ReservedQuantity || quantity > b.CurrentQuantity {
		return &domain.InvalidStateError{BatchID: batchID, Expected: quantity, Actual: b.ReservedQuantity}
	}
	b.CurrentQuantity -= quantity
	b.ReservedQuantity -= quantity
	return nil
}

func (r *memBatches) AdjustQuantity(int64, int) error { return nil }

func (r *memBatches) MarkExpired(int64) (int, error) { return 0, domain.ErrBatchNotFound }

func (r *memBatches) ListActiveWithProduct(context.Context) ([]repository.BatchWithProduct, error) {
	return nil, nil
}

func (r *memBatches) AvailableStock(_ context.Context, productID int64) (int, error) {
	now := time.Now()
	total := 0
	for _, b := range r.store.batches {
		if b.ProductID != productID || !b.IsActive || b.IsExpired || b.ExpiredAt(now) {
			continue
		}
		total += b.Available()
	}
	return total, nil
}

// ── catálogo ────────────────────────────────────────────────────────────────

type memProducts struct{ store *memStore }

func (r *memProducts) Create(p *entity.Product) error { r.store.addProduct(p); return nil }

func (r *memProducts) GetByID(id int64) (*entity.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (r *memProducts) GetBySKU(string) (*entity.Product, error)     { return nil, domain.ErrNotFound }
func (r *memProducts) GetByBarcode(string) (*entity.Product, error) { return nil, domain.ErrNotFound }
func (r *memProducts) Update(*entity.Product) error                 { return nil }
func (r *memProducts) Deactivate(int64) error                       { return nil }

func (r *memProducts) List(context.Context, repository.ProductSearch) ([]*entity.Product, error) {
	return nil, nil
}

func (r *memProducts) ListBelowReorderPoint(context.Context) ([]repository.ReplenishmentItem, error) {
	return nil, nil
}

// ── ventas y clientes ───────────────────────────────────────────────────────

type memSales struct{ store *memStore }

func (r *memSales) Create(sale *entity.Sale) error {
	if r.store.failSaleCreate {
		return domain.ErrConflict
	}
	r.store.nextSale++
	sale.ID = r.store.nextSale
	sale.CreatedAt = time.Now()
	r.store.sales = append(r.store.sales, sale)
	return nil
}

func (r *memSales) GetByID(id int64) (*entity.Sale, error) {
	for _, s := range r.store.sales {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memSales) List(_ context.Context, limit, offset int) ([]*entity.Sale, error) {
	if offset >= len(r.store.sales) {
		return nil, nil
	}
	end := offset + limit
	if end > len(r.store.sales) {
		end = len(r.store.sales)
	}
	return r.store.sales[offset:end], nil
}

func (r *memSales) LastSaleNumber(prefix string) (string, error) {
	last := ""
	for _, s := range r.store.sales {
		if strings.HasPrefix(s.SaleNumber, prefix) && s.SaleNumber > last {
			last = s.SaleNumber
		}
	}
	return last, nil
}

type memCustomers struct{ store *memStore }

func (r *memCustomers) Create(c *entity.Customer) error { r.store.addCustomer(c); return nil }

func (r *memCustomers) GetByID(id int64) (*entity.Customer, error) {
	c, ok := r.store.customers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (r *memCustomers) List(bool, int, int) ([]*entity.Customer, error) { return nil, nil }

func (r *memCustomers) AddLoyalty(customerID int64, points int, spent decimal.Decimal) error {
	c, ok := r.store.customers[customerID]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now()
	c.LoyaltyPoints += points
	c.TotalSpent = c.TotalSpent.Add(spent)
	c.LastVisit = &now
	return nil
}

// ── movimientos, transacción y recibos ──────────────────────────────────────

type memMovements struct{ store *memStore }

func (r *memMovements) Create(m *entity.StockMovement) error {
	r.store.movements = append(r.store.movements, m)
	return nil
}

func (r *memMovements) List(context.Context, repository.MovementFilter) ([]*entity.StockMovement, error) {
	return r.store.movements, nil
}

type memTx struct{ store *memStore }

func (t *memTx) Run(_ context.Context, fn func(inventory.TxRepos) error) error {
	return fn(inventory.TxRepos{
		Batches:   &memBatches{store: t.store},
		Movements: &memMovements{store: t.store},
		Sales:     &memSales{store: t.store},
		Customers: &memCustomers{store: t.store},
	})
}

type stubReceipts struct{ lastNames map[int64]string }

func (g *stubReceipts) GenerateReceipt(_ *entity.Sale, names map[int64]string) ([]byte, error) {
	g.lastNames = names
	return []byte("%PDF-stub"), nil
}

func newTestUseCase(store *memStore) (*UseCase, *stubReceipts) {
	batches := &memBatches{store: store}
	tx := &memTx{store: store}
	engine := inventory.NewReservationEngine(batches, tx)
	receipts := &stubReceipts{}
	uc := NewUseCase(
		&memProducts{store: store},
		&memCustomers{store: store},
		&memSales{store: store},
		batches,
		engine,
		tx,
		receipts,
		decimal.RequireFromString("0.15"),
	)
	return uc, receipts
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func daysFromNow(days int) time.Time { return time.Now().AddDate(0, 0, days) }
