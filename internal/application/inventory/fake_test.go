package inventory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// memLedger libro de lotes en memoria con la misma semántica de rechazo que
// el adaptador de postgres (deltas condicionados, recorte en cero).
type memLedger struct {
	mu        sync.Mutex
	batches   map[int64]*entity.Batch
	products  map[int64]*entity.Product
	movements []*entity.StockMovement
	nextBatch int64
	nextMov   int64

	failDeltaForBatch int64 // si > 0, ApplyReservationDelta falla para ese lote
}

func newMemLedger() *memLedger {
	return &memLedger{
		batches:  make(map[int64]*entity.Batch),
		products: make(map[int64]*entity.Product),
	}
}

func (m *memLedger) addProduct(p *entity.Product) {
	m.products[p.ID] = p
}

func (m *memLedger) addBatch(b *entity.Batch) *entity.Batch {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextBatch++
	b.ID = m.nextBatch
	if b.InitialQuantity == 0 {
		b.InitialQuantity = b.CurrentQuantity
	}
	b.IsActive = true
	m.batches[b.ID] = b
	return b
}

// ── repository.BatchRepository ──────────────────────────────────────────────

func (m *memLedger) Create(b *entity.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextBatch++
	b.ID = m.nextBatch
	m.batches[b.ID] = b
	return nil
}

func (m *memLedger) GetByID(id int64) (*entity.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	if !ok {
		return nil, domain.ErrBatchNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memLedger) ListByProduct(productID int64, activeOnly, availableOnly bool) ([]*entity.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Batch
	for _, b := range m.batches {
		if b.ProductID != productID {
			continue
		}
		if activeOnly && !b.IsActive {
			continue
		}
		if availableOnly && b.Available() <= 0 {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memLedger) ListReservable(_ context.Context, productID int64, policy repository.ReservationPolicy) ([]*entity.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var out []*entity.Batch
	for _, b := range m.batches {
		if b.ProductID != productID || !b.IsActive || b.IsExpired {
			continue
		}
		if b.ExpiredAt(now) || b.Available() <= 0 {
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

func (m *memLedger) ApplyReservationDelta(batchID int64, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDeltaForBatch == batchID {
		return domain.ErrConflict
	}
	b, ok := m.batches[batchID]
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

func (m *memLedger) ApplySaleDeduction(batchID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[batchID]
	if !ok {
		return domain.ErrBatchNotFound
	}
	if quantity > b.ReservedQuantity || quantity > b.CurrentQuantity {
		return &domain.InvalidStateError{
			BatchID:  batchID,
			Expected: quantity,
			Actual:   b.ReservedQuantity,
		}
	}
	b.CurrentQuantity -= quantity
	b.ReservedQuantity -= quantity
	return nil
}

func (m *memLedger) AdjustQuantity(batchID int64, newQuantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[batchID]
	if !ok {
		return domain.ErrBatchNotFound
	}
	if newQuantity < b.ReservedQuantity {
		return domain.ErrConflict
	}
	b.CurrentQuantity = newQuantity
	return nil
}

func (m *memLedger) MarkExpired(batchID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[batchID]
	if !ok {
		return 0, domain.ErrBatchNotFound
	}
	if b.IsExpired || b.CurrentQuantity == 0 {
		return 0, domain.ErrBatchInactive
	}
	removed := b.CurrentQuantity
	b.CurrentQuantity = 0
	b.ReservedQuantity = 0
	b.IsExpired = true
	b.IsActive = false
	return removed, nil
}

func (m *memLedger) ListActiveWithProduct(_ context.Context) ([]repository.BatchWithProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.BatchWithProduct
	for _, b := range m.batches {
		if !b.IsActive {
			continue
		}
		p, ok := m.products[b.ProductID]
		if !ok {
			continue
		}
		out = append(out, repository.BatchWithProduct{
			Batch: *b,
			Product: entity.ProductMeta{
				ID:           p.ID,
				Name:         p.Name,
				IsActive:     p.IsActive,
				IsControlled: p.IsControlledSubstance,
			},
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Batch.ID < out[j].Batch.ID })
	return out, nil
}

func (m *memLedger) AvailableStock(_ context.Context, productID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	total := 0
	for _, b := range m.batches {
		if b.ProductID != productID || !b.IsActive || b.IsExpired || b.ExpiredAt(now) {
			continue
		}
		total += b.Available()
	}
	return total, nil
}

// ── repository.StockMovementRepository ──────────────────────────────────────

func (m *memLedger) CreateMovement(mov *entity.StockMovement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextMov++
	mov.ID = m.nextMov
	mov.CreatedAt = time.Now()
	m.movements = append(m.movements, mov)
	return nil
}

func (m *memLedger) movementsOfType(t string) []*entity.StockMovement {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.StockMovement
	for _, mov := range m.movements {
		if mov.Type == t {
			out = append(out, mov)
		}
	}
	return out
}

type memMovementRepo struct{ ledger *memLedger }

func (r *memMovementRepo) Create(mov *entity.StockMovement) error {
	return r.ledger.CreateMovement(mov)
}

func (r *memMovementRepo) List(_ context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	var out []*entity.StockMovement
	for _, mov := range r.ledger.movements {
		if filter.ProductID != 0 && mov.ProductID != filter.ProductID {
			continue
		}
		if filter.BatchID != 0 && mov.BatchID != filter.BatchID {
			continue
		}
		if filter.Type != "" && mov.Type != filter.Type {
			continue
		}
		out = append(out, mov)
	}
	return out, nil
}

// ── repository.ProductRepository (lo mínimo que usan estas pruebas) ─────────

type memProductRepo struct{ ledger *memLedger }

func (r *memProductRepo) Create(p *entity.Product) error { r.ledger.addProduct(p); return nil }

func (r *memProductRepo) GetByID(id int64) (*entity.Product, error) {
	p, ok := r.ledger.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (r *memProductRepo) GetBySKU(string) (*entity.Product, error)     { return nil, domain.ErrNotFound }
func (r *memProductRepo) GetByBarcode(string) (*entity.Product, error) { return nil, domain.ErrNotFound }
func (r *memProductRepo) Update(*entity.Product) error                 { return nil }
func (r *memProductRepo) Deactivate(int64) error                       { return nil }

func (r *memProductRepo) List(context.Context, repository.ProductSearch) ([]*entity.Product, error) {
	return nil, nil
}

func (r *memProductRepo) ListBelowReorderPoint(context.Context) ([]repository.ReplenishmentItem, error) {
	var out []repository.ReplenishmentItem
	for _, p := range r.ledger.products {
		stock := 0
		for _, b := range r.ledger.batches {
			if b.ProductID == p.ID && b.IsActive && !b.IsExpired {
				stock += b.CurrentQuantity
			}
		}
		if p.ReorderPoint > 0 && stock < p.ReorderPoint {
			out = append(out, repository.ReplenishmentItem{
				ProductID:    p.ID,
				SKU:          p.SKU,
				ProductName:  p.Name,
				CurrentStock: stock,
				ReorderPoint: p.ReorderPoint,
				UnitCost:     p.CostPrice,
				SellingPrice: p.SellingPrice,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// ── TxRunner de prueba (sin transacción real) ───────────────────────────────

type memTxRunner struct{ ledger *memLedger }

func (t *memTxRunner) Run(_ context.Context, fn func(TxRepos) error) error {
	return fn(TxRepos{
		Batches:   t.ledger,
		Movements: &memMovementRepo{ledger: t.ledger},
	})
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func daysFromNow(days int) time.Time { return time.Now().AddDate(0, 0, days) }
