package expiry

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmacia-api/internal/application/inventory"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	domexpiry "github.com/jhoicas/Farmacia-api/internal/domain/expiry"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// fakeBook libro de lotes mínimo para el motor de vencimientos.
type fakeBook struct {
	batches   map[int64]*entity.Batch
	products  map[int64]entity.ProductMeta
	movements []*entity.StockMovement
	nextID    int64
}

func newFakeBook() *fakeBook {
	return &fakeBook{batches: map[int64]*entity.Batch{}, products: map[int64]entity.ProductMeta{}}
}

func (f *fakeBook) add(p entity.ProductMeta, b entity.Batch) int64 {
	f.nextID++
	b.ID = f.nextID
	b.ProductID = p.ID
	b.IsActive = true
	f.batches[b.ID] = &b
	f.products[p.ID] = p
	return b.ID
}

func (f *fakeBook) Create(b *entity.Batch) error { f.nextID++; b.ID = f.nextID; f.batches[b.ID] = b; return nil }

func (f *fakeBook) GetByID(id int64) (*entity.Batch, error) {
	b, ok := f.batches[id]
	if !ok {
		return nil, domain.ErrBatchNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBook) ListByProduct(int64, bool, bool) ([]*entity.Batch, error) { return nil, nil }

func (f *fakeBook) ListReservable(context.Context, int64, repository.ReservationPolicy) ([]*entity.Batch, error) {
	return nil, nil
}

func (f *fakeBook) ApplyReservationDelta(int64, int) error { return nil }
func (f *fakeBook) ApplySaleDeduction(int64, int) error    { return nil }
func (f *fakeBook) AdjustQuantity(int64, int) error        { return nil }

func (f *fakeBook) MarkExpired(batchID int64) (int, error) {
	b, ok := f.batches[batchID]
	if !ok {
		return 0, domain.ErrBatchNotFound
	}
	if b.IsExpired || b.CurrentQuantity == 0 {
		return 0, domain.ErrBatchInactive
	}
	removed := b.CurrentQuantity
	b.CurrentQuantity = 0
	b.IsExpired = true
	b.IsActive = false
	return removed, nil
}

func (f *fakeBook) ListActiveWithProduct(context.Context) ([]repository.BatchWithProduct, error) {
	var out []repository.BatchWithProduct
	for _, b := range f.batches {
		if !b.IsActive {
			continue
		}
		out = append(out, repository.BatchWithProduct{Batch: *b, Product: f.products[b.ProductID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Batch.ID < out[j].Batch.ID })
	return out, nil
}

func (f *fakeBook) AvailableStock(context.Context, int64) (int, error) { return 0, nil }

func (f *fakeBook) createMovement(m *entity.StockMovement) error {
	f.movements = append(f.movements, m)
	return nil
}

type fakeMovements struct{ book *fakeBook }

func (r *fakeMovements) Create(m *entity.StockMovement) error { return r.book.createMovement(m) }
func (r *fakeMovements) List(context.Context, repository.MovementFilter) ([]*entity.StockMovement, error) {
	return r.book.movements, nil
}

type fakeTx struct{ book *fakeBook }

func (t *fakeTx) Run(_ context.Context, fn func(inventory.TxRepos) error) error {
	return fn(inventory.TxRepos{Batches: t.book, Movements: &fakeMovements{book: t.book}})
}

func newTestUseCase(book *fakeBook) *UseCase {
	return NewUseCase(book, &fakeTx{book: book}, domexpiry.DefaultThresholds())
}

func expiryIn(days int) time.Time { return time.Now().AddDate(0, 0, days) }

// seedMixedRisk cinco lotes del mismo precio con urgencia y volumen variados.
// Devuelve los IDs en orden de creación (días 3, 20, 60, 120, 300).
func seedMixedRisk(book *fakeBook) []int64 {
	price := decimal.RequireFromString("15.00")
	specs := []struct {
		days, qty int
	}{
		{3, 30}, {20, 75}, {60, 150}, {120, 250}, {300, 350},
	}
	ids := make([]int64, 0, len(specs))
	for i, s := range specs {
		p := entity.ProductMeta{ID: int64(i + 1), Name: "Producto", IsActive: true}
		ids = append(ids, book.add(p, entity.Batch{
			BatchNumber:         "L",
			CurrentQuantity:     s.qty,
			SellingPricePerUnit: price,
			ExpiryDate:          expiryIn(s.days),
		}))
	}
	return ids
}

func TestAlerts_OrdenaPorPuntajeDescendente(t *testing.T) {
	book := newFakeBook()
	ids := seedMixedRisk(book)
	uc := newTestUseCase(book)

	alerts, err := uc.Alerts(context.Background(), AlertOptions{})
	require.NoError(t, err)
	require.Len(t, alerts, 5)

	// El puntaje pondera urgencia, valor y volumen: un lote HIGH grande puede
	// superar a un CRITICAL chico.
	wantOrder := []int64{ids[1], ids[2], ids[3], ids[0], ids[4]}
	for i, want := range wantOrder {
		assert.Equal(t, want, alerts[i].BatchID, "posición %d", i)
	}
	for i := 1; i < len(alerts); i++ {
		assert.GreaterOrEqual(t, alerts[i-1].PriorityScore, alerts[i].PriorityScore)
	}
}

func TestAlerts_NivelesYAccionRecomendada(t *testing.T) {
	book := newFakeBook()
	ids := seedMixedRisk(book)
	uc := newTestUseCase(book)

	alerts, err := uc.Alerts(context.Background(), AlertOptions{})
	require.NoError(t, err)

	byID := make(map[int64]string, len(alerts))
	actions := make(map[int64]string, len(alerts))
	for _, a := range alerts {
		byID[a.BatchID] = a.AlertLevel
		actions[a.BatchID] = a.RecommendedAction
	}
	assert.Equal(t, "critical", byID[ids[0]])
	assert.Equal(t, "high", byID[ids[1]])
	assert.Equal(t, "medium", byID[ids[2]])
	assert.Equal(t, "low", byID[ids[3]])
	assert.Equal(t, "info", byID[ids[4]])

	// CRITICAL con 30 unidades (<= 50) y HIGH con 75 (<= 100).
	assert.Equal(t, "prioritize sale or mark for disposal", actions[ids[0]])
	assert.Equal(t, "prioritize in sales recommendations", actions[ids[1]])
}

func TestAlerts_FiltraPorNivel(t *testing.T) {
	book := newFakeBook()
	ids := seedMixedRisk(book)
	uc := newTestUseCase(book)

	alerts, err := uc.Alerts(context.Background(), AlertOptions{
		Levels: []domexpiry.AlertLevel{domexpiry.LevelCritical},
	})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, ids[0], alerts[0].BatchID)
}

func TestAlerts_FiltraPorProducto(t *testing.T) {
	book := newFakeBook()
	ids := seedMixedRisk(book)
	uc := newTestUseCase(book)

	// Cada lote del fixture pertenece a un producto distinto.
	alerts, err := uc.Alerts(context.Background(), AlertOptions{ProductID: 2})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, ids[1], alerts[0].BatchID)
	assert.Equal(t, int64(2), alerts[0].ProductID)
}

func TestAlerts_MinQuantityExcluyeLotesChicos(t *testing.T) {
	book := newFakeBook()
	seedMixedRisk(book)
	uc := newTestUseCase(book)

	alerts, err := uc.Alerts(context.Background(), AlertOptions{MinQuantity: 100})
	require.NoError(t, err)
	require.Len(t, alerts, 3)
	for _, a := range alerts {
		assert.GreaterOrEqual(t, a.CurrentQuantity, 100)
	}
}

func TestAlerts_VencidosSoloSiSePiden(t *testing.T) {
	book := newFakeBook()
	p := entity.ProductMeta{ID: 1, Name: "Vencido", IsActive: true}
	id := book.add(p, entity.Batch{BatchNumber: "V-1", CurrentQuantity: 10, SellingPricePerUnit: decimal.RequireFromString("5.00"), ExpiryDate: expiryIn(-3)})
	uc := newTestUseCase(book)

	alerts, err := uc.Alerts(context.Background(), AlertOptions{})
	require.NoError(t, err)
	assert.Empty(t, alerts)

	alerts, err = uc.Alerts(context.Background(), AlertOptions{IncludeExpired: true})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, id, alerts[0].BatchID)
	assert.Equal(t, "critical", alerts[0].AlertLevel)
	assert.Negative(t, alerts[0].DaysUntilExpiry)
}

func TestAlerts_ControladoMultiplicaElPuntaje(t *testing.T) {
	book := newFakeBook()
	price := decimal.RequireFromString("10.00")
	plain := book.add(entity.ProductMeta{ID: 1, Name: "Común", IsActive: true},
		entity.Batch{BatchNumber: "A", CurrentQuantity: 50, SellingPricePerUnit: price, ExpiryDate: expiryIn(10)})
	controlled := book.add(entity.ProductMeta{ID: 2, Name: "Controlado", IsActive: true, IsControlled: true},
		entity.Batch{BatchNumber: "B", CurrentQuantity: 50, SellingPricePerUnit: price, ExpiryDate: expiryIn(10)})
	uc := newTestUseCase(book)

	alerts, err := uc.Alerts(context.Background(), AlertOptions{})
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	assert.Equal(t, controlled, alerts[0].BatchID)
	assert.Equal(t, plain, alerts[1].BatchID)
	assert.InDelta(t, alerts[1].PriorityScore*1.5, alerts[0].PriorityScore, 0.002)
}

func TestAlerts_EmpateDesempataPorDiasYLuegoPorID(t *testing.T) {
	book := newFakeBook()
	price := decimal.RequireFromString("10.00")
	// Más allá del horizonte de un año la urgencia es 0: mismo puntaje.
	far := book.add(entity.ProductMeta{ID: 1, Name: "Lejano", IsActive: true},
		entity.Batch{BatchNumber: "A", CurrentQuantity: 40, SellingPricePerUnit: price, ExpiryDate: expiryIn(500)})
	near := book.add(entity.ProductMeta{ID: 2, Name: "Menos lejano", IsActive: true},
		entity.Batch{BatchNumber: "B", CurrentQuantity: 40, SellingPricePerUnit: price, ExpiryDate: expiryIn(400)})
	uc := newTestUseCase(book)

	alerts, err := uc.Alerts(context.Background(), AlertOptions{})
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	require.Equal(t, alerts[0].PriorityScore, alerts[1].PriorityScore)
	assert.Equal(t, near, alerts[0].BatchID, "a igual puntaje gana el más próximo")
	assert.Equal(t, far, alerts[1].BatchID)
}

func TestAlerts_ExcluyeInactivosYSinStock(t *testing.T) {
	book := newFakeBook()
	price := decimal.RequireFromString("10.00")
	book.add(entity.ProductMeta{ID: 1, Name: "Producto baja", IsActive: false},
		entity.Batch{BatchNumber: "A", CurrentQuantity: 10, SellingPricePerUnit: price, ExpiryDate: expiryIn(5)})
	book.add(entity.ProductMeta{ID: 2, Name: "Sin stock", IsActive: true},
		entity.Batch{BatchNumber: "B", CurrentQuantity: 0, SellingPricePerUnit: price, ExpiryDate: expiryIn(5)})
	uc := newTestUseCase(book)

	alerts, err := uc.Alerts(context.Background(), AlertOptions{})
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestSummary_VentanasAcumulativas(t *testing.T) {
	book := newFakeBook()
	seedMixedRisk(book)
	uc := newTestUseCase(book)

	s, err := uc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, s.TotalBatches)
	assert.Equal(t, 855, s.TotalQuantity)
	assert.True(t, s.TotalValue.Equal(decimal.RequireFromString("12825.00")), "total %s", s.TotalValue)

	// Un lote a 3 días cuenta en las cuatro ventanas: son acumulativas.
	// Lotes, unidades y valor se acumulan juntos.
	assert.Equal(t, 1, s.Breakdown.Critical.Batches)
	assert.Equal(t, 30, s.Breakdown.Critical.Quantity)
	assert.True(t, s.Breakdown.Critical.Value.Equal(decimal.RequireFromString("450.00")))
	assert.Equal(t, 2, s.Breakdown.High.Batches)
	assert.Equal(t, 105, s.Breakdown.High.Quantity)
	assert.True(t, s.Breakdown.High.Value.Equal(decimal.RequireFromString("1575.00")))
	assert.Equal(t, 3, s.Breakdown.Medium.Batches)
	assert.Equal(t, 255, s.Breakdown.Medium.Quantity)
	assert.True(t, s.Breakdown.Medium.Value.Equal(decimal.RequireFromString("3825.00")))
	assert.Equal(t, 4, s.Breakdown.Low.Batches)
	assert.Equal(t, 505, s.Breakdown.Low.Quantity)
	assert.True(t, s.Breakdown.Low.Value.Equal(decimal.RequireFromString("7575.00")))
	assert.Zero(t, s.Expired.Batches)
	assert.Zero(t, s.Expired.Quantity)
}

func TestSummary_VencidosEnSuPropioBucket(t *testing.T) {
	book := newFakeBook()
	price := decimal.RequireFromString("20.00")
	book.add(entity.ProductMeta{ID: 1, Name: "Vigente", IsActive: true},
		entity.Batch{BatchNumber: "A", CurrentQuantity: 10, SellingPricePerUnit: price, ExpiryDate: expiryIn(5)})
	book.add(entity.ProductMeta{ID: 2, Name: "Vencido", IsActive: true},
		entity.Batch{BatchNumber: "B", CurrentQuantity: 8, SellingPricePerUnit: price, ExpiryDate: expiryIn(-2)})
	uc := newTestUseCase(book)

	s, err := uc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, s.TotalBatches, "el vencido no cuenta en los totales")
	assert.Equal(t, 10, s.TotalQuantity)
	assert.True(t, s.TotalValue.Equal(decimal.RequireFromString("200.00")))
	assert.Equal(t, 1, s.Expired.Batches)
	assert.Equal(t, 8, s.Expired.Quantity)
	assert.True(t, s.Expired.Value.Equal(decimal.RequireFromString("160.00")))
	assert.Equal(t, 1, s.Breakdown.Critical.Batches, "el vencido tampoco entra en la ventana critical")
}

func TestDashboard_CombinaResumenAlertasYRecomendaciones(t *testing.T) {
	book := newFakeBook()
	seedMixedRisk(book)
	book.add(entity.ProductMeta{ID: 9, Name: "Vencido", IsActive: true},
		entity.Batch{BatchNumber: "V", CurrentQuantity: 5, SellingPricePerUnit: decimal.RequireFromString("1.00"), ExpiryDate: expiryIn(-1)})
	uc := newTestUseCase(book)

	d, err := uc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, d.Summary.TotalBatches)
	require.Len(t, d.TopAlerts, 2, "solo critical y high")
	for _, a := range d.TopAlerts {
		assert.Contains(t, []string{"critical", "high"}, a.AlertLevel)
	}
	assert.NotEmpty(t, d.Recommendations)
	assert.Contains(t, d.Recommendations[0], "vencido")
}

func TestMarkExpired_DaDeBajaYDejaAuditoria(t *testing.T) {
	book := newFakeBook()
	id := book.add(entity.ProductMeta{ID: 1, Name: "Vencido", IsActive: true},
		entity.Batch{BatchNumber: "V-7", CurrentQuantity: 25, SellingPricePerUnit: decimal.RequireFromString("3.00"), ExpiryDate: expiryIn(-4)})
	uc := newTestUseCase(book)

	out, err := uc.MarkExpired(context.Background(), id, 2)
	require.NoError(t, err)
	assert.Equal(t, 25, out.QuantityRemoved)

	got, _ := book.GetByID(id)
	assert.Zero(t, got.CurrentQuantity)
	assert.True(t, got.IsExpired)

	require.Len(t, book.movements, 1)
	mov := book.movements[0]
	assert.Equal(t, entity.MovementTypeExpired, mov.Type)
	assert.Equal(t, -25, mov.Quantity)
	assert.Contains(t, mov.Notes, "V-7")
	assert.Equal(t, int64(2), mov.UserID)
}

func TestMarkExpired_RechazaLoteVigente(t *testing.T) {
	book := newFakeBook()
	id := book.add(entity.ProductMeta{ID: 1, Name: "Vigente", IsActive: true},
		entity.Batch{BatchNumber: "OK", CurrentQuantity: 25, SellingPricePerUnit: decimal.RequireFromString("3.00"), ExpiryDate: expiryIn(30)})
	uc := newTestUseCase(book)

	_, err := uc.MarkExpired(context.Background(), id, 2)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Empty(t, book.movements)
}

func TestMarkExpired_DosVecesFalla(t *testing.T) {
	book := newFakeBook()
	id := book.add(entity.ProductMeta{ID: 1, Name: "Vencido", IsActive: true},
		entity.Batch{BatchNumber: "V", CurrentQuantity: 25, SellingPricePerUnit: decimal.RequireFromString("3.00"), ExpiryDate: expiryIn(-4)})
	uc := newTestUseCase(book)

	_, err := uc.MarkExpired(context.Background(), id, 2)
	require.NoError(t, err)
	_, err = uc.MarkExpired(context.Background(), id, 2)
	assert.ErrorIs(t, err, domain.ErrBatchInactive)
}
