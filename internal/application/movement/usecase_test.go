package movement_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luc4n/StockMaster/internal/application/movement"
	"github.com/luc4n/StockMaster/internal/domain"
	"github.com/luc4n/StockMaster/internal/domain/entity"
	"github.com/luc4n/StockMaster/internal/domain/ledger"
	"github.com/luc4n/StockMaster/internal/domain/repository"
	"github.com/luc4n/StockMaster/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles en memoria: almacén transaccional con rollback por snapshot
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu     sync.Mutex
	events []entity.MovementEvent
	stock  map[string]int64

	failCreates  bool // Create devuelve error (falla de infraestructura)
	partialBatch bool // CreateBatch persiste el primero y falla el segundo
	noRollback   bool // simula un almacén sin frontera transaccional
	nextID       int
}

func newMemStore() *memStore {
	return &memStore{stock: map[string]int64{}}
}

func (s *memStore) vendorEvents(vendorID string) []entity.MovementEvent {
	var out []entity.MovementEvent
	for _, e := range s.events {
		if e.VendorID == vendorID {
			out = append(out, e)
		}
	}
	return out
}

func (s *memStore) balance(vendorID, productID string) int64 {
	return ledger.ProductBalance(s.vendorEvents(vendorID), productID)
}

type memEventRepo struct{ s *memStore }

// El runner ya serializa la transacción completa con su mutex.
func (r *memEventRepo) LockVendors(vendorIDs ...string) error { return nil }

func (r *memEventRepo) Create(event *entity.MovementEvent) error {
	if r.s.failCreates {
		return errors.New("event store caído")
	}
	r.s.nextID++
	event.ID = fmt.Sprintf("ev-%d", r.s.nextID)
	r.s.events = append(r.s.events, *event)
	return nil
}

func (r *memEventRepo) CreateBatch(events []*entity.MovementEvent) error {
	if r.s.partialBatch && len(events) > 1 {
		_ = r.Create(events[0])
		return &repository.PartialAppendError{
			AppendedIDs: []string{events[0].ID},
			FailedID:    "(sin asignar)",
			Cause:       errors.New("append del segundo evento falló"),
		}
	}
	for _, e := range events {
		if err := r.Create(e); err != nil {
			return err
		}
	}
	return nil
}

func (r *memEventRepo) ListByVendor(vendorID string) ([]entity.MovementEvent, error) {
	return r.s.vendorEvents(vendorID), nil
}

func (r *memEventRepo) ListAll() ([]entity.MovementEvent, error) {
	return append([]entity.MovementEvent(nil), r.s.events...), nil
}

func (r *memEventRepo) ListRecent(limit, offset int) ([]entity.MovementEvent, error) {
	all := append([]entity.MovementEvent(nil), r.s.events...)
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

type memStockRepo struct{ s *memStore }

func (r *memStockRepo) GetForUpdate(productID string) (*entity.CentralStock, error) {
	// El mutex del runner ya serializa la transacción completa.
	return &entity.CentralStock{ProductID: productID, Quantity: r.s.stock[productID]}, nil
}

func (r *memStockRepo) Set(stock *entity.CentralStock) error {
	r.s.stock[stock.ProductID] = stock.Quantity
	return nil
}

// memTxRunner serializa transacciones con un mutex y deshace con snapshot en
// error, igual que el rollback del almacén durable.
type memTxRunner struct{ s *memStore }

func (t *memTxRunner) Run(_ context.Context, fn func(
	eventRepo repository.MovementEventRepository,
	stockRepo repository.CentralStockRepository,
) error) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	snapEvents := append([]entity.MovementEvent(nil), t.s.events...)
	snapStock := make(map[string]int64, len(t.s.stock))
	for k, v := range t.s.stock {
		snapStock[k] = v
	}

	err := fn(&memEventRepo{t.s}, &memStockRepo{t.s})
	if err != nil && !t.s.noRollback {
		t.s.events = snapEvents
		t.s.stock = snapStock
	}
	return err
}

type memVendorRepo struct{ vendors map[string]*entity.Vendor }

func (r *memVendorRepo) GetByID(id string) (*entity.Vendor, error) { return r.vendors[id], nil }
func (r *memVendorRepo) List() ([]*entity.Vendor, error) {
	var out []*entity.Vendor
	for _, v := range r.vendors {
		out = append(out, v)
	}
	return out, nil
}

type memProductRepo struct{ products map[string]*entity.Product }

func (r *memProductRepo) GetByID(id string) (*entity.Product, error) { return r.products[id], nil }
func (r *memProductRepo) List() ([]*entity.Product, error)           { return nil, nil }
func (r *memProductRepo) ListWithCentralStock(bool) ([]*entity.ProductWithStock, error) {
	return nil, nil
}
func (r *memProductRepo) PriceIndex() (ledger.PriceIndex, error) { return ledger.PriceIndex{}, nil }

func newFixture(t *testing.T) (*movement.UseCase, *memStore) {
	t.Helper()
	store := newMemStore()
	vendors := &memVendorRepo{vendors: map[string]*entity.Vendor{
		"vendorA": {ID: "vendorA", Name: "Ana"},
		"vendorB": {ID: "vendorB", Name: "Bruno"},
	}}
	products := &memProductRepo{products: map[string]*entity.Product{
		"P1": {ID: "P1", Name: "Refrigerante Cola 2L"},
		"P2": {ID: "P2", Name: "Suco de Laranja 1L"},
	}}
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	uc := movement.NewUseCase(&memTxRunner{store}, vendors, products, nil, log)
	return uc, store
}

// ──────────────────────────────────────────────────────────────────────────────
// Distribute
// ──────────────────────────────────────────────────────────────────────────────

func TestDistribute_ReservaYAppend(t *testing.T) {
	uc, store := newFixture(t)
	store.stock["P1"] = 10

	res, err := uc.Distribute(context.Background(), "vendorA", "P1", 4, "carga de domingo")
	require.NoError(t, err)
	assert.Equal(t, movement.StatusCommitted, res.Status)
	require.Len(t, res.EventIDs, 1)

	assert.Equal(t, int64(6), store.stock["P1"], "estoque central decrementado")
	assert.Equal(t, int64(4), store.balance("vendorA", "P1"), "posesión derivada del evento")
}

// Escenario del contrato: estoque central 5, envío de 5 ok (queda 0), envío
// de 1 rechazado sin efectos.
func TestDistribute_EstoqueInsuficiente(t *testing.T) {
	uc, store := newFixture(t)
	store.stock["P1"] = 5

	_, err := uc.Distribute(context.Background(), "vendorA", "P1", 5, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), store.stock["P1"])

	_, err = uc.Distribute(context.Background(), "vendorA", "P1", 1, "")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(0), store.stock["P1"], "el rechazo no toca el contador")
	assert.Equal(t, int64(5), store.balance("vendorA", "P1"), "sin evento nuevo")
}

// Dos envíos secuenciales decrementan exactamente q1+q2.
func TestDistribute_Secuencial(t *testing.T) {
	uc, store := newFixture(t)
	store.stock["P1"] = 100

	_, err := uc.Distribute(context.Background(), "vendorA", "P1", 30, "")
	require.NoError(t, err)
	_, err = uc.Distribute(context.Background(), "vendorA", "P1", 25, "")
	require.NoError(t, err)

	assert.Equal(t, int64(45), store.stock["P1"])
	assert.Equal(t, int64(55), store.balance("vendorA", "P1"))
}

func TestDistribute_CantidadInvalida(t *testing.T) {
	uc, store := newFixture(t)
	store.stock["P1"] = 5

	for _, qty := range []int64{0, -3} {
		_, err := uc.Distribute(context.Background(), "vendorA", "P1", qty, "")
		assert.ErrorIs(t, err, domain.ErrInvalidOperation)
	}
	assert.Empty(t, store.events, "validación rechaza antes de tocar recursos")
}

func TestDistribute_VendedorInexistente(t *testing.T) {
	uc, store := newFixture(t)
	store.stock["P1"] = 5

	_, err := uc.Distribute(context.Background(), "fantasma", "P1", 1, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Falla de infraestructura en el append después de reservar: el rollback
// libera la reserva (el contador vuelve a su valor previo).
func TestDistribute_AppendFallaCompensaReserva(t *testing.T) {
	uc, store := newFixture(t)
	store.stock["P1"] = 8
	store.failCreates = true

	_, err := uc.Distribute(context.Background(), "vendorA", "P1", 3, "")
	require.ErrorIs(t, err, domain.ErrStoreUnavailable, "falla de almacén es categoría reintentable")
	assert.Equal(t, int64(8), store.stock["P1"], "la reserva nunca queda sin compensar")
	assert.Empty(t, store.events)
}

// Envíos concurrentes sobre el mismo producto: con estoque 5 y dos pedidos de
// 3, exactamente uno confirma y el contador queda en 2, jamás negativo.
func TestDistribute_ConcurrenciaMismoProducto(t *testing.T) {
	uc, store := newFixture(t)
	store.stock["P1"] = 5

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, vendorID := range []string{"vendorA", "vendorB"} {
		wg.Add(1)
		go func(i int, vendorID string) {
			defer wg.Done()
			_, errs[i] = uc.Distribute(context.Background(), vendorID, "P1", 3, "")
		}(i, vendorID)
	}
	wg.Wait()

	var committed, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			committed++
		case errors.Is(err, domain.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, committed, "exactamente uno gana la reserva")
	assert.Equal(t, 1, rejected)
	assert.Equal(t, int64(2), store.stock["P1"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Return
// ──────────────────────────────────────────────────────────────────────────────

// Ida y vuelta: distribuir 10 y devolver 10 restaura saldo del vendedor y
// estoque central a sus valores previos.
func TestReturn_RoundTrip(t *testing.T) {
	uc, store := newFixture(t)
	store.stock["P1"] = 20

	_, err := uc.Distribute(context.Background(), "vendorA", "P1", 10, "")
	require.NoError(t, err)
	_, err = uc.Return(context.Background(), "vendorA", "P1", 10, "fim do período")
	require.NoError(t, err)

	assert.Equal(t, int64(20), store.stock["P1"])
	assert.Equal(t, int64(0), store.balance("vendorA", "P1"))
}

// Escenario del contrato: el vendedor tiene 3 de P2; devolver 4 se rechaza y
// el saldo sigue en 3.
func TestReturn_ExcedeSaldo(t *testing.T) {
	uc, store := newFixture(t)
	store.stock["P2"] = 10
	_, err := uc.Distribute(context.Background(), "vendorA", "P2", 3, "")
	require.NoError(t, err)

	_, err = uc.Return(context.Background(), "vendorA", "P2", 4, "")
	require.ErrorIs(t, err, domain.ErrExceedsBalance)
	assert.Equal(t, int64(3), store.balance("vendorA", "P2"))
	assert.Equal(t, int64(7), store.stock["P2"], "la liberación no ocurre en un rechazo")
}

// La validación usa la salida del ledger, que incluye transferencias previas.
func TestReturn_SaldoIncluyeTransferencias(t *testing.T) {
	uc, store := newFixture(t)
	store.stock["P1"] = 10
	_, err := uc.Distribute(context.Background(), "vendorA", "P1", 6, "")
	require.NoError(t, err)
	_, err = uc.Transfer(context.Background(), "vendorA", "vendorB", "P1", 4, "")
	require.NoError(t, err)

	// vendorA quedó con 2; devolver 3 debe fallar, devolver 2 debe pasar.
	_, err = uc.Return(context.Background(), "vendorA", "P1", 3, "")
	assert.ErrorIs(t, err, domain.ErrExceedsBalance)
	_, err = uc.Return(context.Background(), "vendorA", "P1", 2, "")
	assert.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transfer
// ──────────────────────────────────────────────────────────────────────────────

// Transferencia: -n en el origen, +n en el destino, flota sin cambios.
func TestTransfer_MueveSaldoEntreVendedores(t *testing.T) {
	uc, store := newFixture(t)
	store.stock["P1"] = 10
	_, err := uc.Distribute(context.Background(), "vendorA", "P1", 8, "")
	require.NoError(t, err)

	res, err := uc.Transfer(context.Background(), "vendorA", "vendorB", "P1", 5, "feira")
	require.NoError(t, err)
	require.Len(t, res.EventIDs, 2, "dos eventos ligados")

	assert.Equal(t, int64(3), store.balance("vendorA", "P1"))
	assert.Equal(t, int64(5), store.balance("vendorB", "P1"))

	// Ambos eventos comparten el OperationID para auditoría.
	all, _ := (&memEventRepo{store}).ListAll()
	var ops []string
	for _, e := range all {
		if e.Kind == entity.KindTransferOut || e.Kind == entity.KindTransferIn {
			ops = append(ops, e.OperationID)
		}
	}
	require.Len(t, ops, 2)
	assert.Equal(t, ops[0], ops[1])

	// La cantidad total de la flota para P1 no cambia.
	summary := ledger.ComputeAggregate(all, nil)
	assert.Equal(t, int64(8), summary.TotalQuantity)
}

// Escenario del contrato: transferencia al mismo vendedor se rechaza sin
// append de ningún evento.
func TestTransfer_MismoVendedor(t *testing.T) {
	uc, store := newFixture(t)
	store.stock["P1"] = 10
	_, err := uc.Distribute(context.Background(), "vendorA", "P1", 5, "")
	require.NoError(t, err)
	before := len(store.events)

	_, err = uc.Transfer(context.Background(), "vendorA", "vendorA", "P1", 1, "")
	require.ErrorIs(t, err, domain.ErrSameVendor)
	assert.Equal(t, before, len(store.events))
}

// Identificadores vacíos son una operación malformada, no una transferencia
// al mismo vendedor: la categoría correcta es ErrInvalidOperation.
func TestTransfer_EntradasVacias(t *testing.T) {
	uc, store := newFixture(t)

	_, err := uc.Transfer(context.Background(), "", "", "P1", 1, "")
	require.ErrorIs(t, err, domain.ErrInvalidOperation)
	assert.NotErrorIs(t, err, domain.ErrSameVendor)
	assert.Empty(t, store.events)
}

func TestTransfer_SaldoInsuficiente(t *testing.T) {
	uc, store := newFixture(t)
	store.stock["P1"] = 10
	_, err := uc.Distribute(context.Background(), "vendorA", "P1", 2, "")
	require.NoError(t, err)

	_, err = uc.Transfer(context.Background(), "vendorA", "vendorB", "P1", 3, "")
	assert.ErrorIs(t, err, domain.ErrExceedsBalance)
	assert.Equal(t, int64(2), store.balance("vendorA", "P1"))
	assert.Equal(t, int64(0), store.balance("vendorB", "P1"))
}

// Lote aplicado a medias (almacén sin frontera transaccional): se superficie
// como error de integridad, distinto y no reintentable.
func TestTransfer_AppendParcialEsErrorDeIntegridad(t *testing.T) {
	uc, store := newFixture(t)
	store.stock["P1"] = 10
	_, err := uc.Distribute(context.Background(), "vendorA", "P1", 5, "")
	require.NoError(t, err)

	store.partialBatch = true
	store.noRollback = true

	_, err = uc.Transfer(context.Background(), "vendorA", "vendorB", "P1", 2, "")
	require.ErrorIs(t, err, domain.ErrIntegrity)
	assert.NotErrorIs(t, err, domain.ErrStoreUnavailable,
		"integridad no es la categoría reintentable")
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia con transacciones intercaladas
// ──────────────────────────────────────────────────────────────────────────────

// lockedStore reproduce la semántica del almacén durable cuando las
// transacciones corren intercaladas: las escrituras quedan pendientes hasta el
// commit, cada lectura ve el estado confirmado al momento de ejecutarse, y los
// locks por vendedor y por producto se retienen hasta el fin de la transacción.
// A diferencia de memTxRunner, aquí nada serializa la transacción completa:
// la única protección del check-then-act son los propios locks.
type lockedStore struct {
	mu     sync.Mutex
	events []entity.MovementEvent
	stock  map[string]int64
	locks  map[string]*sync.Mutex
	nextID int
}

func newLockedStore() *lockedStore {
	return &lockedStore{stock: map[string]int64{}, locks: map[string]*sync.Mutex{}}
}

func (s *lockedStore) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.locks[key]
	if !ok {
		m = &sync.Mutex{}
		s.locks[key] = m
	}
	return m
}

func (s *lockedStore) committedVendorEvents(vendorID string) []entity.MovementEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.MovementEvent
	for _, e := range s.events {
		if e.VendorID == vendorID {
			out = append(out, e)
		}
	}
	return out
}

func (s *lockedStore) balance(vendorID, productID string) int64 {
	return ledger.ProductBalance(s.committedVendorEvents(vendorID), productID)
}

// lockedTx implementa ambos puertos sobre una transacción abierta.
type lockedTx struct {
	s            *lockedStore
	pending      []entity.MovementEvent
	pendingStock map[string]int64
	held         []*sync.Mutex
}

func (t *lockedTx) LockVendors(vendorIDs ...string) error {
	ids := append([]string(nil), vendorIDs...)
	sort.Strings(ids)
	for _, id := range ids {
		m := t.s.lockFor("vendor:" + id)
		m.Lock()
		t.held = append(t.held, m)
	}
	return nil
}

func (t *lockedTx) Create(event *entity.MovementEvent) error {
	t.s.mu.Lock()
	t.s.nextID++
	event.ID = fmt.Sprintf("ev-%d", t.s.nextID)
	t.s.mu.Unlock()
	t.pending = append(t.pending, *event)
	return nil
}

func (t *lockedTx) CreateBatch(events []*entity.MovementEvent) error {
	for _, e := range events {
		if err := t.Create(e); err != nil {
			return err
		}
	}
	return nil
}

func (t *lockedTx) ListByVendor(vendorID string) ([]entity.MovementEvent, error) {
	out := t.s.committedVendorEvents(vendorID)
	for _, e := range t.pending {
		if e.VendorID == vendorID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (t *lockedTx) ListAll() ([]entity.MovementEvent, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return append([]entity.MovementEvent(nil), t.s.events...), nil
}

func (t *lockedTx) ListRecent(limit, offset int) ([]entity.MovementEvent, error) {
	all, _ := t.ListAll()
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (t *lockedTx) GetForUpdate(productID string) (*entity.CentralStock, error) {
	m := t.s.lockFor("product:" + productID)
	m.Lock()
	t.held = append(t.held, m)

	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	qty, ok := t.pendingStock[productID]
	if !ok {
		qty = t.s.stock[productID]
	}
	return &entity.CentralStock{ProductID: productID, Quantity: qty}, nil
}

func (t *lockedTx) Set(stock *entity.CentralStock) error {
	t.pendingStock[stock.ProductID] = stock.Quantity
	return nil
}

func (t *lockedTx) finish(commit bool) {
	if commit {
		t.s.mu.Lock()
		t.s.events = append(t.s.events, t.pending...)
		for k, v := range t.pendingStock {
			t.s.stock[k] = v
		}
		t.s.mu.Unlock()
	}
	for i := len(t.held) - 1; i >= 0; i-- {
		t.held[i].Unlock()
	}
	t.held = nil
}

type lockedTxRunner struct{ s *lockedStore }

func (r *lockedTxRunner) Run(_ context.Context, fn func(
	eventRepo repository.MovementEventRepository,
	stockRepo repository.CentralStockRepository,
) error) error {
	tx := &lockedTx{s: r.s, pendingStock: map[string]int64{}}
	err := fn(tx, tx)
	tx.finish(err == nil)
	return err
}

func newLockedFixture(t *testing.T) (*movement.UseCase, *lockedStore) {
	t.Helper()
	store := newLockedStore()
	vendors := &memVendorRepo{vendors: map[string]*entity.Vendor{
		"vendorA": {ID: "vendorA", Name: "Ana"},
		"vendorB": {ID: "vendorB", Name: "Bruno"},
	}}
	products := &memProductRepo{products: map[string]*entity.Product{
		"P1": {ID: "P1", Name: "Refrigerante Cola 2L"},
	}}
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	uc := movement.NewUseCase(&lockedTxRunner{store}, vendors, products, nil, log)
	return uc, store
}

// Dos transferencias concurrentes del mismo origen con transacciones
// intercaladas: los locks por vendedor serializan el check-then-act. Con saldo
// 5 y dos transferencias de 4, exactamente una confirma y el saldo del origen
// jamás queda negativo.
func TestTransfer_ConcurrenciaMismoOrigen(t *testing.T) {
	uc, store := newLockedFixture(t)
	store.stock["P1"] = 5
	_, err := uc.Distribute(context.Background(), "vendorA", "P1", 5, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Transfer(context.Background(), "vendorA", "vendorB", "P1", 4, "")
		}(i)
	}
	wg.Wait()

	var committed, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			committed++
		case errors.Is(err, domain.ErrExceedsBalance):
			rejected++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, committed, "exactamente una transferencia gana el lock")
	assert.Equal(t, 1, rejected)
	assert.Equal(t, int64(1), store.balance("vendorA", "P1"), "el saldo del origen no queda negativo")
	assert.Equal(t, int64(4), store.balance("vendorB", "P1"))
}

// Dos devoluciones concurrentes del mismo vendedor: sin el lock ambas leerían
// el mismo saldo previo y la segunda dejaría la posesión negativa.
func TestReturn_ConcurrenciaMismoVendedor(t *testing.T) {
	uc, store := newLockedFixture(t)
	store.stock["P1"] = 5
	_, err := uc.Distribute(context.Background(), "vendorA", "P1", 5, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Return(context.Background(), "vendorA", "P1", 4, "")
		}(i)
	}
	wg.Wait()

	var committed, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			committed++
		case errors.Is(err, domain.ErrExceedsBalance):
			rejected++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, committed, "exactamente una devolución gana el lock")
	assert.Equal(t, 1, rejected)
	assert.Equal(t, int64(1), store.balance("vendorA", "P1"))
	assert.Equal(t, int64(4), store.stock["P1"], "solo la devolución confirmada libera estoque")
}
