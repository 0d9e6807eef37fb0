package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luc4n/StockMaster/internal/domain/entity"
	"github.com/luc4n/StockMaster/pkg/logger"
)

type stubEventRepo struct {
	events []entity.MovementEvent
}

func (r *stubEventRepo) LockVendors(...string) error               { return nil }
func (r *stubEventRepo) Create(*entity.MovementEvent) error        { return nil }
func (r *stubEventRepo) CreateBatch([]*entity.MovementEvent) error { return nil }

func (r *stubEventRepo) ListByVendor(vendorID string) ([]entity.MovementEvent, error) {
	var out []entity.MovementEvent
	for _, ev := range r.events {
		if ev.VendorID == vendorID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *stubEventRepo) ListAll() ([]entity.MovementEvent, error) { return r.events, nil }

func (r *stubEventRepo) ListRecent(limit, offset int) ([]entity.MovementEvent, error) {
	return r.events, nil
}

func event(vendorID, productID string, kind entity.MovementKind, qty int64, opID string) entity.MovementEvent {
	return entity.MovementEvent{
		ID:          vendorID + "-" + productID + "-" + string(kind),
		OperationID: opID,
		VendorID:    vendorID,
		ProductID:   productID,
		Kind:        kind,
		Quantity:    qty,
		CreatedAt:   time.Now(),
	}
}

// Ledger sano: envíos, devoluciones y transferencias completas → cero derivas.
func TestReconciler_LedgerConsistente(t *testing.T) {
	repo := &stubEventRepo{events: []entity.MovementEvent{
		event("v1", "p1", entity.KindOutbound, 5, "op1"),
		event("v1", "p1", entity.KindReturn, 2, "op2"),
		event("v1", "p1", entity.KindTransferOut, 3, "op3"),
		event("v2", "p1", entity.KindTransferIn, 3, "op3"),
	}}
	r := NewReconciler(repo, logger.Nop())

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 0, r.checkBalances(repo.events))
	assert.Equal(t, 0, r.checkTransferPairs(repo.events))
}

// Saldo neto negativo por (vendedor, producto) → una deriva.
func TestReconciler_DetectaSaldoNegativo(t *testing.T) {
	repo := &stubEventRepo{events: []entity.MovementEvent{
		event("v1", "p1", entity.KindOutbound, 2, "op1"),
		event("v1", "p1", entity.KindReturn, 5, "op2"),
	}}
	r := NewReconciler(repo, logger.Nop())

	assert.Equal(t, 1, r.checkBalances(repo.events))
}

// Transferencia con solo el lado de salida persistido → una deriva.
func TestReconciler_DetectaTransferenciaIncompleta(t *testing.T) {
	repo := &stubEventRepo{events: []entity.MovementEvent{
		event("v1", "p1", entity.KindOutbound, 5, "op1"),
		event("v1", "p1", entity.KindTransferOut, 2, "op2"),
	}}
	r := NewReconciler(repo, logger.Nop())

	assert.Equal(t, 1, r.checkTransferPairs(repo.events))
}

// Par completo pero con cantidades distintas → una deriva.
func TestReconciler_DetectaCantidadesDesparejas(t *testing.T) {
	repo := &stubEventRepo{events: []entity.MovementEvent{
		event("v1", "p1", entity.KindTransferOut, 2, "op1"),
		event("v2", "p1", entity.KindTransferIn, 3, "op1"),
	}}
	r := NewReconciler(repo, logger.Nop())

	assert.Equal(t, 1, r.checkTransferPairs(repo.events))
}
