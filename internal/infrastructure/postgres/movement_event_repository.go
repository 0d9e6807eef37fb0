package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/luc4n/StockMaster/internal/domain/entity"
	"github.com/luc4n/StockMaster/internal/domain/repository"
)

var _ repository.MovementEventRepository = (*MovementEventRepo)(nil)

// MovementEventRepo persistencia del ledger de eventos sobre PostgreSQL
// (usable con pool o tx). Solo INSERT y SELECT: el ledger es append-only y
// la tabla no tiene camino de UPDATE/DELETE desde la aplicación.
type MovementEventRepo struct {
	q Querier
}

// NewMovementEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementEventRepository(q Querier) *MovementEventRepo {
	return &MovementEventRepo{q: q}
}

const eventColumns = `id, operation_id, vendor_id, product_id, kind, quantity, notes, created_at`

// LockVendors toma un advisory lock transaccional por vendedor, en orden
// fijo. pgx corre en READ COMMITTED: sin este lock, dos transacciones pueden
// leer el mismo saldo pre-existente y confirmar ambas, dejando la posesión
// negativa. Con el lock, la segunda espera y su ListByVendor posterior ya ve
// los eventos confirmados por la primera. Se libera solo al commit/rollback.
func (r *MovementEventRepo) LockVendors(vendorIDs ...string) error {
	ids := append([]string(nil), vendorIDs...)
	sort.Strings(ids)
	for _, id := range ids {
		_, err := r.q.Exec(context.Background(),
			`SELECT pg_advisory_xact_lock(hashtextextended('vendor_ledger:' || $1, 0))`, id)
		if err != nil {
			return fmt.Errorf("lock vendor ledger: %w", err)
		}
	}
	return nil
}

// Create persiste un evento de movimiento. Asigna ID si viene vacío.
func (r *MovementEventRepo) Create(event *entity.MovementEvent) error {
	if !event.Kind.Valid() {
		return fmt.Errorf("create movement event: tipo de movimiento inválido: %q", event.Kind)
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movement_events (id, operation_id, vendor_id, product_id, kind, quantity, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	notes := (*string)(nil)
	if event.Notes != "" {
		notes = &event.Notes
	}
	_, err := r.q.Exec(context.Background(), query,
		event.ID, event.OperationID, event.VendorID, event.ProductID,
		string(event.Kind), event.Quantity, notes, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create movement event: %w", err)
	}
	return nil
}

// CreateBatch persiste el lote evento a evento. Dentro de una transacción el
// rollback garantiza el todo-o-nada; si este repo se usa sin transacción y un
// append intermedio falla, se reporta el estado parcial con PartialAppendError
// para que el coordinador lo trate como falla de integridad.
func (r *MovementEventRepo) CreateBatch(events []*entity.MovementEvent) error {
	var appended []string
	for _, e := range events {
		if err := r.Create(e); err != nil {
			if len(appended) == 0 {
				return err
			}
			return &repository.PartialAppendError{
				AppendedIDs: appended,
				FailedID:    e.ID,
				Cause:       err,
			}
		}
		appended = append(appended, e.ID)
	}
	return nil
}

// ListByVendor devuelve el historial completo de un vendedor. El orden por
// fecha es solo para display; el cálculo de saldos no depende de él.
func (r *MovementEventRepo) ListByVendor(vendorID string) ([]entity.MovementEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM movement_events WHERE vendor_id = $1 ORDER BY created_at DESC`
	rows, err := r.q.Query(context.Background(), query, vendorID)
	if err != nil {
		return nil, fmt.Errorf("list events by vendor: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListAll devuelve todos los eventos de la flota.
func (r *MovementEventRepo) ListAll() ([]entity.MovementEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM movement_events ORDER BY created_at DESC`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list all events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListRecent devuelve los últimos eventos por fecha de creación.
func (r *MovementEventRepo) ListRecent(limit, offset int) ([]entity.MovementEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM movement_events ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list recent events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]entity.MovementEvent, error) {
	var list []entity.MovementEvent
	for rows.Next() {
		var e entity.MovementEvent
		var kind string
		var notes *string
		if err := rows.Scan(&e.ID, &e.OperationID, &e.VendorID, &e.ProductID,
			&kind, &e.Quantity, &notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement event: %w", err)
		}
		e.Kind = entity.MovementKind(kind)
		if !e.Kind.Valid() {
			return nil, fmt.Errorf("scan movement event %s: tipo de movimiento inválido: %q", e.ID, kind)
		}
		if notes != nil {
			e.Notes = *notes
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
