package repository

import "github.com/luc4n/StockMaster/internal/domain/entity"

// PartialAppendError señala que un lote de eventos quedó aplicado a medias:
// algunos eventos persistieron y otros no. Con un almacén transaccional no
// ocurre (el rollback descarta todo); un almacén que no pueda garantizar el
// lote atómico debe reportarlo con este error para que el coordinador lo
// trate como falla de integridad y no reintente.
type PartialAppendError struct {
	AppendedIDs []string // eventos que sí persistieron
	FailedID    string   // primer evento que falló
	Cause       error
}

func (e *PartialAppendError) Error() string {
	return "lote de eventos aplicado parcialmente: " + e.Cause.Error()
}

func (e *PartialAppendError) Unwrap() error { return e.Cause }

// MovementEventRepository define el puerto de persistencia del ledger de
// eventos. Append-only: no existen métodos de actualización ni borrado; las
// correcciones son eventos compensatorios nuevos.
type MovementEventRepository interface {
	// LockVendors serializa, dentro de la transacción actual, el check-then-act
	// sobre el ledger de los vendedores indicados. Debe tomarse ANTES de leer
	// el historial para validar un saldo: dos validaciones concurrentes sobre
	// el mismo vendedor se ordenan aquí y la segunda ya ve lo que confirmó la
	// primera. El lock se libera al terminar la transacción. La implementación
	// toma los vendedores en orden fijo para evitar deadlocks.
	LockVendors(vendorIDs ...string) error
	// Create persiste un evento. El ID se asigna si viene vacío y nunca se reutiliza.
	Create(event *entity.MovementEvent) error
	// CreateBatch persiste varios eventos como unidad (par de una transferencia).
	// Si no puede garantizar el todo-o-nada devuelve *PartialAppendError.
	CreateBatch(events []*entity.MovementEvent) error
	// ListByVendor devuelve el historial completo de un vendedor.
	ListByVendor(vendorID string) ([]entity.MovementEvent, error)
	// ListAll devuelve todos los eventos de la flota (para agregados y auditoría).
	ListAll() ([]entity.MovementEvent, error)
	// ListRecent devuelve los últimos eventos por fecha de creación (solo display).
	ListRecent(limit, offset int) ([]entity.MovementEvent, error)
}
