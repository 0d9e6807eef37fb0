package movement

import (
	"context"

	"github.com/luc4n/StockMaster/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción del almacén durable,
// pasando repositorios atados a esa transacción. Es la frontera de atomicidad
// del coordinador: append de eventos y ajuste del contador central confirman
// juntos o ninguno (el rollback es la acción compensatoria de una reserva).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		eventRepo repository.MovementEventRepository,
		stockRepo repository.CentralStockRepository,
	) error) error
}

// CacheInvalidator invalida proyecciones cacheadas (saldos, resumen de flota)
// después de confirmar un movimiento. Implementación nula si no hay cache.
type CacheInvalidator interface {
	InvalidateBalances(ctx context.Context, vendorIDs ...string)
}
