package reporting

import (
	"context"
	"time"

	"github.com/luc4n/StockMaster/internal/application/dto"
)

// Claves de cache de proyecciones. El coordinador las invalida al confirmar
// cualquier movimiento.
const (
	FleetSummaryKey      = "stockmaster:fleet:summary"
	vendorBalancesPrefix = "stockmaster:vendor:balances:"
)

// VendorBalancesKey clave de cache de los saldos de un vendedor.
func VendorBalancesKey(vendorID string) string {
	return vendorBalancesPrefix + vendorID
}

// Cache puerto de cache de lecturas (Redis en producción). Get devuelve
// error si la clave no existe; el caller trata cualquier error como cache
// miss y recalcula.
type Cache interface {
	Get(ctx context.Context, key string, value any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// FleetReportGenerator puerto del render PDF del informe de flota.
type FleetReportGenerator interface {
	GenerateFleetReport(ctx context.Context, summary *dto.FleetSummaryDTO, generatedAt time.Time) ([]byte, error)
}
