package repository

import "github.com/luc4n/StockMaster/internal/domain/entity"

// CentralStockRepository define el puerto del contador de estoque central
// (una cantidad por producto). Usado dentro de transacciones: GetForUpdate
// bloquea la fila para que el check-then-act de una reserva sea atómico
// frente a reservas concurrentes sobre el mismo producto.
// El puerto se usa solo dentro de transacciones del coordinador, por eso la
// única lectura es la bloqueante; las proyecciones leen el contador vía el
// catálogo (ListWithCentralStock).
type CentralStockRepository interface {
	// GetForUpdate obtiene la cantidad y bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(productID string) (*entity.CentralStock, error)
	Set(stock *entity.CentralStock) error
}
