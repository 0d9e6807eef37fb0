package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/luc4n/StockMaster/internal/domain/entity"
	"github.com/luc4n/StockMaster/internal/domain/repository"
)

var _ repository.CentralStockRepository = (*CentralStockRepo)(nil)

// CentralStockRepo contador de estoque central sobre PostgreSQL (usable con
// pool o tx). La tabla central_stock tiene una fila por producto; el CHECK
// (quantity >= 0) del esquema respalda el invariante que el coordinador ya
// valida bajo bloqueo de fila.
type CentralStockRepo struct {
	q Querier
}

// NewCentralStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCentralStockRepository(q Querier) *CentralStockRepo {
	return &CentralStockRepo{q: q}
}

// GetForUpdate obtiene la cantidad y bloquea la fila (SELECT FOR UPDATE):
// reservas concurrentes sobre el mismo producto se serializan aquí.
func (r *CentralStockRepo) GetForUpdate(productID string) (*entity.CentralStock, error) {
	query := `
		SELECT product_id, quantity, updated_at
		FROM central_stock WHERE product_id = $1
		FOR UPDATE`
	var s entity.CentralStock
	err := r.q.QueryRow(context.Background(), query, productID).Scan(
		&s.ProductID, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.CentralStock{ProductID: productID}, nil
		}
		return nil, fmt.Errorf("get central stock for update: %w", err)
	}
	return &s, nil
}

// Set inserta o actualiza la cantidad central del producto.
func (r *CentralStockRepo) Set(stock *entity.CentralStock) error {
	query := `
		INSERT INTO central_stock (product_id, quantity, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query, stock.ProductID, stock.Quantity)
	if err != nil {
		return fmt.Errorf("set central stock: %w", err)
	}
	return nil
}
