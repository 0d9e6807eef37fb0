package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/luc4n/StockMaster/internal/domain/entity"
	"github.com/luc4n/StockMaster/internal/domain/ledger"
	"github.com/luc4n/StockMaster/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo lectura del catálogo de productos sobre PostgreSQL. El catálogo
// lo administra otro sistema; el ledger solo consume id, nombre y precio.
type ProductRepo struct {
	pool *pgxpool.Pool
}

// NewProductRepository construye el adaptador.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

// GetByID obtiene un producto por ID. Devuelve nil si no existe.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	query := `
		SELECT id, name, sku, price, image_url, created_at
		FROM products WHERE id = $1`
	var p entity.Product
	var imageURL *string
	err := r.pool.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.Name, &p.SKU, &p.Price, &imageURL, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	if imageURL != nil {
		p.ImageURL = *imageURL
	}
	return &p, nil
}

// List lista el catálogo completo ordenado por nombre.
func (r *ProductRepo) List() ([]*entity.Product, error) {
	query := `
		SELECT id, name, sku, price, image_url, created_at
		FROM products ORDER BY name`
	rows, err := r.pool.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		var imageURL *string
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Price, &imageURL, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if imageURL != nil {
			p.ImageURL = *imageURL
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// ListWithCentralStock lista productos con su estoque central. Con
// onlyAvailable filtra a cantidad > 0 (selector del modal de envíos).
func (r *ProductRepo) ListWithCentralStock(onlyAvailable bool) ([]*entity.ProductWithStock, error) {
	query := `
		SELECT p.id, p.name, p.sku, p.price, p.image_url, p.created_at,
		       COALESCE(cs.quantity, 0) AS central_quantity
		FROM products p
		LEFT JOIN central_stock cs ON cs.product_id = p.id`
	if onlyAvailable {
		query += `
		WHERE COALESCE(cs.quantity, 0) > 0`
	}
	query += `
		ORDER BY p.name`

	rows, err := r.pool.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list products with stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductWithStock
	for rows.Next() {
		var p entity.ProductWithStock
		var imageURL *string
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Price, &imageURL, &p.CreatedAt, &p.CentralQuantity); err != nil {
			return nil, fmt.Errorf("scan product with stock: %w", err)
		}
		if imageURL != nil {
			p.ImageURL = *imageURL
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// PriceIndex devuelve el precio unitario vigente de todos los productos.
func (r *ProductRepo) PriceIndex() (ledger.PriceIndex, error) {
	rows, err := r.pool.Query(context.Background(), `SELECT id, price FROM products`)
	if err != nil {
		return nil, fmt.Errorf("price index: %w", err)
	}
	defer rows.Close()
	idx := ledger.PriceIndex{}
	for rows.Next() {
		var id string
		var price decimal.Decimal
		if err := rows.Scan(&id, &price); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		idx[id] = price
	}
	return idx, rows.Err()
}
