package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luc4n/StockMaster/internal/domain/entity"
	"github.com/luc4n/StockMaster/internal/domain/repository"
)

var _ repository.VendorRepository = (*VendorRepo)(nil)

// VendorRepo lectura del directorio de vendedores sobre PostgreSQL. El
// directorio lo administra otro sistema; aquí no hay escrituras.
type VendorRepo struct {
	pool *pgxpool.Pool
}

// NewVendorRepository construye el adaptador.
func NewVendorRepository(pool *pgxpool.Pool) *VendorRepo {
	return &VendorRepo{pool: pool}
}

// GetByID obtiene un vendedor por ID. Devuelve nil si no existe.
func (r *VendorRepo) GetByID(id string) (*entity.Vendor, error) {
	query := `
		SELECT id, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(region, ''), status, created_at
		FROM vendors WHERE id = $1`
	var v entity.Vendor
	err := r.pool.QueryRow(context.Background(), query, id).Scan(
		&v.ID, &v.Name, &v.Email, &v.Phone, &v.Region, &v.Status, &v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vendor: %w", err)
	}
	return &v, nil
}

// List lista todos los vendedores ordenados por nombre.
func (r *VendorRepo) List() ([]*entity.Vendor, error) {
	query := `
		SELECT id, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(region, ''), status, created_at
		FROM vendors ORDER BY name`
	rows, err := r.pool.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()
	var list []*entity.Vendor
	for rows.Next() {
		var v entity.Vendor
		if err := rows.Scan(&v.ID, &v.Name, &v.Email, &v.Phone, &v.Region, &v.Status, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		list = append(list, &v)
	}
	return list, rows.Err()
}
