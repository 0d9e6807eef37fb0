package repository

import "github.com/luc4n/StockMaster/internal/domain/entity"

// VendorRepository puerto de lectura del directorio de vendedores.
// El directorio es un colaborador externo: aquí solo se consulta identidad y
// nombre, nunca se administra.
type VendorRepository interface {
	GetByID(id string) (*entity.Vendor, error)
	List() ([]*entity.Vendor, error)
}
