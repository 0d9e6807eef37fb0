package repository

import (
	"github.com/luc4n/StockMaster/internal/domain/entity"
	"github.com/luc4n/StockMaster/internal/domain/ledger"
)

// ProductRepository puerto de lectura del catálogo de productos.
// El catálogo es un colaborador externo: el ledger solo consume identificadores
// y el precio unitario vigente para valorización.
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
	List() ([]*entity.Product, error)
	// ListWithCentralStock lista productos junto a su estoque central,
	// opcionalmente filtrando a los que tienen cantidad disponible
	// (el selector del modal de envíos del original).
	ListWithCentralStock(onlyAvailable bool) ([]*entity.ProductWithStock, error)
	// PriceIndex devuelve el precio unitario vigente de todos los productos.
	PriceIndex() (ledger.PriceIndex, error)
}
