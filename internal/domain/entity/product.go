package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. Entidad de referencia: el
// ledger solo usa su ID y, para valorización, el precio unitario vigente.
type Product struct {
	ID        string
	Name      string
	SKU       string
	Price     decimal.Decimal
	ImageURL  string
	CreatedAt time.Time
}

// ProductWithStock producto junto a su cantidad en el depósito central
// (proyección de lectura para los selectores de envío).
type ProductWithStock struct {
	Product
	CentralQuantity int64
}
