package dto

import "github.com/shopspring/decimal"

// ProductBalanceDTO posesión de un vendedor para un producto.
type ProductBalanceDTO struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Value       decimal.Decimal `json:"value"`
}

// VendorBalancesDTO respuesta de GET /api/vendors/:id/balances.
type VendorBalancesDTO struct {
	VendorID      string              `json:"vendor_id"`
	VendorName    string              `json:"vendor_name"`
	Items         []ProductBalanceDTO `json:"items"`
	TotalQuantity int64               `json:"total_quantity"`
	TotalValue    decimal.Decimal     `json:"total_value"`
}

// VendorRankingDTO posición de un vendedor en el ranking por valor en campo.
type VendorRankingDTO struct {
	VendorID   string          `json:"vendor_id"`
	VendorName string          `json:"vendor_name"`
	Quantity   int64           `json:"quantity"`
	Value      decimal.Decimal `json:"value"`
}

// FleetSummaryDTO respuesta de GET /api/dashboard/summary.
// KPIs del dashboard del original: valor en campo, unidades externas,
// vendedor líder y leaderboard (top 5 por valor).
type FleetSummaryDTO struct {
	TotalValue     decimal.Decimal    `json:"total_value"`
	TotalQuantity  int64              `json:"total_quantity"`
	TopVendor      string             `json:"top_vendor"`
	Leaderboard    []VendorRankingDTO `json:"leaderboard"`      // top 5, valor descendente
	PerVendorValue []VendorRankingDTO `json:"per_vendor_value"` // flota completa, valor descendente
}

// VendorDTO item del directorio de vendedores (colaborador externo, solo lectura).
type VendorDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Region string `json:"region,omitempty"`
	Status string `json:"status,omitempty"`
}

// ProductStockDTO item del catálogo con su estoque central (selector de envíos).
type ProductStockDTO struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Price        decimal.Decimal `json:"price"`
	CentralStock int64           `json:"central_stock"`
}
