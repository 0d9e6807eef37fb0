// Package ledger deriva la posesión actual de cada vendedor a partir de su
// historial de eventos de movimiento. No tiene estado propio: el saldo es
// siempre la suma con signo de los eventos, nunca un contador almacenado.
//
// Todas las funciones son puras y deterministas: la misma entrada produce la
// misma salida, sin efectos secundarios, y el resultado es independiente del
// orden de los eventos. Son seguras para lectura concurrente ilimitada.
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/luc4n/StockMaster/internal/domain/entity"
)

// Balance posesión actual de un vendedor para un producto.
type Balance struct {
	Quantity int64
	Value    decimal.Decimal // Quantity × precio unitario vigente (momento de agregación)
}

// PriceIndex precio unitario vigente por producto, provisto por el catálogo.
// Un producto ausente (o con precio cero) aporta valor cero al saldo pero
// sigue aportando cantidad.
type PriceIndex map[string]decimal.Decimal

// priceOf devuelve el precio del producto, o cero si el catálogo no lo conoce.
func (p PriceIndex) priceOf(productID string) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	if price, ok := p[productID]; ok {
		return price
	}
	return decimal.Zero
}

// ComputeBalances calcula la posesión por producto de un vendedor a partir de
// sus eventos. Acumula SignedQuantity por producto y valoriza con el precio
// vigente. El resultado incluye solo productos con cantidad estrictamente
// mayor a cero: eso define "lo que el vendedor tiene" para devoluciones y
// transferencias.
func ComputeBalances(events []entity.MovementEvent, prices PriceIndex) map[string]Balance {
	quantities := make(map[string]int64)
	for _, e := range events {
		quantities[e.ProductID] += e.SignedQuantity()
	}

	balances := make(map[string]Balance, len(quantities))
	for productID, qty := range quantities {
		if qty <= 0 {
			continue
		}
		value := prices.priceOf(productID).Mul(decimal.NewFromInt(qty))
		balances[productID] = Balance{Quantity: qty, Value: value}
	}
	return balances
}

// ProductBalance devuelve la cantidad actual de un vendedor para un producto.
// Atajo de ComputeBalances para validaciones del coordinador; puede ser
// negativa solo si el historial ya violó el invariante (el coordinador lo
// impide en el append).
func ProductBalance(events []entity.MovementEvent, productID string) int64 {
	var qty int64
	for _, e := range events {
		if e.ProductID == productID {
			qty += e.SignedQuantity()
		}
	}
	return qty
}

// VendorTotal posesión agregada de un vendedor (todas sus líneas de producto).
type VendorTotal struct {
	VendorID string
	Quantity int64
	Value    decimal.Decimal
}

// FleetSummary agregado de toda la flota de vendedores.
type FleetSummary struct {
	TotalQuantity int64
	TotalValue    decimal.Decimal
	PerVendor     []VendorTotal // ordenado por Value descendente
}

// ComputeAggregate aplica la misma regla de suma con signo sobre los eventos
// de todos los vendedores y agrupa por vendedor. PerVendor queda ordenado por
// valor descendente (desempate por VendorID para mantener el resultado
// determinista ante cualquier permutación de entrada).
func ComputeAggregate(events []entity.MovementEvent, prices PriceIndex) FleetSummary {
	type accum struct {
		quantity int64
		value    decimal.Decimal
	}
	perVendor := make(map[string]*accum)

	summary := FleetSummary{TotalValue: decimal.Zero}
	for _, e := range events {
		signedQty := e.SignedQuantity()
		signedVal := prices.priceOf(e.ProductID).Mul(decimal.NewFromInt(signedQty))

		summary.TotalQuantity += signedQty
		summary.TotalValue = summary.TotalValue.Add(signedVal)

		acc := perVendor[e.VendorID]
		if acc == nil {
			acc = &accum{value: decimal.Zero}
			perVendor[e.VendorID] = acc
		}
		acc.quantity += signedQty
		acc.value = acc.value.Add(signedVal)
	}

	summary.PerVendor = make([]VendorTotal, 0, len(perVendor))
	for vendorID, acc := range perVendor {
		summary.PerVendor = append(summary.PerVendor, VendorTotal{
			VendorID: vendorID,
			Quantity: acc.quantity,
			Value:    acc.value,
		})
	}
	sort.Slice(summary.PerVendor, func(i, j int) bool {
		a, b := summary.PerVendor[i], summary.PerVendor[j]
		if !a.Value.Equal(b.Value) {
			return a.Value.GreaterThan(b.Value)
		}
		return a.VendorID < b.VendorID
	})
	return summary
}
