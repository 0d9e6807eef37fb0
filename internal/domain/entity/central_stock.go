package entity

import "time"

// CentralStock es la cantidad en el depósito central para un producto.
// Único contador mutable del sistema: se decrementa al emitir un OUTBOUND y
// se incrementa al recibir un RETURN, siempre en la misma transacción que el
// append del evento. Invariante: nunca negativa.
type CentralStock struct {
	ProductID string
	Quantity  int64
	UpdatedAt time.Time
}
