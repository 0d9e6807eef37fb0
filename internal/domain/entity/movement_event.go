package entity

import "time"

// MovementKind clasifica un movimiento de estoque. El signo de la cantidad
// nunca va en Quantity (siempre positiva); lo define el tipo.
type MovementKind string

// Tipos de movimiento de estoque.
const (
	KindOutbound    MovementKind = "OUTBOUND"     // depósito central → vendedor
	KindReturn      MovementKind = "RETURN"       // vendedor → depósito central
	KindTransferIn  MovementKind = "TRANSFER_IN"  // vendedor → vendedor (lado receptor)
	KindTransferOut MovementKind = "TRANSFER_OUT" // vendedor → vendedor (lado emisor)
)

// Valid indica si el tipo es uno de los cuatro conocidos.
func (k MovementKind) Valid() bool {
	switch k {
	case KindOutbound, KindReturn, KindTransferIn, KindTransferOut:
		return true
	}
	return false
}

// Sign devuelve +1 si el tipo suma a la posesión del vendedor
// (OUTBOUND, TRANSFER_IN) y -1 si resta (RETURN, TRANSFER_OUT).
// Única regla de signo del sistema; todo cálculo de saldo pasa por aquí.
func (k MovementKind) Sign() int64 {
	switch k {
	case KindOutbound, KindTransferIn:
		return 1
	case KindReturn, KindTransferOut:
		return -1
	}
	return 0
}

// MovementEvent es un hecho inmutable del ledger de posesión: una vez
// persistido nunca se edita ni se borra. Las correcciones se modelan como
// eventos compensatorios nuevos.
//
// Una transferencia entre vendedores son dos eventos (TRANSFER_OUT en el
// origen, TRANSFER_IN en el destino) que comparten OperationID para
// correlación de auditoría.
type MovementEvent struct {
	ID          string
	OperationID string // agrupa los eventos de una misma operación del coordinador
	VendorID    string
	ProductID   string
	Kind        MovementKind
	Quantity    int64  // siempre > 0; la dirección la da Kind
	Notes       string // texto libre, sin efecto semántico
	CreatedAt   time.Time
}

// SignedQuantity devuelve la contribución del evento a la posesión del
// vendedor: +Quantity para entradas, -Quantity para salidas.
func (e MovementEvent) SignedQuantity() int64 {
	return e.Kind.Sign() * e.Quantity
}
